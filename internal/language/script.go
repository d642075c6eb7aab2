package language

import "unicode"

// Script is a writing system as far as detection is concerned.
type Script string

const (
	ScriptLatin      Script = "Latin"
	ScriptCyrillic   Script = "Cyrillic"
	ScriptGreek      Script = "Greek"
	ScriptHebrew     Script = "Hebrew"
	ScriptArabic     Script = "Arabic"
	ScriptArmenian   Script = "Armenian"
	ScriptGeorgian   Script = "Georgian"
	ScriptThai       Script = "Thai"
	ScriptHangul     Script = "Hangul"
	ScriptKana       Script = "Kana" // Hiragana and Katakana
	ScriptHan        Script = "Han"
	ScriptDevanagari Script = "Devanagari"
	ScriptBengali    Script = "Bengali"
	ScriptTamil      Script = "Tamil"
	ScriptTelugu     Script = "Telugu"
	ScriptKannada    Script = "Kannada"
	ScriptMalayalam  Script = "Malayalam"
	ScriptGujarati   Script = "Gujarati"
	ScriptGurmukhi   Script = "Gurmukhi"
	ScriptEthiopic   Script = "Ethiopic"
	ScriptKhmer      Script = "Khmer"
	ScriptLao        Script = "Lao"
	ScriptMyanmar    Script = "Myanmar"
	ScriptSinhala    Script = "Sinhala"
)

var scriptTables = []struct {
	script Script
	table  *unicode.RangeTable
}{
	{ScriptLatin, unicode.Latin},
	{ScriptCyrillic, unicode.Cyrillic},
	{ScriptGreek, unicode.Greek},
	{ScriptHebrew, unicode.Hebrew},
	{ScriptArabic, unicode.Arabic},
	{ScriptArmenian, unicode.Armenian},
	{ScriptGeorgian, unicode.Georgian},
	{ScriptThai, unicode.Thai},
	{ScriptHangul, unicode.Hangul},
	{ScriptKana, unicode.Hiragana},
	{ScriptKana, unicode.Katakana},
	{ScriptHan, unicode.Han},
	{ScriptDevanagari, unicode.Devanagari},
	{ScriptBengali, unicode.Bengali},
	{ScriptTamil, unicode.Tamil},
	{ScriptTelugu, unicode.Telugu},
	{ScriptKannada, unicode.Kannada},
	{ScriptMalayalam, unicode.Malayalam},
	{ScriptGujarati, unicode.Gujarati},
	{ScriptGurmukhi, unicode.Gurmukhi},
	{ScriptEthiopic, unicode.Ethiopic},
	{ScriptKhmer, unicode.Khmer},
	{ScriptLao, unicode.Lao},
	{ScriptMyanmar, unicode.Myanmar},
	{ScriptSinhala, unicode.Sinhala},
}

// Letters used by Persian but not by Arabic.
var persianLetters = []rune{'پ', 'چ', 'ژ', 'گ', 'ک', 'ی'}

// scriptOf returns the script of a letter, or "" for letters outside the known scripts.
func scriptOf(r rune) Script {
	for _, st := range scriptTables {
		if unicode.Is(st.table, r) {
			return st.script
		}
	}
	return ""
}

// scriptStats counts letters per script.
type scriptStats struct {
	counts  map[Script]int
	letters int
	persian bool
}

func countScripts(text string) scriptStats {
	stats := scriptStats{counts: make(map[Script]int)}
	for _, r := range text {
		if !unicode.IsLetter(r) {
			continue
		}
		stats.letters++
		if s := scriptOf(r); s != "" {
			stats.counts[s]++
		}
		for _, p := range persianLetters {
			if r == p {
				stats.persian = true
				break
			}
		}
	}
	return stats
}

// dominant returns the script with the most letters. Ties go to the script
// listed first in scriptTables so the result is stable.
func (s scriptStats) dominant() (Script, int) {
	var best Script
	bestCount := 0
	seen := make(map[Script]bool, len(scriptTables))
	for _, st := range scriptTables {
		if seen[st.script] {
			continue
		}
		seen[st.script] = true
		if c := s.counts[st.script]; c > bestCount {
			best, bestCount = st.script, c
		}
	}
	return best, bestCount
}
