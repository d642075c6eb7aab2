package language

import (
	"sort"
)

// Language represents a detectable language.
type Language struct {
	Code   string // ISO 639-1
	Name   string // English name, used when no localized name is available
	Script Script
}

// Languages is a map of supported languages code -> Language.
var Languages = map[string]Language{
	"am": {Code: "am", Name: "Amharic", Script: ScriptEthiopic},
	"ar": {Code: "ar", Name: "Arabic", Script: ScriptArabic},
	"bn": {Code: "bn", Name: "Bengali", Script: ScriptBengali},
	"cs": {Code: "cs", Name: "Czech", Script: ScriptLatin},
	"da": {Code: "da", Name: "Danish", Script: ScriptLatin},
	"de": {Code: "de", Name: "German", Script: ScriptLatin},
	"el": {Code: "el", Name: "Greek", Script: ScriptGreek},
	"en": {Code: "en", Name: "English", Script: ScriptLatin},
	"es": {Code: "es", Name: "Spanish", Script: ScriptLatin},
	"fa": {Code: "fa", Name: "Persian", Script: ScriptArabic},
	"fi": {Code: "fi", Name: "Finnish", Script: ScriptLatin},
	"fr": {Code: "fr", Name: "French", Script: ScriptLatin},
	"gu": {Code: "gu", Name: "Gujarati", Script: ScriptGujarati},
	"he": {Code: "he", Name: "Hebrew", Script: ScriptHebrew},
	"hi": {Code: "hi", Name: "Hindi", Script: ScriptDevanagari},
	"hu": {Code: "hu", Name: "Hungarian", Script: ScriptLatin},
	"hy": {Code: "hy", Name: "Armenian", Script: ScriptArmenian},
	"id": {Code: "id", Name: "Indonesian", Script: ScriptLatin},
	"it": {Code: "it", Name: "Italian", Script: ScriptLatin},
	"ja": {Code: "ja", Name: "Japanese", Script: ScriptKana},
	"ka": {Code: "ka", Name: "Georgian", Script: ScriptGeorgian},
	"km": {Code: "km", Name: "Khmer", Script: ScriptKhmer},
	"kn": {Code: "kn", Name: "Kannada", Script: ScriptKannada},
	"ko": {Code: "ko", Name: "Korean", Script: ScriptHangul},
	"lo": {Code: "lo", Name: "Lao", Script: ScriptLao},
	"ml": {Code: "ml", Name: "Malayalam", Script: ScriptMalayalam},
	"my": {Code: "my", Name: "Burmese", Script: ScriptMyanmar},
	"nl": {Code: "nl", Name: "Dutch", Script: ScriptLatin},
	"pa": {Code: "pa", Name: "Punjabi", Script: ScriptGurmukhi},
	"pl": {Code: "pl", Name: "Polish", Script: ScriptLatin},
	"pt": {Code: "pt", Name: "Portuguese", Script: ScriptLatin},
	"ro": {Code: "ro", Name: "Romanian", Script: ScriptLatin},
	"ru": {Code: "ru", Name: "Russian", Script: ScriptCyrillic},
	"si": {Code: "si", Name: "Sinhala", Script: ScriptSinhala},
	"sv": {Code: "sv", Name: "Swedish", Script: ScriptLatin},
	"ta": {Code: "ta", Name: "Tamil", Script: ScriptTamil},
	"te": {Code: "te", Name: "Telugu", Script: ScriptTelugu},
	"th": {Code: "th", Name: "Thai", Script: ScriptThai},
	"tr": {Code: "tr", Name: "Turkish", Script: ScriptLatin},
	"uk": {Code: "uk", Name: "Ukrainian", Script: ScriptCyrillic},
	"vi": {Code: "vi", Name: "Vietnamese", Script: ScriptLatin},
	"zh": {Code: "zh", Name: "Chinese", Script: ScriptHan},
}

// Lookup returns the language for an exact code.
func Lookup(code string) (Language, bool) {
	lang, ok := Languages[code]
	return lang, ok
}

// Supported returns all languages sorted by Name and then Code.
func Supported() []Language {
	entries := make([]Language, 0, len(Languages))
	for _, v := range Languages {
		entries = append(entries, v)
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Name != entries[j].Name {
			return entries[i].Name < entries[j].Name
		}
		return entries[i].Code < entries[j].Code
	})
	return entries
}

// languagesForScript returns the codes written in script, sorted.
func languagesForScript(script Script) []string {
	var codes []string
	for code, lang := range Languages {
		if lang.Script == script {
			codes = append(codes, code)
		}
	}
	sort.Strings(codes)
	return codes
}
