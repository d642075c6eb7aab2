package language

import (
	"strings"

	"github.com/oukeidos/percept/internal/logger"
	"github.com/rivo/uniseg"
	"golang.org/x/text/language"
)

const (
	// Undetermined is the code returned when no language could be identified.
	Undetermined = "undetermined"
	// UnableToDetect is the display name paired with Undetermined.
	UnableToDetect = "unable to detect"

	DefaultMinConfidence = 0.5
	DefaultMaxGraphemes  = 10000
)

// Result is the outcome of one detection call.
type Result struct {
	Code        string  `json:"language_code"`
	DisplayName string  `json:"display_name"`
	Confidence  float64 `json:"confidence"`
}

// IsUndetermined reports whether the result carries the undetermined sentinel.
func (r Result) IsUndetermined() bool {
	return r.Code == Undetermined
}

// UndeterminedResult returns the fixed result for text that cannot be identified.
func UndeterminedResult() Result {
	return Result{Code: Undetermined, DisplayName: UnableToDetect}
}

// Detector identifies the language of a text sample.
type Detector interface {
	Detect(text string) Result
}

// Options configures an NgramDetector. Zero values select the defaults.
type Options struct {
	MinConfidence float64
	MaxGraphemes  int
	Locale        language.Tag
}

// NgramDetector combines script detection with a character n-gram model for
// scripts shared by several languages.
type NgramDetector struct {
	minConfidence float64
	maxGraphemes  int
	locale        language.Tag
	model         *model
}

var _ Detector = (*NgramDetector)(nil)

// NewDetector builds a detector backed by the embedded language profiles.
func NewDetector(opts Options) (*NgramDetector, error) {
	m, err := loadDefaultModel()
	if err != nil {
		return nil, err
	}
	if opts.MinConfidence <= 0 {
		opts.MinConfidence = DefaultMinConfidence
	}
	if opts.MaxGraphemes <= 0 {
		opts.MaxGraphemes = DefaultMaxGraphemes
	}
	if opts.Locale == language.Und {
		opts.Locale = CurrentLocale()
	}
	return &NgramDetector{
		minConfidence: opts.MinConfidence,
		maxGraphemes:  opts.MaxGraphemes,
		locale:        opts.Locale,
		model:         m,
	}, nil
}

// Locale returns the locale used for display names.
func (d *NgramDetector) Locale() language.Tag {
	return d.locale
}

// Detect returns the most likely language of text. Empty, whitespace-only and
// letter-free input, and input whose best candidate falls below the confidence
// floor, yield UndeterminedResult.
func (d *NgramDetector) Detect(text string) Result {
	if strings.TrimSpace(text) == "" {
		return UndeterminedResult()
	}
	text = truncateGraphemes(text, d.maxGraphemes)

	code, confidence := d.identify(text)
	if code == "" || confidence < d.minConfidence {
		logger.Debug("Language undetermined", "best", code, "confidence", confidence)
		return UndeterminedResult()
	}
	return Result{
		Code:        code,
		DisplayName: DisplayName(code, d.locale),
		Confidence:  confidence,
	}
}

func (d *NgramDetector) identify(text string) (string, float64) {
	stats := countScripts(text)
	if stats.letters == 0 {
		return "", 0
	}
	script, count := stats.dominant()
	if count == 0 {
		return "", 0
	}
	share := float64(count) / float64(stats.letters)

	switch script {
	case ScriptHan, ScriptKana:
		if stats.counts[ScriptKana] > 0 {
			return "ja", float64(stats.counts[ScriptHan]+stats.counts[ScriptKana]) / float64(stats.letters)
		}
		return "zh", share
	case ScriptArabic:
		if stats.persian {
			return "fa", share
		}
		return "ar", share
	}

	if cands := d.model.classify(text, script); len(cands) > 0 {
		return cands[0].code, cands[0].prob * share
	}
	if codes := languagesForScript(script); len(codes) == 1 {
		return codes[0], share
	}
	return "", 0
}

// truncateGraphemes cuts s after max grapheme clusters.
func truncateGraphemes(s string, max int) string {
	if max <= 0 {
		return s
	}
	g := uniseg.NewGraphemes(s)
	n := 0
	for g.Next() {
		n++
		if n == max {
			_, end := g.Positions()
			return s[:end]
		}
	}
	return s
}
