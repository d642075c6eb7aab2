package session

import (
	"context"
	"fmt"

	"github.com/oukeidos/percept/internal/gemini"
	"github.com/oukeidos/percept/internal/language"
	"github.com/oukeidos/percept/internal/metadata"
	"github.com/oukeidos/percept/internal/openai"
	"github.com/oukeidos/percept/internal/vision"
)

// NewDetector builds the language detector described by cfg.
func NewDetector(cfg Config) (*language.NgramDetector, error) {
	locale, err := language.ParseLocale(cfg.Locale)
	if err != nil {
		return nil, fmt.Errorf("invalid locale %q: %w", cfg.Locale, err)
	}
	return language.NewDetector(language.Options{
		MinConfidence: cfg.MinConfidence,
		Locale:        locale,
	})
}

// NewTagger builds the tagging backend selected by cfg. Remote taggers may
// hold connections; callers close the result if it implements io.Closer.
func NewTagger(ctx context.Context, cfg Config) (vision.Tagger, error) {
	opts := cfg.VisionOptions()
	switch cfg.Backend {
	case metadata.BackendLocal, "":
		return vision.NewHeuristicTagger(opts), nil
	case metadata.BackendGemini:
		t, err := gemini.NewTagger(ctx, cfg.APIKey, cfg.Model, opts)
		if err != nil {
			return nil, fmt.Errorf("failed to create Gemini client: %w", err)
		}
		return t, nil
	case metadata.BackendOpenAI:
		return openai.NewTagger(cfg.APIKey, cfg.Model, opts), nil
	default:
		return nil, fmt.Errorf("unknown backend %q", cfg.Backend)
	}
}

// ModelOf returns the model a tagger reports through a ModelID method, or
// fallback for taggers that have none.
func ModelOf(t vision.Tagger, fallback string) string {
	if m, ok := t.(interface{ ModelID() string }); ok {
		if id := m.ModelID(); id != "" {
			return id
		}
	}
	return fallback
}
