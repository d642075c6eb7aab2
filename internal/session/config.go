package session

import (
	"fmt"
	"strings"

	"github.com/oukeidos/percept/internal/language"
	"github.com/oukeidos/percept/internal/metadata"
	"github.com/oukeidos/percept/internal/vision"
)

// Config holds the user-adjustable settings shared by the CLI and the GUI.
type Config struct {
	// Tagging backend
	Backend metadata.Backend
	Model   string
	APIKey  string

	// Language detection
	Locale        string // BCP 47; empty means the OS locale
	MinConfidence float64

	// Tagging limits. A zero limit, like a zero MinConfidence, means the default.
	TagThreshold float64
	MaxLabels    int
}

const (
	MinMaxLabels = 1
	MaxMaxLabels = 50
)

// DefaultConfig returns the settings used when nothing is configured.
func DefaultConfig() Config {
	return Config{
		Backend:       metadata.BackendLocal,
		Model:         metadata.LocalModel,
		MinConfidence: language.DefaultMinConfidence,
		TagThreshold:  vision.DefaultThreshold,
		MaxLabels:     vision.DefaultMaxLabels,
	}
}

func clampUnit(name string, value, fallback float64, notes *[]string) float64 {
	switch {
	case value == 0:
		return fallback
	case value < 0:
		*notes = append(*notes, fmt.Sprintf("%s %g is negative; using default %g", name, value, fallback))
		return fallback
	case value > 1:
		*notes = append(*notes, fmt.Sprintf("%s lowered from %g to 1", name, value))
		return 1
	}
	return value
}

// Normalize fills unset values with defaults, applies safe bounds, and
// returns any adjustments.
func (c Config) Normalize() (Config, []string) {
	var notes []string

	c.Backend = metadata.Backend(strings.ToLower(strings.TrimSpace(string(c.Backend))))
	if c.Backend == "" {
		c.Backend = metadata.BackendLocal
	}
	c.Model = strings.TrimSpace(c.Model)
	if c.Model == "" {
		c.Model = metadata.DefaultModel(c.Backend)
	}
	c.APIKey = strings.TrimSpace(c.APIKey)
	c.Locale = strings.TrimSpace(c.Locale)

	c.MinConfidence = clampUnit("min-confidence", c.MinConfidence, language.DefaultMinConfidence, &notes)
	c.TagThreshold = clampUnit("threshold", c.TagThreshold, vision.DefaultThreshold, &notes)

	switch {
	case c.MaxLabels == 0:
		c.MaxLabels = vision.DefaultMaxLabels
	case c.MaxLabels < MinMaxLabels:
		notes = append(notes, fmt.Sprintf("max-labels raised from %d to %d", c.MaxLabels, MinMaxLabels))
		c.MaxLabels = MinMaxLabels
	case c.MaxLabels > MaxMaxLabels:
		notes = append(notes, fmt.Sprintf("max-labels clamped from %d to %d (max %d)", c.MaxLabels, MaxMaxLabels, MaxMaxLabels))
		c.MaxLabels = MaxMaxLabels
	}
	return c, notes
}

// IsRemote reports whether the backend calls a hosted model.
func (c Config) IsRemote() bool {
	return c.Backend == metadata.BackendGemini || c.Backend == metadata.BackendOpenAI
}

// Validate checks a normalized configuration.
func (c Config) Validate() error {
	if _, ok := metadata.ParseBackend(string(c.Backend)); !ok {
		return fmt.Errorf("unknown backend %q (use local, gemini or openai)", c.Backend)
	}
	if c.Locale != "" {
		if _, err := language.ParseLocale(c.Locale); err != nil {
			return fmt.Errorf("invalid locale %q: %w", c.Locale, err)
		}
	}
	if c.MinConfidence < 0 || c.MinConfidence > 1 {
		return fmt.Errorf("min-confidence must be between 0 and 1, got %g", c.MinConfidence)
	}
	if c.TagThreshold < 0 || c.TagThreshold > 1 {
		return fmt.Errorf("threshold must be between 0 and 1, got %g", c.TagThreshold)
	}
	if c.MaxLabels < MinMaxLabels || c.MaxLabels > MaxMaxLabels {
		return fmt.Errorf("max-labels must be between %d and %d, got %d", MinMaxLabels, MaxMaxLabels, c.MaxLabels)
	}
	if c.IsRemote() && c.APIKey == "" {
		return fmt.Errorf("API key is required for the %s backend", c.Backend)
	}
	return nil
}

// VisionOptions returns the tagger limits of the configuration.
func (c Config) VisionOptions() vision.Options {
	return vision.Options{Threshold: c.TagThreshold, MaxLabels: c.MaxLabels}
}
