package main

import (
	"fyne.io/fyne/v2"

	"github.com/oukeidos/percept/internal/language"
	"github.com/oukeidos/percept/internal/metadata"
	"github.com/oukeidos/percept/internal/session"
	"github.com/oukeidos/percept/internal/vision"
)

type AppConfig struct {
	Backend string
	Model   string
	Locale  string

	// Advanced Settings
	MinConfidence float64
	TagThreshold  float64
	MaxLabels     int
}

const (
	prefBackend       = "Backend"
	prefModel         = "Model"
	prefLocale        = "Locale"
	prefMinConfidence = "MinConfidence"
	prefTagThreshold  = "TagThreshold"
	prefMaxLabels     = "MaxLabels"
)

func defaultAppConfig() AppConfig {
	return AppConfig{
		Backend:       string(metadata.BackendLocal),
		Model:         metadata.LocalModel,
		MinConfidence: language.DefaultMinConfidence,
		TagThreshold:  vision.DefaultThreshold,
		MaxLabels:     vision.DefaultMaxLabels,
	}
}

func loadAppConfig(prefs fyne.Preferences) AppConfig {
	def := defaultAppConfig()
	c := AppConfig{
		Backend:       prefs.StringWithFallback(prefBackend, def.Backend),
		Model:         prefs.String(prefModel),
		Locale:        prefs.String(prefLocale),
		MinConfidence: prefs.FloatWithFallback(prefMinConfidence, def.MinConfidence),
		TagThreshold:  prefs.FloatWithFallback(prefTagThreshold, def.TagThreshold),
		MaxLabels:     prefs.IntWithFallback(prefMaxLabels, def.MaxLabels),
	}

	backend, ok := metadata.ParseBackend(c.Backend)
	if !ok {
		backend = metadata.BackendLocal
	}
	c.Backend = string(backend)
	c.Model = normalizeModel(backend, c.Model)
	return c
}

func saveAppConfig(prefs fyne.Preferences, c AppConfig) {
	prefs.SetString(prefBackend, c.Backend)
	prefs.SetString(prefModel, c.Model)
	prefs.SetString(prefLocale, c.Locale)
	prefs.SetFloat(prefMinConfidence, c.MinConfidence)
	prefs.SetFloat(prefTagThreshold, c.TagThreshold)
	prefs.SetInt(prefMaxLabels, c.MaxLabels)
}

// normalizeModel keeps model when it is known for backend and otherwise
// falls back to the backend default.
func normalizeModel(backend metadata.Backend, model string) string {
	if metadata.IsKnownModel(backend, model) {
		return model
	}
	return metadata.DefaultModel(backend)
}

func (c AppConfig) sessionConfig(apiKey string) (session.Config, []string) {
	return session.Config{
		Backend:       metadata.Backend(c.Backend),
		Model:         c.Model,
		APIKey:        apiKey,
		Locale:        c.Locale,
		MinConfidence: c.MinConfidence,
		TagThreshold:  c.TagThreshold,
		MaxLabels:     c.MaxLabels,
	}.Normalize()
}
