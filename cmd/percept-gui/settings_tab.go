package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"github.com/oukeidos/percept/internal/auth"
	"github.com/oukeidos/percept/internal/language"
	"github.com/oukeidos/percept/internal/metadata"
	"github.com/oukeidos/percept/internal/session"
)

type settingsTab struct {
	app *perceptApp

	backendSelect *widget.Select
	modelSelect   *widget.Select
	localeEntry   *widget.Entry
	confidence    *widget.Slider
	threshold     *widget.Slider
	maxLabels     *widget.Entry

	geminiEntry  *widget.Entry
	openaiEntry  *widget.Entry
	geminiStatus *widget.Label
	openaiStatus *widget.Label
}

func newSettingsTab(a *perceptApp) *settingsTab {
	s := &settingsTab{app: a}

	backends := make([]string, len(metadata.Backends))
	for i, b := range metadata.Backends {
		backends[i] = string(b)
	}
	s.modelSelect = widget.NewSelect(nil, nil)
	s.backendSelect = widget.NewSelect(backends, func(b string) {
		s.refreshModels(metadata.Backend(b), "")
	})

	s.localeEntry = widget.NewEntry()
	s.localeEntry.SetPlaceHolder("OS default (e.g. en, de, ja)")

	s.confidence = widget.NewSlider(0.05, 1)
	s.confidence.Step = 0.05
	s.threshold = widget.NewSlider(0.05, 1)
	s.threshold.Step = 0.05

	s.maxLabels = widget.NewEntry()
	s.maxLabels.Validator = func(v string) error {
		_, err := parseMaxLabels(v)
		return err
	}

	s.geminiEntry = widget.NewPasswordEntry()
	s.openaiEntry = widget.NewPasswordEntry()
	s.geminiStatus = widget.NewLabel("")
	s.openaiStatus = widget.NewLabel("")

	s.load(a.config)
	s.refreshKeyStatus()
	return s
}

func (s *settingsTab) content() fyne.CanvasObject {
	w := s.app.window

	general := container.NewVBox(
		widget.NewLabelWithStyle("Recognition", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		widget.NewForm(
			widget.NewFormItem("Backend", s.backendSelect),
			widget.NewFormItem("Model", s.modelSelect),
			widget.NewFormItem("Language names", s.localeEntry),
			widget.NewFormItem("Min. confidence", sliderWithValue(s.confidence)),
			widget.NewFormItem("Label threshold", sliderWithValue(s.threshold)),
			widget.NewFormItem("Max. labels", s.maxLabels),
		),
		container.NewHBox(
			widget.NewButtonWithIcon("Apply", theme.ConfirmIcon(), s.apply),
			widget.NewButton("Restore Defaults", func() {
				s.load(defaultAppConfig())
				s.apply()
			}),
		),
	)

	keys := container.NewVBox(
		widget.NewLabelWithStyle("API Keys", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		widget.NewForm(
			widget.NewFormItem("Gemini Key", container.NewVBox(s.geminiEntry, s.geminiStatus)),
			widget.NewFormItem("OpenAI Key", container.NewVBox(s.openaiEntry, s.openaiStatus)),
		),
		widget.NewButton("Save Keys to Keychain", func() {
			_, err := saveKeysToKeychain(s.geminiEntry.Text, s.openaiEntry.Text, auth.SaveKey)
			s.refreshKeyStatus()
			if err != nil {
				dialog.ShowError(err, w)
				return
			}
			s.applyKeys()
			dialog.ShowInformation("Saved", "API Keys have been updated in your keychain.", w)
		}),
		widget.NewButtonWithIcon("Reset All Keys", theme.DeleteIcon(), func() {
			dialog.ShowConfirm("Reset", "Are you sure you want to delete all saved keys from keychain?", func(ok bool) {
				if !ok {
					return
				}
				err := resetKeysInKeychain(auth.DeleteKey)
				s.refreshKeyStatus()
				s.applyKeys()
				if err != nil {
					dialog.ShowError(err, w)
					return
				}
				dialog.ShowInformation("Reset Complete", "All saved keys were deleted from keychain.", w)
			}, w)
		}),
	)

	return container.NewPadded(container.NewVScroll(container.NewVBox(
		general,
		widget.NewSeparator(),
		keys,
	)))
}

func sliderWithValue(sl *widget.Slider) fyne.CanvasObject {
	value := widget.NewLabel(strconv.FormatFloat(sl.Value, 'f', 2, 64))
	prev := sl.OnChanged
	sl.OnChanged = func(v float64) {
		value.SetText(strconv.FormatFloat(v, 'f', 2, 64))
		if prev != nil {
			prev(v)
		}
	}
	return container.NewBorder(nil, nil, nil, value, sl)
}

func (s *settingsTab) load(c AppConfig) {
	s.backendSelect.SetSelected(c.Backend)
	s.refreshModels(metadata.Backend(c.Backend), c.Model)
	s.localeEntry.SetText(c.Locale)
	s.confidence.SetValue(c.MinConfidence)
	s.threshold.SetValue(c.TagThreshold)
	s.maxLabels.SetText(strconv.Itoa(c.MaxLabels))
}

func (s *settingsTab) refreshModels(b metadata.Backend, selected string) {
	ids := metadata.ModelIDs(b)
	s.modelSelect.Options = ids
	s.modelSelect.SetSelected(normalizeModel(b, selected))
	s.modelSelect.Refresh()
}

func (s *settingsTab) refreshKeyStatus() {
	for _, item := range []struct {
		svc    auth.Service
		entry  *widget.Entry
		status *widget.Label
	}{
		{auth.Gemini, s.geminiEntry, s.geminiStatus},
		{auth.OpenAI, s.openaiEntry, s.openaiStatus},
	} {
		key, _ := auth.GetKey(item.svc, false)
		item.entry.SetText("")
		if key != "" {
			item.entry.SetPlaceHolder("Saved in keychain (enter to replace)")
			item.status.SetText("Saved")
		} else {
			item.entry.SetPlaceHolder("Enter new key")
			item.status.SetText("Not set")
		}
	}
}

func (s *settingsTab) read() (AppConfig, error) {
	maxLabels, err := parseMaxLabels(s.maxLabels.Text)
	if err != nil {
		return AppConfig{}, err
	}
	c := AppConfig{
		Backend:       s.backendSelect.Selected,
		Model:         s.modelSelect.Selected,
		Locale:        strings.TrimSpace(s.localeEntry.Text),
		MinConfidence: s.confidence.Value,
		TagThreshold:  s.threshold.Value,
		MaxLabels:     maxLabels,
	}
	if c.Locale != "" {
		if _, err := language.ParseLocale(c.Locale); err != nil {
			return AppConfig{}, fmt.Errorf("invalid locale %q", c.Locale)
		}
	}
	return c, nil
}

func (s *settingsTab) apply() {
	c, err := s.read()
	if err != nil {
		dialog.ShowError(err, s.app.window)
		return
	}
	prev := s.app.config
	s.app.config = c
	if err := s.app.applyConfig(); err != nil {
		s.app.config = prev
		dialog.ShowError(err, s.app.window)
		return
	}
	saveAppConfig(s.app.prefs, c)
	if msg := s.app.keyProblem(); msg != "" {
		dialog.ShowInformation("API Key Needed", msg, s.app.window)
	}
}

func (s *settingsTab) applyKeys() {
	if err := s.app.applyConfig(); err != nil {
		dialog.ShowError(err, s.app.window)
	}
}

func parseMaxLabels(v string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return 0, errors.New("enter a whole number")
	}
	if n < session.MinMaxLabels || n > session.MaxMaxLabels {
		return 0, fmt.Errorf("must be between %d and %d", session.MinMaxLabels, session.MaxMaxLabels)
	}
	return n, nil
}

type keySaveResult struct {
	GeminiSaved bool
	OpenAISaved bool
}

func saveKeysToKeychain(geminiKey, openaiKey string, saveFn func(svc auth.Service, key string) error) (keySaveResult, error) {
	result := keySaveResult{}
	var errs []string
	if strings.TrimSpace(geminiKey) != "" {
		if err := saveFn(auth.Gemini, geminiKey); err != nil {
			errs = append(errs, fmt.Sprintf("failed to save Gemini key: %v", err))
		} else {
			result.GeminiSaved = true
		}
	}
	if strings.TrimSpace(openaiKey) != "" {
		if err := saveFn(auth.OpenAI, openaiKey); err != nil {
			errs = append(errs, fmt.Sprintf("failed to save OpenAI key: %v", err))
		} else {
			result.OpenAISaved = true
		}
	}
	if len(errs) > 0 {
		return result, errors.New(strings.Join(errs, "; "))
	}
	return result, nil
}

func resetKeysInKeychain(deleteFn func(svc auth.Service) error) error {
	var errs []string
	for _, svc := range auth.Services() {
		if err := deleteFn(svc); err != nil {
			errs = append(errs, fmt.Sprintf("failed to delete %s key: %v", svc.Label(), err))
		}
	}
	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}
