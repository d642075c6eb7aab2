package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/theme"

	"github.com/oukeidos/percept/internal/auth"
	"github.com/oukeidos/percept/internal/cleanup"
	"github.com/oukeidos/percept/internal/imagefile"
	"github.com/oukeidos/percept/internal/logger"
	"github.com/oukeidos/percept/internal/session"
	"github.com/oukeidos/percept/internal/subtitle"
	"github.com/oukeidos/percept/internal/vision"
)

type perceptApp struct {
	window  fyne.Window
	prefs   fyne.Preferences
	session *session.Session

	config  AppConfig
	applied session.Config

	tabs      *container.AppTabs
	textItem  *container.TabItem
	imageItem *container.TabItem
	text      *textTab
	image     *imageTab
	settings  *settingsTab

	panicNoticeOnce sync.Once
}

func newPerceptApp(w fyne.Window, prefs fyne.Preferences) *perceptApp {
	a := &perceptApp{
		window:  w,
		prefs:   prefs,
		config:  loadAppConfig(prefs),
		session: newDefaultSession(),
	}
	if err := a.applyConfig(); err != nil {
		logger.Error("Saved settings could not be applied; using defaults", "error", err)
		a.config = defaultAppConfig()
		if err := a.applyConfig(); err != nil {
			logger.Error("Default settings could not be applied", "error", err)
		}
	}
	a.setupUI()
	return a
}

func (a *perceptApp) setupUI() {
	a.text = newTextTab(a)
	a.image = newImageTab(a)
	a.settings = newSettingsTab(a)

	a.textItem = container.NewTabItemWithIcon("Text", theme.DocumentIcon(), a.text.content())
	a.imageItem = container.NewTabItemWithIcon("Image", theme.FileImageIcon(), a.image.content())
	a.tabs = container.NewAppTabs(
		a.textItem,
		a.imageItem,
		container.NewTabItemWithIcon("Settings", theme.SettingsIcon(), a.settings.content()),
		container.NewTabItemWithIcon("About", theme.InfoIcon(), buildAboutTab(a.window)),
	)
	a.window.SetContent(a.tabs)
}

// newDefaultSession starts on the local backends, so both tabs work even
// when the saved settings cannot be applied.
func newDefaultSession() *session.Session {
	s := session.New(nil, vision.NewHeuristicTagger(vision.Options{}))
	detector, err := session.NewDetector(session.DefaultConfig())
	if err != nil {
		logger.Error("Default language detector unavailable", "error", err)
		return s
	}
	s.SetDetector(detector)
	return s
}

// applyConfig rebuilds the detector and tagger from a.config. It runs on the
// UI goroutine; requests already in flight finish with the old backends.
func (a *perceptApp) applyConfig() error {
	cfg, notes := a.config.sessionConfig("")
	for _, note := range notes {
		logger.Warn("Adjusted setting", "note", note)
	}
	if cfg.IsRemote() {
		svc, err := auth.ParseService(string(cfg.Backend))
		if err != nil {
			return err
		}
		cfg.APIKey, _ = auth.GetKey(svc, false)
	}

	detector, err := session.NewDetector(cfg)
	if err != nil {
		return err
	}
	a.session.SetDetector(detector)

	if cfg.IsRemote() && cfg.APIKey == "" {
		logger.Info("No API key for backend; tagging disabled until one is saved", "backend", cfg.Backend)
		a.applied = cfg
		return nil
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	tagger, err := session.NewTagger(context.Background(), cfg)
	if err != nil {
		return err
	}
	a.session.ImageRequests.Cancel()
	if prev, ok := a.session.SetTagger(tagger).(io.Closer); ok {
		if err := prev.Close(); err != nil {
			logger.Warn("Failed to close previous backend", "error", err)
		}
	}
	a.applied = cfg
	logger.Info("Backend ready", "backend", cfg.Backend, "model", session.ModelOf(tagger, cfg.Model))
	return nil
}

// keyProblem returns a message when the selected backend cannot run for lack
// of an API key, or "" when tagging can proceed.
func (a *perceptApp) keyProblem() string {
	if !a.applied.IsRemote() || a.applied.APIKey != "" {
		return ""
	}
	svc, err := auth.ParseService(string(a.applied.Backend))
	if err != nil {
		return err.Error()
	}
	return fmt.Sprintf("Add a %s API key in Settings to use this backend.", svc.Label())
}

func (a *perceptApp) cancelAll(reason string) {
	text := a.session.TextRequests.Cancel()
	image := a.session.ImageRequests.Cancel()
	if text || image {
		logger.Warn("Cancellation requested", "reason", reason)
	}
}

func (a *perceptApp) handleDropped(uri fyne.URI) {
	path := uri.Path()
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range imagefile.Extensions() {
		if ext == e {
			a.tabs.Select(a.imageItem)
			a.image.start(path)
			return
		}
	}
	if subtitle.Supported(path) {
		a.tabs.Select(a.textItem)
		a.text.loadSubtitle(path)
		return
	}
	dialog.ShowInformation("Unsupported File", "Drop an image or a subtitle file.", a.window)
}

func main() {
	logger.Init(logger.LevelInfo, nil)
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Unrecovered GUI panic", "scope", "main", "panic", fmt.Sprint(r))
			os.Exit(1)
		}
	}()

	myApp := app.NewWithID("com.oukeidos.percept")
	myApp.SetIcon(appIcon())

	w := myApp.NewWindow("percept")
	w.SetIcon(appIcon())
	w.SetMaster()
	w.Resize(fyne.NewSize(720, 560))
	w.CenterOnScreen()

	pa := newPerceptApp(w, myApp.Preferences())
	w.SetCloseIntercept(func() {
		pa.cancelAll("window closed")
		if c, ok := pa.session.SetTagger(nil).(io.Closer); ok {
			cleanup.RegisterCloser("tagger", c)
		}
		if err := cleanup.RunAll(); err != nil {
			logger.Warn("Cleanup failed", "error", err)
		}
		w.SetCloseIntercept(nil)
		w.Close()
	})

	w.SetOnDropped(func(_ fyne.Position, uris []fyne.URI) {
		if len(uris) > 0 {
			pa.handleDropped(uris[0])
		}
	})

	w.ShowAndRun()
}
