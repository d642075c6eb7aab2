package main

import (
	"context"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"github.com/oukeidos/percept/internal/apperrors"
	"github.com/oukeidos/percept/internal/logger"
	"github.com/oukeidos/percept/internal/session"
	"github.com/oukeidos/percept/internal/subtitle"
)

type textTab struct {
	app    *perceptApp
	entry  *widget.Entry
	button *widget.Button
	result *widget.Label
}

func newTextTab(a *perceptApp) *textTab {
	t := &textTab{app: a}
	t.entry = widget.NewMultiLineEntry()
	t.entry.SetPlaceHolder("Enter text")
	t.entry.Wrapping = fyne.TextWrapWord
	t.entry.SetMinRowsVisible(6)

	t.button = widget.NewButton("Detect Language", t.detect)
	t.button.Importance = widget.HighImportance

	t.result = widget.NewLabelWithStyle("", fyne.TextAlignLeading, fyne.TextStyle{Bold: true})
	t.result.Hide()
	return t
}

func (t *textTab) content() fyne.CanvasObject {
	return container.NewPadded(container.NewBorder(
		nil,
		container.NewVBox(t.button, t.result),
		nil, nil,
		t.entry,
	))
}

// detect runs off the UI goroutine; a result is shown only if no newer
// detection started meanwhile.
func (t *textTab) detect() {
	text := t.entry.Text
	_, ticket := t.app.session.TextRequests.Begin(context.Background())
	t.app.safeGo("text.detect", func() {
		view := t.app.session.DetectText(text)
		if !t.app.session.TextRequests.Finish(ticket) {
			logger.Debug("Discarding superseded detection", "request_id", ticket.RequestID)
			return
		}
		t.app.safeDo("text.show", func() {
			if !t.app.session.TextRequests.IsCurrent(ticket.ID) {
				return
			}
			t.show(view)
		})
	})
}

func (t *textTab) show(view session.TextView) {
	if view.Message == "" {
		t.result.Hide()
		return
	}
	t.result.SetText(view.Message)
	t.result.Show()
}

func (t *textTab) loadSubtitle(path string) {
	t.app.safeGo("text.subtitle", func() {
		text, err := subtitle.Text(path)
		t.app.safeDo("text.subtitle.show", func() {
			if err != nil {
				logger.Warn("Subtitle load failed", "path", path, "error", err)
				dialog.ShowInformation("Subtitle", apperrors.PublicMessage(err), t.app.window)
				return
			}
			t.entry.SetText(text)
			t.detect()
		})
	})
}
