package main

import (
	"context"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"github.com/oukeidos/percept/internal/imagefile"
	"github.com/oukeidos/percept/internal/logger"
	"github.com/oukeidos/percept/internal/session"
)

// imagePresentation is what the image tab renders for one ImageView.
type imagePresentation struct {
	Hidden  bool
	Heading string
	Items   []string
	IsError bool
}

func presentImage(view session.ImageView) imagePresentation {
	switch {
	case view.NoSelection:
		return imagePresentation{Hidden: true}
	case view.Err != nil:
		return imagePresentation{Heading: view.Message, IsError: true}
	case len(view.Labels) == 0:
		return imagePresentation{Heading: session.NothingRecognized}
	default:
		return imagePresentation{Heading: session.RecognizedHeading, Items: view.Labels}
	}
}

func bulletList(items []string) string {
	var b strings.Builder
	for i, item := range items {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString("• ")
		b.WriteString(item)
	}
	return b.String()
}

type imageTab struct {
	app       *perceptApp
	selectBtn *widget.Button
	cancelBtn *widget.Button
	progress  *widget.ProgressBarInfinite
	preview   *canvas.Image
	heading   *widget.Label
	labels    *widget.Label
}

func newImageTab(a *perceptApp) *imageTab {
	t := &imageTab{app: a}
	t.selectBtn = widget.NewButtonWithIcon("Select an Image", theme.FolderOpenIcon(), t.showFilePicker)
	t.selectBtn.Importance = widget.HighImportance
	t.cancelBtn = widget.NewButtonWithIcon("Cancel", theme.CancelIcon(), t.cancel)
	t.cancelBtn.Hide()
	t.progress = widget.NewProgressBarInfinite()
	t.progress.Stop()
	t.progress.Hide()

	t.preview = canvas.NewImageFromResource(nil)
	t.preview.FillMode = canvas.ImageFillContain
	t.preview.SetMinSize(fyne.NewSize(320, 240))

	t.heading = widget.NewLabelWithStyle("", fyne.TextAlignLeading, fyne.TextStyle{Bold: true})
	t.heading.Hide()
	t.labels = widget.NewLabel("")
	t.labels.Hide()
	return t
}

func (t *imageTab) content() fyne.CanvasObject {
	top := container.NewHBox(t.selectBtn, t.cancelBtn)
	results := container.NewVBox(t.progress, t.heading, t.labels)
	return container.NewPadded(container.NewBorder(
		top,
		container.NewVScroll(results),
		nil, nil,
		t.preview,
	))
}

func (t *imageTab) showFilePicker() {
	fd := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil {
			logger.Warn("File dialog failed", "error", err)
			return
		}
		if reader == nil {
			logger.Debug("Image selection cancelled")
			return
		}
		path := reader.URI().Path()
		reader.Close()
		t.start(path)
	}, t.app.window)
	fd.SetFilter(storage.NewExtensionFileFilter(imagefile.Extensions()))
	fd.Resize(fyne.NewSize(800, 600))
	fd.Show()
}

// start loads and tags path off the UI goroutine. Selecting another image
// before this one finishes cancels it and its result is never shown.
func (t *imageTab) start(path string) {
	if msg := t.app.keyProblem(); msg != "" {
		t.render(imagePresentation{Heading: msg, IsError: true})
		return
	}

	ctx, ticket := t.app.session.ImageRequests.Begin(context.Background())
	logger.Info("Tagging image", "request_id", ticket.RequestID)
	t.setBusy(true)
	t.app.safeGo("image.tag", func() {
		sel := session.SelectFile(path)
		view := t.app.session.TagImage(ctx, sel)
		if !t.app.session.ImageRequests.Finish(ticket) {
			logger.Debug("Discarding superseded image result", "request_id", ticket.RequestID)
			return
		}
		t.app.safeDo("image.show", func() {
			if !t.app.session.ImageRequests.IsCurrent(ticket.ID) {
				return
			}
			t.setBusy(false)
			t.setPreview(sel)
			t.render(presentImage(view))
		})
	})
}

func (t *imageTab) cancel() {
	if t.app.session.ImageRequests.Cancel() {
		logger.Warn("Cancellation requested", "reason", "user")
	}
	t.setBusy(false)
	t.render(imagePresentation{Hidden: true})
}

func (t *imageTab) setBusy(busy bool) {
	if busy {
		t.heading.Hide()
		t.labels.Hide()
		t.progress.Show()
		t.progress.Start()
		t.cancelBtn.Show()
		return
	}
	t.progress.Stop()
	t.progress.Hide()
	t.cancelBtn.Hide()
}

func (t *imageTab) setPreview(sel session.Selection) {
	if sel.Buffer == nil {
		t.preview.Image = nil
		t.preview.Resource = nil
	} else {
		t.preview.Image = sel.Buffer.RGBA()
	}
	t.preview.Refresh()
}

func (t *imageTab) render(p imagePresentation) {
	if p.Hidden {
		t.heading.Hide()
		t.labels.Hide()
		return
	}
	t.heading.SetText(p.Heading)
	if p.IsError {
		t.heading.Importance = widget.DangerImportance
	} else {
		t.heading.Importance = widget.MediumImportance
	}
	t.heading.Show()
	t.heading.Refresh()

	if len(p.Items) == 0 {
		t.labels.Hide()
		return
	}
	t.labels.SetText(bulletList(p.Items))
	t.labels.Show()
}
