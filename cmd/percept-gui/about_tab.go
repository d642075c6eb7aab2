package main

import (
	"net/url"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"github.com/oukeidos/percept/internal/language"
	"github.com/oukeidos/percept/internal/version"
)

const githubURL = "https://github.com/oukeidos/percept"

func buildAboutTab(_ fyne.Window) fyne.CanvasObject {
	aboutSection := container.NewVBox(
		widget.NewLabelWithStyle("About", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		widget.NewForm(
			widget.NewFormItem("App", widget.NewLabel(version.Name)),
			widget.NewFormItem("Version", widget.NewLabel(version.Version)),
			widget.NewFormItem("Commit", widget.NewLabel(version.Commit)),
			widget.NewFormItem("Build", widget.NewLabel(version.BuildDate)),
			widget.NewFormItem("Copyright", widget.NewLabel("(c) 2026 oukeidos")),
			widget.NewFormItem("Links", buildLinksRow()),
		),
	)

	langs := language.Supported()
	names := make([]string, len(langs))
	locale := language.CurrentLocale()
	for i, l := range langs {
		names[i] = language.DisplayName(l.Code, locale)
	}
	languageList := widget.NewList(
		func() int { return len(names) },
		func() fyne.CanvasObject { return widget.NewLabel("") },
		func(id widget.ListItemID, o fyne.CanvasObject) { o.(*widget.Label).SetText(names[id]) },
	)
	languagesScroll := container.NewVScroll(languageList)
	languagesScroll.SetMinSize(fyne.NewSize(0, 200))

	languagesSection := container.NewVBox(
		widget.NewLabelWithStyle("Detectable Languages", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		languagesScroll,
	)

	return container.NewPadded(container.NewVScroll(container.NewVBox(
		aboutSection,
		widget.NewSeparator(),
		languagesSection,
	)))
}

func buildLinksRow() fyne.CanvasObject {
	githubLink := newHyperlink("GitHub", githubURL)
	return container.NewHBox(githubLink)
}

func newHyperlink(label, raw string) *widget.Hyperlink {
	u, _ := url.Parse(raw)
	return widget.NewHyperlink(label, u)
}
