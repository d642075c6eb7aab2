package language

import (
	golocale "github.com/jeandeaual/go-locale"
	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

var getLocale = golocale.GetLocale

// CurrentLocale returns the user's OS locale, or English when it cannot be read.
func CurrentLocale() language.Tag {
	raw, err := getLocale()
	if err != nil || raw == "" {
		return language.English
	}
	tag, err := language.Parse(raw)
	if err != nil {
		return language.English
	}
	return tag
}

// ParseLocale parses a BCP 47 tag. An empty string selects CurrentLocale.
func ParseLocale(raw string) (language.Tag, error) {
	if raw == "" {
		return CurrentLocale(), nil
	}
	return language.Parse(raw)
}

// DisplayName returns the name of the language with the given code in locale.
// It falls back to the English name from Languages, then to the code itself.
func DisplayName(code string, locale language.Tag) string {
	if code == "" || code == Undetermined {
		return UnableToDetect
	}
	if tag, err := language.Parse(code); err == nil {
		if namer := display.Tags(locale); namer != nil {
			if name := namer.Name(tag); name != "" {
				return name
			}
		}
	}
	if lang, ok := Lookup(code); ok {
		return lang.Name
	}
	return code
}
