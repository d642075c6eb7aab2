// Package subtitle extracts dialogue text from subtitle files so their
// language can be detected.
package subtitle

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/asticode/go-astisub"
	"github.com/oukeidos/percept/internal/apperrors"
)

var (
	// Sound cues and speaker notes: (laughs), [music], （笑）, ［拍手］.
	cueNoteRegex = regexp.MustCompile(`\([^)]*\)|\[[^\]]*\]|（[^）]*）|［[^］]*］`)
	markupRegex  = regexp.MustCompile(`<[^>]*>|\{\\[^}]*\}`)
)

// Extensions lists the file types Load understands.
var Extensions = []string{".srt", ".vtt", ".ssa", ".ass", ".stl", ".ttml"}

// Cue is one timed subtitle entry.
type Cue struct {
	Index int
	Start time.Duration
	End   time.Duration
	Lines []string
}

// Supported reports whether the file extension is a known subtitle format.
func Supported(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range Extensions {
		if e == ext {
			return true
		}
	}
	return false
}

// Load reads the cues of a subtitle file. The format follows the extension.
func Load(path string) ([]Cue, error) {
	if !Supported(path) {
		return nil, apperrors.InvalidInput(
			fmt.Sprintf("Unsupported subtitle format (use one of %s).", strings.Join(Extensions, ", ")),
			fmt.Errorf("unsupported subtitle extension %q", filepath.Ext(path)),
		)
	}
	subs, err := astisub.OpenFile(path)
	if err != nil {
		return nil, apperrors.InvalidInput("The subtitle file could not be read.", err)
	}
	return fromAstisub(subs), nil
}

func fromAstisub(subs *astisub.Subtitles) []Cue {
	cues := make([]Cue, 0, len(subs.Items))
	for i, item := range subs.Items {
		lines := make([]string, 0, len(item.Lines))
		for _, l := range item.Lines {
			lines = append(lines, l.String())
		}
		cues = append(cues, Cue{
			Index: i + 1,
			Start: item.StartAt,
			End:   item.EndAt,
			Lines: lines,
		})
	}
	return cues
}

// Dialogue returns the spoken lines of cues in order. Markup and bracketed
// sound cues are removed, and a line repeated by the next cue (rolling
// captions) is kept once.
func Dialogue(cues []Cue) []string {
	var out []string
	for _, cue := range cues {
		for _, line := range cue.Lines {
			line = markupRegex.ReplaceAllString(line, "")
			line = cueNoteRegex.ReplaceAllString(line, "")
			line = strings.Join(strings.Fields(line), " ")
			line = strings.TrimLeft(line, "-–— ")
			if line == "" {
				continue
			}
			if n := len(out); n > 0 && out[n-1] == line {
				continue
			}
			out = append(out, line)
		}
	}
	return out
}

// Text loads a subtitle file and joins its dialogue into one text sample.
func Text(path string) (string, error) {
	cues, err := Load(path)
	if err != nil {
		return "", err
	}
	lines := Dialogue(cues)
	if len(lines) == 0 {
		return "", apperrors.InvalidInput(
			"The subtitle file has no dialogue text.",
			fmt.Errorf("%d cues without text", len(cues)),
		)
	}
	return strings.Join(lines, "\n"), nil
}
