package session

import (
	"context"
	"encoding/json"
	"errors"
	"image/color"
	"reflect"
	"strings"
	"testing"

	"github.com/oukeidos/percept/internal/apperrors"
	"github.com/oukeidos/percept/internal/imagefile"
	"github.com/oukeidos/percept/internal/language"
	"github.com/oukeidos/percept/internal/vision"
	xlanguage "golang.org/x/text/language"
)

type fakeTagger struct {
	labels []string
	err    error
	calls  int
}

func (f *fakeTagger) Tag(ctx context.Context, img vision.Buffer) ([]string, error) {
	f.calls++
	if err := img.Validate(); err != nil {
		return nil, err
	}
	return f.labels, f.err
}

func newTestSession(t *testing.T, tagger vision.Tagger) *Session {
	t.Helper()
	d, err := language.NewDetector(language.Options{Locale: xlanguage.English})
	if err != nil {
		t.Fatalf("NewDetector: %v", err)
	}
	return New(d, tagger)
}

func landscape(w, h int) *vision.Buffer {
	pix := make([]byte, w*h*vision.BytesPerPixel)
	for y := 0; y < h; y++ {
		c := color.RGBA{R: 70, G: 130, B: 220, A: 255}
		if y >= h/2 {
			c = color.RGBA{R: 40, G: 160, B: 60, A: 255}
		}
		for x := 0; x < w; x++ {
			i := (y*w + x) * vision.BytesPerPixel
			pix[i], pix[i+1], pix[i+2], pix[i+3] = c.R, c.G, c.B, c.A
		}
	}
	return &vision.Buffer{Width: w, Height: h, Pix: pix}
}

func TestDetectText(t *testing.T) {
	s := newTestSession(t, &fakeTagger{})

	view := s.DetectText("Bonjour tout le monde")
	if view.Result.Code != "fr" || view.Message != "Detected Language: French" {
		t.Fatalf("DetectText(French) = %+v", view)
	}

	view = s.DetectText("   ")
	if !view.Result.IsUndetermined() || view.Message != "Detected Language: unable to detect" {
		t.Fatalf("DetectText(blank) = %+v", view)
	}
	if view.Input != "   " {
		t.Fatalf("Input not preserved: %q", view.Input)
	}
}

func TestDetectText_NoDetector(t *testing.T) {
	view := New(nil, nil).DetectText("Bonjour tout le monde")
	if !view.Result.IsUndetermined() || view.Message != "Detected Language: unable to detect" {
		t.Fatalf("DetectText without detector = %+v", view)
	}
}

func TestTagImage_States(t *testing.T) {
	boom := errors.New("socket closed: SECRET")
	tests := []struct {
		name        string
		tagger      *fakeTagger
		sel         Selection
		wantLabels  []string
		wantMessage string
		wantNoSel   bool
		wantErr     bool
		wantCalls   int
	}{
		{
			name:        "labels",
			tagger:      &fakeTagger{labels: []string{"sky", "vegetation"}},
			sel:         Selection{Buffer: landscape(4, 4)},
			wantLabels:  []string{"sky", "vegetation"},
			wantMessage: RecognizedHeading,
			wantCalls:   1,
		},
		{
			name:        "nothing recognized",
			tagger:      &fakeTagger{labels: []string{}},
			sel:         Selection{Buffer: landscape(4, 4)},
			wantLabels:  []string{},
			wantMessage: NothingRecognized,
			wantCalls:   1,
		},
		{
			name:      "cancelled pick",
			tagger:    &fakeTagger{},
			sel:       Selection{Err: imagefile.ErrNoSelection},
			wantNoSel: true,
		},
		{
			name:      "empty selection",
			tagger:    &fakeTagger{},
			sel:       Selection{},
			wantNoSel: true,
		},
		{
			name:        "decode failure",
			tagger:      &fakeTagger{},
			sel:         Selection{Err: apperrors.InvalidInput("The image data is unreadable.", errors.New("bad huffman"))},
			wantMessage: "The image data is unreadable.",
			wantErr:     true,
		},
		{
			name:        "zero width",
			tagger:      &fakeTagger{},
			sel:         Selection{Buffer: &vision.Buffer{Width: 0, Height: 3}},
			wantMessage: "The image has no pixels.",
			wantErr:     true,
			wantCalls:   1,
		},
		{
			name:        "unclassified backend error",
			tagger:      &fakeTagger{err: boom},
			sel:         Selection{Buffer: landscape(2, 2)},
			wantMessage: "Image recognition failed.",
			wantErr:     true,
			wantCalls:   1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestSession(t, tt.tagger)
			view := s.TagImage(context.Background(), tt.sel)
			if !reflect.DeepEqual(view.Labels, tt.wantLabels) {
				t.Fatalf("Labels = %#v, want %#v", view.Labels, tt.wantLabels)
			}
			if view.Message != tt.wantMessage {
				t.Fatalf("Message = %q, want %q", view.Message, tt.wantMessage)
			}
			if view.NoSelection != tt.wantNoSel {
				t.Fatalf("NoSelection = %v, want %v", view.NoSelection, tt.wantNoSel)
			}
			if (view.Err != nil) != tt.wantErr {
				t.Fatalf("Err = %v, wantErr %v", view.Err, tt.wantErr)
			}
			if tt.tagger.calls != tt.wantCalls {
				t.Fatalf("tagger calls = %d, want %d", tt.tagger.calls, tt.wantCalls)
			}
			if strings.Contains(view.Message, "SECRET") {
				t.Fatalf("message leaks internal error: %q", view.Message)
			}
		})
	}
}

func TestTagImage_HeuristicEndToEnd(t *testing.T) {
	s := newTestSession(t, vision.NewHeuristicTagger(vision.Options{}))
	view := s.TagImage(context.Background(), Selection{Buffer: landscape(60, 60)})
	if view.Err != nil {
		t.Fatalf("unexpected error: %v", view.Err)
	}
	if !reflect.DeepEqual(view.Labels, []string{"sky", "vegetation"}) {
		t.Fatalf("Labels = %v", view.Labels)
	}
}

func TestTagImage_Cancelled(t *testing.T) {
	s := newTestSession(t, vision.NewHeuristicTagger(vision.Options{}))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	view := s.TagImage(ctx, Selection{Buffer: landscape(8, 8)})
	if !errors.Is(view.Err, context.Canceled) || view.Message != canceledMessage {
		t.Fatalf("TagImage(cancelled) = %+v", view)
	}
}

func TestReports(t *testing.T) {
	s := newTestSession(t, &fakeTagger{})
	text := NewTextReport("note.txt", s.DetectText("Bonjour tout le monde"))
	data, err := MarshalReport(text)
	if err != nil {
		t.Fatalf("MarshalReport: %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	lang, ok := decoded["language"].(map[string]any)
	if !ok || lang["language_code"] != "fr" || decoded["id"] == "" || decoded["source"] != "note.txt" {
		t.Fatalf("unexpected text report: %s", data)
	}

	cfg, _ := DefaultConfig().Normalize()
	img := NewImageReport("photo.png", cfg, ImageView{Message: NothingRecognized})
	data, err = MarshalReport(img)
	if err != nil {
		t.Fatalf("MarshalReport: %v", err)
	}
	if !strings.Contains(string(data), `"labels": []`) {
		t.Fatalf("expected empty labels array, got %s", data)
	}
	if strings.Contains(string(data), `"error"`) {
		t.Fatalf("unexpected error field: %s", data)
	}

	failed := NewImageReport("photo.png", cfg, ImageView{Err: errors.New("raw"), Message: unexpectedFailure})
	if failed.Error != unexpectedFailure {
		t.Fatalf("Error = %q", failed.Error)
	}
}

func TestSetTagger(t *testing.T) {
	first := &fakeTagger{labels: []string{"cat"}}
	second := &fakeTagger{labels: []string{"dog"}}
	s := newTestSession(t, first)

	if prev := s.SetTagger(second); prev != first {
		t.Fatalf("SetTagger returned %v, want the previous tagger", prev)
	}
	view := s.TagImage(context.Background(), Selection{Buffer: landscape(2, 2)})
	if !reflect.DeepEqual(view.Labels, []string{"dog"}) || first.calls != 0 {
		t.Fatalf("TagImage used the replaced tagger: %+v", view)
	}

	d, err := language.NewDetector(language.Options{Locale: xlanguage.German})
	if err != nil {
		t.Fatal(err)
	}
	s.SetDetector(d)
	if got := s.DetectText("Bonjour tout le monde").Message; got != "Detected Language: Französisch" {
		t.Fatalf("DetectText after SetDetector = %q", got)
	}
}
