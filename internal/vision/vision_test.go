package vision

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"reflect"
	"testing"

	"github.com/oukeidos/percept/internal/apperrors"
)

var (
	skyBlue   = color.RGBA{R: 70, G: 130, B: 220, A: 255}
	leafGreen = color.RGBA{R: 40, G: 160, B: 60, A: 255}
)

func fill(w, h int, at func(x, y int) color.RGBA) Buffer {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, at(x, y))
		}
	}
	return Buffer{Width: w, Height: h, Pix: img.Pix}
}

func landscape(w, h int) Buffer {
	return fill(w, h, func(_, y int) color.RGBA {
		if y < h/2 {
			return skyBlue
		}
		return leafGreen
	})
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name string
		buf  Buffer
	}{
		{name: "zero width", buf: Buffer{Width: 0, Height: 10, Pix: nil}},
		{name: "negative height", buf: Buffer{Width: 10, Height: -1}},
		{name: "short pixels", buf: Buffer{Width: 2, Height: 2, Pix: make([]byte, 15)}},
		{name: "long pixels", buf: Buffer{Width: 2, Height: 2, Pix: make([]byte, 17)}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.buf.Validate()
			if !apperrors.IsInvalidInput(err) {
				t.Fatalf("Validate() = %v, want invalid input", err)
			}
		})
	}

	ok := Buffer{Width: 2, Height: 2, Pix: make([]byte, 16)}
	if err := ok.Validate(); err != nil {
		t.Fatalf("Validate() on a well-formed buffer: %v", err)
	}
}

func TestHeuristicTagger_InvalidInput(t *testing.T) {
	tagger := NewHeuristicTagger(Options{})
	labels, err := tagger.Tag(context.Background(), Buffer{Width: 0, Height: 4})
	if !apperrors.IsInvalidInput(err) {
		t.Fatalf("Tag() error = %v, want invalid input", err)
	}
	if labels != nil {
		t.Fatalf("labels = %v, want nil on error", labels)
	}
}

func TestHeuristicTagger_UniformImage(t *testing.T) {
	tagger := NewHeuristicTagger(Options{})
	for _, c := range []color.RGBA{skyBlue, leafGreen, {A: 255}, {R: 255, G: 255, B: 255, A: 255}} {
		buf := fill(32, 32, func(_, _ int) color.RGBA { return c })
		labels, err := tagger.Tag(context.Background(), buf)
		if err != nil {
			t.Fatalf("Tag(%v) error: %v", c, err)
		}
		if labels == nil || len(labels) != 0 {
			t.Fatalf("Tag(%v) = %#v, want empty non-nil slice", c, labels)
		}
	}
}

func TestHeuristicTagger_Landscape(t *testing.T) {
	tagger := NewHeuristicTagger(Options{})
	for _, size := range []image.Point{{60, 60}, {200, 100}, {90, 300}} {
		labels, err := tagger.Tag(context.Background(), landscape(size.X, size.Y))
		if err != nil {
			t.Fatalf("Tag(%v) error: %v", size, err)
		}
		want := []string{"sky", "vegetation"}
		if !reflect.DeepEqual(labels, want) {
			t.Fatalf("Tag(%v) = %v, want %v", size, labels, want)
		}
	}
}

func TestHeuristicTagger_Options(t *testing.T) {
	buf := landscape(60, 60)

	capped := NewHeuristicTagger(Options{MaxLabels: 1})
	labels, err := capped.Tag(context.Background(), buf)
	if err != nil {
		t.Fatalf("Tag() error: %v", err)
	}
	if !reflect.DeepEqual(labels, []string{"sky"}) {
		t.Fatalf("MaxLabels=1: got %v", labels)
	}

	strict := NewHeuristicTagger(Options{Threshold: 0.9})
	labels, err = strict.Tag(context.Background(), buf)
	if err != nil {
		t.Fatalf("Tag() error: %v", err)
	}
	if !reflect.DeepEqual(labels, []string{"sky"}) {
		t.Fatalf("Threshold=0.9: got %v", labels)
	}
}

func TestHeuristicTagger_Document(t *testing.T) {
	page := fill(60, 60, func(_, y int) color.RGBA {
		if y%6 == 3 {
			return color.RGBA{R: 10, G: 10, B: 10, A: 255}
		}
		return color.RGBA{R: 250, G: 250, B: 250, A: 255}
	})
	labels, err := NewHeuristicTagger(Options{}).Tag(context.Background(), page)
	if err != nil {
		t.Fatalf("Tag() error: %v", err)
	}
	if !reflect.DeepEqual(labels, []string{"document"}) {
		t.Fatalf("Tag(page) = %v, want [document]", labels)
	}
}

func TestHeuristicTagger_Night(t *testing.T) {
	scene := fill(60, 60, func(x, y int) color.RGBA {
		if x%10 == 0 && y%6 == 0 {
			return color.RGBA{R: 255, G: 240, B: 200, A: 255}
		}
		return color.RGBA{R: 5, G: 5, B: 15, A: 255}
	})
	labels, err := NewHeuristicTagger(Options{}).Tag(context.Background(), scene)
	if err != nil {
		t.Fatalf("Tag() error: %v", err)
	}
	if !reflect.DeepEqual(labels, []string{"night"}) {
		t.Fatalf("Tag(night) = %v, want [night]", labels)
	}
}

func TestHeuristicTagger_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewHeuristicTagger(Options{}).Tag(ctx, landscape(10, 10))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Tag() error = %v, want context.Canceled", err)
	}
}

func TestHeuristicTagger_DoesNotModifyInput(t *testing.T) {
	buf := landscape(80, 40)
	before := append([]byte(nil), buf.Pix...)
	if _, err := NewHeuristicTagger(Options{}).Tag(context.Background(), buf); err != nil {
		t.Fatalf("Tag() error: %v", err)
	}
	if !bytes.Equal(before, buf.Pix) {
		t.Fatal("Tag() modified the caller's pixels")
	}
}

func TestRank(t *testing.T) {
	cands := []Candidate{
		{Label: "Dog", Confidence: 0.6},
		{Label: "dog ", Confidence: 0.9},
		{Label: "cat", Confidence: 0.9},
		{Label: "tree", Confidence: 0.2},
		{Label: "  ", Confidence: 0.99},
		{Label: "car", Confidence: 0.5},
	}
	got := Rank(cands, 0.3, 0)
	want := []string{"cat", "dog", "car"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Rank() = %v, want %v", got, want)
	}

	got = Rank(cands, 0.3, 2)
	if !reflect.DeepEqual(got, []string{"cat", "dog"}) {
		t.Fatalf("Rank(max=2) = %v", got)
	}

	got = Rank(nil, 0.3, 5)
	if got == nil || len(got) != 0 {
		t.Fatalf("Rank(nil) = %#v, want empty non-nil", got)
	}
}

func TestOptionsWithDefaults(t *testing.T) {
	got := Options{}.WithDefaults()
	if got.Threshold != DefaultThreshold || got.MaxLabels != DefaultMaxLabels {
		t.Fatalf("WithDefaults() = %+v", got)
	}
	got = Options{Threshold: 0.7, MaxLabels: 2}.WithDefaults()
	if got.Threshold != 0.7 || got.MaxLabels != 2 {
		t.Fatalf("WithDefaults() overwrote explicit values: %+v", got)
	}
}

func TestFromImage_Copies(t *testing.T) {
	src := image.NewRGBA(image.Rect(10, 10, 13, 12))
	src.SetRGBA(10, 10, skyBlue)

	buf := FromImage(src)
	if buf.Width != 3 || buf.Height != 2 {
		t.Fatalf("FromImage dims = %dx%d, want 3x2", buf.Width, buf.Height)
	}
	if err := buf.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if buf.Pix[0] != skyBlue.R || buf.Pix[2] != skyBlue.B {
		t.Fatalf("first pixel = %v, want %v", buf.Pix[:4], skyBlue)
	}

	src.SetRGBA(10, 10, leafGreen)
	if buf.Pix[0] != skyBlue.R {
		t.Fatal("FromImage shares memory with its source")
	}

	view := buf.RGBA()
	view.Pix[0] = 0
	if buf.Pix[0] != skyBlue.R {
		t.Fatal("RGBA() shares memory with the buffer")
	}
}

func TestEncodePNG(t *testing.T) {
	buf := landscape(8, 6)
	data, err := buf.EncodePNG()
	if err != nil {
		t.Fatalf("EncodePNG: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("png.Decode: %v", err)
	}
	if img.Bounds().Dx() != 8 || img.Bounds().Dy() != 6 {
		t.Fatalf("decoded bounds = %v", img.Bounds())
	}

	if _, err := (Buffer{}).EncodePNG(); !apperrors.IsInvalidInput(err) {
		t.Fatalf("EncodePNG on empty buffer: %v", err)
	}
}

func TestParseCandidates(t *testing.T) {
	tests := []struct {
		name    string
		reply   string
		want    []Candidate
		wantErr bool
	}{
		{
			name:  "object",
			reply: `{"labels":[{"label":"dog","confidence":0.92}]}`,
			want:  []Candidate{{Label: "dog", Confidence: 0.92}},
		},
		{
			name:  "fenced",
			reply: "```json\n{\"labels\":[{\"label\":\"cat\",\"confidence\":0.5}]}\n```",
			want:  []Candidate{{Label: "cat", Confidence: 0.5}},
		},
		{
			name:  "bare array",
			reply: `[{"label":"tree","confidence":0.4}]`,
			want:  []Candidate{{Label: "tree", Confidence: 0.4}},
		},
		{name: "prose", reply: "I see a dog.", wantErr: true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseCandidates(tc.reply)
			if (err != nil) != tc.wantErr {
				t.Fatalf("ParseCandidates() error = %v, wantErr %v", err, tc.wantErr)
			}
			if !tc.wantErr && !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("ParseCandidates() = %+v, want %+v", got, tc.want)
			}
		})
	}
}
