package vision

import (
	"context"
	"image"
	"math"

	"github.com/oukeidos/percept/internal/logger"
	"golang.org/x/image/draw"
)

const (
	// analysisSize bounds the longer side of the grid the heuristics run on.
	analysisSize = 64
	// uniformSpread is the per-channel standard deviation (0..1) below which an
	// image is treated as a single flat colour with nothing to recognize.
	uniformSpread = 0.02
)

// HeuristicTagger labels broad scene elements from colour statistics. It needs
// no model and no network, and serves as the default local backend.
type HeuristicTagger struct {
	opts Options
}

var _ Tagger = (*HeuristicTagger)(nil)

// NewHeuristicTagger returns a local colour-statistics tagger.
func NewHeuristicTagger(opts Options) *HeuristicTagger {
	return &HeuristicTagger{opts: opts.WithDefaults()}
}

// Tag implements Tagger.
func (t *HeuristicTagger) Tag(ctx context.Context, img Buffer) ([]string, error) {
	if err := img.Validate(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	grid := downsample(img)
	stats := measure(grid)
	if stats.uniform {
		logger.Debug("Image is uniform; no labels", "width", img.Width, "height", img.Height)
		return []string{}, nil
	}
	cands := stats.candidates()
	logger.Debug("Heuristic candidates", "count", len(cands))
	return Rank(cands, t.opts.Threshold, t.opts.MaxLabels), nil
}

// downsample scales the buffer so its longer side is at most analysisSize.
func downsample(b Buffer) *image.RGBA {
	w, h := b.Width, b.Height
	if w > analysisSize || h > analysisSize {
		if w >= h {
			h = max(1, h*analysisSize/w)
			w = analysisSize
		} else {
			w = max(1, w*analysisSize/h)
			h = analysisSize
		}
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	src := b.view()
	if w == b.Width && h == b.Height {
		draw.Draw(dst, dst.Bounds(), src, image.Point{}, draw.Src)
		return dst
	}
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	return dst
}

// hsv is one analysed pixel. Hue is in degrees, saturation and value in 0..1.
type hsv struct {
	h, s, v float64
}

func toHSV(r, g, b uint8) hsv {
	rf, gf, bf := float64(r)/255, float64(g)/255, float64(b)/255
	mx := math.Max(rf, math.Max(gf, bf))
	mn := math.Min(rf, math.Min(gf, bf))
	d := mx - mn

	var h float64
	switch {
	case d == 0:
		h = 0
	case mx == rf:
		h = 60 * math.Mod((gf-bf)/d, 6)
	case mx == gf:
		h = 60 * ((bf-rf)/d + 2)
	default:
		h = 60 * ((rf-gf)/d + 4)
	}
	if h < 0 {
		h += 360
	}
	var s float64
	if mx > 0 {
		s = d / mx
	}
	return hsv{h: h, s: s, v: mx}
}

func (p hsv) blue() bool  { return p.h >= 190 && p.h <= 250 && p.s >= 0.25 && p.v >= 0.35 }
func (p hsv) green() bool { return p.h >= 70 && p.h <= 170 && p.s >= 0.25 && p.v >= 0.15 }
func (p hsv) sandy() bool { return p.h >= 25 && p.h <= 55 && p.s >= 0.15 && p.s <= 0.65 && p.v >= 0.55 }
func (p hsv) white() bool { return p.s <= 0.12 && p.v >= 0.85 }
func (p hsv) dark() bool  { return p.v <= 0.25 }
func (p hsv) warm() bool  { return (p.h <= 40 || p.h >= 330) && p.s >= 0.45 && p.v >= 0.45 }

// regionCounts tallies pixel classes inside one horizontal band.
type regionCounts struct {
	total, blue, green, sandy, white, dark, warm int
}

func (c *regionCounts) add(p hsv) {
	c.total++
	if p.blue() {
		c.blue++
	}
	if p.green() {
		c.green++
	}
	if p.sandy() {
		c.sandy++
	}
	if p.white() {
		c.white++
	}
	if p.dark() {
		c.dark++
	}
	if p.warm() {
		c.warm++
	}
}

func frac(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(n) / float64(total)
}

type sceneStats struct {
	uniform bool
	meanV   float64
	top     regionCounts // upper third
	upper   regionCounts // upper half
	lower   regionCounts // lower half
	all     regionCounts
}

func measure(img *image.RGBA) sceneStats {
	var stats sceneStats
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	var sum, sumSq [3]float64
	var sumV float64
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := img.PixOffset(x, y)
			r, g, b := img.Pix[i], img.Pix[i+1], img.Pix[i+2]
			for c, v := range [3]uint8{r, g, b} {
				f := float64(v) / 255
				sum[c] += f
				sumSq[c] += f * f
			}
			p := toHSV(r, g, b)
			sumV += p.v
			stats.all.add(p)
			if y < (h+2)/3 {
				stats.top.add(p)
			}
			if y < (h+1)/2 {
				stats.upper.add(p)
			} else {
				stats.lower.add(p)
			}
		}
	}

	n := float64(w * h)
	stats.meanV = sumV / n
	stats.uniform = true
	for c := 0; c < 3; c++ {
		mean := sum[c] / n
		variance := sumSq[c]/n - mean*mean
		if variance > 0 && math.Sqrt(variance) >= uniformSpread {
			stats.uniform = false
		}
	}
	return stats
}

func (s sceneStats) candidates() []Candidate {
	darkAll := frac(s.all.dark, s.all.total)
	whiteAll := frac(s.all.white, s.all.total)

	cands := []Candidate{
		{Label: "sky", Confidence: frac(s.top.blue, s.top.total)},
		{Label: "water", Confidence: 0.9 * frac(s.lower.blue, s.lower.total)},
		{Label: "vegetation", Confidence: frac(s.all.green, s.all.total)},
		{Label: "sand", Confidence: frac(s.lower.sandy, s.lower.total)},
		{Label: "sunset", Confidence: frac(s.upper.warm, s.upper.total)},
	}
	switch {
	case whiteAll >= 0.5 && darkAll >= 0.03 && darkAll <= 0.4:
		cands = append(cands, Candidate{Label: "document", Confidence: math.Min(1, whiteAll+darkAll)})
	case darkAll < 0.03:
		cands = append(cands, Candidate{Label: "snow", Confidence: 0.9 * whiteAll})
	}
	if s.meanV < 0.25 {
		cands = append(cands, Candidate{Label: "night", Confidence: darkAll})
	}
	return cands
}
