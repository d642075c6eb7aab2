package language

import (
	"embed"
	"fmt"
	"math"
	"path"
	"sort"
	"strings"
	"sync"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

//go:embed profiles/*.txt
var profileFS embed.FS

const (
	maxGram = 3
	// smoothing is the additive (Lidstone) constant applied to every n-gram count.
	smoothing = 0.5
)

// profile holds n-gram counts for one language.
type profile struct {
	code   string
	counts map[string]int
	totals [maxGram + 1]int
}

// model is a naive Bayes classifier over character n-grams.
type model struct {
	profiles map[Script][]*profile
	vocab    [maxGram + 1]int
}

var loadDefaultModel = sync.OnceValues(func() (*model, error) {
	return loadModel(profileFS, "profiles")
})

// loadModel builds profiles from <dir>/<code>.txt files. Codes must be in Languages.
func loadModel(fsys embed.FS, dir string) (*model, error) {
	entries, err := fsys.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read profiles: %w", err)
	}

	m := &model{profiles: make(map[Script][]*profile)}
	vocab := make([]map[string]struct{}, maxGram+1)
	for n := range vocab {
		vocab[n] = make(map[string]struct{})
	}

	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || path.Ext(name) != ".txt" {
			continue
		}
		code := strings.TrimSuffix(name, ".txt")
		lang, ok := Lookup(code)
		if !ok {
			return nil, fmt.Errorf("profile %s has no language entry", name)
		}
		data, err := fsys.ReadFile(path.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("failed to read profile %s: %w", name, err)
		}

		p := &profile{code: code, counts: make(map[string]int)}
		forEachGram(normalize(string(data)), func(g string, n int) {
			p.counts[g]++
			p.totals[n]++
			vocab[n][g] = struct{}{}
		})
		m.profiles[lang.Script] = append(m.profiles[lang.Script], p)
	}

	for script := range m.profiles {
		sort.Slice(m.profiles[script], func(i, j int) bool {
			return m.profiles[script][i].code < m.profiles[script][j].code
		})
	}
	for n := 1; n <= maxGram; n++ {
		// +1 reserves mass for n-grams no profile has seen.
		m.vocab[n] = len(vocab[n]) + 1
	}
	return m, nil
}

// candidate is a scored language.
type candidate struct {
	code string
	prob float64
}

// classify scores text against the profiles for script and returns candidates
// sorted by posterior probability, highest first. It returns nil when the
// script has no profiles or the text yields no n-grams.
func (m *model) classify(text string, script Script) []candidate {
	profiles := m.profiles[script]
	if len(profiles) == 0 {
		return nil
	}

	var grams []string
	var orders []int
	forEachGram(normalize(text), func(g string, n int) {
		grams = append(grams, g)
		orders = append(orders, n)
	})
	if len(grams) == 0 {
		return nil
	}

	scores := make([]float64, len(profiles))
	for i, p := range profiles {
		var sum float64
		for k, g := range grams {
			n := orders[k]
			c := float64(p.counts[g])
			sum += math.Log((c + smoothing) / (float64(p.totals[n]) + smoothing*float64(m.vocab[n])))
		}
		scores[i] = sum
	}

	best := math.Inf(-1)
	for _, s := range scores {
		if s > best {
			best = s
		}
	}
	var z float64
	for _, s := range scores {
		z += math.Exp(s - best)
	}

	out := make([]candidate, len(profiles))
	for i, p := range profiles {
		out[i] = candidate{code: p.code, prob: math.Exp(scores[i]-best) / z}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].prob != out[j].prob {
			return out[i].prob > out[j].prob
		}
		return out[i].code < out[j].code
	})
	return out
}

// normalize composes the text (NFC), lowercases letters and turns everything
// else into single spaces.
func normalize(text string) string {
	text = norm.NFC.String(text)
	var b strings.Builder
	b.Grow(len(text))
	space := true
	for _, r := range text {
		if unicode.IsLetter(r) || unicode.Is(unicode.Mn, r) {
			b.WriteRune(unicode.ToLower(r))
			space = false
			continue
		}
		if !space {
			b.WriteByte(' ')
			space = true
		}
	}
	return strings.TrimSpace(b.String())
}

// forEachGram calls fn for every 1..maxGram character n-gram of each word,
// with words padded by a leading and trailing space.
func forEachGram(text string, fn func(g string, n int)) {
	for _, word := range strings.Fields(text) {
		runes := []rune(" " + word + " ")
		for n := 1; n <= maxGram; n++ {
			for i := 0; i+n <= len(runes); i++ {
				if n == 1 && runes[i] == ' ' {
					continue
				}
				fn(string(runes[i:i+n]), n)
			}
		}
	}
}
