// Package matcher scores recognized tokens against the configured keywords.
// Recognition output is noisy ("jupiter" for "jupyter"), so matching is
// fuzzy: tokens and keywords are normalized and compared with Jaro-Winkler
// similarity, and a match requires the score to clear a threshold.
package matcher

import (
	"strings"
	"unicode"

	"github.com/adrg/strutil"
	"github.com/adrg/strutil/metrics"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"horch/config"
)

// DefaultThreshold is the minimum similarity for a token to count as a match.
const DefaultThreshold = 0.86

// Match is one confirmed keyword hit for a token.
type Match struct {
	Keyword    string
	Script     string
	Token      string
	Similarity float64
}

// Matcher holds the configured bindings with pre-normalized keyword forms.
// Safe for concurrent use.
type Matcher struct {
	bindings   []config.Binding
	normalized []string
	threshold  float64
	metric     *metrics.JaroWinkler
}

func New(bindings []config.Binding, threshold float64) *Matcher {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	m := &Matcher{
		bindings:   bindings,
		normalized: make([]string, len(bindings)),
		threshold:  threshold,
		metric:     metrics.NewJaroWinkler(),
	}
	for i, b := range bindings {
		m.normalized[i] = Normalize(b.Keyword)
	}
	return m
}

// Match returns the best-scoring keyword for token, or ok=false when no
// keyword reaches the threshold. Equal maxima resolve to the keyword
// configured earliest, so results are reproducible.
func (m *Matcher) Match(token string) (Match, bool) {
	tok := Normalize(token)
	if tok == "" {
		return Match{}, false
	}

	best := -1
	bestSim := 0.0
	for i, kw := range m.normalized {
		sim := strutil.Similarity(tok, kw, m.metric)
		if sim > bestSim {
			bestSim = sim
			best = i
		}
	}
	if best < 0 || bestSim < m.threshold {
		return Match{}, false
	}
	return Match{
		Keyword:    m.bindings[best].Keyword,
		Script:     m.bindings[best].Script,
		Token:      token,
		Similarity: bestSim,
	}, true
}

// german digraph replacements, applied before generic diacritic stripping so
// umlauts keep their orthographic expansion instead of losing the mark.
var germanFold = strings.NewReplacer(
	"ä", "ae",
	"ö", "oe",
	"ü", "ue",
	"ß", "ss",
)

// Normalize lowercases a token, expands German umlauts and ß, strips any
// remaining combining marks, and drops everything that is not a letter or
// digit.
func Normalize(token string) string {
	s := germanFold.Replace(strings.ToLower(strings.TrimSpace(token)))

	// NFD exposes combining marks so runes.Remove can strip accents
	// (é→e); the chain transformer is stateful, so build one per call.
	fold := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	if folded, _, err := transform.String(fold, s); err == nil {
		s = folded
	}

	var b strings.Builder
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}
