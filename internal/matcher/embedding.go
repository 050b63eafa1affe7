package matcher

import (
	"math"
	"regexp"
	"strings"
)

var tokenRE = regexp.MustCompile(`[\p{L}\p{N}_']+`)

// Tokenize lower-cases text and splits it into word tokens.
func Tokenize(text string) []string {
	return tokenRE.FindAllString(strings.ToLower(text), -1)
}

// Vector is a sparse bag-of-words vector keyed by token.
type Vector map[string]float64

// Embed converts text into an L2-normalised term-frequency vector.
// Text with no tokens yields an empty vector.
func Embed(text string) Vector {
	counts := make(Vector)
	for _, tok := range Tokenize(text) {
		counts[tok]++
	}
	return counts.normalize()
}

func (v Vector) normalize() Vector {
	var sum float64
	for _, x := range v {
		sum += x * x
	}
	norm := math.Sqrt(sum)
	if norm == 0 {
		return v
	}
	for k, x := range v {
		v[k] = x / norm
	}
	return v
}

// Overlaps reports whether the two vectors share at least one token.
func (v Vector) Overlaps(other Vector) bool {
	small, large := v, other
	if len(small) > len(large) {
		small, large = large, small
	}
	for k := range small {
		if _, ok := large[k]; ok {
			return true
		}
	}
	return false
}

// Scorer computes the similarity between a query and a candidate vector.
// Implementations must return a value in [0,1].
type Scorer interface {
	Score(query, candidate Vector) float64
}

// CosineScorer scores by cosine similarity of normalised vectors.
type CosineScorer struct{}

func (CosineScorer) Score(query, candidate Vector) float64 {
	small, large := query, candidate
	if len(small) > len(large) {
		small, large = large, small
	}
	var dot float64
	for k, x := range small {
		dot += x * large[k]
	}
	return clamp(dot)
}

// OverlapScorer scores by the overlap coefficient of the two token sets:
// |A ∩ B| / min(|A|, |B|).
type OverlapScorer struct{}

func (OverlapScorer) Score(query, candidate Vector) float64 {
	if len(query) == 0 || len(candidate) == 0 {
		return 0
	}
	shared := 0
	for k := range query {
		if _, ok := candidate[k]; ok {
			shared++
		}
	}
	return clamp(float64(shared) / float64(min(len(query), len(candidate))))
}

func clamp(x float64) float64 {
	switch {
	case x < 0 || math.IsNaN(x):
		return 0
	case x > 1:
		return 1
	default:
		return x
	}
}
