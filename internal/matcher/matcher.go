package matcher

import (
	"errors"
	"iter"
	"sort"
	"strings"

	"foodlog/internal/model"
)

// ErrEmptyQuery is returned when a query has no non-space characters.
var ErrEmptyQuery = errors.New("query is empty")

// phraseConfidence is the floor applied when the query literally contains a
// food's name or one of its aliases.
const phraseConfidence = 0.99

// Match is a scored candidate food.
type Match struct {
	Food       model.Food `json:"food"`
	Confidence float64    `json:"confidence"`
}

// Matcher ranks reference foods against free-text queries.
type Matcher struct {
	scorer Scorer
}

// New creates a Matcher using the given scorer. A nil scorer selects CosineScorer.
func New(scorer Scorer) *Matcher {
	if scorer == nil {
		scorer = CosineScorer{}
	}
	return &Matcher{scorer: scorer}
}

// Match scores every food against query and returns the overlapping ones,
// highest confidence first. Ties keep dataset order.
func (m *Matcher) Match(query string, foods []model.Food) (*Matches, error) {
	if strings.TrimSpace(query) == "" {
		return nil, ErrEmptyQuery
	}

	q := Embed(query)
	lowered := " " + strings.Join(Tokenize(query), " ") + " "

	var scored []Match
	for _, food := range foods {
		v := Embed(representation(food))
		if !q.Overlaps(v) {
			continue
		}
		confidence := m.scorer.Score(q, v)
		if containsPhrase(lowered, food) {
			confidence = max(confidence, phraseConfidence)
		}
		scored = append(scored, Match{Food: food, Confidence: clamp(confidence)})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Confidence > scored[j].Confidence
	})

	return &Matches{items: scored}, nil
}

// representation is the text a food is embedded from: its name and aliases.
func representation(food model.Food) string {
	parts := make([]string, 0, len(food.Aliases)+1)
	parts = append(parts, food.Name)
	parts = append(parts, food.Aliases...)
	return strings.Join(parts, " ")
}

// containsPhrase reports whether the token-joined query contains the food's
// name or an alias as a whole-word phrase.
func containsPhrase(paddedQuery string, food model.Food) bool {
	candidates := append([]string{food.Name}, food.Aliases...)
	for _, c := range candidates {
		toks := Tokenize(c)
		if len(toks) == 0 {
			continue
		}
		if strings.Contains(paddedQuery, " "+strings.Join(toks, " ")+" ") {
			return true
		}
	}
	return false
}

// Matches is a finite, single-pass sequence of ranked matches.
// Once consumed it yields nothing further.
type Matches struct {
	items []Match
	pos   int
}

// Next returns the next match, or false when the sequence is exhausted.
func (s *Matches) Next() (Match, bool) {
	if s == nil || s.pos >= len(s.items) {
		return Match{}, false
	}
	m := s.items[s.pos]
	s.pos++
	return m, true
}

// Len returns the number of matches not yet consumed.
func (s *Matches) Len() int {
	if s == nil {
		return 0
	}
	return len(s.items) - s.pos
}

// All yields the remaining matches, consuming them.
func (s *Matches) All() iter.Seq[Match] {
	return func(yield func(Match) bool) {
		for {
			m, ok := s.Next()
			if !ok || !yield(m) {
				return
			}
		}
	}
}

// Take consumes up to k matches and returns them. k <= 0 takes everything left.
func (s *Matches) Take(k int) []Match {
	out := []Match{}
	for m := range s.All() {
		out = append(out, m)
		if k > 0 && len(out) == k {
			break
		}
	}
	return out
}
