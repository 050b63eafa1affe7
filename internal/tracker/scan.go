package tracker

import (
	"errors"
	"fmt"

	"foodlog/internal/matcher"
)

// Scan ranks catalog foods against a free-text description and returns up to
// topK matches, best first. topK <= 0 returns every overlapping food.
// An empty result is not an error.
func (s *Service) Scan(text string, topK int) ([]matcher.Match, error) {
	if _, err := s.load(); err != nil {
		return nil, err
	}

	matches, err := s.matcher.Match(text, s.catalog.Foods())
	if err != nil {
		if errors.Is(err, matcher.ErrEmptyQuery) {
			return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
		}
		return nil, fmt.Errorf("matching foods: %w", err)
	}

	results := matches.Take(topK)
	s.logger.Debug("scanned description", "query", text, "matches", len(results))
	return results, nil
}

// ScanBulk scans each description in turn. It stops at the first failure.
func (s *Service) ScanBulk(texts []string, topK int) ([][]matcher.Match, error) {
	out := make([][]matcher.Match, 0, len(texts))
	for _, text := range texts {
		results, err := s.Scan(text, topK)
		if err != nil {
			return nil, fmt.Errorf("scanning %q: %w", text, err)
		}
		out = append(out, results)
	}
	return out, nil
}
