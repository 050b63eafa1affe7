package tracker

import (
	"fmt"
	"time"

	"foodlog/internal/model"
	"foodlog/internal/summary"
)

// DayReport is one calendar day's totals together with its entries.
type DayReport struct {
	Summary model.DaySummary `json:"summary"`
	Entries []*model.Entry   `json:"entries"`
}

// Summary returns per-day totals for every logged day, oldest first.
func (s *Service) Summary() ([]model.DaySummary, error) {
	entries, err := s.ListEntries()
	if err != nil {
		return nil, err
	}
	return summary.Summarize(entries, s.loc), nil
}

// EntriesForDay returns totals and entries for one calendar day (YYYY-MM-DD).
func (s *Service) EntriesForDay(day string) (*DayReport, error) {
	if _, err := time.ParseInLocation(summary.DayLayout, day, s.loc); err != nil {
		return nil, fmt.Errorf("%w: day must be YYYY-MM-DD: %q", ErrInvalidInput, day)
	}
	entries, err := s.ListEntries()
	if err != nil {
		return nil, err
	}
	sum, matched := summary.ForDay(entries, day, s.loc)
	return &DayReport{Summary: sum, Entries: matched}, nil
}

// Today returns the report for the current calendar day.
func (s *Service) Today() (*DayReport, error) {
	return s.EntriesForDay(summary.DayOf(s.clock.Now(), s.loc))
}

// Totals returns calories and macronutrients summed over all entries.
func (s *Service) Totals() (float64, map[string]float64, error) {
	entries, err := s.ListEntries()
	if err != nil {
		return 0, nil, err
	}
	calories, macros := summary.Totals(entries)
	return calories, macros, nil
}
