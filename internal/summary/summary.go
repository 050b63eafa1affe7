// Package summary aggregates logged entries into per-day nutrition totals.
package summary

import (
	"sort"
	"time"

	"foodlog/internal/model"
)

// DayLayout is the calendar date format used for DaySummary.Day.
const DayLayout = "2006-01-02"

// DayOf returns the calendar day of ts in loc, formatted with DayLayout.
func DayOf(ts time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	return ts.In(loc).Format(DayLayout)
}

// Summarize groups entries by the local calendar date of their timestamp and
// returns one summary per day, ascending. A nil loc means time.Local.
func Summarize(entries []*model.Entry, loc *time.Location) []model.DaySummary {
	byDay := make(map[string]*model.DaySummary)
	for _, e := range entries {
		day := DayOf(e.Timestamp, loc)
		s, ok := byDay[day]
		if !ok {
			s = newDay(day)
			byDay[day] = s
		}
		add(s, e)
	}

	days := make([]string, 0, len(byDay))
	for day := range byDay {
		days = append(days, day)
	}
	// DayLayout sorts lexically in date order.
	sort.Strings(days)

	out := make([]model.DaySummary, 0, len(days))
	for _, day := range days {
		out = append(out, *byDay[day])
	}
	return out
}

// ForDay returns the summary and entries for a single calendar day.
// A day with no entries yields a zero summary and an empty entry list.
func ForDay(entries []*model.Entry, day string, loc *time.Location) (model.DaySummary, []*model.Entry) {
	s := newDay(day)
	matched := []*model.Entry{}
	for _, e := range entries {
		if DayOf(e.Timestamp, loc) != day {
			continue
		}
		add(s, e)
		matched = append(matched, e)
	}
	return *s, matched
}

// Totals sums calories and macronutrients across all entries.
func Totals(entries []*model.Entry) (float64, map[string]float64) {
	s := newDay("")
	for _, e := range entries {
		add(s, e)
	}
	return s.TotalCalories, s.TotalMacronutrients
}

func newDay(day string) *model.DaySummary {
	return &model.DaySummary{
		Day:                 day,
		TotalMacronutrients: map[string]float64{},
	}
}

func add(s *model.DaySummary, e *model.Entry) {
	s.TotalCalories += e.Calories
	for nutrient, grams := range e.Macronutrients {
		s.TotalMacronutrients[nutrient] += grams
	}
	s.EntryCount++
}
