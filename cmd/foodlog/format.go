package main

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"foodlog/internal/matcher"
	"foodlog/internal/model"
)

// formatMacros renders a macronutrient map as "carbs 12g, fat 18g, protein 32g".
// Keys are sorted so output is stable.
func formatMacros(macros map[string]float64) string {
	if len(macros) == 0 {
		return "-"
	}
	keys := make([]string, 0, len(macros))
	for k := range macros {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s %sg", k, formatNumber(macros[k])))
	}
	return strings.Join(parts, ", ")
}

// formatNumber drops trailing zeros: 2 -> "2", 1.50 -> "1.5".
func formatNumber(v float64) string {
	s := fmt.Sprintf("%.2f", v)
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}

func printMatches(w io.Writer, matches []matcher.Match) {
	if len(matches) == 0 {
		fmt.Fprintln(w, "No matching foods.")
		return
	}
	for i, m := range matches {
		fmt.Fprintf(w, "%d. %-30s  %5.0f%%  %s kcal / %s\n",
			i+1,
			m.Food.Name,
			m.Confidence*100,
			formatNumber(m.Food.Calories),
			m.Food.ServingSize,
		)
	}
}

// printEntry shows the entry's time in loc, the zone its day is counted in.
func printEntry(w io.Writer, e *model.Entry, loc *time.Location) {
	fmt.Fprintf(w, "%s  %s  x%s  %s kcal  (%s)\n",
		e.Timestamp.In(loc).Format("2006-01-02 15:04"),
		e.Food.Name,
		formatNumber(e.Quantity),
		formatNumber(e.Calories),
		formatMacros(e.Macronutrients),
	)
}

func printEntries(w io.Writer, entries []*model.Entry, loc *time.Location) {
	if len(entries) == 0 {
		fmt.Fprintln(w, "No entries logged.")
		return
	}
	for _, e := range entries {
		printEntry(w, e, loc)
	}
}

func printDay(w io.Writer, d model.DaySummary) {
	fmt.Fprintf(w, "%s  %3d entries  %8s kcal  %s\n",
		d.Day,
		d.EntryCount,
		formatNumber(d.TotalCalories),
		formatMacros(d.TotalMacronutrients),
	)
}

func printFoods(w io.Writer, foods []model.Food) {
	for _, f := range foods {
		aliases := ""
		if len(f.Aliases) > 0 {
			aliases = "  [" + strings.Join(f.Aliases, ", ") + "]"
		}
		fmt.Fprintf(w, "%-30s  %-20s  %6s kcal%s\n",
			f.Name,
			f.ServingSize,
			formatNumber(f.Calories),
			aliases,
		)
	}
}
