package model

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
)

// DefaultServingSize is used when a dataset record omits serving_size.
const DefaultServingSize = "1 serving"

// DocumentVersion is the current persisted log format version.
const DocumentVersion = 1

// Food is a reference food record. Identity is the case-insensitive name.
type Food struct {
	Name           string             `json:"name" yaml:"name"`
	ServingSize    string             `json:"serving_size" yaml:"serving_size"`
	Calories       float64            `json:"calories" yaml:"calories"`
	Macronutrients map[string]float64 `json:"macronutrients" yaml:"macronutrients"`
	Aliases        []string           `json:"aliases" yaml:"aliases"`
}

// Key returns the identity key for the food (lower-cased, trimmed name).
func (f Food) Key() string {
	return NameKey(f.Name)
}

// NameKey normalizes a food name for case-insensitive comparison.
func NameKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Validate checks that the food has a name and that calories and every
// macronutrient are finite and non-negative.
func (f Food) Validate() error {
	if strings.TrimSpace(f.Name) == "" {
		return errors.New("food name is required")
	}
	if !nonNegative(f.Calories) {
		return errors.New("calories must be a non-negative number")
	}
	for nutrient, grams := range f.Macronutrients {
		if strings.TrimSpace(nutrient) == "" {
			return errors.New("nutrient name is required")
		}
		if !nonNegative(grams) {
			return fmt.Errorf("%s must be a non-negative number", nutrient)
		}
	}
	return nil
}

func nonNegative(v float64) bool {
	return v >= 0 && !math.IsInf(v, 0)
}

// Clone returns a deep copy of the food. Entries hold clones so later changes
// to the catalog never reach logged history.
func (f Food) Clone() Food {
	c := f
	if f.Macronutrients != nil {
		c.Macronutrients = make(map[string]float64, len(f.Macronutrients))
		for k, v := range f.Macronutrients {
			c.Macronutrients[k] = v
		}
	}
	if f.Aliases != nil {
		c.Aliases = append([]string(nil), f.Aliases...)
	}
	return c
}

// Entry is a logged instance of eating a food in some quantity.
type Entry struct {
	ID             string             `json:"id"`
	Food           Food               `json:"food"`
	Quantity       float64            `json:"quantity"`
	Timestamp      time.Time          `json:"timestamp"`
	Calories       float64            `json:"calories"`
	Macronutrients map[string]float64 `json:"macronutrients"`
}

// NewEntry builds an entry from a food snapshot, scaling calories and
// macronutrients by quantity.
func NewEntry(id string, food Food, quantity float64, ts time.Time) *Entry {
	snapshot := food.Clone()
	macros := make(map[string]float64, len(snapshot.Macronutrients))
	for nutrient, grams := range snapshot.Macronutrients {
		macros[nutrient] = grams * quantity
	}
	return &Entry{
		ID:             id,
		Food:           snapshot,
		Quantity:       quantity,
		Timestamp:      ts,
		Calories:       snapshot.Calories * quantity,
		Macronutrients: macros,
	}
}

// DaySummary holds the nutrition totals for one calendar day.
type DaySummary struct {
	Day                 string             `json:"day"` // YYYY-MM-DD
	TotalCalories       float64            `json:"total_calories"`
	TotalMacronutrients map[string]float64 `json:"total_macronutrients"`
	EntryCount          int                `json:"entry_count"`
}

// Document is the persisted shape of the food log.
type Document struct {
	Version int      `json:"version"`
	Entries []*Entry `json:"entries"`
	Foods   []Food   `json:"foods"`
}

// NewDocument returns an empty document at the current version.
func NewDocument() *Document {
	return &Document{
		Version: DocumentVersion,
		Entries: []*Entry{},
		Foods:   []Food{},
	}
}
