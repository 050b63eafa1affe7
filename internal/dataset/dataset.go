package dataset

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"foodlog/internal/model"
)

//go:embed data/foods.json
var defaultFoods []byte

// Format selects the encoding of a dataset file.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatForPath infers the dataset format from a file extension.
func FormatForPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// Default returns the built-in reference foods.
func Default() ([]model.Food, error) {
	foods, err := Read(bytes.NewReader(defaultFoods), FormatJSON)
	if err != nil {
		return nil, fmt.Errorf("reading built-in dataset: %w", err)
	}
	return foods, nil
}

// LoadFile reads reference foods from a JSON or YAML file.
func LoadFile(path string) ([]model.Food, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening dataset file: %w", err)
	}
	defer f.Close()

	foods, err := Read(f, FormatForPath(path))
	if err != nil {
		return nil, fmt.Errorf("reading dataset from %s: %w", path, err)
	}
	return foods, nil
}

// Read decodes a list of food records, filling defaults for missing fields.
// Invalid records and names repeated case-insensitively are errors.
func Read(r io.Reader, format Format) ([]model.Food, error) {
	var records []model.Food
	switch format {
	case FormatYAML:
		if err := yaml.NewDecoder(r).Decode(&records); err != nil && err != io.EOF {
			return nil, fmt.Errorf("decoding yaml: %w", err)
		}
	case FormatJSON:
		if err := json.NewDecoder(r).Decode(&records); err != nil {
			return nil, fmt.Errorf("decoding json: %w", err)
		}
	default:
		return nil, fmt.Errorf("unknown dataset format: %q", format)
	}

	foods := make([]model.Food, 0, len(records))
	seen := make(map[string]int, len(records))
	for i, rec := range records {
		if err := rec.Validate(); err != nil {
			return nil, fmt.Errorf("record %d (%q): %w", i, rec.Name, err)
		}
		if first, ok := seen[rec.Key()]; ok {
			return nil, fmt.Errorf("record %d (%q): duplicate of record %d", i, rec.Name, first)
		}
		seen[rec.Key()] = i
		if rec.ServingSize == "" {
			rec.ServingSize = model.DefaultServingSize
		}
		if rec.Macronutrients == nil {
			rec.Macronutrients = map[string]float64{}
		}
		if rec.Aliases == nil {
			rec.Aliases = []string{}
		}
		foods = append(foods, rec)
	}
	return foods, nil
}
