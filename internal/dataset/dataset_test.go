package dataset

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"foodlog/internal/model"
)

func TestDefault(t *testing.T) {
	foods, err := Default()
	if err != nil {
		t.Fatalf("Default() error = %v", err)
	}
	if len(foods) == 0 {
		t.Fatal("Default() returned no foods")
	}

	c := NewCatalog(foods)
	if c.Len() != len(foods) {
		t.Errorf("built-in dataset has duplicate names: catalog %d, dataset %d", c.Len(), len(foods))
	}
	if _, ok := c.Find("grilled chicken salad"); !ok {
		t.Error("built-in dataset missing Grilled Chicken Salad")
	}
}

func TestRead_FillsDefaults(t *testing.T) {
	foods, err := Read(strings.NewReader(`[{"name":"Plain Toast","calories":70}]`), FormatJSON)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if len(foods) != 1 {
		t.Fatalf("len = %d, want 1", len(foods))
	}
	if foods[0].ServingSize != model.DefaultServingSize {
		t.Errorf("ServingSize = %q, want %q", foods[0].ServingSize, model.DefaultServingSize)
	}
	if foods[0].Macronutrients == nil || foods[0].Aliases == nil {
		t.Error("expected non-nil macronutrients and aliases")
	}
}

func TestRead_Errors(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		format Format
	}{
		{name: "malformed json", input: `[{"name":`, format: FormatJSON},
		{name: "missing name", input: `[{"calories": 10}]`, format: FormatJSON},
		{name: "unknown format", input: `[]`, format: Format("csv")},
		{name: "negative calories", input: `[{"name": "Broken Bar", "calories": -200}]`, format: FormatJSON},
		{name: "negative macro", input: `[{"name": "Bar", "calories": 10, "macronutrients": {"fat": -1}}]`, format: FormatJSON},
		{name: "case-insensitive duplicate", input: `[{"name": "Apple", "calories": 95}, {"name": "apple", "calories": 50}]`, format: FormatJSON},
		{name: "yaml negative calories", input: "- name: Bar\n  calories: -5\n", format: FormatYAML},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Read(strings.NewReader(tt.input), tt.format); err == nil {
				t.Error("Read() expected error")
			}
		})
	}
}

func TestLoadFile_YAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "foods.yaml")
	content := `
- name: Mango
  serving_size: 1 cup
  calories: 99
  macronutrients:
    carbs: 25
  aliases: [mango slices]
- name: Tofu
  calories: 94
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	foods, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	if len(foods) != 2 {
		t.Fatalf("len = %d, want 2", len(foods))
	}
	if foods[0].Macronutrients["carbs"] != 25 {
		t.Errorf("carbs = %v, want 25", foods[0].Macronutrients["carbs"])
	}
	if foods[1].ServingSize != model.DefaultServingSize {
		t.Errorf("ServingSize = %q, want default", foods[1].ServingSize)
	}
}

func TestFormatForPath(t *testing.T) {
	tests := map[string]Format{
		"foods.json": FormatJSON,
		"foods.yaml": FormatYAML,
		"foods.YML":  FormatYAML,
		"foods":      FormatJSON,
	}
	for path, want := range tests {
		if got := FormatForPath(path); got != want {
			t.Errorf("FormatForPath(%q) = %q, want %q", path, got, want)
		}
	}
}

func TestCatalog_Add(t *testing.T) {
	c := NewCatalog([]model.Food{{Name: "Apple"}})

	if err := c.Add(model.Food{Name: "Pear"}); err != nil {
		t.Fatalf("Add(Pear) error = %v", err)
	}
	if err := c.Add(model.Food{Name: "  APPLE "}); !errors.Is(err, ErrDuplicate) {
		t.Errorf("Add(APPLE) error = %v, want ErrDuplicate", err)
	}
	if err := c.Add(model.Food{Name: "Broken Bar", Calories: -200}); err == nil || errors.Is(err, ErrDuplicate) {
		t.Errorf("Add(negative calories) error = %v, want validation error", err)
	}
	if c.Len() != 2 {
		t.Errorf("Len() = %d, want 2", c.Len())
	}
	foods := c.Foods()
	if foods[0].Name != "Apple" || foods[1].Name != "Pear" {
		t.Errorf("Foods() order = %v", foods)
	}
}

func TestNewCatalog_DropsInvalidAndDuplicateFoods(t *testing.T) {
	c := NewCatalog([]model.Food{
		{Name: "Apple", Calories: 95},
		{Name: "apple", Calories: -50},
		{Name: "Broken Bar", Calories: -200},
		{Name: "Pear", Calories: 100},
	})

	foods := c.Foods()
	if len(foods) != 2 || foods[0].Name != "Apple" || foods[1].Name != "Pear" {
		t.Errorf("Foods() = %v, want Apple and Pear", foods)
	}
	if f, _ := c.Find("apple"); f.Calories != 95 {
		t.Errorf("Find(apple).Calories = %v, want 95", f.Calories)
	}
}

func TestCatalog_FindReturnsCopy(t *testing.T) {
	c := NewCatalog([]model.Food{{Name: "Apple", Macronutrients: map[string]float64{"carbs": 25}}})
	f, _ := c.Find("apple")
	f.Macronutrients["carbs"] = 0

	again, _ := c.Find("apple")
	if again.Macronutrients["carbs"] != 25 {
		t.Errorf("catalog mutated through Find() copy")
	}
}
