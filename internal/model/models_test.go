package model

import (
	"math"
	"testing"
	"time"
)

func TestNewEntry_ScalesByQuantity(t *testing.T) {
	food := Food{
		Name:           "Grilled Chicken Salad",
		ServingSize:    "1 bowl",
		Calories:       350,
		Macronutrients: map[string]float64{"protein": 30, "fat": 12.5},
	}
	ts := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	for _, q := range []float64{0.25, 1, 2, 3.5} {
		e := NewEntry("id-1", food, q, ts)
		if math.Abs(e.Calories-food.Calories*q) > 1e-9 {
			t.Errorf("q=%v: Calories = %v, want %v", q, e.Calories, food.Calories*q)
		}
		if math.Abs(e.Macronutrients["fat"]-12.5*q) > 1e-9 {
			t.Errorf("q=%v: fat = %v, want %v", q, e.Macronutrients["fat"], 12.5*q)
		}
	}
}

func TestNewEntry_SnapshotIsIndependent(t *testing.T) {
	food := Food{
		Name:           "Oatmeal",
		Calories:       150,
		Macronutrients: map[string]float64{"carbs": 27},
		Aliases:        []string{"porridge"},
	}
	e := NewEntry("id-1", food, 1, time.Now())

	food.Macronutrients["carbs"] = 99
	food.Aliases[0] = "changed"

	if e.Food.Macronutrients["carbs"] != 27 {
		t.Errorf("entry macro changed with catalog: got %v", e.Food.Macronutrients["carbs"])
	}
	if e.Food.Aliases[0] != "porridge" {
		t.Errorf("entry alias changed with catalog: got %q", e.Food.Aliases[0])
	}
}

func TestNameKey(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Apple", "apple"},
		{"  Brown Rice ", "brown rice"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := NameKey(tt.in); got != tt.want {
			t.Errorf("NameKey(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFoodValidate(t *testing.T) {
	tests := []struct {
		name    string
		food    Food
		wantErr bool
	}{
		{name: "valid", food: Food{Name: "Apple", Calories: 95, Macronutrients: map[string]float64{"carbs": 25}}},
		{name: "zero calories", food: Food{Name: "Water"}},
		{name: "blank name", food: Food{Name: "  ", Calories: 1}, wantErr: true},
		{name: "negative calories", food: Food{Name: "Bar", Calories: -200}, wantErr: true},
		{name: "nan calories", food: Food{Name: "Bar", Calories: math.NaN()}, wantErr: true},
		{name: "infinite calories", food: Food{Name: "Bar", Calories: math.Inf(1)}, wantErr: true},
		{name: "negative macro", food: Food{Name: "Bar", Macronutrients: map[string]float64{"fat": -1}}, wantErr: true},
		{name: "blank nutrient", food: Food{Name: "Bar", Macronutrients: map[string]float64{" ": 1}}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.food.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
