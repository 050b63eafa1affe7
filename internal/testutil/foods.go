package testutil

import "foodlog/internal/model"

// Foods returns a small fixed reference dataset.
func Foods() []model.Food {
	return []model.Food{
		{
			Name:           "Grilled Chicken Salad",
			ServingSize:    "1 bowl",
			Calories:       350,
			Macronutrients: map[string]float64{"protein": 32, "carbohydrates": 12, "fat": 18},
			Aliases:        []string{"chicken salad"},
		},
		{
			Name:           "Banana",
			ServingSize:    "1 medium",
			Calories:       105,
			Macronutrients: map[string]float64{"protein": 1.3, "carbohydrates": 27, "fat": 0.4},
			Aliases:        []string{},
		},
		{
			Name:           "Brown Rice",
			ServingSize:    "1 cup",
			Calories:       216,
			Macronutrients: map[string]float64{"protein": 5, "carbohydrates": 45, "fat": 1.8},
			Aliases:        []string{"rice"},
		},
		{
			Name:           "Scrambled Eggs",
			ServingSize:    "2 eggs",
			Calories:       180,
			Macronutrients: map[string]float64{"protein": 12, "fat": 14},
			Aliases:        []string{"eggs"},
		},
	}
}
