package tracker

import (
	"fmt"
	"strings"

	"foodlog/internal/model"
)

// Log records that quantity servings of food were eaten now. The entry holds
// a copy of food, so later catalog changes never alter it.
func (s *Service) Log(food model.Food, quantity float64) (*model.Entry, error) {
	if err := validateQuantity(quantity); err != nil {
		return nil, err
	}
	if err := validateFood(food); err != nil {
		return nil, err
	}
	food = withDefaults(food)

	doc, err := s.load()
	if err != nil {
		return nil, err
	}

	entry := model.NewEntry(s.idgen.New(), food, quantity, s.clock.Now())
	doc.Entries = append(doc.Entries, entry)
	if err := s.save(doc); err != nil {
		return nil, err
	}

	s.logger.Info("entry logged", "food", food.Name, "quantity", quantity, "calories", entry.Calories)
	return entry, nil
}

// LogByName logs a catalog food looked up by case-insensitive name.
func (s *Service) LogByName(name string, quantity float64) (*model.Entry, error) {
	if err := validateQuantity(quantity); err != nil {
		return nil, err
	}
	if _, err := s.load(); err != nil {
		return nil, err
	}
	food, ok := s.catalog.Find(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoMatch, name)
	}
	return s.Log(food, quantity)
}

// LogText scans a description and logs the best match.
func (s *Service) LogText(text string, quantity float64) (*model.Entry, error) {
	if err := validateQuantity(quantity); err != nil {
		return nil, err
	}
	matches, err := s.Scan(text, 1)
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrNoMatch, text)
	}
	return s.Log(matches[0].Food, quantity)
}

// LogManual logs an ad-hoc food that is not added to the catalog.
func (s *Service) LogManual(name, servingSize string, calories, quantity float64, macros map[string]float64) (*model.Entry, error) {
	food := model.Food{
		Name:           strings.TrimSpace(name),
		ServingSize:    servingSize,
		Calories:       calories,
		Macronutrients: macros,
	}
	return s.Log(food, quantity)
}

// ListEntries returns all persisted entries in insertion order.
func (s *Service) ListEntries() ([]*model.Entry, error) {
	doc, err := s.load()
	if err != nil {
		return nil, err
	}
	return doc.Entries, nil
}
