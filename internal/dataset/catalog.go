package dataset

import (
	"errors"

	"foodlog/internal/model"
)

// ErrDuplicate is returned when adding a food whose name is already present.
var ErrDuplicate = errors.New("food already exists")

// Catalog is the in-memory reference food list. Order is insertion order,
// which the matcher uses to break ties.
type Catalog struct {
	foods []model.Food
	index map[string]int
}

// NewCatalog builds a catalog from foods, which should come from Read or
// another validated source. Invalid foods and later duplicates of an earlier
// name are dropped.
func NewCatalog(foods []model.Food) *Catalog {
	c := &Catalog{index: make(map[string]int, len(foods))}
	for _, f := range foods {
		_ = c.Add(f)
	}
	return c
}

// Add appends a food, failing with ErrDuplicate on a case-insensitive name
// clash and with the validation error for an invalid food.
func (c *Catalog) Add(food model.Food) error {
	if err := food.Validate(); err != nil {
		return err
	}
	key := food.Key()
	if _, ok := c.index[key]; ok {
		return ErrDuplicate
	}
	c.index[key] = len(c.foods)
	c.foods = append(c.foods, food.Clone())
	return nil
}

// Contains reports whether a food with the given name exists.
func (c *Catalog) Contains(name string) bool {
	_, ok := c.index[model.NameKey(name)]
	return ok
}

// Find returns a copy of the named food.
func (c *Catalog) Find(name string) (model.Food, bool) {
	i, ok := c.index[model.NameKey(name)]
	if !ok {
		return model.Food{}, false
	}
	return c.foods[i].Clone(), true
}

// Foods returns a copy of all foods in catalog order.
func (c *Catalog) Foods() []model.Food {
	out := make([]model.Food, len(c.foods))
	for i, f := range c.foods {
		out[i] = f.Clone()
	}
	return out
}

// Len returns the number of foods.
func (c *Catalog) Len() int {
	return len(c.foods)
}
