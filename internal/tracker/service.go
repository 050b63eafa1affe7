package tracker

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"foodlog/internal/dataset"
	"foodlog/internal/matcher"
	"foodlog/internal/model"
)

// Service is the orchestration layer that coordinates the catalog, matcher,
// store and vault to perform the operations needed by the CLI and HTTP API.
type Service struct {
	store     Store
	catalog   *dataset.Catalog
	matcher   *matcher.Matcher
	vault     Vault
	encryptor Encryptor
	logger    Logger
	clock     Clock
	idgen     IDGenerator
	loc       *time.Location
	profileID string
}

// NewService creates a Service with the provided dependencies.
// vault and encryptor may be nil when snapshots are not configured.
func NewService(store Store, catalog *dataset.Catalog, m *matcher.Matcher, vault Vault, encryptor Encryptor, logger Logger, clock Clock, idgen IDGenerator) *Service {
	return &Service{
		store:     store,
		catalog:   catalog,
		matcher:   m,
		vault:     vault,
		encryptor: encryptor,
		logger:    logger,
		clock:     clock,
		idgen:     idgen,
		loc:       time.Local,
	}
}

// SetLocation sets the time zone used to decide an entry's calendar day.
func (s *Service) SetLocation(loc *time.Location) {
	if loc != nil {
		s.loc = loc
	}
}

// SetProfileID sets the profile that vault snapshots are stored under.
func (s *Service) SetProfileID(id string) {
	s.profileID = id
}

// Foods returns the reference catalog, including user-added foods.
func (s *Service) Foods() ([]model.Food, error) {
	if _, err := s.load(); err != nil {
		return nil, err
	}
	return s.catalog.Foods(), nil
}

// AddFood validates food and appends it to the catalog and the persisted log.
func (s *Service) AddFood(food model.Food) (model.Food, error) {
	food.Name = strings.TrimSpace(food.Name)
	if err := validateFood(food); err != nil {
		return model.Food{}, err
	}
	food = withDefaults(food)

	doc, err := s.load()
	if err != nil {
		return model.Food{}, err
	}
	if s.catalog.Contains(food.Name) {
		return model.Food{}, fmt.Errorf("%w: %s", ErrDuplicateFood, food.Name)
	}

	doc.Foods = append(doc.Foods, food.Clone())
	if err := s.save(doc); err != nil {
		return model.Food{}, err
	}
	if err := s.catalog.Add(food); err != nil {
		return model.Food{}, fmt.Errorf("adding to catalog: %w", err)
	}

	s.logger.Info("food added", "name", food.Name, "calories", food.Calories)
	return food.Clone(), nil
}

// load reads the document and merges persisted custom foods into the catalog,
// so foods added by another process sharing the log become searchable.
func (s *Service) load() (*model.Document, error) {
	doc, err := s.store.Load()
	if err != nil {
		return nil, fmt.Errorf("loading log: %w", err)
	}
	if s.assignIDs(doc) > 0 {
		if err := s.save(doc); err != nil {
			return nil, err
		}
	}
	if err := s.mergeFoods(doc.Foods); err != nil {
		return nil, err
	}
	return doc, nil
}

// assignIDs gives an id to every entry written before entries had one and
// returns how many it assigned.
func (s *Service) assignIDs(doc *model.Document) int {
	n := 0
	for _, e := range doc.Entries {
		if e.ID == "" {
			e.ID = s.idgen.New()
			n++
		}
	}
	if n > 0 {
		s.logger.Info("assigned ids to legacy entries", "count", n)
	}
	return n
}

func (s *Service) mergeFoods(foods []model.Food) error {
	for _, f := range foods {
		if err := s.catalog.Add(f); err != nil && !errors.Is(err, dataset.ErrDuplicate) {
			return fmt.Errorf("merging custom food %q: %w", f.Name, err)
		}
	}
	return nil
}

// checkDocument rejects documents that did not come through a Store, such as
// snapshots, when they hold null entries, unusable quantities or invalid foods.
func checkDocument(doc *model.Document) error {
	for i, e := range doc.Entries {
		if e == nil {
			return fmt.Errorf("entry %d is null", i)
		}
		if err := validateQuantity(e.Quantity); err != nil {
			return fmt.Errorf("entry %d: %w", i, err)
		}
	}
	for i, f := range doc.Foods {
		if err := f.Validate(); err != nil {
			return fmt.Errorf("food %d: %w", i, err)
		}
	}
	return nil
}

func (s *Service) save(doc *model.Document) error {
	doc.Version = model.DocumentVersion
	if err := s.store.Save(doc); err != nil {
		return fmt.Errorf("saving log: %w", err)
	}
	return nil
}

// withDefaults fills the optional fields a dataset file may leave out.
func withDefaults(food model.Food) model.Food {
	if food.ServingSize == "" {
		food.ServingSize = model.DefaultServingSize
	}
	if food.Macronutrients == nil {
		food.Macronutrients = map[string]float64{}
	}
	if food.Aliases == nil {
		food.Aliases = []string{}
	}
	return food
}

func validateFood(food model.Food) error {
	if err := food.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	return nil
}

func validateQuantity(quantity float64) error {
	if !(quantity > 0) || math.IsInf(quantity, 0) {
		return fmt.Errorf("%w: quantity must be greater than zero, got %v", ErrInvalidQuantity, quantity)
	}
	return nil
}
