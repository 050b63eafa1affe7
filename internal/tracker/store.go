package tracker

import "foodlog/internal/model"

// Store persists the food log document.
// There is no locking: callers serialize writes against one store.
type Store interface {
	// Load returns the persisted document, or an empty document if nothing
	// has been saved yet. Failures wrap ErrStorage.
	Load() (*model.Document, error)

	// Save replaces the persisted document atomically. A failed save leaves
	// the previous document intact. Failures wrap ErrStorage.
	Save(doc *model.Document) error

	// Close releases any resources held by the store.
	Close() error
}
