package storage

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"foodlog/internal/model"
	"foodlog/internal/tracker"
)

// JSONStore persists the food log as a single JSON document.
// Writes go to a temp file in the same directory which is then renamed over
// the target, so a crash never leaves a half-written log.
type JSONStore struct {
	path string
}

var _ tracker.Store = (*JSONStore)(nil)

// NewJSONStore creates a store backed by the file at path. The file and its
// directory are created on first save.
func NewJSONStore(path string) *JSONStore {
	return &JSONStore{path: path}
}

// Path returns the backing file path.
func (s *JSONStore) Path() string {
	return s.path
}

// Load reads the document. A missing file yields an empty document.
func (s *JSONStore) Load() (*model.Document, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return model.NewDocument(), nil
		}
		return nil, fmt.Errorf("%w: reading %s: %w", tracker.ErrStorage, s.path, err)
	}

	doc, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", tracker.ErrStorage, s.path, err)
	}
	return doc, nil
}

// Save atomically replaces the file with doc.
func (s *JSONStore) Save(doc *model.Document) error {
	data, err := json.MarshalIndent(normalize(doc), "", "  ")
	if err != nil {
		return fmt.Errorf("%w: encoding log: %w", tracker.ErrStorage, err)
	}
	data = append(data, '\n')

	if err := writeFileAtomic(s.path, data); err != nil {
		return fmt.Errorf("%w: %w", tracker.ErrStorage, err)
	}
	return nil
}

// Close is a no-op; the file is not held open between operations.
func (s *JSONStore) Close() error {
	return nil
}

// Decode parses a persisted log. Besides the versioned document it accepts
// a bare JSON array of entries, the layout written before foods were stored.
func Decode(data []byte) (*model.Document, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return model.NewDocument(), nil
	}

	if trimmed[0] == '[' {
		var entries []*model.Entry
		if err := json.Unmarshal(trimmed, &entries); err != nil {
			return nil, fmt.Errorf("decoding entry list: %w", err)
		}
		doc := model.NewDocument()
		doc.Entries = entries
		return checked(doc)
	}

	doc := model.NewDocument()
	if err := json.Unmarshal(trimmed, doc); err != nil {
		return nil, fmt.Errorf("decoding document: %w", err)
	}
	if doc.Version > model.DocumentVersion {
		return nil, fmt.Errorf("document version %d is newer than supported version %d", doc.Version, model.DocumentVersion)
	}
	return checked(doc)
}

func checked(doc *model.Document) (*model.Document, error) {
	if err := validate(doc); err != nil {
		return nil, err
	}
	return normalize(doc), nil
}

// normalize fills nil collections so documents compare and encode consistently.
func normalize(doc *model.Document) *model.Document {
	if doc.Version == 0 {
		doc.Version = model.DocumentVersion
	}
	if doc.Entries == nil {
		doc.Entries = []*model.Entry{}
	}
	if doc.Foods == nil {
		doc.Foods = []model.Food{}
	}
	return doc
}

func validate(doc *model.Document) error {
	for i, e := range doc.Entries {
		if e == nil {
			return fmt.Errorf("entry %d is null", i)
		}
		if e.Quantity <= 0 {
			return fmt.Errorf("entry %d: quantity must be positive, got %v", i, e.Quantity)
		}
	}
	for i, f := range doc.Foods {
		if err := f.Validate(); err != nil {
			return fmt.Errorf("food %d: %w", i, err)
		}
	}
	return nil
}

// writeFileAtomic writes data to path using a temp file and rename.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating directory: %w", err)
	}

	// Temp file in the same directory so the rename stays on one filesystem.
	tmpFile, err := os.CreateTemp(dir, ".foodlog-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmpFile.Write(data); err != nil {
		tmpFile.Close()
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		tmpFile.Close()
		return fmt.Errorf("syncing temp file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("renaming temp file: %w", err)
	}

	success = true
	return nil
}
