package storage

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"foodlog/internal/config"
	"foodlog/internal/model"
	"foodlog/internal/tracker"
)

func sampleDocument() *model.Document {
	ts := time.Date(2024, 1, 15, 12, 30, 0, 0, time.UTC)
	salad := model.Food{
		Name:           "Grilled Chicken Salad",
		ServingSize:    "1 bowl",
		Calories:       350,
		Macronutrients: map[string]float64{"protein": 32, "fat": 18},
		Aliases:        []string{"chicken salad"},
	}
	doc := model.NewDocument()
	doc.Entries = []*model.Entry{
		model.NewEntry("id-1", salad, 2, ts),
		model.NewEntry("id-2", model.Food{Name: "Apple", ServingSize: "1", Calories: 95, Macronutrients: map[string]float64{}, Aliases: []string{}}, 1, ts.Add(time.Hour)),
	}
	doc.Foods = []model.Food{
		{Name: "Grandma's Stew", ServingSize: "1 bowl", Calories: 410, Macronutrients: map[string]float64{"protein": 20}, Aliases: []string{"stew"}},
	}
	return doc
}

// stores returns one instance of every Store implementation.
func stores(t *testing.T) map[string]tracker.Store {
	t.Helper()
	dir := t.TempDir()

	sqlite, err := NewSQLiteStore(filepath.Join(dir, "log.db"))
	if err != nil {
		t.Fatalf("NewSQLiteStore() error = %v", err)
	}
	t.Cleanup(func() { sqlite.Close() })

	return map[string]tracker.Store{
		"json":   NewJSONStore(filepath.Join(dir, "log.json")),
		"memory": NewMemoryStore(),
		"sqlite": sqlite,
	}
}

func assertDocumentsEqual(t *testing.T, got, want *model.Document) {
	t.Helper()
	if got.Version != want.Version {
		t.Errorf("Version = %d, want %d", got.Version, want.Version)
	}
	if len(got.Entries) != len(want.Entries) {
		t.Fatalf("len(Entries) = %d, want %d", len(got.Entries), len(want.Entries))
	}
	for i := range want.Entries {
		g, w := got.Entries[i], want.Entries[i]
		if !g.Timestamp.Equal(w.Timestamp) {
			t.Errorf("entry %d timestamp = %v, want %v", i, g.Timestamp, w.Timestamp)
		}
		gc, wc := *g, *w
		gc.Timestamp, wc.Timestamp = time.Time{}, time.Time{}
		if !reflect.DeepEqual(gc, wc) {
			t.Errorf("entry %d = %+v, want %+v", i, gc, wc)
		}
	}
	if !reflect.DeepEqual(got.Foods, want.Foods) {
		t.Errorf("Foods = %+v, want %+v", got.Foods, want.Foods)
	}
}

func TestStores_EmptyLoad(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			doc, err := s.Load()
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			if len(doc.Entries) != 0 || len(doc.Foods) != 0 {
				t.Errorf("Load() on empty store = %+v", doc)
			}
			if doc.Entries == nil || doc.Foods == nil {
				t.Error("Load() returned nil collections")
			}
		})
	}
}

func TestStores_RoundTrip(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			want := sampleDocument()
			if err := s.Save(want); err != nil {
				t.Fatalf("Save() error = %v", err)
			}

			first, err := s.Load()
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			assertDocumentsEqual(t, first, want)

			// save(load()) is a no-op.
			if err := s.Save(first); err != nil {
				t.Fatalf("second Save() error = %v", err)
			}
			second, err := s.Load()
			if err != nil {
				t.Fatalf("second Load() error = %v", err)
			}
			assertDocumentsEqual(t, second, first)
		})
	}
}

func TestStores_SaveOverwrites(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			if err := s.Save(sampleDocument()); err != nil {
				t.Fatalf("Save() error = %v", err)
			}
			smaller := model.NewDocument()
			smaller.Entries = sampleDocument().Entries[:1]
			if err := s.Save(smaller); err != nil {
				t.Fatalf("Save() error = %v", err)
			}

			got, err := s.Load()
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			if len(got.Entries) != 1 || len(got.Foods) != 0 {
				t.Errorf("after overwrite: %d entries, %d foods", len(got.Entries), len(got.Foods))
			}
		})
	}
}

func TestJSONStore_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "log.json")
	if err := os.WriteFile(path, []byte(`{"entries": [`), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := NewJSONStore(path).Load()
	if !errors.Is(err, tracker.ErrStorage) {
		t.Errorf("Load() error = %v, want ErrStorage", err)
	}
}

func TestJSONStore_FutureVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "log.json")
	if err := os.WriteFile(path, []byte(`{"version": 99, "entries": []}`), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := NewJSONStore(path).Load()
	if !errors.Is(err, tracker.ErrStorage) {
		t.Errorf("Load() error = %v, want ErrStorage", err)
	}
}

func TestJSONStore_LegacyEntryList(t *testing.T) {
	path := filepath.Join(t.TempDir(), "log.json")
	legacy := `[{"id":"a","food":{"name":"Apple","serving_size":"1","calories":95,"macronutrients":{},"aliases":[]},
		"quantity":2,"timestamp":"2024-01-15T08:00:00Z","calories":190,"macronutrients":{}}]`
	if err := os.WriteFile(path, []byte(legacy), 0644); err != nil {
		t.Fatal(err)
	}

	doc, err := NewJSONStore(path).Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(doc.Entries) != 1 || doc.Entries[0].Calories != 190 {
		t.Errorf("Load() = %+v", doc)
	}
	if doc.Version != model.DocumentVersion {
		t.Errorf("Version = %d, want %d", doc.Version, model.DocumentVersion)
	}
}

func TestSQLiteStore_SavesLegacyEntryList(t *testing.T) {
	legacy := `[
		{"food":{"name":"Apple","serving_size":"1","calories":95,"macronutrients":{},"aliases":[]},
		 "quantity":1,"timestamp":"2024-01-15T08:00:00Z","calories":95,"macronutrients":{}},
		{"food":{"name":"Apple","serving_size":"1","calories":95,"macronutrients":{},"aliases":[]},
		 "quantity":2,"timestamp":"2024-01-15T09:00:00Z","calories":190,"macronutrients":{}}]`
	doc, err := Decode([]byte(legacy))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}

	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "log.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	if err := store.Save(doc); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	got, err := store.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	assertDocumentsEqual(t, got, doc)
}

func TestNewSQLiteStore_UnknownSchemaVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "log.db")
	store, err := NewSQLiteStore(path)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := store.db.Exec(`UPDATE schema_migrations SET version = 99`); err != nil {
		t.Fatal(err)
	}
	store.Close()

	if _, err := NewSQLiteStore(path); !errors.Is(err, tracker.ErrStorage) {
		t.Errorf("NewSQLiteStore() error = %v, want ErrStorage", err)
	}
}

func TestJSONStore_RejectsInvalidCustomFood(t *testing.T) {
	path := filepath.Join(t.TempDir(), "log.json")
	bad := `{"version":1,"entries":[],"foods":[{"name":"Broken Bar","calories":-200}]}`
	if err := os.WriteFile(path, []byte(bad), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := NewJSONStore(path).Load(); !errors.Is(err, tracker.ErrStorage) {
		t.Errorf("Load() error = %v, want ErrStorage", err)
	}
}

func TestJSONStore_RejectsNonPositiveQuantity(t *testing.T) {
	path := filepath.Join(t.TempDir(), "log.json")
	bad := `{"version":1,"entries":[{"id":"a","food":{"name":"Apple"},"quantity":0}],"foods":[]}`
	if err := os.WriteFile(path, []byte(bad), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := NewJSONStore(path).Load(); !errors.Is(err, tracker.ErrStorage) {
		t.Errorf("Load() error = %v, want ErrStorage", err)
	}
}

func TestJSONStore_SaveLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	s := NewJSONStore(filepath.Join(dir, "sub", "log.json"))
	if err := s.Save(sampleDocument()); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	names, err := os.ReadDir(filepath.Join(dir, "sub"))
	if err != nil {
		t.Fatal(err)
	}
	if len(names) != 1 || names[0].Name() != "log.json" {
		t.Errorf("directory contents = %v, want only log.json", names)
	}
}

func TestJSONStore_SaveFailureKeepsPreviousFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "log.json")
	s := NewJSONStore(path)
	if err := s.Save(sampleDocument()); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	// Make the directory read-only so the temp file cannot be created.
	if err := os.Chmod(dir, 0555); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Chmod(dir, 0755) })
	if os.Geteuid() == 0 {
		t.Skip("root ignores directory permissions")
	}

	if err := s.Save(model.NewDocument()); !errors.Is(err, tracker.ErrStorage) {
		t.Fatalf("Save() error = %v, want ErrStorage", err)
	}

	doc, err := s.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(doc.Entries) != 2 {
		t.Errorf("previous log lost: %d entries", len(doc.Entries))
	}
}

func TestNewStoreFromConfig(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name    string
		cfg     config.StorageConfig
		wantErr bool
	}{
		{name: "json", cfg: config.StorageConfig{Type: "json", Path: filepath.Join(dir, "a.json")}},
		{name: "default type is json", cfg: config.StorageConfig{Path: filepath.Join(dir, "b.json")}},
		{name: "json without path", cfg: config.StorageConfig{Type: "json"}, wantErr: true},
		{name: "sqlite", cfg: config.StorageConfig{Type: "sqlite", Path: filepath.Join(dir, "c.db")}},
		{name: "sqlite without path", cfg: config.StorageConfig{Type: "sqlite"}, wantErr: true},
		{name: "memory", cfg: config.StorageConfig{Type: "memory"}},
		{name: "unknown", cfg: config.StorageConfig{Type: "postgres"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := NewStoreFromConfig(tt.cfg)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewStoreFromConfig() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil {
				if s == nil {
					t.Fatal("NewStoreFromConfig() returned nil store")
				}
				s.Close()
			}
		})
	}
}
