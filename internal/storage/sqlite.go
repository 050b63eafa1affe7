package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite driver

	"foodlog/internal/model"
	"foodlog/internal/storage/migrations"
	"foodlog/internal/tracker"
)

// SQLiteStore persists the food log in a SQLite database. Save replaces all
// rows inside one transaction, so readers see either the old or new log.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

var _ tracker.Store = (*SQLiteStore)(nil)

// NewSQLiteStore opens (creating if needed) the database at path and
// migrates it to the latest schema. A schema that cannot be brought up to
// date is reported as ErrStorage.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	db, err := OpenConnection(path)
	if err != nil {
		return nil, err
	}

	if _, err := migrations.Migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: database schema of %s: %w", tracker.ErrStorage, path, err)
	}

	return &SQLiteStore{db: db, path: path}, nil
}

// OpenConnection opens and configures a SQLite database connection.
func OpenConnection(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// A single connection keeps ":memory:" databases coherent and matches
	// the single-writer model.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}
	return db, nil
}

func (s *SQLiteStore) Load() (*model.Document, error) {
	ctx := context.Background()
	doc := model.NewDocument()

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, food, quantity, logged_at, calories, macronutrients FROM entries ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("%w: querying entries: %w", tracker.ErrStorage, err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			e                   model.Entry
			foodJSON, macroJSON string
			loggedAt            string
		)
		if err := rows.Scan(&e.ID, &foodJSON, &e.Quantity, &loggedAt, &e.Calories, &macroJSON); err != nil {
			return nil, fmt.Errorf("%w: scanning entry: %w", tracker.ErrStorage, err)
		}
		if err := json.Unmarshal([]byte(foodJSON), &e.Food); err != nil {
			return nil, fmt.Errorf("%w: entry %s: decoding food: %w", tracker.ErrStorage, e.ID, err)
		}
		if err := json.Unmarshal([]byte(macroJSON), &e.Macronutrients); err != nil {
			return nil, fmt.Errorf("%w: entry %s: decoding macronutrients: %w", tracker.ErrStorage, e.ID, err)
		}
		if e.Timestamp, err = time.Parse(time.RFC3339Nano, loggedAt); err != nil {
			return nil, fmt.Errorf("%w: entry %s: parsing timestamp: %w", tracker.ErrStorage, e.ID, err)
		}
		doc.Entries = append(doc.Entries, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating entries: %w", tracker.ErrStorage, err)
	}

	foods, err := s.loadFoods(ctx)
	if err != nil {
		return nil, err
	}
	doc.Foods = foods
	return doc, nil
}

func (s *SQLiteStore) loadFoods(ctx context.Context) ([]model.Food, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT name, serving_size, calories, macronutrients, aliases FROM foods ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("%w: querying foods: %w", tracker.ErrStorage, err)
	}
	defer rows.Close()

	foods := []model.Food{}
	for rows.Next() {
		var (
			f                     model.Food
			macroJSON, aliasesJSON string
		)
		if err := rows.Scan(&f.Name, &f.ServingSize, &f.Calories, &macroJSON, &aliasesJSON); err != nil {
			return nil, fmt.Errorf("%w: scanning food: %w", tracker.ErrStorage, err)
		}
		if err := json.Unmarshal([]byte(macroJSON), &f.Macronutrients); err != nil {
			return nil, fmt.Errorf("%w: food %s: decoding macronutrients: %w", tracker.ErrStorage, f.Name, err)
		}
		if err := json.Unmarshal([]byte(aliasesJSON), &f.Aliases); err != nil {
			return nil, fmt.Errorf("%w: food %s: decoding aliases: %w", tracker.ErrStorage, f.Name, err)
		}
		foods = append(foods, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating foods: %w", tracker.ErrStorage, err)
	}
	return foods, nil
}

func (s *SQLiteStore) Save(doc *model.Document) error {
	if err := s.replaceAll(context.Background(), normalize(doc)); err != nil {
		return fmt.Errorf("%w: %w", tracker.ErrStorage, err)
	}
	return nil
}

func (s *SQLiteStore) replaceAll(ctx context.Context, doc *model.Document) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM entries`); err != nil {
		return fmt.Errorf("clearing entries: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM foods`); err != nil {
		return fmt.Errorf("clearing foods: %w", err)
	}

	for i, e := range doc.Entries {
		foodJSON, err := json.Marshal(e.Food)
		if err != nil {
			return fmt.Errorf("encoding entry %s food: %w", e.ID, err)
		}
		macros := e.Macronutrients
		if macros == nil {
			macros = map[string]float64{}
		}
		macroJSON, err := json.Marshal(macros)
		if err != nil {
			return fmt.Errorf("encoding entry %s macronutrients: %w", e.ID, err)
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO entries (position, id, food, quantity, logged_at, calories, macronutrients) VALUES (?, ?, ?, ?, ?, ?, ?)`,
			i, e.ID, string(foodJSON), e.Quantity, e.Timestamp.Format(time.RFC3339Nano), e.Calories, string(macroJSON))
		if err != nil {
			return fmt.Errorf("inserting entry %s: %w", e.ID, err)
		}
	}

	for i, f := range doc.Foods {
		macros, aliases := f.Macronutrients, f.Aliases
		if macros == nil {
			macros = map[string]float64{}
		}
		if aliases == nil {
			aliases = []string{}
		}
		macroJSON, err := json.Marshal(macros)
		if err != nil {
			return fmt.Errorf("encoding food %s macronutrients: %w", f.Name, err)
		}
		aliasesJSON, err := json.Marshal(aliases)
		if err != nil {
			return fmt.Errorf("encoding food %s aliases: %w", f.Name, err)
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO foods (position, name, name_key, serving_size, calories, macronutrients, aliases) VALUES (?, ?, ?, ?, ?, ?, ?)`,
			i, f.Name, f.Key(), f.ServingSize, f.Calories, string(macroJSON), string(aliasesJSON))
		if err != nil {
			return fmt.Errorf("inserting food %s: %w", f.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
