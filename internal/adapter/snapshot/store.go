// Package snapshot persists the last good dataset in a local SQLite file,
// so a restart can serve objects before the first upstream pull completes.
package snapshot

import (
	"database/sql"
	"encoding/json"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/hydroatlas/hydroatlas/internal/domain"
)

// Store is a SQLite-backed dataset snapshot.
// It implements engine.Store.
type Store struct {
	db *sql.DB
}

// NewStore opens (or creates) the snapshot database at path.
func NewStore(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open snapshot database: %w", err)
	}

	createTable := `
	CREATE TABLE IF NOT EXISTS water_objects (
		id TEXT PRIMARY KEY,
		source_kind TEXT NOT NULL,
		payload TEXT NOT NULL,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);`
	if _, err := db.Exec(createTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("create water_objects table: %w", err)
	}

	return &Store{db: db}, nil
}

// Save replaces the stored dataset wholesale in one transaction.
func (s *Store) Save(objects []domain.WaterObject) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM water_objects"); err != nil {
		return fmt.Errorf("clear water_objects: %w", err)
	}

	stmt, err := tx.Prepare("INSERT INTO water_objects (id, source_kind, payload) VALUES (?, ?, ?)")
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, obj := range objects {
		payload, err := json.Marshal(obj)
		if err != nil {
			return fmt.Errorf("serialize object %s: %w", obj.ID, err)
		}
		if _, err := stmt.Exec(obj.ID, string(obj.SourceKind), string(payload)); err != nil {
			return fmt.Errorf("insert object %s: %w", obj.ID, err)
		}
	}

	return tx.Commit()
}

// Load returns the stored dataset. An empty database yields an empty slice.
func (s *Store) Load() ([]domain.WaterObject, error) {
	rows, err := s.db.Query("SELECT payload FROM water_objects ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("query water_objects: %w", err)
	}
	defer rows.Close()

	var objects []domain.WaterObject
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scan payload: %w", err)
		}
		var obj domain.WaterObject
		if err := json.Unmarshal([]byte(payload), &obj); err != nil {
			return nil, fmt.Errorf("deserialize object: %w", err)
		}
		objects = append(objects, obj)
	}
	return objects, rows.Err()
}

func (s *Store) Close() error {
	return s.db.Close()
}
