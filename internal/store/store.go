// Package store keeps an append-only audit log of served predictions in
// sqlite, which the api dashboard reads back.
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

const schema = `CREATE TABLE IF NOT EXISTS predictions (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	created_at TEXT NOT NULL,
	features   TEXT NOT NULL,
	label      TEXT NOT NULL,
	model      TEXT NOT NULL
)`

// Record is one served prediction.
type Record struct {
	CreatedAt time.Time `json:"created_at"`
	Features  []float64 `json:"features"`
	Label     string    `json:"label"`
	Model     string    `json:"model"`
}

// Store wraps the sqlite database holding the prediction log.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the database at path and ensures the
// schema exists.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: init schema: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// Log appends one prediction. Features travel as a JSON array so the
// schema stays independent of the vector dimension.
func (s *Store) Log(r Record) error {
	feats, err := json.Marshal(r.Features)
	if err != nil {
		return err
	}
	ts := r.CreatedAt
	if ts.IsZero() {
		ts = time.Now()
	}
	_, err = s.db.Exec(
		"INSERT INTO predictions (created_at, features, label, model) VALUES (?, ?, ?, ?)",
		ts.UTC().Format(time.RFC3339Nano), string(feats), r.Label, r.Model,
	)
	return err
}

// Recent returns up to limit predictions, newest first.
func (s *Store) Recent(limit int) ([]Record, error) {
	rows, err := s.db.Query(
		"SELECT created_at, features, label, model FROM predictions ORDER BY id DESC LIMIT ?",
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Record{}
	for rows.Next() {
		var r Record
		var ts, feats string
		if err := rows.Scan(&ts, &feats, &r.Label, &r.Model); err != nil {
			return nil, err
		}
		if r.CreatedAt, err = time.Parse(time.RFC3339Nano, ts); err != nil {
			return nil, fmt.Errorf("store: bad timestamp %q: %w", ts, err)
		}
		if err := json.Unmarshal([]byte(feats), &r.Features); err != nil {
			return nil, fmt.Errorf("store: bad features %q: %w", feats, err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
