// Package kvstore persists JSON values by key in the state database.
// It backs the saved circuit and the event log.
package kvstore

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// ErrNotFound is returned when a key has never been written or was deleted
var ErrNotFound = errors.New("key not found")

// Store is the key/value contract used by the circuit store and the event log
type Store interface {
	Get(key string, dest interface{}) error
	Set(key string, value interface{}) error
	Delete(key string) error
}

// Entry is a raw row of the kv table
type Entry struct {
	Key       string          `json:"key"`
	Value     json.RawMessage `json:"value"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// Repository provides kv operations against the kv table
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new kv repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Set serializes value to JSON and upserts it under key
func (r *Repository) Set(key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal value for %s: %w", key, err)
	}

	_, err = r.db.Exec(`
		INSERT INTO kv (key, value, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			updated_at = excluded.updated_at
	`, key, string(data), time.Now().UnixMilli())
	if err != nil {
		return fmt.Errorf("failed to store %s: %w", key, err)
	}

	return nil
}

// Get unmarshals the value under key into dest. Missing keys return ErrNotFound.
func (r *Repository) Get(key string, dest interface{}) error {
	raw, err := r.GetRaw(key)
	if err != nil {
		return err
	}

	if err := json.Unmarshal(raw, dest); err != nil {
		return fmt.Errorf("failed to unmarshal %s: %w", key, err)
	}
	return nil
}

// GetRaw returns the stored JSON for key
func (r *Repository) GetRaw(key string) (json.RawMessage, error) {
	var data string
	err := r.db.QueryRow("SELECT value FROM kv WHERE key = ?", key).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get %s: %w", key, err)
	}
	return json.RawMessage(data), nil
}

// Delete removes key. Deleting a missing key is not an error.
func (r *Repository) Delete(key string) error {
	if _, err := r.db.Exec("DELETE FROM kv WHERE key = ?", key); err != nil {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}

// List returns every entry ordered by key
func (r *Repository) List() ([]Entry, error) {
	rows, err := r.db.Query("SELECT key, value, updated_at FROM kv ORDER BY key")
	if err != nil {
		return nil, fmt.Errorf("failed to list kv entries: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			key       string
			value     string
			updatedAt int64
		)
		if err := rows.Scan(&key, &value, &updatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan kv entry: %w", err)
		}
		entries = append(entries, Entry{
			Key:       key,
			Value:     json.RawMessage(value),
			UpdatedAt: time.UnixMilli(updatedAt),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate kv entries: %w", err)
	}

	return entries, nil
}
