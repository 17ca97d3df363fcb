// Package store persists deals in a SQLite database and autosaves edits.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/iwvelando/sba-spread/pkg/spread"
	"gopkg.in/yaml.v3"

	_ "modernc.org/sqlite" // register sqlite driver
)

// ErrNotFound is returned when no deal is stored under a key.
var ErrNotFound = errors.New("deal not found")

// DB is a SQLite-backed deal store. Deals are kept as YAML documents.
type DB struct {
	db *sql.DB
}

// Entry describes one stored deal.
type Entry struct {
	Key     string    `json:"key"`
	Name    string    `json:"name"`
	SavedAt time.Time `json:"savedAt"`
}

// Open opens or creates the database at the given path.
func Open(dbPath string) (*DB, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("creating store dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=synchronous(normal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening store db: %w", err)
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &DB{db: db}, nil
}

// Close closes the database.
func (d *DB) Close() error {
	return d.db.Close()
}

// Put stores deal under key, replacing any earlier version.
func (d *DB) Put(key string, deal spread.Deal) error {
	if key == "" {
		return errors.New("deal key must not be empty")
	}
	body, err := yaml.Marshal(deal)
	if err != nil {
		return fmt.Errorf("encoding deal %s: %w", key, err)
	}

	now := time.Now().UTC().Format(time.RFC3339Nano)
	_, err = d.db.Exec(`INSERT OR REPLACE INTO deals (deal_key, name, body, saved_at)
		VALUES (?, ?, ?, ?)`, key, deal.Name, string(body), now)
	if err != nil {
		return fmt.Errorf("saving deal %s: %w", key, err)
	}
	return nil
}

// Get loads the deal stored under key.
func (d *DB) Get(key string) (spread.Deal, error) {
	var body string
	err := d.db.QueryRow("SELECT body FROM deals WHERE deal_key = ?", key).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return spread.Deal{}, fmt.Errorf("%s: %w", key, ErrNotFound)
	}
	if err != nil {
		return spread.Deal{}, fmt.Errorf("loading deal %s: %w", key, err)
	}

	var deal spread.Deal
	if err := yaml.Unmarshal([]byte(body), &deal); err != nil {
		return spread.Deal{}, fmt.Errorf("decoding deal %s: %w", key, err)
	}
	return deal, nil
}

// List returns every stored deal, most recently saved first.
func (d *DB) List() ([]Entry, error) {
	rows, err := d.db.Query("SELECT deal_key, name, saved_at FROM deals ORDER BY saved_at DESC, deal_key")
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var savedAt string
		if err := rows.Scan(&e.Key, &e.Name, &savedAt); err != nil {
			return nil, err
		}
		e.SavedAt, _ = time.Parse(time.RFC3339Nano, savedAt)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Delete removes the deal stored under key.
func (d *DB) Delete(key string) error {
	res, err := d.db.Exec("DELETE FROM deals WHERE deal_key = ?", key)
	if err != nil {
		return fmt.Errorf("deleting deal %s: %w", key, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", key, ErrNotFound)
	}
	return nil
}
