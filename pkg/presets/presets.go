package presets

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/tosih/enginelog/pkg/models"
)

var (
	// ErrNotFound is returned when no preset has the requested name
	ErrNotFound = errors.New("preset not found")

	ErrNameRequired = errors.New("preset name is required")
	ErrNoColumns    = errors.New("preset has no columns")
)

// Preset is a named parameter selection that can be replayed on any log
// with the same columns
type Preset struct {
	ID          string                 `json:"id"`
	Name        string                 `json:"name"`
	Columns     []string               `json:"columns"`
	XColumn     string                 `json:"xColumn,omitempty"`
	Temperature models.TemperatureUnit `json:"temperature"`
	CreatedAt   string                 `json:"createdAt"`
	UpdatedAt   string                 `json:"updatedAt"`
}

const schema = `
CREATE TABLE IF NOT EXISTS presets (
	id          TEXT PRIMARY KEY,
	name        TEXT NOT NULL UNIQUE,
	columns     TEXT NOT NULL,
	x_column    TEXT NOT NULL DEFAULT '',
	temperature TEXT NOT NULL DEFAULT 'fahrenheit',
	created_at  TEXT NOT NULL,
	updated_at  TEXT NOT NULL
)`

// Store persists presets in a SQLite database
type Store struct {
	db *sql.DB
}

// Open opens or creates the preset database at path
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create preset directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open preset database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialise preset database: %w", err)
	}

	return &Store{db: db}, nil
}

// Close releases the database
func (s *Store) Close() error {
	return s.db.Close()
}

// Save inserts a preset, or updates the one with the same name. ID and
// CreatedAt of an existing preset are kept.
func (s *Store) Save(p *Preset) (*Preset, error) {
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		return nil, ErrNameRequired
	}
	if len(p.Columns) == 0 {
		return nil, ErrNoColumns
	}

	columns, err := json.Marshal(p.Columns)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC().Format(time.RFC3339)
	existing, err := s.Get(p.Name)
	switch {
	case err == nil:
		p.ID = existing.ID
		p.CreatedAt = existing.CreatedAt
	case errors.Is(err, ErrNotFound):
		p.ID = uuid.New().String()
		p.CreatedAt = now
	default:
		return nil, err
	}
	p.UpdatedAt = now

	_, err = s.db.Exec(`
		INSERT INTO presets (id, name, columns, x_column, temperature, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			columns = excluded.columns,
			x_column = excluded.x_column,
			temperature = excluded.temperature,
			updated_at = excluded.updated_at`,
		p.ID, p.Name, string(columns), p.XColumn, p.Temperature.String(), p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to save preset %s: %w", p.Name, err)
	}

	return p, nil
}

// Get returns the preset with the given name
func (s *Store) Get(name string) (*Preset, error) {
	row := s.db.QueryRow(`
		SELECT id, name, columns, x_column, temperature, created_at, updated_at
		FROM presets WHERE name = ?`, name)

	p, err := scanPreset(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return p, err
}

// List returns every preset ordered by name
func (s *Store) List() ([]*Preset, error) {
	rows, err := s.db.Query(`
		SELECT id, name, columns, x_column, temperature, created_at, updated_at
		FROM presets ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list presets: %w", err)
	}
	defer rows.Close()

	var out []*Preset
	for rows.Next() {
		p, err := scanPreset(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Delete removes the preset with the given name
func (s *Store) Delete(name string) error {
	res, err := s.db.Exec("DELETE FROM presets WHERE name = ?", name)
	if err != nil {
		return fmt.Errorf("failed to delete preset %s: %w", name, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanPreset(sc scanner) (*Preset, error) {
	var p Preset
	var columns, temp string

	if err := sc.Scan(&p.ID, &p.Name, &columns, &p.XColumn, &temp, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(columns), &p.Columns); err != nil {
		return nil, fmt.Errorf("preset %s has corrupt columns: %w", p.Name, err)
	}
	t, err := models.ParseTemperatureUnit(temp)
	if err != nil {
		return nil, fmt.Errorf("preset %s: %w", p.Name, err)
	}
	p.Temperature = t

	return &p, nil
}
