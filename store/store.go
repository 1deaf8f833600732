// Package store keeps a history of parsed reports in SQLite so that the
// configuration of an element can be compared over time.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog"
	"github.com/smallnest/goequip"
	_ "modernc.org/sqlite" // SQLite driver
)

// DBFile is the database file name inside the store directory.
const DBFile = "goequip.db"

// ErrNoSnapshot is returned when an element has no saved snapshot.
var ErrNoSnapshot = errors.New("no snapshot found")

// Snapshot is one parsed report as saved at a point in time.
type Snapshot struct {
	ID      uuid.UUID            `json:"id"`
	Element string               `json:"element"`
	Source  string               `json:"source"`
	Status  string               `json:"status"`
	Table   *goequip.RecordTable `json:"table"`
	TakenAt time.Time            `json:"taken_at"`
}

// NewSnapshot captures the current state of the report behind p.
func NewSnapshot(p *goequip.ReportParser) (*Snapshot, error) {
	status, err := p.ResultOfOperation()
	if err != nil {
		return nil, err
	}
	table, err := p.ToTable()
	if err != nil {
		return nil, err
	}
	return &Snapshot{
		Element: p.ElementName,
		Source:  p.Path,
		Status:  status,
		Table:   table,
	}, nil
}

// snapshotRow is the database shape of a Snapshot.
type snapshotRow struct {
	ID        string `db:"id"`
	Element   string `db:"element"`
	Source    string `db:"source"`
	Status    string `db:"status"`
	TableJSON string `db:"table_json"`
	TakenAt   int64  `db:"taken_at"`
}

func (r snapshotRow) snapshot() (*Snapshot, error) {
	id, err := uuid.Parse(r.ID)
	if err != nil {
		return nil, fmt.Errorf("invalid snapshot id %q: %w", r.ID, err)
	}
	var table goequip.RecordTable
	if err := json.Unmarshal([]byte(r.TableJSON), &table); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot %s: %w", r.ID, err)
	}
	return &Snapshot{
		ID:      id,
		Element: r.Element,
		Source:  r.Source,
		Status:  r.Status,
		Table:   &table,
		TakenAt: time.Unix(0, r.TakenAt).UTC(),
	}, nil
}

// Options configures Open.
type Options struct {
	// CreateIfNotExists creates the directory and database file if missing.
	CreateIfNotExists bool
	// EnableWAL turns on write-ahead logging.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Store is a SQLite-backed snapshot history.
type Store struct {
	db *sqlx.DB
}

// New wraps an already opened database. The schema must exist.
func New(db *sqlx.DB) *Store {
	return &Store{db: db}
}

// Open opens or creates the snapshot database in dir.
func Open(dir string, opts Options) (*Store, error) {
	dbPath := filepath.Join(dir, DBFile)

	var dsn string
	if opts.CreateIfNotExists {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
		dsn = dbPath + "?mode=rwc"
	} else {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
		dsn = dbPath + "?mode=rw"
	}

	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// SQLite only supports one writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	ctx := context.Background()
	if opts.EnableWAL {
		if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	s := New(db)
	if err := s.createTables(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createTables(ctx context.Context) error {
	const schema = `
	CREATE TABLE IF NOT EXISTS snapshots (
		id TEXT PRIMARY KEY,
		element TEXT NOT NULL,
		source TEXT NOT NULL,
		status TEXT NOT NULL,
		table_json TEXT NOT NULL,
		taken_at INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_snapshots_element ON snapshots(element, taken_at);
	`
	_, err := s.db.ExecContext(ctx, schema)
	return err
}

// Save stores snap. A missing ID or timestamp is filled in.
func (s *Store) Save(ctx context.Context, snap *Snapshot) error {
	if snap.ID == uuid.Nil {
		snap.ID = uuid.New()
	}
	if snap.TakenAt.IsZero() {
		snap.TakenAt = time.Now().UTC()
	}
	tableJSON, err := json.Marshal(snap.Table)
	if err != nil {
		return fmt.Errorf("failed to encode table: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO snapshots (id, element, source, status, table_json, taken_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, snap.ID.String(), snap.Element, snap.Source, snap.Status, string(tableJSON), snap.TakenAt.UnixNano())
	if err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}

	zerolog.Ctx(ctx).Debug().
		Str("id", snap.ID.String()).
		Str("element", snap.Element).
		Msg("snapshot saved")
	return nil
}

// History returns the snapshots of element, newest first. A limit of zero
// or less returns all of them.
func (s *Store) History(ctx context.Context, element string, limit int) ([]*Snapshot, error) {
	if limit <= 0 {
		limit = -1
	}
	var rows []snapshotRow
	err := s.db.SelectContext(ctx, &rows, `
		SELECT id, element, source, status, table_json, taken_at
		FROM snapshots
		WHERE element = ?
		ORDER BY taken_at DESC
		LIMIT ?
	`, element, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}

	snaps := make([]*Snapshot, 0, len(rows))
	for _, r := range rows {
		snap, err := r.snapshot()
		if err != nil {
			return nil, err
		}
		snaps = append(snaps, snap)
	}
	return snaps, nil
}

// Latest returns the newest snapshot of element.
func (s *Store) Latest(ctx context.Context, element string) (*Snapshot, error) {
	var r snapshotRow
	err := s.db.GetContext(ctx, &r, `
		SELECT id, element, source, status, table_json, taken_at
		FROM snapshots
		WHERE element = ?
		ORDER BY taken_at DESC
		LIMIT 1
	`, element)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w for element %s", ErrNoSnapshot, element)
		}
		return nil, fmt.Errorf("failed to query latest snapshot: %w", err)
	}
	return r.snapshot()
}

// Elements lists every element with at least one snapshot.
func (s *Store) Elements(ctx context.Context) ([]string, error) {
	var elements []string
	if err := s.db.SelectContext(ctx, &elements, `SELECT DISTINCT element FROM snapshots ORDER BY element`); err != nil {
		return nil, fmt.Errorf("failed to list elements: %w", err)
	}
	return elements, nil
}
