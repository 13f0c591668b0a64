package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"

	catalog "pinmap/internal/catalog/domain"
	"pinmap/internal/mapping/application"
)

// DefaultSessionsTable stores one row per adapter session.
const DefaultSessionsTable = "pinmap_sessions"

// SessionStore is a Postgres bundle backend. The location of a bundle is its adapter name.
type SessionStore struct {
	application.UnsupportedBackend
	db    *sql.DB
	table string
}

// SessionStoreOption configures the store.
type SessionStoreOption func(*SessionStore)

// WithSessionsTable overrides the table name.
func WithSessionsTable(table string) SessionStoreOption {
	return func(s *SessionStore) {
		if table != "" {
			s.table = table
		}
	}
}

// NewSessionStore constructs a store.
func NewSessionStore(db *sql.DB, opts ...SessionStoreOption) (*SessionStore, error) {
	if db == nil {
		return nil, errors.New("session store: nil db")
	}
	s := &SessionStore{
		UnsupportedBackend: application.UnsupportedBackend{BackendName: "postgres"},
		db:                 db,
		table:              DefaultSessionsTable,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Table returns the sessions table name.
func (s *SessionStore) Table() string {
	return s.table
}

func (s *SessionStore) SupportsBundle() bool { return true }

// EnsureSchema creates the sessions table when missing.
func (s *SessionStore) EnsureSchema(ctx context.Context) error {
	query := fmt.Sprintf(`
CREATE TABLE IF NOT EXISTS %s (
	name TEXT PRIMARY KEY,
	options JSONB NOT NULL,
	mapping JSONB NOT NULL,
	notes TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`, s.table)
	_, err := s.db.ExecContext(ctx, query)
	return err
}

type tableRecord struct {
	Header []string   `json:"header"`
	Rows   [][]string `json:"rows"`
}

// ReadBundle loads the session stored under location. A missing row yields fs.ErrNotExist.
func (s *SessionStore) ReadBundle(ctx context.Context, location string) (application.Bundle, error) {
	if location == "" {
		return application.Bundle{}, errors.New("session store: empty name")
	}
	query := fmt.Sprintf(`
SELECT options, mapping, notes
FROM %s
WHERE name = $1`, s.table)

	var options, mappingRaw []byte
	var notes string
	err := s.db.QueryRowContext(ctx, query, location).Scan(&options, &mappingRaw, &notes)
	if errors.Is(err, sql.ErrNoRows) {
		return application.Bundle{}, fmt.Errorf("session store: %s: %w", location, fs.ErrNotExist)
	}
	if err != nil {
		return application.Bundle{}, err
	}

	bundle := application.Bundle{Notes: notes}
	if bundle.Options, err = decodeTable(options); err != nil {
		return application.Bundle{}, fmt.Errorf("session store: options: %w", err)
	}
	if bundle.Mapping, err = decodeTable(mappingRaw); err != nil {
		return application.Bundle{}, fmt.Errorf("session store: mapping: %w", err)
	}
	return bundle, nil
}

// WriteBundle upserts the session stored under location.
func (s *SessionStore) WriteBundle(ctx context.Context, location string, bundle application.Bundle) error {
	if location == "" {
		return errors.New("session store: empty name")
	}
	options, err := encodeTable(bundle.Options)
	if err != nil {
		return err
	}
	mappingRaw, err := encodeTable(bundle.Mapping)
	if err != nil {
		return err
	}

	query := fmt.Sprintf(`
INSERT INTO %s (
	name,
	options,
	mapping,
	notes
) VALUES (
	$1, $2, $3, $4
)
ON CONFLICT (name)
DO UPDATE SET
	options = EXCLUDED.options,
	mapping = EXCLUDED.mapping,
	notes = EXCLUDED.notes,
	updated_at = NOW()`, s.table)

	_, err = s.db.ExecContext(ctx, query, location, options, mappingRaw, bundle.Notes)
	return err
}

// Delete removes a stored session.
func (s *SessionStore) Delete(ctx context.Context, name string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE name = $1`, s.table)
	_, err := s.db.ExecContext(ctx, query, name)
	return err
}

func encodeTable(t catalog.Table) ([]byte, error) {
	rows := t.Rows
	if rows == nil {
		rows = [][]string{}
	}
	return json.Marshal(tableRecord{Header: t.Header, Rows: rows})
}

func decodeTable(raw []byte) (catalog.Table, error) {
	var record tableRecord
	if err := json.Unmarshal(raw, &record); err != nil {
		return catalog.Table{}, err
	}
	return catalog.NewTable(record.Header, record.Rows), nil
}
