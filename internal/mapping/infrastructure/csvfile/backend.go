package csvfile

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	catalog "pinmap/internal/catalog/domain"
	"pinmap/internal/mapping/application"
)

const (
	backendName = "csv"
	dataExt     = ".csv"
	textExt     = ".md"
)

// Backend stores each table as a CSV file and the notes as a markdown file.
// It has no bundle support, so sessions are written as a directory.
type Backend struct {
	application.UnsupportedBackend
	comma rune
	perm  os.FileMode
}

// Option configures the backend.
type Option func(*Backend)

// WithComma overrides the field delimiter.
func WithComma(comma rune) Option {
	return func(b *Backend) {
		if comma != 0 {
			b.comma = comma
		}
	}
}

// NewBackend constructs a CSV backend.
func NewBackend(opts ...Option) *Backend {
	b := &Backend{
		UnsupportedBackend: application.UnsupportedBackend{BackendName: backendName},
		comma:              ',',
		perm:               0o755,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func (b *Backend) DataExt() string { return dataExt }
func (b *Backend) TextExt() string { return textExt }

// ReadTable reads a CSV file whose first record is the header.
func (b *Backend) ReadTable(ctx context.Context, location string) (catalog.Table, error) {
	if err := ctx.Err(); err != nil {
		return catalog.Table{}, err
	}
	f, err := os.Open(location)
	if err != nil {
		return catalog.Table{}, err
	}
	defer f.Close()
	return b.decode(f, location)
}

func (b *Backend) decode(r io.Reader, location string) (catalog.Table, error) {
	reader := csv.NewReader(r)
	reader.Comma = b.comma
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return catalog.Table{}, fmt.Errorf("csv: read %s: %w", location, err)
	}
	if len(records) == 0 {
		return catalog.Table{}, fmt.Errorf("csv: read %s: %w", location, catalog.ErrFormat)
	}
	return catalog.NewTable(records[0], records[1:]), nil
}

// WriteTable writes the table to location, creating parent directories.
func (b *Backend) WriteTable(ctx context.Context, location string, table catalog.Table) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(table.Header) == 0 {
		return errors.New("csv: empty header")
	}
	if err := os.MkdirAll(filepath.Dir(location), b.perm); err != nil {
		return err
	}
	f, err := os.Create(location)
	if err != nil {
		return err
	}
	writer := csv.NewWriter(f)
	writer.Comma = b.comma
	if err := writer.Write(table.Header); err != nil {
		f.Close()
		return err
	}
	for _, row := range table.Rows {
		if err := writer.Write(row); err != nil {
			f.Close()
			return err
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// ReadNotes reads the notes file. A missing file yields fs.ErrNotExist.
func (b *Backend) ReadNotes(ctx context.Context, location string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	data, err := os.ReadFile(location)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// WriteNotes writes the notes file, creating parent directories.
func (b *Backend) WriteNotes(ctx context.Context, location string, notes string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(location), b.perm); err != nil {
		return err
	}
	return os.WriteFile(location, []byte(notes), 0o644)
}
