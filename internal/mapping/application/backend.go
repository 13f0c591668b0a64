package application

import (
	"context"

	catalog "pinmap/internal/catalog/domain"
)

// Bundle is everything needed to restore a session.
type Bundle struct {
	Mapping catalog.Table
	Options catalog.Table
	Notes   string
}

// DataBackend reads and writes session data. Backends that lack a capability return
// *UnsupportedOperationError from the corresponding method.
type DataBackend interface {
	Name() string
	// DataExt and TextExt name the file extensions of tables and notes, e.g. ".csv" and ".md".
	DataExt() string
	TextExt() string
	// BundleExt is appended to the adapter name for bundle locations.
	BundleExt() string
	SupportsBundle() bool

	ReadBundle(ctx context.Context, location string) (Bundle, error)
	WriteBundle(ctx context.Context, location string, bundle Bundle) error
	ReadTable(ctx context.Context, location string) (catalog.Table, error)
	WriteTable(ctx context.Context, location string, table catalog.Table) error
	ReadNotes(ctx context.Context, location string) (string, error)
	WriteNotes(ctx context.Context, location string, notes string) error
}

// ReportBackend renders a report.
type ReportBackend interface {
	Name() string
	Ext() string
	Render(ctx context.Context, report Report) ([]byte, error)
	WriteReport(ctx context.Context, location string, report Report) error
}

// UnsupportedBackend implements every DataBackend and ReportBackend operation as unsupported.
// Embed it and override what a backend supports.
type UnsupportedBackend struct {
	BackendName string
}

func (b UnsupportedBackend) Name() string         { return b.BackendName }
func (b UnsupportedBackend) DataExt() string      { return "" }
func (b UnsupportedBackend) TextExt() string      { return "" }
func (b UnsupportedBackend) BundleExt() string    { return "" }
func (b UnsupportedBackend) Ext() string          { return "" }
func (b UnsupportedBackend) SupportsBundle() bool { return false }

func (b UnsupportedBackend) unsupported(op string) error {
	return &UnsupportedOperationError{Backend: b.BackendName, Operation: op}
}

func (b UnsupportedBackend) ReadBundle(context.Context, string) (Bundle, error) {
	return Bundle{}, b.unsupported("read bundle")
}

func (b UnsupportedBackend) WriteBundle(context.Context, string, Bundle) error {
	return b.unsupported("write bundle")
}

func (b UnsupportedBackend) ReadTable(context.Context, string) (catalog.Table, error) {
	return catalog.Table{}, b.unsupported("read table")
}

func (b UnsupportedBackend) WriteTable(context.Context, string, catalog.Table) error {
	return b.unsupported("write table")
}

func (b UnsupportedBackend) ReadNotes(context.Context, string) (string, error) {
	return "", b.unsupported("read notes")
}

func (b UnsupportedBackend) WriteNotes(context.Context, string, string) error {
	return b.unsupported("write notes")
}

func (b UnsupportedBackend) Render(context.Context, Report) ([]byte, error) {
	return nil, b.unsupported("render report")
}

func (b UnsupportedBackend) WriteReport(context.Context, string, Report) error {
	return b.unsupported("write report")
}
