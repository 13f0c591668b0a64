package cli

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"

	catalog "pinmap/internal/catalog/domain"
	"pinmap/internal/config"
	"pinmap/internal/mapping/application"
	"pinmap/internal/mapping/infrastructure/csvfile"
	"pinmap/internal/mapping/infrastructure/memory"
	"pinmap/internal/mapping/infrastructure/postgres"
	"pinmap/internal/mapping/infrastructure/xlsx"
	"pinmap/internal/mapping/interfaces/pdf"
)

// dataBackend builds the data backend named by storage.
func (a *app) dataBackend(ctx context.Context, storage config.StorageConfig) (application.DataBackend, error) {
	switch storage.Backend {
	case config.BackendCSV:
		return csvfile.NewBackend(), nil
	case config.BackendXLSX:
		return xlsx.NewBackend(), nil
	case config.BackendMemory:
		return memory.NewBundleStore(), nil
	case config.BackendPostgres:
		db, err := a.database(ctx)
		if err != nil {
			return nil, err
		}
		store, err := postgres.NewSessionStore(db)
		if err != nil {
			return nil, err
		}
		if err := store.EnsureSchema(ctx); err != nil {
			return nil, fmt.Errorf("ensure schema: %w", err)
		}
		return store, nil
	default:
		return nil, fmt.Errorf("%w: unknown data backend %q", config.ErrInvalid, storage.Backend)
	}
}

// reportBackend returns nil for report backend "none".
func (a *app) reportBackend() application.ReportBackend {
	if a.cfg.Report.Backend == config.ReportPDF {
		return pdf.NewBackend()
	}
	return nil
}

func (a *app) database(ctx context.Context) (*sql.DB, error) {
	if a.db != nil {
		return a.db, nil
	}
	db, err := sql.Open("pgx", a.cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("db open: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db ping: %w", err)
	}
	a.db = db
	return db, nil
}

// readTable reads an options or mapping file, choosing the reader by extension.
func readTable(ctx context.Context, path string) (catalog.Table, error) {
	var backend application.DataBackend = csvfile.NewBackend()
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		backend = xlsx.NewBackend()
	}
	table, err := backend.ReadTable(ctx, path)
	if err != nil {
		return catalog.Table{}, fmt.Errorf("read %s: %w", path, err)
	}
	return table, nil
}
