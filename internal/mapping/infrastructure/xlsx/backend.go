package xlsx

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	catalog "pinmap/internal/catalog/domain"
	"pinmap/internal/mapping/application"
)

// Sheet names of a bundle workbook.
const (
	OptionsSheet = "options"
	MappingSheet = "mapping"
	NotesSheet   = "notes"
)

const (
	backendName  = "xlsx"
	ext          = ".xlsx"
	defaultSheet = "Sheet1"
)

// Backend stores a whole session in one workbook. Single tables are read from and written to
// the first sheet of a workbook.
type Backend struct {
	application.UnsupportedBackend
}

// NewBackend constructs an XLSX backend.
func NewBackend() *Backend {
	return &Backend{UnsupportedBackend: application.UnsupportedBackend{BackendName: backendName}}
}

func (b *Backend) DataExt() string      { return ext }
func (b *Backend) BundleExt() string    { return ext }
func (b *Backend) SupportsBundle() bool { return true }

// ReadBundle loads the options, mapping and notes sheets.
func (b *Backend) ReadBundle(ctx context.Context, location string) (application.Bundle, error) {
	if err := ctx.Err(); err != nil {
		return application.Bundle{}, err
	}
	f, err := excelize.OpenFile(location)
	if err != nil {
		return application.Bundle{}, err
	}
	defer f.Close()

	var bundle application.Bundle
	if bundle.Options, err = readSheet(f, OptionsSheet); err != nil {
		return application.Bundle{}, err
	}
	if bundle.Mapping, err = readSheet(f, MappingSheet); err != nil {
		return application.Bundle{}, err
	}
	if index, _ := f.GetSheetIndex(NotesSheet); index >= 0 {
		if bundle.Notes, err = f.GetCellValue(NotesSheet, "A1"); err != nil {
			return application.Bundle{}, err
		}
	}
	return bundle, nil
}

// WriteBundle writes the options, mapping and notes sheets to location.
func (b *Backend) WriteBundle(ctx context.Context, location string, bundle application.Bundle) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(defaultSheet, OptionsSheet); err != nil {
		return err
	}
	if err := writeSheet(f, OptionsSheet, bundle.Options); err != nil {
		return err
	}
	if _, err := f.NewSheet(MappingSheet); err != nil {
		return err
	}
	if err := writeSheet(f, MappingSheet, bundle.Mapping); err != nil {
		return err
	}
	if _, err := f.NewSheet(NotesSheet); err != nil {
		return err
	}
	if err := f.SetCellStr(NotesSheet, "A1", bundle.Notes); err != nil {
		return err
	}
	return save(f, location)
}

// ReadTable reads the first sheet of a workbook.
func (b *Backend) ReadTable(ctx context.Context, location string) (catalog.Table, error) {
	if err := ctx.Err(); err != nil {
		return catalog.Table{}, err
	}
	f, err := excelize.OpenFile(location)
	if err != nil {
		return catalog.Table{}, err
	}
	defer f.Close()
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return catalog.Table{}, fmt.Errorf("xlsx: %s has no sheets: %w", location, catalog.ErrFormat)
	}
	return readSheet(f, sheets[0])
}

// WriteTable writes a single-sheet workbook.
func (b *Backend) WriteTable(ctx context.Context, location string, table catalog.Table) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f := excelize.NewFile()
	defer f.Close()
	if err := writeSheet(f, defaultSheet, table); err != nil {
		return err
	}
	return save(f, location)
}

func readSheet(f *excelize.File, sheet string) (catalog.Table, error) {
	rows, err := f.GetRows(sheet)
	if err != nil {
		return catalog.Table{}, fmt.Errorf("xlsx: read sheet %s: %w", sheet, err)
	}
	if len(rows) == 0 {
		return catalog.Table{}, fmt.Errorf("xlsx: sheet %s is empty: %w", sheet, catalog.ErrFormat)
	}
	header := rows[0]
	body := make([][]string, 0, len(rows)-1)
	// GetRows drops trailing empty cells.
	for _, row := range rows[1:] {
		if len(row) < len(header) {
			padded := make([]string, len(header))
			copy(padded, row)
			row = padded
		}
		body = append(body, row)
	}
	return catalog.NewTable(header, body), nil
}

func writeSheet(f *excelize.File, sheet string, table catalog.Table) error {
	if len(table.Header) == 0 {
		return errors.New("xlsx: empty header")
	}
	if err := writeRow(f, sheet, 1, table.Header); err != nil {
		return err
	}
	for i, row := range table.Rows {
		if err := writeRow(f, sheet, i+2, row); err != nil {
			return err
		}
	}
	return nil
}

func writeRow(f *excelize.File, sheet string, row int, cells []string) error {
	for col, value := range cells {
		cell, err := excelize.CoordinatesToCellName(col+1, row)
		if err != nil {
			return err
		}
		if err := f.SetCellStr(sheet, cell, value); err != nil {
			return err
		}
	}
	return nil
}

func save(f *excelize.File, location string) error {
	if err := os.MkdirAll(filepath.Dir(location), 0o755); err != nil {
		return err
	}
	return f.SaveAs(location)
}
