package pdf

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"pinmap/internal/mapping/application"
)

const (
	backendName = "pdf"
	ext         = ".pdf"

	margin     = 10.0
	tableGap   = 4.0
	cellHeight = 4.8
	fontFamily = "Arial"
)

// Backend renders adapter reports with gofpdf.
type Backend struct {
	application.UnsupportedBackend
}

// NewBackend constructs a PDF report backend.
func NewBackend() *Backend {
	return &Backend{UnsupportedBackend: application.UnsupportedBackend{BackendName: backendName}}
}

func (b *Backend) Ext() string { return ext }

// WriteReport renders the report to location, creating parent directories.
func (b *Backend) WriteReport(ctx context.Context, location string, r application.Report) error {
	data, err := b.Render(ctx, r)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(location), 0o755); err != nil {
		return err
	}
	return os.WriteFile(location, data, 0o644)
}

// Render builds the title page, the notes page and the landscape mapping pages.
func (b *Backend) Render(ctx context.Context, r application.Report) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	filename := r.Name + ext

	pdf.SetTitle(r.Title, true)
	pdf.SetAuthor(r.Author, true)
	pdf.SetCreationDate(r.Date)
	pdf.SetMargins(margin, margin+6, margin)
	pdf.SetAutoPageBreak(true, margin+6)
	pdf.AliasNbPages("")
	pdf.SetHeaderFunc(func() {
		w, _ := pdf.GetPageSize()
		pdf.SetFont(fontFamily, "", 8)
		pdf.SetXY(margin, margin-4)
		pdf.CellFormat(w-2*margin, 4, tr(filename), "", 0, "R", false, 0, "")
	})
	pdf.SetFooterFunc(func() {
		w, _ := pdf.GetPageSize()
		pdf.SetFont(fontFamily, "", 8)
		pdf.SetY(-margin - 2)
		pdf.SetX(margin)
		pdf.CellFormat(w-2*margin, 4, fmt.Sprintf("%d/{nb}", pdf.PageNo()), "", 0, "R", false, 0, "")
	})

	titlePage(pdf, tr, r)
	notesPage(pdf, tr, r.Notes)
	for _, group := range Layout(r) {
		for _, page := range group.Pages {
			mappingPage(pdf, tr, group.Name, page)
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("pdf: render %s: %w", r.Name, err)
	}
	return buf.Bytes(), nil
}

func titlePage(pdf *gofpdf.Fpdf, tr func(string) string, r application.Report) {
	pdf.AddPage()
	pdf.Ln(10)
	pdf.SetFont(fontFamily, "B", 18)
	pdf.MultiCell(0, 9, tr(r.Title), "", "L", false)
	pdf.Ln(15)

	base := r.Adapter.Baseboard
	mcu := r.Adapter.MCUBoard
	pdf.SetFont(fontFamily, "B", 13)
	for _, line := range []string{
		"Author: " + r.Author,
		"Date: " + r.Date.Format("2006-01-02"),
		"Adapter-Revision: " + r.Adapter.Revision,
		"Baseboard: " + strings.Join([]string{base.Vendor, base.ShortName, base.Revision}, "_"),
		"MCU-Board: " + strings.Join([]string{mcu.Vendor, mcu.ShortName, mcu.Revision}, "_"),
	} {
		pdf.CellFormat(0, 8, tr(line), "", 1, "L", false, 0, "")
	}
}

func notesPage(pdf *gofpdf.Fpdf, tr func(string) string, notes string) {
	pdf.AddPage()
	pdf.SetFont(fontFamily, "B", 13)
	pdf.CellFormat(0, 8, "Important Notes", "", 1, "L", false, 0, "")
	pdf.Ln(2)

	pdf.SetFont(fontFamily, "", 10)
	for _, line := range NoteLines(notes) {
		y := pdf.GetY()
		pdf.SetFillColor(89, 255, 0)
		pdf.Rect(margin+3, y+2, 1.6, 1.6, "F")
		pdf.SetX(margin + 7)
		pdf.MultiCell(0, 5.5, tr(line), "", "L", false)
		pdf.Ln(1)
	}
}

func mappingPage(pdf *gofpdf.Fpdf, tr func(string) string, group string, page Page) {
	pdf.AddPageFormat("L", pdf.GetPageSizeStr("A4"))
	pdf.SetFont(fontFamily, "B", 13)
	pdf.CellFormat(0, 8, "Pin Mappings - "+group, "", 1, "L", false, 0, "")
	pdf.Ln(1)

	w, _ := pdf.GetPageSize()
	tableWidth := (w - 2*margin - (TablesPerPage-1)*tableGap) / TablesPerPage
	colWidth := tableWidth / 2
	top := pdf.GetY()

	for t, table := range page {
		x := margin + float64(t)*(tableWidth+tableGap)
		for row, cells := range table {
			y := top + float64(row)*cellHeight
			style, align := "", "L"
			if row == 0 {
				style, align = "B", "C"
			}
			pdf.SetFont(fontFamily, style, 7)
			if row%2 == 0 {
				pdf.SetFillColor(200, 200, 200)
			} else {
				pdf.SetFillColor(255, 255, 255)
			}
			for c, text := range cells {
				pdf.SetXY(x+float64(c)*colWidth, y)
				pdf.CellFormat(colWidth, cellHeight, tr(text), "1", 0, align, true, 0, "")
			}
		}
	}
	pdf.SetY(top + RowsPerTable*cellHeight)
}
