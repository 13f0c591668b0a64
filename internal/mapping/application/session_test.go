package application

import (
	"context"
	"io/fs"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pinmap/internal/board"
	catalog "pinmap/internal/catalog/domain"
)

// fileStore keeps tables and notes by location and optionally bundles them.
type fileStore struct {
	UnsupportedBackend
	bundles bool
	tables  map[string]catalog.Table
	notes   map[string]string
	stored  map[string]Bundle
}

func newFileStore(bundles bool) *fileStore {
	return &fileStore{
		UnsupportedBackend: UnsupportedBackend{BackendName: "fake"},
		bundles:            bundles,
		tables:             map[string]catalog.Table{},
		notes:              map[string]string{},
		stored:             map[string]Bundle{},
	}
}

func (f *fileStore) DataExt() string      { return ".csv" }
func (f *fileStore) TextExt() string      { return ".md" }
func (f *fileStore) BundleExt() string    { return ".bundle" }
func (f *fileStore) SupportsBundle() bool { return f.bundles }

func (f *fileStore) ReadBundle(_ context.Context, location string) (Bundle, error) {
	b, ok := f.stored[location]
	if !ok {
		return Bundle{}, fs.ErrNotExist
	}
	return b, nil
}

func (f *fileStore) WriteBundle(_ context.Context, location string, b Bundle) error {
	f.stored[location] = b
	return nil
}

func (f *fileStore) ReadTable(_ context.Context, location string) (catalog.Table, error) {
	t, ok := f.tables[location]
	if !ok {
		return catalog.Table{}, fs.ErrNotExist
	}
	return t, nil
}

func (f *fileStore) WriteTable(_ context.Context, location string, t catalog.Table) error {
	f.tables[location] = t
	return nil
}

func (f *fileStore) ReadNotes(_ context.Context, location string) (string, error) {
	n, ok := f.notes[location]
	if !ok {
		return "", fs.ErrNotExist
	}
	return n, nil
}

func (f *fileStore) WriteNotes(_ context.Context, location string, notes string) error {
	f.notes[location] = notes
	return nil
}

type fakeReport struct {
	UnsupportedBackend
	written map[string]Report
}

func (f *fakeReport) Ext() string { return ".pdf" }

func (f *fakeReport) WriteReport(_ context.Context, location string, r Report) error {
	f.written[location] = r
	return nil
}

func testAdapter() board.Adapter {
	return board.Adapter{
		Revision:  "B",
		Baseboard: board.Board{Vendor: "MT", LongName: "Extension Board", ShortName: "EDB", Revision: "C"},
		MCUBoard:  board.Board{Vendor: "NXP", LongName: "LPCXpresso", ShortName: "LPC", Revision: "A"},
	}
}

func loadedSession(t *testing.T) *Session {
	t.Helper()
	s, err := NewSession(testAdapter(), WithAuthor("jdoe"), WithSessionClock(fixedClock{}))
	require.NoError(t, err)
	require.NoError(t, s.Generate(optionsTable(), mappingTable()))
	runPipeline(t, s.Run)
	return s
}

func TestSession_NotReady(t *testing.T) {
	s, err := NewSession(board.Adapter{})
	require.NoError(t, err)
	assert.Equal(t, "Adapter_A_ACME_PLK_A_ACME_PLK_A", s.Name())

	_, err = s.Snapshot()
	assert.ErrorIs(t, err, ErrStateNotReady)
	_, err = s.Submit(context.Background(), ClearAll{})
	assert.ErrorIs(t, err, ErrStateNotReady)
	_, err = s.BuildReport(context.Background())
	assert.ErrorIs(t, err, ErrStateNotReady)
	assert.ErrorIs(t, s.Run(context.Background()), ErrStateNotReady)
}

func TestSession_GenerateTwice(t *testing.T) {
	s := loadedSession(t)
	assert.ErrorIs(t, s.Generate(optionsTable(), mappingTable()), ErrAlreadyLoaded)
}

func TestSession_GenerateFormatError(t *testing.T) {
	s, err := NewSession(testAdapter())
	require.NoError(t, err)
	bad := catalog.NewTable([]string{"Board-Pin"}, nil)
	assert.ErrorIs(t, s.Generate(bad, mappingTable()), catalog.ErrFormat)
	_, err = s.Pipeline()
	assert.ErrorIs(t, err, ErrStateNotReady)
}

func TestSession_ShapeAndBuses(t *testing.T) {
	s := loadedSession(t)
	rows, cols, err := s.Shape()
	require.NoError(t, err)
	assert.Equal(t, 3, rows)
	assert.Equal(t, 2, cols)
	tags, err := s.BusTags()
	require.NoError(t, err)
	assert.Equal(t, []string{"", "B", "S"}, tags)
}

func TestSession_ExportImportDirectory(t *testing.T) {
	ctx := context.Background()
	s := loadedSession(t)
	s.SetNotes("* check level shifter\n- 3V3 only")
	_, err := s.Submit(ctx, Assign{Entry: pos("C", 1), Label: labelP1F1})
	require.NoError(t, err)
	_, err = s.Submit(ctx, Assign{Entry: pos("C", 2), Label: labelP1F2})
	require.NoError(t, err)

	store := newFileStore(false)
	report := &fakeReport{UnsupportedBackend: UnsupportedBackend{BackendName: "pdf"}, written: map[string]Report{}}
	require.NoError(t, s.Export(ctx, store, report, "out"))

	base := filepath.Join("out", s.Name())
	require.Contains(t, store.tables, filepath.Join(base, "mapping.csv"))
	require.Contains(t, store.tables, filepath.Join(base, "options.csv"))
	assert.Equal(t, "* check level shifter\n- 3V3 only", store.notes[filepath.Join(base, "notes.md")])
	r, ok := report.written[filepath.Join(base, s.Name()+".pdf")]
	require.True(t, ok)
	assert.Equal(t, "jdoe", r.Author)

	imported, err := NewSession(testAdapter())
	require.NoError(t, err)
	require.NoError(t, imported.Import(ctx, store, "out"))
	runPipeline(t, imported.Run)

	want, err := s.Snapshot()
	require.NoError(t, err)
	got, err := imported.Snapshot()
	require.NoError(t, err)
	for i := range want.Entries {
		assert.Equal(t, want.Entries[i].Candidate, got.Entries[i].Candidate)
		assert.Equal(t, want.Entries[i].Primary, got.Entries[i].Primary)
		assert.Equal(t, want.Entries[i].Selected, got.Entries[i].Selected)
	}
	assert.Equal(t, want.Buses, got.Buses)
	assert.Equal(t, s.Notes(), imported.Notes())
}

func TestSession_ExportImportBundle(t *testing.T) {
	ctx := context.Background()
	s := loadedSession(t)
	_, err := s.Submit(ctx, Assign{Entry: pos("D", 2), Label: labelP2F1})
	require.NoError(t, err)

	store := newFileStore(true)
	require.NoError(t, s.Export(ctx, store, nil, "out"))
	require.Contains(t, store.stored, filepath.Join("out", s.Name()+".bundle"))

	imported, err := NewSession(testAdapter())
	require.NoError(t, err)
	require.NoError(t, imported.Import(ctx, store, "out"))
	snap, err := imported.Snapshot()
	require.NoError(t, err)
	bus, _ := snap.Bus("S")
	assert.True(t, bus.Locked)
	assert.Equal(t, "ModB", bus.Module)
}

func TestSession_ImportMissingNotes(t *testing.T) {
	ctx := context.Background()
	store := newFileStore(false)
	s, err := NewSession(testAdapter())
	require.NoError(t, err)
	base := filepath.Join("in", s.Name())
	store.tables[filepath.Join(base, "mapping.csv")] = mappingTable()
	store.tables[filepath.Join(base, "options.csv")] = optionsTable()
	require.NoError(t, s.Import(ctx, store, "in"))
	assert.Empty(t, s.Notes())
}

func TestSession_UnsupportedBackend(t *testing.T) {
	ctx := context.Background()
	s := loadedSession(t)
	readOnly := UnsupportedBackend{BackendName: "readonly"}
	err := s.Export(ctx, readOnly, nil, "out")
	require.ErrorIs(t, err, ErrUnsupported)
	var unsupported *UnsupportedOperationError
	require.ErrorAs(t, err, &unsupported)
	assert.Equal(t, "readonly", unsupported.Backend)
	assert.True(t, strings.Contains(err.Error(), "write table"))

	// The grid is untouched and still serves requests.
	_, err = s.Submit(ctx, Assign{Entry: pos("C", 1), Label: labelP1F1})
	require.NoError(t, err)
	p, err := s.Pipeline()
	require.NoError(t, err)
	flush(t, p)
	c1, _ := p.Snapshot().Entry("C1")
	assert.True(t, c1.Primary)
}

func TestSession_BuildReport(t *testing.T) {
	ctx := context.Background()
	s := loadedSession(t)
	s.SetNotes("note")
	_, err := s.Submit(ctx, Assign{Entry: pos("C", 2), Label: labelP1F2})
	require.NoError(t, err)

	r, err := s.BuildReport(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Adapter_B_MT_EDB_C_NXP_LPC_A", r.Name)
	assert.Equal(t, "Adapter for NXP LPCXpresso on MT Extension Board", r.Title)
	assert.Equal(t, fixedClock{}.Now(), r.Date)
	assert.Equal(t, "note", r.Notes)
	require.Len(t, r.Entries, 5)

	c2 := r.Entries[1]
	assert.Equal(t, "C2", c2.Position)
	assert.Equal(t, "SIG_RX", c2.Signal)
	assert.True(t, c2.Assigned)
	assert.Equal(t, "P1", c2.MCUPin)
	assert.Equal(t, "Func2", c2.Function)
	assert.Equal(t, 0, c2.ColumnIndex)
	assert.Equal(t, 1, c2.RowIndex)
	assert.False(t, r.Entries[0].Assigned)
}

func TestShortSignal(t *testing.T) {
	cases := map[string]string{
		"SPI_MOSI":      "SPI_MOSI",
		"SIG_RX/ALT":    "SIG_RX",
		"UART__TX-3V3":  "UART__TX",
		"  I2C1_SDA ":   "I2C1_SDA",
		"":              "",
		"ADC0_IN1_TEST": "ADC0_IN1",
	}
	for in, want := range cases {
		assert.Equal(t, want, ShortSignal(in), in)
	}
}
