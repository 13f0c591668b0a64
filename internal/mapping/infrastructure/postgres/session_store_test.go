package postgres

import (
	"context"
	"database/sql"
	"errors"
	"io/fs"
	"os"
	"testing"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	catalog "pinmap/internal/catalog/domain"
	"pinmap/internal/mapping/application"
)

func TestSessionStore_NilDB(t *testing.T) {
	_, err := NewSessionStore(nil)
	assert.Error(t, err)
}

func TestTableCodec(t *testing.T) {
	table := catalog.NewTable([]string{"Column", "Row"}, [][]string{{"C", "1"}, {"D", ""}})
	raw, err := encodeTable(table)
	require.NoError(t, err)
	got, err := decodeTable(raw)
	require.NoError(t, err)
	assert.Equal(t, table, got)

	raw, err = encodeTable(catalog.Table{Header: []string{"Column"}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"header":["Column"],"rows":[]}`, string(raw))
}

func TestSessionStore_RoundTrip(t *testing.T) {
	dsn := os.Getenv("PG_DSN")
	if dsn == "" {
		t.Skip("PG_DSN not set")
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	store, err := NewSessionStore(db, WithSessionsTable("pinmap_sessions_test"))
	require.NoError(t, err)
	require.NoError(t, store.EnsureSchema(ctx))
	_ = store.Delete(ctx, "Adapter_test")

	_, err = store.ReadBundle(ctx, "Adapter_test")
	assert.True(t, errors.Is(err, fs.ErrNotExist))

	bundle := application.Bundle{
		Options: catalog.NewTable([]string{"Board-Pin", "MCU-Pin"}, [][]string{{"J1.1", "P1"}}),
		Mapping: catalog.NewTable([]string{"Column", "Row"}, [][]string{{"C", "1"}}),
		Notes:   "first",
	}
	require.NoError(t, store.WriteBundle(ctx, "Adapter_test", bundle))
	bundle.Notes = "second"
	require.NoError(t, store.WriteBundle(ctx, "Adapter_test", bundle))

	got, err := store.ReadBundle(ctx, "Adapter_test")
	require.NoError(t, err)
	assert.Equal(t, bundle, got)
	require.NoError(t, store.Delete(ctx, "Adapter_test"))
}
