package audit

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPrepare(t *testing.T) {
	now := time.Date(2024, 5, 17, 11, 0, 0, 0, time.FixedZone("CEST", 2*3600))
	entry := Prepare(Entry{Action: "assign", Metadata: json.RawMessage(`{"label":"x"}`)}, now)

	assert.True(t, strings.HasPrefix(entry.ID, "audit-"))
	assert.Equal(t, now.UTC(), entry.CreatedAt)
	assert.Len(t, entry.PayloadDigest, 64)
	assert.Equal(t, DigestJSON([]byte(`{"label":"x"}`)), entry.PayloadDigest)

	kept := Prepare(Entry{ID: "fixed", PayloadDigest: "d"}, now)
	assert.Equal(t, "fixed", kept.ID)
	assert.Equal(t, "d", kept.PayloadDigest)
	assert.Empty(t, DigestJSON(nil))
}

func TestRepository_NilDB(t *testing.T) {
	var repo *Repository = NewRepository(nil)
	assert.Nil(t, repo)
	assert.Error(t, repo.Log(context.Background(), Entry{}))
	assert.Error(t, repo.EnsureSchema(context.Background()))
}

func TestClientIP(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/api/v1/grid/assign", nil)
	r.RemoteAddr = "10.0.0.7:51234"
	assert.Equal(t, "10.0.0.7", ClientIP(r))

	r.Header.Set("X-Real-IP", " 192.168.1.2 ")
	assert.Equal(t, "192.168.1.2", ClientIP(r))

	r.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")
	assert.Equal(t, "203.0.113.9", ClientIP(r))

	assert.Empty(t, ClientIP(nil))
}
