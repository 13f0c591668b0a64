package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestSanitizeKVs(t *testing.T) {
	out := sanitizeKVs([]interface{}{"entry", "C3", "jwt_secret", "s3cr3t", "database_dsn", "postgres://u:p@h/db", "dangling"})
	assert.Equal(t, []interface{}{"entry", "C3", "jwt_secret", "[REDACTED]", "database_dsn", "[REDACTED]", "dangling"}, out)
}

func TestLoggerWritesFields(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	l := &Logger{SugaredLogger: zap.New(core).Sugar()}
	l.With("session", "Adapter_A").Warn("label not offered", "entry", "C3", "token", "abc")

	entries := logs.All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "Adapter_A", fields["session"])
	assert.Equal(t, "C3", fields["entry"])
	assert.Equal(t, "[REDACTED]", fields["token"])
}

func TestNewModes(t *testing.T) {
	for _, mode := range []string{"dev", "prod", "debug", ""} {
		l, err := New(mode)
		require.NoError(t, err, mode)
		l.Info("started", "mode", mode)
	}
	Nop().Error("discarded")
}
