package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeKVsRedactsSecrets(t *testing.T) {
	out := sanitizeKVs([]interface{}{"user", "admin", "password", "hunter2", "db_dsn", "postgres://x", "dangling"})
	assert.Equal(t, []interface{}{"user", "admin", "password", "[REDACTED]", "db_dsn", "[REDACTED]", "dangling"}, out)
}

func TestNopLogger(t *testing.T) {
	l := Nop().With("component", "test")
	l.Info("ignored", "k", "v")
	l.Sync()
}
