package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/yungbote/pdataviewer-backend/internal/pkg/logger"
)

func TestLoadConfigDefaults(t *testing.T) {
	for _, k := range []string{"PORT", "DB_DRIVER", "ADMIN_USERNAME", "PDATAVIEWER_ADMIN_USERNAME", "CORS_ALLOW_ORIGINS", "IMPORT_MAX_UPLOAD_MB"} {
		t.Setenv(k, "")
	}
	cfg := LoadConfig(logger.Nop())

	assert.Equal(t, "8000", cfg.Port)
	assert.Equal(t, "postgres", cfg.DB.Driver)
	assert.Equal(t, []string{"*"}, cfg.CORSOrigins)
	assert.Equal(t, int64(100<<20), cfg.MaxUploadBytes)
	assert.Equal(t, time.Second, cfg.PollInterval)
	assert.Empty(t, cfg.AdminUsername)
	assert.False(t, cfg.Otel.Enabled)
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("PDATAVIEWER_ADMIN_USERNAME", "legacy")
	t.Setenv("ADMIN_PASSWORD", "pw")
	t.Setenv("CORS_ALLOW_ORIGINS", "http://a.example, http://b.example")
	t.Setenv("OTEL_SAMPLER_PERCENT", "50")

	cfg := LoadConfig(logger.Nop())

	assert.Equal(t, "sqlite", cfg.DB.Driver)
	assert.Equal(t, "legacy", cfg.AdminUsername)
	assert.Equal(t, "pw", cfg.AdminPassword)
	assert.Equal(t, []string{"http://a.example", "http://b.example"}, cfg.CORSOrigins)
	assert.InDelta(t, 0.5, cfg.Otel.SampleRatio, 1e-9)
}
