package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "5000", cfg.Port)
	assert.Equal(t, "https://edusp-api.ip.tv", cfg.BaseURL)
	assert.NotEmpty(t, cfg.ClientOrigin)
	assert.NotEmpty(t, cfg.UserAgent)
	assert.Equal(t, 15*time.Second, cfg.ReadTimeout)
	assert.Equal(t, 30*time.Second, cfg.SubmitTimeout)
	assert.Equal(t, 6, cfg.WorkerCap)
	assert.Equal(t, 1, cfg.TimeMinDefault)
	assert.Equal(t, 3, cfg.TimeMaxDefault)
	assert.Empty(t, cfg.RedisAddr, "target cache is off by default")
	assert.Equal(t, "*", cfg.CORSAllowedOrigins)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("WORKER_CAP", "2")
	t.Setenv("API_BASE_URL", "http://localhost:9999")

	cfg := Load()
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 2, cfg.WorkerCap)
	assert.Equal(t, "http://localhost:9999", cfg.BaseURL)
}

func TestLoadClampsWorkerCap(t *testing.T) {
	t.Setenv("WORKER_CAP", "0")

	cfg := Load()
	assert.Equal(t, 1, cfg.WorkerCap)
}
