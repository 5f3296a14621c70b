package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "localhost:8084", cfg.Address())
	assert.Equal(t, "Customer-Purchase-History.xlsx", cfg.Source.Path)
	assert.Equal(t, "purchases", cfg.Source.Table)
	assert.True(t, cfg.Source.Watch)
	assert.Equal(t, 500*time.Millisecond, cfg.Source.WatchDebounce)
	assert.Equal(t, 30*time.Second, cfg.Source.LoadTimeout)
	assert.Equal(t, InsightsConfig{
		TopN:            20,
		HistogramBins:   10,
		RadarCategories: 3,
		ReferenceYear:   2025,
		DateStride:      23,
	}, cfg.Insights)
	assert.Equal(t, 16, cfg.Cache.Size)
	assert.Equal(t, []string{"127.0.0.1"}, cfg.Security.TrustedProxies)
}

func TestLoad_Environment(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("SOURCE_PATH", "sqlite://shop.db")
	t.Setenv("SOURCE_WATCH", "false")
	t.Setenv("INSIGHTS_TOP_N", "5")
	t.Setenv("INSIGHTS_PRESERVE_DATES", "true")
	t.Setenv("SECURITY_ALLOWED_ORIGINS", "http://a.test, http://b.test,")
	t.Setenv("SERVER_READ_TIMEOUT", "not-a-duration")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "sqlite://shop.db", cfg.Source.Path)
	assert.False(t, cfg.Source.Watch)
	assert.Equal(t, 5, cfg.Insights.TopN)
	assert.True(t, cfg.Insights.PreserveDates)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.Security.AllowedOrigins)
	assert.Equal(t, 10*time.Second, cfg.Server.ReadTimeout)
}

func TestLoad_DotEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	env := "SOURCE_PATH=history.csv\nCACHE_SIZE=4\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte(env), 0o644))
	t.Cleanup(func() {
		os.Unsetenv("SOURCE_PATH")
		os.Unsetenv("CACHE_SIZE")
	})

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "history.csv", cfg.Source.Path)
	assert.Equal(t, 4, cfg.Cache.Size)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"port out of range", "SERVER_PORT", "70000"},
		{"top-n", "INSIGHTS_TOP_N", "0"},
		{"bins", "INSIGHTS_HISTOGRAM_BINS", "-1"},
		{"radar", "INSIGHTS_RADAR_CATEGORIES", "0"},
		{"stride", "INSIGHTS_DATE_STRIDE", "0"},
		{"cache", "CACHE_SIZE", "0"},
		{"log level", "LOG_LEVEL", "verbose"},
		{"log format", "LOG_FORMAT", "xml"},
		{"rate limit", "SECURITY_RATE_LIMIT_RPS", "-5"},
		{"load timeout", "SOURCE_LOAD_TIMEOUT", "-1s"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Chdir(t.TempDir())
			t.Setenv(tt.key, tt.value)

			_, err := Load()
			assert.ErrorContains(t, err, "invalid configuration")
		})
	}
}
