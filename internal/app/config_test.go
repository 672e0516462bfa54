package app

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "github.com/odyssey-erp/campaign-insights/testing"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.AppAddr)
	assert.Equal(t, "en-US", cfg.DefaultLocale)
	assert.Equal(t, 10*time.Minute, cfg.CacheTTL)
	assert.Equal(t, "*/15 * * * *", cfg.WarmupCron)
	assert.Empty(t, cfg.DatasetPath)
	assert.False(t, cfg.IsProduction())
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("DEFAULT_LOCALE", "de")
	t.Setenv("CACHE_TTL", "90s")
	t.Setenv("REDIS_ADDR", "")
	t.Setenv("DATASET_PATH", "/etc/campaigns/dataset.yaml")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "de-DE", cfg.DefaultLocale, "locale names are normalised")
	assert.Equal(t, 90*time.Second, cfg.CacheTTL)
	assert.Empty(t, cfg.RedisAddr)
	assert.Equal(t, "/etc/campaigns/dataset.yaml", cfg.DatasetPath)
}

func TestLoadConfigRejectsInvalidValues(t *testing.T) {
	cases := map[string][2]string{
		"unknown locale":  {"DEFAULT_LOCALE", "fr-FR"},
		"zero ttl":        {"CACHE_TTL", "0s"},
		"bad duration":    {"CACHE_TTL", "soon"},
		"no worker slots": {"WORKER_CONCURRENCY", "0"},
	}
	for name, kv := range cases {
		t.Run(name, func(t *testing.T) {
			t.Setenv(kv[0], kv[1])
			_, err := LoadConfig()
			require.Error(t, err)
		})
	}
}

func TestNewLoggerHonoursFormatAndLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, &Config{LogFormat: "json", LogLevel: "warn"})

	logger.Info("hidden")
	logger.Warn("shown", slog.String("locale", "de-DE"))

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.True(t, strings.HasPrefix(out, "{"), "json handler expected: %s", out)
	assert.Contains(t, out, `"locale":"de-DE"`)
}

func TestLogLevelDefaults(t *testing.T) {
	assert.Equal(t, slog.LevelInfo, logLevel(nil))
	assert.Equal(t, slog.LevelDebug, logLevel(&Config{LogLevel: "DEBUG"}))
	assert.Equal(t, slog.LevelInfo, logLevel(&Config{LogLevel: "verbose"}))
}

func TestInTestMode(t *testing.T) {
	assert.True(t, InTestMode(), "test helper package sets CAMPAIGNS_TEST_MODE")

	// Registered before Setenv so it runs after the variable is restored.
	t.Cleanup(RefreshTestMode)
	t.Setenv(testModeEnv, "0")
	RefreshTestMode()
	assert.False(t, InTestMode())
}
