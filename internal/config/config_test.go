package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alecthomas/kong"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parse(t *testing.T, args ...string) Config {
	t.Helper()
	var cfg Config
	parser, err := kong.New(&cfg)
	require.NoError(t, err)
	_, err = parser.Parse(args)
	require.NoError(t, err)
	return cfg
}

func TestDefaults(t *testing.T) {
	cfg := parse(t)
	assert.Equal(t, "http://localhost:8000/api", cfg.APIURL)
	assert.Equal(t, 30*time.Second, cfg.APITimeout)
	assert.Equal(t, "fr", cfg.Locale)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.False(t, cfg.CalendarKeys)
	assert.Len(t, cfg.MergeOptions(), 1)
}

func TestEnvAndFlags(t *testing.T) {
	t.Setenv("CLIMATEVIZ_API_URL", "http://climate.internal/api")
	t.Setenv("CLIMATEVIZ_CALENDAR_KEYS", "true")

	cfg := parse(t, "--api-timeout=5s", "--locale=en")
	assert.Equal(t, "http://climate.internal/api", cfg.APIURL)
	assert.Equal(t, 5*time.Second, cfg.APITimeout)
	assert.True(t, cfg.CalendarKeys)
	assert.Len(t, cfg.MergeOptions(), 2)
	assert.Equal(t, 5*time.Second, cfg.HTTPClient().Timeout)
	assert.Equal(t, "http://climate.internal/api", cfg.ClimateClient(nil).BaseURL())
}

func TestLoadDotenv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.env")
	require.NoError(t, os.WriteFile(path, []byte("CLIMATEVIZ_TEST_DOTENV=loaded\n"), 0o600))
	t.Setenv("CLIMATEVIZ_TEST_DOTENV", "")
	os.Unsetenv("CLIMATEVIZ_TEST_DOTENV")

	require.NoError(t, LoadDotenv(path))
	assert.Equal(t, "loaded", os.Getenv("CLIMATEVIZ_TEST_DOTENV"))
}

func TestLoadDotenv_Missing(t *testing.T) {
	assert.NoError(t, LoadDotenv(filepath.Join(t.TempDir(), "nope.env")))
}
