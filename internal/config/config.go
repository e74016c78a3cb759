// Package config holds the settings shared by every climateviz command.
// Values come from flags, then CLIMATEVIZ_* environment variables, which may
// be seeded from a .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/lox/climateviz/internal/climate"
	"github.com/lox/climateviz/internal/httputil"
	"github.com/lox/climateviz/internal/series"
)

// Config is embedded into the kong CLI.
type Config struct {
	APIURL       string        `name:"api-url" env:"CLIMATEVIZ_API_URL" default:"http://localhost:8000/api" help:"Base URL of the climate API."`
	APITimeout   time.Duration `name:"api-timeout" env:"CLIMATEVIZ_API_TIMEOUT" default:"30s" help:"Timeout for each climate API call."`
	Locale       string        `name:"locale" env:"CLIMATEVIZ_LOCALE" default:"fr" help:"Language of month labels (fr, en, en_GB, de, es)."`
	CalendarKeys bool          `name:"calendar-keys" env:"CLIMATEVIZ_CALENDAR_KEYS" help:"Group samples by calendar day rather than by raw date string."`
	LogLevel     string        `name:"log-level" env:"CLIMATEVIZ_LOG_LEVEL" default:"info" enum:"debug,info,warn,error" help:"Minimum log level."`
	LogDev       bool          `name:"log-dev" env:"CLIMATEVIZ_LOG_DEV" help:"Console logs instead of JSON."`
}

// LoadDotenv loads variables from the given files (default .env) into the
// environment without overriding variables that are already set. Missing
// files are ignored.
func LoadDotenv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

// MergeOptions returns the series merge options these settings imply.
func (c *Config) MergeOptions() []series.Option {
	opts := []series.Option{series.WithLocale(series.ParseLocale(c.Locale))}
	if c.CalendarKeys {
		opts = append(opts, series.WithCalendarKeys())
	}
	return opts
}

// HTTPClient returns the outbound client for climate API calls.
func (c *Config) HTTPClient() *http.Client {
	return httputil.NewClient(c.APITimeout)
}

// ClimateClient returns a climate API client configured from these settings.
func (c *Config) ClimateClient(logger *zap.Logger) *climate.Client {
	return climate.NewClient(c.APIURL, c.HTTPClient(), logger)
}
