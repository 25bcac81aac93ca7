package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"

	"taxi-dashboard/models"
)

// AppName names the XDG cache and config directories.
const AppName = "taxi-dashboard"

// Defaults.
const (
	DefaultMonths         = "2025-01:2025-03"
	DefaultOutputPath     = "outputs/dashboard.html"
	DefaultBaseURL        = "https://d37ci6vzurychx.cloudfront.net/trip-data"
	DefaultURLTemplate    = "{base}/{dataset}_tripdata_{month}.parquet"
	DefaultZoneLookupURL  = "https://d37ci6vzurychx.cloudfront.net/misc/taxi_zone_lookup.csv"
	DefaultDataset        = "yellow"
	DefaultEarliestMonth  = "2009-01"
	DefaultLateNightStart = 22
	DefaultLateNightEnd   = 5
	DefaultTopK           = 8
	DefaultConcurrency    = 1
	DefaultMaxRetries     = 3
	DefaultRetryDelay     = 2 * time.Second
	DefaultHTTPTimeout    = 10 * time.Minute
	DefaultChartsJSURL    = "https://go-echarts.github.io/go-echarts-assets/assets/echarts.min.js"
)

// Config holds all application configuration.
type Config struct {
	Months     string `yaml:"months" validate:"required"`
	OutputPath string `yaml:"output" validate:"required"`
	CacheDir   string `yaml:"cache_dir" validate:"required"`

	Dataset       string `yaml:"dataset" validate:"oneof=yellow green"`
	BaseURL       string `yaml:"base_url" validate:"required,url"`
	URLTemplate   string `yaml:"url_template" validate:"required"`
	ZoneLookupURL string `yaml:"zone_lookup_url" validate:"omitempty,url"`
	EarliestMonth string `yaml:"earliest_month" validate:"required"`

	LateNightStart int    `yaml:"late_night_start" validate:"gte=0,lte=23"`
	LateNightEnd   int    `yaml:"late_night_end" validate:"gte=0,lte=23"`
	TopK           int    `yaml:"top_k" validate:"gte=1,lte=50"`
	Timezone       string `yaml:"timezone"`

	MaxConcurrency int           `yaml:"max_concurrency" validate:"gte=1,lte=16"`
	MaxRetries     int           `yaml:"max_retries" validate:"gte=1,lte=10"`
	RetryBaseDelay time.Duration `yaml:"retry_base_delay" validate:"gte=0"`
	HTTPTimeout    time.Duration `yaml:"http_timeout" validate:"gt=0"`

	// RequestInterval is the minimum spacing between requests to the publisher.
	RequestInterval time.Duration `yaml:"request_interval" validate:"gte=0"`

	ChartsJSURL string `yaml:"charts_js_url" validate:"required"`
	// CSVDir, when set, also receives the summary tables as CSV files.
	CSVDir      string `yaml:"csv_dir"`

	Verbose bool `yaml:"verbose"`
}

// NewConfig returns a Config populated with defaults.
func NewConfig() *Config {
	return &Config{
		Months:         DefaultMonths,
		OutputPath:     DefaultOutputPath,
		CacheDir:       XDGCacheDir(),
		Dataset:        DefaultDataset,
		BaseURL:        DefaultBaseURL,
		URLTemplate:    DefaultURLTemplate,
		ZoneLookupURL:  DefaultZoneLookupURL,
		EarliestMonth:  DefaultEarliestMonth,
		LateNightStart: DefaultLateNightStart,
		LateNightEnd:   DefaultLateNightEnd,
		TopK:           DefaultTopK,
		MaxConcurrency: DefaultConcurrency,
		MaxRetries:     DefaultMaxRetries,
		RetryBaseDelay: DefaultRetryDelay,
		HTTPTimeout:    DefaultHTTPTimeout,
		ChartsJSURL:    DefaultChartsJSURL,
	}
}

// XDGCacheDir is the default download cache, e.g. ~/.cache/taxi-dashboard on Linux.
func XDGCacheDir() string {
	return filepath.Join(xdg.CacheHome, AppName)
}

// XDGConfigDir is where the user-level config file lives.
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Load builds the configuration from defaults, the YAML config file (if any),
// and then the .env file and environment variables. CLI flags are applied by
// the caller afterwards.
func Load(configPath string) (*Config, error) {
	cfg := NewConfig()

	path := FindConfigFile(configPath)
	switch {
	case path != "":
		if err := cfg.ApplyFile(path); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	case configPath != "":
		return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
	}

	// A missing .env is normal; system env vars still apply.
	_ = godotenv.Load()
	cfg.ApplyEnv()

	return cfg, nil
}

// ApplyEnv overrides fields from TAXI_* environment variables.
func (c *Config) ApplyEnv() {
	c.Months = getEnv("TAXI_MONTHS", c.Months)
	c.OutputPath = getEnv("TAXI_OUTPUT", c.OutputPath)
	c.CacheDir = getEnv("TAXI_CACHE_DIR", c.CacheDir)
	c.Dataset = getEnv("TAXI_DATASET", c.Dataset)
	c.BaseURL = getEnv("TAXI_BASE_URL", c.BaseURL)
	c.URLTemplate = getEnv("TAXI_URL_TEMPLATE", c.URLTemplate)
	c.ZoneLookupURL = getEnv("TAXI_ZONE_LOOKUP_URL", c.ZoneLookupURL)
	c.EarliestMonth = getEnv("TAXI_EARLIEST_MONTH", c.EarliestMonth)
	c.Timezone = getEnv("TAXI_TIMEZONE", c.Timezone)
	c.ChartsJSURL = getEnv("TAXI_CHARTS_JS_URL", c.ChartsJSURL)
	c.CSVDir = getEnv("TAXI_CSV_DIR", c.CSVDir)

	c.LateNightStart = getEnvInt("TAXI_LATE_NIGHT_START", c.LateNightStart)
	c.LateNightEnd = getEnvInt("TAXI_LATE_NIGHT_END", c.LateNightEnd)
	c.TopK = getEnvInt("TAXI_TOP_K", c.TopK)
	c.MaxConcurrency = getEnvInt("TAXI_MAX_CONCURRENCY", c.MaxConcurrency)
	c.MaxRetries = getEnvInt("TAXI_MAX_RETRIES", c.MaxRetries)

	c.RetryBaseDelay = getEnvDuration("TAXI_RETRY_BASE_DELAY", c.RetryBaseDelay)
	c.HTTPTimeout = getEnvDuration("TAXI_HTTP_TIMEOUT", c.HTTPTimeout)
	c.RequestInterval = getEnvDuration("TAXI_REQUEST_INTERVAL", c.RequestInterval)
}

// Validate checks struct tags first, then the fields that need parsing.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return fmt.Errorf("%w: %s failed %q", ErrInvalidField, verrs[0].Field(), verrs[0].Tag())
		}
		return err
	}

	if !strings.Contains(c.URLTemplate, "{month}") &&
		!(strings.Contains(c.URLTemplate, "{year}") && strings.Contains(c.URLTemplate, "{mm}")) {
		return fmt.Errorf("%w: %q", ErrInvalidURLTemplate, c.URLTemplate)
	}

	// Months outside the published range are reported by the fetcher.
	if _, err := c.MonthRange(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidMonths, err)
	}
	if _, err := models.ParseMonth(c.EarliestMonth); err != nil {
		return fmt.Errorf("%w: earliest month: %v", ErrInvalidMonths, err)
	}

	if c.LateNightStart == c.LateNightEnd {
		return ErrEmptyWindow
	}

	if _, err := c.Location(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidTimezone, err)
	}
	return nil
}

// MonthRange parses Months into an ordered month sequence.
func (c *Config) MonthRange() ([]models.MonthSpec, error) {
	return models.ParseMonthRange(c.Months)
}

// Location returns the timezone trip timestamps are converted to, or nil to
// keep the wall-clock time recorded in the source files.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return nil, nil
	}
	return time.LoadLocation(c.Timezone)
}

// ParseWindow parses a late-night window such as "22-5".
func ParseWindow(s string) (start, end int, err error) {
	a, b, found := strings.Cut(s, "-")
	if !found {
		return 0, 0, fmt.Errorf("%w: %q, expected START-END", ErrInvalidWindow, s)
	}
	start, err = strconv.Atoi(strings.TrimSpace(a))
	if err != nil || start < 0 || start > 23 {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidWindow, s)
	}
	end, err = strconv.Atoi(strings.TrimSpace(b))
	if err != nil || end < 0 || end > 23 {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidWindow, s)
	}
	return start, end, nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		n, err := strconv.Atoi(val)
		if err == nil {
			return n
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		d, err := time.ParseDuration(val)
		if err == nil {
			return d
		}
	}
	return fallback
}
