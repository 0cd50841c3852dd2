package valsync

import (
	"time"

	"github.com/caarlos0/env/v11"
)

// Config needs to be created with NewConfig(), which resolves all values once
// from the environment (with the defaults below), and is then passed to
// valsync.New(). Nothing is inferred from the filesystem or re-read later.
type Config struct {
	API      APIConfig
	Schedule ScheduleConfig
	Database DatabaseConfig
	Ops      OpsConfig

	initialized bool
}

// APIConfig configures the upstream boundary: one HTTP GET per endpoint name
// under the base URL, with a language query parameter.
type APIConfig struct {

	// Base URL of the game-data API
	BaseURL string `env:"VALSYNC_API_BASE_URL" envDefault:"https://valorant-api.com/v1"`

	// Language query parameter sent on every request
	Language string `env:"VALSYNC_API_LANGUAGE" envDefault:"en-US"`

	// Endpoints to fetch, in order
	Endpoints []string `env:"VALSYNC_API_ENDPOINTS" envDefault:"agents,weapons,maps,gamemodes"`

	// Delay between requests to subsequent endpoints
	RequestDelay time.Duration `env:"VALSYNC_REQUEST_DELAY" envDefault:"1s"`

	// Per-request HTTP timeout
	Timeout time.Duration `env:"VALSYNC_REQUEST_TIMEOUT" envDefault:"10s"`

	// Max fetch attempts per endpoint for transient errors
	MaxAttempts int `env:"VALSYNC_FETCH_ATTEMPTS" envDefault:"3"`

	// Backoff before the first retry of a transient fetch error, doubled on
	// each subsequent retry
	RetryBackoff time.Duration `env:"VALSYNC_FETCH_RETRY_BACKOFF" envDefault:"1s"`
}

type ScheduleConfig struct {

	// Interval between scheduled runs. An interval of 0 disables the
	// scheduler; the process then exits after a single run.
	Interval time.Duration `env:"VALSYNC_SCHEDULE_INTERVAL" envDefault:"6h"`

	// Whether the scheduler triggers a run immediately on startup, before
	// the first interval has elapsed
	RunOnStart bool `env:"VALSYNC_RUN_ON_START" envDefault:"true"`
}

type DatabaseConfig struct {

	// Path to the SQLite database file
	Path string `env:"VALSYNC_DB_PATH" envDefault:"data/valsync.db"`
}

// OpsConfig provides options for observability.
type OpsConfig struct {

	// If set to true native logging will be used (debug, info, warn, and
	// error logs). If set to false no standard logging will be done, but the
	// same type of information will be provided on the notification channel,
	// accessible with valsync.NotifyChannel().
	Log bool `env:"VALSYNC_LOG" envDefault:"true"`

	// Size of the notification channel buffer
	NotifyChanSize int `env:"VALSYNC_NOTIFY_CHAN_SIZE" envDefault:"128"`
}

// NewConfig returns an initialized Config, required for valsync.New().
func NewConfig() (*Config, error) {
	var c Config
	if err := env.Parse(&c); err != nil {
		return nil, err
	}
	c.initialized = true
	return &c, nil
}
