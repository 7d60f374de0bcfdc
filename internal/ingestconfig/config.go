// Package ingestconfig loads the single configuration struct the
// ingestion binary needs: feed location, chunking/commit sizing, HTTP
// retry policy, the sink DSN, and the progress server address.
//
// Layering mirrors the teacher's env-var-override convention (env wins
// over file) but drops the multi-tenant/multi-env directory layering
// that convention was built for — this binary runs one feed at a time.
package ingestconfig

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// RetryPolicy mirrors spec.md §4.1/§6: exponential backoff over a capped
// number of attempts and redirects, retrying a fixed set of status codes.
type RetryPolicy struct {
	MaxAttempts    int           `yaml:"max_attempts"`
	MaxRedirects   int           `yaml:"max_redirects"`
	BackoffFactor  time.Duration `yaml:"backoff_factor"`
	RetryableCodes []int         `yaml:"retryable_codes"`
}

// DefaultRetryPolicy matches spec.md §4.1/§6 exactly: 50 attempts, 5
// redirects, 1s backoff factor, and the six listed transient statuses.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:    50,
		MaxRedirects:   5,
		BackoffFactor:  time.Second,
		RetryableCodes: []int{413, 429, 500, 502, 503, 504},
	}
}

// Config is the full set of knobs for one ingestion run.
type Config struct {
	// FeedURL is the gzip-compressed NDJSON feed to fetch. Required.
	FeedURL string `yaml:"feed_url"`

	// ChunkSize bounds the bytes read per HTTP read/range (spec.md §4.1).
	ChunkSize int `yaml:"chunk_size"`

	// CommitInterval is the BatchCommitter flush threshold (spec.md §4.5).
	CommitInterval int `yaml:"commit_interval"`

	// Workers, when > 1, fans the parse+normalize stage across a bounded
	// pool (spec.md §5's "MAY parallelize" clause). 1 means sequential.
	Workers int `yaml:"workers"`

	// UseRangedSource selects strategy B (HEAD + ranged GET) over the
	// default streaming GET of strategy A.
	UseRangedSource bool `yaml:"use_ranged_source"`

	// RatePerSecond caps ranged-GET issue rate (0 disables the limiter).
	RatePerSecond float64 `yaml:"rate_per_second"`

	Retry RetryPolicy `yaml:"retry"`

	// SinkDriver selects the EntrySink backend: "postgres" or "sqlite".
	SinkDriver string `yaml:"sink_driver"`
	// SinkDSN is the driver-specific data source name.
	SinkDSN string `yaml:"sink_dsn"`

	// ProgressAddr, if non-empty, starts the progress/health HTTP+WS
	// server (internal/progress) on this address.
	ProgressAddr string `yaml:"progress_addr"`

	// DryRun runs the full pipeline but commits to a counting no-op sink.
	DryRun bool `yaml:"dry_run"`
}

// Defaults returns a Config with every spec-mandated default filled in.
func Defaults() Config {
	return Config{
		ChunkSize:      256 * 1024,
		CommitInterval: 500,
		Workers:        1,
		RatePerSecond:  0,
		Retry:          DefaultRetryPolicy(),
		SinkDriver:     "sqlite",
		ProgressAddr:   "",
		DryRun:         false,
	}
}

// Load reads a YAML file at path (if non-empty) over the defaults, then
// applies OFFIMPORT_* environment variable overrides, then applies feedURL
// if non-empty (the CLI positional argument always wins).
func Load(path string, feedURL string) (Config, error) {
	cfg := Defaults()

	if strings.TrimSpace(path) != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("ingestconfig: read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return Config{}, fmt.Errorf("ingestconfig: parse %s: %w", path, err)
		}
	}

	applyEnvOverrides(&cfg)

	if strings.TrimSpace(feedURL) != "" {
		cfg.FeedURL = feedURL
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the invariants Load and the orchestrator both rely on.
func (c Config) Validate() error {
	if strings.TrimSpace(c.FeedURL) == "" {
		return fmt.Errorf("ingestconfig: feed_url is required")
	}
	if c.ChunkSize <= 0 {
		return fmt.Errorf("ingestconfig: chunk_size must be positive")
	}
	if c.CommitInterval <= 0 {
		return fmt.Errorf("ingestconfig: commit_interval must be positive")
	}
	if c.Workers <= 0 {
		return fmt.Errorf("ingestconfig: workers must be positive")
	}
	switch c.SinkDriver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("ingestconfig: unsupported sink_driver %q", c.SinkDriver)
	}
	return nil
}

const envPrefix = "OFFIMPORT_"

func applyEnvOverrides(c *Config) {
	if v, ok := lookupEnv("FEED_URL"); ok {
		c.FeedURL = v
	}
	if v, ok := lookupEnvInt("CHUNK_SIZE"); ok {
		c.ChunkSize = v
	}
	if v, ok := lookupEnvInt("COMMIT_INTERVAL"); ok {
		c.CommitInterval = v
	}
	if v, ok := lookupEnvInt("WORKERS"); ok {
		c.Workers = v
	}
	if v, ok := lookupEnv("SINK_DRIVER"); ok {
		c.SinkDriver = v
	}
	if v, ok := lookupEnv("SINK_DSN"); ok {
		c.SinkDSN = v
	}
	if v, ok := lookupEnv("PROGRESS_ADDR"); ok {
		c.ProgressAddr = v
	}
	if v, ok := lookupEnvBool("DRY_RUN"); ok {
		c.DryRun = v
	}
	if v, ok := lookupEnvBool("USE_RANGED_SOURCE"); ok {
		c.UseRangedSource = v
	}
}

func lookupEnv(name string) (string, bool) {
	v, ok := os.LookupEnv(envPrefix + name)
	if !ok {
		return "", false
	}
	v = strings.TrimSpace(v)
	if v == "" {
		return "", false
	}
	return v, true
}

func lookupEnvInt(name string) (int, bool) {
	v, ok := lookupEnv(name)
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return n, true
}

func lookupEnvBool(name string) (bool, bool) {
	v, ok := lookupEnv(name)
	if !ok {
		return false, false
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, false
	}
	return b, true
}
