package juriscraper

import (
	"os"
	"path/filepath"
	"time"

	"github.com/navindex/juriscraper/logger"
	"github.com/navindex/juriscraper/storage"
	"github.com/navindex/juriscraper/storage/mem"
)

// ------------------------------------------------------------------------

// RetryPolicy configures the retry manager's exponential backoff, plus
// a jitter fraction applied on top of the base*2^n delay.
type RetryPolicy struct {
	BaseDelay  time.Duration
	MaxBackoff time.Duration
	Jitter     float64 // fraction of the computed delay, e.g. 0.1 for ±10%
}

// ------------------------------------------------------------------------

// DriverConfig groups everything recognized at driver construction.
// Build one with NewDriverConfig and functional Options.
type DriverConfig struct {
	ScraperName      string
	StorageDir       string
	Workers          int
	Callbacks        Callbacks
	DuplicateChecker storage.DuplicateChecker
	CancelSignal     <-chan struct{}
	RetryPolicy      RetryPolicy
	Logger           logger.Logger
	LogLevel         logger.Level
	HTTPTimeout      time.Duration
}

// ------------------------------------------------------------------------

// Option mutates a DriverConfig being built by NewDriverConfig.
type Option func(*DriverConfig)

func WithStorageDir(dir string) Option {
	return func(c *DriverConfig) { c.StorageDir = dir }
}

func WithWorkerCount(n int) Option {
	return func(c *DriverConfig) {
		if n > 0 {
			c.Workers = n
		}
	}
}

func WithCallbacks(cb Callbacks) Option {
	return func(c *DriverConfig) { c.Callbacks = cb }
}

func WithDuplicateChecker(dc storage.DuplicateChecker) Option {
	return func(c *DriverConfig) { c.DuplicateChecker = dc }
}

func WithCancelSignal(ch <-chan struct{}) Option {
	return func(c *DriverConfig) { c.CancelSignal = ch }
}

func WithRetryPolicy(rp RetryPolicy) Option {
	return func(c *DriverConfig) { c.RetryPolicy = rp }
}

func WithLogger(l logger.Logger) Option {
	return func(c *DriverConfig) { c.Logger = l }
}

// WithLogLevel sets the minimum level logEvent emits; events below it
// are dropped before reaching c.Logger.
func WithLogLevel(level logger.Level) Option {
	return func(c *DriverConfig) { c.LogLevel = level }
}

func WithHTTPTimeout(d time.Duration) Option {
	return func(c *DriverConfig) { c.HTTPTimeout = d }
}

// ------------------------------------------------------------------------

// NewDriverConfig returns a pointer to a newly created DriverConfig for
// scraperName, with documented defaults, then applies opts in order.
func NewDriverConfig(scraperName string, opts ...Option) *DriverConfig {
	c := &DriverConfig{
		ScraperName:      scraperName,
		StorageDir:       filepath.Join(os.TempDir(), "juriscraper_files"),
		Workers:          1,
		DuplicateChecker: mem.NewDuplicateChecker(),
		RetryPolicy: RetryPolicy{
			BaseDelay:  500 * time.Millisecond,
			MaxBackoff: 30 * time.Second,
			Jitter:     0.1,
		},
		Logger:      logger.NewStdLogger(nil, "", 0),
		HTTPTimeout: 30 * time.Second,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}
