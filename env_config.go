package juriscraper

import (
	"strconv"
	"strings"
	"time"

	"github.com/navindex/juriscraper/env"
	"github.com/navindex/juriscraper/logger"
)

// ------------------------------------------------------------------------

// Recognized environment keys, read with the "JURISCRAPER_" prefix
// stripped and bridged into DriverConfig's Option type.
const (
	envStorageDir     = "STORAGE_DIR"
	envWorkers        = "WORKERS"
	envRetryBaseMS    = "RETRY_BASE_DELAY_MS"
	envRetryMaxMS     = "RETRY_MAX_BACKOFF_MS"
	envHTTPTimeoutSec = "HTTP_TIMEOUT_SECONDS"
	envLogLevel       = "LOG_LEVEL"
)

var logLevelNames = map[string]logger.Level{
	"DEBUG": logger.DEBUG_LEVEL,
	"INFO":  logger.INFO_LEVEL,
	"WARN":  logger.WARN_LEVEL,
	"ERROR": logger.ERR_LEVEL,
	"FATAL": logger.FATAL_LEVEL,
}

// ------------------------------------------------------------------------

// OptionsFromEnvironment translates recognized keys in e into Options,
// in the order they should be applied (so a later explicit Option can
// still override an environment-sourced one at the call site).
func OptionsFromEnvironment(e env.Environment) []Option {
	var opts []Option

	values := e.Values()

	if v, ok := values[envStorageDir]; ok && v != "" {
		opts = append(opts, WithStorageDir(v))
	}

	if v, ok := values[envWorkers]; ok {
		if n, err := strconv.Atoi(v); err == nil {
			opts = append(opts, WithWorkerCount(n))
		}
	}

	base, hasBase := parseMillis(values[envRetryBaseMS])
	max, hasMax := parseMillis(values[envRetryMaxMS])
	if hasBase || hasMax {
		opts = append(opts, func(c *DriverConfig) {
			if hasBase {
				c.RetryPolicy.BaseDelay = base
			}
			if hasMax {
				c.RetryPolicy.MaxBackoff = max
			}
		})
	}

	if v, ok := values[envHTTPTimeoutSec]; ok {
		if secs, err := strconv.Atoi(v); err == nil {
			opts = append(opts, WithHTTPTimeout(time.Duration(secs)*time.Second))
		}
	}

	if v, ok := values[envLogLevel]; ok {
		if level, ok := logLevelNames[strings.ToUpper(v)]; ok {
			opts = append(opts, WithLogLevel(level))
		}
	}

	return opts
}

func parseMillis(v string) (time.Duration, bool) {
	if v == "" {
		return 0, false
	}

	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}

	return time.Duration(n) * time.Millisecond, true
}

// ------------------------------------------------------------------------

// NewDriverConfigFromEnv is NewDriverConfig seeded from the OS
// environment's "JURISCRAPER_" keys, with any explicit opts applied
// afterward so they take precedence.
func NewDriverConfigFromEnv(scraperName string, opts ...Option) *DriverConfig {
	e := env.NewFromOSEnv("JURISCRAPER_", nil)

	all := append(OptionsFromEnvironment(e), opts...)

	return NewDriverConfig(scraperName, all...)
}
