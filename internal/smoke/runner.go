package smoke

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/okian/restdemo/pkg/logger"
)

// Run executes every check against the configured servers, then the
// concurrent append phase against the bookstore.
func Run(ctx context.Context, cfg *Config) (*Stats, error) {
	stats := &Stats{StartTime: time.Now()}
	log := logger.Get()
	client := newHTTPClient(cfg.Timeout)

	log.Info(ctx, "starting smoke run",
		logger.String("userURL", cfg.UserURL),
		logger.String("bookURL", cfg.BookURL),
		logger.Int("workers", cfg.Workers),
		logger.Int("books", cfg.Books),
		logger.String("timeout", cfg.Timeout.String()))

	if cfg.UserURL == "" && cfg.BookURL == "" {
		return stats, fmt.Errorf("%w: no server URL given", ErrCheck)
	}

	var errs []error
	runChecks := func(base string, checks []check) {
		if base == "" {
			return
		}
		for _, ch := range checks {
			if err := ch.run(ctx, client, base); err != nil {
				stats.ChecksFailed++
				log.Error(ctx, "check failed", logger.String("check", ch.name), logger.Error(err))
				errs = append(errs, fmt.Errorf("%s: %w", ch.name, err))
				continue
			}
			stats.ChecksPassed++
			if cfg.Verbose {
				log.Info(ctx, "check passed", logger.String("check", ch.name))
			}
		}
	}
	runChecks(cfg.UserURL, userChecks())
	runChecks(cfg.BookURL, bookChecks())

	if cfg.BookURL != "" && cfg.Books > 0 && cfg.Workers > 0 {
		if err := loadBooks(ctx, cfg, client, stats); err != nil {
			log.Error(ctx, "load phase failed", logger.Error(err))
			errs = append(errs, fmt.Errorf("load: %w", err))
		}
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	displayFinalStats(stats)

	return stats, errors.Join(errs...)
}

func displayFinalStats(stats *Stats) {
	fmt.Fprintf(os.Stdout, `Smoke run finished in %v
   Checks passed: %d
   Checks failed: %d
   Books appended: %d (missing: %d)
`, stats.Duration.Round(time.Millisecond), stats.ChecksPassed, stats.ChecksFailed, stats.BooksAdded, stats.BooksMissing)
}

// ShowHelp prints usage information for the smoke tool.
func ShowHelp() {
	os.Stdout.WriteString(`restdemo smoke runner
=====================

Checks running user API and bookstore servers end to end.

Usage:
  go run ./cmd/smoke [options]

Options:
  -user string
        Base URL of the user API, empty to skip (default "http://localhost:5000")
  -books string
        Base URL of the bookstore, empty to skip (default "http://localhost:8000")
  -workers int
        Concurrent writers in the load phase (default CPU cores * 2)
  -count int
        Books appended during the load phase, 0 to skip (default 200)
  -timeout duration
        HTTP request timeout (default 10s)
  -verbose
        Log every passing check
  -help
        Show this help message
`)
}
