package main

import (
	"context"
	"flag"
	"os"
	"runtime"
	"time"

	"github.com/okian/restdemo/internal/smoke"
	"github.com/okian/restdemo/pkg/logger"
)

// Default configuration constants.
const (
	defaultBooks       = 200
	defaultWorkers     = 2 // multiplier for runtime.NumCPU()
	defaultTimeout     = 10 * time.Second
	defaultTestTimeout = 5 * time.Minute
)

func main() {
	var (
		userURL = flag.String("user", "http://localhost:5000", "Base URL of the user API (empty to skip)")
		bookURL = flag.String("books", "http://localhost:8000", "Base URL of the bookstore (empty to skip)")
		workers = flag.Int("workers", runtime.NumCPU()*defaultWorkers, "Concurrent writers in the load phase")
		count   = flag.Int("count", defaultBooks, "Books appended during the load phase (0 to skip)")
		timeout = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		verbose = flag.Bool("verbose", false, "Log every passing check")
		help    = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		smoke.ShowHelp()
		return
	}

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logger: " + err.Error() + "\n")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultTestTimeout)
	defer cancel()

	cfg := &smoke.Config{
		UserURL: *userURL,
		BookURL: *bookURL,
		Workers: *workers,
		Books:   *count,
		Timeout: *timeout,
		Verbose: *verbose,
	}

	if _, err := smoke.Run(ctx, cfg); err != nil {
		os.Stderr.WriteString("smoke run failed: " + err.Error() + "\n")
		os.Exit(1)
	}
}
