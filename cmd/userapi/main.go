// Command userapi serves the user directory, host details and deployment info.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/okian/restdemo/internal/adapters/http/api"
	"github.com/okian/restdemo/internal/adapters/repository"
	"github.com/okian/restdemo/internal/app"
	"github.com/okian/restdemo/internal/config"
	"github.com/okian/restdemo/internal/server"
	"github.com/okian/restdemo/pkg/logger"
)

func main() {
	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx, config.WithPort(config.UserAPIPort))
	if err != nil {
		// logger isn't available yet
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}

	if err := logger.InitWithOptions(logger.Options{Format: cfg.LogFormat}); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	log := logger.Named(api.ServiceUserAPI)
	if err := logger.SetLevelString(cfg.EffectiveLogLevel()); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	if err := server.Run(ctx, cfg, newHandler(ctx, cfg, log), log); err != nil {
		log.Error(ctx, "server exited", logger.Error(err))
		os.Exit(1)
	}
}

// newHandler wires the user API routes behind the shared middleware.
func newHandler(ctx context.Context, cfg *config.Config, log logger.Logger) http.Handler {
	dir := app.NewDirectory(repository.NewStaticDirectory(),
		app.WithEnvironment(app.Environment{
			Name:      cfg.Environment,
			Pod:       cfg.PodName,
			Namespace: cfg.Namespace,
		}),
		app.WithDirectoryLogger(log),
	)

	mux := http.NewServeMux()
	api.NewUserServer(dir, log).Register(ctx, mux)

	return api.Chain(mux, server.Middlewares(cfg, api.ServiceUserAPI, log)...)
}
