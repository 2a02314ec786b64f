// Command bookstore serves the in-memory book catalog and its API reference.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/okian/restdemo/internal/adapters/http/api"
	"github.com/okian/restdemo/internal/adapters/http/swagger"
	"github.com/okian/restdemo/internal/adapters/repository"
	"github.com/okian/restdemo/internal/app"
	"github.com/okian/restdemo/internal/config"
	"github.com/okian/restdemo/internal/server"
	"github.com/okian/restdemo/pkg/logger"
	"github.com/okian/restdemo/pkg/metrics"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx, config.WithPort(config.BookstorePort))
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}

	if err := logger.InitWithOptions(logger.Options{Format: cfg.LogFormat}); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	log := logger.Named(api.ServiceBookstore)
	if err := logger.SetLevelString(cfg.EffectiveLogLevel()); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	if err := server.Run(ctx, cfg, newHandler(ctx, cfg, log), log); err != nil {
		log.Error(ctx, "server exited", logger.Error(err))
		os.Exit(1)
	}
}

// newHandler wires the catalog, the bookstore routes and the API reference
// behind the shared middleware. Every call starts from the seed books.
func newHandler(ctx context.Context, cfg *config.Config, log logger.Logger) http.Handler {
	store := repository.NewMemoryStore(repository.WithCountObserver(metrics.UpdateBooksTotal))
	catalog := app.NewCatalog(store, app.WithCatalogLogger(log))

	mux := http.NewServeMux()
	swagger.Register(ctx, mux)
	api.NewBookServer(catalog, log).Register(ctx, mux)

	return api.Chain(mux, server.Middlewares(cfg, api.ServiceBookstore, log)...)
}
