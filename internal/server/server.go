// Package server runs an HTTP handler with the timeouts, middleware and
// graceful shutdown shared by both services.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/okian/restdemo/internal/adapters/http/api"
	"github.com/okian/restdemo/internal/config"
	"github.com/okian/restdemo/pkg/logger"
)

// HTTP server timeout constants.
const (
	readTimeout       = 10 * time.Second
	writeTimeout      = 10 * time.Second
	idleTimeout       = 60 * time.Second
	readHeaderTimeout = 5 * time.Second
)

// ErrServe wraps listener and serve failures.
var ErrServe = errors.New("http server failed")

// Middlewares returns the request pipeline for service, outermost first.
// Access logs are only added in debug mode and rate limiting only when a
// positive rate is configured.
func Middlewares(cfg *config.Config, service string, log logger.Logger) []api.Middleware {
	mws := []api.Middleware{api.RequestID()}
	if cfg.Debug {
		mws = append(mws, api.AccessLog(log))
	}
	if cfg.RateLimitRPS > 0 {
		mws = append(mws, api.RateLimit(api.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst), service, log))
	}
	return mws
}

// New builds an http.Server for h with the standard timeouts.
func New(addr string, h http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}
}

// Run listens on cfg.Addr() and serves h until ctx is done.
func Run(ctx context.Context, cfg *config.Config, h http.Handler, log logger.Logger) error {
	log.With(logger.String("environment", cfg.Environment)).Info(ctx, "server configured",
		logger.String("addr", cfg.Addr()),
		logger.Bool("debug", cfg.Debug),
		logger.Bool("rate_limit", cfg.RateLimitRPS > 0),
	)
	ln, err := net.Listen("tcp", cfg.Addr())
	if err != nil {
		return fmt.Errorf("%w: listen %s: %w", ErrServe, cfg.Addr(), err)
	}
	return Serve(ctx, ln, New(cfg.Addr(), h), cfg.ShutdownTimeout(), log)
}

// Serve serves srv on ln until ctx is done, then drains in-flight requests
// for at most shutdownTimeout.
func Serve(ctx context.Context, ln net.Listener, srv *http.Server, shutdownTimeout time.Duration, log logger.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		log.Info(ctx, "starting HTTP server", logger.String("addr", ln.Addr().String()))
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("%w: %w", ErrServe, err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info(ctx, "shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "server shutdown failed", logger.Error(err))
		return fmt.Errorf("%w: shutdown: %w", ErrServe, err)
	}
	log.Info(ctx, "server stopped")
	return nil
}
