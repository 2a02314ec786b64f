// Package app provides the business services behind the HTTP API: the user
// directory with its host and environment info, and the book catalog.
package app

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/okian/restdemo/internal/adapters/repository"
	"github.com/okian/restdemo/internal/domain/user"
	"github.com/okian/restdemo/pkg/logger"
	"github.com/okian/restdemo/pkg/metrics"
)

// unknownHost is reported when the hostname cannot be read.
const unknownHost = "unknown"

// Environment describes where the process is deployed.
type Environment struct {
	Name      string
	Pod       string
	Namespace string
}

// HostInfo is a point-in-time view of the serving host.
type HostInfo struct {
	Timestamp time.Time
	Hostname  string
}

// Directory serves the fixed user set plus host and environment details.
type Directory struct {
	users    repository.UserDirectory
	env      Environment
	now      func() time.Time
	hostname func() (string, error)
	logger   logger.Logger
}

// DirectoryOption applies a configuration option to the Directory.
type DirectoryOption func(*Directory)

// WithEnvironment sets the reported environment.
func WithEnvironment(env Environment) DirectoryOption {
	return func(d *Directory) {
		d.env = env
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) DirectoryOption {
	return func(d *Directory) {
		if now != nil {
			d.now = now
		}
	}
}

// WithHostname replaces os.Hostname.
func WithHostname(fn func() (string, error)) DirectoryOption {
	return func(d *Directory) {
		if fn != nil {
			d.hostname = fn
		}
	}
}

// WithDirectoryLogger sets a custom logger.
func WithDirectoryLogger(l logger.Logger) DirectoryOption {
	return func(d *Directory) {
		if l != nil {
			d.logger = l
		}
	}
}

// NewDirectory constructs a Directory over users.
func NewDirectory(users repository.UserDirectory, opts ...DirectoryOption) *Directory {
	d := &Directory{
		users:    users,
		env:      Environment{Name: "development", Pod: unknownHost, Namespace: unknownHost},
		now:      time.Now,
		hostname: os.Hostname,
		logger:   logger.Nop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Host returns the current time and hostname.
func (d *Directory) Host(ctx context.Context) HostInfo {
	name, err := d.hostname()
	if err != nil || name == "" {
		d.logger.Warn(ctx, "hostname unavailable", logger.Error(err))
		name = unknownHost
	}
	return HostInfo{Timestamp: d.now(), Hostname: name}
}

// Now returns the current time.
func (d *Directory) Now() time.Time {
	return d.now()
}

// Environment returns the configured deployment details.
func (d *Directory) Environment() Environment {
	return d.env
}

// Users returns every user in insertion order.
func (d *Directory) Users(ctx context.Context) ([]user.User, error) {
	return d.users.List(ctx)
}

// User returns the user with id or an error wrapping repository.ErrNotFound.
func (d *Directory) User(ctx context.Context, id int) (user.User, error) {
	u, err := d.users.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			metrics.RecordUserLookup(metrics.ResultNotFound)
		}
		return user.User{}, err
	}
	metrics.RecordUserLookup(metrics.ResultOK)
	return u, nil
}

// CreateUser validates req and echoes the new user. Nothing is stored: the
// directory keeps returning the same fixed users afterwards.
func (d *Directory) CreateUser(ctx context.Context, req user.CreateRequest) (user.Created, error) {
	u, err := req.Validate()
	if err != nil {
		return user.Created{}, err
	}
	metrics.RecordUserCreated()
	d.logger.Debug(ctx, "user create accepted", logger.String("name", string(u.Name)), logger.String("email", string(u.Email)))
	return u, nil
}
