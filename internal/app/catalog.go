package app

import (
	"context"
	"errors"

	"github.com/okian/restdemo/internal/adapters/repository"
	"github.com/okian/restdemo/internal/domain/book"
	"github.com/okian/restdemo/pkg/logger"
	"github.com/okian/restdemo/pkg/metrics"
)

// Mutation names used in metrics and logs.
const (
	opAdd    = "add"
	opUpdate = "update"
	opDelete = "delete"
)

// Catalog implements the bookstore operations over a BookStore. Misses are
// reported as found == false rather than as errors; errors are reserved for
// store failures.
type Catalog struct {
	store  repository.BookStore
	logger logger.Logger
}

// CatalogOption applies a configuration option to the Catalog.
type CatalogOption func(*Catalog)

// WithCatalogLogger sets a custom logger.
func WithCatalogLogger(l logger.Logger) CatalogOption {
	return func(c *Catalog) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewCatalog constructs a Catalog over store.
func NewCatalog(store repository.BookStore, opts ...CatalogOption) *Catalog {
	c := &Catalog{store: store, logger: logger.Nop()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Books returns the current sequence.
func (c *Catalog) Books(ctx context.Context) ([]book.Book, error) {
	return c.store.List(ctx)
}

// Book returns the first book with id.
func (c *Catalog) Book(ctx context.Context, id int) (book.Book, bool, error) {
	b, err := c.store.Get(ctx, id)
	found, err := c.outcome(err)
	if err != nil {
		return book.Book{}, false, err
	}
	if found {
		metrics.RecordBookLookup(metrics.ResultOK)
	} else {
		metrics.RecordBookLookup(metrics.ResultNotFound)
	}
	return b, found, nil
}

// AddBook appends draft under id. Existing books with the same id are kept.
func (c *Catalog) AddBook(ctx context.Context, id int, draft book.Draft) (book.Book, error) {
	b, err := c.store.Add(ctx, draft.WithID(id))
	if err != nil {
		return book.Book{}, err
	}
	metrics.RecordBookMutation(opAdd, metrics.ResultOK)
	c.logger.Info(ctx, "book added", logger.Int("id", b.ID), logger.String("name", b.Name))
	return b, nil
}

// UpdatePrice sets the price of the first book with id.
func (c *Catalog) UpdatePrice(ctx context.Context, id int, price float64) (book.Book, bool, error) {
	b, err := c.store.UpdatePrice(ctx, id, price)
	found, err := c.outcome(err)
	if err != nil {
		return book.Book{}, false, err
	}
	c.record(ctx, opUpdate, id, found)
	return b, found, nil
}

// RemoveBook deletes the first book with id and returns it.
func (c *Catalog) RemoveBook(ctx context.Context, id int) (book.Book, bool, error) {
	b, err := c.store.Delete(ctx, id)
	found, err := c.outcome(err)
	if err != nil {
		return book.Book{}, false, err
	}
	c.record(ctx, opDelete, id, found)
	return b, found, nil
}

// outcome separates a miss from a real failure.
func (c *Catalog) outcome(err error) (bool, error) {
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, repository.ErrNotFound):
		return false, nil
	default:
		return false, err
	}
}

func (c *Catalog) record(ctx context.Context, op string, id int, found bool) {
	if !found {
		metrics.RecordBookMutation(op, metrics.ResultNotFound)
		c.logger.Debug(ctx, "book not found", logger.String("operation", op), logger.Int("id", id))
		return
	}
	metrics.RecordBookMutation(op, metrics.ResultOK)
	c.logger.Info(ctx, "book changed", logger.String("operation", op), logger.Int("id", id))
}
