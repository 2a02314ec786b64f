// Package repository defines the book store and user directory interfaces
// and their in-memory implementations.
package repository

import (
	"context"

	"github.com/okian/restdemo/internal/domain/book"
	"github.com/okian/restdemo/internal/domain/user"
)

// BookStore provides read/write access to the ordered book sequence.
// Ids are not unique: Get, UpdatePrice and Delete act on the first match.
type BookStore interface {
	// List returns every book in current order.
	List(ctx context.Context) ([]book.Book, error)

	// Get returns the first book with id, or ErrNotFound.
	Get(ctx context.Context, id int) (book.Book, error)

	// Add appends b to the end of the sequence.
	Add(ctx context.Context, b book.Book) (book.Book, error)

	// UpdatePrice sets the price of the first book with id and returns it,
	// or ErrNotFound.
	UpdatePrice(ctx context.Context, id int, price float64) (book.Book, error)

	// Delete removes the first book with id, keeping the order of the rest,
	// and returns the removed record, or ErrNotFound.
	Delete(ctx context.Context, id int) (book.Book, error)

	// Count returns the number of stored books.
	Count(ctx context.Context) int
}

// UserDirectory provides read access to users.
type UserDirectory interface {
	// List returns every user in insertion order.
	List(ctx context.Context) ([]user.User, error)

	// Get returns the user with id, or ErrNotFound.
	Get(ctx context.Context, id int) (user.User, error)
}
