package repository

import "github.com/okian/restdemo/internal/domain/book"

// Option applies a configuration option to the MemoryStore.
type Option func(*MemoryStore)

// WithBooks replaces the seed catalog with books.
func WithBooks(books []book.Book) Option {
	return func(s *MemoryStore) {
		s.books = append([]book.Book(nil), books...)
	}
}

// WithCountObserver registers fn to receive the book count after every
// mutation and once at construction.
func WithCountObserver(fn func(count int)) Option {
	return func(s *MemoryStore) {
		s.observe = fn
	}
}
