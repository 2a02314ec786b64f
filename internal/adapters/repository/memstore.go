package repository

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/okian/restdemo/internal/domain/book"
)

// MemoryStore keeps books in process memory, in insertion order.
// A single RWMutex serializes writers, so every scan sees a consistent
// sequence. Records are returned by value and never aliased.
type MemoryStore struct {
	mu      sync.RWMutex
	books   []book.Book
	observe func(count int)
}

// NewMemoryStore creates a store seeded with book.Seed unless WithBooks is given.
func NewMemoryStore(opts ...Option) *MemoryStore {
	s := &MemoryStore{books: book.Seed()}
	for _, opt := range opts {
		opt(s)
	}
	s.notify(len(s.books))
	return s
}

var _ BookStore = (*MemoryStore)(nil)

// List returns a copy of the sequence. The result is never nil.
func (s *MemoryStore) List(_ context.Context) ([]book.Book, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]book.Book, len(s.books))
	copy(out, s.books)
	return out, nil
}

// Get returns the first book with id.
func (s *MemoryStore) Get(_ context.Context, id int) (book.Book, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.indexOf(id)
	if i < 0 {
		return book.Book{}, fmt.Errorf("book %d: %w", id, ErrNotFound)
	}
	return s.books[i], nil
}

// Add appends b.
func (s *MemoryStore) Add(_ context.Context, b book.Book) (book.Book, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.books = append(s.books, b)
	s.notify(len(s.books))
	return b, nil
}

// UpdatePrice mutates the first match in place.
func (s *MemoryStore) UpdatePrice(_ context.Context, id int, price float64) (book.Book, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(id)
	if i < 0 {
		return book.Book{}, fmt.Errorf("book %d: %w", id, ErrNotFound)
	}
	s.books[i].Price = price
	return s.books[i], nil
}

// Delete removes the first match.
func (s *MemoryStore) Delete(_ context.Context, id int) (book.Book, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(id)
	if i < 0 {
		return book.Book{}, fmt.Errorf("book %d: %w", id, ErrNotFound)
	}
	removed := s.books[i]
	s.books = slices.Delete(s.books, i, i+1)
	s.notify(len(s.books))
	return removed, nil
}

// Count returns the number of stored books.
func (s *MemoryStore) Count(_ context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.books)
}

// indexOf must be called with mu held.
func (s *MemoryStore) indexOf(id int) int {
	return slices.IndexFunc(s.books, func(b book.Book) bool { return b.ID == id })
}

// notify must be called with mu held so observers see counts in the order
// the mutations happened.
func (s *MemoryStore) notify(n int) {
	if s.observe != nil {
		s.observe(n)
	}
}
