package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/okian/restdemo/internal/domain/book"
	"github.com/okian/restdemo/pkg/logger"
)

// Fixed payload values of the bookstore API.
const (
	bookstoreWelcome     = "Python REST API is running!"
	bookstoreVersion     = "1.0"
	bookstoreServiceName = "python-rest-api"
	msgBookAdded         = "Book added successfully"
	msgBookUpdated       = "Book updated successfully"
	msgBookDeleted       = "Book deleted successfully"
	msgBookNotFound      = "Book not found"
)

// BookDependencies is what the bookstore handlers need.
type BookDependencies interface {
	Books(ctx context.Context) ([]book.Book, error)
	Book(ctx context.Context, id int) (book.Book, bool, error)
	AddBook(ctx context.Context, id int, draft book.Draft) (book.Book, error)
	UpdatePrice(ctx context.Context, id int, price float64) (book.Book, bool, error)
	RemoveBook(ctx context.Context, id int) (book.Book, bool, error)
}

// BookServer wires HTTP routes for the bookstore service.
type BookServer struct {
	deps   BookDependencies
	logger logger.Logger
}

// NewBookServer creates the bookstore API server.
func NewBookServer(deps BookDependencies, log logger.Logger) *BookServer {
	if log == nil {
		log = logger.Nop()
	}
	return &BookServer{deps: deps, logger: log}
}

// Register attaches all bookstore routes to mux.
func (s *BookServer) Register(_ context.Context, mux *http.ServeMux) {
	if mux == nil {
		panic("mux is nil")
	}
	s.handle(mux, "GET /{$}", "root", s.HandleRoot)
	s.handle(mux, "GET /health", "health", s.HandleHealth)
	s.handle(mux, "GET /books", "books", s.HandleListBooks)
	s.handle(mux, "GET /book/{id}", "book", withBookID(s.HandleGetBook))
	s.handle(mux, "POST /book/{id}", "book", withDraft(s.HandleAddBook))
	s.handle(mux, "PUT /book/{id}", "book", withPrice(s.HandleUpdateBook))
	s.handle(mux, "DELETE /book/{id}", "book", withBookID(s.HandleDeleteBook))
	mux.Handle("GET /metrics", MetricsHandler())
}

func (s *BookServer) handle(mux *http.ServeMux, pattern, endpoint string, h http.HandlerFunc) {
	mux.HandleFunc(pattern, MetricsMiddleware(h, ServiceBookstore, endpoint))
}

type rootResponse struct {
	Message string `json:"message"`
	Status  string `json:"status"`
	Version string `json:"version"`
}

type serviceHealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
}

type bookLookupResponse struct {
	Exists  bool       `json:"exists"`
	Book    *book.Book `json:"book,omitempty"`
	Message string     `json:"message,omitempty"`
}

type bookMessageResponse struct {
	Message string     `json:"message"`
	Book    *book.Book `json:"book,omitempty"`
}

// HandleRoot handles GET / requests.
func (s *BookServer) HandleRoot(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, rootResponse{Message: bookstoreWelcome, Status: statusHealthy, Version: bookstoreVersion})
}

// HandleHealth handles GET /health requests.
func (s *BookServer) HandleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, serviceHealthResponse{Status: statusHealthy, Service: bookstoreServiceName})
}

// HandleListBooks handles GET /books requests.
func (s *BookServer) HandleListBooks(w http.ResponseWriter, r *http.Request) {
	books, err := s.deps.Books(r.Context())
	if err != nil {
		internalError(r.Context(), w, s.logger, ServiceBookstore, "api.list_books", err)
		return
	}
	writeJSON(w, http.StatusOK, books)
}

// HandleGetBook handles GET /book/{id} requests. A miss is still a 200.
func (s *BookServer) HandleGetBook(w http.ResponseWriter, r *http.Request, id int) {
	b, found, err := s.deps.Book(r.Context(), id)
	if err != nil {
		internalError(r.Context(), w, s.logger, ServiceBookstore, "api.get_book", err)
		return
	}
	if !found {
		writeJSON(w, http.StatusOK, bookLookupResponse{Exists: false, Message: fmt.Sprintf("Book with ID %d not found", id)})
		return
	}
	writeJSON(w, http.StatusOK, bookLookupResponse{Exists: true, Book: &b})
}

// HandleAddBook handles POST /book/{id} requests. The path id replaces any
// id in the body, and duplicates are accepted.
func (s *BookServer) HandleAddBook(w http.ResponseWriter, r *http.Request, id int, draft book.Draft) {
	b, err := s.deps.AddBook(r.Context(), id, draft)
	if err != nil {
		internalError(r.Context(), w, s.logger, ServiceBookstore, "api.add_book", err)
		return
	}
	writeJSON(w, http.StatusOK, bookMessageResponse{Message: msgBookAdded, Book: &b})
}

// HandleUpdateBook handles PUT /book/{id}?price= requests.
func (s *BookServer) HandleUpdateBook(w http.ResponseWriter, r *http.Request, id int, price float64) {
	b, found, err := s.deps.UpdatePrice(r.Context(), id, price)
	if err != nil {
		internalError(r.Context(), w, s.logger, ServiceBookstore, "api.update_book", err)
		return
	}
	if !found {
		writeJSON(w, http.StatusOK, bookMessageResponse{Message: msgBookNotFound})
		return
	}
	writeJSON(w, http.StatusOK, bookMessageResponse{Message: msgBookUpdated, Book: &b})
}

// HandleDeleteBook handles DELETE /book/{id} requests.
func (s *BookServer) HandleDeleteBook(w http.ResponseWriter, r *http.Request, id int) {
	b, found, err := s.deps.RemoveBook(r.Context(), id)
	if err != nil {
		internalError(r.Context(), w, s.logger, ServiceBookstore, "api.delete_book", err)
		return
	}
	if !found {
		writeJSON(w, http.StatusOK, bookMessageResponse{Message: msgBookNotFound})
		return
	}
	writeJSON(w, http.StatusOK, bookMessageResponse{Message: msgBookDeleted, Book: &b})
}
