// Package smoke drives running user API and bookstore servers over HTTP and
// verifies their observable behavior.
package smoke

import "time"

// Config holds configuration for a smoke run.
type Config struct {
	UserURL string        // Base URL of the user API; empty skips it
	BookURL string        // Base URL of the bookstore; empty skips it
	Workers int           // Concurrent writers in the load phase
	Books   int           // Books appended during the load phase
	Timeout time.Duration // HTTP request timeout
	Verbose bool          // Log every passing check
}

// Book mirrors the bookstore record.
type Book struct {
	ID     int     `json:"id"`
	Name   string  `json:"name"`
	Author string  `json:"author"`
	ISBN   string  `json:"isbn"`
	Price  float64 `json:"price"`
}

// User mirrors the user API record.
type User struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Stats holds run statistics.
type Stats struct {
	ChecksPassed int
	ChecksFailed int
	BooksAdded   int
	BooksMissing int
	StartTime    time.Time
	EndTime      time.Time
	Duration     time.Duration
}
