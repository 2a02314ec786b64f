package smoke

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/google/uuid"
)

// ErrCheck marks a failed expectation.
var ErrCheck = errors.New("check failed")

// check is one named expectation against a running server.
type check struct {
	name string
	run  func(ctx context.Context, c *httpClient, base string) error
}

func failf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrCheck, fmt.Sprintf(format, args...))
}

func expectStatus(r *response, want int) error {
	if r.Status != want {
		return failf("status %d, want %d (body %s)", r.Status, want, truncate(r.Body))
	}
	return nil
}

func expectField(m map[string]any, key string, want any) error {
	if got := m[key]; got != want {
		return failf("%s = %v, want %v", key, got, want)
	}
	return nil
}

// getObject fetches url and decodes a JSON object after checking the status.
func getObject(ctx context.Context, c *httpClient, method, url string, body any, status int) (map[string]any, error) {
	r, err := c.do(ctx, method, url, body)
	if err != nil {
		return nil, err
	}
	if err := expectStatus(r, status); err != nil {
		return nil, err
	}
	var m map[string]any
	if err := r.JSON(&m); err != nil {
		return nil, err
	}
	return m, nil
}

// freshBookID picks an id unlikely to collide with seeded or concurrent books.
func freshBookID() int {
	return 1_000_000 + int(uuid.New().ID()%1_000_000_000)
}

func userChecks() []check {
	return []check{
		{"user: welcome", func(ctx context.Context, c *httpClient, base string) error {
			m, err := getObject(ctx, c, http.MethodGet, base+"/", nil, http.StatusOK)
			if err != nil {
				return err
			}
			if err := expectField(m, "message", "Welcome to Python REST API"); err != nil {
				return err
			}
			if h, _ := m["hostname"].(string); h == "" {
				return failf("hostname is empty")
			}
			return expectField(m, "version", "1.0.0")
		}},
		{"user: health", func(ctx context.Context, c *httpClient, base string) error {
			m, err := getObject(ctx, c, http.MethodGet, base+"/health", nil, http.StatusOK)
			if err != nil {
				return err
			}
			return expectField(m, "status", "healthy")
		}},
		{"user: list", func(ctx context.Context, c *httpClient, base string) error {
			return expectThreeUsers(ctx, c, base)
		}},
		{"user: get", func(ctx context.Context, c *httpClient, base string) error {
			m, err := getObject(ctx, c, http.MethodGet, base+"/api/users/1", nil, http.StatusOK)
			if err != nil {
				return err
			}
			return expectField(m, "name", "John Doe")
		}},
		{"user: get missing", func(ctx context.Context, c *httpClient, base string) error {
			m, err := getObject(ctx, c, http.MethodGet, base+"/api/users/999", nil, http.StatusNotFound)
			if err != nil {
				return err
			}
			return expectField(m, "error", "User not found")
		}},
		{"user: create is not persisted", func(ctx context.Context, c *httpClient, base string) error {
			name := "smoke-" + uuid.NewString()
			m, err := getObject(ctx, c, http.MethodPost, base+"/api/users",
				map[string]string{"name": name, "email": name + "@example.com"}, http.StatusCreated)
			if err != nil {
				return err
			}
			if err := expectField(m, "id", float64(4)); err != nil {
				return err
			}
			if err := expectField(m, "name", name); err != nil {
				return err
			}
			return expectThreeUsers(ctx, c, base)
		}},
		{"user: create missing field", func(ctx context.Context, c *httpClient, base string) error {
			m, err := getObject(ctx, c, http.MethodPost, base+"/api/users", map[string]string{"name": "x"}, http.StatusBadRequest)
			if err != nil {
				return err
			}
			return expectField(m, "error", "Missing required fields")
		}},
		{"user: info", func(ctx context.Context, c *httpClient, base string) error {
			m, err := getObject(ctx, c, http.MethodGet, base+"/api/info", nil, http.StatusOK)
			if err != nil {
				return err
			}
			for _, key := range []string{"environment", "kubernetes_pod", "namespace", "timestamp"} {
				if _, ok := m[key]; !ok {
					return failf("missing %s", key)
				}
			}
			return expectField(m, "application", "Python REST API")
		}},
		{"user: method not allowed", func(ctx context.Context, c *httpClient, base string) error {
			r, err := c.do(ctx, http.MethodDelete, base+"/api/users", nil)
			if err != nil {
				return err
			}
			return expectStatus(r, http.StatusMethodNotAllowed)
		}},
	}
}

func expectThreeUsers(ctx context.Context, c *httpClient, base string) error {
	r, err := c.do(ctx, http.MethodGet, base+"/api/users", nil)
	if err != nil {
		return err
	}
	if err := expectStatus(r, http.StatusOK); err != nil {
		return err
	}
	var users []User
	if err := r.JSON(&users); err != nil {
		return err
	}
	if len(users) != 3 {
		return failf("%d users, want 3", len(users))
	}
	for i, u := range users {
		if u.ID != i+1 {
			return failf("user %d has id %d", i, u.ID)
		}
	}
	return nil
}

func bookChecks() []check {
	return []check{
		{"book: root", func(ctx context.Context, c *httpClient, base string) error {
			m, err := getObject(ctx, c, http.MethodGet, base+"/", nil, http.StatusOK)
			if err != nil {
				return err
			}
			return expectField(m, "message", "Python REST API is running!")
		}},
		{"book: health", func(ctx context.Context, c *httpClient, base string) error {
			m, err := getObject(ctx, c, http.MethodGet, base+"/health", nil, http.StatusOK)
			if err != nil {
				return err
			}
			return expectField(m, "service", "python-rest-api")
		}},
		{"book: list", func(ctx context.Context, c *httpClient, base string) error {
			_, err := listBooks(ctx, c, base)
			return err
		}},
		{"book: lifecycle", bookLifecycle},
		{"book: invalid id", func(ctx context.Context, c *httpClient, base string) error {
			return expectValidation(ctx, c, http.MethodGet, base+"/book/abc", nil, "path")
		}},
		{"book: missing price", func(ctx context.Context, c *httpClient, base string) error {
			return expectValidation(ctx, c, http.MethodPut, base+"/book/1", nil, "query")
		}},
		{"book: invalid body", func(ctx context.Context, c *httpClient, base string) error {
			return expectValidation(ctx, c, http.MethodPost, base+"/book/1", "{}", "body")
		}},
		{"book: docs", func(ctx context.Context, c *httpClient, base string) error {
			r, err := c.do(ctx, http.MethodGet, base+"/openapi.yaml", nil)
			if err != nil {
				return err
			}
			return expectStatus(r, http.StatusOK)
		}},
	}
}

// bookLifecycle walks one book through miss, add, lookup, update, delete.
func bookLifecycle(ctx context.Context, c *httpClient, base string) error {
	id := freshBookID()
	url := base + "/book/" + strconv.Itoa(id)

	m, err := getObject(ctx, c, http.MethodGet, url, nil, http.StatusOK)
	if err != nil {
		return err
	}
	if err := expectField(m, "message", fmt.Sprintf("Book with ID %d not found", id)); err != nil {
		return err
	}

	name := "smoke-" + uuid.NewString()
	draft := Book{Name: name, Author: "Smoke Runner", ISBN: "000-0-00-000000-0", Price: 9.99}
	if m, err = getObject(ctx, c, http.MethodPost, url, draft, http.StatusOK); err != nil {
		return err
	}
	if err := expectField(m, "message", "Book added successfully"); err != nil {
		return err
	}

	if m, err = getObject(ctx, c, http.MethodGet, url, nil, http.StatusOK); err != nil {
		return err
	}
	if err := expectField(m, "exists", true); err != nil {
		return err
	}

	if m, err = getObject(ctx, c, http.MethodPut, url+"?price=42.5", nil, http.StatusOK); err != nil {
		return err
	}
	if err := expectField(m, "message", "Book updated successfully"); err != nil {
		return err
	}
	if b, _ := m["book"].(map[string]any); b == nil || b["price"] != 42.5 {
		return failf("price not updated: %v", m["book"])
	}

	if m, err = getObject(ctx, c, http.MethodDelete, url, nil, http.StatusOK); err != nil {
		return err
	}
	if err := expectField(m, "message", "Book deleted successfully"); err != nil {
		return err
	}

	if m, err = getObject(ctx, c, http.MethodDelete, url, nil, http.StatusOK); err != nil {
		return err
	}
	return expectField(m, "message", "Book not found")
}

func expectValidation(ctx context.Context, c *httpClient, method, url string, body any, loc string) error {
	r, err := c.do(ctx, method, url, body)
	if err != nil {
		return err
	}
	if err := expectStatus(r, http.StatusUnprocessableEntity); err != nil {
		return err
	}
	var v struct {
		Detail []struct {
			Loc []any `json:"loc"`
		} `json:"detail"`
	}
	if err := r.JSON(&v); err != nil {
		return err
	}
	if len(v.Detail) == 0 || len(v.Detail[0].Loc) == 0 || v.Detail[0].Loc[0] != loc {
		return failf("first failure not in %s: %s", loc, truncate(r.Body))
	}
	return nil
}

func listBooks(ctx context.Context, c *httpClient, base string) ([]Book, error) {
	r, err := c.do(ctx, http.MethodGet, base+"/books", nil)
	if err != nil {
		return nil, err
	}
	if err := expectStatus(r, http.StatusOK); err != nil {
		return nil, err
	}
	var books []Book
	if err := r.JSON(&books); err != nil {
		return nil, err
	}
	if books == nil {
		return nil, failf("book list is null")
	}
	return books, nil
}
