package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/okian/restdemo/internal/adapters/http/api"
	"github.com/okian/restdemo/internal/adapters/repository"
	"github.com/okian/restdemo/internal/app"
	"github.com/okian/restdemo/internal/domain/book"
	. "github.com/smartystreets/goconvey/convey"
)

var fixedNow = time.Date(2024, 3, 1, 12, 30, 45, 0, time.Local)

func newUserMux() *http.ServeMux {
	dir := app.NewDirectory(repository.NewStaticDirectory(),
		app.WithClock(func() time.Time { return fixedNow }),
		app.WithHostname(func() (string, error) { return "pod-a", nil }),
		app.WithEnvironment(app.Environment{Name: "staging", Pod: "pod-a", Namespace: "shop"}),
	)
	mux := http.NewServeMux()
	api.NewUserServer(dir, nil).Register(context.Background(), mux)
	return mux
}

func newBookMux() *http.ServeMux {
	mux := http.NewServeMux()
	api.NewBookServer(app.NewCatalog(repository.NewMemoryStore()), nil).Register(context.Background(), mux)
	return mux
}

func do(h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode(rec *httptest.ResponseRecorder) map[string]any {
	var m map[string]any
	So(json.Unmarshal(rec.Body.Bytes(), &m), ShouldBeNil)
	return m
}

func TestUserAPI(t *testing.T) {
	Convey("Given the user API", t, func() {
		mux := newUserMux()

		Convey("GET / should welcome with host details", func() {
			rec := do(mux, http.MethodGet, "/", "")
			So(rec.Code, ShouldEqual, http.StatusOK)
			So(rec.Header().Get("Content-Type"), ShouldEqual, "application/json")
			body := decode(rec)
			So(body["message"], ShouldEqual, "Welcome to Python REST API")
			So(body["timestamp"], ShouldEqual, "2024-03-01T12:30:45")
			So(body["hostname"], ShouldEqual, "pod-a")
			So(body["version"], ShouldEqual, "1.0.0")
		})

		Convey("GET /health should report healthy", func() {
			rec := do(mux, http.MethodGet, "/health", "")
			So(rec.Code, ShouldEqual, http.StatusOK)
			body := decode(rec)
			So(body["status"], ShouldEqual, "healthy")
			So(body["hostname"], ShouldEqual, "pod-a")
		})

		Convey("GET /api/users should list the three users in order", func() {
			rec := do(mux, http.MethodGet, "/api/users", "")
			So(rec.Code, ShouldEqual, http.StatusOK)
			var users []map[string]any
			So(json.Unmarshal(rec.Body.Bytes(), &users), ShouldBeNil)
			So(len(users), ShouldEqual, 3)
			So(users[0]["name"], ShouldEqual, "John Doe")
			So(users[2]["email"], ShouldEqual, "bob@example.com")
		})

		Convey("GET /api/users/{id}", func() {
			Convey("should return a known user", func() {
				rec := do(mux, http.MethodGet, "/api/users/2", "")
				So(rec.Code, ShouldEqual, http.StatusOK)
				So(decode(rec)["name"], ShouldEqual, "Jane Smith")
			})

			Convey("should answer 404 for an unknown id", func() {
				rec := do(mux, http.MethodGet, "/api/users/99", "")
				So(rec.Code, ShouldEqual, http.StatusNotFound)
				So(decode(rec)["error"], ShouldEqual, "User not found")
			})

			Convey("should not route non-numeric ids", func() {
				for _, id := range []string{"abc", "-1", "1.5"} {
					rec := do(mux, http.MethodGet, "/api/users/"+id, "")
					So(rec.Code, ShouldEqual, http.StatusNotFound)
					So(rec.Body.String(), ShouldNotContainSubstring, "User not found")
				}
			})
		})

		Convey("POST /api/users", func() {
			Convey("should echo a valid user with id 4", func() {
				rec := do(mux, http.MethodPost, "/api/users", `{"name":"Ann","email":"ann@example.com"}`)
				So(rec.Code, ShouldEqual, http.StatusCreated)
				body := decode(rec)
				So(body["id"], ShouldEqual, 4.0)
				So(body["name"], ShouldEqual, "Ann")
				So(body["email"], ShouldEqual, "ann@example.com")

				Convey("and never add it to the list", func() {
					var users []map[string]any
					So(json.Unmarshal(do(mux, http.MethodGet, "/api/users", "").Body.Bytes(), &users), ShouldBeNil)
					So(len(users), ShouldEqual, 3)
				})
			})

			Convey("should echo any present values as sent", func() {
				cases := []struct {
					body  string
					name  any
					email any
				}{
					{`{"name":null,"email":"y@z.com"}`, nil, "y@z.com"},
					{`{"name":1,"email":"y@z.com"}`, 1.0, "y@z.com"},
					{`{"name":"X","email":["a"]}`, "X", []any{"a"}},
				}
				for _, c := range cases {
					rec := do(mux, http.MethodPost, "/api/users", c.body)
					So(rec.Code, ShouldEqual, http.StatusCreated)
					body := decode(rec)
					So(body, ShouldContainKey, "name")
					So(body["id"], ShouldEqual, 4.0)
					So(body["name"], ShouldResemble, c.name)
					So(body["email"], ShouldResemble, c.email)
				}
			})

			Convey("should reject bodies missing a field", func() {
				for _, body := range []string{`{"name":"Ann"}`, `{"email":"a@b"}`, `{}`, `null`, `["name","email"]`, `not json`, ``} {
					rec := do(mux, http.MethodPost, "/api/users", body)
					So(rec.Code, ShouldEqual, http.StatusBadRequest)
					So(decode(rec)["error"], ShouldEqual, "Missing required fields")
				}
			})
		})

		Convey("GET /api/info should describe the deployment", func() {
			rec := do(mux, http.MethodGet, "/api/info", "")
			So(rec.Code, ShouldEqual, http.StatusOK)
			body := decode(rec)
			So(body["application"], ShouldEqual, "Python REST API")
			So(body["environment"], ShouldEqual, "staging")
			So(body["kubernetes_pod"], ShouldEqual, "pod-a")
			So(body["namespace"], ShouldEqual, "shop")
			So(body["timestamp"], ShouldEqual, "2024-03-01T12:30:45")
		})

		Convey("Wrong methods should get 405", func() {
			So(do(mux, http.MethodDelete, "/api/users", "").Code, ShouldEqual, http.StatusMethodNotAllowed)
			So(do(mux, http.MethodPost, "/health", "").Code, ShouldEqual, http.StatusMethodNotAllowed)
		})

		Convey("Unknown paths should get 404", func() {
			So(do(mux, http.MethodGet, "/nope", "").Code, ShouldEqual, http.StatusNotFound)
		})

		Convey("GET /metrics should expose request counters", func() {
			do(mux, http.MethodGet, "/health", "")
			rec := do(mux, http.MethodGet, "/metrics", "")
			So(rec.Code, ShouldEqual, http.StatusOK)
			So(rec.Body.String(), ShouldContainSubstring, "restdemo_api_http_requests_total")
		})
	})
}

func TestBookstoreAPI(t *testing.T) {
	Convey("Given the bookstore API", t, func() {
		mux := newBookMux()

		Convey("GET / and /health should report healthy", func() {
			root := decode(do(mux, http.MethodGet, "/", ""))
			So(root["message"], ShouldEqual, "Python REST API is running!")
			So(root["status"], ShouldEqual, "healthy")
			So(root["version"], ShouldEqual, "1.0")

			health := decode(do(mux, http.MethodGet, "/health", ""))
			So(health["status"], ShouldEqual, "healthy")
			So(health["service"], ShouldEqual, "python-rest-api")
		})

		Convey("GET /books should list the seed", func() {
			var books []book.Book
			So(json.Unmarshal(do(mux, http.MethodGet, "/books", "").Body.Bytes(), &books), ShouldBeNil)
			So(books, ShouldResemble, book.Seed())
		})

		Convey("GET /book/{id}", func() {
			Convey("should return an existing book", func() {
				rec := do(mux, http.MethodGet, "/book/2", "")
				So(rec.Code, ShouldEqual, http.StatusOK)
				body := decode(rec)
				So(body["exists"], ShouldBeTrue)
				So(body["book"].(map[string]any)["name"], ShouldEqual, "To Kill a Mockingbird")
				So(body, ShouldNotContainKey, "message")
			})

			Convey("should answer 200 with exists=false for a miss", func() {
				rec := do(mux, http.MethodGet, "/book/42", "")
				So(rec.Code, ShouldEqual, http.StatusOK)
				body := decode(rec)
				So(body["exists"], ShouldBeFalse)
				So(body["message"], ShouldEqual, "Book with ID 42 not found")
				So(body, ShouldNotContainKey, "book")
			})

			Convey("should answer 422 for a non-integer id", func() {
				rec := do(mux, http.MethodGet, "/book/abc", "")
				So(rec.Code, ShouldEqual, http.StatusUnprocessableEntity)
				var verr book.ValidationError
				So(json.Unmarshal(rec.Body.Bytes(), &verr), ShouldBeNil)
				So(verr.Detail[0].Loc, ShouldResemble, []any{"path", "book_id"})
				So(verr.Detail[0].Type, ShouldEqual, "type_error.integer")
			})
		})

		Convey("POST /book/{id}", func() {
			Convey("should append with the path id", func() {
				rec := do(mux, http.MethodPost, "/book/7", `{"id":99,"name":"Dune","author":"Frank Herbert","isbn":"978-0441013593","price":9.99}`)
				So(rec.Code, ShouldEqual, http.StatusOK)
				body := decode(rec)
				So(body["message"], ShouldEqual, "Book added successfully")
				So(body["book"].(map[string]any)["id"], ShouldEqual, 7.0)

				var books []book.Book
				So(json.Unmarshal(do(mux, http.MethodGet, "/books", "").Body.Bytes(), &books), ShouldBeNil)
				So(len(books), ShouldEqual, 4)
				So(books[3].ID, ShouldEqual, 7)
			})

			Convey("should accept duplicate ids and resolve lookups to the first", func() {
				So(do(mux, http.MethodPost, "/book/1", `{"name":"Copy","author":"A","isbn":"x","price":1}`).Code, ShouldEqual, http.StatusOK)
				body := decode(do(mux, http.MethodGet, "/book/1", ""))
				So(body["book"].(map[string]any)["name"], ShouldEqual, "The Great Gatsby")
			})

			Convey("should report every invalid field", func() {
				rec := do(mux, http.MethodPost, "/book/7", `{"name":"Dune","price":"cheap"}`)
				So(rec.Code, ShouldEqual, http.StatusUnprocessableEntity)
				var verr book.ValidationError
				So(json.Unmarshal(rec.Body.Bytes(), &verr), ShouldBeNil)
				So(len(verr.Detail), ShouldEqual, 3)
				So(verr.Detail[0].Loc, ShouldResemble, []any{"body", "author"})
				So(verr.Detail[2].Loc, ShouldResemble, []any{"body", "price"})
			})

			Convey("should put path errors before body errors", func() {
				rec := do(mux, http.MethodPost, "/book/x", `{}`)
				So(rec.Code, ShouldEqual, http.StatusUnprocessableEntity)
				var verr book.ValidationError
				So(json.Unmarshal(rec.Body.Bytes(), &verr), ShouldBeNil)
				So(verr.Detail[0].Loc, ShouldResemble, []any{"path", "book_id"})
				So(len(verr.Detail), ShouldEqual, 5)
			})

			Convey("should reject an oversized body with 413", func() {
				big := `{"name":"` + strings.Repeat("a", 1<<20) + `"}`
				rec := do(mux, http.MethodPost, "/book/7", big)
				So(rec.Code, ShouldEqual, http.StatusRequestEntityTooLarge)
				So(decode(rec)["detail"], ShouldEqual, "Request Entity Too Large")
			})
		})

		Convey("PUT /book/{id}?price=", func() {
			Convey("should update the first match", func() {
				rec := do(mux, http.MethodPut, "/book/3?price=20.5", "")
				So(rec.Code, ShouldEqual, http.StatusOK)
				body := decode(rec)
				So(body["message"], ShouldEqual, "Book updated successfully")
				So(body["book"].(map[string]any)["price"], ShouldEqual, 20.5)
			})

			Convey("should answer Book not found for a miss", func() {
				rec := do(mux, http.MethodPut, "/book/42?price=1", "")
				So(rec.Code, ShouldEqual, http.StatusOK)
				So(decode(rec)["message"], ShouldEqual, "Book not found")
			})

			Convey("should require a numeric price", func() {
				for _, target := range []string{"/book/3", "/book/3?price=abc"} {
					rec := do(mux, http.MethodPut, target, "")
					So(rec.Code, ShouldEqual, http.StatusUnprocessableEntity)
					var verr book.ValidationError
					So(json.Unmarshal(rec.Body.Bytes(), &verr), ShouldBeNil)
					So(verr.Detail[0].Loc, ShouldResemble, []any{"query", "price"})
				}
			})
		})

		Convey("DELETE /book/{id}", func() {
			Convey("should remove the first match", func() {
				rec := do(mux, http.MethodDelete, "/book/1", "")
				So(rec.Code, ShouldEqual, http.StatusOK)
				So(decode(rec)["message"], ShouldEqual, "Book deleted successfully")
				So(decode(do(mux, http.MethodGet, "/book/1", ""))["exists"], ShouldBeFalse)
			})

			Convey("should answer Book not found for a miss", func() {
				rec := do(mux, http.MethodDelete, "/book/42", "")
				So(rec.Code, ShouldEqual, http.StatusOK)
				So(decode(rec)["message"], ShouldEqual, "Book not found")
			})
		})

		Convey("Wrong methods should get 405", func() {
			So(do(mux, http.MethodPatch, "/book/1", "").Code, ShouldEqual, http.StatusMethodNotAllowed)
			So(do(mux, http.MethodPost, "/books", "").Code, ShouldEqual, http.StatusMethodNotAllowed)
		})
	})
}

type brokenCatalog struct{}

var errBroken = errors.New("broken")

func (brokenCatalog) Books(context.Context) ([]book.Book, error) { return nil, errBroken }
func (brokenCatalog) Book(context.Context, int) (book.Book, bool, error) {
	return book.Book{}, false, errBroken
}
func (brokenCatalog) AddBook(context.Context, int, book.Draft) (book.Book, error) {
	return book.Book{}, errBroken
}
func (brokenCatalog) UpdatePrice(context.Context, int, float64) (book.Book, bool, error) {
	return book.Book{}, false, errBroken
}
func (brokenCatalog) RemoveBook(context.Context, int) (book.Book, bool, error) {
	return book.Book{}, false, errBroken
}

func TestBookstoreStoreFailure(t *testing.T) {
	Convey("Given a bookstore whose catalog fails", t, func() {
		mux := http.NewServeMux()
		api.NewBookServer(brokenCatalog{}, nil).Register(context.Background(), mux)

		Convey("Then handlers should answer 500 with a detail body", func() {
			for _, c := range []struct{ method, target string }{
				{http.MethodGet, "/books"},
				{http.MethodGet, "/book/1"},
				{http.MethodPut, "/book/1?price=2"},
				{http.MethodDelete, "/book/1"},
			} {
				rec := do(mux, c.method, c.target, "")
				So(rec.Code, ShouldEqual, http.StatusInternalServerError)
				So(decode(rec)["detail"], ShouldEqual, "Internal Server Error")
			}
		})
	})
}

func TestRegisterNilMux(t *testing.T) {
	Convey("Register should panic on a nil mux", t, func() {
		So(func() { api.NewBookServer(brokenCatalog{}, nil).Register(context.Background(), nil) }, ShouldPanic)
	})
}
