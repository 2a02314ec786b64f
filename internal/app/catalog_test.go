package app_test

import (
	"context"
	"errors"
	"testing"

	"github.com/okian/restdemo/internal/adapters/repository"
	"github.com/okian/restdemo/internal/app"
	"github.com/okian/restdemo/internal/domain/book"
	. "github.com/smartystreets/goconvey/convey"
)

// failingStore reports an error from every call.
type failingStore struct{}

var errStoreDown = errors.New("store down")

func (failingStore) List(context.Context) ([]book.Book, error) { return nil, errStoreDown }
func (failingStore) Get(context.Context, int) (book.Book, error) {
	return book.Book{}, errStoreDown
}
func (failingStore) Add(context.Context, book.Book) (book.Book, error) {
	return book.Book{}, errStoreDown
}
func (failingStore) UpdatePrice(context.Context, int, float64) (book.Book, error) {
	return book.Book{}, errStoreDown
}
func (failingStore) Delete(context.Context, int) (book.Book, error) {
	return book.Book{}, errStoreDown
}
func (failingStore) Count(context.Context) int { return 0 }

func TestCatalog(t *testing.T) {
	Convey("Given a catalog over a fresh store", t, func() {
		ctx := context.Background()
		catalog := app.NewCatalog(repository.NewMemoryStore())
		draft := book.Draft{Name: "Dune", Author: "Frank Herbert", ISBN: "978-0441013593", Price: 9.99}

		Convey("When a book is added under id 4", func() {
			added, err := catalog.AddBook(ctx, 4, draft)
			So(err, ShouldBeNil)

			Convey("Then the list should have four books ending with it", func() {
				books, err := catalog.Books(ctx)
				So(err, ShouldBeNil)
				So(len(books), ShouldEqual, 4)
				So(books[3], ShouldResemble, added)
				So(added.ID, ShouldEqual, 4)
			})

			Convey("And removing it should restore the original list", func() {
				removed, found, err := catalog.RemoveBook(ctx, 4)
				So(err, ShouldBeNil)
				So(found, ShouldBeTrue)
				So(removed, ShouldResemble, added)
				books, _ := catalog.Books(ctx)
				So(books, ShouldResemble, book.Seed())
			})
		})

		Convey("When a book is looked up", func() {
			b, found, err := catalog.Book(ctx, 3)
			So(err, ShouldBeNil)
			So(found, ShouldBeTrue)
			So(b.Name, ShouldEqual, "1984")

			_, found, err = catalog.Book(ctx, 42)
			So(err, ShouldBeNil)
			So(found, ShouldBeFalse)
		})

		Convey("When prices are updated", func() {
			b, found, err := catalog.UpdatePrice(ctx, 1, 9.99)
			So(err, ShouldBeNil)
			So(found, ShouldBeTrue)
			So(b.Price, ShouldEqual, 9.99)
			So(b.Name, ShouldEqual, "The Great Gatsby")

			_, found, err = catalog.UpdatePrice(ctx, 999, 1)
			So(err, ShouldBeNil)
			So(found, ShouldBeFalse)
		})

		Convey("When a missing book is removed", func() {
			_, found, err := catalog.RemoveBook(ctx, 999)
			So(err, ShouldBeNil)
			So(found, ShouldBeFalse)
		})
	})

	Convey("Given a catalog over a failing store", t, func() {
		ctx := context.Background()
		catalog := app.NewCatalog(failingStore{})

		Convey("Then store errors should surface", func() {
			_, err := catalog.Books(ctx)
			So(errors.Is(err, errStoreDown), ShouldBeTrue)
			_, _, err = catalog.Book(ctx, 1)
			So(errors.Is(err, errStoreDown), ShouldBeTrue)
			_, err = catalog.AddBook(ctx, 1, book.Draft{})
			So(errors.Is(err, errStoreDown), ShouldBeTrue)
			_, _, err = catalog.UpdatePrice(ctx, 1, 1)
			So(errors.Is(err, errStoreDown), ShouldBeTrue)
			_, _, err = catalog.RemoveBook(ctx, 1)
			So(errors.Is(err, errStoreDown), ShouldBeTrue)
		})
	})
}
