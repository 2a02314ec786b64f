package repository

import (
	"context"
	"errors"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestStaticDirectory(t *testing.T) {
	Convey("Given the static directory", t, func() {
		ctx := context.Background()
		dir := NewStaticDirectory()

		Convey("Then List should return the three users in order", func() {
			users, err := dir.List(ctx)
			So(err, ShouldBeNil)
			So(len(users), ShouldEqual, 3)
			So(users[0].ID, ShouldEqual, 1)
			So(users[2].ID, ShouldEqual, 3)
		})

		Convey("And Get should find a known id", func() {
			u, err := dir.Get(ctx, 2)
			So(err, ShouldBeNil)
			So(u.Name, ShouldEqual, "Jane Smith")
		})

		Convey("And Get should miss an unknown id", func() {
			_, err := dir.Get(ctx, 99)
			So(errors.Is(err, ErrNotFound), ShouldBeTrue)
		})

		Convey("And mutating a listed user should not leak", func() {
			users, _ := dir.List(ctx)
			users[1].Name = "changed"
			u, _ := dir.Get(ctx, 2)
			So(u.Name, ShouldEqual, "Jane Smith")
		})
	})
}
