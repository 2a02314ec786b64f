package repository

import (
	"context"
	"fmt"
	"slices"

	"github.com/okian/restdemo/internal/domain/user"
)

// StaticDirectory serves the fixed users. It has no write path.
type StaticDirectory struct {
	users []user.User
	byID  map[int]user.User
}

var _ UserDirectory = (*StaticDirectory)(nil)

// NewStaticDirectory builds a directory over user.Seed.
func NewStaticDirectory() *StaticDirectory {
	users := user.Seed()
	byID := make(map[int]user.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}
	return &StaticDirectory{users: users, byID: byID}
}

// List returns a copy of the users.
func (d *StaticDirectory) List(_ context.Context) ([]user.User, error) {
	return slices.Clone(d.users), nil
}

// Get returns the user with id.
func (d *StaticDirectory) Get(_ context.Context, id int) (user.User, error) {
	u, ok := d.byID[id]
	if !ok {
		return user.User{}, fmt.Errorf("user %d: %w", id, ErrNotFound)
	}
	return u, nil
}
