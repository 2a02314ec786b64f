// Package user contains the user model, the fixed directory contents and
// validation of create requests.
package user

import (
	"encoding/json"
	"errors"
)

// CreatedID is the id handed to every accepted create request. Created
// users are never stored, so the id is constant.
const CreatedID = 4

// ErrMissingFields is returned when a create request lacks name or email.
var ErrMissingFields = errors.New("Missing required fields") //nolint:staticcheck // surfaced verbatim in the API

// User is a directory entry.
type User struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Seed returns the fixed directory contents in insertion order.
func Seed() []User {
	return []User{
		{ID: 1, Name: "John Doe", Email: "john@example.com"},
		{ID: 2, Name: "Jane Smith", Email: "jane@example.com"},
		{ID: 3, Name: "Bob Johnson", Email: "bob@example.com"},
	}
}

// Created is the echo of an accepted create request. Name and Email hold
// the submitted JSON values untouched, whatever their type.
type Created struct {
	ID    int             `json:"id"`
	Name  json.RawMessage `json:"name"`
	Email json.RawMessage `json:"email"`
}

// CreateRequest is the body of POST /api/users. A nil field means the key
// was absent; an explicit JSON null is kept as the literal "null".
type CreateRequest struct {
	Name  json.RawMessage
	Email json.RawMessage
}

// ParseCreateRequest decodes a create body. An empty, malformed or
// non-object body yields a request with no fields set.
func ParseCreateRequest(body []byte) CreateRequest {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return CreateRequest{}
	}
	return CreateRequest{Name: present(fields, "name"), Email: present(fields, "email")}
}

func present(fields map[string]json.RawMessage, key string) json.RawMessage {
	raw, ok := fields[key]
	if !ok {
		return nil
	}
	if raw == nil {
		return json.RawMessage("null")
	}
	return raw
}

// Validate returns the user to echo back, or ErrMissingFields. Only the
// presence of both keys is checked.
func (r CreateRequest) Validate() (Created, error) {
	if r.Name == nil || r.Email == nil {
		return Created{}, ErrMissingFields
	}
	return Created{ID: CreatedID, Name: r.Name, Email: r.Email}, nil
}
