package book

import (
	"errors"
	"fmt"
	"strings"
)

// ErrValidation is the kind shared by every schema failure.
var ErrValidation = errors.New("validation failed")

// FieldError describes one rejected input. Loc is the path to the input,
// e.g. ["body", "price"] or ["query", "price"].
type FieldError struct {
	Loc  []any  `json:"loc"`
	Msg  string `json:"msg"`
	Type string `json:"type"`
}

// ValidationError collects every FieldError found for a request. It is
// served as the 422 response body.
type ValidationError struct {
	Detail []FieldError `json:"detail"`
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Detail))
	for _, d := range e.Detail {
		parts = append(parts, fmt.Sprintf("%v: %s", d.Loc, d.Msg))
	}
	return ErrValidation.Error() + ": " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// Location returns the first segment of the first failure (body, query, path).
func (e *ValidationError) Location() string {
	if len(e.Detail) == 0 || len(e.Detail[0].Loc) == 0 {
		return "unknown"
	}
	if s, ok := e.Detail[0].Loc[0].(string); ok {
		return s
	}
	return "unknown"
}

func (e *ValidationError) add(msg, typ string, loc ...any) {
	e.Detail = append(e.Detail, FieldError{Loc: loc, Msg: msg, Type: typ})
}

func (e *ValidationError) orNil() error {
	if len(e.Detail) == 0 {
		return nil
	}
	return e
}

// Error type and message constants.
const (
	typeMissing    = "value_error.missing"
	typeNone       = "type_error.none.not_allowed"
	typeStr        = "type_error.str"
	typeFloat      = "type_error.float"
	typeInteger    = "type_error.integer"
	typeDict       = "type_error.dict"
	typeJSONDecode = "value_error.jsondecode"

	msgMissing = "field required"
	msgNone    = "none is not an allowed value"
	msgStr     = "str type expected"
	msgFloat   = "value is not a valid float"
	msgInteger = "value is not a valid integer"
	msgDict    = "value is not a valid dict"
)
