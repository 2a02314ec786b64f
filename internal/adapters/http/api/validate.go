package api

import (
	"errors"
	"net/http"

	"github.com/okian/restdemo/internal/domain/book"
	"github.com/okian/restdemo/pkg/metrics"
)

// The bookstore validates path, query and body inputs before a handler
// runs. Failures from every location are merged into one 422 response,
// path first, then query, then body.

type bookHandler func(w http.ResponseWriter, r *http.Request, id int)

type draftHandler func(w http.ResponseWriter, r *http.Request, id int, draft book.Draft)

type priceHandler func(w http.ResponseWriter, r *http.Request, id int, price float64)

// withBookID validates the {id} path value.
func withBookID(next bookHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := book.ParseID(r.PathValue("id"))
		if rejectInvalid(w, err) {
			return
		}
		next(w, r, id)
	}
}

// withDraft validates the {id} path value and the book body.
func withDraft(next draftHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, idErr := book.ParseID(r.PathValue("id"))
		body, err := readBody(w, r)
		if err != nil {
			if errors.Is(err, ErrBodyTooLarge) {
				writeDetail(w, http.StatusRequestEntityTooLarge)
				return
			}
			writeDetail(w, http.StatusBadRequest)
			return
		}
		draft, bodyErr := book.DecodeDraft(body)
		if rejectInvalid(w, idErr, bodyErr) {
			return
		}
		next(w, r, id, draft)
	}
}

// withPrice validates the {id} path value and the price query parameter.
func withPrice(next priceHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, idErr := book.ParseID(r.PathValue("id"))
		q := r.URL.Query()
		price, priceErr := book.ParsePrice(q.Get(book.ParamPrice), q.Has(book.ParamPrice))
		if rejectInvalid(w, idErr, priceErr) {
			return
		}
		next(w, r, id, price)
	}
}

// rejectInvalid writes a 422 and returns true when any error is a
// validation failure.
func rejectInvalid(w http.ResponseWriter, errs ...error) bool {
	merged := &book.ValidationError{}
	for _, err := range errs {
		var verr *book.ValidationError
		if errors.As(err, &verr) {
			merged.Detail = append(merged.Detail, verr.Detail...)
		}
	}
	if len(merged.Detail) == 0 {
		return false
	}
	metrics.RecordValidationFailure(ServiceBookstore, merged.Location())
	writeJSON(w, http.StatusUnprocessableEntity, merged)
	return true
}
