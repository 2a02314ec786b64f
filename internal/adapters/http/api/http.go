// Package api declares HTTP contracts and route registration for the user
// and bookstore services.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/okian/restdemo/pkg/logger"
)

// Service names used as metric labels and logger names.
const (
	ServiceUserAPI   = "userapi"
	ServiceBookstore = "bookstore"
)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 1 << 20

// isoLayout renders local time like Python's datetime.isoformat(): no zone,
// microseconds only when non-zero.
const (
	isoLayout       = "2006-01-02T15:04:05"
	isoLayoutMicros = "2006-01-02T15:04:05.000000"
)

// isoTimestamp formats t for the timestamp fields of the user API.
func isoTimestamp(t time.Time) string {
	t = t.Local()
	if t.Nanosecond()/int(time.Microsecond) == 0 {
		return t.Format(isoLayout)
	}
	return t.Format(isoLayoutMicros)
}

type errorResponse struct {
	Error string `json:"error"`
}

type detailResponse struct {
	Detail string `json:"detail"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError writes the user API error shape: {"error": msg}.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// writeDetail writes the bookstore error shape: {"detail": msg}.
func writeDetail(w http.ResponseWriter, status int) {
	writeJSON(w, status, detailResponse{Detail: http.StatusText(status)})
}

// readBody reads at most maxBodyBytes of r's body.
func readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	if r.Body == nil {
		return nil, nil
	}
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, WrapKind("api.read_body", ErrBodyTooLarge, err)
		}
		return nil, WrapKind("api.read_body", ErrBadRequest, err)
	}
	return body, nil
}

// internalError logs err and answers 500 in the service's error shape.
func internalError(ctx context.Context, w http.ResponseWriter, log logger.Logger, service, op string, err error) {
	log.Error(ctx, "request failed", logger.String("op", op), logger.Error(err))
	if service == ServiceBookstore {
		writeDetail(w, http.StatusInternalServerError)
		return
	}
	writeError(w, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
}
