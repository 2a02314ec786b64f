package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/okian/restdemo/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Seen-Request-ID", RequestIDFrom(r.Context()))
		w.WriteHeader(http.StatusNoContent)
	})
}

func TestRequestID(t *testing.T) {
	Convey("Given the RequestID middleware", t, func() {
		h := RequestID()(okHandler())

		Convey("When no header is sent a UUID should be assigned", func() {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
			id := rec.Header().Get(RequestIDHeader)
			_, err := uuid.Parse(id)
			So(err, ShouldBeNil)
			So(rec.Header().Get("X-Seen-Request-ID"), ShouldEqual, id)
		})

		Convey("When a usable header is sent it should be propagated", func() {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header.Set(RequestIDHeader, "abc-123")
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			So(rec.Header().Get(RequestIDHeader), ShouldEqual, "abc-123")
			So(rec.Header().Get("X-Seen-Request-ID"), ShouldEqual, "abc-123")
		})

		Convey("When the header is too long it should be replaced", func() {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header.Set(RequestIDHeader, strings.Repeat("x", maxRequestIDLen+1))
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			_, err := uuid.Parse(rec.Header().Get(RequestIDHeader))
			So(err, ShouldBeNil)
		})

		Convey("RequestIDFrom should be empty outside the middleware", func() {
			So(RequestIDFrom(context.Background()), ShouldBeEmpty)
		})
	})
}

func TestChain(t *testing.T) {
	Convey("Chain should apply the first middleware outermost", t, func() {
		var order []string
		mark := func(name string) Middleware {
			return func(next http.Handler) http.Handler {
				return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					order = append(order, name)
					next.ServeHTTP(w, r)
				})
			}
		}
		h := Chain(okHandler(), mark("a"), mark("b"), mark("c"))
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
		So(order, ShouldResemble, []string{"a", "b", "c"})
	})
}

func TestRateLimit(t *testing.T) {
	Convey("Given a limiter with a burst of two", t, func() {
		l := NewRateLimiter(1, 2)
		frozen := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
		l.now = func() time.Time { return frozen }
		var buf strings.Builder
		So(logger.InitWithOptions(logger.Options{Writer: &buf}), ShouldBeNil)
		So(logger.SetLevelString("debug"), ShouldBeNil)
		defer func() { _ = logger.SetLevelString("info") }()
		h := Chain(okHandler(), RequestID(), RateLimit(l, ServiceBookstore, logger.Get()))

		send := func(addr string) *httptest.ResponseRecorder {
			req := httptest.NewRequest(http.MethodGet, "/books", nil)
			req.RemoteAddr = addr
			req.Header.Set(RequestIDHeader, "rid-"+addr)
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			return rec
		}

		Convey("Then the third request from one client should get 429", func() {
			So(send("10.0.0.1:1111").Code, ShouldEqual, http.StatusNoContent)
			So(send("10.0.0.1:2222").Code, ShouldEqual, http.StatusNoContent)
			rec := send("10.0.0.1:3333")
			So(rec.Code, ShouldEqual, http.StatusTooManyRequests)
			So(rec.Header().Get("Retry-After"), ShouldEqual, "1")
			So(rec.Body.String(), ShouldContainSubstring, `"error":"Too Many Requests"`)

			Convey("And the rejection should be logged", func() {
				out := buf.String()
				So(out, ShouldContainSubstring, `msg="request rejected"`)
				So(out, ShouldContainSubstring, "client=10.0.0.1")
				So(out, ShouldContainSubstring, "request_id=rid-10.0.0.1:3333")
				So(out, ShouldContainSubstring, `error="api.rate_limit: rate limited"`)
			})

			Convey("And other clients should be unaffected", func() {
				So(send("10.0.0.2:1111").Code, ShouldEqual, http.StatusNoContent)
			})
		})

		Convey("Then tokens should refill over time", func() {
			send("10.0.0.3:1")
			send("10.0.0.3:1")
			So(send("10.0.0.3:1").Code, ShouldEqual, http.StatusTooManyRequests)
			frozen = frozen.Add(time.Second)
			So(send("10.0.0.3:1").Code, ShouldEqual, http.StatusNoContent)
		})

		Convey("Then idle clients should be swept once the table is full", func() {
			for i := 0; i < limiterSweepAtSize; i++ {
				l.clients["client-"+strconv.Itoa(i)] = &clientLimiter{lastSeen: frozen}
			}
			frozen = frozen.Add(limiterIdleTTL + time.Minute)
			So(l.Allow("fresh"), ShouldBeTrue)
			So(len(l.clients), ShouldEqual, 1)
		})
	})

	Convey("A nil limiter should disable the check", t, func() {
		h := RateLimit(nil, ServiceUserAPI, nil)(okHandler())
		for i := 0; i < 5; i++ {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
			So(rec.Code, ShouldEqual, http.StatusNoContent)
		}
	})
}

func TestClientKey(t *testing.T) {
	Convey("clientKey should use the remote host", t, func() {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "192.168.1.9:5555"
		So(clientKey(req), ShouldEqual, "192.168.1.9")
		req.RemoteAddr = "pipe"
		So(clientKey(req), ShouldEqual, "pipe")
		req.RemoteAddr = ""
		So(clientKey(req), ShouldEqual, "unknown")
	})
}

func TestAccessLog(t *testing.T) {
	Convey("AccessLog should write a debug line per request", t, func() {
		var buf strings.Builder
		So(logger.InitWithOptions(logger.Options{Writer: &buf}), ShouldBeNil)
		So(logger.SetLevelString("debug"), ShouldBeNil)
		defer func() { _ = logger.SetLevelString("info") }()

		h := Chain(okHandler(), RequestID(), AccessLog(logger.Get()))
		req := httptest.NewRequest(http.MethodGet, "/books", nil)
		req.Header.Set(RequestIDHeader, "rid-1")
		h.ServeHTTP(httptest.NewRecorder(), req)

		out := buf.String()
		So(out, ShouldContainSubstring, "msg=request")
		So(out, ShouldContainSubstring, "path=/books")
		So(out, ShouldContainSubstring, "status=204")
		So(out, ShouldContainSubstring, "request_id=rid-1")
	})
}

func TestMetricsMiddleware(t *testing.T) {
	Convey("MetricsMiddleware should pass the response through", t, func() {
		h := MetricsMiddleware(func(w http.ResponseWriter, _ *http.Request) {
			writeError(w, http.StatusNotFound, "User not found")
		}, ServiceUserAPI, "user")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/users/9", nil))
		So(rec.Code, ShouldEqual, http.StatusNotFound)
		So(rec.Body.String(), ShouldContainSubstring, "User not found")
	})

	Convey("getErrorType should classify statuses", t, func() {
		cases := []struct {
			code int
			want string
		}{
			{http.StatusInternalServerError, "server_error"},
			{http.StatusTooManyRequests, "rate_limit"},
			{http.StatusUnprocessableEntity, "validation"},
			{http.StatusNotFound, "not_found"},
			{http.StatusMethodNotAllowed, "client_error"},
			{http.StatusOK, "unknown"},
		}
		for _, c := range cases {
			So(getErrorType(c.code), ShouldEqual, c.want)
		}
	})
}

func TestHelpers(t *testing.T) {
	Convey("isoTimestamp should mimic isoformat", t, func() {
		whole := time.Date(2024, 5, 6, 7, 8, 9, 0, time.Local)
		So(isoTimestamp(whole), ShouldEqual, "2024-05-06T07:08:09")
		frac := time.Date(2024, 5, 6, 7, 8, 9, 120000000, time.Local)
		So(isoTimestamp(frac), ShouldEqual, "2024-05-06T07:08:09.120000")
		nanosOnly := time.Date(2024, 5, 6, 7, 8, 9, 500, time.Local)
		So(isoTimestamp(nanosOnly), ShouldEqual, "2024-05-06T07:08:09")
	})

	Convey("isDigits should accept only unsigned decimals", t, func() {
		So(isDigits("123"), ShouldBeTrue)
		So(isDigits(""), ShouldBeFalse)
		So(isDigits("-1"), ShouldBeFalse)
		So(isDigits("1a"), ShouldBeFalse)
	})

	Convey("KindError should match both kind and cause", t, func() {
		cause := errors.New("eof")
		err := WrapKind("api.read_body", ErrBadRequest, cause)
		So(errors.Is(err, ErrBadRequest), ShouldBeTrue)
		So(errors.Is(err, cause), ShouldBeTrue)
		So(err.Error(), ShouldEqual, "api.read_body: bad request: eof")
		So(NewKind("api.limit", ErrRateLimited).Error(), ShouldEqual, "api.limit: rate limited")
	})
}
