package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/okian/restdemo/internal/adapters/repository"
	"github.com/okian/restdemo/internal/app"
	"github.com/okian/restdemo/internal/domain/user"
	"github.com/okian/restdemo/pkg/logger"
	"github.com/okian/restdemo/pkg/metrics"
)

// Fixed payload values of the user API.
const (
	userAPIName        = "Python REST API"
	userAPIVersion     = "1.0.0"
	userAPIWelcome     = "Welcome to " + userAPIName
	statusHealthy      = "healthy"
	msgUserNotFound    = "User not found"
	msgMissingRequired = "Missing required fields"
)

// UserDependencies is what the user API handlers need.
type UserDependencies interface {
	Host(ctx context.Context) app.HostInfo
	Now() time.Time
	Environment() app.Environment
	Users(ctx context.Context) ([]user.User, error)
	User(ctx context.Context, id int) (user.User, error)
	CreateUser(ctx context.Context, req user.CreateRequest) (user.Created, error)
}

// UserServer wires HTTP routes for the user/info service.
type UserServer struct {
	deps   UserDependencies
	logger logger.Logger
}

// NewUserServer creates the user API server.
func NewUserServer(deps UserDependencies, log logger.Logger) *UserServer {
	if log == nil {
		log = logger.Nop()
	}
	return &UserServer{deps: deps, logger: log}
}

// Register attaches all user API routes to mux.
func (s *UserServer) Register(_ context.Context, mux *http.ServeMux) {
	if mux == nil {
		panic("mux is nil")
	}
	s.handle(mux, "GET /{$}", "root", s.HandleWelcome)
	s.handle(mux, "GET /health", "health", s.HandleHealth)
	s.handle(mux, "GET /api/users", "users", s.HandleListUsers)
	s.handle(mux, "POST /api/users", "users", s.HandleCreateUser)
	s.handle(mux, "GET /api/users/{id}", "user", s.HandleGetUser)
	s.handle(mux, "GET /api/info", "info", s.HandleInfo)
	mux.Handle("GET /metrics", MetricsHandler())
}

func (s *UserServer) handle(mux *http.ServeMux, pattern, endpoint string, h http.HandlerFunc) {
	mux.HandleFunc(pattern, MetricsMiddleware(h, ServiceUserAPI, endpoint))
}

type welcomeResponse struct {
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
	Hostname  string `json:"hostname"`
	Version   string `json:"version"`
}

type hostHealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Hostname  string `json:"hostname"`
}

type infoResponse struct {
	Application   string `json:"application"`
	Version       string `json:"version"`
	Environment   string `json:"environment"`
	KubernetesPod string `json:"kubernetes_pod"`
	Namespace     string `json:"namespace"`
	Timestamp     string `json:"timestamp"`
}

// HandleWelcome handles GET / requests.
func (s *UserServer) HandleWelcome(w http.ResponseWriter, r *http.Request) {
	h := s.deps.Host(r.Context())
	writeJSON(w, http.StatusOK, welcomeResponse{
		Message:   userAPIWelcome,
		Timestamp: isoTimestamp(h.Timestamp),
		Hostname:  h.Hostname,
		Version:   userAPIVersion,
	})
}

// HandleHealth handles GET /health requests.
func (s *UserServer) HandleHealth(w http.ResponseWriter, r *http.Request) {
	h := s.deps.Host(r.Context())
	writeJSON(w, http.StatusOK, hostHealthResponse{
		Status:    statusHealthy,
		Timestamp: isoTimestamp(h.Timestamp),
		Hostname:  h.Hostname,
	})
}

// HandleListUsers handles GET /api/users requests.
func (s *UserServer) HandleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.deps.Users(r.Context())
	if err != nil {
		internalError(r.Context(), w, s.logger, ServiceUserAPI, "api.list_users", err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

// HandleGetUser handles GET /api/users/{id} requests. Only unsigned decimal
// ids route; anything else is a plain 404.
func (s *UserServer) HandleGetUser(w http.ResponseWriter, r *http.Request) {
	raw := r.PathValue("id")
	if !isDigits(raw) {
		http.NotFound(w, r)
		return
	}
	id, err := strconv.Atoi(raw)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	u, err := s.deps.User(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, msgUserNotFound)
			return
		}
		internalError(r.Context(), w, s.logger, ServiceUserAPI, "api.get_user", err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

// HandleCreateUser handles POST /api/users requests. Only the presence of
// name and email is checked; their values are echoed back as sent. The
// created user is never added to the list.
func (s *UserServer) HandleCreateUser(w http.ResponseWriter, r *http.Request) {
	const op = "api.create_user"
	body, err := readBody(w, r)
	if err != nil {
		s.logger.Debug(r.Context(), "unreadable body", logger.String("op", op), logger.Error(err))
		body = nil
	}

	u, err := s.deps.CreateUser(r.Context(), user.ParseCreateRequest(body))
	if err != nil {
		if errors.Is(err, user.ErrMissingFields) {
			metrics.RecordValidationFailure(ServiceUserAPI, "body")
			writeError(w, http.StatusBadRequest, msgMissingRequired)
			return
		}
		internalError(r.Context(), w, s.logger, ServiceUserAPI, op, err)
		return
	}
	writeJSON(w, http.StatusCreated, u)
}

// HandleInfo handles GET /api/info requests.
func (s *UserServer) HandleInfo(w http.ResponseWriter, r *http.Request) {
	env := s.deps.Environment()
	writeJSON(w, http.StatusOK, infoResponse{
		Application:   userAPIName,
		Version:       userAPIVersion,
		Environment:   env.Name,
		KubernetesPod: env.Pod,
		Namespace:     env.Namespace,
		Timestamp:     isoTimestamp(s.deps.Now()),
	})
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
