package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jonathan/resume-screener/internal/config"
	"github.com/jonathan/resume-screener/internal/fetch"
	"github.com/jonathan/resume-screener/internal/logging"
	"github.com/jonathan/resume-screener/internal/metrics"
	"github.com/jonathan/resume-screener/internal/ranking"
	"github.com/jonathan/resume-screener/internal/server/middleware"
	"github.com/jonathan/resume-screener/internal/server/ratelimit"
	"github.com/jonathan/resume-screener/internal/storage"
	"github.com/jonathan/resume-screener/internal/types"
)

// maxJSONBody caps JSON request bodies.
const maxJSONBody = 1 << 20

// defaultMaxUpload applies when Deps.MaxUploadBytes is zero.
const defaultMaxUpload = 16 << 20

var validate = validator.New()

// Deps are the collaborators of a Server.
type Deps struct {
	DB        DBClient
	Store     storage.Store
	Logger    *zap.Logger
	JWT       *config.JWTConfig
	Passwords *config.PasswordConfig
	RateLimit *ratelimit.Config // nil disables rate limiting
	Ranker    *ranking.Ranker
	// FetchOptions configures job-posting imports.
	FetchOptions   *fetch.Options
	MaxUploadBytes int64
}

// Server represents the HTTP server
type Server struct {
	httpServer  *http.Server
	handler     http.Handler
	db          DBClient
	store       storage.Store
	logger      *zap.Logger
	ranker      *ranking.Ranker
	rateLimiter *ratelimit.Limiter
	jwtService  *JWTService
	userService *UserService
	authHandler *AuthHandler
	fetchOpts   *fetch.Options
	maxUpload   int64
}

// New creates a server listening on addr.
func New(addr string, deps Deps) (*Server, error) {
	if deps.DB == nil {
		return nil, fmt.Errorf("server requires a database")
	}
	if deps.Store == nil {
		return nil, fmt.Errorf("server requires a file store")
	}
	if deps.JWT == nil || deps.Passwords == nil {
		return nil, fmt.Errorf("server requires JWT and password configuration")
	}

	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	ranker := deps.Ranker
	if ranker == nil {
		ranker = ranking.NewRanker(logger, 0)
	}
	maxUpload := deps.MaxUploadBytes
	if maxUpload <= 0 {
		maxUpload = defaultMaxUpload
	}

	s := &Server{
		db:        deps.DB,
		store:     deps.Store,
		logger:    logger,
		ranker:    ranker,
		fetchOpts: deps.FetchOptions,
		maxUpload: maxUpload,
	}

	if deps.RateLimit != nil {
		s.rateLimiter = ratelimit.NewLimiter(deps.RateLimit)
	}

	s.userService = NewUserService(deps.DB, deps.Passwords, logger)
	s.jwtService = NewJWTService(deps.JWT)
	s.authHandler = NewAuthHandler(s.userService, s.jwtService, logger)

	mux := http.NewServeMux()
	s.routes(mux)

	var handler http.Handler = s.withCORS(mux)
	handler = metrics.Middleware(handler)
	handler = logging.Middleware(logger)(handler)
	if s.rateLimiter != nil {
		handler = s.withRateLimit(handler)
	}
	s.handler = handler

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second, // bulk screening of large archives
		IdleTimeout:  60 * time.Second,
	}

	return s, nil
}

func (s *Server) routes(mux *http.ServeMux) {
	auth := middleware.AuthMiddleware(s.jwtService.AsTokenValidator())
	authed := func(h http.HandlerFunc, roles ...types.Role) http.Handler {
		var next http.Handler = h
		if len(roles) > 0 {
			next = middleware.RequireRole(roles...)(next)
		}
		return auth(next)
	}

	mux.HandleFunc("GET /health", s.handleHealth)
	mux.Handle("GET /metrics", metrics.Handler())

	// Authentication
	mux.HandleFunc("POST /auth/register", s.authHandler.Register)
	mux.HandleFunc("POST /auth/login", s.authHandler.Login)
	mux.Handle("PUT /auth/password", authed(s.authHandler.UpdatePassword))

	// Stateless scoring
	mux.HandleFunc("POST /match", s.handleMatch)
	mux.HandleFunc("POST /quality", s.handleQuality)
	mux.HandleFunc("POST /screen", s.handleScreen)

	// Job seekers
	mux.Handle("POST /resumes", authed(s.handleUploadResume, types.RoleUser))
	mux.Handle("GET /resumes", authed(s.handleListResumes, types.RoleUser))
	mux.Handle("POST /resumes/check", authed(s.handleCheckSatisfaction, types.RoleUser))
	mux.Handle("GET /resumes/{id}", authed(s.handleGetResume))
	mux.Handle("GET /resumes/{id}/quality", authed(s.handleResumeQuality, types.RoleUser))
	mux.Handle("GET /resumes/{id}/file", authed(s.handleResumeFile))
	mux.Handle("POST /jobs/{id}/eligibility", authed(s.handleEligibility, types.RoleUser))
	mux.Handle("POST /jobs/{id}/apply", authed(s.handleApply, types.RoleUser))
	mux.Handle("GET /applications", authed(s.handleListMyApplications, types.RoleUser))

	// Jobs
	mux.Handle("GET /jobs", authed(s.handleListJobs))
	mux.Handle("GET /jobs/{id}", authed(s.handleGetJob))
	mux.Handle("POST /jobs", authed(s.handleCreateJob, types.RoleHR))
	mux.Handle("POST /jobs/import", authed(s.handleImportJob, types.RoleHR))
	mux.Handle("POST /jobs/{id}/toggle", authed(s.handleToggleJob, types.RoleHR))

	// HR review
	mux.Handle("GET /jobs/{id}/applications", authed(s.handleListJobApplications, types.RoleHR))
	mux.Handle("PUT /applications/{id}", authed(s.handleUpdateApplication, types.RoleHR))
	mux.Handle("POST /applications/bulk", authed(s.handleBulkUpdateApplications, types.RoleHR))
	mux.Handle("POST /jobs/{id}/screen", authed(s.handleScreenUpload, types.RoleHR))
	mux.Handle("GET /jobs/{id}/candidates", authed(s.handleListCandidates, types.RoleHR))
	mux.Handle("PUT /candidates/{id}/decision", authed(s.handleCandidateDecision, types.RoleHR))

	// Administration
	mux.Handle("GET /admin/stats", authed(s.handleAdminStats, types.RoleAdmin))
	mux.Handle("GET /admin/activity", authed(s.handleAdminActivity, types.RoleAdmin))
	mux.Handle("DELETE /admin/users/{id}", authed(s.handleAdminDeleteUser, types.RoleAdmin))
	mux.Handle("DELETE /admin/jobs/{id}", authed(s.handleAdminDeleteJob, types.RoleAdmin))
}

// Handler returns the fully wrapped HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Addr returns the configured listen address.
func (s *Server) Addr() string {
	return s.httpServer.Addr
}

// EnsureAdmin creates the bootstrap admin account if none exists.
func (s *Server) EnsureAdmin(ctx context.Context, email, password string) error {
	created, err := s.userService.EnsureAdmin(ctx, email, password)
	if err != nil {
		return err
	}
	if created {
		s.logger.Info("created admin account", zap.String("email", email))
	}
	return nil
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", zap.String("addr", s.httpServer.Addr))
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		s.Close()
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	err := s.httpServer.Shutdown(shutdownCtx)
	s.Close()
	if err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	s.logger.Info("server stopped")
	return nil
}

// Close stops background work owned by the server.
func (s *Server) Close() {
	if s.rateLimiter != nil {
		s.rateLimiter.Stop()
	}
}

// withCORS adds CORS headers
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// withRateLimit rejects clients that exceed their token bucket.
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowed, info := s.rateLimiter.Allow(extractClientID(r), r.URL.Path, r.Method)
		setRateLimitHeaders(w, info)
		if !allowed {
			s.rateLimitResponse(w, r, info)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.db.Ping(r.Context()); err != nil {
		s.logger.Warn("health check failed", zap.Error(err))
		jsonResponse(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// jsonResponse writes a JSON response
func jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// errorResponse writes an error JSON response
func errorResponse(w http.ResponseWriter, status int, message string) {
	jsonResponse(w, status, map[string]string{"error": message})
}

// writeServiceError maps err to a status code. Internal errors are logged and
// hidden from the client.
func writeServiceError(w http.ResponseWriter, logger *zap.Logger, err error) {
	status := HTTPStatus(err)
	if status == http.StatusInternalServerError {
		logger.Error("request failed", zap.Error(err))
		errorResponse(w, status, "internal server error")
		return
	}
	errorResponse(w, status, err.Error())
}

func (s *Server) fail(w http.ResponseWriter, err error) {
	writeServiceError(w, s.logger, err)
}

// decodeRequest decodes a JSON body into dst and validates it. It writes a
// 400 response and returns false on failure.
func decodeRequest(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody))
	if err := dec.Decode(dst); err != nil {
		errorResponse(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	if err := validate.Struct(dst); err != nil {
		errorResponse(w, http.StatusBadRequest, extractValidationErrors(err))
		return false
	}
	return true
}

// pathID parses the {id} path segment.
func pathID(r *http.Request) (uuid.UUID, error) {
	return parseID("id", r.PathValue("id"))
}

func parseID(field, raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, &ErrValidation{Field: field, Message: "must be a UUID"}
	}
	return id, nil
}

// caller returns the authenticated user ID and role.
func caller(r *http.Request) (uuid.UUID, types.Role) {
	userID, _ := middleware.GetUserID(r)
	role, _ := middleware.GetRole(r)
	return userID, role
}

// extractClientID returns the client IP from RemoteAddr.
// X-Forwarded-For is ignored because proxies are not trusted.
func extractClientID(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// setRateLimitHeaders sets standard rate limit headers on the response.
func setRateLimitHeaders(w http.ResponseWriter, info ratelimit.Info) {
	if info.Limit > 0 {
		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(info.Limit))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(info.Remaining))
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(info.ResetTime.Unix(), 10))
	}
}

// rateLimitResponse writes a 429 Too Many Requests response with rate limit information.
func (s *Server) rateLimitResponse(w http.ResponseWriter, r *http.Request, info ratelimit.Info) {
	response := map[string]any{
		"error":     "rate_limit_exceeded",
		"message":   "Rate limit exceeded. Please try again later.",
		"limit":     info.Limit,
		"remaining": info.Remaining,
	}
	if !info.ResetTime.IsZero() {
		response["reset_at"] = info.ResetTime.Format(time.RFC3339)
	}

	if info.RetryAfter > 0 {
		seconds := int(info.RetryAfter.Seconds() + 0.999)
		response["retry_after"] = seconds
		w.Header().Set("Retry-After", strconv.Itoa(seconds))
	}

	s.logger.Warn("rate limit exceeded",
		zap.String("client", extractClientID(r)),
		zap.String("path", r.URL.Path),
		zap.Int("limit", info.Limit),
	)

	jsonResponse(w, http.StatusTooManyRequests, response)
}
