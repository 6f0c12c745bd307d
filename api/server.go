package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	"rvg-calc/core/catalog"
	"rvg-calc/core/engine"
	"rvg-calc/core/types"
	"rvg-calc/internal/config"
	apperrors "rvg-calc/internal/errors"
)

// Server is the API server
type Server struct {
	router  chi.Router
	version string
	catalog *catalog.Catalog
	logger  *zap.Logger

	allowedOrigins []string

	// defaults fill the calculation flags a request leaves unset
	defaults config.CalculationConfig

	// results maps input hashes to finished results; nil disables caching
	results *cache.Cache

	// now is replaceable in tests
	now func() time.Time
}

// ServerOption configures a Server
type ServerOption func(*Server)

// WithAllowedOrigins enables CORS for the given origins
func WithAllowedOrigins(origins ...string) ServerOption {
	return func(s *Server) {
		s.allowedOrigins = origins
	}
}

// WithResultCache keeps calculation results per input hash for ttl
func WithResultCache(ttl time.Duration) ServerOption {
	return func(s *Server) {
		if ttl > 0 {
			s.results = cache.New(ttl, 2*ttl)
		}
	}
}

// WithCalculationDefaults applies the configured calculation flags to every
// request: reduced fees are switched on, disabled auto-appends are skipped
func WithCalculationDefaults(defaults config.CalculationConfig) ServerOption {
	return func(s *Server) {
		s.defaults = defaults
	}
}

// NewServer creates a new API server
func NewServer(version string, logger *zap.Logger, opts ...ServerOption) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Server{
		router:   chi.NewRouter(),
		version:  version,
		catalog:  catalog.Default(),
		logger:   logger,
		defaults: config.Default().Calculation,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.registerRoutes()
	return s
}

// registerRoutes registers all API routes
func (s *Server) registerRoutes() {
	s.router.Use(requestIDMiddleware)
	s.router.Use(s.recoverMiddleware)
	s.router.Use(s.loggingMiddleware)
	if len(s.allowedOrigins) > 0 {
		s.router.Use(cors.Handler(cors.Options{
			AllowedOrigins: s.allowedOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders: []string{"Accept", "Content-Type", RequestIDHeader},
			ExposedHeaders: []string{RequestIDHeader, CacheHeader},
			MaxAge:         300,
		}))
	}

	// Core endpoints
	s.router.Post("/calculate", s.handleCalculate)
	s.router.Post("/fee", s.handleFee)

	// Reference data
	s.router.Get("/positions", s.handleSearchPositions)
	s.router.Get("/positions/{code}", s.handleGetPosition)
	s.router.Get("/schedules", s.handleSchedules)

	// Supporting endpoints
	s.router.Get("/health", s.handleHealth)
	s.router.Get("/version", s.handleVersion)

	s.router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		s.writeError(w, apperrors.NotFound("route", r.URL.Path))
	})
	s.router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, ErrorResponse{Error: ErrorBody{Code: "METHOD_NOT_ALLOWED", Message: r.Method + " not allowed on " + r.URL.Path}}, http.StatusMethodNotAllowed)
	})
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func writeJSON(w http.ResponseWriter, data interface{}, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError maps domain errors onto HTTP status codes
func (s *Server) writeError(w http.ResponseWriter, err error) {
	t := apperrors.TypeOf(err)
	status := statusFor(t)
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", zap.Error(err))
	}

	message := err.Error()
	var domainErr *apperrors.Error
	if errors.As(err, &domainErr) {
		message = domainErr.Message
	}
	writeJSON(w, ErrorResponse{Error: ErrorBody{Code: string(t), Message: message}}, status)
}

func statusFor(t apperrors.Type) int {
	switch t {
	case apperrors.TypeUnknownPosition:
		return http.StatusUnprocessableEntity
	case apperrors.TypeInput, apperrors.TypeParsing:
		return http.StatusBadRequest
	case apperrors.TypeNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// calculate runs a normalized request through the engine.
// hit reports whether the result came from the cache.
func (s *Server) calculate(req *CalculateRequest) (normalized engine.Request, resp *CalculateResponse, hit bool, err error) {
	normalized, err = req.Normalize(s.now())
	if err != nil {
		return engine.Request{}, nil, false, err
	}
	normalized.ReducedFees = normalized.ReducedFees || s.defaults.ReducedFees
	normalized.SkipExpenseAutoAppend = normalized.SkipExpenseAutoAppend || !s.defaults.AutoExpense
	normalized.SkipVATAutoAppend = normalized.SkipVATAutoAppend || !s.defaults.AutoVAT
	hash := InputHash(normalized)

	if s.results != nil {
		if cached, ok := s.results.Get(hash); ok {
			return normalized, &CalculateResponse{InputHash: hash, Result: cached.(*types.CalculationResult)}, true, nil
		}
	}

	result, err := engine.Calculate(normalized, engine.WithCatalog(s.catalog), engine.WithLogger(s.logger.Named("engine")))
	if err != nil {
		return normalized, nil, false, err
	}
	if s.results != nil {
		s.results.Set(hash, result, cache.DefaultExpiration)
	}
	return normalized, &CalculateResponse{InputHash: hash, Result: result}, false, nil
}
