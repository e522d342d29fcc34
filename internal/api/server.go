// Package api exposes the inventory dashboard and command interpreter over HTTP.
package api

import (
	"net/http"
	"time"

	apperrors "inventory-assistant/internal/common/errors"
	apihttp "inventory-assistant/internal/common/http"
	"inventory-assistant/internal/common/logger"
	"inventory-assistant/internal/common/validation"
	"inventory-assistant/internal/history"
	"inventory-assistant/internal/interpreter"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Deps are the collaborators the HTTP layer needs.
type Deps struct {
	Interpreter *interpreter.Interpreter
	Executor    *interpreter.Executor
	Validator   *validation.Validator
	History     history.Store
	Logger      logger.Logger

	// DefaultUnit and DefaultLowThreshold fill omitted product fields.
	DefaultUnit         string
	DefaultLowThreshold float64

	// Checkers are run by the readiness endpoint.
	Checkers []Checker

	// RequestTimeout bounds each request; zero disables it.
	RequestTimeout time.Duration
}

// Server routes REST requests to the interpreter and executor.
type Server struct {
	interp              *interpreter.Interpreter
	executor            *interpreter.Executor
	validator           *validation.Validator
	history             history.Store
	logger              logger.Logger
	errHandler          *apperrors.Handler
	defaultUnit         string
	defaultLowThreshold float64
	checkers            []Checker
	timeout             time.Duration
}

func NewServer(deps Deps) *Server {
	hist := deps.History
	if hist == nil {
		hist = history.NoopStore{}
	}
	unit := deps.DefaultUnit
	if unit == "" {
		unit = "unit"
	}
	log := deps.Logger.Named("api")
	return &Server{
		interp:              deps.Interpreter,
		executor:            deps.Executor,
		validator:           deps.Validator,
		history:             hist,
		logger:              log,
		errHandler:          apperrors.NewHandler(log),
		defaultUnit:         unit,
		defaultLowThreshold: deps.DefaultLowThreshold,
		checkers:            deps.Checkers,
		timeout:             deps.RequestTimeout,
	}
}

// Handler returns the routed handler wrapped in the standard middleware.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/health", s.handleHealth)
	mux.HandleFunc("GET /api/ready", s.handleReady)

	mux.HandleFunc("GET /api/products", s.handleListProducts)
	mux.HandleFunc("POST /api/products", s.handleCreateProduct)
	mux.HandleFunc("GET /api/products/low-stock", s.handleLowStock)

	mux.HandleFunc("POST /api/sales", s.handleCreateSale)
	mux.HandleFunc("GET /api/sales/today", s.handleTodaySales)

	mux.HandleFunc("POST /api/commands/execute", s.handleExecute)
	mux.HandleFunc("GET /api/commands/recent", s.handleRecent)

	mux.Handle("GET /metrics", promhttp.Handler())

	// RequestLogger must see the same *Request the mux annotates with its pattern.
	return apihttp.Chain(mux,
		apihttp.CORS,
		apihttp.Timeout(s.timeout),
		apihttp.RequestLogger(s.logger),
	)
}

// writeServerError logs err and writes the generic 500 body.
func (s *Server) writeServerError(w http.ResponseWriter, operation string, err error) {
	s.errHandler.Handle(operation, err)
	apihttp.WriteMessage(w, http.StatusInternalServerError, "Server error")
}
