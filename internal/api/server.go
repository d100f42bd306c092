// Package api exposes the processing pipeline over HTTP. The surface
// is deliberately small: submit a statement, inspect the category
// configuration, health check.
package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"bank-statement-ledger/internal/models"
	"bank-statement-ledger/internal/parser"
	"bank-statement-ledger/internal/pipeline"
	apperrors "bank-statement-ledger/pkg/errors"
	"bank-statement-ledger/pkg/logger"

	"github.com/gorilla/mux"
)

// maxStatementBytes caps request bodies; statements are text, not bulk
// uploads.
const maxStatementBytes = 10 << 20

// Server serves the processing API.
type Server struct {
	service *pipeline.Service
	router  *mux.Router
	logger  logger.Logger
}

// NewServer creates the API server around a pipeline service.
func NewServer(service *pipeline.Service) *Server {
	s := &Server{
		service: service,
		router:  mux.NewRouter(),
		logger:  logger.GetGlobalLogger().WithComponent("api"),
	}
	s.routes()
	return s
}

// Router returns the configured router.
func (s *Server) Router() *mux.Router {
	return s.router
}

func (s *Server) routes() {
	s.router.Use(s.logRequests)

	v1 := s.router.PathPrefix("/v1").Subrouter()
	v1.HandleFunc("/statements", s.handleProcessStatement).Methods(http.MethodPost)
	v1.HandleFunc("/categories", s.handleListCategories).Methods(http.MethodGet)
	v1.HandleFunc("/categories", s.handleAddCategory).Methods(http.MethodPost)

	s.router.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.WithFields(logger.Fields{
			"method":  r.Method,
			"path":    r.URL.Path,
			"elapsed": time.Since(start),
		}).Info("Handled request")
	})
}

// processRequest is the POST /v1/statements body.
type processRequest struct {
	Text string `json:"text"`
	Bank string `json:"bank,omitempty"`
}

func (s *Server) handleProcessStatement(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxStatementBytes))
	if err != nil {
		s.writeError(w, apperrors.InternalError(apperrors.CodeUnexpectedError, "read_body", err), http.StatusBadRequest)
		return
	}

	var request processRequest
	if err := json.Unmarshal(body, &request); err != nil {
		s.writeError(w, apperrors.Wrap(err, apperrors.CategoryConfiguration, apperrors.CodeInvalidConfig,
			"request body is not valid JSON"), http.StatusBadRequest)
		return
	}
	if request.Text == "" {
		s.writeError(w, apperrors.ConfigurationError(apperrors.CodeMissingConfig, "text", nil, nil).
			WithSuggestion("provide the statement text in the request body"), http.StatusBadRequest)
		return
	}
	if request.Bank == "" {
		request.Bank = parser.BankAuto
	}

	result, err := s.service.Process(r.Context(), &pipeline.Request{
		Text: request.Text,
		Bank: request.Bank,
	})
	if err != nil {
		s.writeError(w, err, statusFor(err))
		return
	}

	s.writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"categories": s.service.Engine().Categories(),
	})
}

func (s *Server) handleAddCategory(w http.ResponseWriter, r *http.Request) {
	var category models.Category
	if err := json.NewDecoder(io.LimitReader(r.Body, maxStatementBytes)).Decode(&category); err != nil {
		s.writeError(w, apperrors.Wrap(err, apperrors.CategoryConfiguration, apperrors.CodeInvalidConfig,
			"request body is not a valid category"), http.StatusBadRequest)
		return
	}

	if err := s.service.Engine().AddCategory(&category); err != nil {
		s.writeError(w, err, http.StatusBadRequest)
		return
	}

	s.writeJSON(w, http.StatusCreated, &category)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// errorResponse is the JSON error envelope.
type errorResponse struct {
	Error      string `json:"error"`
	Code       string `json:"code,omitempty"`
	Suggestion string `json:"suggestion,omitempty"`
}

func (s *Server) writeError(w http.ResponseWriter, err error, status int) {
	response := errorResponse{Error: err.Error()}
	if le, ok := apperrors.AsLedgerError(err); ok {
		response.Code = string(le.Code)
		response.Suggestion = le.Suggestion
	}

	s.logger.WithError(err).WithField("status", status).Warn("Request failed")
	s.writeJSON(w, status, response)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.WithError(err).Error("Failed to encode response")
	}
}

// statusFor maps pipeline errors to HTTP status codes. Input problems
// are the client's fault; everything else is ours.
func statusFor(err error) int {
	le, ok := apperrors.AsLedgerError(err)
	if !ok {
		return http.StatusInternalServerError
	}

	switch le.Category {
	case apperrors.CategoryFile, apperrors.CategoryDetection, apperrors.CategoryParse,
		apperrors.CategoryNormalization, apperrors.CategoryConfiguration:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// ListenAndServe runs the HTTP server until the context is cancelled,
// then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	server := &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.WithField("addr", addr).Info("HTTP server listening")
		errCh <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s.logger.Info("Shutting down HTTP server")
		return server.Shutdown(shutdownCtx)
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	}
}
