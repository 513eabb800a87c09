// Package server exposes the solve pipeline over HTTP. The service owns
// the loaded index for its lifetime; there is no ambient global state.
package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"dilr/internal/adapter/memstore"
	"dilr/internal/domain"
	"dilr/internal/usecase"
)

// Service handles solve requests against an index loaded at startup.
type Service struct {
	solver      *usecase.SolveUseCase
	index       *memstore.FlatIndex
	defaultTopK int
	keysPresent bool
}

// New creates a service. keysPresent reports whether both remote API
// credentials were found at startup; health checks expose it so a
// misconfigured deployment is visible before the first solve call.
func New(solver *usecase.SolveUseCase, index *memstore.FlatIndex, defaultTopK int, keysPresent bool) *Service {
	if defaultTopK <= 0 {
		defaultTopK = 4
	}
	return &Service{
		solver:      solver,
		index:       index,
		defaultTopK: defaultTopK,
		keysPresent: keysPresent,
	}
}

// Handler returns the route table.
func (s *Service) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("POST /solve", s.handleSolve)
	return mux
}

type solveRequest struct {
	Question string `json:"question"`
	TopK     int    `json:"top_k"`
}

type healthResponse struct {
	Status            string `json:"status"`
	Problems          int    `json:"problems"`
	StoreLoaded       bool   `json:"store_loaded"`
	APIKeysConfigured bool   `json:"api_keys_configured"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Service) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:            "ok",
		Problems:          s.index.Len(),
		StoreLoaded:       s.index.Len() > 0,
		APIKeysConfigured: s.keysPresent,
	})
}

func (s *Service) handleSolve(w http.ResponseWriter, r *http.Request) {
	var req solveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body: " + err.Error()})
		return
	}
	if req.Question == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "question is required"})
		return
	}
	if req.TopK == 0 {
		req.TopK = s.defaultTopK
	}

	if s.index.Len() == 0 {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "vector store is empty, build it first"})
		return
	}

	result, err := s.solver.Solve(req.Question, req.TopK)
	if err != nil {
		writeJSON(w, statusFor(err), errorResponse{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// statusFor maps the error taxonomy onto HTTP statuses.
func statusFor(err error) int {
	var invalid *domain.InvalidArgumentError
	if errors.As(err, &invalid) {
		return http.StatusBadRequest
	}
	var notFound *domain.NotFoundError
	if errors.As(err, &notFound) {
		return http.StatusNotFound
	}
	var conf *domain.ConfigurationError
	if errors.As(err, &conf) {
		return http.StatusInternalServerError
	}
	var auth *domain.AuthenticationError
	if errors.As(err, &auth) {
		return http.StatusBadGateway
	}
	var upstream *domain.UpstreamError
	if errors.As(err, &upstream) {
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		fmt.Println("failed to write response:", err)
	}
}
