// Package status is the executor's read-only HTTP side: health, journal summary and
// recent requests. Never serves key material (the journal doesn't hold any).
package status

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"dev.c0redev.pqmsg/internal/crypto"
	"dev.c0redev.pqmsg/internal/store"
)

const maxRecent = 500

// Server holds status deps. DB may be nil (journal disabled); TokenHash empty = no auth.
type Server struct {
	DB        *store.DB
	TokenHash string
}

func New(db *store.DB, tokenHash string) *Server {
	return &Server{DB: db, TokenHash: tokenHash}
}

// RequestDTO: one journal entry (snake_case json).
type RequestDTO struct {
	ID            int64  `json:"id"`
	Identifier    uint64 `json:"identifier"`
	Version       uint8  `json:"version"`
	Algorithm     string `json:"algorithm"`
	Operation     string `json:"operation"`
	Success       bool   `json:"success"`
	RequestBytes  int    `json:"request_bytes"`
	ResponseBytes int    `json:"response_bytes"`
	Reason        string `json:"reason,omitempty"`
	CreatedAt     string `json:"created_at"`
}

// StatsResponse body for GET /api/stats.
type StatsResponse struct {
	Supported  []string        `json:"supported"`
	Algorithms []AlgorithmStat `json:"algorithms"`
}

type AlgorithmStat struct {
	Algorithm string `json:"algorithm"`
	Total     int    `json:"total"`
	Failed    int    `json:"failed"`
}

// HandleHealth GET /health
func (s *Server) HandleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, struct {
		Status string `json:"status"`
	}{Status: "ok"})
}

// HandleReady GET /ready; 200 if the journal answers (or is disabled) else 503.
func (s *Server) HandleReady(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if s.DB != nil {
		if err := s.DB.Ping(); err != nil {
			http.Error(w, "journal unavailable", http.StatusServiceUnavailable)
			return
		}
	}
	w.WriteHeader(http.StatusOK)
}

// HandleStats GET /api/stats
func (s *Server) HandleStats(w http.ResponseWriter, r *http.Request) {
	if !s.get(w, r) {
		return
	}
	out := StatsResponse{Supported: []string{}, Algorithms: []AlgorithmStat{}}
	for _, alg := range crypto.Supported() {
		out.Supported = append(out.Supported, alg.String())
	}
	counts, err := s.DB.CountByAlgorithm()
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	for _, c := range counts {
		out.Algorithms = append(out.Algorithms, AlgorithmStat{Algorithm: c.Algorithm.String(), Total: c.Total, Failed: c.Failed})
	}
	writeJSON(w, out)
}

// HandleRequests GET /api/requests?limit=N, newest first.
func (s *Server) HandleRequests(w http.ResponseWriter, r *http.Request) {
	if !s.get(w, r) {
		return
	}
	limit := 100
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			http.Error(w, "bad limit", http.StatusBadRequest)
			return
		}
		limit = min(n, maxRecent)
	}
	entries, err := s.DB.Recent(limit)
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	out := make([]RequestDTO, 0, len(entries))
	for _, e := range entries {
		out = append(out, RequestDTO{
			ID: e.ID, Identifier: e.Identifier, Version: e.Version,
			Algorithm: e.Algorithm.String(), Operation: e.Operation.String(),
			Success: e.Success, RequestBytes: e.RequestBytes, ResponseBytes: e.ResponseBytes,
			Reason: e.Reason, CreatedAt: e.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		})
	}
	writeJSON(w, out)
}

// get: method, auth and journal checks shared by the /api handlers.
func (s *Server) get(w http.ResponseWriter, r *http.Request) bool {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return false
	}
	if s.TokenHash != "" && !CheckToken(bearer(r), s.TokenHash) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return false
	}
	if s.DB == nil {
		http.Error(w, "journal disabled", http.StatusNotFound)
		return false
	}
	return true
}

func bearer(r *http.Request) string {
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	}
	return ""
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(v)
}

// Mount registers all routes on mux.
func (s *Server) Mount(mux *http.ServeMux) {
	mux.HandleFunc("/health", s.HandleHealth)
	mux.HandleFunc("/ready", s.HandleReady)
	mux.HandleFunc("/api/stats", s.HandleStats)
	mux.HandleFunc("/api/requests", s.HandleRequests)
}
