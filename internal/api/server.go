// Package api provides the read-only HTTP API for observing a running
// simulation. GET endpoints are public; the one mutating endpoint
// (forcing an out-of-band snapshot save) requires a bearer token.
package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/talgya/settlementsim/internal/persistence"
	"github.com/talgya/settlementsim/internal/simulation"
)

// Server serves simulation state over HTTP. It never mutates live
// simulation state: every handler reads Snapshot() or the event log,
// both of which are computed under the simulation's own lock and
// handed back as plain values safe to serialize from another goroutine.
type Server struct {
	Sim      *simulation.Simulation
	DB       *persistence.DB
	Port     int
	AdminKey string // bearer token for the admin snapshot-save endpoint; empty disables it

	snapshotLimiter *RateLimiter
}

// Start begins serving the HTTP API in a goroutine.
func (s *Server) Start() {
	s.snapshotLimiter = NewRateLimiter(6, time.Minute)

	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/status", s.handleStatus)
	mux.HandleFunc("/api/v1/snapshot/latest", s.handleSnapshotLatest)
	mux.HandleFunc("/api/v1/snapshot/save", s.adminOnly(RateLimitMiddleware(s.snapshotLimiter, s.handleSnapshotSave)))
	mux.HandleFunc("/api/v1/snapshot/", s.handleSnapshotYear)
	mux.HandleFunc("/api/v1/stats", s.handleStats)
	mux.HandleFunc("/api/v1/events/recent", s.handleEventsRecent)

	addr := fmt.Sprintf(":%d", s.Port)
	slog.Info("HTTP API starting", "addr", addr, "admin_auth", s.AdminKey != "")

	go func() {
		handler := corsMiddleware(mux)
		if err := http.ListenAndServe(addr, handler); err != nil {
			slog.Error("HTTP server error", "error", err)
		}
	}()
}

// corsMiddleware allows local dashboard dev servers by default, plus
// any origin listed in SETTLEMENTSIM_CORS_ORIGINS.
func corsMiddleware(next http.Handler) http.Handler {
	allowedOrigins := map[string]bool{
		"http://localhost:5173": true,
		"http://localhost:3000": true,
	}
	if env := os.Getenv("SETTLEMENTSIM_CORS_ORIGINS"); env != "" {
		for _, origin := range strings.Split(env, ",") {
			origin = strings.TrimSpace(origin)
			if origin != "" {
				allowedOrigins[origin] = true
			}
		}
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if allowedOrigins[origin] {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) checkBearerToken(r *http.Request) bool {
	auth := r.Header.Get("Authorization")
	return strings.HasPrefix(auth, "Bearer ") && strings.TrimPrefix(auth, "Bearer ") == s.AdminKey
}

// adminOnly requires a valid bearer token on POST; other methods pass through.
func (s *Server) adminOnly(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			if s.AdminKey == "" {
				http.Error(w, "admin endpoints disabled (no admin key configured)", http.StatusForbidden)
				return
			}
			if !s.checkBearerToken(r) {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
		}
		next(w, r)
	}
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]any{
		"year":       s.Sim.Year(),
		"day":        s.Sim.Day(),
		"tick":       s.Sim.Tick(),
		"population": s.Sim.Population(),
	})
}

func (s *Server) handleSnapshotLatest(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.Sim.Snapshot())
}

// handleSnapshotYear serves a historical snapshot from the database by
// year, falling back to the live snapshot when the requested year is
// the current one and nothing has been persisted for it yet.
func (s *Server) handleSnapshotYear(w http.ResponseWriter, r *http.Request) {
	yearStr := strings.TrimPrefix(r.URL.Path, "/api/v1/snapshot/")
	year, err := strconv.Atoi(yearStr)
	if err != nil {
		http.Error(w, "invalid year", http.StatusBadRequest)
		return
	}

	if s.DB == nil {
		http.Error(w, "database not available", http.StatusServiceUnavailable)
		return
	}
	row, err := s.DB.LoadSnapshot(year)
	if err != nil {
		if year == s.Sim.Year() {
			writeJSON(w, s.Sim.Snapshot())
			return
		}
		http.Error(w, "snapshot not found", http.StatusNotFound)
		return
	}
	writeSnapshotRow(w, row)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	if s.DB == nil {
		writeJSON(w, []persistence.StatsRow{})
		return
	}
	from, to := 0, s.Sim.Year()
	if f := r.URL.Query().Get("from"); f != "" {
		if v, err := strconv.Atoi(f); err == nil {
			from = v
		}
	}
	if t := r.URL.Query().Get("to"); t != "" {
		if v, err := strconv.Atoi(t); err == nil {
			to = v
		}
	}
	rows, err := s.DB.StatsRange(from, to)
	if err != nil {
		slog.Error("stats range query failed", "error", err)
		writeJSON(w, []persistence.StatsRow{})
		return
	}
	if rows == nil {
		rows = []persistence.StatsRow{}
	}
	writeJSON(w, rows)
}

func (s *Server) handleEventsRecent(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if l := r.URL.Query().Get("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil && n > 0 && n <= 500 {
			limit = n
		}
	}
	writeJSON(w, s.Sim.RecentEvents(limit))
}

// handleSnapshotSave forces an immediate persisted snapshot of the
// live simulation state, independent of the driver's own end-of-year save.
func (s *Server) handleSnapshotSave(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if s.DB == nil {
		http.Error(w, "database not available", http.StatusServiceUnavailable)
		return
	}
	snap := s.Sim.Snapshot()
	takenAt := time.Now().UTC().Format(time.RFC3339)
	if err := s.DB.SaveSnapshot(snap.Year, snap.Tick, takenAt, snap.Rows, snap.People); err != nil {
		slog.Error("manual snapshot save failed", "error", err)
		http.Error(w, "save failed", http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]any{"saved_year": snap.Year, "taken_at": takenAt})
}

func writeJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.Encode(data)
}

// writeSnapshotRow re-emits a persisted snapshot row's already-JSON
// grid/people columns without re-encoding them as escaped strings.
func writeSnapshotRow(w http.ResponseWriter, row *persistence.SnapshotRow) {
	w.Header().Set("Content-Type", "application/json")
	fmt.Fprintf(w, `{"year":%d,"tick":%d,"taken_at":%q,"rows":%s,"people":%s}`,
		row.Year, row.Tick, row.TakenAt, row.GridJSON, row.PeopleJSON)
}
