package api

import (
	"context"
	"errors"
	"net/http"
	"sort"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/antowkas/oracle-hanabi-live-bot/internal/supervisor"
)

// buildRouter creates the HTTP router with all routes and middleware.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)

	r.Get("/health", s.handleHealth)

	r.Route("/api/v1/bots", func(r chi.Router) {
		r.Get("/", s.handleListBots)
		r.Get("/{name}/tables", s.handleBotTables)
		r.Get("/{name}/actions", s.handleBotActions)
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeNotFound(w, "no such endpoint")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, ErrCodeMethodNotAllow, "method not allowed")
	})

	return r
}

// HealthResponse is the body of /health.
type HealthResponse struct {
	Status  string            `json:"status"`
	Version string            `json:"version"`
	Checks  map[string]string `json:"checks,omitempty"`
}

// handleHealth reports "ok" when every backend answers and "degraded" (503)
// otherwise. The bots themselves never make the process unhealthy.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{Status: "ok", Version: s.version}
	status := http.StatusOK

	if len(s.checks) > 0 {
		resp.Checks = make(map[string]string, len(s.checks))
		names := make([]string, 0, len(s.checks))
		for name := range s.checks {
			names = append(names, name)
		}
		sort.Strings(names)

		for _, name := range names {
			ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
			err := s.checks[name].HealthCheck(ctx)
			cancel()

			if err != nil {
				resp.Checks[name] = err.Error()
				resp.Status = "degraded"
				status = http.StatusServiceUnavailable
				continue
			}
			resp.Checks[name] = "ok"
		}
	}

	writeJSON(w, status, resp)
}

// BotView is one entry of /api/v1/bots.
type BotView struct {
	supervisor.Stats

	// TablesJoined counts journalled tables; absent without a journal.
	TablesJoined *int `json:"tables_joined,omitempty"`
}

func (s *Server) handleListBots(w http.ResponseWriter, r *http.Request) {
	stats := s.bots.Stats()
	views := make([]BotView, len(stats))
	for i, st := range stats {
		views[i] = BotView{Stats: st}
		if s.journal == nil {
			continue
		}
		n, err := s.journal.TableCount(r.Context(), st.Name)
		if err != nil {
			s.logger.Warn("counting journalled tables", "bot", st.Name, "error", err)
			continue
		}
		views[i].TablesJoined = &n
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"bots":  views,
		"count": len(views),
	})
}

func (s *Server) handleBotTables(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	tables, err := s.bots.Tables(name)
	switch {
	case errors.Is(err, supervisor.ErrUnknownBot):
		writeNotFound(w, "unknown bot: "+name)
		return
	case errors.Is(err, supervisor.ErrNotRunning):
		writeUnavailable(w, "bot not running: "+name)
		return
	case err != nil:
		writeInternalError(w, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"bot":    name,
		"tables": tables,
		"count":  len(tables),
	})
}

func (s *Server) handleBotActions(w http.ResponseWriter, r *http.Request) {
	if s.journal == nil {
		writeUnavailable(w, "journal disabled")
		return
	}
	name := chi.URLParam(r, "name")

	tableID, err := queryInt(r, "table")
	if err != nil {
		writeBadRequest(w, "table must be an integer")
		return
	}
	limit, err := queryInt(r, "limit")
	if err != nil {
		writeBadRequest(w, "limit must be an integer")
		return
	}

	records, err := s.journal.Actions(r.Context(), name, tableID, limit)
	if err != nil {
		s.logger.Error("reading journal", "bot", name, "error", err)
		writeInternalError(w, "reading journal")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"bot":     name,
		"actions": records,
		"count":   len(records),
	})
}

// queryInt parses an optional integer query parameter. Absent means 0.
func queryInt(r *http.Request, key string) (int, error) {
	v := r.URL.Query().Get(key)
	if v == "" {
		return 0, nil
	}
	return strconv.Atoi(v)
}
