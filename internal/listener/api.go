package listener

import (
	"encoding/json"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/testbeacon/testbeacon/internal/ingest"
)

// buildHandler wires all routes onto a new ServeMux.
func buildHandler(s *Server) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /api/status", s.handleStatus)
	mux.HandleFunc("POST /api/events", s.handleEvent)
	mux.HandleFunc("POST /api/runs/complete", s.handleComplete)
	mux.HandleFunc("GET /api/runs", s.handleListRuns)

	return mux
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	suites := s.activeSuites()
	sort.Strings(suites)
	writeJSON(w, http.StatusOK, map[string]any{
		"uptime_seconds": int(time.Since(s.startedAt).Seconds()),
		"active_suites":  suites,
		"channels":       s.dispatcher.Channels(),
	})
}

// handleEvent accepts one JSONL-style event per request. A "test" event is
// recorded against the suite's in-flight run; a "run" event completes it.
func (s *Server) handleEvent(w http.ResponseWriter, r *http.Request) {
	suite := r.URL.Query().Get("suite")
	if suite == "" {
		suite = s.cfg.Suite
	}

	var e ingest.Event
	if err := json.NewDecoder(r.Body).Decode(&e); err != nil {
		writeError(w, http.StatusBadRequest, "invalid event payload: "+err.Error())
		return
	}

	switch e.Event {
	case "test":
		s.intake(suite, e.Outcome())
		writeJSON(w, http.StatusAccepted, map[string]string{"status": "recorded"})
	case "run":
		run, deliveries, err := s.complete(r.Context(), suite, "")
		if err != nil {
			writeError(w, http.StatusConflict, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"run": run, "deliveries": deliveries})
	default:
		writeError(w, http.StatusBadRequest, "unknown event type "+strconv.Quote(e.Event))
	}
}

type completeRequest struct {
	Suite     string `json:"suite"`
	ReportURL string `json:"report_url"`
}

func (s *Server) handleComplete(w http.ResponseWriter, r *http.Request) {
	var req completeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}
	if req.Suite == "" {
		req.Suite = s.cfg.Suite
	}

	run, deliveries, err := s.complete(r.Context(), req.Suite, req.ReportURL)
	if err != nil {
		writeError(w, http.StatusConflict, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"run": run, "deliveries": deliveries})
}

func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeError(w, http.StatusServiceUnavailable, "run history is not configured")
		return
	}

	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "invalid limit "+strconv.Quote(raw))
			return
		}
		limit = n
	}

	runs, err := s.store.ListRuns(r.Context(), r.URL.Query().Get("suite"), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"runs": runs})
}
