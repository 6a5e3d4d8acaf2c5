package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/dgallion1/lunchbot/internal/calendar"
	"github.com/dgallion1/lunchbot/internal/pipeline"
	"github.com/dgallion1/lunchbot/internal/preview"
	"github.com/go-chi/chi/v5"
)

// handleRun executes a run synchronously and returns its snapshot.
func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	day, err := calendar.ParseDate(r.URL.Query().Get("date"), s.runner.Location(), s.runner.Today)
	if err != nil {
		jsonError(w, "date must be YYYY-MM-DD", http.StatusBadRequest)
		return
	}

	dryRun := false
	if v := r.URL.Query().Get("dry_run"); v != "" {
		dryRun, err = strconv.ParseBool(v)
		if err != nil {
			jsonError(w, "dry_run must be a boolean", http.StatusBadRequest)
			return
		}
	}

	run, err := s.runner.Run(r.Context(), day, dryRun)
	if err != nil {
		writeJSON(w, http.StatusBadGateway, run.Snapshot())
		return
	}
	writeJSON(w, http.StatusOK, run.Snapshot())
}

func (s *Server) handleRunStatus(w http.ResponseWriter, r *http.Request) {
	runID := chi.URLParam(r, "runID")
	run := s.runner.GetRun(runID)
	if run == nil {
		jsonError(w, "run not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, run.Snapshot())
}

// handleMenu previews the report for a date without posting it.
func (s *Server) handleMenu(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	day, err := calendar.ParseDate(q.Get("date"), s.runner.Location(), s.runner.Today)
	if err != nil {
		jsonError(w, "date must be YYYY-MM-DD", http.StatusBadRequest)
		return
	}

	format := q.Get("format")
	if format == "" {
		format = "text"
	}
	if format != "text" && format != "html" {
		jsonError(w, "format must be text or html", http.StatusBadRequest)
		return
	}

	rep, err := s.runner.Build(r.Context(), day)
	if errors.Is(err, pipeline.ErrNotWorkday) {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err != nil {
		jsonError(w, "build menu: "+err.Error(), http.StatusBadGateway)
		return
	}

	if format == "text" {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Write([]byte(rep.Text))
		return
	}

	page, err := preview.Page("Lunch for "+day.Format("Monday, January 2"), rep.Text)
	if err != nil {
		jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(page))
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	body := map[string]any{
		"dropped_blocks_total": s.runner.DroppedBlocksTotal(),
	}
	if s.stats != nil {
		body["fetch"] = s.stats.Snapshot()
	}
	writeJSON(w, http.StatusOK, body)
}
