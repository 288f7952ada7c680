package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"pfdash/internal/calc"
	"pfdash/internal/core"
	"pfdash/internal/export"
	"pfdash/internal/log"
	"pfdash/internal/storage"
)

const maxBodyBytes = 1 << 20

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, map[string]string{"error": msg})
}

func (s *Server) decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil {
		s.logger.ErrorContext(r.Context(), "Failed to decode request body",
			log.FieldError, err,
			log.FieldPath, r.URL.Path)
		respondError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

func parseID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid snapshot id %q", r.PathValue("id"))
	}
	return id, nil
}

// metricsResponse pairs a computed result with the snapshot signature that
// keys its cache entry.
type metricsResponse struct {
	Signature string             `json:"signature"`
	Metrics   calc.MetricsResult `json:"metrics"`
}

func (s *Server) handleComputeMetrics(w http.ResponseWriter, r *http.Request) {
	var snap core.Snapshot
	if !s.decodeBody(w, r, &snap) {
		return
	}

	result, sig, err := s.metrics.Compute(snap, time.Now())
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Metrics computation failed", log.FieldError, err)
		respondError(w, http.StatusInternalServerError, "failed to compute metrics")
		return
	}

	respondJSON(w, http.StatusOK, metricsResponse{Signature: sig, Metrics: result})
}

type payoffPlanRequest struct {
	Debts         []core.DebtRow `json:"debts"`
	MonthlyBudget float64        `json:"monthly_budget"`
	Strategy      calc.Strategy  `json:"strategy"`
}

func (s *Server) handlePayoffPlan(w http.ResponseWriter, r *http.Request) {
	var req payoffPlanRequest
	if !s.decodeBody(w, r, &req) {
		return
	}

	switch req.Strategy {
	case calc.StrategyAvalanche, calc.StrategySnowball:
	case "":
		req.Strategy = calc.StrategyAvalanche
	default:
		respondError(w, http.StatusBadRequest, fmt.Sprintf("unknown strategy %q", req.Strategy))
		return
	}

	plan := calc.PlanStrategy(req.Debts, req.MonthlyBudget, req.Strategy)
	respondJSON(w, http.StatusOK, plan)
}

func (s *Server) handlePayoffCompare(w http.ResponseWriter, r *http.Request) {
	var req payoffPlanRequest
	if !s.decodeBody(w, r, &req) {
		return
	}

	comparison := calc.CompareStrategies(req.Debts, req.MonthlyBudget)
	respondJSON(w, http.StatusOK, comparison)
}

func (s *Server) handleSaveSnapshot(w http.ResponseWriter, r *http.Request) {
	var snap core.Snapshot
	if !s.decodeBody(w, r, &snap) {
		return
	}

	res, err := s.snapshots.Save(r.Context(), snap)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Failed to save snapshot", log.FieldError, err)
		respondError(w, http.StatusInternalServerError, "failed to save snapshot")
		return
	}

	status := http.StatusCreated
	if res.Deduped {
		status = http.StatusOK
	}
	respondJSON(w, status, res)
}

func (s *Server) handleListSnapshots(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 500 {
			limit = n
		}
	}

	summaries, err := s.snapshots.List(r.Context(), limit)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Failed to list snapshots", log.FieldError, err)
		respondError(w, http.StatusInternalServerError, "failed to list snapshots")
		return
	}
	if summaries == nil {
		summaries = []storage.SnapshotSummary{}
	}
	respondJSON(w, http.StatusOK, summaries)
}

func (s *Server) handleGetSnapshot(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	snap, err := s.snapshots.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrSnapshotNotFound) {
			respondError(w, http.StatusNotFound, "snapshot not found")
			return
		}
		s.logger.ErrorContext(r.Context(), "Failed to load snapshot", log.FieldSnapshotID, id, log.FieldError, err)
		respondError(w, http.StatusInternalServerError, "failed to load snapshot")
		return
	}
	respondJSON(w, http.StatusOK, snap)
}

func (s *Server) handleDeleteSnapshot(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.snapshots.Delete(r.Context(), id); err != nil {
		if errors.Is(err, storage.ErrSnapshotNotFound) {
			respondError(w, http.StatusNotFound, "snapshot not found")
			return
		}
		s.logger.ErrorContext(r.Context(), "Failed to delete snapshot", log.FieldSnapshotID, id, log.FieldError, err)
		respondError(w, http.StatusInternalServerError, "failed to delete snapshot")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSnapshotMetrics(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	snap, err := s.snapshots.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrSnapshotNotFound) {
			respondError(w, http.StatusNotFound, "snapshot not found")
			return
		}
		s.logger.ErrorContext(r.Context(), "Failed to load snapshot", log.FieldSnapshotID, id, log.FieldError, err)
		respondError(w, http.StatusInternalServerError, "failed to load snapshot")
		return
	}

	result, sig, err := s.metrics.Compute(snap, time.Now())
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Metrics computation failed", log.FieldSnapshotID, id, log.FieldError, err)
		respondError(w, http.StatusInternalServerError, "failed to compute metrics")
		return
	}
	respondJSON(w, http.StatusOK, metricsResponse{Signature: sig, Metrics: result})
}

func (s *Server) handleExportMonthly(w http.ResponseWriter, r *http.Request) {
	s.serveCSV(w, r, "monthly.csv", export.WriteMonthlyCSV)
}

func (s *Server) handleExportNetWorth(w http.ResponseWriter, r *http.Request) {
	s.serveCSV(w, r, "networth.csv", export.WriteNetWorthCSV)
}

func (s *Server) serveCSV(w http.ResponseWriter, r *http.Request, filename string, write func(w io.Writer, t core.Tables) error) {
	id, err := parseID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	snap, err := s.snapshots.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrSnapshotNotFound) {
			respondError(w, http.StatusNotFound, "snapshot not found")
			return
		}
		s.logger.ErrorContext(r.Context(), "Failed to load snapshot", log.FieldSnapshotID, id, log.FieldError, err)
		respondError(w, http.StatusInternalServerError, "failed to load snapshot")
		return
	}

	snap = core.Sanitize(snap)

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	if err := write(w, snap.Tables); err != nil {
		s.logger.ErrorContext(r.Context(), "CSV export failed", log.FieldSnapshotID, id, "file", filename, log.FieldError, err)
	}
}
