package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/aristath/tickermatch/internal/ownerfreq"
)

// handleHealth handles health check requests
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	response := map[string]interface{}{
		"status":  "healthy",
		"version": "1.0.0",
		"service": "tickermatch",
	}

	s.writeJSON(w, http.StatusOK, response)
}

// handleSystemStatus reports uptime and host resource usage
func (s *Server) handleSystemStatus(w http.ResponseWriter, r *http.Request) {
	cpuPct, ramPct := s.getSystemStats()

	response := map[string]interface{}{
		"uptime_seconds": int64(time.Since(s.started).Seconds()),
		"cpu_percent":    cpuPct,
		"ram_percent":    ramPct,
		"cached_stocks":  s.cache.Len(),
		"loaded_owners":  len(s.owners),
	}

	s.writeJSON(w, http.StatusOK, response)
}

// getSystemStats returns CPU and RAM usage percentages.
// CPU is sampled over 100ms to keep the endpoint responsive.
func (s *Server) getSystemStats() (float64, float64) {
	cpuPercent, err := cpu.Percent(100*time.Millisecond, false)
	if err != nil {
		s.log.Warn().Err(err).Msg("Failed to get CPU percentage")
		cpuPercent = []float64{0}
	}

	memStat, err := mem.VirtualMemory()
	if err != nil {
		s.log.Warn().Err(err).Msg("Failed to get memory statistics")
		return 0, 0
	}

	cpuAvg := 0.0
	if len(cpuPercent) > 0 {
		cpuAvg = cpuPercent[0]
	}

	return cpuAvg, memStat.UsedPercent
}

// handleResolve resolves a single company name to a ticker
func (s *Server) handleResolve(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	if name == "" {
		s.writeError(w, http.StatusBadRequest, "missing name parameter")
		return
	}

	s.writeJSON(w, http.StatusOK, s.resolver.Resolve(name))
}

// handleGetStock returns cached attributes for a ticker, fetching on miss
func (s *Server) handleGetStock(w http.ResponseWriter, r *http.Request) {
	ticker := chi.URLParam(r, "ticker")

	quote, err := s.cache.Get(r.Context(), ticker)
	if err != nil {
		s.log.Warn().Err(err).Str("ticker", ticker).Msg("Failed to fetch stock attributes")
		s.writeError(w, http.StatusBadGateway, "failed to fetch stock attributes")
		return
	}

	s.writeJSON(w, http.StatusOK, quote)
}

type analysisRequest struct {
	Limit int `json:"limit"`
}

// handleAnalysis runs the analysis pipeline over the loaded owner ranking
func (s *Server) handleAnalysis(w http.ResponseWriter, r *http.Request) {
	var req analysisRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}
	if req.Limit < 0 {
		s.writeError(w, http.StatusBadRequest, "invalid limit parameter")
		return
	}
	// An omitted limit analyzes the configured default number of owners.
	if req.Limit == 0 {
		req.Limit = s.analysisLimit
	}

	if len(s.owners) == 0 {
		s.writeError(w, http.StatusConflict, "no owner registry loaded")
		return
	}

	runID := uuid.New().String()
	start := time.Now()

	result, err := s.pipeline.Run(r.Context(), s.owners, req.Limit)
	if err != nil {
		s.log.Error().Err(err).Str("run_id", runID).Msg("Analysis run failed")
		s.writeError(w, http.StatusInternalServerError, "analysis run failed")
		return
	}

	s.log.Info().
		Str("run_id", runID).
		Dur("elapsed", time.Since(start)).
		Int("records", len(result.Records)).
		Msg("Analysis run served")

	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"run_id":  runID,
		"records": result.Records,
		"summary": result.Summary,
	})
}

// handleTopOwners returns the raw ranked owner counts
func (s *Server) handleTopOwners(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			s.writeError(w, http.StatusBadRequest, "invalid limit parameter")
			return
		}
		limit = parsed
	}

	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"owners": ownerfreq.Top(s.owners, limit),
	})
}
