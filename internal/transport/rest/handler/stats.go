package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"metacalc/internal/service"
	"metacalc/internal/stats"
)

// StatsHandler exposes the conversion formula calculators
type StatsHandler struct {
	statsSvc *service.StatsService
}

// NewStatsHandler creates a new stats handler
func NewStatsHandler(statsSvc *service.StatsService) *StatsHandler {
	return &StatsHandler{statsSvc: statsSvc}
}

func statsError(w http.ResponseWriter, err error) {
	if errors.Is(err, stats.ErrInvalidInput) {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	writeError(w, http.StatusInternalServerError, err.Error())
}

// SEToSD handles POST /v1/stats/se-sd
func (h *StatsHandler) SEToSD(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SE float64 `json:"se"`
		N  int     `json:"n"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	sd, err := h.statsSvc.SEToSD(r.Context(), req.SE, req.N)
	if err != nil {
		statsError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]float64{"sd": sd})
}

// CIToMeanSD handles POST /v1/stats/ci-mean-sd
func (h *StatsHandler) CIToMeanSD(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Lower float64 `json:"lower"`
		Upper float64 `json:"upper"`
		N     int     `json:"n"`
		Level float64 `json:"level"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Level == 0 {
		req.Level = 95
	}

	res, err := h.statsSvc.CIToMeanSD(r.Context(), req.Lower, req.Upper, req.N, req.Level)
	if err != nil {
		statsError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// SMD handles POST /v1/stats/smd
func (h *StatsHandler) SMD(w http.ResponseWriter, r *http.Request) {
	var req stats.SMDInput
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	res, err := h.statsSvc.SMD(r.Context(), req)
	if err != nil {
		statsError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// Binary handles POST /v1/stats/binary
func (h *StatsHandler) Binary(w http.ResponseWriter, r *http.Request) {
	var req stats.BinaryInput
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	res, err := h.statsSvc.BinaryOutcomes(r.Context(), req)
	if err != nil {
		statsError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// History handles GET /v1/stats/history
func (h *StatsHandler) History(w http.ResponseWriter, r *http.Request) {
	history, err := h.statsSvc.History(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if history == nil {
		history = []service.CalcRecord{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"history": history})
}
