package handler

import (
	"net/http"

	"metacalc/internal/projection"
	"metacalc/internal/service"
)

// ChartHandler serves the two visualization projections
type ChartHandler struct {
	chartSvc *service.ChartService
}

// NewChartHandler creates a new chart handler
func NewChartHandler(chartSvc *service.ChartService) *ChartHandler {
	return &ChartHandler{chartSvc: chartSvc}
}

// TrafficLight handles GET /v1/charts/traffic-light
func (h *ChartHandler) TrafficLight(w http.ResponseWriter, r *http.Request) {
	tl, err := h.chartSvc.TrafficLight(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, tl)
}

// WeightedBar handles GET /v1/charts/weighted-bar
func (h *ChartHandler) WeightedBar(w http.ResponseWriter, r *http.Request) {
	rows, err := h.chartSvc.WeightedBars(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if rows == nil {
		rows = []projection.BarRow{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"rows": rows})
}
