package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"metacalc/internal/engine"
	"metacalc/internal/model"
	"metacalc/internal/service"
	"metacalc/internal/store"
)

// AssessmentHandler handles per-domain assessment endpoints
type AssessmentHandler struct {
	assessSvc *service.AssessmentService
}

// NewAssessmentHandler creates a new assessment handler
func NewAssessmentHandler(assessSvc *service.AssessmentService) *AssessmentHandler {
	return &AssessmentHandler{assessSvc: assessSvc}
}

func assessmentStatus(err error) (int, string) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound, "study not found"
	case errors.Is(err, engine.ErrUnknownDomain):
		return http.StatusNotFound, "unknown domain"
	case errors.Is(err, engine.ErrUnknownQuestion):
		return http.StatusNotFound, "unknown question"
	case errors.Is(err, engine.ErrInactiveDomain):
		return http.StatusConflict, "domain is not active for the study's effect type"
	case errors.Is(err, engine.ErrHiddenQuestion):
		return http.StatusConflict, "question is hidden by its visibility rule"
	case errors.Is(err, engine.ErrInvalidAnswer),
		errors.Is(err, engine.ErrInvalidJudgment),
		errors.Is(err, engine.ErrInvalidDirection):
		return http.StatusUnprocessableEntity, err.Error()
	default:
		return http.StatusInternalServerError, err.Error()
	}
}

// Domains handles GET /v1/studies/{studyId}/domains
func (h *AssessmentHandler) Domains(w http.ResponseWriter, r *http.Request) {
	views, err := h.assessSvc.DomainViews(mux.Vars(r)["studyId"])
	if err != nil {
		status, msg := assessmentStatus(err)
		writeError(w, status, msg)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"domains": views})
}

// Questions handles GET /v1/studies/{studyId}/domains/{domain}/questions
func (h *AssessmentHandler) Questions(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	view, err := h.assessSvc.DomainView(vars["studyId"], vars["domain"])
	if err != nil {
		status, msg := assessmentStatus(err)
		writeError(w, status, msg)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// SetAnswer handles PUT /v1/studies/{studyId}/domains/{domain}/answers/{question}
func (h *AssessmentHandler) SetAnswer(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Answer model.Answer `json:"answer"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	vars := mux.Vars(r)
	study, err := h.assessSvc.SetAnswer(r.Context(), vars["studyId"], vars["domain"], vars["question"], req.Answer)
	if err != nil && study == nil {
		status, msg := assessmentStatus(err)
		writeError(w, status, msg)
		return
	}
	if err != nil {
		writeJSON(w, http.StatusAccepted, map[string]interface{}{
			"study":   study,
			"warning": "answer saved in memory but not yet persisted",
		})
		return
	}
	writeJSON(w, http.StatusOK, study)
}

// SetJudgment handles PUT /v1/studies/{studyId}/domains/{domain}/judgment
func (h *AssessmentHandler) SetJudgment(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Judgment model.Judgment `json:"judgment"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	vars := mux.Vars(r)
	study, err := h.assessSvc.SetJudgment(r.Context(), vars["studyId"], vars["domain"], req.Judgment)
	if err != nil && study == nil {
		status, msg := assessmentStatus(err)
		writeError(w, status, msg)
		return
	}
	if err != nil {
		writeJSON(w, http.StatusAccepted, map[string]interface{}{
			"study":   study,
			"warning": "judgment saved in memory but not yet persisted",
		})
		return
	}
	writeJSON(w, http.StatusOK, study)
}

// SetRationale handles PUT /v1/studies/{studyId}/domains/{domain}/rationale
func (h *AssessmentHandler) SetRationale(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Rationale string `json:"rationale"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	vars := mux.Vars(r)
	study, err := h.assessSvc.SetRationale(r.Context(), vars["studyId"], vars["domain"], req.Rationale)
	if err != nil && study == nil {
		status, msg := assessmentStatus(err)
		writeError(w, status, msg)
		return
	}
	if err != nil {
		writeJSON(w, http.StatusAccepted, map[string]interface{}{
			"study":   study,
			"warning": "rationale saved in memory but not yet persisted",
		})
		return
	}
	writeJSON(w, http.StatusOK, study)
}

// SetBiasDirection handles PUT /v1/studies/{studyId}/domains/{domain}/direction
func (h *AssessmentHandler) SetBiasDirection(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Direction model.BiasDirection `json:"direction"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	vars := mux.Vars(r)
	study, err := h.assessSvc.SetBiasDirection(r.Context(), vars["studyId"], vars["domain"], req.Direction)
	if err != nil && study == nil {
		status, msg := assessmentStatus(err)
		writeError(w, status, msg)
		return
	}
	if err != nil {
		writeJSON(w, http.StatusAccepted, map[string]interface{}{
			"study":   study,
			"warning": "bias direction saved in memory but not yet persisted",
		})
		return
	}
	writeJSON(w, http.StatusOK, study)
}

// Progress handles GET /v1/studies/{studyId}/progress
func (h *AssessmentHandler) Progress(w http.ResponseWriter, r *http.Request) {
	done, total, err := h.assessSvc.Progress(mux.Vars(r)["studyId"])
	if err != nil {
		status, msg := assessmentStatus(err)
		writeError(w, status, msg)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"completed": done, "total": total})
}
