package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gorilla/mux"

	"metacalc/internal/export"
	"metacalc/internal/service"
	"metacalc/internal/store"
)

// one megabyte is plenty for an import file
const maxImportBytes = 1 << 20

// StudyHandler handles study CRUD and import/export endpoints
type StudyHandler struct {
	studySvc *service.StudyService
}

// NewStudyHandler creates a new study handler
func NewStudyHandler(studySvc *service.StudyService) *StudyHandler {
	return &StudyHandler{studySvc: studySvc}
}

// List handles GET /v1/studies
func (h *StudyHandler) List(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{"studies": h.studySvc.List()})
}

// Get handles GET /v1/studies/{studyId}
func (h *StudyHandler) Get(w http.ResponseWriter, r *http.Request) {
	study, err := h.studySvc.Get(mux.Vars(r)["studyId"])
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "study not found")
		return
	}
	writeJSON(w, http.StatusOK, study)
}

// Create handles POST /v1/studies
func (h *StudyHandler) Create(w http.ResponseWriter, r *http.Request) {
	study, err := h.studySvc.Add(r.Context())
	if err != nil {
		// The study exists in memory but is not durable yet.
		writeJSON(w, http.StatusAccepted, map[string]interface{}{
			"study":   study,
			"warning": "study created but not yet persisted",
		})
		return
	}
	writeJSON(w, http.StatusCreated, study)
}

// Update handles PUT /v1/studies/{studyId}
func (h *StudyHandler) Update(w http.ResponseWriter, r *http.Request) {
	var info store.StudyInfo
	if err := json.NewDecoder(r.Body).Decode(&info); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	study, err := h.studySvc.SetInfo(r.Context(), mux.Vars(r)["studyId"], info)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "study not found")
		return
	}
	if errors.Is(err, store.ErrInvalidEffectType) {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if err != nil {
		writeJSON(w, http.StatusAccepted, map[string]interface{}{
			"study":   study,
			"warning": "change saved in memory but not yet persisted",
		})
		return
	}
	writeJSON(w, http.StatusOK, study)
}

// Duplicate handles POST /v1/studies/{studyId}/duplicate
func (h *StudyHandler) Duplicate(w http.ResponseWriter, r *http.Request) {
	study, err := h.studySvc.Duplicate(r.Context(), mux.Vars(r)["studyId"])
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "study not found")
		return
	}
	if err != nil {
		writeJSON(w, http.StatusAccepted, map[string]interface{}{
			"study":   study,
			"warning": "study duplicated but not yet persisted",
		})
		return
	}
	writeJSON(w, http.StatusCreated, study)
}

// Delete handles DELETE /v1/studies/{studyId}
func (h *StudyHandler) Delete(w http.ResponseWriter, r *http.Request) {
	err := h.studySvc.Delete(r.Context(), mux.Vars(r)["studyId"])
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "study not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Clear handles DELETE /v1/studies. The client is expected to have confirmed
// with the user; the API clears unconditionally.
func (h *StudyHandler) Clear(w http.ResponseWriter, r *http.Request) {
	if err := h.studySvc.Clear(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Export handles GET /v1/export
func (h *StudyHandler) Export(w http.ResponseWriter, r *http.Request) {
	data, err := h.studySvc.Export()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="rob-studies.json"`)
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// Import handles POST /v1/import
func (h *StudyHandler) Import(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(io.LimitReader(r.Body, maxImportBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "unable to read request body")
		return
	}

	count, err := h.studySvc.Import(r.Context(), data)
	if errors.Is(err, export.ErrMalformedImport) {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"imported": count})
}
