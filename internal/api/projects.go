package api

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/MikeSquared-Agency/GovDesign/internal/cobit"
	"github.com/MikeSquared-Agency/GovDesign/internal/hermes"
	"github.com/MikeSquared-Agency/GovDesign/internal/metrics"
	"github.com/MikeSquared-Agency/GovDesign/internal/scoring"
	"github.com/MikeSquared-Agency/GovDesign/internal/store"
)

type ProjectsHandler struct {
	store    store.Store
	provider *scoring.Provider
	hermes   hermes.Client
	logger   *slog.Logger
}

func NewProjectsHandler(s store.Store, p *scoring.Provider, h hermes.Client, logger *slog.Logger) *ProjectsHandler {
	return &ProjectsHandler{store: s, provider: p, hermes: h, logger: logger}
}

type ProjectRequest struct {
	Name        *string          `json:"name,omitempty"`
	Description *string          `json:"description,omitempty"`
	Inputs      cobit.UserInputs `json:"inputs,omitempty"`
}

// Create handles POST /api/v1/projects. Without inputs the project starts
// from the default input set.
func (h *ProjectsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req ProjectRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == nil || *req.Name == "" {
		writeError(w, http.StatusBadRequest, "name required")
		return
	}

	p := &store.Project{Name: *req.Name, Inputs: req.Inputs}
	if req.Description != nil {
		p.Description = *req.Description
	}
	if p.Inputs == nil {
		p.Inputs = cobit.DefaultInputs(h.provider.Registry())
	}

	if err := h.store.CreateProject(r.Context(), p); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	h.saved(p)
	writeJSON(w, http.StatusCreated, p)
}

// List handles GET /api/v1/projects
func (h *ProjectsHandler) List(w http.ResponseWriter, r *http.Request) {
	projects, err := h.store.ListProjects(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if projects == nil {
		projects = []*store.Project{}
	}
	writeJSON(w, http.StatusOK, projects)
}

// Get handles GET /api/v1/projects/{id}
func (h *ProjectsHandler) Get(w http.ResponseWriter, r *http.Request) {
	p, ok := h.load(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// Update handles PUT /api/v1/projects/{id}. Omitted fields keep their
// stored values; inputs are replaced as a whole.
func (h *ProjectsHandler) Update(w http.ResponseWriter, r *http.Request) {
	p, ok := h.load(w, r)
	if !ok {
		return
	}
	var req ProjectRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name != nil {
		if *req.Name == "" {
			writeError(w, http.StatusBadRequest, "name must not be empty")
			return
		}
		p.Name = *req.Name
	}
	if req.Description != nil {
		p.Description = *req.Description
	}
	if req.Inputs != nil {
		p.Inputs = req.Inputs
	}

	if err := h.store.UpdateProject(r.Context(), p); err != nil {
		writeStoreError(w, err, "project not found")
		return
	}
	h.saved(p)
	writeJSON(w, http.StatusOK, p)
}

// Delete handles DELETE /api/v1/projects/{id}
func (h *ProjectsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.store.DeleteProject(r.Context(), id); err != nil {
		writeStoreError(w, err, "project not found")
		return
	}
	hermes.Emit(h.hermes, h.logger, hermes.SubjectProjectDeleted(id), hermes.ProjectDeletedEvent{ProjectID: id})
	w.WriteHeader(http.StatusNoContent)
}

// GetCanvas handles GET /api/v1/projects/{id}/canvas
func (h *ProjectsHandler) GetCanvas(w http.ResponseWriter, r *http.Request) {
	c, err := h.store.GetCanvas(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeStoreError(w, err, "project not found")
		return
	}
	if c == nil {
		c = cobit.CanvasInputs{}
	}
	writeJSON(w, http.StatusOK, c)
}

// SaveCanvas handles PUT /api/v1/projects/{id}/canvas. The body replaces
// every stored canvas override of the project.
func (h *ProjectsHandler) SaveCanvas(w http.ResponseWriter, r *http.Request) {
	var c cobit.CanvasInputs
	if err := decodeJSON(w, r, &c); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := c.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if c == nil {
		c = cobit.CanvasInputs{}
	}
	if err := h.store.SaveCanvas(r.Context(), chi.URLParam(r, "id"), c); err != nil {
		writeStoreError(w, err, "project not found")
		return
	}
	writeJSON(w, http.StatusOK, c)
}

type CanvasReportRequest struct {
	FactorWeights scoring.FactorWeights `json:"factorWeights,omitempty"`
	Session       cobit.CanvasInputs    `json:"session,omitempty"`
}

// CanvasReport handles POST /api/v1/projects/{id}/canvas/report. It scores
// the saved inputs with the saved canvas overrides, plus any unsaved
// session edits from the body.
func (h *ProjectsHandler) CanvasReport(w http.ResponseWriter, r *http.Request) {
	p, ok := h.load(w, r)
	if !ok {
		return
	}
	var req CanvasReportRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := req.Session.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	stored, err := h.store.GetCanvas(r.Context(), p.ID)
	if err != nil {
		writeStoreError(w, err, "project not found")
		return
	}
	writeJSON(w, http.StatusOK, canvasReport(h.provider.Engine(), p.Inputs, req.FactorWeights, stored, req.Session))
}

// Export handles GET /api/v1/projects/{id}/export
func (h *ProjectsHandler) Export(w http.ResponseWriter, r *http.Request) {
	b, err := store.ExportProject(r.Context(), h.store, chi.URLParam(r, "id"), time.Now())
	if err != nil {
		writeStoreError(w, err, "project not found")
		return
	}
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="govdesign-project-%s.json"`, b.Project.ID))
	writeJSON(w, http.StatusOK, b)
}

func (h *ProjectsHandler) load(w http.ResponseWriter, r *http.Request) (*store.Project, bool) {
	p, err := h.store.GetProject(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return nil, false
	}
	if p == nil {
		writeError(w, http.StatusNotFound, "project not found")
		return nil, false
	}
	return p, true
}

func (h *ProjectsHandler) saved(p *store.Project) {
	metrics.ProjectsSaved.Inc()
	hermes.Emit(h.hermes, h.logger, hermes.SubjectProjectSaved(p.ID), hermes.ProjectSavedEvent{
		ProjectID: p.ID,
		Name:      p.Name,
		Version:   p.Version,
		UpdatedAt: p.UpdatedAt,
	})
}

func writeStoreError(w http.ResponseWriter, err error, notFound string) {
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, notFound)
		return
	}
	writeError(w, http.StatusInternalServerError, err.Error())
}
