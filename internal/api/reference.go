package api

import (
	"net/http"

	"github.com/MikeSquared-Agency/GovDesign/internal/cobit"
	"github.com/MikeSquared-Agency/GovDesign/internal/scoring"
)

// ReferenceHandler serves the fixed reference data a client needs to render
// input forms.
type ReferenceHandler struct {
	provider *scoring.Provider
}

func NewReferenceHandler(p *scoring.Provider) *ReferenceHandler {
	return &ReferenceHandler{provider: p}
}

type objectivesResponse struct {
	Domains    []cobit.Domain    `json:"domains"`
	Objectives []cobit.Objective `json:"objectives"`
}

// Objectives handles GET /api/v1/reference/objectives
func (h *ReferenceHandler) Objectives(w http.ResponseWriter, r *http.Request) {
	reg := h.provider.Registry()
	writeJSON(w, http.StatusOK, objectivesResponse{
		Domains:    reg.Domains(),
		Objectives: reg.Objectives(),
	})
}

// Factors handles GET /api/v1/reference/factors
func (h *ReferenceHandler) Factors(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.provider.Registry().Factors())
}

// Defaults handles GET /api/v1/reference/defaults. The result is the input
// set a new project starts from.
func (h *ReferenceHandler) Defaults(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, cobit.DefaultInputs(h.provider.Registry()))
}

// Baselines handles GET /api/v1/reference/baselines
func (h *ReferenceHandler) Baselines(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.provider.Engine().BaselineTable())
}
