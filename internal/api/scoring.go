package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/MikeSquared-Agency/GovDesign/internal/cobit"
	"github.com/MikeSquared-Agency/GovDesign/internal/metrics"
	"github.com/MikeSquared-Agency/GovDesign/internal/scoring"
)

// ScoringHandler runs stateless scoring passes over inputs supplied by the
// caller. Every pass uses one engine, bound to one weight snapshot.
type ScoringHandler struct {
	provider *scoring.Provider
}

func NewScoringHandler(p *scoring.Provider) *ScoringHandler {
	return &ScoringHandler{provider: p}
}

// Score handles POST /api/v1/score/{factorId}
func (h *ScoringHandler) Score(w http.ResponseWriter, r *http.Request) {
	factorID := chi.URLParam(r, "factorId")
	if _, ok := h.provider.Registry().Factor(factorID); !ok {
		writeError(w, http.StatusNotFound, "unknown factor")
		return
	}
	var inputs cobit.UserInputs
	if err := decodeJSON(w, r, &inputs); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	start := time.Now()
	results := h.provider.Engine().ScoreFactor(inputs, factorID)
	metrics.ObserveScoring("factor", start)
	writeJSON(w, http.StatusOK, results)
}

type ScopeRequest struct {
	Inputs        cobit.UserInputs      `json:"inputs"`
	FactorWeights scoring.FactorWeights `json:"factorWeights,omitempty"`
}

// InitialScope handles POST /api/v1/scope/initial
func (h *ScoringHandler) InitialScope(w http.ResponseWriter, r *http.Request) {
	h.scope(w, r, "initial_scope", (*scoring.Engine).InitialScope)
}

// RefinedScope handles POST /api/v1/scope/refined
func (h *ScoringHandler) RefinedScope(w http.ResponseWriter, r *http.Request) {
	h.scope(w, r, "refined_scope", (*scoring.Engine).RefinedScope)
}

func (h *ScoringHandler) scope(w http.ResponseWriter, r *http.Request, kind string,
	run func(*scoring.Engine, cobit.UserInputs, scoring.FactorWeights) []scoring.ScoreResult) {
	var req ScopeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	e := h.provider.Engine()
	if req.FactorWeights == nil {
		req.FactorWeights = scoring.DefaultFactorWeights(e.Registry())
	}

	start := time.Now()
	results := run(e, req.Inputs, req.FactorWeights)
	metrics.ObserveScoring(kind, start)
	writeJSON(w, http.StatusOK, results)
}

type CapabilityRequest struct {
	RefinedScope float64 `json:"refinedScope"`
	Adjustment   float64 `json:"adjustment"`
}

type CapabilityResponse struct {
	ConcludedScope      float64 `json:"concludedScope"`
	SuggestedCapability int     `json:"suggestedCapability"`
}

// Capability handles POST /api/v1/capability
func (h *ScoringHandler) Capability(w http.ResponseWriter, r *http.Request) {
	var req CapabilityRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	start := time.Now()
	concluded, level := h.provider.Engine().SuggestedCapability(req.RefinedScope, req.Adjustment)
	metrics.ObserveScoring("capability", start)
	writeJSON(w, http.StatusOK, CapabilityResponse{ConcludedScope: concluded, SuggestedCapability: level})
}

// Stats handles POST /api/v1/stats/{factorId}
func (h *ScoringHandler) Stats(w http.ResponseWriter, r *http.Request) {
	factorID := chi.URLParam(r, "factorId")
	if _, ok := h.provider.Registry().Factor(factorID); !ok {
		writeError(w, http.StatusNotFound, "unknown factor")
		return
	}
	var inputs cobit.UserInputs
	if err := decodeJSON(w, r, &inputs); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	start := time.Now()
	summary := h.provider.Engine().FactorSummary(inputs, factorID)
	metrics.ObserveScoring("stats", start)
	writeJSON(w, http.StatusOK, summary)
}

type CanvasRequest struct {
	Inputs        cobit.UserInputs      `json:"inputs"`
	FactorWeights scoring.FactorWeights `json:"factorWeights,omitempty"`
	Stored        cobit.CanvasInputs    `json:"stored,omitempty"`
	Session       cobit.CanvasInputs    `json:"session,omitempty"`
}

// Canvas handles POST /api/v1/canvas
func (h *ScoringHandler) Canvas(w http.ResponseWriter, r *http.Request) {
	var req CanvasRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := req.Stored.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := req.Session.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, canvasReport(h.provider.Engine(), req.Inputs, req.FactorWeights, req.Stored, req.Session))
}

func canvasReport(e *scoring.Engine, inputs cobit.UserInputs, fw scoring.FactorWeights, stored, session cobit.CanvasInputs) scoring.CanvasReport {
	start := time.Now()
	report := e.Canvas(inputs, fw, stored, session)
	metrics.ObserveScoring("canvas", start)
	return report
}
