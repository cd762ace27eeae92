package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/MikeSquared-Agency/GovDesign/internal/hermes"
	"github.com/MikeSquared-Agency/GovDesign/internal/scoring"
	"github.com/MikeSquared-Agency/GovDesign/internal/store"
	"github.com/MikeSquared-Agency/GovDesign/internal/weights"
)

// WeightsHandler administers weight configurations. Activation changes are
// applied to this instance immediately and announced so that other
// instances reload too.
type WeightsHandler struct {
	store    store.Store
	weights  *weights.Store
	provider *scoring.Provider
	hermes   hermes.Client
	logger   *slog.Logger
}

func NewWeightsHandler(s store.Store, ws *weights.Store, p *scoring.Provider, h hermes.Client, logger *slog.Logger) *WeightsHandler {
	return &WeightsHandler{store: s, weights: ws, provider: p, hermes: h, logger: logger}
}

type WeightConfigurationRequest struct {
	Name        *string          `json:"name,omitempty"`
	Description *string          `json:"description,omitempty"`
	Mappings    weights.Mappings `json:"mappings,omitempty"`
}

// weightConfigurationResponse carries the cells that will be ignored when
// the configuration is applied.
type weightConfigurationResponse struct {
	*store.WeightConfiguration
	Warnings []string `json:"warnings,omitempty"`
}

// List handles GET /api/v1/weights
func (h *WeightsHandler) List(w http.ResponseWriter, r *http.Request) {
	configs, err := h.store.ListWeightConfigurations(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if configs == nil {
		configs = []*store.WeightConfiguration{}
	}
	writeJSON(w, http.StatusOK, configs)
}

// Create handles POST /api/v1/weights. New configurations start inactive.
func (h *WeightsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req WeightConfigurationRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == nil || *req.Name == "" {
		writeError(w, http.StatusBadRequest, "name required")
		return
	}
	c := &store.WeightConfiguration{Name: *req.Name, Mappings: req.Mappings}
	if req.Description != nil {
		c.Description = *req.Description
	}

	if err := h.store.CreateWeightConfiguration(r.Context(), c); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, h.withWarnings(c))
}

// Get handles GET /api/v1/weights/{id}
func (h *WeightsHandler) Get(w http.ResponseWriter, r *http.Request) {
	c, ok := h.load(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, h.withWarnings(c))
}

// Update handles PUT /api/v1/weights/{id}. Mappings are replaced as a whole.
func (h *WeightsHandler) Update(w http.ResponseWriter, r *http.Request) {
	c, ok := h.load(w, r)
	if !ok {
		return
	}
	var req WeightConfigurationRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name != nil {
		if *req.Name == "" {
			writeError(w, http.StatusBadRequest, "name must not be empty")
			return
		}
		c.Name = *req.Name
	}
	if req.Description != nil {
		c.Description = *req.Description
	}
	if req.Mappings != nil {
		c.Mappings = req.Mappings
	}

	if err := h.store.UpdateWeightConfiguration(r.Context(), c); err != nil {
		writeStoreError(w, err, "weight configuration not found")
		return
	}
	if c.IsActive {
		h.apply(r.Context())
		hermes.Emit(h.hermes, h.logger, hermes.SubjectWeightsActivated(c.ID), hermes.WeightsActivatedEvent{
			ConfigID: c.ID, ConfigName: c.Name, ActivatedAt: c.UpdatedAt,
		})
	}
	writeJSON(w, http.StatusOK, h.withWarnings(c))
}

// Delete handles DELETE /api/v1/weights/{id}. Deleting the active
// configuration reverts scoring to the built-in weights.
func (h *WeightsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	c, ok := h.load(w, r)
	if !ok {
		return
	}
	if err := h.store.DeleteWeightConfiguration(r.Context(), c.ID); err != nil {
		writeStoreError(w, err, "weight configuration not found")
		return
	}
	if c.IsActive {
		h.apply(r.Context())
	}
	hermes.Emit(h.hermes, h.logger, hermes.SubjectWeightsDeleted(c.ID), hermes.WeightsDeletedEvent{
		ConfigID: c.ID, WasActive: c.IsActive,
	})
	w.WriteHeader(http.StatusNoContent)
}

// Activate handles POST /api/v1/weights/{id}/activate
func (h *WeightsHandler) Activate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.store.ActivateWeightConfiguration(r.Context(), id); err != nil {
		writeStoreError(w, err, "weight configuration not found")
		return
	}
	h.apply(r.Context())

	c, ok := h.load(w, r)
	if !ok {
		return
	}
	hermes.Emit(h.hermes, h.logger, hermes.SubjectWeightsActivated(c.ID), hermes.WeightsActivatedEvent{
		ConfigID: c.ID, ConfigName: c.Name, ActivatedAt: time.Now().UTC(),
	})
	writeJSON(w, http.StatusOK, h.withWarnings(c))
}

type activeWeightsResponse struct {
	Source        weights.Source             `json:"source"`
	Configuration *store.WeightConfiguration `json:"configuration"`
}

// Active handles GET /api/v1/weights/active. It reports the snapshot this
// instance scores with and the configuration marked active in the store.
func (h *WeightsHandler) Active(w http.ResponseWriter, r *http.Request) {
	c, err := h.store.GetActiveWeightConfiguration(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, activeWeightsResponse{
		Source:        h.weights.Snapshot().Source(),
		Configuration: c,
	})
}

// Deactivate handles DELETE /api/v1/weights/active
func (h *WeightsHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	if err := h.store.DeactivateWeightConfigurations(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	h.apply(r.Context())
	hermes.Emit(h.hermes, h.logger, hermes.SubjectWeightsDeactivated, hermes.WeightsDeactivatedEvent{
		DeactivatedAt: time.Now().UTC(),
	})
	w.WriteHeader(http.StatusNoContent)
}

type factorWeightsResponse struct {
	FactorID string         `json:"factorId"`
	Source   weights.Source `json:"source"`
	Weights  weights.Matrix `json:"weights"`
}

// FactorWeights handles GET /api/v1/weights/factors/{factorId}
func (h *WeightsHandler) FactorWeights(w http.ResponseWriter, r *http.Request) {
	factorID := chi.URLParam(r, "factorId")
	if _, ok := h.provider.Registry().Factor(factorID); !ok {
		writeError(w, http.StatusNotFound, "unknown factor")
		return
	}
	snap := h.weights.Snapshot()
	writeJSON(w, http.StatusOK, factorWeightsResponse{
		FactorID: factorID,
		Source:   snap.Source(),
		Weights:  snap.FactorWeights(factorID),
	})
}

func (h *WeightsHandler) load(w http.ResponseWriter, r *http.Request) (*store.WeightConfiguration, bool) {
	c, err := h.store.GetWeightConfiguration(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return nil, false
	}
	if c == nil {
		writeError(w, http.StatusNotFound, "weight configuration not found")
		return nil, false
	}
	return c, true
}

// apply reloads the local snapshot. A failure keeps the previous snapshot;
// the periodic refresh retries.
func (h *WeightsHandler) apply(ctx context.Context) {
	if err := h.weights.Refresh(ctx); err != nil {
		h.logger.Error("weight refresh failed", "error", err)
	}
}

func (h *WeightsHandler) withWarnings(c *store.WeightConfiguration) weightConfigurationResponse {
	_, warnings := weights.Overlay(h.weights.Builtin(), h.provider.Registry(), weights.Source{
		Kind:       weights.SourceConfiguration,
		ConfigID:   c.ID,
		ConfigName: c.Name,
	}, c.Mappings)
	return weightConfigurationResponse{WeightConfiguration: c, Warnings: warnings}
}
