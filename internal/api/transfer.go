package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/MikeSquared-Agency/GovDesign/internal/hermes"
	"github.com/MikeSquared-Agency/GovDesign/internal/store"
	"github.com/MikeSquared-Agency/GovDesign/internal/weights"
)

// TransferHandler dumps and restores saved work.
type TransferHandler struct {
	store   store.Store
	weights *weights.Store
	hermes  hermes.Client
	logger  *slog.Logger
}

func NewTransferHandler(s store.Store, ws *weights.Store, h hermes.Client, logger *slog.Logger) *TransferHandler {
	return &TransferHandler{store: s, weights: ws, hermes: h, logger: logger}
}

// Export handles GET /api/v1/export
func (h *TransferHandler) Export(w http.ResponseWriter, r *http.Request) {
	b, err := store.Export(r.Context(), h.store, time.Now())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.Header().Set("Content-Disposition", `attachment; filename="govdesign-export.json"`)
	writeJSON(w, http.StatusOK, b)
}

// Import handles POST /api/v1/import. Records are upserted by id; imported
// weight configurations stay inactive unless they overwrite the active one,
// which is then reloaded and announced like an update.
func (h *TransferHandler) Import(w http.ResponseWriter, r *http.Request) {
	var b store.ExportBundle
	if err := decodeJSON(w, r, &b); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	res, err := store.Import(r.Context(), h.store, &b)
	if c := res.ActiveReplaced; c != nil {
		if rerr := h.weights.Refresh(r.Context()); rerr != nil {
			h.logger.Error("refresh weights after import", "error", rerr)
		}
		hermes.Emit(h.hermes, h.logger, hermes.SubjectWeightsActivated(c.ID), hermes.WeightsActivatedEvent{
			ConfigID: c.ID, ConfigName: c.Name, ActivatedAt: c.UpdatedAt,
		})
	}
	if err != nil {
		h.logger.Warn("import failed", "error", err, "projects", res.Projects, "weights", res.Weights)
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	h.logger.Info("import complete", "projects", res.Projects, "weights", res.Weights)
	writeJSON(w, http.StatusOK, res)
}
