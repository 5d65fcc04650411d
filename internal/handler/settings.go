package handler

import (
	"log/slog"
	"net/http"

	models "docforge/internal/domain/models/docstore"
	docstoreRepo "docforge/internal/domain/repositories/docstore"
	"docforge/internal/httputil"
)

// SettingsHandler serves the instance-wide key-value settings.
type SettingsHandler struct {
	repo   docstoreRepo.Repository
	logger *slog.Logger
}

func NewSettingsHandler(repo docstoreRepo.Repository, logger *slog.Logger) *SettingsHandler {
	return &SettingsHandler{repo: repo, logger: logger}
}

// GetSettings returns the full settings map
// GET /api/settings
func (h *SettingsHandler) GetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.repo.GetSettings(r.Context())
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, settings)
}

// SaveSettings upserts the submitted keys
// PATCH /api/settings
func (h *SettingsHandler) SaveSettings(w http.ResponseWriter, r *http.Request) {
	var settings models.Settings
	if err := httputil.ParseJSON(w, r, &settings); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.repo.SaveSettings(r.Context(), settings); err != nil {
		handleError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
