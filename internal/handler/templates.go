package handler

import (
	"log/slog"
	"net/http"

	models "docforge/internal/domain/models/docstore"
	docstoreRepo "docforge/internal/domain/repositories/docstore"
	"docforge/internal/httputil"
)

// TemplateHandler serves the template catalog.
type TemplateHandler struct {
	repo   docstoreRepo.Repository
	logger *slog.Logger
}

func NewTemplateHandler(repo docstoreRepo.Repository, logger *slog.Logger) *TemplateHandler {
	return &TemplateHandler{repo: repo, logger: logger}
}

// ListTemplates returns the catalog ordered by sort order
// GET /api/templates
func (h *TemplateHandler) ListTemplates(w http.ResponseWriter, r *http.Request) {
	templates, err := h.repo.ListTemplates(r.Context())
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, templates)
}

// SaveTemplate creates or replaces a template
// PUT /api/templates
func (h *TemplateHandler) SaveTemplate(w http.ResponseWriter, r *http.Request) {
	var tpl models.Template
	if err := httputil.ParseJSON(w, r, &tpl); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.repo.SaveTemplate(r.Context(), &tpl); err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, tpl)
}

// DeleteTemplate removes a template
// DELETE /api/templates/{id}
func (h *TemplateHandler) DeleteTemplate(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		httputil.RespondError(w, http.StatusBadRequest, "template id is required")
		return
	}

	if err := h.repo.DeleteTemplate(r.Context(), id); err != nil {
		handleError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
