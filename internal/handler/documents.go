package handler

import (
	"log/slog"
	"net/http"

	docstoreRepo "docforge/internal/domain/repositories/docstore"
	"docforge/internal/httputil"
)

// DocumentHandler serves document content and version-history
// endpoints.
type DocumentHandler struct {
	repo   docstoreRepo.Repository
	logger *slog.Logger
}

func NewDocumentHandler(repo docstoreRepo.Repository, logger *slog.Logger) *DocumentHandler {
	return &DocumentHandler{repo: repo, logger: logger}
}

// GetContent returns the current version's text
// GET /api/nodes/{id}/content
func (h *DocumentHandler) GetContent(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		httputil.RespondError(w, http.StatusBadRequest, "node id is required")
		return
	}

	content, err := h.repo.GetDocumentContent(r.Context(), id)
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, map[string]string{"content": content})
}

// UpdateContent appends a new version holding the submitted text
// PUT /api/nodes/{id}/content
func (h *DocumentHandler) UpdateContent(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		httputil.RespondError(w, http.StatusBadRequest, "node id is required")
		return
	}

	var req struct {
		Content string `json:"content"`
	}
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	version, err := h.repo.UpdateDocumentContent(r.Context(), id, req.Content)
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, version)
}

// ListVersions returns the document's version chain, newest first
// GET /api/nodes/{id}/versions
func (h *DocumentHandler) ListVersions(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		httputil.RespondError(w, http.StatusBadRequest, "node id is required")
		return
	}

	versions, err := h.repo.GetVersionsForNode(r.Context(), id)
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, versions)
}

// GetVersionContent returns the text stored for one version
// GET /api/versions/{id}/content
func (h *DocumentHandler) GetVersionContent(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		httputil.RespondError(w, http.StatusBadRequest, "version id is required")
		return
	}

	content, err := h.repo.GetVersionContent(r.Context(), id)
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, map[string]string{"content": content})
}

// DeleteVersions removes versions from the node's chain
// POST /api/nodes/{id}/versions/delete
func (h *DocumentHandler) DeleteVersions(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		httputil.RespondError(w, http.StatusBadRequest, "node id is required")
		return
	}

	var req struct {
		VersionIDs []string `json:"version_ids"`
	}
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if len(req.VersionIDs) == 0 {
		httputil.RespondError(w, http.StatusBadRequest, "version_ids are required")
		return
	}

	if err := h.repo.DeleteDocVersions(r.Context(), id, req.VersionIDs); err != nil {
		handleError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
