package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	models "docforge/internal/domain/models/docstore"
	docstoreRepo "docforge/internal/domain/repositories/docstore"
	"docforge/internal/httputil"
)

// SearchHandler serves body search over current document versions.
type SearchHandler struct {
	repo   docstoreRepo.Repository
	logger *slog.Logger
}

func NewSearchHandler(repo docstoreRepo.Repository, logger *slog.Logger) *SearchHandler {
	return &SearchHandler{repo: repo, logger: logger}
}

// Search runs a body search
// GET /api/search?q=term&limit=50&language=english
func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	opts := models.SearchOptions{
		Term:     r.URL.Query().Get("q"),
		Language: r.URL.Query().Get("language"),
	}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			httputil.RespondError(w, http.StatusBadRequest, "limit must be an integer")
			return
		}
		opts.Limit = limit
	}
	if opts.Term == "" {
		httputil.RespondError(w, http.StatusBadRequest, "q is required")
		return
	}

	results, err := h.repo.SearchDocumentsByBody(r.Context(), opts)
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, results)
}
