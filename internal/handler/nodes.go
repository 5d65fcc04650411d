package handler

import (
	"log/slog"
	"net/http"
	"time"

	models "docforge/internal/domain/models/docstore"
	docstoreRepo "docforge/internal/domain/repositories/docstore"
	"docforge/internal/httputil"
)

// NodeHandler serves the tree endpoints: read, create, rename, move,
// duplicate, delete.
type NodeHandler struct {
	repo   docstoreRepo.Repository
	logger *slog.Logger
}

func NewNodeHandler(repo docstoreRepo.Repository, logger *slog.Logger) *NodeHandler {
	return &NodeHandler{repo: repo, logger: logger}
}

// GetTree returns the nested folder/document tree
// GET /api/tree
func (h *NodeHandler) GetTree(w http.ResponseWriter, r *http.Request) {
	tree, err := h.repo.GetNodeTree(r.Context())
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, tree)
}

// AddNode creates a node at the end of the target sibling list
// POST /api/nodes
func (h *NodeHandler) AddNode(w http.ResponseWriter, r *http.Request) {
	var draft models.NodeDraft
	if err := httputil.ParseJSON(w, r, &draft); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	node, err := h.repo.AddNode(r.Context(), draft)
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusCreated, node)
}

// UpdateNode applies a partial update to a node and its document fields
// PATCH /api/nodes/{id}
func (h *NodeHandler) UpdateNode(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		httputil.RespondError(w, http.StatusBadRequest, "node id is required")
		return
	}

	var patch models.NodePatch
	if err := httputil.ParseJSON(w, r, &patch); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.repo.UpdateNode(r.Context(), id, patch); err != nil {
		handleError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeleteNodes removes a selection of subtrees
// POST /api/nodes/delete
func (h *NodeHandler) DeleteNodes(w http.ResponseWriter, r *http.Request) {
	var req struct {
		IDs []string `json:"ids"`
	}
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if len(req.IDs) == 0 {
		httputil.RespondError(w, http.StatusBadRequest, "ids are required")
		return
	}

	if err := h.repo.DeleteNodes(r.Context(), req.IDs); err != nil {
		handleError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// MoveNodes reinserts a dragged batch relative to a drop target
// POST /api/nodes/move
func (h *NodeHandler) MoveNodes(w http.ResponseWriter, r *http.Request) {
	var req struct {
		IDs      []string            `json:"ids"`
		TargetID *string             `json:"target_id"`
		Position models.MovePosition `json:"position"`
	}
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if len(req.IDs) == 0 {
		httputil.RespondError(w, http.StatusBadRequest, "ids are required")
		return
	}
	switch req.Position {
	case models.MoveBefore, models.MoveAfter, models.MoveInside:
	default:
		httputil.RespondError(w, http.StatusBadRequest, "position must be before, after, or inside")
		return
	}

	if err := h.repo.MoveNodes(r.Context(), req.IDs, req.TargetID, req.Position); err != nil {
		handleError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DuplicateNodes deep-copies a selection of subtrees
// POST /api/nodes/duplicate
func (h *NodeHandler) DuplicateNodes(w http.ResponseWriter, r *http.Request) {
	var req struct {
		IDs []string `json:"ids"`
	}
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if len(req.IDs) == 0 {
		httputil.RespondError(w, http.StatusBadRequest, "ids are required")
		return
	}

	rootIDs, err := h.repo.DuplicateNodes(r.Context(), req.IDs)
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusCreated, map[string]interface{}{
		"root_ids": rootIDs,
	})
}

// HealthCheck is a simple liveness endpoint
// GET /health
func (h *NodeHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	httputil.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"status": "ok",
		"time":   time.Now().UTC(),
	})
}

// Capabilities reports backend feature flags to the client
// GET /api/capabilities
func (h *NodeHandler) Capabilities(w http.ResponseWriter, r *http.Request) {
	httputil.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"content_dedup": h.repo.SupportsContentDedup(),
	})
}
