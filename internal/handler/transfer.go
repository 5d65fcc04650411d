package handler

import (
	"log/slog"
	"net/http"

	models "docforge/internal/domain/models/docstore"
	docstoreSvc "docforge/internal/domain/services/docstore"
	"docforge/internal/httputil"
)

// TransferHandler serves export and import of serialized subtrees.
type TransferHandler struct {
	transfer docstoreSvc.TransferService
	logger   *slog.Logger
}

func NewTransferHandler(transfer docstoreSvc.TransferService, logger *slog.Logger) *TransferHandler {
	return &TransferHandler{transfer: transfer, logger: logger}
}

// Export serializes the selected subtrees
// POST /api/transfer/export
func (h *TransferHandler) Export(w http.ResponseWriter, r *http.Request) {
	var req struct {
		IDs     []string                 `json:"ids"`
		Options docstoreSvc.ExportOptions `json:"options"`
	}
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if len(req.IDs) == 0 {
		httputil.RespondError(w, http.StatusBadRequest, "ids are required")
		return
	}

	payload, err := h.transfer.ExportSelection(r.Context(), req.IDs, req.Options)
	if err != nil {
		handleError(w, err)
		return
	}
	if payload == nil {
		httputil.RespondError(w, http.StatusNotFound, "nothing exportable in selection")
		return
	}
	httputil.RespondJSON(w, http.StatusOK, payload)
}

// Import re-materializes a payload as fresh nodes
// POST /api/transfer/import
func (h *TransferHandler) Import(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Payload  *models.TransferPayload `json:"payload"`
		TargetID *string                 `json:"target_id"`
		Position models.MovePosition     `json:"position"`
	}
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Payload == nil {
		httputil.RespondError(w, http.StatusBadRequest, "payload is required")
		return
	}
	if req.Position == "" {
		req.Position = models.MoveInside
	}

	rootIDs, err := h.transfer.ImportPayload(r.Context(), req.Payload, req.TargetID, req.Position)
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusCreated, map[string]interface{}{
		"root_ids": rootIDs,
	})
}
