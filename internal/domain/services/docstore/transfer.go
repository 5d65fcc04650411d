package docstore

import (
	"context"

	models "docforge/internal/domain/models/docstore"
)

// ExportOptions controls what ExportSelection puts into the payload.
type ExportOptions struct {
	IncludeHistory        bool `json:"include_history"`
	IncludePythonSettings bool `json:"include_python_settings"`
}

// TransferService serializes subtrees for drag-drop, clipboard export,
// and cross-instance import, and re-materializes payloads as fresh
// nodes.
type TransferService interface {
	// ExportSelection serializes the selected subtrees. Ids whose
	// ancestor chain contains another selected id are dropped first, so
	// selecting a folder and one of its children exports the folder's
	// subtree once. Returns nil when nothing exportable remains.
	ExportSelection(ctx context.Context, selectedIDs []string, opts ExportOptions) (*models.TransferPayload, error)

	// ImportPayload re-materializes each serialized node as a brand-new
	// node under the position derived from targetID/position, and
	// returns the created root-level ids for post-import selection.
	ImportPayload(ctx context.Context, payload *models.TransferPayload, targetID *string, position models.MovePosition) ([]string, error)
}
