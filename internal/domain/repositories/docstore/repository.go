package docstore

import (
	"context"

	models "docforge/internal/domain/models/docstore"
)

// Repository is the single contract shared by both storage backends:
// the persistent one (relational engine reached through pgx) and the
// ephemeral in-process mirror used when no engine is available.
//
// The repository assumes one logical writer issuing one mutation at a
// time; overlapping mutations are not serialized here and can corrupt
// sibling ordering. Reads may run concurrently with each other.
//
// Tree mutations on unknown node ids are silent no-ops, not errors.
type Repository interface {
	// Init performs one-time startup work: schema/migration on the
	// persistent backend, snapshot restore on the ephemeral one, and
	// default-template seeding on both. Calling it again is a no-op.
	Init(ctx context.Context) error

	// GetNodeTree returns the full tree, children ordered by sort order.
	GetNodeTree(ctx context.Context) ([]*models.NodeTreeItem, error)

	// AddNode creates a node at the end of the target sibling list.
	// Document drafts get a document row and, when Content is non-empty,
	// an initial version.
	AddNode(ctx context.Context, draft models.NodeDraft) (*models.Node, error)

	// UpdateNode applies the non-nil patch fields. Classification fields
	// set through the patch are recorded with source "user".
	UpdateNode(ctx context.Context, id string, patch models.NodePatch) error

	// DeleteNodes removes the nodes and all their descendants, including
	// document rows and version chains. Shared content blobs are kept.
	DeleteNodes(ctx context.Context, ids []string) error

	// DuplicateNodes deep-copies each selected subtree with fresh node,
	// document, and version ids, and returns the new root ids. Version
	// chains are cloned; content is shared where the backend deduplicates.
	DuplicateNodes(ctx context.Context, ids []string) ([]string, error)

	// MoveNodes removes the dragged nodes from their sibling lists and
	// reinserts the batch at the computed target position. A target that
	// sits inside a dragged subtree makes the whole move a no-op.
	MoveNodes(ctx context.Context, ids []string, targetID *string, position models.MovePosition) error

	// GetDocumentContent returns the text of the document's current
	// version, or empty when the chain is empty.
	GetDocumentContent(ctx context.Context, nodeID string) (string, error)

	// UpdateDocumentContent appends a new version holding content and
	// points the document at it.
	UpdateDocumentContent(ctx context.Context, nodeID, content string) (*models.Version, error)

	// GetVersionsForNode lists the document's versions, newest first.
	GetVersionsForNode(ctx context.Context, nodeID string) ([]models.Version, error)

	// GetVersionContent returns the text stored for a single version.
	GetVersionContent(ctx context.Context, versionID string) (string, error)

	// DeleteDocVersions removes the named versions from the chain.
	// Unknown version ids are ignored. The document's current version is
	// recomputed as the newest remaining one, or nil when none remain.
	DeleteDocVersions(ctx context.Context, nodeID string, versionIDs []string) error

	// SearchDocumentsByBody runs the ranked full-text path and degrades
	// to a case-insensitive substring scan when that path fails.
	SearchDocumentsByBody(ctx context.Context, opts models.SearchOptions) ([]models.SearchResult, error)

	// Templates
	ListTemplates(ctx context.Context) ([]models.Template, error)
	SaveTemplate(ctx context.Context, tpl *models.Template) error
	DeleteTemplate(ctx context.Context, id string) error

	// Settings
	GetSettings(ctx context.Context) (models.Settings, error)
	SaveSettings(ctx context.Context, settings models.Settings) error

	// SupportsContentDedup reports whether identical content shares one
	// blob. True for the persistent backend; the ephemeral backend keeps
	// a copy per version on purpose.
	SupportsContentDedup() bool

	// Close releases backend resources.
	Close()
}
