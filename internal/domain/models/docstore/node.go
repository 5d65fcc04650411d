package docstore

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// NodeType discriminates folder and document entries in the tree.
type NodeType string

const (
	NodeTypeFolder   NodeType = "folder"
	NodeTypeDocument NodeType = "document"
)

// MovePosition describes where a batch of dragged nodes lands relative
// to the drop target.
type MovePosition string

const (
	MoveBefore MovePosition = "before"
	MoveAfter  MovePosition = "after"
	MoveInside MovePosition = "inside"
)

// Node is a single entry in the hierarchical tree. SortOrder is
// parent-relative and kept contiguous (0..n-1) among siblings.
type Node struct {
	ID        string    `json:"id" db:"id"`
	ParentID  *string   `json:"parent_id" db:"parent_id"` // NULL = root level
	NodeType  NodeType  `json:"node_type" db:"node_type"`
	Title     string    `json:"title" db:"title"`
	SortOrder int       `json:"sort_order" db:"sort_order"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// NodeDraft carries the caller-supplied fields for AddNode. Everything
// else (id, sort order, timestamps) is assigned by the repository.
type NodeDraft struct {
	ParentID *string  `json:"parent_id"`
	NodeType NodeType `json:"node_type"`
	Title    string   `json:"title"`
	// Content seeds the first version for document nodes. Ignored for folders.
	Content string `json:"content"`
	// Classification overrides. When nil the repository classifies Content.
	DocType      *string `json:"doc_type"`
	LanguageHint *string `json:"language_hint"`
	// Sources for supplied overrides; empty means "user". Transfer import
	// passes "imported" for values it trusts from the payload.
	DocTypeSource   ClassificationSource `json:"doc_type_source,omitempty"`
	LanguageSource  ClassificationSource `json:"language_source,omitempty"`
	DefaultViewMode *string              `json:"default_view_mode,omitempty"`
}

// Validate checks required draft fields.
func (d NodeDraft) Validate() error {
	return validation.ValidateStruct(&d,
		validation.Field(&d.Title, validation.Required, validation.Length(1, 512)),
		validation.Field(&d.NodeType, validation.Required,
			validation.In(NodeTypeFolder, NodeTypeDocument)),
	)
}

// NodePatch carries optional updates for UpdateNode. Nil fields are left
// untouched.
type NodePatch struct {
	Title           *string `json:"title"`
	DocType         *string `json:"doc_type"`
	LanguageHint    *string `json:"language_hint"`
	DefaultViewMode *string `json:"default_view_mode"`
}

// NodeTreeItem is the nested view of a node returned by GetNodeTree.
// Children are ordered by SortOrder.
type NodeTreeItem struct {
	Node
	Document *Document       `json:"document,omitempty"`
	Children []*NodeTreeItem `json:"children"`
}
