package docstore

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Transfer payload schema identifiers. The payload crosses process
// boundaries (drag-drop, clipboard, file import), so the schema is
// versioned explicitly.
const (
	TransferSchema        = "docforge/nodes"
	TransferSchemaVersion = 1
)

// TransferOptions records what the exporter chose to include.
type TransferOptions struct {
	IncludeHistory        bool `json:"includeHistory"`
	IncludePythonSettings bool `json:"includePythonSettings"`
}

// TransferPayload is the serialized subtree format used for drag-drop,
// clipboard export, and cross-instance import.
type TransferPayload struct {
	Schema     string           `json:"schema"`
	Version    int              `json:"version"`
	ExportedAt time.Time        `json:"exportedAt"`
	Nodes      []SerializedNode `json:"nodes"`
	Options    TransferOptions  `json:"options"`
}

// Validate rejects payloads from unknown schemas or versions before any
// node is materialized.
func (p TransferPayload) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Schema, validation.Required, validation.In(TransferSchema)),
		validation.Field(&p.Version, validation.Required, validation.In(TransferSchemaVersion)),
		validation.Field(&p.Nodes, validation.Required),
	)
}

// SerializedNode is one exported node. Children nest recursively;
// Versions are present only when the exporter supplied history for the
// node.
type SerializedNode struct {
	Type                    string              `json:"type"`
	Title                   string              `json:"title"`
	Content                 *string             `json:"content,omitempty"`
	DocType                 *string             `json:"doc_type,omitempty"`
	LanguageHint            *string             `json:"language_hint,omitempty"`
	DefaultViewMode         *string             `json:"default_view_mode,omitempty"`
	LanguageSource          *string             `json:"language_source,omitempty"`
	DocTypeSource           *string             `json:"doc_type_source,omitempty"`
	ClassificationUpdatedAt *string             `json:"classification_updated_at,omitempty"`
	Children                []SerializedNode    `json:"children,omitempty"`
	Versions                []SerializedVersion `json:"versions,omitempty"`
}

// SerializedVersion is a normalized history entry. Entries with empty
// content are filtered out at export time.
type SerializedVersion struct {
	VersionID string    `json:"version_id"`
	CreatedAt time.Time `json:"created_at"`
	Content   string    `json:"content"`
}
