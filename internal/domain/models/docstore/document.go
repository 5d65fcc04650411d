package docstore

import (
	"time"
)

// ClassificationSource records where a doc_type or language_hint value
// came from. User-sourced values are never overwritten by heuristics.
type ClassificationSource string

const (
	SourceUser     ClassificationSource = "user"
	SourceAuto     ClassificationSource = "auto"
	SourceImported ClassificationSource = "imported"
	SourceUnknown  ClassificationSource = "unknown"
)

// Default view modes for document nodes.
const (
	ViewModeEdit    = "edit"
	ViewModePreview = "preview"
	ViewModeSplit   = "split"
)

// Document is the content-bearing specialization attached 1:1 to a
// document-type node. CurrentVersionID points at the newest version in
// the chain, or nil when every version has been deleted.
type Document struct {
	DocumentID              string               `json:"document_id" db:"document_id"`
	NodeID                  string               `json:"node_id" db:"node_id"`
	DocType                 string               `json:"doc_type" db:"doc_type"`
	LanguageHint            string               `json:"language_hint" db:"language_hint"`
	LanguageSource          ClassificationSource `json:"language_source" db:"language_source"`
	DocTypeSource           ClassificationSource `json:"doc_type_source" db:"doc_type_source"`
	ClassificationUpdatedAt *time.Time           `json:"classification_updated_at,omitempty" db:"classification_updated_at"`
	DefaultViewMode         string               `json:"default_view_mode" db:"default_view_mode"`
	CurrentVersionID        *string              `json:"current_version_id" db:"current_version_id"`
}
