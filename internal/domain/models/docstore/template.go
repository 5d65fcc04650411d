package docstore

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Template is a reusable starting point for new document nodes.
type Template struct {
	ID           string    `json:"id" db:"id"`
	Title        string    `json:"title" db:"title"`
	Content      string    `json:"content" db:"content"`
	DocType      string    `json:"doc_type" db:"doc_type"`
	LanguageHint string    `json:"language_hint" db:"language_hint"`
	SortOrder    int       `json:"sort_order" db:"sort_order"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// Validate checks required template fields.
func (t Template) Validate() error {
	return validation.ValidateStruct(&t,
		validation.Field(&t.Title, validation.Required, validation.Length(1, 256)),
	)
}

// Settings is the flat key-value map persisted per instance. Persistent
// storage keeps one row per key; the ephemeral backend keeps one JSON
// blob.
type Settings map[string]string
