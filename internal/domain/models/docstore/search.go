package docstore

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Default search configuration values
const (
	DefaultSearchLimit    = 50
	MaxSearchLimit        = 200
	DefaultSearchLanguage = "english"
)

// SearchOptions configures a body search over current document versions.
type SearchOptions struct {
	// Term is the raw user query (required).
	Term string

	// Limit caps the number of results (default: 50).
	Limit int

	// Language is the text search configuration used for stemming on the
	// ranked full-text path. Ignored by the substring fallback.
	Language string
}

// ApplyDefaults fills in default values for unset fields.
func (opts *SearchOptions) ApplyDefaults() {
	if opts.Limit <= 0 {
		opts.Limit = DefaultSearchLimit
	}
	if opts.Limit > MaxSearchLimit {
		opts.Limit = MaxSearchLimit
	}
	if opts.Language == "" {
		opts.Language = DefaultSearchLanguage
	}
}

// Validate checks that required fields are set.
func (opts SearchOptions) Validate() error {
	return validation.ValidateStruct(&opts,
		validation.Field(&opts.Term, validation.Required),
		validation.Field(&opts.Limit, validation.Min(0), validation.Max(MaxSearchLimit)),
	)
}

// SearchResult is a single search hit. Results are deduplicated by
// NodeID (first occurrence wins) and carry a body snippet built around
// the first match of the term.
type SearchResult struct {
	NodeID  string  `json:"node_id"`
	Title   string  `json:"title"`
	Snippet string  `json:"snippet"`
	Rank    float64 `json:"rank,omitempty"` // relevance score; zero on the fallback path
}
