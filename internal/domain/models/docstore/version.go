package docstore

import "time"

// Version is one point in a document's append-only content history.
// It references its content by hash; the blob itself lives in the
// content store.
type Version struct {
	VersionID   string    `json:"version_id" db:"version_id"`
	DocumentID  string    `json:"document_id" db:"document_id"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	ContentHash string    `json:"content_hash" db:"content_hash"`
}

// ContentBlob is an immutable, hash-addressed unit of stored content.
// Identical text written any number of times occupies one blob. Blobs
// are retained even when no version references them; there is no
// garbage collection.
type ContentBlob struct {
	ContentHash string `json:"content_hash" db:"content_hash"`
	TextContent string `json:"text_content" db:"text_content"`
	BlobContent []byte `json:"blob_content,omitempty" db:"blob_content"`
}
