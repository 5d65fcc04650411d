package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"docforge/internal/domain"
	models "docforge/internal/domain/models/docstore"
)

// appendVersionLocked appends a version holding its own content copy
// and points the document at it. Caller holds the write lock.
func (r *Repository) appendVersionLocked(doc *models.Document, content string, now time.Time) *models.Version {
	version := storedVersion{
		Version: models.Version{
			VersionID:  uuid.NewString(),
			DocumentID: doc.DocumentID,
			CreatedAt:  now,
		},
		Content: content,
	}
	r.versions[doc.DocumentID] = append(r.versions[doc.DocumentID], version)
	current := version.VersionID
	doc.CurrentVersionID = &current
	return &version.Version
}

// UpdateDocumentContent appends a new version for the node's document.
func (r *Repository) UpdateDocumentContent(ctx context.Context, nodeID, content string) (*models.Version, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	doc, ok := r.documents[nodeID]
	if !ok {
		return nil, fmt.Errorf("document for node %s: %w", nodeID, domain.ErrNotFound)
	}

	now := time.Now().UTC()
	version := r.appendVersionLocked(doc, content, now)
	if node, exists := r.nodes[nodeID]; exists {
		node.UpdatedAt = now
	}

	r.persistLocked(ctx)
	returned := *version
	return &returned, nil
}

// GetDocumentContent returns the current version's text, or empty when
// the version chain is empty.
func (r *Repository) GetDocumentContent(ctx context.Context, nodeID string) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	doc, ok := r.documents[nodeID]
	if !ok {
		return "", fmt.Errorf("document for node %s: %w", nodeID, domain.ErrNotFound)
	}
	if doc.CurrentVersionID == nil {
		return "", nil
	}
	for _, v := range r.versions[doc.DocumentID] {
		if v.VersionID == *doc.CurrentVersionID {
			return v.Content, nil
		}
	}
	return "", nil
}

// GetVersionsForNode lists the document's version chain, newest first.
func (r *Repository) GetVersionsForNode(ctx context.Context, nodeID string) ([]models.Version, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	doc, ok := r.documents[nodeID]
	if !ok {
		return nil, fmt.Errorf("document for node %s: %w", nodeID, domain.ErrNotFound)
	}

	stored := r.versions[doc.DocumentID]
	versions := make([]models.Version, 0, len(stored))
	for _, v := range stored {
		versions = append(versions, v.Version)
	}
	sort.SliceStable(versions, func(i, j int) bool {
		if !versions[i].CreatedAt.Equal(versions[j].CreatedAt) {
			return versions[i].CreatedAt.After(versions[j].CreatedAt)
		}
		return versions[i].VersionID > versions[j].VersionID
	})
	return versions, nil
}

// GetVersionContent returns the text stored for one version.
func (r *Repository) GetVersionContent(ctx context.Context, versionID string) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, chain := range r.versions {
		for _, v := range chain {
			if v.VersionID == versionID {
				return v.Content, nil
			}
		}
	}
	return "", fmt.Errorf("version %s: %w", versionID, domain.ErrNotFound)
}

// DeleteDocVersions removes the named versions from the node's chain.
// Unknown version ids match nothing. The current-version pointer is
// recomputed as the newest remaining version, or nil when none remain.
func (r *Repository) DeleteDocVersions(ctx context.Context, nodeID string, versionIDs []string) error {
	if len(versionIDs) == 0 {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	doc, ok := r.documents[nodeID]
	if !ok {
		return fmt.Errorf("document for node %s: %w", nodeID, domain.ErrNotFound)
	}

	doomed := make(map[string]bool, len(versionIDs))
	for _, id := range versionIDs {
		doomed[id] = true
	}

	remaining := r.versions[doc.DocumentID][:0]
	for _, v := range r.versions[doc.DocumentID] {
		if !doomed[v.VersionID] {
			remaining = append(remaining, v)
		}
	}
	r.versions[doc.DocumentID] = remaining

	doc.CurrentVersionID = nil
	var newest *storedVersion
	for i := range remaining {
		v := &remaining[i]
		if newest == nil ||
			v.CreatedAt.After(newest.CreatedAt) ||
			(v.CreatedAt.Equal(newest.CreatedAt) && v.VersionID > newest.VersionID) {
			newest = v
		}
	}
	if newest != nil {
		current := newest.VersionID
		doc.CurrentVersionID = &current
	}

	r.persistLocked(ctx)
	return nil
}
