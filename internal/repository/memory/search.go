package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"

	models "docforge/internal/domain/models/docstore"
	svc "docforge/internal/service/docstore"
)

// SearchDocumentsByBody scans titles and current version bodies with a
// case-insensitive substring match. This backend has no ranked path, so
// the substring scan is the whole search; results carry rank zero and
// come back in tree order for stability.
func (r *Repository) SearchDocumentsByBody(ctx context.Context, opts models.SearchOptions) ([]models.SearchResult, error) {
	opts.ApplyDefaults()
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("invalid search options: %w", err)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	term := strings.ToLower(opts.Term)

	type candidate struct {
		node *models.Node
		body string
	}
	var matches []candidate
	for nodeID, doc := range r.documents {
		node, ok := r.nodes[nodeID]
		if !ok {
			continue
		}
		body := ""
		if doc.CurrentVersionID != nil {
			for _, v := range r.versions[doc.DocumentID] {
				if v.VersionID == *doc.CurrentVersionID {
					body = v.Content
					break
				}
			}
		}
		if strings.Contains(strings.ToLower(node.Title), term) ||
			strings.Contains(strings.ToLower(body), term) {
			matches = append(matches, candidate{node: node, body: body})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].node.SortOrder != matches[j].node.SortOrder {
			return matches[i].node.SortOrder < matches[j].node.SortOrder
		}
		return matches[i].node.ID < matches[j].node.ID
	})

	results := []models.SearchResult{}
	for _, m := range matches {
		if len(results) >= opts.Limit {
			break
		}
		results = append(results, models.SearchResult{
			NodeID:  m.node.ID,
			Title:   m.node.Title,
			Snippet: svc.BuildSnippet(m.body, opts.Term, m.node.Title),
		})
	}
	return results, nil
}
