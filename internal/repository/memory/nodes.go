package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"docforge/internal/domain"
	models "docforge/internal/domain/models/docstore"
	svc "docforge/internal/service/docstore"
)

// snapshotNodes returns a planner-ready copy of every node. The arena
// mutates what it is given, so the live maps are never handed over.
func (r *Repository) snapshotNodes() []*models.Node {
	nodes := make([]*models.Node, 0, len(r.nodes))
	for _, n := range r.nodes {
		copied := *n
		nodes = append(nodes, &copied)
	}
	return nodes
}

func (r *Repository) applySortUpdates(updates []svc.SortUpdate) {
	for _, u := range updates {
		if n, ok := r.nodes[u.ID]; ok {
			n.ParentID = u.ParentID
			n.SortOrder = u.SortOrder
		}
	}
}

// GetNodeTree returns the nested tree, siblings ordered by sort order.
func (r *Repository) GetNodeTree(ctx context.Context) ([]*models.NodeTreeItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	nodes := r.snapshotNodes()
	sort.SliceStable(nodes, func(i, j int) bool {
		return nodes[i].SortOrder < nodes[j].SortOrder
	})

	items := make(map[string]*models.NodeTreeItem, len(nodes))
	for _, n := range nodes {
		var doc *models.Document
		if d, ok := r.documents[n.ID]; ok {
			copied := *d
			doc = &copied
		}
		items[n.ID] = &models.NodeTreeItem{
			Node:     *n,
			Document: doc,
			Children: []*models.NodeTreeItem{},
		}
	}

	roots := make([]*models.NodeTreeItem, 0)
	for _, n := range nodes {
		item := items[n.ID]
		if n.ParentID == nil {
			roots = append(roots, item)
		} else if parent, ok := items[*n.ParentID]; ok {
			parent.Children = append(parent.Children, item)
		}
	}
	return roots, nil
}

// AddNode creates a node at the end of the target sibling list and, for
// documents, the document row plus an initial version when content was
// supplied.
func (r *Repository) AddNode(ctx context.Context, draft models.NodeDraft) (*models.Node, error) {
	if err := draft.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	node := &models.Node{
		ID:        uuid.NewString(),
		ParentID:  draft.ParentID,
		NodeType:  draft.NodeType,
		Title:     draft.Title,
		SortOrder: r.nextSortOrderLocked(draft.ParentID),
		CreatedAt: now,
		UpdatedAt: now,
	}
	r.nodes[node.ID] = node

	if draft.NodeType == models.NodeTypeDocument {
		doc := svc.DocumentForDraft(draft, node.ID, uuid.NewString(), now)
		r.documents[node.ID] = doc
		if draft.Content != "" {
			r.appendVersionLocked(doc, draft.Content, now)
		}
	}

	r.persistLocked(ctx)
	returned := *node
	return &returned, nil
}

func (r *Repository) nextSortOrderLocked(parentID *string) int {
	next := 0
	for _, n := range r.nodes {
		if sameParent(n.ParentID, parentID) && n.SortOrder >= next {
			next = n.SortOrder + 1
		}
	}
	return next
}

func sameParent(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// UpdateNode applies the non-nil patch fields. An unknown id is a
// silent no-op.
func (r *Repository) UpdateNode(ctx context.Context, id string, patch models.NodePatch) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()

	if node, ok := r.nodes[id]; ok && patch.Title != nil {
		node.Title = *patch.Title
		node.UpdatedAt = now
	}

	if doc, ok := r.documents[id]; ok {
		if patch.DocType != nil {
			doc.DocType = *patch.DocType
			doc.DocTypeSource = models.SourceUser
			t := now
			doc.ClassificationUpdatedAt = &t
		}
		if patch.LanguageHint != nil {
			doc.LanguageHint = *patch.LanguageHint
			doc.LanguageSource = models.SourceUser
			t := now
			doc.ClassificationUpdatedAt = &t
		}
		if patch.DefaultViewMode != nil {
			doc.DefaultViewMode = *patch.DefaultViewMode
		}
	}

	r.persistLocked(ctx)
	return nil
}

// MoveNodes reinserts the dragged batch at the planned position. A
// rejected plan (target inside a dragged subtree) is logged and
// dropped.
func (r *Repository) MoveNodes(ctx context.Context, ids []string, targetID *string, position models.MovePosition) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	arena := svc.NewArena(r.snapshotNodes())
	updates, ok := arena.PlanMove(ids, targetID, position)
	if !ok {
		r.logger.Warn("move rejected: target inside dragged subtree", "ids", ids)
		return nil
	}

	now := time.Now().UTC()
	r.applySortUpdates(updates)
	for _, id := range ids {
		if n, exists := r.nodes[id]; exists {
			n.UpdatedAt = now
		}
	}

	r.persistLocked(ctx)
	return nil
}

// DeleteNodes removes the selection and every descendant, along with
// document rows and version chains.
func (r *Repository) DeleteNodes(ctx context.Context, ids []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	arena := svc.NewArena(r.snapshotNodes())
	doomed, updates := arena.PlanDelete(ids)

	for _, id := range doomed {
		if doc, ok := r.documents[id]; ok {
			delete(r.versions, doc.DocumentID)
			delete(r.documents, id)
		}
		delete(r.nodes, id)
	}
	r.applySortUpdates(updates)

	r.persistLocked(ctx)
	return nil
}

// DuplicateNodes deep-copies each selected subtree. Version chains are
// cloned with fresh ids and, with no content store here, fresh content
// copies.
func (r *Repository) DuplicateNodes(ctx context.Context, ids []string) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	arena := svc.NewArena(r.snapshotNodes())
	clones, rootIDs, updates := arena.PlanDuplicate(ids, uuid.NewString, now)

	for _, clone := range clones {
		copied := *clone.Node
		r.nodes[copied.ID] = &copied

		src, ok := r.documents[clone.SourceID]
		if !ok {
			continue
		}
		doc := *src
		doc.DocumentID = uuid.NewString()
		doc.NodeID = copied.ID
		doc.CurrentVersionID = nil

		versionIDs := make(map[string]string) // source version id -> clone id
		for _, v := range r.versions[src.DocumentID] {
			cloned := v
			cloned.VersionID = uuid.NewString()
			cloned.DocumentID = doc.DocumentID
			versionIDs[v.VersionID] = cloned.VersionID
			r.versions[doc.DocumentID] = append(r.versions[doc.DocumentID], cloned)
		}
		if src.CurrentVersionID != nil {
			if mapped, found := versionIDs[*src.CurrentVersionID]; found {
				doc.CurrentVersionID = &mapped
			}
		}
		r.documents[copied.ID] = &doc
	}
	r.applySortUpdates(updates)

	r.persistLocked(ctx)
	return rootIDs, nil
}
