package docstore

import (
	"sort"
	"time"

	models "docforge/internal/domain/models/docstore"
)

// Both backends plan tree mutations through the same arena so their
// ordering behavior cannot drift apart. The arena indexes a flat node
// snapshot by id and keeps one ordered child-id list per parent; cycle
// checks and lookups are O(1) map hits plus a parent-pointer walk.

const rootKey = ""

// Arena is an id-indexed view of the whole tree.
type Arena struct {
	byID     map[string]*models.Node
	children map[string][]string // parent key -> ordered child ids
}

func parentKey(parentID *string) string {
	if parentID == nil {
		return rootKey
	}
	return *parentID
}

// NewArena builds an arena from a flat snapshot. Sibling lists are
// ordered by stored sort order.
func NewArena(nodes []*models.Node) *Arena {
	a := &Arena{
		byID:     make(map[string]*models.Node, len(nodes)),
		children: make(map[string][]string),
	}
	for _, n := range nodes {
		a.byID[n.ID] = n
		key := parentKey(n.ParentID)
		a.children[key] = append(a.children[key], n.ID)
	}
	for key := range a.children {
		ids := a.children[key]
		sort.SliceStable(ids, func(i, j int) bool {
			return a.byID[ids[i]].SortOrder < a.byID[ids[j]].SortOrder
		})
	}
	return a
}

// Node returns the node for id, or nil.
func (a *Arena) Node(id string) *models.Node {
	return a.byID[id]
}

// Children returns the ordered child ids of a parent.
func (a *Arena) Children(parentID *string) []string {
	return a.children[parentKey(parentID)]
}

// IsDescendant reports whether id sits strictly below ancestorID,
// walking parent pointers.
func (a *Arena) IsDescendant(id, ancestorID string) bool {
	n := a.byID[id]
	for n != nil && n.ParentID != nil {
		if *n.ParentID == ancestorID {
			return true
		}
		n = a.byID[*n.ParentID]
	}
	return false
}

// Descendants returns the existing members of ids plus every transitive
// child, deduplicated, parents before children.
func (a *Arena) Descendants(ids []string) []string {
	seen := make(map[string]bool)
	var out []string
	var walk func(id string)
	walk = func(id string) {
		if seen[id] || a.byID[id] == nil {
			return
		}
		seen[id] = true
		out = append(out, id)
		for _, child := range a.children[id] {
			walk(child)
		}
	}
	for _, id := range ids {
		walk(id)
	}
	return out
}

// SortUpdate is one node whose parent or sort order changed.
type SortUpdate struct {
	ID        string
	ParentID  *string
	SortOrder int
}

// renumber reassigns contiguous sort orders under each affected parent
// and returns an update per child. Parent keys pointing at removed
// nodes are skipped.
func (a *Arena) renumber(parents map[string]bool) []SortUpdate {
	keys := make([]string, 0, len(parents))
	for key := range parents {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var updates []SortUpdate
	for _, key := range keys {
		if key != rootKey && a.byID[key] == nil {
			continue
		}
		var pid *string
		if key != rootKey {
			k := key
			pid = &k
		}
		for i, childID := range a.children[key] {
			child := a.byID[childID]
			child.ParentID = pid
			child.SortOrder = i
			updates = append(updates, SortUpdate{ID: childID, ParentID: pid, SortOrder: i})
		}
	}
	return updates
}

func (a *Arena) removeFromParent(id string) {
	n := a.byID[id]
	if n == nil {
		return
	}
	key := parentKey(n.ParentID)
	ids := a.children[key]
	for i, cid := range ids {
		if cid == id {
			a.children[key] = append(ids[:i], ids[i+1:]...)
			return
		}
	}
}

func insertAt(ids []string, index int, batch []string) []string {
	if index < 0 {
		index = 0
	}
	if index > len(ids) {
		index = len(ids)
	}
	out := make([]string, 0, len(ids)+len(batch))
	out = append(out, ids[:index]...)
	out = append(out, batch...)
	out = append(out, ids[index:]...)
	return out
}

func indexOf(ids []string, id string) int {
	for i, v := range ids {
		if v == id {
			return i
		}
	}
	return -1
}

// PlanMove removes the dragged nodes from their sibling lists and
// reinserts the batch, in the order given, at the position derived from
// the target. It returns ok=false when the target sits inside a dragged
// subtree, which would detach the subtree into itself; callers treat
// that as a no-op.
//
// A target that is itself a dragged node is legal for before/after: the
// batch falls back to the end of the target's original sibling list.
func (a *Arena) PlanMove(ids []string, targetID *string, position models.MovePosition) ([]SortUpdate, bool) {
	var dragged []string
	draggedSet := make(map[string]bool)
	for _, id := range ids {
		if a.byID[id] != nil && !draggedSet[id] {
			dragged = append(dragged, id)
			draggedSet[id] = true
		}
	}
	if len(dragged) == 0 {
		return nil, true
	}

	targetDragged := false
	if targetID != nil {
		if a.byID[*targetID] == nil {
			targetID = nil
		} else {
			targetDragged = draggedSet[*targetID]
			if targetDragged && position == models.MoveInside {
				return nil, false
			}
			for _, id := range dragged {
				if *targetID != id && a.IsDescendant(*targetID, id) {
					return nil, false
				}
			}
		}
	}

	// Capture the insertion parent before removal so a dragged target
	// still resolves to its original sibling list.
	var insertParent *string
	switch position {
	case models.MoveInside:
		insertParent = targetID
	default: // before, after
		if targetID != nil {
			insertParent = a.byID[*targetID].ParentID
		}
	}

	affected := map[string]bool{parentKey(insertParent): true}
	for _, id := range dragged {
		affected[parentKey(a.byID[id].ParentID)] = true
		a.removeFromParent(id)
	}

	siblings := a.children[parentKey(insertParent)]
	index := len(siblings)
	if targetID != nil && position != models.MoveInside && !targetDragged {
		if i := indexOf(siblings, *targetID); i >= 0 {
			index = i
			if position == models.MoveAfter {
				index = i + 1
			}
		}
	}

	a.children[parentKey(insertParent)] = insertAt(siblings, index, dragged)
	for _, id := range dragged {
		a.byID[id].ParentID = insertParent
	}

	return a.renumber(affected), true
}

// PlanDelete cascades the selection to all descendants and reindexes
// the sibling lists the removal touched. Unknown ids are ignored.
func (a *Arena) PlanDelete(ids []string) (doomed []string, updates []SortUpdate) {
	doomed = a.Descendants(ids)
	doomedSet := make(map[string]bool, len(doomed))
	for _, id := range doomed {
		doomedSet[id] = true
	}

	affected := make(map[string]bool)
	for _, id := range doomed {
		n := a.byID[id]
		if key := parentKey(n.ParentID); !doomedSet[key] {
			affected[key] = true
		}
	}
	for _, id := range doomed {
		a.removeFromParent(id)
	}
	for _, id := range doomed {
		delete(a.byID, id)
		delete(a.children, id)
	}

	return doomed, a.renumber(affected)
}

// NodeClone pairs a freshly generated node with the id it was copied
// from, so backends can clone the attached document and version chain.
type NodeClone struct {
	Node     *models.Node
	SourceID string
}

// PlanDuplicate deep-copies each selected subtree. Every clone gets a
// fresh id and now-timestamps; each duplicate root is inserted directly
// after its original among siblings. Returns the clones parents-first,
// the new root ids, and the reindex updates for the touched parents.
func (a *Arena) PlanDuplicate(ids []string, newID func() string, now time.Time) (clones []NodeClone, rootIDs []string, updates []SortUpdate) {
	affected := make(map[string]bool)

	var copySubtree func(sourceID string, parentID *string, order int) *models.Node
	copySubtree = func(sourceID string, parentID *string, order int) *models.Node {
		src := a.byID[sourceID]
		clone := &models.Node{
			ID:        newID(),
			ParentID:  parentID,
			NodeType:  src.NodeType,
			Title:     src.Title,
			SortOrder: order,
			CreatedAt: now,
			UpdatedAt: now,
		}
		a.byID[clone.ID] = clone
		clones = append(clones, NodeClone{Node: clone, SourceID: sourceID})

		for i, childID := range append([]string(nil), a.children[sourceID]...) {
			child := copySubtree(childID, &clone.ID, i)
			a.children[clone.ID] = append(a.children[clone.ID], child.ID)
		}
		return clone
	}

	for _, id := range ids {
		src := a.byID[id]
		if src == nil {
			continue
		}
		clone := copySubtree(id, src.ParentID, 0)

		key := parentKey(src.ParentID)
		i := indexOf(a.children[key], id)
		a.children[key] = insertAt(a.children[key], i+1, []string{clone.ID})
		affected[key] = true
		rootIDs = append(rootIDs, clone.ID)
	}

	return clones, rootIDs, a.renumber(affected)
}
