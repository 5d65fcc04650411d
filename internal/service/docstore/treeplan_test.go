package docstore

import (
	"testing"
	"time"

	models "docforge/internal/domain/models/docstore"
)

func mkNode(id string, parentID *string, order int) *models.Node {
	return &models.Node{
		ID:        id,
		ParentID:  parentID,
		NodeType:  models.NodeTypeDocument,
		Title:     id,
		SortOrder: order,
	}
}

func ptr(s string) *string { return &s }

// sampleTree builds:
//
//	a (folder)
//	  a1
//	  a2
//	b
//	c
func sampleTree() []*models.Node {
	a := mkNode("a", nil, 0)
	a.NodeType = models.NodeTypeFolder
	return []*models.Node{
		a,
		mkNode("a1", ptr("a"), 0),
		mkNode("a2", ptr("a"), 1),
		mkNode("b", nil, 1),
		mkNode("c", nil, 2),
	}
}

// assertContiguous checks each parent's children are numbered 0..n-1.
func assertContiguous(t *testing.T, a *Arena, parentID *string) {
	t.Helper()
	for i, id := range a.Children(parentID) {
		if got := a.Node(id).SortOrder; got != i {
			t.Errorf("child %s: sort order = %d, want %d", id, got, i)
		}
	}
}

func TestPlanMoveInside(t *testing.T) {
	a := NewArena(sampleTree())

	updates, ok := a.PlanMove([]string{"b"}, ptr("a"), models.MoveInside)
	if !ok {
		t.Fatal("expected plan to succeed")
	}
	if len(updates) == 0 {
		t.Fatal("expected sort updates")
	}

	children := a.Children(ptr("a"))
	if len(children) != 3 || children[2] != "b" {
		t.Errorf("children of a = %v, want [a1 a2 b]", children)
	}
	assertContiguous(t, a, ptr("a"))
	assertContiguous(t, a, nil)
}

func TestPlanMoveBefore(t *testing.T) {
	a := NewArena(sampleTree())

	_, ok := a.PlanMove([]string{"c"}, ptr("a1"), models.MoveBefore)
	if !ok {
		t.Fatal("expected plan to succeed")
	}

	children := a.Children(ptr("a"))
	if len(children) != 3 || children[0] != "c" || children[1] != "a1" {
		t.Errorf("children of a = %v, want [c a1 a2]", children)
	}
	assertContiguous(t, a, ptr("a"))
}

func TestPlanMoveAfter(t *testing.T) {
	a := NewArena(sampleTree())

	_, ok := a.PlanMove([]string{"b"}, ptr("a1"), models.MoveAfter)
	if !ok {
		t.Fatal("expected plan to succeed")
	}

	children := a.Children(ptr("a"))
	if len(children) != 3 || children[1] != "b" {
		t.Errorf("children of a = %v, want [a1 b a2]", children)
	}
}

func TestPlanMoveBatchKeepsGivenOrder(t *testing.T) {
	a := NewArena(sampleTree())

	// Drag c before b: the batch lands in given order, not tree order.
	_, ok := a.PlanMove([]string{"c", "b"}, ptr("a"), models.MoveInside)
	if !ok {
		t.Fatal("expected plan to succeed")
	}

	children := a.Children(ptr("a"))
	want := []string{"a1", "a2", "c", "b"}
	for i, id := range want {
		if children[i] != id {
			t.Fatalf("children of a = %v, want %v", children, want)
		}
	}
}

func TestPlanMoveRejectsTargetInsideDraggedSubtree(t *testing.T) {
	a := NewArena(sampleTree())

	updates, ok := a.PlanMove([]string{"a"}, ptr("a1"), models.MoveInside)
	if ok {
		t.Fatal("expected plan to be rejected")
	}
	if updates != nil {
		t.Errorf("rejected plan returned updates: %v", updates)
	}

	// Tree unchanged.
	if got := a.Children(nil); len(got) != 3 || got[0] != "a" {
		t.Errorf("root children = %v, want [a b c]", got)
	}
}

func TestPlanMoveDraggedTargetFallsBackToEndOfList(t *testing.T) {
	a := NewArena(sampleTree())

	// b is both dragged and the before-target; the batch lands at the
	// end of b's original sibling list.
	_, ok := a.PlanMove([]string{"b", "c"}, ptr("b"), models.MoveBefore)
	if !ok {
		t.Fatal("expected plan to succeed")
	}

	roots := a.Children(nil)
	want := []string{"a", "b", "c"}
	for i, id := range want {
		if roots[i] != id {
			t.Fatalf("root children = %v, want %v", roots, want)
		}
	}
	assertContiguous(t, a, nil)
}

func TestPlanMoveUnknownIDsAreNoOps(t *testing.T) {
	a := NewArena(sampleTree())

	updates, ok := a.PlanMove([]string{"ghost"}, ptr("a"), models.MoveInside)
	if !ok {
		t.Fatal("expected plan to succeed")
	}
	if updates != nil {
		t.Errorf("unknown-only batch returned updates: %v", updates)
	}
}

func TestPlanDeleteCascades(t *testing.T) {
	a := NewArena(sampleTree())

	doomed, updates := a.PlanDelete([]string{"a"})
	if len(doomed) != 3 {
		t.Fatalf("doomed = %v, want a plus both children", doomed)
	}
	if doomed[0] != "a" {
		t.Errorf("doomed[0] = %s, want parents before children", doomed[0])
	}

	roots := a.Children(nil)
	if len(roots) != 2 || roots[0] != "b" || roots[1] != "c" {
		t.Errorf("root children = %v, want [b c]", roots)
	}
	assertContiguous(t, a, nil)

	// b and c slide down to 0 and 1.
	if len(updates) != 2 {
		t.Errorf("updates = %v, want reindex of b and c", updates)
	}
}

func TestPlanDeleteIgnoresUnknownIDs(t *testing.T) {
	a := NewArena(sampleTree())

	doomed, _ := a.PlanDelete([]string{"ghost", "b"})
	if len(doomed) != 1 || doomed[0] != "b" {
		t.Errorf("doomed = %v, want [b]", doomed)
	}
}

func TestPlanDuplicateInsertsAfterOriginal(t *testing.T) {
	a := NewArena(sampleTree())

	seq := 0
	newID := func() string {
		seq++
		return "dup" + string(rune('0'+seq))
	}

	clones, rootIDs, _ := a.PlanDuplicate([]string{"a"}, newID, time.Now())
	if len(rootIDs) != 1 {
		t.Fatalf("rootIDs = %v, want one duplicate root", rootIDs)
	}
	if len(clones) != 3 {
		t.Fatalf("clones = %d, want subtree of three", len(clones))
	}
	if clones[0].SourceID != "a" {
		t.Errorf("clones[0].SourceID = %s, want a (parents first)", clones[0].SourceID)
	}

	roots := a.Children(nil)
	if len(roots) != 4 || roots[0] != "a" || roots[1] != rootIDs[0] {
		t.Errorf("root children = %v, want duplicate directly after a", roots)
	}
	assertContiguous(t, a, nil)

	// The duplicate subtree mirrors the original's child order.
	dupChildren := a.Children(&rootIDs[0])
	if len(dupChildren) != 2 {
		t.Errorf("duplicate children = %v, want two", dupChildren)
	}
	for i, id := range dupChildren {
		if a.Node(id).SortOrder != i {
			t.Errorf("duplicate child %s: sort order = %d, want %d", id, a.Node(id).SortOrder, i)
		}
	}
}
