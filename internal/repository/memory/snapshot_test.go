package memory

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newSnapshotClient(t *testing.T) *redis.Client {
	t.Helper()
	mr := miniredis.RunT(t)
	return redis.NewClient(&redis.Options{Addr: mr.Addr()})
}

func TestSnapshotRoundTrip(t *testing.T) {
	ctx := context.Background()
	client := newSnapshotClient(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	first := NewRepository(Config{Snapshots: client, Logger: logger})
	if err := first.Init(ctx); err != nil {
		t.Fatalf("Init: %v", err)
	}

	folder := addFolder(t, first, nil, "folder")
	doc := addDocument(t, first, &folder.ID, "doc.md", "v1")
	if _, err := first.UpdateDocumentContent(ctx, doc.ID, "v2"); err != nil {
		t.Fatalf("UpdateDocumentContent: %v", err)
	}
	if err := first.SaveSettings(ctx, map[string]string{"theme": "dark"}); err != nil {
		t.Fatalf("SaveSettings: %v", err)
	}

	// A second repository against the same store picks up the state.
	second := NewRepository(Config{Snapshots: client, Logger: logger})
	if err := second.Init(ctx); err != nil {
		t.Fatalf("restore Init: %v", err)
	}

	tree, err := second.GetNodeTree(ctx)
	if err != nil {
		t.Fatalf("GetNodeTree: %v", err)
	}
	if len(tree) != 1 || tree[0].Title != "folder" {
		t.Fatalf("restored tree = %+v, want the original folder", tree)
	}
	if len(tree[0].Children) != 1 {
		t.Fatal("restored tree lost the document")
	}

	content, err := second.GetDocumentContent(ctx, doc.ID)
	if err != nil {
		t.Fatalf("restored content: %v", err)
	}
	if content != "v2" {
		t.Errorf("restored content = %q, want v2", content)
	}

	versions, err := second.GetVersionsForNode(ctx, doc.ID)
	if err != nil {
		t.Fatalf("restored versions: %v", err)
	}
	if len(versions) != 2 {
		t.Errorf("restored chain length = %d, want 2", len(versions))
	}

	settings, _ := second.GetSettings(ctx)
	if settings["theme"] != "dark" {
		t.Errorf("restored theme = %q, want dark", settings["theme"])
	}

	// Restored templates come from the snapshot, not a re-seed.
	firstTemplates, _ := first.ListTemplates(ctx)
	secondTemplates, _ := second.ListTemplates(ctx)
	if len(firstTemplates) != len(secondTemplates) {
		t.Errorf("template count changed across restore: %d != %d",
			len(firstTemplates), len(secondTemplates))
	}
}

func TestSnapshotIgnoresUnknownSchemaVersion(t *testing.T) {
	ctx := context.Background()
	client := newSnapshotClient(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	if err := client.Set(ctx, "docforge:snapshot", `{"schema_version":99}`, 0).Err(); err != nil {
		t.Fatalf("seed bogus snapshot: %v", err)
	}

	repo := NewRepository(Config{Snapshots: client, Logger: logger})
	if err := repo.Init(ctx); err != nil {
		t.Fatalf("Init: %v", err)
	}

	// Fresh state: the bogus snapshot was skipped and templates seeded.
	tree, _ := repo.GetNodeTree(ctx)
	if len(tree) != 0 {
		t.Errorf("tree = %+v, want empty", tree)
	}
	templates, _ := repo.ListTemplates(ctx)
	if len(templates) == 0 {
		t.Error("expected template seeding after skipped snapshot")
	}
}

func TestNoSnapshotClientIsOptional(t *testing.T) {
	repo := NewRepository(Config{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))})
	if err := repo.Init(context.Background()); err != nil {
		t.Fatalf("Init without snapshot client: %v", err)
	}
	addFolder(t, repo, nil, "folder")
}
