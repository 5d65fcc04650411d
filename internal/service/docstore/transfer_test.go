package docstore_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	models "docforge/internal/domain/models/docstore"
	docstoreSvc "docforge/internal/domain/services/docstore"
	"docforge/internal/repository/memory"
	svc "docforge/internal/service/docstore"
)

func newFixture(t *testing.T) (*memory.Repository, docstoreSvc.TransferService) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	repo := memory.NewRepository(memory.Config{Logger: logger})
	require.NoError(t, repo.Init(context.Background()))
	return repo, svc.NewTransferService(repo, logger)
}

func addNode(t *testing.T, repo *memory.Repository, draft models.NodeDraft) *models.Node {
	t.Helper()
	node, err := repo.AddNode(context.Background(), draft)
	require.NoError(t, err)
	return node
}

func TestExportSelectionFiltersCoveredChildren(t *testing.T) {
	repo, transfer := newFixture(t)
	ctx := context.Background()

	folder := addNode(t, repo, models.NodeDraft{NodeType: models.NodeTypeFolder, Title: "folder"})
	child := addNode(t, repo, models.NodeDraft{
		ParentID: &folder.ID, NodeType: models.NodeTypeDocument, Title: "child.md", Content: "# child",
	})
	loose := addNode(t, repo, models.NodeDraft{NodeType: models.NodeTypeDocument, Title: "loose.md", Content: "loose"})

	// Selecting the folder and its child must export the folder once.
	payload, err := transfer.ExportSelection(ctx, []string{folder.ID, child.ID, loose.ID}, docstoreSvc.ExportOptions{})
	require.NoError(t, err)
	require.NotNil(t, payload)

	assert.Equal(t, models.TransferSchema, payload.Schema)
	assert.Equal(t, models.TransferSchemaVersion, payload.Version)
	require.Len(t, payload.Nodes, 2)
	assert.Equal(t, "folder", payload.Nodes[0].Title)
	assert.Equal(t, "loose.md", payload.Nodes[1].Title)

	require.Len(t, payload.Nodes[0].Children, 1)
	childNode := payload.Nodes[0].Children[0]
	assert.Equal(t, "child.md", childNode.Title)
	require.NotNil(t, childNode.Content)
	assert.Equal(t, "# child", *childNode.Content)
	assert.Empty(t, childNode.Versions, "history not requested")
}

func TestExportSelectionDropsRepeatedIDs(t *testing.T) {
	repo, transfer := newFixture(t)
	ctx := context.Background()

	folder := addNode(t, repo, models.NodeDraft{NodeType: models.NodeTypeFolder, Title: "folder"})
	addNode(t, repo, models.NodeDraft{
		ParentID: &folder.ID, NodeType: models.NodeTypeDocument, Title: "child.md", Content: "# child",
	})

	payload, err := transfer.ExportSelection(ctx, []string{folder.ID, folder.ID}, docstoreSvc.ExportOptions{})
	require.NoError(t, err)
	require.NotNil(t, payload)

	require.Len(t, payload.Nodes, 1)
	assert.Equal(t, "folder", payload.Nodes[0].Title)
	assert.Len(t, payload.Nodes[0].Children, 1)
}

func TestExportSelectionNothingExportable(t *testing.T) {
	_, transfer := newFixture(t)

	payload, err := transfer.ExportSelection(context.Background(), []string{"ghost"}, docstoreSvc.ExportOptions{})
	require.NoError(t, err)
	assert.Nil(t, payload)
}

func TestExportIncludesHistoryWhenRequested(t *testing.T) {
	repo, transfer := newFixture(t)
	ctx := context.Background()

	doc := addNode(t, repo, models.NodeDraft{NodeType: models.NodeTypeDocument, Title: "doc.md", Content: "v1"})
	_, err := repo.UpdateDocumentContent(ctx, doc.ID, "v2")
	require.NoError(t, err)

	payload, err := transfer.ExportSelection(ctx, []string{doc.ID}, docstoreSvc.ExportOptions{IncludeHistory: true})
	require.NoError(t, err)
	require.Len(t, payload.Nodes, 1)

	versions := payload.Nodes[0].Versions
	require.Len(t, versions, 2)
	assert.Equal(t, "v2", versions[0].Content, "chain is exported newest first")
	assert.Equal(t, "v1", versions[1].Content)
	assert.True(t, payload.Options.IncludeHistory)
}

func TestImportRejectsUnknownSchema(t *testing.T) {
	_, transfer := newFixture(t)

	_, err := transfer.ImportPayload(context.Background(), &models.TransferPayload{
		Schema:  "other/format",
		Version: 1,
		Nodes:   []models.SerializedNode{{Type: "document", Title: "x"}},
	}, nil, models.MoveInside)
	assert.Error(t, err)

	_, err = transfer.ImportPayload(context.Background(), nil, nil, models.MoveInside)
	assert.Error(t, err)
}

func TestImportRoundTrip(t *testing.T) {
	source, transfer := newFixture(t)
	ctx := context.Background()

	folder := addNode(t, source, models.NodeDraft{NodeType: models.NodeTypeFolder, Title: "project"})
	addNode(t, source, models.NodeDraft{
		ParentID: &folder.ID, NodeType: models.NodeTypeDocument,
		Title: "readme.md", Content: "# readme",
	})

	payload, err := transfer.ExportSelection(ctx, []string{folder.ID}, docstoreSvc.ExportOptions{IncludeHistory: true})
	require.NoError(t, err)

	// Import into a second, empty instance.
	dest, destTransfer := newFixture(t)
	rootIDs, err := destTransfer.ImportPayload(ctx, payload, nil, models.MoveInside)
	require.NoError(t, err)
	require.Len(t, rootIDs, 1)

	tree, err := dest.GetNodeTree(ctx)
	require.NoError(t, err)
	require.Len(t, tree, 1)
	assert.Equal(t, rootIDs[0], tree[0].ID)
	assert.NotEqual(t, folder.ID, tree[0].ID, "import mints fresh ids")
	assert.Equal(t, "project", tree[0].Title)

	require.Len(t, tree[0].Children, 1)
	imported := tree[0].Children[0]
	content, err := dest.GetDocumentContent(ctx, imported.ID)
	require.NoError(t, err)
	assert.Equal(t, "# readme", content)
}

func TestImportReplaysHistoryWithoutDuplicateHead(t *testing.T) {
	source, transfer := newFixture(t)
	ctx := context.Background()

	doc := addNode(t, source, models.NodeDraft{NodeType: models.NodeTypeDocument, Title: "doc.md", Content: "v1"})
	_, err := source.UpdateDocumentContent(ctx, doc.ID, "v2")
	require.NoError(t, err)

	payload, err := transfer.ExportSelection(ctx, []string{doc.ID}, docstoreSvc.ExportOptions{IncludeHistory: true})
	require.NoError(t, err)

	dest, destTransfer := newFixture(t)
	rootIDs, err := destTransfer.ImportPayload(ctx, payload, nil, models.MoveInside)
	require.NoError(t, err)

	versions, err := dest.GetVersionsForNode(ctx, rootIDs[0])
	require.NoError(t, err)
	assert.Len(t, versions, 2, "replay must not append the head twice")

	content, err := dest.GetDocumentContent(ctx, rootIDs[0])
	require.NoError(t, err)
	assert.Equal(t, "v2", content)
}

func TestImportClassificationSources(t *testing.T) {
	dest, transfer := newFixture(t)
	ctx := context.Background()

	userType := "markdown"
	userSource := string(models.SourceUser)
	pythonBody := "#!/usr/bin/env python3\nprint('x')"
	payload := &models.TransferPayload{
		Schema:     models.TransferSchema,
		Version:    models.TransferSchemaVersion,
		ExportedAt: time.Now().UTC(),
		Nodes: []models.SerializedNode{
			{
				// User-corrected classification travels with the payload.
				Type: "document", Title: "pinned.md",
				Content: &pythonBody,
				DocType: &userType, DocTypeSource: &userSource,
			},
			{
				// Auto-classified values are re-inferred on import.
				Type: "document", Title: "script",
				Content: &pythonBody,
			},
		},
	}

	rootIDs, err := transfer.ImportPayload(ctx, payload, nil, models.MoveInside)
	require.NoError(t, err)
	require.Len(t, rootIDs, 2)

	tree, err := dest.GetNodeTree(ctx)
	require.NoError(t, err)

	pinned := tree[0].Document
	require.NotNil(t, pinned)
	assert.Equal(t, "markdown", pinned.DocType)
	assert.Equal(t, models.SourceImported, pinned.DocTypeSource)

	script := tree[1].Document
	require.NotNil(t, script)
	assert.Equal(t, "source_code", script.DocType)
	assert.Equal(t, "python", script.LanguageHint)
	assert.Equal(t, models.SourceAuto, script.DocTypeSource)
}

func TestImportBeforeTargetPlacesBatch(t *testing.T) {
	dest, transfer := newFixture(t)
	ctx := context.Background()

	first := addNode(t, dest, models.NodeDraft{NodeType: models.NodeTypeFolder, Title: "first"})
	addNode(t, dest, models.NodeDraft{NodeType: models.NodeTypeFolder, Title: "second"})

	body := "hello"
	payload := &models.TransferPayload{
		Schema:     models.TransferSchema,
		Version:    models.TransferSchemaVersion,
		ExportedAt: time.Now().UTC(),
		Nodes: []models.SerializedNode{
			{Type: "document", Title: "imported.md", Content: &body},
		},
	}

	rootIDs, err := transfer.ImportPayload(ctx, payload, &first.ID, models.MoveBefore)
	require.NoError(t, err)
	require.Len(t, rootIDs, 1)

	tree, err := dest.GetNodeTree(ctx)
	require.NoError(t, err)
	require.Len(t, tree, 3)
	assert.Equal(t, rootIDs[0], tree[0].ID, "imported node lands before the target")
	assert.Equal(t, "first", tree[1].Title)
}
