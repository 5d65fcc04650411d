package docstore

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"docforge/internal/domain"
	models "docforge/internal/domain/models/docstore"
	docstoreRepo "docforge/internal/domain/repositories/docstore"
	docstoreSvc "docforge/internal/domain/services/docstore"
)

// transferService implements the TransferService interface on top of
// the backend-agnostic repository contract, so the codec behaves the
// same against either backend.
type transferService struct {
	repo   docstoreRepo.Repository
	logger *slog.Logger
}

// NewTransferService creates a new transfer codec.
func NewTransferService(repo docstoreRepo.Repository, logger *slog.Logger) docstoreSvc.TransferService {
	return &transferService{repo: repo, logger: logger}
}

// ExportSelection filters the selection down to subtree roots and
// serializes them recursively.
func (s *transferService) ExportSelection(ctx context.Context, selectedIDs []string, opts docstoreSvc.ExportOptions) (*models.TransferPayload, error) {
	tree, err := s.repo.GetNodeTree(ctx)
	if err != nil {
		return nil, fmt.Errorf("export selection: %w", err)
	}

	index := indexTree(tree)
	roots := filterSelectionRoots(selectedIDs, index)
	if len(roots) == 0 {
		return nil, nil
	}

	nodes := make([]models.SerializedNode, 0, len(roots))
	for _, id := range roots {
		serialized, err := s.serializeNode(ctx, index[id], opts)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, *serialized)
	}

	return &models.TransferPayload{
		Schema:     models.TransferSchema,
		Version:    models.TransferSchemaVersion,
		ExportedAt: time.Now().UTC(),
		Nodes:      nodes,
		Options: models.TransferOptions{
			IncludeHistory:        opts.IncludeHistory,
			IncludePythonSettings: opts.IncludePythonSettings,
		},
	}, nil
}

// indexTree flattens the nested tree into an id lookup.
func indexTree(tree []*models.NodeTreeItem) map[string]*models.NodeTreeItem {
	index := make(map[string]*models.NodeTreeItem)
	var walk func(items []*models.NodeTreeItem)
	walk = func(items []*models.NodeTreeItem) {
		for _, item := range items {
			index[item.ID] = item
			walk(item.Children)
		}
	}
	walk(tree)
	return index
}

// filterSelectionRoots drops any id whose ancestor chain contains
// another selected id, preserving selection order. Unknown ids and
// repeated ids are dropped too, so a selection never exports the same
// subtree twice.
func filterSelectionRoots(selectedIDs []string, index map[string]*models.NodeTreeItem) []string {
	selected := make(map[string]bool, len(selectedIDs))
	for _, id := range selectedIDs {
		if index[id] != nil {
			selected[id] = true
		}
	}

	var roots []string
	emitted := make(map[string]bool, len(selectedIDs))
	for _, id := range selectedIDs {
		item := index[id]
		if item == nil || emitted[id] {
			continue
		}
		covered := false
		for parent := item.ParentID; parent != nil; {
			if selected[*parent] {
				covered = true
				break
			}
			up := index[*parent]
			if up == nil {
				break
			}
			parent = up.ParentID
		}
		if !covered {
			emitted[id] = true
			roots = append(roots, id)
		}
	}
	return roots
}

func (s *transferService) serializeNode(ctx context.Context, item *models.NodeTreeItem, opts docstoreSvc.ExportOptions) (*models.SerializedNode, error) {
	out := &models.SerializedNode{
		Type:  string(item.NodeType),
		Title: item.Title,
	}

	if item.NodeType == models.NodeTypeDocument && item.Document != nil {
		content, err := s.repo.GetDocumentContent(ctx, item.ID)
		if err != nil {
			return nil, fmt.Errorf("serialize %s: %w", item.ID, err)
		}
		out.Content = &content
		out.DocType = strPtr(item.Document.DocType)
		out.LanguageHint = strPtr(item.Document.LanguageHint)
		out.DefaultViewMode = strPtr(item.Document.DefaultViewMode)
		out.LanguageSource = strPtr(string(item.Document.LanguageSource))
		out.DocTypeSource = strPtr(string(item.Document.DocTypeSource))
		if item.Document.ClassificationUpdatedAt != nil {
			ts := item.Document.ClassificationUpdatedAt.UTC().Format(time.RFC3339)
			out.ClassificationUpdatedAt = &ts
		}

		if opts.IncludeHistory {
			versions, err := s.historyFor(ctx, item.ID)
			if err != nil {
				return nil, err
			}
			out.Versions = versions
		}
	}

	for _, child := range item.Children {
		serialized, err := s.serializeNode(ctx, child, opts)
		if err != nil {
			return nil, err
		}
		out.Children = append(out.Children, *serialized)
	}
	return out, nil
}

// historyFor normalizes a document's version chain for the payload,
// dropping empty-content entries.
func (s *transferService) historyFor(ctx context.Context, nodeID string) ([]models.SerializedVersion, error) {
	versions, err := s.repo.GetVersionsForNode(ctx, nodeID)
	if err != nil {
		return nil, fmt.Errorf("history for %s: %w", nodeID, err)
	}

	out := make([]models.SerializedVersion, 0, len(versions))
	for _, v := range versions {
		content, err := s.repo.GetVersionContent(ctx, v.VersionID)
		if err != nil {
			return nil, fmt.Errorf("version %s content: %w", v.VersionID, err)
		}
		if content == "" {
			continue
		}
		out = append(out, models.SerializedVersion{
			VersionID: v.VersionID,
			CreatedAt: v.CreatedAt,
			Content:   content,
		})
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out, nil
}

// ImportPayload validates the payload and re-materializes its nodes as
// brand-new subtrees.
func (s *transferService) ImportPayload(ctx context.Context, payload *models.TransferPayload, targetID *string, position models.MovePosition) ([]string, error) {
	if payload == nil {
		return nil, fmt.Errorf("%w: empty payload", domain.ErrValidation)
	}
	if err := payload.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	parentID, err := s.resolveImportParent(ctx, targetID, position)
	if err != nil {
		return nil, err
	}

	var rootIDs []string
	for i := range payload.Nodes {
		node, err := s.materializeNode(ctx, &payload.Nodes[i], parentID)
		if err != nil {
			return nil, err
		}
		rootIDs = append(rootIDs, node.ID)
	}

	// Created roots were appended at the end of the parent's children;
	// before/after placement is a regular move of the new batch.
	if targetID != nil && (position == models.MoveBefore || position == models.MoveAfter) {
		if err := s.repo.MoveNodes(ctx, rootIDs, targetID, position); err != nil {
			return nil, fmt.Errorf("place imported nodes: %w", err)
		}
	}

	s.logger.Info("import complete", "roots", len(rootIDs), "target", targetID)
	return rootIDs, nil
}

// resolveImportParent maps target/position onto the parent the new
// subtree roots are created under.
func (s *transferService) resolveImportParent(ctx context.Context, targetID *string, position models.MovePosition) (*string, error) {
	if targetID == nil {
		return nil, nil
	}
	if position == models.MoveInside {
		return targetID, nil
	}

	tree, err := s.repo.GetNodeTree(ctx)
	if err != nil {
		return nil, fmt.Errorf("resolve import target: %w", err)
	}
	target := indexTree(tree)[*targetID]
	if target == nil {
		// Unknown target degrades to a root-level import.
		return nil, nil
	}
	return target.ParentID, nil
}

func (s *transferService) materializeNode(ctx context.Context, sn *models.SerializedNode, parentID *string) (*models.Node, error) {
	draft := models.NodeDraft{
		ParentID:        parentID,
		NodeType:        models.NodeType(sn.Type),
		Title:           sn.Title,
		DefaultViewMode: sn.DefaultViewMode,
	}

	content := ""
	if sn.Content != nil {
		content = *sn.Content
	}

	if draft.NodeType == models.NodeTypeDocument {
		// Trust explicitly user-sourced classification; anything else is
		// re-inferred from the content, same heuristic as clipboard paste.
		if sn.DocType != nil && sourceOf(sn.DocTypeSource) == models.SourceUser {
			draft.DocType = sn.DocType
			draft.DocTypeSource = models.SourceImported
		}
		if sn.LanguageHint != nil && sourceOf(sn.LanguageSource) == models.SourceUser {
			draft.LanguageHint = sn.LanguageHint
			draft.LanguageSource = models.SourceImported
		}
		// History replay appends versions itself; seeding the draft too
		// would produce a duplicate head version.
		if len(sn.Versions) == 0 {
			draft.Content = content
		}
		if draft.DocType == nil || draft.LanguageHint == nil {
			// Classification runs against the real body even when the
			// draft content is withheld for history replay.
			cls := Classify(content, sn.Title)
			if draft.DocType == nil {
				draft.DocType = &cls.DocType
				draft.DocTypeSource = models.SourceAuto
			}
			if draft.LanguageHint == nil {
				draft.LanguageHint = &cls.LanguageHint
				draft.LanguageSource = models.SourceAuto
			}
		}
	}

	node, err := s.repo.AddNode(ctx, draft)
	if err != nil {
		return nil, fmt.Errorf("import node %q: %w", sn.Title, err)
	}

	if draft.NodeType == models.NodeTypeDocument && len(sn.Versions) > 0 {
		history := append([]models.SerializedVersion(nil), sn.Versions...)
		sort.SliceStable(history, func(i, j int) bool {
			return history[i].CreatedAt.Before(history[j].CreatedAt)
		})
		for _, v := range history {
			if _, err := s.repo.UpdateDocumentContent(ctx, node.ID, v.Content); err != nil {
				return nil, fmt.Errorf("replay version for %q: %w", sn.Title, err)
			}
		}
		if content != "" && (len(history) == 0 || history[len(history)-1].Content != content) {
			if _, err := s.repo.UpdateDocumentContent(ctx, node.ID, content); err != nil {
				return nil, fmt.Errorf("import content for %q: %w", sn.Title, err)
			}
		}
	}

	for i := range sn.Children {
		if _, err := s.materializeNode(ctx, &sn.Children[i], &node.ID); err != nil {
			return nil, err
		}
	}
	return node, nil
}

func sourceOf(s *string) models.ClassificationSource {
	if s == nil {
		return models.SourceUnknown
	}
	return models.ClassificationSource(*s)
}

func strPtr(s string) *string {
	return &s
}
