package docstore

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	models "docforge/internal/domain/models/docstore"
	"docforge/internal/repository/postgres"
	svc "docforge/internal/service/docstore"
)

// Tree mutations snapshot the node table into the shared planner arena,
// compute the new ordering there, and write the result back inside one
// transaction. Both backends run the identical planner, which is what
// keeps their ordering behavior equivalent.

// MoveNodes removes the dragged batch from its sibling lists and
// reinserts it at the computed target position. A target inside a
// dragged subtree makes the whole call a no-op.
func (r *Repository) MoveNodes(ctx context.Context, ids []string, targetID *string, position models.MovePosition) error {
	if len(ids) == 0 {
		return nil
	}
	now := time.Now().UTC()

	return r.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		nodes, err := r.loadAllNodes(txCtx)
		if err != nil {
			return err
		}

		arena := svc.NewArena(nodes)
		updates, ok := arena.PlanMove(ids, targetID, position)
		if !ok {
			r.logger.Warn("move target inside dragged subtree, ignoring",
				"target", targetID, "dragged", len(ids))
			return nil
		}
		if err := r.applySortUpdates(txCtx, updates); err != nil {
			return err
		}

		executor := postgres.GetExecutor(txCtx, r.pool)
		_, err = executor.Exec(txCtx, fmt.Sprintf(`
			UPDATE %s SET updated_at = $1 WHERE id = ANY($2)
		`, r.tables.Nodes), now, ids)
		if err != nil {
			return fmt.Errorf("touch moved nodes: %w", err)
		}
		return nil
	})
}

// DeleteNodes cascades to all descendants and their document rows and
// version chains. Content blobs stay: they are shared and never
// collected.
func (r *Repository) DeleteNodes(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	return r.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		nodes, err := r.loadAllNodes(txCtx)
		if err != nil {
			return err
		}

		arena := svc.NewArena(nodes)
		doomed, updates := arena.PlanDelete(ids)
		if len(doomed) == 0 {
			return nil
		}

		executor := postgres.GetExecutor(txCtx, r.pool)
		_, err = executor.Exec(txCtx, fmt.Sprintf(`
			DELETE FROM %s WHERE document_id IN (
				SELECT document_id FROM %s WHERE node_id = ANY($1)
			)
		`, r.tables.DocVersions, r.tables.Documents), doomed)
		if err != nil {
			return fmt.Errorf("delete version chains: %w", err)
		}

		_, err = executor.Exec(txCtx, fmt.Sprintf(`
			DELETE FROM %s WHERE node_id = ANY($1)
		`, r.tables.Documents), doomed)
		if err != nil {
			return fmt.Errorf("delete documents: %w", err)
		}

		_, err = executor.Exec(txCtx, fmt.Sprintf(`
			DELETE FROM %s WHERE id = ANY($1)
		`, r.tables.Nodes), doomed)
		if err != nil {
			return fmt.Errorf("delete nodes: %w", err)
		}

		return r.applySortUpdates(txCtx, updates)
	})
}

// DuplicateNodes deep-copies each selected subtree. Clones get fresh
// node, document, and version ids; version rows reuse content hashes,
// so no blob is duplicated.
func (r *Repository) DuplicateNodes(ctx context.Context, ids []string) ([]string, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	now := time.Now().UTC()

	var rootIDs []string
	err := r.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		nodes, err := r.loadAllNodes(txCtx)
		if err != nil {
			return err
		}

		arena := svc.NewArena(nodes)
		clones, roots, updates := arena.PlanDuplicate(ids, uuid.NewString, now)
		rootIDs = roots

		executor := postgres.GetExecutor(txCtx, r.pool)
		for _, clone := range clones {
			n := clone.Node
			_, err := executor.Exec(txCtx, fmt.Sprintf(`
				INSERT INTO %s (id, parent_id, node_type, title, sort_order, created_at, updated_at)
				VALUES ($1, $2, $3, $4, $5, $6, $6)
			`, r.tables.Nodes), n.ID, n.ParentID, n.NodeType, n.Title, n.SortOrder, now)
			if err != nil {
				return fmt.Errorf("insert duplicate node: %w", err)
			}

			if n.NodeType == models.NodeTypeDocument {
				if err := r.cloneDocument(txCtx, clone.SourceID, n.ID); err != nil {
					return err
				}
			}
		}

		return r.applySortUpdates(txCtx, updates)
	})
	if err != nil {
		return nil, err
	}
	return rootIDs, nil
}

// cloneDocument copies the document row and its version chain from the
// source node to the clone, mapping version ids to fresh ones while
// keeping content hashes and version timestamps.
func (r *Repository) cloneDocument(ctx context.Context, sourceNodeID, cloneNodeID string) error {
	executor := postgres.GetExecutor(ctx, r.pool)

	var src models.Document
	err := executor.QueryRow(ctx, fmt.Sprintf(`
		SELECT document_id, doc_type, language_hint, language_source, doc_type_source,
		       classification_updated_at, default_view_mode, current_version_id
		FROM %s WHERE node_id = $1
	`, r.tables.Documents), sourceNodeID).Scan(
		&src.DocumentID, &src.DocType, &src.LanguageHint, &src.LanguageSource,
		&src.DocTypeSource, &src.ClassificationUpdatedAt, &src.DefaultViewMode,
		&src.CurrentVersionID)
	if err != nil {
		if postgres.IsPgNoRowsError(err) {
			return nil // document node without a document row; tolerate
		}
		return fmt.Errorf("load source document: %w", err)
	}

	newDocID := uuid.NewString()

	rows, err := executor.Query(ctx, fmt.Sprintf(`
		SELECT version_id, created_at, content_hash
		FROM %s WHERE document_id = $1
		ORDER BY created_at ASC, version_id ASC
	`, r.tables.DocVersions), src.DocumentID)
	if err != nil {
		return fmt.Errorf("load source versions: %w", err)
	}
	type versionRow struct {
		id        string
		createdAt time.Time
		hash      string
	}
	var versions []versionRow
	for rows.Next() {
		var v versionRow
		if err := rows.Scan(&v.id, &v.createdAt, &v.hash); err != nil {
			rows.Close()
			return fmt.Errorf("scan source version: %w", err)
		}
		versions = append(versions, v)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate source versions: %w", err)
	}

	idMap := make(map[string]string, len(versions))
	for _, v := range versions {
		idMap[v.id] = uuid.NewString()
	}

	var newCurrent *string
	if src.CurrentVersionID != nil {
		if mapped, ok := idMap[*src.CurrentVersionID]; ok {
			newCurrent = &mapped
		}
	}

	_, err = executor.Exec(ctx, fmt.Sprintf(`
		INSERT INTO %s (document_id, node_id, doc_type, language_hint, language_source,
		                doc_type_source, classification_updated_at, default_view_mode,
		                current_version_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, r.tables.Documents),
		newDocID, cloneNodeID, src.DocType, src.LanguageHint, src.LanguageSource,
		src.DocTypeSource, src.ClassificationUpdatedAt, src.DefaultViewMode, newCurrent)
	if err != nil {
		return fmt.Errorf("insert duplicate document: %w", err)
	}

	for _, v := range versions {
		_, err := executor.Exec(ctx, fmt.Sprintf(`
			INSERT INTO %s (version_id, document_id, created_at, content_hash)
			VALUES ($1, $2, $3, $4)
		`, r.tables.DocVersions), idMap[v.id], newDocID, v.createdAt, v.hash)
		if err != nil {
			return fmt.Errorf("insert duplicate version: %w", err)
		}
	}
	return nil
}

func (r *Repository) applySortUpdates(ctx context.Context, updates []svc.SortUpdate) error {
	executor := postgres.GetExecutor(ctx, r.pool)
	for _, u := range updates {
		_, err := executor.Exec(ctx, fmt.Sprintf(`
			UPDATE %s SET parent_id = $1, sort_order = $2 WHERE id = $3
		`, r.tables.Nodes), u.ParentID, u.SortOrder, u.ID)
		if err != nil {
			return fmt.Errorf("apply sort update: %w", err)
		}
	}
	return nil
}
