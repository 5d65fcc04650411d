package docstore

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"docforge/internal/domain"
	models "docforge/internal/domain/models/docstore"
	"docforge/internal/domain/repositories"
	docstoreRepo "docforge/internal/domain/repositories/docstore"
	"docforge/internal/repository/postgres"
	"docforge/internal/seed"
	svc "docforge/internal/service/docstore"
)

// Repository is the persistent backend: nodes, documents, version
// chains, and the hash-addressed content store live in normalized
// tables joined at read time.
type Repository struct {
	pool        *pgxpool.Pool
	tables      *postgres.TableNames
	logger      *slog.Logger
	txManager   repositories.TransactionManager
	initialized atomic.Bool
}

// NewRepository creates the persistent repository.
func NewRepository(config *postgres.RepositoryConfig, txManager repositories.TransactionManager) *Repository {
	return &Repository{
		pool:      config.Pool,
		tables:    config.Tables,
		logger:    config.Logger,
		txManager: txManager,
	}
}

var _ docstoreRepo.Repository = (*Repository)(nil)

// SupportsContentDedup is true: writes are content-addressed by
// SHA-256, so identical text occupies one blob.
func (r *Repository) SupportsContentDedup() bool { return true }

// Close releases the connection pool.
func (r *Repository) Close() {
	r.pool.Close()
}

// Init creates the schema, backfills current-version pointers left
// behind by older installs, and seeds the default templates. A second
// call is a no-op.
func (r *Repository) Init(ctx context.Context) error {
	if !r.initialized.CompareAndSwap(false, true) {
		return nil
	}

	for _, ddl := range r.schema() {
		if _, err := r.pool.Exec(ctx, ddl); err != nil {
			// CREATE ... IF NOT EXISTS still races a concurrent creator
			// on the catalog's unique indexes; the object exists, so
			// carry on.
			if postgres.IsPgDuplicateError(err) {
				continue
			}
			r.initialized.Store(false)
			return fmt.Errorf("create schema: %w", err)
		}
	}

	if err := r.backfillCurrentVersions(ctx); err != nil {
		r.initialized.Store(false)
		return err
	}

	if err := r.seedTemplates(ctx); err != nil {
		r.initialized.Store(false)
		return err
	}

	r.logger.Info("persistent repository initialized", "tables", r.tables.Nodes)
	return nil
}

func (r *Repository) schema() []string {
	t := r.tables
	return []string{
		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				id UUID PRIMARY KEY,
				parent_id UUID,
				node_type TEXT NOT NULL,
				title TEXT NOT NULL,
				sort_order INT NOT NULL,
				created_at TIMESTAMPTZ NOT NULL,
				updated_at TIMESTAMPTZ NOT NULL
			)`, t.Nodes),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s_parent_idx ON %s (parent_id, sort_order)`,
			t.Nodes, t.Nodes),
		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				content_hash TEXT PRIMARY KEY,
				text_content TEXT NOT NULL,
				blob_content BYTEA
			)`, t.ContentStore),
		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				document_id UUID PRIMARY KEY,
				node_id UUID NOT NULL UNIQUE,
				doc_type TEXT NOT NULL DEFAULT 'prompt',
				language_hint TEXT NOT NULL DEFAULT 'markdown',
				language_source TEXT NOT NULL DEFAULT 'unknown',
				doc_type_source TEXT NOT NULL DEFAULT 'unknown',
				classification_updated_at TIMESTAMPTZ,
				default_view_mode TEXT NOT NULL DEFAULT 'edit',
				current_version_id UUID
			)`, t.Documents),
		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				version_id UUID PRIMARY KEY,
				document_id UUID NOT NULL,
				created_at TIMESTAMPTZ NOT NULL,
				content_hash TEXT NOT NULL REFERENCES %s (content_hash)
			)`, t.DocVersions, t.ContentStore),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s_doc_idx ON %s (document_id, created_at DESC)`,
			t.DocVersions, t.DocVersions),
		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				id UUID PRIMARY KEY,
				title TEXT NOT NULL,
				content TEXT NOT NULL DEFAULT '',
				doc_type TEXT NOT NULL DEFAULT 'prompt',
				language_hint TEXT NOT NULL DEFAULT 'markdown',
				sort_order INT NOT NULL DEFAULT 0,
				created_at TIMESTAMPTZ NOT NULL,
				updated_at TIMESTAMPTZ NOT NULL
			)`, t.Templates),
		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				key TEXT PRIMARY KEY,
				value TEXT NOT NULL
			)`, t.Settings),
	}
}

// backfillCurrentVersions repairs documents whose current-version
// pointer was lost by older installs: point each at its newest
// remaining version.
func (r *Repository) backfillCurrentVersions(ctx context.Context) error {
	query := fmt.Sprintf(`
		UPDATE %s d
		SET current_version_id = v.version_id
		FROM (
			SELECT DISTINCT ON (document_id) document_id, version_id
			FROM %s
			ORDER BY document_id, created_at DESC, version_id DESC
		) v
		WHERE v.document_id = d.document_id AND d.current_version_id IS NULL
	`, r.tables.Documents, r.tables.DocVersions)

	tag, err := r.pool.Exec(ctx, query)
	if err != nil {
		return fmt.Errorf("backfill current versions: %w", err)
	}
	if tag.RowsAffected() > 0 {
		r.logger.Info("backfilled current version pointers", "documents", tag.RowsAffected())
	}
	return nil
}

func (r *Repository) seedTemplates(ctx context.Context) error {
	var count int
	if err := r.pool.QueryRow(ctx,
		fmt.Sprintf(`SELECT COUNT(*) FROM %s`, r.tables.Templates)).Scan(&count); err != nil {
		return fmt.Errorf("count templates: %w", err)
	}
	if count > 0 {
		return nil
	}

	defaults, err := seed.DefaultTemplates()
	if err != nil {
		return fmt.Errorf("load default templates: %w", err)
	}
	now := time.Now().UTC()
	for i, tpl := range defaults {
		_, err := r.pool.Exec(ctx, fmt.Sprintf(`
			INSERT INTO %s (id, title, content, doc_type, language_hint, sort_order, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $7)
		`, r.tables.Templates),
			uuid.NewString(), tpl.Title, tpl.Content, tpl.DocType, tpl.LanguageHint, i, now)
		if err != nil {
			return fmt.Errorf("seed template %q: %w", tpl.Title, err)
		}
	}
	r.logger.Info("seeded default templates", "count", len(defaults))
	return nil
}

// loadAllNodes snapshots the whole tree for the planner.
func (r *Repository) loadAllNodes(ctx context.Context) ([]*models.Node, error) {
	query := fmt.Sprintf(`
		SELECT id, parent_id, node_type, title, sort_order, created_at, updated_at
		FROM %s
		ORDER BY parent_id NULLS FIRST, sort_order
	`, r.tables.Nodes)

	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("load nodes: %w", err)
	}
	defer rows.Close()

	var nodes []*models.Node
	for rows.Next() {
		var n models.Node
		if err := rows.Scan(&n.ID, &n.ParentID, &n.NodeType, &n.Title,
			&n.SortOrder, &n.CreatedAt, &n.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan node: %w", err)
		}
		nodes = append(nodes, &n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate nodes: %w", err)
	}
	return nodes, nil
}

// GetNodeTree returns the nested tree, siblings ordered by sort order.
func (r *Repository) GetNodeTree(ctx context.Context) ([]*models.NodeTreeItem, error) {
	nodes, err := r.loadAllNodes(ctx)
	if err != nil {
		return nil, err
	}
	docs, err := r.loadAllDocuments(ctx)
	if err != nil {
		return nil, err
	}

	byNode := make(map[string]*models.Document, len(docs))
	for i := range docs {
		byNode[docs[i].NodeID] = &docs[i]
	}

	items := make(map[string]*models.NodeTreeItem, len(nodes))
	for _, n := range nodes {
		items[n.ID] = &models.NodeTreeItem{
			Node:     *n,
			Document: byNode[n.ID],
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

func (r *Repository) loadAllDocuments(ctx context.Context) ([]models.Document, error) {
	query := fmt.Sprintf(`
		SELECT document_id, node_id, doc_type, language_hint, language_source,
		       doc_type_source, classification_updated_at, default_view_mode,
		       current_version_id
		FROM %s
	`, r.tables.Documents)

	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("load documents: %w", err)
	}
	defer rows.Close()

	var docs []models.Document
	for rows.Next() {
		var d models.Document
		if err := rows.Scan(&d.DocumentID, &d.NodeID, &d.DocType, &d.LanguageHint,
			&d.LanguageSource, &d.DocTypeSource, &d.ClassificationUpdatedAt,
			&d.DefaultViewMode, &d.CurrentVersionID); err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		docs = append(docs, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate documents: %w", err)
	}
	return docs, nil
}

// AddNode creates a node at the end of the target sibling list and, for
// documents, the document row plus an initial version when content was
// supplied.
func (r *Repository) AddNode(ctx context.Context, draft models.NodeDraft) (*models.Node, error) {
	if err := draft.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	now := time.Now().UTC()
	node := &models.Node{
		ID:        uuid.NewString(),
		ParentID:  draft.ParentID,
		NodeType:  draft.NodeType,
		Title:     draft.Title,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err := r.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		executor := postgres.GetExecutor(txCtx, r.pool)

		var query string
		var args []interface{}
		if draft.ParentID == nil {
			query = fmt.Sprintf(`SELECT COALESCE(MAX(sort_order) + 1, 0) FROM %s WHERE parent_id IS NULL`, r.tables.Nodes)
		} else {
			query = fmt.Sprintf(`SELECT COALESCE(MAX(sort_order) + 1, 0) FROM %s WHERE parent_id = $1`, r.tables.Nodes)
			args = append(args, *draft.ParentID)
		}
		if err := executor.QueryRow(txCtx, query, args...).Scan(&node.SortOrder); err != nil {
			return fmt.Errorf("next sort order: %w", err)
		}

		_, err := executor.Exec(txCtx, fmt.Sprintf(`
			INSERT INTO %s (id, parent_id, node_type, title, sort_order, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $6)
		`, r.tables.Nodes),
			node.ID, node.ParentID, node.NodeType, node.Title, node.SortOrder, now)
		if err != nil {
			return fmt.Errorf("insert node: %w", err)
		}

		if draft.NodeType != models.NodeTypeDocument {
			return nil
		}

		doc := svc.DocumentForDraft(draft, node.ID, uuid.NewString(), now)
		_, err = executor.Exec(txCtx, fmt.Sprintf(`
			INSERT INTO %s (document_id, node_id, doc_type, language_hint, language_source,
			                doc_type_source, classification_updated_at, default_view_mode)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		`, r.tables.Documents),
			doc.DocumentID, doc.NodeID, doc.DocType, doc.LanguageHint, doc.LanguageSource,
			doc.DocTypeSource, doc.ClassificationUpdatedAt, doc.DefaultViewMode)
		if err != nil {
			return fmt.Errorf("insert document: %w", err)
		}

		if draft.Content != "" {
			if _, err := r.appendVersion(txCtx, doc.DocumentID, draft.Content, now); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return node, nil
}

// UpdateNode applies the non-nil patch fields. An unknown id is a
// silent no-op: the tree contract is permissive, not strict.
func (r *Repository) UpdateNode(ctx context.Context, id string, patch models.NodePatch) error {
	now := time.Now().UTC()
	executor := postgres.GetExecutor(ctx, r.pool)

	if patch.Title != nil {
		_, err := executor.Exec(ctx, fmt.Sprintf(`
			UPDATE %s SET title = $1, updated_at = $2 WHERE id = $3
		`, r.tables.Nodes), *patch.Title, now, id)
		if err != nil {
			return fmt.Errorf("update node title: %w", err)
		}
	}

	if patch.DocType != nil || patch.LanguageHint != nil || patch.DefaultViewMode != nil {
		set := ""
		args := []interface{}{}
		n := 1
		if patch.DocType != nil {
			set += fmt.Sprintf("doc_type = $%d, doc_type_source = 'user', classification_updated_at = $%d, ", n, n+1)
			args = append(args, *patch.DocType, now)
			n += 2
		}
		if patch.LanguageHint != nil {
			set += fmt.Sprintf("language_hint = $%d, language_source = 'user', classification_updated_at = $%d, ", n, n+1)
			args = append(args, *patch.LanguageHint, now)
			n += 2
		}
		if patch.DefaultViewMode != nil {
			set += fmt.Sprintf("default_view_mode = $%d, ", n)
			args = append(args, *patch.DefaultViewMode)
			n++
		}
		set = set[:len(set)-2]
		args = append(args, id)

		_, err := executor.Exec(ctx, fmt.Sprintf(`
			UPDATE %s SET %s WHERE node_id = $%d
		`, r.tables.Documents, set, n), args...)
		if err != nil {
			return fmt.Errorf("update document fields: %w", err)
		}
	}
	return nil
}
