package docstore

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"

	"docforge/internal/domain"
	models "docforge/internal/domain/models/docstore"
	"docforge/internal/repository/postgres"
)

// HashContent returns the SHA-256 hex digest of the UTF-8 bytes of
// text. The content store is addressed purely by this hash.
func HashContent(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

// appendVersion writes content into the content store (deduplicated by
// hash), appends a version row, and points the document at it. Runs on
// whatever executor the context carries.
func (r *Repository) appendVersion(ctx context.Context, documentID, content string, now time.Time) (*models.Version, error) {
	executor := postgres.GetExecutor(ctx, r.pool)
	hash := HashContent(content)

	_, err := executor.Exec(ctx, fmt.Sprintf(`
		INSERT INTO %s (content_hash, text_content)
		VALUES ($1, $2)
		ON CONFLICT (content_hash) DO NOTHING
	`, r.tables.ContentStore), hash, content)
	if err != nil {
		return nil, fmt.Errorf("store content: %w", err)
	}

	version := &models.Version{
		VersionID:   uuid.NewString(),
		DocumentID:  documentID,
		CreatedAt:   now,
		ContentHash: hash,
	}
	_, err = executor.Exec(ctx, fmt.Sprintf(`
		INSERT INTO %s (version_id, document_id, created_at, content_hash)
		VALUES ($1, $2, $3, $4)
	`, r.tables.DocVersions),
		version.VersionID, version.DocumentID, version.CreatedAt, version.ContentHash)
	if err != nil {
		return nil, fmt.Errorf("append version: %w", err)
	}

	_, err = executor.Exec(ctx, fmt.Sprintf(`
		UPDATE %s SET current_version_id = $1 WHERE document_id = $2
	`, r.tables.Documents), version.VersionID, documentID)
	if err != nil {
		return nil, fmt.Errorf("advance current version: %w", err)
	}
	return version, nil
}

// UpdateDocumentContent appends a new version for the node's document.
func (r *Repository) UpdateDocumentContent(ctx context.Context, nodeID, content string) (*models.Version, error) {
	now := time.Now().UTC()
	var version *models.Version

	err := r.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		executor := postgres.GetExecutor(txCtx, r.pool)

		var documentID string
		err := executor.QueryRow(txCtx, fmt.Sprintf(`
			SELECT document_id FROM %s WHERE node_id = $1
		`, r.tables.Documents), nodeID).Scan(&documentID)
		if err != nil {
			if postgres.IsPgNoRowsError(err) {
				return fmt.Errorf("document for node %s: %w", nodeID, domain.ErrNotFound)
			}
			return fmt.Errorf("find document: %w", err)
		}

		version, err = r.appendVersion(txCtx, documentID, content, now)
		if err != nil {
			return err
		}

		_, err = executor.Exec(txCtx, fmt.Sprintf(`
			UPDATE %s SET updated_at = $1 WHERE id = $2
		`, r.tables.Nodes), now, nodeID)
		if err != nil {
			return fmt.Errorf("touch node: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return version, nil
}

// GetDocumentContent returns the current version's text, or empty when
// the version chain is empty.
func (r *Repository) GetDocumentContent(ctx context.Context, nodeID string) (string, error) {
	executor := postgres.GetExecutor(ctx, r.pool)

	var content *string
	err := executor.QueryRow(ctx, fmt.Sprintf(`
		SELECT cs.text_content
		FROM %s d
		LEFT JOIN %s v ON v.version_id = d.current_version_id
		LEFT JOIN %s cs ON cs.content_hash = v.content_hash
		WHERE d.node_id = $1
	`, r.tables.Documents, r.tables.DocVersions, r.tables.ContentStore), nodeID).Scan(&content)
	if err != nil {
		if postgres.IsPgNoRowsError(err) {
			return "", fmt.Errorf("document for node %s: %w", nodeID, domain.ErrNotFound)
		}
		return "", fmt.Errorf("get document content: %w", err)
	}
	if content == nil {
		return "", nil
	}
	return *content, nil
}

// GetVersionsForNode lists the document's version chain, newest first.
func (r *Repository) GetVersionsForNode(ctx context.Context, nodeID string) ([]models.Version, error) {
	executor := postgres.GetExecutor(ctx, r.pool)

	rows, err := executor.Query(ctx, fmt.Sprintf(`
		SELECT v.version_id, v.document_id, v.created_at, v.content_hash
		FROM %s v
		JOIN %s d ON d.document_id = v.document_id
		WHERE d.node_id = $1
		ORDER BY v.created_at DESC, v.version_id DESC
	`, r.tables.DocVersions, r.tables.Documents), nodeID)
	if err != nil {
		return nil, fmt.Errorf("list versions: %w", err)
	}
	defer rows.Close()

	versions := []models.Version{}
	for rows.Next() {
		var v models.Version
		if err := rows.Scan(&v.VersionID, &v.DocumentID, &v.CreatedAt, &v.ContentHash); err != nil {
			return nil, fmt.Errorf("scan version: %w", err)
		}
		versions = append(versions, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate versions: %w", err)
	}
	return versions, nil
}

// GetVersionContent returns the text stored for one version.
func (r *Repository) GetVersionContent(ctx context.Context, versionID string) (string, error) {
	executor := postgres.GetExecutor(ctx, r.pool)

	var content string
	err := executor.QueryRow(ctx, fmt.Sprintf(`
		SELECT cs.text_content
		FROM %s v
		JOIN %s cs ON cs.content_hash = v.content_hash
		WHERE v.version_id = $1
	`, r.tables.DocVersions, r.tables.ContentStore), versionID).Scan(&content)
	if err != nil {
		if postgres.IsPgNoRowsError(err) {
			return "", fmt.Errorf("version %s: %w", versionID, domain.ErrNotFound)
		}
		return "", fmt.Errorf("get version content: %w", err)
	}
	return content, nil
}

// DeleteDocVersions removes the named versions from the node's chain.
// Unknown version ids simply match nothing. The current-version pointer
// is recomputed as the newest remaining version, or NULL when the chain
// is empty; remaining entries keep their order.
func (r *Repository) DeleteDocVersions(ctx context.Context, nodeID string, versionIDs []string) error {
	if len(versionIDs) == 0 {
		return nil
	}

	return r.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		executor := postgres.GetExecutor(txCtx, r.pool)

		var documentID string
		err := executor.QueryRow(txCtx, fmt.Sprintf(`
			SELECT document_id FROM %s WHERE node_id = $1
		`, r.tables.Documents), nodeID).Scan(&documentID)
		if err != nil {
			if postgres.IsPgNoRowsError(err) {
				return fmt.Errorf("document for node %s: %w", nodeID, domain.ErrNotFound)
			}
			return fmt.Errorf("find document: %w", err)
		}

		_, err = executor.Exec(txCtx, fmt.Sprintf(`
			DELETE FROM %s WHERE document_id = $1 AND version_id = ANY($2)
		`, r.tables.DocVersions), documentID, versionIDs)
		if err != nil {
			return fmt.Errorf("delete versions: %w", err)
		}

		_, err = executor.Exec(txCtx, fmt.Sprintf(`
			UPDATE %s SET current_version_id = (
				SELECT version_id FROM %s
				WHERE document_id = $1
				ORDER BY created_at DESC, version_id DESC
				LIMIT 1
			)
			WHERE document_id = $1
		`, r.tables.Documents, r.tables.DocVersions), documentID)
		if err != nil {
			return fmt.Errorf("recompute current version: %w", err)
		}
		return nil
	})
}
