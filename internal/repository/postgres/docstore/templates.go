package docstore

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	models "docforge/internal/domain/models/docstore"
	"docforge/internal/repository/postgres"
)

func (r *Repository) ListTemplates(ctx context.Context) ([]models.Template, error) {
	query := fmt.Sprintf(`
		SELECT id, title, content, doc_type, language_hint, sort_order, created_at, updated_at
		FROM %s
		ORDER BY sort_order, created_at
	`, r.tables.Templates)

	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	defer rows.Close()

	templates := []models.Template{}
	for rows.Next() {
		var t models.Template
		if err := rows.Scan(&t.ID, &t.Title, &t.Content, &t.DocType, &t.LanguageHint,
			&t.SortOrder, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan template: %w", err)
		}
		templates = append(templates, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate templates: %w", err)
	}
	return templates, nil
}

// SaveTemplate inserts or fully replaces a template. An empty id means
// a new template; the generated id is written back into tpl.
func (r *Repository) SaveTemplate(ctx context.Context, tpl *models.Template) error {
	if err := tpl.Validate(); err != nil {
		return fmt.Errorf("invalid template: %w", err)
	}

	now := time.Now().UTC()
	if tpl.ID == "" {
		tpl.ID = uuid.NewString()
		tpl.CreatedAt = now
	}
	tpl.UpdatedAt = now

	query := fmt.Sprintf(`
		INSERT INTO %s (id, title, content, doc_type, language_hint, sort_order, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title,
			content = EXCLUDED.content,
			doc_type = EXCLUDED.doc_type,
			language_hint = EXCLUDED.language_hint,
			sort_order = EXCLUDED.sort_order,
			updated_at = EXCLUDED.updated_at
	`, r.tables.Templates)

	executor := postgres.GetExecutor(ctx, r.pool)
	if _, err := executor.Exec(ctx, query,
		tpl.ID, tpl.Title, tpl.Content, tpl.DocType, tpl.LanguageHint,
		tpl.SortOrder, tpl.CreatedAt, tpl.UpdatedAt); err != nil {
		return fmt.Errorf("save template %s: %w", tpl.ID, err)
	}
	return nil
}

func (r *Repository) DeleteTemplate(ctx context.Context, id string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, r.tables.Templates)
	executor := postgres.GetExecutor(ctx, r.pool)
	if _, err := executor.Exec(ctx, query, id); err != nil {
		return fmt.Errorf("delete template %s: %w", id, err)
	}
	return nil
}
