package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	models "docforge/internal/domain/models/docstore"
)

func (r *Repository) ListTemplates(ctx context.Context) ([]models.Template, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	templates := make([]models.Template, 0, len(r.templates))
	for _, tpl := range r.templates {
		templates = append(templates, tpl)
	}
	sort.SliceStable(templates, func(i, j int) bool {
		if templates[i].SortOrder != templates[j].SortOrder {
			return templates[i].SortOrder < templates[j].SortOrder
		}
		return templates[i].CreatedAt.Before(templates[j].CreatedAt)
	})
	return templates, nil
}

// SaveTemplate inserts or fully replaces a template. An empty id means
// a new template; the generated id is written back into tpl.
func (r *Repository) SaveTemplate(ctx context.Context, tpl *models.Template) error {
	if err := tpl.Validate(); err != nil {
		return fmt.Errorf("invalid template: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	if tpl.ID == "" {
		tpl.ID = uuid.NewString()
		tpl.CreatedAt = now
	} else if existing, ok := r.templates[tpl.ID]; ok {
		tpl.CreatedAt = existing.CreatedAt
	}
	tpl.UpdatedAt = now
	r.templates[tpl.ID] = *tpl

	r.persistLocked(ctx)
	return nil
}

func (r *Repository) DeleteTemplate(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.templates, id)
	r.persistLocked(ctx)
	return nil
}
