package memory

import (
	"context"

	models "docforge/internal/domain/models/docstore"
)

func (r *Repository) GetSettings(ctx context.Context) (models.Settings, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	settings := make(models.Settings, len(r.settings))
	for k, v := range r.settings {
		settings[k] = v
	}
	return settings, nil
}

// SaveSettings upserts each key; keys absent from the map are left
// untouched, matching the persistent backend's row-per-key writes.
func (r *Repository) SaveSettings(ctx context.Context, settings models.Settings) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for k, v := range settings {
		r.settings[k] = v
	}
	r.persistLocked(ctx)
	return nil
}
