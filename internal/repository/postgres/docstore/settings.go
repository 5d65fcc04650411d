package docstore

import (
	"context"
	"fmt"

	models "docforge/internal/domain/models/docstore"
	"docforge/internal/repository/postgres"
)

func (r *Repository) GetSettings(ctx context.Context) (models.Settings, error) {
	query := fmt.Sprintf(`SELECT key, value FROM %s`, r.tables.Settings)

	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}
	defer rows.Close()

	settings := models.Settings{}
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("scan setting: %w", err)
		}
		settings[key] = value
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate settings: %w", err)
	}
	return settings, nil
}

// SaveSettings upserts each key individually; keys absent from the map
// are left untouched.
func (r *Repository) SaveSettings(ctx context.Context, settings models.Settings) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (key, value)
		VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value
	`, r.tables.Settings)

	return r.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		executor := postgres.GetExecutor(txCtx, r.pool)
		for key, value := range settings {
			if _, err := executor.Exec(txCtx, query, key, value); err != nil {
				return fmt.Errorf("save setting %s: %w", key, err)
			}
		}
		return nil
	})
}
