// Package memory implements the repository contract in process, for
// installs that run without a database. State lives in maps guarded by
// one mutex and is mirrored to a key-value snapshot after every
// mutation so a restart can pick up where it left off.
//
// Unlike the persistent backend, version content is stored per version
// with no hash-based sharing. SupportsContentDedup reports this.
package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	models "docforge/internal/domain/models/docstore"
	docstoreRepo "docforge/internal/domain/repositories/docstore"
	"docforge/internal/seed"
)

// snapshotSchemaVersion guards against restoring snapshots written by
// an incompatible build.
const snapshotSchemaVersion = 1

// storedVersion carries the version row plus its own content copy.
type storedVersion struct {
	models.Version
	Content string `json:"content"`
}

// snapshot is the JSON document persisted to the key-value store.
type snapshot struct {
	SchemaVersion int                        `json:"schema_version"`
	Nodes         []*models.Node             `json:"nodes"`
	Documents     []*models.Document         `json:"documents"`
	Versions      map[string][]storedVersion `json:"versions"`
	Templates     []models.Template          `json:"templates"`
	Settings      models.Settings            `json:"settings"`
}

// Repository is the ephemeral backend. A nil snapshot client disables
// persistence entirely; everything else behaves the same.
type Repository struct {
	mu sync.RWMutex

	nodes     map[string]*models.Node
	documents map[string]*models.Document // keyed by node id
	versions  map[string][]storedVersion  // keyed by document id, append order
	templates map[string]models.Template
	settings  models.Settings

	snapshots   *redis.Client
	snapshotKey string
	logger      *slog.Logger
	initialized bool
}

var _ docstoreRepo.Repository = (*Repository)(nil)

// Config wires the ephemeral backend.
type Config struct {
	// Snapshots is optional; nil means no persistence across restarts.
	Snapshots   *redis.Client
	SnapshotKey string
	Logger      *slog.Logger
}

func NewRepository(config Config) *Repository {
	if config.SnapshotKey == "" {
		config.SnapshotKey = "docforge:snapshot"
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	return &Repository{
		nodes:       make(map[string]*models.Node),
		documents:   make(map[string]*models.Document),
		versions:    make(map[string][]storedVersion),
		templates:   make(map[string]models.Template),
		settings:    models.Settings{},
		snapshots:   config.Snapshots,
		snapshotKey: config.SnapshotKey,
		logger:      config.Logger,
	}
}

// SupportsContentDedup is false here: every version keeps its own copy.
func (r *Repository) SupportsContentDedup() bool { return false }

// Init restores the latest snapshot when one exists, then seeds the
// default templates if the template store came up empty. Repeat calls
// are no-ops.
func (r *Repository) Init(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.initialized {
		return nil
	}
	r.initialized = true

	if err := r.restoreLocked(ctx); err != nil {
		return err
	}

	if len(r.templates) == 0 {
		defaults, err := seed.DefaultTemplates()
		if err != nil {
			return fmt.Errorf("load default templates: %w", err)
		}
		now := time.Now().UTC()
		for i, tpl := range defaults {
			id := uuid.NewString()
			r.templates[id] = models.Template{
				ID:           id,
				Title:        tpl.Title,
				Content:      tpl.Content,
				DocType:      tpl.DocType,
				LanguageHint: tpl.LanguageHint,
				SortOrder:    i,
				CreatedAt:    now,
				UpdatedAt:    now,
			}
		}
		r.logger.Info("seeded default templates", "count", len(defaults))
	}
	return nil
}

func (r *Repository) Close() {
	if r.snapshots != nil {
		if err := r.snapshots.Close(); err != nil {
			r.logger.Warn("close snapshot client", "error", err)
		}
	}
}

func (r *Repository) restoreLocked(ctx context.Context) error {
	if r.snapshots == nil {
		return nil
	}

	raw, err := r.snapshots.Get(ctx, r.snapshotKey).Bytes()
	if err == redis.Nil {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read snapshot: %w", err)
	}

	var snap snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return fmt.Errorf("decode snapshot: %w", err)
	}
	if snap.SchemaVersion != snapshotSchemaVersion {
		r.logger.Warn("ignoring snapshot with unknown schema version",
			"found", snap.SchemaVersion, "want", snapshotSchemaVersion)
		return nil
	}

	for _, node := range snap.Nodes {
		r.nodes[node.ID] = node
	}
	for _, doc := range snap.Documents {
		r.documents[doc.NodeID] = doc
	}
	if snap.Versions != nil {
		r.versions = snap.Versions
	}
	for _, tpl := range snap.Templates {
		r.templates[tpl.ID] = tpl
	}
	if snap.Settings != nil {
		r.settings = snap.Settings
	}
	r.logger.Info("restored snapshot", "nodes", len(r.nodes), "templates", len(r.templates))
	return nil
}

// persistLocked serializes current state while the write lock is held
// and pushes it to the key-value store. A snapshot failure is logged,
// never surfaced: the in-memory mutation already happened.
func (r *Repository) persistLocked(ctx context.Context) {
	if r.snapshots == nil {
		return
	}

	snap := snapshot{
		SchemaVersion: snapshotSchemaVersion,
		Versions:      r.versions,
		Templates:     make([]models.Template, 0, len(r.templates)),
		Settings:      r.settings,
	}
	for _, node := range r.nodes {
		snap.Nodes = append(snap.Nodes, node)
	}
	for _, doc := range r.documents {
		snap.Documents = append(snap.Documents, doc)
	}
	for _, tpl := range r.templates {
		snap.Templates = append(snap.Templates, tpl)
	}

	raw, err := json.Marshal(snap)
	if err != nil {
		r.logger.Error("encode snapshot", "error", err)
		return
	}
	if err := r.snapshots.Set(ctx, r.snapshotKey, raw, 0).Err(); err != nil {
		r.logger.Error("write snapshot", "error", err)
	}
}
