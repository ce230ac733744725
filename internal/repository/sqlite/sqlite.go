package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/bekalpaslan/cosmograph/internal/domain"

	_ "modernc.org/sqlite"
)

// Repository implements repository.Repository using SQLite
type Repository struct {
	db *sql.DB
}

// New creates a new SQLite repository
func New(dbPath string) (*Repository, error) {
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	repo := &Repository{db: db}
	if err := repo.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return repo, nil
}

func (r *Repository) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS regions (
		id TEXT PRIMARY KEY,
		label TEXT NOT NULL,
		layer TEXT NOT NULL,
		reveal_state TEXT NOT NULL DEFAULT 'hidden',
		discovery_progress REAL NOT NULL DEFAULT 0,
		status TEXT NOT NULL DEFAULT 'undiscovered',
		data JSON NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS bridges (
		id TEXT PRIMARY KEY,
		source_id TEXT NOT NULL,
		target_id TEXT NOT NULL,
		data JSON NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (source_id) REFERENCES regions(id) ON DELETE CASCADE,
		FOREIGN KEY (target_id) REFERENCES regions(id) ON DELETE CASCADE
	);

	CREATE TABLE IF NOT EXISTS triggers (
		region_id TEXT NOT NULL,
		trigger_type TEXT NOT NULL,
		data JSON NOT NULL,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (region_id, trigger_type),
		FOREIGN KEY (region_id) REFERENCES regions(id) ON DELETE CASCADE
	);

	CREATE INDEX IF NOT EXISTS idx_bridges_source ON bridges(source_id);
	CREATE INDEX IF NOT EXISTS idx_bridges_target ON bridges(target_id);
	CREATE INDEX IF NOT EXISTS idx_regions_reveal ON regions(reveal_state);
	`

	_, err := r.db.Exec(schema)
	return err
}

// GetGraph loads the complete universe graph from the database
func (r *Repository) GetGraph(ctx context.Context) (*domain.Graph, error) {
	graph := domain.NewGraph()

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, label, layer, reveal_state, discovery_progress, status, data
		FROM regions
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query regions: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		region, err := scanRegion(rows)
		if err != nil {
			return nil, err
		}
		graph.Regions[region.ID] = region
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating regions: %w", err)
	}

	bridgeRows, err := r.db.QueryContext(ctx, `
		SELECT id, source_id, target_id, data FROM bridges
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query bridges: %w", err)
	}
	defer bridgeRows.Close()

	for bridgeRows.Next() {
		bridge, err := scanBridge(bridgeRows)
		if err != nil {
			return nil, err
		}
		graph.Bridges[bridge.ID] = bridge
	}
	if err := bridgeRows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating bridges: %w", err)
	}

	return graph, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRegion(row rowScanner) (*domain.Region, error) {
	var (
		id, label, layer, revealState, status string
		progress                              float64
		data                                  []byte
	)
	if err := row.Scan(&id, &label, &layer, &revealState, &progress, &status, &data); err != nil {
		return nil, fmt.Errorf("failed to scan region: %w", err)
	}

	region := &domain.Region{}
	if err := json.Unmarshal(data, region); err != nil {
		return nil, fmt.Errorf("failed to unmarshal region data: %w", err)
	}

	// Override with indexed columns (source of truth)
	region.ID = id
	region.Label = label
	region.Layer = domain.RegionLayer(layer)
	region.RevealState = domain.RevealState(revealState)
	region.DiscoveryProgress = progress
	region.Status = domain.RegionStatus(status)
	return region, nil
}

func scanBridge(row rowScanner) (*domain.Bridge, error) {
	var (
		id, sourceID, targetID string
		data                   []byte
	)
	if err := row.Scan(&id, &sourceID, &targetID, &data); err != nil {
		return nil, fmt.Errorf("failed to scan bridge: %w", err)
	}

	bridge := &domain.Bridge{}
	if err := json.Unmarshal(data, bridge); err != nil {
		return nil, fmt.Errorf("failed to unmarshal bridge data: %w", err)
	}

	bridge.ID = id
	bridge.Source = sourceID
	bridge.Target = targetID
	return bridge, nil
}

// GetRegion retrieves a single region by ID, nil when absent
func (r *Repository) GetRegion(ctx context.Context, id string) (*domain.Region, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, label, layer, reveal_state, discovery_progress, status, data
		FROM regions WHERE id = ?
	`, id)

	region, err := scanRegion(row)
	if err != nil {
		if sqlNoRows(err) {
			return nil, nil
		}
		return nil, err
	}
	return region, nil
}

// GetBridge retrieves a single bridge by ID, nil when absent
func (r *Repository) GetBridge(ctx context.Context, id string) (*domain.Bridge, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, source_id, target_id, data FROM bridges WHERE id = ?
	`, id)

	bridge, err := scanBridge(row)
	if err != nil {
		if sqlNoRows(err) {
			return nil, nil
		}
		return nil, err
	}
	return bridge, nil
}

// UpsertRegion inserts or updates a region
func (r *Repository) UpsertRegion(ctx context.Context, region *domain.Region) error {
	return upsertRegion(ctx, r.db, region)
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func upsertRegion(ctx context.Context, db execer, region *domain.Region) error {
	data, err := json.Marshal(region)
	if err != nil {
		return fmt.Errorf("failed to marshal region: %w", err)
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO regions (id, label, layer, reveal_state, discovery_progress, status, data, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(id) DO UPDATE SET
			label = excluded.label,
			layer = excluded.layer,
			reveal_state = excluded.reveal_state,
			discovery_progress = excluded.discovery_progress,
			status = excluded.status,
			data = excluded.data,
			updated_at = CURRENT_TIMESTAMP
	`, region.ID, region.Label, string(region.Layer), string(region.RevealState),
		region.DiscoveryProgress, string(region.Status), data)

	if err != nil {
		return fmt.Errorf("failed to upsert region: %w", err)
	}
	return nil
}

// UpsertBridge inserts or updates a bridge
func (r *Repository) UpsertBridge(ctx context.Context, bridge *domain.Bridge) error {
	return upsertBridge(ctx, r.db, bridge)
}

func upsertBridge(ctx context.Context, db execer, bridge *domain.Bridge) error {
	if bridge.ID == "" {
		bridge.ID = bridge.GenerateID()
	}

	data, err := json.Marshal(bridge)
	if err != nil {
		return fmt.Errorf("failed to marshal bridge: %w", err)
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO bridges (id, source_id, target_id, data, updated_at)
		VALUES (?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(id) DO UPDATE SET
			source_id = excluded.source_id,
			target_id = excluded.target_id,
			data = excluded.data,
			updated_at = CURRENT_TIMESTAMP
	`, bridge.ID, bridge.Source, bridge.Target, data)

	if err != nil {
		return fmt.Errorf("failed to upsert bridge: %w", err)
	}
	return nil
}

// ListTriggers returns all discovery triggers
func (r *Repository) ListTriggers(ctx context.Context) ([]*domain.DiscoveryTrigger, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT data FROM triggers`)
	if err != nil {
		return nil, fmt.Errorf("failed to query triggers: %w", err)
	}
	defer rows.Close()

	var triggers []*domain.DiscoveryTrigger
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("failed to scan trigger: %w", err)
		}

		trigger := &domain.DiscoveryTrigger{}
		if err := json.Unmarshal(data, trigger); err != nil {
			return nil, fmt.Errorf("failed to unmarshal trigger data: %w", err)
		}
		triggers = append(triggers, trigger)
	}
	return triggers, rows.Err()
}

// SaveTrigger inserts or updates a discovery trigger
func (r *Repository) SaveTrigger(ctx context.Context, trigger *domain.DiscoveryTrigger) error {
	data, err := json.Marshal(trigger)
	if err != nil {
		return fmt.Errorf("failed to marshal trigger: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO triggers (region_id, trigger_type, data, updated_at)
		VALUES (?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(region_id, trigger_type) DO UPDATE SET
			data = excluded.data,
			updated_at = CURRENT_TIMESTAMP
	`, trigger.RegionID, string(trigger.Condition.Type), data)

	if err != nil {
		return fmt.Errorf("failed to save trigger: %w", err)
	}
	return nil
}

// ImportGraph merges a graph into the database transactionally. Existing
// rows are updated, new rows inserted; nothing is deleted, so re-seeding
// is additive.
func (r *Repository) ImportGraph(ctx context.Context, graph *domain.Graph) error {
	if err := graph.Validate(); err != nil {
		return fmt.Errorf("refusing to import invalid graph: %w", err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, region := range graph.Regions {
		if err := upsertRegion(ctx, tx, region); err != nil {
			return err
		}
	}
	for _, bridge := range graph.Bridges {
		if err := upsertBridge(ctx, tx, bridge); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit import: %w", err)
	}
	return nil
}

// Close closes the database connection
func (r *Repository) Close() error {
	return r.db.Close()
}

func sqlNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
