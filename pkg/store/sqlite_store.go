// Package store persists model snapshots so a search run can be resumed or
// inspected after the fact. The engine itself never touches storage; the
// outer driver saves the model between generations and loads it on resume.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"sync"

	_ "github.com/mattn/go-sqlite3"

	"github.com/XiaoConstantine/pge-go/pkg/core"
	"github.com/XiaoConstantine/pge-go/pkg/errors"
	"github.com/XiaoConstantine/pge-go/pkg/logging"
)

// SnapshotStore is a SQLite-backed archive of model snapshots, keyed by run
// ID and generation number.
type SnapshotStore struct {
	db   *sql.DB
	mu   sync.RWMutex
	path string

	initialized sync.Once
}

// NewSnapshotStore opens (or creates) the snapshot database at path. Use
// ":memory:" for an in-memory store.
func NewSnapshotStore(path string) (*SnapshotStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, errors.WithFields(
			errors.Wrap(err, errors.StorageFailed, "failed to open snapshot database"),
			errors.Fields{"path": path},
		)
	}

	s := &SnapshotStore{
		db:   db,
		path: path,
	}
	if err := s.ensureInitialized(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *SnapshotStore) ensureInitialized() error {
	var initErr error
	s.initialized.Do(func() {
		// Enable WAL mode for better concurrency
		if _, err := s.db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
			initErr = errors.Wrap(err, errors.StorageFailed, "failed to enable WAL mode")
			return
		}

		query := `
        CREATE TABLE IF NOT EXISTS model_snapshots (
            run_id     TEXT NOT NULL,
            generation INTEGER NOT NULL,
            model      TEXT NOT NULL,
            created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
            PRIMARY KEY (run_id, generation)
        );
        `

		if _, err := s.db.Exec(query); err != nil {
			initErr = errors.WithFields(
				errors.Wrap(err, errors.StorageFailed, "failed to initialize database"),
				errors.Fields{"query": query},
			)
			return
		}
	})
	return initErr
}

// Save writes one generation's model under the run ID. Saving the same
// generation twice overwrites the earlier snapshot.
func (s *SnapshotStore) Save(ctx context.Context, runID string, generation int, model *core.Model) error {
	if err := errors.CheckContext(ctx, "snapshot save"); err != nil {
		return err
	}

	// Encode outside the transaction
	doc, err := json.Marshal(model)
	if err != nil {
		return errors.WithFields(
			errors.Wrap(err, errors.StorageFailed, "failed to encode model"),
			errors.Fields{"run_id": runID, "generation": generation},
		)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return errors.Wrap(err, errors.StorageFailed, "failed to begin transaction")
	}
	defer func() {
		if err := tx.Rollback(); err != nil && err != sql.ErrTxDone {
			logging.GetLogger().Error(ctx, "failed to rollback transaction: %v", err)
		}
	}()

	query := `
    INSERT INTO model_snapshots (run_id, generation, model, created_at)
    VALUES (?, ?, ?, CURRENT_TIMESTAMP)
    ON CONFLICT(run_id, generation) DO UPDATE SET
        model = excluded.model,
        created_at = CURRENT_TIMESTAMP
    `

	if _, err := tx.Exec(query, runID, generation, string(doc)); err != nil {
		return errors.WithFields(
			errors.Wrap(err, errors.StorageFailed, "failed to store snapshot"),
			errors.Fields{"run_id": runID, "generation": generation},
		)
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, errors.StorageFailed, "failed to commit transaction")
	}
	return nil
}

// Load returns the model saved for one generation of a run.
func (s *SnapshotStore) Load(ctx context.Context, runID string, generation int) (*core.Model, error) {
	if err := errors.CheckContext(ctx, "snapshot load"); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var doc string
	query := "SELECT model FROM model_snapshots WHERE run_id = ? AND generation = ?"

	err := s.db.QueryRow(query, runID, generation).Scan(&doc)
	if err == sql.ErrNoRows {
		return nil, errors.WithFields(
			errors.New(errors.NotFound, "snapshot not found"),
			errors.Fields{"run_id": runID, "generation": generation},
		)
	}
	if err != nil {
		return nil, errors.WithFields(
			errors.Wrap(err, errors.StorageFailed, "failed to load snapshot"),
			errors.Fields{"run_id": runID, "generation": generation},
		)
	}

	return decodeModel(doc, runID)
}

// Latest returns the most recent snapshot of a run and its generation.
func (s *SnapshotStore) Latest(ctx context.Context, runID string) (*core.Model, int, error) {
	if err := errors.CheckContext(ctx, "snapshot load"); err != nil {
		return nil, 0, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var (
		doc        string
		generation int
	)
	query := `
    SELECT model, generation FROM model_snapshots
    WHERE run_id = ?
    ORDER BY generation DESC
    LIMIT 1
    `

	err := s.db.QueryRow(query, runID).Scan(&doc, &generation)
	if err == sql.ErrNoRows {
		return nil, 0, errors.WithFields(
			errors.New(errors.NotFound, "run has no snapshots"),
			errors.Fields{"run_id": runID},
		)
	}
	if err != nil {
		return nil, 0, errors.WithFields(
			errors.Wrap(err, errors.StorageFailed, "failed to load latest snapshot"),
			errors.Fields{"run_id": runID},
		)
	}

	model, err := decodeModel(doc, runID)
	if err != nil {
		return nil, 0, err
	}
	return model, generation, nil
}

// Generations lists the saved generation numbers of a run in ascending order.
func (s *SnapshotStore) Generations(ctx context.Context, runID string) ([]int, error) {
	if err := errors.CheckContext(ctx, "snapshot list"); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query("SELECT generation FROM model_snapshots WHERE run_id = ? ORDER BY generation", runID)
	if err != nil {
		return nil, errors.Wrap(err, errors.StorageFailed, "failed to list snapshots")
	}
	defer rows.Close()

	var generations []int
	for rows.Next() {
		var g int
		if err := rows.Scan(&g); err != nil {
			return nil, errors.Wrap(err, errors.StorageFailed, "failed to scan snapshot row")
		}
		generations = append(generations, g)
	}
	return generations, rows.Err()
}

// Close releases the underlying database handle.
func (s *SnapshotStore) Close() error {
	if err := s.db.Close(); err != nil {
		return errors.Wrap(err, errors.StorageFailed, "failed to close snapshot database")
	}
	return nil
}

func decodeModel(doc, runID string) (*core.Model, error) {
	model := core.NewModel()
	if err := json.Unmarshal([]byte(doc), model); err != nil {
		return nil, errors.WithFields(
			errors.Wrap(err, errors.StorageFailed, "failed to decode model"),
			errors.Fields{"run_id": runID},
		)
	}
	return model, nil
}
