//go:build sqlite

package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"adhesim/internal/model"

	_ "modernc.org/sqlite"
)

type SQLiteStore struct {
	path string

	mu sync.RWMutex
	db *sql.DB
}

func NewSQLiteStore(path string) *SQLiteStore {
	return &SQLiteStore{path: path}
}

func (s *SQLiteStore) Init(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.path == "" {
		return errors.New("sqlite path is required")
	}
	if s.db != nil {
		return nil
	}

	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return err
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return err
	}

	if err := createTables(ctx, db); err != nil {
		_ = db.Close()
		return err
	}

	s.db = db
	return nil
}

func (s *SQLiteStore) SaveScan(ctx context.Context, record model.ScanRecord) error {
	payload, err := EncodeScan(record)
	if err != nil {
		return err
	}
	return s.upsert(ctx, "scans", record.RunID, record.CreatedAtUTC, record.VersionedRecord, payload)
}

func (s *SQLiteStore) GetScan(ctx context.Context, runID string) (model.ScanRecord, bool, error) {
	payload, ok, err := s.payload(ctx, "scans", runID)
	if err != nil || !ok {
		return model.ScanRecord{}, false, err
	}
	record, err := DecodeScan(payload)
	if err != nil {
		return model.ScanRecord{}, false, fmt.Errorf("decode scan %s: %w", runID, err)
	}
	return record, true, nil
}

func (s *SQLiteStore) SaveSimulation(ctx context.Context, record model.SimulationRecord) error {
	payload, err := EncodeSimulation(record)
	if err != nil {
		return err
	}
	return s.upsert(ctx, "simulations", record.RunID, record.CreatedAtUTC, record.VersionedRecord, payload)
}

func (s *SQLiteStore) GetSimulation(ctx context.Context, runID string) (model.SimulationRecord, bool, error) {
	payload, ok, err := s.payload(ctx, "simulations", runID)
	if err != nil || !ok {
		return model.SimulationRecord{}, false, err
	}
	record, err := DecodeSimulation(payload)
	if err != nil {
		return model.SimulationRecord{}, false, fmt.Errorf("decode simulation %s: %w", runID, err)
	}
	return record, true, nil
}

func (s *SQLiteStore) ListRuns(ctx context.Context) ([]model.RunRef, error) {
	db, err := s.getDB()
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, `
		SELECT run_id, 'scan', created_at_utc FROM scans
		UNION ALL
		SELECT run_id, 'simulation', created_at_utc FROM simulations
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []model.RunRef
	for rows.Next() {
		var ref model.RunRef
		if err := rows.Scan(&ref.RunID, &ref.Kind, &ref.CreatedAtUTC); err != nil {
			return nil, err
		}
		runs = append(runs, ref)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	sortRuns(runs)
	return runs, nil
}

func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

// upsert writes a payload row; table is always one of the constant names above.
func (s *SQLiteStore) upsert(ctx context.Context, table, runID, createdAt string, v model.VersionedRecord, payload []byte) error {
	db, err := s.getDB()
	if err != nil {
		return err
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO `+table+` (run_id, created_at_utc, schema_version, codec_version, payload)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(run_id) DO UPDATE SET
			created_at_utc = excluded.created_at_utc,
			schema_version = excluded.schema_version,
			codec_version = excluded.codec_version,
			payload = excluded.payload
	`, runID, createdAt, v.SchemaVersion, v.CodecVersion, payload)
	return err
}

func (s *SQLiteStore) payload(ctx context.Context, table, runID string) ([]byte, bool, error) {
	db, err := s.getDB()
	if err != nil {
		return nil, false, err
	}

	var payload []byte
	err = db.QueryRowContext(ctx, `SELECT payload FROM `+table+` WHERE run_id = ?`, runID).Scan(&payload)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return payload, true, nil
}

func (s *SQLiteStore) getDB() (*sql.DB, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.db == nil {
		return nil, errNotInitialized
	}
	return s.db, nil
}

func createTables(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS scans (
			run_id TEXT PRIMARY KEY,
			created_at_utc TEXT NOT NULL,
			schema_version INTEGER NOT NULL,
			codec_version INTEGER NOT NULL,
			payload BLOB NOT NULL
		);
		CREATE TABLE IF NOT EXISTS simulations (
			run_id TEXT PRIMARY KEY,
			created_at_utc TEXT NOT NULL,
			schema_version INTEGER NOT NULL,
			codec_version INTEGER NOT NULL,
			payload BLOB NOT NULL
		);
	`)
	return err
}
