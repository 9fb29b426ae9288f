package storage

import (
	"context"
	"errors"
	"sync"

	"adhesim/internal/model"
)

var errNotInitialized = errors.New("store is not initialized")

type MemoryStore struct {
	mu          sync.RWMutex
	initialized bool
	scans       map[string]model.ScanRecord
	simulations map[string]model.SimulationRecord
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Init(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.initialized = true
	s.scans = make(map[string]model.ScanRecord)
	s.simulations = make(map[string]model.SimulationRecord)
	return nil
}

func (s *MemoryStore) SaveScan(_ context.Context, record model.ScanRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return errNotInitialized
	}
	s.scans[record.RunID] = record
	return nil
}

func (s *MemoryStore) GetScan(_ context.Context, runID string) (model.ScanRecord, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.initialized {
		return model.ScanRecord{}, false, errNotInitialized
	}
	record, ok := s.scans[runID]
	return record, ok, nil
}

func (s *MemoryStore) SaveSimulation(_ context.Context, record model.SimulationRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return errNotInitialized
	}
	record.Attached = append([]int(nil), record.Attached...)
	s.simulations[record.RunID] = record
	return nil
}

func (s *MemoryStore) GetSimulation(_ context.Context, runID string) (model.SimulationRecord, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.initialized {
		return model.SimulationRecord{}, false, errNotInitialized
	}
	record, ok := s.simulations[runID]
	if !ok {
		return model.SimulationRecord{}, false, nil
	}
	record.Attached = append([]int(nil), record.Attached...)
	return record, true, nil
}

func (s *MemoryStore) ListRuns(_ context.Context) ([]model.RunRef, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.initialized {
		return nil, errNotInitialized
	}
	runs := make([]model.RunRef, 0, len(s.scans)+len(s.simulations))
	for _, r := range s.scans {
		runs = append(runs, model.RunRef{RunID: r.RunID, Kind: KindScan, CreatedAtUTC: r.CreatedAtUTC})
	}
	for _, r := range s.simulations {
		runs = append(runs, model.RunRef{RunID: r.RunID, Kind: KindSimulation, CreatedAtUTC: r.CreatedAtUTC})
	}
	sortRuns(runs)
	return runs, nil
}
