package storage

import (
	"context"

	"adhesim/internal/model"
)

const (
	KindScan       = "scan"
	KindSimulation = "simulation"
)

// Store persists finished scan and dynamic-simulation runs.
type Store interface {
	Init(ctx context.Context) error
	SaveScan(ctx context.Context, record model.ScanRecord) error
	GetScan(ctx context.Context, runID string) (model.ScanRecord, bool, error)
	SaveSimulation(ctx context.Context, record model.SimulationRecord) error
	GetSimulation(ctx context.Context, runID string) (model.SimulationRecord, bool, error)
	// ListRuns returns every stored run, oldest first.
	ListRuns(ctx context.Context) ([]model.RunRef, error)
}
