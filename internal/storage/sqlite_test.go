//go:build sqlite

package storage

import (
	"context"
	"path/filepath"
	"testing"

	"adhesim/internal/model"
)

func TestSQLiteStoreScanAndSimulationRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewSQLiteStore(filepath.Join(t.TempDir(), "adhesim.db"))
	if err := store.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})

	scan := model.ScanRecord{
		VersionedRecord: CurrentVersion(),
		RunID:           "scan-1",
		CreatedAtUTC:    "2026-01-01T00:00:00Z",
		Scan:            model.ScanSpec{Interact: "DOT", StrideX: 1, StrideY: 1},
		Result:          model.InteractionResult{MinEnergy: -3.5, MinX: 4, MinY: 9},
	}
	if err := store.SaveScan(ctx, scan); err != nil {
		t.Fatalf("save scan: %v", err)
	}
	loaded, ok, err := store.GetScan(ctx, "scan-1")
	if err != nil || !ok {
		t.Fatalf("get scan: ok=%t err=%v", ok, err)
	}
	if loaded.Result != scan.Result || loaded.Scan != scan.Scan {
		t.Fatalf("unexpected scan loaded: %+v", loaded)
	}

	sim := model.SimulationRecord{
		VersionedRecord: CurrentVersion(),
		RunID:           "dynamic-1",
		CreatedAtUTC:    "2026-01-02T00:00:00Z",
		Attached:        []int{1, 2, 3},
	}
	if err := store.SaveSimulation(ctx, sim); err != nil {
		t.Fatalf("save simulation: %v", err)
	}
	loadedSim, ok, err := store.GetSimulation(ctx, "dynamic-1")
	if err != nil || !ok {
		t.Fatalf("get simulation: ok=%t err=%v", ok, err)
	}
	if len(loadedSim.Attached) != 3 || loadedSim.Attached[2] != 3 {
		t.Fatalf("unexpected simulation loaded: %+v", loadedSim)
	}

	runs, err := store.ListRuns(ctx)
	if err != nil {
		t.Fatalf("list runs: %v", err)
	}
	if len(runs) != 2 || runs[0].Kind != KindScan || runs[1].Kind != KindSimulation {
		t.Fatalf("unexpected runs: %+v", runs)
	}

	if _, ok, err := store.GetScan(ctx, "missing"); err != nil || ok {
		t.Fatalf("expected missing scan, got ok=%t err=%v", ok, err)
	}
}

func TestSQLiteStorePersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "adhesim.db")

	first := NewSQLiteStore(dbPath)
	if err := first.Init(ctx); err != nil {
		t.Fatalf("init first: %v", err)
	}
	record := model.ScanRecord{VersionedRecord: CurrentVersion(), RunID: "scan-9", CreatedAtUTC: "2026-02-01T00:00:00Z"}
	if err := first.SaveScan(ctx, record); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := first.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	second := NewSQLiteStore(dbPath)
	if err := second.Init(ctx); err != nil {
		t.Fatalf("init second: %v", err)
	}
	t.Cleanup(func() {
		_ = second.Close()
	})
	if _, ok, err := second.GetScan(ctx, "scan-9"); err != nil || !ok {
		t.Fatalf("expected persisted scan after reopen: ok=%t err=%v", ok, err)
	}
}

func TestSQLiteStoreRequiresInit(t *testing.T) {
	store := NewSQLiteStore(filepath.Join(t.TempDir(), "adhesim.db"))
	if _, _, err := store.GetScan(context.Background(), "x"); err == nil {
		t.Fatal("expected uninitialized store error")
	}
}
