//go:build sqlite

package main

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestScanAndShowCommandsSQLite(t *testing.T) {
	base := t.TempDir()
	runsDir := filepath.Join(base, "runs")
	dbPath := filepath.Join(base, "adhesim.db")

	args := scanArgs(runsDir)
	args[2] = "sqlite"
	args = append(args, "--db-path", dbPath)
	out, err := captureStdout(func() error {
		return run(context.Background(), args)
	})
	if err != nil {
		t.Fatalf("scan command: %v", err)
	}
	runID := outputValue(out, "run_id")
	if _, err := os.Stat(dbPath); err != nil {
		t.Fatalf("expected sqlite db at %s: %v", dbPath, err)
	}

	out, err = captureStdout(func() error {
		return run(context.Background(), []string{"show", "--store", "sqlite", "--db-path", dbPath, "--runs-dir", runsDir, "--run-id", runID})
	})
	if err != nil {
		t.Fatalf("show command: %v", err)
	}
	if !strings.Contains(out, "kind=scan") || !strings.Contains(out, `"run_id": "`+runID+`"`) {
		t.Fatalf("unexpected show output: %s", out)
	}
	if !strings.Contains(out, `"min_energy"`) {
		t.Fatalf("show output missing result: %s", out)
	}
}
