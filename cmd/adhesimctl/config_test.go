package main

import (
	"context"
	"encoding/json"
	"flag"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, payload map[string]any) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	data, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestApplyConfigFileKeepsExplicitFlags(t *testing.T) {
	path := writeConfig(t, map[string]any{
		"film_length":        64,
		"film_concentration": 0.25,
		"film_neutral":       true,
		"interact":           "cutoff",
		"seed":               77,
	})

	fs := flag.NewFlagSet("scan", flag.ContinueOnError)
	film := addSurfaceFlags(fs, "film", defaultFilm)
	filmDomain := addDomainFlags(fs, "film", defaultFilmDomain)
	interact := fs.String("interact", "dot", "")
	seed := fs.Int64("seed", 1, "")
	if err := fs.Parse([]string{"--seed", "9"}); err != nil {
		t.Fatalf("parse: %v", err)
	}
	if err := applyConfigFile(fs, path); err != nil {
		t.Fatalf("apply config: %v", err)
	}

	if *seed != 9 {
		t.Fatalf("explicit seed flag overridden: %d", *seed)
	}
	if got := film.request(); got.Length != 64 || got.Width != defaultFilm.Width {
		t.Fatalf("unexpected film request: %+v", got)
	}
	if got := filmDomain.request(); got.Concentration != 0.25 || !got.Neutral || got.Shape != defaultFilmDomain.Shape {
		t.Fatalf("unexpected domain request: %+v", got)
	}
	if *interact != "cutoff" {
		t.Fatalf("expected interact from config, got %q", *interact)
	}
}

func TestApplyConfigFileRejectsUnknownKeysAndValues(t *testing.T) {
	cases := map[string]map[string]any{
		"unknown key":  {"population": 10},
		"nested value": {"seed": map[string]any{"value": 3}},
		"bad int":      {"film_length": 2.5},
		"config key":   {"config": "other.json"},
	}
	for name, payload := range cases {
		t.Run(name, func(t *testing.T) {
			fs := flag.NewFlagSet("scan", flag.ContinueOnError)
			fs.String("config", "", "")
			fs.Int64("seed", 1, "")
			addSurfaceFlags(fs, "film", defaultFilm)
			if err := applyConfigFile(fs, writeConfig(t, payload)); err == nil {
				t.Fatalf("expected error for %v", payload)
			}
		})
	}
}

func TestApplyConfigFileMissingFile(t *testing.T) {
	fs := flag.NewFlagSet("scan", flag.ContinueOnError)
	err := applyConfigFile(fs, filepath.Join(t.TempDir(), "missing.json"))
	if err == nil || !strings.Contains(err.Error(), "load config") {
		t.Fatalf("expected load config error, got %v", err)
	}
	if err := applyConfigFile(fs, ""); err != nil {
		t.Fatalf("empty path should be a no-op: %v", err)
	}
}

func TestConfigValue(t *testing.T) {
	cases := []struct {
		in   any
		want string
	}{
		{in: "rod", want: "rod"},
		{in: true, want: "true"},
		{in: float64(12), want: "12"},
		{in: 0.3, want: "0.3"},
		{in: 7, want: "7"},
	}
	for _, tc := range cases {
		got, ok := configValue(tc.in)
		if !ok || got != tc.want {
			t.Fatalf("configValue(%v) = %q, %v; want %q", tc.in, got, ok, tc.want)
		}
	}
	if _, ok := configValue([]any{1}); ok {
		t.Fatal("expected slices to be rejected")
	}
}

func TestScanCommandReadsConfig(t *testing.T) {
	runsDir := filepath.Join(t.TempDir(), "runs")
	path := writeConfig(t, map[string]any{
		"film_length":        30,
		"film_width":         30,
		"film_charge":        1,
		"film_neutral":       true,
		"film_domain":        "cross",
		"film_domain_length": 3,
		"film_domain_width":  3,
		"bact_shape":         "rod",
		"bact_length":        9,
		"bact_width":         5,
		"bact_height":        5,
		"bact_charge":        -1,
		"bact_domain":        "single",
		"interact":           "cut-off",
		"cutoff":             1,
		"stride_x":           2,
		"workers":            2,
		"seed":               42,
		"render":             false,
	})
	out, err := captureStdout(func() error {
		return run(context.Background(), []string{"scan", "--store", "memory", "--runs-dir", runsDir, "--config", path, "--seed", "7"})
	})
	if err != nil {
		t.Fatalf("scan with config: %v", err)
	}
	if !strings.HasPrefix(outputValue(out, "run_id"), "scan-7-") {
		t.Fatalf("expected explicit seed to win: %s", out)
	}
	if outputValue(out, "film_cells") != "900" {
		t.Fatalf("expected config film size: %s", out)
	}
}
