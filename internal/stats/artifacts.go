package stats

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"adhesim/internal/model"
)

const (
	runIndexFile   = "run_index.json"
	configFile     = "config.json"
	resultFile     = "result.json"
	placementsFile = "placements.csv"
	attachmentFile = "attachment.csv"
)

// PlacementRow is one stamped domain in placement order.
type PlacementRow struct {
	Surface string
	Order   int
	X, Y, Z int
	Face    string
	Charge  int
	Cells   int
}

type ScanConfig struct {
	RunID      string            `json:"run_id"`
	Seed       int64             `json:"seed"`
	Workers    int               `json:"workers"`
	Film       model.SurfaceSpec `json:"film"`
	FilmDomain model.DomainSpec  `json:"film_domain"`
	Bacterium  model.SurfaceSpec `json:"bacterium"`
	BactDomain model.DomainSpec  `json:"bacterium_domain"`
	Scan       model.ScanSpec    `json:"scan"`
}

type ScanResult struct {
	Result        model.InteractionResult `json:"result"`
	FilmPlacement model.PlacementSummary  `json:"film_placement"`
	BactPlacement model.PlacementSummary  `json:"bacterium_placement"`
}

type SimulationConfig struct {
	RunID      string               `json:"run_id"`
	Seed       int64                `json:"seed"`
	Film       model.SurfaceSpec    `json:"film"`
	FilmDomain model.DomainSpec     `json:"film_domain"`
	Bacterium  model.SurfaceSpec    `json:"bacterium"`
	BactDomain model.DomainSpec     `json:"bacterium_domain"`
	Simulation model.SimulationSpec `json:"simulation"`
}

type SimulationResult struct {
	FinalAttached int                    `json:"final_attached"`
	Fit           model.EquilibriumFit   `json:"fit"`
	FilmPlacement model.PlacementSummary `json:"film_placement"`
}

type RunIndexEntry struct {
	RunID     string `json:"run_id"`
	Kind      string `json:"kind"`
	Seed      int64  `json:"seed"`
	Film      string `json:"film"`
	Bacterium string `json:"bacterium"`
	// MinEnergy is set for scans, FinalAttached for dynamic runs.
	MinEnergy     float64 `json:"min_energy,omitempty"`
	FinalAttached int     `json:"final_attached,omitempty"`
	CreatedAtUTC  string  `json:"created_at_utc"`
}

func WriteScanArtifacts(baseDir string, record model.ScanRecord, placements []PlacementRow) (string, error) {
	runDir, err := runDir(baseDir, record.RunID)
	if err != nil {
		return "", err
	}

	cfg := ScanConfig{
		RunID:      record.RunID,
		Seed:       record.Seed,
		Workers:    record.Workers,
		Film:       record.Film,
		FilmDomain: record.FilmDomain,
		Bacterium:  record.Bacterium,
		BactDomain: record.BactDomain,
		Scan:       record.Scan,
	}
	if err := writeJSON(filepath.Join(runDir, configFile), cfg); err != nil {
		return "", err
	}
	result := ScanResult{Result: record.Result, FilmPlacement: record.FilmPlacement, BactPlacement: record.BactPlacement}
	if err := writeJSON(filepath.Join(runDir, resultFile), result); err != nil {
		return "", err
	}
	if err := WritePlacements(filepath.Join(runDir, placementsFile), placements); err != nil {
		return "", err
	}
	return runDir, nil
}

func WriteSimulationArtifacts(baseDir string, record model.SimulationRecord) (string, error) {
	runDir, err := runDir(baseDir, record.RunID)
	if err != nil {
		return "", err
	}

	cfg := SimulationConfig{
		RunID:      record.RunID,
		Seed:       record.Seed,
		Film:       record.Film,
		FilmDomain: record.FilmDomain,
		Bacterium:  record.Bacterium,
		BactDomain: record.BactDomain,
		Simulation: record.Simulation,
	}
	if err := writeJSON(filepath.Join(runDir, configFile), cfg); err != nil {
		return "", err
	}
	result := SimulationResult{Fit: record.Fit, FilmPlacement: record.FilmPlacement}
	if n := len(record.Attached); n > 0 {
		result.FinalAttached = record.Attached[n-1]
	}
	if err := writeJSON(filepath.Join(runDir, resultFile), result); err != nil {
		return "", err
	}
	if err := writeAttachment(filepath.Join(runDir, attachmentFile), record.Attached); err != nil {
		return "", err
	}
	return runDir, nil
}

func runDir(baseDir, runID string) (string, error) {
	if runID == "" {
		return "", fmt.Errorf("run id is required")
	}
	dir := filepath.Join(baseDir, runID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	return dir, nil
}

func AppendRunIndex(baseDir string, entry RunIndexEntry) error {
	if entry.RunID == "" {
		return fmt.Errorf("run id is required")
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return err
	}

	index, err := ListRunIndex(baseDir)
	if err != nil {
		return err
	}

	for i := range index {
		if index[i].RunID == entry.RunID {
			index[i] = entry
			return writeJSON(filepath.Join(baseDir, runIndexFile), index)
		}
	}

	index = append(index, entry)
	return writeJSON(filepath.Join(baseDir, runIndexFile), index)
}

// ListRunIndex returns index entries newest first.
func ListRunIndex(baseDir string) ([]RunIndexEntry, error) {
	path := filepath.Join(baseDir, runIndexFile)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunIndexEntry{}, nil
		}
		return nil, err
	}

	var entries []RunIndexEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, err
	}

	type indexedEntry struct {
		entry RunIndexEntry
		idx   int
	}
	indexed := make([]indexedEntry, len(entries))
	for i := range entries {
		indexed[i] = indexedEntry{entry: entries[i], idx: i}
	}
	sort.Slice(indexed, func(i, j int) bool {
		if indexed[i].entry.CreatedAtUTC == indexed[j].entry.CreatedAtUTC {
			// Prefer later appended entries for equal timestamps.
			return indexed[i].idx > indexed[j].idx
		}
		return indexed[i].entry.CreatedAtUTC > indexed[j].entry.CreatedAtUTC
	})

	sorted := make([]RunIndexEntry, 0, len(indexed))
	for _, item := range indexed {
		sorted = append(sorted, item.entry)
	}
	return sorted, nil
}

// ExportRunArtifacts copies every file of a run directory into outDir/runID.
func ExportRunArtifacts(baseDir, runID, outDir string) (string, error) {
	if runID == "" {
		return "", fmt.Errorf("run id is required")
	}

	src := filepath.Join(baseDir, runID)
	entries, err := os.ReadDir(src)
	if err != nil {
		return "", err
	}

	dst := filepath.Join(outDir, runID)
	if err := os.MkdirAll(dst, 0o755); err != nil {
		return "", err
	}
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		if err := copyFile(filepath.Join(src, entry.Name()), filepath.Join(dst, entry.Name())); err != nil {
			return "", err
		}
	}
	return dst, nil
}

func ReadScanResult(baseDir, runID string) (ScanResult, bool, error) {
	var result ScanResult
	ok, err := readJSON(filepath.Join(baseDir, runID, resultFile), &result)
	return result, ok, err
}

func ReadSimulationResult(baseDir, runID string) (SimulationResult, bool, error) {
	var result SimulationResult
	ok, err := readJSON(filepath.Join(baseDir, runID, resultFile), &result)
	return result, ok, err
}

func WritePlacements(path string, rows []PlacementRow) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write([]string{"surface", "order", "x", "y", "z", "face", "charge", "cells"}); err != nil {
		return err
	}
	for _, r := range rows {
		if err := writer.Write([]string{
			r.Surface,
			strconv.Itoa(r.Order),
			strconv.Itoa(r.X),
			strconv.Itoa(r.Y),
			strconv.Itoa(r.Z),
			r.Face,
			strconv.Itoa(r.Charge),
			strconv.Itoa(r.Cells),
		}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

func ReadPlacements(baseDir, runID string) ([]PlacementRow, bool, error) {
	file, err := os.Open(filepath.Join(baseDir, runID, placementsFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = 8
	if _, err := reader.Read(); err != nil {
		if err == io.EOF {
			return []PlacementRow{}, true, nil
		}
		return nil, false, err
	}

	var rows []PlacementRow
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, false, err
		}
		ints, err := atoiAll(record[1], record[2], record[3], record[4], record[6], record[7])
		if err != nil {
			return nil, false, fmt.Errorf("placements row %d: %w", len(rows)+1, err)
		}
		rows = append(rows, PlacementRow{
			Surface: record[0],
			Order:   ints[0],
			X:       ints[1],
			Y:       ints[2],
			Z:       ints[3],
			Face:    record[5],
			Charge:  ints[4],
			Cells:   ints[5],
		})
	}
	return rows, true, nil
}

func writeAttachment(path string, attached []int) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write([]string{"step", "attached"}); err != nil {
		return err
	}
	for i, n := range attached {
		if err := writer.Write([]string{strconv.Itoa(i + 1), strconv.Itoa(n)}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

func ReadAttachmentSeries(baseDir, runID string) ([]int, bool, error) {
	file, err := os.Open(filepath.Join(baseDir, runID, attachmentFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	header, err := reader.Read()
	if err != nil {
		if err == io.EOF {
			return []int{}, true, nil
		}
		return nil, false, err
	}
	if len(header) < 2 {
		return nil, false, fmt.Errorf("attachment series header must have at least 2 columns")
	}

	series := make([]int, 0, 128)
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, false, err
		}
		if len(record) < 2 {
			return nil, false, fmt.Errorf("attachment series row must have at least 2 columns")
		}
		value, err := strconv.Atoi(record[1])
		if err != nil {
			return nil, false, err
		}
		series = append(series, value)
	}
	return series, true, nil
}

func atoiAll(fields ...string) ([]int, error) {
	out := make([]int, len(fields))
	for i, f := range fields {
		v, err := strconv.Atoi(f)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func readJSON(path string, value any) (bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	if err := json.Unmarshal(data, value); err != nil {
		return false, err
	}
	return true, nil
}

func writeJSON(path string, value any) error {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o644)
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Sync()
}
