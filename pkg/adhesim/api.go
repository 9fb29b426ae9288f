package adhesim

import (
	"context"
	"errors"
	"fmt"
	"log"
	"path/filepath"
	"slices"
	"time"

	"github.com/google/uuid"

	"adhesim/internal/domain"
	"adhesim/internal/dynamics"
	"adhesim/internal/energy"
	"adhesim/internal/model"
	"adhesim/internal/stats"
	"adhesim/internal/storage"
	"adhesim/internal/surface"
)

const (
	defaultRunsDir    = "runs"
	defaultExportsDir = "exports"
	defaultDBPath     = "adhesim.db"
)

type Options struct {
	StoreKind  string
	DBPath     string
	RunsDir    string
	ExportsDir string
	// Logger receives placement shortfalls and dynamic progress. Nil is silent.
	Logger *log.Logger
}

type Client struct {
	store       storage.Store
	initialized bool

	runsDir    string
	exportsDir string
	logger     *log.Logger
	now        func() time.Time
}

type SurfaceRequest struct {
	Shape  string
	Length int
	Width  int
	Height int
	Charge int
}

type DomainRequest struct {
	Shape               string
	Length              int
	Width               int
	Concentration       float64
	ChargeConcentration float64
	Neutral             bool
}

type ScanRequest struct {
	Film       SurfaceRequest
	FilmDomain DomainRequest
	Bacterium  SurfaceRequest
	BactDomain DomainRequest
	Interact   string
	StrideX    int
	StrideY    int
	// Cutoff is required for CUTOFF scans and ignored by DOT scans.
	Cutoff  *int
	Workers int
	Seed    int64
	// Render writes surface images and the energy heatmap next to the artifacts.
	Render bool
}

type ScanSummary struct {
	RunID         string
	ArtifactsDir  string
	Result        model.InteractionResult
	FilmPlacement model.PlacementSummary
	BactPlacement model.PlacementSummary
	FilmCells     int
	BactCells     int
}

type SimulateRequest struct {
	Film             SurfaceRequest
	FilmDomain       DomainRequest
	Bacterium        SurfaceRequest
	BactDomain       DomainRequest
	Bacteria         int
	Steps            int
	Lambda           float64
	StickProbability float64
	Bias             float64
	StepSize         int
	SampleEvery      int
	Workers          int
	Seed             int64
	// Render writes the attachment chart and, when frames were sampled, a video.
	Render bool
}

type SimulateSummary struct {
	RunID         string
	ArtifactsDir  string
	Attached      []int
	Fit           model.EquilibriumFit
	FilmPlacement model.PlacementSummary
}

type RunsRequest struct {
	Limit int
	Kind  string
}

type RunItem struct {
	RunID         string
	Kind          string
	CreatedAtUTC  string
	Seed          int64
	Film          string
	Bacterium     string
	MinEnergy     float64
	FinalAttached int
}

type ShowResult struct {
	Kind       string
	Scan       *model.ScanRecord
	Simulation *model.SimulationRecord
	// Placements lists the stamped domains of a scan run, read from its artifacts.
	Placements []stats.PlacementRow
	// FromArtifacts is set when the store had no record and the run was
	// rebuilt from the run directory. Only result fields are populated then.
	FromArtifacts bool
}

type ExportRequest struct {
	RunID  string
	Latest bool
	OutDir string
}

type ExportSummary struct {
	RunID     string
	Directory string
}

func New(opts Options) (*Client, error) {
	storeKind := opts.StoreKind
	if storeKind == "" {
		storeKind = storage.DefaultStoreKind()
	}
	dbPath := opts.DBPath
	if dbPath == "" {
		dbPath = defaultDBPath
	}
	runsDir := opts.RunsDir
	if runsDir == "" {
		runsDir = defaultRunsDir
	}
	exportsDir := opts.ExportsDir
	if exportsDir == "" {
		exportsDir = defaultExportsDir
	}

	store, err := storage.NewStore(storeKind, dbPath)
	if err != nil {
		return nil, err
	}

	return &Client{
		store:      store,
		runsDir:    runsDir,
		exportsDir: exportsDir,
		logger:     opts.Logger,
		now:        time.Now,
	}, nil
}

func (c *Client) Close() error {
	return storage.CloseIfSupported(c.store)
}

func (c *Client) Init(ctx context.Context) error {
	if c.initialized {
		return nil
	}
	if err := c.store.Init(ctx); err != nil {
		return err
	}
	c.initialized = true
	return nil
}

// cutoffValue is the persisted cutoff; -1 records an unset radius.
func cutoffValue(c *int) int {
	if c == nil {
		return -1
	}
	return *c
}

// Scan paints film and bacterium, scans for the minimum-energy alignment and
// persists the run.
func (c *Client) Scan(ctx context.Context, req ScanRequest) (ScanSummary, error) {
	if req.Interact == "" {
		req.Interact = "DOT"
	}
	req.StrideX = max(req.StrideX, 1)
	req.StrideY = max(req.StrideY, 1)
	req.Workers = max(req.Workers, 1)

	interact, err := energy.ParseInteractType(req.Interact)
	if err != nil {
		return ScanSummary{}, err
	}
	scanner, err := energy.NewScanner(energy.Config{
		Type:    interact,
		StrideX: req.StrideX,
		StrideY: req.StrideY,
		Cutoff:  req.Cutoff,
		Workers: req.Workers,
	})
	if err != nil {
		return ScanSummary{}, err
	}
	if err := c.Init(ctx); err != nil {
		return ScanSummary{}, err
	}

	film, filmRes, err := c.paint(ctx, req.Film, req.FilmDomain, req.Workers, req.Seed)
	if err != nil {
		return ScanSummary{}, fmt.Errorf("film: %w", err)
	}
	bact, bactRes, err := c.paint(ctx, req.Bacterium, req.BactDomain, req.Workers, req.Seed+1)
	if err != nil {
		return ScanSummary{}, fmt.Errorf("bacterium: %w", err)
	}

	result, err := scanner.Scan(ctx, film, bact)
	if err != nil {
		return ScanSummary{}, err
	}

	now := c.now().UTC()
	record := model.ScanRecord{
		VersionedRecord: storage.CurrentVersion(),
		RunID:           newRunID("scan", req.Seed),
		CreatedAtUTC:    now.Format(time.RFC3339Nano),
		Seed:            req.Seed,
		Workers:         req.Workers,
		Film:            surfaceSpec(req.Film, film),
		FilmDomain:      domainSpec(req.FilmDomain),
		Bacterium:       surfaceSpec(req.Bacterium, bact),
		BactDomain:      domainSpec(req.BactDomain),
		Scan:            model.ScanSpec{Interact: interact.String(), StrideX: req.StrideX, StrideY: req.StrideY, Cutoff: cutoffValue(req.Cutoff)},
		FilmPlacement:   filmRes.Summary(),
		BactPlacement:   bactRes.Summary(),
		Result:          result,
	}
	if err := c.store.SaveScan(ctx, record); err != nil {
		return ScanSummary{}, err
	}

	rows := append(placementRows("film", filmRes), placementRows("bacterium", bactRes)...)
	runDir, err := stats.WriteScanArtifacts(c.runsDir, record, rows)
	if err != nil {
		return ScanSummary{}, err
	}
	if err := stats.AppendRunIndex(c.runsDir, stats.RunIndexEntry{
		RunID:        record.RunID,
		Kind:         storage.KindScan,
		Seed:         req.Seed,
		Film:         string(film.Shape()),
		Bacterium:    string(bact.Shape()),
		MinEnergy:    result.MinEnergy,
		CreatedAtUTC: record.CreatedAtUTC,
	}); err != nil {
		return ScanSummary{}, err
	}
	if req.Render {
		if err := renderScan(ctx, runDir, scanner, film, bact); err != nil {
			return ScanSummary{}, err
		}
	}

	return ScanSummary{
		RunID:         record.RunID,
		ArtifactsDir:  filepath.Clean(runDir),
		Result:        result,
		FilmPlacement: record.FilmPlacement,
		BactPlacement: record.BactPlacement,
		FilmCells:     film.OnSurface(),
		BactCells:     bact.OnSurface(),
	}, nil
}

// Simulate paints film and bacterium, runs the dynamic attachment model and
// fits the equilibrium attached count.
func (c *Client) Simulate(ctx context.Context, req SimulateRequest) (SimulateSummary, error) {
	req.Workers = max(req.Workers, 1)
	if err := c.Init(ctx); err != nil {
		return SimulateSummary{}, err
	}

	film, filmRes, err := c.paint(ctx, req.Film, req.FilmDomain, req.Workers, req.Seed)
	if err != nil {
		return SimulateSummary{}, fmt.Errorf("film: %w", err)
	}
	bact, _, err := c.paint(ctx, req.Bacterium, req.BactDomain, req.Workers, req.Seed+1)
	if err != nil {
		return SimulateSummary{}, fmt.Errorf("bacterium: %w", err)
	}

	res, err := dynamics.Simulate(ctx, dynamics.Config{
		Bacteria:         req.Bacteria,
		Steps:            req.Steps,
		Lambda:           req.Lambda,
		StickProbability: req.StickProbability,
		Bias:             req.Bias,
		StepSize:         req.StepSize,
		SampleEvery:      req.SampleEvery,
		Seed:             req.Seed,
		Logger:           c.logger,
	}, film, bact)
	if err != nil {
		return SimulateSummary{}, err
	}
	fit, err := dynamics.FitEquilibrium(res.Attached)
	if err != nil {
		return SimulateSummary{}, err
	}

	now := c.now().UTC()
	record := model.SimulationRecord{
		VersionedRecord: storage.CurrentVersion(),
		RunID:           newRunID("dynamic", req.Seed),
		CreatedAtUTC:    now.Format(time.RFC3339Nano),
		Seed:            req.Seed,
		Film:            surfaceSpec(req.Film, film),
		FilmDomain:      domainSpec(req.FilmDomain),
		Bacterium:       surfaceSpec(req.Bacterium, bact),
		BactDomain:      domainSpec(req.BactDomain),
		Simulation: model.SimulationSpec{
			Bacteria:         req.Bacteria,
			Steps:            req.Steps,
			Lambda:           req.Lambda,
			StickProbability: req.StickProbability,
			Bias:             req.Bias,
			StepSize:         max(req.StepSize, 1),
		},
		FilmPlacement: filmRes.Summary(),
		Attached:      res.Attached,
		Fit:           fit,
	}
	if err := c.store.SaveSimulation(ctx, record); err != nil {
		return SimulateSummary{}, err
	}
	runDir, err := stats.WriteSimulationArtifacts(c.runsDir, record)
	if err != nil {
		return SimulateSummary{}, err
	}
	if err := stats.AppendRunIndex(c.runsDir, stats.RunIndexEntry{
		RunID:         record.RunID,
		Kind:          storage.KindSimulation,
		Seed:          req.Seed,
		Film:          string(film.Shape()),
		Bacterium:     string(bact.Shape()),
		FinalAttached: res.Attached[len(res.Attached)-1],
		CreatedAtUTC:  record.CreatedAtUTC,
	}); err != nil {
		return SimulateSummary{}, err
	}
	if req.Render {
		if err := renderSimulation(runDir, film, bact, res, fit); err != nil {
			return SimulateSummary{}, err
		}
	}

	return SimulateSummary{
		RunID:         record.RunID,
		ArtifactsDir:  filepath.Clean(runDir),
		Attached:      append([]int(nil), res.Attached...),
		Fit:           fit,
		FilmPlacement: record.FilmPlacement,
	}, nil
}

func (c *Client) Runs(_ context.Context, req RunsRequest) ([]RunItem, error) {
	if req.Limit <= 0 {
		req.Limit = 20
	}

	entries, err := stats.ListRunIndex(c.runsDir)
	if err != nil {
		return nil, err
	}

	out := make([]RunItem, 0, min(len(entries), req.Limit))
	for _, e := range entries {
		if req.Kind != "" && e.Kind != req.Kind {
			continue
		}
		out = append(out, RunItem{
			RunID:         e.RunID,
			Kind:          e.Kind,
			CreatedAtUTC:  e.CreatedAtUTC,
			Seed:          e.Seed,
			Film:          e.Film,
			Bacterium:     e.Bacterium,
			MinEnergy:     e.MinEnergy,
			FinalAttached: e.FinalAttached,
		})
		if len(out) == req.Limit {
			break
		}
	}
	return out, nil
}

// Show loads a run record by id. Runs missing from the store, such as those
// written by an earlier process on the memory backend, are rebuilt from the
// run directory.
func (c *Client) Show(ctx context.Context, runID string) (ShowResult, error) {
	if runID == "" {
		return ShowResult{}, errors.New("run id is required")
	}
	if err := c.Init(ctx); err != nil {
		return ShowResult{}, err
	}

	scan, ok, err := c.store.GetScan(ctx, runID)
	if err != nil {
		return ShowResult{}, err
	}
	if ok {
		return c.withPlacements(ShowResult{Kind: storage.KindScan, Scan: &scan})
	}
	sim, ok, err := c.store.GetSimulation(ctx, runID)
	if err != nil {
		return ShowResult{}, err
	}
	if ok {
		return ShowResult{Kind: storage.KindSimulation, Simulation: &sim}, nil
	}
	return c.showFromArtifacts(runID)
}

func (c *Client) showFromArtifacts(runID string) (ShowResult, error) {
	entries, err := stats.ListRunIndex(c.runsDir)
	if err != nil {
		return ShowResult{}, err
	}
	idx := slices.IndexFunc(entries, func(e stats.RunIndexEntry) bool { return e.RunID == runID })
	if idx < 0 {
		return ShowResult{}, fmt.Errorf("run not found: %s", runID)
	}
	entry := entries[idx]

	switch entry.Kind {
	case storage.KindScan:
		res, ok, err := stats.ReadScanResult(c.runsDir, runID)
		if err != nil {
			return ShowResult{}, err
		}
		if !ok {
			return ShowResult{}, fmt.Errorf("run %s has no stored result", runID)
		}
		return c.withPlacements(ShowResult{
			Kind: storage.KindScan,
			Scan: &model.ScanRecord{
				RunID:         runID,
				CreatedAtUTC:  entry.CreatedAtUTC,
				Seed:          entry.Seed,
				FilmPlacement: res.FilmPlacement,
				BactPlacement: res.BactPlacement,
				Result:        res.Result,
			},
			FromArtifacts: true,
		})
	case storage.KindSimulation:
		res, ok, err := stats.ReadSimulationResult(c.runsDir, runID)
		if err != nil {
			return ShowResult{}, err
		}
		if !ok {
			return ShowResult{}, fmt.Errorf("run %s has no stored result", runID)
		}
		attached, _, err := stats.ReadAttachmentSeries(c.runsDir, runID)
		if err != nil {
			return ShowResult{}, err
		}
		return ShowResult{
			Kind: storage.KindSimulation,
			Simulation: &model.SimulationRecord{
				RunID:         runID,
				CreatedAtUTC:  entry.CreatedAtUTC,
				Seed:          entry.Seed,
				FilmPlacement: res.FilmPlacement,
				Attached:      attached,
				Fit:           res.Fit,
			},
			FromArtifacts: true,
		}, nil
	default:
		return ShowResult{}, fmt.Errorf("run %s has unknown kind %q", runID, entry.Kind)
	}
}

func (c *Client) withPlacements(shown ShowResult) (ShowResult, error) {
	rows, _, err := stats.ReadPlacements(c.runsDir, shown.Scan.RunID)
	if err != nil {
		return ShowResult{}, err
	}
	shown.Placements = rows
	return shown, nil
}

func (c *Client) Export(_ context.Context, req ExportRequest) (ExportSummary, error) {
	if req.RunID != "" && req.Latest {
		return ExportSummary{}, errors.New("use either run id or latest")
	}
	if req.RunID == "" && !req.Latest {
		return ExportSummary{}, errors.New("export requires run id or latest")
	}
	if req.OutDir == "" {
		req.OutDir = c.exportsDir
	}

	runID := req.RunID
	if req.Latest {
		entries, err := stats.ListRunIndex(c.runsDir)
		if err != nil {
			return ExportSummary{}, err
		}
		if len(entries) == 0 {
			return ExportSummary{}, errors.New("no runs available to export")
		}
		runID = entries[0].RunID
	}

	exportedDir, err := stats.ExportRunArtifacts(c.runsDir, runID, req.OutDir)
	if err != nil {
		return ExportSummary{}, err
	}
	return ExportSummary{RunID: runID, Directory: filepath.Clean(exportedDir)}, nil
}

// paint builds a surface and stamps its domains.
func (c *Client) paint(ctx context.Context, sr SurfaceRequest, dr DomainRequest, workers int, seed int64) (*surface.Surface, domain.Result, error) {
	s, err := buildSurface(sr)
	if err != nil {
		return nil, domain.Result{}, err
	}
	res, err := domain.GenerateDomain(ctx, s, domain.Config{
		Shape:               dr.Shape,
		Length:              dr.Length,
		Width:               dr.Width,
		Concentration:       dr.Concentration,
		ChargeConcentration: dr.ChargeConcentration,
		Neutral:             dr.Neutral,
		Workers:             workers,
		Seed:                seed,
		Logger:              c.logger,
	})
	if err != nil {
		return nil, domain.Result{}, err
	}
	return s, res, nil
}

func buildSurface(req SurfaceRequest) (*surface.Surface, error) {
	shape, err := surface.ParseShape(req.Shape)
	if err != nil {
		return nil, err
	}
	charge, err := surface.ParseCharge(req.Charge)
	if err != nil {
		return nil, err
	}
	return surface.New(surface.Spec{
		Shape:  shape,
		Length: req.Length,
		Width:  req.Width,
		Height: req.Height,
		Charge: charge,
	})
}

func surfaceSpec(req SurfaceRequest, s *surface.Surface) model.SurfaceSpec {
	return model.SurfaceSpec{
		Shape:  string(s.Shape()),
		Length: req.Length,
		Width:  req.Width,
		Height: req.Height,
		Charge: req.Charge,
	}
}

func domainSpec(req DomainRequest) model.DomainSpec {
	return model.DomainSpec{
		Shape:               req.Shape,
		Length:              req.Length,
		Width:               req.Width,
		Concentration:       req.Concentration,
		ChargeConcentration: req.ChargeConcentration,
		Neutral:             req.Neutral,
	}
}

func placementRows(name string, res domain.Result) []stats.PlacementRow {
	rows := make([]stats.PlacementRow, 0, len(res.Placements))
	for i, p := range res.Placements {
		rows = append(rows, stats.PlacementRow{
			Surface: name,
			Order:   i,
			X:       p.Anchor.X,
			Y:       p.Anchor.Y,
			Z:       p.Anchor.Z,
			Face:    p.Face.String(),
			Charge:  int(p.Charge),
			Cells:   p.Cells,
		})
	}
	return rows
}

func newRunID(kind string, seed int64) string {
	return fmt.Sprintf("%s-%d-%s", kind, seed, uuid.NewString())
}
