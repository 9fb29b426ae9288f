package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"

	"adhesim/internal/storage"
	"adhesim/pkg/adhesim"
)

const (
	runsDir    = "runs"
	exportsDir = "exports"
)

func main() {
	if err := run(context.Background(), os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return usageError("missing command")
	}

	switch args[0] {
	case "scan":
		return runScan(ctx, args[1:])
	case "dynamic":
		return runDynamic(ctx, args[1:])
	case "runs":
		return runRuns(ctx, args[1:])
	case "show":
		return runShow(ctx, args[1:])
	case "export":
		return runExport(ctx, args[1:])
	default:
		return usageError(fmt.Sprintf("unknown command: %s", args[0]))
	}
}

type storeFlags struct {
	kind    *string
	dbPath  *string
	runsDir *string
}

func addStoreFlags(fs *flag.FlagSet) storeFlags {
	return storeFlags{
		kind:    fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite"),
		dbPath:  fs.String("db-path", "adhesim.db", "sqlite database path"),
		runsDir: fs.String("runs-dir", runsDir, "run artifacts directory"),
	}
}

func (f storeFlags) open(logger *log.Logger) (*adhesim.Client, error) {
	return adhesim.New(adhesim.Options{
		StoreKind:  *f.kind,
		DBPath:     *f.dbPath,
		RunsDir:    *f.runsDir,
		ExportsDir: exportsDir,
		Logger:     logger,
	})
}

type surfaceFlags struct {
	shape  *string
	length *int
	width  *int
	height *int
	charge *int
}

func addSurfaceFlags(fs *flag.FlagSet, prefix string, def adhesim.SurfaceRequest) surfaceFlags {
	return surfaceFlags{
		shape:  fs.String(prefix+"-shape", def.Shape, prefix+" shape: rectangle|cuboid|sphere|cylinder|rod"),
		length: fs.Int(prefix+"-length", def.Length, prefix+" length along x"),
		width:  fs.Int(prefix+"-width", def.Width, prefix+" width along y"),
		height: fs.Int(prefix+"-height", def.Height, prefix+" height along z"),
		charge: fs.Int(prefix+"-charge", def.Charge, prefix+" base charge: -1|0|1"),
	}
}

func (f surfaceFlags) request() adhesim.SurfaceRequest {
	return adhesim.SurfaceRequest{
		Shape:  *f.shape,
		Length: *f.length,
		Width:  *f.width,
		Height: *f.height,
		Charge: *f.charge,
	}
}

type domainFlags struct {
	shape               *string
	length              *int
	width               *int
	concentration       *float64
	chargeConcentration *float64
	neutral             *bool
}

func addDomainFlags(fs *flag.FlagSet, prefix string, def adhesim.DomainRequest) domainFlags {
	return domainFlags{
		shape:               fs.String(prefix+"-domain", def.Shape, prefix+" domain shape: diamond|cross|octagon|single"),
		length:              fs.Int(prefix+"-domain-length", def.Length, prefix+" domain length"),
		width:               fs.Int(prefix+"-domain-width", def.Width, prefix+" domain width"),
		concentration:       fs.Float64(prefix+"-concentration", def.Concentration, prefix+" domain cell concentration in [0,1]"),
		chargeConcentration: fs.Float64(prefix+"-charge-concentration", def.ChargeConcentration, prefix+" share of domains with the first domain charge"),
		neutral:             fs.Bool(prefix+"-neutral", def.Neutral, prefix+" paints neutral domains instead of opposite-charge ones"),
	}
}

func (f domainFlags) request() adhesim.DomainRequest {
	return adhesim.DomainRequest{
		Shape:               *f.shape,
		Length:              *f.length,
		Width:               *f.width,
		Concentration:       *f.concentration,
		ChargeConcentration: *f.chargeConcentration,
		Neutral:             *f.neutral,
	}
}

var (
	defaultFilm       = adhesim.SurfaceRequest{Shape: "rectangle", Length: 100, Width: 100, Height: 1, Charge: 1}
	defaultFilmDomain = adhesim.DomainRequest{Shape: "diamond", Length: 2, Width: 2, Concentration: 0.3, ChargeConcentration: 0.5}
	defaultBact       = adhesim.SurfaceRequest{Shape: "rod", Length: 9, Width: 5, Height: 5, Charge: -1}
	defaultBactDomain = adhesim.DomainRequest{Shape: "single", Length: 1, Width: 1, Concentration: 0.2, ChargeConcentration: 0.5}
)

func runScan(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("scan", flag.ContinueOnError)
	store := addStoreFlags(fs)
	configPath := fs.String("config", "", "optional JSON config file; explicit flags override it")
	film := addSurfaceFlags(fs, "film", defaultFilm)
	filmDomain := addDomainFlags(fs, "film", defaultFilmDomain)
	bact := addSurfaceFlags(fs, "bact", defaultBact)
	bactDomain := addDomainFlags(fs, "bact", defaultBactDomain)
	interact := fs.String("interact", "dot", "interaction model: dot|cutoff")
	strideX := fs.Int("stride-x", 1, "scan stride along x")
	strideY := fs.Int("stride-y", 1, "scan stride along y")
	cutoff := fs.Int("cutoff", 0, "cutoff radius, required for cutoff scans")
	workers := fs.Int("workers", 4, "parallel workers for placement and scanning")
	seed := fs.Int64("seed", 1, "random seed")
	render := fs.Bool("render", false, "write surface images and the energy heatmap")
	verbose := fs.Bool("verbose", false, "log progress to stderr")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := applyConfigFile(fs, *configPath); err != nil {
		return err
	}
	var radius *int
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "cutoff" {
			radius = cutoff
		}
	})

	client, err := store.open(newLogger(*verbose))
	if err != nil {
		return err
	}
	defer client.Close()

	summary, err := client.Scan(ctx, adhesim.ScanRequest{
		Film:       film.request(),
		FilmDomain: filmDomain.request(),
		Bacterium:  bact.request(),
		BactDomain: bactDomain.request(),
		Interact:   *interact,
		StrideX:    *strideX,
		StrideY:    *strideY,
		Cutoff:     radius,
		Workers:    *workers,
		Seed:       *seed,
		Render:     *render,
	})
	if err != nil {
		return err
	}

	res := summary.Result
	fmt.Printf("run_id=%s\n", summary.RunID)
	fmt.Printf("film_cells=%s bacterium_cells=%s\n", humanize.Comma(int64(summary.FilmCells)), humanize.Comma(int64(summary.BactCells)))
	printPlacement("film", summary.FilmPlacement.Requested, summary.FilmPlacement.Placed, summary.FilmPlacement.Stop)
	printPlacement("bacterium", summary.BactPlacement.Requested, summary.BactPlacement.Placed, summary.BactPlacement.Stop)
	fmt.Printf("min_energy=%.6f min_x=%d min_y=%d charge_at_min_energy=%.6f\n", res.MinEnergy, res.MinX, res.MinY, res.ChargeAtMinEnergy)
	fmt.Printf("min_charge=%.6f min_charge_x=%d min_charge_y=%d\n", res.MinCharge, res.MinChargeX, res.MinChargeY)
	return printArtifacts(summary.ArtifactsDir)
}

func runDynamic(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("dynamic", flag.ContinueOnError)
	store := addStoreFlags(fs)
	configPath := fs.String("config", "", "optional JSON config file; explicit flags override it")
	film := addSurfaceFlags(fs, "film", defaultFilm)
	filmDomain := addDomainFlags(fs, "film", defaultFilmDomain)
	bact := addSurfaceFlags(fs, "bact", defaultBact)
	bactDomain := addDomainFlags(fs, "bact", defaultBactDomain)
	bacteria := fs.Int("bacteria", 50, "number of bacteria")
	steps := fs.Int("steps", 1000, "simulation steps")
	lambda := fs.Float64("lambda", 1, "energy scale of the stick and move rules")
	stick := fs.Float64("stick-probability", 0.1, "base probability of sticking per step")
	bias := fs.Float64("bias", 1, "strength of the energy bias on moves; 0 is an unbiased walk")
	stepSize := fs.Int("step-size", 1, "cells moved per step")
	sampleEvery := fs.Int("sample-every", 0, "record a frame every n steps; 0 records none")
	workers := fs.Int("workers", 4, "parallel workers for placement")
	seed := fs.Int64("seed", 1, "random seed")
	render := fs.Bool("render", false, "write the attachment chart and video")
	verbose := fs.Bool("verbose", false, "log progress to stderr")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := applyConfigFile(fs, *configPath); err != nil {
		return err
	}

	client, err := store.open(newLogger(*verbose))
	if err != nil {
		return err
	}
	defer client.Close()

	summary, err := client.Simulate(ctx, adhesim.SimulateRequest{
		Film:             film.request(),
		FilmDomain:       filmDomain.request(),
		Bacterium:        bact.request(),
		BactDomain:       bactDomain.request(),
		Bacteria:         *bacteria,
		Steps:            *steps,
		Lambda:           *lambda,
		StickProbability: *stick,
		Bias:             *bias,
		StepSize:         *stepSize,
		SampleEvery:      *sampleEvery,
		Workers:          *workers,
		Seed:             *seed,
		Render:           *render,
	})
	if err != nil {
		return err
	}

	final := 0
	if n := len(summary.Attached); n > 0 {
		final = summary.Attached[n-1]
	}
	fmt.Printf("run_id=%s\n", summary.RunID)
	printPlacement("film", summary.FilmPlacement.Requested, summary.FilmPlacement.Placed, summary.FilmPlacement.Stop)
	fmt.Printf("steps=%s final_attached=%d\n", humanize.Comma(int64(len(summary.Attached))), final)
	fmt.Printf("equilibrium=%.4f tau=%.4f tail_mean=%.4f tail_std_dev=%.4f\n",
		summary.Fit.Equilibrium, summary.Fit.Tau, summary.Fit.TailMean, summary.Fit.TailStdDev)
	return printArtifacts(summary.ArtifactsDir)
}

func runRuns(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("runs", flag.ContinueOnError)
	store := addStoreFlags(fs)
	limit := fs.Int("limit", 20, "max runs to list")
	kind := fs.String("kind", "", "only list runs of this kind: scan|simulation")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *limit <= 0 {
		return errors.New("limit must be > 0")
	}

	client, err := store.open(nil)
	if err != nil {
		return err
	}
	defer client.Close()

	items, err := client.Runs(ctx, adhesim.RunsRequest{Limit: *limit, Kind: *kind})
	if err != nil {
		return err
	}
	if len(items) == 0 {
		fmt.Println("no runs found")
		return nil
	}
	for _, item := range items {
		fmt.Printf("run_id=%s kind=%s created_at=%s seed=%d film=%s bacterium=%s",
			item.RunID, item.Kind, item.CreatedAtUTC, item.Seed, item.Film, item.Bacterium)
		if item.Kind == storage.KindSimulation {
			fmt.Printf(" final_attached=%d\n", item.FinalAttached)
		} else {
			fmt.Printf(" min_energy=%.6f\n", item.MinEnergy)
		}
	}
	return nil
}

func runShow(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("show", flag.ContinueOnError)
	store := addStoreFlags(fs)
	runID := fs.String("run-id", "", "run id to show")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *runID == "" {
		return errors.New("show requires --run-id")
	}

	client, err := store.open(nil)
	if err != nil {
		return err
	}
	defer client.Close()

	shown, err := client.Show(ctx, *runID)
	if err != nil {
		return err
	}
	var record any = shown.Scan
	if shown.Kind == storage.KindSimulation {
		record = shown.Simulation
	}
	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return err
	}
	fmt.Printf("kind=%s from_artifacts=%t placements=%s\n%s\n",
		shown.Kind, shown.FromArtifacts, humanize.Comma(int64(len(shown.Placements))), data)
	return nil
}

func runExport(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	store := addStoreFlags(fs)
	runID := fs.String("run-id", "", "run id to export")
	latest := fs.Bool("latest", false, "export the most recent run")
	outDir := fs.String("out", exportsDir, "output directory")
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := store.open(nil)
	if err != nil {
		return err
	}
	defer client.Close()

	exported, err := client.Export(ctx, adhesim.ExportRequest{RunID: *runID, Latest: *latest, OutDir: *outDir})
	if err != nil {
		return err
	}
	size, err := dirSize(exported.Directory)
	if err != nil {
		return err
	}
	fmt.Printf("exported run_id=%s dir=%s size=%s\n", exported.RunID, exported.Directory, humanize.Bytes(size))
	return nil
}

func printPlacement(name string, requested, placed [2]int, stop string) {
	fmt.Printf("%s_requested=%d,%d %s_placed=%d,%d %s_stop=%s\n",
		name, requested[0], requested[1], name, placed[0], placed[1], name, stop)
}

func printArtifacts(dir string) error {
	size, err := dirSize(dir)
	if err != nil {
		return err
	}
	fmt.Printf("artifacts=%s size=%s\n", dir, humanize.Bytes(size))
	return nil
}

func dirSize(dir string) (uint64, error) {
	var total uint64
	err := filepath.WalkDir(dir, func(_ string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		total += uint64(info.Size())
		return nil
	})
	return total, err
}

// newLogger attaches progress output to stderr when someone is watching it.
func newLogger(verbose bool) *log.Logger {
	fd := os.Stderr.Fd()
	if verbose || isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd) {
		return log.New(os.Stderr, "adhesimctl: ", log.LstdFlags)
	}
	return nil
}

func usageError(msg string) error {
	return fmt.Errorf("%s\nusage: adhesimctl <scan|dynamic|runs|show|export> [flags]", msg)
}
