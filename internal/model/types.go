package model

// VersionedRecord captures schema and codec evolution for persistent data.
type VersionedRecord struct {
	SchemaVersion int `json:"schema_version"`
	CodecVersion  int `json:"codec_version"`
}

// InteractionResult is the outcome of one film/bacterium energy scan.
type InteractionResult struct {
	MinEnergy         float64 `json:"min_energy"`
	MinX              int     `json:"min_x"`
	MinY              int     `json:"min_y"`
	ChargeAtMinEnergy float64 `json:"charge_at_min_energy"`
	MinCharge         float64 `json:"min_charge"`
	MinChargeX        int     `json:"min_charge_x"`
	MinChargeY        int     `json:"min_charge_y"`
}

type SurfaceSpec struct {
	Shape  string `json:"shape"`
	Length int    `json:"length"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Charge int    `json:"charge"`
}

type DomainSpec struct {
	Shape               string  `json:"shape"`
	Length              int     `json:"length"`
	Width               int     `json:"width"`
	Concentration       float64 `json:"concentration"`
	ChargeConcentration float64 `json:"charge_concentration"`
	Neutral             bool    `json:"neutral"`
}

type ScanSpec struct {
	Interact string `json:"interact"`
	StrideX  int    `json:"stride_x"`
	StrideY  int    `json:"stride_y"`
	Cutoff   int    `json:"cutoff"`
}

// PlacementSummary reports requested and realized domain coverage for one surface.
type PlacementSummary struct {
	Charges   [2]int     `json:"charges"`
	Requested [2]int     `json:"requested"`
	Placed    [2]int     `json:"placed"`
	Realized  [2]float64 `json:"realized"`
	Stop      string     `json:"stop"`
}

type ScanRecord struct {
	VersionedRecord
	RunID         string            `json:"run_id"`
	CreatedAtUTC  string            `json:"created_at_utc"`
	Seed          int64             `json:"seed"`
	Workers       int               `json:"workers"`
	Film          SurfaceSpec       `json:"film"`
	FilmDomain    DomainSpec        `json:"film_domain"`
	Bacterium     SurfaceSpec       `json:"bacterium"`
	BactDomain    DomainSpec        `json:"bacterium_domain"`
	Scan          ScanSpec          `json:"scan"`
	FilmPlacement PlacementSummary  `json:"film_placement"`
	BactPlacement PlacementSummary  `json:"bacterium_placement"`
	Result        InteractionResult `json:"result"`
}

type SimulationSpec struct {
	Bacteria         int     `json:"bacteria"`
	Steps            int     `json:"steps"`
	Lambda           float64 `json:"lambda"`
	StickProbability float64 `json:"stick_probability"`
	Bias             float64 `json:"bias"`
	StepSize         int     `json:"step_size"`
}

type EquilibriumFit struct {
	Equilibrium float64 `json:"equilibrium"`
	Tau         float64 `json:"tau"`
	TailMean    float64 `json:"tail_mean"`
	TailStdDev  float64 `json:"tail_std_dev"`
}

type SimulationRecord struct {
	VersionedRecord
	RunID         string           `json:"run_id"`
	CreatedAtUTC  string           `json:"created_at_utc"`
	Seed          int64            `json:"seed"`
	Film          SurfaceSpec      `json:"film"`
	FilmDomain    DomainSpec       `json:"film_domain"`
	Bacterium     SurfaceSpec      `json:"bacterium"`
	BactDomain    DomainSpec       `json:"bacterium_domain"`
	Simulation    SimulationSpec   `json:"simulation"`
	FilmPlacement PlacementSummary `json:"film_placement"`
	Attached      []int            `json:"attached"`
	Fit           EquilibriumFit   `json:"fit"`
}

// RunRef identifies a stored record without loading its payload.
type RunRef struct {
	RunID        string `json:"run_id"`
	Kind         string `json:"kind"`
	CreatedAtUTC string `json:"created_at_utc"`
}
