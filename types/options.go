package types

// EvaluatorOptions configures an Evaluator instance.
type EvaluatorOptions struct {
	MaxLevel int  `json:"max_level"` // Initialize precomputes MaxLevel+3 subdivision levels
	Adaptive bool `json:"adaptive"`
}

// DefaultEvaluatorOptions returns the kernel's documented defaults.
func DefaultEvaluatorOptions() EvaluatorOptions {
	return EvaluatorOptions{MaxLevel: 6, Adaptive: false}
}

// DifferentialLensOptions configures the Differential Lens (SPEC_FULL.md
// §4.3).
type DifferentialLensOptions struct {
	GridSize      int     `json:"grid_size"`       // s in the s x s sample grid, default 3
	TauH          float64 `json:"tau_h"`           // |H| threshold
	TauK          float64 `json:"tau_k"`           // |K| threshold
	MinRegionSize int     `json:"min_region_size"` // faces
	RidgePercentile float64 `json:"ridge_percentile"` // top percentile of |kappa1|
	ValleyPercentile float64 `json:"valley_percentile"`
}

// DefaultDifferentialLensOptions returns the kernel's documented
// defaults.
func DefaultDifferentialLensOptions() DifferentialLensOptions {
	return DifferentialLensOptions{
		GridSize:         3,
		TauH:             1e-3,
		TauK:             1e-3,
		MinRegionSize:    1,
		RidgePercentile:  0.95,
		ValleyPercentile: 0.05,
	}
}

// SpectralLensOptions configures the Spectral Lens (SPEC_FULL.md §4.5).
type SpectralLensOptions struct {
	NumModes   int     `json:"num_modes"`   // k, default <=50
	Tolerance  float64 `json:"tolerance"`   // Lanczos residual tolerance
	MaxIters   int     `json:"max_iters"`
}

// DefaultSpectralLensOptions returns the kernel's documented defaults.
func DefaultSpectralLensOptions() SpectralLensOptions {
	return SpectralLensOptions{NumModes: 50, Tolerance: 1e-8, MaxIters: 500}
}

// DraftOptions configures the Constraint Validator's draft-angle policy
// (SPEC_FULL.md §4.7).
type DraftOptions struct {
	MinWallThickness float64 `json:"min_wall_thickness"` // mm, default 3
	InsufficientDeg  float64 `json:"insufficient_deg"`   // default 0.5
	RecommendedDeg   float64 `json:"recommended_deg"`    // default 2.0
}

// DefaultDraftOptions returns the kernel's documented defaults.
func DefaultDraftOptions() DraftOptions {
	return DraftOptions{MinWallThickness: 3.0, InsufficientDeg: 0.5, RecommendedDeg: 2.0}
}

// MoldOptions configures the NURBS Mold Generator (SPEC_FULL.md §4.8).
type MoldOptions struct {
	SampleDensity     int     `json:"sample_density"`     // s, default 50, clamped >=3
	ValidationDensity int     `json:"validation_density"` // denser grid for FittingQuality
	WallThickness     float64 `json:"wall_thickness"`     // mm, default 40
	KeyRadius         float64 `json:"key_radius"`         // mm, default 5
	KeyHeight         float64 `json:"key_height"`         // mm, default 10
}

// DefaultMoldOptions returns the kernel's documented defaults.
func DefaultMoldOptions() MoldOptions {
	return MoldOptions{
		SampleDensity:     50,
		ValidationDensity: 75,
		WallThickness:     40,
		KeyRadius:         5,
		KeyHeight:         10,
	}
}

// SessionOptions aggregates every tunable for one analysis session; this
// is the unit bridge and session round-trip as configuration payload.
type SessionOptions struct {
	Evaluator   EvaluatorOptions         `json:"evaluator"`
	Differential DifferentialLensOptions `json:"differential"`
	Spectral    SpectralLensOptions      `json:"spectral"`
	Draft       DraftOptions             `json:"draft"`
	Mold        MoldOptions              `json:"mold"`
}

// DefaultSessionOptions returns the kernel's documented defaults for a
// fresh session.
func DefaultSessionOptions() SessionOptions {
	return SessionOptions{
		Evaluator:    DefaultEvaluatorOptions(),
		Differential: DefaultDifferentialLensOptions(),
		Spectral:     DefaultSpectralLensOptions(),
		Draft:        DefaultDraftOptions(),
		Mold:         DefaultMoldOptions(),
	}
}

// Diagnostics is an optional, purely additive audit trail a caller may
// inspect after a spectral solve or undercut test (SPEC_FULL.md §3a).
type Diagnostics struct {
	SpectralIterations int
	RayCastDensity     int
}
