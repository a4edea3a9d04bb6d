package types

// FittedNURBS is an OpenCASCADE-compatible rational B-spline surface.
// Knot vectors are already flattened with multiplicities expanded, so
// len(KnotsU) == CountU+DegreeU+1 and symmetrically for V (SPEC_FULL.md
// §3, §4.9).
type FittedNURBS struct {
	DegreeU, DegreeV int
	CountU, CountV   int
	ControlPoints    []Point   // row-major, length CountU*CountV
	Weights          []float64 // length CountU*CountV
	KnotsU, KnotsV   []float64
}

// At returns the control point at (row i in U, column j in V).
func (f *FittedNURBS) At(i, j int) Point {
	return f.ControlPoints[i*f.CountV+j]
}

// WeightAt returns the weight at (row i in U, column j in V).
func (f *FittedNURBS) WeightAt(i, j int) float64 {
	return f.Weights[i*f.CountV+j]
}

// FittingQuality reports deviation of a FittedNURBS from the exact
// limit-surface samples it was validated against.
type FittingQuality struct {
	MaxDeviation, MeanDeviation, RMSDeviation float64 // millimeters
	SampleCount                               int
	PassesTolerance                           bool // true iff MaxDeviation < 0.1mm
}

// MoldSolid is an opaque handle to a modeling-kernel solid. The kernel
// never exposes its interior through the wire protocol (SPEC_FULL.md
// §9); the export package serializes the FittedNURBS surfaces of each
// mold entry instead.
type MoldSolid struct {
	handle      interface{} // opaque modeling-kernel solid
	WallThickness float64
	RegistrationKeys []Point
}

// Handle returns the opaque modeling-kernel payload. Callers outside
// mold should treat this as unprintable, non-comparable data.
func (m *MoldSolid) Handle() interface{} { return m.handle }

// NewMoldSolid wraps an opaque kernel handle. Only the mold package
// constructs these.
func NewMoldSolid(handle interface{}, wallThickness float64) *MoldSolid {
	return &MoldSolid{handle: handle, WallThickness: wallThickness}
}
