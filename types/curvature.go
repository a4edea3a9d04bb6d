package types

// CurvatureResult holds the full differential-geometric picture at a
// single evaluated surface point (SPEC_FULL.md §3).
type CurvatureResult struct {
	Kappa1, Kappa2 float64 // principal curvatures, Kappa1 >= Kappa2
	D1, D2         Vector  // principal directions, unit, tangent, orthogonal
	Normal         Vector
	K              float64 // Gaussian curvature = Kappa1*Kappa2
	H              float64 // mean curvature = (Kappa1+Kappa2)/2
	AbsH           float64
	RMS            float64 // sqrt((Kappa1^2+Kappa2^2)/2)
	E, F, G        float64 // first fundamental form
	L, M, N        float64 // second fundamental form
}

// EigenMode is one solution of the generalized Laplace-Beltrami
// eigenproblem on a tessellated limit surface.
type EigenMode struct {
	Index        int
	Lambda       float64
	Values       []float64 // per-vertex eigenfunction value
	Multiplicity int       // hint: count of near-equal eigenvalues in the cluster
}
