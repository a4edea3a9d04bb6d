// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package lens

import (
	"testing"

	"github.com/cpmech/gosl/chk"
	"github.com/kilnforge/subdmold/evalsurf"
	"github.com/kilnforge/subdmold/kernelerr"
	"github.com/kilnforge/subdmold/laplacian"
	"github.com/kilnforge/subdmold/types"
)

func flatTwoQuadCageForSpectral() *types.ControlCage {
	return &types.ControlCage{
		Verts: []types.Point{
			{X: 0, Y: 0, Z: 0}, {X: 1, Y: 0, Z: 0},
			{X: 1, Y: 1, Z: 0}, {X: 0, Y: 1, Z: 0},
			{X: 2, Y: 0, Z: 0}, {X: 2, Y: 1, Z: 0},
		},
		Faces: [][]int{{0, 1, 2, 3}, {1, 4, 5, 2}},
	}
}

// unitCubeCage is the closed unit cube: a genus-0 manifold with no
// boundary, unlike flatTwoQuadCageForSpectral's open two-quad patch.
// Its Laplace-Beltrami null space is exactly the constant functions, so
// it is the fixture spec.md's S3 spectral-sanity scenario calls for:
// a single zero eigenvalue (not a degenerate cluster an open patch's
// boundary can produce) followed by a strictly positive gap.
func unitCubeCage() *types.ControlCage {
	return &types.ControlCage{
		Verts: []types.Point{
			{X: 0, Y: 0, Z: 0}, {X: 1, Y: 0, Z: 0},
			{X: 1, Y: 1, Z: 0}, {X: 0, Y: 1, Z: 0},
			{X: 0, Y: 0, Z: 1}, {X: 1, Y: 0, Z: 1},
			{X: 1, Y: 1, Z: 1}, {X: 0, Y: 1, Z: 1},
		},
		Faces: [][]int{
			{0, 3, 2, 1}, {4, 5, 6, 7},
			{0, 1, 5, 4}, {3, 7, 6, 2},
			{0, 4, 7, 3}, {1, 2, 6, 5},
		},
	}
}

func buildCubeOperator(tst *testing.T) *laplacian.Operator {
	ev := evalsurf.New(types.DefaultEvaluatorOptions())
	if err := ev.Initialize(unitCubeCage()); err != nil {
		tst.Fatalf("init failed: %v", err)
	}
	tess, err := ev.Tessellate(2, false)
	if err != nil {
		tst.Fatalf("tessellate failed: %v", err)
	}
	laplacian.InvalidateCache()
	return laplacian.Build("spectral_cube_test", tess)
}

func TestSolveCubeFirstModeIsConstantWithPositiveGap(tst *testing.T) {

	chk.PrintTitle("SolveCubeFirstModeIsConstantWithPositiveGap")

	op := buildCubeOperator(tst)
	spectral := NewSpectral(types.SpectralLensOptions{NumModes: 5, MaxIters: 300})
	modes, err := spectral.Solve(op)
	if err != nil {
		tst.Errorf("solve failed: %v", err)
		return
	}
	if len(modes) < 2 {
		tst.Errorf("expected at least 2 modes on the closed cube, got %d", len(modes))
		return
	}
	chk.Scalar(tst, "lambda0 (constant mode)", 1e-2, modes[0].Lambda, 0.0)
	if modes[1].Lambda <= modes[0].Lambda+1e-6 {
		tst.Errorf("expected a strictly positive spectral gap above the constant mode, got lambda0=%v lambda1=%v", modes[0].Lambda, modes[1].Lambda)
	}
}

func buildOperator(tst *testing.T) *laplacian.Operator {
	ev := evalsurf.New(types.DefaultEvaluatorOptions())
	cage := flatTwoQuadCageForSpectral()
	if err := ev.Initialize(cage); err != nil {
		tst.Fatalf("init failed: %v", err)
	}
	tess, err := ev.Tessellate(2, false)
	if err != nil {
		tst.Fatalf("tessellate failed: %v", err)
	}
	laplacian.InvalidateCache()
	return laplacian.Build("spectral_test", tess)
}

func TestSolveFirstModeIsConstant(tst *testing.T) {

	chk.PrintTitle("SolveFirstModeIsConstant")

	op := buildOperator(tst)
	spectral := NewSpectral(types.SpectralLensOptions{NumModes: 5, MaxIters: 300})
	modes, err := spectral.Solve(op)
	if err != nil {
		tst.Errorf("solve failed: %v", err)
		return
	}
	if len(modes) == 0 {
		tst.Errorf("expected at least one mode")
		return
	}
	chk.Scalar(tst, "lambda0", 1e-2, modes[0].Lambda, 0.0)
}

func TestExtractRegionsRejectsConstantMode(tst *testing.T) {

	chk.PrintTitle("ExtractRegionsRejectsConstantMode")

	op := buildOperator(tst)
	spectral := NewSpectral(types.SpectralLensOptions{NumModes: 3, MaxIters: 300})
	modes, err := spectral.Solve(op)
	if err != nil {
		tst.Errorf("solve failed: %v", err)
		return
	}

	ev := evalsurf.New(types.DefaultEvaluatorOptions())
	cage := flatTwoQuadCageForSpectral()
	if err := ev.Initialize(cage); err != nil {
		tst.Errorf("init failed: %v", err)
		return
	}
	tess, err := ev.Tessellate(2, false)
	if err != nil {
		tst.Errorf("tessellate failed: %v", err)
		return
	}

	n := 0
	idGen := func() string { n++; return "s-region" }
	_, err = spectral.ExtractRegions(modes, 0, tess, op, idGen)
	if !kernelerr.Is(err, kernelerr.ParameterOutOfRange) {
		tst.Errorf("expected ParameterOutOfRange for mode 0, got: %v", err)
	}

	_, err = spectral.ExtractRegions(modes, len(modes)+5, tess, op, idGen)
	if !kernelerr.Is(err, kernelerr.ParameterOutOfRange) {
		tst.Errorf("expected ParameterOutOfRange for an out-of-range mode index, got: %v", err)
	}
}

func TestResonanceScoreBounds(tst *testing.T) {

	chk.PrintTitle("ResonanceScoreBounds")

	domain := map[int]bool{0: true, 1: true}
	edges := []gradEdge{
		{a: 0, b: 1, energy: 1.0}, // intra
		{a: 1, b: 2, energy: 2.0}, // inter
	}
	score := resonanceScore(domain, edges)
	if score < 0 || score > 1 {
		tst.Errorf("expected resonance score in [0,1], got %v", score)
	}

	zero := resonanceScore(map[int]bool{}, nil)
	chk.Scalar(tst, "empty domain score", 1e-15, zero, 0.0)
}
