// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package laplacian

import (
	"testing"

	"github.com/cpmech/gosl/chk"
	"github.com/kilnforge/subdmold/evalsurf"
	"github.com/kilnforge/subdmold/types"
)

func flatQuadCage() *types.ControlCage {
	return &types.ControlCage{
		Verts: []types.Point{
			{X: 0, Y: 0, Z: 0},
			{X: 1, Y: 0, Z: 0},
			{X: 1, Y: 1, Z: 0},
			{X: 0, Y: 1, Z: 0},
		},
		Faces: [][]int{{0, 1, 2, 3}},
	}
}

func buildTess(tst *testing.T) *types.TessellationResult {
	ev := evalsurf.New(types.DefaultEvaluatorOptions())
	if err := ev.Initialize(flatQuadCage()); err != nil {
		tst.Fatalf("init failed: %v", err)
	}
	tess, err := ev.Tessellate(2, false)
	if err != nil {
		tst.Fatalf("tessellate failed: %v", err)
	}
	return tess
}

func TestBuildConstantNullSpace(tst *testing.T) {

	chk.PrintTitle("BuildConstantNullSpace")

	InvalidateCache()
	tess := buildTess(tst)
	op := Build("laplacian_test_flat", tess)

	report := op.Verify()
	if !report.ConstantNullOK {
		tst.Errorf("expected L*1 ~ 0, got max residual %v", report.MaxConstRes)
	}
	if op.NumVerts != tess.NumVerts() {
		tst.Errorf("expected NumVerts=%d, got %d", tess.NumVerts(), op.NumVerts)
	}
}

func TestBuildCachesByKey(tst *testing.T) {

	chk.PrintTitle("BuildCachesByKey")

	InvalidateCache()
	tess := buildTess(tst)
	op1 := Build("laplacian_test_cache", tess)
	op2 := Build("laplacian_test_cache", tess)
	if op1 != op2 {
		tst.Errorf("expected Build to return the cached operator for the same key")
	}
	InvalidateCache()
	op3 := Build("laplacian_test_cache", tess)
	if op1 == op3 {
		tst.Errorf("expected InvalidateCache to force a fresh build")
	}
}

func TestMassMatrixPositive(tst *testing.T) {

	chk.PrintTitle("MassMatrixPositive")

	InvalidateCache()
	tess := buildTess(tst)
	op := Build("laplacian_test_mass", tess)
	for i, a := range op.A {
		if a <= 0 {
			tst.Errorf("expected positive mass at vertex %d, got %v", i, a)
		}
	}
}
