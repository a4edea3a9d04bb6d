// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package constraint

import (
	"testing"

	"github.com/cpmech/gosl/chk"
	"github.com/kilnforge/subdmold/evalsurf"
	"github.com/kilnforge/subdmold/types"
)

func flatQuadCage() *types.ControlCage {
	return &types.ControlCage{
		Verts: []types.Point{
			{X: 0, Y: 0, Z: 0}, {X: 1, Y: 0, Z: 0},
			{X: 1, Y: 1, Z: 0}, {X: 0, Y: 1, Z: 0},
		},
		Faces: [][]int{{0, 1, 2, 3}},
	}
}

func flatQuadEvaluator(tst *testing.T) *evalsurf.Evaluator {
	ev := evalsurf.New(types.DefaultEvaluatorOptions())
	if err := ev.Initialize(flatQuadCage()); err != nil {
		tst.Fatalf("init failed: %v", err)
	}
	return ev
}

// unitCubeCage is the closed unit cube, every vertex valence 3. Its
// limit surface is curved even at a face center (unlike flatQuadCage),
// exercising the draft classifier (spec.md's S4 scenario) against a
// real per-face normal rather than a flat plane's exact axis vector.
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

func cubeEvaluator(tst *testing.T) *evalsurf.Evaluator {
	ev := evalsurf.New(types.DefaultEvaluatorOptions())
	if err := ev.Initialize(unitCubeCage()); err != nil {
		tst.Fatalf("init failed: %v", err)
	}
	return ev
}

func TestValidateCubeBackFaceAgainstItsOwnOutwardNormal(tst *testing.T) {

	chk.PrintTitle("ValidateCubeBackFaceAgainstItsOwnOutwardNormal")

	ev := cubeEvaluator(tst)
	// face 0 is the back face (z=0), whose outward normal is -Z.
	reg := types.ParametricRegion{ID: "r", Faces: map[int]bool{0: true}}

	clean, err := Validate(ev, reg, types.Vector{Z: -1}, types.DefaultDraftOptions(), nil)
	if err != nil {
		tst.Errorf("validate failed: %v", err)
		return
	}
	if clean.Errors() != 0 {
		tst.Errorf("expected no draft errors pulling along the cube back face's own outward normal, got %d", clean.Errors())
	}

	undercut, err := Validate(ev, reg, types.Vector{Z: 1}, types.DefaultDraftOptions(), nil)
	if err != nil {
		tst.Errorf("validate failed: %v", err)
		return
	}
	if undercut.Errors() == 0 {
		tst.Errorf("expected an undercut ERROR pulling against the cube back face's own outward normal")
	}
}

func TestValidateCubeDemoldingAlongPlusZ(tst *testing.T) {

	chk.PrintTitle("ValidateCubeDemoldingAlongPlusZ")

	ev := cubeEvaluator(tst)
	d := types.Vector{Z: 1}
	opts := types.DefaultDraftOptions()

	// front face (z=1, index 1): outward normal +Z, draft = 90 deg, no violation.
	top := types.ParametricRegion{ID: "top", Faces: map[int]bool{1: true}}
	topReport, err := Validate(ev, top, d, opts, nil)
	if err != nil {
		tst.Errorf("validate failed: %v", err)
		return
	}
	if topReport.Errors() != 0 || topReport.Warnings() != 0 {
		tst.Errorf("expected no violations on the +Z face pulling along +Z, got %d errors / %d warnings", topReport.Errors(), topReport.Warnings())
	}

	// back face (z=0, index 0): outward normal -Z, draft = -90 deg, undercut ERROR.
	bottom := types.ParametricRegion{ID: "bottom", Faces: map[int]bool{0: true}}
	bottomReport, err := Validate(ev, bottom, d, opts, nil)
	if err != nil {
		tst.Errorf("validate failed: %v", err)
		return
	}
	if bottomReport.Errors() == 0 {
		tst.Errorf("expected an undercut ERROR on the -Z face pulling along +Z")
	}

	// bottom-y side face (y=0, index 2): outward normal -Y, draft = 0 deg,
	// below InsufficientDeg -> ERROR.
	side := types.ParametricRegion{ID: "side", Faces: map[int]bool{2: true}}
	sideReport, err := Validate(ev, side, d, opts, nil)
	if err != nil {
		tst.Errorf("validate failed: %v", err)
		return
	}
	if sideReport.Errors() == 0 {
		tst.Errorf("expected an insufficient-draft ERROR on a side face pulling perpendicular to it")
	}
}

func TestValidateCleanPullDirectionHasNoErrors(tst *testing.T) {

	chk.PrintTitle("ValidateCleanPullDirectionHasNoErrors")

	ev := flatQuadEvaluator(tst)
	reg := types.ParametricRegion{ID: "r", Faces: map[int]bool{0: true}}
	report, err := Validate(ev, reg, types.Vector{Z: 1}, types.DefaultDraftOptions(), nil)
	if err != nil {
		tst.Errorf("validate failed: %v", err)
		return
	}
	if report.Errors() != 0 {
		tst.Errorf("expected no draft errors pulling along the flat quad's own normal, got %d", report.Errors())
	}
}

func TestValidateFlagsUndercutAgainstNormal(tst *testing.T) {

	chk.PrintTitle("ValidateFlagsUndercutAgainstNormal")

	ev := flatQuadEvaluator(tst)
	reg := types.ParametricRegion{ID: "r", Faces: map[int]bool{0: true}}
	report, err := Validate(ev, reg, types.Vector{Z: -1}, types.DefaultDraftOptions(), nil)
	if err != nil {
		tst.Errorf("validate failed: %v", err)
		return
	}
	if report.Errors() == 0 {
		tst.Errorf("expected an undercut ERROR pulling against the flat quad's own normal")
	}
}

func TestValidateFlagsThinWall(tst *testing.T) {

	chk.PrintTitle("ValidateFlagsThinWall")

	ev := flatQuadEvaluator(tst)
	reg := types.ParametricRegion{ID: "r", Faces: map[int]bool{0: true}}
	opts := types.DefaultDraftOptions()
	thin := func(face int) (float64, bool) { return 1.0, true }
	report, err := Validate(ev, reg, types.Vector{Z: 1}, opts, thin)
	if err != nil {
		tst.Errorf("validate failed: %v", err)
		return
	}
	if report.Warnings() == 0 {
		tst.Errorf("expected a WARNING for a wall thinner than MinWallThickness")
	}
}

func TestRayTriangleHitsKnownIntersection(tst *testing.T) {

	chk.PrintTitle("RayTriangleHitsKnownIntersection")

	a := types.Point{X: -1, Y: -1, Z: 1}
	b := types.Point{X: 1, Y: -1, Z: 1}
	c := types.Point{X: 0, Y: 1, Z: 1}
	origin := types.Point{X: 0, Y: -0.3, Z: 0}
	dir := types.Vector{Z: 1}

	t, hit, wa, wb, wc, ok := rayTriangle(origin, dir, a, b, c)
	if !ok {
		tst.Errorf("expected the ray straight up through the triangle's interior to hit")
		return
	}
	chk.Scalar(tst, "t", 1e-9, t, 1.0)
	chk.Scalar(tst, "hit.Z", 1e-6, float64(hit.Z), 1.0)
	chk.Scalar(tst, "barycentric sum", 1e-9, wa+wb+wc, 1.0)
}

func TestRayTriangleMissesOutsideTriangle(tst *testing.T) {

	chk.PrintTitle("RayTriangleMissesOutsideTriangle")

	a := types.Point{X: -1, Y: -1, Z: 1}
	b := types.Point{X: 1, Y: -1, Z: 1}
	c := types.Point{X: 0, Y: 1, Z: 1}
	origin := types.Point{X: 5, Y: 5, Z: 0}
	dir := types.Vector{Z: 1}

	_, _, _, _, _, ok := rayTriangle(origin, dir, a, b, c)
	if ok {
		tst.Errorf("expected a ray that misses the triangle's footprint not to hit")
	}
}

func TestRayTriangleMissesBehindOrigin(tst *testing.T) {

	chk.PrintTitle("RayTriangleMissesBehindOrigin")

	a := types.Point{X: -1, Y: -1, Z: -1}
	b := types.Point{X: 1, Y: -1, Z: -1}
	c := types.Point{X: 0, Y: 1, Z: -1}
	origin := types.Point{X: 0, Y: -0.3, Z: 0}
	dir := types.Vector{Z: 1}

	_, _, _, _, _, ok := rayTriangle(origin, dir, a, b, c)
	if ok {
		tst.Errorf("expected a triangle behind the ray's origin not to register as a hit")
	}
}
