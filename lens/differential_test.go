// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package lens

import (
	"testing"

	"github.com/cpmech/gosl/chk"
	"github.com/kilnforge/subdmold/evalsurf"
	"github.com/kilnforge/subdmold/types"
)

// flatTwoQuadCage is two coplanar unit squares sharing an edge: every
// sampled point is planar, so the differential lens should cluster
// both faces into a single flat region.
func flatTwoQuadCage() *types.ControlCage {
	return &types.ControlCage{
		Verts: []types.Point{
			{X: 0, Y: 0, Z: 0}, {X: 1, Y: 0, Z: 0},
			{X: 1, Y: 1, Z: 0}, {X: 0, Y: 1, Z: 0},
			{X: 2, Y: 0, Z: 0}, {X: 2, Y: 1, Z: 0},
		},
		Faces: [][]int{{0, 1, 2, 3}, {1, 4, 5, 2}},
	}
}

func idGenFor(prefix string) func() string {
	n := 0
	return func() string {
		n++
		return prefix + "-" + string(rune('0'+n))
	}
}

func TestDiscoverFlatCageOneRegion(tst *testing.T) {

	chk.PrintTitle("DiscoverFlatCageOneRegion")

	ev := evalsurf.New(types.DefaultEvaluatorOptions())
	cage := flatTwoQuadCage()
	if err := ev.Initialize(cage); err != nil {
		tst.Errorf("init failed: %v", err)
		return
	}

	d := NewDifferential(types.DefaultDifferentialLensOptions())
	regions, err := d.Discover(ev, cage, idGenFor("r"))
	if err != nil {
		tst.Errorf("discover failed: %v", err)
		return
	}
	if len(regions) != 1 {
		tst.Errorf("expected 1 flat region spanning both faces, got %d", len(regions))
		return
	}
	if len(regions[0].Faces) != 2 {
		tst.Errorf("expected the region to cover both faces, got %d", len(regions[0].Faces))
	}
	if regions[0].UnityPrinciple != "differential:flat" {
		tst.Errorf("expected differential:flat, got %q", regions[0].UnityPrinciple)
	}
}

func TestClassifyThresholds(tst *testing.T) {

	chk.PrintTitle("ClassifyThresholds")

	tauH, tauK := 1e-3, 1e-3

	if cls := classify(0, 0, tauH, tauK); cls != classFlat {
		tst.Errorf("expected flat for H=K=0, got %v", cls)
	}
	if cls := classify(1, 1, tauH, tauK); cls != classConvex {
		tst.Errorf("expected convex for H>0,K>0, got %v", cls)
	}
	if cls := classify(-1, 1, tauH, tauK); cls != classConcave {
		tst.Errorf("expected concave for H<0,K>0, got %v", cls)
	}
	if cls := classify(0, -1, tauH, tauK); cls != classSaddle {
		tst.Errorf("expected saddle for K<0, got %v", cls)
	}
}

func TestMajorityClassTiesResolveToFlat(tst *testing.T) {

	chk.PrintTitle("MajorityClassTiesResolveToFlat")

	counts := map[faceClass]int{classConvex: 2, classConcave: 2}
	if cls := majorityClass(counts); cls != classFlat {
		tst.Errorf("expected a convex/concave tie to resolve to flat, got %v", cls)
	}

	clear := map[faceClass]int{classConvex: 3, classConcave: 1}
	if cls := majorityClass(clear); cls != classConvex {
		tst.Errorf("expected an outright majority to win, got %v", cls)
	}

	if cls := majorityClass(map[faceClass]int{}); cls != classFlat {
		tst.Errorf("expected no votes to default to flat, got %v", cls)
	}
}
