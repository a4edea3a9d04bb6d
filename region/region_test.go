// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package region

import (
	"testing"

	"github.com/cpmech/gosl/chk"
	"github.com/kilnforge/subdmold/kernelerr"
	"github.com/kilnforge/subdmold/types"
)

func idGen(prefix string) func() string {
	return func() string { return prefix }
}

func TestCanMergeRejectsOverlap(tst *testing.T) {

	chk.PrintTitle("CanMergeRejectsOverlap")

	a := types.ParametricRegion{Faces: map[int]bool{0: true, 1: true}}
	b := types.ParametricRegion{Faces: map[int]bool{1: true, 2: true}}
	if CanMerge(a, b, nil, false) {
		tst.Errorf("expected overlapping regions to be unmergeable")
	}
}

func TestCanMergeRequiresAdjacency(tst *testing.T) {

	chk.PrintTitle("CanMergeRequiresAdjacency")

	a := types.ParametricRegion{Faces: map[int]bool{0: true}}
	b := types.ParametricRegion{Faces: map[int]bool{1: true}}
	adjacency := map[int][]int{0: {}, 1: {}}
	if CanMerge(a, b, adjacency, false) {
		tst.Errorf("expected non-adjacent disjoint regions to be unmergeable without override")
	}
	if !CanMerge(a, b, adjacency, true) {
		tst.Errorf("expected allowNonAdjacent=true to permit the merge")
	}

	adjacency2 := map[int][]int{0: {1}, 1: {0}}
	if !CanMerge(a, b, adjacency2, false) {
		tst.Errorf("expected adjacent disjoint regions to be mergeable")
	}
}

func TestMergeRejectsOverlappingInputs(tst *testing.T) {

	chk.PrintTitle("MergeRejectsOverlappingInputs")

	a := types.ParametricRegion{ID: "a", Faces: map[int]bool{0: true}, UnityStrength: 1}
	b := types.ParametricRegion{ID: "b", Faces: map[int]bool{0: true}, UnityStrength: 1}
	_, err := Merge([]types.ParametricRegion{a, b}, nil, idGen("m"))
	if !kernelerr.Is(err, kernelerr.InvalidCage) {
		tst.Errorf("expected InvalidCage for overlapping merge inputs, got: %v", err)
	}
}

func TestMergeEqualWeightAverage(tst *testing.T) {

	chk.PrintTitle("MergeEqualWeightAverage")

	a := types.ParametricRegion{ID: "a", Faces: map[int]bool{0: true}, UnityStrength: 0.4}
	b := types.ParametricRegion{ID: "b", Faces: map[int]bool{1: true}, UnityStrength: 0.8}
	merged, err := Merge([]types.ParametricRegion{a, b}, nil, idGen("m"))
	if err != nil {
		tst.Errorf("merge failed: %v", err)
		return
	}
	if len(merged.Faces) != 2 {
		tst.Errorf("expected merged region to cover 2 faces, got %d", len(merged.Faces))
	}
	// ev==nil means faceArea falls back to weight 1 for every face, so
	// this is a plain average.
	chk.Scalar(tst, "merged unity_strength", 1e-9, merged.UnityStrength, 0.6)
}

func TestMergePropagatesPinned(tst *testing.T) {

	chk.PrintTitle("MergePropagatesPinned")

	a := types.ParametricRegion{ID: "a", Faces: map[int]bool{0: true}, Pinned: true}
	b := types.ParametricRegion{ID: "b", Faces: map[int]bool{1: true}}
	merged, err := Merge([]types.ParametricRegion{a, b}, nil, idGen("m"))
	if err != nil {
		tst.Errorf("merge failed: %v", err)
		return
	}
	if !merged.Pinned {
		tst.Errorf("expected merged region to inherit Pinned=true from any input")
	}
}

func TestMergeRejectsEmptyInput(tst *testing.T) {

	chk.PrintTitle("MergeRejectsEmptyInput")

	_, err := Merge(nil, nil, idGen("m"))
	if !kernelerr.Is(err, kernelerr.InvalidCage) {
		tst.Errorf("expected InvalidCage for no input regions, got: %v", err)
	}
}

func TestValidateFlagsEmptyRegion(tst *testing.T) {

	chk.PrintTitle("ValidateFlagsEmptyRegion")

	report := Validate(types.ParametricRegion{ID: "r"}, 4)
	if report.Errors() == 0 {
		tst.Errorf("expected an error for an empty region")
	}
}

func TestValidateFlagsOutOfRangeFace(tst *testing.T) {

	chk.PrintTitle("ValidateFlagsOutOfRangeFace")

	reg := types.ParametricRegion{ID: "r", Faces: map[int]bool{5: true}, UnityStrength: 0.5}
	report := Validate(reg, 4)
	if report.Errors() == 0 {
		tst.Errorf("expected an error for an out-of-range face id")
	}
}

func TestValidateFlagsBadUnityStrength(tst *testing.T) {

	chk.PrintTitle("ValidateFlagsBadUnityStrength")

	reg := types.ParametricRegion{ID: "r", Faces: map[int]bool{0: true}, UnityStrength: 1.5}
	report := Validate(reg, 4)
	if report.Errors() == 0 {
		tst.Errorf("expected an error for unity_strength outside [0,1]")
	}
}

func TestValidateAcceptsWellFormedRegion(tst *testing.T) {

	chk.PrintTitle("ValidateAcceptsWellFormedRegion")

	reg := types.ParametricRegion{ID: "r", Faces: map[int]bool{0: true, 1: true}, UnityStrength: 0.5}
	report := Validate(reg, 4)
	if report.Errors() != 0 {
		tst.Errorf("expected no errors for a well-formed region, got %d", report.Errors())
	}
}

func TestSplitRejectsEmptyRegion(tst *testing.T) {

	chk.PrintTitle("SplitRejectsEmptyRegion")

	reg := types.ParametricRegion{ID: "r"}
	curve := types.ParametricCurve{Points: []types.ParametricPoint{{Face: 0, U: 0, V: 0}, {Face: 0, U: 1, V: 1}}}
	_, _, err := Split(reg, curve, nil, nil, idGen("a"), idGen("b"))
	if !kernelerr.Is(err, kernelerr.InvalidCage) {
		tst.Errorf("expected InvalidCage for an empty region, got: %v", err)
	}
}

func TestSplitRejectsShortCurve(tst *testing.T) {

	chk.PrintTitle("SplitRejectsShortCurve")

	reg := types.ParametricRegion{ID: "r", Faces: map[int]bool{0: true, 1: true}}
	curve := types.ParametricCurve{Points: []types.ParametricPoint{{Face: 0, U: 0.5, V: 0.5}}}
	_, _, err := Split(reg, curve, nil, nil, idGen("a"), idGen("b"))
	if !kernelerr.Is(err, kernelerr.InvalidCage) {
		tst.Errorf("expected InvalidCage for a single-point curve, got: %v", err)
	}
}
