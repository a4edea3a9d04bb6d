// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package export

import (
	"testing"

	"github.com/cpmech/gosl/chk"
	"github.com/kilnforge/subdmold/kernelerr"
	"github.com/kilnforge/subdmold/types"
)

func flatSurface() *types.FittedNURBS {
	return &types.FittedNURBS{
		DegreeU: 1, DegreeV: 1, CountU: 2, CountV: 2,
		ControlPoints: []types.Point{
			{X: 0, Y: 0, Z: 0}, {X: 0, Y: 1, Z: 0},
			{X: 1, Y: 0, Z: 0}, {X: 1, Y: 1, Z: 0},
		},
		Weights: []float64{1, 1, 1, 1},
		KnotsU:  []float64{0, 0, 1, 1},
		KnotsV:  []float64{0, 0, 1, 1},
	}
}

func TestValidateNURBSDataAccepts(tst *testing.T) {

	chk.PrintTitle("ValidateNURBSDataAccepts")

	if err := ValidateNURBSData(flatSurface()); err != nil {
		tst.Errorf("expected a well-formed surface to validate, got: %v", err)
	}
}

func TestValidateNURBSDataRejectsMismatchedControlPoints(tst *testing.T) {

	chk.PrintTitle("ValidateNURBSDataRejectsMismatchedControlPoints")

	surf := flatSurface()
	surf.ControlPoints = surf.ControlPoints[:3]
	if err := ValidateNURBSData(surf); !kernelerr.Is(err, kernelerr.InvalidNURBSData) {
		tst.Errorf("expected InvalidNURBSData for a short control point slice, got: %v", err)
	}
}

func TestValidateNURBSDataRejectsMismatchedWeights(tst *testing.T) {

	chk.PrintTitle("ValidateNURBSDataRejectsMismatchedWeights")

	surf := flatSurface()
	surf.Weights = surf.Weights[:1]
	if err := ValidateNURBSData(surf); !kernelerr.Is(err, kernelerr.InvalidNURBSData) {
		tst.Errorf("expected InvalidNURBSData for a short weight slice, got: %v", err)
	}
}

func TestValidateNURBSDataRejectsBadKnotVector(tst *testing.T) {

	chk.PrintTitle("ValidateNURBSDataRejectsBadKnotVector")

	surf := flatSurface()
	surf.KnotsU = []float64{0, 1}
	if err := ValidateNURBSData(surf); !kernelerr.Is(err, kernelerr.InvalidNURBSData) {
		tst.Errorf("expected InvalidNURBSData for a short knots_u vector, got: %v", err)
	}
}

func TestValidateNURBSDataRejectsNil(tst *testing.T) {

	chk.PrintTitle("ValidateNURBSDataRejectsNil")

	if err := ValidateNURBSData(nil); !kernelerr.Is(err, kernelerr.InvalidNURBSData) {
		tst.Errorf("expected InvalidNURBSData for a nil surface, got: %v", err)
	}
}

func TestSerializeDeserializeRoundTrip(tst *testing.T) {

	chk.PrintTitle("SerializeDeserializeRoundTrip")

	entries := []MoldEntry{
		{Surface: flatSurface(), Name: "cavity-0", RegionID: "r1", DraftAngle: 3.0},
	}
	meta := map[string]interface{}{"session_id": "s1"}
	blob, err := Serialize(entries, meta, "2026-01-01T00:00:00Z")
	if err != nil {
		tst.Errorf("serialize failed: %v", err)
		return
	}

	back, gotMeta, ts, err := Deserialize(blob)
	if err != nil {
		tst.Errorf("deserialize failed: %v", err)
		return
	}
	if len(back) != 1 {
		tst.Errorf("expected 1 round-tripped entry, got %d", len(back))
		return
	}
	if back[0].Name != "cavity-0" || back[0].RegionID != "r1" {
		tst.Errorf("expected metadata to round-trip, got name=%q region=%q", back[0].Name, back[0].RegionID)
	}
	chk.Scalar(tst, "draft_angle", 1e-12, back[0].DraftAngle, 3.0)
	if ts != "2026-01-01T00:00:00Z" {
		tst.Errorf("expected timestamp to round-trip, got %q", ts)
	}
	if gotMeta["session_id"] != "s1" {
		tst.Errorf("expected metadata to round-trip, got %v", gotMeta)
	}
	if len(back[0].Surface.ControlPoints) != 4 {
		tst.Errorf("expected 4 control points to round-trip, got %d", len(back[0].Surface.ControlPoints))
	}
}

func TestSerializeRejectsInvalidEntry(tst *testing.T) {

	chk.PrintTitle("SerializeRejectsInvalidEntry")

	surf := flatSurface()
	surf.Weights = surf.Weights[:1]
	_, err := Serialize([]MoldEntry{{Surface: surf, Name: "bad"}}, nil, "2026-01-01T00:00:00Z")
	if !kernelerr.Is(err, kernelerr.InvalidNURBSData) {
		tst.Errorf("expected InvalidNURBSData to propagate from Serialize, got: %v", err)
	}
}

func TestDeserializeRejectsMalformedJSON(tst *testing.T) {

	chk.PrintTitle("DeserializeRejectsMalformedJSON")

	_, _, _, err := Deserialize([]byte("{not json"))
	if !kernelerr.Is(err, kernelerr.InvalidNURBSData) {
		tst.Errorf("expected InvalidNURBSData for malformed JSON, got: %v", err)
	}
}
