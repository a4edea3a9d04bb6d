// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package bridge parses the incoming subd_control_cage wire payload
// into a types.ControlCage (SPEC_FULL.md §4.10, §6). It never accepts
// a pre-tessellated mesh masquerading as a control cage.
package bridge

import (
	"encoding/json"

	"github.com/kilnforge/subdmold/kernelerr"
	"github.com/kilnforge/subdmold/types"
)

// wireCrease mirrors one [i, j, sharpness] entry.
type wireCrease [3]float64

// wirePayload is the JSON shape of subd_control_cage (SPEC_FULL.md §6).
type wirePayload struct {
	Type     string       `json:"type"`
	Version  string       `json:"version"`
	Vertices [][3]float32 `json:"vertices"`
	Faces    [][]int      `json:"faces"`
	Creases  []wireCrease `json:"creases"`
}

// preTessellatedThreshold is the vertex count above which an
// all-triangle payload is suspected of being a pre-tessellated display
// mesh rather than an authored control cage (SPEC_FULL.md §4.10).
// Hand-authored ceramic mold cages for this kernel's target scale
// (single vessels to small multi-part molds) stay in the tens to low
// hundreds of control vertices; a dense all-triangle mesh beyond that
// is far more likely to be a subdivision surface's display
// tessellation fed back in by mistake.
const preTessellatedThreshold = 500

// Ingest parses a subd_control_cage JSON payload into a ControlCage.
// If allowAuthoritative is false, a payload whose shape suggests a
// pre-tessellated mesh (every face a triangle and vertex count over
// preTessellatedThreshold) is refused with InvalidCage.
func Ingest(data []byte, allowAuthoritative bool) (*types.ControlCage, error) {
	var payload wirePayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, kernelerr.New(kernelerr.InvalidCage, "malformed subd_control_cage payload: %v", err)
	}
	if payload.Type != "" && payload.Type != "subd_control_cage" {
		return nil, kernelerr.New(kernelerr.InvalidCage, "unexpected payload type %q, want subd_control_cage", payload.Type)
	}

	if !allowAuthoritative && looksPreTessellated(payload) {
		return nil, kernelerr.New(kernelerr.InvalidCage, "payload looks like a pre-tessellated mesh (%d all-triangle faces, %d vertices); pass allowAuthoritative to override", len(payload.Faces), len(payload.Vertices))
	}

	cage := &types.ControlCage{
		Verts: make([]types.Point, len(payload.Vertices)),
		Faces: payload.Faces,
	}
	for i, v := range payload.Vertices {
		cage.Verts[i] = types.Point{X: v[0], Y: v[1], Z: v[2]}
	}
	for _, cr := range payload.Creases {
		cage.Creases = append(cage.Creases, types.Crease{
			Edge:      types.NewEdgeKey(int(cr[0]), int(cr[1])),
			Sharpness: float32(cr[2]),
		})
	}

	if err := cage.Validate(); err != nil {
		return nil, err
	}
	return cage, nil
}

// looksPreTessellated implements the heuristic from SPEC_FULL.md
// §4.10: every face is a triangle and vertex count exceeds the
// threshold.
func looksPreTessellated(payload wirePayload) bool {
	if len(payload.Vertices) <= preTessellatedThreshold {
		return false
	}
	if len(payload.Faces) == 0 {
		return false
	}
	for _, f := range payload.Faces {
		if len(f) != 3 {
			return false
		}
	}
	return true
}
