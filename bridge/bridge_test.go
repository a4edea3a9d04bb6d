// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package bridge

import (
	"encoding/json"
	"testing"

	"github.com/cpmech/gosl/chk"
	"github.com/kilnforge/subdmold/kernelerr"
)

func quadPayload() wirePayload {
	return wirePayload{
		Type:    "subd_control_cage",
		Version: "1.0",
		Vertices: [][3]float32{
			{0, 0, 0}, {1, 0, 0}, {1, 1, 0}, {0, 1, 0},
		},
		Faces:   [][]int{{0, 1, 2, 3}},
		Creases: []wireCrease{{0, 1, 5.0}},
	}
}

func TestIngestAcceptsValidPayload(tst *testing.T) {

	chk.PrintTitle("IngestAcceptsValidPayload")

	data, err := json.Marshal(quadPayload())
	if err != nil {
		tst.Fatalf("marshal failed: %v", err)
	}
	cage, err := Ingest(data, false)
	if err != nil {
		tst.Errorf("ingest failed: %v", err)
		return
	}
	if cage.NumVerts() != 4 || cage.NumFaces() != 1 {
		tst.Errorf("expected 4 verts / 1 face, got %d/%d", cage.NumVerts(), cage.NumFaces())
	}
	if len(cage.Creases) != 1 || cage.Creases[0].Sharpness != 5.0 {
		tst.Errorf("expected one crease with sharpness 5.0, got %+v", cage.Creases)
	}
}

func TestIngestRejectsMalformedJSON(tst *testing.T) {

	chk.PrintTitle("IngestRejectsMalformedJSON")

	_, err := Ingest([]byte("{not json"), false)
	if !kernelerr.Is(err, kernelerr.InvalidCage) {
		tst.Errorf("expected InvalidCage for malformed JSON, got: %v", err)
	}
}

func TestIngestRejectsWrongTypeTag(tst *testing.T) {

	chk.PrintTitle("IngestRejectsWrongTypeTag")

	payload := quadPayload()
	payload.Type = "some_other_payload"
	data, err := json.Marshal(payload)
	if err != nil {
		tst.Fatalf("marshal failed: %v", err)
	}
	_, err = Ingest(data, false)
	if !kernelerr.Is(err, kernelerr.InvalidCage) {
		tst.Errorf("expected InvalidCage for a mismatched type tag, got: %v", err)
	}
}

func TestIngestRejectsPreTessellatedMeshUnlessOverridden(tst *testing.T) {

	chk.PrintTitle("IngestRejectsPreTessellatedMeshUnlessOverridden")

	const n = preTessellatedThreshold + 1
	verts := make([][3]float32, n)
	for i := range verts {
		verts[i] = [3]float32{float32(i), 0, 0}
	}
	// n-2 triangles fanned off vertex 0, all valid indices.
	faces := make([][]int, 0, n-2)
	for i := 1; i < n-1; i++ {
		faces = append(faces, []int{0, i, i + 1})
	}
	payload := wirePayload{Type: "subd_control_cage", Vertices: verts, Faces: faces}
	data, err := json.Marshal(payload)
	if err != nil {
		tst.Fatalf("marshal failed: %v", err)
	}

	_, err = Ingest(data, false)
	if !kernelerr.Is(err, kernelerr.InvalidCage) {
		tst.Errorf("expected InvalidCage for a suspected pre-tessellated mesh, got: %v", err)
	}

	cage, err := Ingest(data, true)
	if err != nil {
		tst.Errorf("expected allowAuthoritative=true to accept the same payload, got: %v", err)
		return
	}
	if cage.NumVerts() != n {
		tst.Errorf("expected %d verts, got %d", n, cage.NumVerts())
	}
}

func TestLooksPreTessellatedRequiresAllTriangles(tst *testing.T) {

	chk.PrintTitle("LooksPreTessellatedRequiresAllTriangles")

	const n = preTessellatedThreshold + 1
	verts := make([][3]float32, n)
	faces := [][]int{{0, 1, 2, 3}}
	if looksPreTessellated(wirePayload{Vertices: verts, Faces: faces}) {
		tst.Errorf("expected a payload containing a quad face not to look pre-tessellated")
	}
}
