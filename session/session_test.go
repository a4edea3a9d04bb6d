// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package session

import (
	"encoding/json"
	"testing"

	"github.com/cpmech/gosl/chk"
	"github.com/kilnforge/subdmold/kernelerr"
	"github.com/kilnforge/subdmold/types"
)

func TestNextIDMonotonicAndUnique(tst *testing.T) {

	chk.PrintTitle("NextIDMonotonicAndUnique")

	s := New()
	seen := make(map[string]bool)
	for i := 0; i < 5; i++ {
		id := s.NextID()
		if seen[id] {
			tst.Errorf("expected NextID to be unique, got a repeat: %q", id)
		}
		seen[id] = true
	}
	if len(seen) != 5 {
		tst.Errorf("expected 5 distinct ids, got %d", len(seen))
	}
}

func TestRecordGetRemove(tst *testing.T) {

	chk.PrintTitle("RecordGetRemove")

	s := New()
	r := types.ParametricRegion{ID: "region-1", Faces: map[int]bool{0: true}}
	s.Record("lens.differential", nil, r)

	got, ok := s.Get("region-1")
	if !ok || got.ID != "region-1" {
		tst.Errorf("expected to find region-1 after Record")
	}
	if len(s.History) != 1 || s.History[0].Op != "lens.differential" {
		tst.Errorf("expected one history entry for lens.differential, got %+v", s.History)
	}

	s.Remove("region-1")
	if _, ok := s.Get("region-1"); ok {
		tst.Errorf("expected region-1 to be gone after Remove")
	}
	if len(s.History) != 1 {
		tst.Errorf("expected Remove to leave History untouched, got %d entries", len(s.History))
	}
}

func TestPinRejectsMissingRegion(tst *testing.T) {

	chk.PrintTitle("PinRejectsMissingRegion")

	s := New()
	err := s.Pin("nonexistent")
	if !kernelerr.Is(err, kernelerr.InvalidFace) {
		tst.Errorf("expected an error pinning a missing region, got: %v", err)
	}
}

func TestPinMarksRegionAndLogs(tst *testing.T) {

	chk.PrintTitle("PinMarksRegionAndLogs")

	s := New()
	r := types.ParametricRegion{ID: "region-1", Faces: map[int]bool{0: true}}
	s.Record("lens.differential", nil, r)

	if err := s.Pin("region-1"); err != nil {
		tst.Errorf("pin failed: %v", err)
		return
	}
	got, _ := s.Get("region-1")
	if !got.Pinned {
		tst.Errorf("expected region-1 to be Pinned after Pin")
	}
	if len(s.History) != 2 || s.History[1].Op != "region.pin" {
		tst.Errorf("expected a region.pin history entry, got %+v", s.History)
	}
}

func TestMarshalUnmarshalRoundTripsNextID(tst *testing.T) {

	chk.PrintTitle("MarshalUnmarshalRoundTripsNextID")

	s := New()
	s.NextID()
	s.NextID()
	s.NextID()
	r := types.ParametricRegion{ID: "region-3", Faces: map[int]bool{0: true}}
	s.Record("lens.differential", nil, r)

	blob, err := json.Marshal(s)
	if err != nil {
		tst.Errorf("marshal failed: %v", err)
		return
	}

	restored := New()
	if err := json.Unmarshal(blob, restored); err != nil {
		tst.Errorf("unmarshal failed: %v", err)
		return
	}
	if _, ok := restored.Get("region-3"); !ok {
		tst.Errorf("expected region-3 to survive the round trip")
	}
	nextAfterRestore := restored.NextID()
	if nextAfterRestore != "region-4" {
		tst.Errorf("expected the id counter to survive the round trip, got %q instead of region-4", nextAfterRestore)
	}
}
