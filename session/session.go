// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package session is a thin, additive bookkeeping layer above the
// kernel: it owns the current set of ParametricRegions for one
// analysis session plus an append-only log of the operations that
// produced them (SPEC_FULL.md §4.11). It never re-derives or caches
// anything the kernel packages already compute.
package session

import (
	"encoding/json"
	"fmt"

	"github.com/kilnforge/subdmold/kernelerr"
	"github.com/kilnforge/subdmold/types"
)

// OpRecord is one entry in a session's audit trail: an operation name
// (e.g. "lens.differential", "region.merge", "region.split",
// "region.pin"), the region ids it consumed, and the region ids it
// produced.
type OpRecord struct {
	Op     string   `json:"op"`
	Inputs []string `json:"inputs"`
	Output []string `json:"output"`
}

// State is the plain value type a host process serializes between
// requests. It holds no kernel handles and no derived caches.
type State struct {
	Regions map[string]types.ParametricRegion `json:"regions"`
	History []OpRecord                        `json:"history"`
	nextID  int
}

// New returns an empty session State.
func New() *State {
	return &State{Regions: make(map[string]types.ParametricRegion)}
}

// NextID returns a fresh, session-unique region id and advances the
// generator. Every package that takes an idGen func() string
// (lens.Differential.Discover, lens.Spectral.ExtractRegions,
// region.Merge, region.Split) can be bound to this.
func (s *State) NextID() string {
	s.nextID++
	return fmt.Sprintf("region-%d", s.nextID)
}

// Record appends entries produced by a discovery or region-algebra
// operation to both Regions and History. inputs names the region ids
// the operation consumed (empty for a fresh discovery pass).
func (s *State) Record(op string, inputs []string, produced ...types.ParametricRegion) {
	outputs := make([]string, 0, len(produced))
	for _, r := range produced {
		s.Regions[r.ID] = r
		outputs = append(outputs, r.ID)
	}
	s.History = append(s.History, OpRecord{Op: op, Inputs: inputs, Output: outputs})
}

// Remove deletes a region from the live set without touching History;
// callers that replace regions (merge/split) are expected to call
// Remove on the consumed ids after Record has logged the new ones.
func (s *State) Remove(ids ...string) {
	for _, id := range ids {
		delete(s.Regions, id)
	}
}

// Get looks up a region by id.
func (s *State) Get(id string) (types.ParametricRegion, bool) {
	r, ok := s.Regions[id]
	return r, ok
}

// Pin marks a region pinned (user-asserted, exempt from automatic
// re-merge by subsequent lens runs per spec.md's pinned-region
// invariant) and logs the operation.
func (s *State) Pin(id string) error {
	r, ok := s.Regions[id]
	if !ok {
		return kernelerr.New(kernelerr.InvalidFace, "pin: no such region %q", id)
	}
	r.Pinned = true
	s.Regions[id] = r
	s.History = append(s.History, OpRecord{Op: "region.pin", Inputs: []string{id}, Output: []string{id}})
	return nil
}

// wireState is State's JSON shape; nextID is carried explicitly since
// it is unexported and otherwise would not round-trip.
type wireState struct {
	Regions map[string]types.ParametricRegion `json:"regions"`
	History []OpRecord                        `json:"history"`
	NextID  int                                `json:"next_id"`
}

// MarshalJSON implements json.Marshaler so the unexported id counter
// survives a round trip.
func (s *State) MarshalJSON() ([]byte, error) {
	return json.Marshal(wireState{Regions: s.Regions, History: s.History, NextID: s.nextID})
}

// UnmarshalJSON implements json.Unmarshaler, restoring the id counter
// alongside the exported fields.
func (s *State) UnmarshalJSON(data []byte) error {
	var w wireState
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	if w.Regions == nil {
		w.Regions = make(map[string]types.ParametricRegion)
	}
	s.Regions = w.Regions
	s.History = w.History
	s.nextID = w.NextID
	return nil
}
