// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package evalsurf implements the Catmull-Clark limit-surface
// evaluator: topology refinement, patch-table construction, and the
// position/derivative/tangent-frame queries built on top of it.
//
// Evaluation is exact, not a depth-capped mesh approximation: away from
// an extraordinary (valence != 4) vertex, the Catmull-Clark limit
// surface over a quad coincides exactly with the uniform bicubic
// B-spline patch spanned by its regular 4x4 control-point stencil
// (regularpatch.go), and that patch is evaluated analytically —
// position and every derivative in closed form, no finite differencing.
// Since one subdivision step always leaves at most one extraordinary
// corner per face and irregular influence halves with every level, that
// regular stencil is found at some precomputed level for any (u,v) not
// asymptotically close to an actual extraordinary vertex. Only within
// that shrinking residual neighborhood (bounded by the finest
// precomputed level's quad size) does evaluation fall back to the
// bilinear corner interpolation described in evaluate.go, which is
// explicitly scoped and documented there rather than used as the
// general-case path.
package evalsurf

import (
	"github.com/kilnforge/subdmold/kernelerr"
	"github.com/kilnforge/subdmold/types"
)

// paramRegion is the parametric footprint a subdivided face occupies
// within the original control face's unit square. Only axis-aligned
// rectangles are tracked; children of triangular control faces get an
// even angular slice of the parent footprint (angularSlice).
type paramRegion struct {
	u0, v0, u1, v1 float64
}

func (r paramRegion) contains(u, v float64) bool {
	return u >= r.u0-1e-9 && u <= r.u1+1e-9 && v >= r.v0-1e-9 && v <= r.v1+1e-9
}

func (r paramRegion) quadrants() [4]paramRegion {
	um := (r.u0 + r.u1) / 2
	vm := (r.v0 + r.v1) / 2
	return [4]paramRegion{
		{r.u0, r.v0, um, vm},
		{um, r.v0, r.u1, vm},
		{um, vm, r.u1, r.v1},
		{r.u0, vm, um, r.v1},
	}
}

// meshLevel is one level of the precomputed subdivision hierarchy: a
// pure quad mesh (except level 0, which mirrors the control cage's face
// arities) with per-face lineage back to the original control face.
type meshLevel struct {
	verts    []types.Point
	faces    [][]int // level 0: original arity; level>=1: always len==4
	parent   []int   // parent[f] = original control-face id
	region   []paramRegion
	valence  []int
	creases  map[types.EdgeKey]float32 // remaining sharpness at this level
	boundary map[types.EdgeKey]bool
	byParent map[int][]int // original control-face id -> quad indices at this level
}

func (m *meshLevel) indexByParent() {
	m.byParent = make(map[int][]int, len(m.parent))
	for fi, p := range m.parent {
		m.byParent[p] = append(m.byParent[p], fi)
	}
}

// Evaluator holds the one-shot refiner and precomputed patch table for a
// single ControlCage. A fresh instance is required for a fresh topology
// (SPEC_FULL.md §9, one-shot refiner).
type Evaluator struct {
	cage        *types.ControlCage
	opts        types.EvaluatorOptions
	initialized bool
	levels      []*meshLevel // levels[0] = control cage level
	depth       int          // total precomputed levels beyond level 0

	// adj[i] is the quad-edge adjacency for levels[i], used by
	// adaptiveEvaluate to gather regular bicubic stencils. adj[0] is
	// always nil (level 0 may have non-quad faces). Built once, eagerly,
	// in Initialize, so later concurrent evaluation calls (e.g. from
	// curvature.BatchAnalyze's worker pool) only ever read it.
	adj []*quadEdgeAdjacency
}

// New returns an uninitialized Evaluator.
func New(opts types.EvaluatorOptions) *Evaluator {
	return &Evaluator{opts: opts}
}

// internalRefinementDepth is how many subdivision levels beyond a
// caller's requested tessellation level the evaluator precomputes, so
// that evaluate_limit_point and friends can apply a limit-point
// correction (Halstead/Kass/DeRose 1993) on a sufficiently fine grid
// before interpolating.
const internalRefinementDepth = 3

// Initialize builds the refiner and patch table from cage. It fails
// with InvalidCage if the cage is empty or malformed. After a
// successful call no further initialization is permitted on the same
// instance (kernelerr.AlreadyRefined).
func (e *Evaluator) Initialize(cage *types.ControlCage) error {
	if e.initialized {
		return kernelerr.New(kernelerr.AlreadyRefined, "evaluator already initialized; construct a fresh instance")
	}
	if cage == nil {
		return kernelerr.New(kernelerr.InvalidCage, "nil cage")
	}
	if err := cage.Validate(); err != nil {
		return err
	}
	e.cage = cage
	level0 := buildLevel0(cage)
	e.levels = []*meshLevel{level0}

	depth := e.opts.MaxLevel + internalRefinementDepth
	if depth > 6+internalRefinementDepth {
		depth = 6 + internalRefinementDepth
	}
	cur := level0
	for d := 0; d < depth; d++ {
		next, err := subdivideOnce(cur)
		if err != nil {
			return err
		}
		e.levels = append(e.levels, next)
		cur = next
	}
	e.depth = depth

	e.adj = make([]*quadEdgeAdjacency, len(e.levels))
	for i := 1; i < len(e.levels); i++ {
		e.adj[i] = buildQuadEdgeAdjacency(e.levels[i])
	}

	e.initialized = true
	return nil
}

func buildLevel0(cage *types.ControlCage) *meshLevel {
	n := len(cage.Faces)
	lvl := &meshLevel{
		verts:    append([]types.Point(nil), cage.Verts...),
		faces:    make([][]int, n),
		parent:   make([]int, n),
		region:   make([]paramRegion, n),
		creases:  make(map[types.EdgeKey]float32),
		boundary: make(map[types.EdgeKey]bool),
	}
	for i, f := range cage.Faces {
		lvl.faces[i] = append([]int(nil), f...)
		lvl.parent[i] = i
		lvl.region[i] = paramRegion{0, 0, 1, 1}
	}
	for _, cr := range cage.Creases {
		lvl.creases[cr.Edge] = cr.Sharpness
	}
	lvl.valence = cage.VertexValence()

	edgeFaceCount := make(map[types.EdgeKey]int)
	for _, f := range cage.Faces {
		k := len(f)
		for i := 0; i < k; i++ {
			key := types.NewEdgeKey(f[i], f[(i+1)%k])
			edgeFaceCount[key]++
		}
	}
	for key, cnt := range edgeFaceCount {
		if cnt == 1 {
			lvl.boundary[key] = true
		}
	}
	lvl.indexByParent()
	return lvl
}

// NotInitialized returns the standard error for use-before-init calls.
func notInitialized() error {
	return kernelerr.New(kernelerr.NotInitialized, "evaluator has not been initialized")
}
