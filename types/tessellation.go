package types

// TessellationResult is a display/sampling mesh produced from the exact
// limit surface. It is never the authoritative geometric representation
// (see SPEC_FULL.md §3) — only a byproduct of Evaluator.Tessellate or the
// Laplacian's sampling substrate.
type TessellationResult struct {
	Verts      []Point  // N limit-surface points
	Normals    []Vector // N unit normals, one per vertex
	Tris       [][3]int // M triangles, indices into Verts
	ParentFace []int    // M entries; control-face id owning triangle t

	// TriParamU/TriParamV give each triangle corner's (u,v) within its
	// ParentFace, in the same order as Tris[t]. Populated only for
	// triangles cut from a quad subdivision face (the overwhelming
	// majority); triangles fanned out of a non-quad level-0 face carry
	// the zero value, a degenerate-but-safe seed for callers (e.g.
	// constraint.refineHit) that use these only to seed a Newton
	// refinement onto the exact limit surface, not as an authoritative
	// parameterization.
	TriParamU [][3]float64
	TriParamV [][3]float64
}

// NumVerts returns the vertex count.
func (t *TessellationResult) NumVerts() int { return len(t.Verts) }

// NumTris returns the triangle count.
func (t *TessellationResult) NumTris() int { return len(t.Tris) }

// ParametricPoint addresses a location on the limit surface: a control
// face plus (u,v) in [0,1]^2 local to that face.
type ParametricPoint struct {
	Face int
	U, V float64
}

// ParametricCurve is an ordered sequence of ParametricPoints, optionally
// closed, evaluable at t in [0,1] by piecewise-linear interpolation in
// parameter space.
type ParametricCurve struct {
	Points []ParametricPoint
	Closed bool
}

// segmentCount returns the number of interpolation segments for a
// curve with n points, accounting for closure.
func (c *ParametricCurve) segmentCount() int {
	n := len(c.Points)
	if n == 0 {
		return 0
	}
	if c.Closed {
		return n
	}
	return n - 1
}

// EvalAt returns the ParametricPoint at normalized parameter t in
// [0,1], linearly interpolating (u,v) within whichever face segment t
// falls into. When a segment crosses a face boundary (its two
// endpoints reference different Face ids), EvalAt snaps to the nearer
// endpoint's face rather than blending (u,v) across incompatible
// parameterizations — see SPEC_FULL.md's discussion of §9 boundary
// handling.
func (c *ParametricCurve) EvalAt(t float64) ParametricPoint {
	segs := c.segmentCount()
	if segs == 0 {
		if len(c.Points) == 1 {
			return c.Points[0]
		}
		return ParametricPoint{}
	}
	if t < 0 {
		t = 0
	}
	if t > 1 {
		t = 1
	}
	scaled := t * float64(segs)
	seg := int(scaled)
	if seg >= segs {
		seg = segs - 1
	}
	local := scaled - float64(seg)

	n := len(c.Points)
	a := c.Points[seg%n]
	b := c.Points[(seg+1)%n]

	if a.Face != b.Face {
		if local < 0.5 {
			return a
		}
		return b
	}
	return ParametricPoint{
		Face: a.Face,
		U:    a.U + (b.U-a.U)*local,
		V:    a.V + (b.V-a.V)*local,
	}
}
