package constraint

import (
	"math"

	"github.com/cpmech/gosl/gm"
	"github.com/kilnforge/subdmold/types"
)

// envelope is the tessellated surface of a region's faces, restricted
// to the triangles whose parent face lies in the region, used as the
// geometric stand-in for "the surface" in the undercut ray test
// (SPEC_FULL.md §9: "an implementation may use the tessellated limit
// surface ... provided the density is high enough"). No library in the
// retrieved corpus offers a ray/triangle intersection primitive, so
// this is a direct, standard Moller-Trumbore implementation — the one
// place this package relies on the standard library alone for the
// geometric core (see DESIGN.md). Candidate triangles are narrowed with
// gosl/gm.Bins, the same spatial-binning structure the teacher's own
// `out` package uses for node/integration-point proximity queries.
type envelope struct {
	verts      []types.Point
	tris       [][3]int
	parentFace []int
	paramU     [][3]float64
	paramV     [][3]float64
	centroid   []types.Point
	min        types.Point
	max        types.Point
	maxSpan    float64

	bins      gm.Bins
	binsBuilt bool
}

func buildEnvelope(tess *types.TessellationResult, region types.ParametricRegion) *envelope {
	e := &envelope{verts: tess.Verts}
	first := true
	for ti, tri := range tess.Tris {
		pf := tess.ParentFace[ti]
		if !region.Faces[pf] {
			continue
		}
		e.tris = append(e.tris, tri)
		e.parentFace = append(e.parentFace, pf)
		e.paramU = append(e.paramU, tess.TriParamU[ti])
		e.paramV = append(e.paramV, tess.TriParamV[ti])

		a, b, c := tess.Verts[tri[0]], tess.Verts[tri[1]], tess.Verts[tri[2]]
		e.centroid = append(e.centroid, scaleTriCentroid(a, b, c))
		e.maxSpan = math.Max(e.maxSpan, triSpan(a, b, c))

		for _, vi := range tri {
			p := tess.Verts[vi]
			if first {
				e.min, e.max = p, p
				first = false
				continue
			}
			e.min = minPoint(e.min, p)
			e.max = maxPoint(e.max, p)
		}
	}
	e.buildBins()
	return e
}

func scaleTriCentroid(a, b, c types.Point) types.Point {
	return types.Point{
		X: (a.X + b.X + c.X) / 3,
		Y: (a.Y + b.Y + c.Y) / 3,
		Z: (a.Z + b.Z + c.Z) / 3,
	}
}

func triSpan(a, b, c types.Point) float64 {
	d := func(p, q types.Point) float64 { return float64(p.Sub(q).Length()) }
	ab, bc, ca := d(a, b), d(b, c), d(c, a)
	span := ab
	if bc > span {
		span = bc
	}
	if ca > span {
		span = ca
	}
	return span
}

// buildBins bins every candidate triangle's centroid into a uniform 3D
// grid over the envelope's bounding box, so castRay can narrow its
// search with gm.Bins.FindAlongLine instead of scanning every triangle.
func (e *envelope) buildBins() {
	if len(e.tris) == 0 {
		return
	}
	pad := e.maxSpan + 1e-6
	xi := []float64{float64(e.min.X) - pad, float64(e.min.Y) - pad, float64(e.min.Z) - pad}
	xf := []float64{float64(e.max.X) + pad, float64(e.max.Y) + pad, float64(e.max.Z) + pad}
	const ndiv = 20
	if err := e.bins.Init(xi, xf, ndiv); err != nil {
		return
	}
	for i, c := range e.centroid {
		if err := e.bins.Append([]float64{float64(c.X), float64(c.Y), float64(c.Z)}, i); err != nil {
			return
		}
	}
	e.binsBuilt = true
}

func minPoint(a, b types.Point) types.Point {
	return types.Point{X: minf(a.X, b.X), Y: minf(a.Y, b.Y), Z: minf(a.Z, b.Z)}
}
func maxPoint(a, b types.Point) types.Point {
	return types.Point{X: maxf(a.X, b.X), Y: maxf(a.Y, b.Y), Z: maxf(a.Z, b.Z)}
}
func minf(a, b float32) float32 {
	if a < b {
		return a
	}
	return b
}
func maxf(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}

// extentAlong returns the envelope's bounding-box extent projected
// onto unit direction d.
func (e *envelope) extentAlong(d types.Vector) float64 {
	corners := [8]types.Point{
		{X: e.min.X, Y: e.min.Y, Z: e.min.Z},
		{X: e.max.X, Y: e.min.Y, Z: e.min.Z},
		{X: e.min.X, Y: e.max.Y, Z: e.min.Z},
		{X: e.min.X, Y: e.min.Y, Z: e.max.Z},
		{X: e.max.X, Y: e.max.Y, Z: e.min.Z},
		{X: e.max.X, Y: e.min.Y, Z: e.max.Z},
		{X: e.min.X, Y: e.max.Y, Z: e.max.Z},
		{X: e.max.X, Y: e.max.Y, Z: e.max.Z},
	}
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, c := range corners {
		proj := float64(c.X)*float64(d.X) + float64(c.Y)*float64(d.Y) + float64(c.Z)*float64(d.Z)
		if proj < lo {
			lo = proj
		}
		if proj > hi {
			hi = proj
		}
	}
	return hi - lo
}

// rayHit is a tessellation-based ray/envelope intersection, carrying
// enough to seed a Newton refinement onto the exact limit surface
// (constraint.refineHit): the parent control face and an approximate
// (u,v) from the hit triangle's barycentric corner weights.
type rayHit struct {
	point types.Point
	t     float64
	face  int
	u, v  float64
}

// castRay fires a ray from origin along d, excluding near-zero-t hits
// (the face the ray originates from), and returns the nearest hit if
// the ray re-enters the envelope. Candidate triangles are narrowed via
// gm.Bins.FindAlongLine when the bin index was built; the exact
// Moller-Trumbore test still runs on every candidate, so the bins are
// purely an accelerator, never a source of approximation in the
// reported hit itself. The query tolerance is padded by the envelope's
// own largest triangle span, so a triangle whose centroid lies outside
// the immediate line neighborhood but whose extent still reaches the
// ray is not dropped from consideration.
func (e *envelope) castRay(origin types.Point, d types.Vector, skipFace int) (rayHit, bool) {
	const epsSelf = 1e-4 // skip near-zero-t hits: the face the ray originates from
	best := math.Inf(1)
	var bestHit rayHit
	found := false

	check := func(i int) {
		tri := e.tris[i]
		a, b, c := e.verts[tri[0]], e.verts[tri[1]], e.verts[tri[2]]
		t, hit, wa, wb, wc, ok := rayTriangle(origin, d, a, b, c)
		if !ok || t <= epsSelf {
			return
		}
		if t < best {
			best = t
			found = true
			bestHit = rayHit{point: hit, t: t, face: e.parentFace[i]}
			if pu, pv := e.paramU[i], e.paramV[i]; pu != ([3]float64{}) || pv != ([3]float64{}) {
				bestHit.u = wa*pu[0] + wb*pu[1] + wc*pu[2]
				bestHit.v = wa*pv[0] + wb*pv[1] + wc*pv[2]
			}
		}
	}

	if e.binsBuilt {
		far := origin.Add(d.Scale(float32(e.extentAlong(d) + e.maxSpan + 1)))
		tol := e.maxSpan*2 + 1e-6
		ids := e.bins.FindAlongLine(
			[]float64{float64(origin.X), float64(origin.Y), float64(origin.Z)},
			[]float64{float64(far.X), float64(far.Y), float64(far.Z)},
			tol,
		)
		for _, i := range ids {
			check(i)
		}
	} else {
		for i := range e.tris {
			check(i)
		}
	}

	if !found {
		return rayHit{}, false
	}
	return bestHit, true
}

// rayTriangle implements the Moller-Trumbore ray/triangle intersection
// test, returning the ray parameter t, the hit point, the barycentric
// weights of a, b, c at the hit, and whether an intersection within the
// triangle (and at t > 0) was found.
func rayTriangle(origin types.Point, dir types.Vector, a, b, c types.Point) (t float64, hit types.Point, wa, wb, wc float64, ok bool) {
	const eps = 1e-9
	e1 := b.Sub(a)
	e2 := c.Sub(a)
	h := dir.Cross(e2)
	det := float64(e1.Dot(h))
	if math.Abs(det) < eps {
		return
	}
	invDet := 1 / det
	s := origin.Sub(a)
	u := float64(s.Dot(h)) * invDet
	if u < 0 || u > 1 {
		return
	}
	q := s.Cross(e1)
	v := float64(dir.Dot(q)) * invDet
	if v < 0 || u+v > 1 {
		return
	}
	tt := float64(e2.Dot(q)) * invDet
	if tt <= eps {
		return
	}
	hit = origin.Add(dir.Scale(float32(tt)))
	return tt, hit, 1 - u - v, u, v, true
}
