package evalsurf

import (
	"github.com/kilnforge/subdmold/kernelerr"
	"github.com/kilnforge/subdmold/types"
)

func (e *Evaluator) checkReady(face int, u, v float64) error {
	if !e.initialized {
		return notInitialized()
	}
	if face < 0 || face >= e.cage.NumFaces() {
		return kernelerr.New(kernelerr.InvalidFace, "face %d out of range [0,%d)", face, e.cage.NumFaces()).WithFace(face)
	}
	if u < 0 || u > 1 || v < 0 || v > 1 {
		return kernelerr.New(kernelerr.ParameterOutOfRange, "(u,v)=(%v,%v) outside [0,1]^2", u, v).WithFace(face).WithParam(u, v)
	}
	return nil
}

// findQuad locates, within level lvl, the quad whose parametric
// footprint contains (u,v) under control face, returning its index and
// region.
func findQuad(lvl *meshLevel, face int, u, v float64) (int, paramRegion, bool) {
	candidates := lvl.byParent[face]
	if len(candidates) == 0 {
		return 0, paramRegion{}, false
	}
	for _, qi := range candidates {
		if lvl.region[qi].contains(u, v) {
			return qi, lvl.region[qi], true
		}
	}
	return candidates[0], lvl.region[candidates[0]], true
}

// locate finds, at the finest precomputed level, the quad whose
// parametric footprint contains (u,v) within the given original
// control face, and returns that quad's four limit-corrected corners
// (in CCW order matching the quad's region: (u0,v0),(u1,v0),(u1,v1),
// (u0,v1)) plus the region itself. This is the residual fallback used
// only when adaptiveEvaluate cannot find a regular stencil anywhere in
// the precomputed hierarchy — in practice a shrinking neighborhood
// around an actual extraordinary vertex.
func (e *Evaluator) locate(face int, u, v float64) ([4]types.Point, paramRegion) {
	lvl := e.levels[len(e.levels)-1]
	qi, r, _ := findQuad(lvl, face, u, v)
	q := lvl.faces[qi]
	var corners [4]types.Point
	for i, vi := range q {
		corners[i] = vertexLimitPoint(lvl, vi)
	}
	return corners, r
}

// bilinear evaluates the bilinear patch spanned by corners (ordered
// (0,0),(1,0),(1,1),(0,1)) at local parameters s,t in [0,1]. Used only
// by the residual fallback: it has identically zero second derivatives
// in its interior, which is exactly why it is not the general-case
// evaluator (see adaptiveEvaluate).
func bilinear(corners [4]types.Point, s, t float64) types.Point {
	bottom := lerpPoint(corners[0], corners[1], s)
	top := lerpPoint(corners[3], corners[2], s)
	return lerpPoint(bottom, top, t)
}

func localST(r paramRegion, u, v float64) (float64, float64) {
	du := r.u1 - r.u0
	dv := r.v1 - r.v0
	s, t := 0.5, 0.5
	if du > 1e-15 {
		s = (u - r.u0) / du
	}
	if dv > 1e-15 {
		t = (v - r.v0) / dv
	}
	if s < 0 {
		s = 0
	}
	if s > 1 {
		s = 1
	}
	if t < 0 {
		t = 0
	}
	if t > 1 {
		t = 1
	}
	return s, t
}

// adaptiveEvaluate walks the precomputed subdivision hierarchy from the
// coarsest quad level upward, looking at each level for a quad whose
// extended 4x4 neighborhood is entirely regular (ordinary valence, no
// crease or boundary edge). The first time it finds one, it evaluates
// the analytic bicubic patch there — exact position and every
// derivative, no differencing — and scales the local-parameter
// derivatives back to the caller's (u,v) via the chain rule for the
// region's width. It returns exact=false only if no precomputed level
// yields a regular stencil, which happens only in the residual
// neighborhood of an actual extraordinary vertex.
func (e *Evaluator) adaptiveEvaluate(face int, u, v float64) (pos types.Point, du, dv, duu, dvv, duv types.Vector, exact bool) {
	for li := 1; li < len(e.levels); li++ {
		lvl := e.levels[li]
		quadID, r, ok := findQuad(lvl, face, u, v)
		if !ok {
			continue
		}
		stencil, ok := gatherRegularStencil(lvl, e.adj[li], quadID)
		if !ok {
			continue
		}
		s, t := localST(r, u, v)
		p, sDu, sDv, sDuu, sDvv, sDuv := evalBicubic(stencil, s, t)

		widthU := r.u1 - r.u0
		widthV := r.v1 - r.v0
		if widthU < 1e-15 || widthV < 1e-15 {
			continue
		}
		invU, invV := 1/widthU, 1/widthV

		pos = p
		du = sDu.Scale(float32(invU))
		dv = sDv.Scale(float32(invV))
		duu = sDuu.Scale(float32(invU * invU))
		dvv = sDvv.Scale(float32(invV * invV))
		duv = sDuv.Scale(float32(invU * invV))
		return pos, du, dv, duu, dvv, duv, true
	}
	return types.Point{}, types.Vector{}, types.Vector{}, types.Vector{}, types.Vector{}, types.Vector{}, false
}

// EvaluateLimitPoint returns the exact limit-surface position at
// (face,u,v): the analytic bicubic patch position wherever a regular
// stencil is found, falling back to a limit-point-corrected bilinear
// interpolation only in the narrow residual region near an
// extraordinary vertex.
func (e *Evaluator) EvaluateLimitPoint(face int, u, v float64) (types.Point, error) {
	if err := e.checkReady(face, u, v); err != nil {
		return types.Point{}, err
	}
	if p, _, _, _, _, _, ok := e.adaptiveEvaluate(face, u, v); ok {
		return p, nil
	}
	corners, r := e.locate(face, u, v)
	s, t := localST(r, u, v)
	return bilinear(corners, s, t), nil
}

// finite-difference step in parameter space, used only by the residual
// fallback path (see sampleClamped).
const fdStep = 1.0 / 1024.0

func (e *Evaluator) sampleClamped(face int, u, v float64) types.Point {
	if u < 0 {
		u = 0
	}
	if u > 1 {
		u = 1
	}
	if v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}
	corners, r := e.locate(face, u, v)
	s, t := localST(r, u, v)
	return bilinear(corners, s, t)
}

// EvaluateLimit returns the position and unit normal at (face,u,v).
func (e *Evaluator) EvaluateLimit(face int, u, v float64) (types.Point, types.Vector, error) {
	p, du, dv, err := e.EvaluateLimitWithDerivatives(face, u, v)
	if err != nil {
		return types.Point{}, types.Vector{}, err
	}
	n := du.Cross(dv).Normalized()
	return p, n, nil
}

// EvaluateLimitWithDerivatives returns the position and first partial
// derivatives (tangent vectors, not necessarily unit or orthogonal) at
// (face,u,v). These are analytic (closed-form bicubic) wherever a
// regular stencil is found; only the residual neighborhood of an
// extraordinary vertex falls back to central finite differencing over
// the bilinear corner interpolation.
func (e *Evaluator) EvaluateLimitWithDerivatives(face int, u, v float64) (types.Point, types.Vector, types.Vector, error) {
	if err := e.checkReady(face, u, v); err != nil {
		return types.Point{}, types.Vector{}, types.Vector{}, err
	}
	if p, du, dv, _, _, _, ok := e.adaptiveEvaluate(face, u, v); ok {
		return p, du, dv, nil
	}

	p := e.sampleClamped(face, u, v)
	pu1 := e.sampleClamped(face, u+fdStep, v)
	pu0 := e.sampleClamped(face, u-fdStep, v)
	pv1 := e.sampleClamped(face, u, v+fdStep)
	pv0 := e.sampleClamped(face, u, v-fdStep)

	du := pu1.Sub(pu0).Scale(1 / (2 * fdStep))
	dv := pv1.Sub(pv0).Scale(1 / (2 * fdStep))
	return p, du, dv, nil
}

// EvaluateLimitWithSecondDerivatives additionally returns the second
// partial derivatives at (face,u,v). These are analytic wherever a
// regular stencil is found; the residual near-extraordinary-vertex
// fallback uses second-order central differencing, same as
// EvaluateLimitWithDerivatives's fallback path.
func (e *Evaluator) EvaluateLimitWithSecondDerivatives(face int, u, v float64) (p types.Point, du, dv, duu, dvv, duv types.Vector, err error) {
	if err = e.checkReady(face, u, v); err != nil {
		return
	}
	if ap, adu, adv, aduu, advv, aduv, ok := e.adaptiveEvaluate(face, u, v); ok {
		return ap, adu, adv, aduu, advv, aduv, nil
	}

	p, du, dv, _ = e.EvaluateLimitWithDerivatives(face, u, v)

	pu1 := e.sampleClamped(face, u+fdStep, v)
	pu0 := e.sampleClamped(face, u-fdStep, v)
	duu = pu1.Sub(p).Add(p.Sub(pu0).Scale(-1)).Scale(1 / (fdStep * fdStep))

	pv1 := e.sampleClamped(face, u, v+fdStep)
	pv0 := e.sampleClamped(face, u, v-fdStep)
	dvv = pv1.Sub(p).Add(p.Sub(pv0).Scale(-1)).Scale(1 / (fdStep * fdStep))

	puv1 := e.sampleClamped(face, u+fdStep, v+fdStep)
	puv2 := e.sampleClamped(face, u-fdStep, v+fdStep)
	puv3 := e.sampleClamped(face, u+fdStep, v-fdStep)
	puv4 := e.sampleClamped(face, u-fdStep, v-fdStep)
	duv = puv1.Sub(puv2).Add(puv3.Sub(puv4).Scale(-1)).Scale(1 / (4 * fdStep * fdStep))
	return
}

// ComputeTangentFrame returns an orthonormalized tangent frame (Tu, Tv,
// N) at (face,u,v): Tu is the normalized ∂u direction, N the unit
// normal, and Tv completes a right-handed orthonormal basis.
func (e *Evaluator) ComputeTangentFrame(face int, u, v float64) (tu, tv, n types.Vector, err error) {
	_, du, dv, derr := e.EvaluateLimitWithDerivatives(face, u, v)
	if derr != nil {
		err = derr
		return
	}
	n = du.Cross(dv).Normalized()
	tu = du.Normalized()
	tv = n.Cross(tu).Normalized()
	return
}
