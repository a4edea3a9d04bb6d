// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package evalsurf

import "github.com/kilnforge/subdmold/types"

// regularStencil is the 4x4 grid of control points whose uniform
// bicubic B-spline patch coincides exactly, in closed form, with the
// Catmull-Clark limit surface over the quad spanned by grid cells
// (1,1)-(2,1)-(2,2)-(1,2), provided every one of the 16 points is an
// ordinary (valence-4) vertex with no incident crease or boundary edge.
// This is the standard regular-patch reduction of Catmull-Clark
// subdivision to uniform cubic B-splines; see evalBicubic.
type regularStencil [4][4]types.Point

// quadEdgeAdjacency maps each undirected edge of a pure-quad mesh level
// to the (at most two) faces touching it. One is built per level the
// first time that level is used for stencil gathering.
type quadEdgeAdjacency struct {
	faces map[types.EdgeKey][2]int
}

func buildQuadEdgeAdjacency(lvl *meshLevel) *quadEdgeAdjacency {
	adj := &quadEdgeAdjacency{faces: make(map[types.EdgeKey][2]int, len(lvl.faces)*2)}
	for fi, f := range lvl.faces {
		k := len(f)
		for i := 0; i < k; i++ {
			key := types.NewEdgeKey(f[i], f[(i+1)%k])
			pair, ok := adj.faces[key]
			if !ok {
				adj.faces[key] = [2]int{fi, -1}
				continue
			}
			if pair[1] == -1 && pair[0] != fi {
				pair[1] = fi
				adj.faces[key] = pair
			}
		}
	}
	return adj
}

// otherFace returns the face sharing edge (a,b) other than exclude, and
// false if that edge is a mesh boundary (only one incident face).
func (adj *quadEdgeAdjacency) otherFace(a, b, exclude int) (int, bool) {
	pair, ok := adj.faces[types.NewEdgeKey(a, b)]
	if !ok {
		return -1, false
	}
	switch exclude {
	case pair[0]:
		if pair[1] < 0 {
			return -1, false
		}
		return pair[1], true
	case pair[1]:
		return pair[0], true
	}
	return -1, false
}

// edgeSmooth reports whether edge (a,b) carries no remaining semi-sharp
// crease weight at this level. A crease edge breaks the plain
// Catmull-Clark smooth-vertex rule even when both endpoints have
// ordinary valence, so the regular-patch equivalence no longer holds
// across it and the caller must fall back to a finer level.
func edgeSmooth(lvl *meshLevel, a, b int) bool {
	return lvl.creases[types.NewEdgeKey(a, b)] == 0
}

// stepAcross returns v's neighbor reached by crossing, from face cur,
// the edge (v,known) into the face on its other side, together with
// that face. It relies on v having exactly two neighbors within any one
// incident quad (true for any vertex, regular or not); the caller is
// responsible for rejecting extraordinary valence where that matters.
func stepAcross(lvl *meshLevel, adj *quadEdgeAdjacency, v, known, cur int) (nbr, face int, ok bool) {
	face, ok = adj.otherFace(v, known, cur)
	if !ok {
		return 0, 0, false
	}
	f := lvl.faces[face]
	k := len(f)
	idx := -1
	for i, vi := range f {
		if vi == v {
			idx = i
			break
		}
	}
	if idx < 0 {
		return 0, 0, false
	}
	next, prev := f[(idx+1)%k], f[(idx-1+k)%k]
	switch known {
	case next:
		return prev, face, true
	case prev:
		return next, face, true
	}
	return 0, 0, false
}

// cornerGrid places quadID's own four CCW corners at the inner 2x2 of
// the 4x4 stencil grid: f[0]->(1,1), f[1]->(2,1), f[2]->(2,2), f[3]->(1,2).
var cornerGrid = [4][2]int{{1, 1}, {2, 1}, {2, 2}, {1, 2}}

// gatherRegularStencil builds the 16-point stencil around quadID by
// walking mesh adjacency outward from its four corners. It returns
// ok=false the instant it finds a mesh boundary or an extraordinary
// (valence != 4) vertex anywhere in the footprint, so the caller can
// fall back to a finer subdivision level rather than silently treat an
// irregular neighborhood as regular.
func gatherRegularStencil(lvl *meshLevel, adj *quadEdgeAdjacency, quadID int) (regularStencil, bool) {
	f := lvl.faces[quadID]
	if len(f) != 4 {
		return regularStencil{}, false
	}

	var grid [4][4]int
	for i := range grid {
		for j := range grid[i] {
			grid[i][j] = -1
		}
	}
	for i, v := range f {
		if lvl.valence[v] != 4 {
			return regularStencil{}, false
		}
		grid[cornerGrid[i][0]][cornerGrid[i][1]] = v
	}

	type outHop struct {
		v, face, gi, gj int
	}
	var hops [4][2]outHop
	for i := 0; i < 4; i++ {
		corner := f[i]
		fwd, back := f[(i+1)%4], f[(i+3)%4]
		ci, cj := cornerGrid[i][0], cornerGrid[i][1]
		fi, fj := cornerGrid[(i+1)%4][0], cornerGrid[(i+1)%4][1]
		bi, bj := cornerGrid[(i+3)%4][0], cornerGrid[(i+3)%4][1]

		if !edgeSmooth(lvl, corner, fwd) || !edgeSmooth(lvl, corner, back) {
			return regularStencil{}, false
		}

		vL, faceL, ok := stepAcross(lvl, adj, corner, fwd, quadID)
		if !ok || lvl.valence[vL] != 4 || !edgeSmooth(lvl, corner, vL) {
			return regularStencil{}, false
		}
		giL, gjL := 2*ci-bi, 2*cj-bj
		grid[giL][gjL] = vL
		hops[i][0] = outHop{vL, faceL, giL, gjL}

		vR, faceR, ok := stepAcross(lvl, adj, corner, back, quadID)
		if !ok || lvl.valence[vR] != 4 || !edgeSmooth(lvl, corner, vR) {
			return regularStencil{}, false
		}
		giR, gjR := 2*ci-fi, 2*cj-fj
		grid[giR][gjR] = vR
		hops[i][1] = outHop{vR, faceR, giR, gjR}
	}

	// Far (diagonal) corners: one more hop outward from each "L" vertex,
	// landing at the parallelogram completion L+R-corner.
	for i := 0; i < 4; i++ {
		corner := f[i]
		L := hops[i][0]
		far, _, ok := stepAcross(lvl, adj, L.v, corner, L.face)
		if !ok || lvl.valence[far] != 4 || !edgeSmooth(lvl, L.v, far) {
			return regularStencil{}, false
		}
		gi := L.gi + hops[i][1].gi - cornerGrid[i][0]
		gj := L.gj + hops[i][1].gj - cornerGrid[i][1]
		grid[gi][gj] = far
	}

	var s regularStencil
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			if grid[i][j] < 0 {
				return regularStencil{}, false
			}
			s[i][j] = lvl.verts[grid[i][j]]
		}
	}
	return s, true
}

// cubicBasis returns the four uniform cubic B-spline blending weights
// at parameter t in [0,1], together with their first and second
// derivatives.
func cubicBasis(t float64) (b, d1, d2 [4]float64) {
	mt := 1 - t
	b[0] = mt * mt * mt / 6
	b[1] = (3*t*t*t - 6*t*t + 4) / 6
	b[2] = (-3*t*t*t + 3*t*t + 3*t + 1) / 6
	b[3] = t * t * t / 6
	d1[0] = -mt * mt / 2
	d1[1] = (9*t*t - 12*t) / 6
	d1[2] = (-9*t*t + 6*t + 3) / 6
	d1[3] = t * t / 2
	d2[0] = mt
	d2[1] = 3*t - 2
	d2[2] = -3*t + 1
	d2[3] = t
	return
}

// evalBicubic evaluates the tensor-product uniform bicubic B-spline
// patch defined by s at local parameters (u,v) in [0,1]^2, returning
// the position and its first and second partial derivatives, all in
// closed form (no differencing). This is exact for any quad whose
// extended 4x4 stencil is entirely regular.
func evalBicubic(s regularStencil, u, v float64) (pos types.Point, du, dv, duu, dvv, duv types.Vector) {
	bu, bu1, bu2 := cubicBasis(u)
	bv, bv1, bv2 := cubicBasis(v)

	var px, py, pz float64
	var dux, duy, duz float64
	var dvx, dvy, dvz float64
	var auux, auuy, auuz float64
	var avvx, avvy, avvz float64
	var auvx, auvy, auvz float64

	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			p := s[i][j]
			x, y, z := float64(p.X), float64(p.Y), float64(p.Z)

			w := bu[i] * bv[j]
			px += w * x
			py += w * y
			pz += w * z

			wu := bu1[i] * bv[j]
			dux += wu * x
			duy += wu * y
			duz += wu * z

			wv := bu[i] * bv1[j]
			dvx += wv * x
			dvy += wv * y
			dvz += wv * z

			wuu := bu2[i] * bv[j]
			auux += wuu * x
			auuy += wuu * y
			auuz += wuu * z

			wvv := bu[i] * bv2[j]
			avvx += wvv * x
			avvy += wvv * y
			avvz += wvv * z

			wuv := bu1[i] * bv1[j]
			auvx += wuv * x
			auvy += wuv * y
			auvz += wuv * z
		}
	}

	pos = types.Point{X: float32(px), Y: float32(py), Z: float32(pz)}
	du = types.Vector{X: float32(dux), Y: float32(duy), Z: float32(duz)}
	dv = types.Vector{X: float32(dvx), Y: float32(dvy), Z: float32(dvz)}
	duu = types.Vector{X: float32(auux), Y: float32(auuy), Z: float32(auuz)}
	dvv = types.Vector{X: float32(avvx), Y: float32(avvy), Z: float32(avvz)}
	duv = types.Vector{X: float32(auvx), Y: float32(auvy), Z: float32(auvz)}
	return
}
