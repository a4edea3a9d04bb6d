package evalsurf

import "github.com/kilnforge/subdmold/types"

// oneRing scans a mesh level for the faces and edge-neighbor vertices
// incident to v. Used only to drive the closed-form limit-point
// correction, so a linear scan per call is acceptable (bounded vertex
// count at the finest evaluated level, called O(1) times per query).
func oneRing(lvl *meshLevel, v int) (faces []int, edgeNbrs []int) {
	seen := make(map[int]bool)
	for fi, f := range lvl.faces {
		k := len(f)
		for i, vv := range f {
			if vv != v {
				continue
			}
			faces = append(faces, fi)
			prev := f[(i-1+k)%k]
			next := f[(i+1)%k]
			if !seen[prev] {
				seen[prev] = true
				edgeNbrs = append(edgeNbrs, prev)
			}
			if !seen[next] {
				seen[next] = true
				edgeNbrs = append(edgeNbrs, next)
			}
			break
		}
	}
	return
}

// vertexLimitPoint approximates the exact Catmull-Clark limit position
// of vertex v using the closed-form interior-vertex limit formula
// (Halstead, Kass & DeRose 1993):
//
//	P = (n^2*S + 4*sum(E_i) + sum(F_i)) / (n*(n+5))
//
// applied at the finest precomputed subdivision level, so the residual
// error between this snap and the true limit point shrinks
// geometrically with the evaluator's internal refinement depth.
// Boundary vertices use the cubic B-spline boundary-curve rule instead;
// boundary corners stay fixed.
func vertexLimitPoint(lvl *meshLevel, v int) types.Point {
	faces, edgeNbrs := oneRing(lvl, v)
	n := len(edgeNbrs)
	if n == 0 || len(faces) == 0 {
		return lvl.verts[v]
	}
	S := lvl.verts[v]

	isBoundaryVertex := len(faces) < n
	if isBoundaryVertex {
		// boundary vertices with exactly two boundary-chain neighbors
		// a, b lie on a cubic B-spline boundary curve (the subdivision
		// vertex-point crease rule), whose limit position is
		// (a + 4S + b)/6; any other boundary vertex is a fixed corner.
		var chain []types.Point
		for _, e := range edgeNbrs {
			if lvl.boundary[types.NewEdgeKey(v, e)] {
				chain = append(chain, lvl.verts[e])
			}
		}
		if len(chain) == 2 {
			return scalePoint(addPoints(addPoints(chain[0], scalePoint(S, 4)), chain[1]), 1.0/6)
		}
		return S
	}

	var sumE types.Point
	for _, e := range edgeNbrs {
		sumE = addPoints(sumE, lvl.verts[e])
	}
	var sumF types.Point
	for _, fi := range faces {
		sumF = addPoints(sumF, centroid(lvl.verts, lvl.faces[fi]))
	}
	fn := float64(n)
	num := addPoints(addPoints(scalePoint(S, fn*fn), scalePoint(sumE, 4)), sumF)
	return scalePoint(num, 1.0/(fn*(fn+5)))
}
