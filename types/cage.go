package types

import (
	"github.com/kilnforge/subdmold/kernelerr"
)

// EdgeKey is the unordered pair of vertex indices identifying a control
// edge; (i,j) and (j,i) hash to the same key.
type EdgeKey struct {
	A, B int
}

// NewEdgeKey builds a canonical (sorted) EdgeKey for vertices i and j.
func NewEdgeKey(i, j int) EdgeKey {
	if i > j {
		i, j = j, i
	}
	return EdgeKey{i, j}
}

// Crease is a sharpened control edge; Sharpness is clamped to [0,10] by
// the Bridge Ingest layer before a ControlCage is constructed.
type Crease struct {
	Edge      EdgeKey
	Sharpness float32
}

// ControlCage is the immutable polygonal input mesh whose Catmull-Clark
// limit surface is the geometry of interest. It is built once by Bridge
// Ingest per analysis session and never mutated afterward.
type ControlCage struct {
	Verts   []Point
	Faces   [][]int // each face: 3 or 4 ordered vertex indices
	Creases []Crease
}

// NumVerts returns the vertex count.
func (c *ControlCage) NumVerts() int { return len(c.Verts) }

// NumFaces returns the face count.
func (c *ControlCage) NumFaces() int { return len(c.Faces) }

// Validate checks the cage invariants from SPEC_FULL.md §3: in-range
// face indices, 3 or 4 vertices per face, no duplicate vertex in a face.
func (c *ControlCage) Validate() error {
	if len(c.Verts) == 0 {
		return kernelerr.New(kernelerr.InvalidCage, "cage has no vertices")
	}
	if len(c.Faces) == 0 {
		return kernelerr.New(kernelerr.InvalidCage, "cage has no faces")
	}
	n := len(c.Verts)
	for fi, f := range c.Faces {
		if len(f) < 3 || len(f) > 4 {
			return kernelerr.New(kernelerr.InvalidCage, "face %d has %d vertices, want 3 or 4", fi, len(f)).WithFace(fi)
		}
		seen := make(map[int]bool, len(f))
		for _, v := range f {
			if v < 0 || v >= n {
				return kernelerr.New(kernelerr.InvalidCage, "face %d references out-of-range vertex %d", fi, v).WithFace(fi)
			}
			if seen[v] {
				return kernelerr.New(kernelerr.InvalidCage, "face %d has duplicate vertex %d", fi, v).WithFace(fi)
			}
			seen[v] = true
		}
	}
	for _, cr := range c.Creases {
		if cr.Sharpness < 0 || cr.Sharpness > 10 {
			return kernelerr.New(kernelerr.InvalidCage, "crease sharpness %v out of [0,10]", cr.Sharpness)
		}
		if cr.Edge.A < 0 || cr.Edge.A >= n || cr.Edge.B < 0 || cr.Edge.B >= n {
			return kernelerr.New(kernelerr.InvalidCage, "crease references out-of-range vertex")
		}
	}
	return nil
}

// FaceAdjacency returns, for each face index, the set of other face
// indices sharing a control edge with it. Built lazily by callers that
// need adjacency (Differential Lens clustering, Region Operations); the
// cage itself does not cache this since it is cheap to derive and the
// cage is immutable.
func (c *ControlCage) FaceAdjacency() map[int][]int {
	type edgeOwner struct {
		face int
	}
	edgeFaces := make(map[EdgeKey][]int)
	for fi, f := range c.Faces {
		n := len(f)
		for i := 0; i < n; i++ {
			a, b := f[i], f[(i+1)%n]
			k := NewEdgeKey(a, b)
			edgeFaces[k] = append(edgeFaces[k], fi)
		}
	}
	adj := make(map[int][]int, len(c.Faces))
	for _, faces := range edgeFaces {
		if len(faces) < 2 {
			continue
		}
		for i := range faces {
			for j := range faces {
				if i == j {
					continue
				}
				adj[faces[i]] = append(adj[faces[i]], faces[j])
			}
		}
	}
	return adj
}

// VertexValence returns the number of distinct faces incident to each
// vertex, used by the Evaluator to tell ordinary (valence 4) vertices
// from extraordinary ones when it gathers regular bicubic stencils.
func (c *ControlCage) VertexValence() []int {
	valence := make([]int, len(c.Verts))
	seen := make([]map[int]bool, len(c.Verts))
	for i := range seen {
		seen[i] = make(map[int]bool)
	}
	for fi, f := range c.Faces {
		for _, v := range f {
			if !seen[v][fi] {
				seen[v][fi] = true
				valence[v]++
			}
		}
	}
	return valence
}
