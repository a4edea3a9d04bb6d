package types

// ParametricRegion is a subset of control faces treated as a unit, whose
// geometry is defined implicitly by the limit surface over those faces.
type ParametricRegion struct {
	ID              string
	Faces           map[int]bool
	Boundary        []ParametricCurve
	UnityPrinciple  string // e.g. "differential:convex", "spectral:mode_3"
	UnityStrength   float64
	Pinned          bool
	Metadata        map[string]interface{}
}

// FaceList returns the region's faces as a sorted slice for deterministic
// iteration (map iteration order is not stable).
func (r *ParametricRegion) FaceList() []int {
	out := make([]int, 0, len(r.Faces))
	for f := range r.Faces {
		out = append(out, f)
	}
	// simple insertion sort: region face counts are small (tens to low
	// thousands), and this keeps the package free of a sort import for
	// what is otherwise a one-line operation.
	for i := 1; i < len(out); i++ {
		v := out[i]
		j := i - 1
		for j >= 0 && out[j] > v {
			out[j+1] = out[j]
			j--
		}
		out[j+1] = v
	}
	return out
}

// CloneRegion returns a deep copy of r, used by Region Operations so
// merge/split never mutate their inputs (SPEC_FULL.md §4.6).
func CloneRegion(r ParametricRegion) ParametricRegion {
	faces := make(map[int]bool, len(r.Faces))
	for f, v := range r.Faces {
		faces[f] = v
	}
	boundary := make([]ParametricCurve, len(r.Boundary))
	for i, b := range r.Boundary {
		pts := make([]ParametricPoint, len(b.Points))
		copy(pts, b.Points)
		boundary[i] = ParametricCurve{Points: pts, Closed: b.Closed}
	}
	meta := make(map[string]interface{}, len(r.Metadata))
	for k, v := range r.Metadata {
		meta[k] = v
	}
	return ParametricRegion{
		ID:             r.ID,
		Faces:          faces,
		Boundary:       boundary,
		UnityPrinciple: r.UnityPrinciple,
		UnityStrength:  r.UnityStrength,
		Pinned:         r.Pinned,
		Metadata:       meta,
	}
}
