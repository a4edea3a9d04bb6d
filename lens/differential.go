package lens

import (
	"fmt"
	"math"

	"github.com/kilnforge/subdmold/curvature"
	"github.com/kilnforge/subdmold/evalsurf"
	"github.com/kilnforge/subdmold/types"
)

// faceClass is one of the four curvature-sign buckets (SPEC_FULL.md
// §4.3).
type faceClass int

const (
	classFlat faceClass = iota
	classConvex
	classConcave
	classSaddle
)

func (c faceClass) String() string {
	switch c {
	case classConvex:
		return "convex"
	case classConcave:
		return "concave"
	case classSaddle:
		return "saddle"
	default:
		return "flat"
	}
}

// Differential clusters control faces into regions of coherent
// curvature sign.
type Differential struct {
	opts types.DifferentialLensOptions
}

// NewDifferential binds a Differential lens to the given options.
func NewDifferential(opts types.DifferentialLensOptions) *Differential {
	return &Differential{opts: opts}
}

// faceSample holds the per-face reduction needed by clustering and the
// unity_strength formula.
type faceSample struct {
	class   faceClass
	meanH   float64
	samples []types.CurvatureResult
}

// Discover samples curvature on an s×s grid per control face,
// classifies and clusters them, and returns one ParametricRegion per
// surviving connected component (SPEC_FULL.md §4.3).
func (d *Differential) Discover(ev *evalsurf.Evaluator, cage *types.ControlCage, idGen func() string) ([]types.ParametricRegion, error) {
	analyzer := curvature.New(ev)
	s := d.opts.GridSize
	if s < 2 {
		s = 2
	}

	nFaces := cage.NumFaces()
	perFace := make([]faceSample, nFaces)
	for f := 0; f < nFaces; f++ {
		counts := make(map[faceClass]int)
		var sumH, sumAbsH float64
		var hs []float64
		var samples []types.CurvatureResult
		for i := 0; i < s; i++ {
			for j := 0; j < s; j++ {
				u := (float64(i) + 0.5) / float64(s)
				v := (float64(j) + 0.5) / float64(s)
				res, err := analyzer.Analyze(f, u, v)
				if err != nil {
					// degenerate sample point (pinch/cusp): skip it,
					// the remaining grid samples still vote.
					continue
				}
				samples = append(samples, res)
				cls := classify(res.H, res.K, d.opts.TauH, d.opts.TauK)
				counts[cls]++
				sumH += res.H
				sumAbsH += math.Abs(res.H)
				hs = append(hs, res.H)
			}
		}
		majority := majorityClass(counts)
		meanH := 0.0
		if len(hs) > 0 {
			meanH = sumH / float64(len(hs))
		}
		perFace[f] = faceSample{class: majority, meanH: meanH, samples: samples}
	}

	adjacency := cage.FaceAdjacency()
	components := clusterByClass(nFaces, perFace, adjacency)
	components = mergeSmall(components, adjacency, d.opts.MinRegionSize)

	regions := make([]types.ParametricRegion, 0, len(components))
	for _, comp := range components {
		if len(comp) == 0 {
			continue
		}
		faces := make(map[int]bool, len(comp))
		var hs []float64
		for _, f := range comp {
			faces[f] = true
			hs = append(hs, perFace[f].meanH)
		}
		cls := dominantComponentClass(comp, perFace)
		strength := unityStrength(hs)
		regions = append(regions, types.ParametricRegion{
			ID:             idGen(),
			Faces:          faces,
			UnityPrinciple: fmt.Sprintf("differential:%s", cls),
			UnityStrength:  strength,
		})
	}
	return regions, nil
}

func classify(H, K, tauH, tauK float64) faceClass {
	if math.Abs(H) <= tauH && math.Abs(K) <= tauK {
		return classFlat
	}
	if K < -tauK {
		return classSaddle
	}
	if H > tauH {
		return classConvex
	}
	if H < -tauH {
		return classConcave
	}
	return classFlat
}

// majorityClass picks the most frequent class, breaking ties toward
// flat (SPEC_FULL.md §4.3: "ties broken toward 'flat'"). A tie between
// two non-flat classes is also a tie overall, so it resolves to flat
// as well, not to whichever class happened to be checked first.
func majorityClass(counts map[faceClass]int) faceClass {
	best := classFlat
	bestCount := counts[classFlat]
	tied := false
	for _, cls := range []faceClass{classConvex, classConcave, classSaddle} {
		switch {
		case counts[cls] > bestCount:
			best = cls
			bestCount = counts[cls]
			tied = false
		case counts[cls] == bestCount && cls != classFlat:
			tied = true
		}
	}
	if tied {
		return classFlat
	}
	return best
}

// clusterByClass performs a union-find over faces sharing a control
// edge and the same majority class.
func clusterByClass(nFaces int, perFace []faceSample, adjacency map[int][]int) [][]int {
	parent := make([]int, nFaces)
	for i := range parent {
		parent[i] = i
	}
	var find func(int) int
	find = func(x int) int {
		for parent[x] != x {
			parent[x] = parent[parent[x]]
			x = parent[x]
		}
		return x
	}
	union := func(a, b int) {
		ra, rb := find(a), find(b)
		if ra != rb {
			parent[ra] = rb
		}
	}
	for f, neighbors := range adjacency {
		for _, g := range neighbors {
			if perFace[f].class == perFace[g].class {
				union(f, g)
			}
		}
	}
	groups := make(map[int][]int)
	for f := 0; f < nFaces; f++ {
		r := find(f)
		groups[r] = append(groups[r], f)
	}
	out := make([][]int, 0, len(groups))
	for _, g := range groups {
		out = append(out, g)
	}
	return out
}

// mergeSmall folds components smaller than minSize into whichever
// adjacent component is largest (SPEC_FULL.md §4.3 step 4).
func mergeSmall(components [][]int, adjacency map[int][]int, minSize int) [][]int {
	if minSize <= 1 {
		return components
	}
	faceToComp := make(map[int]int, 0)
	for ci, comp := range components {
		for _, f := range comp {
			faceToComp[f] = ci
		}
	}
	merged := make([]bool, len(components))
	result := make([][]int, len(components))
	copy(result, components)

	for ci, comp := range components {
		if len(comp) >= minSize || merged[ci] {
			continue
		}
		// find the largest adjacent component (by current size).
		bestCi, bestSize := -1, -1
		for _, f := range comp {
			for _, g := range adjacency[f] {
				oci := faceToComp[g]
				if oci == ci {
					continue
				}
				if len(result[oci]) > bestSize {
					bestCi, bestSize = oci, len(result[oci])
				}
			}
		}
		if bestCi < 0 {
			continue // isolated small component; nothing to merge into
		}
		result[bestCi] = append(result[bestCi], comp...)
		result[ci] = nil
		merged[ci] = true
		for _, f := range comp {
			faceToComp[f] = bestCi
		}
	}

	out := make([][]int, 0, len(result))
	for _, comp := range result {
		if len(comp) > 0 {
			out = append(out, comp)
		}
	}
	return out
}

func dominantComponentClass(comp []int, perFace []faceSample) faceClass {
	counts := make(map[faceClass]int)
	for _, f := range comp {
		counts[perFace[f].class]++
	}
	return majorityClass(counts)
}

// unityStrength implements `1 - sigma(H_face) / (|H_bar_face| + eps)`
// clamped to [0,1] (SPEC_FULL.md §4.3 step 5).
func unityStrength(hs []float64) float64 {
	if len(hs) == 0 {
		return 0
	}
	mean := 0.0
	for _, h := range hs {
		mean += h
	}
	mean /= float64(len(hs))
	var variance float64
	for _, h := range hs {
		d := h - mean
		variance += d * d
	}
	variance /= float64(len(hs))
	sigma := math.Sqrt(variance)
	const eps = 1e-9
	strength := 1 - sigma/(math.Abs(mean)+eps)
	if strength < 0 {
		strength = 0
	}
	if strength > 1 {
		strength = 1
	}
	return strength
}

// RidgeValleySet extracts the top/bottom percentile of |kappa1| sample
// values across a region's faces, returned as ParametricPoints suitable
// for boundary-curve construction (SPEC_FULL.md §4.3 step 6, optional).
func (d *Differential) RidgeValleySet(ev *evalsurf.Evaluator, faces []int) (ridge, valley []types.ParametricPoint, err error) {
	analyzer := curvature.New(ev)
	s := d.opts.GridSize
	if s < 2 {
		s = 2
	}
	type sample struct {
		pt     types.ParametricPoint
		absK1  float64
	}
	var all []sample
	for _, f := range faces {
		for i := 0; i < s; i++ {
			for j := 0; j < s; j++ {
				u := (float64(i) + 0.5) / float64(s)
				v := (float64(j) + 0.5) / float64(s)
				res, aerr := analyzer.Analyze(f, u, v)
				if aerr != nil {
					continue
				}
				all = append(all, sample{pt: types.ParametricPoint{Face: f, U: u, V: v}, absK1: math.Abs(res.Kappa1)})
			}
		}
	}
	if len(all) == 0 {
		return nil, nil, nil
	}
	vals := make([]float64, len(all))
	for i, sm := range all {
		vals[i] = sm.absK1
	}
	ridgeThresh := percentile(vals, d.opts.RidgePercentile)
	valleyThresh := percentile(vals, d.opts.ValleyPercentile)
	for _, sm := range all {
		if sm.absK1 >= ridgeThresh {
			ridge = append(ridge, sm.pt)
		}
		if sm.absK1 <= valleyThresh {
			valley = append(valley, sm.pt)
		}
	}
	return ridge, valley, nil
}

// percentile returns the value at the given percentile (0..1) of vals
// via a simple sort-and-index (grid sample counts are small: tens to
// low hundreds per region).
func percentile(vals []float64, p float64) float64 {
	sorted := append([]float64(nil), vals...)
	for i := 1; i < len(sorted); i++ {
		v := sorted[i]
		j := i - 1
		for j >= 0 && sorted[j] > v {
			sorted[j+1] = sorted[j]
			j--
		}
		sorted[j+1] = v
	}
	idx := int(p * float64(len(sorted)-1))
	if idx < 0 {
		idx = 0
	}
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}
