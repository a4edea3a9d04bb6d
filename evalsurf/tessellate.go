package evalsurf

import (
	"runtime"
	"sync"

	"github.com/kilnforge/subdmold/kernelerr"
	"github.com/kilnforge/subdmold/types"
)

func workerCount(n int) int {
	w := runtime.GOMAXPROCS(0)
	if w > n {
		w = n
	}
	if w < 1 {
		w = 1
	}
	return w
}

// Tessellate returns a TessellationResult for visualization or as the
// Laplacian's sampling substrate. level must lie in [0,6]
// (ParameterOutOfRange otherwise) and is then clamped to the
// evaluator's precomputed depth (opts.MaxLevel + internalRefinementDepth
// levels). adaptive is ignored: the result is always the uniform mesh
// of that level.
func (e *Evaluator) Tessellate(level int, adaptive bool) (*types.TessellationResult, error) {
	if !e.initialized {
		return nil, notInitialized()
	}
	if level < 0 || level > 6 {
		return nil, kernelerr.New(kernelerr.ParameterOutOfRange, "tessellation level %d outside [0,6]", level)
	}
	idx := level
	if idx >= len(e.levels) {
		idx = len(e.levels) - 1
	}
	lvl := e.levels[idx]

	result := &types.TessellationResult{
		Verts:      make([]types.Point, len(lvl.verts)),
		Normals:    make([]types.Vector, len(lvl.verts)),
		Tris:       make([][3]int, 0, 2*len(lvl.faces)),
		ParentFace: make([]int, 0, 2*len(lvl.faces)),
	}
	accum := make([]types.Vector, len(lvl.verts))
	for vi := range lvl.verts {
		if idx == 0 {
			result.Verts[vi] = lvl.verts[vi]
		} else {
			result.Verts[vi] = vertexLimitPoint(lvl, vi)
		}
	}
	for fi, f := range lvl.faces {
		if len(f) == 4 {
			r := lvl.region[fi]
			// corner i's local (u,v) follows the same convention used
			// throughout evalsurf (f[0..3] -> (u0,v0),(u1,v0),(u1,v1),(u0,v1)).
			cu := [4]float64{r.u0, r.u1, r.u1, r.u0}
			cv := [4]float64{r.v0, r.v0, r.v1, r.v1}
			tri1 := [3]int{f[0], f[1], f[2]}
			tri2 := [3]int{f[0], f[2], f[3]}
			result.Tris = append(result.Tris, tri1, tri2)
			result.ParentFace = append(result.ParentFace, lvl.parent[fi], lvl.parent[fi])
			result.TriParamU = append(result.TriParamU,
				[3]float64{cu[0], cu[1], cu[2]}, [3]float64{cu[0], cu[2], cu[3]})
			result.TriParamV = append(result.TriParamV,
				[3]float64{cv[0], cv[1], cv[2]}, [3]float64{cv[0], cv[2], cv[3]})
			accumulateFaceNormal(accum, result.Verts, tri1)
			accumulateFaceNormal(accum, result.Verts, tri2)
		} else {
			for i := 1; i+1 < len(f); i++ {
				tri := [3]int{f[0], f[i], f[i+1]}
				result.Tris = append(result.Tris, tri)
				result.ParentFace = append(result.ParentFace, lvl.parent[fi])
				result.TriParamU = append(result.TriParamU, [3]float64{})
				result.TriParamV = append(result.TriParamV, [3]float64{})
				accumulateFaceNormal(accum, result.Verts, tri)
			}
		}
	}
	for vi := range result.Normals {
		result.Normals[vi] = accum[vi].Normalized()
		if result.Normals[vi].Length() < 0.5 {
			result.Normals[vi] = types.Vector{X: 0, Y: 0, Z: 1}
		}
	}
	return result, nil
}

func accumulateFaceNormal(accum []types.Vector, verts []types.Point, tri [3]int) {
	e1 := verts[tri[1]].Sub(verts[tri[0]])
	e2 := verts[tri[2]].Sub(verts[tri[0]])
	n := e1.Cross(e2)
	for _, vi := range tri {
		accum[vi] = accum[vi].Add(n)
	}
}

// BatchEvaluate evaluates position+normal at many (face,u,v) triples at
// once, sharing patch lookups across the batch. Returns a packed
// TessellationResult with one vertex per input point and no triangles.
func (e *Evaluator) BatchEvaluate(faces []int, us, vs []float64) (*types.TessellationResult, error) {
	if !e.initialized {
		return nil, notInitialized()
	}
	if len(faces) != len(us) || len(us) != len(vs) {
		return nil, kernelerr.New(kernelerr.InvalidFace, "batch_evaluate_limit: mismatched input lengths")
	}
	result := &types.TessellationResult{
		Verts:   make([]types.Point, len(faces)),
		Normals: make([]types.Vector, len(faces)),
	}
	n := len(faces)
	workers := workerCount(n)
	jobs := make(chan int, n)
	var wg sync.WaitGroup
	errs := make([]error, n)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				p, nrm, err := e.EvaluateLimit(faces[i], us[i], vs[i])
				if err != nil {
					errs[i] = err
					continue
				}
				result.Verts[i] = p
				result.Normals[i] = nrm
			}
		}()
	}
	for i := 0; i < n; i++ {
		jobs <- i
	}
	close(jobs)
	wg.Wait()
	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return result, nil
}
