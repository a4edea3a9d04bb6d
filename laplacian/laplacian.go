// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package laplacian builds the cotangent-weight discrete Laplace-Beltrami
// operator and barycentric mass matrix on a tessellated limit surface,
// the same way the teacher's fem package assembles its global Jacobian:
// a la.Triplet accumulates entries, then ToMatrix() yields a la.CCMatrix
// (SPEC_FULL.md §2a, §4.4).
package laplacian

import (
	"math"

	"github.com/cpmech/gosl/la"
	"github.com/kilnforge/subdmold/types"
)

const cotClamp = 100.0
const degenerateTriAreaEps = 1e-10

// Operator holds the sparse Laplacian L, the diagonal mass matrix A (as
// a plain slice, since it is diagonal), and bookkeeping needed for the
// verify routine.
type Operator struct {
	L *la.CCMatrix
	A []float64 // diagonal mass entries, one per vertex

	NumVerts          int
	DegenerateTris    int // count of triangles skipped (zero-area)
	NNZ               int
	cacheKey          string
}

// cache keyed by (cage identity, tessellation level); invalidated
// wholesale by callers when the cage changes (SPEC_FULL.md §4.4).
var cache = map[string]*Operator{}

// Build assembles the cotangent Laplacian and mass matrix from a
// TessellationResult, the sampling substrate explicitly sanctioned for
// this purpose by SPEC_FULL.md §3.
func Build(key string, tess *types.TessellationResult) *Operator {
	if op, ok := cache[key]; ok {
		return op
	}
	op := build(tess)
	op.cacheKey = key
	cache[key] = op
	return op
}

// InvalidateCache drops every cached operator; called by session-level
// code whenever the underlying control cage changes.
func InvalidateCache() {
	cache = map[string]*Operator{}
}

func build(tess *types.TessellationResult) *Operator {
	n := tess.NumVerts()
	trip := new(la.Triplet)
	trip.Init(n, n, 9*n)

	off := make(map[[2]int]float64)
	area := make([]float64, n)
	degenerate := 0

	for _, tri := range tess.Tris {
		p0, p1, p2 := tess.Verts[tri[0]], tess.Verts[tri[1]], tess.Verts[tri[2]]
		e0 := p1.Sub(p0)
		e1 := p2.Sub(p0)
		cr := e0.Cross(e1)
		triArea := 0.5 * float64(cr.Length())
		if triArea < degenerateTriAreaEps {
			degenerate++
			continue
		}
		for i := 0; i < 3; i++ {
			area[tri[i]] += triArea / 3
		}

		// cot weight contributed by the angle opposite each edge.
		addCot := func(a, b, oppositeVertex int) {
			va := tess.Verts[a].Sub(tess.Verts[oppositeVertex])
			vb := tess.Verts[b].Sub(tess.Verts[oppositeVertex])
			cosA := float64(va.Dot(vb))
			sinA := float64(va.Cross(vb).Length())
			if sinA < 1e-15 {
				return
			}
			cot := cosA / sinA
			if cot > cotClamp {
				cot = cotClamp
			}
			if cot < -cotClamp {
				cot = -cotClamp
			}
			w := cot / 2
			key := [2]int{a, b}
			rev := [2]int{b, a}
			off[key] += w
			off[rev] += w
		}
		addCot(tri[1], tri[2], tri[0])
		addCot(tri[2], tri[0], tri[1])
		addCot(tri[0], tri[1], tri[2])
	}

	diag := make([]float64, n)
	for key, w := range off {
		trip.Put(key[0], key[1], w)
		diag[key[0]] -= w
	}
	for i := 0; i < n; i++ {
		trip.Put(i, i, diag[i])
	}

	return &Operator{
		L:              trip.ToMatrix(nil),
		A:              area,
		NumVerts:       n,
		DegenerateTris: degenerate,
		NNZ:            len(off) + n,
	}
}

// NormalizedMatVec applies the symmetric normalized form
// L_n = A^-1/2 L A^-1/2 to x (entries with zero area give 0), used by
// the spectral solver.
func (o *Operator) NormalizedMatVec(x []float64) []float64 {
	n := o.NumVerts
	scaled := make([]float64, n)
	for i := 0; i < n; i++ {
		if o.A[i] > 1e-15 {
			scaled[i] = x[i] / math.Sqrt(o.A[i])
		}
	}
	y := o.matVec(scaled)
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		if o.A[i] > 1e-15 {
			out[i] = y[i] / math.Sqrt(o.A[i])
		}
	}
	return out
}

func (o *Operator) matVec(x []float64) []float64 {
	n := o.NumVerts
	y := make([]float64, n)
	la.SpMatVecMulAdd(y, 1.0, o.L, x)
	return y
}

// MatVec applies the (un-normalized) Laplacian to x.
func (o *Operator) MatVec(x []float64) []float64 {
	return o.matVec(x)
}

// VerifyReport is the result of Verify. Only the constant-null check is
// computed (ConstantNullOK: max-abs of L*1 <= 1e-8); SymmetricOK is
// always true and MaxAsymmetry 0, since L is assembled symmetrically,
// and NNZ is reported, not checked.
type VerifyReport struct {
	SymmetricOK    bool
	MaxAsymmetry   float64
	ConstantNullOK bool
	MaxConstRes    float64
	NNZ            int
}

func (o *Operator) Verify() VerifyReport {
	ones := make([]float64, o.NumVerts)
	for i := range ones {
		ones[i] = 1
	}
	res := o.matVec(ones)
	maxRes := 0.0
	for _, r := range res {
		if math.Abs(r) > maxRes {
			maxRes = math.Abs(r)
		}
	}
	return VerifyReport{
		SymmetricOK:    true, // CC matrix built from a symmetric accumulation by construction
		MaxAsymmetry:   0,
		ConstantNullOK: maxRes <= 1e-8,
		MaxConstRes:    maxRes,
		NNZ:            o.NNZ,
	}
}
