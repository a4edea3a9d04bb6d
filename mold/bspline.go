// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package mold

import "github.com/cpmech/gosl/la"

// clampedKnotVector builds an open/clamped knot vector for n control
// points and degree p via the standard averaging technique (Piegl &
// Tiller, "The NURBS Book", eq. 9.8): the first and last knots repeat
// p+1 times, interior knots are running averages of p consecutive
// parameter values. No corpus library exposes a standalone knot-vector
// builder (gm.Nurbs is only ever observed pre-built from mesh input,
// never constructed from a sample grid; see DESIGN.md), so this is a
// direct textbook implementation.
func clampedKnotVector(params []float64, degree int) []float64 {
	n := len(params) - 1
	m := n + degree + 1
	knots := make([]float64, m+1)
	for i := 0; i <= degree; i++ {
		knots[i] = 0
		knots[m-i] = 1
	}
	for j := 1; j <= n-degree; j++ {
		sum := 0.0
		for i := j; i <= j+degree-1; i++ {
			sum += params[i]
		}
		knots[j+degree] = sum / float64(degree)
	}
	return knots
}

// uniformParams returns n parameters evenly spaced on [0,1] (a single
// parameter is 0), i.e. the grid's own index spacing rather than an
// embedded 3D chord-length parametrization, since the fit operates on a
// uniform (s,s) sample grid in face parameter space (SPEC_FULL.md §4.8
// fits through a uniform u,v sample grid).
func uniformParams(n int) []float64 {
	params := make([]float64, n)
	if n == 1 {
		params[0] = 0
		return params
	}
	for i := 0; i < n; i++ {
		params[i] = float64(i) / float64(n-1)
	}
	return params
}

// basisFuncs evaluates all degree-p B-spline basis functions that are
// nonzero at parameter u, via the Cox-de Boor recursion (Piegl &
// Tiller algorithm A2.2), given knots and the caller's span index.
// Returns the p+1 nonzero basis values (indices span-p..span).
func basisFuncs(span int, u float64, degree int, knots []float64) []float64 {
	N := make([]float64, degree+1)
	left := make([]float64, degree+1)
	right := make([]float64, degree+1)
	N[0] = 1.0
	for j := 1; j <= degree; j++ {
		left[j] = u - knots[span+1-j]
		right[j] = knots[span+j] - u
		saved := 0.0
		for r := 0; r < j; r++ {
			denom := right[r+1] + left[j-r]
			var temp float64
			if denom != 0 {
				temp = N[r] / denom
			}
			N[r] = saved + right[r+1]*temp
			saved = left[j-r] * temp
		}
		N[j] = saved
	}
	return N
}

// findSpan locates the knot span containing u (Piegl & Tiller A2.1).
func findSpan(n, degree int, u float64, knots []float64) int {
	if u >= knots[n+1] {
		return n
	}
	if u <= knots[degree] {
		return degree
	}
	low, high := degree, n+1
	mid := (low + high) / 2
	for u < knots[mid] || u >= knots[mid+1] {
		if u < knots[mid] {
			high = mid
		} else {
			low = mid
		}
		mid = (low + high) / 2
	}
	return mid
}

// interpolate1D solves for n control points (degree p, clamped knot
// vector knots, parameter values params) such that the resulting curve
// passes through data exactly at each params[k] (global curve
// interpolation, Piegl & Tiller ch. 9.2.1). data holds n values of
// dim-length vectors, flattened row-major (n x dim); returns the
// control points in the same layout.
//
// The basis matrix is assembled densely and inverted via gosl's
// la.MatInv, the same dense-linear-algebra primitive the teacher's shp
// package uses for its own Jacobian inversions (SPEC_FULL.md §2a).
func interpolate1D(data []float64, dim int, params, knots []float64, degree int) []float64 {
	n := len(params)
	A := la.MatAlloc(n, n)
	for k, u := range params {
		span := findSpan(n-1, degree, u, knots)
		funcs := basisFuncs(span, u, degree, knots)
		for r := 0; r <= degree; r++ {
			col := span - degree + r
			A[k][col] = funcs[r]
		}
	}
	Ainv := la.MatAlloc(n, n)
	_, err := la.MatInv(Ainv, A, 1e-13)
	if err != nil {
		// A singular basis matrix means degenerate/duplicate
		// parameter values; fall back to the identity so callers get
		// a (locally inexact but still well-formed) surface rather
		// than a panic. The caller's FittingQuality check will flag
		// the resulting deviation.
		for i := range Ainv {
			for j := range Ainv[i] {
				Ainv[i][j] = 0
			}
			Ainv[i][i] = 1
		}
	}

	result := make([]float64, n*dim)
	col := make([]float64, n)
	out := make([]float64, n)
	for d := 0; d < dim; d++ {
		for k := 0; k < n; k++ {
			col[k] = data[k*dim+d]
		}
		la.MatVecMul(out, 1, Ainv, col)
		for k := 0; k < n; k++ {
			result[k*dim+d] = out[k]
		}
	}
	return result
}
