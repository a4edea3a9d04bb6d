// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package curvature computes the first and second fundamental forms,
// the shape operator, and principal/mean/Gaussian curvature at points
// on the evaluator's limit surface (SPEC_FULL.md §4.2).
package curvature

import (
	"math"
	"runtime"
	"sync"

	"github.com/kilnforge/subdmold/evalsurf"
	"github.com/kilnforge/subdmold/kernelerr"
	"github.com/kilnforge/subdmold/types"
)

// degenerateMetricEps is the threshold below which EG-F^2 is treated as
// a pinch/cusp (SPEC_FULL.md §4.2).
const degenerateMetricEps = 1e-10

// Analyzer evaluates curvature against a single Evaluator instance.
type Analyzer struct {
	ev *evalsurf.Evaluator
}

// New binds an Analyzer to an already-initialized Evaluator.
func New(ev *evalsurf.Evaluator) *Analyzer {
	return &Analyzer{ev: ev}
}

// Analyze computes the full CurvatureResult at (face,u,v).
func (a *Analyzer) Analyze(face int, u, v float64) (types.CurvatureResult, error) {
	p, du, dv, duu, dvv, duv, err := a.ev.EvaluateLimitWithSecondDerivatives(face, u, v)
	_ = p
	if err != nil {
		return types.CurvatureResult{}, err
	}
	return fromDerivatives(du, dv, duu, dvv, duv)
}

func fromDerivatives(du, dv, duu, dvv, duv types.Vector) (types.CurvatureResult, error) {
	E := float64(du.Dot(du))
	F := float64(du.Dot(dv))
	G := float64(dv.Dot(dv))

	metric := E*G - F*F
	if metric <= degenerateMetricEps {
		return types.CurvatureResult{}, kernelerr.New(kernelerr.DegenerateMetric, "EG-F^2=%v at or below epsilon", metric)
	}

	cross := du.Cross(dv)
	area := float64(cross.Length())
	if area < 1e-15 {
		return types.CurvatureResult{}, kernelerr.New(kernelerr.DegenerateMetric, "zero-area tangent plane")
	}
	n := cross.Normalized()

	L := float64(duu.Dot(n))
	M := float64(duv.Dot(n))
	N := float64(dvv.Dot(n))

	// Shape operator S = I^-1 II (2x2).
	invDet := 1.0 / metric
	i11 := G * invDet
	i12 := -F * invDet
	i21 := -F * invDet
	i22 := E * invDet

	s11 := i11*L + i12*M
	s12 := i11*M + i12*N
	s21 := i21*L + i22*M
	s22 := i21*M + i22*N

	K := s11*s22 - s12*s21
	H := (s11 + s22) / 2

	k1, k2, a1, b1, a2, b2 := eigen2x2(s11, s12, s21, s22, H, K)

	d1 := liftTangent(du, dv, a1, b1).Normalized()
	d2raw := liftTangent(du, dv, a2, b2).Normalized()
	// re-orthogonalize d2 against d1 (they are exact eigenvectors of a
	// symmetric operator in the metric's own inner product, but the
	// lift to 3D via non-orthonormal du,dv can leave small numerical
	// skew; a single Gram-Schmidt pass removes it).
	d2 := d2raw.Add(d1.Scale(-d1.Dot(d2raw))).Normalized()

	absH := math.Abs(H)
	rms := math.Sqrt((k1*k1 + k2*k2) / 2)

	return types.CurvatureResult{
		Kappa1: k1, Kappa2: k2,
		D1: d1, D2: d2,
		Normal: n,
		K:      K, H: H, AbsH: absH, RMS: rms,
		E: E, F: F, G: G,
		L: L, M: M, N: N,
	}, nil
}

// eigen2x2 returns the eigenvalues (ordered k1>=k2) and eigenvectors of
// the symmetric-in-the-metric shape operator, via the closed-form
// quadratic formula (trace/determinant already known as H, K).
func eigen2x2(s11, s12, s21, s22, H, K float64) (k1, k2, a1, b1, a2, b2 float64) {
	disc := H*H - K
	if disc < 0 {
		disc = 0
	}
	sq := math.Sqrt(disc)
	k1 = H + sq
	k2 = H - sq

	a1, b1 = eigenvector2x2(s11, s12, s21, s22, k1)
	a2, b2 = eigenvector2x2(s11, s12, s21, s22, k2)
	return
}

func eigenvector2x2(s11, s12, s21, s22, lambda float64) (a, b float64) {
	// Solve (S - lambda I) x = 0. Pick the row with larger magnitude to
	// avoid dividing by a near-zero coefficient.
	r1a, r1b := s11-lambda, s12
	r2a, r2b := s21, s22-lambda
	if math.Abs(r1b) >= math.Abs(r2b) && (math.Abs(r1a)+math.Abs(r1b)) > 1e-15 {
		if math.Abs(r1b) > 1e-15 {
			a, b = 1, -r1a/r1b
		} else {
			a, b = 0, 1
		}
	} else if (math.Abs(r2a) + math.Abs(r2b)) > 1e-15 {
		if math.Abs(r2b) > 1e-15 {
			a, b = 1, -r2a/r2b
		} else {
			a, b = 0, 1
		}
	} else {
		a, b = 1, 0
	}
	norm := math.Sqrt(a*a + b*b)
	if norm > 1e-15 {
		a, b = a/norm, b/norm
	}
	return
}

func liftTangent(du, dv types.Vector, alpha, beta float64) types.Vector {
	return du.Scale(float32(alpha)).Add(dv.Scale(float32(beta)))
}

// BatchAnalyze applies Analyze to many (face,u,v) triples in parallel,
// preserving input order; see SPEC_FULL.md §5 for the worker-pool
// discipline this follows.
func (a *Analyzer) BatchAnalyze(faces []int, us, vs []float64) ([]types.CurvatureResult, []error) {
	n := len(faces)
	results := make([]types.CurvatureResult, n)
	errs := make([]error, n)
	workers := runtime.GOMAXPROCS(0)
	if workers > n {
		workers = n
	}
	if workers < 1 {
		workers = 1
	}
	jobs := make(chan int, n)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				results[i], errs[i] = a.Analyze(faces[i], us[i], vs[i])
			}
		}()
	}
	for i := 0; i < n; i++ {
		jobs <- i
	}
	close(jobs)
	wg.Wait()
	return results, errs
}
