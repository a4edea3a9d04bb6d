// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package mold implements the NURBS Mold Generator (SPEC_FULL.md §4.8):
// fits a B-spline surface through exact limit-surface samples of a
// single-face region, applies a draft transformation, and builds an
// opaque solid via thick-shell offset.
package mold

import (
	"math"

	"github.com/kilnforge/subdmold/evalsurf"
	"github.com/kilnforge/subdmold/kernelerr"
	"github.com/kilnforge/subdmold/types"
)

const bicubicDegree = 3

// Generator binds mold operations to the kernel's documented defaults.
type Generator struct {
	opts types.MoldOptions
}

// New binds a Generator to the given options.
func New(opts types.MoldOptions) *Generator {
	return &Generator{opts: opts}
}

// Fit samples the exact limit surface of region on an s×s grid and
// fits a non-rational bicubic B-spline through it (SPEC_FULL.md §4.8).
// Multi-face regions are explicitly out of scope and fail with
// MultiFaceFitDeferred.
func (g *Generator) Fit(ev *evalsurf.Evaluator, region types.ParametricRegion, degreeU, degreeV int) (*types.FittedNURBS, error) {
	faces := region.FaceList()
	if len(faces) != 1 {
		return nil, kernelerr.New(kernelerr.MultiFaceFitDeferred, "NURBS fitting is implemented only for single-face regions; region has %d faces", len(faces))
	}
	face := faces[0]

	s := g.opts.SampleDensity
	if s < 3 {
		s = 3
	}
	if degreeU < 1 {
		degreeU = bicubicDegree
	}
	if degreeV < 1 {
		degreeV = bicubicDegree
	}
	if s <= degreeU || s <= degreeV {
		s = intMax(degreeU, degreeV) + 1
	}

	grid := make([]types.Point, s*s)
	for i := 0; i < s; i++ {
		u := float64(i) / float64(s-1)
		for j := 0; j < s; j++ {
			v := float64(j) / float64(s-1)
			p, err := ev.EvaluateLimitPoint(face, u, v)
			if err != nil {
				return nil, err
			}
			grid[i*s+j] = p
		}
	}

	paramsU := uniformParams(s)
	paramsV := uniformParams(s)
	knotsU := clampedKnotVector(paramsU, degreeU)
	knotsV := clampedKnotVector(paramsV, degreeV)

	// Fit along V for each U-row, then along U for each resulting
	// column (standard tensor-product global surface interpolation,
	// Piegl & Tiller ch. 9.2.5).
	rowFit := make([]float64, s*s*3)
	for i := 0; i < s; i++ {
		row := make([]float64, s*3)
		for j := 0; j < s; j++ {
			p := grid[i*s+j]
			row[j*3+0] = float64(p.X)
			row[j*3+1] = float64(p.Y)
			row[j*3+2] = float64(p.Z)
		}
		fitted := interpolate1D(row, 3, paramsV, knotsV, degreeV)
		copy(rowFit[i*s*3:(i+1)*s*3], fitted)
	}

	controlPoints := make([]types.Point, s*s)
	for j := 0; j < s; j++ {
		col := make([]float64, s*3)
		for i := 0; i < s; i++ {
			col[i*3+0] = rowFit[i*s*3+j*3+0]
			col[i*3+1] = rowFit[i*s*3+j*3+1]
			col[i*3+2] = rowFit[i*s*3+j*3+2]
		}
		fitted := interpolate1D(col, 3, paramsU, knotsU, degreeU)
		for i := 0; i < s; i++ {
			controlPoints[i*s+j] = types.Point{
				X: float32(fitted[i*3+0]),
				Y: float32(fitted[i*3+1]),
				Z: float32(fitted[i*3+2]),
			}
		}
	}

	weights := make([]float64, s*s)
	for i := range weights {
		weights[i] = 1.0
	}

	return &types.FittedNURBS{
		DegreeU: degreeU, DegreeV: degreeV,
		CountU: s, CountV: s,
		ControlPoints: controlPoints,
		Weights:       weights,
		KnotsU:        knotsU,
		KnotsV:        knotsV,
	}, nil
}

func intMax(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// QualityCheck independently samples the original limit surface at a
// denser validation grid and the fitted surface at corresponding
// parameters, recording max/mean/RMS Euclidean deviation
// (SPEC_FULL.md §4.8). FittingToleranceExceeded is never raised here —
// a failing check is reported through PassesTolerance, left for the
// caller to act on.
func (g *Generator) QualityCheck(ev *evalsurf.Evaluator, region types.ParametricRegion, fitted *types.FittedNURBS) (types.FittingQuality, error) {
	faces := region.FaceList()
	if len(faces) != 1 {
		return types.FittingQuality{}, kernelerr.New(kernelerr.MultiFaceFitDeferred, "quality check is implemented only for single-face regions")
	}
	face := faces[0]

	d := g.opts.ValidationDensity
	if d < 2 {
		d = 2
	}

	var sumDev, sumSqDev, maxDev float64
	count := 0
	for i := 0; i < d; i++ {
		u := float64(i) / float64(d-1)
		for j := 0; j < d; j++ {
			v := float64(j) / float64(d-1)
			exact, err := ev.EvaluateLimitPoint(face, u, v)
			if err != nil {
				continue
			}
			fit := evalSurface(fitted, u, v)
			dx := float64(exact.X - fit.X)
			dy := float64(exact.Y - fit.Y)
			dz := float64(exact.Z - fit.Z)
			dev := math.Sqrt(dx*dx + dy*dy + dz*dz)
			sumDev += dev
			sumSqDev += dev * dev
			if dev > maxDev {
				maxDev = dev
			}
			count++
		}
	}
	if count == 0 {
		return types.FittingQuality{}, kernelerr.New(kernelerr.InvalidNURBSData, "quality check: no valid validation samples")
	}
	mean := sumDev / float64(count)
	rms := math.Sqrt(sumSqDev / float64(count))
	return types.FittingQuality{
		MaxDeviation:     maxDev,
		MeanDeviation:    mean,
		RMSDeviation:     rms,
		SampleCount:      count,
		PassesTolerance:  maxDev < 0.1,
	}, nil
}

// evalSurface evaluates the tensor-product B-spline surface at (u,v)
// by de Boor basis evaluation along each parametric direction.
func evalSurface(f *types.FittedNURBS, u, v float64) types.Point {
	spanU := findSpan(f.CountU-1, f.DegreeU, clamp01(u), f.KnotsU)
	basisU := basisFuncs(spanU, clamp01(u), f.DegreeU, f.KnotsU)
	spanV := findSpan(f.CountV-1, f.DegreeV, clamp01(v), f.KnotsV)
	basisV := basisFuncs(spanV, clamp01(v), f.DegreeV, f.KnotsV)

	var sum types.Vector
	var wsum float64
	for a := 0; a <= f.DegreeU; a++ {
		i := spanU - f.DegreeU + a
		for b := 0; b <= f.DegreeV; b++ {
			j := spanV - f.DegreeV + b
			w := f.WeightAt(i, j) * basisU[a] * basisV[b]
			p := f.At(i, j)
			sum = sum.Add(types.Vector{X: p.X, Y: p.Y, Z: p.Z}.Scale(float32(w)))
			wsum += w
		}
	}
	if wsum < 1e-15 {
		wsum = 1
	}
	return types.Point{X: sum.X / float32(wsum), Y: sum.Y / float32(wsum), Z: sum.Z / float32(wsum)}
}

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
