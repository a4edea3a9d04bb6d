// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package types

import (
	"testing"

	"github.com/cpmech/gosl/chk"
)

func TestVectorBasics(tst *testing.T) {

	chk.PrintTitle("VectorBasics")

	a := Vector{X: 1, Y: 0, Z: 0}
	b := Vector{X: 0, Y: 1, Z: 0}

	c := a.Cross(b)
	chk.Scalar(tst, "(1,0,0)x(0,1,0).z", 1e-7, float64(c.Z), 1.0)

	chk.Scalar(tst, "a.Dot(b)", 1e-7, float64(a.Dot(b)), 0.0)
	chk.Scalar(tst, "a.Dot(a)", 1e-7, float64(a.Dot(a)), 1.0)

	big := Vector{X: 3, Y: 4, Z: 0}
	chk.Scalar(tst, "|(3,4,0)|", 1e-7, float64(big.Length()), 5.0)

	n := big.Normalized()
	chk.Scalar(tst, "|normalized|", 1e-6, float64(n.Length()), 1.0)
}

func TestPointArithmetic(tst *testing.T) {

	chk.PrintTitle("PointArithmetic")

	p := Point{X: 1, Y: 2, Z: 3}
	v := Vector{X: 1, Y: 1, Z: 1}

	q := p.Add(v)
	chk.Scalar(tst, "q.x", 1e-7, float64(q.X), 2.0)
	chk.Scalar(tst, "q.y", 1e-7, float64(q.Y), 3.0)
	chk.Scalar(tst, "q.z", 1e-7, float64(q.Z), 4.0)

	d := q.Sub(p)
	chk.Scalar(tst, "d.x", 1e-7, float64(d.X), 1.0)
	chk.Scalar(tst, "d.y", 1e-7, float64(d.Y), 1.0)
	chk.Scalar(tst, "d.z", 1e-7, float64(d.Z), 1.0)
}

func TestNormalizedDegenerate(tst *testing.T) {

	chk.PrintTitle("NormalizedDegenerate")

	zero := Vector{}
	n := zero.Normalized()
	chk.Scalar(tst, "normalized(0).x", 1e-12, float64(n.X), 0.0)
	chk.Scalar(tst, "normalized(0).y", 1e-12, float64(n.Y), 0.0)
	chk.Scalar(tst, "normalized(0).z", 1e-12, float64(n.Z), 0.0)
}
