// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package types holds the kernel's core value types: points, vectors, the
// immutable control cage, tessellation results, and the parametric
// addressing scheme (face, u, v) that every other package builds on.
package types

import "math"

// Point is a location in 3D space. It is semantically distinct from
// Vector even though the underlying representation is the same triple.
type Point struct {
	X, Y, Z float32
}

// Vector is a displacement/direction in 3D space.
type Vector struct {
	X, Y, Z float32
}

// Sub returns the vector from b to a (a - b).
func (a Point) Sub(b Point) Vector {
	return Vector{a.X - b.X, a.Y - b.Y, a.Z - b.Z}
}

// Add returns the point obtained by displacing p by v.
func (p Point) Add(v Vector) Point {
	return Point{p.X + v.X, p.Y + v.Y, p.Z + v.Z}
}

// Add returns the sum of two vectors.
func (a Vector) Add(b Vector) Vector {
	return Vector{a.X + b.X, a.Y + b.Y, a.Z + b.Z}
}

// Scale returns a scaled by s.
func (a Vector) Scale(s float32) Vector {
	return Vector{a.X * s, a.Y * s, a.Z * s}
}

// Dot returns the Euclidean inner product of a and b.
func (a Vector) Dot(b Vector) float32 {
	return a.X*b.X + a.Y*b.Y + a.Z*b.Z
}

// Cross returns the cross product a x b.
func (a Vector) Cross(b Vector) Vector {
	return Vector{
		a.Y*b.Z - a.Z*b.Y,
		a.Z*b.X - a.X*b.Z,
		a.X*b.Y - a.Y*b.X,
	}
}

// Length returns the Euclidean norm of a.
func (a Vector) Length() float32 {
	return float32(math.Sqrt(float64(a.Dot(a))))
}

// Normalized returns a unit vector parallel to a. The zero vector is
// returned unchanged if a has near-zero length.
func (a Vector) Normalized() Vector {
	l := a.Length()
	if l < 1e-12 {
		return a
	}
	return a.Scale(1 / l)
}

// ToPoint reinterprets a vector as a point at the origin plus that
// displacement; used when lifting tangent-space combinations back to
// world-space positions.
func (a Vector) ToPoint() Point {
	return Point{a.X, a.Y, a.Z}
}
