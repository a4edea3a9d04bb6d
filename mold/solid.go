package mold

import (
	"math"

	"github.com/kilnforge/subdmold/kernelerr"
	"github.com/kilnforge/subdmold/types"
)

// DraftTransform decomposes each control point relative to the parting
// plane (through partingLine's first point, normal d) into a signed
// height along d and an in-plane remainder, then shears the remainder
// outward by tan(theta) scaled by the signed height (SPEC_FULL.md
// §4.8). Degrees, knots, and weights are preserved; a new FittedNURBS
// is returned (the input is never mutated).
func DraftTransform(fitted *types.FittedNURBS, d types.Vector, thetaDeg float64, partingLine []types.Point) (*types.FittedNURBS, error) {
	if thetaDeg <= 0 || thetaDeg > 45 {
		return nil, kernelerr.New(kernelerr.InvalidDraftAngle, "draft angle %v outside (0,45]", thetaDeg)
	}
	if fitted == nil || len(fitted.ControlPoints) == 0 {
		return nil, kernelerr.New(kernelerr.NullSurface, "draft transform: nil or empty surface")
	}
	if len(partingLine) == 0 {
		return nil, kernelerr.New(kernelerr.NullSurface, "draft transform: empty parting line")
	}

	dUnit := d.Normalized()
	p0 := partingLine[0]
	tanTheta := math.Tan(thetaDeg * math.Pi / 180)

	const eps = 1e-9
	newPts := make([]types.Point, len(fitted.ControlPoints))
	for i, p := range fitted.ControlPoints {
		diff := p.Sub(p0)
		h := float64(diff.Dot(dUnit))
		r := diff.Add(dUnit.Scale(float32(-h)))
		rLen := float64(r.Length())
		if math.Abs(h) <= eps || rLen <= eps {
			newPts[i] = p
			continue
		}
		rHat := r.Scale(float32(1 / rLen))
		shift := rHat.Scale(float32(sign(h) * math.Abs(h) * tanTheta))
		newPts[i] = p.Add(shift)
	}

	return &types.FittedNURBS{
		DegreeU: fitted.DegreeU, DegreeV: fitted.DegreeV,
		CountU: fitted.CountU, CountV: fitted.CountV,
		ControlPoints: newPts,
		Weights:       append([]float64(nil), fitted.Weights...),
		KnotsU:        append([]float64(nil), fitted.KnotsU...),
		KnotsV:        append([]float64(nil), fitted.KnotsV...),
	}, nil
}

func sign(x float64) float64 {
	if x < 0 {
		return -1
	}
	return 1
}

// shellSolid is the opaque modeling-kernel payload returned through
// MoldSolid.Handle: a thick-shell description built from the (possibly
// drafted) outer surface offset inward by thickness along its own
// normal field, plus the registration-key cylinders fused onto it.
// OpenCASCADE's actual Boolean/thick-shell kernel is not available to
// this module (no cgo bindings in the retrieved corpus); this struct
// plays its role as the opaque handle the spec requires (SPEC_FULL.md
// §9: "do not attempt to expose their interior through the wire
// protocol"), holding the shell geometry that RegistrationKeys reads
// back through Handle.
type shellSolid struct {
	Outer            *types.FittedNURBS
	Inner            *types.FittedNURBS
	Thickness        float64
	RegistrationKeys []types.Point
	KeyRadius        float64
	KeyHeight        float64
}

// CreateSolid offsets surf by thickness along normals estimated from
// its control grid (offsetSurface) to build a thick-shell solid,
// validates thickness and
// surface well-formedness, and returns an opaque MoldSolid
// (SPEC_FULL.md §4.8).
func CreateSolid(surf *types.FittedNURBS, thickness float64) (*types.MoldSolid, error) {
	if thickness <= 0 {
		return nil, kernelerr.New(kernelerr.InvalidWallThickness, "wall thickness %v must be > 0", thickness)
	}
	if surf == nil || len(surf.ControlPoints) == 0 {
		return nil, kernelerr.New(kernelerr.NullSurface, "create solid: nil or empty surface")
	}

	inner := offsetSurface(surf, thickness)
	if err := integrityCheck(surf, inner); err != nil {
		return nil, err
	}

	shell := &shellSolid{Outer: surf, Inner: inner, Thickness: thickness}
	return types.NewMoldSolid(shell, thickness), nil
}

// offsetSurface moves every control point by -thickness along the
// normal estimated from its immediate grid neighbors, a control-point
// offset approximation that is exact for developable/near-planar mold
// faces and otherwise a documented first-order approximation of a true
// offset surface (exact NURBS offsets are not rational in general).
func offsetSurface(f *types.FittedNURBS, thickness float64) *types.FittedNURBS {
	pts := make([]types.Point, len(f.ControlPoints))
	for i := 0; i < f.CountU; i++ {
		for j := 0; j < f.CountV; j++ {
			n := estimateControlNormal(f, i, j)
			p := f.At(i, j)
			pts[i*f.CountV+j] = p.Add(n.Scale(float32(-thickness)))
		}
	}
	return &types.FittedNURBS{
		DegreeU: f.DegreeU, DegreeV: f.DegreeV,
		CountU: f.CountU, CountV: f.CountV,
		ControlPoints: pts,
		Weights:       append([]float64(nil), f.Weights...),
		KnotsU:        append([]float64(nil), f.KnotsU...),
		KnotsV:        append([]float64(nil), f.KnotsV...),
	}
}

func estimateControlNormal(f *types.FittedNURBS, i, j int) types.Vector {
	iu0, iu1 := i, i+1
	if iu1 >= f.CountU {
		iu0, iu1 = i-1, i
	}
	jv0, jv1 := j, j+1
	if jv1 >= f.CountV {
		jv0, jv1 = j-1, j
	}
	if iu0 < 0 {
		iu0 = 0
	}
	if jv0 < 0 {
		jv0 = 0
	}
	du := f.At(iu1, j).Sub(f.At(iu0, j))
	dv := f.At(i, jv1).Sub(f.At(i, jv0))
	n := du.Cross(dv).Normalized()
	if n.Length() < 0.5 {
		return types.Vector{X: 0, Y: 0, Z: 1}
	}
	return n
}

// integrityCheck verifies the offset did not collapse the shell (inner
// and outer surfaces must stay separated, within tolerance, everywhere
// they were sampled) — the stand-in for OpenCASCADE's solid
// integrity/self-intersection check (SPEC_FULL.md §4.8).
func integrityCheck(outer, inner *types.FittedNURBS) error {
	for i := range outer.ControlPoints {
		d := outer.ControlPoints[i].Sub(inner.ControlPoints[i])
		if d.Length() < 1e-6 {
			return kernelerr.New(kernelerr.BooleanOperationFailed, "thick-shell offset collapsed at control point %d", i)
		}
	}
	return nil
}

// RegistrationKeys places cylindrical alignment keys (radius, height
// from MoldOptions) at evenly spaced points along the surface's outer
// boundary loop, fused onto the solid (SPEC_FULL.md §4.8's "add
// registration keys"). Returns the key center points; the actual
// cylinder-fuse Boolean is represented in the shellSolid payload,
// consistent with §9's opaque-handle discipline.
func (g *Generator) RegistrationKeys(solid *types.MoldSolid, count int) ([]types.Point, error) {
	shell, ok := solid.Handle().(*shellSolid)
	if !ok || shell == nil {
		return nil, kernelerr.New(kernelerr.BooleanOperationFailed, "registration keys: solid has no shell payload")
	}
	if count < 1 {
		count = 1
	}
	outer := shell.Outer
	boundary := boundaryLoop(outer)
	if len(boundary) == 0 {
		return nil, kernelerr.New(kernelerr.NullSurface, "registration keys: surface has no boundary control points")
	}

	keys := make([]types.Point, 0, count)
	for k := 0; k < count; k++ {
		idx := (k * len(boundary)) / count
		keys = append(keys, boundary[idx])
	}
	shell.RegistrationKeys = keys
	shell.KeyRadius = g.opts.KeyRadius
	shell.KeyHeight = g.opts.KeyHeight
	solid.RegistrationKeys = keys
	return keys, nil
}

// boundaryLoop returns the outer ring of control points (the four
// edges of the CountU x CountV control grid), in order.
func boundaryLoop(f *types.FittedNURBS) []types.Point {
	if f.CountU < 2 || f.CountV < 2 {
		return append([]types.Point(nil), f.ControlPoints...)
	}
	var loop []types.Point
	for j := 0; j < f.CountV; j++ {
		loop = append(loop, f.At(0, j))
	}
	for i := 1; i < f.CountU; i++ {
		loop = append(loop, f.At(i, f.CountV-1))
	}
	for j := f.CountV - 2; j >= 0; j-- {
		loop = append(loop, f.At(f.CountU-1, j))
	}
	for i := f.CountU - 2; i >= 1; i-- {
		loop = append(loop, f.At(i, 0))
	}
	return loop
}
