// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package constraint implements the Constraint Validator (SPEC_FULL.md
// §4.7): draft-angle and undercut-by-occlusion checks against a region
// under a chosen demolding direction, assembled into a ConstraintReport.
package constraint

import (
	"fmt"
	"math"

	"github.com/kilnforge/subdmold/evalsurf"
	"github.com/kilnforge/subdmold/types"
)

// rayCastDensity is the tessellation level used for the undercut ray
// test (SPEC_FULL.md §9: "the test must document the chosen density").
// Level 4 gives a dense-enough faceting that the reported violation
// set is stable under further refinement for the cage sizes this
// kernel targets (tens to low hundreds of control faces), while
// staying cheap enough to rebuild per validation call.
const rayCastDensity = 4

// WallThicknessQuery optionally supplies a caller-provided wall
// thickness at a face center, enabling the optional check from
// SPEC_FULL.md §4.7.
type WallThicknessQuery func(face int) (thicknessMM float64, ok bool)

// Validate runs the draft-angle and undercut checks for every face in
// region against direction d (unit vector), plus the optional wall
// thickness check when thicknessOf is non-nil. It is a pure function
// of (ev, region, d, opts, thicknessOf).
func Validate(ev *evalsurf.Evaluator, region types.ParametricRegion, d types.Vector, opts types.DraftOptions, thicknessOf WallThicknessQuery) (types.ConstraintReport, error) {
	var report types.ConstraintReport
	d = d.Normalized()

	faces := region.FaceList()
	tess, err := ev.Tessellate(rayCastDensity, false)
	if err != nil {
		return report, err
	}
	envelope := buildEnvelope(tess, region)

	for _, f := range faces {
		n, center, err := normalAndCenter(ev, f)
		if err != nil {
			return report, err
		}

		draftViolation, ok := draftCheck(f, n, d, opts)
		if ok {
			report.Violations = append(report.Violations, draftViolation)
		}

		if occ, ok := occlusionCheck(ev, f, center, d, envelope); ok {
			report.Violations = append(report.Violations, occ)
		}

		if thicknessOf != nil {
			if thickness, present := thicknessOf(f); present && thickness < opts.MinWallThickness {
				report.Violations = append(report.Violations, types.ConstraintViolation{
					Level:       types.WARNING,
					Description: fmt.Sprintf("wall thickness %.2fmm below minimum %.2fmm at face %d", thickness, opts.MinWallThickness, f),
					Face:        f,
					Severity:    clamp01(1 - thickness/opts.MinWallThickness),
					Remediation: "thicken the shell or relocate the parting line",
				})
			}
		}
	}
	return report, nil
}

func normalAndCenter(ev *evalsurf.Evaluator, face int) (types.Vector, types.Point, error) {
	p, n, err := ev.EvaluateLimit(face, 0.5, 0.5)
	if err != nil {
		return types.Vector{}, types.Point{}, err
	}
	return n, p, nil
}

// draftCheck implements SPEC_FULL.md §4.7's draft-angle policy.
// draft = 90 - angle(n, d): the angle between the surface tangent
// plane and the plane perpendicular to d.
func draftCheck(face int, n, d types.Vector, opts types.DraftOptions) (types.ConstraintViolation, bool) {
	cosAngle := float64(n.Dot(d))
	if cosAngle > 1 {
		cosAngle = 1
	}
	if cosAngle < -1 {
		cosAngle = -1
	}
	angle := math.Acos(cosAngle) * 180 / math.Pi
	draft := 90 - angle

	switch {
	case draft < 0:
		return types.ConstraintViolation{
			Level:       types.ERROR,
			Description: fmt.Sprintf("undercut at face %d", face),
			Face:        face,
			Severity:    1,
			Remediation: "change demolding direction or split into a multi-part mold",
		}, true
	case draft < opts.InsufficientDeg:
		sev := clamp01(1 - draft/opts.RecommendedDeg)
		return types.ConstraintViolation{
			Level:       types.ERROR,
			Description: fmt.Sprintf("insufficient draft for rigid plaster (minimum %.1f°) at face %d", opts.InsufficientDeg, face),
			Face:        face,
			Severity:    sev,
			Remediation: fmt.Sprintf("increase draft to at least %.1f°", opts.InsufficientDeg),
		}, true
	case draft < opts.RecommendedDeg:
		sev := clamp01(1 - draft/opts.RecommendedDeg)
		return types.ConstraintViolation{
			Level:       types.WARNING,
			Description: fmt.Sprintf("below recommended %.1f° draft at face %d", opts.RecommendedDeg, face),
			Face:        face,
			Severity:    sev,
			Remediation: fmt.Sprintf("increase draft toward %.1f° if tooling allows", opts.RecommendedDeg),
		}, true
	}
	return types.ConstraintViolation{}, false
}

// occlusionCheck casts a ray from center along d against the region's
// tessellated envelope and reports an ERROR if it re-enters the
// surface before leaving the envelope's bounding extent along d
// (SPEC_FULL.md §4.7). The tessellation-based hit is Newton-refined
// onto the exact limit surface (refineHit) before its depth is used to
// score severity, so the reported occlusion depth reflects the true
// surface rather than the ray-cast tessellation's faceting error.
func occlusionCheck(ev *evalsurf.Evaluator, face int, center types.Point, d types.Vector, env *envelope) (types.ConstraintViolation, bool) {
	hit, ok := env.castRay(center, d, face)
	if !ok {
		return types.ConstraintViolation{}, false
	}
	depth := hit.t
	if refined, rt, ok := refineHit(ev, hit.face, hit.u, hit.v, hit.t, center, d); ok {
		_ = refined
		depth = rt
	}
	extent := env.extentAlong(d)
	sev := 1.0
	if extent > 1e-9 {
		sev = clamp01(depth / extent)
	}
	return types.ConstraintViolation{
		Level:       types.ERROR,
		Description: fmt.Sprintf("occluded demolding path at face %d", face),
		Face:        face,
		Severity:    sev,
		Remediation: "relocate the parting line or split the region so the pull direction clears the envelope",
	}, true
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
