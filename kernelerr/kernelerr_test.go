// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package kernelerr

import (
	"testing"

	"github.com/cpmech/gosl/chk"
)

func TestNewAndIs(tst *testing.T) {

	chk.PrintTitle("NewAndIs")

	err := New(InvalidDraftAngle, "angle %v out of range", 90.0)
	if !Is(err, InvalidDraftAngle) {
		tst.Errorf("expected Is(err, InvalidDraftAngle) to be true")
	}
	if Is(err, NullSurface) {
		tst.Errorf("expected Is(err, NullSurface) to be false")
	}
}

func TestIsRejectsNilError(tst *testing.T) {

	chk.PrintTitle("IsRejectsNilError")

	var plain error
	if Is(plain, InvalidCage) {
		tst.Errorf("expected Is(nil, ...) to be false")
	}
}

func TestWithAttachments(tst *testing.T) {

	chk.PrintTitle("WithAttachments")

	err := New(InvalidFace, "bad face").WithFace(7).WithVertex(3).WithParam(0.5, 0.25)
	if err.Face == nil || *err.Face != 7 {
		tst.Errorf("expected Face=7, got %v", err.Face)
	}
	if err.Vertex == nil || *err.Vertex != 3 {
		tst.Errorf("expected Vertex=3, got %v", err.Vertex)
	}
	if err.Param == nil || err.Param[0] != 0.5 || err.Param[1] != 0.25 {
		tst.Errorf("expected Param=[0.5,0.25], got %v", err.Param)
	}
}

func TestKindStringCoversAllKinds(tst *testing.T) {

	chk.PrintTitle("KindStringCoversAllKinds")

	kinds := []Kind{
		InvalidCage, InvalidFace, ParameterOutOfRange, InvalidDraftAngle,
		InvalidWallThickness, InvalidNURBSData, NotInitialized, AlreadyRefined,
		DegenerateMetric, DegenerateTriangle, EigenSolverDidNotConverge,
		FittingToleranceExceeded, BooleanOperationFailed, NullSurface,
		SplitNotSeparating, MultiFaceFitDeferred, Cancelled,
	}
	for _, k := range kinds {
		if k.String() == "Unknown" {
			tst.Errorf("kind %d has no String() case", int(k))
		}
	}
}
