// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command moldkiln drives the kernel end to end against a
// subd_control_cage JSON file: ingest, tessellate, run both discovery
// lenses, validate draft manufacturability per discovered region, fit
// and draft a mold surface for every single-face region, and emit a
// ceramic_mold_set dictionary.
package main

import (
	"flag"
	"os"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"

	"github.com/kilnforge/subdmold/bridge"
	"github.com/kilnforge/subdmold/constraint"
	"github.com/kilnforge/subdmold/evalsurf"
	"github.com/kilnforge/subdmold/export"
	"github.com/kilnforge/subdmold/kernelerr"
	"github.com/kilnforge/subdmold/laplacian"
	"github.com/kilnforge/subdmold/lens"
	"github.com/kilnforge/subdmold/mold"
	"github.com/kilnforge/subdmold/session"
	"github.com/kilnforge/subdmold/types"
)

func main() {
	defer func() {
		if err := recover(); err != nil {
			chk.Verbose = true
			io.PfRed("ERROR: %v\n", err)
			os.Exit(1)
		}
	}()

	flag.Parse()
	if len(flag.Args()) < 1 {
		chk.Panic("usage: moldkiln <control_cage.json> [out_dir]")
	}
	cagePath := flag.Arg(0)
	outDir := "."
	if len(flag.Args()) > 1 {
		outDir = flag.Arg(1)
	}

	io.Pf("moldkiln: reading %s\n", cagePath)
	data, err := io.ReadFile(cagePath)
	if err != nil {
		chk.Panic("cannot read %s: %v", cagePath, err)
	}

	cage, err := bridge.Ingest(data, false)
	if err != nil {
		chk.Panic("ingest failed: %v", err)
	}
	io.Pf("cage: %d verts, %d faces, %d creases\n", cage.NumVerts(), cage.NumFaces(), len(cage.Creases))

	opts := types.DefaultSessionOptions()
	ev := evalsurf.New(opts.Evaluator)
	if err := ev.Initialize(cage); err != nil {
		chk.Panic("evaluator init failed: %v", err)
	}

	sess := session.New()

	discoverRegions(ev, cage, opts, sess)

	moldGen := mold.New(opts.Mold)
	demoldDir := types.Vector{X: 0, Y: 0, Z: 1}

	var entries []export.MoldEntry
	for id, reg := range sess.Regions {
		if len(reg.FaceList()) != 1 {
			io.Pf("region %s: %d faces, deferred (multi-face fit out of scope)\n", id, len(reg.FaceList()))
			continue
		}

		report, err := constraint.Validate(ev, reg, demoldDir, opts.Draft, nil)
		if err != nil {
			io.Pfyel("region %s: constraint validation error: %v\n", id, err)
			continue
		}
		io.Pf("region %s: %d errors, %d warnings, %d features\n", id, report.Errors(), report.Warnings(), report.Features())

		fitted, err := moldGen.Fit(ev, reg, 3, 3)
		if err != nil {
			if kernelerr.Is(err, kernelerr.MultiFaceFitDeferred) {
				continue
			}
			io.Pfyel("region %s: fit failed: %v\n", id, err)
			continue
		}

		quality, err := moldGen.QualityCheck(ev, reg, fitted)
		if err == nil {
			io.Pf("region %s: fit max deviation %.4g, passes=%v\n", id, quality.MaxDeviation, quality.PassesTolerance)
		}

		drafted, err := mold.DraftTransform(fitted, demoldDir, opts.Draft.RecommendedDeg, []types.Point{fitted.At(0, 0)})
		if err != nil {
			io.Pfyel("region %s: draft transform failed: %v\n", id, err)
			drafted = fitted
		}

		entries = append(entries, export.MoldEntry{
			Surface:    drafted,
			Name:       "mold_" + id,
			RegionID:   id,
			DraftAngle: opts.Draft.RecommendedDeg,
		})
	}

	blob, err := export.Serialize(entries, map[string]interface{}{"source": cagePath}, "1970-01-01T00:00:00Z")
	if err != nil {
		chk.Panic("export failed: %v", err)
	}

	outPath := io.Sf("%s/ceramic_mold_set.json", outDir)
	if err := os.WriteFile(outPath, blob, 0644); err != nil {
		chk.Panic("cannot write %s: %v", outPath, err)
	}
	io.Pf("wrote %s (%d molds)\n", outPath, len(entries))
}

// discoverRegions runs both lenses over the cage and records every
// discovered region in sess, exactly as a host process would drive the
// kernel across a single analysis session (SPEC_FULL.md §4.11).
func discoverRegions(ev *evalsurf.Evaluator, cage *types.ControlCage, opts types.SessionOptions, sess *session.State) {
	diff := lens.NewDifferential(opts.Differential)
	diffRegions, err := diff.Discover(ev, cage, sess.NextID)
	if err != nil {
		io.Pfyel("differential lens failed: %v\n", err)
	} else {
		sess.Record("lens.differential", nil, diffRegions...)
		io.Pf("differential lens: %d regions\n", len(diffRegions))
	}

	tess, err := ev.Tessellate(opts.Evaluator.MaxLevel, opts.Evaluator.Adaptive)
	if err != nil {
		io.Pfyel("tessellate failed: %v\n", err)
		return
	}

	op := laplacian.Build("cage", tess)
	spectral := lens.NewSpectral(opts.Spectral)
	modes, err := spectral.Solve(op)
	if err != nil {
		io.Pfyel("spectral solve failed: %v\n", err)
		return
	}
	io.Pf("spectral lens: solved %d modes\n", len(modes))

	for i := 1; i < len(modes) && i <= 3; i++ {
		regions, err := spectral.ExtractRegions(modes, i, tess, op, sess.NextID)
		if err != nil {
			io.Pfyel("mode %d region extraction failed: %v\n", i, err)
			continue
		}
		sess.Record("lens.spectral", nil, regions...)
		io.Pf("spectral lens mode %d: %d regions\n", i, len(regions))
	}
}
