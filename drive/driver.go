// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package drive implements the step loop that ties every other package
// together (spec.md §4.6): for each lattice step it tracks the beam,
// deposits and appends the density/velocity history, and, on the
// wake-computation cadence, localizes and integrates the CSR self-field
// over the observation mesh and kicks the beam.
package drive

import (
	"fmt"
	"math"

	"github.com/cpmech/csr2d/beam"
	"github.com/cpmech/csr2d/csr"
	"github.com/cpmech/csr2d/densf"
	"github.com/cpmech/csr2d/inp"
	"github.com/cpmech/csr2d/latt"
	"github.com/cpmech/csr2d/partition"
	"github.com/cpmech/csr2d/plotdbg"
	"github.com/cpmech/csr2d/transport"
	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"
)

// Statistics is one step's worth of recorded scalars (spec.md §4.6 step 5,
// §6 output section).
type Statistics struct {
	S       float64 // arc length at the end of the step
	GEmitX  float64 // geometric emittance
	NEmitX  float64 // normalized emittance
	BetaX   float64
	AlphaX  float64
	SigmaX  float64
	SigmaZ  float64
	SigmaE  float64
	Slope   float64 // Beam.Slope[0], the z-x correlation
	Cx      float64 // centroid x
	CxP     float64 // centroid x'
	EtaX    float64 // dispersion, R[0][5] of the cumulative map
	EtaXP   float64 // R[1][5]
	R56     float64
	R51     float64
	R52     float64

	GEmitXMinusDispersion float64
	NEmitXMinusDispersion float64
	BetaXMinusDispersion  float64
	AlphaXMinusDispersion float64

	FormationLength float64 // L_f at this step, for the optional debug curve
}

// ResultSink persists per-step results (spec.md §6). The driver calls
// WriteParticles/WriteWakes on the wake-computation cadence; it does not
// call WriteStatistics, whose rows are kept in History for the caller to
// persist after the run. out.Writer satisfies
// this structurally; it is declared here rather than imported from out
// because out already imports drive for the Statistics type, and Go
// forbids the reverse import.
type ResultSink interface {
	WriteStatistics(step int, s Statistics) error
	WriteParticles(step int, particles [][]float64) error
	WriteWakes(step int, xgrid, zgrid []float64, dEdct, xKick [][]float64) error
}

// Driver owns the beam, lattice table, density history and slope history,
// and runs the per-element integration loop.
type Driver struct {
	Cfg    *inp.Config
	Table  *latt.Table
	Beam   *beam.Beam
	Track  *densf.Tracker
	Slopes *csr.SlopeHistory
	Comm   partition.Comm

	Rtot    transport.R6 // cumulative transport map, s=0 to current s
	History []Statistics

	// Writer, if non-nil, receives per-wake-step particles/wakes as the run
	// progresses (spec.md §6); per-step statistics stay in History. Left nil
	// to run without persistence.
	Writer ResultSink
	// PlotDir, if non-empty, enables the optional debug plots
	// (CSRComputation.PlotDebug) rendered with plotdbg into this directory.
	PlotDir string

	// intermediate per-element state, valid only during Run
	formationLength float64
	lastWakeDs      float64 // step-length scale applied by the most recent wake kick, for tests
}

// NewDriver builds a driver from a fully-defaulted configuration. comm is
// the collective used to split the observation mesh across ranks; pass
// partition.SerialComm{} for a single-process run.
func NewDriver(cfg *inp.Config, comm partition.Comm) *Driver {
	table := latt.Build(cfg.InputLattice.Elements, 1e-4)
	b := beam.NewBeam(cfg.InputBeam)

	di := cfg.DistributionInterpolation
	xExtent := 10 * b.SigmaX
	if xExtent == 0 {
		xExtent = 1e-3
	}
	zExtent := 10 * cfg.InputBeam.SigmaZ
	track := densf.NewTracker(di.Nx, di.Nz, xExtent, zExtent, di.Nt, cfg.ParticleDeposition.Smoothing)

	return &Driver{
		Cfg:    cfg,
		Table:  table,
		Beam:   b,
		Track:  track,
		Slopes: &csr.SlopeHistory{},
		Comm:   comm,
		Rtot:   transport.Identity(),
	}
}

// Run advances the beam through every lattice element, recording
// Statistics after every step and, when CSRComputation.ComputeCSR is set,
// computing and optionally applying the CSR wake every nsep steps
// (spec.md §4.6).
func (o *Driver) Run() error {
	o.depositAndAppend()
	o.recordSlope()

	for ei, elem := range o.Cfg.InputLattice.Elements {
		steps := elem.Steps
		if steps < 1 {
			steps = 1
		}
		dL := elem.L / float64(steps)
		nsep := elem.Nsep
		if nsep < 1 {
			nsep = 1
		}

		for step := 0; step < steps; step++ {
			isFirst := step == 0
			isLast := step == steps-1
			r := transport.For(string(elem.Type), dL, elem.Angle/float64(steps), elem.Strength, elem.E1, elem.E2, isFirst, isLast)

			if err := o.Beam.Track(r, dL); err != nil {
				return err
			}
			o.Rtot = transport.Mul(r, o.Rtot)

			o.updateFormationLength(elem, ei)
			o.depositAndAppend()
			o.recordSlope()

			if o.Cfg.CSRComputation.ComputeCSR && (step+1)%nsep == 0 {
				// spec.md §4.6 step 4: the kick scales by the arc length
				// covered since the last wake computation, dL*nsep, not by
				// a single step's dL (confirmed against the Python
				// original's DL*self.lattice.nsep[ele_count]).
				ds := dL * float64(nsep)
				if err := o.computeAndApplyWake(ds, len(o.History)); err != nil {
					return err
				}
			}

			o.History = append(o.History, o.snapshot())
		}
	}

	if o.Cfg.CSRComputation.PlotDebug && o.PlotDir != "" && o.Comm.Rank() == 0 {
		o.plotHistory()
	}
	return nil
}

// plotHistory renders the run-long debug curves (formation length and
// emittance vs s) once the step loop has finished.
func (o *Driver) plotHistory() {
	n := len(o.History)
	s := make([]float64, n)
	lf := make([]float64, n)
	gemit := make([]float64, n)
	gemitMinusDisp := make([]float64, n)
	for i, h := range o.History {
		s[i] = h.S
		lf[i] = h.FormationLength
		gemit[i] = h.GEmitX
		gemitMinusDisp[i] = h.GEmitXMinusDispersion
	}
	fnkey := o.Cfg.CSRComputation.WriteName
	plotdbg.FormationLengthCurve(s, lf, o.PlotDir, fnkey)
	plotdbg.EmittanceCurve(s, gemit, gemitMinusDisp, o.PlotDir, fnkey)
}

// depositAndAppend deposits the current particle cloud onto the tracker's
// grid and appends the resulting slice to the rolling history. Tracker.
// Deposit expects each particle's absolute longitudinal coordinate
// (z_abs = s_ref + z_bunchframe, consistent with the co-propagating
// reference s_ref(t) = t convention used throughout package csr), so the
// bunch-frame Z column is offset by the beam's current arc-length position
// before being passed in.
func (o *Driver) depositAndAppend() {
	n := len(o.Beam.Particles)
	x := make([]float64, n)
	z := make([]float64, n)
	xp := make([]float64, n)
	for i, p := range o.Beam.Particles {
		x[i] = p[beam.X] - beam.Polyval(o.Beam.Slope, p[beam.Z])
		z[i] = o.Beam.Position + p[beam.Z]
		xp[i] = p[beam.Xp]
	}
	slice := o.Track.Deposit(x, z, xp, o.Beam.Position)
	o.Track.Append(slice, o.formationLength, o.Cfg.DistributionInterpolation.NFormationLength)
}

// recordSlope appends the current beam slope to the tilt-factor history
// the localizer reads
func (o *Driver) recordSlope() {
	o.Slopes.Append(o.Beam.Position, o.Beam.Slope[0])
}

// updateFormationLength recomputes L_f = (24 R^2 sigma_z)^(1/3) using the
// current element's bend radius, honoring the FormationLengthModel open
// question (spec.md §9): InBendAlways reuses the last dipole's R even in a
// following drift, matching the original run loop; BendExit instead uses,
// in that drift, the alternative closed form the original source left dead
// in a comment (with the last dipole's R and angle), falling back to the
// bend formula when that form's denominator is not positive. Inside a
// dipole both models use the bend formula.
func (o *Driver) updateFormationLength(elem inp.LatticeElementConfig, idx int) {
	inBend := elem.Type == inp.Dipole && elem.Angle != 0
	var rho, phi float64
	if inBend {
		rho = elem.L / elem.Angle
	} else {
		rho, phi = o.lastDipole(idx)
	}
	if rho == 0 {
		o.formationLength = 0
		return
	}
	if !inBend && o.Cfg.CSRComputation.FormationLengthModel == inp.BendExit {
		denom := rho*phi*phi*phi - 6*o.Beam.SigmaZ
		if denom > 0 {
			o.formationLength = 3 * rho * rho * phi * phi * phi * phi / (4 * denom)
			return
		}
	}
	o.formationLength = math.Cbrt(24 * rho * rho * o.Beam.SigmaZ)
}

// lastDipole walks backward from idx to find the most recent dipole's
// bend radius and bend angle, for elements that are themselves drifts/quads
func (o *Driver) lastDipole(idx int) (rho, angle float64) {
	elems := o.Cfg.InputLattice.Elements
	for i := idx; i >= 0; i-- {
		if elems[i].Type == inp.Dipole && elems[i].Angle != 0 {
			return elems[i].L / elems[i].Angle, elems[i].Angle
		}
	}
	return 0, 0
}

// computeAndApplyWake builds the observation mesh, computes the wake at
// every mesh point (this rank's partition, then gathered), and applies the
// kick to the beam, scaled by ds (dL*nsep, the arc length since the last
// wake computation), if ApplyCSR is set (spec.md §4.6 step 4). step
// identifies this wake computation for the result writer and the debug
// plot file name, and is not otherwise used.
func (o *Driver) computeAndApplyWake(ds float64, step int) error {
	cc := o.Cfg.CSRComputation
	mesh := csr.NewObservationMesh(0, o.Beam.SigmaX, o.Beam.MeanZ, o.Beam.SigmaZ, cc.Xlim, cc.Zlim, cc.Xbins, cc.Zbins)

	nx, nz := len(mesh.XrangeTransformed), len(mesh.Zrange)
	w := nx * nz
	rank, nproc := o.Comm.Rank(), o.Comm.Size()
	lo, hi := partition.Range(w, nproc, rank)

	ic := o.Cfg.CSRIntegration
	p := csr.Params{Xbins: ic.Xbins, Zbins: ic.Zbins, NFormationLength: ic.NFormationLength, EpsR: cc.EpsR}

	localDEdct, localXKick := o.localWake(mesh, p, lo, hi)

	fullDEdct := o.Comm.Gather(localDEdct, w)
	fullXKick := o.Comm.Gather(localXKick, w)

	dEdctGrid := make([][]float64, nx)
	xKickGrid := make([][]float64, nx)
	for ix := 0; ix < nx; ix++ {
		dEdctGrid[ix] = fullDEdct[ix*nz : (ix+1)*nz]
		xKickGrid[ix] = fullXKick[ix*nz : (ix+1)*nz]
	}

	o.lastWakeDs = ds
	if cc.ApplyCSR {
		o.Beam.ApplyWakes(dEdctGrid, xKickGrid, mesh.XrangeTransformed, mesh.Zrange, ds)
	}

	// persistence and debug plotting are rank-0-only; Writer/PlotDir are
	// only ever set on the writing rank (spec.md §6)
	if o.Writer != nil {
		if cc.WriteWakes {
			if err := o.Writer.WriteWakes(step, mesh.XrangeTransformed, mesh.Zrange, dEdctGrid, xKickGrid); err != nil {
				io.PfRed("drive: error writing wakes for step %d: %v\n", step, err)
			}
		}
		if cc.WriteBeam {
			if err := o.Writer.WriteParticles(step, o.Beam.Particles); err != nil {
				io.PfRed("drive: error writing particles for step %d: %v\n", step, err)
			}
		}
	}
	if cc.PlotDebug && o.PlotDir != "" {
		plotdbg.WakeHeatmap(mesh.XrangeTransformed, mesh.Zrange, dEdctGrid, o.PlotDir, fmt.Sprintf("%s-step%04d", cc.WriteName, step))
	}
	return nil
}

// localWake computes the wake at this rank's [lo,hi) slice of the flattened
// observation mesh (ix*nz+iz ordering), without gathering or applying it.
// Factored out of computeAndApplyWake so the partition invariance spec.md
// §8 property 5 requires (the gathered result is independent of how many
// ranks split the work) can be tested without an MPI runtime.
func (o *Driver) localWake(mesh csr.ObservationMesh, p csr.Params, lo, hi int) (dEdct, xKick []float64) {
	nz := len(mesh.Zrange)
	dEdct = make([]float64, hi-lo)
	xKick = make([]float64, hi-lo)
	for idx := lo; idx < hi; idx++ {
		ix := idx / nz
		iz := idx % nz
		xt := mesh.XrangeTransformed[ix]
		z := mesh.Zrange[iz]
		x := xt + beam.Polyval(o.Beam.Slope, z)
		s := o.Beam.Position
		// the observer's co-moving coordinate is z (bunch-frame); since
		// z_abs = s at the co-propagating reference, t = s - z recovers
		// that zeta exactly (package csr's s - t convention)
		t := s - z

		dE, xk := csr.ComputeWake(o.Table, o.Track, o.Slopes, s, x, t, o.Beam.SigmaX, o.Beam.SigmaZ, o.formationLength, o.Beam.Charge, p, o.Beam.Step)
		if math.IsNaN(dE) || math.IsInf(dE, 0) || math.IsNaN(xk) || math.IsInf(xk, 0) {
			chk.Panic("drive: non-finite wake at s=%v x=%v z=%v", s, x, z)
		}
		dEdct[idx-lo] = dE
		xKick[idx-lo] = xk
	}
	return
}

// snapshot records the current Statistics row (spec.md §4.6 step 5)
func (o *Driver) snapshot() Statistics {
	emit, normEmit, betaD, alphaD := o.Beam.StatsMinusDispersion(o.Rtot)
	return Statistics{
		S:      o.Beam.Position,
		GEmitX: o.Beam.NormEmitX / o.Beam.InitGamma,
		NEmitX: o.Beam.NormEmitX,
		BetaX:  o.Beam.BetaX,
		AlphaX: o.Beam.AlphaX,
		SigmaX: o.Beam.SigmaX,
		SigmaZ: o.Beam.SigmaZ,
		SigmaE: o.Beam.SigmaDelta,
		Slope:  o.Beam.Slope[0],
		Cx:     o.Beam.MeanX,
		CxP:    o.Beam.MeanXp,
		EtaX:   o.Rtot[0][5],
		EtaXP:  o.Rtot[1][5],
		R56:    o.Rtot[4][5],
		R51:    o.Rtot[4][0],
		R52:    o.Rtot[4][1],

		GEmitXMinusDispersion: emit,
		NEmitXMinusDispersion: normEmit,
		BetaXMinusDispersion:  betaD,
		AlphaXMinusDispersion: alphaD,

		FormationLength: o.formationLength,
	}
}
