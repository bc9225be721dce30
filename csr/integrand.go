// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package csr

import (
	"math"

	"github.com/cpmech/csr2d/densf"
	"github.com/cpmech/csr2d/latt"
)

// Fields groups together the observer-side kinematic quantities that do not
// depend on the source point (s', x'): the observer's own transverse
// velocity vx(t,x,z-t), needed by the (v - v_ret) terms of the longitudinal
// kernel
type Fields struct {
	Vx float64
}

// ObserverFields samples the observer's own transverse velocity from the
// tracker at co-moving coordinate zeta = z - t, where z is the observer's
// absolute longitudinal coordinate (its design-orbit arc length, in the
// same z_abs = s convention densf.Tracker.Deposit uses)
func ObserverFields(tracker *densf.Tracker, t, x, z float64) Fields {
	return Fields{Vx: tracker.Query(t, x, z-t, densf.FieldVx)}
}

// Integrand evaluates the 2-D wake integrand at one source sample (s', x'),
// for an observer at (s, x, t) with observer fields obs (spec.md §4.5).
// When r falls below epsR, or any retarded-field read falls outside the
// history support, the sample contributes 0.
func Integrand(table *latt.Table, tracker *densf.Tracker, s, x, t, sp, xp float64, obs Fields, epsR float64) (iz, ix float64) {
	X0s := table.Sample(latt.FieldX0, s)
	Y0s := table.Sample(latt.FieldY0, s)
	X0sp := table.Sample(latt.FieldX0, sp)
	Y0sp := table.Sample(latt.FieldY0, sp)
	nsx := table.Sample(latt.FieldNx, s)
	nsy := table.Sample(latt.FieldNy, s)
	nspx := table.Sample(latt.FieldNx, sp)
	nspy := table.Sample(latt.FieldNy, sp)
	tausx := table.Sample(latt.FieldTaux, s)
	tausy := table.Sample(latt.FieldTauy, s)
	tauspx := table.Sample(latt.FieldTaux, sp)
	tauspy := table.Sample(latt.FieldTauy, sp)
	rho := table.PiecewiseRho(sp)

	drx := X0s - X0sp + x*nsx - xp*nspx
	dry := Y0s - Y0sp + x*nsy - xp*nspy
	r := math.Sqrt(drx*drx + dry*dry)
	if r < epsR {
		return 0, 0
	}

	tRet := t - r
	zeta := sp - tRet
	densityRet := tracker.Query(tRet, xp, zeta, densf.FieldDensity)
	densityXRet := tracker.Query(tRet, xp, zeta, densf.FieldDRhoDx)
	densityZRet := tracker.Query(tRet, xp, zeta, densf.FieldDRhoDz)
	vxRet := tracker.Query(tRet, xp, zeta, densf.FieldVx)
	vxXRet := tracker.Query(tRet, xp, zeta, densf.FieldDVxDx)

	sigma := 1 + xp*rho

	tauDotTau := tauspx*tausx + tauspy*tausy
	nspDotTaus := nspx*tausx + nspy*tausy
	nsDotTausp := nsx*tauspx + nsy*tauspy

	numerator1 := sigma * ((nspDotTaus + (obs.Vx-vxRet)*tauDotTau) * densityXRet -
		vxRet*nspDotTaus/sigma*densityZRet)
	numerator2 := -(tauDotTau + (obs.Vx-vxRet)*nsDotTausp) * densityRet * vxXRet

	iz = numerator1/r + numerator2/r

	nMinusNpX := nsx - nspx
	nMinusNpY := nsy - nspy
	part1 := drx*nMinusNpX + dry*nMinusNpY
	part2 := nsDotTausp

	// velocity at the retarded point and its divergence, used to
	// reconstruct d(density)/dt from spatial fields (spec.md §4.5)
	velRetX := tauspx + vxRet*nspx
	velRetY := tauspy + vxRet*nspy
	gradDensityRetX := densityXRet*nspx + densityZRet/sigma*tauspx
	gradDensityRetY := densityXRet*nspy + densityZRet/sigma*tauspy
	divVel := vxXRet
	partialDensity := -(velRetX*gradDensityRetX + velRetY*gradDensityRetY) - densityRet*divVel

	w1 := sigma * part1 / (r * r * r) * densityRet
	w2 := sigma * part1 / (r * r) * partialDensity
	w3 := -sigma * part2 / r * partialDensity

	ix = w1 + w2 + w3
	return
}
