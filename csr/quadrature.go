// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package csr

import (
	"github.com/cpmech/csr2d/densf"
	"github.com/cpmech/csr2d/latt"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/integrate"
)

// K converts the charge-scaled integral into MeV/m: 8.98755e3 MeV/m per
// C/m^2, times the bunch charge Q in Coulombs (spec.md §3)
func K(charge float64) float64 {
	return 8.98755e3 * charge
}

// Params bundles the quadrature resolution and the numerical edge-case
// tolerance (spec.md §4.5, §6 CSR_integration section)
type Params struct {
	Xbins, Zbins     int
	NFormationLength float64
	EpsR             float64
}

// ComputeWake evaluates the wake at one observer (s, x, t) by trapezoidal
// double integration over the two panels the localizer brackets (spec.md
// §4.4-§4.5): the near panel around the observer's own retarded cone, and a
// panel one formation length further upstream to capture the slowly
// decaying tail.
func ComputeWake(table *latt.Table, tracker *densf.Tracker, slopes *SlopeHistory, s, x, t, sigmaX, sigmaZ, formationLength, charge float64, p Params, step int) (dEdct, xKick float64) {
	obs := ObserverFields(tracker, t, x, s)
	panel1, panel2 := Bracket(table, slopes, s, x, t, sigmaX, sigmaZ, formationLength, p.Zbins, step)

	k := K(charge)
	dEdct1, xKick1 := integratePanel(table, tracker, s, x, t, obs, panel1, p)
	dEdct2, xKick2 := integratePanel(table, tracker, s, x, t, obs, panel2, p)

	dEdct = -k * (dEdct1 + dEdct2)
	xKick = k * (xKick1 + xKick2)
	return
}

// integratePanel performs the nested trapezoidal quadrature over one panel,
// returning the unscaled (pre-K) integrals
func integratePanel(table *latt.Table, tracker *densf.Tracker, s, x, t float64, obs Fields, panel Panel, p Params) (iIz, iIx float64) {
	sp := linspace(panel.SMin, panel.SMax, p.Zbins)
	xp := linspace(panel.XMin, panel.XMax, p.Xbins)

	innerIz := make([]float64, len(sp))
	innerIx := make([]float64, len(sp))
	rowIz := make([]float64, len(xp))
	rowIx := make([]float64, len(xp))
	for row, spv := range sp {
		for col, xpv := range xp {
			rowIz[col], rowIx[col] = Integrand(table, tracker, s, x, t, spv, xpv, obs, p.EpsR)
		}
		innerIz[row] = integrate.Trapezoidal(xp, rowIz)
		innerIx[row] = integrate.Trapezoidal(xp, rowIx)
	}
	iIz = integrate.Trapezoidal(sp, innerIz)
	iIx = integrate.Trapezoidal(sp, innerIx)
	return
}

// linspace returns n uniformly spaced points spanning [lo, hi]. With a
// degenerate (lo==hi) panel, it returns n repeats of lo so the outer
// trapezoidal sum is well-defined (zero width, zero contribution).
func linspace(lo, hi float64, n int) []float64 {
	if n < 2 {
		return []float64{lo}
	}
	out := make([]float64, n)
	floats.Span(out, lo, hi)
	return out
}
