// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package plotdbg implements the optional debug visualizations named in
// spec.md §6 (gated by CSR_computation.plot_debug): a wake heatmap and a
// formation-length curve, built with github.com/cpmech/gosl/plt the same
// way mreten.Plot does.
package plotdbg

import (
	"github.com/cpmech/gosl/io"
	"github.com/cpmech/gosl/plt"
)

// WakeHeatmap renders the longitudinal wake dEdct(x,z) as contour lines
// and saves it to <dirout>/<fnkey>-wake.png
func WakeHeatmap(xgrid, zgrid []float64, dEdct [][]float64, dirout, fnkey string) {
	plt.Reset(false, nil)
	plt.ContourSimple(zgrid, xgrid, dEdct, "colors=['blue'], levels=20")
	plt.Gll("$z$", "$x$", "")
	plt.Save(dirout, fnkey+"-wake")
}

// FormationLengthCurve plots the formation length recorded at each s as the
// beam traverses the lattice
func FormationLengthCurve(s, lf []float64, dirout, fnkey string) {
	plt.Reset(false, nil)
	plt.Plot(s, lf, "'b-', clip_on=0")
	plt.Gll("$s$", "$L_f$", "")
	plt.Save(dirout, fnkey+"-formation-length")
}

// EmittanceCurve plots the projected geometric emittance (with and without
// the dispersive subtraction) over s
func EmittanceCurve(s, gemit, gemitMinusDisp []float64, dirout, fnkey string) {
	plt.Reset(false, nil)
	plt.Plot(s, gemit, io.Sf("'b-', label='%s', clip_on=0", "raw"))
	plt.Plot(s, gemitMinusDisp, io.Sf("'r--', label='%s', clip_on=0", "dispersion-subtracted"))
	plt.Gll("$s$", "$\\epsilon_x$", "leg_out=1")
	plt.Save(dirout, fnkey+"-emittance")
}
