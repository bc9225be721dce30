// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package csr

import (
	"math"

	"github.com/cpmech/csr2d/latt"
	"github.com/cpmech/gosl/chk"
)

// Panel is one rectangular integration region in (s', x')
type Panel struct {
	SMin, SMax float64
	XMin, XMax float64
}

// NProbes is the number of samples used to scan the wide s' range for the
// bracketing rule; spec.md §4.4 requires at least 1e4
const NProbes = 10000

// Bracket implements the bracketing rule of spec.md §4.4: a wide scan over
// s' classifies whether the two causal sheets are parallel/untilted (both
// roots of every probe satisfy |x'| < 5 sigma_x), in which case the default
// box is used; otherwise the bracket is the bounding box of the valid
// probes. A second panel is added one formation length upstream to capture
// the slowly decaying tail, probed at the configured zbins resolution so it
// reuses the same linspace density as the integration mesh it feeds
// (matching the original's reuse of a single sp linspace for both probing
// and integration).
//
// step is passed through only for the diagnostic context of the fatal
// numerical error spec.md §7 requires when the localizer is degenerate
// (discriminant < 0 for every probe in the wide scan): that condition is
// distinct from every probe landing outside the 5 sigma_x validity window
// (a real but out-of-range root), which instead falls back to the default
// box.
func Bracket(table *latt.Table, slopes *SlopeHistory, s, x, t, sigmaX, sigmaZ, formationLength float64, zbins, step int) (panel1, panel2 Panel) {
	spLo := math.Max(s-100*sigmaZ, 0)
	spHi := s + 100*sigmaZ
	dsp := (spHi - spLo) / float64(NProbes-1)

	allValid := true
	anyReal := false
	var validSp, validXp1, validXp2 []float64
	for i := 0; i < NProbes; i++ {
		sp := spLo + float64(i)*dsp
		k := slopes.At(sp)
		xp1, xp2 := Localize(table, x, s, t, sp, k)
		real := !math.IsNaN(xp1) && !math.IsNaN(xp2)
		if real {
			anyReal = true
		}
		valid := real && math.Abs(xp1) < 5*sigmaX && math.Abs(xp2) < 5*sigmaX
		if !valid {
			allValid = false
		} else {
			validSp = append(validSp, sp)
			validXp1 = append(validXp1, xp1)
			validXp2 = append(validXp2, xp2)
		}
	}

	if !anyReal {
		chk.Panic("csr: degenerate localizer, discriminant < 0 for every probe (s=%v, x=%v, step=%v)", s, x, step)
	}

	var smin, smax, xmin, xmax float64
	if allValid {
		xmin, xmax = x-5*sigmaX, x+5*sigmaX
		smin, smax = s-5*sigmaZ, s+5*sigmaZ
	} else if len(validSp) == 0 {
		// every probe had a real root, but none fell within 5 sigma_x of
		// the observer: fall back to the default box rather than the
		// empty bounding box
		xmin, xmax = x-5*sigmaX, x+5*sigmaX
		smin, smax = s-5*sigmaZ, s+5*sigmaZ
	} else {
		smin, smax = minMax(validSp)
		x1lo, x1hi := minMax(validXp1)
		x2lo, x2hi := minMax(validXp2)
		xmin = math.Min(x1lo, x2lo)
		xmax = math.Max(x1hi, x2hi)
	}
	panel1 = Panel{SMin: smin, SMax: smax, XMin: xmin, XMax: xmax}

	// second panel: one formation length upstream of the first panel,
	// x-extent from the xp1 root only, as in the original source
	spLo2 := math.Max(smin-formationLength, 0)
	n2 := zbins
	if n2 < 2 {
		n2 = 2
	}
	step2 := (smin - spLo2) / float64(n2-1)
	if step2 <= 0 {
		step2 = 0
	}
	xp1lo, xp1hi := math.Inf(1), math.Inf(-1)
	for i := 0; i < n2; i++ {
		sp := spLo2 + float64(i)*step2
		k := slopes.At(sp)
		xp1, _ := Localize(table, x, s, t, sp, k)
		if math.IsNaN(xp1) {
			continue
		}
		xp1lo = math.Min(xp1lo, xp1)
		xp1hi = math.Max(xp1hi, xp1)
	}
	if math.IsInf(xp1lo, 1) {
		xp1lo, xp1hi = x, x
	}
	panel2 = Panel{
		SMin: spLo2, SMax: smin,
		XMin: xp1lo - 3*sigmaX, XMax: xp1hi + 3*sigmaX,
	}
	return
}

func minMax(v []float64) (lo, hi float64) {
	lo, hi = v[0], v[0]
	for _, a := range v[1:] {
		if a < lo {
			lo = a
		}
		if a > hi {
			hi = a
		}
	}
	return
}
