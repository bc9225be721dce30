// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package csr implements the retarded-time localizer (spec.md §4.4) and the
// CSR integrand/quadrature (spec.md §4.5): the two subsystems that, together
// with densf.Tracker, carry the algorithmic weight of the self-field
// computation.
package csr

import (
	"math"

	"github.com/cpmech/csr2d/latt"
)

// SlopeHistory is a small append-only, linearly-interpolated table of the
// beam's longitudinal tilt k(s') = slope recorded at each step position;
// it is the "local tilt factor" the localizer's quadratic needs (spec.md
// §4.4 design note: the formula uses a single tilt scalar k(s'), exposed
// behind this narrow interface so the kernel can be swapped later).
type SlopeHistory struct {
	S []float64
	K []float64
}

// Append records the beam's slope at the current s-position; s must be
// monotone-increasing
func (o *SlopeHistory) Append(s, k float64) {
	o.S = append(o.S, s)
	o.K = append(o.K, k)
}

// At returns k(s') via linear interpolation, clamped to the first/last
// recorded value outside the recorded range
func (o *SlopeHistory) At(s float64) float64 {
	n := len(o.S)
	if n == 0 {
		return 0
	}
	if s <= o.S[0] {
		return o.K[0]
	}
	if s >= o.S[n-1] {
		return o.K[n-1]
	}
	lo, hi := 0, n-1
	for hi-lo > 1 {
		mid := (lo + hi) / 2
		if o.S[mid] <= s {
			lo = mid
		} else {
			hi = mid
		}
	}
	w := (s - o.S[lo]) / (o.S[hi] - o.S[lo])
	return o.K[lo]*(1-w) + o.K[hi]*w
}

// Localize solves the light-cone equation ||r(s,x) - r(s',x')|| = t - s' for
// the transverse offset x' on the normal at s', given the tilt factor k at
// s'. Reproduced verbatim from the source (spec.md §4.4, §9 design note);
// both roots are returned.
func Localize(table *latt.Table, x, s, t, sp, k float64) (xp1, xp2 float64) {
	X0s := table.Sample(latt.FieldX0, s)
	Y0s := table.Sample(latt.FieldY0, s)
	X0sp := table.Sample(latt.FieldX0, sp)
	Y0sp := table.Sample(latt.FieldY0, sp)
	nsx := table.Sample(latt.FieldNx, s)
	nsy := table.Sample(latt.FieldNy, s)
	nspx := table.Sample(latt.FieldNx, sp)
	nspy := table.Sample(latt.FieldNy, sp)

	k2 := k * k

	term := -X0s*X0s*nspy*nspy*k2 + X0s*X0s +
		2*X0s*X0sp*nspy*nspy*k2 -
		2*X0s*X0sp + 2*X0s*Y0s*nspx*nspy*k2 -
		2*X0s*Y0sp*nspx*nspy*k2 -
		2*X0s*nsx*nspy*nspy*k2*x +
		2*X0s*nsx*x + 2*X0s*nsy*nspx*nspy*k2*x -
		2*X0s*nspx*k*sp + 2*X0s*nspx*k*t -
		X0sp*X0sp*nspy*nspy*k2 +
		X0sp*X0sp - 2*X0sp*Y0s*nspx*nspy*k2 +
		2*X0sp*Y0sp*nspx*nspy*k2 + 2*X0sp*nsx*nspy*nspy*k2*x -
		2*X0sp*nsx*x - 2*X0sp*nsy*nspx*nspy*k2*x +
		2*X0sp*nspx*k*sp - 2*X0sp*nspx*k*t -
		Y0s*Y0s*nspx*nspx*k2 + Y0s*Y0s + 2*Y0s*Y0sp*nspx*nspx*k2 -
		2*Y0s*Y0sp + 2*Y0s*nsx*nspx*nspy*k2*x -
		2*Y0s*nsy*nspx*nspx*k2*x + 2*Y0s*nsy*x -
		2*Y0s*nspy*k*sp + 2*Y0s*nspy*k*t -
		Y0sp*Y0sp*nspx*nspx*k2 + Y0sp*Y0sp -
		2*Y0sp*nsx*nspx*nspy*k2*x +
		2*Y0sp*nsy*nspx*nspx*k2*x -
		2*Y0sp*nsy*x + 2*Y0sp*nspy*k*sp -
		2*Y0sp*nspy*k*t - nsx*nsx*nspy*nspy*k2*x*x +
		nsx*nsx*x*x + 2*nsx*nsy*nspx*nspy*k2*x*x -
		2*nsx*nspx*k*sp*x + 2*nsx*nspx*k*t*x -
		nsy*nsy*nspx*nspx*k2*x*x + nsy*nsy*x*x -
		2*nsy*nspy*k*sp*x + 2*nsy*nspy*k*t*x +
		nspx*nspx*k2*sp*sp - 2*nspx*nspx*k2*sp*t +
		nspx*nspx*k2*t*t + nspy*nspy*k2*sp*sp - 2*nspy*nspy*k2*sp*t +
		nspy*nspy*k2*t*t

	if term < 0 {
		return math.NaN(), math.NaN()
	}
	term = math.Sqrt(term)

	denom := nspx*nspx*k2 + nspy*nspy*k2 - 1
	num := t - sp +
		X0s*nspx*k - X0sp*nspx*k +
		Y0s*nspy*k - Y0sp*nspy*k +
		nsx*nspx*k*x + nsy*nspy*k*x

	xp1 = k * (num - term) / denom
	xp2 = k * (num + term) / denom
	return
}
