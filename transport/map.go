// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package transport is an external collaborator (spec.md §6): it supplies
// the 6x6 linear transport maps for (L, angle, k1, E1, E2) and the Twiss
// propagator R -> (beta, alpha). The CSR engine only consumes these through
// the narrow interfaces below; the maps themselves are standard linear
// beam-optics first order transfer matrices, not part of the hard core.
package transport

import "math"

// R6 is a 6x6 linear transport matrix acting on (x, x', y, y', z, delta)
type R6 [6][6]float64

// Identity returns the 6x6 identity matrix
func Identity() R6 {
	var r R6
	for i := 0; i < 6; i++ {
		r[i][i] = 1
	}
	return r
}

// Mul returns a*b, the composition that applies b first, then a
func Mul(a, b R6) R6 {
	var out R6
	for i := 0; i < 6; i++ {
		for j := 0; j < 6; j++ {
			sum := 0.0
			for k := 0; k < 6; k++ {
				sum += a[i][k] * b[k][j]
			}
			out[i][j] = sum
		}
	}
	return out
}

// Drift returns the first-order map for a field-free straight section of
// length L
func Drift(L float64) R6 {
	r := Identity()
	r[0][1] = L
	r[2][3] = L
	r[4][5] = 0 // ultrarelativistic, no R56 in a bare drift at first order
	return r
}

// Dipole returns the first-order sector-bend map of length L and bend angle
// angle, with edge-focusing angles E1 (entrance) and E2 (exit)
func Dipole(L, angle, E1, E2 float64) R6 {
	if angle == 0 {
		return Drift(L)
	}
	rho := L / angle
	k := 1 / rho
	cs, sn := math.Cos(angle), math.Sin(angle)

	r := Identity()
	r[0][0] = cs
	r[0][1] = rho * sn
	r[0][5] = rho * (1 - cs)
	r[1][0] = -sn / rho
	r[1][1] = cs
	r[1][5] = sn
	r[4][0] = -sn
	r[4][1] = -rho * (1 - cs)
	r[4][5] = L - rho*sn

	// entrance/exit edge focusing (hard-edge fringe, thin-lens approximation)
	entrance := Identity()
	entrance[1][0] = k * math.Tan(E1)
	exit := Identity()
	exit[1][0] = k * math.Tan(E2)

	return Mul(exit, Mul(r, entrance))
}

// Quad returns the first-order normal-quadrupole map of length L and
// strength k1 (focusing in x for k1>0)
func Quad(L, k1 float64) R6 {
	r := Identity()
	if k1 == 0 {
		return Drift(L)
	}
	if k1 > 0 {
		sq := math.Sqrt(k1)
		cs, sn := math.Cos(sq*L), math.Sin(sq*L)
		r[0][0], r[0][1] = cs, sn/sq
		r[1][0], r[1][1] = -sq*sn, cs
		sq2 := sq
		csh, snh := math.Cosh(sq2*L), math.Sinh(sq2*L)
		r[2][2], r[2][3] = csh, snh/sq2
		r[3][2], r[3][3] = sq2*snh, csh
	} else {
		sq := math.Sqrt(-k1)
		csh, snh := math.Cosh(sq*L), math.Sinh(sq*L)
		r[0][0], r[0][1] = csh, snh/sq
		r[1][0], r[1][1] = sq*snh, csh
		cs, sn := math.Cos(sq*L), math.Sin(sq*L)
		r[2][2], r[2][3] = cs, sn/sq
		r[3][2], r[3][3] = -sq*sn, cs
	}
	return r
}

// For builds the map for a single integration step of a given element,
// honoring the edge-focusing convention of spec.md §4.6: E1 acts only on
// the first step of a dipole element, E2 only on the last
func For(kind string, L, angle, k1, E1, E2 float64, isFirstStep, isLastStep bool) R6 {
	switch kind {
	case "dipole":
		e1, e2 := 0.0, 0.0
		if isFirstStep {
			e1 = E1
		}
		if isLastStep {
			e2 = E2
		}
		return Dipole(L, angle, e1, e2)
	case "quad":
		return Quad(L, k1)
	default:
		return Drift(L)
	}
}

// TwissPropagate returns the propagated (beta, alpha, gamma) Twiss
// parameters given the 2x2 block R = [[r11,r12],[r21,r22]] of the
// cumulative transport matrix and the initial (alpha0, beta0)
func TwissPropagate(r11, r12, r21, r22, alpha0, beta0 float64) (beta, alpha, gamma float64) {
	gamma0 := (1 + alpha0*alpha0) / beta0
	beta = r11*r11*beta0 - 2*r11*r12*alpha0 + r12*r12*gamma0
	alpha = -r11*r21*beta0 + (r11*r22+r12*r21)*alpha0 - r12*r22*gamma0
	gamma = (1 + alpha*alpha) / beta
	return
}
