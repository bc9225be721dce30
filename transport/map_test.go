// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package transport

import (
	"math"
	"testing"

	"github.com/cpmech/gosl/chk"
	"github.com/stretchr/testify/assert"
)

func Test_drift_moves_x_by_xp_times_L(tst *testing.T) {
	chk.PrintTitle("drift_moves_x_by_xp_times_L")
	r := Drift(2.5)
	assert.InDelta(tst, 1.0, r[0][0], 1e-14)
	assert.InDelta(tst, 2.5, r[0][1], 1e-14)
	assert.InDelta(tst, 2.5, r[2][3], 1e-14)
	assert.InDelta(tst, 0.0, r[4][5], 1e-14)
}

func Test_dipole_reduces_to_drift_at_zero_angle(tst *testing.T) {
	chk.PrintTitle("dipole_reduces_to_drift_at_zero_angle")
	r := Dipole(1.2, 0, 0, 0)
	d := Drift(1.2)
	for i := 0; i < 6; i++ {
		for j := 0; j < 6; j++ {
			assert.InDelta(tst, d[i][j], r[i][j], 1e-14)
		}
	}
}

func Test_dipole_bend_plane_is_symplectic(tst *testing.T) {
	chk.PrintTitle("dipole_bend_plane_is_symplectic")
	r := Dipole(1.0, 0.3, 0, 0)
	det := r[0][0]*r[1][1] - r[0][1]*r[1][0]
	assert.InDelta(tst, 1.0, det, 1e-12)
}

func Test_quad_focusing_defocusing_are_x_y_swapped(tst *testing.T) {
	chk.PrintTitle("quad_focusing_defocusing_are_x_y_swapped")
	L, k1 := 0.5, 4.0
	f := Quad(L, k1)
	d := Quad(L, -k1)
	assert.InDelta(tst, f[0][0], d[2][2], 1e-13)
	assert.InDelta(tst, f[0][1], d[2][3], 1e-13)
	assert.InDelta(tst, f[2][2], d[0][0], 1e-13)
}

func Test_quad_zero_strength_is_drift(tst *testing.T) {
	chk.PrintTitle("quad_zero_strength_is_drift")
	r := Quad(0.7, 0)
	d := Drift(0.7)
	for i := 0; i < 6; i++ {
		for j := 0; j < 6; j++ {
			assert.InDelta(tst, d[i][j], r[i][j], 1e-14)
		}
	}
}

func Test_mul_identity_is_no_op(tst *testing.T) {
	chk.PrintTitle("mul_identity_is_no_op")
	r := Dipole(1.0, 0.2, 0.05, 0.05)
	out := Mul(Identity(), r)
	for i := 0; i < 6; i++ {
		for j := 0; j < 6; j++ {
			assert.InDelta(tst, r[i][j], out[i][j], 1e-13)
		}
	}
}

func Test_for_applies_edge_angles_only_on_boundary_steps(tst *testing.T) {
	chk.PrintTitle("for_applies_edge_angles_only_on_boundary_steps")
	mid := For("dipole", 0.1, 0.05, 0, 0.1, 0.1, false, false)
	first := For("dipole", 0.1, 0.05, 0, 0.1, 0.1, true, false)
	bare := Dipole(0.1, 0.05, 0, 0)
	for i := 0; i < 6; i++ {
		for j := 0; j < 6; j++ {
			assert.InDelta(tst, bare[i][j], mid[i][j], 1e-14)
		}
	}
	assert.False(tst, first == mid)
}

func Test_twiss_propagate_matches_identity_map(tst *testing.T) {
	chk.PrintTitle("twiss_propagate_matches_identity_map")
	beta0, alpha0 := 10.0, -0.5
	beta, alpha, gamma := TwissPropagate(1, 0, 0, 1, alpha0, beta0)
	assert.InDelta(tst, beta0, beta, 1e-12)
	assert.InDelta(tst, alpha0, alpha, 1e-12)
	gamma0 := (1 + alpha0*alpha0) / beta0
	assert.InDelta(tst, gamma0, gamma, 1e-12)
}

func Test_twiss_invariant_is_preserved(tst *testing.T) {
	chk.PrintTitle("twiss_invariant_is_preserved")
	beta0, alpha0 := 5.0, 0.3
	r := Dipole(0.8, 0.15, 0.02, 0.02)
	beta, alpha, gamma := TwissPropagate(r[0][0], r[0][1], r[1][0], r[1][1], alpha0, beta0)
	assert.InDelta(tst, 1.0, beta*gamma-alpha*alpha, 1e-9)
	assert.False(tst, math.IsNaN(beta))
}
