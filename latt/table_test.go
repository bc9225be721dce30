// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package latt

import (
	"testing"

	"github.com/cpmech/csr2d/inp"
	"github.com/cpmech/gosl/chk"
	"github.com/stretchr/testify/assert"
)

func testElements() []inp.LatticeElementConfig {
	return []inp.LatticeElementConfig{
		{Type: inp.Drift, L: 0.3},
		{Type: inp.Dipole, L: 0.2, Angle: 0.2 / 1.5},
		{Type: inp.Drift, L: 0.3},
	}
}

func Test_table_orthonormal_frame(tst *testing.T) {
	chk.PrintTitle("table_orthonormal_frame")

	table := Build(testElements(), 1e-3)
	for i := range table.Taux {
		tt := table.Taux[i]*table.Taux[i] + table.Tauy[i]*table.Tauy[i]
		nn := table.Nx[i]*table.Nx[i] + table.Ny[i]*table.Ny[i]
		tn := table.Taux[i]*table.Nx[i] + table.Tauy[i]*table.Ny[i]
		assert.InDelta(tst, 1.0, tt, 1e-10)
		assert.InDelta(tst, 1.0, nn, 1e-10)
		assert.InDelta(tst, 0.0, tn, 1e-10)
	}
}

func Test_table_finite_difference_matches_tangent(tst *testing.T) {
	chk.PrintTitle("table_finite_difference_matches_tangent")

	table := Build(testElements(), 1e-4)
	for i := 1; i < len(table.X0)-1; i++ {
		dx := (table.X0[i+1] - table.X0[i-1]) / (2 * table.Ds)
		dy := (table.Y0[i+1] - table.Y0[i-1]) / (2 * table.Ds)
		assert.InDelta(tst, table.Taux[i], dx, 1e-4)
		assert.InDelta(tst, table.Tauy[i], dy, 1e-4)
	}
}

func Test_table_clamp_outside_range(tst *testing.T) {
	chk.PrintTitle("table_clamp_outside_range")

	table := Build(testElements(), 1e-3)
	assert.Equal(tst, table.Sample(FieldX0, -10), table.Sample(FieldX0, 0))
	assert.Equal(tst, table.Sample(FieldX0, 1000), table.Sample(FieldX0, table.Smax))
}

func Test_table_piecewise_rho_step(tst *testing.T) {
	chk.PrintTitle("table_piecewise_rho_step")

	table := Build(testElements(), 1e-3)
	assert.Equal(tst, 0.0, table.PiecewiseRho(0.1))
	assert.InDelta(tst, 1/1.5, table.PiecewiseRho(0.35), 1e-9)
	assert.Equal(tst, 0.0, table.PiecewiseRho(0.55))
}
