// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package densf

import (
	"testing"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/la"
	"github.com/stretchr/testify/assert"
)

func Test_query_outside_support_is_zero(tst *testing.T) {
	chk.PrintTitle("query_outside_support_is_zero")

	tr := NewTracker(10, 10, 1, 1, 100, 0)
	slice := tr.Deposit([]float64{0}, []float64{0}, []float64{0}, 0)
	tr.Append(slice, 1, 3)

	assert.Equal(tst, 0.0, tr.Query(-10, 0, 0, FieldDensity)) // outside t support
	assert.Equal(tst, 0.0, tr.Query(0, 10, 0, FieldDensity))  // outside x support
	assert.Equal(tst, 0.0, tr.Query(0, 0, 10, FieldDensity))  // outside zeta support
}

func Test_query_linear_field_exact(tst *testing.T) {
	chk.PrintTitle("query_linear_field_exact")

	tr := NewTracker(20, 20, 1, 1, 100, 0)
	a, c, d := 1.0, 2.0, 3.0

	// build two slices with a hand-crafted linear field f = a + c*x + d*zeta
	// (no dependence on t beyond the slice's own zeta shift) to exercise
	// trilinear interpolation against a known-exact answer
	mk := func(t float64) *Slice {
		f := la.MatAlloc(tr.Nx, tr.Nz)
		for i := 0; i < tr.Nx; i++ {
			x := tr.XMin + float64(i)*tr.Dx
			for j := 0; j < tr.Nz; j++ {
				zeta := tr.ZMin + float64(j)*tr.Dz
				f[i][j] = a + c*x + d*zeta
			}
		}
		return &Slice{T: t, Density: f, DRhoDx: f, DRhoDz: f, Vx: f, DVxDx: f}
	}
	tr.Append(mk(0), 1, 3)
	tr.Append(mk(1), 1, 3)

	got := tr.Query(0.5, 0.1, -0.2, FieldDensity)
	want := a + c*0.1 + d*-0.2
	assert.InDelta(tst, want, got, 1e-10)
}

func Test_deposit_conserves_charge_weight(tst *testing.T) {
	chk.PrintTitle("deposit_conserves_charge_weight")

	tr := NewTracker(60, 60, 1e-3, 1e-3, 10, 0)
	n := 5000
	x := make([]float64, n)
	z := make([]float64, n)
	xp := make([]float64, n)
	for i := range x {
		x[i] = 0
		z[i] = 0
		xp[i] = 0
	}
	slice := tr.Deposit(x, z, xp, 0)

	total := 0.0
	for i := 0; i < tr.Nx; i++ {
		for j := 0; j < tr.Nz; j++ {
			total += slice.Density[i][j] * tr.Dx * tr.Dz
		}
	}
	assert.InDelta(tst, 1.0, total, 1e-6)
}
