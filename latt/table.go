// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package latt implements the design-orbit geometry: a uniformly sampled
// arc-length table of the lab-frame trajectory, its tangent/normal frame and
// curvature, built once from the lattice configuration and read-only
// thereafter.
package latt

import (
	"math"
	"sort"

	"github.com/cpmech/csr2d/inp"
	"github.com/cpmech/gosl/chk"
)

// Field selects one of the sampled quantities carried by Table
type Field int

const (
	FieldX0 Field = iota
	FieldY0
	FieldTaux
	FieldTauy
	FieldNx
	FieldNy
	FieldRho
)

// Table holds the uniformly sampled design trajectory s -> (X0,Y0,tau,n,rho)
// in the lab frame. Built once at start; read-only thereafter.
type Table struct {
	Smin, Smax float64 // arc-length range covered; s_max is the total path length
	Ds         float64 // uniform sample spacing
	X0, Y0     []float64
	Taux, Tauy []float64
	Nx, Ny     []float64
	Rho        []float64 // linearly-interpolated rho, for Sample(FieldRho, .)

	// per-element step function, used by PiecewiseRho to preserve the
	// discontinuity at dipole edges that linear interpolation would smear
	bounds   []float64 // cumulative arc length at the end of each element
	elemRho  []float64 // rho within each element
}

// Build integrates the design orbit from an ordered list of lattice elements
// using a fixed arc-length step. Each drift/quad has rho=0; each dipole has
// rho=angle/L, constant over its length (a step function, not interpolated).
func Build(elements []inp.LatticeElementConfig, ds float64) *Table {
	if ds <= 0 {
		chk.Panic("latt: sample spacing must be positive, got %v", ds)
	}

	// total path length and per-element rho / boundaries
	sMax := 0.0
	bounds := make([]float64, len(elements))
	elemRho := make([]float64, len(elements))
	for i, e := range elements {
		sMax += e.L
		bounds[i] = sMax
		switch e.Type {
		case inp.Dipole:
			if e.Angle == 0 {
				chk.Panic("latt: dipole element %d has zero bend angle", i)
			}
			elemRho[i] = e.Angle / e.L
		default:
			elemRho[i] = 0
		}
	}

	n := int(math.Ceil(sMax/ds)) + 1
	o := &Table{
		Smin: 0, Smax: sMax, Ds: ds,
		X0: make([]float64, n), Y0: make([]float64, n),
		Taux: make([]float64, n), Tauy: make([]float64, n),
		Nx: make([]float64, n), Ny: make([]float64, n),
		Rho: make([]float64, n),
		bounds: bounds, elemRho: elemRho,
	}

	// integrate theta(s) = heading angle via rho(s) = dtheta/ds, then
	// X0,Y0 via cos/sin(theta); RK4-free fixed-step Euler-midpoint is
	// sufficient because ds is the same fine grid used for everything else
	theta := 0.0
	x, y := 0.0, 0.0
	for i := 0; i < n; i++ {
		s := math.Min(float64(i)*ds, sMax)
		rho := o.piecewiseRhoBuild(s)
		o.X0[i], o.Y0[i] = x, y
		o.Taux[i], o.Tauy[i] = math.Cos(theta), math.Sin(theta)
		o.Nx[i], o.Ny[i] = -math.Sin(theta), math.Cos(theta)
		o.Rho[i] = rho
		// advance using midpoint heading for the next sample
		half := theta + 0.5*rho*ds
		x += ds * math.Cos(half)
		y += ds * math.Sin(half)
		theta += rho * ds
	}
	return o
}

// piecewiseRhoBuild is the same step function as PiecewiseRho, used only
// while constructing the table (before bounds/elemRho are considered final)
func (o *Table) piecewiseRhoBuild(s float64) float64 {
	idx := sort.SearchFloat64s(o.bounds, s)
	if idx >= len(o.elemRho) {
		idx = len(o.elemRho) - 1
	}
	if idx < 0 {
		idx = 0
	}
	return o.elemRho[idx]
}

// PiecewiseRho returns rho(s) via the step function over sorted element
// boundaries; unlike Sample(FieldRho,.) it does not interpolate, preserving
// the discontinuity at dipole edges
func (o *Table) PiecewiseRho(s float64) float64 {
	if len(o.elemRho) == 0 {
		return 0
	}
	s = clamp(s, o.Smin, o.Smax)
	return o.piecewiseRhoBuild(s)
}

// Sample returns the requested field at arc length s via linear
// interpolation on the uniform grid; out-of-range queries clamp to the
// endpoints
func (o *Table) Sample(kind Field, s float64) float64 {
	s = clamp(s, o.Smin, o.Smax)
	pos := (s - o.Smin) / o.Ds
	i0 := int(math.Floor(pos))
	if i0 >= len(o.X0)-1 {
		i0 = len(o.X0) - 2
	}
	if i0 < 0 {
		i0 = 0
	}
	w := pos - float64(i0)
	a, b := o.column(kind)
	return a[i0]*(1-w) + b[i0+1]*w
}

// column returns the same slice twice; kept as a pair so Sample's weighted
// blend reads symmetrically for both endpoints of the interval
func (o *Table) column(kind Field) ([]float64, []float64) {
	var c []float64
	switch kind {
	case FieldX0:
		c = o.X0
	case FieldY0:
		c = o.Y0
	case FieldTaux:
		c = o.Taux
	case FieldTauy:
		c = o.Tauy
	case FieldNx:
		c = o.Nx
	case FieldNy:
		c = o.Ny
	case FieldRho:
		c = o.Rho
	default:
		chk.Panic("latt: unknown field %v", kind)
	}
	return c, c
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
