// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package densf implements the rolling density/velocity history (spec.md
// §3/§4.3): a fixed-capacity ring buffer of time slices over a uniform
// (x, zeta) grid, zeta = z - t being the co-moving (light-like) coordinate.
package densf

import (
	"math"
	"sort"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/la"
)

// Field selects one of the five cached quantities
type Field int

const (
	FieldDensity Field = iota
	FieldDRhoDx
	FieldDRhoDz
	FieldVx
	FieldDVxDx
)

// Slice is one time-step's cached density/velocity fields on the (x,zeta) grid
type Slice struct {
	T                                  float64
	Density, DRhoDx, DRhoDz, Vx, DVxDx [][]float64 // [Nx][Nz]
}

// Tracker is the ring buffer plus the shared affine (x,zeta) indexing.
// The lab time axis uses the true recorded slice times (binary search)
// rather than a strict affine formula, because the step length driving
// successive appends can change across lattice elements; x and zeta are
// a true fixed uniform grid as spec.md §4.3 requires.
type Tracker struct {
	Nx, Nz     int
	Dx, Dz     float64
	XMin, ZMin float64 // zeta = z - t

	// Smoothing is the particle_deposition section's Gaussian smoothing
	// width, in grid cells, applied to the raw CIC density/velocity before
	// derivatives are taken (spec.md §6: "grid shape and smoothing
	// parameters consumed by C3"). Zero disables smoothing.
	Smoothing float64

	cap    int // maximum retained slices (resource budget, spec.md §5)
	slices []*Slice
}

// NewTracker allocates a tracker with a fixed (x,zeta) grid support of
// half-width xExtent, zExtent around the design orbit, and a maximum of
// maxSlices retained time steps. smoothing is the particle_deposition
// section's Gaussian smoothing width in grid cells (0 disables smoothing).
func NewTracker(nx, nz int, xExtent, zExtent float64, maxSlices int, smoothing float64) *Tracker {
	if nx < 2 || nz < 2 {
		chk.Panic("densf: grid must have at least 2 points per axis, got nx=%d nz=%d", nx, nz)
	}
	return &Tracker{
		Nx: nx, Nz: nz,
		Dx:   2 * xExtent / float64(nx-1),
		Dz:   2 * zExtent / float64(nz-1),
		XMin: -xExtent, ZMin: -zExtent,
		Smoothing: smoothing,
		cap:       maxSlices,
	}
}

// Deposit builds a 2-D density rho(x,zeta) and transverse velocity field
// vx(x,zeta) from the particle cloud via cloud-in-cell weighting, then
// computes the spatial derivatives by central differences on the interior
// and one-sided differences at the edges. The deposition kernel itself
// (binning onto the grid) is a thin, concrete stand-in for the external
// particle-in-cell collaborator named in spec.md §6.
func (o *Tracker) Deposit(x, z, xp []float64, t float64) *Slice {
	density := la.MatAlloc(o.Nx, o.Nz)
	vxSum := la.MatAlloc(o.Nx, o.Nz)
	weight := la.MatAlloc(o.Nx, o.Nz)

	n := len(x)
	cellArea := o.Dx * o.Dz
	w := 0.0
	if n > 0 {
		w = 1.0 / float64(n) / cellArea
	}
	for i := 0; i < n; i++ {
		zeta := z[i] - t
		fx := (x[i] - o.XMin) / o.Dx
		fz := (zeta - o.ZMin) / o.Dz
		ix0 := int(fx)
		iz0 := int(fz)
		if ix0 < 0 || ix0 >= o.Nx-1 || iz0 < 0 || iz0 >= o.Nz-1 {
			continue
		}
		wx := fx - float64(ix0)
		wz := fz - float64(iz0)
		cic(density, ix0, iz0, wx, wz, w)
		cic(vxSum, ix0, iz0, wx, wz, w*cellArea*xp[i])
		cic(weight, ix0, iz0, wx, wz, w*cellArea)
	}

	vx := la.MatAlloc(o.Nx, o.Nz)
	for i := 0; i < o.Nx; i++ {
		for j := 0; j < o.Nz; j++ {
			if weight[i][j] > 0 {
				vx[i][j] = vxSum[i][j] / weight[i][j]
			}
		}
	}

	if o.Smoothing > 0 {
		density = gaussianBlur(density, o.Smoothing)
		vx = gaussianBlur(vx, o.Smoothing)
	}

	slice := &Slice{
		T:       t,
		Density: density,
		Vx:      vx,
	}
	slice.DRhoDx = gradX(density, o.Dx)
	slice.DRhoDz = gradZ(density, o.Dz)
	slice.DVxDx = gradX(vx, o.Dx)
	return slice
}

// gaussianBlur applies a separable Gaussian smoothing kernel of width sigma
// grid cells to f, clamping at the domain edges (particle_deposition.
// smoothing, spec.md §6)
func gaussianBlur(f [][]float64, sigma float64) [][]float64 {
	nx := len(f)
	if nx == 0 {
		return f
	}
	nz := len(f[0])
	kernel := gaussianKernel(sigma)

	tmp := la.MatAlloc(nx, nz)
	for i := 0; i < nx; i++ {
		for j := 0; j < nz; j++ {
			sum := 0.0
			for _, k := range kernel {
				jj := clampIndex(j+k.offset, nz)
				sum += k.weight * f[i][jj]
			}
			tmp[i][j] = sum
		}
	}

	out := la.MatAlloc(nx, nz)
	for j := 0; j < nz; j++ {
		for i := 0; i < nx; i++ {
			sum := 0.0
			for _, k := range kernel {
				ii := clampIndex(i+k.offset, nx)
				sum += k.weight * tmp[ii][j]
			}
			out[i][j] = sum
		}
	}
	return out
}

type kernelTap struct {
	offset int
	weight float64
}

// gaussianKernel builds a normalized 1-D Gaussian kernel truncated at 3
// sigma (at least one cell wide)
func gaussianKernel(sigma float64) []kernelTap {
	radius := int(math.Ceil(3 * sigma))
	if radius < 1 {
		radius = 1
	}
	kernel := make([]kernelTap, 0, 2*radius+1)
	sum := 0.0
	for o := -radius; o <= radius; o++ {
		w := math.Exp(-0.5 * float64(o*o) / (sigma * sigma))
		kernel = append(kernel, kernelTap{offset: o, weight: w})
		sum += w
	}
	for i := range kernel {
		kernel[i].weight /= sum
	}
	return kernel
}

func clampIndex(i, n int) int {
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}

// cic spreads weight w over the four corners of the cell (ix0,iz0) with
// bilinear (cloud-in-cell) weights
func cic(grid [][]float64, ix0, iz0 int, wx, wz, w float64) {
	grid[ix0][iz0] += w * (1 - wx) * (1 - wz)
	grid[ix0+1][iz0] += w * wx * (1 - wz)
	grid[ix0][iz0+1] += w * (1 - wx) * wz
	grid[ix0+1][iz0+1] += w * wx * wz
}

// gradX computes d/dx by central differences on the interior, one-sided at
// the edges
func gradX(f [][]float64, dx float64) [][]float64 {
	nx := len(f)
	if nx == 0 {
		return nil
	}
	nz := len(f[0])
	g := la.MatAlloc(nx, nz)
	for j := 0; j < nz; j++ {
		if nx == 1 {
			continue
		}
		g[0][j] = (f[1][j] - f[0][j]) / dx
		g[nx-1][j] = (f[nx-1][j] - f[nx-2][j]) / dx
		for i := 1; i < nx-1; i++ {
			g[i][j] = (f[i+1][j] - f[i-1][j]) / (2 * dx)
		}
	}
	return g
}

// gradZ computes d/dz by central differences on the interior, one-sided at
// the edges
func gradZ(f [][]float64, dz float64) [][]float64 {
	nx := len(f)
	if nx == 0 {
		return nil
	}
	nz := len(f[0])
	g := la.MatAlloc(nx, nz)
	for i := 0; i < nx; i++ {
		if nz == 1 {
			continue
		}
		g[i][0] = (f[i][1] - f[i][0]) / dz
		g[i][nz-1] = (f[i][nz-1] - f[i][nz-2]) / dz
		for j := 1; j < nz-1; j++ {
			g[i][j] = (f[i][j+1] - f[i][j-1]) / (2 * dz)
		}
	}
	return g
}

// Append pushes a new slice onto the ring buffer; slices must be appended
// in monotone-increasing t. The window is enlarged/bounded to retain at
// least nFormationLength*formationLength of history ahead of the current
// observer horizon, and slices falling out of that window, or exceeding
// the hard capacity, are dropped.
func (o *Tracker) Append(slice *Slice, formationLength, nFormationLength float64) {
	if len(o.slices) > 0 && slice.T < o.slices[len(o.slices)-1].T {
		chk.Panic("densf: slices must be appended in monotone-increasing t")
	}
	o.slices = append(o.slices, slice)

	window := nFormationLength * formationLength
	newest := slice.T
	i := 0
	for i < len(o.slices)-1 && newest-o.slices[i+1].T >= window {
		i++
	}
	if i > 0 {
		o.slices = o.slices[i:]
	}
	if o.cap > 0 && len(o.slices) > o.cap {
		o.slices = o.slices[len(o.slices)-o.cap:]
	}
}

// Query performs trilinear interpolation of the requested field at
// (t, x, zeta). Outside the stored support (in any of the three axes, or
// outside [0, N-2] along x or zeta), it returns 0 rather than erroring:
// this extrapolation rule is required for correctness at the integration
// boundary (spec.md §4.3).
func (o *Tracker) Query(t, x, zeta float64, field Field) float64 {
	n := len(o.slices)
	if n == 0 {
		return 0
	}
	if t < o.slices[0].T || t > o.slices[n-1].T {
		return 0
	}
	fx := (x - o.XMin) / o.Dx
	fz := (zeta - o.ZMin) / o.Dz
	ix := int(math.Floor(fx))
	iz := int(math.Floor(fz))
	if ix < 0 || ix > o.Nx-2 || iz < 0 || iz > o.Nz-2 {
		return 0
	}
	wx := fx - float64(ix)
	wz := fz - float64(iz)
	if n == 1 {
		return bilinearField(o.slices[0], field, ix, iz, wx, wz)
	}

	it := locateSlice(o.slices, t)
	var wt float64
	if it >= n-1 {
		it = n - 2
		wt = 1
	} else {
		span := o.slices[it+1].T - o.slices[it].T
		if span > 0 {
			wt = (t - o.slices[it].T) / span
		}
	}
	if it < 0 {
		it = 0
	}

	v0 := bilinearField(o.slices[it], field, ix, iz, wx, wz)
	v1 := bilinearField(o.slices[it+1], field, ix, iz, wx, wz)
	return v0*(1-wt) + v1*wt
}

func locateSlice(slices []*Slice, t float64) int {
	return sort.Search(len(slices), func(i int) bool { return slices[i].T > t }) - 1
}

func bilinearField(s *Slice, field Field, ix, iz int, wx, wz float64) float64 {
	var f [][]float64
	switch field {
	case FieldDensity:
		f = s.Density
	case FieldDRhoDx:
		f = s.DRhoDx
	case FieldDRhoDz:
		f = s.DRhoDz
	case FieldVx:
		f = s.Vx
	case FieldDVxDx:
		f = s.DVxDx
	default:
		chk.Panic("densf: unknown field %v", field)
	}
	f00 := f[ix][iz]
	f10 := f[ix+1][iz]
	f01 := f[ix][iz+1]
	f11 := f[ix+1][iz+1]
	return f00*(1-wx)*(1-wz) + f10*wx*(1-wz) + f01*(1-wx)*wz + f11*wx*wz
}

// Len returns the number of retained time slices
func (o *Tracker) Len() int { return len(o.slices) }
