// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package beam implements the macro-particle beam state (spec.md §3/§4.2):
// coordinates, derived statistics, linear transport and wake application.
package beam

import (
	"math"
	"math/rand"

	"github.com/cpmech/csr2d/inp"
	"github.com/cpmech/csr2d/transport"
	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/la"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// coordinate column indices into Particles
const (
	X = iota
	Xp
	Y
	Yp
	Z
	Delta
)

// Beam holds the macro-particle array and its derived statistics. Created
// from an initial distribution; mutated only by Track and ApplyWakes.
type Beam struct {
	Particles  [][]float64 // [N][6]: x, x', y, y', z, delta
	Charge     float64     // bunch charge [C], constant over the run
	Position   float64     // s-position along the design orbit
	Step       int         // step counter
	InitGamma  float64
	InitEnergy float64

	// derived, recomputed by updateStats after every mutation
	MeanX, MeanXp     float64
	MeanZ             float64
	SigmaX, SigmaZ    float64
	SigmaDelta        float64
	BetaX, AlphaX     float64
	NormEmitX         float64
	Slope             [2]float64 // polyfit(z, x, deg=1): x ~= Slope[0]*z + Slope[1]
	XTransform        []float64  // x - polyval(Slope, z), the de-tilted coordinate
}

// NewBeam builds the initial macro-particle distribution from a BeamConfig.
// y, y' are left at zero: the CSR engine is 2-D (spec.md §1 scope).
func NewBeam(cfg inp.BeamConfig) *Beam {
	n := cfg.NParticles
	if n <= 0 {
		chk.Panic("beam: n_particles must be positive, got %d", n)
	}
	src := rand.NewSource(cfg.Seed)
	if cfg.Seed == 0 {
		src = rand.NewSource(1)
	}
	rng := rand.New(src)

	gammaTw := (1 + cfg.AlphaX*cfg.AlphaX) / cfg.BetaX
	sigXp := math.Sqrt(cfg.EmitX * gammaTw)

	normZ := distuv.Normal{Mu: 0, Sigma: cfg.SigmaZ, Src: rng}
	normDelta := distuv.Normal{Mu: 0, Sigma: cfg.SigmaDelta, Src: rng}

	particles := la.MatAlloc(n, 6)
	for i := 0; i < n; i++ {
		// independent normalized phase-space angle, correlated via Twiss
		u1 := rng.NormFloat64()
		u2 := rng.NormFloat64()
		x := math.Sqrt(cfg.EmitX*cfg.BetaX) * u1
		xp := sigXp*u2 - cfg.AlphaX/cfg.BetaX*x

		z := normZ.Rand()
		delta := cfg.CorrZDelta*z/safeNonZero(cfg.SigmaZ)*cfg.SigmaDelta + math.Sqrt(1-cfg.CorrZDelta*cfg.CorrZDelta)*normDelta.Rand()

		particles[i][X] = x
		particles[i][Xp] = xp
		particles[i][Y] = 0
		particles[i][Yp] = 0
		particles[i][Z] = z
		particles[i][Delta] = delta
	}

	o := &Beam{
		Particles:  particles,
		Charge:     cfg.Charge,
		InitGamma:  cfg.Energy / 0.51099895e6,
		InitEnergy: cfg.Energy,
		BetaX:      cfg.BetaX,
		AlphaX:     cfg.AlphaX,
	}
	o.updateStats()
	return o
}

func safeNonZero(v float64) float64 {
	if v == 0 {
		return 1
	}
	return v
}

// Track applies the 6x6 linear map R to every particle and advances s by dL
func (o *Beam) Track(r transport.R6, dL float64) error {
	n := len(o.Particles)
	for i := 0; i < n; i++ {
		p := o.Particles[i]
		var q [6]float64
		for a := 0; a < 6; a++ {
			sum := 0.0
			for b := 0; b < 6; b++ {
				sum += r[a][b] * p[b]
			}
			q[a] = sum
		}
		copy(p, q[:])
	}
	o.Position += dL
	o.Step++
	o.updateStats()
	return nil
}

// ApplyWakes bilinearly interpolates both wake maps at each particle's
// (x_transform, z), scales by ds, and adds to delta and x' respectively.
// Particles outside the mesh receive a zero kick (clamped).
func (o *Beam) ApplyWakes(dEdct, xKick [][]float64, xGridTransformed, zGrid []float64, ds float64) {
	n := len(o.Particles)
	for i := 0; i < n; i++ {
		p := o.Particles[i]
		xt := o.XTransform[i]
		z := p[Z]
		dE := bilinear(dEdct, xGridTransformed, zGrid, xt, z)
		xk := bilinear(xKick, xGridTransformed, zGrid, xt, z)
		p[Delta] += dE * ds
		p[Xp] += xk * ds
	}
	o.updateStats()
}

// bilinear interpolates field[ix][iz] on the rectangular grid (xgrid,zgrid);
// returns 0 when (x,z) falls outside the grid support
func bilinear(field [][]float64, xgrid, zgrid []float64, x, z float64) float64 {
	nx, nz := len(xgrid), len(zgrid)
	if nx < 2 || nz < 2 {
		return 0
	}
	if x < xgrid[0] || x > xgrid[nx-1] || z < zgrid[0] || z > zgrid[nz-1] {
		return 0
	}
	ix := locate(xgrid, x)
	iz := locate(zgrid, z)
	wx := (x - xgrid[ix]) / (xgrid[ix+1] - xgrid[ix])
	wz := (z - zgrid[iz]) / (zgrid[iz+1] - zgrid[iz])
	f00 := field[ix][iz]
	f10 := field[ix+1][iz]
	f01 := field[ix][iz+1]
	f11 := field[ix+1][iz+1]
	return f00*(1-wx)*(1-wz) + f10*wx*(1-wz) + f01*(1-wx)*wz + f11*wx*wz
}

// locate returns i such that grid[i] <= v <= grid[i+1], clamped to
// [0, len(grid)-2]
func locate(grid []float64, v float64) int {
	lo, hi := 0, len(grid)-1
	for hi-lo > 1 {
		mid := (lo + hi) / 2
		if grid[mid] <= v {
			lo = mid
		} else {
			hi = mid
		}
	}
	if lo > len(grid)-2 {
		lo = len(grid) - 2
	}
	return lo
}

// StatsMinusDispersion subtracts the dispersive contribution eta*delta,
// eta'*delta from (x, x') using the cumulative transport matrix Rtot, and
// recomputes emittance and Twiss on the dispersion-free coordinates
func (o *Beam) StatsMinusDispersion(rtot transport.R6) (emit, normEmit, beta, alpha float64) {
	eta := rtot[0][5]
	etap := rtot[1][5]
	n := len(o.Particles)
	x := make([]float64, n)
	xp := make([]float64, n)
	for i, p := range o.Particles {
		x[i] = p[X] - eta*p[Delta]
		xp[i] = p[Xp] - etap*p[Delta]
	}
	varX := stat.Variance(x, nil)
	varXp := stat.Variance(xp, nil)
	covXXp := stat.Covariance(x, xp, nil)
	emit = math.Sqrt(math.Max(varX*varXp-covXXp*covXXp, 0))
	normEmit = emit * o.InitGamma
	if emit > 0 {
		beta = varX / emit
		alpha = -covXXp / emit
	}
	return
}

// updateStats recomputes all derived quantities from the current particle
// array: centroids, sigmas, Twiss, the longitudinal slope and the de-tilted
// transverse coordinate
func (o *Beam) updateStats() {
	n := len(o.Particles)
	x := make([]float64, n)
	xp := make([]float64, n)
	z := make([]float64, n)
	delta := make([]float64, n)
	for i, p := range o.Particles {
		x[i] = p[X]
		xp[i] = p[Xp]
		z[i] = p[Z]
		delta[i] = p[Delta]
	}
	o.MeanX = stat.Mean(x, nil)
	o.MeanXp = stat.Mean(xp, nil)
	o.MeanZ = stat.Mean(z, nil)
	o.SigmaX = math.Sqrt(stat.Variance(x, nil))
	o.SigmaZ = math.Sqrt(stat.Variance(z, nil))
	o.SigmaDelta = math.Sqrt(stat.Variance(delta, nil))

	varX := o.SigmaX * o.SigmaX
	varXp := stat.Variance(xp, nil)
	covXXp := stat.Covariance(x, xp, nil)
	emit := math.Sqrt(math.Max(varX*varXp-covXXp*covXXp, 0))
	o.NormEmitX = emit * o.InitGamma
	if emit > 0 {
		o.BetaX = varX / emit
		o.AlphaX = -covXXp / emit
	}

	// longitudinal slope: polyfit(z, x, deg=1) via simple linear regression;
	// LinearRegression returns (intercept, slope) for x = intercept + slope*z
	intercept, slope := stat.LinearRegression(z, x, nil, false)
	o.Slope = [2]float64{slope, intercept}

	o.XTransform = make([]float64, n)
	for i := range x {
		o.XTransform[i] = x[i] - polyval(o.Slope, z[i])
	}
}

// polyval evaluates p[0]*z + p[1], matching numpy.polyval's convention for
// a degree-1 polynomial (highest-order coefficient first)
func polyval(p [2]float64, z float64) float64 {
	return p[0]*z + p[1]
}

// Polyval exposes polyval for collaborators outside this package (e.g. the
// observation-mesh builder needs to reinject x_transform into physical x)
func Polyval(p [2]float64, z float64) float64 {
	return polyval(p, z)
}
