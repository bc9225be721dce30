// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package csr

import "gonum.org/v1/gonum/floats"

// ObservationMesh is the Cartesian product of a z-range and a de-tilted
// x-range, tracking the beam centroid (spec.md §3, §4.6 step 4)
type ObservationMesh struct {
	Zrange            []float64 // N_z_obs points
	XrangeTransformed []float64 // N_x_obs points, on the de-tilted axis
}

// NewObservationMesh builds the mesh around the beam centroid. meanX,meanZ
// are the de-tilted centroid and raw z centroid respectively; sigX is the
// de-tilted sigma_x, sigZ the bunch length.
func NewObservationMesh(meanX, sigX, meanZ, sigZ, xlim, zlim float64, xbins, zbins int) ObservationMesh {
	zrange := make([]float64, zbins)
	floats.Span(zrange, meanZ-zlim*sigZ, meanZ+zlim*sigZ)
	xrange := make([]float64, xbins)
	floats.Span(xrange, meanX-xlim*sigX, meanX+xlim*sigX)
	return ObservationMesh{Zrange: zrange, XrangeTransformed: xrange}
}
