// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package partition splits the observation mesh across MPI ranks for the
// wake computation (spec.md §4.7) and gathers the per-observer results back
// onto every rank, mirroring the counts/displacements idiom the teacher's
// main.go and fem package use around github.com/cpmech/gosl/mpi.
package partition

import "github.com/cpmech/gosl/mpi"

// Split divides w work items (observer points) across nproc ranks: the
// first w%nproc ranks get ceil(w/nproc) items, the rest get floor(w/nproc),
// matching the contiguous block decomposition spec.md §4.7 requires so a
// rank's slice is always an index range, not a scatter.
func Split(w, nproc int) (counts, displs []int) {
	counts = make([]int, nproc)
	displs = make([]int, nproc)
	base := w / nproc
	rem := w % nproc
	offset := 0
	for p := 0; p < nproc; p++ {
		c := base
		if p < rem {
			c++
		}
		counts[p] = c
		displs[p] = offset
		offset += c
	}
	return
}

// Range returns the [lo, hi) index range owned by rank out of nproc, for w
// total work items
func Range(w, nproc, rank int) (lo, hi int) {
	counts, displs := Split(w, nproc)
	lo = displs[rank]
	hi = lo + counts[rank]
	return
}

// Comm abstracts the collective this package needs so the driver can run
// identically under a single process or under mpirun (spec.md §8 property
// 5: parallel and serial runs agree to machine precision).
type Comm interface {
	Rank() int
	Size() int
	// Gather assembles the full-length array from every rank's local
	// slice (length counts[rank], at global offset displs[rank]) onto
	// every rank.
	Gather(local []float64, w int) []float64
}

// SerialComm is the trivial single-rank Comm: Gather is the identity.
type SerialComm struct{}

func (SerialComm) Rank() int { return 0 }
func (SerialComm) Size() int { return 1 }
func (SerialComm) Gather(local []float64, w int) []float64 {
	out := make([]float64, w)
	copy(out, local)
	return out
}

// MPIComm wraps github.com/cpmech/gosl/mpi. Gather is built from
// AllReduceSum over disjoint, zero-padded arrays: each rank contributes its
// own slice placed at its global offset and zero elsewhere, so the
// element-wise sum across ranks reassembles the full array without relying
// on a dedicated all-gatherv call.
type MPIComm struct{}

func (MPIComm) Rank() int { return mpi.Rank() }
func (MPIComm) Size() int { return mpi.Size() }

func (MPIComm) Gather(local []float64, w int) []float64 {
	rank := mpi.Rank()
	nproc := mpi.Size()
	_, displs := Split(w, nproc)
	padded := make([]float64, w)
	copy(padded[displs[rank]:displs[rank]+len(local)], local)
	out := make([]float64, w)
	mpi.AllReduceSum(out, padded)
	return out
}
