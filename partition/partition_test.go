// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package partition

import (
	"testing"

	"github.com/cpmech/gosl/chk"
	"github.com/stretchr/testify/assert"
)

func Test_split_covers_all_work_exactly_once(tst *testing.T) {
	chk.PrintTitle("split_covers_all_work_exactly_once")

	for _, w := range []int{0, 1, 7, 100, 101} {
		for _, nproc := range []int{1, 2, 3, 8} {
			counts, displs := Split(w, nproc)
			assert.Equal(tst, nproc, len(counts))
			sum := 0
			for p := 0; p < nproc; p++ {
				assert.Equal(tst, displs[p], sum)
				sum += counts[p]
			}
			assert.Equal(tst, w, sum)
		}
	}
}

func Test_split_balances_within_one(tst *testing.T) {
	chk.PrintTitle("split_balances_within_one")

	counts, _ := Split(10, 3)
	assert.Equal(tst, []int{4, 3, 3}, counts)
}

func Test_range_matches_split(tst *testing.T) {
	chk.PrintTitle("range_matches_split")

	w, nproc := 17, 4
	counts, displs := Split(w, nproc)
	for p := 0; p < nproc; p++ {
		lo, hi := Range(w, nproc, p)
		assert.Equal(tst, displs[p], lo)
		assert.Equal(tst, displs[p]+counts[p], hi)
	}
}

func Test_serial_comm_gather_is_identity(tst *testing.T) {
	chk.PrintTitle("serial_comm_gather_is_identity")

	var c SerialComm
	local := []float64{1, 2, 3}
	out := c.Gather(local, 3)
	assert.Equal(tst, local, out)
	assert.Equal(tst, 0, c.Rank())
	assert.Equal(tst, 1, c.Size())
}
