// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package out

import (
	"os"
	"testing"

	"github.com/cpmech/csr2d/drive"
	"github.com/cpmech/gosl/chk"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_writer_round_trips_statistics(tst *testing.T) {
	chk.PrintTitle("writer_round_trips_statistics")

	dir := tst.TempDir()
	w, err := Open(dir, "run", true)
	require.NoError(tst, err)
	defer w.Close()

	rows := []drive.Statistics{
		{S: 0.1, GEmitX: 1e-9, SigmaX: 1e-4},
		{S: 0.2, GEmitX: 1.1e-9, SigmaX: 1.05e-4},
	}
	for i, r := range rows {
		require.NoError(tst, w.WriteStatistics(i, r))
	}

	got, err := w.Statistics()
	require.NoError(tst, err)
	require.Len(tst, got, 2)
	assert.InDelta(tst, rows[0].S, got[0].S, 1e-12)
	assert.InDelta(tst, rows[1].GEmitX, got[1].GEmitX, 1e-15)
}

func Test_writer_round_trips_particles_and_wakes(tst *testing.T) {
	chk.PrintTitle("writer_round_trips_particles_and_wakes")

	dir := tst.TempDir()
	w, err := Open(dir, "run", true)
	require.NoError(tst, err)
	defer w.Close()

	particles := [][]float64{{1, 2, 3, 4, 5, 6}, {7, 8, 9, 10, 11, 12}}
	require.NoError(tst, w.WriteParticles(0, particles))

	xgrid := []float64{-1, 0, 1}
	zgrid := []float64{-1, 1}
	dEdct := [][]float64{{0, 1}, {2, 3}, {4, 5}}
	xKick := [][]float64{{5, 4}, {3, 2}, {1, 0}}
	require.NoError(tst, w.WriteWakes(0, xgrid, zgrid, dEdct, xKick))
}

func Test_iso_timestamp_is_filesystem_safe(tst *testing.T) {
	chk.PrintTitle("iso_timestamp_is_filesystem_safe")

	s := IsoTimestamp(2026, 7, 31, 9, 5, 3)
	assert.Equal(tst, "2026-07-31T09_05_03", s)
}

func Test_expand_workdir_creates_directory(tst *testing.T) {
	chk.PrintTitle("expand_workdir_creates_directory")

	dir := tst.TempDir() + "/nested/run"
	got, err := ExpandWorkdir(dir)
	require.NoError(tst, err)
	assert.Equal(tst, dir, got)
}

func Test_expand_workdir_expands_env_vars(tst *testing.T) {
	chk.PrintTitle("expand_workdir_expands_env_vars")

	tst.Setenv("CSR2D_TEST_WORKDIR", tst.TempDir())
	got, err := ExpandWorkdir("$CSR2D_TEST_WORKDIR/run")
	require.NoError(tst, err)
	assert.Equal(tst, os.ExpandEnv("$CSR2D_TEST_WORKDIR/run"), got)
}
