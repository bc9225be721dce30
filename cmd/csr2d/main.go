// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"github.com/cpmech/csr2d/drive"
	"github.com/cpmech/csr2d/inp"
	"github.com/cpmech/csr2d/out"
	"github.com/cpmech/csr2d/partition"
	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"
	"github.com/cpmech/gosl/mpi"
	"github.com/cpmech/gosl/utl"
)

func main() {

	// catch errors
	defer func() {
		if err := recover(); err != nil {
			if mpi.Rank() == 0 {
				chk.Verbose = true
				for i := 8; i > 3; i-- {
					chk.CallerInfo(i)
				}
				io.PfRed("ERROR: %v\n", err)
			}
		}
		mpi.Stop(false)
	}()
	mpi.Start(false)

	// read input parameters
	fnamepath, _ := io.ArgToFilename(0, "", ".yaml", true)
	verbose := io.ArgToBool(1, true)
	allowParallel := io.ArgToBool(2, true)

	// message
	if mpi.Rank() == 0 && verbose {
		io.PfWhite("\ncsr2d -- 2-D coherent synchrotron radiation beam simulator\n\n")
		io.Pf("\n%v\n", io.ArgsTable(
			"filename path", "fnamepath", fnamepath,
			"show messages", "verbose", verbose,
			"allow parallel run", "allowParallel", allowParallel,
		))
	}

	// profiling?
	defer utl.DoProf(false)()

	// read configuration
	cfg, err := inp.Load(fnamepath)
	if err != nil {
		chk.Panic("cannot read configuration:\n%v", err)
	}
	cfg.SetDefault()

	// communicator
	var comm partition.Comm
	comm = partition.SerialComm{}
	if allowParallel && mpi.IsOn() && mpi.Size() > 1 {
		comm = partition.MPIComm{}
	}

	// set up output, if this rank writes results or renders debug plots
	var writer *out.Writer
	var plotDir string
	cc := cfg.CSRComputation
	if mpi.Rank() == 0 && (cc.WriteBeam || cc.WriteWakes || cc.PlotDebug) {
		workdir, err := out.ExpandWorkdir(cc.Workdir)
		if err != nil {
			chk.Panic("cannot create workdir:\n%v", err)
		}
		plotDir = workdir
		if cc.WriteBeam || cc.WriteWakes {
			writer, err = out.Open(workdir, cc.WriteName, true)
			if err != nil {
				chk.Panic("cannot open output database:\n%v", err)
			}
			defer writer.Close()
		}
	}

	// run simulation; the driver itself persists particles/wakes on every
	// wake-computation step and records statistics every step in its
	// History (spec.md §6)
	driver := drive.NewDriver(cfg, comm)
	if writer != nil {
		driver.Writer = writer
	}
	driver.PlotDir = plotDir
	if err := driver.Run(); err != nil {
		chk.Panic("Run failed:\n%v", err)
	}

	// the statistics history is recorded regardless of the writer cadence
	// used during the run, so it is persisted in full here
	if writer != nil {
		for i, st := range driver.History {
			if err := writer.WriteStatistics(i, st); err != nil {
				io.PfRed("ERROR writing statistics for step %d: %v\n", i, err)
			}
		}
	}

	if mpi.Rank() == 0 && verbose {
		io.Pf("\nfinal s = %v, sigma_x = %v, sigma_z = %v, nemit_x = %v\n",
			driver.Beam.Position, driver.Beam.SigmaX, driver.Beam.SigmaZ, driver.Beam.NormEmitX)
	}
}
