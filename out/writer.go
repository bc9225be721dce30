// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package out persists run results (spec.md §6): per-step statistics, and
// optionally the full macro-particle distribution and the wake fields, to
// a SQLite database under the configured workdir. This plays the role the
// original source's HDF5 writer does, adapted to the idiom the rest of
// this pack uses for structured result storage (github.com/banshee-data/
// velocity.report's db package).
package out

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/cpmech/csr2d/drive"
)

// Writer owns the result database for one run
type Writer struct {
	db *sql.DB
}

// Open creates (or truncates, if fresh is true) the result database at
// <workdir>/<name>.db and prepares its schema
func Open(workdir, name string, fresh bool) (*Writer, error) {
	path := filepath.Join(workdir, name+".db")
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if fresh {
		if _, err := db.Exec(`
			DROP TABLE IF EXISTS statistics;
			DROP TABLE IF EXISTS particles;
			DROP TABLE IF EXISTS wakes;
		`); err != nil {
			db.Close()
			return nil, err
		}
	}
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS statistics (
			step INTEGER PRIMARY KEY,
			s DOUBLE, gemit_x DOUBLE, nemit_x DOUBLE, beta_x DOUBLE, alpha_x DOUBLE,
			sigma_x DOUBLE, sigma_z DOUBLE, sigma_e DOUBLE, slope DOUBLE,
			cx DOUBLE, cxp DOUBLE, eta_x DOUBLE, eta_xp DOUBLE,
			r56 DOUBLE, r51 DOUBLE, r52 DOUBLE,
			gemit_x_minus_dispersion DOUBLE, nemit_x_minus_dispersion DOUBLE,
			beta_x_minus_dispersion DOUBLE, alpha_x_minus_dispersion DOUBLE
		);
		CREATE TABLE IF NOT EXISTS particles (
			step INTEGER, idx INTEGER, x DOUBLE, xp DOUBLE, y DOUBLE, yp DOUBLE,
			z DOUBLE, delta DOUBLE,
			PRIMARY KEY (step, idx)
		);
		CREATE TABLE IF NOT EXISTS wakes (
			step INTEGER, ix INTEGER, iz INTEGER, x DOUBLE, z DOUBLE,
			dedct DOUBLE, xkick DOUBLE,
			PRIMARY KEY (step, ix, iz)
		);
	`)
	if err != nil {
		db.Close()
		return nil, err
	}
	return &Writer{db: db}, nil
}

// Close closes the underlying database
func (o *Writer) Close() error {
	return o.db.Close()
}

// WriteStatistics appends one step's row to the statistics table
func (o *Writer) WriteStatistics(step int, s drive.Statistics) error {
	_, err := o.db.Exec(`INSERT OR REPLACE INTO statistics (
		step, s, gemit_x, nemit_x, beta_x, alpha_x, sigma_x, sigma_z, sigma_e, slope,
		cx, cxp, eta_x, eta_xp, r56, r51, r52,
		gemit_x_minus_dispersion, nemit_x_minus_dispersion,
		beta_x_minus_dispersion, alpha_x_minus_dispersion
	) VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		step, s.S, s.GEmitX, s.NEmitX, s.BetaX, s.AlphaX, s.SigmaX, s.SigmaZ, s.SigmaE, s.Slope,
		s.Cx, s.CxP, s.EtaX, s.EtaXP, s.R56, s.R51, s.R52,
		s.GEmitXMinusDispersion, s.NEmitXMinusDispersion,
		s.BetaXMinusDispersion, s.AlphaXMinusDispersion,
	)
	return err
}

// WriteParticles writes the full macro-particle array for one step
func (o *Writer) WriteParticles(step int, particles [][]float64) error {
	tx, err := o.db.Begin()
	if err != nil {
		return err
	}
	stmt, err := tx.Prepare(`INSERT OR REPLACE INTO particles (step, idx, x, xp, y, yp, z, delta) VALUES (?,?,?,?,?,?,?,?)`)
	if err != nil {
		tx.Rollback()
		return err
	}
	defer stmt.Close()
	for i, p := range particles {
		if _, err := stmt.Exec(step, i, p[0], p[1], p[2], p[3], p[4], p[5]); err != nil {
			tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

// WriteWakes writes the wake field grids for one step
func (o *Writer) WriteWakes(step int, xgrid, zgrid []float64, dEdct, xKick [][]float64) error {
	tx, err := o.db.Begin()
	if err != nil {
		return err
	}
	stmt, err := tx.Prepare(`INSERT OR REPLACE INTO wakes (step, ix, iz, x, z, dedct, xkick) VALUES (?,?,?,?,?,?,?)`)
	if err != nil {
		tx.Rollback()
		return err
	}
	defer stmt.Close()
	for ix, x := range xgrid {
		for iz, z := range zgrid {
			if _, err := stmt.Exec(step, ix, iz, x, z, dEdct[ix][iz], xKick[ix][iz]); err != nil {
				tx.Rollback()
				return err
			}
		}
	}
	return tx.Commit()
}

// Statistics reads back every recorded statistics row, ordered by step;
// used by tests and post-processing
func (o *Writer) Statistics() ([]drive.Statistics, error) {
	rows, err := o.db.Query(`SELECT s, gemit_x, nemit_x, beta_x, alpha_x, sigma_x, sigma_z, sigma_e, slope,
		cx, cxp, eta_x, eta_xp, r56, r51, r52,
		gemit_x_minus_dispersion, nemit_x_minus_dispersion,
		beta_x_minus_dispersion, alpha_x_minus_dispersion
		FROM statistics ORDER BY step`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []drive.Statistics
	for rows.Next() {
		var s drive.Statistics
		if err := rows.Scan(&s.S, &s.GEmitX, &s.NEmitX, &s.BetaX, &s.AlphaX, &s.SigmaX, &s.SigmaZ, &s.SigmaE, &s.Slope,
			&s.Cx, &s.CxP, &s.EtaX, &s.EtaXP, &s.R56, &s.R51, &s.R52,
			&s.GEmitXMinusDispersion, &s.NEmitXMinusDispersion,
			&s.BetaXMinusDispersion, &s.AlphaXMinusDispersion); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// IsoTimestamp formats a timestamp the way the original source's
// tools.isotime does: ISO-8601 with ':' replaced by '_' so the string is
// filesystem-safe, suitable as a unique per-run suffix for workdir-scoped
// output files. Components are passed in rather than read from time.Now so
// callers control the run's timestamp explicitly.
func IsoTimestamp(year int, month, day, hour, minute, second int) string {
	return fmt.Sprintf("%04d-%02d-%02dT%02d_%02d_%02d", year, month, day, hour, minute, second)
}

// ExpandWorkdir expands any ${VAR}/$VAR references in workdir against the
// process environment (spec.md §6: "workdir is expanded against the
// process environment; no other environment inputs"), then creates the
// resulting directory (and any missing parents) if it does not already
// exist, mirroring the original source's tools.full_path helper.
func ExpandWorkdir(workdir string) (string, error) {
	expanded := os.ExpandEnv(workdir)
	return expanded, os.MkdirAll(expanded, 0755)
}
