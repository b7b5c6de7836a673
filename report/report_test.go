/*
 * report_test.go, part of prirun.
 *
 *
 * Copyright 2024 prirun contributors
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 *
 */

package report

import (
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/rmera/prirun/geom"
	"github.com/rmera/prirun/qm"
	"github.com/rmera/prirun/runner"
)

func optPass(n, step int, z, e float64, converged bool) *runner.Pass {
	return &runner.Pass{
		Number:   n,
		Step:     step,
		Task:     qm.Optimize,
		Elapsed:  90 * time.Second,
		Output:   &qm.Output{Converged: converged},
		Molecule: []string{"$molecule\n", " cart\n", " 8 0.0 0.0 " + ftoa(z) + "\n", " 1 0.0 0.7 -0.4\n", "$end\n"},
		Energy:   []string{"$Energy\n", " E= " + ftoa(e) + "\n", "G(max)= 0.01\n"},
	}
}

func hesPass(n, step int, e float64) *runner.Pass {
	return &runner.Pass{
		Number:  n,
		Step:    step,
		Task:    qm.Hessian,
		Elapsed: 30 * time.Second,
		Output:  new(qm.Output),
		Energy:  []string{" E= " + ftoa(e) + "\n"},
	}
}

func ftoa(f float64) string { return strconv.FormatFloat(f, 'f', -1, 64) }

func quiet() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

//sampleProfile has two optimizations and a Hessian in between, plus the
//closing pass, which has no output.
func sampleProfile(Te *testing.T, traj *geom.XYZWriter) *Profile {
	Te.Helper()
	P := NewProfile(quiet())
	P.Trajectory = traj
	passes := []*runner.Pass{
		optPass(1, 1, 0.1, -76.1, false),
		hesPass(2, 2, -76.15),
		optPass(3, 2, 0.4, -76.3, true),
		{Number: 4, Step: 3, Task: qm.Hessian, Elapsed: time.Minute},
	}
	for _, p := range passes {
		if err := P.Observe(p); err != nil {
			Te.Fatal(err)
		}
	}
	return P
}

func TestProfile(Te *testing.T) {
	P := sampleProfile(Te, nil)
	if len(P.Points) != 4 || !P.Converged {
		Te.Fatalf("got %d points, converged %v", len(P.Points), P.Converged)
	}
	p := P.Points[2]
	if !p.HasEnergy || p.Energy != -76.3 || !p.HasGmax || p.Gmax != 0.01 {
		Te.Errorf("bad point %+v", p)
	}
	//One atom moved by 0.3 out of two.
	if !p.HasRMSD || math.Abs(p.RMSD-0.3/math.Sqrt(2)) > 1e-9 {
		Te.Errorf("rmsd %v %v", p.RMSD, p.HasRMSD)
	}
	if P.Points[0].HasRMSD || P.Points[1].HasRMSD {
		Te.Error("rmsd without a previous geometry")
	}
	if P.Points[3].HasEnergy {
		Te.Error("energy for the closing pass")
	}
	if P.EngineTime() != 270*time.Second {
		Te.Errorf("engine time %v", P.EngineTime())
	}
	last, ok := P.Last()
	if !ok || last.Pass != 3 {
		Te.Errorf("last point %+v", last)
	}
}

func TestSummary(Te *testing.T) {
	S := sampleProfile(Te, nil).Summarize()
	if S.Passes != 4 || S.Energies != 3 || !S.Converged {
		Te.Fatalf("summary %+v", S)
	}
	if S.First != -76.1 || S.Last != -76.3 || S.Min != -76.3 || S.Max != -76.1 {
		Te.Errorf("summary %+v", S)
	}
	if math.Abs(S.Change+0.2) > 1e-9 || math.Abs(S.Mean+76.18333333333333) > 1e-9 || S.StdDev <= 0 {
		Te.Errorf("summary %+v", S)
	}
	empty := NewProfile(nil).Summarize()
	if empty.Energies != 0 || empty.String() != "0 passes, no energies" {
		Te.Errorf("empty summary %+v", empty)
	}
}

func TestTrajectory(Te *testing.T) {
	name := filepath.Join(Te.TempDir(), "traj.xyz")
	W, err := geom.NewXYZWriter(name)
	if err != nil {
		Te.Fatal(err)
	}
	sampleProfile(Te, W)
	if W.Frames() != 2 {
		Te.Errorf("got %d frames", W.Frames())
	}
	if err := W.Close(); err != nil {
		Te.Fatal(err)
	}
	data, err := os.ReadFile(name)
	if err != nil {
		Te.Fatal(err)
	}
	if !strings.Contains(string(data), "step 2 E= -76.30000000") {
		Te.Errorf("frame title missing:\n%s", data)
	}
}

func TestPlot(Te *testing.T) {
	name := filepath.Join(Te.TempDir(), "energy.png")
	if err := sampleProfile(Te, nil).Plot("water", name); err != nil {
		Te.Fatal(err)
	}
	if fi, err := os.Stat(name); err != nil || fi.Size() == 0 {
		Te.Errorf("no plot written: %v", err)
	}
	if err := NewProfile(nil).Plot("empty", name); err != ErrNoEnergies {
		Te.Errorf("want ErrNoEnergies, got %v", err)
	}
}

func TestMetrics(Te *testing.T) {
	name := filepath.Join(Te.TempDir(), "prirun.prom")
	if err := WriteMetrics(name, "test", sampleProfile(Te, nil)); err != nil {
		Te.Fatal(err)
	}
	data, err := os.ReadFile(name)
	if err != nil {
		Te.Fatal(err)
	}
	for _, want := range []string{
		`prirun_energy_hartree{run_id="test"} -76.3`,
		`prirun_step{run_id="test"} 3`,
		`prirun_passes_total{run_id="test"} 4`,
		`prirun_engine_seconds_total{run_id="test"} 270`,
		`prirun_converged{run_id="test"} 1`,
		`prirun_max_gradient{run_id="test"} 0.01`,
	} {
		if !strings.Contains(string(data), want) {
			Te.Errorf("%s not in\n%s", want, data)
		}
	}
}
