/*
 * profile.go, part of prirun.
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
	"fmt"
	"log/slog"
	"time"

	"github.com/rmera/prirun/geom"
	"github.com/rmera/prirun/qm"
	"github.com/rmera/prirun/runner"
)

//Point is the record of one engine pass.
type Point struct {
	Pass    int
	Step    int
	Task    qm.Task
	Elapsed time.Duration
	Energy  float64
	Gmax    float64
	RMSD    float64 //to the previous optimized geometry
	//Which of the values above were actually found.
	HasEnergy, HasGmax, HasRMSD bool
}

//Profile collects a Point per pass. It is meant to be registered as a
//runner.Observer. If Trajectory is not nil, each optimized geometry is
//appended to it as a frame.
type Profile struct {
	Points     []Point
	Converged  bool
	Trajectory *geom.XYZWriter
	Logger     *slog.Logger
	prev       *geom.Geometry
}

//NewProfile returns an empty profile that logs to logger
//(slog.Default() if nil).
func NewProfile(logger *slog.Logger) *Profile {
	if logger == nil {
		logger = slog.Default()
	}
	return &Profile{Logger: logger}
}

var _ runner.Observer = (*Profile)(nil)

//Observe records p. Errors come only from the geometry handling; the
//point itself is always recorded.
func (P *Profile) Observe(p *runner.Pass) error {
	pt := Point{Pass: p.Number, Step: p.Step, Task: p.Task, Elapsed: p.Elapsed}
	defer func() { P.Points = append(P.Points, pt) }()
	if p.Output == nil {
		return nil
	}
	P.Converged = P.Converged || p.Output.Converged
	pt.Energy, pt.HasEnergy = qm.EnergyValue(p.Energy)
	pt.Gmax, pt.HasGmax = qm.MaxGradient(p.Energy)
	if p.Task != qm.Optimize {
		return nil
	}
	G, err := geom.ParseBlock(p.Molecule)
	if err != nil {
		return fmt.Errorf("step %d geometry: %w", p.Step, err)
	}
	if G.Len() == 0 {
		return nil
	}
	if P.prev != nil && P.prev.Len() == G.Len() {
		pt.RMSD, err = geom.RMSD(P.prev, G)
		if err != nil {
			return err
		}
		pt.HasRMSD = true
		P.Logger.Info("geometry change", "step", p.Step, "rmsd", pt.RMSD)
	}
	P.prev = G
	if P.Trajectory != nil {
		title := fmt.Sprintf("step %d", p.Step)
		if pt.HasEnergy {
			title = fmt.Sprintf("%s E= %.8f", title, pt.Energy)
		}
		return P.Trajectory.WNext(G, title)
	}
	return nil
}

//Energies returns the pass numbers and energies of the points where an
//energy was found.
func (P *Profile) Energies() (x, e []float64) {
	for _, v := range P.Points {
		if v.HasEnergy {
			x = append(x, float64(v.Pass))
			e = append(e, v.Energy)
		}
	}
	return x, e
}

//Last returns the last point with an energy, and false if there is none.
func (P *Profile) Last() (Point, bool) {
	for i := len(P.Points) - 1; i >= 0; i-- {
		if P.Points[i].HasEnergy {
			return P.Points[i], true
		}
	}
	return Point{}, false
}

//EngineTime is the wall time spent in all the engine passes.
func (P *Profile) EngineTime() time.Duration {
	var t time.Duration
	for _, v := range P.Points {
		t += v.Elapsed
	}
	return t
}
