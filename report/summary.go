/*
 * summary.go, part of prirun.
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

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

//Summary condenses a Profile.
type Summary struct {
	Passes     int
	Energies   int //points with an energy
	First      float64
	Last       float64
	Min        float64
	Max        float64
	Change     float64 //Last - First
	Mean       float64
	StdDev     float64
	EngineTime time.Duration
	Converged  bool
}

//Summarize computes the summary of the profile. The energy fields are
//left at zero if no energy was recorded.
func (P *Profile) Summarize() Summary {
	S := Summary{Passes: len(P.Points), EngineTime: P.EngineTime(), Converged: P.Converged}
	_, e := P.Energies()
	S.Energies = len(e)
	if len(e) == 0 {
		return S
	}
	S.First, S.Last = e[0], e[len(e)-1]
	S.Min, S.Max = floats.Min(e), floats.Max(e)
	S.Change = S.Last - S.First
	S.Mean, S.StdDev = stat.MeanStdDev(e, nil)
	if len(e) == 1 {
		S.StdDev = 0 //undefined for one sample
	}
	return S
}

//LogValue lets a Summary be logged as a group.
func (S Summary) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.Int("passes", S.Passes),
		slog.Bool("converged", S.Converged),
		slog.String("engine_time", S.EngineTime.Round(time.Second).String()),
	}
	if S.Energies > 0 {
		attrs = append(attrs,
			slog.Float64("first_energy", S.First),
			slog.Float64("last_energy", S.Last),
			slog.Float64("min_energy", S.Min),
			slog.Float64("energy_change", S.Change),
			slog.Float64("energy_stddev", S.StdDev),
		)
	}
	return slog.GroupValue(attrs...)
}

func (S Summary) String() string {
	if S.Energies == 0 {
		return fmt.Sprintf("%d passes, no energies", S.Passes)
	}
	return fmt.Sprintf("%d passes, E %.8f -> %.8f (min %.8f, change %.3e)", S.Passes, S.First, S.Last, S.Min, S.Change)
}
