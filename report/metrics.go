/*
 * metrics.go, part of prirun.
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
	"github.com/prometheus/client_golang/prometheus"
)

//Metrics holds the gauges exported for a run. They are kept in their own
//registry and written as a textfile for the node exporter.
type Metrics struct {
	reg        *prometheus.Registry
	step       prometheus.Gauge
	energy     prometheus.Gauge
	gmax       prometheus.Gauge
	passes     prometheus.Counter
	engineTime prometheus.Counter
	converged  prometheus.Gauge
}

//NewMetrics returns the metrics of a run. Every series carries the
//run_id label.
func NewMetrics(runID string) *Metrics {
	labels := prometheus.Labels{"run_id": runID}
	M := &Metrics{
		reg: prometheus.NewRegistry(),
		step: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "prirun_step", Help: "Last optimization step run", ConstLabels: labels,
		}),
		energy: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "prirun_energy_hartree", Help: "Last total energy reported by Priroda", ConstLabels: labels,
		}),
		gmax: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "prirun_max_gradient", Help: "Last maximum gradient reported by Priroda", ConstLabels: labels,
		}),
		passes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "prirun_passes_total", Help: "Priroda invocations", ConstLabels: labels,
		}),
		engineTime: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "prirun_engine_seconds_total", Help: "Wall time spent running Priroda", ConstLabels: labels,
		}),
		converged: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "prirun_converged", Help: "1 once the optimization has converged", ConstLabels: labels,
		}),
	}
	M.reg.MustRegister(M.step, M.energy, M.gmax, M.passes, M.engineTime, M.converged)
	return M
}

//Update sets the metrics from the points in P.
func (M *Metrics) Update(P *Profile) {
	for _, v := range P.Points {
		M.passes.Inc()
		M.engineTime.Add(v.Elapsed.Seconds())
		M.step.Set(float64(v.Step))
		if v.HasEnergy {
			M.energy.Set(v.Energy)
		}
		if v.HasGmax {
			M.gmax.Set(v.Gmax)
		}
	}
	if P.Converged {
		M.converged.Set(1)
	}
}

//WriteFile writes the metrics to filename in the Prometheus text format.
func (M *Metrics) WriteFile(filename string) error {
	return prometheus.WriteToTextfile(filename, M.reg)
}

//WriteMetrics writes the metrics for the profile P of the run runID.
func WriteMetrics(filename, runID string, P *Profile) error {
	M := NewMetrics(runID)
	M.Update(P)
	return M.WriteFile(filename)
}
