/*
 * plot.go, part of prirun.
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
	"errors"
	"image/color"

	"github.com/rmera/prirun/qm"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

//ErrNoEnergies is returned when there is nothing to plot.
var ErrNoEnergies = errors.New("no energies in profile")

var (
	optColor = color.RGBA{R: 20, G: 60, B: 200, A: 255}
	hesColor = color.RGBA{R: 200, G: 30, B: 30, A: 255}
)

//Plot saves a plot of the energy against the pass number to filename.
//The format is taken from the extension (png, svg, pdf...).
//Hessian passes are marked in a different color.
func (P *Profile) Plot(title, filename string) error {
	var all, hes plotter.XYs
	for _, v := range P.Points {
		if !v.HasEnergy {
			continue
		}
		xy := plotter.XY{X: float64(v.Pass), Y: v.Energy}
		all = append(all, xy)
		if v.Task == qm.Hessian {
			hes = append(hes, xy)
		}
	}
	if len(all) == 0 {
		return ErrNoEnergies
	}
	p := plot.New()
	p.Title.Padding = 3 * vg.Millimeter
	p.Title.Text = title
	p.X.Label.Text = "Pass"
	p.Y.Label.Text = "Energy (Hartree)"
	p.Add(plotter.NewGrid())
	l, s, err := plotter.NewLinePoints(all)
	if err != nil {
		return err
	}
	l.Color = optColor
	s.GlyphStyle.Color = optColor
	p.Add(l, s)
	p.Legend.Add("Energy", l, s)
	if len(hes) > 0 {
		h, err := plotter.NewScatter(hes)
		if err != nil {
			return err
		}
		h.GlyphStyle.Color = hesColor
		h.GlyphStyle.Radius = vg.Points(4)
		p.Add(h)
		p.Legend.Add(qm.Hessian.String(), h)
	}
	return p.Save(6*vg.Inch, 4*vg.Inch, filename)
}
