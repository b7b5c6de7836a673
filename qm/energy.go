/*
 * energy.go, part of prirun.
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

package qm

import (
	"strconv"
	"strings"
)

//EnergyValue returns the last total energy reported in the energy block
//lines, tagged or not. On each line the number after "E=" is taken, or the
//first number in the line if there is no "E=". The second value is false
//if no energy was found.
func EnergyValue(lines []string) (float64, bool) {
	var energy float64
	var found bool
	for _, line := range lines {
		if strings.Contains(line, GradientMarker) {
			continue
		}
		line = tagReplacer.Replace(line)
		var v float64
		var ok bool
		if i := strings.Index(line, "E="); i >= 0 {
			v, ok = firstFloat(line[i+2:])
		} else {
			v, ok = firstFloat(line)
		}
		if ok {
			energy, found = v, true
		}
	}
	return energy, found
}

//MaxGradient returns the last maximum gradient component reported, the
//first number after the G(max) marker.
func MaxGradient(lines []string) (float64, bool) {
	var gmax float64
	var found bool
	for _, line := range lines {
		i := strings.Index(line, GradientMarker)
		if i < 0 {
			continue
		}
		rest := strings.TrimLeft(line[i+len(GradientMarker):], " =:")
		if v, ok := firstFloat(rest); ok {
			gmax, found = v, true
		}
	}
	return gmax, found
}

//firstFloat returns the first blank-separated field in s that parses as a
//float. Fortran-style exponents (1.0D-03) are accepted.
func firstFloat(s string) (float64, bool) {
	for _, field := range strings.Fields(s) {
		field = strings.Trim(field, ",;")
		field = strings.Replace(strings.Replace(field, "D", "E", 1), "d", "e", 1)
		if v, err := strconv.ParseFloat(field, 64); err == nil {
			return v, true
		}
	}
	return 0, false
}
