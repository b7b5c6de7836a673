/*
 * geometry.go, part of prirun.
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

package geom

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/mat"
)

//Geometry is a set of atoms with cartesian coordinates, one row per atom.
type Geometry struct {
	Symbols []string
	Coords  *mat.Dense
}

//Len returns the number of atoms in the geometry.
func (G *Geometry) Len() int {
	if G == nil {
		return 0
	}
	return len(G.Symbols)
}

//ParseBlock reads the atoms of a Priroda molecule block. Rows of the form
//"Z x y z" (the atomic number may also be an element symbol, and extra
//columns are ignored) are atoms; every other line (markers, charge and
//multiplicity, coordinate type) is skipped. Tags left by the output
//parser must be stripped beforehand. A block with no atom rows gives an
//empty geometry, not an error.
func ParseBlock(lines []string) (*Geometry, error) {
	symbols := make([]string, 0, len(lines))
	coords := make([]float64, 0, 3*len(lines))
	for i, line := range lines {
		fields := strings.Fields(line)
		if len(fields) < 4 {
			continue
		}
		sym, ok := element(fields[0])
		if !ok {
			continue
		}
		var xyz [3]float64
		var err error
		for j := range xyz {
			xyz[j], err = strconv.ParseFloat(fields[j+1], 64)
			if err != nil {
				break
			}
		}
		if err != nil {
			//an element followed by something that is not a number is
			//most likely a broken row, not a keyword line.
			return nil, fmt.Errorf("geom: molecule line %d: %q: %w", i+1, strings.TrimSpace(line), err)
		}
		symbols = append(symbols, sym)
		coords = append(coords, xyz[:]...)
	}
	G := &Geometry{Symbols: symbols}
	if len(symbols) > 0 {
		G.Coords = mat.NewDense(len(symbols), 3, coords)
	}
	return G, nil
}

func element(field string) (string, bool) {
	if z, err := strconv.Atoi(field); err == nil {
		if z <= 0 {
			return "", false
		}
		return Symbol(z)
	}
	//Symbols can't be longer than 2 letters, this also rules out keywords.
	if len(field) > 2 {
		return "", false
	}
	z, ok := AtomicNumber(field)
	if !ok || z == 0 {
		return "", false
	}
	return symbols[z], true
}

//RMSD returns the root mean square deviation between the coordinates of
//A and B, which must have the same number of atoms. No superposition is
//performed, as successive optimization steps share the same frame.
func RMSD(A, B *Geometry) (float64, error) {
	if A.Len() != B.Len() {
		return 0, fmt.Errorf("geom: RMSD of geometries with %d and %d atoms", A.Len(), B.Len())
	}
	if A.Len() == 0 {
		return 0, fmt.Errorf("geom: RMSD of empty geometries")
	}
	var diff mat.Dense
	diff.Sub(A.Coords, B.Coords)
	//The Frobenius norm is the square root of the sum of squared deviations.
	return mat.Norm(&diff, 2) / math.Sqrt(float64(A.Len())), nil
}
