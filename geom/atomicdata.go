/*
 * atomicdata.go, part of prirun.
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

import "strings"

//Element symbols indexed by atomic number. Index 0 is a dummy atom.
var symbols = [...]string{
	"X",
	"H", "He",
	"Li", "Be", "B", "C", "N", "O", "F", "Ne",
	"Na", "Mg", "Al", "Si", "P", "S", "Cl", "Ar",
	"K", "Ca", "Sc", "Ti", "V", "Cr", "Mn", "Fe", "Co", "Ni", "Cu", "Zn",
	"Ga", "Ge", "As", "Se", "Br", "Kr",
	"Rb", "Sr", "Y", "Zr", "Nb", "Mo", "Tc", "Ru", "Rh", "Pd", "Ag", "Cd",
	"In", "Sn", "Sb", "Te", "I", "Xe",
	"Cs", "Ba", "La", "Ce", "Pr", "Nd", "Pm", "Sm", "Eu", "Gd", "Tb", "Dy",
	"Ho", "Er", "Tm", "Yb", "Lu", "Hf", "Ta", "W", "Re", "Os", "Ir", "Pt",
	"Au", "Hg", "Tl", "Pb", "Bi", "Po", "At", "Rn",
}

//symbolZ is the reverse of symbols, filled at init.
var symbolZ = make(map[string]int, len(symbols))

func init() {
	for z, s := range symbols {
		symbolZ[s] = z
	}
}

//Symbol returns the element symbol for the atomic number z, and false
//if z is out of the table.
func Symbol(z int) (string, bool) {
	if z < 0 || z >= len(symbols) {
		return "", false
	}
	return symbols[z], true
}

//AtomicNumber returns the atomic number for the symbol sym, which is
//matched case-insensitively ("CL", "cl" and "Cl" all work).
func AtomicNumber(sym string) (int, bool) {
	if sym == "" {
		return 0, false
	}
	z, ok := symbolZ[strings.ToUpper(sym[:1])+strings.ToLower(sym[1:])]
	return z, ok
}
