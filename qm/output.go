/*
 * output.go, part of prirun.
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
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

//Tags and markers in Priroda outputs.
const (
	EnergyTag        = "eng>"
	MoleculeTag      = "mol>"
	ConvergedTag     = "MOL>" //the engine switches to upper case once the optimization has converged
	GradientMarker   = "G(max)"
	energySection    = EnergyTag + "$Energy"
	moleculeSection  = MoleculeTag + MoleculeBegin
	convergedSection = ConvergedTag + MoleculeBegin
)

//Output is what is recovered from a finished Priroda run.
type Output struct {
	Molecule  []string //tagged molecule lines, empty for Hessian runs
	Energy    []string //tagged energy and gradient lines
	Converged bool
}

//ReadOutput parses the Priroda output filename, produced by a run of
//the given task.
func ReadOutput(filename string, task Task) (*Output, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, Error{ErrNoOutput, Priroda, filename, err.Error(), []string{"os.Open", "ReadOutput"}, true}
	}
	defer f.Close()
	out, err := ParseOutput(f, task)
	if err != nil {
		return nil, errDecorate(err, "ReadOutput")
	}
	return out, nil
}

//ParseOutput reads a Priroda output from r.
//For Hessian runs, only the energy and gradient lines are collected.
//For optimizations, each section marker discards what was collected
//before for that block, so only the last section of each kind is kept.
//The upper case molecule section also signals convergence.
func ParseOutput(r io.Reader, task Task) (*Output, error) {
	out := new(Output)
	br := bufio.NewReader(r)
	for {
		line, err := br.ReadString('\n')
		if err != nil && err != io.EOF {
			return nil, Error{ErrNoOutput, Priroda, "", err.Error(), []string{"ParseOutput"}, true}
		}
		if line != "" {
			if !strings.HasSuffix(line, "\n") {
				line += "\n"
			}
			out.scan(line, task)
		}
		if err == io.EOF {
			break
		}
	}
	return out, nil
}

func (O *Output) scan(line string, task Task) {
	energy := strings.Contains(line, EnergyTag) || strings.Contains(line, GradientMarker)
	if task == Hessian {
		if energy {
			O.Energy = append(O.Energy, line)
		}
		return
	}
	if strings.Contains(line, energySection) {
		O.Energy = O.Energy[:0]
	} else if strings.Contains(line, moleculeSection) {
		O.Molecule = O.Molecule[:0]
	}
	if strings.Contains(line, convergedSection) {
		O.Molecule = O.Molecule[:0]
		O.Converged = true
	}
	if energy {
		O.Energy = append(O.Energy, line)
	} else if strings.Contains(line, MoleculeTag) || strings.Contains(line, ConvergedTag) {
		O.Molecule = append(O.Molecule, line)
	}
}

//CheckBlocks returns an error if either the molecule or the energy block
//obtained from the output filename is empty. This is the only check made
//on the contents of an output.
func CheckBlocks(filename string, molecule, energy []string) error {
	if len(molecule) > 0 && len(energy) > 0 {
		return nil
	}
	detail := fmt.Sprintf("%d molecule lines, %d energy lines", len(molecule), len(energy))
	return Error{ErrMalformedOutput, Priroda, filename, detail, []string{"CheckBlocks"}, true}
}

var tagReplacer = strings.NewReplacer(ConvergedTag, "", MoleculeTag, "", EnergyTag, "")

//StripTags returns a copy of lines with the output tags removed, ready to
//be written into a new input.
func StripTags(lines []string) []string {
	ret := make([]string, len(lines))
	for i, v := range lines {
		ret[i] = tagReplacer.Replace(v)
	}
	return ret
}
