/*
 * xyz.go, part of prirun.
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
	"bufio"
	"fmt"
	"os"
	"strings"
)

//XYZWriter writes geometries as consecutive frames of an XYZ file.
type XYZWriter struct {
	f        *os.File
	w        *bufio.Writer
	filename string
	natoms   int
	frames   int
}

//NewXYZWriter creates (or truncates) filename for writing.
func NewXYZWriter(filename string) (*XYZWriter, error) {
	f, err := os.Create(filename)
	if err != nil {
		return nil, err
	}
	return &XYZWriter{f: f, w: bufio.NewWriter(f), filename: filename}, nil
}

//Frames returns the number of frames written so far.
func (W *XYZWriter) Frames() int { return W.frames }

//WNext writes G as a new frame, with comment as the title line.
//All frames must have the same number of atoms.
func (W *XYZWriter) WNext(G *Geometry, comment string) error {
	if G.Len() == 0 {
		return fmt.Errorf("geom: empty geometry for %s", W.filename)
	}
	if W.frames > 0 && G.Len() != W.natoms {
		return fmt.Errorf("geom: %d atoms given for %s, but %d expected", G.Len(), W.filename, W.natoms)
	}
	W.natoms = G.Len()
	comment = strings.ReplaceAll(comment, "\n", " ")
	if _, err := fmt.Fprintf(W.w, "%d\n%s\n", G.Len(), comment); err != nil {
		return err
	}
	for i, sym := range G.Symbols {
		_, err := fmt.Fprintf(W.w, "%-2s  %12.6f%12.6f%12.6f\n", sym, G.Coords.At(i, 0), G.Coords.At(i, 1), G.Coords.At(i, 2))
		if err != nil {
			return err
		}
	}
	W.frames++
	//Flushed on every frame so the trajectory can be watched during long runs.
	return W.w.Flush()
}

func (W *XYZWriter) Close() error {
	if W == nil || W.f == nil {
		return nil
	}
	err := W.w.Flush()
	if cerr := W.f.Close(); err == nil {
		err = cerr
	}
	W.f = nil
	return err
}
