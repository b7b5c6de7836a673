/*
 * files.go, part of prirun.
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

package runner

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rmera/prirun/qm"
)

//fileName builds the name of the file for the given step and task,
//e.g. water_03_Opt.in
func fileName(dir, name string, step int, task qm.Task, ext string) string {
	return filepath.Join(dir, fmt.Sprintf("%s_%02d_%s%s", name, step, task.Suffix(), ext))
}

//copyFile copies src into a new file dst.
func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

//writeInput writes the parts into filename, in order.
func writeInput(filename string, parts ...[]string) error {
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	for _, part := range parts {
		for _, line := range part {
			if _, err := io.WriteString(f, line); err != nil {
				f.Close()
				return err
			}
		}
	}
	return f.Close()
}
