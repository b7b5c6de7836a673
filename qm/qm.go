/*
 * qm.go, part of prirun.
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

import "strings"

//Priroda is the program name used in errors and logs.
const Priroda = "Priroda"

//Task is the mode in which the engine is run for one invocation.
type Task int

const (
	Optimize Task = iota
	Hessian
)

var taskNames = [...]string{"Optimize", "Hessian"}

var taskSuffixes = [...]string{"Opt", "Hes"}

func (T Task) String() string {
	if T < 0 || int(T) >= len(taskNames) {
		return "Unknown"
	}
	return taskNames[T]
}

//Suffix returns the short tag used in the names of the files
//produced for a task ("Opt" or "Hes").
func (T Task) Suffix() string {
	if T < 0 || int(T) >= len(taskSuffixes) {
		return ""
	}
	return taskSuffixes[T]
}

//Next returns the task that follows T in the alternation.
func (T Task) Next() Task {
	if T == Optimize {
		return Hessian
	}
	return Optimize
}

//ParseTask returns the Task named by name. Only the first letter is
//case-insensitive in practice, since the rest of the name is lowered
//before comparing, as Priroda itself does.
func ParseTask(name string) (Task, error) {
	c := capitalize(strings.TrimSpace(name))
	for i, v := range taskNames {
		if c == v {
			return Task(i), nil
		}
	}
	return 0, Error{ErrWrongTask, Priroda, "", name, []string{"ParseTask"}, true}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + strings.ToLower(s[1:])
}
