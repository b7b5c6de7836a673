/*
 * errors.go, part of prirun.
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
	"errors"
	"fmt"
	"strings"
)

//errMsg is the type of the error messages below. Each one can be
//matched with errors.Is against any Error carrying it.
type errMsg string

func (e errMsg) Error() string { return string(e) }

//Error messages
const (
	ErrWrongTask       = errMsg("wrong task")
	ErrTimeout         = errMsg("process timed out")
	ErrMalformedOutput = errMsg("error in out file")
	ErrNotRunning      = errMsg("engine process failed")
	ErrCantInput       = errMsg("can't read or build input")
	ErrNoOutput        = errMsg("can't read output file")
)

//Error is the error type returned by this package. It records the program,
//the file involved, and a list of the functions it went through.
type Error struct {
	message    errMsg
	code       string //the program, for now always Priroda
	inputname  string
	additional string
	deco       []string
	critical   bool
}

func (err Error) Error() string {
	s := fmt.Sprintf("%s error: %s", err.code, err.message)
	if err.inputname != "" {
		s = fmt.Sprintf("%s file %s error: %s", err.code, err.inputname, err.message)
	}
	if err.additional != "" {
		s += ": " + err.additional
	}
	return s
}

//Decorate adds dec to the list of calling functions, unless dec is empty,
//and returns the list. Since Error is passed by value, use errDecorate
//to keep the decoration when passing the error up.
func (err Error) Decorate(dec string) []string {
	if dec != "" {
		err.deco = append(err.deco, dec)
	}
	return err.deco
}

//Stack returns the decoration list joined in calling order.
func (err Error) Stack() string { return strings.Join(err.deco, " <- ") }

func (err Error) Unwrap() error { return err.message }

func (err Error) Code() string { return err.code }

func (err Error) InputName() string { return err.inputname }

//Critical returns false only for errors after which the caller can
//reasonably go on, such as the engine exiting with a non-zero status
//after writing its output.
func (err Error) Critical() bool { return err.critical }

//errDecorate appends caller to the decoration of err if err is an Error,
//and returns it. Other errors are returned untouched.
func errDecorate(err error, caller string) error {
	var e Error
	if !errors.As(err, &e) {
		return err
	}
	e.deco = append(e.deco, caller)
	return e
}
