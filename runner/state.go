/*
 * state.go, part of prirun.
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
	"errors"
	"fmt"

	"github.com/rmera/prirun/qm"
)

//Configuration errors, all reported before Priroda is first run.
var (
	ErrNumProcs = errors.New("count of processes must be >= 1")
	ErrRamp     = errors.New("start optimization steps count must not exceed max steps count")
	ErrMaxSteps = errors.New("maximum step count must be >= 1")
)

//RampPolicy makes the optimization step budget grow between optimizations.
type RampPolicy struct {
	Start     int
	Increment int
	Max       int
}

func (R RampPolicy) Validate() error {
	if R.Start > R.Max {
		return fmt.Errorf("%w: start %d, max %d", ErrRamp, R.Start, R.Max)
	}
	if R.Increment < 0 {
		return fmt.Errorf("%w: negative increment %d", ErrRamp, R.Increment)
	}
	return nil
}

//Next returns the budget that follows budget: budget plus the increment,
//but never less than Start and never more than Max.
func (R RampPolicy) Next(budget int) int {
	n := budget + R.Increment
	if n < R.Start {
		n = R.Start
	}
	if n > R.Max {
		n = R.Max
	}
	return n
}

//RunState is the state carried from one engine pass to the next.
type RunState struct {
	Task      qm.Task
	Step      int
	In        string   //input for the next pass
	Vec       string   //current restart vector
	Budget    int      //optimization steps requested
	Converged bool     //once set, one more pass is run and the loop ends
	Molecule  []string //molecule block for the next input
	Energy    []string //energy block of the last parsed output
}

//Reason tells why a run stopped.
type Reason int

const (
	Converged Reason = iota + 1
	StepLimit
)

func (R Reason) String() string {
	switch R {
	case Converged:
		return "converged"
	case StepLimit:
		return "step limit"
	}
	return "unknown"
}

//Result is returned by a run that ended normally.
type Result struct {
	Reason  Reason
	State   RunState
	Passes  int      //engine invocations
	Written []string //input files written, in order
}
