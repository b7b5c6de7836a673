/*
 * priroda.go, part of prirun.
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
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"time"
)

//DefaultPoll is the interval at which a running engine is checked.
const DefaultPoll = time.Second

//PrirodaHandle runs the Priroda program, optionally through an MPI launcher.
//Note that the default paths are NOT considered part of the API.
type PrirodaHandle struct {
	command  string
	launcher string
	nCPU     int
	timeout  time.Duration
	poll     time.Duration
}

func NewPrirodaHandle() *PrirodaHandle {
	run := new(PrirodaHandle)
	run.SetDefaults()
	return run
}

//PrirodaHandle methods

//SetDefaults sets the Priroda command to $PRIRODA_PATH/p and the launcher
//to $PRIRODA_PATH/mpiexec, or to ./p and ./mpiexec if PRIRODA_PATH is not
//defined. One process, no timeout.
func (O *PrirodaHandle) SetDefaults() {
	O.command = os.ExpandEnv("${PRIRODA_PATH}/p")
	if O.command == "/p" { //PRIRODA_PATH not defined
		O.command = "./p"
	}
	O.launcher = os.ExpandEnv("${PRIRODA_PATH}/mpiexec")
	if O.launcher == "/mpiexec" {
		O.launcher = "./mpiexec"
	}
	O.nCPU = 1
	O.timeout = 0
	O.poll = DefaultPoll
}

//Sets the number of MPI processes. With more than one, the launcher is used.
func (O *PrirodaHandle) SetnCPU(cpu int) {
	O.nCPU = cpu
}

func (O *PrirodaHandle) SetCommand(name string) {
	O.command = name
}

func (O *PrirodaHandle) Command() string {
	return O.command
}

func (O *PrirodaHandle) SetLauncher(name string) {
	O.launcher = name
}

//SetTimeout sets the maximum wall time for one run. Zero means no limit.
func (O *PrirodaHandle) SetTimeout(t time.Duration) {
	O.timeout = t
}

//SetPoll sets how often the running process is checked.
func (O *PrirodaHandle) SetPoll(p time.Duration) {
	if p <= 0 {
		p = DefaultPoll
	}
	O.poll = p
}

//Args returns the full command line to run Priroda on the input in,
//writing the output out.
func (O *PrirodaHandle) Args(in, out string) []string {
	args := make([]string, 0, 6)
	if O.nCPU > 1 {
		args = append(args, O.launcher, "-n", strconv.Itoa(O.nCPU))
	}
	return append(args, O.command, in, out)
}

//Run runs Priroda on the input in and waits for it to finish, checking
//the process every poll interval. If the timeout passes, or ctx is
//cancelled, the process gets one interrupt signal and Run returns
//without waiting for it to exit. Run returns the standard output of
//the process. A non-zero exit status gives a non-critical error, since
//the output file may still be usable.
func (O *PrirodaHandle) Run(ctx context.Context, in, out string) ([]byte, error) {
	args := O.Args(in, out)
	command := exec.Command(args[0], args[1:]...)
	var stdout bytes.Buffer
	command.Stdout = &stdout
	command.Stderr = os.Stderr
	if err := command.Start(); err != nil {
		return nil, Error{ErrNotRunning, Priroda, in, err.Error(), []string{"exec.Start", "Run"}, true}
	}
	done := make(chan error, 1)
	go func() { done <- command.Wait() }()
	ticker := time.NewTicker(O.poll)
	defer ticker.Stop()
	start := time.Now()
	for {
		select {
		case err := <-done:
			if err == nil {
				return stdout.Bytes(), nil
			}
			var exit *exec.ExitError
			critical := !errors.As(err, &exit)
			return stdout.Bytes(), Error{ErrNotRunning, Priroda, in, err.Error(), []string{"exec.Wait", "Run"}, critical}
		case <-ctx.Done():
			return nil, fmt.Errorf("running %s%s: %w", in, interrupt(command.Process), ctx.Err())
		case <-ticker.C:
			if O.timeout > 0 && time.Since(start) >= O.timeout {
				detail := fmt.Sprintf("pid %d after %s%s", command.Process.Pid, O.timeout, interrupt(command.Process))
				return nil, Error{ErrTimeout, Priroda, in, detail, []string{"Run"}, true}
			}
		}
	}
}

//interrupt sends p a single interrupt signal. It returns "" if the signal
//was delivered, and a note to append to the error otherwise.
func interrupt(p *os.Process) string {
	if err := p.Signal(os.Interrupt); err != nil {
		return fmt.Sprintf(" (interrupt failed: %v)", err)
	}
	return ""
}
