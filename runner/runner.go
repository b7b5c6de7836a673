/*
 * runner.go, part of prirun.
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
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/rmera/prirun/qm"
)

//DefaultMaxSteps is the step limit used when none is given.
const DefaultMaxSteps = 50

//Engine runs one calculation on the input in, writing the output out.
//*qm.PrirodaHandle is the real implementation.
type Engine interface {
	Run(ctx context.Context, in, out string) ([]byte, error)
}

//Pass describes one finished engine invocation.
type Pass struct {
	Number   int //1-based count of invocations in this run
	Step     int
	Task     qm.Task
	In, Out  string
	Elapsed  time.Duration
	Output   *qm.Output //nil for the closing pass, whose output is not read
	Molecule []string   //blocks passed to the next input, tags stripped
	Energy   []string
}

//Observer gets every pass after it has been handled by the runner.
//Observers report and archive; their errors are logged and never stop
//the run.
type Observer interface {
	Observe(p *Pass) error
}

//ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(p *Pass) error

func (f ObserverFunc) Observe(p *Pass) error { return f(p) }

//Options for a StepRunner. The zero value is usable.
type Options struct {
	MaxSteps  int         //DefaultMaxSteps if 0
	Ramp      *RampPolicy //nil keeps the budget from the input
	Logger    *slog.Logger
	Observers []Observer
}

//StepRunner alternates optimizations and Hessian calculations, building
//each input from the output of the previous pass.
type StepRunner struct {
	engine Engine
	input  *qm.Input
	opts   Options
	log    *slog.Logger
}

//New returns a StepRunner that will start from input. The options are
//checked here, so configuration errors show up before anything is run.
func New(engine Engine, input *qm.Input, opts Options) (*StepRunner, error) {
	if engine == nil || input == nil || input.Template == nil {
		return nil, errors.New("runner: nil engine or input")
	}
	if opts.MaxSteps == 0 {
		opts.MaxSteps = DefaultMaxSteps
	}
	if opts.MaxSteps < 0 {
		return nil, fmt.Errorf("%w: got %d", ErrMaxSteps, opts.MaxSteps)
	}
	if opts.Ramp != nil {
		if err := opts.Ramp.Validate(); err != nil {
			return nil, err
		}
	}
	S := &StepRunner{engine: engine, input: input, opts: opts, log: opts.Logger}
	if S.log == nil {
		S.log = slog.Default()
	}
	return S, nil
}

//InitialState returns the state in which the first pass runs, straight
//from the parsed input.
func (S *StepRunner) InitialState() RunState {
	return RunState{
		Task:     S.input.Task,
		Step:     S.input.Step,
		In:       S.input.Path,
		Vec:      S.input.Vec,
		Budget:   S.input.Steps,
		Molecule: S.input.Molecule,
	}
}

//Run runs passes until the optimization converges (plus one closing
//Hessian pass) or the step limit is reached. Any error ends the run;
//the returned Result then holds the state of the failed pass.
func (S *StepRunner) Run(ctx context.Context) (*Result, error) {
	res := new(Result)
	st := S.InitialState()
	S.log.Info("starting run", "input", st.In, "task", st.Task.String(), "step", st.Step, "max_steps", S.opts.MaxSteps)
	for {
		res.State = st
		if err := ctx.Err(); err != nil {
			return res, err
		}
		next, reason, err := S.pass(ctx, st, res)
		if err != nil {
			return res, err
		}
		if reason != 0 {
			res.Reason = reason
			return res, nil
		}
		st = next
	}
}

//pass runs the engine once for st and, unless the run is over, writes the
//input for the next pass and returns the state that goes with it.
func (S *StepRunner) pass(ctx context.Context, st RunState, res *Result) (RunState, Reason, error) {
	dir, name := S.input.Dir, S.input.Name
	log := S.log.With("task", st.Task.String(), "step", st.Step)
	out := fileName(dir, name, st.Step, st.Task, ".out")
	log.Info("running Priroda", "in", st.In, "out", out)
	start := time.Now()
	_, err := S.engine.Run(ctx, st.In, out)
	elapsed := time.Since(start)
	res.Passes++
	if err != nil {
		var qerr qm.Error
		if !errors.As(err, &qerr) || qerr.Critical() {
			return st, 0, fmt.Errorf("step %d, %s: %w", st.Step, st.Task, err)
		}
		log.Warn("Priroda ended with an error, reading its output anyway", "error", err)
	}
	log.Info("pass finished", "execution_time", minutes(elapsed))
	p := &Pass{Number: res.Passes, Step: st.Step, Task: st.Task, In: st.In, Out: out, Elapsed: elapsed}

	if st.Converged {
		log.Info("DONE!")
		S.notify(p)
		return st, Converged, nil
	}
	if st.Step >= S.opts.MaxSteps {
		log.Info("maximum count of steps reached, FINISHED!", "max_steps", S.opts.MaxSteps)
		S.notify(p)
		return st, StepLimit, nil
	}

	o, err := qm.ReadOutput(out, st.Task)
	if err != nil {
		return st, 0, err
	}
	if o.Converged {
		log.Info("OPTIMIZATION CONVERGED! Starting last Hessian step")
	}
	next := st
	next.Converged = st.Converged || o.Converged
	next.Task = st.Task.Next()
	mol := o.Molecule
	if st.Task == qm.Hessian {
		//Hessian runs don't move the atoms, the geometry they were given goes on.
		mol = st.Molecule
	} else {
		next.Step++
	}
	if err := qm.CheckBlocks(out, mol, o.Energy); err != nil {
		return st, 0, err
	}
	next.Molecule = qm.StripTags(mol)
	next.Energy = qm.StripTags(o.Energy)

	if st.Vec != "" {
		vec := fileName(dir, S.input.VecBase, next.Step, next.Task, ".VEC")
		if err := copyFile(st.Vec, vec); err != nil {
			return st, 0, fmt.Errorf("copying restart vector: %w", err)
		}
		next.Vec = vec
	}
	if S.opts.Ramp != nil && next.Task == qm.Optimize {
		next.Budget = S.opts.Ramp.Next(st.Budget)
		log.Info("optimization steps", "budget", next.Budget)
	}
	next.In = fileName(dir, name, next.Step, next.Task, ".in")
	header := S.input.Template.Render(qm.Values{Task: next.Task, Vec: next.Vec, Steps: next.Budget})
	if err := writeInput(next.In, []string{header}, next.Molecule, next.Energy); err != nil {
		return st, 0, fmt.Errorf("writing input: %w", err)
	}
	res.Written = append(res.Written, next.In)

	p.Output = o
	p.Molecule = next.Molecule
	p.Energy = next.Energy
	S.notify(p)
	return next, 0, nil
}

func (S *StepRunner) notify(p *Pass) {
	for _, o := range S.opts.Observers {
		if err := o.Observe(p); err != nil {
			S.log.Warn("observer failed", "step", p.Step, "task", p.Task.String(), "error", err)
		}
	}
}

//minutes formats d as M:SS min.
func minutes(d time.Duration) string {
	s := int(d.Seconds())
	return fmt.Sprintf("%d:%02d min", s/60, s%60)
}
