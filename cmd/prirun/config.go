/*
 * config.go, part of prirun.
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

package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/rmera/prirun/runner"
	"github.com/spf13/pflag"
)

//ConfigEnv names the variable read for the config file when -c is not given.
const ConfigEnv = "PRIRUN_CONFIG"

//Config is the resolved configuration of a run.
type Config struct {
	Input    string
	NumProcs int
	Ramp     *runner.RampPolicy
	MaxSteps int
	Timeout  time.Duration
	Poll     time.Duration
	Command  string //empty for the default from PRIRODA_PATH
	Launcher string
	Plot     string
	XYZ      string
	Metrics  string
	Zstd     bool
}

//fileConfig mirrors the HCL config file. Everything is optional.
type fileConfig struct {
	NumProcs *int         `hcl:"numprocs,optional"`
	MaxSteps *int         `hcl:"max_steps,optional"`
	Timeout  *string      `hcl:"timeout,optional"`
	Plot     *string      `hcl:"plot,optional"`
	XYZ      *string      `hcl:"xyz,optional"`
	Metrics  *string      `hcl:"metrics,optional"`
	Zstd     *bool        `hcl:"zstd,optional"`
	Engine   *engineBlock `hcl:"engine,block"`
	Ramp     *rampBlock   `hcl:"ramp,block"`
}

type engineBlock struct {
	Command  *string `hcl:"command,optional"`
	Launcher *string `hcl:"launcher,optional"`
	Poll     *string `hcl:"poll,optional"`
}

type rampBlock struct {
	Start     int `hcl:"start"`
	Increment int `hcl:"increment"`
	Max       int `hcl:"max"`
}

//loadFile parses the HCL config file filename.
func loadFile(filename string) (*fileConfig, error) {
	parser := hclparse.NewParser()
	f, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse config file %s: %w", filename, diags)
	}
	fc := new(fileConfig)
	if diags := gohcl.DecodeBody(f.Body, nil, fc); diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode config file %s: %w", filename, diags)
	}
	return fc, nil
}

//options holds the command line flags.
type options struct {
	input    string
	numProcs int
	steps    []int
	maxSteps int
	timeout  time.Duration
	poll     time.Duration
	engine   string
	launcher string
	config   string
	plot     string
	xyz      string
	metrics  string
	zstd     bool
}

func (o *options) bind(fs *pflag.FlagSet) {
	fs.StringVarP(&o.input, "input", "i", "", "Priroda input file to start from")
	fs.IntVarP(&o.numProcs, "numprocs", "n", 1, "number of MPI processes")
	fs.IntSliceVarP(&o.steps, "steps", "s", nil, "optimization step ramp: start,increment,max (or -s start increment max)")
	fs.IntVarP(&o.maxSteps, "max-steps", "m", runner.DefaultMaxSteps, "stop after this step")
	fs.DurationVarP(&o.timeout, "timeout", "t", 0, "wall time limit for one Priroda run, 0 for none")
	fs.DurationVar(&o.poll, "poll", time.Second, "how often a running Priroda is checked")
	fs.StringVar(&o.engine, "engine", "", "Priroda executable (default ${PRIRODA_PATH}/p)")
	fs.StringVar(&o.launcher, "launcher", "", "MPI launcher (default ${PRIRODA_PATH}/mpiexec)")
	fs.StringVarP(&o.config, "config", "c", "", "HCL config file (default $"+ConfigEnv+")")
	fs.StringVar(&o.plot, "plot", "", "write a plot of the energy profile to this file")
	fs.StringVar(&o.xyz, "xyz", "", "write the optimized geometries to this XYZ trajectory")
	fs.StringVar(&o.metrics, "metrics", "", "write Prometheus metrics to this textfile")
	fs.BoolVar(&o.zstd, "zstd", false, "compress Priroda outputs with zstd once read")
}

//resolve builds the Config from, in order of precedence, the flags set in
//fs, the config file and the defaults. args are the positional arguments,
//which can only be the two last values of -s.
func (o *options) resolve(fs *pflag.FlagSet, args []string) (*Config, error) {
	C := &Config{NumProcs: 1, MaxSteps: runner.DefaultMaxSteps, Poll: time.Second}
	cfgfile := o.config
	if cfgfile == "" {
		cfgfile = os.Getenv(ConfigEnv)
	}
	if cfgfile != "" {
		fc, err := loadFile(cfgfile)
		if err != nil {
			return nil, err
		}
		if err := C.apply(fc); err != nil {
			return nil, fmt.Errorf("config file %s: %w", cfgfile, err)
		}
	}
	set := fs.Changed
	C.Input = o.input
	if set("numprocs") {
		C.NumProcs = o.numProcs
	}
	if set("max-steps") {
		C.MaxSteps = o.maxSteps
	}
	if set("timeout") {
		C.Timeout = o.timeout
	}
	if set("poll") {
		C.Poll = o.poll
	}
	if set("engine") {
		C.Command = o.engine
	}
	if set("launcher") {
		C.Launcher = o.launcher
	}
	if set("plot") {
		C.Plot = o.plot
	}
	if set("xyz") {
		C.XYZ = o.xyz
	}
	if set("metrics") {
		C.Metrics = o.metrics
	}
	if set("zstd") {
		C.Zstd = o.zstd
	}
	steps, err := mergeSteps(o.steps, args)
	if err != nil {
		return nil, err
	}
	if set("steps") {
		if len(steps) != 3 {
			return nil, fmt.Errorf("%w: -s takes 3 values, start, increment and max, got %d", runner.ErrRamp, len(steps))
		}
		C.Ramp = &runner.RampPolicy{Start: steps[0], Increment: steps[1], Max: steps[2]}
	}
	return C, C.Validate()
}

//mergeSteps appends the positional arguments to the values of -s, so
//"-s 2 1 10" works like "-s 2,1,10".
func mergeSteps(steps []int, args []string) ([]int, error) {
	if len(args) == 0 {
		return steps, nil
	}
	if len(steps) != 1 {
		return nil, fmt.Errorf("unexpected arguments %q", args)
	}
	ret := append([]int(nil), steps...)
	for _, v := range args {
		i, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("%w: bad value %q for -s", runner.ErrRamp, v)
		}
		ret = append(ret, i)
	}
	return ret, nil
}

func (C *Config) apply(fc *fileConfig) error {
	var err error
	if fc.NumProcs != nil {
		C.NumProcs = *fc.NumProcs
	}
	if fc.MaxSteps != nil {
		C.MaxSteps = *fc.MaxSteps
	}
	if fc.Timeout != nil {
		if C.Timeout, err = time.ParseDuration(*fc.Timeout); err != nil {
			return err
		}
	}
	if fc.Plot != nil {
		C.Plot = *fc.Plot
	}
	if fc.XYZ != nil {
		C.XYZ = *fc.XYZ
	}
	if fc.Metrics != nil {
		C.Metrics = *fc.Metrics
	}
	if fc.Zstd != nil {
		C.Zstd = *fc.Zstd
	}
	if e := fc.Engine; e != nil {
		if e.Command != nil {
			C.Command = *e.Command
		}
		if e.Launcher != nil {
			C.Launcher = *e.Launcher
		}
		if e.Poll != nil {
			if C.Poll, err = time.ParseDuration(*e.Poll); err != nil {
				return err
			}
		}
	}
	if r := fc.Ramp; r != nil {
		C.Ramp = &runner.RampPolicy{Start: r.Start, Increment: r.Increment, Max: r.Max}
	}
	return nil
}

//Validate reports configuration errors. It is called before anything is run.
func (C *Config) Validate() error {
	if C.Input == "" {
		return errors.New("no input file given")
	}
	if C.NumProcs < 1 {
		return fmt.Errorf("%w: got %d", runner.ErrNumProcs, C.NumProcs)
	}
	if C.MaxSteps < 1 {
		return fmt.Errorf("%w: got %d", runner.ErrMaxSteps, C.MaxSteps)
	}
	if C.Timeout < 0 {
		return fmt.Errorf("negative timeout %v", C.Timeout)
	}
	if C.Ramp != nil {
		return C.Ramp.Validate()
	}
	return nil
}
