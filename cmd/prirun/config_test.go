/*
 * config_test.go, part of prirun.
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
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rmera/prirun/runner"
	"github.com/spf13/pflag"
)

func parse(Te *testing.T, argv ...string) (*Config, error) {
	Te.Helper()
	Te.Setenv(ConfigEnv, "")
	o := new(options)
	fs := pflag.NewFlagSet("prirun", pflag.ContinueOnError)
	o.bind(fs)
	if err := fs.Parse(argv); err != nil {
		Te.Fatal(err)
	}
	return o.resolve(fs, fs.Args())
}

func TestDefaults(Te *testing.T) {
	C, err := parse(Te, "-i", "water.in")
	if err != nil {
		Te.Fatal(err)
	}
	if C.Input != "water.in" || C.NumProcs != 1 || C.MaxSteps != runner.DefaultMaxSteps || C.Poll != time.Second {
		Te.Errorf("unexpected defaults %+v", C)
	}
	if C.Ramp != nil || C.Timeout != 0 || C.Command != "" || C.Zstd {
		Te.Errorf("unexpected defaults %+v", C)
	}
}

func TestStepsFlag(Te *testing.T) {
	want := runner.RampPolicy{Start: 2, Increment: 1, Max: 10}
	for _, argv := range [][]string{
		{"-i", "water.in", "-s", "2,1,10"},
		{"-i", "water.in", "-s", "2", "1", "10"},
		{"-s", "2", "1", "10", "-i", "water.in", "-n", "4"},
	} {
		C, err := parse(Te, argv...)
		if err != nil {
			Te.Errorf("%q: %v", argv, err)
			continue
		}
		if C.Ramp == nil || *C.Ramp != want {
			Te.Errorf("%q: got ramp %+v", argv, C.Ramp)
		}
	}
}

func TestConfigErrors(Te *testing.T) {
	cases := []struct {
		argv []string
		want error
	}{
		{[]string{"-i", "water.in", "-n", "0"}, runner.ErrNumProcs},
		{[]string{"-i", "water.in", "-s", "5,1,3"}, runner.ErrRamp},
		{[]string{"-i", "water.in", "-s", "2,1"}, runner.ErrRamp},
		{[]string{"-i", "water.in", "-s", "2", "1", "x"}, runner.ErrRamp},
		{[]string{"-i", "water.in", "-s", "2,-1,10"}, runner.ErrRamp},
		{[]string{"-i", "water.in", "-m", "0"}, runner.ErrMaxSteps},
	}
	for _, c := range cases {
		if _, err := parse(Te, c.argv...); !errors.Is(err, c.want) {
			Te.Errorf("%q: want %v, got %v", c.argv, c.want, err)
		}
	}
	if _, err := parse(Te, "-i", "water.in", "extra"); err == nil {
		Te.Error("positional argument without -s accepted")
	}
	if _, err := parse(Te, "-n", "2"); err == nil {
		Te.Error("missing input accepted")
	}
	if _, err := parse(Te, "-i", "water.in", "-t", "-1s"); err == nil {
		Te.Error("negative timeout accepted")
	}
}

const testConfig = `
numprocs  = 8
max_steps = 60
timeout   = "48h"
zstd      = true
engine {
  command  = "/opt/priroda/p"
  launcher = "/opt/priroda/mpiexec"
  poll     = "5s"
}
ramp {
  start     = 2
  increment = 1
  max       = 10
}
`

func writeConfig(Te *testing.T, text string) string {
	Te.Helper()
	name := filepath.Join(Te.TempDir(), "prirun.hcl")
	if err := os.WriteFile(name, []byte(text), 0644); err != nil {
		Te.Fatal(err)
	}
	return name
}

func TestConfigFile(Te *testing.T) {
	name := writeConfig(Te, testConfig)
	C, err := parse(Te, "-i", "water.in", "-c", name, "-m", "20")
	if err != nil {
		Te.Fatal(err)
	}
	if C.NumProcs != 8 || C.Timeout != 48*time.Hour || !C.Zstd {
		Te.Errorf("file values not applied: %+v", C)
	}
	if C.Command != "/opt/priroda/p" || C.Launcher != "/opt/priroda/mpiexec" || C.Poll != 5*time.Second {
		Te.Errorf("engine block not applied: %+v", C)
	}
	if C.Ramp == nil || *C.Ramp != (runner.RampPolicy{Start: 2, Increment: 1, Max: 10}) {
		Te.Errorf("ramp block not applied: %+v", C.Ramp)
	}
	//flags win over the file.
	if C.MaxSteps != 20 {
		Te.Errorf("got max steps %d", C.MaxSteps)
	}
	C, err = parse(Te, "-i", "water.in", "-c", name, "-s", "1,2,3", "-n", "2")
	if err != nil {
		Te.Fatal(err)
	}
	if C.NumProcs != 2 || C.MaxSteps != 60 || *C.Ramp != (runner.RampPolicy{Start: 1, Increment: 2, Max: 3}) {
		Te.Errorf("flags did not override the file: %+v %+v", C, C.Ramp)
	}
}

func TestConfigFileFromEnv(Te *testing.T) {
	name := writeConfig(Te, "max_steps = 7\n")
	o := new(options)
	fs := pflag.NewFlagSet("prirun", pflag.ContinueOnError)
	o.bind(fs)
	if err := fs.Parse([]string{"-i", "water.in"}); err != nil {
		Te.Fatal(err)
	}
	Te.Setenv(ConfigEnv, name)
	C, err := o.resolve(fs, nil)
	if err != nil {
		Te.Fatal(err)
	}
	if C.MaxSteps != 7 {
		Te.Errorf("got max steps %d", C.MaxSteps)
	}
}

func TestConfigFileErrors(Te *testing.T) {
	for _, text := range []string{
		"max_steps = \n",
		"timeout = \"two days\"\n",
		"ramp {\n start = 1\n}\n",
		"unknown = 3\n",
		"ramp {\n start = 9\n increment = 1\n max = 3\n}\n",
		"ramp {\n start = 2\n increment = -1\n max = 10\n}\n",
	} {
		if _, err := parse(Te, "-i", "water.in", "-c", writeConfig(Te, text)); err == nil {
			Te.Errorf("bad config accepted:\n%s", text)
		}
	}
	if _, err := parse(Te, "-i", "water.in", "-c", filepath.Join(Te.TempDir(), "none.hcl")); err == nil {
		Te.Error("missing config file accepted")
	}
}
