/*
 * main.go, part of prirun.
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

//Prirun drives a Priroda geometry optimization as a series of short runs,
//alternating optimizations and Hessian calculations until the
//optimization converges or the step limit is reached.
//
//Usage:
//
//	prirun -i water.in [-n 8] [-s 2,1,10] [-m 50] [-t 48h] [-c prirun.hcl]
//
//Starting from an input named like water_07_Opt.in resumes at step 7.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/rmera/prirun/archive"
	"github.com/rmera/prirun/geom"
	"github.com/rmera/prirun/qm"
	"github.com/rmera/prirun/report"
	"github.com/rmera/prirun/runner"
	"github.com/spf13/cobra"
)

//version is set with ldflags at build time.
var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	o := new(options)
	cmd := &cobra.Command{
		Use:           "prirun -i INPUT",
		Short:         "Run a Priroda optimization as alternating optimization and Hessian steps",
		Version:       version,
		Args:          cobra.MaximumNArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := o.resolve(cmd.Flags(), args)
			if err != nil {
				return err
			}
			runID := uuid.New().String()
			logger := setupLogger(os.Stdout).With("run_id", runID)
			return run(cmd.Context(), cfg, runID, logger)
		},
	}
	o.bind(cmd.Flags())
	return cmd
}

//newHandle sets up the Priroda handle for cfg.
func newHandle(cfg *Config) *qm.PrirodaHandle {
	h := qm.NewPrirodaHandle()
	if cfg.Command != "" {
		h.SetCommand(cfg.Command)
	}
	if cfg.Launcher != "" {
		h.SetLauncher(cfg.Launcher)
	}
	h.SetnCPU(cfg.NumProcs)
	h.SetTimeout(cfg.Timeout)
	h.SetPoll(cfg.Poll)
	return h
}

//run performs the whole optimization described by cfg. The plot and
//metrics are written even if the run fails.
func run(ctx context.Context, cfg *Config, runID string, log *slog.Logger) error {
	return runWith(ctx, cfg, newHandle(cfg), runID, log)
}

func runWith(ctx context.Context, cfg *Config, engine runner.Engine, runID string, log *slog.Logger) error {
	in, err := qm.ReadInput(cfg.Input)
	if err != nil {
		return err
	}
	profile := report.NewProfile(log)
	if cfg.XYZ != "" {
		W, err := geom.NewXYZWriter(cfg.XYZ)
		if err != nil {
			return err
		}
		defer func() {
			if err := W.Close(); err != nil {
				log.Error("closing trajectory", "file", cfg.XYZ, "error", err)
			}
		}()
		profile.Trajectory = W
	}
	observers := []runner.Observer{profile}
	if cfg.Zstd {
		observers = append(observers, runner.ObserverFunc(func(p *runner.Pass) error {
			name, err := archive.Compress(p.Out)
			if err == nil {
				log.Debug("output compressed", "file", name)
			}
			return err
		}))
	}
	S, err := runner.New(engine, in, runner.Options{
		MaxSteps:  cfg.MaxSteps,
		Ramp:      cfg.Ramp,
		Logger:    log,
		Observers: observers,
	})
	if err != nil {
		return err
	}
	res, err := S.Run(ctx)
	writeReports(cfg, profile, in.Name, runID, log)
	if err != nil {
		return err
	}
	log.Info("run finished", "reason", res.Reason.String(), "step", res.State.Step, "inputs_written", len(res.Written), "summary", profile.Summarize())
	return nil
}

//writeReports writes the plot and the metrics, if requested. Failures
//are logged only.
func writeReports(cfg *Config, profile *report.Profile, name, runID string, log *slog.Logger) {
	if cfg.Plot != "" {
		if err := profile.Plot(name, cfg.Plot); err != nil {
			log.Error("writing energy plot", "file", cfg.Plot, "error", err)
		}
	}
	if cfg.Metrics != "" {
		if err := report.WriteMetrics(cfg.Metrics, runID, profile); err != nil {
			log.Error("writing metrics", "file", cfg.Metrics, "error", err)
		}
	}
}
