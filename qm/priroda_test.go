/*
 * priroda_test.go, part of prirun.
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
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"
)

//fakePriroda writes a shell script to be used as the Priroda command.
func fakePriroda(Te *testing.T, body string) string {
	Te.Helper()
	if _, err := os.Stat("/bin/sh"); err != nil {
		Te.Skip("no /bin/sh available")
	}
	name := filepath.Join(Te.TempDir(), "p")
	if err := os.WriteFile(name, []byte("#!/bin/sh\n"+body+"\n"), 0755); err != nil {
		Te.Fatal(err)
	}
	return name
}

func TestPrirodaArgs(Te *testing.T) {
	p := NewPrirodaHandle()
	p.SetCommand("/opt/priroda/p")
	p.SetLauncher("/opt/priroda/mpiexec")
	got := p.Args("w.in", "w.out")
	want := []string{"/opt/priroda/p", "w.in", "w.out"}
	if !reflect.DeepEqual(got, want) {
		Te.Errorf("got %q, want %q", got, want)
	}
	p.SetnCPU(4)
	got = p.Args("w.in", "w.out")
	want = []string{"/opt/priroda/mpiexec", "-n", "4", "/opt/priroda/p", "w.in", "w.out"}
	if !reflect.DeepEqual(got, want) {
		Te.Errorf("got %q, want %q", got, want)
	}
}

func TestPrirodaDefaults(Te *testing.T) {
	Te.Setenv("PRIRODA_PATH", "")
	p := NewPrirodaHandle()
	if p.Command() != "./p" || p.launcher != "./mpiexec" {
		Te.Errorf("unexpected defaults %q %q", p.Command(), p.launcher)
	}
	Te.Setenv("PRIRODA_PATH", "/opt/pr")
	p.SetDefaults()
	if p.Command() != "/opt/pr/p" || p.launcher != "/opt/pr/mpiexec" {
		Te.Errorf("unexpected paths %q %q", p.Command(), p.launcher)
	}
}

func TestPrirodaRun(Te *testing.T) {
	p := NewPrirodaHandle()
	p.SetCommand(fakePriroda(Te, `echo "ran $1"; cp "$1" "$2"`))
	p.SetPoll(10 * time.Millisecond)
	dir := Te.TempDir()
	in := filepath.Join(dir, "w.in")
	out := filepath.Join(dir, "w.out")
	if err := os.WriteFile(in, []byte("eng> E= -1.0\n"), 0644); err != nil {
		Te.Fatal(err)
	}
	stdout, err := p.Run(context.Background(), in, out)
	if err != nil {
		Te.Fatal(err)
	}
	if strings.TrimSpace(string(stdout)) != "ran "+in {
		Te.Errorf("unexpected stdout %q", stdout)
	}
	if _, err := os.Stat(out); err != nil {
		Te.Errorf("output not written: %v", err)
	}
}

func TestPrirodaRunExitStatus(Te *testing.T) {
	p := NewPrirodaHandle()
	p.SetCommand(fakePriroda(Te, "exit 3"))
	p.SetPoll(10 * time.Millisecond)
	_, err := p.Run(context.Background(), "a.in", "a.out")
	var e Error
	if !errors.As(err, &e) {
		Te.Fatalf("want an Error, got %v", err)
	}
	if e.Critical() {
		Te.Error("a non-zero exit status should not be critical")
	}
	p.SetCommand(filepath.Join(Te.TempDir(), "missing"))
	_, err = p.Run(context.Background(), "a.in", "a.out")
	if !errors.As(err, &e) || !e.Critical() || !errors.Is(err, ErrNotRunning) {
		Te.Errorf("a missing program should give a critical error, got %v", err)
	}
}

func TestPrirodaTimeout(Te *testing.T) {
	p := NewPrirodaHandle()
	p.SetCommand(fakePriroda(Te, "exec sleep 5"))
	p.SetPoll(10 * time.Millisecond)
	p.SetTimeout(50 * time.Millisecond)
	start := time.Now()
	_, err := p.Run(context.Background(), "a.in", "a.out")
	if !errors.Is(err, ErrTimeout) {
		Te.Fatalf("want timeout, got %v", err)
	}
	if time.Since(start) > 2*time.Second {
		Te.Error("Run did not return promptly after the timeout")
	}
	if strings.Contains(err.Error(), "interrupt failed") {
		Te.Errorf("the interrupt should have reached the process: %v", err)
	}
}

//A signal that can't be delivered is reported, not dropped.
func TestInterruptFailure(Te *testing.T) {
	cmd := exec.Command(fakePriroda(Te, "exit 0"))
	if err := cmd.Run(); err != nil {
		Te.Fatal(err)
	}
	if got := interrupt(cmd.Process); !strings.Contains(got, "interrupt failed") {
		Te.Errorf("signal to a finished process gave %q", got)
	}
	live := exec.Command(fakePriroda(Te, "exec sleep 5"))
	if err := live.Start(); err != nil {
		Te.Fatal(err)
	}
	defer live.Wait()
	defer live.Process.Kill()
	if got := interrupt(live.Process); got != "" {
		Te.Errorf("signal to a running process gave %q", got)
	}
}

func TestPrirodaCancel(Te *testing.T) {
	p := NewPrirodaHandle()
	p.SetCommand(fakePriroda(Te, "exec sleep 5"))
	p.SetPoll(10 * time.Millisecond)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := p.Run(ctx, "a.in", "a.out")
	if !errors.Is(err, context.DeadlineExceeded) {
		Te.Errorf("want context error, got %v", err)
	}
}
