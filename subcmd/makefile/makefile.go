// Copyright 2023 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package makefile is makefile subcommand to generate Makefile for C sources.
package makefile

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/maruel/subcommands"

	"go.chromium.org/luci/common/cli"

	"go.chromium.org/infra/build/nofile/config"
	"go.chromium.org/infra/build/nofile/depstate"
	"go.chromium.org/infra/build/nofile/input"
	"go.chromium.org/infra/build/nofile/o11y/clog"
	"go.chromium.org/infra/build/nofile/osfs"
	"go.chromium.org/infra/build/nofile/scandeps"
	"go.chromium.org/infra/build/nofile/toolsupport/makeutil"
	"go.chromium.org/infra/build/nofile/ui"
)

const usage = `generate Makefile for C executables

 $ nofile makefile [-o _Makefile] <start1.c> <start2.c> ...

Each <start.c> becomes an executable. Its dependencies are the *.c files
reachable by local includes (#include "foo.h"): for each included foo.h,
foo.c in the same directory is linked if it exists, and includes of
both foo.c and foo.h are followed.
System includes (#include <stdio.h>) are ignored.

Dependencies are identified by file name only: if dir1/util.c and
dir2/util.c are both reachable, only the first one found is linked.

Compiler, flags and output file can be set in nofile.star:

  compiler = "gcc"
  cflags = ["-Wall", "-g", "-pedantic", "-std=c99"]
  output = "_Makefile"

Flags take precedence over nofile.star.
`

// Cmd returns the Command for the `makefile` subcommand provided by this package.
func Cmd() *subcommands.Command {
	return &subcommands.Command{
		UsageLine: "makefile [-o <file>] <start.c>...",
		ShortDesc: "generate Makefile for C sources",
		LongDesc:  usage,
		CommandRun: func() subcommands.CommandRun {
			c := &run{}
			c.init()
			return c
		},
	}
}

type run struct {
	subcommands.CommandRunBase

	configFile string
	output     string
	compiler   string
	cflags     string
	timeout    time.Duration
	fromState  string
	stateFile  string
	quiet      bool

	started time.Time
}

func (c *run) init() {
	c.Flags.StringVar(&c.configFile, "config", config.DefaultFile, "config file. ignored if it doesn't exist and not explicitly specified")
	c.Flags.StringVar(&c.output, "o", "", "output Makefile. default: "+config.DefaultOutput)
	c.Flags.StringVar(&c.compiler, "cc", "", "C compiler. default: "+makeutil.DefaultCompiler)
	c.Flags.StringVar(&c.cflags, "cflags", "", "C compiler flags. default: "+makeutil.DefaultCFlags)
	c.Flags.DurationVar(&c.timeout, "timeout", 0, "timeout to scan dependencies. 0 means no timeout")
	c.Flags.StringVar(&c.fromState, "from_state", "", "generate from dependencies saved by `nofile deps -o` instead of scanning")
	c.Flags.StringVar(&c.stateFile, "state", "", "save dependencies in this file")
	c.Flags.BoolVar(&c.quiet, "q", false, "don't print the Makefile to stdout")
}

// Run runs the `makefile` subcommand.
func (c *run) Run(a subcommands.Application, args []string, env subcommands.Env) int {
	c.started = time.Now()
	ctx := cli.GetContext(a, c, env)
	err := parseFlagsFully(&c.Flags)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}
	stats, err := c.run(ctx)
	dur := ui.FormatDuration(time.Since(c.started))
	if err != nil {
		var errFlag flagError
		var errScan scanError
		switch {
		case errors.As(err, &errFlag):
			fmt.Fprintf(os.Stderr, "%v\n%s\n", err, usage)
			return 2

		case input.IsInputError(err):
			msgPrefix := "Invalid input"
			if ui.IsTerminal() {
				msgPrefix = ui.SGR(ui.Red, msgPrefix)
			}
			fmt.Fprintf(os.Stderr, "%s: %v\n", msgPrefix, err)

		case errors.As(err, &errScan):
			msgPrefix := "Scan Failure"
			if ui.IsTerminal() {
				dur = ui.SGR(ui.Bold, dur)
				msgPrefix = ui.SGR(ui.BackgroundRed, msgPrefix)
			}
			fmt.Fprintf(os.Stderr, "\n%6s %s: %d files read - %v\n", dur, msgPrefix, stats.Reads, errScan.err)

		default:
			msgPrefix := "Error"
			if ui.IsTerminal() {
				msgPrefix = ui.SGR(ui.BackgroundRed, msgPrefix)
			}
			fmt.Fprintf(os.Stderr, "\n%6s %s: %v\n", dur, msgPrefix, err)
		}
		return 1
	}
	msgPrefix := "Makefile Succeeded"
	if ui.IsTerminal() {
		dur = ui.SGR(ui.Bold, dur)
		msgPrefix = ui.SGR(ui.Green, msgPrefix)
	}
	fmt.Fprintf(os.Stderr, "%6s %s: %d executables %d deps\n", dur, msgPrefix, stats.Entrypoints, stats.Deps)
	return 0
}

func (c *run) loadConfig(ctx context.Context, fsys *osfs.OSFS) (config.Config, error) {
	explicit := false
	c.Flags.Visit(func(f *flag.Flag) {
		if f.Name == "config" {
			explicit = true
		}
	})
	cfg := config.Default()
	if c.configFile != "" {
		var err error
		cfg, err = config.Load(ctx, fsys, c.configFile)
		switch {
		case errors.Is(err, fs.ErrNotExist) && !explicit:
			clog.Infof(ctx, "no config %s", c.configFile)
		case err != nil:
			return cfg, fmt.Errorf("failed to load config %s: %w", c.configFile, err)
		}
	}
	return cfg.Override(config.Config{
		Compiler: c.compiler,
		CFlags:   c.cflags,
		Output:   c.output,
	}), nil
}

func (c *run) run(ctx context.Context) (scandeps.Stats, error) {
	var stats scandeps.Stats
	fsys := osfs.New("fs")
	cfg, err := c.loadConfig(ctx, fsys)
	if err != nil {
		return stats, err
	}
	clog.Infof(ctx, "config %+v", cfg)

	var graph *scandeps.Graph
	if c.fromState != "" {
		if len(c.Flags.Args()) > 0 {
			return stats, flagError{err: errors.New("entrypoints must not be given with -from_state")}
		}
		st, err := depstate.Load(ctx, fsys, c.fromState)
		if err != nil {
			return stats, err
		}
		graph = st.Graph()
		stats.Entrypoints = graph.Len()
		for _, ep := range graph.Entrypoints() {
			stats.Deps += len(graph.Deps(ep))
		}
	} else {
		entrypoints, err := input.Read(ctx, fsys, c.Flags.Args())
		if err != nil {
			return stats, err
		}
		ui.Default.Infof("Valid files. Proceeding")
		diag := &input.UIDiagnostics{}
		s := scandeps.New(fsys, diag)
		spin := ui.Default.NewSpinner()
		spin.Start("scanning %d entrypoints", len(entrypoints))
		graph, stats, err = s.Scan(ctx, scandeps.Request{
			Entrypoints: entrypoints,
			Timeout:     c.timeout,
		})
		if err != nil {
			spin.Stop(err)
			return stats, scanError{err: err}
		}
		spin.Done("%d deps", stats.Deps)
		if n := diag.Count(); n > 0 {
			ui.Default.Warningf("%d includes skipped", n)
		}
		if c.stateFile != "" {
			err = depstate.Save(ctx, c.stateFile, depstate.FromGraph(graph))
			if err != nil {
				return stats, err
			}
		}
	}

	prev, err := makeutil.ParseSourceVarsFile(ctx, fsys, cfg.Output)
	if err != nil {
		clog.Warningf(ctx, "failed to read previous %s: %v", cfg.Output, err)
	}

	m := makeutil.New(graph)
	m.Compiler = cfg.Compiler
	m.CFlags = cfg.CFlags
	formatted := m.Format()
	msg := "Makefile construction succeeded. Outputting"
	if ui.IsTerminal() {
		msg = ui.SGR(ui.Green, msg)
	}
	ui.Default.Infof("%s", msg)
	if !c.quiet {
		fmt.Println(formatted)
	}

	err = fsys.WriteFile(ctx, cfg.Output, []byte(formatted), 0644)
	if err != nil {
		return stats, fmt.Errorf("failed to write %s: %w", cfg.Output, err)
	}
	if prev != nil {
		changed := makeutil.ChangedSourceVars(prev, makeutil.ParseSourceVars([]byte(formatted)))
		if len(changed) == 0 {
			ui.Default.Infof("%s: no dependency changes", cfg.Output)
		} else {
			ui.Default.Infof("%s: dependencies changed: %s", cfg.Output, strings.Join(changed, " "))
		}
	}
	clog.Infof(ctx, "%s %s", cfg.Output, fsys.Stats())
	return stats, nil
}

// parse flags without stopping at non flags.
func parseFlagsFully(flagSet *flag.FlagSet) error {
	var entrypoints []string
	for {
		args := flagSet.Args()
		if len(args) == 0 {
			break
		}
		argsRemaining := len(args)
		for i, arg := range args {
			if !strings.HasPrefix(arg, "-") {
				entrypoints = append(entrypoints, arg)
				argsRemaining--
				continue
			}
			err := flagSet.Parse(args[i:])
			if err != nil {
				return err
			}
			break
		}
		if argsRemaining == 0 {
			break
		}
	}
	// entrypoints are non-flags. set it to Args.
	return flagSet.Parse(entrypoints)
}

type flagError struct {
	err error
}

func (f flagError) Error() string {
	return f.err.Error()
}

type scanError struct {
	err error
}

func (s scanError) Error() string {
	return s.err.Error()
}

func (s scanError) Unwrap() error {
	return s.err
}
