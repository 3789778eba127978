// Copyright 2023 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package deps is deps subcommand to print dependencies of C sources.
package deps

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/maruel/subcommands"

	"go.chromium.org/luci/common/cli"

	"go.chromium.org/infra/build/nofile/depstate"
	"go.chromium.org/infra/build/nofile/input"
	"go.chromium.org/infra/build/nofile/osfs"
	"go.chromium.org/infra/build/nofile/scandeps"
	"go.chromium.org/infra/build/nofile/ui"
)

const usage = `print dependencies of C sources

 $ nofile deps [-json] [-o <state>] <start1.c> <start2.c> ...

prints *.c files linked into each executable.
With -o, saves the dependencies in <state>, which can be used by
"nofile makefile -from_state <state>".
`

// Cmd returns the Command for the `deps` subcommand provided by this package.
func Cmd() *subcommands.Command {
	return &subcommands.Command{
		UsageLine: "deps [-json] [-o <state>] <start.c>...",
		ShortDesc: "print dependencies of C sources",
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

	stateFile string
	json      bool
	timeout   time.Duration
}

func (c *run) init() {
	c.Flags.StringVar(&c.stateFile, "o", "", "save dependencies in this file")
	c.Flags.BoolVar(&c.json, "json", false, "print in json")
	c.Flags.DurationVar(&c.timeout, "timeout", 0, "timeout to scan dependencies. 0 means no timeout")
}

func (c *run) Run(a subcommands.Application, args []string, env subcommands.Env) int {
	ctx := cli.GetContext(a, c, env)
	err := c.run(ctx, os.Stdout, args)
	if err != nil {
		switch {
		case errors.Is(err, input.ErrNotEnoughArgs):
			fmt.Fprintf(os.Stderr, "%v\n%s\n", err, usage)
		default:
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		return 1
	}
	return 0
}

func (c *run) run(ctx context.Context, w io.Writer, args []string) error {
	fsys := osfs.New("fs")
	entrypoints, err := input.Read(ctx, fsys, args)
	if err != nil {
		return err
	}
	diag := &input.UIDiagnostics{}
	s := scandeps.New(fsys, diag)
	graph, stats, err := s.Scan(ctx, scandeps.Request{
		Entrypoints: entrypoints,
		Timeout:     c.timeout,
	})
	if err != nil {
		return err
	}
	st := depstate.FromGraph(graph)
	if c.json {
		buf, err := json.MarshalIndent(st, "", " ")
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%s\n", buf)
	} else {
		for _, e := range st.Entrypoints {
			fmt.Fprintf(w, "%s:\n", e.Entrypoint)
			for _, dep := range e.Deps {
				fmt.Fprintf(w, "  %s\n", dep)
			}
		}
	}
	ui.Default.Infof("%d entrypoints %d deps %d skipped includes in %s", stats.Entrypoints, stats.Deps, diag.Count(), ui.FormatDuration(stats.Duration))
	if c.stateFile != "" {
		return depstate.Save(ctx, c.stateFile, st)
	}
	return nil
}
