// Copyright 2023 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package version provides version subcommand.
package version

import (
	"fmt"
	"io"
	"runtime/debug"
	"strings"

	"github.com/maruel/subcommands"
)

func Cmd(ver string) *subcommands.Command {
	return &subcommands.Command{
		UsageLine: "version",
		ShortDesc: "prints the executable version",
		LongDesc:  "Prints the executable version and the build information of the executable.",
		CommandRun: func() subcommands.CommandRun {
			r := &versionRun{version: ver}
			r.init()
			return r
		},
	}
}

type versionRun struct {
	subcommands.CommandRunBase
	version string
	deps    bool
}

func (c *versionRun) init() {
	c.Flags.BoolVar(&c.deps, "deps", false, "show dependency modules.")
}

func (c *versionRun) Run(a subcommands.Application, args []string, env subcommands.Env) int {
	if len(args) != 0 {
		fmt.Fprintf(a.GetErr(), "%s: position arguments not expected\n", a.GetName())
		return 1
	}
	buildInfo, ok := debug.ReadBuildInfo()
	if !ok {
		fmt.Fprintln(a.GetOut(), c.version)
		return 0
	}
	printVersion(a.GetOut(), c.version, buildInfo, c.deps)
	return 0
}

func printVersion(w io.Writer, ver string, buildInfo *debug.BuildInfo, deps bool) {
	fmt.Fprintln(w, ver)
	if buildInfo.GoVersion != "" {
		fmt.Fprintf(w, "go\t%s\n", buildInfo.GoVersion)
	}
	for _, s := range buildInfo.Settings {
		if strings.HasPrefix(s.Key, "vcs.") {
			fmt.Fprintf(w, "build\t%s=%s\n", s.Key, s.Value)
		}
	}
	if !deps {
		return
	}
	for _, m := range buildInfo.Deps {
		fmt.Fprintf(w, "dep\t%s\t%s\n", m.Path, m.Version)
	}
}
