// Copyright 2023 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package help provides help subcommand.
package help

import (
	"flag"
	"fmt"
	"io"

	"github.com/maruel/subcommands"
)

// Cmd returns the Command for the `help` subcommand.
func Cmd() *subcommands.Command {
	return &subcommands.Command{
		UsageLine: "help [<command>|-advanced]",
		ShortDesc: "prints help about a command",
		LongDesc:  "Prints the commands and the global flags, or help about a specific command.\nUse -advanced to display all commands.",
		CommandRun: func() subcommands.CommandRun {
			r := &helpRun{}
			r.Flags.BoolVar(&r.advanced, "advanced", false, "show advanced commands")
			return r
		},
	}
}

type helpRun struct {
	subcommands.CommandRunBase
	advanced bool
}

func (h *helpRun) Run(a subcommands.Application, args []string, env subcommands.Env) int {
	if len(args) > 0 {
		return subcommands.CmdHelp.CommandRun().Run(a, args, env)
	}
	w := a.GetOut()
	subcommands.Usage(w, a, h.advanced)
	printGlobalFlags(w, flag.CommandLine)
	return 0
}

// printGlobalFlags prints flags of fs, which must be given before
// the command name, e.g. `nofile -v makefile main.c`.
func printGlobalFlags(w io.Writer, fs *flag.FlagSet) {
	fmt.Fprintln(w, "Global flags, given before the command:")
	fs.VisitAll(func(f *flag.Flag) {
		fmt.Fprintf(w, "  -%s\n    \t%s", f.Name, f.Usage)
		if f.DefValue != "" && f.DefValue != "false" {
			fmt.Fprintf(w, " (default %q)", f.DefValue)
		}
		fmt.Fprintln(w)
	})
}
