// Copyright 2023 The Chromium Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package makeutil

import (
	"fmt"
	"strings"

	"go.chromium.org/infra/build/nofile/scandeps"
)

const (
	// DefaultCompiler is the C compiler used when none is configured.
	DefaultCompiler = "gcc"
	// DefaultCFlags are the compiler flags used when none are configured.
	DefaultCFlags = "-Wall -g -pedantic -std=c99"

	// SourceVarSuffix is the suffix of per-executable dependency variables.
	SourceVarSuffix = "_SOURCE"
)

// Executable is an executable built from an entrypoint.
type Executable struct {
	// Source is the entrypoint path, e.g. "src/emulate.c".
	Source string
	// Label is the target name, i.e. Source without extension, e.g. "src/emulate".
	Label string
	// Var is the variable that lists Deps, e.g. "SRC/EMULATE_SOURCE".
	Var string
	// Deps are the *.c files linked into the executable.
	Deps []string
}

// NewExecutable returns the executable for an entry of the graph.
// entry.Entrypoint must have a 2 byte extension, i.e. ".c".
func NewExecutable(entry scandeps.Entry) Executable {
	label := entry.Entrypoint[:len(entry.Entrypoint)-len(scandeps.SourceExt)]
	return Executable{
		Source: entry.Entrypoint,
		Label:  label,
		Var:    strings.ToUpper(label + SourceVarSuffix),
		Deps:   entry.Deps,
	}
}

// SourceLine returns the variable definition of the dependencies.
// Every dependency is followed by a space.
func (e Executable) SourceLine() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s = ", e.Var)
	for _, dep := range e.Deps {
		sb.WriteString(dep)
		sb.WriteByte(' ')
	}
	return sb.String()
}

// Recipe returns the rule to link the executable.
func (e Executable) Recipe() string {
	return fmt.Sprintf("%[1]s: %[1]s.o\n\t$(CC) $(CFLAGS) %[2]s $(%[3]s) -o $@", e.Label, e.Source, e.Var)
}

// Makefile renders a dependency graph as a Makefile.
type Makefile struct {
	// Compiler is the value of CC.
	Compiler string
	// CFlags is the value of CFLAGS.
	CFlags string

	graph *scandeps.Graph
}

// New creates a Makefile for graph with default compiler and flags.
// graph must be frozen, and is drained by Format.
func New(graph *scandeps.Graph) *Makefile {
	return &Makefile{
		Compiler: DefaultCompiler,
		CFlags:   DefaultCFlags,
		graph:    graph,
	}
}

// Format drains the graph and returns the contents of the Makefile.
// Executables are in the graph's entrypoint order, and dependencies
// are sorted.
func (m *Makefile) Format() string {
	var exes []Executable
	for _, entry := range m.graph.Drain() {
		exes = append(exes, NewExecutable(entry))
	}

	var sources, all, recipes, clean strings.Builder
	all.WriteString("all: ")
	clean.WriteString("clean:\n\trm -f $(wildcard *.o)\n")
	for _, exe := range exes {
		sources.WriteString(exe.SourceLine())
		sources.WriteByte('\n')
		fmt.Fprintf(&all, "%s ", exe.Label)
		recipes.WriteString(exe.Recipe())
		recipes.WriteString("\n\n")
		fmt.Fprintf(&clean, "\trm -f %[1]s\n\trm -f %[1]s.o\n", exe.Label)
	}
	sources.WriteByte('\n')

	var sb strings.Builder
	fmt.Fprintf(&sb, "CC = %s\n", m.Compiler)
	fmt.Fprintf(&sb, "CFLAGS = %s\n\n", m.CFlags)
	sb.WriteString(sources.String())
	sb.WriteString(".SUFFIXES: .c .o\n\n")
	sb.WriteString(".PHONY: all clean\n\n")
	sb.WriteString(all.String())
	sb.WriteString("\n\n")
	sb.WriteString(recipes.String())
	sb.WriteString(clean.String())
	return sb.String()
}
