// Copyright 2023 The Chromium Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// nofile generates Makefile for C executables by scanning local includes.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"runtime"
	"runtime/debug"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/maruel/subcommands"

	"go.chromium.org/luci/common/cli"
	"go.chromium.org/luci/common/system/signals"

	"go.chromium.org/infra/build/nofile/o11y/clog"
	"go.chromium.org/infra/build/nofile/subcmd/deps"
	"go.chromium.org/infra/build/nofile/subcmd/help"
	"go.chromium.org/infra/build/nofile/subcmd/makefile"
	"go.chromium.org/infra/build/nofile/subcmd/version"
	"go.chromium.org/infra/build/nofile/ui"
)

const executableVersion = "nofile v1.0.0"

var (
	verbose bool
	logFile string
)

func getApplication(ctx context.Context) *cli.Application {
	return &cli.Application{
		Name:  "nofile",
		Title: "Makefile generator for C sources",
		Context: func(context.Context) context.Context {
			return ctx
		},
		Commands: []*subcommands.Command{
			makefile.Cmd(),
			deps.Cmd(),
			help.Cmd(),
			version.Cmd(executableVersion),
		},
	}
}

func main() {
	flag.BoolVar(&verbose, "v", false, "verbose logging")
	flag.StringVar(&logFile, "log_file", "", "write log to the file instead of stderr")
	flag.Usage = func() {
		out := flag.CommandLine.Output()
		fmt.Fprintf(out, "Usage of %s:\n", os.Args[0])
		fmt.Fprintf(out, "global flags:\n")
		flag.PrintDefaults()
	}
	flag.Parse()
	os.Exit(nofileMain(flag.Args()))
}

func newLogger(w io.Writer) *log.Logger {
	level := log.WarnLevel
	if logFile != "" {
		level = log.InfoLevel
	}
	if verbose {
		level = log.DebugLevel
	}
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		Level:           level,
	})
}

func nofileMain(args []string) int {
	ui.Init()
	defer ui.Restore()

	ctx, cancel := context.WithCancel(context.Background())
	defer signals.HandleInterrupt(cancel)()

	var w io.Writer = os.Stderr
	if logFile != "" {
		f, err := os.Create(logFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to create log file: %v\n", err)
			return 1
		}
		defer f.Close()
		w = f
	}
	logger := newLogger(w)
	log.SetDefault(logger)
	ctx = clog.NewContext(ctx, clog.New(logger))

	// Print a stack trace when a panic occurs.
	defer func() {
		if r := recover(); r != nil {
			const size = 64 << 10
			buf := make([]byte, size)
			buf = buf[:runtime.Stack(buf, false)]
			log.Fatalf("panic: %v\n%s", r, buf)
		}
	}()

	// Print build information to the log.
	buildinfo, ok := debug.ReadBuildInfo()
	if ok {
		log.Infof("buildinfo: path=%q", buildinfo.Path)
		log.Infof("main module: %s %s", moduleInfo(&buildinfo.Main), vcsInfo(buildinfo))
		if clog.V(1) {
			for _, m := range buildinfo.Deps {
				log.Debugf("deps module: %s", moduleInfo(m))
			}
			for _, bs := range buildinfo.Settings {
				log.Debugf("build %s=%s", bs.Key, bs.Value)
			}
		}
	}

	return subcommands.Run(getApplication(ctx), args)
}

func moduleInfo(m *debug.Module) string {
	if m == nil {
		return "<nil>"
	}
	return fmt.Sprintf("path:%s version:%s sum:%s replace:%s", m.Path, m.Version, m.Sum, moduleInfo(m.Replace))
}

func vcsInfo(buildinfo *debug.BuildInfo) string {
	m := make(map[string]string)
	for _, bs := range buildinfo.Settings {
		if strings.HasPrefix(bs.Key, "vcs.") {
			m[bs.Key] = bs.Value
		}
	}
	return fmt.Sprintf("vcs[revision=%s time=%s modified=%s]", m["vcs.revision"], m["vcs.time"], m["vcs.modified"])
}
