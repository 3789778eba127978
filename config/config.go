// Copyright 2023 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package config provides Makefile config for `nofile makefile`.
package config

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strings"

	"github.com/charmbracelet/log"
	"go.starlark.net/starlark"
	"go.starlark.net/starlarkstruct"

	"go.chromium.org/infra/build/nofile/runtimex"
	"go.chromium.org/infra/build/nofile/toolsupport/makeutil"
)

const (
	// DefaultFile is the config file used when none is specified.
	DefaultFile = "nofile.star"
	// DefaultOutput is the Makefile written when none is configured.
	DefaultOutput = "_Makefile"
)

// Config is a Makefile config.
type Config struct {
	// Compiler is the C compiler, i.e. CC.
	Compiler string
	// CFlags are the compiler flags, i.e. CFLAGS.
	CFlags string
	// Output is the filename of the Makefile.
	Output string
}

// Default returns the default config.
func Default() Config {
	return Config{
		Compiler: makeutil.DefaultCompiler,
		CFlags:   makeutil.DefaultCFlags,
		Output:   DefaultOutput,
	}
}

// Override returns cfg with fields overridden by non-empty fields of o.
func (cfg Config) Override(o Config) Config {
	if o.Compiler != "" {
		cfg.Compiler = o.Compiler
	}
	if o.CFlags != "" {
		cfg.CFlags = o.CFlags
	}
	if o.Output != "" {
		cfg.Output = o.Output
	}
	return cfg
}

// FileSystem provides access to config files.
type FileSystem interface {
	ReadFile(ctx context.Context, fname string) ([]byte, error)
}

// Load loads config from fname on fsys, starting from the default config.
//
// The config file is a Starlark file that may set globals:
//
//	compiler = "clang"
//	cflags = ["-Wall", "-O2"]  # or a string
//	output = "Makefile"
//
// `runtime.os`, `runtime.arch` and `runtime.num_cpu` are predeclared.
func Load(ctx context.Context, fsys FileSystem, fname string) (Config, error) {
	cfg := Default()
	buf, err := fsys.ReadFile(ctx, fname)
	if err != nil {
		return cfg, err
	}
	thread := &starlark.Thread{
		Name: "load",
		Print: func(thread *starlark.Thread, msg string) {
			log.Infof("thread:%s %s", thread.Name, msg)
		},
		Load: func(*starlark.Thread, string) (starlark.StringDict, error) {
			return nil, errors.New("load is not allowed in config")
		},
	}
	globals, err := starlark.ExecFile(thread, fname, buf, predeclared())
	if err != nil {
		log.Warnf("thread:%s failed to exec file %s: %v", thread.Name, fname, err)
		var eerr *starlark.EvalError
		if errors.As(err, &eerr) {
			log.Warnf("stacktrace:\n%s", eerr.Backtrace())
		}
		return cfg, err
	}
	log.Debugf("config: %s", globals)

	for _, f := range []struct {
		name  string
		field *string
		parse func(starlark.Value) (string, bool)
	}{
		{name: "compiler", field: &cfg.Compiler, parse: asString},
		{name: "cflags", field: &cfg.CFlags, parse: asFlags},
		{name: "output", field: &cfg.Output, parse: asString},
	} {
		v, ok := globals[f.name]
		if !ok {
			continue
		}
		s, ok := f.parse(v)
		if !ok {
			return cfg, fmt.Errorf("%s: %s is %s, want %s", fname, f.name, v.Type(), wantType(f.name))
		}
		*f.field = s
	}
	return cfg, nil
}

func predeclared() starlark.StringDict {
	runtimeModule := &starlarkstruct.Module{
		Name: "runtime",
		Members: map[string]starlark.Value{
			"num_cpu": starlark.MakeInt(runtimex.NumCPU()),
			"os":      starlark.String(runtime.GOOS),
			"arch":    starlark.String(runtime.GOARCH),
		},
	}
	runtimeModule.Freeze()
	return starlark.StringDict{
		"runtime": runtimeModule,
	}
}

func wantType(name string) string {
	if name == "cflags" {
		return "string or list of strings"
	}
	return "string"
}

func asString(v starlark.Value) (string, bool) {
	return starlark.AsString(v)
}

// asFlags accepts a string, or a list or tuple of strings joined by space.
func asFlags(v starlark.Value) (string, bool) {
	if s, ok := starlark.AsString(v); ok {
		return s, true
	}
	iter, ok := v.(starlark.Iterable)
	if !ok {
		return "", false
	}
	switch v.(type) {
	case *starlark.List, starlark.Tuple:
	default:
		return "", false
	}
	var flags []string
	it := iter.Iterate()
	defer it.Done()
	var elem starlark.Value
	for it.Next(&elem) {
		s, ok := starlark.AsString(elem)
		if !ok {
			return "", false
		}
		flags = append(flags, s)
	}
	return strings.Join(flags, " "), true
}
