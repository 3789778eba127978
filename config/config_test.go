// Copyright 2023 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package config

import (
	"context"
	"errors"
	"io/fs"
	"runtime"
	"testing"

	"github.com/google/go-cmp/cmp"
)

type mapFS map[string]string

func (m mapFS) ReadFile(ctx context.Context, fname string) ([]byte, error) {
	s, ok := m[fname]
	if !ok {
		return nil, &fs.PathError{Op: "open", Path: fname, Err: fs.ErrNotExist}
	}
	return []byte(s), nil
}

func TestLoad(t *testing.T) {
	ctx := context.Background()
	for _, tc := range []struct {
		name string
		star string
		want Config
	}{
		{
			name: "empty",
			star: "",
			want: Default(),
		},
		{
			name: "all",
			star: `
compiler = "clang"
cflags = "-O2 -std=c11"
output = "Makefile"
`,
			want: Config{
				Compiler: "clang",
				CFlags:   "-O2 -std=c11",
				Output:   "Makefile",
			},
		},
		{
			name: "cflags-list",
			star: `
_common = ["-Wall", "-g"]
cflags = _common + ["-pedantic"]
print("cflags", cflags)
`,
			want: Config{
				Compiler: "gcc",
				CFlags:   "-Wall -g -pedantic",
				Output:   "_Makefile",
			},
		},
		{
			name: "runtime",
			star: `
compiler = "cc-" + runtime.os
`,
			want: Config{
				Compiler: "cc-" + runtime.GOOS,
				CFlags:   "-Wall -g -pedantic -std=c99",
				Output:   "_Makefile",
			},
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Load(ctx, mapFS{DefaultFile: tc.star}, DefaultFile)
			if err != nil {
				t.Fatalf("Load(ctx, fsys, %q)=_, %v; want nil err", DefaultFile, err)
			}
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Errorf("Load(ctx, fsys, %q) diff -want +got:\n%s", DefaultFile, diff)
			}
		})
	}
}

func TestLoad_errors(t *testing.T) {
	ctx := context.Background()
	for _, tc := range []struct {
		name string
		star string
	}{
		{name: "syntax", star: "compiler = "},
		{name: "compiler-type", star: "compiler = 1"},
		{name: "cflags-type", star: `cflags = ["-O2", 3]`},
		{name: "cflags-dict", star: `cflags = {"-O2": True}`},
		{name: "load", star: `load("other.star", "x")`},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(ctx, mapFS{DefaultFile: tc.star}, DefaultFile)
			if err == nil {
				t.Errorf("Load(ctx, fsys, %q)=_, nil; want err", DefaultFile)
			}
		})
	}
}

func TestLoad_missing(t *testing.T) {
	ctx := context.Background()
	got, err := Load(ctx, mapFS{}, DefaultFile)
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("Load(ctx, fsys, %q)=_, %v; want %v", DefaultFile, err, fs.ErrNotExist)
	}
	if diff := cmp.Diff(Default(), got); diff != "" {
		t.Errorf("Load(ctx, fsys, %q) diff -want +got:\n%s", DefaultFile, diff)
	}
}

func TestOverride(t *testing.T) {
	cfg := Config{
		Compiler: "clang",
		CFlags:   "-O2",
		Output:   "Makefile",
	}
	got := cfg.Override(Config{Compiler: "gcc"})
	want := Config{
		Compiler: "gcc",
		CFlags:   "-O2",
		Output:   "Makefile",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Override diff -want +got:\n%s", diff)
	}
}
