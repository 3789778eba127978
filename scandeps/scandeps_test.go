// Copyright 2023 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package scandeps

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"go.chromium.org/infra/build/nofile/osfs"
)

// mapFS is an in-memory FileSystem. "dir/../" in file names is resolved.
type mapFS map[string]string

func (m mapFS) ReadFile(ctx context.Context, fname string) ([]byte, error) {
	s, ok := m[path.Clean(fname)]
	if !ok {
		return nil, &fs.PathError{Op: "open", Path: fname, Err: fs.ErrNotExist}
	}
	return []byte(s), nil
}

type fakeDiagnostics struct {
	mu    sync.Mutex
	paths []string
}

func (d *fakeDiagnostics) InvalidExtension(ctx context.Context, path string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.paths = append(d.paths, path)
}

func (d *fakeDiagnostics) got() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	paths := append([]string(nil), d.paths...)
	sort.Strings(paths)
	return paths
}

func scan(t *testing.T, files mapFS, entrypoints ...string) (map[string][]string, *fakeDiagnostics) {
	t.Helper()
	ctx := context.Background()
	diag := &fakeDiagnostics{}
	s := New(files, diag)
	var req Request
	for _, ep := range entrypoints {
		req.Entrypoints = append(req.Entrypoints, Entrypoint{Path: ep, Contents: files[ep]})
	}
	graph, _, err := s.Scan(ctx, req)
	if err != nil {
		t.Fatalf("Scan(%q)=_, _, %v; want nil err", entrypoints, err)
	}
	if !graph.Frozen() {
		t.Errorf("Scan returned mutable graph")
	}
	got := make(map[string][]string)
	for _, e := range graph.Drain() {
		got[e.Entrypoint] = e.Deps
	}
	return got, diag
}

func TestScan(t *testing.T) {
	for _, tc := range []struct {
		name     string
		files    mapFS
		want     []string
		wantDiag []string
	}{
		{
			name: "no-includes",
			files: mapFS{
				"a.c": "#include <stdio.h>\nint main(void) { return 0; }\n",
			},
			want: []string{},
		},
		{
			name: "only-source-of-header",
			files: mapFS{
				"a.c": `#include "b.h"`,
				"b.c": "int b(void) { return 1; }\n",
			},
			want: []string{"b.c"},
		},
		{
			name: "nested-header-without-source",
			files: mapFS{
				"a.c": `#include "b.h"`,
				"b.h": `#include "c.h"`,
				"c.c": "",
			},
			want: []string{"c.c"},
		},
		{
			name: "source-and-header",
			files: mapFS{
				"a.c": `#include "b.h"`,
				"b.c": `#include "b.h"
#include "c.h"
`,
				"b.h": `#include "d.h"`,
				"c.c": "",
				"d.c": "",
			},
			want: []string{"b.c", "c.c", "d.c"},
		},
		{
			name: "self-include",
			files: mapFS{
				"a.c": `#include "b.h"`,
				"b.c": `#include "b.h"`,
				"b.h": `#include "b.h"`,
			},
			want: []string{"b.c"},
		},
		{
			name: "source-cycle",
			files: mapFS{
				"a.c": `#include "b.h"`,
				"b.c": `#include "c.h"`,
				"c.c": `#include "b.h"`,
				"b.h": `#include "c.h"`,
				"c.h": `#include "b.h"`,
			},
			want: []string{"b.c", "c.c"},
		},
		{
			name: "relative-to-including-file",
			files: mapFS{
				"src/main.c":           `#include "lib/util.h"`,
				"src/lib/util.h":       `#include "helper.h"`,
				"src/lib/util.c":       `#include "util.h"`,
				"src/lib/helper.c":     `#include "../common/log.h"`,
				"src/common/log.c":     "",
				"src/helper.c":         "wrong directory",
				"src/lib/lib/helper.c": "wrong directory",
				"src/lib/common/log.c": "wrong directory",
			},
			// paths are not cleaned.
			want: []string{"src/lib/../common/log.c", "src/lib/helper.c", "src/lib/util.c"},
		},
		{
			name: "same-name-different-dir",
			files: mapFS{
				"main.c": "#include \"a/x.h\"\n#include \"b/x.h\"\n",
				"a/x.c":  "",
				"b/x.c":  "",
				"b/x.h":  `#include "y.h"`,
				"b/y.c":  "",
			},
			want: []string{"a/x.c", "b/y.c"},
		},
		{
			name: "direct-source-include",
			files: mapFS{
				"main.c": `#include "impl.c"`,
			},
			want: []string{"impl.c"},
		},
		{
			name: "direct-source-include-nested",
			files: mapFS{
				"main.c":  `#include "impl.c"`,
				"impl.c":  `#include "extra.h"`,
				"extra.c": "",
			},
			want: []string{"extra.c", "impl.c"},
		},
		{
			name: "invalid-extension",
			files: mapFS{
				"main.c":    "#include \"table.inc\"\n#include \"lib/b.h\"\n",
				"lib/b.h":   "#include \"data.txt\"\n#include \"c.h\"\n#include MACRO_H\n",
				"lib/c.c":   "",
				"table.inc": "",
			},
			want:     []string{"lib/c.c"},
			wantDiag: []string{"lib/MACRO_H", "lib/data.txt", "table.inc"},
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			var ep string
			for _, name := range []string{"a.c", "main.c", "src/main.c"} {
				if _, ok := tc.files[name]; ok {
					ep = name
					break
				}
			}
			got, diag := scan(t, tc.files, ep)
			if diff := cmp.Diff(tc.want, got[ep]); diff != "" {
				t.Errorf("deps of %s diff -want +got:\n%s", ep, diff)
			}
			if diff := cmp.Diff(tc.wantDiag, diag.got()); diff != "" {
				t.Errorf("diagnostics diff -want +got:\n%s", diff)
			}
		})
	}
}

func TestScan_multipleEntrypoints(t *testing.T) {
	files := mapFS{
		"emulate.c":        "#include \"emulate_utils.h\"\n#include \"common/bits.h\"\n",
		"assemble.c":       "#include \"assemble_utils.h\"\n#include \"common/bits.h\"\n",
		"emulate_utils.c":  "",
		"assemble_utils.c": `#include "symbols.h"`,
		"symbols.c":        "",
		"common/bits.c":    "",
	}
	got, _ := scan(t, files, "emulate.c", "assemble.c")
	want := map[string][]string{
		"emulate.c":  {"common/bits.c", "emulate_utils.c"},
		"assemble.c": {"assemble_utils.c", "common/bits.c", "symbols.c"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("deps diff -want +got:\n%s", diff)
	}
}

func TestScan_deterministic(t *testing.T) {
	files := mapFS{
		"main.c": "#include \"a.h\"\n#include \"b.h\"\n#include \"c.h\"\n",
		"a.c":    "#include \"d.h\"\n#include \"e.h\"\n",
		"b.h":    "#include \"d.h\"\n#include \"f.h\"\n",
		"c.c":    "#include \"a.h\"\n",
		"d.c":    "#include \"f.h\"\n",
		"e.c":    "",
		"f.c":    "#include \"a.h\"\n",
	}
	want := []string{"a.c", "c.c", "d.c", "e.c", "f.c"}
	for i := 0; i < 20; i++ {
		got, _ := scan(t, files, "main.c")
		if diff := cmp.Diff(want, got["main.c"]); diff != "" {
			t.Fatalf("run %d: deps diff -want +got:\n%s", i, diff)
		}
	}
}

func TestScan_stats(t *testing.T) {
	ctx := context.Background()
	files := mapFS{
		"main.c": `#include "a.h"`,
		"a.c":    "",
	}
	s := New(files, nil)
	_, stats, err := s.Scan(ctx, Request{Entrypoints: []Entrypoint{{Path: "main.c", Contents: files["main.c"]}}})
	if err != nil {
		t.Fatalf("Scan=%v; want nil err", err)
	}
	// a.c (found), a.h (missing)
	if stats.Entrypoints != 1 || stats.Deps != 1 || stats.Reads != 2 || stats.Missing != 1 || stats.Visits != 2 {
		t.Errorf("stats=%+v; want 1 entrypoint, 1 dep, 2 reads, 1 missing, 2 visits", stats)
	}
}

func TestScan_headerCycleTimeout(t *testing.T) {
	ctx := context.Background()
	files := mapFS{
		"main.c": `#include "a.h"`,
		"a.h":    `#include "b.h"`,
		"b.h":    `#include "a.h"`,
	}
	s := New(files, nil)
	_, _, err := s.Scan(ctx, Request{
		Entrypoints: []Entrypoint{{Path: "main.c", Contents: files["main.c"]}},
		Timeout:     10 * time.Millisecond,
	})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Scan=%v; want %v", err, context.DeadlineExceeded)
	}
}

func TestScan_canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	files := mapFS{
		"main.c": `#include "a.h"`,
		"a.c":    "",
	}
	s := New(files, nil)
	_, _, err := s.Scan(ctx, Request{Entrypoints: []Entrypoint{{Path: "main.c", Contents: files["main.c"]}}})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Scan=%v; want %v", err, context.Canceled)
	}
}

type panicDiagnostics struct{}

func (panicDiagnostics) InvalidExtension(ctx context.Context, path string) {
	panic("bad include " + path)
}

func TestScan_panicInTraversal(t *testing.T) {
	ctx := context.Background()
	files := mapFS{
		"main.c": `#include "a.h"`,
		"a.c":    `#include "b.h"`,
		"b.h":    `#include "table.inc"`,
	}
	s := New(files, panicDiagnostics{})
	defer func() {
		r := recover()
		perr, ok := r.(*panicError)
		if !ok {
			t.Fatalf("recover()=%v; want *panicError", r)
		}
		if perr.value != "bad include table.inc" {
			t.Errorf("panic value=%v; want %q", perr.value, "bad include table.inc")
		}
	}()
	_, _, err := s.Scan(ctx, Request{Entrypoints: []Entrypoint{{Path: "main.c", Contents: files["main.c"]}}})
	t.Errorf("Scan=%v; want panic", err)
}

func TestScan_osfs(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	for fname, content := range map[string]string{
		"src/main.c": `
#include <stdio.h>
#include <stdlib.h>

#include "emulator/cpu.h"
#include "utils.h"

int main(int argc, char **argv) { return run(argc, argv); }
`,
		"src/emulator/cpu.h": `
#ifndef CPU_H
#define CPU_H
#include "memory.h"
#endif
`,
		"src/emulator/cpu.c": `
#include "cpu.h"
#include "../utils.h"
`,
		"src/emulator/memory.c": `
#include <string.h>
#include "memory.h"
`,
		"src/emulator/memory.h": "",
		"src/utils.h":           "",
		"src/utils.c":           `#include "utils.h"`,
	} {
		fname := filepath.Join(dir, fname)
		err := os.MkdirAll(filepath.Dir(fname), 0755)
		if err != nil {
			t.Fatal(err)
		}
		err = os.WriteFile(fname, []byte(content), 0644)
		if err != nil {
			t.Fatal(err)
		}
	}
	root := filepath.ToSlash(dir) + "/"
	ep := root + "src/main.c"
	buf, err := os.ReadFile(filepath.FromSlash(ep))
	if err != nil {
		t.Fatal(err)
	}

	s := New(osfs.New("test"), nil)
	graph, _, err := s.Scan(ctx, Request{Entrypoints: []Entrypoint{{Path: ep, Contents: string(buf)}}})
	if err != nil {
		t.Fatalf("Scan=%v; want nil err", err)
	}
	// utils.c is reached via cpu.c before main.c's own include.
	want := []string{
		root + "src/emulator/../utils.c",
		root + "src/emulator/cpu.c",
		root + "src/emulator/memory.c",
	}
	got := graph.Deps(ep)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Deps(%s) diff -want +got:\n%s", ep, diff)
	}
}
