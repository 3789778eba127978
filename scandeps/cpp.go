// Copyright 2023 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package scandeps

import (
	"bytes"
	"context"
	"strings"
	"time"

	"go.chromium.org/infra/build/nofile/o11y/clog"
)

var (
	includeDirective = []byte("#include")
	// stdMarker marks standard library includes, e.g. "stdio.h".
	stdMarker = []byte("std")
)

// LocalIncludes returns the paths of local includes in buf, in order.
//
// Only lines that start with `#include` are checked, and lines that
// contain `<` or `std` are skipped. The directive and the quotes
// around the path are stripped, e.g. `#include "lib/foo.h"` -> `lib/foo.h`.
func LocalIncludes(ctx context.Context, fname string, buf []byte) []string {
	started := time.Now()
	var includes []string
	for len(buf) > 0 {
		var line []byte
		i := bytes.IndexByte(buf, '\n')
		if i < 0 {
			line = buf
			buf = nil
		} else {
			line = buf[:i]
			buf = buf[i+1:]
		}
		line = bytes.TrimSuffix(line, []byte("\r"))
		if !bytes.HasPrefix(line, includeDirective) {
			continue
		}
		if bytes.Contains(line, stdMarker) || bytes.IndexByte(line, '<') >= 0 {
			if clog.V(2) {
				clog.Infof(ctx, "%s: skip non-local %q", fname, line)
			}
			continue
		}
		incpath, ok := localIncludePath(line[len(includeDirective):])
		if !ok {
			if clog.V(1) {
				clog.Infof(ctx, "%s: skip %q", fname, line)
			}
			continue
		}
		includes = append(includes, incpath)
	}
	if dur := time.Since(started); dur > time.Second {
		clog.Infof(ctx, "slow LocalIncludes %s %s", fname, dur)
	}
	return includes
}

// localIncludePath extracts path from the rest of include directive line.
//
//	` "foo.h"` -> `foo.h`
//	` "foo.h" // comment` -> `foo.h`
//	` FOO_H` -> `FOO_H`
func localIncludePath(line []byte) (string, bool) {
	if len(line) == 0 {
		return "", false
	}
	switch line[0] {
	case ' ', '\t', '"':
	default:
		// not '#include ', e.g. '#include_next'.
		return "", false
	}
	line = bytes.TrimSpace(line)
	if len(line) == 0 {
		return "", false
	}
	if line[0] != '"' {
		// not quoted. use the first token as is.
		if i := bytes.IndexAny(line, " \t"); i >= 0 {
			line = line[:i]
		}
		return strings.Clone(string(line)), true
	}
	line = line[1:]
	if i := bytes.IndexByte(line, '"'); i >= 0 {
		line = line[:i]
	}
	if len(line) == 0 {
		return "", false
	}
	return strings.Clone(string(line)), true
}
