// Copyright 2023 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package scandeps

import (
	"context"
	"sync"
	"sync/atomic"

	"go.chromium.org/infra/build/nofile/o11y/clog"
	"go.chromium.org/infra/build/nofile/runtimex"
	"go.chromium.org/infra/build/nofile/sync/semaphore"
)

// cppScanSema bounds the number of concurrent file reads.
// It is held only while reading, never while waiting for sub traversals.
var cppScanSema = semaphore.New("cppscan", runtimex.NumCPU())

// FileSystem provides access to source files.
type FileSystem interface {
	ReadFile(ctx context.Context, fname string) ([]byte, error)
}

// filesystem caches scan results of files read through FileSystem.
// It is shared for all scans by one ScanDeps, since the same header is
// typically reached from many entrypoints.
type filesystem struct {
	fsys FileSystem

	files sync.Map // filename -> *scanResult

	nread    atomic.Int64
	nmissing atomic.Int64
}

type scanResult struct {
	mu sync.Mutex

	done     bool
	includes []string
	err      error
}

// scan returns local includes of fname.
// err is non-nil if fname could not be read.
func (fsys *filesystem) scan(ctx context.Context, fname string) ([]string, error) {
	v, _ := fsys.files.LoadOrStore(fname, &scanResult{})
	sr := v.(*scanResult)
	sr.mu.Lock()
	defer sr.mu.Unlock()
	if sr.done {
		return sr.includes, sr.err
	}
	if clog.V(1) {
		clog.Infof(ctx, "read %s: %s", fname, cppScanSema)
	}
	var buf []byte
	err := cppScanSema.Do(ctx, func(ctx context.Context) error {
		var err error
		buf, err = fsys.fsys.ReadFile(ctx, fname)
		return err
	})
	if ctx.Err() != nil {
		// interrupted. don't cache the result.
		return nil, context.Cause(ctx)
	}
	fsys.nread.Add(1)
	sr.done = true
	if err != nil {
		fsys.nmissing.Add(1)
		if clog.V(1) {
			clog.Infof(ctx, "read %s: %v", fname, err)
		}
		sr.err = err
		return nil, err
	}
	sr.includes = LocalIncludes(ctx, fname, buf)
	if clog.V(1) {
		clog.Infof(ctx, "%s -> includes:%q", fname, sr.includes)
	}
	return sr.includes, nil
}
