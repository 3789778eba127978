// Copyright 2023 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package scandeps

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"go.chromium.org/infra/build/nofile/o11y/clog"
)

// traverser follows local includes and records *.c files in graph.
type traverser struct {
	fs    *filesystem
	graph *Graph
	diag  Diagnostics

	nvisit atomic.Int64
}

// scanEntrypoint follows includes of the entrypoint's own contents.
// Includes are resolved against the entrypoint's directory and processed
// in order.
func (t *traverser) scanEntrypoint(ctx context.Context, ep Entrypoint) error {
	start := ParsePath(ep.Path)
	for _, inc := range LocalIncludes(ctx, ep.Path, []byte(ep.Contents)) {
		header := Compose(start, ParsePath(inc))
		if !hasCExt(header.File) {
			t.diag.InvalidExtension(ctx, header.String())
			continue
		}
		source := header.WithExt(SourceExt)
		// *.c first, so it is recorded before the includes of *.h are followed.
		err := t.traverse(ctx, ep.Path, source)
		if err != nil {
			return err
		}
		if header.HasHeaderExt() {
			err = t.traverse(ctx, ep.Path, header)
			if err != nil {
				return err
			}
			continue
		}
		// `#include "foo.c"` is always a dependency.
		t.graph.Add(ep.Path, source.String())
	}
	return nil
}

// traverse reads candidate and follows its includes concurrently.
// A candidate that can't be read is a leaf: typically only one of
// the *.c or *.h variant exists.
// It returns after all files reachable from candidate were processed.
// It only fails when ctx is done.
func (t *traverser) traverse(ctx context.Context, entrypoint string, candidate Path) error {
	if ctx.Err() != nil {
		return context.Cause(ctx)
	}
	t.nvisit.Add(1)
	fname := candidate.String()
	includes, err := t.fs.scan(ctx, fname)
	if err != nil {
		if ctx.Err() != nil {
			return context.Cause(ctx)
		}
		return nil
	}
	if candidate.HasSourceExt() {
		t.graph.Add(entrypoint, fname)
	}

	eg, gctx := errgroup.WithContext(ctx)
	for _, inc := range includes {
		if !hasCExt(inc) {
			t.diag.InvalidExtension(ctx, Compose(candidate, ParsePath(inc)).String())
			continue
		}
		next := Compose(candidate, ParsePath(inc).WithExt(SourceExt))
		if t.graph.Has(entrypoint, next.String()) {
			if clog.V(1) {
				clog.Infof(ctx, "%s: %s already visited", fname, next)
			}
			continue
		}
		goRecover(eg, func() error {
			err := t.traverse(gctx, entrypoint, next)
			if err != nil {
				return err
			}
			return t.traverse(gctx, entrypoint, next.WithExt(HeaderExt))
		})
	}
	return eg.Wait()
}

// panicError is a panic recovered in a traversal goroutine.
type panicError struct {
	value any
	stack []byte
}

func (e *panicError) Error() string {
	return fmt.Sprintf("panic: %v\n%s", e.value, e.stack)
}

// goRecover runs f in eg. A panic in f becomes a *panicError
// returned from eg.Wait, so Scan can re-panic on the caller's goroutine.
func goRecover(eg *errgroup.Group, f func() error) {
	eg.Go(func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = &panicError{value: r, stack: debug.Stack()}
			}
		}()
		return f()
	})
}
