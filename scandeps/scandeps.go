// Copyright 2023 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package scandeps

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"go.chromium.org/infra/build/nofile/o11y/clog"
)

// ScanDeps is a simple local C dependency scanner.
type ScanDeps struct {
	fs   *filesystem
	diag Diagnostics
}

// New creates new ScanDeps reading files from fsys and reporting
// findings to diag. If diag is nil, findings are logged.
func New(fsys FileSystem, diag Diagnostics) *ScanDeps {
	if diag == nil {
		diag = LogDiagnostics{}
	}
	return &ScanDeps{
		fs:   &filesystem{fsys: fsys},
		diag: diag,
	}
}

// Entrypoint is a *.c file that becomes an executable.
type Entrypoint struct {
	// Path is a slash separated path of the file.
	Path string
	// Contents is the contents of the file.
	Contents string
}

// Request is a request to scan deps.
type Request struct {
	// Entrypoints are the source files to build executables from.
	Entrypoints []Entrypoint

	// To mitigate scanning that does not terminate.
	// Zero means no timeout.
	Timeout time.Duration
}

// Stats is statistics of a scan.
type Stats struct {
	// Entrypoints is the number of entrypoints in the graph.
	Entrypoints int
	// Deps is the total number of dependencies of all entrypoints.
	Deps int
	// Visits is the number of candidate paths traversed.
	Visits int64
	// Reads is the number of files read, cumulative for the ScanDeps.
	Reads int64
	// Missing is the number of candidate paths that could not be read,
	// cumulative for the ScanDeps.
	Missing int64
	// Duration is the time taken by the scan.
	Duration time.Duration
}

// Scan scans local includes of the entrypoints in req and returns
// the dependency graph. The returned graph is frozen; the caller is
// its sole owner.
func (s *ScanDeps) Scan(ctx context.Context, req Request) (*Graph, Stats, error) {
	started := time.Now()
	if req.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeoutCause(ctx, req.Timeout, fmt.Errorf("scandeps timed out after %s: %w", req.Timeout, context.DeadlineExceeded))
		defer cancel()
	}

	paths := make([]string, 0, len(req.Entrypoints))
	for _, ep := range req.Entrypoints {
		paths = append(paths, ep.Path)
	}
	graph := NewGraph()
	graph.Seed(paths...)

	t := &traverser{
		fs:    s.fs,
		graph: graph,
		diag:  s.diag,
	}
	eg, gctx := errgroup.WithContext(ctx)
	for _, ep := range req.Entrypoints {
		goRecover(eg, func() error {
			ctx := clog.NewSpan(gctx, uuid.New().String(), "", map[string]string{
				"entrypoint": ep.Path,
			})
			err := t.scanEntrypoint(ctx, ep)
			if err != nil {
				return fmt.Errorf("scan %s: %w", ep.Path, err)
			}
			if clog.V(1) {
				clog.Infof(ctx, "deps %q", graph.Deps(ep.Path))
			}
			return nil
		})
	}
	err := eg.Wait()
	var perr *panicError
	if errors.As(err, &perr) {
		panic(perr)
	}
	if clog.V(1) {
		clog.Infof(ctx, "scanned %d entrypoints: %s", len(req.Entrypoints), cppScanSema)
	}
	stats := Stats{
		Visits:   t.nvisit.Load(),
		Reads:    s.fs.nread.Load(),
		Missing:  s.fs.nmissing.Load(),
		Duration: time.Since(started),
	}
	if err != nil {
		return nil, stats, err
	}
	graph.Freeze()
	stats.Entrypoints = graph.Len()
	for _, ep := range graph.Entrypoints() {
		stats.Deps += len(graph.Deps(ep))
	}
	return graph, stats, nil
}
