// Copyright 2024 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package osfs provides OS Filesystem access.
package osfs

import (
	"context"
	"io/fs"
	"os"
	"runtime"
	"time"

	"go.chromium.org/infra/build/nofile/o11y/clog"
	"go.chromium.org/infra/build/nofile/o11y/iometrics"
)

// slowThreshold is the duration after which an operation is logged as slow.
const slowThreshold = 1 * time.Minute

// OSFS provides OS Filesystem access.
// It counts metrics by iometrics.
type OSFS struct {
	*iometrics.IOMetrics
}

// New creates new OSFS.
func New(name string) *OSFS {
	return &OSFS{IOMetrics: iometrics.New(name)}
}

func logSlow(ctx context.Context, name string, dur time.Duration, err error) {
	buf := make([]byte, 4*1024)
	n := runtime.Stack(buf, false)
	clog.Warningf(ctx, "slow op %s: %s %v\n%s", name, dur, err, buf[:n])
}

// ReadFile reads the named file and returns the contents.
func (fs *OSFS) ReadFile(ctx context.Context, fname string) ([]byte, error) {
	started := time.Now()
	b, err := os.ReadFile(fname)
	fs.ReadDone(len(b), err)
	if dur := time.Since(started); dur > slowThreshold {
		logSlow(ctx, fname, dur, err)
	}
	return b, err
}

// WriteFile writes data to the named file, creating it if necessary.
func (fs *OSFS) WriteFile(ctx context.Context, fname string, data []byte, perm fs.FileMode) error {
	started := time.Now()
	err := os.WriteFile(fname, data, perm)
	n := len(data)
	if err != nil {
		n = 0
	}
	fs.WriteDone(n, err)
	if dur := time.Since(started); dur > slowThreshold {
		logSlow(ctx, fname, dur, err)
	}
	return err
}
