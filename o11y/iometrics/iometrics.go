// Copyright 2023 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package iometrics manages I/O metrics.
package iometrics

import (
	"errors"
	"fmt"
	"io/fs"
	"sync"
)

// IOMetrics holds I/O metrics.
type IOMetrics struct {
	name string

	mu sync.Mutex

	rOps     int64
	rBytes   int64
	rErrs    int64
	rMissing int64
	wOps     int64
	wBytes   int64
	wErrs    int64
}

// New returns new iometrics for name.
func New(name string) *IOMetrics {
	return &IOMetrics{name: name}
}

// ReadDone counts when a read operation is done.
// n is the number of bytes, and err is a read error.
// Reads of non-existing files are counted separately from other errors.
func (m *IOMetrics) ReadDone(n int, err error) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rOps++
	m.rBytes += int64(n)
	switch {
	case err == nil:
	case errors.Is(err, fs.ErrNotExist):
		m.rMissing++
	default:
		m.rErrs++
	}
}

// WriteDone counts when a write operation is done.
// n is the number of bytes, and err is a write error.
func (m *IOMetrics) WriteDone(n int, err error) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.wOps++
	m.wBytes += int64(n)
	if err != nil {
		m.wErrs++
	}
}

// Name returns the name of the iometrics.
func (m *IOMetrics) Name() string {
	if m == nil {
		return "<nil>"
	}
	return m.name
}

// Stats holds iometrics.
type Stats struct {
	// Number of read operations.
	ROps int64
	// Number of read bytes.
	RBytes int64
	// Number of read errors, excluding non-existing files.
	RErrs int64
	// Number of reads of non-existing files.
	RMissing int64

	// Number of write operations.
	WOps int64
	// Number of write bytes.
	WBytes int64
	// Number of write errors.
	WErrs int64
}

func (s Stats) String() string {
	return fmt.Sprintf("read=%d(%dB missing=%d err=%d) write=%d(%dB err=%d)", s.ROps, s.RBytes, s.RMissing, s.RErrs, s.WOps, s.WBytes, s.WErrs)
}

// Stats returns the snapshot of the iometrics.
func (m *IOMetrics) Stats() Stats {
	if m == nil {
		return Stats{}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return Stats{
		ROps:     m.rOps,
		RBytes:   m.rBytes,
		RErrs:    m.rErrs,
		RMissing: m.rMissing,
		WOps:     m.wOps,
		WBytes:   m.wBytes,
		WErrs:    m.wErrs,
	}
}
