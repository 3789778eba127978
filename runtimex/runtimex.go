// Copyright 2024 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package runtimex provides runtime information that the standard
// runtime package reports incorrectly on some platforms.
package runtimex

import "runtime"

var ncpu = func() int {
	if n := getproccount(); n > 0 {
		return n
	}
	return runtime.NumCPU()
}()

// NumCPU returns the number of logical CPUs usable by the current process.
// It bounds how many source files are read concurrently during a scan.
//
// On Windows, runtime.NumCPU only counts a single processor group
// (up to 64 CPUs), so GetActiveProcessorCount is queried for all groups.
// On other platforms, it is runtime.NumCPU.
func NumCPU() int {
	return ncpu
}
