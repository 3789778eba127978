// Copyright 2023 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package scandeps

// DepID identifies a dependency by its file name only.
//
// Two DepIDs with the same file name in different directories are equal.
// Same-named files are indistinguishable in a Graph; this is how
// traversal terminates, and must not be replaced with full path equality.
type DepID struct {
	raw string
}

// NewDepID returns a DepID for the raw path.
func NewDepID(raw string) DepID {
	return DepID{raw: raw}
}

// String returns the raw path.
func (d DepID) String() string {
	return d.raw
}

// Key returns the identity key of d, i.e. its file name.
func (d DepID) Key() string {
	return ParsePath(d.raw).File
}

// Equal reports whether d and o have the same file name.
func (d DepID) Equal(o DepID) bool {
	return d.Key() == o.Key()
}
