// Copyright 2023 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package scandeps provides a local C dependency scanner.
// Compared with a C preprocessor, it only follows the simple form of
// local include directive
//
//	#include "foo.h"
//
// at the start of a line. Lines that contain `<` (system includes) or
// `std` (standard library headers) are ignored, as are macros and
// conditional compilation.
//
// Starting from each entrypoint (a *.c file that becomes an executable),
// it resolves every local include relative to the directory of the file
// that contains it, and tries both the *.c and the *.h variant of the
// included name. Every *.c file that exists is recorded as a dependency
// of the entrypoint, i.e. a source file that must be linked into the
// executable. The *.h variant is only read to follow its own includes.
//
// Dependencies are identified by file name only. "lib/util.c" and
// "vendor/util.c" are the same dependency for an entrypoint, and the
// first one discovered is kept. The identity also stops traversal: a
// name already recorded for an entrypoint is not traversed again.
// An include cycle through headers that have no *.c counterpart is never
// recorded, so it does not stop; use Request.Timeout to bound such scans.
package scandeps
