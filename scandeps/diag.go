// Copyright 2023 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package scandeps

import (
	"context"

	"go.chromium.org/infra/build/nofile/o11y/clog"
)

// Diagnostics receives non-fatal findings during scan.
// It may be called concurrently.
type Diagnostics interface {
	// InvalidExtension is called for an include that names neither
	// a *.c nor a *.h file. path is the include resolved against the
	// directory of the including file. The include is skipped.
	InvalidExtension(ctx context.Context, path string)
}

// LogDiagnostics reports diagnostics to the log.
type LogDiagnostics struct{}

// InvalidExtension logs a warning for path.
func (LogDiagnostics) InvalidExtension(ctx context.Context, path string) {
	clog.Warningf(ctx, "include %s has neither %s nor %s extension", path, SourceExt, HeaderExt)
}
