// Copyright 2023 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package input

import (
	"context"
	"sync/atomic"

	"go.chromium.org/infra/build/nofile/o11y/clog"
	"go.chromium.org/infra/build/nofile/ui"
)

// UIDiagnostics reports scan diagnostics to the user, and counts them.
type UIDiagnostics struct {
	n atomic.Int64
}

// InvalidExtension reports an include that is neither *.c nor *.h.
func (d *UIDiagnostics) InvalidExtension(ctx context.Context, path string) {
	d.n.Add(1)
	clog.Warningf(ctx, "invalid extension: %s", path)
	ui.Default.Errorf("%s has neither .c nor .h extension; skipped", path)
}

// Count returns the number of reported diagnostics.
func (d *UIDiagnostics) Count() int64 {
	return d.n.Load()
}
