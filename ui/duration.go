// Copyright 2023 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package ui

import (
	"fmt"
	"time"
)

// FormatDuration formats d for status lines, rounded to 10ms:
// "1.23s", "1m02.30s" or "1h2m03.40s".
func FormatDuration(d time.Duration) string {
	d = d.Round(10 * time.Millisecond)
	h := int64(d / time.Hour)
	d %= time.Hour
	m := int64(d / time.Minute)
	sec := (d % time.Minute).Seconds()
	switch {
	case h > 0:
		return fmt.Sprintf("%dh%dm%05.2fs", h, m, sec)
	case m > 0:
		return fmt.Sprintf("%dm%05.2fs", m, sec)
	}
	return fmt.Sprintf("%.2fs", sec)
}
