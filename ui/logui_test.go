// Copyright 2023 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package ui

import (
	"bytes"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

func TestLogUI(t *testing.T) {
	var buf bytes.Buffer
	log.SetOutput(&buf)
	defer log.SetOutput(os.Stderr)

	var u UI = &LogUI{}
	u.Errorf("%s: not found", SGR(Red, "main.c"))
	u.Warningf("invalid extension %s", SGR(Yellow, "a.inc"))
	sp := u.NewSpinner()
	sp.Start("scanning %d entrypoints", 2)
	sp.Stop(errors.New("interrupted"))
	sp = u.NewSpinner()
	sp.Start("reading %s", SGR(Bold, "main.c"))
	sp.Done("%d includes", 3)

	got := buf.String()
	if strings.Contains(got, "\033[") {
		t.Errorf("LogUI output has escape sequence: %q", got)
	}
	for _, want := range []string{
		"main.c: not found",
		"invalid extension a.inc",
		"scanning 2 entrypoints: failed in ",
		"interrupted",
		"reading main.c: 3 includes in ",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("LogUI output=%q; want contains %q", got, want)
		}
	}
}
