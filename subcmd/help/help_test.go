// Copyright 2023 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package help

import (
	"flag"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestPrintGlobalFlags(t *testing.T) {
	fs := flag.NewFlagSet("nofile", flag.ContinueOnError)
	fs.Bool("v", false, "verbose logging")
	fs.String("log_file", "", "write log to the file instead of stderr")
	fs.String("C", ".", "working directory")

	var sb strings.Builder
	printGlobalFlags(&sb, fs)
	want := strings.Join([]string{
		"Global flags, given before the command:",
		"  -C",
		"    \tworking directory (default \".\")",
		"  -log_file",
		"    \twrite log to the file instead of stderr",
		"  -v",
		"    \tverbose logging",
		"",
	}, "\n")
	if diff := cmp.Diff(want, sb.String()); diff != "" {
		t.Errorf("printGlobalFlags diff -want +got:\n%s", diff)
	}
}
