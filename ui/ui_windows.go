// Copyright 2023 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package ui

import (
	"os"

	"github.com/charmbracelet/log"
	"golang.org/x/sys/windows"
)

// console is a console handle and its mode before Init.
type console struct {
	name string
	h    windows.Handle
	mode uint32
}

// consoles are stdout for the Makefile and status lines, and stderr
// for colored diagnostics.
var consoles = []*console{
	{name: "stdout", h: windows.Handle(os.Stdout.Fd())},
	{name: "stderr", h: windows.Handle(os.Stderr.Fd())},
}

// Init enables virtual terminal processing on stdout and stderr,
// so SGR sequences are rendered as colors.
func Init() {
	for _, c := range consoles {
		err := windows.GetConsoleMode(c.h, &c.mode)
		if err != nil {
			// redirected to a file or pipe.
			log.Debugf("GetConsoleMode %s: %v", c.name, err)
			c.mode = 0
			continue
		}
		if c.mode&windows.ENABLE_VIRTUAL_TERMINAL_PROCESSING != 0 {
			c.mode = 0
			continue
		}
		mode := c.mode | windows.ENABLE_VIRTUAL_TERMINAL_PROCESSING
		err = windows.SetConsoleMode(c.h, mode)
		if err != nil {
			log.Warnf("SetConsoleMode %s 0x%x: %v", c.name, mode, err)
			c.mode = 0
		}
	}
}

// Restore restores the console modes changed by Init.
func Restore() {
	for _, c := range consoles {
		if c.mode == 0 {
			continue
		}
		err := windows.SetConsoleMode(c.h, c.mode)
		if err != nil {
			log.Errorf("SetConsoleMode %s 0x%x: %v", c.name, c.mode, err)
		}
	}
}
