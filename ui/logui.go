// Copyright 2023 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package ui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/log"
)

// logSpinner logs the start and the end of an operation.
type logSpinner struct {
	msg     string
	started time.Time
}

func (l *logSpinner) Start(format string, args ...any) {
	l.msg = fmt.Sprintf(format, args...)
	l.started = time.Now()
	log.Info(StripANSIEscapeCodes(l.msg))
}

func (l *logSpinner) Stop(err error) {
	dur := FormatDuration(time.Since(l.started))
	if err != nil {
		log.Warn(StripANSIEscapeCodes(fmt.Sprintf("%s: failed in %s: %v", l.msg, dur, err)))
		return
	}
	log.Info(StripANSIEscapeCodes(fmt.Sprintf("%s: done in %s", l.msg, dur)))
}

func (l *logSpinner) Done(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	log.Info(StripANSIEscapeCodes(fmt.Sprintf("%s: %s in %s", l.msg, msg, FormatDuration(time.Since(l.started)))))
}

// LogUI reports through the default charmbracelet logger.
// It is used when stdout is not a terminal, e.g. when nofile runs
// from a script, so no escape sequence is written.
type LogUI struct{}

// NewSpinner returns a spinner that logs instead of animating.
func (LogUI) NewSpinner() Spinner {
	return &logSpinner{}
}

func (LogUI) Infof(format string, args ...any) {
	log.Helper()
	log.Info(StripANSIEscapeCodes(fmt.Sprintf(format, args...)))
}

func (LogUI) Warningf(format string, args ...any) {
	log.Helper()
	log.Warn(StripANSIEscapeCodes(fmt.Sprintf(format, args...)))
}

func (LogUI) Errorf(format string, args ...any) {
	log.Helper()
	log.Error(StripANSIEscapeCodes(fmt.Sprintf(format, args...)))
}
