// Copyright 2023 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package ui

import (
	"fmt"
	"io"
	"os"
	"time"
)

// spinnerInterval is the interval of spinner animation.
const spinnerInterval = 1 * time.Second

// termSpinner animates on w, which is stderr so that a Makefile
// printed to stdout is not interleaved with progress.
type termSpinner struct {
	w       io.Writer
	ticker  *time.Ticker
	quit    chan struct{}
	done    chan struct{}
	started time.Time
	msg     string
}

func (s *termSpinner) Start(format string, args ...any) {
	s.started = time.Now()
	s.msg = fmt.Sprintf(format, args...)
	fmt.Fprintf(s.w, "%s... ", s.msg)
	s.ticker = time.NewTicker(spinnerInterval)
	s.quit = make(chan struct{})
	s.done = make(chan struct{})
	go func() {
		defer close(s.done)
		const chars = `/-\|`
		for i := 0; ; i = (i + 1) % len(chars) {
			select {
			case <-s.quit:
				return
			case <-s.ticker.C:
				fmt.Fprintf(s.w, "\b%c", chars[i])
			}
		}
	}()
}

// finish stops the animation and returns the elapsed time.
func (s *termSpinner) finish() time.Duration {
	s.ticker.Stop()
	close(s.quit)
	<-s.done
	return time.Since(s.started)
}

func (s *termSpinner) Stop(err error) {
	d := s.finish()
	switch {
	case err != nil:
		fmt.Fprintf(s.w, "\r\033[K%6s %s %s\n", FormatDuration(d), s.msg, SGR(Red, fmt.Sprintf("failed %v", err)))
	case d < DurationThreshold:
		fmt.Fprint(s.w, "\r\033[K")
	default:
		fmt.Fprintf(s.w, "\r\033[K%6s %s\n", FormatDuration(d), s.msg)
	}
}

func (s *termSpinner) Done(format string, args ...any) {
	d := s.finish()
	fmt.Fprintf(s.w, "\r\033[K%6s %s %s\n", FormatDuration(d), s.msg, fmt.Sprintf(format, args...))
}

// TermUI is a terminal UI with colors and an animated spinner.
type TermUI struct{}

// NewSpinner returns a spinner animating on stderr.
func (TermUI) NewSpinner() Spinner {
	return &termSpinner{w: os.Stderr}
}

// Infof reports to stdout.
func (TermUI) Infof(format string, args ...any) {
	fmt.Fprintf(os.Stdout, format+"\n", args...)
}

// Warningf reports to stderr in yellow.
func (TermUI) Warningf(format string, args ...any) {
	fmt.Fprintln(os.Stderr, SGR(Yellow, fmt.Sprintf(format, args...)))
}

// Errorf reports to stderr in red.
func (TermUI) Errorf(format string, args ...any) {
	fmt.Fprintln(os.Stderr, SGR(Red, fmt.Sprintf(format, args...)))
}
