// Copyright 2023 The Chromium Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package clog provides context aware logging.
// It can store trace, spanID, arbitrary labels to each context.
// The main use case is to add scan context (entrypoint, trace id)
// to each log entry automatically.
package clog

import (
	"context"
	"fmt"
	"sort"

	"github.com/charmbracelet/log"
)

type contextKeyType int

var contextKey contextKeyType

// New creates a new Logger writing to l.
// If l is nil, it uses the default charmbracelet logger.
func New(l *log.Logger) *Logger {
	if l == nil {
		l = log.Default()
	}
	return &Logger{base: l, out: l}
}

// NewContext sets the given logger to the context.
func NewContext(ctx context.Context, logger *Logger) context.Context {
	return context.WithValue(ctx, contextKey, logger)
}

// NewSpan sets a new logger.Span with the given labels to the context.
func NewSpan(ctx context.Context, trace, spanID string, labels map[string]string) context.Context {
	return NewContext(ctx, FromContext(ctx).Span(trace, spanID, labels))
}

// FromContext returns a logger in the context,
// or a logger for the default charmbracelet logger if it's not set.
func FromContext(ctx context.Context) *Logger {
	logger, ok := ctx.Value(contextKey).(*Logger)
	if !ok {
		return New(nil)
	}
	return logger
}

// Logger holds the trace, spanID, arbitrary labels of the context.
type Logger struct {
	base *log.Logger
	// out is base with trace, span and labels attached as key-values.
	out *log.Logger

	trace  string
	spanID string
	labels map[string]string
}

// Span returns a sub logger for the trace span.
func (l *Logger) Span(trace, spanID string, labels map[string]string) *Logger {
	var kv []any
	if trace != "" {
		kv = append(kv, "trace", trace)
	}
	if spanID != "" {
		kv = append(kv, "span", spanID)
	}
	keys := make([]string, 0, len(labels))
	for k := range labels {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		kv = append(kv, k, labels[k])
	}
	return &Logger{
		base:   l.base,
		out:    l.base.With(kv...),
		trace:  trace,
		spanID: spanID,
		labels: labels,
	}
}

// Trace returns trace id of the logger.
func (l *Logger) Trace() string { return l.trace }

// SpanID returns span id of the logger.
func (l *Logger) SpanID() string { return l.spanID }

// Labels returns labels of the logger.
func (l *Logger) Labels() map[string]string { return l.labels }

// Infof logs at info log level in the manner of fmt.Printf.
func (l *Logger) Infof(format string, args ...any) {
	l.out.Helper()
	l.out.Info(fmt.Sprintf(format, args...))
}

// Infof logs at info log level in the manner of fmt.Printf.
func Infof(ctx context.Context, format string, args ...any) {
	FromContext(ctx).Infof(format, args...)
}

// Warningf logs at warning log level in the manner of fmt.Printf.
func (l *Logger) Warningf(format string, args ...any) {
	l.out.Helper()
	l.out.Warn(fmt.Sprintf(format, args...))
}

// Warningf logs at warning log level in the manner of fmt.Printf.
func Warningf(ctx context.Context, format string, args ...any) {
	FromContext(ctx).Warningf(format, args...)
}

// Errorf logs at error log level in the manner of fmt.Printf.
func (l *Logger) Errorf(format string, args ...any) {
	l.out.Helper()
	l.out.Error(fmt.Sprintf(format, args...))
}

// Errorf logs at error log level in the manner of fmt.Printf.
func Errorf(ctx context.Context, format string, args ...any) {
	FromContext(ctx).Errorf(format, args...)
}

// V checks at verbose log level.
// Any level > 0 is enabled when the logger is at debug level.
func (l *Logger) V(level int) bool {
	if level <= 0 {
		return true
	}
	return l.base.GetLevel() <= log.DebugLevel
}

// V checks at verbose log level on the default logger.
func V(level int) bool {
	return New(nil).V(level)
}
