// Copyright 2023 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package input validates and reads entrypoints given on the command line.
package input

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"go.chromium.org/infra/build/nofile/o11y/clog"
	"go.chromium.org/infra/build/nofile/scandeps"
)

// ErrNotEnoughArgs is returned when no entrypoint is given.
var ErrNotEnoughArgs = errors.New("not enough arguments: need at least one *.c entrypoint")

// InvalidExtError is returned when an entrypoint is not a *.c file.
type InvalidExtError struct {
	Path string
}

func (e InvalidExtError) Error() string {
	return fmt.Sprintf("entrypoint %s does not have %s extension", e.Path, scandeps.SourceExt)
}

// ReadError is returned when an entrypoint can't be read.
type ReadError struct {
	Path string
	Err  error
}

func (e ReadError) Error() string {
	return fmt.Sprintf("failed to read entrypoint %s: %v", e.Path, e.Err)
}

func (e ReadError) Unwrap() error {
	return e.Err
}

// FileSystem provides access to entrypoint files.
type FileSystem interface {
	ReadFile(ctx context.Context, fname string) ([]byte, error)
}

// Read validates args and reads entrypoints in order.
// It stops at the first invalid arg.
func Read(ctx context.Context, fsys FileSystem, args []string) ([]scandeps.Entrypoint, error) {
	if len(args) == 0 {
		return nil, ErrNotEnoughArgs
	}
	entrypoints := make([]scandeps.Entrypoint, 0, len(args))
	for _, arg := range args {
		fname := filepath.ToSlash(arg)
		if !scandeps.ParsePath(fname).HasSourceExt() {
			return nil, InvalidExtError{Path: arg}
		}
		buf, err := fsys.ReadFile(ctx, fname)
		if err != nil {
			return nil, ReadError{Path: arg, Err: err}
		}
		entrypoints = append(entrypoints, scandeps.Entrypoint{
			Path:     fname,
			Contents: string(buf),
		})
	}
	clog.Infof(ctx, "%d entrypoints", len(entrypoints))
	return entrypoints, nil
}

// IsInputError reports whether err is an error of Read.
func IsInputError(err error) bool {
	var errExt InvalidExtError
	var errRead ReadError
	return errors.Is(err, ErrNotEnoughArgs) || errors.As(err, &errExt) || errors.As(err, &errRead)
}
