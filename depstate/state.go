// Copyright 2023 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package depstate persists dependency graphs.
package depstate

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/klauspost/compress/zstd"

	"go.chromium.org/infra/build/nofile/o11y/clog"
	"go.chromium.org/infra/build/nofile/scandeps"
)

// Version is the version of the state format.
const Version = 1

// State is a snapshot of a dependency graph.
type State struct {
	Version     int              `json:"version"`
	Entrypoints []scandeps.Entry `json:"entrypoints"`
}

// FromGraph returns the state of graph without modifying it.
func FromGraph(graph *scandeps.Graph) *State {
	return &State{
		Version:     Version,
		Entrypoints: graph.Entries(),
	}
}

// Graph returns a frozen graph of the state.
func (s *State) Graph() *scandeps.Graph {
	return scandeps.NewGraphFromEntries(s.Entrypoints)
}

// FileSystem provides access to the state file.
type FileSystem interface {
	ReadFile(ctx context.Context, fname string) ([]byte, error)
}

func loadFile(ctx context.Context, fsys FileSystem, fname string) ([]byte, error) {
	b, err := fsys.ReadFile(ctx, fname)
	if err != nil {
		return nil, err
	}
	r, err := zstd.NewReader(bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return io.ReadAll(r)
}

// Load loads a state from fname on fsys.
// Every entrypoint in the state must be a *.c file.
func Load(ctx context.Context, fsys FileSystem, fname string) (*State, error) {
	b, err := loadFile(ctx, fsys, fname)
	if err != nil {
		return nil, err
	}
	state := &State{}
	err = json.Unmarshal(b, state)
	if err != nil {
		return nil, fmt.Errorf("failed to parse state %s: %w", fname, err)
	}
	if state.Version != Version {
		return nil, fmt.Errorf("unsupported state version %d in %s; want %d", state.Version, fname, Version)
	}
	for _, e := range state.Entrypoints {
		p := scandeps.ParsePath(e.Entrypoint)
		if !p.HasSourceExt() || p.File == scandeps.SourceExt {
			return nil, fmt.Errorf("bad entrypoint %q in state %s: not a %s file", e.Entrypoint, fname, scandeps.SourceExt)
		}
	}
	clog.Infof(ctx, "loaded state %s: %d entrypoints", fname, len(state.Entrypoints))
	return state, nil
}

func saveFile(ctx context.Context, fname string, data []byte) error {
	// save old state in *.0
	ofname := fname + ".0"
	if err := os.Remove(ofname); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	if err := os.Rename(fname, ofname); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}

	f, err := os.Create(fname)
	if err != nil {
		return err
	}
	w, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedBestCompression))
	if err != nil {
		f.Close()
		return err
	}
	if _, err := w.Write(data); err != nil {
		w.Close()
		f.Close()
		return err
	}
	err = w.Close()
	if err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Save persists state in fname.
// The previous file, if any, is kept as fname + ".0".
func Save(ctx context.Context, fname string, state *State) error {
	b, err := json.Marshal(state)
	if err != nil {
		return err
	}
	err = saveFile(ctx, fname, b)
	if err != nil {
		return err
	}
	clog.Infof(ctx, "saved state %s: %d entrypoints", fname, len(state.Entrypoints))
	return nil
}
