// Copyright 2023 The Chromium Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package makeutil provides utilities for make.
package makeutil

import (
	"bytes"
	"context"
	"errors"
	"io/fs"
	"slices"
	"sort"
	"strings"

	"go.chromium.org/infra/build/nofile/o11y/clog"
)

// FileSystem provides access to files.
type FileSystem interface {
	ReadFile(ctx context.Context, fname string) ([]byte, error)
}

// ParseSourceVarsFile parses the Makefile in fname on fsys.
// It returns nil map without error if fname doesn't exist.
func ParseSourceVarsFile(ctx context.Context, fsys FileSystem, fname string) (map[string][]string, error) {
	if fname == "" {
		return nil, nil
	}
	b, err := fsys.ReadFile(ctx, fname)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	vars := ParseSourceVars(b)
	if clog.V(1) {
		clog.Infof(ctx, "source vars %s => %q", fname, vars)
	}
	return vars, nil
}

// ParseSourceVars parses Makefile contents and returns the dependency
// lists of *_SOURCE variables, keyed by variable name.
func ParseSourceVars(b []byte) map[string][]string {
	// <NAME>_SOURCE = <input> ...
	// <input> is space separated
	// '\'+newline is space
	// '\'+space is escaped space (not separator)
	vars := make(map[string][]string)
	for len(b) > 0 {
		var line []byte
		line, b = nextLine(b)
		i := bytes.IndexByte(line, '=')
		if i < 0 {
			continue
		}
		name := string(bytes.TrimSpace(line[:i]))
		if !strings.HasSuffix(name, SourceVarSuffix) || strings.ContainsAny(name, " \t:") {
			continue
		}
		inputs := []string{}
		var token string
		for s := line[i+1:]; len(s) > 0; {
			token, s = nextToken(s)
			if token != "" {
				inputs = append(inputs, token)
			}
		}
		vars[name] = inputs
	}
	return vars
}

// ChangedSourceVars returns the sorted names of variables that differ
// between prev and cur, including variables present in only one of them.
func ChangedSourceVars(prev, cur map[string][]string) []string {
	var changed []string
	for name, deps := range cur {
		pdeps, ok := prev[name]
		if !ok || !slices.Equal(pdeps, deps) {
			changed = append(changed, name)
		}
	}
	for name := range prev {
		if _, ok := cur[name]; !ok {
			changed = append(changed, name)
		}
	}
	sort.Strings(changed)
	return changed
}

// nextLine returns the logical line at the head of s,
// joining lines continued by '\'+newline.
func nextLine(s []byte) ([]byte, []byte) {
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '\\':
			if i+2 < len(s) && s[i+1] == '\r' && s[i+2] == '\n' {
				i += 2
				continue
			}
			i++
		case '\n':
			return s[:i], s[i+1:]
		}
	}
	return s, nil
}

func nextToken(s []byte) (string, []byte) {
	var sb strings.Builder
	// skip spaces
skipSpaces:
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) && s[i+1] == '\n' {
			i++
			continue
		}
		if s[i] == '\\' && i+2 < len(s) && s[i+1] == '\r' && s[i+2] == '\n' {
			i += 2
			continue
		}
		switch s[i] {
		case ' ', '\t', '\n', '\r':
			continue
		default:
			s = s[i:]
			break skipSpaces
		}
	}
	// extract next space not escaped
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) {
			i++
			switch s[i] {
			case ' ':
				sb.WriteByte(s[i])
			case '\r', '\n':
				// '\'+newline is space
				return sb.String(), s[i+1:]
			default:
				sb.WriteByte('\\')
				sb.WriteByte(s[i])
			}
			continue
		}
		switch s[i] {
		case ' ', '\t', '\n', '\r':
			return sb.String(), s[i+1:]
		}
		sb.WriteByte(s[i])
	}
	return sb.String(), nil
}
