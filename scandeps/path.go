// Copyright 2023 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package scandeps

import (
	"fmt"
	"strings"
)

const (
	// SourceExt is the extension of C source files.
	SourceExt = ".c"
	// HeaderExt is the extension of C header files.
	HeaderExt = ".h"
)

// Path is a slash separated path split into its directory and file name.
// Dir is empty or ends with '/', and File contains no '/'.
type Path struct {
	Dir  string
	File string
}

// ParsePath splits raw at its last '/'.
// A directory of exactly "./" is dropped, so "./main.c" becomes "main.c".
func ParsePath(raw string) Path {
	var p Path
	i := strings.LastIndexByte(raw, '/')
	if i < 0 {
		p.File = raw
		return p
	}
	p.Dir, p.File = raw[:i+1], raw[i+1:]
	if p.Dir == "./" {
		p.Dir = ""
	}
	return p
}

// Compose resolves rel against the directory of base.
// base's file name is discarded.
func Compose(base, rel Path) Path {
	return Path{
		Dir:  base.Dir + rel.Dir,
		File: rel.File,
	}
}

// String returns the path, i.e. Dir + File.
func (p Path) String() string {
	return p.Dir + p.File
}

// HasSourceExt reports whether p names a C source file.
func (p Path) HasSourceExt() bool {
	return strings.HasSuffix(p.File, SourceExt)
}

// HasHeaderExt reports whether p names a C header file.
func (p Path) HasHeaderExt() bool {
	return strings.HasSuffix(p.File, HeaderExt)
}

// WithExt returns p with its extension replaced by ext,
// which must be SourceExt or HeaderExt.
// It panics if p is not a C source or header file.
func (p Path) WithExt(ext string) Path {
	if ext != SourceExt && ext != HeaderExt {
		panic(fmt.Sprintf("scandeps: bad extension %q for %s", ext, p))
	}
	if !hasCExt(p.File) {
		panic(fmt.Sprintf("scandeps: %q has neither %s nor %s extension", p, SourceExt, HeaderExt))
	}
	p.File = p.File[:len(p.File)-len(ext)] + ext
	return p
}

func hasCExt(name string) bool {
	return strings.HasSuffix(name, SourceExt) || strings.HasSuffix(name, HeaderExt)
}
