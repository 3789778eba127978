// Copyright 2023 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

//go:build !windows

package ui

// Init is a no-op; terminals render SGR sequences as is.
func Init() {}

// Restore is a no-op.
func Restore() {}
