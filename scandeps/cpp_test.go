// Copyright 2023 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package scandeps

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestLocalIncludes(t *testing.T) {
	ctx := context.Background()
	for _, tc := range []struct {
		name string
		buf  string
		want []string
	}{
		{
			name: "helloworld",
			buf: `
#include <stdio.h>

int main(int arg, char *argv[]) {
  printf("hello, world\n");
}
`,
			want: nil,
		},
		{
			name: "local",
			buf: `
#include <stdint.h>
#include "stdbool_compat.h"

#include "emulate.h"
#include "utils/bitops.h"
#include "../common/types.h"

int main(void) { return 0; }
`,
			want: []string{
				"emulate.h",
				"utils/bitops.h",
				"../common/types.h",
			},
		},
		{
			name: "crlf",
			buf:  "#include \"a.h\"\r\n#include \"b.c\"\r\n",
			want: []string{"a.h", "b.c"},
		},
		{
			name: "trailing-comment",
			buf: `#include "a.h" // for a()
#include	"tab.h"
#include"nospace.h"
`,
			want: []string{"a.h", "tab.h", "nospace.h"},
		},
		{
			name: "indented-directive-ignored",
			buf: `
  #include "indented.h"
# include "spaced.h"
#include "top.h"
`,
			want: []string{"top.h"},
		},
		{
			name: "not-include",
			buf: `
#include_next "next.h"
#includes "s.h"
#define FOO_H "foo.h"
#include
#include ""
`,
			want: nil,
		},
		{
			name: "macro-or-unquoted",
			buf: `#include FOO_H
#include data.inc
`,
			want: []string{"FOO_H", "data.inc"},
		},
		{
			name: "unclosed",
			buf:  `#include "unclosed.h`,
			want: []string{"unclosed.h"},
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			got := LocalIncludes(ctx, tc.name, []byte(tc.buf))
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Errorf("LocalIncludes(%q) diff -want +got:\n%s", tc.buf, diff)
			}
		})
	}
}
