// SPDX-FileCopyrightText: 2026 The quicfile authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package fserve

import (
	"errors"
	"path/filepath"
	"testing"
)

func TestResolvePath(t *testing.T) {
	root := filepath.FromSlash("/srv")

	tests := []struct {
		requestPath string
		valid       bool
		resolved    string
	}{
		{"/a.txt", true, "/srv/a.txt"},
		{"/sub/dir/file", true, "/srv/sub/dir/file"},
		{"/", true, "/srv"},
		{"//double//slash", true, "/srv/double/slash"},
		{"/name.with.dots", true, "/srv/name.with.dots"},
		{"", false, ""},
		{"a.txt", false, ""},
		{"../etc/passwd", false, ""},
		{"/../etc/passwd", false, ""},
		{"/sub/../../etc/passwd", false, ""},
		{"/deeply/nested/../x", false, ""},
		{"/./a.txt", false, ""},
		{"/sub/./file", false, ""},
		{"/c:\\windows\\system32", false, ""},
		{"/back\\slash", false, ""},
	}

	for _, test := range tests {
		resolved, err := ResolvePath(root, test.requestPath)
		if (err == nil) != test.valid {
			t.Fatalf("%q: error state was not expected; valid := %t, got := %v", test.requestPath, test.valid, err)
		} else if !test.valid {
			if !errors.Is(err, ErrIllegalPath) {
				t.Fatalf("%q: expected ErrIllegalPath, got %v", test.requestPath, err)
			}
			continue
		} else if expected := filepath.FromSlash(test.resolved); resolved != expected {
			t.Fatalf("%q: resolved path does not match, expected %q and got %q", test.requestPath, expected, resolved)
		}
	}
}
