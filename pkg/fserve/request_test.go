// SPDX-FileCopyrightText: 2026 The quicfile authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package fserve

import (
	"bytes"
	"errors"
	"testing"
)

func TestParseRequest(t *testing.T) {
	tests := []struct {
		raw   []byte
		valid bool
		path  string
	}{
		{[]byte("GET /a.txt\r\n"), true, "/a.txt"},
		{[]byte("GET /a.txt HTTP/3\r\n"), true, "/a.txt"},
		{[]byte("GET /sub/dir/file HTTP/3\r\n"), true, "/sub/dir/file"},
		{[]byte("GET / extra tokens here\r\n"), true, "/"},
		{[]byte("GET \r\n"), true, ""},
		{[]byte("GET /a.txt"), false, ""},
		{[]byte("GET /a.txt\n"), false, ""},
		{[]byte("GET /a.txt\r"), false, ""},
		{[]byte("PUT /a.txt\r\n"), false, ""},
		{[]byte("get /a.txt\r\n"), false, ""},
		{[]byte("GET"), false, ""},
		{[]byte(""), false, ""},
		{[]byte("\r\n"), false, ""},
		{[]byte("GET /\xff\xfe\r\n"), false, ""},
	}

	for _, test := range tests {
		request, err := ParseRequest(test.raw)
		if (err == nil) != test.valid {
			t.Fatalf("%q: error state was not expected; valid := %t, got := %v", test.raw, test.valid, err)
		} else if !test.valid {
			if !errors.Is(err, ErrMalformedRequest) {
				t.Fatalf("%q: expected ErrMalformedRequest, got %v", test.raw, err)
			}
			continue
		} else if request.Path != test.path {
			t.Fatalf("%q: path does not match, expected %q and got %q", test.raw, test.path, request.Path)
		}
	}
}

func TestRequestMarshalLine(t *testing.T) {
	request := Request{Path: "/some/file.bin"}

	line := request.MarshalLine()
	if expected := []byte("GET /some/file.bin HTTP/3\r\n"); !bytes.Equal(line, expected) {
		t.Fatalf("line does not match, expected %q and got %q", expected, line)
	}

	parsed, err := ParseRequest(line)
	if err != nil {
		t.Fatal(err)
	}
	if parsed.Path != request.Path {
		t.Fatalf("round trip changed the path: %q != %q", parsed.Path, request.Path)
	}
}
