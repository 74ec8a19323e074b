// SPDX-FileCopyrightText: 2026 The quicfile authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package fserve

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

// closeBuffer is a stream stand-in recording whether the write side was
// finished.
type closeBuffer struct {
	bytes.Buffer
	closed bool
}

func (buffer *closeBuffer) Close() error {
	buffer.closed = true
	return nil
}

func patternBytes(size int) []byte {
	data := make([]byte, size)
	for i := range data {
		data[i] = byte(i % 251)
	}
	return data
}

func TestRespondRoundTrip(t *testing.T) {
	sizes := []int{0, 1, ChunkSize, 3*ChunkSize + 1}

	dir := t.TempDir()
	for _, size := range sizes {
		path := filepath.Join(dir, "file")
		content := patternBytes(size)
		if err := os.WriteFile(path, content, 0644); err != nil {
			t.Fatal(err)
		}

		var stream closeBuffer
		sent, notFound, err := respond(&stream, path)
		if err != nil {
			t.Fatalf("size %d: %v", size, err)
		}
		if notFound {
			t.Fatalf("size %d: unexpected not-found", size)
		}
		if sent != int64(size) {
			t.Fatalf("size %d: sent %d bytes", size, sent)
		}
		if !bytes.Equal(stream.Bytes(), content) {
			t.Fatalf("size %d: response differs from file content", size)
		}
		if !stream.closed {
			t.Fatalf("size %d: stream was not finished", size)
		}
	}
}

func TestRespondNotFound(t *testing.T) {
	var stream closeBuffer
	sent, notFound, err := respond(&stream, filepath.Join(t.TempDir(), "missing"))
	if err != nil {
		t.Fatal(err)
	}
	if !notFound {
		t.Fatal("expected not-found")
	}
	if sent != 0 {
		t.Fatalf("not-found response counted %d body bytes", sent)
	}
	if !bytes.Equal(stream.Bytes(), []byte("HTTP/3 404 NotFound\r\n")) {
		t.Fatalf("unexpected not-found response: %q", stream.Bytes())
	}
	if !stream.closed {
		t.Fatal("stream was not finished")
	}
}
