// SPDX-FileCopyrightText: 2026 The quicfile authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package fserve

import (
	"fmt"
	"io"
	"os"
)

// ChunkSize is the read/write granularity for response bodies.
const ChunkSize = 100 * 1024

// notFoundLine is the whole not-found response. Successful responses carry no
// status line at all, the raw file bytes plus a clean stream finish are the
// entire "OK".
var notFoundLine = []byte(requestVersion + " 404 NotFound\r\n")

// respond streams the file at path to the stream's write side and finishes it.
//
// An unopenable path is an expected condition, answered with the not-found
// line; notFound reports it so the caller can count it. A read or write
// failure mid-transfer aborts the rest, leaving the stream unfinished for the
// caller to reset. sent counts body bytes only.
func respond(stream io.WriteCloser, path string) (sent int64, notFound bool, err error) {
	file, err := os.Open(path)
	if err != nil {
		if _, err := stream.Write(notFoundLine); err != nil {
			return 0, true, fmt.Errorf("writing not-found response: %w", err)
		}
		return 0, true, stream.Close()
	}
	defer file.Close()

	if sent, err = copyChunks(stream, file); err != nil {
		return sent, false, err
	}
	return sent, false, stream.Close()
}

// copyChunks copies r to w in ChunkSize chunks, preserving byte order and
// total length exactly.
func copyChunks(w io.Writer, r io.Reader) (copied int64, err error) {
	buf := make([]byte, ChunkSize)
	for {
		n, readErr := r.Read(buf)
		if n > 0 {
			if _, writeErr := w.Write(buf[:n]); writeErr != nil {
				return copied, fmt.Errorf("writing response chunk: %w", writeErr)
			}
			copied += int64(n)
		}
		if readErr == io.EOF {
			return copied, nil
		}
		if readErr != nil {
			return copied, fmt.Errorf("reading response chunk: %w", readErr)
		}
	}
}
