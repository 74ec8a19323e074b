// SPDX-FileCopyrightText: 2026 The quicfile authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package fserve

import (
	"bytes"
	"errors"
	"fmt"
	"unicode/utf8"
)

// MaxRequestSize caps the bytes read from a stream before the peer's
// half-close. Anything larger cannot be a request line.
const MaxRequestSize = 64 * 1024

// requestVersion is the protocol token the client appends to its request line
// and the prefix of the not-found status line. The server discards it on parse.
const requestVersion = "HTTP/3"

var (
	ErrMalformedRequest = errors.New("request does not match the GET grammar")
	ErrIllegalPath      = errors.New("request path is not absolute or contains illegal components")
)

var (
	requestPrefix     = []byte("GET ")
	requestTerminator = []byte("\r\n")
)

// Request is one parsed request line. Its only payload is the path to serve.
type Request struct {
	Path string
}

// ParseRequest validates raw against the request grammar:
// "GET " + path + optional " <token>" + CRLF. The optional trailing token,
// usually a protocol version, is discarded. Everything else is rejected with
// ErrMalformedRequest.
func ParseRequest(raw []byte) (Request, error) {
	if len(raw) < len(requestPrefix) || !bytes.HasPrefix(raw, requestPrefix) {
		return Request{}, fmt.Errorf("%w: missing GET prefix", ErrMalformedRequest)
	}

	body := raw[len(requestPrefix):]
	if len(body) < len(requestTerminator) || !bytes.HasSuffix(body, requestTerminator) {
		return Request{}, fmt.Errorf("%w: missing CRLF terminator", ErrMalformedRequest)
	}
	body = body[:len(body)-len(requestTerminator)]

	// everything after the first space is a version token we don't care about
	if end := bytes.IndexByte(body, ' '); end >= 0 {
		body = body[:end]
	}

	if !utf8.Valid(body) {
		return Request{}, fmt.Errorf("%w: path is not valid UTF-8", ErrMalformedRequest)
	}

	return Request{Path: string(body)}, nil
}

// MarshalLine renders the request the way the client sends it on the wire,
// version token included.
func (request Request) MarshalLine() []byte {
	return []byte(fmt.Sprintf("GET %s %s\r\n", request.Path, requestVersion))
}
