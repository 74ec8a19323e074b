// SPDX-FileCopyrightText: 2026 The quicfile authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

/*
Package fserve implements a minimal file-serving request/response protocol on
top of QUIC, together with the matching client.

Why QUIC?
The protocol needs many independent request/response exchanges over one
connection, each with its own ordering and its own failure domain. QUIC's
stream multiplexing gives us exactly that without tracking any state
ourselves: a single stream always carries exactly one request and its one
response, and is closed after the transfer completes.

Protocol
The server waits for incoming connections and spawns a handler goroutine per
connection; each handler accepts bidirectional streams in a loop and spawns a
stream handler per stream. Unidirectional streams are disabled in the
transport configuration.

A request is a single ASCII line, "GET " followed by an absolute path, an
optional version token, and CRLF. The client half-closes its write side after
the line; the server reads to that half-close, capped at 64 KiB and bounded
by a per-stream read deadline.

The path is resolved against the served root. Components must be plain names:
any "." or ".." reference is rejected outright rather than normalized, so a
resolved path can never escape the root. A rejected request resets only its
own stream with a dedicated stream error code; sibling streams and the
connection keep running.

A successful response is the raw file bytes, streamed in 100 KiB chunks and
terminated by finishing the stream. There is no status line, no headers, and
no length prefix. The only status the protocol knows is the not-found line
"HTTP/3 404 NotFound" followed by CRLF, sent when the resolved path does not
open. Clients distinguish an empty file from a missing one solely by the
presence of that line.
*/
package fserve
