// SPDX-FileCopyrightText: 2026 The quicfile authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package internal

import "github.com/quic-go/quic-go"

const (
	// ConnectionError designates errors in data transmission
	ConnectionError quic.ApplicationErrorCode = 3
	// ApplicationShutdown is sent when the server is shut down and terminates its connections
	ApplicationShutdown quic.ApplicationErrorCode = 5
	// TransferComplete is sent by the client once it has read the full response
	TransferComplete quic.ApplicationErrorCode = 0

	// MalformedRequestError resets a stream whose request fails the grammar
	MalformedRequestError quic.StreamErrorCode = 1
	// IllegalPathError resets a stream whose request path is not absolute or tries to traverse
	IllegalPathError quic.StreamErrorCode = 2
	// StreamTransmissionError designates read/write failures mid-transfer
	StreamTransmissionError quic.StreamErrorCode = 3
	// RequestTimeoutError resets a stream whose peer never half-closed its write side
	RequestTimeoutError quic.StreamErrorCode = 4
)
