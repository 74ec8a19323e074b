// SPDX-FileCopyrightText: 2026 The quicfile authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package internal

import (
	"crypto/tls"
	"crypto/x509"
	"io"
	"net"
	"time"

	"github.com/quic-go/quic-go"
)

// ALPN is the application protocol token announced during the TLS handshake.
// The protocol is a minimal HTTP/0.9-style exchange, but it reuses an h3 draft
// token so off-the-shelf QUIC tooling groups the traffic correctly.
const ALPN = "h3-29"

// GenerateListenerTLSConfig builds the server-side TLS config around a
// provisioned certificate. If keyLog is non-nil, TLS session secrets are
// written to it for handshake debugging.
func GenerateListenerTLSConfig(cert tls.Certificate, keyLog io.Writer) *tls.Config {
	return &tls.Config{
		Certificates: []tls.Certificate{cert},
		NextProtos:   []string{ALPN},
		MinVersion:   tls.VersionTLS13,
		KeyLogWriter: keyLog,
	}
}

// GenerateDialerTLSConfig builds the client-side TLS config. The server's
// identity is checked against serverName using the system roots plus any
// additional roots (usually the cached self-signed server certificate).
// With insecure set, verification is skipped entirely.
func GenerateDialerTLSConfig(serverName string, roots *x509.CertPool, insecure bool) *tls.Config {
	return &tls.Config{
		ServerName:         serverName,
		RootCAs:            roots,
		InsecureSkipVerify: insecure,
		NextProtos:         []string{ALPN},
		MinVersion:         tls.VersionTLS13,
	}
}

// GenerateQUICConfig builds the transport configuration shared by listener and
// dialer. Unidirectional streams are disabled, every request/response exchange
// uses exactly one bidirectional stream. With statelessRetry set, the listener
// requires new peers to prove address ownership before it commits state.
func GenerateQUICConfig(idleTimeout time.Duration, statelessRetry bool) *quic.Config {
	config := &quic.Config{
		KeepAlivePeriod:       1 * time.Second,
		MaxIdleTimeout:        idleTimeout,
		EnableDatagrams:       false,
		MaxIncomingStreams:    2048,
		MaxIncomingUniStreams: -1,
	}

	if statelessRetry {
		config.RequireAddressValidation = func(net.Addr) bool { return true }
	}

	return config
}
