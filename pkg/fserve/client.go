// SPDX-FileCopyrightText: 2026 The quicfile authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package fserve

import (
	"context"
	"crypto/x509"
	"fmt"
	"io"
	"net"
	"net/url"
	"strconv"
	"time"

	"github.com/quic-go/quic-go"
	log "github.com/sirupsen/logrus"

	"github.com/quicfile/quicfile-go/pkg/fserve/internal"
)

// DefaultPort is used when the target URL carries no explicit port.
const DefaultPort = 4433

// ClientConfig steers how Fetch verifies the server's identity.
type ClientConfig struct {
	// HostOverride, if set, replaces the URL's host name for certificate
	// verification.
	HostOverride string
	// Roots are additional trusted certificates, usually the server's cached
	// self-signed one. Nil means system roots only.
	Roots *x509.CertPool
	// Insecure skips server verification entirely.
	Insecure bool
	// IdleTimeout is the transport-level idle timeout. Zero means the
	// quic-go default.
	IdleTimeout time.Duration
}

// TransferStats reports one completed exchange.
type TransferStats struct {
	// ConnectDuration spans connection start to the established connection.
	ConnectDuration time.Duration
	// RequestDuration spans connection start to the request's half-close.
	RequestDuration time.Duration
	// ResponseDuration spans the sent request to the last response byte.
	ResponseDuration time.Duration
	// Bytes is the total response size.
	Bytes int64
}

// Throughput returns the response transfer rate in MiB/s.
func (stats TransferStats) Throughput() float64 {
	secs := stats.ResponseDuration.Seconds()
	if secs <= 0 {
		return 0
	}
	return float64(stats.Bytes) / (secs * 1024 * 1024)
}

// Fetch performs one complete exchange: dial the target, open one stream,
// send one request for the URL's path, copy the full response into w, and
// close the connection. It blocks until the transport has shut down, giving
// the peer a fair chance to observe the close.
func Fetch(ctx context.Context, target *url.URL, config ClientConfig, w io.Writer) (TransferStats, error) {
	remote, err := remoteAddress(target)
	if err != nil {
		return TransferStats{}, err
	}

	serverName := config.HostOverride
	if serverName == "" {
		serverName = target.Hostname()
	}
	if serverName == "" {
		return TransferStats{}, fmt.Errorf("no host name to verify against in %q", target)
	}

	log.WithFields(log.Fields{
		"host":   serverName,
		"remote": remote,
	}).Debug("Connecting")

	start := time.Now()
	connection, err := quic.DialAddr(ctx, remote,
		internal.GenerateDialerTLSConfig(serverName, config.Roots, config.Insecure),
		internal.GenerateQUICConfig(config.IdleTimeout, false))
	if err != nil {
		return TransferStats{}, fmt.Errorf("connecting to %s: %w", remote, err)
	}

	stats := TransferStats{ConnectDuration: time.Since(start)}

	stream, err := connection.OpenStreamSync(ctx)
	if err != nil {
		_ = connection.CloseWithError(internal.ConnectionError, "failed to open stream")
		return stats, fmt.Errorf("opening stream: %w", err)
	}

	request := Request{Path: target.Path}
	if _, err := stream.Write(request.MarshalLine()); err != nil {
		_ = connection.CloseWithError(internal.ConnectionError, "failed to send request")
		return stats, fmt.Errorf("sending request: %w", err)
	}
	// half-close our write side, the request ends here
	if err := stream.Close(); err != nil {
		_ = connection.CloseWithError(internal.ConnectionError, "failed to finish request")
		return stats, fmt.Errorf("finishing request: %w", err)
	}

	responseStart := time.Now()
	stats.RequestDuration = responseStart.Sub(start)

	stats.Bytes, err = io.Copy(w, stream)
	if err != nil {
		_ = connection.CloseWithError(internal.ConnectionError, "failed to read response")
		return stats, fmt.Errorf("reading response: %w", err)
	}
	stats.ResponseDuration = time.Since(responseStart)

	if err := connection.CloseWithError(internal.TransferComplete, "done"); err != nil {
		return stats, err
	}
	<-connection.Context().Done()

	return stats, nil
}

// remoteAddress resolves the URL's host and port to a dialable address.
func remoteAddress(target *url.URL) (string, error) {
	host := target.Hostname()
	if host == "" {
		return "", fmt.Errorf("target %q has no host", target)
	}

	port := DefaultPort
	if p := target.Port(); p != "" {
		parsed, err := strconv.Atoi(p)
		if err != nil {
			return "", fmt.Errorf("invalid port in %q: %w", target, err)
		}
		port = parsed
	}

	addr, err := net.ResolveUDPAddr("udp", net.JoinHostPort(host, strconv.Itoa(port)))
	if err != nil {
		return "", fmt.Errorf("resolving %s: %w", host, err)
	}
	return addr.String(), nil
}
