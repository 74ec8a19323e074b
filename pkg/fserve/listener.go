// SPDX-FileCopyrightText: 2026 The quicfile authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package fserve

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/quic-go/quic-go"
	log "github.com/sirupsen/logrus"

	"github.com/quicfile/quicfile-go/pkg/fserve/internal"
)

// DefaultRequestTimeout bounds how long a stream handler waits for the peer to
// finish sending its request.
const DefaultRequestTimeout = 10 * time.Second

// ServerConfig carries everything a Listener needs to start serving.
type ServerConfig struct {
	// ListenAddress is the UDP address to bind, e.g. "127.0.0.1:4433".
	ListenAddress string
	// Root is the directory files are served from. It must exist.
	Root string
	// Certificate is the provisioned TLS certificate/key pair.
	Certificate tls.Certificate
	// KeyLog, if non-nil, receives TLS session secrets for debugging.
	KeyLog io.Writer
	// StatelessRetry makes new peers prove address ownership before the
	// server commits per-connection state.
	StatelessRetry bool
	// IdleTimeout is the transport-level idle timeout. Zero means the
	// quic-go default.
	IdleTimeout time.Duration
	// RequestTimeout is the per-stream read deadline for draining a request.
	// Zero means DefaultRequestTimeout, negative disables the deadline.
	RequestTimeout time.Duration
}

// Listener accepts connections and spawns a connection handler per peer.
type Listener struct {
	config   ServerConfig
	root     string
	listener *quic.Listener
	metrics  *Metrics

	// live connections, so Close can tell every peer the server is going away
	connectionsMutex sync.Mutex
	connections      map[quic.Connection]struct{}
}

// NewListener validates the configuration, in particular that the served root
// exists. The process must not come up with a dangling root.
func NewListener(config ServerConfig) (*Listener, error) {
	root, err := filepath.Abs(config.Root)
	if err != nil {
		return nil, fmt.Errorf("resolving root %q: %w", config.Root, err)
	}

	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("served root %q: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("served root %q is not a directory", root)
	}

	if config.RequestTimeout == 0 {
		config.RequestTimeout = DefaultRequestTimeout
	}

	return &Listener{
		config:      config,
		root:        root,
		metrics:     &Metrics{},
		connections: make(map[quic.Connection]struct{}),
	}, nil
}

// Start binds the QUIC listener and launches the accept loop.
func (listener *Listener) Start() error {
	log.WithField("address", listener.config.ListenAddress).Info("Starting listener")

	lst, err := quic.ListenAddr(
		listener.config.ListenAddress,
		internal.GenerateListenerTLSConfig(listener.config.Certificate, listener.config.KeyLog),
		internal.GenerateQUICConfig(listener.config.IdleTimeout, listener.config.StatelessRetry))
	if err != nil {
		log.WithError(err).Error("Error creating listener")
		return err
	}

	listener.listener = lst
	go listener.handle()

	return nil
}

// Addr returns the bound address, handy when listening on port 0.
func (listener *Listener) Addr() net.Addr {
	return listener.listener.Addr()
}

// Metrics exposes the listener's counters, e.g. for a status endpoint.
func (listener *Listener) Metrics() *Metrics {
	return listener.metrics
}

// Close stops accepting and tells every live peer the server is going away.
func (listener *Listener) Close() error {
	log.WithField("address", listener.config.ListenAddress).Info("Shutting ourselves down")
	err := listener.listener.Close()

	listener.connectionsMutex.Lock()
	defer listener.connectionsMutex.Unlock()
	for connection := range listener.connections {
		_ = connection.CloseWithError(internal.ApplicationShutdown, "server shutting down")
	}
	clear(listener.connections)

	return err
}

func (listener *Listener) trackConnection(connection quic.Connection) {
	listener.connectionsMutex.Lock()
	defer listener.connectionsMutex.Unlock()
	listener.connections[connection] = struct{}{}
}

func (listener *Listener) untrackConnection(connection quic.Connection) {
	listener.connectionsMutex.Lock()
	defer listener.connectionsMutex.Unlock()
	delete(listener.connections, connection)
}

func (listener *Listener) handle() {
	log.WithFields(log.Fields{
		"address": listener.Addr(),
		"root":    listener.root,
	}).Info("Listening for connections")

	for {
		connection, err := listener.listener.Accept(context.Background())
		if err != nil {
			if errors.Is(err, quic.ErrServerClosed) {
				log.WithField("address", listener.config.ListenAddress).Info("Shutting this place down")
				return
			}

			log.WithFields(log.Fields{
				"address": listener.config.ListenAddress,
				"error":   err,
			}).Error("Unknown error accepting connection")
			continue
		}

		log.WithFields(log.Fields{
			"address": listener.config.ListenAddress,
			"peer":    connection.RemoteAddr(),
		}).Info("Accepted new connection")
		listener.metrics.connections.Add(1)

		listener.trackConnection(connection)

		handler := &connectionHandler{
			root:           listener.root,
			connection:     connection,
			requestTimeout: listener.config.RequestTimeout,
			metrics:        listener.metrics,
		}
		go func() {
			handler.handle()
			listener.untrackConnection(connection)
		}()
	}
}
