// SPDX-FileCopyrightText: 2026 The quicfile authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package fserve

import (
	"context"
	"errors"
	"io"
	"net"
	"time"

	"github.com/quic-go/quic-go"
	log "github.com/sirupsen/logrus"

	"github.com/quicfile/quicfile-go/pkg/fserve/internal"
)

// connectionHandler serves every stream of one accepted connection. Handlers
// share nothing but the immutable served root and the listener's counters.
type connectionHandler struct {
	root           string
	connection     quic.Connection
	requestTimeout time.Duration
	metrics        *Metrics
}

// handle accepts streams until the transport reports the connection gone.
// Each stream is one request/response exchange, served concurrently.
func (handler *connectionHandler) handle() {
	for {
		stream, err := handler.connection.AcceptStream(context.Background())
		if err != nil {
			var netErr net.Error
			var appErr *quic.ApplicationError

			switch {
			case errors.As(err, &netErr) && netErr.Timeout():
				log.WithFields(log.Fields{
					"peer":  handler.connection.RemoteAddr(),
					"error": netErr,
				}).Debug("Peer timed out")
				return

			case errors.As(err, &appErr):
				log.WithFields(log.Fields{
					"peer":       handler.connection.RemoteAddr(),
					"remote":     appErr.Remote,
					"error code": appErr.ErrorCode,
				}).Debug("Connection closed")
				return

			default:
				log.WithFields(log.Fields{
					"peer":  handler.connection.RemoteAddr(),
					"error": err,
				}).Error("Unexpected error while waiting for stream")
				return
			}
		}

		go handler.handleStream(stream)
	}
}

// handleStream runs one exchange: drain the request, parse, resolve, respond.
// A grammar or path rejection resets only this stream; sibling streams and the
// accept loop keep running.
func (handler *connectionHandler) handleStream(stream quic.Stream) {
	logger := log.WithFields(log.Fields{
		"peer":   handler.connection.RemoteAddr(),
		"stream": stream.StreamID(),
	})

	raw, err := handler.readRequest(stream)
	if err != nil {
		handler.metrics.rejected.Add(1)
		logger.WithError(err).Warn("Failed to read request")
		code := internal.RequestTimeoutError
		if errors.Is(err, ErrMalformedRequest) {
			code = internal.MalformedRequestError
		}
		stream.CancelRead(code)
		stream.CancelWrite(code)
		return
	}

	request, err := ParseRequest(raw)
	if err != nil {
		handler.metrics.rejected.Add(1)
		logger.WithError(err).Warn("Rejecting malformed request")
		stream.CancelWrite(internal.MalformedRequestError)
		return
	}

	resolved, err := ResolvePath(handler.root, request.Path)
	if err != nil {
		handler.metrics.rejected.Add(1)
		logger.WithFields(log.Fields{
			"path":  request.Path,
			"error": err,
		}).Warn("Rejecting illegal path")
		stream.CancelWrite(internal.IllegalPathError)
		return
	}

	handler.metrics.requests.Add(1)
	logger.WithField("path", request.Path).Debug("Serving request")

	sent, notFound, err := respond(stream, resolved)
	handler.metrics.bytesSent.Add(uint64(sent))
	if notFound {
		handler.metrics.notFound.Add(1)
	}
	if err != nil {
		logger.WithFields(log.Fields{
			"path":  request.Path,
			"sent":  sent,
			"error": err,
		}).Error("Transfer aborted")
		stream.CancelWrite(internal.StreamTransmissionError)
		return
	}

	logger.WithFields(log.Fields{
		"path": request.Path,
		"sent": sent,
	}).Debug("Finished handling stream")
}

// readRequest drains the stream up to the peer's half-close, capped at
// MaxRequestSize. The read deadline bounds how long a peer may dawdle before
// finishing its request.
func (handler *connectionHandler) readRequest(stream quic.Stream) ([]byte, error) {
	if handler.requestTimeout > 0 {
		if err := stream.SetReadDeadline(time.Now().Add(handler.requestTimeout)); err != nil {
			return nil, err
		}
	}

	raw, err := io.ReadAll(io.LimitReader(stream, MaxRequestSize+1))
	if err != nil {
		return nil, err
	}
	if len(raw) > MaxRequestSize {
		return nil, ErrMalformedRequest
	}
	return raw, nil
}
