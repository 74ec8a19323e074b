// SPDX-FileCopyrightText: 2026 The quicfile authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package fserve

import "sync/atomic"

// Metrics counts what a running listener has done so far. All counters are
// monotonic and safe for concurrent use; handlers update them without locking.
type Metrics struct {
	connections atomic.Uint64
	requests    atomic.Uint64
	notFound    atomic.Uint64
	rejected    atomic.Uint64
	bytesSent   atomic.Uint64
}

// MetricsSnapshot is a point-in-time copy of a listener's counters.
type MetricsSnapshot struct {
	Connections uint64 `json:"connections"`
	Requests    uint64 `json:"requests"`
	NotFound    uint64 `json:"not_found"`
	Rejected    uint64 `json:"rejected"`
	BytesSent   uint64 `json:"bytes_sent"`
}

func (metrics *Metrics) Snapshot() MetricsSnapshot {
	return MetricsSnapshot{
		Connections: metrics.connections.Load(),
		Requests:    metrics.requests.Load(),
		NotFound:    metrics.notFound.Load(),
		Rejected:    metrics.rejected.Load(),
		BytesSent:   metrics.bytesSent.Load(),
	}
}
