// SPDX-FileCopyrightText: 2026 The quicfile authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

// Package status exposes a running listener's counters over a small HTTP
// endpoint for operators. It is observability only and not part of the wire
// protocol.
package status

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"github.com/quicfile/quicfile-go/pkg/fserve"
)

// Source is anything that can report counters, usually a *fserve.Listener's
// Metrics.
type Source interface {
	Snapshot() fserve.MetricsSnapshot
}

// Report is the JSON document served on /status.
type Report struct {
	UptimeSeconds float64 `json:"uptime_seconds"`
	fserve.MetricsSnapshot
}

// Agent serves GET /status with a Report.
type Agent struct {
	source  Source
	started time.Time
	server  *http.Server
}

// NewAgent wires the routes and starts serving on listenAddress in the
// background.
func NewAgent(listenAddress string, source Source) *Agent {
	agent := &Agent{
		source:  source,
		started: time.Now(),
	}

	router := mux.NewRouter()
	router.HandleFunc("/status", agent.handleStatus).Methods(http.MethodGet)

	agent.server = &http.Server{
		Addr:    listenAddress,
		Handler: router,
	}

	go func() {
		log.WithField("address", listenAddress).Info("Starting status endpoint")
		if err := agent.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Error("Status endpoint failed")
		}
	}()

	return agent
}

func (agent *Agent) handleStatus(w http.ResponseWriter, _ *http.Request) {
	report := Report{
		UptimeSeconds:   time.Since(agent.started).Seconds(),
		MetricsSnapshot: agent.source.Snapshot(),
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(report); err != nil {
		log.WithError(err).Warn("Failed to write status response")
	}
}

func (agent *Agent) Close() error {
	return agent.server.Close()
}
