// SPDX-FileCopyrightText: 2026 The quicfile authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package status

import (
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/quicfile/quicfile-go/pkg/fserve"
)

type stubSource struct {
	snapshot fserve.MetricsSnapshot
}

func (source stubSource) Snapshot() fserve.MetricsSnapshot {
	return source.snapshot
}

func TestHandleStatus(t *testing.T) {
	agent := &Agent{
		source: stubSource{snapshot: fserve.MetricsSnapshot{
			Connections: 3,
			Requests:    7,
			NotFound:    1,
			Rejected:    2,
			BytesSent:   4096,
		}},
		started: time.Now().Add(-time.Minute),
	}

	recorder := httptest.NewRecorder()
	agent.handleStatus(recorder, httptest.NewRequest("GET", "/status", nil))

	if recorder.Code != 200 {
		t.Fatalf("unexpected status code %d", recorder.Code)
	}

	var report Report
	if err := json.NewDecoder(recorder.Body).Decode(&report); err != nil {
		t.Fatal(err)
	}

	if report.Requests != 7 || report.BytesSent != 4096 {
		t.Fatalf("unexpected report: %+v", report)
	}
	if report.UptimeSeconds < 59 {
		t.Fatalf("uptime not reported: %f", report.UptimeSeconds)
	}
}
