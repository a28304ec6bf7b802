// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TsLua Contributors

package events

import "github.com/prometheus/client_golang/prometheus"

// Dispatch outcome labels.
const (
	StatusDispatched = "dispatched"
	StatusSkipped    = "skipped"
	StatusNotReady   = "not_ready"
	StatusError      = "error"
)

var dispatchTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "tslua_dispatch_total",
		Help: "Total number of host events by kind and dispatch outcome",
	},
	[]string{"event", "status"},
)

// RegisterMetrics registers dispatcher metrics with the given Prometheus registry.
// Panics if registration fails (following prometheus convention).
func RegisterMetrics(reg prometheus.Registerer) {
	reg.MustRegister(dispatchTotal)
}
