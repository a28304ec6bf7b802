// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TsLua Contributors

package engine

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/samber/oops"
)

// Status labels for engine metrics.
const (
	StatusSuccess  = "success"
	StatusError    = "error"
	StatusNotFound = "not_found"
	StatusNotReady = "not_ready"
	StatusAbsent   = "absent"
)

var scriptLoads = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "tslua_script_loads_total",
		Help: "Total number of script loads by result",
	},
	[]string{"status"},
)

var hookCalls = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "tslua_hook_calls_total",
		Help: "Total number of script function invocations by function name and result",
	},
	[]string{"hook", "status"},
)

var callDuration = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "tslua_hook_duration_seconds",
		Help:    "Script function execution time in seconds",
		Buckets: prometheus.DefBuckets,
	},
	[]string{"hook"},
)

var engineReady = prometheus.NewGauge(
	prometheus.GaugeOpts{
		Name: "tslua_engine_ready",
		Help: "1 while the scripting engine is initialized",
	},
)

// RegisterMetrics registers engine metrics with the given Prometheus registry.
// Panics if registration fails (following prometheus convention).
func RegisterMetrics(reg prometheus.Registerer) {
	reg.MustRegister(scriptLoads)
	reg.MustRegister(hookCalls)
	reg.MustRegister(callDuration)
	reg.MustRegister(engineReady)
}

func recordScriptLoad(err error) {
	switch {
	case err == nil:
		scriptLoads.WithLabelValues(StatusSuccess).Inc()
	case isCode(err, CodeScriptNotFound):
		scriptLoads.WithLabelValues(StatusNotFound).Inc()
	default:
		scriptLoads.WithLabelValues(StatusError).Inc()
	}
}

func isCode(err error, code string) bool {
	oopsErr, ok := oops.AsOops(err)
	return ok && oopsErr.Code() == code
}
