// Copyright 2024 Redpanda Data, Inc.
//
// Use of this software is governed by the Business Source License
// included in the file licenses/BSL.md
//
// As of the Change Date specified in that file, in accordance with
// the Business Source License, use of this software will be governed
// by the Apache License, Version 2.0

package reconcile

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	tickDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "tenancy",
		Subsystem: "reconcile",
		Name:      "tick_duration_seconds",
		Help:      "Duration of one reconciliation tick.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"cluster", "kind"})

	resourcesReconciled = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "tenancy",
		Subsystem: "reconcile",
		Name:      "resources_total",
		Help:      "Resources processed per tick, by resulting phase.",
	}, []string{"cluster", "kind", "phase"})

	facetFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "tenancy",
		Subsystem: "reconcile",
		Name:      "facet_failures_total",
		Help:      "Per-facet apply failures.",
	}, []string{"cluster", "facet"})
)
