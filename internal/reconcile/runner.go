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
	"context"
	"sync"
	"time"

	"github.com/go-logr/logr"

	"github.com/redpanda-data/tenancy/internal/client"
	"github.com/redpanda-data/tenancy/internal/store"
)

// Runner owns one reconciliation loop per managed cluster. Loops share no
// mutable state beyond the store; clusters tick fully in parallel. Apply
// swaps the cluster set at runtime, stopping loops for removed clusters and
// starting loops for new ones.
type Runner struct {
	store    *store.Store
	logger   logr.Logger
	interval time.Duration

	// concurrency bounds downstream fan-out inside one tick.
	concurrency int

	mu    sync.Mutex
	base  context.Context
	loops map[string]context.CancelFunc
	wg    sync.WaitGroup
}

// NewRunner initializes a Runner. Loops start on the first Apply.
func NewRunner(st *store.Store, logger logr.Logger, interval time.Duration, concurrency int) *Runner {
	return &Runner{
		store:       st,
		logger:      logger.WithName("reconcile"),
		interval:    interval,
		concurrency: concurrency,
		loops:       map[string]context.CancelFunc{},
	}
}

// Start binds the runner to its base context. Must be called before Apply.
func (r *Runner) Start(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.base = ctx
}

// Apply reconciles the running loop set against the registry's cluster set.
// Safe to call again after a configuration reload.
func (r *Runner) Apply(registry *client.Registry) {
	r.mu.Lock()
	defer r.mu.Unlock()

	next := map[string]bool{}
	for _, name := range registry.Names() {
		next[name] = true
	}

	for name, cancel := range r.loops {
		if !next[name] {
			r.logger.Info("stopping cluster loop", "cluster", name)
			cancel()
			delete(r.loops, name)
		}
	}

	for name := range next {
		if _, running := r.loops[name]; running {
			continue
		}
		cluster, err := registry.Get(name)
		if err != nil {
			continue
		}

		loopCtx, cancel := context.WithCancel(r.base)
		r.loops[name] = cancel

		r.wg.Add(1)
		go func() {
			defer r.wg.Done()
			r.run(loopCtx, cluster)
		}()
		r.logger.Info("started cluster loop", "cluster", name)
	}
}

// Stop cancels every loop and waits for them to drain.
func (r *Runner) Stop() {
	r.mu.Lock()
	for name, cancel := range r.loops {
		cancel()
		delete(r.loops, name)
	}
	r.mu.Unlock()
	r.wg.Wait()
}

// run ticks one cluster until its context is canceled. The first tick fires
// immediately so a fresh process converges without waiting a full interval.
func (r *Runner) run(ctx context.Context, cluster *client.Cluster) {
	reconcilers := r.build(cluster)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		r.tick(ctx, cluster.Name, reconcilers)

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

type clusterReconciler interface {
	Tick(ctx context.Context, cluster string) error
}

func (r *Runner) build(cluster *client.Cluster) []clusterReconciler {
	reconcilers := []clusterReconciler{
		NewTopicReconciler(r.store.Topics, cluster.Admin, cluster.Catalog, r.logger, r.concurrency),
		NewACLReconciler(r.store.Namespaces, r.store.AccessControlEntries, cluster.ACLs, r.logger),
	}

	if len(cluster.Connect) > 0 {
		reconcilers = append(reconcilers, NewConnectorReconciler(r.store.Connectors, cluster.Connect, r.logger, r.concurrency))
	}
	if cluster.Schemas != nil {
		reconcilers = append(reconcilers, NewSchemaReconciler(r.store.Schemas, cluster.Schemas, r.logger, r.concurrency))
	}
	return reconcilers
}

// tick runs every reconciler once. A reconciler's fetch failure is logged and
// retried on the next tick; it never takes down the loop.
func (r *Runner) tick(ctx context.Context, cluster string, reconcilers []clusterReconciler) {
	for _, reconciler := range reconcilers {
		if ctx.Err() != nil {
			return
		}
		if err := reconciler.Tick(ctx, cluster); err != nil {
			if client.IsTransient(err) {
				r.logger.Info("transient fetch failure, retrying next tick", "cluster", cluster, "error", err.Error())
				continue
			}
			r.logger.Error(err, "reconciliation tick failed", "cluster", cluster)
		}
	}
}
