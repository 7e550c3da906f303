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
	"time"

	"github.com/go-logr/logr"

	"github.com/redpanda-data/tenancy/internal/client/kafka"
	"github.com/redpanda-data/tenancy/internal/store"
)

// ACLReconciler mirrors every namespace's persisted grants onto broker ACLs
// for the namespace's technical user. Broker ACL state is derived, never
// authoritative.
type ACLReconciler struct {
	namespaces store.Namespaces
	entries    store.AccessControlEntries
	syncer     *kafka.ACLSyncer
	logger     logr.Logger
	now        func() time.Time
}

// NewACLReconciler initializes an ACLReconciler.
func NewACLReconciler(namespaces store.Namespaces, entries store.AccessControlEntries, syncer *kafka.ACLSyncer, logger logr.Logger) *ACLReconciler {
	return &ACLReconciler{
		namespaces: namespaces,
		entries:    entries,
		syncer:     syncer,
		logger:     logger.WithName("acls"),
		now:        time.Now,
	}
}

// Tick syncs broker ACLs for every namespace on the cluster that carries a
// technical user. A failed namespace is logged and the rest still sync.
func (r *ACLReconciler) Tick(ctx context.Context, cluster string) error {
	start := r.now()
	defer func() {
		tickDuration.WithLabelValues(cluster, "acl").Observe(r.now().Sub(start).Seconds())
	}()

	namespaces, err := r.namespaces.FindAll(ctx)
	if err != nil {
		return err
	}

	for _, namespace := range namespaces {
		if namespace.Spec.Cluster != cluster || namespace.Spec.User == "" {
			continue
		}

		grants, err := r.entries.FindAllGrantedTo(ctx, namespace.Metadata.Name)
		if err != nil {
			r.logger.Error(err, "listing grants", "cluster", cluster, "namespace", namespace.Metadata.Name)
			continue
		}

		principal := "User:" + namespace.Spec.User
		if err := r.syncer.Sync(ctx, principal, grants); err != nil {
			r.logger.Error(err, "syncing broker ACLs", "cluster", cluster, "namespace", namespace.Metadata.Name)
		}
	}
	return nil
}
