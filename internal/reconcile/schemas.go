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
	"fmt"
	"time"

	"github.com/go-logr/logr"
	"golang.org/x/sync/errgroup"

	"github.com/redpanda-data/tenancy/internal/client/schemas"
	"github.com/redpanda-data/tenancy/internal/model"
	"github.com/redpanda-data/tenancy/internal/store"
)

// SchemaReconciler converges schema registry subjects onto the desired schema
// records of one cluster.
type SchemaReconciler struct {
	schemas     store.Schemas
	syncer      *schemas.Syncer
	logger      logr.Logger
	concurrency int
	now         func() time.Time
}

// NewSchemaReconciler initializes a SchemaReconciler.
func NewSchemaReconciler(schemaStore store.Schemas, syncer *schemas.Syncer, logger logr.Logger, concurrency int) *SchemaReconciler {
	if concurrency < 1 {
		concurrency = 1
	}
	return &SchemaReconciler{
		schemas:     schemaStore,
		syncer:      syncer,
		logger:      logger.WithName("schemas"),
		concurrency: concurrency,
		now:         time.Now,
	}
}

// Tick runs one reconciliation pass for the cluster's schema subjects.
func (r *SchemaReconciler) Tick(ctx context.Context, cluster string) error {
	start := r.now()
	defer func() {
		tickDuration.WithLabelValues(cluster, "schema").Observe(r.now().Sub(start).Seconds())
	}()

	desired, err := r.schemas.FindAllForCluster(ctx, cluster)
	if err != nil {
		return err
	}

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(r.concurrency)

	for _, schema := range desired {
		group.Go(func() error {
			subject := schema.Metadata.Name

			var status model.Status
			if schema.DeletionRequested {
				if err := r.syncer.Delete(groupCtx, subject); err != nil {
					status = model.StatusFailed(r.now(), fmt.Sprintf("deleting subject: %v", err))
				} else if err := r.schemas.Delete(groupCtx, cluster, subject); err != nil && !store.IsNotFound(err) {
					status = model.StatusFailed(r.now(), fmt.Sprintf("removing schema record: %v", err))
				} else {
					resourcesReconciled.WithLabelValues(cluster, "schema", string(model.PhaseSuccess)).Inc()
					return nil
				}
			} else if err := r.syncer.Sync(groupCtx, schema); err != nil {
				status = model.StatusFailed(r.now(), fmt.Sprintf("syncing subject: %v", err))
			} else {
				status = model.StatusSuccess(r.now())
			}

			resourcesReconciled.WithLabelValues(cluster, "schema", string(status.Phase)).Inc()
			schema.Status = status
			if err := r.schemas.Create(groupCtx, schema); err != nil {
				r.logger.Error(err, "persisting schema status", "cluster", cluster, "subject", subject)
			}
			return nil
		})
	}

	return group.Wait()
}
