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
	"maps"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/go-logr/logr"
	"golang.org/x/sync/errgroup"

	"github.com/redpanda-data/tenancy/internal/client/connect"
	"github.com/redpanda-data/tenancy/internal/model"
	"github.com/redpanda-data/tenancy/internal/store"
)

// ConnectorReconciler converges deployed connectors onto the desired specs of
// one cluster, across every connect cluster the cluster exposes.
type ConnectorReconciler struct {
	connectors  store.Connectors
	apis        map[string]connect.API
	logger      logr.Logger
	concurrency int
	now         func() time.Time
}

// NewConnectorReconciler initializes a ConnectorReconciler. apis maps connect
// cluster names to their clients.
func NewConnectorReconciler(connectors store.Connectors, apis map[string]connect.API, logger logr.Logger, concurrency int) *ConnectorReconciler {
	if concurrency < 1 {
		concurrency = 1
	}
	return &ConnectorReconciler{
		connectors:  connectors,
		apis:        apis,
		logger:      logger.WithName("connectors"),
		concurrency: concurrency,
		now:         time.Now,
	}
}

// Tick runs one reconciliation pass for the cluster's connectors.
func (r *ConnectorReconciler) Tick(ctx context.Context, cluster string) error {
	start := r.now()
	defer func() {
		tickDuration.WithLabelValues(cluster, "connector").Observe(r.now().Sub(start).Seconds())
	}()

	desired, err := r.connectors.FindAllForCluster(ctx, cluster)
	if err != nil {
		return err
	}

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(r.concurrency)

	for _, connector := range desired {
		group.Go(func() error {
			var status model.Status
			if connector.DeletionRequested {
				status = r.deleteOne(groupCtx, cluster, connector)
				if status.Phase == model.PhaseSuccess {
					resourcesReconciled.WithLabelValues(cluster, "connector", string(status.Phase)).Inc()
					return nil
				}
			} else {
				status = r.reconcileOne(groupCtx, cluster, connector)
			}

			resourcesReconciled.WithLabelValues(cluster, "connector", string(status.Phase)).Inc()
			connector.Status = status
			if err := r.connectors.Create(groupCtx, connector); err != nil {
				r.logger.Error(err, "persisting connector status", "cluster", cluster, "connector", connector.Metadata.Name)
			}
			return nil
		})
	}

	return group.Wait()
}

func (r *ConnectorReconciler) reconcileOne(ctx context.Context, cluster string, connector *model.Connector) model.Status {
	name := connector.Metadata.Name

	api, exists := r.apis[connector.Spec.ConnectCluster]
	if !exists {
		return model.StatusFailed(r.now(), fmt.Sprintf("unknown connect cluster %q", connector.Spec.ConnectCluster))
	}

	info, err := api.Get(ctx, name)
	switch {
	case connect.IsNotFound(err):
		if err := api.Put(ctx, name, connector.Spec.Config); err != nil {
			return model.StatusFailed(r.now(), fmt.Sprintf("creating connector: %v", err))
		}
		r.logger.Info("created connector", "cluster", cluster, "connector", name)
	case err != nil:
		return model.StatusFailed(r.now(), fmt.Sprintf("describing connector: %v", err))
	case !maps.Equal(connector.Spec.Config, info.Config):
		if err := api.Put(ctx, name, connector.Spec.Config); err != nil {
			return model.StatusFailed(r.now(), fmt.Sprintf("updating connector configuration: %v", err))
		}
		r.logger.Info("updated connector", "cluster", cluster, "connector", name)
	}

	if err := r.reconcilePause(ctx, api, connector); err != nil {
		return model.StatusFailed(r.now(), err.Error())
	}
	return model.StatusSuccess(r.now())
}

// reconcilePause aligns the connector's runtime state with the desired paused
// flag. Pausing and resuming are both idempotent against a connector already
// in the desired state, so no call is made when nothing changed.
func (r *ConnectorReconciler) reconcilePause(ctx context.Context, api connect.API, connector *model.Connector) error {
	status, err := api.Status(ctx, connector.Metadata.Name)
	if err != nil {
		return errors.Wrap(err, "fetching connector status")
	}

	paused := status.Connector.State == connect.Paused
	switch {
	case connector.Spec.Paused && !paused:
		if err := api.Pause(ctx, connector.Metadata.Name); err != nil {
			return errors.Wrap(err, "pausing connector")
		}
	case !connector.Spec.Paused && paused:
		if err := api.Resume(ctx, connector.Metadata.Name); err != nil {
			return errors.Wrap(err, "resuming connector")
		}
	}
	return nil
}

func (r *ConnectorReconciler) deleteOne(ctx context.Context, cluster string, connector *model.Connector) model.Status {
	name := connector.Metadata.Name

	api, exists := r.apis[connector.Spec.ConnectCluster]
	if exists {
		if err := api.Delete(ctx, name); err != nil && !connect.IsNotFound(err) {
			return model.StatusFailed(r.now(), fmt.Sprintf("deleting connector: %v", err))
		}
		r.logger.Info("deleted connector", "cluster", cluster, "connector", name)
	}

	if err := r.connectors.Delete(ctx, cluster, name); err != nil && !store.IsNotFound(err) {
		return model.StatusFailed(r.now(), fmt.Sprintf("removing connector record: %v", err))
	}
	return model.StatusSuccess(r.now())
}
