// Copyright 2024 Redpanda Data, Inc.
//
// Use of this software is governed by the Business Source License
// included in the file licenses/BSL.md
//
// As of the Change Date specified in that file, in accordance with
// the Business Source License, use of this software will be governed
// by the Apache License, Version 2.0

// Package reconcile drives desired state from the store onto the managed
// clusters. One independent loop runs per cluster; within a tick, downstream
// calls fan out with bounded concurrency and every resource ends the tick in
// phase Success or Failed, never Pending.
package reconcile

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-logr/logr"
	"golang.org/x/sync/errgroup"

	"github.com/redpanda-data/tenancy/internal/client/catalog"
	"github.com/redpanda-data/tenancy/internal/client/kafka"
	"github.com/redpanda-data/tenancy/internal/model"
	"github.com/redpanda-data/tenancy/internal/store"
	"github.com/redpanda-data/tenancy/pkg/collections"
)

// MaskedConfigValue is the sentinel brokers return in place of sensitive
// configuration values. A masked actual value never counts as drift.
const MaskedConfigValue = "********"

// TopicReconciler converges broker topics and their catalog metadata onto the
// desired specs of one cluster. Configuration, tags and description are
// diffed and applied as independent facets.
type TopicReconciler struct {
	topics      store.Topics
	admin       kafka.Admin
	catalog     catalog.API
	logger      logr.Logger
	concurrency int
	now         func() time.Time
}

// NewTopicReconciler initializes a TopicReconciler. catalogAPI may be nil for
// clusters without a catalog; tag and description facets are then skipped.
func NewTopicReconciler(topics store.Topics, admin kafka.Admin, catalogAPI catalog.API, logger logr.Logger, concurrency int) *TopicReconciler {
	if concurrency < 1 {
		concurrency = 1
	}
	return &TopicReconciler{
		topics:      topics,
		admin:       admin,
		catalog:     catalogAPI,
		logger:      logger.WithName("topics"),
		concurrency: concurrency,
		now:         time.Now,
	}
}

// Tick runs one full reconciliation pass for the cluster. Fetch failures
// abort the tick and are retried on the next one; apply failures are recorded
// per resource and never abort the pass.
func (r *TopicReconciler) Tick(ctx context.Context, cluster string) error {
	start := r.now()
	defer func() {
		tickDuration.WithLabelValues(cluster, "topic").Observe(r.now().Sub(start).Seconds())
	}()

	desired, err := r.topics.FindAllForCluster(ctx, cluster)
	if err != nil {
		return err
	}

	actual, err := r.admin.ListTopics(ctx)
	if err != nil {
		return err
	}

	entities := map[string]catalog.Entity{}
	if r.catalog != nil {
		entities, err = r.catalog.SearchEntities(ctx)
		if err != nil {
			return err
		}
	}

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(r.concurrency)

	for _, topic := range desired {
		group.Go(func() error {
			var status model.Status
			if topic.DeletionRequested {
				status = r.deleteOne(groupCtx, cluster, topic, actual, entities)
				if status.Phase == model.PhaseSuccess {
					// The record is gone; nothing left to stamp.
					resourcesReconciled.WithLabelValues(cluster, "topic", string(status.Phase)).Inc()
					return nil
				}
			} else {
				status = r.reconcileOne(groupCtx, cluster, topic, actual, entities)
			}

			resourcesReconciled.WithLabelValues(cluster, "topic", string(status.Phase)).Inc()
			topic.Status = status
			if err := r.topics.Create(groupCtx, topic); err != nil {
				r.logger.Error(err, "persisting topic status", "cluster", cluster, "topic", topic.Metadata.Name)
			}
			return nil
		})
	}

	return group.Wait()
}

// reconcileOne applies the three facets of a single topic. A failed facet is
// recorded and the remaining facets still run.
func (r *TopicReconciler) reconcileOne(ctx context.Context, cluster string, topic *model.Topic, actual map[string]kafka.ActualTopic, entities map[string]catalog.Entity) model.Status {
	name := topic.Metadata.Name
	var failures []string

	live, exists := actual[name]
	if !exists {
		configs := make(map[string]string, len(topic.Spec.Configs))
		for key, value := range topic.Spec.Configs {
			configs[key] = value
		}
		if err := r.admin.CreateTopic(ctx, name, topic.Spec.Partitions, topic.Spec.ReplicationFactor, configs); err != nil {
			facetFailures.WithLabelValues(cluster, "config").Inc()
			return model.StatusFailed(r.now(), fmt.Sprintf("creating topic: %v", err))
		}
		r.logger.Info("created topic", "cluster", cluster, "topic", name)
		// A freshly created topic already carries the desired configs.
	} else if changes := configChanges(topic.Spec.Configs, live.Configs); len(changes) > 0 {
		if err := r.admin.AlterConfigs(ctx, name, changes); err != nil {
			facetFailures.WithLabelValues(cluster, "config").Inc()
			failures = append(failures, fmt.Sprintf("altering configuration: %v", err))
		}
	}

	if r.catalog != nil {
		if entity, known := entities[name]; known {
			failures = append(failures, r.reconcileTags(ctx, cluster, name, topic.Spec.Tags, entity.Tags)...)

			if topic.Spec.Description != entity.Description {
				if err := r.catalog.SetDescription(ctx, name, topic.Spec.Description); err != nil {
					facetFailures.WithLabelValues(cluster, "description").Inc()
					failures = append(failures, fmt.Sprintf("setting description: %v", err))
				}
			}
		}
		// An entity the catalog has not discovered yet is not drift;
		// its facets converge on a later tick.
	}

	if len(failures) > 0 {
		return model.StatusFailed(r.now(), strings.Join(failures, "; "))
	}
	return model.StatusSuccess(r.now())
}

// reconcileTags converges the entity's tag set onto the desired one: actual
// tags not desired are dissociated, desired tags not present are defined then
// associated, tags present on both sides are left untouched.
func (r *TopicReconciler) reconcileTags(ctx context.Context, cluster, entity string, desired, actual []string) []string {
	desiredSet := collections.NewSet(desired...)
	actualSet := collections.NewSet(actual...)

	var failures []string

	for _, tag := range collections.SortedStrings(actualSet.Difference(desiredSet)) {
		if err := r.catalog.DissociateTag(ctx, entity, tag); err != nil {
			facetFailures.WithLabelValues(cluster, "tags").Inc()
			failures = append(failures, fmt.Sprintf("dissociating tag %q: %v", tag, err))
		}
	}

	for _, tag := range collections.SortedStrings(desiredSet.Difference(actualSet)) {
		if err := r.catalog.EnsureTagDefined(ctx, tag); err != nil {
			facetFailures.WithLabelValues(cluster, "tags").Inc()
			failures = append(failures, fmt.Sprintf("defining tag %q: %v", tag, err))
			continue
		}
		if err := r.catalog.AssociateTag(ctx, entity, tag); err != nil {
			facetFailures.WithLabelValues(cluster, "tags").Inc()
			failures = append(failures, fmt.Sprintf("associating tag %q: %v", tag, err))
		}
	}

	return failures
}

// deleteOne removes a topic marked for deletion: broker first, then its
// catalog tags, then the stored record. A broker failure leaves the record in
// place for the next tick.
func (r *TopicReconciler) deleteOne(ctx context.Context, cluster string, topic *model.Topic, actual map[string]kafka.ActualTopic, entities map[string]catalog.Entity) model.Status {
	name := topic.Metadata.Name

	if _, exists := actual[name]; exists {
		if err := r.admin.DeleteTopic(ctx, name); err != nil {
			return model.StatusFailed(r.now(), fmt.Sprintf("deleting topic: %v", err))
		}
		r.logger.Info("deleted topic", "cluster", cluster, "topic", name)
	}

	if r.catalog != nil {
		if entity, known := entities[name]; known {
			for _, tag := range entity.Tags {
				if err := r.catalog.DissociateTag(ctx, name, tag); err != nil {
					return model.StatusFailed(r.now(), fmt.Sprintf("dissociating tag %q: %v", tag, err))
				}
			}
		}
	}

	if err := r.topics.Delete(ctx, cluster, name); err != nil && !store.IsNotFound(err) {
		return model.StatusFailed(r.now(), fmt.Sprintf("removing topic record: %v", err))
	}
	return model.StatusSuccess(r.now())
}

// configChanges returns the alterations needed to bring actual in line with
// desired. Keys absent from desired are unmanaged and left alone. A masked
// actual value is treated as converged.
func configChanges(desired, actual map[string]string) map[string]*string {
	changes := map[string]*string{}
	for key, want := range desired {
		got, exists := actual[key]
		if exists && got == MaskedConfigValue {
			continue
		}
		if !exists || got != want {
			changes[key] = &want
		}
	}
	return changes
}
