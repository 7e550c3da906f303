// Copyright 2024 Redpanda Data, Inc.
//
// Use of this software is governed by the Business Source License
// included in the file licenses/BSL.md
//
// As of the Change Date specified in that file, in accordance with
// the Business Source License, use of this software will be governed
// by the Apache License, Version 2.0

// Package kafka wraps the broker admin surface the reconciliation loops
// depend on. The Admin interface exists so loop logic can be exercised
// against fakes; the one real implementation sits on top of kadm.
package kafka

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kgo"

	"github.com/redpanda-data/tenancy/pkg/collections"
)

// ActualTopic is the live shape of a topic as observed from the broker.
type ActualTopic struct {
	Name              string
	Partitions        int
	ReplicationFactor int
	Configs           map[string]string
}

// Timeouts carries one explicit deadline per operation kind. Every downstream
// call runs under its own timeout; there is no in-tick retry.
type Timeouts struct {
	Describe time.Duration
	Create   time.Duration
	Delete   time.Duration
	Alter    time.Duration
}

// Admin is the broker admin surface used by the topic reconciler.
type Admin interface {
	// ListTopics returns every non-internal topic with its live
	// configuration.
	ListTopics(ctx context.Context) (map[string]ActualTopic, error)
	CreateTopic(ctx context.Context, name string, partitions, replicationFactor int, configs map[string]string) error
	// AlterConfigs applies the given entries; a nil value deletes the
	// entry, resetting it to the broker default.
	AlterConfigs(ctx context.Context, name string, configs map[string]*string) error
	DeleteTopic(ctx context.Context, name string) error
	// TruncateTopic deletes all records up to the current end offsets and
	// returns the resulting low-water offsets per partition.
	TruncateTopic(ctx context.Context, name string) (map[int32]int64, error)
}

// NewAdmin wraps a kgo client in the Admin interface.
func NewAdmin(client *kgo.Client, timeouts Timeouts) Admin {
	return &admin{
		client:   kadm.NewClient(client),
		timeouts: timeouts,
	}
}

type admin struct {
	client   *kadm.Client
	timeouts Timeouts
}

func (a *admin) ListTopics(ctx context.Context) (map[string]ActualTopic, error) {
	ctx, cancel := context.WithTimeout(ctx, a.timeouts.Describe)
	defer cancel()

	details, err := a.client.ListTopics(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "listing topics")
	}

	topics := make(map[string]ActualTopic, len(details))
	for name, detail := range details {
		if detail.Err != nil {
			return nil, errors.Wrapf(detail.Err, "listing topic %q", name)
		}
		actual := ActualTopic{
			Name:       name,
			Partitions: len(detail.Partitions),
			Configs:    map[string]string{},
		}
		for _, partition := range detail.Partitions {
			actual.ReplicationFactor = len(partition.Replicas)
			break
		}
		topics[name] = actual
	}

	if len(topics) == 0 {
		return topics, nil
	}

	configs, err := a.client.DescribeTopicConfigs(ctx, collections.Keys(topics)...)
	if err != nil {
		return nil, errors.Wrap(err, "describing topic configs")
	}
	for _, resource := range configs {
		if resource.Err != nil {
			return nil, errors.Wrapf(resource.Err, "describing configs of %q", resource.Name)
		}
		topic, ok := topics[resource.Name]
		if !ok {
			continue
		}
		for _, entry := range resource.Configs {
			topic.Configs[entry.Key] = entry.MaybeValue()
		}
	}

	return topics, nil
}

func (a *admin) CreateTopic(ctx context.Context, name string, partitions, replicationFactor int, configs map[string]string) error {
	ctx, cancel := context.WithTimeout(ctx, a.timeouts.Create)
	defer cancel()

	kafkaConfigs := make(map[string]*string, len(configs))
	for key, value := range configs {
		kafkaConfigs[key] = ptr(value)
	}

	response, err := a.client.CreateTopic(ctx, int32(partitions), int16(replicationFactor), kafkaConfigs, name)
	if err != nil {
		return errors.Wrapf(err, "creating topic %q", name)
	}
	if response.Err != nil {
		return errors.Wrapf(response.Err, "creating topic %q", name)
	}
	return nil
}

func (a *admin) AlterConfigs(ctx context.Context, name string, configs map[string]*string) error {
	ctx, cancel := context.WithTimeout(ctx, a.timeouts.Alter)
	defer cancel()

	alterations := make([]kadm.AlterConfig, 0, len(configs))
	for key, value := range configs {
		op := kadm.SetConfig
		if value == nil {
			op = kadm.DeleteConfig
		}
		alterations = append(alterations, kadm.AlterConfig{Op: op, Name: key, Value: value})
	}

	responses, err := a.client.AlterTopicConfigs(ctx, alterations, name)
	if err != nil {
		return errors.Wrapf(err, "altering configs of %q", name)
	}
	for _, response := range responses {
		if response.Err != nil {
			return errors.Wrapf(response.Err, "altering configs of %q", response.Name)
		}
	}
	return nil
}

func (a *admin) DeleteTopic(ctx context.Context, name string) error {
	ctx, cancel := context.WithTimeout(ctx, a.timeouts.Delete)
	defer cancel()

	responses, err := a.client.DeleteTopics(ctx, name)
	if err != nil {
		return errors.Wrapf(err, "deleting topic %q", name)
	}
	for _, response := range responses {
		if response.Err != nil {
			return errors.Wrapf(response.Err, "deleting topic %q", name)
		}
	}
	return nil
}

func (a *admin) TruncateTopic(ctx context.Context, name string) (map[int32]int64, error) {
	ctx, cancel := context.WithTimeout(ctx, a.timeouts.Delete)
	defer cancel()

	ends, err := a.client.ListEndOffsets(ctx, name)
	if err != nil {
		return nil, errors.Wrapf(err, "listing end offsets of %q", name)
	}

	responses, err := a.client.DeleteRecords(ctx, ends.Offsets())
	if err != nil {
		return nil, errors.Wrapf(err, "truncating topic %q", name)
	}

	watermarks := map[int32]int64{}
	for _, partitions := range responses {
		for _, response := range partitions {
			if response.Err != nil {
				return nil, errors.Wrapf(response.Err, "truncating %q partition %d", name, response.Partition)
			}
			watermarks[response.Partition] = response.LowWatermark
		}
	}
	return watermarks, nil
}

func ptr(s string) *string { return &s }
