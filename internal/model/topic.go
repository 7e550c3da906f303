// Copyright 2024 Redpanda Data, Inc.
//
// Use of this software is governed by the Business Source License
// included in the file licenses/BSL.md
//
// As of the Change Date specified in that file, in accordance with
// the Business Source License, use of this software will be governed
// by the Apache License, Version 2.0

package model

// Topic is a reconciled resource: its spec is the desired state declared by
// the owning namespace, its status is written back per reconciliation tick.
type Topic struct {
	Metadata Metadata  `json:"metadata"`
	Spec     TopicSpec `json:"spec"`
	Status   Status    `json:"status,omitempty"`
	// DeletionRequested marks the topic for removal from the broker. The
	// record itself is dropped from the repository once the downstream
	// deletion succeeds.
	DeletionRequested bool `json:"deletionRequested,omitempty"`
}

// TopicSpec is the desired shape of a topic. Configs holds broker-native
// configuration; Tags and Description live in the external catalog and are
// reconciled as independent facets.
type TopicSpec struct {
	ReplicationFactor int               `json:"replicationFactor"`
	Partitions        int               `json:"partitions"`
	Tags              []string          `json:"tags,omitempty"`
	Description       string            `json:"description,omitempty"`
	Configs           map[string]string `json:"configs,omitempty"`
}

// DeleteRecordsResponse reports the per-partition low-water offsets after a
// record truncation. Transient; never persisted.
type DeleteRecordsResponse struct {
	Topic      string          `json:"topic"`
	Partitions map[int32]int64 `json:"partitions"`
}
