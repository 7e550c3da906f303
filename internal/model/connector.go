// Copyright 2024 Redpanda Data, Inc.
//
// Use of this software is governed by the Business Source License
// included in the file licenses/BSL.md
//
// As of the Change Date specified in that file, in accordance with
// the Business Source License, use of this software will be governed
// by the Apache License, Version 2.0

package model

// Connector is a reconciled Kafka Connect connector. The connect cluster it
// targets must be one the owning namespace is allowed to use.
type Connector struct {
	Metadata          Metadata      `json:"metadata"`
	Spec              ConnectorSpec `json:"spec"`
	Status            Status        `json:"status,omitempty"`
	DeletionRequested bool          `json:"deletionRequested,omitempty"`
}

// ConnectorSpec is the desired shape of a connector.
type ConnectorSpec struct {
	// ConnectCluster names the connect cluster the connector runs on.
	ConnectCluster string `json:"connectCluster"`
	// Config is the raw connector configuration handed to the connect
	// REST API, connector class included.
	Config map[string]string `json:"config"`
	// Paused pauses the connector's tasks without removing it.
	Paused bool `json:"paused,omitempty"`
}
