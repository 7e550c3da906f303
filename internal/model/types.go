// Copyright 2024 Redpanda Data, Inc.
//
// Use of this software is governed by the Business Source License
// included in the file licenses/BSL.md
//
// As of the Change Date specified in that file, in accordance with
// the Business Source License, use of this software will be governed
// by the Apache License, Version 2.0

// Package model holds the persisted record types of the control plane:
// namespaces, access control entries, role bindings and the reconciled
// resource kinds (topics, connectors, schemas). These records are the desired
// state the reconciliation loops converge onto managed clusters.
package model

import "time"

// ResourceType designates the kind of resource a grant or role binding
// applies to.
type ResourceType string

const (
	ResourceTypeUnknown         ResourceType = ""
	ResourceTypeTopic           ResourceType = "TOPIC"
	ResourceTypeConnect         ResourceType = "CONNECT"
	ResourceTypeConnectCluster  ResourceType = "CONNECT_CLUSTER"
	ResourceTypeSchema          ResourceType = "SCHEMA"
	ResourceTypeGroup           ResourceType = "GROUP"
	ResourceTypeTransactionalID ResourceType = "TRANSACTIONAL_ID"
)

// PatternType is the matching discipline applied to a grant's resource field.
type PatternType string

const (
	PatternTypeUnknown  PatternType = ""
	PatternTypeLiteral  PatternType = "LITERAL"
	PatternTypePrefixed PatternType = "PREFIXED"
)

// Permission is the capability a grant confers on its grantee.
type Permission string

const (
	PermissionUnknown Permission = ""
	PermissionOwner   Permission = "OWNER"
	PermissionRead    Permission = "READ"
	PermissionWrite   Permission = "WRITE"
)

// Verb is an HTTP-style verb carried by a role binding.
type Verb string

const (
	VerbGet    Verb = "GET"
	VerbPost   Verb = "POST"
	VerbPut    Verb = "PUT"
	VerbDelete Verb = "DELETE"
)

// Phase is the reconciliation outcome of a resource.
type Phase string

const (
	PhasePending Phase = "Pending"
	PhaseSuccess Phase = "Success"
	PhaseFailed  Phase = "Failed"
)

// Status records the last reconciliation outcome of a resource. It is written
// back by the reconciliation loops and is never part of the desired spec.
type Status struct {
	Phase          Phase     `json:"phase"`
	Message        string    `json:"message,omitempty"`
	LastUpdateTime time.Time `json:"lastUpdateTime,omitempty"`
}

// Metadata is the bookkeeping header shared by all persisted records.
type Metadata struct {
	Name      string    `json:"name"`
	Namespace string    `json:"namespace,omitempty"`
	Cluster   string    `json:"cluster,omitempty"`
	CreatedAt time.Time `json:"creationTimestamp,omitempty"`
	UpdatedAt time.Time `json:"updateTimestamp,omitempty"`
}

// StatusSuccess returns a Success status stamped with now.
func StatusSuccess(now time.Time) Status {
	return Status{Phase: PhaseSuccess, LastUpdateTime: now}
}

// StatusFailed returns a Failed status carrying a human-readable message.
func StatusFailed(now time.Time, message string) Status {
	return Status{Phase: PhaseFailed, Message: message, LastUpdateTime: now}
}
