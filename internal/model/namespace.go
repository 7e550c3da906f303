// Copyright 2024 Redpanda Data, Inc.
//
// Use of this software is governed by the Business Source License
// included in the file licenses/BSL.md
//
// As of the Change Date specified in that file, in accordance with
// the Business Source License, use of this software will be governed
// by the Apache License, Version 2.0

package model

// Namespace is the identity of a tenant. A namespace owns a subset of
// resource names on exactly one managed cluster, expressed through OWNER
// grants, and every authorization and admission decision resolves the
// namespace record first.
type Namespace struct {
	Metadata Metadata      `json:"metadata"`
	Spec     NamespaceSpec `json:"spec"`
}

// NamespaceSpec is the declared configuration of a tenant.
type NamespaceSpec struct {
	// Cluster is the managed cluster this namespace lives on.
	Cluster string `json:"cluster"`
	// User is the technical user identity the namespace's clients
	// authenticate as against the brokers.
	User string `json:"kafkaUser"`
	// ConnectClusters lists the Kafka Connect clusters the namespace may
	// deploy connectors onto.
	ConnectClusters []string `json:"connectClusters,omitempty"`
	// TopicValidation and ConnectorValidation are declarative constraint
	// sets compiled into validators at admission time.
	TopicValidation     []ValidationRule `json:"topicValidation,omitempty"`
	ConnectorValidation []ValidationRule `json:"connectorValidation,omitempty"`
	// ProtectionEnabled gates destructive operations: a protected
	// namespace refuses topic deletion and record truncation unless the
	// caller is an administrator.
	ProtectionEnabled bool `json:"protectionEnabled,omitempty"`
}

// ValidationRuleKind enumerates the closed set of constraint variants a
// namespace may attach to its resource specs.
type ValidationRuleKind string

const (
	ValidationRange    ValidationRuleKind = "Range"
	ValidationOneOf    ValidationRuleKind = "OneOf"
	ValidationListOf   ValidationRuleKind = "ListOf"
	ValidationNonEmpty ValidationRuleKind = "NonEmpty"
)

// ValidationRule is a declarative constraint on a single named field of a
// resource spec. Rules are plain data here; internal/admission compiles them
// into executable validators.
type ValidationRule struct {
	Field string             `json:"field"`
	Kind  ValidationRuleKind `json:"kind"`
	// Min/Max bound numeric fields when Kind is Range.
	Min int64 `json:"min,omitempty"`
	Max int64 `json:"max,omitempty"`
	// Values enumerates allowed values when Kind is OneOf, or allowed list
	// elements when Kind is ListOf.
	Values []string `json:"values,omitempty"`
}
