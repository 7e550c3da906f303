// Copyright 2024 Redpanda Data, Inc.
//
// Use of this software is governed by the Business Source License
// included in the file licenses/BSL.md
//
// As of the Change Date specified in that file, in accordance with
// the Business Source License, use of this software will be governed
// by the Apache License, Version 2.0

package model

import "github.com/twmb/franz-go/pkg/kmsg"

// AccessControlEntry is a capability record: the namespace named in
// Metadata.Namespace grants Spec.GrantedTo a permission over a resource name
// or prefix. The spec of a persisted entry is immutable; only bookkeeping
// metadata may change on update.
type AccessControlEntry struct {
	Metadata Metadata               `json:"metadata"`
	Spec     AccessControlEntrySpec `json:"spec"`
}

// AccessControlEntrySpec is the immutable body of a grant. Field names are
// stable across the API boundary.
type AccessControlEntrySpec struct {
	ResourceType        ResourceType `json:"resourceType"`
	Resource            string       `json:"resource"`
	ResourcePatternType PatternType  `json:"resourcePatternType"`
	Permission          Permission   `json:"permission"`
	GrantedTo           string       `json:"grantedTo"`
}

// IsSelfAssigned reports whether the grant names its own granting namespace
// as the grantee. Self-assigned grants are provisioned by administrators.
func (a *AccessControlEntry) IsSelfAssigned() bool {
	return a.Spec.GrantedTo == a.Metadata.Namespace
}

// SpecEquals reports whether two grant specs are identical field for field.
func (s AccessControlEntrySpec) SpecEquals(other AccessControlEntrySpec) bool {
	return s == other
}

var (
	patternTypeToKafka = map[PatternType]kmsg.ACLResourcePatternType{
		PatternTypeLiteral:  kmsg.ACLResourcePatternTypeLiteral,
		PatternTypePrefixed: kmsg.ACLResourcePatternTypePrefixed,
	}
	resourceTypeToKafka = map[ResourceType]kmsg.ACLResourceType{
		ResourceTypeTopic:           kmsg.ACLResourceTypeTopic,
		ResourceTypeGroup:           kmsg.ACLResourceTypeGroup,
		ResourceTypeTransactionalID: kmsg.ACLResourceTypeTransactionalId,
	}
)

// ToKafka translates the pattern type into its Kafka protocol counterpart.
func (p PatternType) ToKafka() kmsg.ACLResourcePatternType {
	if patternType, exists := patternTypeToKafka[p]; exists {
		return patternType
	}

	return kmsg.ACLResourcePatternTypeUnknown
}

// ToKafka translates the resource type into its Kafka protocol counterpart.
// Only broker-native kinds map; CONNECT, CONNECT_CLUSTER and SCHEMA have no
// broker ACL equivalent.
func (t ResourceType) ToKafka() kmsg.ACLResourceType {
	if resourceType, exists := resourceTypeToKafka[t]; exists {
		return resourceType
	}

	return kmsg.ACLResourceTypeUnknown
}
