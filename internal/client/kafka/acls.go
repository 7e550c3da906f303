// Copyright 2024 Redpanda Data, Inc.
//
// Use of this software is governed by the Business Source License
// included in the file licenses/BSL.md
//
// As of the Change Date specified in that file, in accordance with
// the Business Source License, use of this software will be governed
// by the Apache License, Version 2.0

package kafka

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"
	"github.com/twmb/franz-go/pkg/kmsg"

	"github.com/redpanda-data/tenancy/internal/model"
	"github.com/redpanda-data/tenancy/pkg/collections"
)

// ACLSyncer mirrors a namespace's persisted grants onto broker ACLs for its
// technical user. The persisted grants stay authoritative; broker state is
// regenerated from them on every sync, deleting anything extraneous.
type ACLSyncer struct {
	client *kgo.Client
}

// NewACLSyncer initializes an ACLSyncer.
func NewACLSyncer(client *kgo.Client) *ACLSyncer {
	return &ACLSyncer{client: client}
}

type rule struct {
	ResourceType        kmsg.ACLResourceType
	ResourceName        string
	ResourcePatternType kmsg.ACLResourcePatternType
	Principal           string
	Host                string
	Operation           kmsg.ACLOperation
	PermissionType      kmsg.ACLPermissionType
}

// operationsFor maps a grant's permission onto broker ACL operations. Only
// broker-native resource kinds produce rules; CONNECT, CONNECT_CLUSTER and
// SCHEMA have no broker equivalent.
func operationsFor(spec model.AccessControlEntrySpec) []kmsg.ACLOperation {
	switch spec.ResourceType {
	case model.ResourceTypeTopic:
		switch spec.Permission {
		case model.PermissionOwner:
			return []kmsg.ACLOperation{
				kmsg.ACLOperationRead, kmsg.ACLOperationWrite,
				kmsg.ACLOperationDescribe, kmsg.ACLOperationDescribeConfigs,
			}
		case model.PermissionRead:
			return []kmsg.ACLOperation{kmsg.ACLOperationRead, kmsg.ACLOperationDescribe}
		case model.PermissionWrite:
			return []kmsg.ACLOperation{kmsg.ACLOperationWrite, kmsg.ACLOperationDescribe}
		}
	case model.ResourceTypeGroup:
		return []kmsg.ACLOperation{kmsg.ACLOperationRead, kmsg.ACLOperationDescribe}
	case model.ResourceTypeTransactionalID:
		return []kmsg.ACLOperation{kmsg.ACLOperationDescribe, kmsg.ACLOperationWrite}
	}
	return nil
}

func rulesFromGrant(principal string, grant *model.AccessControlEntry) []rule {
	operations := operationsFor(grant.Spec)
	rules := make([]rule, 0, len(operations))
	for _, operation := range operations {
		rules = append(rules, rule{
			ResourceType:        grant.Spec.ResourceType.ToKafka(),
			ResourceName:        grant.Spec.Resource,
			ResourcePatternType: grant.Spec.ResourcePatternType.ToKafka(),
			Principal:           principal,
			Host:                "*",
			Operation:           operation,
			PermissionType:      kmsg.ACLPermissionTypeAllow,
		})
	}
	return rules
}

// Sync converges the broker ACLs of the given principal onto the rules
// derived from the grants, creating missing ones and deleting extraneous
// ones.
func (s *ACLSyncer) Sync(ctx context.Context, principal string, grants []*model.AccessControlEntry) error {
	existing, err := s.listACLs(ctx, principal)
	if err != nil {
		return errors.Wrap(err, "listing ACLs")
	}

	desired := collections.NewSet[rule]()
	for _, grant := range grants {
		desired.Add(rulesFromGrant(principal, grant)...)
	}

	creations := collections.MapSlice(desired.Difference(existing).Values(), ruleToCreation)
	deletions := collections.MapSlice(existing.Difference(desired).Values(), ruleToDeletionFilter)

	if err := s.createACLs(ctx, creations); err != nil {
		return errors.Wrap(err, "creating ACLs")
	}
	if err := s.deleteACLs(ctx, deletions); err != nil {
		return errors.Wrap(err, "deleting ACLs")
	}
	return nil
}

// DeleteAll removes every broker ACL of the principal, used when a namespace
// is decommissioned.
func (s *ACLSyncer) DeleteAll(ctx context.Context, principal string) error {
	return s.deleteACLs(ctx, []kmsg.DeleteACLsRequestFilter{{
		PermissionType:      kmsg.ACLPermissionTypeAny,
		ResourceType:        kmsg.ACLResourceTypeAny,
		ResourcePatternType: kmsg.ACLResourcePatternTypeAny,
		Principal:           kmsg.StringPtr(principal),
		Operation:           kmsg.ACLOperationAny,
	}})
}

func (s *ACLSyncer) listACLs(ctx context.Context, principal string) (*collections.Set[rule], error) {
	req := kmsg.NewPtrDescribeACLsRequest()
	req.PermissionType = kmsg.ACLPermissionTypeAny
	req.ResourceType = kmsg.ACLResourceTypeAny
	req.Principal = kmsg.StringPtr(principal)
	req.Operation = kmsg.ACLOperationAny
	req.ResourcePatternType = kmsg.ACLResourcePatternTypeAny

	response, err := req.RequestWith(ctx, s.client)
	if err != nil {
		return nil, err
	}
	if err := checkError(response.ErrorMessage, response.ErrorCode); err != nil {
		return nil, err
	}

	rules := collections.NewSet[rule]()
	for _, resource := range response.Resources {
		for _, acl := range resource.ACLs {
			rules.Add(rule{
				ResourceType:        resource.ResourceType,
				ResourceName:        resource.ResourceName,
				ResourcePatternType: resource.ResourcePatternType,
				Principal:           acl.Principal,
				Host:                acl.Host,
				Operation:           acl.Operation,
				PermissionType:      acl.PermissionType,
			})
		}
	}
	return rules, nil
}

func (s *ACLSyncer) createACLs(ctx context.Context, creations []kmsg.CreateACLsRequestCreation) error {
	if len(creations) == 0 {
		return nil
	}

	req := kmsg.NewPtrCreateACLsRequest()
	req.Creations = creations

	response, err := req.RequestWith(ctx, s.client)
	if err != nil {
		return err
	}
	for _, result := range response.Results {
		if err := checkError(result.ErrorMessage, result.ErrorCode); err != nil {
			return err
		}
	}
	return nil
}

func (s *ACLSyncer) deleteACLs(ctx context.Context, deletions []kmsg.DeleteACLsRequestFilter) error {
	if len(deletions) == 0 {
		return nil
	}

	req := kmsg.NewPtrDeleteACLsRequest()
	req.Filters = deletions

	response, err := req.RequestWith(ctx, s.client)
	if err != nil {
		return err
	}
	for _, result := range response.Results {
		if err := checkError(result.ErrorMessage, result.ErrorCode); err != nil {
			return err
		}
	}
	return nil
}

func ruleToCreation(r rule) kmsg.CreateACLsRequestCreation {
	return kmsg.CreateACLsRequestCreation{
		ResourceType:        r.ResourceType,
		ResourceName:        r.ResourceName,
		ResourcePatternType: r.ResourcePatternType,
		Principal:           r.Principal,
		Host:                r.Host,
		Operation:           r.Operation,
		PermissionType:      r.PermissionType,
	}
}

func ruleToDeletionFilter(r rule) kmsg.DeleteACLsRequestFilter {
	return kmsg.DeleteACLsRequestFilter{
		ResourceType:        r.ResourceType,
		ResourceName:        &r.ResourceName,
		ResourcePatternType: r.ResourcePatternType,
		Principal:           &r.Principal,
		Host:                &r.Host,
		Operation:           r.Operation,
		PermissionType:      r.PermissionType,
	}
}

func checkError(message *string, code int16) error {
	if code != 0 {
		err := kerr.ErrorForCode(code)
		if message != nil {
			return errors.Wrap(err, *message)
		}
		return err
	}
	return nil
}
