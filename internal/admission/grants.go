// Copyright 2024 Redpanda Data, Inc.
//
// Use of this software is governed by the Business Source License
// included in the file licenses/BSL.md
//
// As of the Change Date specified in that file, in accordance with
// the Business Source License, use of this software will be governed
// by the Apache License, Version 2.0

package admission

import (
	"context"
	"fmt"

	"github.com/cockroachdb/errors"

	"github.com/redpanda-data/tenancy/internal/model"
	"github.com/redpanda-data/tenancy/internal/pattern"
	"github.com/redpanda-data/tenancy/internal/store"
)

// Rule names reported in FieldError.Rule.
const (
	RuleSelfGrant   = "self-grant"
	RuleOwnership   = "ownership-overlap"
	RuleImmutable   = "immutable-spec"
	RuleDeleteAdmin = "self-assigned-delete"
	RuleDeleteOwner = "grantor-delete"
)

// GrantValidator is the admission gate for access control entries. It reads
// the existing grant set as a snapshot; the store must guarantee that no
// concurrent writer can land a second overlapping OWNER grant between that
// snapshot and the subsequent Create.
type GrantValidator struct {
	entries store.AccessControlEntries
}

// NewGrantValidator constructs a GrantValidator over the given repository.
func NewGrantValidator(entries store.AccessControlEntries) *GrantValidator {
	return &GrantValidator{entries: entries}
}

// ValidateCreate runs every applicable admission rule against the proposed
// grant and returns the complete batch of violations. actingNamespace is the
// namespace issuing the grant; asAdmin marks an administrator acting on its
// behalf, which permits the self-grant itself while still enforcing OWNER
// overlap.
func (v *GrantValidator) ValidateCreate(ctx context.Context, proposed *model.AccessControlEntry, actingNamespace string, asAdmin bool) (Errors, error) {
	var batch Errors

	if proposed.Spec.GrantedTo == actingNamespace && !asAdmin {
		batch = append(batch, FieldError{
			Field:   "grantedTo",
			Rule:    RuleSelfGrant,
			Message: fmt.Sprintf("a namespace may not grant itself %q over %q; self-assigned grants require an administrator", proposed.Spec.Permission, proposed.Spec.Resource),
		})
	}

	existing, err := v.entries.FindAll(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "listing existing grants")
	}

	if proposed.Spec.Permission == model.PermissionOwner {
		batch = append(batch, v.checkOwnerOverlap(proposed, actingNamespace, existing)...)
	}

	batch = append(batch, v.checkImmutability(proposed, existing)...)

	return batch, nil
}

// checkOwnerOverlap rejects OWNER grants whose resource pattern intersects
// an existing OWNER grant issued by a different namespace. Ownership is the
// basis for all subsequent mutation rights, so two tenants may never own
// intersecting resource names.
func (v *GrantValidator) checkOwnerOverlap(proposed *model.AccessControlEntry, actingNamespace string, existing []*model.AccessControlEntry) Errors {
	var batch Errors

	for _, entry := range existing {
		if entry.Metadata.Name == proposed.Metadata.Name {
			continue
		}
		if entry.Spec.Permission != model.PermissionOwner {
			continue
		}
		if entry.Spec.ResourceType != proposed.Spec.ResourceType {
			continue
		}
		if entry.Metadata.Namespace == actingNamespace {
			continue
		}
		if pattern.Overlaps(
			proposed.Spec.Resource, proposed.Spec.ResourcePatternType,
			entry.Spec.Resource, entry.Spec.ResourcePatternType,
		) {
			batch = append(batch, FieldError{
				Field:   "resource",
				Rule:    RuleOwnership,
				Message: fmt.Sprintf("%s %q overlaps with %q already owned by namespace %q", proposed.Spec.ResourceType, proposed.Spec.Resource, entry.Spec.Resource, entry.Metadata.Namespace),
			})
		}
	}

	return batch
}

// checkImmutability rejects resubmission of an existing grant name with a
// diverging spec. Resubmitting the identical spec is a no-op and passes.
func (v *GrantValidator) checkImmutability(proposed *model.AccessControlEntry, existing []*model.AccessControlEntry) Errors {
	for _, entry := range existing {
		if entry.Metadata.Name != proposed.Metadata.Name {
			continue
		}
		if entry.Spec.SpecEquals(proposed.Spec) {
			return nil
		}
		return Errors{{
			Field:   "spec",
			Rule:    RuleImmutable,
			Message: fmt.Sprintf("grant %q already exists with a different spec; only metadata may change", proposed.Metadata.Name),
		}}
	}
	return nil
}

// ValidateDelete gates grant deletion: a self-assigned grant may only be
// deleted by an administrator, any other grant only by the namespace that
// created it. A missing grant surfaces as the store's not-found error.
func (v *GrantValidator) ValidateDelete(ctx context.Context, name, actingNamespace string, asAdmin bool) (*model.AccessControlEntry, error) {
	entry, err := v.entries.FindByName(ctx, name)
	if err != nil {
		return nil, err
	}

	if asAdmin {
		return entry, nil
	}

	if entry.IsSelfAssigned() {
		return nil, Errors{{
			Field:   "name",
			Rule:    RuleDeleteAdmin,
			Message: fmt.Sprintf("grant %q is self-assigned and may only be deleted by an administrator", name),
		}}
	}

	if entry.Metadata.Namespace != actingNamespace {
		return nil, Errors{{
			Field:   "name",
			Rule:    RuleDeleteOwner,
			Message: fmt.Sprintf("grant %q may only be deleted by namespace %q", name, entry.Metadata.Namespace),
		}}
	}

	return entry, nil
}
