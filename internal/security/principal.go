// Copyright 2024 Redpanda Data, Inc.
//
// Use of this software is governed by the Business Source License
// included in the file licenses/BSL.md
//
// As of the Change Date specified in that file, in accordance with
// the Business Source License, use of this software will be governed
// by the Apache License, Version 2.0

package security

import (
	"slices"

	"github.com/redpanda-data/tenancy/internal/model"
)

// Role is an internal role name. The only role with intrinsic meaning is
// RoleAdmin; everything else is expressed through role bindings.
type Role string

// RoleAdmin bypasses per-binding checks. The namespace must still exist.
const RoleAdmin Role = "isAdmin()"

// Principal is the typed identity built once at authentication time. All
// downstream code depends on this structure, never on raw token claims.
type Principal struct {
	// Name is the authenticated identity, e.g. "User:alice".
	Name string
	// Roles holds the internal roles resolved from group membership.
	Roles []Role
	// RoleBindings is the snapshot of bindings whose subject matched the
	// identity, across all namespaces it can reach.
	RoleBindings []*model.RoleBinding
}

// IsAdmin reports whether the principal carries the administrator role.
func (p *Principal) IsAdmin() bool {
	return slices.Contains(p.Roles, RoleAdmin)
}

// HasClaims reports whether authentication attached anything to the
// principal at all. A principal with no roles and no bindings yields an
// indeterminate authorization decision so other rules in a chain can take
// over.
func (p *Principal) HasClaims() bool {
	return len(p.Roles) > 0 || len(p.RoleBindings) > 0
}

// BindingsFor returns the principal's bindings scoped to one namespace.
func (p *Principal) BindingsFor(namespace string) []*model.RoleBinding {
	var scoped []*model.RoleBinding
	for _, binding := range p.RoleBindings {
		if binding.Metadata.Namespace == namespace {
			scoped = append(scoped, binding)
		}
	}
	return scoped
}
