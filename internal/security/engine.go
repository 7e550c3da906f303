// Copyright 2024 Redpanda Data, Inc.
//
// Use of this software is governed by the Business Source License
// included in the file licenses/BSL.md
//
// As of the Change Date specified in that file, in accordance with
// the Business Source License, use of this software will be governed
// by the Apache License, Version 2.0

// Package security implements the namespace-scoped authorization engine. It
// is read-only against the namespace store and safe for concurrent use from
// request handlers; it never blocks on downstream network calls.
package security

import (
	"context"
	"slices"
	"strings"

	"github.com/redpanda-data/tenancy/internal/model"
	"github.com/redpanda-data/tenancy/internal/store"
)

// Outcome is the three-valued result of an authorization decision.
type Outcome int

const (
	// Indeterminate means this rule has no opinion; callers treat it as
	// deny-by-default while letting other rules in a chain run.
	Indeterminate Outcome = iota
	Allowed
	Denied
)

// Reason distinguishes denial kinds so the boundary layer can map them to
// different statuses without the engine knowing about HTTP.
type Reason int

const (
	ReasonNone Reason = iota
	// ReasonUnknownNamespace: the target tenant does not exist. A hard
	// error; access decisions against a non-existent tenant are unsafe.
	ReasonUnknownNamespace
	// ReasonForbiddenNamespace: the principal has no relationship to the
	// tenant at all.
	ReasonForbiddenNamespace
)

// Decision is the result of Decide.
type Decision struct {
	Outcome Outcome
	Reason  Reason
}

func allowed() Decision       { return Decision{Outcome: Allowed} }
func indeterminate() Decision { return Decision{Outcome: Indeterminate} }
func denied(r Reason) Decision {
	return Decision{Outcome: Denied, Reason: r}
}

// Target is the parsed shape of a namespaced operation.
type Target struct {
	Namespace    string
	ResourceType string
	// Subtype is a sub-action on the resource, e.g. "restart" on a
	// connector. Bindings express it as "type/subtype".
	Subtype string
	Verb    model.Verb
}

func (t Target) resourceType() string {
	if t.Subtype != "" {
		return t.ResourceType + "/" + t.Subtype
	}
	return t.ResourceType
}

// Engine decides whether a principal may act on a namespaced resource.
type Engine struct {
	namespaces store.Namespaces
	adminGroup string
}

// NewEngine constructs an Engine. adminGroup is the federated identity group
// whose members hold the administrator role.
func NewEngine(namespaces store.Namespaces, adminGroup string) *Engine {
	return &Engine{
		namespaces: namespaces,
		adminGroup: adminGroup,
	}
}

// RolesForGroups is the sole bridge between group-based federated identity
// and the internal role vocabulary: it returns the administrator role if and
// only if the configured admin group is among the given memberships.
func (e *Engine) RolesForGroups(groups []string) []Role {
	if slices.Contains(groups, e.adminGroup) {
		return []Role{RoleAdmin}
	}
	return nil
}

// Decide evaluates whether the principal may perform the target operation.
//
// The administrator check short-circuits per-binding evaluation but runs
// only after the namespace is known to exist. An unknown tenant and a
// forbidden tenant are distinguishable denial reasons; a principal with a
// relationship to the namespace but without the specific capability gets an
// indeterminate result, not a denial.
func (e *Engine) Decide(ctx context.Context, principal *Principal, target Target) (Decision, error) {
	if !principal.HasClaims() {
		return indeterminate(), nil
	}

	if target.Namespace == "" || target.ResourceType == "" {
		// Not a namespaced-resource operation; out of scope for this
		// rule.
		return indeterminate(), nil
	}

	if _, err := e.namespaces.FindByName(ctx, target.Namespace); err != nil {
		if store.IsNotFound(err) {
			return denied(ReasonUnknownNamespace), nil
		}
		return indeterminate(), err
	}

	if principal.IsAdmin() {
		return allowed(), nil
	}

	scoped := principal.BindingsFor(target.Namespace)
	if len(scoped) == 0 {
		return denied(ReasonForbiddenNamespace), nil
	}

	for _, binding := range scoped {
		if binding.Spec.Role.Covers(target.resourceType(), target.Verb) {
			return allowed(), nil
		}
	}

	return indeterminate(), nil
}

// ParseTarget parses an API path of the shape
// /api/namespaces/{namespace}/{resourceType}[/{name}[/{subtype}]] into a
// Target. ok is false when the path does not match the namespaced-resource
// shape, in which case the engine has no opinion on the request.
func ParseTarget(path string, verb model.Verb) (Target, bool) {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) < 4 || parts[0] != "api" || parts[1] != "namespaces" {
		return Target{}, false
	}

	target := Target{
		Namespace:    parts[2],
		ResourceType: parts[3],
		Verb:         verb,
	}
	if target.Namespace == "" || target.ResourceType == "" {
		return Target{}, false
	}
	if len(parts) >= 6 {
		target.Subtype = parts[5]
	}
	return target, true
}
