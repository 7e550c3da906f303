// Copyright 2024 Redpanda Data, Inc.
//
// Use of this software is governed by the Business Source License
// included in the file licenses/BSL.md
//
// As of the Change Date specified in that file, in accordance with
// the Business Source License, use of this software will be governed
// by the Apache License, Version 2.0

package model

import "slices"

// SubjectType discriminates the identity kind a role binding refers to.
type SubjectType string

const (
	SubjectTypeGroup SubjectType = "GROUP"
	SubjectTypeUser  SubjectType = "USER"
)

// RoleBinding maps a subject (group or user) to a namespace and a capability
// set. Created by administrators when onboarding a namespace; consumed
// read-only by the authorization engine.
type RoleBinding struct {
	Metadata Metadata        `json:"metadata"`
	Spec     RoleBindingSpec `json:"spec"`
}

// RoleBindingSpec is the wire body of a role binding.
type RoleBindingSpec struct {
	Role    Role    `json:"role"`
	Subject Subject `json:"subject"`
}

// Role is the capability set side of a binding: which resource types may be
// touched with which verbs.
type Role struct {
	ResourceTypes []string `json:"resourceTypes"`
	Verbs         []Verb   `json:"verbs"`
}

// Subject is the identity side of a binding.
type Subject struct {
	SubjectType SubjectType `json:"subjectType"`
	SubjectName string      `json:"subjectName"`
}

// Covers reports whether the binding's role permits the given resource type
// and verb. Sub-actions are expressed as "type/subtype" by the caller.
func (r Role) Covers(resourceType string, verb Verb) bool {
	return slices.Contains(r.ResourceTypes, resourceType) && slices.Contains(r.Verbs, verb)
}

// Matches reports whether the binding's subject is one of the given group
// names or the given user name.
func (s Subject) Matches(user string, groups []string) bool {
	switch s.SubjectType {
	case SubjectTypeUser:
		return s.SubjectName == user
	case SubjectTypeGroup:
		return slices.Contains(groups, s.SubjectName)
	}
	return false
}
