// Copyright 2024 Redpanda Data, Inc.
//
// Use of this software is governed by the Business Source License
// included in the file licenses/BSL.md
//
// As of the Change Date specified in that file, in accordance with
// the Business Source License, use of this software will be governed
// by the Apache License, Version 2.0

// Package store defines the repository contracts the control plane reads and
// writes desired state through. Implementations must provide strongly
// consistent create/read/list/delete by name and must serialize grant
// creation so the admission validator's overlap snapshot cannot be raced by
// a concurrent writer.
package store

import (
	"context"

	"github.com/cockroachdb/errors"

	"github.com/redpanda-data/tenancy/internal/model"
)

// Typed failures callers map independently of validation errors. Not-found
// and conflict are repository-level conditions, never admission ones.
var (
	ErrNotFound = errors.New("resource not found")
	ErrConflict = errors.New("resource version conflict")
)

// IsNotFound reports whether err stems from a missing record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// Namespaces is the repository for tenant records.
type Namespaces interface {
	FindByName(ctx context.Context, name string) (*model.Namespace, error)
	FindAll(ctx context.Context) ([]*model.Namespace, error)
	// Create upserts keyed by name.
	Create(ctx context.Context, namespace *model.Namespace) error
	Delete(ctx context.Context, name string) error
}

// RoleBindings is the repository for role binding records.
type RoleBindings interface {
	FindAllForNamespace(ctx context.Context, namespace string) ([]*model.RoleBinding, error)
	// FindAllForSubjects returns every binding whose subject matches the
	// given user name or any of the group names. Used once per request to
	// build the principal's binding snapshot.
	FindAllForSubjects(ctx context.Context, user string, groups []string) ([]*model.RoleBinding, error)
	Create(ctx context.Context, binding *model.RoleBinding) error
	Delete(ctx context.Context, namespace, name string) error
}

// AccessControlEntries is the repository for grant records.
type AccessControlEntries interface {
	FindByName(ctx context.Context, name string) (*model.AccessControlEntry, error)
	FindAll(ctx context.Context) ([]*model.AccessControlEntry, error)
	FindAllGrantedTo(ctx context.Context, namespace string) ([]*model.AccessControlEntry, error)
	Create(ctx context.Context, entry *model.AccessControlEntry) error
	Delete(ctx context.Context, name string) error
}

// Topics is the repository for desired topic specs.
type Topics interface {
	FindByName(ctx context.Context, cluster, name string) (*model.Topic, error)
	FindAllForCluster(ctx context.Context, cluster string) ([]*model.Topic, error)
	FindAllForNamespace(ctx context.Context, namespace string) ([]*model.Topic, error)
	Create(ctx context.Context, topic *model.Topic) error
	Delete(ctx context.Context, cluster, name string) error
}

// Connectors is the repository for desired connector specs.
type Connectors interface {
	FindByName(ctx context.Context, cluster, name string) (*model.Connector, error)
	FindAllForCluster(ctx context.Context, cluster string) ([]*model.Connector, error)
	Create(ctx context.Context, connector *model.Connector) error
	Delete(ctx context.Context, cluster, name string) error
}

// Schemas is the repository for desired schema subjects.
type Schemas interface {
	FindByName(ctx context.Context, cluster, subject string) (*model.Schema, error)
	FindAllForCluster(ctx context.Context, cluster string) ([]*model.Schema, error)
	Create(ctx context.Context, schema *model.Schema) error
	Delete(ctx context.Context, cluster, subject string) error
}

// Store bundles the per-kind repositories.
type Store struct {
	Namespaces           Namespaces
	RoleBindings         RoleBindings
	AccessControlEntries AccessControlEntries
	Topics               Topics
	Connectors           Connectors
	Schemas              Schemas
}
