// Copyright 2024 Redpanda Data, Inc.
//
// Use of this software is governed by the Business Source License
// included in the file licenses/BSL.md
//
// As of the Change Date specified in that file, in accordance with
// the Business Source License, use of this software will be governed
// by the Apache License, Version 2.0

package service

import (
	"context"
	"testing"

	"github.com/go-logr/logr/testr"
	"github.com/stretchr/testify/require"

	"github.com/redpanda-data/tenancy/internal/admission"
	"github.com/redpanda-data/tenancy/internal/model"
	"github.com/redpanda-data/tenancy/internal/security"
	"github.com/redpanda-data/tenancy/internal/store"
)

const adminGroup = "platform-admins"

type fixture struct {
	store   *store.Store
	service *Service
}

func newFixture(t *testing.T) *fixture {
	st := store.NewMemory()
	engine := security.NewEngine(st.Namespaces, adminGroup)
	return &fixture{
		store:   st,
		service: New(st, engine, nil, testr.New(t)),
	}
}

func (f *fixture) seedNamespace(t *testing.T, name string, mutate func(*model.NamespaceSpec)) {
	t.Helper()
	namespace := &model.Namespace{
		Metadata: model.Metadata{Name: name},
		Spec: model.NamespaceSpec{
			Cluster: "c1",
			User:    name + "-svc",
		},
	}
	if mutate != nil {
		mutate(&namespace.Spec)
	}
	require.NoError(t, f.store.Namespaces.Create(context.Background(), namespace))
}

// seedOwnership installs the namespace's initial OWNER grant over its own
// prefix, the way an administrator provisions a fresh tenant.
func (f *fixture) seedOwnership(t *testing.T, namespace, prefix string) {
	t.Helper()
	err := f.service.CreateGrant(context.Background(), adminPrincipal(), namespace, &model.AccessControlEntry{
		Metadata: model.Metadata{Name: namespace + "-owner"},
		Spec: model.AccessControlEntrySpec{
			ResourceType:        model.ResourceTypeTopic,
			Resource:            prefix,
			ResourcePatternType: model.PatternTypePrefixed,
			Permission:          model.PermissionOwner,
			GrantedTo:           namespace,
		},
	})
	require.NoError(t, err)
}

func adminPrincipal() *security.Principal {
	return &security.Principal{Name: "User:root", Roles: []security.Role{security.RoleAdmin}}
}

// tenantPrincipal can do everything on topics, connectors and acls inside the
// given namespace.
func tenantPrincipal(name, namespace string) *security.Principal {
	return &security.Principal{
		Name: "User:" + name,
		RoleBindings: []*model.RoleBinding{{
			Metadata: model.Metadata{Name: namespace + "-ops", Namespace: namespace},
			Spec: model.RoleBindingSpec{
				Role: model.Role{
					ResourceTypes: []string{"topic", "topic/records", "connector", "acl"},
					Verbs:         []model.Verb{model.VerbGet, model.VerbPost, model.VerbPut, model.VerbDelete},
				},
				Subject: model.Subject{SubjectType: model.SubjectTypeUser, SubjectName: "User:" + name},
			},
		}},
	}
}

func TestCreateTopicInsideOwnership(t *testing.T) {
	f := newFixture(t)
	f.seedNamespace(t, "ns1", nil)
	f.seedOwnership(t, "ns1", "ns1.")

	err := f.service.CreateTopic(context.Background(), tenantPrincipal("alice", "ns1"), "ns1", &model.Topic{
		Metadata: model.Metadata{Name: "ns1.orders"},
		Spec:     model.TopicSpec{Partitions: 3, ReplicationFactor: 3},
	})
	require.NoError(t, err)

	topic, err := f.store.Topics.FindByName(context.Background(), "c1", "ns1.orders")
	require.NoError(t, err)
	require.Equal(t, "ns1", topic.Metadata.Namespace)
	require.Equal(t, model.PhasePending, topic.Status.Phase)
}

func TestCreateTopicOutsideOwnership(t *testing.T) {
	f := newFixture(t)
	f.seedNamespace(t, "ns1", nil)
	f.seedOwnership(t, "ns1", "ns1.")

	err := f.service.CreateTopic(context.Background(), tenantPrincipal("alice", "ns1"), "ns1", &model.Topic{
		Metadata: model.Metadata{Name: "ns2.orders"},
		Spec:     model.TopicSpec{Partitions: 3, ReplicationFactor: 3},
	})
	require.ErrorIs(t, err, ErrOutsideOwnership)
}

func TestCreateTopicUnauthorized(t *testing.T) {
	f := newFixture(t)
	f.seedNamespace(t, "ns1", nil)
	f.seedNamespace(t, "ns2", nil)

	// A principal bound to ns2 has no say in ns1.
	err := f.service.CreateTopic(context.Background(), tenantPrincipal("bob", "ns2"), "ns1", &model.Topic{
		Metadata: model.Metadata{Name: "ns1.orders"},
	})
	require.ErrorIs(t, err, ErrNotAuthorized)
}

func TestCreateTopicValidationBatch(t *testing.T) {
	f := newFixture(t)
	f.seedNamespace(t, "ns1", func(spec *model.NamespaceSpec) {
		spec.TopicValidation = []model.ValidationRule{
			{Field: "partitions", Kind: model.ValidationRange, Min: 1, Max: 12},
			{Field: "replicationFactor", Kind: model.ValidationRange, Min: 2, Max: 3},
		}
	})
	f.seedOwnership(t, "ns1", "ns1.")

	err := f.service.CreateTopic(context.Background(), tenantPrincipal("alice", "ns1"), "ns1", &model.Topic{
		Metadata: model.Metadata{Name: "ns1.orders"},
		Spec:     model.TopicSpec{Partitions: 100, ReplicationFactor: 1},
	})
	require.Error(t, err)

	var batch admission.Errors
	require.ErrorAs(t, err, &batch)
	require.Len(t, batch, 2)
}

func TestTopicDeletionProtectionGate(t *testing.T) {
	f := newFixture(t)
	f.seedNamespace(t, "ns1", func(spec *model.NamespaceSpec) {
		spec.ProtectionEnabled = true
	})
	f.seedOwnership(t, "ns1", "ns1.")

	alice := tenantPrincipal("alice", "ns1")
	require.NoError(t, f.service.CreateTopic(context.Background(), alice, "ns1", &model.Topic{
		Metadata: model.Metadata{Name: "ns1.orders"},
		Spec:     model.TopicSpec{Partitions: 3, ReplicationFactor: 3},
	}))

	err := f.service.RequestTopicDeletion(context.Background(), alice, "ns1", "ns1.orders")
	require.ErrorIs(t, err, ErrProtected)

	// Administrators bypass protection.
	require.NoError(t, f.service.RequestTopicDeletion(context.Background(), adminPrincipal(), "ns1", "ns1.orders"))

	topic, err := f.store.Topics.FindByName(context.Background(), "c1", "ns1.orders")
	require.NoError(t, err)
	require.True(t, topic.DeletionRequested)
}

func TestSelfGrantRequiresAdmin(t *testing.T) {
	f := newFixture(t)
	f.seedNamespace(t, "ns1", nil)

	grant := &model.AccessControlEntry{
		Metadata: model.Metadata{Name: "ns1-owner"},
		Spec: model.AccessControlEntrySpec{
			ResourceType:        model.ResourceTypeTopic,
			Resource:            "ns1.",
			ResourcePatternType: model.PatternTypePrefixed,
			Permission:          model.PermissionOwner,
			GrantedTo:           "ns1",
		},
	}

	err := f.service.CreateGrant(context.Background(), tenantPrincipal("alice", "ns1"), "ns1", grant)
	var batch admission.Errors
	require.ErrorAs(t, err, &batch)

	require.NoError(t, f.service.CreateGrant(context.Background(), adminPrincipal(), "ns1", grant))
}

func TestCreateConnectorGatesConnectCluster(t *testing.T) {
	f := newFixture(t)
	f.seedNamespace(t, "ns1", func(spec *model.NamespaceSpec) {
		spec.ConnectClusters = []string{"analytics"}
	})

	require.NoError(t, f.store.AccessControlEntries.Create(context.Background(), &model.AccessControlEntry{
		Metadata: model.Metadata{Name: "ns1-connect-owner", Namespace: "ns1"},
		Spec: model.AccessControlEntrySpec{
			ResourceType:        model.ResourceTypeConnect,
			Resource:            "ns1.",
			ResourcePatternType: model.PatternTypePrefixed,
			Permission:          model.PermissionOwner,
			GrantedTo:           "ns1",
		},
	}))

	alice := tenantPrincipal("alice", "ns1")

	err := f.service.CreateConnector(context.Background(), alice, "ns1", &model.Connector{
		Metadata: model.Metadata{Name: "ns1.sink"},
		Spec: model.ConnectorSpec{
			ConnectCluster: "untracked",
			Config:         map[string]string{"connector.class": "S3Sink"},
		},
	})
	require.ErrorIs(t, err, ErrUnknownConnectCluster)

	require.NoError(t, f.service.CreateConnector(context.Background(), alice, "ns1", &model.Connector{
		Metadata: model.Metadata{Name: "ns1.sink"},
		Spec: model.ConnectorSpec{
			ConnectCluster: "analytics",
			Config:         map[string]string{"connector.class": "S3Sink"},
		},
	}))
}

func TestDeleteGrantNotFound(t *testing.T) {
	f := newFixture(t)
	f.seedNamespace(t, "ns1", nil)

	err := f.service.DeleteGrant(context.Background(), adminPrincipal(), "ns1", "nope")
	require.True(t, store.IsNotFound(err))
}
