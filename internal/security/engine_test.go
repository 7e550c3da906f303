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
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/redpanda-data/tenancy/internal/model"
	"github.com/redpanda-data/tenancy/internal/store"
)

const adminGroup = "kafka-admins"

func testEngine(t *testing.T, namespaces ...string) *Engine {
	t.Helper()

	repo := store.NewMemory()
	for _, name := range namespaces {
		require.NoError(t, repo.Namespaces.Create(context.Background(), &model.Namespace{
			Metadata: model.Metadata{Name: name},
			Spec:     model.NamespaceSpec{Cluster: "local", User: "user-" + name},
		}))
	}
	return NewEngine(repo.Namespaces, adminGroup)
}

func binding(namespace string, resourceTypes []string, verbs []model.Verb) *model.RoleBinding {
	return &model.RoleBinding{
		Metadata: model.Metadata{Name: namespace + "-rb", Namespace: namespace},
		Spec: model.RoleBindingSpec{
			Role: model.Role{ResourceTypes: resourceTypes, Verbs: verbs},
			Subject: model.Subject{
				SubjectType: model.SubjectTypeGroup,
				SubjectName: "team-" + namespace,
			},
		},
	}
}

func TestDecide(t *testing.T) {
	ctx := context.Background()
	engine := testEngine(t, "ns1", "ns2")

	member := &Principal{
		Name: "User:alice",
		RoleBindings: []*model.RoleBinding{
			binding("ns1", []string{"topics", "acls"}, []model.Verb{model.VerbGet, model.VerbPost}),
		},
	}
	admin := &Principal{Name: "User:root", Roles: []Role{RoleAdmin}}

	t.Run("no claims is indeterminate", func(t *testing.T) {
		decision, err := engine.Decide(ctx, &Principal{Name: "User:nobody"}, Target{
			Namespace: "ns1", ResourceType: "topics", Verb: model.VerbGet,
		})
		require.NoError(t, err)
		require.Equal(t, Indeterminate, decision.Outcome)
	})

	t.Run("unknown namespace denied before binding evaluation", func(t *testing.T) {
		for _, principal := range []*Principal{member, admin} {
			decision, err := engine.Decide(ctx, principal, Target{
				Namespace: "ghost", ResourceType: "topics", Verb: model.VerbGet,
			})
			require.NoError(t, err)
			require.Equal(t, Denied, decision.Outcome)
			require.Equal(t, ReasonUnknownNamespace, decision.Reason)
		}
	})

	t.Run("admin allowed on any existing namespace", func(t *testing.T) {
		decision, err := engine.Decide(ctx, admin, Target{
			Namespace: "ns2", ResourceType: "topics", Verb: model.VerbDelete,
		})
		require.NoError(t, err)
		require.Equal(t, Allowed, decision.Outcome)
	})

	t.Run("no relationship to namespace is forbidden", func(t *testing.T) {
		decision, err := engine.Decide(ctx, member, Target{
			Namespace: "ns2", ResourceType: "topics", Verb: model.VerbGet,
		})
		require.NoError(t, err)
		require.Equal(t, Denied, decision.Outcome)
		require.Equal(t, ReasonForbiddenNamespace, decision.Reason)
	})

	t.Run("capability match allowed", func(t *testing.T) {
		decision, err := engine.Decide(ctx, member, Target{
			Namespace: "ns1", ResourceType: "topics", Verb: model.VerbPost,
		})
		require.NoError(t, err)
		require.Equal(t, Allowed, decision.Outcome)
	})

	t.Run("missing verb is indeterminate", func(t *testing.T) {
		decision, err := engine.Decide(ctx, member, Target{
			Namespace: "ns1", ResourceType: "topics", Verb: model.VerbDelete,
		})
		require.NoError(t, err)
		require.Equal(t, Indeterminate, decision.Outcome)
	})

	t.Run("missing resource type is indeterminate", func(t *testing.T) {
		decision, err := engine.Decide(ctx, member, Target{
			Namespace: "ns1", ResourceType: "connectors", Verb: model.VerbGet,
		})
		require.NoError(t, err)
		require.Equal(t, Indeterminate, decision.Outcome)
	})

	t.Run("subtype concatenated as type slash subtype", func(t *testing.T) {
		restarter := &Principal{
			Name: "User:bob",
			RoleBindings: []*model.RoleBinding{
				binding("ns1", []string{"connectors/restart"}, []model.Verb{model.VerbPost}),
			},
		}

		decision, err := engine.Decide(ctx, restarter, Target{
			Namespace: "ns1", ResourceType: "connectors", Subtype: "restart", Verb: model.VerbPost,
		})
		require.NoError(t, err)
		require.Equal(t, Allowed, decision.Outcome)

		decision, err = engine.Decide(ctx, restarter, Target{
			Namespace: "ns1", ResourceType: "connectors", Verb: model.VerbPost,
		})
		require.NoError(t, err)
		require.Equal(t, Indeterminate, decision.Outcome)
	})
}

// Granting the administrator role must never turn an allowed decision into
// anything else, for any existing namespace.
func TestDecideAdminMonotonicity(t *testing.T) {
	ctx := context.Background()
	engine := testEngine(t, "ns1")

	target := Target{Namespace: "ns1", ResourceType: "topics", Verb: model.VerbGet}
	principal := &Principal{
		Name: "User:alice",
		RoleBindings: []*model.RoleBinding{
			binding("ns1", []string{"topics"}, []model.Verb{model.VerbGet}),
		},
	}

	decision, err := engine.Decide(ctx, principal, target)
	require.NoError(t, err)
	require.Equal(t, Allowed, decision.Outcome)

	principal.Roles = append(principal.Roles, RoleAdmin)
	decision, err = engine.Decide(ctx, principal, target)
	require.NoError(t, err)
	require.Equal(t, Allowed, decision.Outcome)
}

func TestRolesForGroups(t *testing.T) {
	engine := testEngine(t)

	require.Equal(t, []Role{RoleAdmin}, engine.RolesForGroups([]string{"dev", adminGroup}))
	require.Empty(t, engine.RolesForGroups([]string{"dev", "ops"}))
	require.Empty(t, engine.RolesForGroups(nil))
}

func TestParseTarget(t *testing.T) {
	target, ok := ParseTarget("/api/namespaces/ns1/topics", model.VerbGet)
	require.True(t, ok)
	require.Equal(t, Target{Namespace: "ns1", ResourceType: "topics", Verb: model.VerbGet}, target)

	target, ok = ParseTarget("/api/namespaces/ns1/connectors/my-sink/restart", model.VerbPost)
	require.True(t, ok)
	require.Equal(t, "restart", target.Subtype)
	require.Equal(t, "connectors", target.ResourceType)

	for _, path := range []string{"/healthz", "/api/clusters/local", "/api/namespaces", "/api/namespaces/ns1"} {
		_, ok := ParseTarget(path, model.VerbGet)
		require.False(t, ok, path)
	}
}
