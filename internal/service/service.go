// Copyright 2024 Redpanda Data, Inc.
//
// Use of this software is governed by the Business Source License
// included in the file licenses/BSL.md
//
// As of the Change Date specified in that file, in accordance with
// the Business Source License, use of this software will be governed
// by the Apache License, Version 2.0

// Package service is the mutation surface of the control plane: every write
// runs the authorization engine, the namespace's admission rules and the
// grant validator before it reaches the store, and every accepted mutation
// emits a structured audit record through the logger.
package service

import (
	"context"
	"slices"
	"strconv"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/go-logr/logr"

	"github.com/redpanda-data/tenancy/internal/admission"
	"github.com/redpanda-data/tenancy/internal/client"
	"github.com/redpanda-data/tenancy/internal/model"
	"github.com/redpanda-data/tenancy/internal/pattern"
	"github.com/redpanda-data/tenancy/internal/security"
	"github.com/redpanda-data/tenancy/internal/store"
)

var (
	// ErrNotAuthorized covers both denial reasons; callers that need the
	// distinction inspect the engine's Decision directly.
	ErrNotAuthorized = errors.New("not authorized")
	// ErrProtected is returned when a destructive operation hits a
	// namespace with protection enabled and the caller is not an
	// administrator.
	ErrProtected = errors.New("namespace protection is enabled")
	// ErrOutsideOwnership is returned when a resource name does not match
	// any OWNER grant of the namespace.
	ErrOutsideOwnership = errors.New("resource name is outside the namespace's ownership")
	// ErrUnknownConnectCluster is returned when a connector targets a
	// connect cluster the namespace is not entitled to.
	ErrUnknownConnectCluster = errors.New("connect cluster not available to namespace")
)

// Service executes namespaced mutations end to end: authorize, admit,
// persist, audit. Reconciliation picks persisted specs up on its own ticks.
type Service struct {
	store    *store.Store
	engine   *security.Engine
	grants   *admission.GrantValidator
	registry *client.Registry
	audit    logr.Logger
	now      func() time.Time
}

// New initializes a Service.
func New(st *store.Store, engine *security.Engine, registry *client.Registry, logger logr.Logger) *Service {
	return &Service{
		store:    st,
		engine:   engine,
		grants:   admission.NewGrantValidator(st.AccessControlEntries),
		registry: registry,
		audit:    logger.WithName("audit"),
		now:      time.Now,
	}
}

// CreateTopic admits and persists a desired topic for the namespace. The
// topic name must fall inside the namespace's ownership and the spec must
// pass the namespace's declared validation rules.
func (s *Service) CreateTopic(ctx context.Context, principal *security.Principal, namespaceName string, topic *model.Topic) error {
	namespace, err := s.authorize(ctx, principal, security.Target{
		Namespace:    namespaceName,
		ResourceType: "topic",
		Verb:         model.VerbPost,
	})
	if err != nil {
		return err
	}

	if err := s.checkOwnership(ctx, namespaceName, model.ResourceTypeTopic, topic.Metadata.Name); err != nil {
		return err
	}

	validators := admission.Compile(namespace.Spec.TopicValidation)
	if err := admission.ValidateFields(validators, topicFields(topic.Spec)).OrNil(); err != nil {
		return err
	}

	topic.Metadata.Namespace = namespaceName
	topic.Metadata.Cluster = namespace.Spec.Cluster
	topic.Metadata.CreatedAt = s.now()
	topic.Metadata.UpdatedAt = topic.Metadata.CreatedAt
	topic.Status = model.Status{Phase: model.PhasePending}

	if err := s.store.Topics.Create(ctx, topic); err != nil {
		return err
	}
	s.record(principal, "topic.create", namespaceName, topic.Metadata.Name)
	return nil
}

// RequestTopicDeletion marks a topic for removal; the reconciler performs the
// actual broker deletion. Protected namespaces refuse unless the caller is an
// administrator.
func (s *Service) RequestTopicDeletion(ctx context.Context, principal *security.Principal, namespaceName, name string) error {
	namespace, err := s.authorize(ctx, principal, security.Target{
		Namespace:    namespaceName,
		ResourceType: "topic",
		Verb:         model.VerbDelete,
	})
	if err != nil {
		return err
	}
	if err := s.checkProtection(namespace, principal); err != nil {
		return err
	}

	topic, err := s.store.Topics.FindByName(ctx, namespace.Spec.Cluster, name)
	if err != nil {
		return err
	}
	if topic.Metadata.Namespace != namespaceName {
		return errors.Wrapf(ErrOutsideOwnership, "topic %q", name)
	}

	topic.DeletionRequested = true
	topic.Metadata.UpdatedAt = s.now()
	topic.Status = model.Status{Phase: model.PhasePending}

	if err := s.store.Topics.Create(ctx, topic); err != nil {
		return err
	}
	s.record(principal, "topic.delete", namespaceName, name)
	return nil
}

// TruncateTopic deletes all records of the topic up to its current end
// offsets, synchronously, and reports the resulting low-water offsets. The
// spec stays in place; only data is destroyed, hence the protection gate.
func (s *Service) TruncateTopic(ctx context.Context, principal *security.Principal, namespaceName, name string) (*model.DeleteRecordsResponse, error) {
	namespace, err := s.authorize(ctx, principal, security.Target{
		Namespace:    namespaceName,
		ResourceType: "topic",
		Subtype:      "records",
		Verb:         model.VerbDelete,
	})
	if err != nil {
		return nil, err
	}
	if err := s.checkProtection(namespace, principal); err != nil {
		return nil, err
	}

	topic, err := s.store.Topics.FindByName(ctx, namespace.Spec.Cluster, name)
	if err != nil {
		return nil, err
	}
	if topic.Metadata.Namespace != namespaceName {
		return nil, errors.Wrapf(ErrOutsideOwnership, "topic %q", name)
	}

	cluster, err := s.registry.Get(namespace.Spec.Cluster)
	if err != nil {
		return nil, err
	}
	offsets, err := cluster.Admin.TruncateTopic(ctx, name)
	if err != nil {
		return nil, err
	}

	s.record(principal, "topic.truncate", namespaceName, name)
	return &model.DeleteRecordsResponse{Topic: name, Partitions: offsets}, nil
}

// CreateGrant runs the grant validator and persists the entry. All violated
// rules are reported at once.
func (s *Service) CreateGrant(ctx context.Context, principal *security.Principal, actingNamespace string, entry *model.AccessControlEntry) error {
	if _, err := s.authorize(ctx, principal, security.Target{
		Namespace:    actingNamespace,
		ResourceType: "acl",
		Verb:         model.VerbPost,
	}); err != nil {
		return err
	}

	violations, err := s.grants.ValidateCreate(ctx, entry, actingNamespace, principal.IsAdmin())
	if err != nil {
		return err
	}
	if err := violations.OrNil(); err != nil {
		return err
	}

	entry.Metadata.Namespace = actingNamespace
	entry.Metadata.CreatedAt = s.now()
	entry.Metadata.UpdatedAt = entry.Metadata.CreatedAt

	if err := s.store.AccessControlEntries.Create(ctx, entry); err != nil {
		return err
	}
	s.record(principal, "grant.create", actingNamespace, entry.Metadata.Name)
	return nil
}

// DeleteGrant removes a grant after the deletion admission check. A missing
// grant is a not-found error, never a silent no-op.
func (s *Service) DeleteGrant(ctx context.Context, principal *security.Principal, actingNamespace, name string) error {
	if _, err := s.authorize(ctx, principal, security.Target{
		Namespace:    actingNamespace,
		ResourceType: "acl",
		Verb:         model.VerbDelete,
	}); err != nil {
		return err
	}

	if _, err := s.grants.ValidateDelete(ctx, name, actingNamespace, principal.IsAdmin()); err != nil {
		return err
	}
	if err := s.store.AccessControlEntries.Delete(ctx, name); err != nil {
		return err
	}
	s.record(principal, "grant.delete", actingNamespace, name)
	return nil
}

// CreateConnector admits and persists a desired connector. The target
// connect cluster must be one the namespace is entitled to and the connector
// name must fall inside the namespace's ownership.
func (s *Service) CreateConnector(ctx context.Context, principal *security.Principal, namespaceName string, connector *model.Connector) error {
	namespace, err := s.authorize(ctx, principal, security.Target{
		Namespace:    namespaceName,
		ResourceType: "connector",
		Verb:         model.VerbPost,
	})
	if err != nil {
		return err
	}

	if !slices.Contains(namespace.Spec.ConnectClusters, connector.Spec.ConnectCluster) {
		return errors.Wrapf(ErrUnknownConnectCluster, "%q", connector.Spec.ConnectCluster)
	}
	if err := s.checkOwnership(ctx, namespaceName, model.ResourceTypeConnect, connector.Metadata.Name); err != nil {
		return err
	}

	validators := admission.Compile(namespace.Spec.ConnectorValidation)
	if err := admission.ValidateFields(validators, connector.Spec.Config).OrNil(); err != nil {
		return err
	}

	connector.Metadata.Namespace = namespaceName
	connector.Metadata.Cluster = namespace.Spec.Cluster
	connector.Metadata.CreatedAt = s.now()
	connector.Metadata.UpdatedAt = connector.Metadata.CreatedAt
	connector.Status = model.Status{Phase: model.PhasePending}

	if err := s.store.Connectors.Create(ctx, connector); err != nil {
		return err
	}
	s.record(principal, "connector.create", namespaceName, connector.Metadata.Name)
	return nil
}

// authorize resolves the namespace and runs the engine. Any outcome other
// than Allowed is a failure here; boundary layers that need the
// unknown/forbidden distinction call the engine themselves.
func (s *Service) authorize(ctx context.Context, principal *security.Principal, target security.Target) (*model.Namespace, error) {
	decision, err := s.engine.Decide(ctx, principal, target)
	if err != nil {
		return nil, err
	}
	if decision.Outcome != security.Allowed {
		return nil, errors.Wrapf(ErrNotAuthorized, "%s %s in namespace %q", target.Verb, target.ResourceType, target.Namespace)
	}
	return s.store.Namespaces.FindByName(ctx, target.Namespace)
}

func (s *Service) checkProtection(namespace *model.Namespace, principal *security.Principal) error {
	if namespace.Spec.ProtectionEnabled && !principal.IsAdmin() {
		return errors.Wrapf(ErrProtected, "namespace %q", namespace.Metadata.Name)
	}
	return nil
}

// checkOwnership requires the resource name to match at least one OWNER grant
// of the namespace for the given resource type.
func (s *Service) checkOwnership(ctx context.Context, namespaceName string, resourceType model.ResourceType, name string) error {
	grants, err := s.store.AccessControlEntries.FindAllGrantedTo(ctx, namespaceName)
	if err != nil {
		return err
	}
	for _, grant := range grants {
		if grant.Spec.Permission != model.PermissionOwner || grant.Spec.ResourceType != resourceType {
			continue
		}
		if pattern.Matches(name, grant.Spec.Resource, grant.Spec.ResourcePatternType) {
			return nil
		}
	}
	return errors.Wrapf(ErrOutsideOwnership, "%s %q", resourceType, name)
}

func (s *Service) record(principal *security.Principal, action, namespace, resource string) {
	s.audit.Info(action,
		"principal", principal.Name,
		"namespace", namespace,
		"resource", resource,
		"admin", principal.IsAdmin(),
	)
}

func topicFields(spec model.TopicSpec) map[string]string {
	fields := map[string]string{
		"partitions":        strconv.Itoa(spec.Partitions),
		"replicationFactor": strconv.Itoa(spec.ReplicationFactor),
		"description":       spec.Description,
	}
	for key, value := range spec.Configs {
		fields["configs."+key] = value
	}
	return fields
}
