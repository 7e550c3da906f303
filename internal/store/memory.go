// Copyright 2024 Redpanda Data, Inc.
//
// Use of this software is governed by the Business Source License
// included in the file licenses/BSL.md
//
// As of the Change Date specified in that file, in accordance with
// the Business Source License, use of this software will be governed
// by the Apache License, Version 2.0

package store

import (
	"context"
	"sync"

	"github.com/cockroachdb/errors"

	"github.com/redpanda-data/tenancy/internal/model"
)

// NewMemory returns a Store backed by in-process maps. A single RWMutex per
// repository serializes writers, which is what gives the grant validator its
// snapshot-then-write atomicity in this implementation.
func NewMemory() *Store {
	return &Store{
		Namespaces:           &memoryNamespaces{items: map[string]*model.Namespace{}},
		RoleBindings:         &memoryRoleBindings{items: map[string]*model.RoleBinding{}},
		AccessControlEntries: &memoryACLs{items: map[string]*model.AccessControlEntry{}},
		Topics:               &memoryTopics{items: map[string]*model.Topic{}},
		Connectors:           &memoryConnectors{items: map[string]*model.Connector{}},
		Schemas:              &memorySchemas{items: map[string]*model.Schema{}},
	}
}

func clusterKey(cluster, name string) string {
	return cluster + "/" + name
}

type memoryNamespaces struct {
	mu    sync.RWMutex
	items map[string]*model.Namespace
}

func (m *memoryNamespaces) FindByName(_ context.Context, name string) (*model.Namespace, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ns, ok := m.items[name]
	if !ok {
		return nil, errors.Wrapf(ErrNotFound, "namespace %q", name)
	}
	return ns, nil
}

func (m *memoryNamespaces) FindAll(context.Context) ([]*model.Namespace, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	namespaces := make([]*model.Namespace, 0, len(m.items))
	for _, ns := range m.items {
		namespaces = append(namespaces, ns)
	}
	return namespaces, nil
}

func (m *memoryNamespaces) Create(_ context.Context, namespace *model.Namespace) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[namespace.Metadata.Name] = namespace
	return nil
}

func (m *memoryNamespaces) Delete(_ context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[name]; !ok {
		return errors.Wrapf(ErrNotFound, "namespace %q", name)
	}
	delete(m.items, name)
	return nil
}

type memoryRoleBindings struct {
	mu    sync.RWMutex
	items map[string]*model.RoleBinding
}

func (m *memoryRoleBindings) FindAllForNamespace(_ context.Context, namespace string) ([]*model.RoleBinding, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var bindings []*model.RoleBinding
	for _, binding := range m.items {
		if binding.Metadata.Namespace == namespace {
			bindings = append(bindings, binding)
		}
	}
	return bindings, nil
}

func (m *memoryRoleBindings) FindAllForSubjects(_ context.Context, user string, groups []string) ([]*model.RoleBinding, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var bindings []*model.RoleBinding
	for _, binding := range m.items {
		if binding.Spec.Subject.Matches(user, groups) {
			bindings = append(bindings, binding)
		}
	}
	return bindings, nil
}

func (m *memoryRoleBindings) Create(_ context.Context, binding *model.RoleBinding) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[clusterKey(binding.Metadata.Namespace, binding.Metadata.Name)] = binding
	return nil
}

func (m *memoryRoleBindings) Delete(_ context.Context, namespace, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := clusterKey(namespace, name)
	if _, ok := m.items[key]; !ok {
		return errors.Wrapf(ErrNotFound, "role binding %q", name)
	}
	delete(m.items, key)
	return nil
}

type memoryACLs struct {
	mu    sync.RWMutex
	items map[string]*model.AccessControlEntry
}

func (m *memoryACLs) FindByName(_ context.Context, name string) (*model.AccessControlEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	entry, ok := m.items[name]
	if !ok {
		return nil, errors.Wrapf(ErrNotFound, "access control entry %q", name)
	}
	return entry, nil
}

func (m *memoryACLs) FindAll(context.Context) ([]*model.AccessControlEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	entries := make([]*model.AccessControlEntry, 0, len(m.items))
	for _, entry := range m.items {
		entries = append(entries, entry)
	}
	return entries, nil
}

func (m *memoryACLs) FindAllGrantedTo(_ context.Context, namespace string) ([]*model.AccessControlEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var entries []*model.AccessControlEntry
	for _, entry := range m.items {
		if entry.Spec.GrantedTo == namespace {
			entries = append(entries, entry)
		}
	}
	return entries, nil
}

func (m *memoryACLs) Create(_ context.Context, entry *model.AccessControlEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[entry.Metadata.Name] = entry
	return nil
}

func (m *memoryACLs) Delete(_ context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[name]; !ok {
		return errors.Wrapf(ErrNotFound, "access control entry %q", name)
	}
	delete(m.items, name)
	return nil
}

type memoryTopics struct {
	mu    sync.RWMutex
	items map[string]*model.Topic
}

func (m *memoryTopics) FindByName(_ context.Context, cluster, name string) (*model.Topic, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	topic, ok := m.items[clusterKey(cluster, name)]
	if !ok {
		return nil, errors.Wrapf(ErrNotFound, "topic %q", name)
	}
	return topic, nil
}

func (m *memoryTopics) FindAllForCluster(_ context.Context, cluster string) ([]*model.Topic, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var topics []*model.Topic
	for _, topic := range m.items {
		if topic.Metadata.Cluster == cluster {
			topics = append(topics, topic)
		}
	}
	return topics, nil
}

func (m *memoryTopics) FindAllForNamespace(_ context.Context, namespace string) ([]*model.Topic, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var topics []*model.Topic
	for _, topic := range m.items {
		if topic.Metadata.Namespace == namespace {
			topics = append(topics, topic)
		}
	}
	return topics, nil
}

func (m *memoryTopics) Create(_ context.Context, topic *model.Topic) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[clusterKey(topic.Metadata.Cluster, topic.Metadata.Name)] = topic
	return nil
}

func (m *memoryTopics) Delete(_ context.Context, cluster, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := clusterKey(cluster, name)
	if _, ok := m.items[key]; !ok {
		return errors.Wrapf(ErrNotFound, "topic %q", name)
	}
	delete(m.items, key)
	return nil
}

type memoryConnectors struct {
	mu    sync.RWMutex
	items map[string]*model.Connector
}

func (m *memoryConnectors) FindByName(_ context.Context, cluster, name string) (*model.Connector, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	connector, ok := m.items[clusterKey(cluster, name)]
	if !ok {
		return nil, errors.Wrapf(ErrNotFound, "connector %q", name)
	}
	return connector, nil
}

func (m *memoryConnectors) FindAllForCluster(_ context.Context, cluster string) ([]*model.Connector, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var connectors []*model.Connector
	for _, connector := range m.items {
		if connector.Metadata.Cluster == cluster {
			connectors = append(connectors, connector)
		}
	}
	return connectors, nil
}

func (m *memoryConnectors) Create(_ context.Context, connector *model.Connector) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[clusterKey(connector.Metadata.Cluster, connector.Metadata.Name)] = connector
	return nil
}

func (m *memoryConnectors) Delete(_ context.Context, cluster, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := clusterKey(cluster, name)
	if _, ok := m.items[key]; !ok {
		return errors.Wrapf(ErrNotFound, "connector %q", name)
	}
	delete(m.items, key)
	return nil
}

type memorySchemas struct {
	mu    sync.RWMutex
	items map[string]*model.Schema
}

func (m *memorySchemas) FindByName(_ context.Context, cluster, subject string) (*model.Schema, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	schema, ok := m.items[clusterKey(cluster, subject)]
	if !ok {
		return nil, errors.Wrapf(ErrNotFound, "schema %q", subject)
	}
	return schema, nil
}

func (m *memorySchemas) FindAllForCluster(_ context.Context, cluster string) ([]*model.Schema, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var schemas []*model.Schema
	for _, schema := range m.items {
		if schema.Metadata.Cluster == cluster {
			schemas = append(schemas, schema)
		}
	}
	return schemas, nil
}

func (m *memorySchemas) Create(_ context.Context, schema *model.Schema) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[clusterKey(schema.Metadata.Cluster, schema.Metadata.Name)] = schema
	return nil
}

func (m *memorySchemas) Delete(_ context.Context, cluster, subject string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := clusterKey(cluster, subject)
	if _, ok := m.items[key]; !ok {
		return errors.Wrapf(ErrNotFound, "schema %q", subject)
	}
	delete(m.items, key)
	return nil
}
