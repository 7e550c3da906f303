// Copyright 2024 Redpanda Data, Inc.
//
// Use of this software is governed by the Business Source License
// included in the file licenses/BSL.md
//
// As of the Change Date specified in that file, in accordance with
// the Business Source License, use of this software will be governed
// by the Apache License, Version 2.0

package reconcile

import (
	"context"
	"net/http"
	"sync"
	"testing"

	"github.com/go-logr/logr/testr"
	"github.com/stretchr/testify/require"

	"github.com/redpanda-data/tenancy/internal/client/connect"
	"github.com/redpanda-data/tenancy/internal/client/rest"
	"github.com/redpanda-data/tenancy/internal/model"
	"github.com/redpanda-data/tenancy/internal/store"
)

type fakeConnect struct {
	mu         sync.Mutex
	connectors map[string]*connect.Info
	states     map[string]string

	puts    []string
	pauses  []string
	resumes []string
	deletes []string
}

func newFakeConnect() *fakeConnect {
	return &fakeConnect{
		connectors: map[string]*connect.Info{},
		states:     map[string]string{},
	}
}

var _ connect.API = (*fakeConnect)(nil)

func (f *fakeConnect) List(context.Context) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	names := make([]string, 0, len(f.connectors))
	for name := range f.connectors {
		names = append(names, name)
	}
	return names, nil
}

func (f *fakeConnect) Get(_ context.Context, name string) (*connect.Info, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	info, exists := f.connectors[name]
	if !exists {
		return nil, &rest.Error{StatusCode: http.StatusNotFound}
	}
	return info, nil
}

func (f *fakeConnect) Put(_ context.Context, name string, config map[string]string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.puts = append(f.puts, name)
	f.connectors[name] = &connect.Info{Name: name, Config: config}
	if _, exists := f.states[name]; !exists {
		f.states[name] = "RUNNING"
	}
	return nil
}

func (f *fakeConnect) Delete(_ context.Context, name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletes = append(f.deletes, name)
	delete(f.connectors, name)
	delete(f.states, name)
	return nil
}

func (f *fakeConnect) Status(_ context.Context, name string) (*connect.Status, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	state, exists := f.states[name]
	if !exists {
		return nil, &rest.Error{StatusCode: http.StatusNotFound}
	}
	status := &connect.Status{Name: name}
	status.Connector.State = state
	return status, nil
}

func (f *fakeConnect) Pause(_ context.Context, name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pauses = append(f.pauses, name)
	f.states[name] = connect.Paused
	return nil
}

func (f *fakeConnect) Resume(_ context.Context, name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resumes = append(f.resumes, name)
	f.states[name] = "RUNNING"
	return nil
}

func (f *fakeConnect) Restart(context.Context, string) error { return nil }

func seedConnector(t *testing.T, connectors store.Connectors, cluster, name string, spec model.ConnectorSpec) *model.Connector {
	t.Helper()
	connector := &model.Connector{
		Metadata: model.Metadata{Name: name, Namespace: "ns1", Cluster: cluster},
		Spec:     spec,
	}
	require.NoError(t, connectors.Create(context.Background(), connector))
	return connector
}

func TestConnectorReconcilerCreatesMissing(t *testing.T) {
	st := store.NewMemory()
	api := newFakeConnect()

	seedConnector(t, st.Connectors, "c1", "ns1.sink", model.ConnectorSpec{
		ConnectCluster: "analytics",
		Config:         map[string]string{"connector.class": "S3Sink"},
	})

	reconciler := NewConnectorReconciler(st.Connectors, map[string]connect.API{"analytics": api}, testr.New(t), 4)
	require.NoError(t, reconciler.Tick(context.Background(), "c1"))

	require.Equal(t, []string{"ns1.sink"}, api.puts)

	persisted, err := st.Connectors.FindByName(context.Background(), "c1", "ns1.sink")
	require.NoError(t, err)
	require.Equal(t, model.PhaseSuccess, persisted.Status.Phase)
}

func TestConnectorReconcilerUpdatesDriftedConfig(t *testing.T) {
	st := store.NewMemory()
	api := newFakeConnect()
	api.connectors["ns1.sink"] = &connect.Info{Name: "ns1.sink", Config: map[string]string{"connector.class": "S3Sink", "flush.size": "100"}}
	api.states["ns1.sink"] = "RUNNING"

	seedConnector(t, st.Connectors, "c1", "ns1.sink", model.ConnectorSpec{
		ConnectCluster: "analytics",
		Config:         map[string]string{"connector.class": "S3Sink", "flush.size": "500"},
	})

	reconciler := NewConnectorReconciler(st.Connectors, map[string]connect.API{"analytics": api}, testr.New(t), 4)
	require.NoError(t, reconciler.Tick(context.Background(), "c1"))
	require.Equal(t, []string{"ns1.sink"}, api.puts)

	// Converged: a second tick issues no further update.
	require.NoError(t, reconciler.Tick(context.Background(), "c1"))
	require.Equal(t, []string{"ns1.sink"}, api.puts)
}

func TestConnectorReconcilerPauseResume(t *testing.T) {
	st := store.NewMemory()
	api := newFakeConnect()
	api.connectors["ns1.sink"] = &connect.Info{Name: "ns1.sink", Config: map[string]string{"connector.class": "S3Sink"}}
	api.states["ns1.sink"] = "RUNNING"

	connector := seedConnector(t, st.Connectors, "c1", "ns1.sink", model.ConnectorSpec{
		ConnectCluster: "analytics",
		Config:         map[string]string{"connector.class": "S3Sink"},
		Paused:         true,
	})

	reconciler := NewConnectorReconciler(st.Connectors, map[string]connect.API{"analytics": api}, testr.New(t), 4)
	require.NoError(t, reconciler.Tick(context.Background(), "c1"))
	require.Equal(t, []string{"ns1.sink"}, api.pauses)

	// Already paused: no second pause call.
	require.NoError(t, reconciler.Tick(context.Background(), "c1"))
	require.Equal(t, []string{"ns1.sink"}, api.pauses)

	connector.Spec.Paused = false
	require.NoError(t, st.Connectors.Create(context.Background(), connector))
	require.NoError(t, reconciler.Tick(context.Background(), "c1"))
	require.Equal(t, []string{"ns1.sink"}, api.resumes)
}

func TestConnectorReconcilerUnknownConnectCluster(t *testing.T) {
	st := store.NewMemory()

	seedConnector(t, st.Connectors, "c1", "ns1.sink", model.ConnectorSpec{
		ConnectCluster: "missing",
		Config:         map[string]string{"connector.class": "S3Sink"},
	})

	reconciler := NewConnectorReconciler(st.Connectors, map[string]connect.API{}, testr.New(t), 4)
	require.NoError(t, reconciler.Tick(context.Background(), "c1"))

	persisted, err := st.Connectors.FindByName(context.Background(), "c1", "ns1.sink")
	require.NoError(t, err)
	require.Equal(t, model.PhaseFailed, persisted.Status.Phase)
	require.Contains(t, persisted.Status.Message, "unknown connect cluster")
}

func TestConnectorReconcilerDeletion(t *testing.T) {
	st := store.NewMemory()
	api := newFakeConnect()
	api.connectors["ns1.sink"] = &connect.Info{Name: "ns1.sink", Config: map[string]string{"connector.class": "S3Sink"}}
	api.states["ns1.sink"] = "RUNNING"

	connector := seedConnector(t, st.Connectors, "c1", "ns1.sink", model.ConnectorSpec{
		ConnectCluster: "analytics",
		Config:         map[string]string{"connector.class": "S3Sink"},
	})
	connector.DeletionRequested = true
	require.NoError(t, st.Connectors.Create(context.Background(), connector))

	reconciler := NewConnectorReconciler(st.Connectors, map[string]connect.API{"analytics": api}, testr.New(t), 4)
	require.NoError(t, reconciler.Tick(context.Background(), "c1"))

	require.Equal(t, []string{"ns1.sink"}, api.deletes)
	_, err := st.Connectors.FindByName(context.Background(), "c1", "ns1.sink")
	require.True(t, store.IsNotFound(err))
}
