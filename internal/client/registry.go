// Copyright 2024 Redpanda Data, Inc.
//
// Use of this software is governed by the Business Source License
// included in the file licenses/BSL.md
//
// As of the Change Date specified in that file, in accordance with
// the Business Source License, use of this software will be governed
// by the Apache License, Version 2.0

// Package client owns the downstream connections of the control plane. A
// Registry is constructed once at startup from configuration and handed by
// reference into the reconciliation loops; there are no lazily initialized
// global clients.
package client

import (
	"net/http"

	"github.com/cockroachdb/errors"
	"github.com/twmb/franz-go/pkg/kgo"
	"github.com/twmb/franz-go/pkg/sasl"
	"github.com/twmb/franz-go/pkg/sasl/scram"
	"github.com/twmb/franz-go/pkg/sr"

	"github.com/redpanda-data/tenancy/internal/client/catalog"
	"github.com/redpanda-data/tenancy/internal/client/connect"
	"github.com/redpanda-data/tenancy/internal/client/kafka"
	"github.com/redpanda-data/tenancy/internal/client/schemas"
	"github.com/redpanda-data/tenancy/internal/config"
)

// ErrUnknownCluster is returned when a cluster name has no registry entry.
var ErrUnknownCluster = errors.New("unknown managed cluster")

// ErrUnsupportedSASLMechanism is returned for mechanisms other than
// SCRAM-SHA-256 and SCRAM-SHA-512.
var ErrUnsupportedSASLMechanism = errors.New("unsupported SASL mechanism")

// Cluster bundles every downstream handle of one managed cluster.
type Cluster struct {
	Name string

	Admin kafka.Admin
	ACLs  *kafka.ACLSyncer

	// Schemas is nil when the cluster has no schema registry configured.
	Schemas *schemas.Syncer

	// Catalog is nil when the cluster is not catalog-capable.
	Catalog catalog.API

	// Connect maps connect cluster names to their clients.
	Connect map[string]connect.API

	kafkaClient *kgo.Client
}

// Registry holds the clients of every managed cluster.
type Registry struct {
	clusters map[string]*Cluster
}

// NewRegistry dials every configured cluster and returns the registry.
// Construction fails fast on configuration errors; actual connectivity
// issues surface per-tick in the reconcilers.
func NewRegistry(cfgs []config.ClusterConfig) (*Registry, error) {
	registry := &Registry{clusters: make(map[string]*Cluster, len(cfgs))}

	for _, cfg := range cfgs {
		cluster, err := newCluster(cfg)
		if err != nil {
			registry.Close()
			return nil, errors.Wrapf(err, "initializing cluster %q", cfg.Name)
		}
		registry.clusters[cfg.Name] = cluster
	}

	return registry, nil
}

// Get returns the handles of one managed cluster.
func (r *Registry) Get(name string) (*Cluster, error) {
	cluster, ok := r.clusters[name]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownCluster, "%q", name)
	}
	return cluster, nil
}

// Names returns every registered cluster name.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.clusters))
	for name := range r.clusters {
		names = append(names, name)
	}
	return names
}

// Close releases every underlying connection.
func (r *Registry) Close() {
	for _, cluster := range r.clusters {
		if cluster.kafkaClient != nil {
			cluster.kafkaClient.Close()
		}
	}
}

func newCluster(cfg config.ClusterConfig) (*Cluster, error) {
	opts := []kgo.Opt{kgo.SeedBrokers(cfg.BootstrapServers...)}

	if cfg.SASL != nil {
		mechanism, err := saslMechanism(cfg.SASL)
		if err != nil {
			return nil, err
		}
		opts = append(opts, kgo.SASL(mechanism))
	}

	kafkaClient, err := kgo.NewClient(opts...)
	if err != nil {
		return nil, errors.Wrap(err, "initializing Kafka client")
	}

	cluster := &Cluster{
		Name: cfg.Name,
		Admin: kafka.NewAdmin(kafkaClient, kafka.Timeouts{
			Describe: cfg.Timeouts.Describe,
			Create:   cfg.Timeouts.Create,
			Delete:   cfg.Timeouts.Delete,
			Alter:    cfg.Timeouts.Alter,
		}),
		ACLs:        kafka.NewACLSyncer(kafkaClient),
		Connect:     map[string]connect.API{},
		kafkaClient: kafkaClient,
	}

	if cfg.SchemaRegistryURL != "" {
		srClient, err := sr.NewClient(sr.URLs(cfg.SchemaRegistryURL))
		if err != nil {
			kafkaClient.Close()
			return nil, errors.Wrap(err, "initializing schema registry client")
		}
		cluster.Schemas = schemas.NewSyncer(srClient)
	}

	if cfg.Catalog != nil {
		cluster.Catalog = catalog.NewClient(cfg.Catalog.URL, catalog.Options{
			Username:      cfg.Catalog.Username,
			Password:      cfg.Catalog.Password,
			PageSize:      cfg.Catalog.PageSize,
			RatePerSecond: cfg.Catalog.RatePerSecond,
		})
	}

	for name, url := range cfg.ConnectClusters {
		cluster.Connect[name] = connect.NewClient(url, http.DefaultClient)
	}

	return cluster, nil
}

func saslMechanism(cfg *config.SASL) (sasl.Mechanism, error) {
	auth := scram.Auth{User: cfg.Username, Pass: cfg.Password}

	switch cfg.Mechanism {
	case "SCRAM-SHA-256":
		return auth.AsSha256Mechanism(), nil
	case "SCRAM-SHA-512":
		return auth.AsSha512Mechanism(), nil
	}
	return nil, errors.Wrapf(ErrUnsupportedSASLMechanism, "%q", cfg.Mechanism)
}
