// Copyright 2024 Redpanda Data, Inc.
//
// Use of this software is governed by the Business Source License
// included in the file licenses/BSL.md
//
// As of the Change Date specified in that file, in accordance with
// the Business Source License, use of this software will be governed
// by the Apache License, Version 2.0

// Package config loads the control plane's operator configuration: the admin
// group, reconciliation cadence, and the connection settings of every
// managed cluster.
package config

import (
	"time"

	"github.com/cockroachdb/errors"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// Config is the top-level operator configuration.
type Config struct {
	// AdminGroup is the federated identity group granted the
	// administrator role.
	AdminGroup string `yaml:"adminGroup"`

	Reconcile ReconcileConfig `yaml:"reconcile"`

	// Clusters lists every managed cluster. Each entry gets its own
	// independent reconciliation loop.
	Clusters []ClusterConfig `yaml:"clusters"`
}

// ReconcileConfig tunes the reconciliation loops.
type ReconcileConfig struct {
	// Interval between ticks of a cluster's loop.
	Interval time.Duration `yaml:"interval"`
	// Concurrency bounds the number of simultaneous downstream calls
	// within one tick.
	Concurrency int `yaml:"concurrency"`
}

// ClusterConfig is the connection configuration of one managed cluster.
type ClusterConfig struct {
	Name string `yaml:"name"`

	// BootstrapServers seeds the Kafka admin client.
	BootstrapServers []string `yaml:"bootstrapServers"`
	SASL             *SASL    `yaml:"sasl,omitempty"`

	// SchemaRegistryURL enables the schema reconciler when set.
	SchemaRegistryURL string `yaml:"schemaRegistryUrl,omitempty"`

	// ConnectClusters maps connect cluster names to their REST URLs.
	ConnectClusters map[string]string `yaml:"connectClusters,omitempty"`

	// Catalog enables tag/description reconciliation when set; clusters
	// without a catalog only reconcile broker-native configuration.
	Catalog *CatalogConfig `yaml:"catalog,omitempty"`

	Timeouts TimeoutConfig `yaml:"timeouts"`
}

// SASL carries broker credentials.
type SASL struct {
	Username  string `yaml:"username"`
	Password  string `yaml:"password"`
	Mechanism string `yaml:"mechanism"`
}

// CatalogConfig is the connection configuration of the external catalog.
type CatalogConfig struct {
	URL      string `yaml:"url"`
	Username string `yaml:"username,omitempty"`
	Password string `yaml:"password,omitempty"`
	// PageSize bounds catalog search pages.
	PageSize int `yaml:"pageSize,omitempty"`
	// RatePerSecond throttles catalog calls; the catalog is usually the
	// weakest downstream system.
	RatePerSecond float64 `yaml:"ratePerSecond,omitempty"`
}

// TimeoutConfig carries one explicit timeout per downstream operation kind.
type TimeoutConfig struct {
	Describe time.Duration `yaml:"describe"`
	Create   time.Duration `yaml:"create"`
	Delete   time.Duration `yaml:"delete"`
	Alter    time.Duration `yaml:"alter"`
}

const (
	defaultInterval    = 30 * time.Second
	defaultConcurrency = 8
	defaultTimeout     = 10 * time.Second
	defaultPageSize    = 100
)

// Load reads and validates the configuration at path.
func Load(fs afero.Fs, path string) (*Config, error) {
	raw, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading config %q", path)
	}

	var cfg Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, errors.Wrapf(err, "parsing config %q", path)
	}

	cfg.applyDefaults()

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Reconcile.Interval <= 0 {
		c.Reconcile.Interval = defaultInterval
	}
	if c.Reconcile.Concurrency <= 0 {
		c.Reconcile.Concurrency = defaultConcurrency
	}
	for i := range c.Clusters {
		cluster := &c.Clusters[i]
		if cluster.Timeouts.Describe <= 0 {
			cluster.Timeouts.Describe = defaultTimeout
		}
		if cluster.Timeouts.Create <= 0 {
			cluster.Timeouts.Create = defaultTimeout
		}
		if cluster.Timeouts.Delete <= 0 {
			cluster.Timeouts.Delete = defaultTimeout
		}
		if cluster.Timeouts.Alter <= 0 {
			cluster.Timeouts.Alter = defaultTimeout
		}
		if cluster.Catalog != nil && cluster.Catalog.PageSize <= 0 {
			cluster.Catalog.PageSize = defaultPageSize
		}
	}
}

func (c *Config) validate() error {
	if c.AdminGroup == "" {
		return errors.New("adminGroup must be set")
	}

	seen := map[string]struct{}{}
	for _, cluster := range c.Clusters {
		if cluster.Name == "" {
			return errors.New("every cluster needs a name")
		}
		if _, ok := seen[cluster.Name]; ok {
			return errors.Newf("duplicate cluster %q", cluster.Name)
		}
		seen[cluster.Name] = struct{}{}

		if len(cluster.BootstrapServers) == 0 {
			return errors.Newf("cluster %q: empty broker list", cluster.Name)
		}
	}

	return nil
}
