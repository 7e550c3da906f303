// Copyright 2024 Redpanda Data, Inc.
//
// Use of this software is governed by the Business Source License
// included in the file licenses/BSL.md
//
// As of the Change Date specified in that file, in accordance with
// the Business Source License, use of this software will be governed
// by the Apache License, Version 2.0

package config

import (
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

const validConfig = `
adminGroup: kafka-admins
reconcile:
  interval: 15s
clusters:
  - name: local
    bootstrapServers: ["broker-0:9092", "broker-1:9092"]
    schemaRegistryUrl: http://registry:8081
    connectClusters:
      main: http://connect:8083
    catalog:
      url: http://catalog:21000
    timeouts:
      describe: 5s
`

func writeConfig(t *testing.T, contents string) (afero.Fs, string) {
	t.Helper()
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/etc/tenancy/config.yaml", []byte(contents), 0o644))
	return fs, "/etc/tenancy/config.yaml"
}

func TestLoad(t *testing.T) {
	fs, path := writeConfig(t, validConfig)

	cfg, err := Load(fs, path)
	require.NoError(t, err)

	require.Equal(t, "kafka-admins", cfg.AdminGroup)
	require.Equal(t, 15*time.Second, cfg.Reconcile.Interval)
	require.Equal(t, defaultConcurrency, cfg.Reconcile.Concurrency)

	require.Len(t, cfg.Clusters, 1)
	cluster := cfg.Clusters[0]
	require.Equal(t, "local", cluster.Name)
	require.Equal(t, 5*time.Second, cluster.Timeouts.Describe)
	require.Equal(t, defaultTimeout, cluster.Timeouts.Alter)
	require.Equal(t, defaultPageSize, cluster.Catalog.PageSize)
}

func TestLoadRejectsInvalid(t *testing.T) {
	for name, contents := range map[string]string{
		"missing admin group": `
clusters:
  - name: local
    bootstrapServers: ["broker:9092"]
`,
		"empty broker list": `
adminGroup: kafka-admins
clusters:
  - name: local
`,
		"duplicate cluster": `
adminGroup: kafka-admins
clusters:
  - name: local
    bootstrapServers: ["a:9092"]
  - name: local
    bootstrapServers: ["b:9092"]
`,
	} {
		t.Run(name, func(t *testing.T) {
			fs, path := writeConfig(t, contents)
			_, err := Load(fs, path)
			require.Error(t, err)
		})
	}
}
