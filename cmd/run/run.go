// Copyright 2024 Redpanda Data, Inc.
//
// Use of this software is governed by the Business Source License
// included in the file licenses/BSL.md
//
// As of the Change Date specified in that file, in accordance with
// the Business Source License, use of this software will be governed
// by the Apache License, Version 2.0

// Package run contains the boilerplate code to configure and run the tenancy
// control plane.
package run

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/go-logr/logr"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/redpanda-data/tenancy/internal/client"
	"github.com/redpanda-data/tenancy/internal/config"
	"github.com/redpanda-data/tenancy/internal/reconcile"
	"github.com/redpanda-data/tenancy/internal/store"
)

type Options struct {
	configPath         string
	metricsBindAddress string
	watchConfig        bool
}

func Command(logger logr.Logger) *cobra.Command {
	var options Options

	cmd := &cobra.Command{
		Use:   "run",
		Short: "run the tenancy control plane",
		RunE: func(cmd *cobra.Command, args []string) error {
			return Run(cmd.Context(), logger, options)
		},
	}

	cmd.Flags().StringVar(&options.configPath, "config", "/etc/tenancy/config.yaml", "path to the control plane configuration file")
	cmd.Flags().StringVar(&options.metricsBindAddress, "metrics-bind-address", ":8080", "address the metrics endpoint binds to, empty to disable")
	cmd.Flags().BoolVar(&options.watchConfig, "watch-config", true, "reload cluster connection settings on config file change")

	return cmd
}

// Run wires the store, the per-cluster client registry and the reconciliation
// loops together and blocks until the context is cancelled.
func Run(ctx context.Context, logger logr.Logger, options Options) error {
	fs := afero.NewOsFs()

	cfg, err := config.Load(fs, options.configPath)
	if err != nil {
		return errors.Wrap(err, "loading configuration")
	}

	st := store.NewMemory()

	runner := reconcile.NewRunner(st, logger, cfg.Reconcile.Interval, cfg.Reconcile.Concurrency)
	runner.Start(ctx)
	defer runner.Stop()

	registry, err := client.NewRegistry(cfg.Clusters)
	if err != nil {
		return errors.Wrap(err, "building cluster registry")
	}
	defer func() { registry.Close() }()

	runner.Apply(registry)
	logger.Info("control plane started", "clusters", len(cfg.Clusters), "interval", cfg.Reconcile.Interval)

	group, groupCtx := errgroup.WithContext(ctx)

	if options.metricsBindAddress != "" {
		group.Go(func() error {
			return serveMetrics(groupCtx, logger, options.metricsBindAddress)
		})
	}

	if options.watchConfig {
		// Reload swaps the whole registry: loops are stopped, clients
		// redialed from the new settings and loops started again. The
		// first tick of a fresh loop fires immediately, so a reload
		// costs at most one skipped interval.
		var mu sync.Mutex
		watcher := config.NewWatcher(logger, fs, options.configPath, func(next *config.Config) {
			mu.Lock()
			defer mu.Unlock()

			nextRegistry, err := client.NewRegistry(next.Clusters)
			if err != nil {
				logger.Error(err, "ignoring config reload, registry rebuild failed")
				return
			}

			runner.Stop()
			registry.Close()
			registry = nextRegistry

			runner.Start(ctx)
			runner.Apply(registry)
		})
		group.Go(func() error {
			return watcher.Start(groupCtx)
		})
	}

	group.Go(func() error {
		<-groupCtx.Done()
		return groupCtx.Err()
	})

	if err := group.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func serveMetrics(ctx context.Context, logger logr.Logger, address string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	server := &http.Server{Addr: address, Handler: mux}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error(err, "shutting down metrics server")
		}
	}()

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "serving metrics")
	}
	return nil
}
