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
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-logr/logr"
	"github.com/spf13/afero"
)

// Watcher reloads the configuration file on change so cluster connection
// settings can be picked up without a restart. A reload that fails to parse
// or validate keeps the previous configuration in effect.
type Watcher struct {
	fs       afero.Fs
	path     string
	log      logr.Logger
	onReload func(*Config)
}

// NewWatcher constructs a Watcher. onReload is invoked with each
// successfully loaded configuration.
func NewWatcher(log logr.Logger, fs afero.Fs, path string, onReload func(*Config)) *Watcher {
	return &Watcher{
		fs:       fs,
		path:     path,
		log:      log,
		onReload: onReload,
	}
}

// Start watches until the context is cancelled. Watching the parent
// directory rather than the file itself survives the rename-and-replace
// writes most editors and secret mounts perform.
func (w *Watcher) Start(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(w.path)); err != nil {
		return err
	}

	for {
		select {
		case err := <-watcher.Errors:
			// Don't crash the control plane over a watch hiccup; log
			// and carry on after a pause.
			w.log.Error(err, "config watcher returned an error")
			time.Sleep(5 * time.Second)
		case event := <-watcher.Events:
			if filepath.Clean(event.Name) != filepath.Clean(w.path) {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			cfg, err := Load(w.fs, w.path)
			if err != nil {
				w.log.Error(err, "ignoring invalid config reload", "path", w.path)
				continue
			}
			w.log.Info("reloaded configuration", "clusters", len(cfg.Clusters))
			w.onReload(cfg)
		case <-ctx.Done():
			return nil
		}
	}
}
