// Copyright 2024 Redpanda Data, Inc.
//
// Use of this software is governed by the Business Source License
// included in the file licenses/BSL.md
//
// As of the Change Date specified in that file, in accordance with
// the Business Source License, use of this software will be governed
// by the Apache License, Version 2.0

// Package connect is a minimal Kafka Connect REST API client covering the
// operations the connector reconciler needs.
package connect

import (
	"context"
	"net/http"
	"net/url"

	"github.com/cockroachdb/errors"

	"github.com/redpanda-data/tenancy/internal/client/rest"
)

// Info is the connect API's view of a deployed connector.
type Info struct {
	Name   string            `json:"name"`
	Config map[string]string `json:"config"`
}

// TaskStatus is the state of a single connector task.
type TaskStatus struct {
	ID    int    `json:"id"`
	State string `json:"state"`
	Trace string `json:"trace,omitempty"`
}

// Status is the aggregate runtime state of a connector.
type Status struct {
	Name      string `json:"name"`
	Connector struct {
		State string `json:"state"`
	} `json:"connector"`
	Tasks []TaskStatus `json:"tasks"`
}

// Paused is the connector state string reported while paused.
const Paused = "PAUSED"

// API is the connect surface the reconciler uses.
type API interface {
	List(ctx context.Context) ([]string, error)
	Get(ctx context.Context, name string) (*Info, error)
	// Put creates the connector or replaces its configuration.
	Put(ctx context.Context, name string, config map[string]string) error
	Delete(ctx context.Context, name string) error
	Status(ctx context.Context, name string) (*Status, error)
	Pause(ctx context.Context, name string) error
	Resume(ctx context.Context, name string) error
	Restart(ctx context.Context, name string) error
}

// IsNotFound reports whether err is the connect API's 404 response, i.e. the
// connector does not exist.
func IsNotFound(err error) bool {
	return rest.IsStatus(err, http.StatusNotFound)
}

// Client is the HTTP implementation of API.
type Client struct {
	rest *rest.Client
}

var _ API = (*Client)(nil)

// NewClient constructs a connect client for the given base URL.
func NewClient(baseURL string, httpClient *http.Client) *Client {
	return &Client{rest: rest.NewClient(baseURL, httpClient)}
}

func (c *Client) List(ctx context.Context) ([]string, error) {
	var names []string
	if err := c.rest.Do(ctx, http.MethodGet, "/connectors", nil, nil, &names); err != nil {
		return nil, errors.Wrap(err, "listing connectors")
	}
	return names, nil
}

func (c *Client) Get(ctx context.Context, name string) (*Info, error) {
	var info Info
	if err := c.rest.Do(ctx, http.MethodGet, "/connectors/"+url.PathEscape(name), nil, nil, &info); err != nil {
		return nil, errors.Wrapf(err, "getting connector %q", name)
	}
	return &info, nil
}

func (c *Client) Put(ctx context.Context, name string, config map[string]string) error {
	err := c.rest.Do(ctx, http.MethodPut, "/connectors/"+url.PathEscape(name)+"/config", nil, config, nil)
	return errors.Wrapf(err, "configuring connector %q", name)
}

func (c *Client) Delete(ctx context.Context, name string) error {
	err := c.rest.Do(ctx, http.MethodDelete, "/connectors/"+url.PathEscape(name), nil, nil, nil)
	return errors.Wrapf(err, "deleting connector %q", name)
}

func (c *Client) Status(ctx context.Context, name string) (*Status, error) {
	var status Status
	if err := c.rest.Do(ctx, http.MethodGet, "/connectors/"+url.PathEscape(name)+"/status", nil, nil, &status); err != nil {
		return nil, errors.Wrapf(err, "getting status of connector %q", name)
	}
	return &status, nil
}

func (c *Client) Pause(ctx context.Context, name string) error {
	err := c.rest.Do(ctx, http.MethodPut, "/connectors/"+url.PathEscape(name)+"/pause", nil, nil, nil)
	return errors.Wrapf(err, "pausing connector %q", name)
}

func (c *Client) Resume(ctx context.Context, name string) error {
	err := c.rest.Do(ctx, http.MethodPut, "/connectors/"+url.PathEscape(name)+"/resume", nil, nil, nil)
	return errors.Wrapf(err, "resuming connector %q", name)
}

func (c *Client) Restart(ctx context.Context, name string) error {
	err := c.rest.Do(ctx, http.MethodPost, "/connectors/"+url.PathEscape(name)+"/restart", nil, nil, nil)
	return errors.Wrapf(err, "restarting connector %q", name)
}
