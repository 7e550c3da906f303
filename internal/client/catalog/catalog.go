// Copyright 2024 Redpanda Data, Inc.
//
// Use of this software is governed by the Business Source License
// included in the file licenses/BSL.md
//
// As of the Change Date specified in that file, in accordance with
// the Business Source License, use of this software will be governed
// by the Apache License, Version 2.0

// Package catalog talks to the external metadata catalog that layers tags
// and descriptions over broker-native topics. The catalog is reconciled as
// its own facets: the broker never sees tags or descriptions.
package catalog

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/scalalang2/golang-fifo/sieve"
	"golang.org/x/time/rate"

	"github.com/redpanda-data/tenancy/internal/client/rest"
)

// Entity is a catalog-side view of a topic: its tag set and description.
type Entity struct {
	Name        string   `json:"name"`
	Tags        []string `json:"tags"`
	Description string   `json:"description"`
}

// API is the catalog surface the reconciler uses. Implementations must make
// EnsureTagDefined idempotent.
type API interface {
	// SearchEntities returns every known topic entity, keyed by name.
	// Paged internally; pages are fetched until an empty page returns.
	SearchEntities(ctx context.Context) (map[string]Entity, error)
	// EnsureTagDefined creates the tag definition, tolerating
	// already-exists.
	EnsureTagDefined(ctx context.Context, tag string) error
	AssociateTag(ctx context.Context, entity, tag string) error
	DissociateTag(ctx context.Context, entity, tag string) error
	// SetDescription replaces the entity description; empty clears it.
	SetDescription(ctx context.Context, entity, description string) error
}

// Client is the HTTP implementation of API.
type Client struct {
	rest     *rest.Client
	limiter  *rate.Limiter
	pageSize int

	// definedTags remembers tag definitions already ensured so steady
	// state ticks stop hammering the definition endpoint.
	definedTags *sieve.Sieve[string, struct{}]
}

var _ API = (*Client)(nil)

// Options tunes a Client.
type Options struct {
	Username      string
	Password      string
	PageSize      int
	RatePerSecond float64
	HTTPClient    *http.Client
}

// NewClient constructs a catalog client for the given base URL.
func NewClient(baseURL string, opts Options) *Client {
	restClient := rest.NewClient(baseURL, opts.HTTPClient)
	if opts.Username != "" {
		restClient = restClient.WithBasicAuth(opts.Username, opts.Password)
	}

	pageSize := opts.PageSize
	if pageSize <= 0 {
		pageSize = 100
	}

	limit := rate.Inf
	if opts.RatePerSecond > 0 {
		limit = rate.Limit(opts.RatePerSecond)
	}

	return &Client{
		rest:        restClient,
		limiter:     rate.NewLimiter(limit, 1),
		pageSize:    pageSize,
		definedTags: sieve.New[string, struct{}](512, 10*time.Minute),
	}
}

type searchResponse struct {
	Entities []Entity `json:"entities"`
}

func (c *Client) SearchEntities(ctx context.Context) (map[string]Entity, error) {
	entities := map[string]Entity{}

	for offset := 0; ; offset += c.pageSize {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		query := url.Values{
			"type":   []string{"kafka_topic"},
			"limit":  []string{strconv.Itoa(c.pageSize)},
			"offset": []string{strconv.Itoa(offset)},
		}

		var page searchResponse
		if err := c.rest.Do(ctx, http.MethodGet, "/api/entities", query, nil, &page); err != nil {
			return nil, errors.Wrap(err, "searching catalog entities")
		}
		if len(page.Entities) == 0 {
			return entities, nil
		}
		for _, entity := range page.Entities {
			entities[entity.Name] = entity
		}
	}
}

type tagDefinition struct {
	Name string `json:"name"`
}

func (c *Client) EnsureTagDefined(ctx context.Context, tag string) error {
	if _, ok := c.definedTags.Get(tag); ok {
		return nil
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	err := c.rest.Do(ctx, http.MethodPost, "/api/tags", nil, tagDefinition{Name: tag}, nil)
	if err != nil && !rest.IsStatus(err, http.StatusConflict) {
		return errors.Wrapf(err, "defining tag %q", tag)
	}

	c.definedTags.Set(tag, struct{}{})
	return nil
}

func (c *Client) AssociateTag(ctx context.Context, entity, tag string) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}
	err := c.rest.Do(ctx, http.MethodPost,
		"/api/entities/"+url.PathEscape(entity)+"/tags/"+url.PathEscape(tag), nil, nil, nil)
	return errors.Wrapf(err, "associating tag %q with %q", tag, entity)
}

func (c *Client) DissociateTag(ctx context.Context, entity, tag string) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}
	err := c.rest.Do(ctx, http.MethodDelete,
		"/api/entities/"+url.PathEscape(entity)+"/tags/"+url.PathEscape(tag), nil, nil, nil)
	return errors.Wrapf(err, "dissociating tag %q from %q", tag, entity)
}

type descriptionUpdate struct {
	Description string `json:"description"`
}

func (c *Client) SetDescription(ctx context.Context, entity, description string) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}
	err := c.rest.Do(ctx, http.MethodPut,
		"/api/entities/"+url.PathEscape(entity)+"/description", nil,
		descriptionUpdate{Description: description}, nil)
	return errors.Wrapf(err, "setting description of %q", entity)
}
