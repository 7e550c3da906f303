// Copyright 2024 Redpanda Data, Inc.
//
// Use of this software is governed by the Business Source License
// included in the file licenses/BSL.md
//
// As of the Change Date specified in that file, in accordance with
// the Business Source License, use of this software will be governed
// by the Apache License, Version 2.0

// Package schemas synchronizes declared schema subjects with a schema
// registry.
package schemas

import (
	"context"
	"slices"

	"github.com/cockroachdb/errors"
	"github.com/twmb/franz-go/pkg/sr"

	"github.com/redpanda-data/tenancy/internal/model"
	"github.com/redpanda-data/tenancy/pkg/collections"
)

// Syncer registers subject versions and aligns compatibility levels.
type Syncer struct {
	client *sr.Client
}

// NewSyncer initializes a Syncer.
func NewSyncer(client *sr.Client) *Syncer {
	return &Syncer{client: client}
}

var compatibilityLevels = map[string]sr.CompatibilityLevel{
	"NONE":                sr.CompatNone,
	"BACKWARD":            sr.CompatBackward,
	"BACKWARD_TRANSITIVE": sr.CompatBackwardTransitive,
	"FORWARD":             sr.CompatForward,
	"FORWARD_TRANSITIVE":  sr.CompatForwardTransitive,
	"FULL":                sr.CompatFull,
	"FULL_TRANSITIVE":     sr.CompatFullTransitive,
}

func compatibilityFor(schema *model.Schema) sr.CompatibilityLevel {
	if level, ok := compatibilityLevels[schema.Spec.Compatibility]; ok {
		return level
	}
	// Registry default.
	return sr.CompatBackward
}

func toRegistrySchema(schema *model.Schema) sr.Schema {
	return sr.Schema{
		Schema:     schema.Spec.Schema,
		Type:       schema.Spec.Type.ToKafka(),
		References: collections.MapSlice(schema.Spec.References, model.SchemaReference.ToKafka),
	}
}

// Sync converges the subject onto the desired spec: the schema is registered
// only when the latest live version differs, and compatibility is set only
// on drift. A convergent subject issues no writes.
func (s *Syncer) Sync(ctx context.Context, schema *model.Schema) error {
	subject := schema.Metadata.Name
	want := toRegistrySchema(schema)

	createSchema := true
	setCompatibility := true

	latest, err := s.client.SchemaByVersion(ctx, subject, -1)
	switch {
	case err == nil:
		createSchema = !schemaEquals(latest.Schema, want)

		level, err := s.compatibility(ctx, subject)
		if err != nil {
			return err
		}
		setCompatibility = level != compatibilityFor(schema)
	case isSubjectNotFound(err):
		// First registration.
	default:
		return errors.Wrapf(err, "fetching latest version of subject %q", subject)
	}

	if createSchema {
		if _, err := s.client.CreateSchema(ctx, subject, want); err != nil {
			return errors.Wrapf(err, "registering subject %q", subject)
		}
	}

	if setCompatibility {
		results := s.client.SetCompatibility(ctx, sr.SetCompatibility{
			Level: compatibilityFor(schema),
		}, subject)
		if len(results) == 0 {
			return errors.Newf("empty results setting compatibility of subject %q", subject)
		}
		if err := results[0].Err; err != nil {
			return errors.Wrapf(err, "setting compatibility of subject %q", subject)
		}
	}

	return nil
}

// Delete removes the subject, soft then hard.
func (s *Syncer) Delete(ctx context.Context, subject string) error {
	if _, err := s.client.DeleteSubject(ctx, subject, sr.SoftDelete); err != nil {
		return errors.Wrapf(err, "soft-deleting subject %q", subject)
	}
	if _, err := s.client.DeleteSubject(ctx, subject, sr.HardDelete); err != nil {
		return errors.Wrapf(err, "hard-deleting subject %q", subject)
	}
	return nil
}

func (s *Syncer) compatibility(ctx context.Context, subject string) (sr.CompatibilityLevel, error) {
	results := s.client.Compatibility(ctx, subject)
	if len(results) == 0 {
		return 0, errors.Newf("empty results fetching compatibility of subject %q", subject)
	}
	result := results[0]
	if result.Err != nil {
		// A subject without an explicit compatibility override reports
		// not-found; treat it as unset so the desired level gets
		// written.
		var srError *sr.ResponseError
		if errors.As(result.Err, &srError) && srError.ErrorCode/100 == 404 {
			return 0, nil
		}
		return 0, errors.Wrapf(result.Err, "fetching compatibility of subject %q", subject)
	}
	return result.Level, nil
}

func schemaEquals(have, want sr.Schema) bool {
	return have.Schema == want.Schema &&
		have.Type == want.Type &&
		slices.Equal(have.References, want.References)
}

func isSubjectNotFound(err error) bool {
	var srError *sr.ResponseError
	// 40401: subject not found, 40402: version not found.
	return errors.As(err, &srError) && srError.ErrorCode/100 == 404
}
