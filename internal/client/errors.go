// Copyright 2024 Redpanda Data, Inc.
//
// Use of this software is governed by the Business Source License
// included in the file licenses/BSL.md
//
// As of the Change Date specified in that file, in accordance with
// the Business Source License, use of this software will be governed
// by the Apache License, Version 2.0

package client

import (
	"context"
	"net"

	"github.com/cockroachdb/errors"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/sr"

	"github.com/redpanda-data/tenancy/internal/client/rest"
)

// IsTransient classifies downstream failures that should simply be retried
// on the next reconciliation tick: timeouts, connection resets, retriable
// Kafka error codes, and 5xx REST responses. Everything else is terminal for
// the current desired spec and stays Failed until the spec is corrected.
func IsTransient(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return true
	}

	var netError net.Error
	if errors.As(err, &netError) {
		return true
	}

	var kafkaError *kerr.Error
	if errors.As(err, &kafkaError) {
		return kafkaError.Retriable
	}

	var srError *sr.ResponseError
	if errors.As(err, &srError) {
		// Registry error codes embed the HTTP status in their leading
		// digits, e.g. 40401.
		return srError.ErrorCode/100 >= 500
	}

	var restError *rest.Error
	if errors.As(err, &restError) {
		return restError.StatusCode >= 500
	}

	return false
}
