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
	"net/http"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/sr"

	"github.com/redpanda-data/tenancy/internal/client/rest"
)

func TestIsTransient(t *testing.T) {
	for name, tc := range map[string]struct {
		err       error
		transient bool
	}{
		"nil":              {err: nil, transient: false},
		"deadline":         {err: context.DeadlineExceeded, transient: true},
		"wrapped deadline": {err: errors.Wrap(context.DeadlineExceeded, "listing topics"), transient: true},
		"retriable kafka":  {err: kerr.ErrorForCode(kerr.NotCoordinator.Code), transient: true},
		"terminal kafka":   {err: kerr.ErrorForCode(kerr.TopicAlreadyExists.Code), transient: false},
		"registry 5xx":     {err: &sr.ResponseError{ErrorCode: 50001}, transient: true},
		"registry 404":     {err: &sr.ResponseError{ErrorCode: 40401}, transient: false},
		"rest 503":         {err: &rest.Error{StatusCode: http.StatusServiceUnavailable}, transient: true},
		"rest 409":         {err: &rest.Error{StatusCode: http.StatusConflict}, transient: false},
		"plain":            {err: errors.New("boom"), transient: false},
	} {
		t.Run(name, func(t *testing.T) {
			require.Equal(t, tc.transient, IsTransient(tc.err))
		})
	}
}
