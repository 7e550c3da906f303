// Copyright 2024 Redpanda Data, Inc.
//
// Use of this software is governed by the Business Source License
// included in the file licenses/BSL.md
//
// As of the Change Date specified in that file, in accordance with
// the Business Source License, use of this software will be governed
// by the Apache License, Version 2.0

// Package admission validates proposed mutations before they are persisted:
// grant admission for access control entries and namespace-attached field
// validation for resource specs. Validation failures are batched field-level
// errors, never a single opaque message.
package admission

import (
	"fmt"
	"strings"
)

// FieldError names one offending field and the rule it violates.
type FieldError struct {
	Field   string `json:"field"`
	Rule    string `json:"rule"`
	Message string `json:"message"`
}

func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s (%s)", e.Field, e.Message, e.Rule)
}

// Errors is the full batch of violations found in one admission pass. A nil
// or empty batch means admission succeeds.
type Errors []FieldError

func (e Errors) Error() string {
	messages := make([]string, 0, len(e))
	for _, fieldError := range e {
		messages = append(messages, fieldError.Error())
	}
	return strings.Join(messages, "; ")
}

// OrNil returns the batch as an error, or nil when it is empty. Errors is
// returned by value everywhere else so callers can always report the
// complete list.
func (e Errors) OrNil() error {
	if len(e) == 0 {
		return nil
	}
	return e
}
