// Copyright 2024 Redpanda Data, Inc.
//
// Use of this software is governed by the Business Source License
// included in the file licenses/BSL.md
//
// As of the Change Date specified in that file, in accordance with
// the Business Source License, use of this software will be governed
// by the Apache License, Version 2.0

package admission

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/redpanda-data/tenancy/internal/model"
)

func TestRange(t *testing.T) {
	r := Range{Min: 1, Max: 6}

	require.Nil(t, r.Validate("partitions", "3"))
	require.Nil(t, r.Validate("partitions", "1"))
	require.Nil(t, r.Validate("partitions", "6"))
	require.NotNil(t, r.Validate("partitions", "0"))
	require.NotNil(t, r.Validate("partitions", "7"))
	require.NotNil(t, r.Validate("partitions", "three"))
}

func TestOneOf(t *testing.T) {
	o := OneOf{Values: []string{"delete", "compact"}}

	require.Nil(t, o.Validate("cleanup.policy", "compact"))
	err := o.Validate("cleanup.policy", "compress")
	require.NotNil(t, err)
	require.Equal(t, "cleanup.policy", err.Field)
}

func TestListOf(t *testing.T) {
	l := ListOf{Element: OneOf{Values: []string{"delete", "compact"}}}

	require.Nil(t, l.Validate("cleanup.policy", "compact,delete"))
	require.Nil(t, l.Validate("cleanup.policy", "compact, delete"))
	require.NotNil(t, l.Validate("cleanup.policy", "compact,purge"))
}

func TestNonEmpty(t *testing.T) {
	require.Nil(t, NonEmpty{}.Validate("description", "orders topic"))
	require.NotNil(t, NonEmpty{}.Validate("description", ""))
	require.NotNil(t, NonEmpty{}.Validate("description", "   "))
}

func TestComposite(t *testing.T) {
	c := Composite{Children: []Validator{NonEmpty{}, Range{Min: 1, Max: 3}}}

	require.Nil(t, c.Validate("replicationFactor", "3"))

	err := c.Validate("replicationFactor", "")
	require.NotNil(t, err)
	require.Equal(t, "NonEmpty", err.Rule)

	err = c.Validate("replicationFactor", "5")
	require.NotNil(t, err)
	require.Equal(t, "Range", err.Rule)
}

func TestCompileAndValidateFields(t *testing.T) {
	validators := Compile([]model.ValidationRule{
		{Field: "partitions", Kind: model.ValidationRange, Min: 1, Max: 12},
		{Field: "cleanup.policy", Kind: model.ValidationListOf, Values: []string{"delete", "compact"}},
		{Field: "retention.ms", Kind: model.ValidationNonEmpty},
		// Two rules on one field compose.
		{Field: "retention.ms", Kind: model.ValidationRange, Min: 0, Max: 604800000},
	})
	require.Len(t, validators, 3)

	batch := ValidateFields(validators, map[string]string{
		"partitions":     "3",
		"cleanup.policy": "compact",
		"retention.ms":   "86400000",
	})
	require.Empty(t, batch)

	batch = ValidateFields(validators, map[string]string{
		"partitions":     "24",
		"cleanup.policy": "compact,purge",
		"retention.ms":   "86400000",
	})
	require.Len(t, batch, 2)
}
