// Copyright 2024 Redpanda Data, Inc.
//
// Use of this software is governed by the Business Source License
// included in the file licenses/BSL.md
//
// As of the Change Date specified in that file, in accordance with
// the Business Source License, use of this software will be governed
// by the Apache License, Version 2.0

package collections

// MapSlice returns a slice with a transformation function applied to every
// element of the input.
func MapSlice[T, U any](values []T, fn func(T) U) []U {
	mapped := make([]U, 0, len(values))
	for _, value := range values {
		mapped = append(mapped, fn(value))
	}
	return mapped
}

// Keys returns the keys of the given map in no particular order.
func Keys[K comparable, V any](m map[K]V) []K {
	keys := make([]K, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	return keys
}
