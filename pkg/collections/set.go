// Copyright 2024 Redpanda Data, Inc.
//
// Use of this software is governed by the Business Source License
// included in the file licenses/BSL.md
//
// As of the Change Date specified in that file, in accordance with
// the Business Source License, use of this software will be governed
// by the Apache License, Version 2.0

package collections

import "sort"

// Set is an unordered collection of unique comparable values. It is not safe
// for concurrent use.
type Set[T comparable] struct {
	data map[T]struct{}
}

// NewSet constructs a Set seeded with the given values.
func NewSet[T comparable](values ...T) *Set[T] {
	s := &Set[T]{data: make(map[T]struct{}, len(values))}
	s.Add(values...)
	return s
}

// Add adds the given values to the set.
func (s *Set[T]) Add(values ...T) {
	for _, value := range values {
		s.data[value] = struct{}{}
	}
}

// Has checks whether the given value exists in the set.
func (s *Set[T]) Has(value T) bool {
	_, ok := s.data[value]
	return ok
}

// Delete removes the given values from the set.
func (s *Set[T]) Delete(values ...T) {
	for _, value := range values {
		delete(s.data, value)
	}
}

// Size returns the cardinality of the set.
func (s *Set[T]) Size() int {
	return len(s.data)
}

// Values returns the values of the set. The order of the returned values is
// not guaranteed.
func (s *Set[T]) Values() []T {
	values := make([]T, 0, len(s.data))
	for value := range s.data {
		values = append(values, value)
	}
	return values
}

// Clone makes a copy of the set.
func (s *Set[T]) Clone() *Set[T] {
	return NewSet(s.Values()...)
}

// Difference returns a new set holding the values found in this set but not
// in other. Computing both s.Difference(other) and other.Difference(s) yields
// the symmetric difference of the two sets.
func (s *Set[T]) Difference(other *Set[T]) *Set[T] {
	diff := s.Clone()
	diff.Delete(other.Values()...)
	return diff
}

// SortedStrings returns the values of a string set in lexical order. Handy
// for deterministic apply ordering and test assertions.
func SortedStrings(s *Set[string]) []string {
	values := s.Values()
	sort.Strings(values)
	return values
}
