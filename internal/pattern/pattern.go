// Copyright 2024 Redpanda Data, Inc.
//
// Use of this software is governed by the Business Source License
// included in the file licenses/BSL.md
//
// As of the Change Date specified in that file, in accordance with
// the Business Source License, use of this software will be governed
// by the Apache License, Version 2.0

// Package pattern implements resource name matching for grants. Matching is
// plain string comparison, case sensitive with no backtracking, because it
// sits on the hot path of every authorization decision and every grant
// overlap check.
package pattern

import (
	"regexp"
	"strings"

	"github.com/redpanda-data/tenancy/internal/model"
)

// Matches reports whether candidate matches the stored pattern under the
// given pattern type. Unknown pattern types never match.
func Matches(candidate, pattern string, patternType model.PatternType) bool {
	switch patternType {
	case model.PatternTypeLiteral:
		return candidate == pattern
	case model.PatternTypePrefixed:
		return strings.HasPrefix(candidate, pattern)
	}
	return false
}

// Overlaps reports whether two stored patterns can resolve to a common
// resource name. The check is bidirectional: a prefix contains any literal it
// is a prefix of, and two prefixes overlap when either is a prefix of the
// other.
func Overlaps(aResource string, aType model.PatternType, bResource string, bType model.PatternType) bool {
	return Matches(aResource, bResource, bType) || Matches(bResource, aResource, aType)
}

// TranslateGlob converts a shell-style glob ('*' and '?') into an anchored
// regular expression, escaping every other character. It backs list/filter
// operations only and is never consulted for security decisions.
func TranslateGlob(glob string) (*regexp.Regexp, error) {
	var sb strings.Builder
	sb.WriteString("^")
	for _, r := range glob {
		switch r {
		case '*':
			sb.WriteString(".*")
		case '?':
			sb.WriteString(".")
		default:
			sb.WriteString(regexp.QuoteMeta(string(r)))
		}
	}
	sb.WriteString("$")
	return regexp.Compile(sb.String())
}
