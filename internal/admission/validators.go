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
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/redpanda-data/tenancy/internal/model"
)

// Validator checks a single named field value. Implementations form a closed
// set of variants; composition is a plain slice evaluated in order with all
// errors collected.
type Validator interface {
	Validate(name, value string) *FieldError
}

// Range bounds a numeric field inclusively.
type Range struct {
	Min int64
	Max int64
}

func (r Range) Validate(name, value string) *FieldError {
	n, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return &FieldError{Field: name, Rule: "Range", Message: fmt.Sprintf("%q is not a number", value)}
	}
	if n < r.Min || n > r.Max {
		return &FieldError{Field: name, Rule: "Range", Message: fmt.Sprintf("%d is outside [%d, %d]", n, r.Min, r.Max)}
	}
	return nil
}

// OneOf restricts a field to an enumerated value set.
type OneOf struct {
	Values []string
}

func (o OneOf) Validate(name, value string) *FieldError {
	if !slices.Contains(o.Values, value) {
		return &FieldError{Field: name, Rule: "OneOf", Message: fmt.Sprintf("%q is not one of %v", value, o.Values)}
	}
	return nil
}

// ListOf validates each element of a comma-separated list with an element
// validator.
type ListOf struct {
	Element Validator
}

func (l ListOf) Validate(name, value string) *FieldError {
	for _, element := range strings.Split(value, ",") {
		if err := l.Element.Validate(name, strings.TrimSpace(element)); err != nil {
			return err
		}
	}
	return nil
}

// NonEmpty rejects empty or all-whitespace values.
type NonEmpty struct{}

func (NonEmpty) Validate(name, value string) *FieldError {
	if strings.TrimSpace(value) == "" {
		return &FieldError{Field: name, Rule: "NonEmpty", Message: "value must not be empty"}
	}
	return nil
}

// Composite runs its children in order and reports the first violation.
type Composite struct {
	Children []Validator
}

func (c Composite) Validate(name, value string) *FieldError {
	for _, child := range c.Children {
		if err := child.Validate(name, value); err != nil {
			return err
		}
	}
	return nil
}

// Compile turns a namespace's declarative constraint rules into executable
// validators keyed by field name.
func Compile(rules []model.ValidationRule) map[string]Validator {
	compiled := make(map[string]Validator, len(rules))
	for _, rule := range rules {
		validator := compileRule(rule)
		if validator == nil {
			continue
		}
		if existing, ok := compiled[rule.Field]; ok {
			// Multiple rules on one field compose.
			if composite, ok := existing.(Composite); ok {
				composite.Children = append(composite.Children, validator)
				compiled[rule.Field] = composite
			} else {
				compiled[rule.Field] = Composite{Children: []Validator{existing, validator}}
			}
			continue
		}
		compiled[rule.Field] = validator
	}
	return compiled
}

func compileRule(rule model.ValidationRule) Validator {
	switch rule.Kind {
	case model.ValidationRange:
		return Range{Min: rule.Min, Max: rule.Max}
	case model.ValidationOneOf:
		return OneOf{Values: rule.Values}
	case model.ValidationListOf:
		return ListOf{Element: OneOf{Values: rule.Values}}
	case model.ValidationNonEmpty:
		return NonEmpty{}
	}
	return nil
}

// ValidateFields evaluates compiled validators against a field/value map and
// collects every violation. Fields without a validator pass untouched.
func ValidateFields(validators map[string]Validator, fields map[string]string) Errors {
	var batch Errors
	for field, validator := range validators {
		value, ok := fields[field]
		if !ok {
			value = ""
		}
		if err := validator.Validate(field, value); err != nil {
			batch = append(batch, *err)
		}
	}
	return batch
}
