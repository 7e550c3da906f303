// Copyright 2024 Redpanda Data, Inc.
//
// Use of this software is governed by the Business Source License
// included in the file licenses/BSL.md
//
// As of the Change Date specified in that file, in accordance with
// the Business Source License, use of this software will be governed
// by the Apache License, Version 2.0

package model

import "github.com/twmb/franz-go/pkg/sr"

// SchemaType is the serialization format of a registered schema.
type SchemaType string

const (
	SchemaTypeAvro     SchemaType = "AVRO"
	SchemaTypeProtobuf SchemaType = "PROTOBUF"
	SchemaTypeJSON     SchemaType = "JSON"
)

// Schema is a reconciled schema-registry subject.
type Schema struct {
	Metadata          Metadata   `json:"metadata"`
	Spec              SchemaSpec `json:"spec"`
	Status            Status     `json:"status,omitempty"`
	DeletionRequested bool       `json:"deletionRequested,omitempty"`
}

// SchemaSpec is the desired shape of a subject. Metadata.Name doubles as the
// subject name.
type SchemaSpec struct {
	Schema        string            `json:"schema"`
	Type          SchemaType        `json:"schemaType,omitempty"`
	Compatibility string            `json:"compatibility,omitempty"`
	References    []SchemaReference `json:"references,omitempty"`
}

// SchemaReference names another subject version this schema depends on.
type SchemaReference struct {
	Name    string `json:"name"`
	Subject string `json:"subject"`
	Version int    `json:"version"`
}

var schemaTypeToKafka = map[SchemaType]sr.SchemaType{
	SchemaTypeAvro:     sr.TypeAvro,
	SchemaTypeProtobuf: sr.TypeProtobuf,
	SchemaTypeJSON:     sr.TypeJSON,
}

// ToKafka translates the schema type into its registry counterpart. Avro is
// the registry default and is what an unset type maps to.
func (t SchemaType) ToKafka() sr.SchemaType {
	if schemaType, exists := schemaTypeToKafka[t]; exists {
		return schemaType
	}

	return sr.TypeAvro
}

// ToKafka translates a reference into its registry counterpart.
func (r SchemaReference) ToKafka() sr.SchemaReference {
	return sr.SchemaReference{
		Name:    r.Name,
		Subject: r.Subject,
		Version: r.Version,
	}
}
