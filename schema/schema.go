// Package schema defines the static table description shared by the query
// compiler, the queryset runtime and the schema synchronizer.
package schema

import (
	"fmt"
)

// FieldSpec describes a single declared column.
type FieldSpec struct {
	// Type is the declared CQL type, e.g. "text", "int", "set<text>".
	Type string

	// Required marks fields that must carry a value on insert.
	Required bool
}

// TableSchema is the immutable descriptor of a model's table. It is built
// once when the model is declared and shared by reference afterwards; no
// component may mutate it.
type TableSchema struct {
	// TableName is the table this model maps to.
	TableName string

	// FieldOrder preserves declaration order for Fields. Insert column
	// lists and row mapping iterate in this order.
	FieldOrder []string

	// Fields maps column name to its spec.
	Fields map[string]FieldSpec

	// PartitionKeys is the non-empty ordered prefix of the primary key.
	PartitionKeys []string

	// ClusteringKeys orders rows within a partition. May be empty.
	ClusteringKeys []string

	// Indexes lists fields with a secondary index.
	Indexes []string
}

// PrimaryKeys returns the full primary key: partition keys followed by
// clustering keys. The sequence is derived on every call, never stored.
func (s *TableSchema) PrimaryKeys() []string {
	keys := make([]string, 0, len(s.PartitionKeys)+len(s.ClusteringKeys))
	keys = append(keys, s.PartitionKeys...)
	keys = append(keys, s.ClusteringKeys...)
	return keys
}

// HasField reports whether the schema declares the given column.
func (s *TableSchema) HasField(name string) bool {
	_, ok := s.Fields[name]
	return ok
}

// IsPrimaryKey reports whether name is a partition or clustering key.
func (s *TableSchema) IsPrimaryKey(name string) bool {
	for _, k := range s.PartitionKeys {
		if k == name {
			return true
		}
	}
	for _, k := range s.ClusteringKeys {
		if k == name {
			return true
		}
	}
	return false
}

// IsIndexed reports whether name carries a secondary index.
func (s *TableSchema) IsIndexed(name string) bool {
	for _, idx := range s.Indexes {
		if idx == name {
			return true
		}
	}
	return false
}

// IsQueryable reports whether a predicate on name can be served without a
// full scan: the field is part of the primary key or indexed.
func (s *TableSchema) IsQueryable(name string) bool {
	return s.IsPrimaryKey(name) || s.IsIndexed(name)
}

// Validate checks the structural invariants of the descriptor.
func (s *TableSchema) Validate() error {
	if s.TableName == "" {
		return fmt.Errorf("schema: table name is required")
	}
	if len(s.Fields) == 0 {
		return fmt.Errorf("schema: table %q declares no fields", s.TableName)
	}
	if len(s.FieldOrder) != len(s.Fields) {
		return fmt.Errorf("schema: table %q field order does not match field set", s.TableName)
	}
	for _, name := range s.FieldOrder {
		if _, ok := s.Fields[name]; !ok {
			return fmt.Errorf("schema: table %q orders unknown field %q", s.TableName, name)
		}
	}
	if len(s.PartitionKeys) == 0 {
		return fmt.Errorf("schema: table %q has no partition key", s.TableName)
	}
	for _, k := range s.PartitionKeys {
		if !s.HasField(k) {
			return fmt.Errorf("schema: table %q partition key %q is not a declared field", s.TableName, k)
		}
	}
	for _, k := range s.ClusteringKeys {
		if !s.HasField(k) {
			return fmt.Errorf("schema: table %q clustering key %q is not a declared field", s.TableName, k)
		}
	}
	for _, idx := range s.Indexes {
		if !s.HasField(idx) {
			return fmt.Errorf("schema: table %q indexes unknown field %q", s.TableName, idx)
		}
	}
	return nil
}
