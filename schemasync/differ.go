// Package schemasync introspects live table definitions, diffs them against
// declared schemas and drives the minimal additive DDL to reconcile them.
package schemasync

import (
	"fmt"
	"sort"

	"github.com/casql/casql/schema"
)

// LiveField is one column as reported by the store's metadata catalog.
type LiveField struct {
	// Type is the CQL type reported by system_schema.
	Type string

	// Kind distinguishes partition_key, clustering and regular columns.
	Kind string
}

// LiveSchema is the transient snapshot of a table as it exists in the
// store. It is produced by an Introspector and discarded after the diff.
type LiveSchema struct {
	Fields         map[string]LiveField
	PartitionKeys  []string
	ClusteringKeys []string
}

// PrimaryKeys returns partition keys followed by clustering keys.
func (l *LiveSchema) PrimaryKeys() []string {
	keys := make([]string, 0, len(l.PartitionKeys)+len(l.ClusteringKeys))
	keys = append(keys, l.PartitionKeys...)
	keys = append(keys, l.ClusteringKeys...)
	return keys
}

// TypeMismatch reports a column whose live storage type differs from the
// declared one. Reported only; never auto-applied.
type TypeMismatch struct {
	Field    string
	LiveType string
	WantType string
}

func (m TypeMismatch) String() string {
	return fmt.Sprintf("%s: %s -> %s", m.Field, m.LiveType, m.WantType)
}

// PKMismatch reports a difference between the live and declared primary key
// sequences. The store cannot alter a primary key in place, so this is fatal
// to any apply.
type PKMismatch struct {
	Live []string
	Want []string
}

func (m PKMismatch) String() string {
	return fmt.Sprintf("%v -> %v", m.Live, m.Want)
}

// Diff is the result of comparing a declared schema against the live table.
type Diff struct {
	// FieldsToAdd are declared columns missing from the live table, the
	// only changes ever applied automatically.
	FieldsToAdd []string

	// FieldsToRemove are live columns no longer declared. Reported only.
	FieldsToRemove []string

	// TypeMismatches are columns present on both sides with differing
	// canonical storage types. Reported only.
	TypeMismatches []TypeMismatch

	// PKMismatch is set when the primary key sequences differ.
	PKMismatch *PKMismatch
}

// Empty reports whether the schemas are already in sync.
func (d *Diff) Empty() bool {
	return len(d.FieldsToAdd) == 0 && len(d.FieldsToRemove) == 0 &&
		len(d.TypeMismatches) == 0 && d.PKMismatch == nil
}

// Compare diffs the declared schema against the live one. Field lists are
// sorted so the resulting DDL sequence is deterministic.
func Compare(model *schema.TableSchema, live *LiveSchema) *Diff {
	diff := &Diff{}

	for name := range model.Fields {
		if _, ok := live.Fields[name]; !ok {
			diff.FieldsToAdd = append(diff.FieldsToAdd, name)
		}
	}
	sort.Strings(diff.FieldsToAdd)

	for name := range live.Fields {
		if !model.HasField(name) {
			diff.FieldsToRemove = append(diff.FieldsToRemove, name)
		}
	}
	sort.Strings(diff.FieldsToRemove)

	var shared []string
	for name := range model.Fields {
		if _, ok := live.Fields[name]; ok {
			shared = append(shared, name)
		}
	}
	sort.Strings(shared)
	for _, name := range shared {
		want := schema.CanonicalType(model.Fields[name].Type)
		got := schema.CanonicalType(live.Fields[name].Type)
		if want != got {
			diff.TypeMismatches = append(diff.TypeMismatches, TypeMismatch{
				Field:    name,
				LiveType: live.Fields[name].Type,
				WantType: model.Fields[name].Type,
			})
		}
	}

	modelPK := model.PrimaryKeys()
	livePK := live.PrimaryKeys()
	if !equalSequences(modelPK, livePK) {
		diff.PKMismatch = &PKMismatch{Live: livePK, Want: modelPK}
	}

	return diff
}

func equalSequences(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
