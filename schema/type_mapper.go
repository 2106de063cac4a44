package schema

import "strings"

// canonicalTypes maps CQL base types to the canonical form used when
// diffing a declared schema against the live table. Cassandra reports
// several aliases for the same storage representation, so synonyms are
// collapsed before comparison.
var canonicalTypes = map[string]string{
	"text":      "text",
	"varchar":   "text",
	"ascii":     "text",
	"int":       "int",
	"varint":    "int",
	"smallint":  "int",
	"tinyint":   "int",
	"bigint":    "bigint",
	"float":     "float",
	"double":    "double",
	"boolean":   "boolean",
	"uuid":      "uuid",
	"timeuuid":  "uuid",
	"timestamp": "timestamp",
	"date":      "date",
	"time":      "time",
	"blob":      "blob",
	"decimal":   "decimal",
	"inet":      "inet",
	"counter":   "counter",
	"duration":  "duration",
	"list":      "list",
	"set":       "set",
	"map":       "map",
	"tuple":     "tuple",
	"frozen":    "frozen",
}

// BaseType strips generic and precision suffixes from a CQL type:
// "set<text>" becomes "set", "decimal(10,2)" becomes "decimal".
func BaseType(cqlType string) string {
	t := cqlType
	if i := strings.IndexByte(t, '<'); i >= 0 {
		t = t[:i]
	}
	if i := strings.IndexByte(t, '('); i >= 0 {
		t = t[:i]
	}
	return strings.ToLower(strings.TrimSpace(t))
}

// CanonicalType normalizes a CQL type for schema comparison. Unknown types
// (user-defined types, for instance) compare by their lowercased base name.
func CanonicalType(cqlType string) string {
	base := BaseType(cqlType)
	if c, ok := canonicalTypes[base]; ok {
		return c
	}
	return base
}
