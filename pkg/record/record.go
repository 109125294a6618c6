// Package record defines the dynamically typed tree value used as the
// serialization interchange format for every polymorphic object in ctcore.
// A record is a string-keyed mapping whose values are scalars, lists, or
// nested records. Nodes representing a polymorphic object carry an integer
// "type-id" field identifying the concrete subtype for registry dispatch.
package record

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
)

// Well-known field names shared by the serialization protocol.
const (
	// FieldTypeID carries the concrete type tag of a polymorphic node.
	FieldTypeID = "type-id"
	// FieldElemental carries the coarse family code used by the fallback tier.
	FieldElemental = "elemental-type"
	// FieldName carries the display name of a component or system.
	FieldName = "name"
)

// Record is a dynamically typed mapping node. Values are scalars
// (float64, int, string, bool), []any lists, or nested Records.
type Record map[string]any

// New returns an empty record.
func New() Record {
	return Record{}
}

// Set stores a value under key and returns the record for chaining.
func (r Record) Set(key string, value any) Record {
	r[key] = value
	return r
}

// Has reports whether the record contains key.
func (r Record) Has(key string) bool {
	_, ok := r[key]
	return ok
}

// Float returns the numeric value stored under key. Integer-typed values are
// widened; absent or non-numeric values yield (0,false).
func (r Record) Float(key string) (float64, bool) {
	v, ok := r[key]
	if !ok {
		return 0, false
	}
	return asFloat(v)
}

// Int returns the integer value stored under key. Float values with no
// fractional part are accepted since JSON decoding yields float64 for all
// numbers.
func (r Record) Int(key string) (int, bool) {
	f, ok := r.Float(key)
	if !ok {
		return 0, false
	}
	if f != math.Trunc(f) {
		return 0, false
	}
	return int(f), true
}

// String returns the string stored under key.
func (r Record) String(key string) (string, bool) {
	v, ok := r[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// Bool returns the bool stored under key.
func (r Record) Bool(key string) (bool, bool) {
	v, ok := r[key]
	if !ok {
		return false, false
	}
	b, ok := v.(bool)
	return b, ok
}

// List returns the list stored under key.
func (r Record) List(key string) ([]any, bool) {
	v, ok := r[key]
	if !ok {
		return nil, false
	}
	l, ok := v.([]any)
	return l, ok
}

// Child returns the nested record stored under key. JSON decoding produces
// map[string]any rather than Record, so both shapes are accepted.
func (r Record) Child(key string) (Record, bool) {
	v, ok := r[key]
	if !ok {
		return nil, false
	}
	switch typed := v.(type) {
	case Record:
		return typed, true
	case map[string]any:
		return Record(typed), true
	default:
		return nil, false
	}
}

// TypeID returns the type tag carried by a polymorphic node.
func (r Record) TypeID() (int, bool) {
	return r.Int(FieldTypeID)
}

// Clone deep-copies the record so that callers may freely mutate the result
// without aliasing the original tree.
func (r Record) Clone() Record {
	if r == nil {
		return nil
	}
	clone := make(Record, len(r))
	for k, v := range r {
		clone[k] = cloneValue(v)
	}
	return clone
}

// Equal reports structural equality of two records after normalizing numeric
// representations, matching what a JSON round trip would preserve.
func Equal(a, b Record) bool {
	return reflect.DeepEqual(normalize(map[string]any(a)), normalize(map[string]any(b)))
}

// Marshal encodes the record as JSON.
func Marshal(r Record) ([]byte, error) {
	return json.Marshal(map[string]any(r))
}

// Unmarshal decodes JSON into a record, converting nested map[string]any
// nodes into Record so accessor helpers work uniformly.
func Unmarshal(data []byte) (Record, error) {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode record: %w", err)
	}
	return FromRaw(raw), nil
}

// FromRaw converts a JSON-compatible map tree into a Record tree.
func FromRaw(raw map[string]any) Record {
	if raw == nil {
		return nil
	}
	r := make(Record, len(raw))
	for k, v := range raw {
		r[k] = convertValue(v)
	}
	return r
}

func convertValue(v any) any {
	switch typed := v.(type) {
	case map[string]any:
		return FromRaw(typed)
	case Record:
		return FromRaw(map[string]any(typed))
	case []any:
		out := make([]any, len(typed))
		for i, item := range typed {
			out[i] = convertValue(item)
		}
		return out
	default:
		return v
	}
}

// cloneValue deep copies supported JSON-compatible values to prevent shared
// references between callers.
func cloneValue(value any) any {
	switch typed := value.(type) {
	case nil:
		return nil
	case Record:
		return typed.Clone()
	case map[string]any:
		return map[string]any(Record(typed).Clone())
	case []any:
		out := make([]any, len(typed))
		for i, item := range typed {
			out[i] = cloneValue(item)
		}
		return out
	default:
		return typed
	}
}

// normalize rewrites a tree so numeric scalars become float64 and all mapping
// nodes become plain map[string]any, the shape JSON decoding produces.
func normalize(v any) any {
	switch typed := v.(type) {
	case Record:
		return normalize(map[string]any(typed))
	case map[string]any:
		out := make(map[string]any, len(typed))
		for k, item := range typed {
			out[k] = normalize(item)
		}
		return out
	case []any:
		out := make([]any, len(typed))
		for i, item := range typed {
			out[i] = normalize(item)
		}
		return out
	default:
		if f, ok := asFloat(typed); ok {
			return f
		}
		return typed
	}
}

// AsFloat coerces any numeric scalar to float64, mirroring the widening the
// Float accessor applies to mapping values.
func AsFloat(v any) (float64, bool) {
	return asFloat(v)
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}
