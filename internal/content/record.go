// Package content is the trust boundary for generated text: everything the
// generation service returns passes through Repair before any other package
// sees it, and comes out as a Record with tolerant accessors.
package content

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/oagudelo/mgadoc/internal/money"
)

// Record is one repaired structured response. Values keep their decoded JSON
// shapes; accessors absorb the type drift the generator is prone to (numbers
// where strings were asked for, objects where lists were, missing keys).
type Record map[string]any

// Str returns the value at key as a string. Numbers are formatted, lists are
// comma-joined, objects are re-serialized; missing or null yields "".
func (r Record) Str(key string) string {
	if r == nil {
		return ""
	}
	return asString(r[key])
}

// StrOr returns Str(key), or def when the result is empty.
func (r Record) StrOr(key, def string) string {
	if s := r.Str(key); s != "" {
		return s
	}
	return def
}

// Map returns the object at key, or an empty Record.
func (r Record) Map(key string) Record {
	if r == nil {
		return Record{}
	}
	if m, ok := r[key].(map[string]any); ok {
		return Record(m)
	}
	return Record{}
}

// List returns the objects in the array at key. A single object is promoted
// to a one-element list; non-object elements are dropped.
func (r Record) List(key string) []Record {
	if r == nil {
		return nil
	}
	switch v := r[key].(type) {
	case []any:
		out := make([]Record, 0, len(v))
		for _, e := range v {
			if m, ok := e.(map[string]any); ok {
				out = append(out, Record(m))
			}
		}
		return out
	case map[string]any:
		return []Record{Record(v)}
	}
	return nil
}

// Strings returns the array at key as strings, skipping non-scalar elements.
func (r Record) Strings(key string) []string {
	if r == nil {
		return nil
	}
	arr, ok := r[key].([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(arr))
	for _, e := range arr {
		if s := asString(e); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Money parses the value at key as a currency amount; unparseable or missing
// values yield zero.
func (r Record) Money(key string) money.Amount {
	s := r.Str(key)
	if s == "" {
		return 0
	}
	a, err := money.ParseAmount(s)
	if err != nil {
		return 0
	}
	return a
}

// Bool reads yes/no answers the generator phrases in Spanish or as booleans.
func (r Record) Bool(key string) bool {
	if r == nil {
		return false
	}
	if b, ok := r[key].(bool); ok {
		return b
	}
	switch strings.ToLower(strings.TrimSpace(r.Str(key))) {
	case "sí", "si", "yes", "true", "1":
		return true
	}
	return false
}

// Clone returns a shallow copy of the record's top level.
func (r Record) Clone() Record {
	if r == nil {
		return Record{}
	}
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

func asString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		if t == float64(int64(t)) {
			return fmt.Sprintf("%d", int64(t))
		}
		return fmt.Sprintf("%g", t)
	case bool:
		if t {
			return "true"
		}
		return "false"
	case []any:
		parts := make([]string, 0, len(t))
		for _, e := range t {
			parts = append(parts, asString(e))
		}
		return strings.Join(parts, ", ")
	case map[string]any:
		b, err := json.Marshal(t)
		if err != nil {
			return ""
		}
		return string(b)
	}
	return fmt.Sprintf("%v", v)
}
