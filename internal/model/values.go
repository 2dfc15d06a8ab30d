package model

import (
	"encoding/json"
	"fmt"
	"strings"
)

// FieldValue holds the value(s) of one header or query field. A field that
// occurred once is a scalar on the wire; repeated occurrences form an ordered
// list. JSON marshaling preserves that shape: exactly one value encodes as a
// plain string, more than one as an array.
type FieldValue []string

// MarshalJSON encodes a single value as a string and multiple values as an
// ordered array.
func (v FieldValue) MarshalJSON() ([]byte, error) {
	if len(v) == 1 {
		return json.Marshal(v[0])
	}
	return json.Marshal([]string(v))
}

// UnmarshalJSON accepts either a plain string or an array of strings.
func (v *FieldValue) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*v = FieldValue{s}
		return nil
	}
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*v = FieldValue(list)
		return nil
	}
	return fmt.Errorf("field value must be a string or an array of strings, got %s", data)
}

// FieldValues maps header or query field names to their value(s).
type FieldValues map[string]FieldValue

// Get returns the first value of the field matching name case-insensitively,
// or the empty string when absent.
func (f FieldValues) Get(name string) string {
	for k, v := range f {
		if strings.EqualFold(k, name) && len(v) > 0 {
			return v[0]
		}
	}
	return ""
}

// Set replaces the field matching name case-insensitively, keeping the
// casing already present in the map; absent fields are stored under name.
func (f FieldValues) Set(name, value string) {
	for k := range f {
		if strings.EqualFold(k, name) {
			f[k] = FieldValue{value}
			return
		}
	}
	f[name] = FieldValue{value}
}

// Add appends value to the field named name, folding repeated occurrences
// into an ordered list. Unlike Set, names are matched exactly.
func (f FieldValues) Add(name, value string) {
	f[name] = append(f[name], value)
}

// Clone returns a deep copy. Mutating the copy never affects the original.
func (f FieldValues) Clone() FieldValues {
	if f == nil {
		return FieldValues{}
	}
	out := make(FieldValues, len(f))
	for k, v := range f {
		out[k] = append(FieldValue(nil), v...)
	}
	return out
}
