// Package jsonx converts between Go values and datatypes.JSON columns.
package jsonx

import (
	"encoding/json"
	"strings"

	"gorm.io/datatypes"
)

// Encode marshals v for a jsonb column. Nil slices become [] and nil maps {}.
func Encode(v any) datatypes.JSON {
	switch t := v.(type) {
	case nil:
		return datatypes.JSON([]byte("null"))
	case []string:
		if t == nil {
			return datatypes.JSON([]byte("[]"))
		}
	case map[string]int:
		if t == nil {
			return datatypes.JSON([]byte("{}"))
		}
	}
	b, err := json.Marshal(v)
	if err != nil {
		return datatypes.JSON([]byte("null"))
	}
	return datatypes.JSON(b)
}

// Decode unmarshals raw into T. Empty or invalid payloads yield the zero value.
func Decode[T any](raw datatypes.JSON) T {
	var out T
	if len(raw) == 0 {
		return out
	}
	_ = json.Unmarshal(raw, &out)
	return out
}

// Strings decodes a JSON string array, dropping blank entries.
func Strings(raw datatypes.JSON) []string {
	in := Decode[[]string](raw)
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
