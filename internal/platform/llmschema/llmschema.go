// Package llmschema turns Go structs into strict OpenAI json_schema documents
// and decodes model output back into those structs.
package llmschema

import (
	"encoding/json"
	"fmt"
	"reflect"
	"sort"

	"github.com/invopop/jsonschema"
)

// Generate reflects T into a schema map that satisfies OpenAI strict mode:
// every object closes additionalProperties and lists all properties as required.
func Generate[T any]() (map[string]any, error) {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
		ExpandedStruct:            true,
	}
	var v T
	b, err := reflector.Reflect(v).MarshalJSON()
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, err
	}
	delete(m, "$schema")
	delete(m, "$id")
	enforceStrict(m)
	return m, nil
}

// MustGenerate is Generate for package-level schema variables.
func MustGenerate[T any]() map[string]any {
	m, err := Generate[T]()
	if err != nil {
		panic(fmt.Sprintf("llmschema: %v", err))
	}
	return m
}

func enforceStrict(schema map[string]any) {
	if t, ok := schema["type"].(string); ok && t == "object" {
		schema["additionalProperties"] = false
		if props, ok := schema["properties"].(map[string]any); ok {
			required := make([]string, 0, len(props))
			for name := range props {
				required = append(required, name)
			}
			sort.Strings(required)
			if len(required) > 0 {
				schema["required"] = required
			}
		}
	}
	if props, ok := schema["properties"].(map[string]any); ok {
		for _, p := range props {
			if pm, ok := p.(map[string]any); ok {
				enforceStrict(pm)
			}
		}
	}
	if items, ok := schema["items"].(map[string]any); ok {
		enforceStrict(items)
	}
}

// Decode converts a generic model response into T. Fields the model omitted
// stay at their zero value (or nil for pointers) so callers can apply defaults.
func Decode[T any](raw map[string]any) (T, error) {
	var out T
	if raw == nil {
		return out, fmt.Errorf("llmschema: empty model output")
	}
	b, err := json.Marshal(raw)
	if err != nil {
		return out, fmt.Errorf("llmschema: marshal: %w", err)
	}
	if err := json.Unmarshal(b, &out); err != nil {
		return out, fmt.Errorf("llmschema: decode: %w", err)
	}
	return out, nil
}

// DecodeFields decodes each key of raw into the pointer registered for it in
// dst, one key at a time. A value of the wrong shape leaves its target
// untouched and its key is returned in bad. Missing and null keys are skipped.
// Only a nil payload or a non-pointer target is an error.
func DecodeFields(raw map[string]any, dst map[string]any) (bad []string, err error) {
	if raw == nil {
		return nil, fmt.Errorf("llmschema: empty model output")
	}
	keys := make([]string, 0, len(dst))
	for k := range dst {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		target := reflect.ValueOf(dst[k])
		if target.Kind() != reflect.Pointer || target.IsNil() {
			return nil, fmt.Errorf("llmschema: field %q needs a non-nil pointer target", k)
		}
		v, ok := raw[k]
		if !ok || v == nil {
			continue
		}
		b, err := json.Marshal(v)
		if err != nil {
			bad = append(bad, k)
			continue
		}
		tmp := reflect.New(target.Elem().Type())
		if err := json.Unmarshal(b, tmp.Interface()); err != nil {
			bad = append(bad, k)
			continue
		}
		target.Elem().Set(tmp.Elem())
	}
	return bad, nil
}
