package views

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
	"regexp"

	"github.com/flosch/pongo2/v6"
)

// Context holds the variables available to a template during a single render.
// Values can be nested maps, slices, scalars or structs. Structs are exposed through their JSON
// encoding so templates see the json field names.
type Context map[string]any

// validKey is the rule pongo2 applies to top-level context keys.
var validKey = regexp.MustCompile("^[a-zA-Z0-9_]+$")

func toContext(data any) (pongo2.Context, error) {
	var in map[string]any
	switch v := data.(type) {
	case nil:
		return pongo2.Context{}, nil
	case Context:
		in = v
	case pongo2.Context:
		in = v
	case map[string]any:
		in = v
	default:
		raw, err := jsonValue(v)
		if err != nil {
			return nil, err
		}
		m, ok := raw.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: %T does not encode to an object", ErrInvalidContext, data)
		}
		in = m
	}

	out := make(pongo2.Context, len(in))
	for key, value := range in {
		if !validKey.MatchString(key) {
			return nil, fmt.Errorf("%w: key %q is not a valid identifier", ErrInvalidContext, key)
		}
		converted, err := convertValue(value)
		if err != nil {
			return nil, fmt.Errorf("%w: key %q: %w", ErrInvalidContext, key, err)
		}
		out[key] = converted
	}
	return out, nil
}

func convertValue(value any) (any, error) {
	switch v := value.(type) {
	case nil, string, bool, int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64,
		float32, float64:
		return v, nil
	case map[string]any:
		out := make(map[string]any, len(v))
		for key, item := range v {
			converted, err := convertValue(item)
			if err != nil {
				return nil, err
			}
			out[key] = converted
		}
		return out, nil
	case []any:
		out := make([]any, 0, len(v))
		for _, item := range v {
			converted, err := convertValue(item)
			if err != nil {
				return nil, err
			}
			out = append(out, converted)
		}
		return out, nil
	case json.Number:
		return numberValue(v), nil
	}

	if reflect.ValueOf(value).Kind() == reflect.Func {
		return value, nil
	}
	return jsonValue(value)
}

// jsonValue converts any value into maps, slices and scalars through its JSON encoding.
// Numbers become int64 when they are integral so templates print "25" rather than "25.000000".
func jsonValue(v any) (any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidContext, err)
	}
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()
	var out any
	if err := decoder.Decode(&out); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidContext, err)
	}
	return convertValue(out)
}

func numberValue(n json.Number) any {
	if i, err := n.Int64(); err == nil {
		return i
	}
	if f, err := n.Float64(); err == nil {
		return f
	}
	return n.String()
}
