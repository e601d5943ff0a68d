package ast

import (
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
)

// Dump produces a deterministic JSON representation of a node, used for
// golden snapshot testing. It keeps the teacher's print.go intent (strip
// instance-specific metadata, tag every node with its concrete type,
// produce stable output) but walks nodes via reflection instead of a
// hand-written type switch, since the Alumina node set is much larger
// than a hand-maintained switch can comfortably track.
//
// Spans are always omitted. An ID holds only an unexported counter, so
// an ID field dumps as a bare type tag with no number; two structurally
// identical trees minted from different arenas therefore dump
// identically.
func Dump(node Node) string {
	data, err := json.MarshalIndent(dumpValue(reflect.ValueOf(node)), "", "  ")
	if err != nil {
		return fmt.Sprintf("error: %v", err)
	}
	return string(data)
}

// Compact is Dump without indentation, for one-line diffs.
func Compact(node Node) string {
	data, err := json.Marshal(dumpValue(reflect.ValueOf(node)))
	if err != nil {
		return fmt.Sprintf("error: %v", err)
	}
	return string(data)
}

func dumpValue(v reflect.Value) any {
	if !v.IsValid() {
		return nil
	}

	switch v.Kind() {
	case reflect.Ptr, reflect.Interface:
		if v.IsNil() {
			return nil
		}
		return dumpValue(v.Elem())

	case reflect.Slice, reflect.Array:
		if v.Kind() == reflect.Slice && v.IsNil() {
			return nil
		}
		out := make([]any, v.Len())
		for i := 0; i < v.Len(); i++ {
			out[i] = dumpValue(v.Index(i))
		}
		return out

	case reflect.Map:
		// The only map-typed fields are the AssocFns aggregation maps,
		// which we render as a sorted slice of {key, value} pairs for
		// deterministic output.
		keys := v.MapKeys()
		names := make([]string, len(keys))
		index := map[string]reflect.Value{}
		for i, k := range keys {
			s := fmt.Sprintf("%v", k.Interface())
			names[i] = s
			index[s] = k
		}
		sort.Strings(names)
		out := make([]any, 0, len(names))
		for _, name := range names {
			out = append(out, map[string]any{
				"key":   name,
				"value": dumpValue(v.MapIndex(index[name])),
			})
		}
		return out

	case reflect.Struct:
		return dumpStruct(v)

	default:
		if !v.CanInterface() {
			return nil
		}
		return v.Interface()
	}
}

func dumpStruct(v reflect.Value) any {
	t := v.Type()

	m := map[string]any{"type": t.Name()}
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}
		// The embedded base/itemBase structs are unexported, so the check
		// above already skips them: a node's span and an item's own id
		// never appear in the dump. Only an exported embedded struct gets
		// here, and its fields are inlined rather than nested.
		if field.Anonymous {
			embedded := dumpValue(v.Field(i))
			if em, ok := embedded.(map[string]any); ok {
				for k, val := range em {
					if k == "type" {
						continue
					}
					m[k] = val
				}
			}
			continue
		}
		if field.Name == "Span" {
			continue
		}
		val := dumpValue(v.Field(i))
		if val == nil {
			continue
		}
		m[fieldKey(field.Name)] = val
	}
	return m
}

// fieldKey lower-cases the first rune of a Go exported field name to
// match the teacher's lowerCamelCase JSON keys ("name", "value", ...).
func fieldKey(name string) string {
	if name == "" {
		return name
	}
	r := []rune(name)
	if r[0] >= 'A' && r[0] <= 'Z' {
		r[0] = r[0] - 'A' + 'a'
	}
	return string(r)
}
