package codec

import (
	"fmt"
	"reflect"
)

// stripFuncs walks v and returns a copy with every function-valued field
// or map/slice element omitted. Struct fields become a map[string]any
// keyed by the field's json tag (or its name, lowercased-first, absent a
// tag) so that reflect.Value trees too — not just concrete structs —
// come out the other side JSON-safe. Types with their own MarshalJSON
// (codec.Map, codec.Set, time.Time, …) are left untouched and handled by
// encoding/json itself.
func stripFuncs(v any) any {
	if v == nil {
		return nil
	}
	if _, ok := v.(marshalerLike); ok {
		return v
	}
	rv := reflect.ValueOf(v)
	return stripValue(rv)
}

type marshalerLike interface {
	MarshalJSON() ([]byte, error)
}

func stripValue(rv reflect.Value) any {
	if !rv.IsValid() {
		return nil
	}

	if rv.CanInterface() {
		if _, ok := rv.Interface().(marshalerLike); ok {
			return rv.Interface()
		}
	}

	switch rv.Kind() {
	case reflect.Func, reflect.Chan, reflect.UnsafePointer:
		return nil
	case reflect.Ptr, reflect.Interface:
		if rv.IsNil() {
			return nil
		}
		return stripValue(rv.Elem())
	case reflect.Struct:
		t := rv.Type()
		out := make(map[string]any, t.NumField())
		for i := 0; i < t.NumField(); i++ {
			field := t.Field(i)
			if field.PkgPath != "" {
				continue // unexported
			}
			fv := rv.Field(i)
			if fv.Kind() == reflect.Func || fv.Kind() == reflect.Chan {
				continue
			}
			name, omitempty, skip := jsonFieldName(field)
			if skip {
				continue
			}
			if omitempty && isEmptyValue(fv) {
				continue
			}
			out[name] = stripValue(fv)
		}
		return out
	case reflect.Map:
		if rv.IsNil() {
			return nil
		}
		out := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			out[formatMapKey(iter.Key())] = stripValue(iter.Value())
		}
		return out
	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice && rv.IsNil() {
			return nil
		}
		out := make([]any, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			out[i] = stripValue(rv.Index(i))
		}
		return out
	default:
		if rv.CanInterface() {
			return rv.Interface()
		}
		return nil
	}
}

func jsonFieldName(f reflect.StructField) (name string, omitempty bool, skip bool) {
	tag := f.Tag.Get("json")
	if tag == "-" {
		return "", false, true
	}
	if tag == "" {
		return f.Name, false, false
	}
	parts := splitComma(tag)
	name = parts[0]
	if name == "" {
		name = f.Name
	}
	for _, opt := range parts[1:] {
		if opt == "omitempty" {
			omitempty = true
		}
	}
	return name, omitempty, false
}

func splitComma(s string) []string {
	var out []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == ',' {
			out = append(out, s[start:i])
			start = i + 1
		}
	}
	out = append(out, s[start:])
	return out
}

func isEmptyValue(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Array, reflect.Map, reflect.Slice, reflect.String:
		return v.Len() == 0
	case reflect.Bool:
		return !v.Bool()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int() == 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return v.Uint() == 0
	case reflect.Float32, reflect.Float64:
		return v.Float() == 0
	case reflect.Interface, reflect.Ptr:
		return v.IsNil()
	}
	return false
}

func formatMapKey(v reflect.Value) string {
	if v.Kind() == reflect.String {
		return v.String()
	}
	if v.CanInterface() {
		if s, ok := v.Interface().(fmt.Stringer); ok {
			return s.String()
		}
		return fmt.Sprint(v.Interface())
	}
	return fmt.Sprintf("%v", v)
}
