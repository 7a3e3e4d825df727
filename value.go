package lcd

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"time"
)

// Type is the expected runtime type of a scalar field.
type Type int

const (
	TypeAny Type = iota
	TypeString
	TypeInt
	TypeNumber
	TypeBool
	TypeObject
	TypeArray
	TypeTime
)

func (t Type) String() string {
	switch t {
	case TypeString:
		return "string"
	case TypeInt:
		return "int"
	case TypeNumber:
		return "number"
	case TypeBool:
		return "bool"
	case TypeObject:
		return "object"
	case TypeArray:
		return "array"
	case TypeTime:
		return "time"
	default:
		return "any"
	}
}

// ParseType maps a type name ("string", "int", "integer", "number", "bool",
// "boolean", "object", "array", "time", "any") to a Type.
func ParseType(s string) (Type, bool) {
	switch s {
	case "", "any":
		return TypeAny, true
	case "string":
		return TypeString, true
	case "int", "integer":
		return TypeInt, true
	case "number", "float":
		return TypeNumber, true
	case "bool", "boolean":
		return TypeBool, true
	case "object", "map":
		return TypeObject, true
	case "array", "list":
		return TypeArray, true
	case "time":
		return TypeTime, true
	}
	return TypeAny, false
}

// Accepts reports whether v (non-nil) is a value of type t. Numbers are
// accepted in every representation produced by the decoders: Go numeric kinds,
// float64 and json.Number. Int accepts floats with an integral value.
func (t Type) Accepts(v any) bool {
	switch t {
	case TypeAny:
		return true
	case TypeString:
		_, ok := v.(string)
		return ok
	case TypeBool:
		_, ok := v.(bool)
		return ok
	case TypeInt:
		return isInteger(v)
	case TypeNumber:
		_, ok := toFloat(v)
		return ok
	case TypeObject:
		_, ok := asObject(v)
		return ok
	case TypeArray:
		_, ok := asList(v)
		return ok
	case TypeTime:
		_, ok := v.(time.Time)
		return ok
	}
	return false
}

// TypeNameOf names the JSON-level type of v for diagnostics.
func TypeNameOf(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case bool:
		return "bool"
	case json.Number:
		return "number"
	case time.Time:
		return "time"
	case *Instance:
		return "object"
	}
	if IsMissing(v) {
		return "missing"
	}
	if _, ok := toFloat(v); ok {
		return "number"
	}
	if _, ok := asObject(v); ok {
		return "object"
	}
	if _, ok := asList(v); ok {
		return "array"
	}
	return fmt.Sprintf("%T", v)
}

func isInteger(v any) bool {
	switch n := v.(type) {
	case json.Number:
		if _, err := strconv.ParseInt(string(n), 10, 64); err == nil {
			return true
		}
		f, err := n.Float64()
		return err == nil && f == math.Trunc(f) && !math.IsInf(f, 0)
	case float32:
		return float64(n) == math.Trunc(float64(n)) && !math.IsInf(float64(n), 0)
	case float64:
		return n == math.Trunc(n) && !math.IsInf(n, 0)
	}
	switch reflect.ValueOf(v).Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return true
	}
	return false
}

// ToFloat converts any numeric representation to float64.
func ToFloat(v any) (float64, bool) { return toFloat(v) }

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case json.Number:
		f, err := strconv.ParseFloat(string(n), 64)
		return f, err == nil
	case bool, string, nil:
		return 0, false
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	}
	return 0, false
}

// ToInt converts an integral numeric representation to int64. Values outside
// the int64 range are reported as not convertible.
func ToInt(v any) (int64, bool) {
	if !isInteger(v) {
		return 0, false
	}
	switch n := v.(type) {
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return i, true
		}
		f, _ := n.Float64()
		return floatToInt(f)
	case float64:
		return floatToInt(n)
	case float32:
		return floatToInt(float64(n))
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		u := rv.Uint()
		if u > math.MaxInt64 {
			return 0, false
		}
		return int64(u), true
	}
	return rv.Int(), true
}

// floatToInt converts an integral float, rejecting values int64 cannot hold.
// 2^63 is the first float64 above math.MaxInt64.
func floatToInt(f float64) (int64, bool) {
	if f < math.MinInt64 || f >= 1<<63 {
		return 0, false
	}
	return int64(f), true
}

// asObject views v as a string-keyed object.
func asObject(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case map[any]any:
		out := make(map[string]any, len(m))
		for k, vv := range m {
			ks, ok := k.(string)
			if !ok {
				return nil, false
			}
			out[ks] = vv
		}
		return out, true
	case nil:
		return nil, false
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String {
		return nil, false
	}
	out := make(map[string]any, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		out[iter.Key().String()] = iter.Value().Interface()
	}
	return out, true
}

// asList views v as an ordered sequence. Strings and byte slices are not lists.
func asList(v any) ([]any, bool) {
	switch l := v.(type) {
	case []any:
		return l, true
	case []map[string]any:
		out := make([]any, len(l))
		for i := range l {
			out[i] = l[i]
		}
		return out, true
	case []*Instance:
		out := make([]any, len(l))
		for i := range l {
			out[i] = l[i]
		}
		return out, true
	case nil, string, []byte:
		return nil, false
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}

// cloneValue deep-copies plain maps and slices so instances never alias the
// candidate or a declared default.
func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, vv := range t {
			out[k] = cloneValue(vv)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i := range t {
			out[i] = cloneValue(t[i])
		}
		return out
	default:
		return v
	}
}
