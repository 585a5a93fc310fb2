package core

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// ValueType tags the variant held by a Value.
type ValueType int

const (
	TypeString ValueType = iota
	TypeInt
	TypeFloat
	TypeList
)

// String returns the name of the value type.
func (t ValueType) String() string {
	switch t {
	case TypeString:
		return "string"
	case TypeInt:
		return "int"
	case TypeFloat:
		return "float"
	case TypeList:
		return "list"
	default:
		return "unknown"
	}
}

// Value is an attribute value. It is a closed union: exactly one of the
// fields is meaningful, selected by Type.
type Value struct {
	Type  ValueType
	Str   string
	Int   int64
	Float float64
	List  []Value
}

// String builds a string value.
func String(s string) Value { return Value{Type: TypeString, Str: s} }

// Int builds an integer value.
func Int(i int64) Value { return Value{Type: TypeInt, Int: i} }

// Float builds a float value.
func Float(f float64) Value { return Value{Type: TypeFloat, Float: f} }

// List builds a list value.
func List(items ...Value) Value {
	if items == nil {
		items = []Value{}
	}
	return Value{Type: TypeList, List: items}
}

// Strings builds a list of string values.
func Strings(items ...string) Value {
	list := make([]Value, len(items))
	for i, s := range items {
		list[i] = String(s)
	}
	return List(list...)
}

// String renders the value the way an operator would type it.
// Strings are returned verbatim.
func (v Value) String() string {
	switch v.Type {
	case TypeString:
		return v.Str
	case TypeInt:
		return strconv.FormatInt(v.Int, 10)
	case TypeFloat:
		return FormatFloat(v.Float)
	case TypeList:
		data, err := marshalJSON(v.JSON())
		if err != nil {
			return fmt.Sprintf("%v", v.Interface())
		}
		return string(data)
	default:
		return ""
	}
}

// Equal reports whether two values hold the same variant and content.
func (v Value) Equal(other Value) bool {
	if v.Type != other.Type {
		return false
	}
	switch v.Type {
	case TypeString:
		return v.Str == other.Str
	case TypeInt:
		return v.Int == other.Int
	case TypeFloat:
		return v.Float == other.Float
	case TypeList:
		if len(v.List) != len(other.List) {
			return false
		}
		for i := range v.List {
			if !v.List[i].Equal(other.List[i]) {
				return false
			}
		}
		return true
	}
	return false
}

// Clone returns a deep copy of the value.
func (v Value) Clone() Value {
	if v.Type != TypeList {
		return v
	}
	items := make([]Value, len(v.List))
	for i, item := range v.List {
		items[i] = item.Clone()
	}
	return List(items...)
}

// Interface converts the value to plain Go types (string, int64, float64, []any).
func (v Value) Interface() any {
	switch v.Type {
	case TypeString:
		return v.Str
	case TypeInt:
		return v.Int
	case TypeFloat:
		return v.Float
	case TypeList:
		items := make([]any, len(v.List))
		for i, item := range v.List {
			items[i] = item.Interface()
		}
		return items
	default:
		return nil
	}
}

// JSON converts the value like Interface, but renders floats as json.Number
// so that integral floats keep their fractional part when encoded.
func (v Value) JSON() any {
	switch v.Type {
	case TypeFloat:
		return json.Number(FormatFloat(v.Float))
	case TypeList:
		items := make([]any, len(v.List))
		for i, item := range v.List {
			items[i] = item.JSON()
		}
		return items
	default:
		return v.Interface()
	}
}

// FormatFloat formats f with the shortest representation that still reads
// back as a float: integral values keep a ".0" suffix.
func FormatFloat(f float64) string {
	if math.IsInf(f, 1) {
		return "inf"
	}
	if math.IsInf(f, -1) {
		return "-inf"
	}
	if math.IsNaN(f) {
		return "nan"
	}
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eEn") {
		s += ".0"
	}
	return s
}

// ValueOf converts a decoded document value into a Value.
// It accepts the shapes produced by the json, yaml and toml decoders.
func ValueOf(raw any) (Value, error) {
	switch x := raw.(type) {
	case Value:
		return x, nil
	case string:
		return String(x), nil
	case bool:
		if x {
			return String("True"), nil
		}
		return String("False"), nil
	case int:
		return Int(int64(x)), nil
	case int32:
		return Int(int64(x)), nil
	case int64:
		return Int(x), nil
	case uint64:
		if x > math.MaxInt64 {
			return Float(float64(x)), nil
		}
		return Int(int64(x)), nil
	case float32:
		return Float(float64(x)), nil
	case float64:
		return Float(x), nil
	case json.Number:
		s := x.String()
		if strings.ContainsAny(s, ".eE") {
			f, err := x.Float64()
			if err != nil {
				return Value{}, fmt.Errorf("%w: %s", ErrInvalidValue, s)
			}
			return Float(f), nil
		}
		if i, err := x.Int64(); err == nil {
			return Int(i), nil
		}
		f, err := x.Float64()
		if err != nil {
			return Value{}, fmt.Errorf("%w: %s", ErrInvalidValue, s)
		}
		return Float(f), nil
	case time.Time:
		return String(FormatTime(x)), nil
	case []string:
		return Strings(x...), nil
	case []any:
		items := make([]Value, 0, len(x))
		for _, item := range x {
			v, err := ValueOf(item)
			if err != nil {
				return Value{}, err
			}
			items = append(items, v)
		}
		return List(items...), nil
	default:
		return Value{}, fmt.Errorf("%w: unsupported type %T", ErrInvalidValue, raw)
	}
}

// Coerce converts v to the given type. The second result is false when the
// conversion is not possible; callers typically fall back to the raw string.
func (v Value) Coerce(to ValueType, parseList func(string) (Value, error)) (Value, bool) {
	if v.Type == to {
		return v.Clone(), true
	}
	switch to {
	case TypeString:
		return String(v.String()), true
	case TypeInt:
		switch v.Type {
		case TypeString:
			i, err := strconv.ParseInt(strings.TrimSpace(v.Str), 10, 64)
			if err != nil {
				return Value{}, false
			}
			return Int(i), true
		case TypeFloat:
			if math.IsNaN(v.Float) || v.Float >= 0x1p63 || v.Float < -0x1p63 {
				return Value{}, false
			}
			return Int(int64(v.Float)), true
		}
	case TypeFloat:
		switch v.Type {
		case TypeString:
			f, err := strconv.ParseFloat(strings.TrimSpace(v.Str), 64)
			if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
				return Value{}, false
			}
			return Float(f), true
		case TypeInt:
			return Float(float64(v.Int)), true
		}
	case TypeList:
		if v.Type == TypeString && parseList != nil {
			parsed, err := parseList(v.Str)
			if err != nil || parsed.Type != TypeList {
				return Value{}, false
			}
			return parsed, true
		}
	}
	return Value{}, false
}
