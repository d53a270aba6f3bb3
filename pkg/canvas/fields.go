package canvas

import (
	"fmt"
	"maps"
	"math"
	"strconv"
)

// Fields holds the user-editable values of a node, keyed by field name.
// Field values are float64, int64, bool or string.
type Fields map[string]any

// Clone returns a shallow copy of f. A nil map clones to an empty map.
func (f Fields) Clone() Fields {
	out := make(Fields, len(f))
	maps.Copy(out, f)
	return out
}

// Float returns the named field as a float64, or 0 if absent or not numeric.
func (f Fields) Float(name string) float64 {
	switch v := f[name].(type) {
	case float64:
		return v
	case int64:
		return float64(v)
	case int:
		return float64(v)
	}
	return 0
}

// Int returns the named field as an int64, or 0 if absent or not numeric.
func (f Fields) Int(name string) int64 {
	switch v := f[name].(type) {
	case int64:
		return v
	case int:
		return int64(v)
	case float64:
		return int64(v)
	}
	return 0
}

// String returns the named field as a string, or "" if absent.
func (f Fields) String(name string) string {
	if s, ok := f[name].(string); ok {
		return s
	}
	return ""
}

// Bool returns the named field as a bool, or false if absent.
func (f Fields) Bool(name string) bool {
	b, _ := f[name].(bool)
	return b
}

// coerceField converts v to the dynamic type of like. Strings are parsed,
// which lets text front ends pass raw user input.
func coerceField(like, v any) (any, error) {
	switch like.(type) {
	case float64:
		var f float64
		switch x := v.(type) {
		case float64:
			f = x
		case float32:
			f = float64(x)
		case int:
			f = float64(x)
		case int64:
			f = float64(x)
		case string:
			var err error
			if f, err = strconv.ParseFloat(x, 64); err != nil {
				return nil, fmt.Errorf("parse %q as float: %w", x, err)
			}
		default:
			return nil, fmt.Errorf("cannot use %T as %T", v, like)
		}
		if math.IsInf(f, 0) || math.IsNaN(f) {
			return nil, fmt.Errorf("%v is not a finite number", f)
		}
		return f, nil
	case int64:
		switch x := v.(type) {
		case int64:
			return x, nil
		case int:
			return int64(x), nil
		case float64:
			if x != math.Trunc(x) {
				return nil, fmt.Errorf("%v is not an integer", x)
			}
			return int64(x), nil
		case string:
			i, err := strconv.ParseInt(x, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("parse %q as int: %w", x, err)
			}
			return i, nil
		}
	case bool:
		switch x := v.(type) {
		case bool:
			return x, nil
		case string:
			b, err := strconv.ParseBool(x)
			if err != nil {
				return nil, fmt.Errorf("parse %q as bool: %w", x, err)
			}
			return b, nil
		}
	case string:
		switch x := v.(type) {
		case string:
			return x, nil
		case fmt.Stringer:
			return x.String(), nil
		}
	default:
		return v, nil
	}
	return nil, fmt.Errorf("cannot use %T as %T", v, like)
}
