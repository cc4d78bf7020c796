package rules

import "encoding/json"

// IsList reports whether v is a list value. JSON decoding yields []any;
// YAML decoding of typed corpus files can yield typed slices.
func IsList(v any) bool {
	switch v.(type) {
	case []any, []string, []int, []float64:
		return true
	}
	return false
}

// IsScalar reports whether v is an allowed scalar condition/parameter
// value: string, bool, or number. nil is not a scalar.
func IsScalar(v any) bool {
	switch v.(type) {
	case string, bool, int, int64, float64, json.Number:
		return true
	}
	return false
}

// Number coerces a scalar value to float64. The second return is false for
// strings, bools, lists, and nil; callers treat those as non-numeric
// rather than guessing.
func Number(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}

// ListValues flattens a list value into a []any. Returns nil when v is not
// a list.
func ListValues(v any) []any {
	switch l := v.(type) {
	case []any:
		return l
	case []string:
		out := make([]any, len(l))
		for i, s := range l {
			out[i] = s
		}
		return out
	case []int:
		out := make([]any, len(l))
		for i, n := range l {
			out[i] = n
		}
		return out
	case []float64:
		out := make([]any, len(l))
		for i, n := range l {
			out[i] = n
		}
		return out
	}
	return nil
}
