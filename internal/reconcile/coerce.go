package reconcile

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// External providers return the same field as a scalar, a list or an object
// depending on the record. Every raw field goes through one of these explicit
// decoders instead of being trusted to have a single shape.

var isbnPattern = regexp.MustCompile(`[0-9Xx]{10,13}`)
var yearPattern = regexp.MustCompile(`\d{4}`)

// AsString coerces a scalar or {"value": ...}/{"brief": ...} object to text.
// Lists coerce to their first non-empty element.
func AsString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case []any:
		for _, item := range t {
			if s := AsString(item); s != "" {
				return s
			}
		}
		return ""
	case map[string]any:
		if s := AsString(t["value"]); s != "" {
			return s
		}
		return AsString(t["brief"])
	case float64:
		if t == float64(int64(t)) {
			return strconv.FormatInt(int64(t), 10)
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case bool:
		return ""
	default:
		return strings.TrimSpace(fmt.Sprint(t))
	}
}

// AsStringList coerces a scalar to a one-element list and a list to its
// non-empty string elements.
func AsStringList(v any) []string {
	switch t := v.(type) {
	case nil:
		return nil
	case []any:
		out := make([]string, 0, len(t))
		for _, item := range t {
			if s := AsString(item); s != "" {
				out = append(out, s)
			}
		}
		return out
	default:
		if s := AsString(v); s != "" {
			return []string{s}
		}
		return nil
	}
}

// JoinedString coerces a list to its elements joined by spaces, anything else
// like AsString. Used for multi-part description fields.
func JoinedString(v any) string {
	if items, ok := v.([]any); ok {
		parts := make([]string, 0, len(items))
		for _, item := range items {
			if s := AsString(item); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, " ")
	}
	return AsString(v)
}

// AsInt coerces a number or numeric string to int, 0 when absent or not a
// number.
func AsInt(v any) int {
	switch t := v.(type) {
	case nil:
		return 0
	case float64:
		return int(t)
	case int:
		return t
	case []any:
		if len(t) == 0 {
			return 0
		}
		return AsInt(t[0])
	default:
		n, err := strconv.Atoi(AsString(v))
		if err != nil {
			return 0
		}
		return n
	}
}

// AsYear extracts a 4-digit year from an integer, the first element of a
// list, or free text. Returns 0 when nothing usable is present.
func AsYear(v any) int {
	switch t := v.(type) {
	case nil:
		return 0
	case float64:
		return int(t)
	case int:
		return t
	case []any:
		if len(t) == 0 {
			return 0
		}
		return AsYear(t[0])
	default:
		match := yearPattern.FindString(AsString(v))
		if match == "" {
			return 0
		}
		n, err := strconv.Atoi(match)
		if err != nil {
			return 0
		}
		return n
	}
}

// ExtractISBNs scans every value for runs of 10-13 digits/X and returns them
// uppercased, de-duplicated, in discovery order.
func ExtractISBNs(values ...any) []string {
	var out []string
	seen := make(map[string]struct{})

	var scan func(v any)
	scan = func(v any) {
		switch t := v.(type) {
		case nil:
		case []any:
			for _, item := range t {
				scan(item)
			}
		case string:
			for _, match := range isbnPattern.FindAllString(t, -1) {
				u := strings.ToUpper(match)
				if _, ok := seen[u]; !ok {
					seen[u] = struct{}{}
					out = append(out, u)
				}
			}
		default:
			scan(AsString(v))
		}
	}
	for _, v := range values {
		scan(v)
	}
	return out
}
