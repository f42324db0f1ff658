package schema

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	headerSeparators = regexp.MustCompile(`[\s\-.]+`)
	headerInvalid    = regexp.MustCompile(`[^a-z0-9_]`)

	expressionDefault = regexp.MustCompile(`(?i)^(CURRENT_TIMESTAMP(\(\d+\))?|NOW\(\)|UUID\(\)|NULL|\(.+\))$`)
)

// ParseYesNo interprets a boolean token. Empty or unrecognized tokens yield def.
func ParseYesNo(v string, def bool) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "":
		return def
	case "yes", "y", "1", "true", "on", "null":
		return true
	case "no", "n", "0", "false", "off":
		return false
	default:
		return def
	}
}

// NormalizeHeader folds a tabular header label into a record key,
// e.g. "Column Type" -> "column_type"
func NormalizeHeader(label string) string {
	key := strings.ToLower(strings.TrimSpace(label))
	key = headerSeparators.ReplaceAllString(key, "_")
	return headerInvalid.ReplaceAllString(key, "")
}

// DetectDefault classifies an introspected COLUMN_DEFAULT value
func DetectDefault(columnDefault *string, nullable bool, extra string) (DefaultKind, string) {
	if columnDefault == nil {
		if nullable {
			return DefaultNull, ""
		}
		return DefaultNone, ""
	}

	value := *columnDefault
	if strings.Contains(strings.ToUpper(extra), "DEFAULT_GENERATED") ||
		expressionDefault.MatchString(strings.TrimSpace(value)) {
		return DefaultExpression, value
	}
	return DefaultLiteral, value
}

// InferDefaultKind fills an absent default kind from the value and nullability
func InferDefaultKind(kind, value string, nullable bool) DefaultKind {
	kind = strings.ToLower(strings.TrimSpace(kind))
	if kind != "" {
		return DefaultKind(kind)
	}
	if value != "" {
		return DefaultLiteral
	}
	if nullable {
		return DefaultNull
	}
	return DefaultNone
}

// asString renders a decoded document scalar as text. Absent and nil values
// yield "". Integral floats print without a fraction.
func asString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		if t {
			return "1"
		}
		return ""
	case float64:
		if t == math.Trunc(t) && !math.IsInf(t, 0) {
			return strconv.FormatInt(int64(t), 10)
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	case json.Number:
		return t.String()
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case uint64:
		return strconv.FormatUint(t, 10)
	case time.Time:
		return t.Format(time.RFC3339)
	default:
		return fmt.Sprint(t)
	}
}

// asInt converts a scalar to an int; ok is false when v is absent or not numeric
func asInt(v any) (int, bool) {
	switch t := v.(type) {
	case nil:
		return 0, false
	case int:
		return t, true
	case int64:
		return int(t), true
	case uint64:
		return int(t), true
	case float64:
		return int(t), true
	case json.Number:
		n, err := t.Int64()
		if err != nil {
			f, ferr := t.Float64()
			if ferr != nil {
				return 0, false
			}
			return int(f), true
		}
		return int(n), true
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return 0, false
		}
		n, err := strconv.Atoi(s)
		if err != nil {
			f, ferr := strconv.ParseFloat(s, 64)
			if ferr != nil {
				return 0, false
			}
			return int(f), true
		}
		return n, true
	default:
		return 0, false
	}
}

// asBool interprets booleans, yes/no tokens and numbers, falling back to def
func asBool(v any, def bool) bool {
	switch t := v.(type) {
	case nil:
		return def
	case bool:
		return t
	case string:
		return ParseYesNo(t, def)
	default:
		if n, ok := asInt(v); ok {
			return n != 0
		}
		return def
	}
}

// firstString returns the first non-empty string among keys
func firstString(m map[string]any, keys ...string) string {
	for _, k := range keys {
		if s := asString(m[k]); s != "" {
			return s
		}
	}
	return ""
}

// firstValue returns the first present, non-nil value among keys
func firstValue(m map[string]any, keys ...string) (any, bool) {
	for _, k := range keys {
		if v, ok := m[k]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

// asMap accepts both JSON-decoded and YAML-decoded mappings
func asMap(v any) (map[string]any, bool) {
	switch t := v.(type) {
	case map[string]any:
		return t, true
	case map[any]any:
		m := make(map[string]any, len(t))
		for k, val := range t {
			m[asString(k)] = val
		}
		return m, true
	default:
		return nil, false
	}
}
