// Package values converts raw configuration values into the typed results
// promised by driven.ConfigStore.
//
// Values arrive from three places: TOML decoding (int64, []any), Set calls
// from code (int, []string, time.Duration) and environment overrides
// (always strings). Each converter returns the zero value when the input
// cannot be read as the requested type.
package values

import (
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cast"
)

// String returns v when it is a string. Other types are not stringified.
func String(v any) string {
	s, _ := v.(string)
	return s
}

// Int reads integers, floats and numeric strings.
func Int(v any) int {
	if s, ok := v.(string); ok {
		v = strings.TrimSpace(s)
	}
	n, err := cast.ToIntE(v)
	if err != nil {
		return 0
	}
	return n
}

// Bool reads booleans and strconv.ParseBool strings.
func Bool(v any) bool {
	if s, ok := v.(string); ok {
		v = strings.TrimSpace(s)
	}
	b, err := cast.ToBoolE(v)
	return err == nil && b
}

// Duration reads time.Duration values, Go duration strings such as "24h",
// and whole seconds given as integers or numeric strings.
func Duration(v any) time.Duration {
	switch d := v.(type) {
	case time.Duration:
		return d
	case int:
		return time.Duration(d) * time.Second
	case int64:
		return time.Duration(d) * time.Second
	case string:
		d = strings.TrimSpace(d)
		if parsed, err := time.ParseDuration(d); err == nil {
			return parsed
		}
		if n, err := strconv.Atoi(d); err == nil {
			return time.Duration(n) * time.Second
		}
	}
	return 0
}

// Strings reads string slices, TOML arrays and comma separated strings.
// Non-string array items are skipped.
func Strings(v any) []string {
	switch s := v.(type) {
	case []string:
		return s
	case []any:
		out := make([]string, 0, len(s))
		for _, item := range s {
			if str, ok := item.(string); ok {
				out = append(out, str)
			}
		}
		return out
	case string:
		var out []string
		for _, part := range strings.Split(s, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
		return out
	}
	return nil
}
