package registry

import (
	"fmt"
	"strings"
	"time"
)

// Typed accessors for AnalyzerConfig.Options. Options arrive from YAML,
// environment overrides or code, so numbers may be int or float64 and lists
// may be []any. Every accessor falls back to defaultValue when the map is
// nil, the key is missing or the value has an unusable type.

// GetStringConfig returns a non-empty string option.
func GetStringConfig(options map[string]any, key, defaultValue string) string {
	if val, ok := options[key].(string); ok && strings.TrimSpace(val) != "" {
		return val
	}
	return defaultValue
}

// GetIntConfig returns an integer option. Floats are truncated.
func GetIntConfig(options map[string]any, key string, defaultValue int) int {
	switch val := options[key].(type) {
	case int:
		return val
	case int64:
		return int(val)
	case float64:
		return int(val)
	default:
		return defaultValue
	}
}

// GetFloat64Config returns a numeric option as float64.
func GetFloat64Config(options map[string]any, key string, defaultValue float64) float64 {
	switch val := options[key].(type) {
	case float64:
		return val
	case int:
		return float64(val)
	case int64:
		return float64(val)
	default:
		return defaultValue
	}
}

// GetBoolConfig returns a boolean option.
func GetBoolConfig(options map[string]any, key string, defaultValue bool) bool {
	if val, ok := options[key].(bool); ok {
		return val
	}
	return defaultValue
}

// GetDurationConfig returns a duration option given as time.Duration,
// nanoseconds (int64/float64) or a time.ParseDuration string ("5s").
func GetDurationConfig(options map[string]any, key string, defaultValue time.Duration) time.Duration {
	switch val := options[key].(type) {
	case time.Duration:
		return val
	case int64:
		return time.Duration(val)
	case float64:
		return time.Duration(val)
	case string:
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return defaultValue
}

// GetSliceConfig returns a string list option. A []any containing a
// non-string element yields defaultValue.
func GetSliceConfig(options map[string]any, key string, defaultValue []string) []string {
	switch val := options[key].(type) {
	case []string:
		return val
	case []any:
		out := make([]string, 0, len(val))
		for _, item := range val {
			str, ok := item.(string)
			if !ok {
				return defaultValue
			}
			out = append(out, str)
		}
		return out
	default:
		return defaultValue
	}
}

// ValidateFloatRange validates that value lies within [min, max].
func ValidateFloatRange(fieldName string, value, min, max float64) error {
	if value < min || value > max {
		return fmt.Errorf("%s must be between %v and %v, got %v", fieldName, min, max, value)
	}
	return nil
}

// ValidateEnum validates that a string value is one of the allowed options.
func ValidateEnum(fieldName, value string, allowed []string) error {
	for _, option := range allowed {
		if value == option {
			return nil
		}
	}
	return fmt.Errorf("%s must be one of %v, got %s", fieldName, allowed, value)
}
