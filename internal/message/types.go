package message

import (
	"encoding/json"
	"fmt"
	"math"
)

// DynamicMessage represents a message with arbitrary key-value pairs,
// typically parsed from JSON.
type DynamicMessage map[string]interface{}

// GetFloat64 returns the numeric value stored under key. Missing keys, nulls,
// non-numeric values and NaN/Inf all report false.
func (dm DynamicMessage) GetFloat64(key string) (float64, bool) {
	val, exists := dm[key]
	if !exists || val == nil {
		return 0, false
	}

	var f float64
	switch v := val.(type) {
	case json.Number:
		parsed, err := v.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	case float64:
		f = v
	case float32:
		f = float64(v)
	case int:
		f = float64(v)
	case int64:
		f = float64(v)
	default:
		return 0, false
	}

	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// HasNonNull checks if a key exists and its value is not explicitly null.
func (dm DynamicMessage) HasNonNull(key string) bool {
	val, exists := dm[key]
	return exists && val != nil
}

// GetFieldSnippet returns a string snippet of a field's value, useful for logging.
// It handles missing keys and truncates long values.
func (dm DynamicMessage) GetFieldSnippet(fieldName string, maxLength int) string {
	value, exists := dm[fieldName]
	if !exists {
		return "<missing>"
	}
	if maxLength <= 0 {
		return "..."
	}

	strValue := fmt.Sprintf("%v", value)
	if len(strValue) > maxLength {
		return strValue[:maxLength] + "..."
	}
	return strValue
}
