package service

import (
	"encoding/json"
	"math"
	"strings"
)

// Payload is the decoded JSON body of a create or update request. The body
// arrives loosely typed so the validators can tell a missing field from a
// field of the wrong type.
type Payload map[string]any

// ValidateCreate checks a creation payload against the full field rule set.
// All broken rules are accumulated in order; an empty result means valid.
func ValidateCreate(p Payload) []string {
	var violations []string
	if s, ok := stringField(p, "name"); !ok || s == "" {
		violations = append(violations, "name is required and must be a non-empty string")
	}
	if s, ok := stringField(p, "category"); !ok || s == "" {
		violations = append(violations, "category is required and must be a non-empty string")
	}
	if n, ok := numberField(p, "price"); !ok || n < 0 {
		violations = append(violations, "price is required and must be a non-negative number")
	}
	switch n, ok := numberField(p, "stock"); {
	case !ok || n < 0:
		violations = append(violations, "stock is required and must be a non-negative integer")
	case n != math.Trunc(n):
		violations = append(violations, "stock must be a whole number")
	}
	if _, present := p["description"]; present {
		if _, ok := stringField(p, "description"); !ok {
			violations = append(violations, "description must be a string")
		}
	}
	return violations
}

// ValidateUpdate checks only the fields present in a partial payload.
// Absence of a field is not itself a violation.
func ValidateUpdate(p Payload) []string {
	var violations []string
	if _, present := p["name"]; present {
		if s, ok := stringField(p, "name"); !ok || s == "" {
			violations = append(violations, "name must be a non-empty string")
		}
	}
	if _, present := p["category"]; present {
		if s, ok := stringField(p, "category"); !ok || s == "" {
			violations = append(violations, "category must be a non-empty string")
		}
	}
	if _, present := p["price"]; present {
		if n, ok := numberField(p, "price"); !ok || n < 0 {
			violations = append(violations, "price must be a non-negative number")
		}
	}
	if _, present := p["stock"]; present {
		switch n, ok := numberField(p, "stock"); {
		case !ok || n < 0:
			violations = append(violations, "stock must be a non-negative integer")
		case n != math.Trunc(n):
			violations = append(violations, "stock must be a whole number")
		}
	}
	if _, present := p["description"]; present {
		if _, ok := stringField(p, "description"); !ok {
			violations = append(violations, "description must be a string")
		}
	}
	return violations
}

// stringField extracts a trimmed string value. ok is false when the field is
// absent or not a string.
func stringField(p Payload, key string) (string, bool) {
	raw, present := p[key]
	if !present {
		return "", false
	}
	s, ok := raw.(string)
	if !ok {
		return "", false
	}
	return strings.TrimSpace(s), true
}

// numberField extracts a numeric value. ok is false when the field is absent
// or not numeric. encoding/json decodes numbers as float64, but integer types
// and json.Number are accepted too for callers that build payloads directly.
func numberField(p Payload, key string) (float64, bool) {
	raw, present := p[key]
	if !present {
		return 0, false
	}
	switch v := raw.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// integerField extracts a whole-number value. ok is false when the field is
// absent, not numeric, or has a fractional part.
func integerField(p Payload, key string) (int64, bool) {
	n, ok := numberField(p, key)
	if !ok || n != math.Trunc(n) {
		return 0, false
	}
	return int64(n), true
}
