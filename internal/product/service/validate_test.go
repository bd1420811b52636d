package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_ValidateCreate(t *testing.T) {
	testCases := []struct {
		name     string
		payload  Payload
		expected []string
	}{
		{
			name:     "valid payload",
			payload:  Payload{"name": "Tablet", "category": "Electronics", "price": 299.99, "stock": float64(12)},
			expected: nil,
		},
		{
			name:     "valid payload with zero price and stock",
			payload:  Payload{"name": "Freebie", "category": "Promo", "price": float64(0), "stock": float64(0)},
			expected: nil,
		},
		{
			name:    "empty payload accumulates every violation in order",
			payload: Payload{},
			expected: []string{
				"name is required and must be a non-empty string",
				"category is required and must be a non-empty string",
				"price is required and must be a non-negative number",
				"stock is required and must be a non-negative integer",
			},
		},
		{
			name:     "blank name",
			payload:  Payload{"name": "   ", "category": "Electronics", "price": 1.0, "stock": float64(1)},
			expected: []string{"name is required and must be a non-empty string"},
		},
		{
			name:     "non-string name",
			payload:  Payload{"name": 42.0, "category": "Electronics", "price": 1.0, "stock": float64(1)},
			expected: []string{"name is required and must be a non-empty string"},
		},
		{
			name:     "negative price",
			payload:  Payload{"name": "Tablet", "category": "Electronics", "price": -1.0, "stock": float64(1)},
			expected: []string{"price is required and must be a non-negative number"},
		},
		{
			name:     "non-numeric price is the same violation class as negative",
			payload:  Payload{"name": "Tablet", "category": "Electronics", "price": "cheap", "stock": float64(1)},
			expected: []string{"price is required and must be a non-negative number"},
		},
		{
			name:     "non-numeric stock",
			payload:  Payload{"name": "Tablet", "category": "Electronics", "price": 1.0, "stock": "many"},
			expected: []string{"stock is required and must be a non-negative integer"},
		},
		{
			name:     "fractional stock is a distinct violation",
			payload:  Payload{"name": "Tablet", "category": "Electronics", "price": 1.0, "stock": 2.5},
			expected: []string{"stock must be a whole number"},
		},
		{
			name:     "negative stock",
			payload:  Payload{"name": "Tablet", "category": "Electronics", "price": 1.0, "stock": float64(-3)},
			expected: []string{"stock is required and must be a non-negative integer"},
		},
		{
			name:     "non-string description",
			payload:  Payload{"name": "Tablet", "category": "Electronics", "price": 1.0, "stock": float64(1), "description": 7.0},
			expected: []string{"description must be a string"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, ValidateCreate(tc.payload))
		})
	}
}

func Test_ValidateUpdate(t *testing.T) {
	testCases := []struct {
		name     string
		payload  Payload
		expected []string
	}{
		{
			name:     "empty payload is valid: absence is not a violation",
			payload:  Payload{},
			expected: nil,
		},
		{
			name:     "single valid field",
			payload:  Payload{"stock": float64(5)},
			expected: nil,
		},
		{
			name:     "present empty name",
			payload:  Payload{"name": ""},
			expected: []string{"name must be a non-empty string"},
		},
		{
			name:     "present negative price",
			payload:  Payload{"price": -0.01},
			expected: []string{"price must be a non-negative number"},
		},
		{
			name:     "present fractional stock",
			payload:  Payload{"stock": 1.5},
			expected: []string{"stock must be a whole number"},
		},
		{
			name:    "multiple broken fields accumulate",
			payload: Payload{"name": "", "category": 3.0, "price": "x", "stock": -1.0},
			expected: []string{
				"name must be a non-empty string",
				"category must be a non-empty string",
				"price must be a non-negative number",
				"stock must be a non-negative integer",
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, ValidateUpdate(tc.payload))
		})
	}
}

func Test_integerField(t *testing.T) {
	p := Payload{"whole": float64(7), "fraction": 7.5, "text": "7"}

	n, ok := integerField(p, "whole")
	assert.True(t, ok)
	assert.Equal(t, int64(7), n)

	_, ok = integerField(p, "fraction")
	assert.False(t, ok)

	_, ok = integerField(p, "text")
	assert.False(t, ok)

	_, ok = integerField(p, "absent")
	assert.False(t, ok)
}
