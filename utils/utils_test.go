// File: utils/utils_test.go
package utils

import (
	"testing"
)

func TestClamp(t *testing.T) {
	testCases := []struct {
		name     string
		value    float64
		min, max float64
		expected float64
	}{
		{"inside", 5, 0, 10, 5},
		{"below", -3, 0, 10, 0},
		{"above", 42, 0, 10, 10},
		{"on lower edge", 0, 0, 10, 0},
		{"on upper edge", 10, 0, 10, 10},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Clamp(tc.value, tc.min, tc.max); got != tc.expected {
				t.Errorf("Clamp(%v, %v, %v) = %v, want %v", tc.value, tc.min, tc.max, got, tc.expected)
			}
		})
	}
}

func TestSign(t *testing.T) {
	testCases := []struct {
		value    float64
		expected float64
	}{
		{3.5, 1},
		{-0.1, -1},
		{0, 0},
	}
	for _, tc := range testCases {
		if got := Sign(tc.value); got != tc.expected {
			t.Errorf("Sign(%v) = %v, want %v", tc.value, got, tc.expected)
		}
	}
}

func TestAbs(t *testing.T) {
	testCases := []struct {
		value    float64
		expected float64
	}{
		{-2, 2},
		{2, 2},
		{0, 0},
	}
	for _, tc := range testCases {
		if got := Abs(tc.value); got != tc.expected {
			t.Errorf("Abs(%v) = %v, want %v", tc.value, got, tc.expected)
		}
	}
}
