package common

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeAmount_SmallAmount(t *testing.T) {
	result, err := NormalizeAmount("0,893")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if result.StringFixed(3) != "0.893" {
		t.Errorf("Expected '0.893', got '%s'", result.StringFixed(3))
	}
}

func TestNormalizeAmount_GroupedThousands(t *testing.T) {
	result, err := NormalizeAmount("1 640,000")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !result.Equal(decimal.RequireFromString("1640.000")) {
		t.Errorf("Expected 1640.000, got '%s'", result.String())
	}
	if result.Exponent() != -3 {
		t.Errorf("Expected three printed fraction digits to be kept, exponent was %d", result.Exponent())
	}
}

func TestNormalizeAmount_Millions(t *testing.T) {
	result, err := NormalizeAmount("12 345 678,901")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if result.StringFixed(3) != "12345678.901" {
		t.Errorf("Expected '12345678.901', got '%s'", result.StringFixed(3))
	}
}

func TestNormalizeAmount_NonBreakingSpace(t *testing.T) {
	result, err := NormalizeAmount("1\u00a0477,110")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if result.StringFixed(3) != "1477.110" {
		t.Errorf("Expected '1477.110', got '%s'", result.StringFixed(3))
	}
}

func TestNormalizeAmount_NoComma(t *testing.T) {
	result, err := NormalizeAmount("250")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if result.String() != "250" {
		t.Errorf("Expected '250', got '%s'", result.String())
	}
}

func TestNormalizeAmount_Invalid(t *testing.T) {
	for _, token := range []string{"", "   ", "1,2,3", "abc", ",893", "12,", "1e3"} {
		_, err := NormalizeAmount(token)
		if !errors.Is(err, ErrInvalidAmount) {
			t.Errorf("NormalizeAmount(%q): expected ErrInvalidAmount, got %v", token, err)
		}
	}
}

func TestFormatAmount(t *testing.T) {
	tests := []struct {
		amount   string
		places   int32
		expected string
	}{
		{"0.893", 3, "0,893"},
		{"1640", 3, "1 640,000"},
		{"1477.11", 3, "1 477,110"},
		{"999.5", 3, "999,500"},
		{"1000", 3, "1 000,000"},
		{"12345678.901", 3, "12 345 678,901"},
		{"-2589.4", 3, "-2 589,400"},
		{"42", 0, "42"},
	}

	for _, tt := range tests {
		got := FormatAmount(decimal.RequireFromString(tt.amount), tt.places)
		assert.Equal(t, tt.expected, got, "FormatAmount(%s, %d)", tt.amount, tt.places)
	}
}

func TestAmountRoundTrip(t *testing.T) {
	tokens := []string{"0,893", "1 640,000", "1 477,110", "2,589", "10 000,000", "123 456 789,012", "7,000"}

	for _, token := range tokens {
		first, err := NormalizeAmount(token)
		require.NoError(t, err, token)

		formatted := FormatAmount(first, 3)
		second, err := NormalizeAmount(formatted)
		require.NoError(t, err, formatted)

		assert.True(t, first.Equal(second), "round trip of %q via %q gave %s", token, formatted, second)
	}
}

func TestComposeDate_Valid(t *testing.T) {
	result, err := ComposeDate("2025", "08", "04")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if result.Format("2006-01-02") != "2025-08-04" {
		t.Errorf("Expected '2025-08-04', got '%s'", result.Format("2006-01-02"))
	}
}

func TestComposeDate_LeapDay(t *testing.T) {
	result, err := ComposeDate("2024", "02", "29")
	require.NoError(t, err)
	assert.Equal(t, 29, result.Day())
}

func TestComposeDate_Invalid(t *testing.T) {
	tests := []struct{ year, month, day string }{
		{"2025", "02", "31"},
		{"2025", "13", "01"},
		{"2025", "00", "10"},
		{"2025", "02", "29"},
		{"25", "08", "04"},
	}

	for _, tt := range tests {
		_, err := ComposeDate(tt.year, tt.month, tt.day)
		assert.ErrorIs(t, err, ErrInvalidDate, "%s-%s-%s", tt.year, tt.month, tt.day)
	}
}

func TestParseDate_InvalidDate(t *testing.T) {
	_, err := ParseDate(DateLayout, "invalid")
	if err == nil {
		t.Error("Expected error for invalid date, got nil")
	}
}
