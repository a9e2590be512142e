package intake

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatPhone(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"empty input yields bare prefix", "", "+61 "},
		{"national trunk form", "0412345678", "0412345678"},
		{"full international digits", "61412345678", "+61 412 345 678"},
		{"already formatted", "+61 412 345 678", "+61 412 345 678"},
		{"international with punctuation", "+61-412-345-678", "+61 412 345 678"},
		{"too short is left alone", "6141234", "6141234"},
		{"landline is left alone", "61298765432", "61298765432"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, FormatPhone(tt.input))
		})
	}
}

func TestNormalizePhoneInput(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"deleted prefix is restored", "412", "+61 "},
		{"plain digits are grouped", "+61 412345678", "+61 412 345 678"},
		{"trunk zero is stripped", "+61 0412345678", "+61 412 345 678"},
		{"overflow digits are dropped", "+61 4123456789999", "+61 412 345 678"},
		{"letters are removed, short runs stay ungrouped", "+61 41a2b3", "+61 4123"},
		{"partial number keeps partial group", "+61 4123456", "+61 412 345 6"},
		{"six digits close the second group", "+61 412345", "+61 412 345"},
		{"lone zero is kept until a digit follows", "+61 0", "+61 0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizePhoneInput(tt.input))
		})
	}
}

func TestValidatePhone(t *testing.T) {
	assert.Equal(t, "Phone number is required", validatePhone(""))
	assert.Equal(t, "Phone number is required", validatePhone("+61 "))
	assert.Equal(t, "Phone number must start with 4 or 04.", validatePhone("+61 298 765 432"))
	assert.Equal(t, "Invalid Phone number", validatePhone("+61 412 345"))
	assert.Empty(t, validatePhone("+61 412 345 678"))
}
