package middleware

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidatePhoneNumber(t *testing.T) {
	assert.True(t, ValidatePhoneNumber("+911234567890"))
	assert.True(t, ValidatePhoneNumber("+12025550123"))

	assert.False(t, ValidatePhoneNumber("911234567890"), "missing plus")
	assert.False(t, ValidatePhoneNumber("+91123"), "too short")
	assert.False(t, ValidatePhoneNumber("+9112345678901234"), "too long")
	assert.False(t, ValidatePhoneNumber("+91abc4567890"), "non-digits")
	assert.False(t, ValidatePhoneNumber(""))
}

func TestValidatePasswordStrength(t *testing.T) {
	ok, problems := ValidatePasswordStrength("Passw0rdOk")
	assert.True(t, ok)
	assert.Empty(t, problems)

	ok, problems = ValidatePasswordStrength("short1A")
	assert.False(t, ok)
	assert.NotEmpty(t, problems)

	ok, _ = ValidatePasswordStrength("alllowercase1")
	assert.False(t, ok)

	ok, _ = ValidatePasswordStrength("ALLUPPERCASE1")
	assert.False(t, ok)

	ok, _ = ValidatePasswordStrength("NoDigitsHere")
	assert.False(t, ok)
}

func TestSanitizeInput(t *testing.T) {
	assert.Equal(t, "hello", SanitizeInput("  hello  "))
	assert.Equal(t, "hello world", SanitizeInput("hello\x00 world"))
	assert.Equal(t, "line\nbreak", SanitizeInput("line\nbreak"))
	assert.Equal(t, "tab\tkept", SanitizeInput("tab\tkept"))
}
