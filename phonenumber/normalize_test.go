package phonenumber

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	// Punctuation and stray characters are dropped.
	assert.Equal(t, "6502530000", Normalize("(650) 253-0000"))
	// Vanity numbers (three or more letters) fold keypad letters to digits.
	assert.Equal(t, "1800222333", Normalize("1800-ABC-DEF"))
	assert.Equal(t, "18007493524", Normalize("1800 SIX-FLAG"))
	// Fewer than three letters means the letters are noise, not a vanity
	// number.
	assert.Equal(t, "034561234", Normalize("03*4-56&+1a#234"))
	// Non-ASCII decimal digits fold to ASCII.
	assert.Equal(t, "123", Normalize("１２３"))
}

func TestNormalizeDigitsOnly(t *testing.T) {
	assert.Equal(t, "6502530000", NormalizeDigitsOnly("+1 (650) 253-0000"))
	assert.Equal(t, "034561234", NormalizeDigitsOnly("03*4-56&+1a#234"))
	assert.Equal(t, "", NormalizeDigitsOnly("abc"))
}

func TestNormalizeDiallableCharsOnly(t *testing.T) {
	assert.Equal(t, "03*456+1#234", NormalizeDiallableCharsOnly("03*4-56&+1a#234"))
	assert.Equal(t, "+16502530000", NormalizeDiallableCharsOnly("+1 (650) 253-0000"))
}

func TestIsViablePhoneNumber(t *testing.T) {
	assert.True(t, IsViablePhoneNumber("13"))
	assert.True(t, IsViablePhoneNumber("(650) 253-0000"))
	assert.True(t, IsViablePhoneNumber("+1 650 253 0000"))
	assert.True(t, IsViablePhoneNumber("0800 SIX-FLAG"))

	assert.False(t, IsViablePhoneNumber("1"))
	assert.False(t, IsViablePhoneNumber(""))
	assert.False(t, IsViablePhoneNumber("hello"))
}

func TestExtractPossibleNumber(t *testing.T) {
	assert.Equal(t, "+800-345-600", extractPossibleNumber("Tel:+800-345-600"))
	assert.Equal(t, "650 253 0000", extractPossibleNumber("650 253 0000.."))
	// A "/ x" run marks a second number on the same line; cut before it.
	assert.Equal(t, "530) 583-6985 x302", extractPossibleNumber("530) 583-6985 x302/x2303"))
	assert.Equal(t, "", extractPossibleNumber("Num-a-letter"))
}
