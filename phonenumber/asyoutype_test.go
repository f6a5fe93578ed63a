package phonenumber

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func feedDigits(f *AsYouTypeFormatter, digits string) []string {
	out := make([]string, 0, len(digits))
	for _, d := range digits {
		out = append(out, f.InputDigit(d))
	}
	return out
}

func TestAsYouTypeUSNational(t *testing.T) {
	e := newTestEngine()
	f := e.NewAsYouTypeFormatter("US")

	assert.Equal(t, []string{
		"6",
		"65",
		"650",
		"650 2",
		"650 25",
		"650 253",
		"650 2530",
		"650 253 00",
		"650 253 000",
		"650 253 0000",
	}, feedDigits(f, "6502530000"))
}

func TestAsYouTypeUSInternational(t *testing.T) {
	e := newTestEngine()
	f := e.NewAsYouTypeFormatter("US")

	assert.Equal(t, []string{
		"+",
		"+1",
		"+1 6",
		"+1 65",
		"+1 650",
		"+1 650 2",
		"+1 650 25",
		"+1 650 253",
		"+1 650 2530",
		"+1 650 253 00",
		"+1 650 253 000",
		"+1 650 253 0000",
	}, feedDigits(f, "+16502530000"))
}

func TestAsYouTypeNZNationalPrefix(t *testing.T) {
	e := newTestEngine()
	f := e.NewAsYouTypeFormatter("NZ")

	assert.Equal(t, []string{
		"0",
		"03",
		"033",
		"03-33",
		"03-331",
		"03-331 6",
		"03-331 60",
		"03-331 600",
		"03-331 6005",
	}, feedDigits(f, "033316005"))
}

func TestAsYouTypeForeignNumberFromNZ(t *testing.T) {
	e := newTestEngine()
	f := e.NewAsYouTypeFormatter("NZ")

	outputs := feedDigits(f, "+16502530000")
	assert.Equal(t, "+1 650 253 0000", outputs[len(outputs)-1])
}

func TestAsYouTypeClear(t *testing.T) {
	e := newTestEngine()
	f := e.NewAsYouTypeFormatter("US")

	feedDigits(f, "650253")
	f.Clear()

	assert.Equal(t, "6", f.InputDigit('6'))
	assert.Equal(t, "65", f.InputDigit('5'))
	assert.Equal(t, "650", f.InputDigit('0'))
}

func TestAsYouTypeOverflowDegradesToRawDigits(t *testing.T) {
	e := newTestEngine()
	f := e.NewAsYouTypeFormatter("US")

	outputs := feedDigits(f, "165025322222")
	assert.Equal(t, "1 650 253 2222", outputs[10])
	// The twelfth digit outruns every format; echo everything typed and
	// drop nothing.
	assert.Equal(t, "165025322222", outputs[11])
}

func TestAsYouTypeUserFormatting(t *testing.T) {
	e := newTestEngine()
	f := e.NewAsYouTypeFormatter("US")

	// Once the user types their own punctuation we stop reformatting.
	f.InputDigit('6')
	f.InputDigit('5')
	f.InputDigit('0')
	assert.Equal(t, "650-", f.InputDigit('-'))
	assert.Equal(t, "650-2", f.InputDigit('2'))
}

func TestAsYouTypeUnknownRegionEchoesDigits(t *testing.T) {
	e := newTestEngine()
	f := e.NewAsYouTypeFormatter("ZZ")

	assert.Equal(t, []string{"1", "12", "123", "1234"}, feedDigits(f, "1234"))
}

func TestAsYouTypeRememberedPosition(t *testing.T) {
	e := newTestEngine()
	f := e.NewAsYouTypeFormatter("US")

	f.InputDigitAndRememberPosition('6')
	feedDigits(f, "502530000")
	assert.Equal(t, 1, f.GetRememberedPosition())

	f.Clear()
	f.InputDigit('6')
	f.InputDigit('5')
	f.InputDigit('0')
	f.InputDigitAndRememberPosition('2')
	feedDigits(f, "530000")
	// "650 253 0000": the remembered '2' sits after the group separator.
	assert.Equal(t, 5, f.GetRememberedPosition())
}
