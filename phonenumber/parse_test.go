package phonenumber

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseNationalNumber(t *testing.T) {
	e := newTestEngine()

	number, err := e.Parse("033316005", "NZ")
	require.NoError(t, err)
	assert.Equal(t, 64, number.CountryCode)
	assert.Equal(t, uint64(33316005), number.NationalNumber)
	assert.False(t, number.ItalianLeadingZero)

	// National notation of another region never leaks the default region's
	// country code into the digits.
	number, err = e.Parse("6502530000", "US")
	require.NoError(t, err)
	assert.Equal(t, 1, number.CountryCode)
	assert.Equal(t, uint64(6502530000), number.NationalNumber)
}

func TestParseWithInternationalPrefix(t *testing.T) {
	e := newTestEngine()

	want := &PhoneNumber{CountryCode: 64, NationalNumber: 33316005}

	number, err := e.Parse("+64 3 331 6005", "NZ")
	require.NoError(t, err)
	assert.True(t, want.Equal(number))

	// IDD of the default region instead of a plus sign.
	number, err = e.Parse("0064 3 331 6005", "NZ")
	require.NoError(t, err)
	assert.True(t, want.Equal(number))

	// Dialled from the US, whose IDD is 011.
	number, err = e.Parse("01164 3 331 6005", "US")
	require.NoError(t, err)
	assert.True(t, want.Equal(number))

	// A plus sign is self-sufficient; no default region needed.
	number, err = e.Parse("+64 3 331 6005", "ZZ")
	require.NoError(t, err)
	assert.True(t, want.Equal(number))
}

func TestParseCountryCodeWithoutPlusSign(t *testing.T) {
	e := newTestEngine()

	// The country code written in front without "+" or IDD is accepted when
	// the full digits make no sense as a national number but the remainder
	// does.
	number, err := e.ParseAndKeepRawInput("64 3 331 6005", "NZ")
	require.NoError(t, err)
	assert.Equal(t, 64, number.CountryCode)
	assert.Equal(t, uint64(33316005), number.NationalNumber)
	assert.Equal(t, CountryCodeSourceFromNumberWithoutPlusSign, number.CountryCodeSource)
}

func TestParseVanityNumber(t *testing.T) {
	e := newTestEngine()

	number, err := e.Parse("1800 SIX-FLAG", "US")
	require.NoError(t, err)
	assert.Equal(t, 1, number.CountryCode)
	assert.Equal(t, uint64(8007493524), number.NationalNumber)
	assert.Equal(t, NumberTypeTollFree, e.GetNumberType(number))
}

func TestParseExtensions(t *testing.T) {
	e := newTestEngine()

	number, err := e.Parse("(650) 253-0000 x7890", "US")
	require.NoError(t, err)
	assert.Equal(t, uint64(6502530000), number.NationalNumber)
	assert.Equal(t, "7890", number.Extension)

	number, err = e.Parse("650 253 0000 ext. 456", "US")
	require.NoError(t, err)
	assert.Equal(t, uint64(6502530000), number.NationalNumber)
	assert.Equal(t, "456", number.Extension)

	number, err = e.Parse("tel:+6433316005;ext=1234", "ZZ")
	require.NoError(t, err)
	assert.Equal(t, uint64(33316005), number.NationalNumber)
	assert.Equal(t, "1234", number.Extension)
}

func TestParseRFC3966(t *testing.T) {
	e := newTestEngine()

	// The phone-context supplies the country code.
	number, err := e.Parse("tel:03-331-6005;phone-context=+64", "NZ")
	require.NoError(t, err)
	assert.Equal(t, 64, number.CountryCode)
	assert.Equal(t, uint64(33316005), number.NationalNumber)

	// A domain-name phone-context carries no country code; the default
	// region supplies it.
	number, err = e.Parse("tel:03-331-6005;phone-context=example.com", "NZ")
	require.NoError(t, err)
	assert.Equal(t, 64, number.CountryCode)
	assert.Equal(t, uint64(33316005), number.NationalNumber)

	// ISDN subaddresses are dropped.
	number, err = e.Parse("tel:+6433316005;isub=123", "ZZ")
	require.NoError(t, err)
	assert.Equal(t, uint64(33316005), number.NationalNumber)

	_, err = e.Parse("tel:555-1234;phone-context=", "NZ")
	assert.ErrorIs(t, err, ErrNotANumber)
}

func TestParseItalianLeadingZero(t *testing.T) {
	e := newTestEngine()

	number, err := e.Parse("0236618300", "IT")
	require.NoError(t, err)
	assert.Equal(t, 39, number.CountryCode)
	assert.Equal(t, uint64(236618300), number.NationalNumber)
	assert.True(t, number.ItalianLeadingZero)
	assert.Equal(t, 1, number.LeadingZeros())
	assert.Equal(t, "0236618300", e.NationalSignificantNumber(number))
}

func TestParseNationalPrefixTransformRules(t *testing.T) {
	e := newTestEngine()

	// Mexico: "045" mobile prefix becomes a leading "1".
	number, err := e.Parse("045 33 1234 5678", "MX")
	require.NoError(t, err)
	assert.Equal(t, 52, number.CountryCode)
	assert.Equal(t, uint64(13312345678), number.NationalNumber)
	assert.Equal(t, NumberTypeMobile, e.GetNumberType(number))

	// Argentina: "011 15" collapses into the mobile "9 11" form.
	number, err = e.Parse("0111523456789", "AR")
	require.NoError(t, err)
	assert.Equal(t, 54, number.CountryCode)
	assert.Equal(t, uint64(91123456789), number.NationalNumber)
	assert.Equal(t, NumberTypeMobile, e.GetNumberType(number))
}

func TestParseAndKeepRawInputCarrierCode(t *testing.T) {
	e := newTestEngine()

	// Brazil: "0 31" selects a carrier before the number.
	number, err := e.ParseAndKeepRawInput("0 31 11 9912-3456", "BR")
	require.NoError(t, err)
	assert.Equal(t, 55, number.CountryCode)
	assert.Equal(t, uint64(1199123456), number.NationalNumber)
	assert.Equal(t, "31", number.PreferredDomesticCarrierCode)
	assert.Equal(t, "0 31 11 9912-3456", number.RawInput)

	// Plain Parse records neither raw input nor carrier code.
	number, err = e.Parse("0 31 11 9912-3456", "BR")
	require.NoError(t, err)
	assert.Empty(t, number.RawInput)
	assert.Empty(t, number.PreferredDomesticCarrierCode)
}

func TestParseAndKeepRawInputCountryCodeSource(t *testing.T) {
	e := newTestEngine()

	number, err := e.ParseAndKeepRawInput("+16502530000", "US")
	require.NoError(t, err)
	assert.Equal(t, CountryCodeSourceFromNumberWithPlusSign, number.CountryCodeSource)

	number, err = e.ParseAndKeepRawInput("01164 3 331 6005", "US")
	require.NoError(t, err)
	assert.Equal(t, CountryCodeSourceFromNumberWithIDD, number.CountryCodeSource)

	number, err = e.ParseAndKeepRawInput("6502530000", "US")
	require.NoError(t, err)
	assert.Equal(t, CountryCodeSourceFromDefaultCountry, number.CountryCodeSource)
}

func TestParseFailures(t *testing.T) {
	e := newTestEngine()

	_, err := e.Parse("", "US")
	assert.ErrorIs(t, err, ErrNotANumber)

	_, err = e.Parse("This is not a phone number", "US")
	assert.ErrorIs(t, err, ErrNotANumber)

	// IDD recognised but nothing usable behind it.
	_, err = e.Parse("011", "US")
	assert.ErrorIs(t, err, ErrTooShortAfterIDD)

	_, err = e.Parse("+643", "ZZ")
	assert.ErrorIs(t, err, ErrTooShortNSN)

	_, err = e.Parse("+64123456789012345678", "ZZ")
	assert.ErrorIs(t, err, ErrTooLong)

	_, err = e.Parse(strings.Repeat("1", 251), "US")
	assert.ErrorIs(t, err, ErrTooLong)

	// No default region and no self-announced country code.
	_, err = e.Parse("033316005", "")
	assert.ErrorIs(t, err, ErrInvalidCountryCode)
	assert.True(t, IsErrInvalidCountryCode(err))

	// Country codes never start with zero; the retry after the plus sign
	// cannot save this without a default region.
	_, err = e.Parse("+01 2345", "ZZ")
	assert.ErrorIs(t, err, ErrInvalidCountryCode)
}

func TestParseErrorMessage(t *testing.T) {
	e := newTestEngine()

	_, err := e.Parse("011", "US")
	require.Error(t, err)
	var parseErr *ParseError
	require.ErrorAs(t, err, &parseErr)
	assert.Contains(t, parseErr.Error(), ErrTooShortAfterIDD.Error())
}
