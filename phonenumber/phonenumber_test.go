package phonenumber

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLeadingZeros(t *testing.T) {
	assert.Equal(t, 0, (&PhoneNumber{NationalNumber: 650}).LeadingZeros())
	assert.Equal(t, 1, (&PhoneNumber{NationalNumber: 650, ItalianLeadingZero: true}).LeadingZeros())
	assert.Equal(t, 2, (&PhoneNumber{NationalNumber: 650, ItalianLeadingZero: true, NumberOfLeadingZeros: 2}).LeadingZeros())
}

func TestCloneAndEqual(t *testing.T) {
	original := &PhoneNumber{CountryCode: 64, NationalNumber: 33316005, Extension: "1234"}
	copied := original.Clone()

	assert.True(t, original.Equal(copied))
	copied.Extension = "5678"
	assert.False(t, original.Equal(copied))

	// Zero-count bookkeeping only matters while the flag is set.
	a := &PhoneNumber{CountryCode: 39, NationalNumber: 650, ItalianLeadingZero: true}
	b := &PhoneNumber{CountryCode: 39, NationalNumber: 650, ItalianLeadingZero: true, NumberOfLeadingZeros: 1}
	assert.True(t, a.Equal(b))

	assert.False(t, a.Equal(nil))
	assert.True(t, (*PhoneNumber)(nil).Equal(nil))
}

func TestIsNumberMatch(t *testing.T) {
	e := newTestEngine()

	nz := &PhoneNumber{CountryCode: 64, NationalNumber: 33316005}

	assert.Equal(t, MatchExact, e.IsNumberMatch(nz, &PhoneNumber{CountryCode: 64, NationalNumber: 33316005}))
	assert.Equal(t, MatchNone, e.IsNumberMatch(nz, &PhoneNumber{CountryCode: 1, NationalNumber: 33316005}))
	// One side typed without the area code.
	assert.Equal(t, MatchShortNSN, e.IsNumberMatch(nz, &PhoneNumber{CountryCode: 64, NationalNumber: 3316005}))
	// One side has no country code at all.
	assert.Equal(t, MatchNSN, e.IsNumberMatch(nz, &PhoneNumber{CountryCode: 0, NationalNumber: 33316005}))
	assert.Equal(t, MatchNotANumber, e.IsNumberMatch(nz, nil))

	// Differing extensions never match.
	withExt := &PhoneNumber{CountryCode: 64, NationalNumber: 33316005, Extension: "1234"}
	otherExt := &PhoneNumber{CountryCode: 64, NationalNumber: 33316005, Extension: "4321"}
	assert.Equal(t, MatchNone, e.IsNumberMatch(withExt, otherExt))
	assert.Equal(t, MatchExact, e.IsNumberMatch(withExt, withExt.Clone()))

	// Raw-input bookkeeping is ignored.
	kept, err := e.ParseAndKeepRawInput("+64 3 331 6005", "ZZ")
	assert.NoError(t, err)
	assert.Equal(t, MatchExact, e.IsNumberMatch(nz, kept))
}

func TestIsNumberMatchWithStrings(t *testing.T) {
	e := newTestEngine()

	assert.Equal(t, MatchExact, e.IsNumberMatchWithStrings("+64 3 331 6005", "+64 03 331 6005"))
	// National notation resolves in the region of the self-sufficient side.
	assert.Equal(t, MatchExact, e.IsNumberMatchWithStrings("+64 3 331 6005", "03 331 6005"))
	assert.Equal(t, MatchExact, e.IsNumberMatchWithStrings("+643 331-6005", "+6433316005"))

	assert.Equal(t, MatchNone, e.IsNumberMatchWithStrings("+64 3 331 6005", "+16502530000"))
	assert.Equal(t, MatchNotANumber, e.IsNumberMatchWithStrings("abc", "+64 3 331 6005"))

	// Neither side carries a country code: compare digits alone.
	assert.Equal(t, MatchNSN, e.IsNumberMatchWithStrings("3 331 6005", "33316005"))
}

func TestIsNumberMatchWithOneString(t *testing.T) {
	e := newTestEngine()
	nz := &PhoneNumber{CountryCode: 64, NationalNumber: 33316005}

	assert.Equal(t, MatchExact, e.IsNumberMatchWithOneString(nz, "+64 3 331 6005"))
	assert.Equal(t, MatchExact, e.IsNumberMatchWithOneString(nz, "03 331 6005"))
	assert.Equal(t, MatchNotANumber, e.IsNumberMatchWithOneString(nz, "not a number"))
}

func TestMatchTypeStrings(t *testing.T) {
	assert.Equal(t, "NOT_A_NUMBER", MatchNotANumber.String())
	assert.Equal(t, "NO_MATCH", MatchNone.String())
	assert.Equal(t, "SHORT_NSN_MATCH", MatchShortNSN.String())
	assert.Equal(t, "NSN_MATCH", MatchNSN.String())
	assert.Equal(t, "EXACT_MATCH", MatchExact.String())
}

func TestCountryCodeSourceStrings(t *testing.T) {
	assert.Equal(t, "FROM_NUMBER_WITH_PLUS_SIGN", CountryCodeSourceFromNumberWithPlusSign.String())
	assert.Equal(t, "FROM_NUMBER_WITH_IDD", CountryCodeSourceFromNumberWithIDD.String())
	assert.Equal(t, "FROM_NUMBER_WITHOUT_PLUS_SIGN", CountryCodeSourceFromNumberWithoutPlusSign.String())
	assert.Equal(t, "FROM_DEFAULT_COUNTRY", CountryCodeSourceFromDefaultCountry.String())
	assert.Equal(t, "UNSPECIFIED", CountryCodeSourceUnspecified.String())
}
