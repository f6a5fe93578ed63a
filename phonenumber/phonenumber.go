// Package phonenumber parses, validates, classifies, and formats telephone
// numbers against region numbering-plan metadata, and locates numbers
// embedded in free text.
//
// All operations hang off an Engine constructed over a metadata.Repository;
// there is no ambient global state. Every call is a pure function of its
// inputs plus the immutable metadata snapshot, so one Engine may be shared
// freely between goroutines. The one exception is AsYouTypeFormatter, a
// mutable per-input-field session.
package phonenumber

import "strings"

// CountryCodeSource records how the country calling code of a parsed number
// was determined. It is only populated by ParseAndKeepRawInput.
type CountryCodeSource int

const (
	CountryCodeSourceUnspecified CountryCodeSource = iota
	CountryCodeSourceFromNumberWithPlusSign
	CountryCodeSourceFromNumberWithIDD
	CountryCodeSourceFromNumberWithoutPlusSign
	CountryCodeSourceFromDefaultCountry
)

// String returns the wire-stable name of the source.
func (s CountryCodeSource) String() string {
	switch s {
	case CountryCodeSourceFromNumberWithPlusSign:
		return "FROM_NUMBER_WITH_PLUS_SIGN"
	case CountryCodeSourceFromNumberWithIDD:
		return "FROM_NUMBER_WITH_IDD"
	case CountryCodeSourceFromNumberWithoutPlusSign:
		return "FROM_NUMBER_WITHOUT_PLUS_SIGN"
	case CountryCodeSourceFromDefaultCountry:
		return "FROM_DEFAULT_COUNTRY"
	default:
		return "UNSPECIFIED"
	}
}

// PhoneNumber is a structured phone number.
//
// The national significant number is stored as an integer plus explicit
// leading-zero bookkeeping, because leading zeros are not representable in a
// plain integer: "0000" and "011" are distinct numbers. RawInput,
// CountryCodeSource and PreferredDomesticCarrierCode are populated only by
// ParseAndKeepRawInput.
type PhoneNumber struct {
	CountryCode    int
	NationalNumber uint64
	Extension      string

	ItalianLeadingZero bool
	// NumberOfLeadingZeros is meaningful only when ItalianLeadingZero is
	// set; zero means the default of one leading zero.
	NumberOfLeadingZeros int

	RawInput                     string
	CountryCodeSource            CountryCodeSource
	PreferredDomesticCarrierCode string
}

// LeadingZeros returns the effective number of leading zeros.
func (n *PhoneNumber) LeadingZeros() int {
	if !n.ItalianLeadingZero {
		return 0
	}
	if n.NumberOfLeadingZeros > 0 {
		return n.NumberOfLeadingZeros
	}
	return 1
}

// Clone returns a copy of the number.
func (n *PhoneNumber) Clone() *PhoneNumber {
	c := *n
	return &c
}

// Equal reports structural equality over every field, with leading-zero
// bookkeeping compared by effective value.
func (n *PhoneNumber) Equal(o *PhoneNumber) bool {
	if n == nil || o == nil {
		return n == o
	}
	return n.CountryCode == o.CountryCode &&
		n.NationalNumber == o.NationalNumber &&
		n.Extension == o.Extension &&
		n.ItalianLeadingZero == o.ItalianLeadingZero &&
		n.LeadingZeros() == o.LeadingZeros() &&
		n.RawInput == o.RawInput &&
		n.CountryCodeSource == o.CountryCodeSource &&
		n.PreferredDomesticCarrierCode == o.PreferredDomesticCarrierCode
}

// MatchType grades how closely two numbers match. See Engine.IsNumberMatch.
type MatchType int

const (
	MatchNotANumber MatchType = iota
	MatchNone
	MatchShortNSN
	MatchNSN
	MatchExact
)

// String returns the wire-stable name of the match grade.
func (m MatchType) String() string {
	switch m {
	case MatchNone:
		return "NO_MATCH"
	case MatchShortNSN:
		return "SHORT_NSN_MATCH"
	case MatchNSN:
		return "NSN_MATCH"
	case MatchExact:
		return "EXACT_MATCH"
	default:
		return "NOT_A_NUMBER"
	}
}

// IsNumberMatch compares two parsed numbers. Raw input, country-code source
// and preferred carrier code are ignored; leading-zero bookkeeping is
// ignored whenever ItalianLeadingZero is unset on either side.
func (e *Engine) IsNumberMatch(a, b *PhoneNumber) MatchType {
	if a == nil || b == nil {
		return MatchNotANumber
	}
	first := stripForMatch(a)
	second := stripForMatch(b)
	if first.Extension != "" && second.Extension != "" && first.Extension != second.Extension {
		return MatchNone
	}
	ccA, ccB := first.CountryCode, second.CountryCode
	if ccA != 0 && ccB != 0 {
		if first.Equal(second) {
			return MatchExact
		}
		if ccA == ccB && isNationalNumberSuffixOfTheOther(first, second) {
			// A match under a shared calling code where one NSN is a trailing
			// substring of the other, e.g. one side typed without area code.
			return MatchShortNSN
		}
		return MatchNone
	}
	// One side has no country code: compare without it.
	first.CountryCode = ccB
	if first.Equal(second) {
		return MatchNSN
	}
	if isNationalNumberSuffixOfTheOther(first, second) {
		return MatchShortNSN
	}
	return MatchNone
}

// IsNumberMatchWithOneString compares a parsed number against raw text.
func (e *Engine) IsNumberMatchWithOneString(a *PhoneNumber, b string) MatchType {
	second, err := e.Parse(b, unknownRegion)
	if err == nil {
		return e.IsNumberMatch(a, second)
	}
	if !IsErrInvalidCountryCode(err) {
		return MatchNotANumber
	}
	// The text had no country code of its own. Re-parse it in the region of
	// the first number, then fall back to a country-code-free comparison.
	region := e.regionCodeForCountryCode(a.CountryCode)
	if region != unknownRegion {
		if secondWithRegion, err := e.Parse(b, region); err == nil {
			return e.IsNumberMatch(a, secondWithRegion)
		}
	}
	secondProto, err := e.parseHelper(b, "", false, false)
	if err != nil {
		return MatchNotANumber
	}
	return e.IsNumberMatch(a, secondProto)
}

// IsNumberMatchWithStrings compares two raw texts, parsing each as
// self-sufficient input first and degrading to region-free comparison when
// neither carries its own country code.
func (e *Engine) IsNumberMatchWithStrings(a, b string) MatchType {
	first, err := e.Parse(a, unknownRegion)
	if err == nil {
		return e.IsNumberMatchWithOneString(first, b)
	}
	if !IsErrInvalidCountryCode(err) {
		return MatchNotANumber
	}
	second, err := e.Parse(b, unknownRegion)
	if err == nil {
		return e.IsNumberMatchWithOneString(second, a)
	}
	if !IsErrInvalidCountryCode(err) {
		return MatchNotANumber
	}
	firstProto, err1 := e.parseHelper(a, "", false, false)
	secondProto, err2 := e.parseHelper(b, "", false, false)
	if err1 != nil || err2 != nil {
		return MatchNotANumber
	}
	return e.IsNumberMatch(firstProto, secondProto)
}

// stripForMatch copies a number with the fields irrelevant to matching
// cleared and leading-zero bookkeeping normalised.
func stripForMatch(n *PhoneNumber) *PhoneNumber {
	c := n.Clone()
	c.RawInput = ""
	c.CountryCodeSource = CountryCodeSourceUnspecified
	c.PreferredDomesticCarrierCode = ""
	if !c.ItalianLeadingZero {
		c.NumberOfLeadingZeros = 0
	}
	return c
}

// isNationalNumberSuffixOfTheOther reports whether one NSN (as a digit
// string) is a strict suffix of the other.
func isNationalNumberSuffixOfTheOther(a, b *PhoneNumber) bool {
	first := nationalSignificantNumber(a)
	second := nationalSignificantNumber(b)
	return first != second &&
		(strings.HasSuffix(first, second) || strings.HasSuffix(second, first))
}
