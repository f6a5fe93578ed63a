package phonenumber

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/numplan/numplan/metadata"
	"github.com/numplan/numplan/metadata/plans"
)

func newTestEngine() *Engine {
	return New(metadata.NewCachedRepository(plans.Source()))
}

func TestCountryCodeForRegion(t *testing.T) {
	e := newTestEngine()

	assert.Equal(t, 1, e.CountryCodeForRegion("US"))
	assert.Equal(t, 1, e.CountryCodeForRegion("BS"))
	assert.Equal(t, 64, e.CountryCodeForRegion("NZ"))
	assert.Equal(t, 0, e.CountryCodeForRegion("ZZ"))
	assert.Equal(t, 0, e.CountryCodeForRegion(""))
}

func TestSupportedRegions(t *testing.T) {
	e := newTestEngine()

	regions := e.SupportedRegions()
	assert.Len(t, regions, 12)
	assert.Contains(t, regions, "US")
	assert.Contains(t, regions, "NZ")
	assert.Contains(t, regions, "BR")
	assert.NotContains(t, regions, metadata.NonGeoRegionCode)
}

func TestRegionCodeForNumber(t *testing.T) {
	e := newTestEngine()

	assert.Equal(t, "US", e.RegionCodeForNumber(&PhoneNumber{CountryCode: 1, NationalNumber: 6502530000}))
	assert.Equal(t, "GB", e.RegionCodeForNumber(&PhoneNumber{CountryCode: 44, NationalNumber: 7912345678}))
	assert.Equal(t, "NZ", e.RegionCodeForNumber(&PhoneNumber{CountryCode: 64, NationalNumber: 33316005}))
	assert.Equal(t, metadata.NonGeoRegionCode, e.RegionCodeForNumber(&PhoneNumber{CountryCode: 800, NationalNumber: 12345678}))
	assert.Equal(t, "", e.RegionCodeForNumber(&PhoneNumber{CountryCode: 57, NationalNumber: 3001234567}))
}

func TestIsNANPACountry(t *testing.T) {
	e := newTestEngine()

	assert.True(t, e.IsNANPACountry("US"))
	assert.True(t, e.IsNANPACountry("BS"))
	assert.False(t, e.IsNANPACountry("NZ"))
	assert.False(t, e.IsNANPACountry("ZZ"))
}

func TestGetNddPrefixForRegion(t *testing.T) {
	e := newTestEngine()

	assert.Equal(t, "1", e.GetNddPrefixForRegion("US", false))
	assert.Equal(t, "0", e.GetNddPrefixForRegion("NZ", false))
	assert.Equal(t, "01", e.GetNddPrefixForRegion("MX", false))
	// Italy dials no national prefix.
	assert.Equal(t, "", e.GetNddPrefixForRegion("IT", false))
	assert.Equal(t, "", e.GetNddPrefixForRegion("ZZ", false))
}

func TestNationalSignificantNumber(t *testing.T) {
	e := newTestEngine()

	assert.Equal(t, "6502530000", e.NationalSignificantNumber(&PhoneNumber{CountryCode: 1, NationalNumber: 6502530000}))
	// Leading zeros are part of the national significant number in Italy.
	assert.Equal(t, "0236618300", e.NationalSignificantNumber(&PhoneNumber{
		CountryCode:        39,
		NationalNumber:     236618300,
		ItalianLeadingZero: true,
	}))
	assert.Equal(t, "00236618300", e.NationalSignificantNumber(&PhoneNumber{
		CountryCode:          39,
		NationalNumber:       236618300,
		ItalianLeadingZero:   true,
		NumberOfLeadingZeros: 2,
	}))
}
