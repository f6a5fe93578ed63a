package phonenumber

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/numplan/numplan/internal/regexcache"
	"github.com/numplan/numplan/metadata"
)

// Engine binds the parser, validator, formatter, as-you-type formatter, and
// text matcher to one immutable metadata repository. Construct once, share
// freely; all methods are safe for concurrent use.
type Engine struct {
	repo metadata.Repository
}

// New returns an Engine over the given repository.
func New(repo metadata.Repository) *Engine {
	return &Engine{repo: repo}
}

// metadataForRegion loads the plan for a region, or nil when the region is
// unknown. A load failure means the compiled tables reference a plan the
// backing store cannot produce; that is a packaging defect, so it panics.
func (e *Engine) metadataForRegion(region string) *metadata.NumberingPlan {
	plan, err := e.repo.MetadataForRegion(region)
	if err != nil {
		panic(fmt.Sprintf("phonenumber: %v", err))
	}
	return plan
}

func (e *Engine) metadataForNonGeoRegion(countryCode int) *metadata.NumberingPlan {
	plan, err := e.repo.MetadataForNonGeoRegion(countryCode)
	if err != nil {
		panic(fmt.Sprintf("phonenumber: %v", err))
	}
	return plan
}

// metadataForRegionOrCallingCode returns the plan governing a calling code:
// the non-geographic plan for pseudo-region "001", the region plan
// otherwise.
func (e *Engine) metadataForRegionOrCallingCode(countryCode int, region string) *metadata.NumberingPlan {
	if region == metadata.NonGeoRegionCode {
		return e.metadataForNonGeoRegion(countryCode)
	}
	return e.metadataForRegion(region)
}

// regionCodeForCountryCode returns the main region for a calling code, or
// "ZZ" when the code is unknown.
func (e *Engine) regionCodeForCountryCode(countryCode int) string {
	regions := e.repo.RegionsForCountryCode(countryCode)
	if len(regions) == 0 {
		return unknownRegion
	}
	return regions[0]
}

// RegionCodeForNumber returns the region a parsed number belongs to. For
// calling codes shared between regions, the plans' leading-digits patterns
// and number-type tables decide; "" when no region claims the number.
func (e *Engine) RegionCodeForNumber(number *PhoneNumber) string {
	regions := e.repo.RegionsForCountryCode(number.CountryCode)
	if len(regions) == 0 {
		return ""
	}
	if len(regions) == 1 {
		return regions[0]
	}
	nsn := nationalSignificantNumber(number)
	for _, region := range regions {
		plan := e.metadataForRegionOrCallingCode(number.CountryCode, region)
		if plan == nil {
			continue
		}
		if plan.LeadingDigits != "" {
			if loc := regexcache.MustCompile("^(?:" + plan.LeadingDigits + ")").FindStringIndex(nsn); loc != nil {
				return region
			}
		} else if e.numberTypeHelper(nsn, plan) != NumberTypeUnknown {
			return region
		}
	}
	return ""
}

// CountryCodeForRegion returns the calling code of a region, or 0 when the
// region is unknown.
func (e *Engine) CountryCodeForRegion(region string) int {
	return e.repo.CountryCodeForRegion(region)
}

// SupportedRegions lists every geographic region with a numbering plan.
func (e *Engine) SupportedRegions() []string {
	return e.repo.SupportedRegions()
}

// IsNANPACountry reports whether the region participates in the North
// American Numbering Plan (calling code 1).
func (e *Engine) IsNANPACountry(region string) bool {
	for _, r := range e.repo.RegionsForCountryCode(nanpaCountryCode) {
		if r == region {
			return true
		}
	}
	return false
}

const nanpaCountryCode = 1

// GetNddPrefixForRegion returns the national dialling prefix of a region.
// Some prefixes contain a "~" marking an optional wait tone; stripNonDigits
// removes it.
func (e *Engine) GetNddPrefixForRegion(region string, stripNonDigits bool) string {
	plan := e.metadataForRegion(region)
	if plan == nil || plan.NationalPrefix == "" {
		return ""
	}
	prefix := plan.NationalPrefix
	if stripNonDigits {
		prefix = strings.ReplaceAll(prefix, "~", "")
	}
	return prefix
}

// isValidRegionCode reports whether the region has a numbering plan.
func (e *Engine) isValidRegionCode(region string) bool {
	return region != "" && e.metadataForRegion(region) != nil
}

// nationalSignificantNumber renders the NSN of a number as a digit string,
// re-applying recorded leading zeros.
func nationalSignificantNumber(number *PhoneNumber) string {
	var sb strings.Builder
	for i := 0; i < number.LeadingZeros(); i++ {
		sb.WriteByte('0')
	}
	sb.WriteString(strconv.FormatUint(number.NationalNumber, 10))
	return sb.String()
}

// NationalSignificantNumber is the exported form of the NSN digit string.
func (e *Engine) NationalSignificantNumber(number *PhoneNumber) string {
	return nationalSignificantNumber(number)
}
