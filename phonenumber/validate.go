package phonenumber

import (
	"sort"

	"github.com/numplan/numplan/internal/regexcache"
	"github.com/numplan/numplan/metadata"
)

// NumberType classifies a number within its numbering plan.
type NumberType int

const (
	NumberTypeFixedLine NumberType = iota
	NumberTypeMobile
	// NumberTypeFixedLineOrMobile covers plans where the two ranges are
	// indistinguishable (e.g. the NANPA).
	NumberTypeFixedLineOrMobile
	NumberTypeTollFree
	NumberTypePremiumRate
	NumberTypeSharedCost
	NumberTypeVOIP
	NumberTypePersonalNumber
	NumberTypePager
	NumberTypeUAN
	NumberTypeVoicemail
	NumberTypeUnknown
)

// String returns the wire-stable name of the type.
func (t NumberType) String() string {
	switch t {
	case NumberTypeFixedLine:
		return "FIXED_LINE"
	case NumberTypeMobile:
		return "MOBILE"
	case NumberTypeFixedLineOrMobile:
		return "FIXED_LINE_OR_MOBILE"
	case NumberTypeTollFree:
		return "TOLL_FREE"
	case NumberTypePremiumRate:
		return "PREMIUM_RATE"
	case NumberTypeSharedCost:
		return "SHARED_COST"
	case NumberTypeVOIP:
		return "VOIP"
	case NumberTypePersonalNumber:
		return "PERSONAL_NUMBER"
	case NumberTypePager:
		return "PAGER"
	case NumberTypeUAN:
		return "UAN"
	case NumberTypeVoicemail:
		return "VOICEMAIL"
	default:
		return "UNKNOWN"
	}
}

// ValidationResult grades a possible-length check. Callers need more than a
// boolean: "wrong length for this type but right for another" and "no such
// type here at all" demand different reactions.
type ValidationResult int

const (
	ValidationIsPossible ValidationResult = iota
	// ValidationIsPossibleLocalOnly: the length only works for local dialling
	// (no area code).
	ValidationIsPossibleLocalOnly
	ValidationInvalidCountryCode
	ValidationTooShort
	ValidationTooLong
	// ValidationInvalidLength: between the minimum and maximum but matching
	// no actual length, or the type has no numbers in this plan.
	ValidationInvalidLength
)

// String returns the wire-stable name of the result.
func (v ValidationResult) String() string {
	switch v {
	case ValidationIsPossible:
		return "IS_POSSIBLE"
	case ValidationIsPossibleLocalOnly:
		return "IS_POSSIBLE_LOCAL_ONLY"
	case ValidationInvalidCountryCode:
		return "INVALID_COUNTRY_CODE"
	case ValidationTooShort:
		return "TOO_SHORT"
	case ValidationTooLong:
		return "TOO_LONG"
	default:
		return "INVALID_LENGTH"
	}
}

// descForType resolves the per-type descriptor, nil when the plan does not
// carry the type at all.
func descForType(plan *metadata.NumberingPlan, t NumberType) *metadata.NumberDesc {
	switch t {
	case NumberTypeFixedLine, NumberTypeFixedLineOrMobile:
		return plan.FixedLine
	case NumberTypeMobile:
		return plan.Mobile
	case NumberTypeTollFree:
		return plan.TollFree
	case NumberTypePremiumRate:
		return plan.PremiumRate
	case NumberTypeSharedCost:
		return plan.SharedCost
	case NumberTypeVOIP:
		return plan.VOIP
	case NumberTypePersonalNumber:
		return plan.PersonalNumber
	case NumberTypePager:
		return plan.Pager
	case NumberTypeUAN:
		return plan.UAN
	case NumberTypeVoicemail:
		return plan.Voicemail
	default:
		return plan.GeneralDesc
	}
}

// possibleLengths returns the effective length sets of a descriptor,
// inheriting from the general description when the descriptor does not
// specify its own.
func possibleLengths(plan *metadata.NumberingPlan, desc *metadata.NumberDesc) (lengths, localOnly []int) {
	if desc == nil {
		return nil, nil
	}
	if len(desc.PossibleLengths) > 0 {
		return desc.PossibleLengths, desc.PossibleLengthsLocalOnly
	}
	return plan.GeneralDesc.PossibleLengths, desc.PossibleLengthsLocalOnly
}

// testNumberLength grades the length of an NSN for one type of a plan,
// merging fixed-line and mobile length sets for the combined type.
func testNumberLength(nsn string, plan *metadata.NumberingPlan, t NumberType) ValidationResult {
	desc := descForType(plan, t)
	lengths, localOnly := possibleLengths(plan, desc)
	if t == NumberTypeFixedLineOrMobile || t == NumberTypeUnknown {
		if t == NumberTypeFixedLineOrMobile {
			fixed, fixedLocal := possibleLengths(plan, plan.FixedLine)
			mobile, mobileLocal := possibleLengths(plan, plan.Mobile)
			if len(fixed) == 0 {
				return testNumberLength(nsn, plan, NumberTypeMobile)
			}
			lengths = mergeSorted(fixed, mobile)
			localOnly = mergeSorted(fixedLocal, mobileLocal)
		} else {
			lengths, localOnly = possibleLengths(plan, plan.GeneralDesc)
		}
	}
	if len(lengths) == 0 {
		return ValidationInvalidLength
	}
	actual := len(nsn)
	if containsInt(localOnly, actual) {
		return ValidationIsPossibleLocalOnly
	}
	minimum := lengths[0]
	switch {
	case minimum == actual:
		return ValidationIsPossible
	case minimum > actual:
		return ValidationTooShort
	case lengths[len(lengths)-1] < actual:
		return ValidationTooLong
	case containsInt(lengths[1:], actual):
		return ValidationIsPossible
	default:
		return ValidationInvalidLength
	}
}

func containsInt(xs []int, x int) bool {
	for _, v := range xs {
		if v == x {
			return true
		}
	}
	return false
}

func mergeSorted(a, b []int) []int {
	seen := make(map[int]bool, len(a)+len(b))
	var out []int
	for _, v := range append(append([]int(nil), a...), b...) {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	sort.Ints(out)
	return out
}

// matchNationalNumber reports whether the NSN fully matches the
// descriptor's national-number pattern.
func matchNationalNumber(nsn string, desc *metadata.NumberDesc) bool {
	if desc == nil || desc.Pattern == "" {
		return false
	}
	return regexcache.MustCompileFull(desc.Pattern).MatchString(nsn)
}

// numberMatchesDesc requires both the pattern and, when the descriptor
// carries its own length table, the length to agree.
func numberMatchesDesc(plan *metadata.NumberingPlan, nsn string, desc *metadata.NumberDesc) bool {
	if desc == nil || desc.Pattern == "" {
		return false
	}
	lengths, localOnly := possibleLengths(plan, desc)
	if len(lengths) > 0 && !containsInt(lengths, len(nsn)) && !containsInt(localOnly, len(nsn)) {
		return false
	}
	return matchNationalNumber(nsn, desc)
}

// numberTypeHelper classifies an NSN against one plan. Types are tried in a
// fixed priority order; fixed-line wins over mobile only when the mobile
// pattern does not also match.
func (e *Engine) numberTypeHelper(nsn string, plan *metadata.NumberingPlan) NumberType {
	if !numberMatchesDesc(plan, nsn, plan.GeneralDesc) {
		return NumberTypeUnknown
	}
	switch {
	case numberMatchesDesc(plan, nsn, plan.PremiumRate):
		return NumberTypePremiumRate
	case numberMatchesDesc(plan, nsn, plan.TollFree):
		return NumberTypeTollFree
	case numberMatchesDesc(plan, nsn, plan.SharedCost):
		return NumberTypeSharedCost
	case numberMatchesDesc(plan, nsn, plan.VOIP):
		return NumberTypeVOIP
	case numberMatchesDesc(plan, nsn, plan.PersonalNumber):
		return NumberTypePersonalNumber
	case numberMatchesDesc(plan, nsn, plan.Pager):
		return NumberTypePager
	case numberMatchesDesc(plan, nsn, plan.UAN):
		return NumberTypeUAN
	case numberMatchesDesc(plan, nsn, plan.Voicemail):
		return NumberTypeVoicemail
	}
	if numberMatchesDesc(plan, nsn, plan.FixedLine) {
		if plan.FixedLine != nil && plan.Mobile != nil && plan.FixedLine.Pattern == plan.Mobile.Pattern {
			return NumberTypeFixedLineOrMobile
		}
		if numberMatchesDesc(plan, nsn, plan.Mobile) {
			return NumberTypeFixedLineOrMobile
		}
		return NumberTypeFixedLine
	}
	if numberMatchesDesc(plan, nsn, plan.Mobile) {
		return NumberTypeMobile
	}
	return NumberTypeUnknown
}

// GetNumberType classifies a parsed number, or NumberTypeUnknown when the
// number is not even possible for its region.
func (e *Engine) GetNumberType(number *PhoneNumber) NumberType {
	region := e.RegionCodeForNumber(number)
	plan := e.metadataForRegionOrCallingCode(number.CountryCode, region)
	if plan == nil {
		return NumberTypeUnknown
	}
	return e.numberTypeHelper(nationalSignificantNumber(number), plan)
}

// IsValidNumber reports whether the number matches a type of its own
// region's plan.
func (e *Engine) IsValidNumber(number *PhoneNumber) bool {
	return e.IsValidNumberForRegion(number, e.RegionCodeForNumber(number))
}

// IsValidNumberForRegion is IsValidNumber pinned to one region: a number
// valid elsewhere under the same calling code does not count.
func (e *Engine) IsValidNumberForRegion(number *PhoneNumber, region string) bool {
	plan := e.metadataForRegionOrCallingCode(number.CountryCode, region)
	if plan == nil {
		return false
	}
	if region != metadata.NonGeoRegionCode && number.CountryCode != e.repo.CountryCodeForRegion(region) {
		return false
	}
	return e.numberTypeHelper(nationalSignificantNumber(number), plan) != NumberTypeUnknown
}

// IsPossibleNumber is a pure length check: fast, and a superset of
// IsValidNumber. Local-only lengths count as possible.
func (e *Engine) IsPossibleNumber(number *PhoneNumber) bool {
	result := e.IsPossibleNumberWithReason(number)
	return result == ValidationIsPossible || result == ValidationIsPossibleLocalOnly
}

// IsPossibleNumberWithReason grades the number's length for any type.
func (e *Engine) IsPossibleNumberWithReason(number *PhoneNumber) ValidationResult {
	return e.IsPossibleNumberForTypeWithReason(number, NumberTypeUnknown)
}

// IsPossibleNumberForType is the boolean form of the type-aware check.
func (e *Engine) IsPossibleNumberForType(number *PhoneNumber, t NumberType) bool {
	result := e.IsPossibleNumberForTypeWithReason(number, t)
	return result == ValidationIsPossible || result == ValidationIsPossibleLocalOnly
}

// IsPossibleNumberForTypeWithReason grades the number's length against one
// type's possible-length table.
func (e *Engine) IsPossibleNumberForTypeWithReason(number *PhoneNumber, t NumberType) ValidationResult {
	nsn := nationalSignificantNumber(number)
	countryCode := number.CountryCode
	regions := e.repo.RegionsForCountryCode(countryCode)
	if len(regions) == 0 {
		return ValidationInvalidCountryCode
	}
	region := e.regionCodeForCountryCode(countryCode)
	plan := e.metadataForRegionOrCallingCode(countryCode, region)
	if plan == nil {
		return ValidationInvalidCountryCode
	}
	return testNumberLength(nsn, plan, t)
}
