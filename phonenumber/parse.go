package phonenumber

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/numplan/numplan/internal/regexcache"
	"github.com/numplan/numplan/metadata"
)

// RFC 3966 phone-context validation: either +global-number-digits or a
// domain name.
var (
	rfc3966VisualSeparator          = `[\-\.\(\)]?`
	rfc3966PhoneDigit               = "(" + validDigits + "|" + rfc3966VisualSeparator + ")"
	rfc3966GlobalNumberDigitsRe     = regexcache.MustCompileFull(`\+` + rfc3966PhoneDigit + "*" + validDigits + rfc3966PhoneDigit + "*")
	rfc3966DomainLabel              = `[a-zA-Z0-9](?:[a-zA-Z0-9\-]*[a-zA-Z0-9])?`
	rfc3966DomainnameRe             = regexcache.MustCompileFull("(?:" + rfc3966DomainLabel + `\.)*` + rfc3966DomainLabel + `\.?`)
)

// Parse parses raw text into a structured number. defaultRegion supplies the
// numbering plan when the text does not carry its own country code (no "+");
// it may be empty for self-sufficient input. Failures are the closed
// ParseError taxonomy of errors.go.
func (e *Engine) Parse(rawInput, defaultRegion string) (*PhoneNumber, error) {
	return e.parseHelper(rawInput, defaultRegion, false, true)
}

// ParseAndKeepRawInput parses like Parse but additionally records the raw
// input, how the country code was derived, and any carrier-selection code.
func (e *Engine) ParseAndKeepRawInput(rawInput, defaultRegion string) (*PhoneNumber, error) {
	return e.parseHelper(rawInput, defaultRegion, true, true)
}

// parseHelper is the full parse pipeline. checkRegion is disabled only for the
// degraded comparisons done by IsNumberMatch.
func (e *Engine) parseHelper(numberToParse, defaultRegion string, keepRawInput, checkRegion bool) (*PhoneNumber, error) {
	if numberToParse == "" {
		return nil, parseError(ErrNotANumber, "empty input")
	}
	if len(numberToParse) > maxInputStringLength {
		return nil, parseError(ErrTooLong, "input exceeds %d characters", maxInputStringLength)
	}

	nationalNumber, err := buildNationalNumberForParsing(numberToParse)
	if err != nil {
		return nil, err
	}
	if !IsViablePhoneNumber(nationalNumber) {
		return nil, parseError(ErrNotANumber, "input does not look like a phone number")
	}
	if checkRegion && !e.checkRegionForParsing(nationalNumber, defaultRegion) {
		return nil, parseError(ErrInvalidCountryCode, "missing or invalid default region %q", defaultRegion)
	}

	number := &PhoneNumber{}
	if keepRawInput {
		number.RawInput = numberToParse
	}
	if ext, remainder := maybeStripExtension(nationalNumber); ext != "" {
		number.Extension = ext
		nationalNumber = remainder
	}

	regionMetadata := e.metadataForRegion(defaultRegion)
	countryCode, normalizedNationalNumber, err := e.maybeExtractCountryCode(nationalNumber, regionMetadata, keepRawInput, number)
	if err != nil {
		if !IsErrInvalidCountryCode(err) {
			return nil, err
		}
		// A plus sign followed by an unknown code, e.g. "+01 2345": retry
		// once on the digits after the plus, letting the default region
		// supply the country code.
		loc := plusCharsPattern.FindStringIndex(nationalNumber)
		if loc == nil {
			return nil, err
		}
		countryCode, normalizedNationalNumber, err = e.maybeExtractCountryCode(nationalNumber[loc[1]:], regionMetadata, keepRawInput, number)
		if err != nil {
			return nil, err
		}
		if countryCode == 0 {
			return nil, parseError(ErrInvalidCountryCode, "could not interpret number after plus sign")
		}
	}

	if countryCode != 0 {
		phoneNumberRegion := e.regionCodeForCountryCode(countryCode)
		if phoneNumberRegion != defaultRegion {
			// Shared calling codes (e.g. +1) format by the main country.
			regionMetadata = e.metadataForRegionOrCallingCode(countryCode, phoneNumberRegion)
		}
	} else {
		// No explicit code found; fall back to the default region's.
		normalizedNationalNumber = Normalize(nationalNumber)
		if defaultRegion != "" && regionMetadata != nil {
			countryCode = regionMetadata.CountryCode
		}
	}

	if len(normalizedNationalNumber) < minLengthNSN {
		return nil, parseError(ErrTooShortNSN, "national number has fewer than %d digits", minLengthNSN)
	}

	if regionMetadata != nil {
		carrierCode := ""
		potentialNationalNumber := normalizedNationalNumber
		e.maybeStripNationalPrefixAndCarrierCode(&potentialNationalNumber, regionMetadata, &carrierCode)
		// Only keep the stripped version when it leaves a sensible length;
		// otherwise the "prefix" was really part of the number.
		switch testNumberLength(potentialNationalNumber, regionMetadata, NumberTypeUnknown) {
		case ValidationTooShort, ValidationIsPossibleLocalOnly, ValidationInvalidLength:
			// keep the unstripped number
		default:
			normalizedNationalNumber = potentialNationalNumber
			if keepRawInput && carrierCode != "" {
				number.PreferredDomesticCarrierCode = carrierCode
			}
		}
	}

	if len(normalizedNationalNumber) < minLengthNSN {
		return nil, parseError(ErrTooShortNSN, "national number has fewer than %d digits", minLengthNSN)
	}
	if len(normalizedNationalNumber) > maxLengthNSN {
		return nil, parseError(ErrTooLong, "national number has more than %d digits", maxLengthNSN)
	}

	setItalianLeadingZeros(normalizedNationalNumber, number)
	nsn, convErr := strconv.ParseUint(strings.TrimLeft(normalizedNationalNumber, "0"), 10, 64)
	if convErr != nil {
		if strings.Trim(normalizedNationalNumber, "0") == "" {
			nsn = 0
		} else {
			return nil, parseError(ErrNotANumber, "national number is not numeric")
		}
	}
	number.CountryCode = countryCode
	number.NationalNumber = nsn
	return number, nil
}

// buildNationalNumberForParsing extracts the dialled-number portion of the
// input, honouring RFC 3966 tel: URIs: a "+"-led phone-context is prepended
// (a domain-name context is ignored for country-code purposes) and any ISDN
// subaddress is dropped. Extensions are handled later by
// maybeStripExtension, which also understands ";ext=".
func buildNationalNumberForParsing(numberToParse string) (string, error) {
	indexOfPhoneContext := strings.Index(numberToParse, rfc3966PhoneContext)
	var sb strings.Builder
	if indexOfPhoneContext >= 0 {
		contextStart := indexOfPhoneContext + len(rfc3966PhoneContext)
		context := numberToParse[contextStart:]
		if end := strings.IndexByte(context, ';'); end >= 0 {
			context = context[:end]
		}
		if !isPhoneContextValid(context) {
			return "", parseError(ErrNotANumber, "invalid RFC3966 phone-context")
		}
		if strings.HasPrefix(context, "+") {
			sb.WriteString(context)
		}
		// The national part sits between "tel:" and ";phone-context=".
		indexOfNationalNumber := 0
		if telIndex := strings.Index(numberToParse, rfc3966Prefix); telIndex >= 0 && telIndex < indexOfPhoneContext {
			indexOfNationalNumber = telIndex + len(rfc3966Prefix)
		}
		sb.WriteString(numberToParse[indexOfNationalNumber:indexOfPhoneContext])
	} else {
		sb.WriteString(extractPossibleNumber(numberToParse))
	}
	result := sb.String()
	if idx := strings.Index(result, rfc3966ISDNSubaddress); idx >= 0 {
		result = result[:idx]
	}
	return result, nil
}

func isPhoneContextValid(context string) bool {
	if context == "" {
		return false
	}
	if strings.HasPrefix(context, "+") {
		return rfc3966GlobalNumberDigitsRe.MatchString(context)
	}
	return rfc3966DomainnameRe.MatchString(context)
}

// checkRegionForParsing: input is parseable when the default region is known
// or the number announces its own country code with a plus sign.
func (e *Engine) checkRegionForParsing(numberToParse, defaultRegion string) bool {
	if e.isValidRegionCode(defaultRegion) {
		return true
	}
	return numberToParse != "" && plusCharsPattern.MatchString(numberToParse)
}

// maybeStripExtension splits a trailing extension notation off the number.
// The pattern is anchored at the end of the string, so only the last
// extension token is honoured. Stripping is rejected when what precedes the
// extension is not itself a viable number.
func maybeStripExtension(number string) (ext, remainder string) {
	loc := extnPattern.FindStringSubmatchIndex(number)
	if loc == nil || !IsViablePhoneNumber(number[:loc[0]]) {
		return "", number
	}
	// First non-empty capturing group wins; groups are ordered by label
	// explicitness.
	for g := 1; 2*g+1 < len(loc); g++ {
		if loc[2*g] >= 0 && loc[2*g+1] > loc[2*g] {
			return number[loc[2*g]:loc[2*g+1]], number[:loc[0]]
		}
	}
	return "", number
}

// maybeExtractCountryCode determines the country calling
// code of a normalised number and return the remaining NSN. The source of
// the code is recorded on phoneNumber when keepRawInput is set.
func (e *Engine) maybeExtractCountryCode(number string, defaultPlan *metadata.NumberingPlan, keepRawInput bool, phoneNumber *PhoneNumber) (int, string, error) {
	if number == "" {
		return 0, "", nil
	}
	fullNumber := number
	possibleIddPrefix := "NonMatch"
	if defaultPlan != nil {
		possibleIddPrefix = defaultPlan.InternationalPrefix
	}
	source := e.maybeStripInternationalPrefixAndNormalize(&fullNumber, possibleIddPrefix)
	if keepRawInput {
		phoneNumber.CountryCodeSource = source
	}
	if source != CountryCodeSourceFromDefaultCountry {
		if len(fullNumber) <= minLengthNSN {
			return 0, "", parseError(ErrTooShortAfterIDD, "only %d digits after IDD", len(fullNumber))
		}
		if cc, rest := e.extractCountryCode(fullNumber); cc != 0 {
			return cc, rest, nil
		}
		// An explicit international prefix with no recognisable country code
		// behind it is unrecoverable.
		return 0, "", parseError(ErrInvalidCountryCode, "country calling code not recognised")
	}
	if defaultPlan != nil {
		// The number may still start with the default region's own calling
		// code written without "+" or IDD. Accept that reading only when it
		// produces a plausible national number and the full reading does not.
		countryCode := defaultPlan.CountryCode
		ccString := strconv.Itoa(countryCode)
		if strings.HasPrefix(fullNumber, ccString) {
			potentialNationalNumber := fullNumber[len(ccString):]
			e.maybeStripNationalPrefixAndCarrierCode(&potentialNationalNumber, defaultPlan, nil)
			fullMatches := matchNationalNumber(fullNumber, defaultPlan.GeneralDesc)
			strippedMatches := matchNationalNumber(potentialNationalNumber, defaultPlan.GeneralDesc)
			if (!fullMatches && strippedMatches) ||
				testNumberLength(fullNumber, defaultPlan, NumberTypeUnknown) == ValidationTooLong {
				if keepRawInput {
					phoneNumber.CountryCodeSource = CountryCodeSourceFromNumberWithoutPlusSign
				}
				return countryCode, potentialNationalNumber, nil
			}
		}
	}
	return 0, fullNumber, nil
}

// maybeStripInternationalPrefixAndNormalize strips a leading plus sign or
// the region's IDD prefix in place, normalising the remainder, and reports
// how (or whether) an international prefix was found.
func (e *Engine) maybeStripInternationalPrefixAndNormalize(number *string, possibleIddPrefix string) CountryCodeSource {
	if *number == "" {
		return CountryCodeSourceFromDefaultCountry
	}
	if loc := plusCharsPattern.FindStringIndex(*number); loc != nil {
		*number = Normalize((*number)[loc[1]:])
		return CountryCodeSourceFromNumberWithPlusSign
	}
	iddPattern := regexcache.MustCompile("^(?:" + possibleIddPrefix + ")")
	*number = Normalize(*number)
	if parsePrefixAsIdd(iddPattern, number) {
		return CountryCodeSourceFromNumberWithIDD
	}
	return CountryCodeSourceFromDefaultCountry
}

// parsePrefixAsIdd strips the IDD match unless the first digit after it is a
// zero: no country calling code begins with zero, so such input is a
// national number that merely resembles an IDD.
func parsePrefixAsIdd(iddPattern *regexp.Regexp, number *string) bool {
	loc := iddPattern.FindStringIndex(*number)
	if loc == nil {
		return false
	}
	after := (*number)[loc[1]:]
	if digit := capturingDigitPattern.FindString(after); digit != "" {
		if NormalizeDigitsOnly(digit) == "0" {
			return false
		}
	}
	*number = after
	return true
}

// extractCountryCode tries the leading 1..3 digits against the known
// calling-code table, shortest first; a code is accepted as soon as the
// table defines it.
func (e *Engine) extractCountryCode(fullNumber string) (int, string) {
	if fullNumber == "" || fullNumber[0] == '0' {
		// Country codes never begin with zero.
		return 0, fullNumber
	}
	for length := 1; length <= maxLengthCountryCode && length <= len(fullNumber); length++ {
		potential, err := strconv.Atoi(fullNumber[:length])
		if err != nil {
			break
		}
		if len(e.repo.RegionsForCountryCode(potential)) > 0 {
			return potential, fullNumber[length:]
		}
	}
	return 0, fullNumber
}

// maybeStripNationalPrefixAndCarrierCode strips the plan's national prefix,
// but only when the remainder (after any transform rule) still matches the
// plan's general description, and never when stripping would demote a
// regular-length number to a local-only length. Returns whether a strip
// happened; carrierCode, when non-nil, receives a captured carrier-selection
// code.
func (e *Engine) maybeStripNationalPrefixAndCarrierCode(number *string, plan *metadata.NumberingPlan, carrierCode *string) bool {
	possibleNationalPrefix := plan.NationalPrefixPattern()
	if *number == "" || possibleNationalPrefix == "" {
		return false
	}
	prefixRe := regexcache.MustCompile("^(?:" + possibleNationalPrefix + ")")
	m := prefixRe.FindStringSubmatchIndex(*number)
	if m == nil {
		return false
	}
	isViableOriginal := matchNationalNumber(*number, plan.GeneralDesc)
	numOfGroups := prefixRe.NumSubexp()
	transformRule := plan.NationalPrefixTransformRule

	lastGroupEmpty := numOfGroups == 0 || m[2*numOfGroups] < 0 || m[2*numOfGroups] == m[2*numOfGroups+1]
	if transformRule == "" || lastGroupEmpty {
		stripped := (*number)[m[1]:]
		if isViableOriginal && !matchNationalNumber(stripped, plan.GeneralDesc) {
			return false
		}
		if rejectLocalOnlyDowngrade(*number, stripped, plan) {
			return false
		}
		if carrierCode != nil && numOfGroups > 0 && m[2] >= 0 {
			*carrierCode = (*number)[m[2]:m[3]]
		}
		*number = stripped
		return true
	}

	// Transform rule: re-insert captured groups, e.g. "0(11)15..." -> "911...".
	transformed := string(prefixRe.ExpandString(nil, goTemplate(transformRule), *number, m)) + (*number)[m[1]:]
	if isViableOriginal && !matchNationalNumber(transformed, plan.GeneralDesc) {
		return false
	}
	if rejectLocalOnlyDowngrade(*number, transformed, plan) {
		return false
	}
	if carrierCode != nil && numOfGroups > 1 && m[2] >= 0 {
		*carrierCode = (*number)[m[2]:m[3]]
	}
	*number = transformed
	return true
}

// rejectLocalOnlyDowngrade refuses a strip that turns a number of regular
// possible length into one that is only plausible as a local-only (short,
// area-code-less) number: such input is far more likely to be a short code
// than a prefixed number.
func rejectLocalOnlyDowngrade(original, stripped string, plan *metadata.NumberingPlan) bool {
	if testNumberLength(stripped, plan, NumberTypeUnknown) != ValidationIsPossibleLocalOnly {
		return false
	}
	return testNumberLength(original, plan, NumberTypeUnknown) == ValidationIsPossible
}

// setItalianLeadingZeros records leading zeros so they survive the integer
// representation of the NSN. At least one trailing digit is always left to
// carry the number's value.
func setItalianLeadingZeros(nationalNumber string, number *PhoneNumber) {
	if len(nationalNumber) < 2 || nationalNumber[0] != '0' {
		return
	}
	number.ItalianLeadingZero = true
	zeros := 1
	for zeros < len(nationalNumber)-1 && nationalNumber[zeros] == '0' {
		zeros++
	}
	if zeros != 1 {
		number.NumberOfLeadingZeros = zeros
	}
}

// goTemplate rewrites $1-style group references as ${1} so that expansion is
// unambiguous when a digit follows the reference.
func goTemplate(rule string) string {
	var sb strings.Builder
	for i := 0; i < len(rule); i++ {
		if rule[i] == '$' && i+1 < len(rule) && rule[i+1] >= '0' && rule[i+1] <= '9' {
			sb.WriteString("${")
			sb.WriteByte(rule[i+1])
			sb.WriteByte('}')
			i++
			continue
		}
		sb.WriteByte(rule[i])
	}
	return sb.String()
}
