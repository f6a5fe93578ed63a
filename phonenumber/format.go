package phonenumber

import (
	"strconv"
	"strings"

	"github.com/numplan/numplan/internal/regexcache"
	"github.com/numplan/numplan/metadata"
)

// NumberFormat selects one of the four output styles.
type NumberFormat int

const (
	FormatE164 NumberFormat = iota
	FormatInternational
	FormatNational
	FormatRFC3966
)

// String returns the wire-stable name of the style.
func (f NumberFormat) String() string {
	switch f {
	case FormatE164:
		return "E164"
	case FormatInternational:
		return "INTERNATIONAL"
	case FormatNational:
		return "NATIONAL"
	default:
		return "RFC3966"
	}
}

var firstGroupPattern = regexcache.MustCompile(`(\$\d)`)

// Format renders a parsed number in the given style. Numbers with an unknown
// country code fall back to the bare NSN (or the raw input, when kept).
func (e *Engine) Format(number *PhoneNumber, style NumberFormat) string {
	if number.NationalNumber == 0 && number.RawInput != "" {
		// Inputs like "+002" normalise to an all-zero NSN that no format
		// pattern can render; echo what the user typed.
		return number.RawInput
	}
	countryCode := number.CountryCode
	nsn := nationalSignificantNumber(number)
	region := e.regionCodeForCountryCode(countryCode)
	if !e.hasValidCountryCallingCode(countryCode, region) {
		return nsn
	}
	if style == FormatE164 {
		// E164 carries no visual formatting, so the plan is not consulted.
		var sb strings.Builder
		sb.WriteString(nsn)
		prefixNumberWithCountryCallingCode(countryCode, FormatE164, &sb)
		return sb.String()
	}
	plan := e.metadataForRegionOrCallingCode(countryCode, region)
	var sb strings.Builder
	sb.WriteString(e.formatNsn(nsn, plan, style, ""))
	maybeAppendFormattedExtension(number, plan, style, &sb)
	prefixNumberWithCountryCallingCode(countryCode, style, &sb)
	return sb.String()
}

func (e *Engine) hasValidCountryCallingCode(countryCode int, region string) bool {
	if region == metadata.NonGeoRegionCode {
		return e.metadataForNonGeoRegion(countryCode) != nil
	}
	return e.isValidRegionCode(region)
}

// FormatByPattern formats with caller-supplied patterns instead of the
// plan's own, resolving "$NP" and "$FG" placeholders in the supplied
// national-prefix formatting rule.
func (e *Engine) FormatByPattern(number *PhoneNumber, style NumberFormat, userFormats []*metadata.NumberFormat) string {
	countryCode := number.CountryCode
	nsn := nationalSignificantNumber(number)
	region := e.regionCodeForCountryCode(countryCode)
	if !e.hasValidCountryCallingCode(countryCode, region) {
		return nsn
	}
	plan := e.metadataForRegionOrCallingCode(countryCode, region)
	var sb strings.Builder
	format := chooseFormattingPatternForNumber(userFormats, nsn)
	if format == nil {
		sb.WriteString(nsn)
	} else {
		resolved := *format
		rule := format.NationalPrefixFormattingRule
		if rule != "" {
			if plan.NationalPrefix != "" {
				rule = strings.ReplaceAll(rule, "$NP", plan.NationalPrefix)
				rule = strings.ReplaceAll(rule, "$FG", "$1")
				resolved.NationalPrefixFormattingRule = rule
			} else {
				resolved.NationalPrefixFormattingRule = ""
			}
		}
		sb.WriteString(formatNsnUsingPattern(nsn, &resolved, style, ""))
	}
	maybeAppendFormattedExtension(number, plan, style, &sb)
	prefixNumberWithCountryCallingCode(countryCode, style, &sb)
	return sb.String()
}

// FormatNationalNumberWithCarrierCode renders the national format with a
// carrier-selection code substituted into the plan's "$CC" rule. Used in
// countries (e.g. BR, CO) where long-distance calls need a carrier choice.
func (e *Engine) FormatNationalNumberWithCarrierCode(number *PhoneNumber, carrierCode string) string {
	countryCode := number.CountryCode
	nsn := nationalSignificantNumber(number)
	region := e.regionCodeForCountryCode(countryCode)
	if !e.hasValidCountryCallingCode(countryCode, region) {
		return nsn
	}
	plan := e.metadataForRegionOrCallingCode(countryCode, region)
	var sb strings.Builder
	sb.WriteString(e.formatNsn(nsn, plan, FormatNational, carrierCode))
	maybeAppendFormattedExtension(number, plan, FormatNational, &sb)
	prefixNumberWithCountryCallingCode(countryCode, FormatNational, &sb)
	return sb.String()
}

// FormatNationalNumberWithPreferredCarrierCode uses the carrier code
// remembered at parse time, falling back to the supplied default.
func (e *Engine) FormatNationalNumberWithPreferredCarrierCode(number *PhoneNumber, fallbackCarrierCode string) string {
	carrierCode := number.PreferredDomesticCarrierCode
	if carrierCode == "" {
		carrierCode = fallbackCarrierCode
	}
	return e.FormatNationalNumberWithCarrierCode(number, carrierCode)
}

// FormatOutOfCountryCallingNumber renders the number as dialled from
// regionCallingFrom: IDD prefix, country code, then the international
// format. Same-country calls degrade to the national format, and calls
// between NANPA countries keep the "1" with the international layout.
func (e *Engine) FormatOutOfCountryCallingNumber(number *PhoneNumber, regionCallingFrom string) string {
	if !e.isValidRegionCode(regionCallingFrom) {
		return e.Format(number, FormatInternational)
	}
	countryCode := number.CountryCode
	nsn := nationalSignificantNumber(number)
	if countryCode == nanpaCountryCode {
		if e.IsNANPACountry(regionCallingFrom) {
			// Dialled like a domestic long-distance call: 1 + 10 digits.
			return strconv.Itoa(countryCode) + " " + e.Format(number, FormatNational)
		}
	} else if countryCode == e.CountryCodeForRegion(regionCallingFrom) {
		// Countries sharing a calling code reach each other nationally.
		return e.Format(number, FormatNational)
	}
	fromPlan := e.metadataForRegion(regionCallingFrom)
	internationalPrefix := fromPlan.InternationalPrefix
	internationalPrefixForFormatting := ""
	if fromPlan.PreferredInternationalPrefix != "" {
		internationalPrefixForFormatting = fromPlan.PreferredInternationalPrefix
	} else if isSingleIDDPrefix(internationalPrefix) {
		internationalPrefixForFormatting = internationalPrefix
	}
	region := e.regionCodeForCountryCode(countryCode)
	plan := e.metadataForRegionOrCallingCode(countryCode, region)
	var sb strings.Builder
	sb.WriteString(e.formatNsn(nsn, plan, FormatInternational, ""))
	maybeAppendFormattedExtension(number, plan, FormatInternational, &sb)
	formatted := sb.String()
	if internationalPrefixForFormatting != "" {
		return internationalPrefixForFormatting + " " + strconv.Itoa(countryCode) + " " + formatted
	}
	// No unique IDD; present the universal "+" form instead.
	var out strings.Builder
	out.WriteString(formatted)
	prefixNumberWithCountryCallingCode(countryCode, FormatInternational, &out)
	return out.String()
}

// isSingleIDDPrefix reports whether the plan's international-prefix pattern
// denotes exactly one dialable sequence rather than alternatives.
func isSingleIDDPrefix(internationalPrefix string) bool {
	return regexcache.MustCompileFull(`[\d]+(?:[~\x{2053}\x{223C}\x{FF5E}][\d]+)?`).MatchString(internationalPrefix)
}

// FormatInOriginalFormat renders a number parsed with ParseAndKeepRawInput
// the way the user grouped it, guided by how the country code arrived. When
// the stored raw input would format differently under the region's current
// rules (digits-wise), the raw input wins.
func (e *Engine) FormatInOriginalFormat(number *PhoneNumber, regionCallingFrom string) string {
	if number.RawInput != "" && !e.hasFormattingPatternForNumber(number) {
		return number.RawInput
	}
	var formatted string
	switch number.CountryCodeSource {
	case CountryCodeSourceFromNumberWithPlusSign:
		formatted = e.Format(number, FormatInternational)
	case CountryCodeSourceFromNumberWithIDD:
		formatted = e.FormatOutOfCountryCallingNumber(number, regionCallingFrom)
	case CountryCodeSourceFromNumberWithoutPlusSign:
		formatted = e.Format(number, FormatInternational)[1:]
	default:
		region := e.regionCodeForCountryCode(number.CountryCode)
		nationalPrefix := e.GetNddPrefixForRegion(region, true)
		nationalFormat := e.Format(number, FormatNational)
		if nationalPrefix == "" {
			formatted = nationalFormat
			break
		}
		if e.rawInputContainsNationalPrefix(number.RawInput, nationalPrefix, region) {
			formatted = nationalFormat
			break
		}
		// The user omitted the national prefix; strip any prefix the format
		// rule would add so the output mirrors the input.
		plan := e.metadataForRegion(region)
		nsn := nationalSignificantNumber(number)
		format := chooseFormattingPatternForNumber(plan.Formats, nsn)
		if format == nil || format.NationalPrefixFormattingRule == "" {
			formatted = nationalFormat
			break
		}
		if formattingRuleHasFirstGroupOnly(format.NationalPrefixFormattingRule) {
			formatted = nationalFormat
			break
		}
		bare := *format
		bare.NationalPrefixFormattingRule = ""
		formatted = formatNsnUsingPattern(nsn, &bare, FormatNational, "")
	}
	if number.RawInput != "" {
		if NormalizeDiallableCharsOnly(formatted) != NormalizeDiallableCharsOnly(number.RawInput) {
			return number.RawInput
		}
	}
	return formatted
}

// rawInputContainsNationalPrefix checks whether the raw input starts with the
// national prefix, tolerating a US-style leading "1" before an area code.
func (e *Engine) rawInputContainsNationalPrefix(rawInput, nationalPrefix, region string) bool {
	normalized := NormalizeDigitsOnly(rawInput)
	if !strings.HasPrefix(normalized, nationalPrefix) {
		return false
	}
	// "1 (650) 253 0000" in the US: the "1" is a valid number's first digit,
	// not a prefix.
	if parsed, err := e.Parse(normalized[len(nationalPrefix):], region); err == nil {
		return e.IsValidNumber(parsed)
	}
	return false
}

func (e *Engine) hasFormattingPatternForNumber(number *PhoneNumber) bool {
	region := e.regionCodeForCountryCode(number.CountryCode)
	plan := e.metadataForRegionOrCallingCode(number.CountryCode, region)
	if plan == nil {
		return false
	}
	return chooseFormattingPatternForNumber(plan.Formats, nationalSignificantNumber(number)) != nil
}

// formattingRuleHasFirstGroupOnly: "($1)" and "$1" rules carry no national
// prefix, so stripping them is pointless.
func formattingRuleHasFirstGroupOnly(rule string) bool {
	return rule == "" || regexcache.MustCompileFull(`\(?\$1\)?`).MatchString(rule)
}

// formatNsn formats the national significant number using the plan's
// patterns. International formats are preferred for the international styles
// when the plan carries them.
func (e *Engine) formatNsn(nsn string, plan *metadata.NumberingPlan, style NumberFormat, carrierCode string) string {
	formats := plan.Formats
	if len(plan.IntlFormats) > 0 && style != FormatNational {
		formats = plan.IntlFormats
	}
	format := chooseFormattingPatternForNumber(formats, nsn)
	if format == nil {
		return nsn
	}
	return formatNsnUsingPattern(nsn, format, style, carrierCode)
}

// chooseFormattingPatternForNumber picks the first format whose
// leading-digits pattern and full pattern both match, so a specific format
// is never shadowed by a catch-all listed after it.
func chooseFormattingPatternForNumber(formats []*metadata.NumberFormat, nsn string) *metadata.NumberFormat {
	for _, format := range formats {
		if len(format.LeadingDigits) > 0 {
			// Only the last, most detailed leading-digits pattern matters.
			last := format.LeadingDigits[len(format.LeadingDigits)-1]
			if loc := regexcache.MustCompile("^(?:" + last + ")").FindStringIndex(nsn); loc == nil {
				continue
			}
		}
		if regexcache.MustCompileFull(format.Pattern).MatchString(nsn) {
			return format
		}
	}
	return nil
}

// formatNsnUsingPattern applies one format pattern, folding in the national
// prefix or carrier code rule for national-style output and normalising
// separators for RFC 3966.
func formatNsnUsingPattern(nsn string, format *metadata.NumberFormat, style NumberFormat, carrierCode string) string {
	re := regexcache.MustCompileFull(format.Pattern)
	rule := format.Format
	switch {
	case style == FormatNational && carrierCode != "" && format.DomesticCarrierCodeFormattingRule != "":
		ccRule := strings.ReplaceAll(format.DomesticCarrierCodeFormattingRule, "$CC", carrierCode)
		rule = replaceFirstGroup(rule, ccRule)
	case style == FormatNational && format.NationalPrefixFormattingRule != "":
		rule = replaceFirstGroup(rule, format.NationalPrefixFormattingRule)
	}
	formatted := re.ReplaceAllString(nsn, goTemplate(rule))
	if style == FormatRFC3966 {
		// RFC 3966 allows only "-" between digit groups.
		formatted = separatorPattern.ReplaceAllString(formatted, "-")
		formatted = strings.TrimPrefix(formatted, "-")
	}
	return formatted
}

// replaceFirstGroup substitutes the first "$n" token of a format string with
// the expansion of a prefix rule, e.g. "$1 $2 $3" + "0$1" -> "0$1 $2 $3".
func replaceFirstGroup(formatRule, prefixRule string) string {
	loc := firstGroupPattern.FindStringIndex(formatRule)
	if loc == nil {
		return formatRule
	}
	return formatRule[:loc[0]] + strings.ReplaceAll(prefixRule, "$FG", formatRule[loc[0]:loc[1]]) + formatRule[loc[1]:]
}

// prefixNumberWithCountryCallingCode prepends the calling-code decoration of
// a style to an already formatted national part.
func prefixNumberWithCountryCallingCode(countryCode int, style NumberFormat, formatted *strings.Builder) {
	national := formatted.String()
	formatted.Reset()
	switch style {
	case FormatE164:
		formatted.WriteByte(plusSign)
		formatted.WriteString(strconv.Itoa(countryCode))
		formatted.WriteString(national)
	case FormatInternational:
		formatted.WriteByte(plusSign)
		formatted.WriteString(strconv.Itoa(countryCode))
		formatted.WriteByte(' ')
		formatted.WriteString(national)
	case FormatRFC3966:
		formatted.WriteString(rfc3966Prefix)
		formatted.WriteByte(plusSign)
		formatted.WriteString(strconv.Itoa(countryCode))
		formatted.WriteByte('-')
		formatted.WriteString(national)
	default:
		formatted.WriteString(national)
	}
}

// maybeAppendFormattedExtension appends the number's extension: RFC 3966
// uses ";ext=", other styles the plan's preferred prefix or " ext. ".
func maybeAppendFormattedExtension(number *PhoneNumber, plan *metadata.NumberingPlan, style NumberFormat, formatted *strings.Builder) {
	if number.Extension == "" {
		return
	}
	switch {
	case style == FormatRFC3966:
		formatted.WriteString(rfc3966ExtnPrefix)
	case plan != nil && plan.PreferredExtnPrefix != "":
		formatted.WriteString(plan.PreferredExtnPrefix)
	default:
		formatted.WriteString(" ext. ")
	}
	formatted.WriteString(number.Extension)
}

// FormatNumberForMobileDialing returns the digits to hand to a dialler on a
// mobile device in regionCallingFrom, or "" when the number cannot be
// reliably dialled from there. withFormatting keeps the visual grouping.
func (e *Engine) FormatNumberForMobileDialing(number *PhoneNumber, regionCallingFrom string, withFormatting bool) string {
	countryCode := number.CountryCode
	region := e.regionCodeForCountryCode(countryCode)
	if !e.hasValidCountryCallingCode(countryCode, region) {
		return number.RawInput
	}
	stripped := number.Clone()
	stripped.Extension = ""
	numberType := e.GetNumberType(stripped)
	isValid := numberType != NumberTypeUnknown
	var formatted string
	if regionCallingFrom == region {
		// Domestic call: national format when valid, "+cc nsn" otherwise.
		if isValid {
			formatted = e.Format(stripped, FormatNational)
		} else {
			formatted = ""
		}
	} else if isValid {
		formatted = e.Format(stripped, FormatInternational)
	} else {
		formatted = ""
	}
	if withFormatting {
		return formatted
	}
	return NormalizeDiallableCharsOnly(formatted)
}

// FormatOutOfCountryKeepingAlphaChars formats like
// FormatOutOfCountryCallingNumber but preserves vanity letters and grouping
// from the raw input, only prepending dialling prefixes.
func (e *Engine) FormatOutOfCountryKeepingAlphaChars(number *PhoneNumber, regionCallingFrom string) string {
	rawInput := number.RawInput
	if rawInput == "" {
		return e.FormatOutOfCountryCallingNumber(number, regionCallingFrom)
	}
	countryCode := number.CountryCode
	region := e.regionCodeForCountryCode(countryCode)
	if !e.hasValidCountryCallingCode(countryCode, region) {
		return rawInput
	}
	// Strip any leading junk before the first digit or plus.
	rawInput = extractPossibleNumber(rawInput)
	if !e.isValidRegionCode(regionCallingFrom) {
		return plusSignString() + strconv.Itoa(countryCode) + " " + rawInput
	}
	if countryCode == e.CountryCodeForRegion(regionCallingFrom) {
		return rawInput
	}
	fromPlan := e.metadataForRegion(regionCallingFrom)
	internationalPrefix := fromPlan.InternationalPrefix
	prefix := fromPlan.PreferredInternationalPrefix
	if prefix == "" && isSingleIDDPrefix(internationalPrefix) {
		prefix = internationalPrefix
	}
	if prefix == "" {
		return plusSignString() + strconv.Itoa(countryCode) + " " + rawInput
	}
	return prefix + " " + strconv.Itoa(countryCode) + " " + rawInput
}

func plusSignString() string { return string(rune(plusSign)) }
