package phonenumber

import (
	"sort"
	"strconv"
	"strings"

	"github.com/numplan/numplan/internal/regexcache"
	"github.com/numplan/numplan/metadata"
)

const (
	// digitPlaceholder marks the unfilled digit slots of a formatting
	// template (PUNCTUATION SPACE, U+2008).
	digitPlaceholder = " "

	separatorBeforeNationalNumber = ' '

	// minLeadingDigitsLength: formatting starts once this many national
	// digits have accrued.
	minLeadingDigitsLength = 3

	// longestPhoneNumber seeds the template builder; its length tracks
	// maxLengthNSN less room for a country code.
	longestPhoneNumber = "999999999999999"
)

var (
	// eligibleFormatPattern admits format strings made only of group
	// references and punctuation; anything else (e.g. "$1 ext. $2") cannot be
	// rendered one digit at a time.
	eligibleFormatPattern = regexcache.MustCompileFull(
		"[" + validPunctuation + "]*" + `\$1` + "[" + validPunctuation + "]*" +
			`(\$\d` + "[" + validPunctuation + "]*)*")

	nationalPrefixSeparatorsPattern = regexcache.MustCompile(`[- ]`)
)

// emptyPlan stands in for an unknown region. Its impossible international
// prefix keeps the IDD extractor from firing.
var emptyPlan = &metadata.NumberingPlan{ID: unknownRegion, InternationalPrefix: "NA"}

// AsYouTypeFormatter reformats a number progressively as digits are typed.
// Feed it one character at a time with InputDigit; each call returns the best
// rendering of everything typed so far. It is not safe for concurrent use;
// create one per input session.
type AsYouTypeFormatter struct {
	engine *Engine

	currentOutput string

	formattingTemplate string
	// currentFormattingPattern is the pattern of the format the template was
	// built from, so an unchanged choice does not rebuild it.
	currentFormattingPattern string

	accruedInput                  strings.Builder
	accruedInputWithoutFormatting strings.Builder

	// ableToFormat is false when the input has characters we cannot place, or
	// digits outran every template. inputHasFormatting is set when the user
	// types their own punctuation, which we then never fight.
	ableToFormat                 bool
	inputHasFormatting           bool
	isCompleteNumber             bool
	isExpectingCountryCallingCode bool

	defaultCountry string
	defaultPlan    *metadata.NumberingPlan
	currentPlan    *metadata.NumberingPlan

	lastMatchPosition int

	// originalPosition / positionToRemember track the caret position the
	// caller asked to remember, in raw and normalised coordinates.
	originalPosition   int
	positionToRemember int

	prefixBeforeNationalNumber    strings.Builder
	shouldAddSpaceAfterNationalPrefix bool
	extractedNationalPrefix       string
	nationalNumber                strings.Builder

	possibleFormats []*metadata.NumberFormat
}

// NewAsYouTypeFormatter returns a formatter for numbers typed in the given
// region.
func (e *Engine) NewAsYouTypeFormatter(regionCode string) *AsYouTypeFormatter {
	f := &AsYouTypeFormatter{
		engine:         e,
		defaultCountry: regionCode,
	}
	f.defaultPlan = f.planForRegion(regionCode)
	f.currentPlan = f.defaultPlan
	f.ableToFormat = true
	return f
}

// planForRegion resolves the main plan behind a region's calling code, or
// the empty plan for unknown regions.
func (f *AsYouTypeFormatter) planForRegion(regionCode string) *metadata.NumberingPlan {
	countryCode := f.engine.CountryCodeForRegion(regionCode)
	mainCountry := f.engine.regionCodeForCountryCode(countryCode)
	if plan := f.engine.metadataForRegion(mainCountry); plan != nil {
		return plan
	}
	return emptyPlan
}

// Clear resets the formatter for a fresh number.
func (f *AsYouTypeFormatter) Clear() {
	f.currentOutput = ""
	f.accruedInput.Reset()
	f.accruedInputWithoutFormatting.Reset()
	f.formattingTemplate = ""
	f.lastMatchPosition = 0
	f.currentFormattingPattern = ""
	f.prefixBeforeNationalNumber.Reset()
	f.extractedNationalPrefix = ""
	f.nationalNumber.Reset()
	f.ableToFormat = true
	f.inputHasFormatting = false
	f.positionToRemember = 0
	f.originalPosition = 0
	f.isCompleteNumber = false
	f.isExpectingCountryCallingCode = false
	f.possibleFormats = f.possibleFormats[:0]
	f.shouldAddSpaceAfterNationalPrefix = false
	if f.currentPlan != f.defaultPlan {
		f.currentPlan = f.planForRegion(f.defaultCountry)
	}
}

// InputDigit feeds the next typed character and returns the formatted
// rendering of everything typed so far.
func (f *AsYouTypeFormatter) InputDigit(nextChar rune) string {
	f.currentOutput = f.inputDigitWithOptionToRememberPosition(nextChar, false)
	return f.currentOutput
}

// InputDigitAndRememberPosition is InputDigit plus a caret bookmark; the
// bookmark's position in later output is read with GetRememberedPosition.
func (f *AsYouTypeFormatter) InputDigitAndRememberPosition(nextChar rune) string {
	f.currentOutput = f.inputDigitWithOptionToRememberPosition(nextChar, true)
	return f.currentOutput
}

func (f *AsYouTypeFormatter) inputDigitWithOptionToRememberPosition(nextChar rune, rememberPosition bool) string {
	f.accruedInput.WriteRune(nextChar)
	if rememberPosition {
		f.originalPosition = f.accruedInput.Len()
	}
	if !f.isDigitOrLeadingPlusSign(nextChar) {
		f.ableToFormat = false
		f.inputHasFormatting = true
	} else {
		nextChar = f.normalizeAndAccrueDigitsAndPlusSign(nextChar, rememberPosition)
	}
	if !f.ableToFormat {
		// Once formatting is abandoned we still watch for an IDD or a longer
		// national prefix that would let us start over.
		if f.inputHasFormatting {
			return f.accruedInput.String()
		}
		if f.attemptToExtractIdd() {
			if f.attemptToExtractCountryCallingCode() {
				return f.attemptToChoosePatternWithPrefixExtracted()
			}
		} else if f.ableToExtractLongerNdd() {
			f.prefixBeforeNationalNumber.WriteByte(separatorBeforeNationalNumber)
			return f.attemptToChoosePatternWithPrefixExtracted()
		}
		return f.accruedInput.String()
	}

	switch f.accruedInputWithoutFormatting.Len() {
	case 0, 1, 2:
		return f.accruedInput.String()
	case 3:
		if f.attemptToExtractIdd() {
			f.isExpectingCountryCallingCode = true
		} else {
			f.extractedNationalPrefix = f.removeNationalPrefixFromNationalNumber()
			return f.attemptToChooseFormattingPattern()
		}
		fallthrough
	default:
		if f.isExpectingCountryCallingCode {
			if f.attemptToExtractCountryCallingCode() {
				f.isExpectingCountryCallingCode = false
			}
			return f.prefixBeforeNationalNumber.String() + f.nationalNumber.String()
		}
		if len(f.possibleFormats) > 0 {
			tempNationalNumber := f.inputDigitHelper(byte(nextChar))
			if formattedNumber := f.attemptToFormatAccruedDigits(); formattedNumber != "" {
				return formattedNumber
			}
			f.narrowDownPossibleFormats(f.nationalNumber.String())
			if f.maybeCreateNewTemplate() {
				return f.inputAccruedNationalNumber()
			}
			if f.ableToFormat {
				return f.appendNationalNumber(tempNationalNumber)
			}
			return f.accruedInput.String()
		}
		return f.attemptToChooseFormattingPattern()
	}
}

func (f *AsYouTypeFormatter) attemptToChoosePatternWithPrefixExtracted() string {
	f.ableToFormat = true
	f.isExpectingCountryCallingCode = false
	f.possibleFormats = f.possibleFormats[:0]
	f.lastMatchPosition = 0
	f.formattingTemplate = ""
	f.currentFormattingPattern = ""
	return f.attemptToChooseFormattingPattern()
}

// ableToExtractLongerNdd: with a new digit in hand, check whether a longer
// national prefix can now be extracted than before, putting the old one back
// first.
func (f *AsYouTypeFormatter) ableToExtractLongerNdd() bool {
	if f.extractedNationalPrefix != "" {
		restored := f.extractedNationalPrefix + f.nationalNumber.String()
		f.nationalNumber.Reset()
		f.nationalNumber.WriteString(restored)
		prefix := f.prefixBeforeNationalNumber.String()
		if idx := strings.LastIndex(prefix, f.extractedNationalPrefix); idx >= 0 {
			f.prefixBeforeNationalNumber.Reset()
			f.prefixBeforeNationalNumber.WriteString(prefix[:idx])
		}
	}
	return f.extractedNationalPrefix != f.removeNationalPrefixFromNationalNumber()
}

func (f *AsYouTypeFormatter) isDigitOrLeadingPlusSign(nextChar rune) bool {
	if nextChar >= '0' && nextChar <= '9' {
		return true
	}
	if _, ok := decimalDigit(nextChar); ok {
		return true
	}
	return f.accruedInput.Len() == len(string(nextChar)) && strings.ContainsRune(plusChars, nextChar)
}

// attemptToFormatAccruedDigits formats the full accrued number when a
// possible format matches it completely. The rendering is accepted only when
// its diallable characters equal what was typed, so a format cannot invent
// or drop digits.
func (f *AsYouTypeFormatter) attemptToFormatAccruedDigits() string {
	national := f.nationalNumber.String()
	for _, format := range f.possibleFormats {
		re := regexcache.MustCompileFull(format.Pattern)
		if !re.MatchString(national) {
			continue
		}
		f.shouldAddSpaceAfterNationalPrefix = nationalPrefixSeparatorsPattern.MatchString(format.NationalPrefixFormattingRule)
		formatted := re.ReplaceAllString(national, goTemplate(format.Format))
		fullOutput := f.appendNationalNumber(formatted)
		if NormalizeDiallableCharsOnly(fullOutput) == f.accruedInputWithoutFormatting.String() {
			return fullOutput
		}
	}
	return ""
}

// GetRememberedPosition returns, in the latest output, the position of the
// character that was typed with InputDigitAndRememberPosition.
func (f *AsYouTypeFormatter) GetRememberedPosition() int {
	if !f.ableToFormat {
		return f.originalPosition
	}
	withoutFormatting := f.accruedInputWithoutFormatting.String()
	accruedInputIndex, currentOutputIndex := 0, 0
	for accruedInputIndex < f.positionToRemember && currentOutputIndex < len(f.currentOutput) {
		if withoutFormatting[accruedInputIndex] == f.currentOutput[currentOutputIndex] {
			accruedInputIndex++
		}
		currentOutputIndex++
	}
	return currentOutputIndex
}

// appendNationalNumber glues the prefix (IDD, country code, national prefix)
// onto a formatted national part, adding a space after the national prefix
// when the chosen format would have done so.
func (f *AsYouTypeFormatter) appendNationalNumber(national string) string {
	prefix := f.prefixBeforeNationalNumber.String()
	if f.shouldAddSpaceAfterNationalPrefix && len(prefix) > 0 &&
		prefix[len(prefix)-1] != separatorBeforeNationalNumber {
		return prefix + string(separatorBeforeNationalNumber) + national
	}
	return prefix + national
}

// attemptToChooseFormattingPattern kicks in once minLeadingDigitsLength
// national digits are available.
func (f *AsYouTypeFormatter) attemptToChooseFormattingPattern() string {
	national := f.nationalNumber.String()
	if len(national) >= minLeadingDigitsLength {
		f.getAvailableFormats(national)
		if formattedNumber := f.attemptToFormatAccruedDigits(); formattedNumber != "" {
			return formattedNumber
		}
		if f.maybeCreateNewTemplate() {
			return f.inputAccruedNationalNumber()
		}
		return f.accruedInput.String()
	}
	return f.appendNationalNumber(national)
}

// inputAccruedNationalNumber replays the national digits into a freshly
// chosen template.
func (f *AsYouTypeFormatter) inputAccruedNationalNumber() string {
	national := f.nationalNumber.String()
	if len(national) == 0 {
		return f.prefixBeforeNationalNumber.String()
	}
	var tempNationalNumber string
	for i := 0; i < len(national); i++ {
		tempNationalNumber = f.inputDigitHelper(national[i])
	}
	if f.ableToFormat {
		return f.appendNationalNumber(tempNationalNumber)
	}
	return f.accruedInput.String()
}

// isNanpaNumberWithNationalPrefix: within calling code 1 a leading "1" is
// the national prefix unless it starts "10x"/"11x", which no NANPA area code
// does.
func (f *AsYouTypeFormatter) isNanpaNumberWithNationalPrefix() bool {
	if f.currentPlan.CountryCode != 1 {
		return false
	}
	national := f.nationalNumber.String()
	return len(national) >= 2 && national[0] == '1' && national[1] != '0' && national[1] != '1'
}

// removeNationalPrefixFromNationalNumber strips a leading national prefix
// from the accrued national number, remembering it as display prefix, and
// returns what was stripped.
func (f *AsYouTypeFormatter) removeNationalPrefixFromNationalNumber() string {
	national := f.nationalNumber.String()
	startOfNationalNumber := 0
	if f.isNanpaNumberWithNationalPrefix() {
		startOfNationalNumber = 1
		f.prefixBeforeNationalNumber.WriteByte('1')
		f.prefixBeforeNationalNumber.WriteByte(separatorBeforeNationalNumber)
		f.isCompleteNumber = true
	} else if pattern := f.currentPlan.NationalPrefixPattern(); pattern != "" {
		re := regexcache.MustCompile("^(?:" + pattern + ")")
		// Prefix patterns can match emptily; only a real match counts.
		if loc := re.FindStringIndex(national); loc != nil && loc[1] > 0 {
			f.isCompleteNumber = true
			startOfNationalNumber = loc[1]
			f.prefixBeforeNationalNumber.WriteString(national[:startOfNationalNumber])
		}
	}
	stripped := national[:startOfNationalNumber]
	f.nationalNumber.Reset()
	f.nationalNumber.WriteString(national[startOfNationalNumber:])
	return stripped
}

// attemptToExtractIdd looks for a plus sign or the region's IDD at the start
// of the normalised input and moves it into the display prefix.
func (f *AsYouTypeFormatter) attemptToExtractIdd() bool {
	accrued := f.accruedInputWithoutFormatting.String()
	re := regexcache.MustCompile(`^(?:\` + string(plusSign) + "|" + f.currentPlan.InternationalPrefix + ")")
	loc := re.FindStringIndex(accrued)
	if loc == nil {
		return false
	}
	f.isCompleteNumber = true
	startOfCountryCallingCode := loc[1]
	f.nationalNumber.Reset()
	f.nationalNumber.WriteString(accrued[startOfCountryCallingCode:])
	f.prefixBeforeNationalNumber.Reset()
	f.prefixBeforeNationalNumber.WriteString(accrued[:startOfCountryCallingCode])
	if accrued[0] != byte(plusSign) {
		f.prefixBeforeNationalNumber.WriteByte(separatorBeforeNationalNumber)
	}
	return true
}

// attemptToExtractCountryCallingCode peels the country code off the accrued
// national number and switches plans to match.
func (f *AsYouTypeFormatter) attemptToExtractCountryCallingCode() bool {
	if f.nationalNumber.Len() == 0 {
		return false
	}
	countryCode, rest := f.engine.extractCountryCode(f.nationalNumber.String())
	if countryCode == 0 {
		return false
	}
	f.nationalNumber.Reset()
	f.nationalNumber.WriteString(rest)
	newRegionCode := f.engine.regionCodeForCountryCode(countryCode)
	if newRegionCode == metadata.NonGeoRegionCode {
		f.currentPlan = f.engine.metadataForNonGeoRegion(countryCode)
	} else if newRegionCode != f.defaultCountry {
		f.currentPlan = f.planForRegion(newRegionCode)
	}
	f.prefixBeforeNationalNumber.WriteString(strconv.Itoa(countryCode))
	f.prefixBeforeNationalNumber.WriteByte(separatorBeforeNationalNumber)
	f.extractedNationalPrefix = ""
	return true
}

// normalizeAndAccrueDigitsAndPlusSign folds the typed rune to ASCII and
// appends it to the normalised buffers.
func (f *AsYouTypeFormatter) normalizeAndAccrueDigitsAndPlusSign(nextChar rune, rememberPosition bool) rune {
	var normalizedChar rune
	if strings.ContainsRune(plusChars, nextChar) {
		normalizedChar = plusSign
		f.accruedInputWithoutFormatting.WriteRune(normalizedChar)
	} else {
		d, _ := decimalDigit(nextChar)
		normalizedChar = rune('0' + d)
		f.accruedInputWithoutFormatting.WriteRune(normalizedChar)
		f.nationalNumber.WriteRune(normalizedChar)
	}
	if rememberPosition {
		f.positionToRemember = f.accruedInputWithoutFormatting.Len()
	}
	return normalizedChar
}

// inputDigitHelper drops one digit into the next placeholder slot of the
// template; when the template is full, formatting degrades to raw digits.
func (f *AsYouTypeFormatter) inputDigitHelper(nextChar byte) string {
	rest := f.formattingTemplate[f.lastMatchPosition:]
	if idx := strings.Index(rest, digitPlaceholder); idx >= 0 {
		pos := f.lastMatchPosition + idx
		f.formattingTemplate = f.formattingTemplate[:pos] + string(nextChar) + f.formattingTemplate[pos+len(digitPlaceholder):]
		f.lastMatchPosition = pos
		return f.formattingTemplate[:pos+1]
	}
	if len(f.possibleFormats) == 1 {
		// No more slots anywhere; give up on formatting this number.
		f.ableToFormat = false
	}
	f.currentFormattingPattern = ""
	return f.accruedInput.String()
}

// getAvailableFormats seeds possibleFormats with the plan's formats that can
// be rendered incrementally and agree with what we know about the national
// prefix so far.
func (f *AsYouTypeFormatter) getAvailableFormats(leadingDigits string) {
	isInternationalNumber := f.isCompleteNumber && f.extractedNationalPrefix == ""
	formatList := f.currentPlan.Formats
	if isInternationalNumber && len(f.currentPlan.IntlFormats) > 0 {
		formatList = f.currentPlan.IntlFormats
	}
	f.possibleFormats = f.possibleFormats[:0]
	for _, format := range formatList {
		if f.extractedNationalPrefix != "" &&
			formattingRuleHasFirstGroupOnly(format.NationalPrefixFormattingRule) &&
			!format.NationalPrefixOptionalWhenFormatting &&
			format.DomesticCarrierCodeFormattingRule == "" {
			// The user typed a national prefix this format has no slot for.
			continue
		}
		if f.extractedNationalPrefix == "" && !f.isCompleteNumber &&
			!formattingRuleHasFirstGroupOnly(format.NationalPrefixFormattingRule) &&
			!format.NationalPrefixOptionalWhenFormatting {
			// This format insists on a national prefix the user did not type.
			continue
		}
		if eligibleFormatPattern.MatchString(format.Format) {
			f.possibleFormats = append(f.possibleFormats, format)
		}
	}
	f.narrowDownPossibleFormats(leadingDigits)
}

// narrowDownPossibleFormats discards formats whose leading-digits pattern no
// longer matches what was typed, then orders survivors so the format with
// the longest (most specific) matching leading-digits pattern is tried
// first.
func (f *AsYouTypeFormatter) narrowDownPossibleFormats(leadingDigits string) {
	indexOfLeadingDigitsPattern := len(leadingDigits) - minLeadingDigitsLength
	kept := f.possibleFormats[:0]
	specificity := make(map[*metadata.NumberFormat]int)
	for _, format := range f.possibleFormats {
		if len(format.LeadingDigits) == 0 {
			// Applies to all numbers of the plan.
			kept = append(kept, format)
			continue
		}
		last := indexOfLeadingDigitsPattern
		if last > len(format.LeadingDigits)-1 {
			last = len(format.LeadingDigits) - 1
		}
		pattern := format.LeadingDigits[last]
		if regexcache.MustCompile("^(?:" + pattern + ")").MatchString(leadingDigits) {
			specificity[format] = len(pattern)
			kept = append(kept, format)
		}
	}
	sort.SliceStable(kept, func(i, j int) bool {
		return specificity[kept[i]] > specificity[kept[j]]
	})
	f.possibleFormats = kept
}

// maybeCreateNewTemplate walks the possible formats in specificity order and
// builds a digit template from the first one that can accommodate the
// accrued digits. Returns false when the current template already comes from
// the winning format.
func (f *AsYouTypeFormatter) maybeCreateNewTemplate() bool {
	i := 0
	for i < len(f.possibleFormats) {
		format := f.possibleFormats[i]
		if f.currentFormattingPattern == format.Pattern {
			return false
		}
		if f.createFormattingTemplate(format) {
			f.currentFormattingPattern = format.Pattern
			f.shouldAddSpaceAfterNationalPrefix = nationalPrefixSeparatorsPattern.MatchString(format.NationalPrefixFormattingRule)
			f.lastMatchPosition = 0
			return true
		}
		f.possibleFormats = append(f.possibleFormats[:i], f.possibleFormats[i+1:]...)
	}
	f.ableToFormat = false
	return false
}

func (f *AsYouTypeFormatter) createFormattingTemplate(format *metadata.NumberFormat) bool {
	template := f.getFormattingTemplate(format.Pattern, format.Format)
	if template == "" {
		return false
	}
	f.formattingTemplate = template
	return true
}

// getFormattingTemplate renders the pattern against a run of nines and swaps
// the nines for placeholder slots. A pattern with literal non-nine digits
// cannot produce a template and is skipped.
func (f *AsYouTypeFormatter) getFormattingTemplate(numberPattern, numberFormat string) string {
	re := regexcache.MustCompile(numberPattern)
	aPhoneNumber := re.FindString(longestPhoneNumber)
	if aPhoneNumber == "" || len(aPhoneNumber) < f.nationalNumber.Len() {
		return ""
	}
	template := re.ReplaceAllString(aPhoneNumber, goTemplate(numberFormat))
	return strings.ReplaceAll(template, "9", digitPlaceholder)
}
