package phonenumber

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/numplan/numplan/internal/regexcache"
)

// Engine-wide limits. The input cap bounds work done on pathological input
// before any pattern matching happens.
const (
	minLengthNSN         = 2
	maxLengthNSN         = 17
	maxLengthCountryCode = 3
	maxInputStringLength = 250
)

const (
	plusSign     = '+'
	fullwidthPlus = '＋'

	rfc3966ExtnPrefix     = ";ext="
	rfc3966Prefix         = "tel:"
	rfc3966PhoneContext   = ";phone-context="
	rfc3966ISDNSubaddress = ";isub="

	unknownRegion = "ZZ"
)

// Character classes shared by the viability, extension, and matcher
// patterns. validPunctuation deliberately includes 'x' (extension marker)
// and the various Unicode dashes and brackets seen in real-world numbers.
const (
	plusChars        = "+＋"
	starSign         = "*"
	validDigits      = `\p{Nd}`
	validAlpha       = "A-Za-z"
	validPunctuation = "-x\u2010-\u2015\u2212\u30FC\uFF0D-\uFF0F \u00A0\u00AD\u200B\u2060\u3000" +
		"()\uFF08\uFF09\uFF3B\uFF3D." + `\[\]/~` + "\u2053\u223C\uFF5E"
)

var (
	plusCharsPattern         = regexcache.MustCompile("^[" + plusChars + "]+")
	separatorPattern         = regexcache.MustCompile("[" + validPunctuation + "]+")
	capturingDigitPattern    = regexcache.MustCompile("(" + validDigits + ")")
	validStartCharPattern    = regexcache.MustCompile("[" + plusChars + "]|" + validDigits)
	secondNumberStartPattern = regexcache.MustCompile(`[\\/] *x`)
	unwantedEndCharPattern   = regexcache.MustCompile(`[^\p{L}\p{N}]+$`)
	validAlphaPhonePattern   = regexcache.MustCompileFull(`(?:.*?[A-Za-z]){3}.*`)
	nonDigitsPattern         = regexcache.MustCompile(`\D+`)
)

// validPhoneNumber is the single permissive shape check for viability:
// either a bare two-digit (or longer) run, or an optional plus followed by
// at least three digit groups with interleaved punctuation, optionally
// trailed by alpha characters.
var validPhoneNumber = validDigits + "{" + strconv.Itoa(minLengthNSN) + ",}" + "|" +
	"[" + plusChars + "]*(?:[" + validPunctuation + starSign + "]*" + validDigits + "){3,}" +
	"[" + validPunctuation + starSign + validAlpha + validDigits + "]*"

// Extension capture limits: the more explicit the label, the more digits we
// accept after it.
const (
	extLimitAfterExplicitLabel = 20
	extLimitAfterLikelyLabel   = 15
	extLimitAfterAmbiguousChar = 9
	extLimitWhenNotSure        = 6
)

func extnDigits(maxLength int) string {
	return "(" + validDigits + "{1," + strconv.Itoa(maxLength) + "})"
}

// extnPatterns builds the prioritised union of extension notations:
// RFC 3966 ";ext=", explicit labels ("ext", "extensión", "доб", "anexo"),
// ambiguous single chars ("x", "#", "~", "int"), and the American trailing
// "- 1234#" style. The parsing variant additionally accepts auto-dialling
// pause notation (",," and ";") and bare commas.
func extnPatterns(forParsing bool) string {
	possibleSeparators := "[  \\t,]*"
	possibleCharsAfterExtLabel := "[:\\.．]?[  \\t,-]*"
	optionalExtnSuffix := "#?"
	explicitExtLabels := "(?:e?xt(?:ensi(?:ó?|ó))?n?|ｅ?ｘｔｎ?|доб|anexo)"
	ambiguousExtLabels := "(?:[xｘ#＃~～]|int|ｉｎｔ)"
	ambiguousSeparator := "[- ]+"

	rfcExtn := rfc3966ExtnPrefix + extnDigits(extLimitAfterExplicitLabel)
	explicitExtn := possibleSeparators + explicitExtLabels + possibleCharsAfterExtLabel +
		extnDigits(extLimitAfterExplicitLabel) + optionalExtnSuffix
	ambiguousExtn := possibleSeparators + ambiguousExtLabels + possibleCharsAfterExtLabel +
		extnDigits(extLimitAfterAmbiguousChar) + optionalExtnSuffix
	americanStyleExtnWithSuffix := ambiguousSeparator + extnDigits(extLimitWhenNotSure) + "#"

	extensionPattern := rfcExtn + "|" + explicitExtn + "|" + ambiguousExtn + "|" + americanStyleExtnWithSuffix
	if forParsing {
		possibleSeparatorsNoComma := "[  \\t]*"
		autoDiallingAndExtLabelsFound := "(?:,{2}|;)"
		autoDiallingExtn := possibleSeparatorsNoComma + autoDiallingAndExtLabelsFound +
			possibleCharsAfterExtLabel + extnDigits(extLimitAfterLikelyLabel) + optionalExtnSuffix
		onlyCommasExtn := possibleSeparatorsNoComma + "(?:,)+" +
			possibleCharsAfterExtLabel + extnDigits(extLimitAfterAmbiguousChar) + optionalExtnSuffix
		return extensionPattern + "|" + autoDiallingExtn + "|" + onlyCommasExtn
	}
	return extensionPattern
}

var (
	extnPatternsForParsing  = extnPatterns(true)
	extnPatternsForMatching = extnPatterns(false)

	// extnPattern matches an extension notation at the very end of a number,
	// so only the last extension token in a string is honoured.
	extnPattern = regexcache.MustCompile("(?i)(?:" + extnPatternsForParsing + ")$")

	validPhoneNumberPattern = regexcache.MustCompile(
		"(?i)^(?:" + validPhoneNumber + ")(?:" + extnPatternsForParsing + ")?$")
)

// alphaMappings maps telephone-keypad letters to digits.
var alphaMappings = map[rune]rune{
	'A': '2', 'B': '2', 'C': '2',
	'D': '3', 'E': '3', 'F': '3',
	'G': '4', 'H': '4', 'I': '4',
	'J': '5', 'K': '5', 'L': '5',
	'M': '6', 'N': '6', 'O': '6',
	'P': '7', 'Q': '7', 'R': '7', 'S': '7',
	'T': '8', 'U': '8', 'V': '8',
	'W': '9', 'X': '9', 'Y': '9', 'Z': '9',
}

// decimalDigit returns the value of any Unicode decimal digit rune.
// Nd code points are assigned in contiguous 0-9 runs, so the value is the
// offset from the start of the run.
func decimalDigit(r rune) (int, bool) {
	if r >= '0' && r <= '9' {
		return int(r - '0'), true
	}
	if !unicode.Is(unicode.Nd, r) {
		return 0, false
	}
	value := 0
	for value < 9 && unicode.Is(unicode.Nd, r-rune(value)-1) {
		value++
	}
	return value, true
}

// Normalize converts a number candidate to pure ASCII digits: Unicode digits
// of any script are folded, and, when the input looks like a vanity number
// (three or more letters), keypad letters are converted too. Everything else
// is dropped.
func Normalize(number string) string {
	if validAlphaPhonePattern.MatchString(number) {
		return normalizeHelper(number, true, true)
	}
	return NormalizeDigitsOnly(number)
}

// NormalizeDigitsOnly keeps only digits, folding non-ASCII digit scripts.
func NormalizeDigitsOnly(number string) string {
	return normalizeDigits(number, false)
}

// NormalizeDiallableCharsOnly keeps digits and the characters a keypad can
// dial: '+', '*', '#', ';' and ','.
func NormalizeDiallableCharsOnly(number string) string {
	var sb strings.Builder
	for _, r := range number {
		if d, ok := decimalDigit(r); ok {
			sb.WriteByte(byte('0' + d))
			continue
		}
		switch r {
		case plusSign, fullwidthPlus:
			sb.WriteByte('+')
		case '*', '#', ';', ',':
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

// normalizeDigits folds digits to ASCII; when keepNonDigits is set all other
// runes pass through unchanged.
func normalizeDigits(number string, keepNonDigits bool) string {
	var sb strings.Builder
	sb.Grow(len(number))
	for _, r := range number {
		if d, ok := decimalDigit(r); ok {
			sb.WriteByte(byte('0' + d))
		} else if keepNonDigits {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

// normalizeHelper folds digits and optionally keypad letters. Runes that map
// to nothing are dropped when removeNonMatches is set, kept otherwise.
func normalizeHelper(number string, foldAlpha, removeNonMatches bool) string {
	var sb strings.Builder
	for _, r := range number {
		if d, ok := decimalDigit(r); ok {
			sb.WriteByte(byte('0' + d))
			continue
		}
		if foldAlpha {
			if mapped, ok := alphaMappings[unicode.ToUpper(r)]; ok {
				sb.WriteRune(mapped)
				continue
			}
		}
		if !removeNonMatches {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

// IsViablePhoneNumber performs a cheap shape check on raw, non-normalised
// text: at least two characters, and matching the permissive phone-number
// pattern (which itself requires three digit groups before any alpha run).
func IsViablePhoneNumber(number string) bool {
	if len(number) < minLengthNSN {
		return false
	}
	return validPhoneNumberPattern.MatchString(number)
}

// extractPossibleNumber trims a candidate down to its number-like core:
// leading characters that can not start a number and trailing characters
// that can not end one are removed, and a second number introduced with
// "/ x" (an extension on a different line of text) is cut off.
// "Tel:+800-345-600" becomes "+800-345-600".
func extractPossibleNumber(number string) string {
	start := validStartCharPattern.FindStringIndex(number)
	if start == nil {
		return ""
	}
	number = number[start[0]:]
	if loc := unwantedEndCharPattern.FindStringIndex(number); loc != nil {
		number = number[:loc[0]]
	}
	if loc := secondNumberStartPattern.FindStringIndex(number); loc != nil {
		number = number[:loc[0]]
	}
	return number
}
