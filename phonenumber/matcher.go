package phonenumber

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/numplan/numplan/internal/regexcache"
	"github.com/numplan/numplan/metadata"
)

// Leniency grades how much scrutiny a matched candidate gets before it is
// reported. Each level is a strict subset of the one before it.
type Leniency int

const (
	// LeniencyPossible accepts anything that is a possible number.
	LeniencyPossible Leniency = iota
	// LeniencyValid requires a valid number written with sensible
	// punctuation in sensible context.
	LeniencyValid
	// LeniencyStrictGrouping additionally requires the digit groups to
	// follow a grouping the region actually formats with.
	LeniencyStrictGrouping
	// LeniencyExactGrouping requires the grouping to reproduce a national
	// format exactly.
	LeniencyExactGrouping
)

// String returns the wire-stable name of the level.
func (l Leniency) String() string {
	switch l {
	case LeniencyPossible:
		return "POSSIBLE"
	case LeniencyValid:
		return "VALID"
	case LeniencyStrictGrouping:
		return "STRICT_GROUPING"
	default:
		return "EXACT_GROUPING"
	}
}

// Match is one phone number found in free text. Start and End are byte
// offsets into the searched text; Raw is text[Start:End].
type Match struct {
	Start  int
	End    int
	Raw    string
	Number *PhoneNumber
}

// Candidate-extraction patterns. Bracket pairs, punctuation runs, and digit
// blocks are bounded so a pathological page of digits cannot produce an
// unbounded candidate.
const (
	openingParens = `(\[\x{FF08}\x{FF3B}`
	closingParens = `)\]\x{FF09}\x{FF3D}`
	nonParens     = `[^` + openingParens + closingParens + `]`
	leadClass     = `[` + openingParens + plusChars + `]`
)

var (
	// matchingBrackets rejects candidates whose brackets do not pair up,
	// e.g. the "80.585 [79.964" of a ratings table.
	matchingBrackets = regexcache.MustCompileFull(
		`(?:[` + openingParens + `])?` +
			`(?:` + nonParens + `+[` + closingParens + `])?` +
			nonParens + `+` +
			`(?:[` + openingParens + `]` + nonParens + `+[` + closingParens + `]){0,3}` +
			nonParens + `*`)

	leadClassPattern = regexcache.MustCompile(`^` + leadClass)

	candidatePattern = regexcache.MustCompile(
		`(?i)(?:` + leadClass + `[` + validPunctuation + `]{0,4}){0,2}` +
			validDigits + `{1,20}` +
			`(?:[` + validPunctuation + `]{0,4}` + validDigits + `{1,20}){0,20}` +
			`(?:` + extnPatternsForMatching + `)?`)

	// slashSeparatedDates skips date-like runs: 12/10/2019, 31/8/99.
	slashSeparatedDates = regexcache.MustCompile(
		`(?:(?:[0-3]?\d/[01]?\d)|(?:[01]?\d/[0-3]?\d))/(?:[12]\d)?\d{2}`)

	// timeStamps skips "2012-01-02 08" when ":30" follows.
	timeStamps       = regexcache.MustCompile(`[12]\d{3}[-/]?[01]\d[-/]?[0-3]\d +[0-2]\d$`)
	timeStampsSuffix = regexcache.MustCompile(`^:[0-5]\d`)

	// pubPages skips publication page ranges: "Computing Surveys 24 (1992) 293-318."
	pubPages = regexcache.MustCompile(`\d{1,5}-+\d{1,5}\s{0,4}\(\d{1,4}`)

	// innerMatchPatterns peel a plausible number out of a too-long
	// candidate: after a slash, inside parentheses, after a spaced dash, a
	// Unicode dash, an ellipsis, or plain whitespace. Group 1 is the part to
	// retry.
	innerMatchPatterns = []*regexp.Regexp{
		regexcache.MustCompile(`/+(.*)`),
		regexcache.MustCompile(`(\([^(]*)`),
		regexcache.MustCompile(`(?:\p{Z}-|-\p{Z})\p{Z}*(.+)`),
		regexcache.MustCompile(`[\x{2012}-\x{2015}\x{FF0D}]\p{Z}*(.+)`),
		regexcache.MustCompile(`\.+\p{Z}*([^.]+)`),
		regexcache.MustCompile(`\p{Z}+(\P{Z}+)`),
	}
)

const defaultMaxTries = 65535

// Matcher scans text lazily for phone numbers. Obtain one with
// Engine.NewMatcher and pull matches with Next/Match; it is not safe for
// concurrent use.
type Matcher struct {
	engine   *Engine
	text     string
	region   string
	leniency Leniency
	maxTries int

	searchIndex int
	current     *Match
	done        bool
}

// NewMatcher returns a matcher over text, parsing candidates against
// defaultRegion. maxTries bounds the number of candidates inspected; pass 0
// for the default.
func (e *Engine) NewMatcher(text, defaultRegion string, leniency Leniency, maxTries int) *Matcher {
	if maxTries <= 0 {
		maxTries = defaultMaxTries
	}
	return &Matcher{
		engine:   e,
		text:     text,
		region:   defaultRegion,
		leniency: leniency,
		maxTries: maxTries,
	}
}

// FindNumbers returns every match in text, eagerly.
func (e *Engine) FindNumbers(text, defaultRegion string, leniency Leniency, maxTries int) []Match {
	m := e.NewMatcher(text, defaultRegion, leniency, maxTries)
	var out []Match
	for m.Next() {
		out = append(out, *m.Match())
	}
	return out
}

// Next advances to the next match, reporting whether one was found.
func (m *Matcher) Next() bool {
	if m.done {
		return false
	}
	m.current = m.find()
	if m.current == nil {
		m.done = true
		return false
	}
	m.searchIndex = m.current.End
	return true
}

// Match returns the match found by the last successful Next.
func (m *Matcher) Match() *Match { return m.current }

func (m *Matcher) find() *Match {
	for m.maxTries > 0 && m.searchIndex < len(m.text) {
		loc := candidatePattern.FindStringIndex(m.text[m.searchIndex:])
		if loc == nil {
			return nil
		}
		start := m.searchIndex + loc[0]
		candidate := m.text[start : m.searchIndex+loc[1]]
		// "(530) 583-6985 x302/x2303": the second extension belongs to a
		// second number, cut the candidate there.
		if cut := secondNumberStartPattern.FindStringIndex(candidate); cut != nil {
			candidate = candidate[:cut[0]]
		}
		if match := m.extractMatch(candidate, start); match != nil {
			return match
		}
		m.searchIndex = start + len(candidate)
		m.maxTries--
	}
	return nil
}

func (m *Matcher) extractMatch(candidate string, offset int) *Match {
	if slashSeparatedDates.MatchString(candidate) {
		return nil
	}
	if timeStamps.MatchString(candidate) {
		following := m.text[offset+len(candidate):]
		if timeStampsSuffix.MatchString(following) {
			return nil
		}
	}
	if match := m.parseAndVerify(candidate, offset); match != nil {
		return match
	}
	return m.extractInnerMatch(candidate, offset)
}

// extractInnerMatch retries progressively smaller slices of a candidate that
// failed as a whole, e.g. the number after a slash-joined pair.
func (m *Matcher) extractInnerMatch(candidate string, offset int) *Match {
	for _, splitter := range innerMatchPatterns {
		isFirstMatch := true
		searchFrom := 0
		for m.maxTries > 0 && searchFrom < len(candidate) {
			loc := splitter.FindStringSubmatchIndex(candidate[searchFrom:])
			if loc == nil {
				break
			}
			matchStart := searchFrom + loc[0]
			groupStart := searchFrom + loc[2]
			groupEnd := searchFrom + loc[3]
			if isFirstMatch {
				// The text before the first split point may itself be a number.
				group := trimUnwantedEnd(candidate[:matchStart])
				if match := m.parseAndVerify(group, offset); match != nil {
					return match
				}
				m.maxTries--
				isFirstMatch = false
			}
			group := trimUnwantedEnd(candidate[groupStart:groupEnd])
			if match := m.parseAndVerify(group, offset+groupStart); match != nil {
				return match
			}
			m.maxTries--
			searchFrom = groupEnd
		}
	}
	return nil
}

func trimUnwantedEnd(s string) string {
	if loc := unwantedEndCharPattern.FindStringIndex(s); loc != nil {
		return s[:loc[0]]
	}
	return s
}

func (m *Matcher) parseAndVerify(candidate string, offset int) *Match {
	if candidate == "" {
		return nil
	}
	if !matchingBrackets.MatchString(candidate) || pubPages.MatchString(candidate) {
		return nil
	}
	if m.leniency >= LeniencyValid {
		// Reject numbers embedded in words, prices, or percentages.
		if offset > 0 && !leadClassPattern.MatchString(candidate) {
			if prev := lastRune(m.text[:offset]); isInvalidContextRune(prev) {
				return nil
			}
		}
		if after := offset + len(candidate); after < len(m.text) {
			if next := firstRune(m.text[after:]); isInvalidContextRune(next) {
				return nil
			}
		}
	}
	number, err := m.engine.ParseAndKeepRawInput(candidate, m.region)
	if err != nil {
		return nil
	}
	if !m.verify(number, candidate) {
		return nil
	}
	number.CountryCodeSource = CountryCodeSourceUnspecified
	number.RawInput = ""
	number.PreferredDomesticCarrierCode = ""
	return &Match{Start: offset, End: offset + len(candidate), Raw: candidate, Number: number}
}

func firstRune(s string) rune {
	for _, r := range s {
		return r
	}
	return 0
}

func lastRune(s string) rune {
	var last rune
	for _, r := range s {
		last = r
	}
	return last
}

func isInvalidContextRune(r rune) bool {
	return r == '%' || unicode.Is(unicode.Sc, r) || unicode.IsLetter(r)
}

func (m *Matcher) verify(number *PhoneNumber, candidate string) bool {
	switch m.leniency {
	case LeniencyPossible:
		return m.engine.IsPossibleNumber(number)
	case LeniencyValid:
		return m.engine.IsValidNumber(number) &&
			m.containsOnlyValidXChars(number, candidate) &&
			m.isNationalPrefixPresentIfRequired(number)
	case LeniencyStrictGrouping:
		return m.verifyGrouping(number, candidate, allNumberGroupsRemainGrouped)
	default:
		return m.verifyGrouping(number, candidate, allNumberGroupsAreExactlyPresent)
	}
}

type groupChecker func(e *Engine, number *PhoneNumber, normalizedCandidate string, groups []string) bool

func (m *Matcher) verifyGrouping(number *PhoneNumber, candidate string, checker groupChecker) bool {
	if !m.engine.IsValidNumber(number) ||
		!m.containsOnlyValidXChars(number, candidate) ||
		containsMoreThanOneSlashInNationalNumber(number, candidate) ||
		!m.isNationalPrefixPresentIfRequired(number) {
		return false
	}
	return m.checkNumberGroupingIsValid(number, candidate, checker)
}

// containsOnlyValidXChars: an 'x' in the candidate must mark an extension or
// (doubled) a carrier-style second number, never stray noise.
func (m *Matcher) containsOnlyValidXChars(number *PhoneNumber, candidate string) bool {
	for index := 0; index < len(candidate)-1; index++ {
		switch candidate[index] {
		case 'x', 'X':
			next := candidate[index+1]
			if next == 'x' || next == 'X' {
				index++
				if m.engine.IsNumberMatchWithOneString(number, candidate[index:]) != MatchNSN {
					return false
				}
			} else if NormalizeDigitsOnly(candidate[index:]) != number.Extension {
				return false
			}
		}
	}
	return true
}

// containsMoreThanOneSlashInNationalNumber rejects "07/31/2020"-ish
// groupings, tolerating one slash after an explicit country code ("+7/921...").
func containsMoreThanOneSlashInNationalNumber(number *PhoneNumber, candidate string) bool {
	first := strings.IndexByte(candidate, '/')
	if first < 0 {
		return false
	}
	second := strings.IndexByte(candidate[first+1:], '/')
	if second < 0 {
		return false
	}
	second += first + 1
	hasCountryCode := number.CountryCodeSource == CountryCodeSourceFromNumberWithPlusSign ||
		number.CountryCodeSource == CountryCodeSourceFromNumberWithoutPlusSign
	if hasCountryCode && NormalizeDigitsOnly(candidate[:first]) == strconv.Itoa(number.CountryCode) {
		return strings.Contains(candidate[second+1:], "/")
	}
	return true
}

// isNationalPrefixPresentIfRequired: a number written nationally must carry
// the national prefix when the region's format for it demands one.
func (m *Matcher) isNationalPrefixPresentIfRequired(number *PhoneNumber) bool {
	if number.CountryCodeSource != CountryCodeSourceFromDefaultCountry {
		return true
	}
	region := m.engine.regionCodeForCountryCode(number.CountryCode)
	plan := m.engine.metadataForRegion(region)
	if plan == nil {
		return true
	}
	nsn := nationalSignificantNumber(number)
	format := chooseFormattingPatternForNumber(plan.Formats, nsn)
	if format == nil || format.NationalPrefixFormattingRule == "" {
		return true
	}
	if format.NationalPrefixOptionalWhenFormatting {
		return true
	}
	if formattingRuleHasFirstGroupOnly(format.NationalPrefixFormattingRule) {
		return true
	}
	rawInput := NormalizeDigitsOnly(number.RawInput)
	return m.engine.maybeStripNationalPrefixAndCarrierCode(&rawInput, plan, nil)
}

func (m *Matcher) checkNumberGroupingIsValid(number *PhoneNumber, candidate string, checker groupChecker) bool {
	normalizedCandidate := normalizeDigits(candidate, true)
	groups := m.getNationalNumberGroups(number, nil)
	if checker(m.engine, number, normalizedCandidate, groups) {
		return true
	}
	// Try the region's alternate formats before giving up on the grouping.
	alternates, err := m.engine.repo.AlternateFormats(number.CountryCode)
	if err != nil || alternates == nil {
		return false
	}
	nsn := nationalSignificantNumber(number)
	for _, alternate := range alternates.Formats {
		if len(alternate.LeadingDigits) > 0 {
			if !regexcache.MustCompile("^(?:" + alternate.LeadingDigits[0] + ")").MatchString(nsn) {
				continue
			}
		}
		groups = m.getNationalNumberGroups(number, alternate)
		if checker(m.engine, number, normalizedCandidate, groups) {
			return true
		}
	}
	return false
}

// getNationalNumberGroups splits the number's formatted national part into
// its digit groups, using RFC 3966 output (groups joined by "-").
func (m *Matcher) getNationalNumberGroups(number *PhoneNumber, formattingPattern *metadata.NumberFormat) []string {
	if formattingPattern != nil {
		nsn := nationalSignificantNumber(number)
		return strings.Split(formatNsnUsingPattern(nsn, formattingPattern, FormatRFC3966, ""), "-")
	}
	rfc3966Format := m.engine.Format(number, FormatRFC3966)
	endIndex := strings.IndexByte(rfc3966Format, ';')
	if endIndex < 0 {
		endIndex = len(rfc3966Format)
	}
	startIndex := strings.IndexByte(rfc3966Format, '-') + 1
	return strings.Split(rfc3966Format[startIndex:endIndex], "-")
}

// allNumberGroupsRemainGrouped accepts a candidate whose separators may be
// missing but never cut through a formatted group.
func allNumberGroupsRemainGrouped(e *Engine, number *PhoneNumber, normalizedCandidate string, formattedNumberGroups []string) bool {
	fromIndex := 0
	if number.CountryCodeSource != CountryCodeSourceFromDefaultCountry {
		countryCode := strconv.Itoa(number.CountryCode)
		idx := strings.Index(normalizedCandidate, countryCode)
		if idx < 0 {
			return false
		}
		fromIndex = idx + len(countryCode)
	}
	for i, group := range formattedNumberGroups {
		idx := strings.Index(normalizedCandidate[fromIndex:], group)
		if idx < 0 {
			return false
		}
		fromIndex += idx + len(group)
		if i == 0 && fromIndex < len(normalizedCandidate) {
			// A national prefix glued to the first group is fine as long as
			// the rest reads as the plain NSN.
			region := e.regionCodeForCountryCode(number.CountryCode)
			if e.GetNddPrefixForRegion(region, true) != "" &&
				normalizedCandidate[fromIndex] >= '0' && normalizedCandidate[fromIndex] <= '9' {
				nsn := nationalSignificantNumber(number)
				return strings.HasPrefix(normalizedCandidate[fromIndex-len(group):], nsn)
			}
		}
	}
	return strings.Contains(normalizedCandidate[fromIndex:], number.Extension)
}

// allNumberGroupsAreExactlyPresent accepts only a candidate whose trailing
// digit groups equal the formatted groups one for one.
func allNumberGroupsAreExactlyPresent(e *Engine, number *PhoneNumber, normalizedCandidate string, formattedNumberGroups []string) bool {
	candidateGroups := splitNonDigits(normalizedCandidate)
	candidateNumberGroupIndex := len(candidateGroups) - 1
	if number.Extension != "" {
		candidateNumberGroupIndex = len(candidateGroups) - 2
	}
	if candidateNumberGroupIndex < 0 {
		return false
	}
	if len(candidateGroups) == 1 ||
		strings.Contains(candidateGroups[candidateNumberGroupIndex], nationalSignificantNumber(number)) {
		return true
	}
	for formattedIndex := len(formattedNumberGroups) - 1; formattedIndex > 0 && candidateNumberGroupIndex >= 0; formattedIndex-- {
		if candidateGroups[candidateNumberGroupIndex] != formattedNumberGroups[formattedIndex] {
			return false
		}
		candidateNumberGroupIndex--
	}
	return candidateNumberGroupIndex >= 0 &&
		strings.HasSuffix(candidateGroups[candidateNumberGroupIndex], formattedNumberGroups[0])
}

func splitNonDigits(s string) []string {
	var out []string
	for _, part := range nonDigitsPattern.Split(s, -1) {
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
