// Package metadata defines the numbering-plan record format consumed by the
// phone-number engine, along with the repository that loads and caches plans.
//
// A NumberingPlan is immutable after load. The engine never mutates plans and
// plans are safe to share between goroutines.
package metadata

// NonGeoRegionCode is the pseudo-region used for country calling codes that
// are not tied to a single territory (e.g. +800 universal freephone).
const NonGeoRegionCode = "001"

// NumberFormat is a single formatting rule within a numbering plan.
//
// Pattern must match the entire national significant number for the rule to
// apply; LeadingDigits is an ordered list of prefix patterns used as a fast
// pre-filter, each entry more refined than the one before it. Format is a
// template with $1..$9 group placeholders.
type NumberFormat struct {
	Pattern       string
	LeadingDigits []string
	Format        string

	// NationalPrefixFormattingRule is the resolved rule applied to the first
	// group when formatting nationally, e.g. "0$1" or "($1)". Empty when the
	// national prefix is not written in this format.
	NationalPrefixFormattingRule string

	// NationalPrefixOptionalWhenFormatting marks formats where the national
	// prefix may be omitted without the number becoming ambiguous.
	NationalPrefixOptionalWhenFormatting bool

	// DomesticCarrierCodeFormattingRule renders a carrier-selection code in
	// front of the number, with $CC for the code and $1 for the first group.
	DomesticCarrierCodeFormattingRule string
}

// NumberDesc describes one number type within a plan: the national-number
// pattern plus the set of lengths a number of this type may have.
//
// A nil NumberDesc on a plan means the type does not exist in that region.
// Empty PossibleLengths mean the lengths are inherited from the general
// description.
type NumberDesc struct {
	Pattern                  string
	PossibleLengths          []int
	PossibleLengthsLocalOnly []int
}

// NumberingPlan is the per-region (or per non-geographic country code)
// numbering-plan record.
type NumberingPlan struct {
	// ID is the CLDR region code, or "001" for non-geographic plans.
	ID          string
	CountryCode int

	// InternationalPrefix is the pattern for the IDD dialled before an
	// international number from this region, e.g. "00" or "0(?:0|11)".
	InternationalPrefix          string
	PreferredInternationalPrefix string

	// NationalPrefix is the prefix written before a national number in
	// domestic notation (often "0"). NationalPrefixForParsing is the pattern
	// stripped during parsing; it may capture a carrier-selection code and
	// may be paired with NationalPrefixTransformRule, a template that
	// re-inserts captured groups into the stripped remainder.
	NationalPrefix              string
	NationalPrefixForParsing    string
	NationalPrefixTransformRule string

	PreferredExtnPrefix string

	GeneralDesc    *NumberDesc
	FixedLine      *NumberDesc
	Mobile         *NumberDesc
	TollFree       *NumberDesc
	PremiumRate    *NumberDesc
	SharedCost     *NumberDesc
	PersonalNumber *NumberDesc
	VOIP           *NumberDesc
	Pager          *NumberDesc
	UAN            *NumberDesc
	Voicemail      *NumberDesc

	// Formats are tried in order when rendering a national significant
	// number. IntlFormats, when non-empty, override Formats for
	// international and RFC 3966 output.
	Formats     []*NumberFormat
	IntlFormats []*NumberFormat

	// MainCountryForCode marks the region that owns formatting rules for a
	// country calling code shared by several regions (e.g. US for +1).
	MainCountryForCode bool

	// LeadingDigits disambiguates regions sharing a calling code: a number
	// belongs to this region when its NSN starts with a match.
	LeadingDigits string
}

// NationalPrefixPattern resolves the prefix pattern used during parsing,
// falling back to the plain national prefix when no dedicated parsing
// pattern is set.
func (p *NumberingPlan) NationalPrefixPattern() string {
	if p.NationalPrefixForParsing != "" {
		return p.NationalPrefixForParsing
	}
	return p.NationalPrefix
}

// HasNationalPrefix reports whether domestic notation uses a national prefix.
func (p *NumberingPlan) HasNationalPrefix() bool {
	return p.NationalPrefix != ""
}
