// Package plans ships a compiled-in set of numbering plans in the runtime
// record format. The set is curated rather than exhaustive: it covers the
// major mechanisms a plan can use (shared calling codes, national-prefix
// transform rules, carrier-selection codes, leading-zero regions,
// non-geographic codes) for a dozen regions.
//
// Plans are produced offline from the upstream numbering-plan descriptions;
// this package is the checked-in result, not the compiler.
package plans

import "github.com/numplan/numplan/metadata"

// source implements metadata.Source over the checked-in plan set.
type source struct{}

// Source returns the built-in numbering-plan source.
func Source() metadata.Source { return source{} }

func (source) Regions() []string {
	regions := make([]string, 0, len(regionPlans))
	for region := range regionPlans {
		regions = append(regions, region)
	}
	return regions
}

func (source) CountryCodeToRegions() map[int][]string {
	out := make(map[int][]string, len(countryCodeToRegions))
	for cc, regions := range countryCodeToRegions {
		out[cc] = append([]string(nil), regions...)
	}
	return out
}

func (source) LoadRegion(region string) (*metadata.NumberingPlan, error) {
	return regionPlans[region], nil
}

func (source) LoadNonGeo(countryCode int) (*metadata.NumberingPlan, error) {
	return nonGeoPlans[countryCode], nil
}

func (source) LoadAlternateFormats(countryCode int) (*metadata.NumberingPlan, error) {
	return alternateFormats[countryCode], nil
}

// countryCodeToRegions lists regions per calling code, main country first.
var countryCodeToRegions = map[int][]string{
	1:   {"US", "BS"},
	39:  {"IT"},
	44:  {"GB"},
	49:  {"DE"},
	52:  {"MX"},
	54:  {"AR"},
	55:  {"BR"},
	61:  {"AU"},
	64:  {"NZ"},
	65:  {"SG"},
	81:  {"JP"},
	800: {metadata.NonGeoRegionCode},
	979: {metadata.NonGeoRegionCode},
}

func desc(pattern string, lengths ...int) *metadata.NumberDesc {
	return &metadata.NumberDesc{Pattern: pattern, PossibleLengths: lengths}
}

var regionPlans = map[string]*metadata.NumberingPlan{
	"US": {
		ID:                  "US",
		CountryCode:         1,
		InternationalPrefix: "011",
		NationalPrefix:      "1",
		MainCountryForCode:  true,
		GeneralDesc: &metadata.NumberDesc{
			Pattern:                  `[13-689]\d{9}|2[0-35-9]\d{8}`,
			PossibleLengths:          []int{10},
			PossibleLengthsLocalOnly: []int{7},
		},
		FixedLine: &metadata.NumberDesc{
			Pattern:                  `[13-689]\d{9}|2[0-35-9]\d{8}`,
			PossibleLengths:          []int{10},
			PossibleLengthsLocalOnly: []int{7},
		},
		Mobile: &metadata.NumberDesc{
			Pattern:                  `[13-689]\d{9}|2[0-35-9]\d{8}`,
			PossibleLengths:          []int{10},
			PossibleLengthsLocalOnly: []int{7},
		},
		TollFree:    desc(`8(?:00|66|77|88)\d{7}`, 10),
		PremiumRate: desc(`900\d{7}`, 10),
		PersonalNumber: desc(`500\d{7}`, 10),
		Formats: []*metadata.NumberFormat{
			{Pattern: `(\d{3})(\d{4})`, Format: `$1 $2`},
			{Pattern: `(\d{3})(\d{3})(\d{4})`, Format: `$1 $2 $3`},
		},
	},
	"BS": {
		ID:                  "BS",
		CountryCode:         1,
		InternationalPrefix: "011",
		NationalPrefix:      "1",
		LeadingDigits:       "242",
		GeneralDesc: &metadata.NumberDesc{
			Pattern:                  `(?:242|8(?:00|66|77|88)|900)\d{7}`,
			PossibleLengths:          []int{10},
			PossibleLengthsLocalOnly: []int{7},
		},
		FixedLine: &metadata.NumberDesc{
			Pattern:                  `242(?:3(?:02|[236][1-9]|4[0-24-9]|5[0-68]|7[3-57]|9[2-5])|4(?:2[237]|51|64|77)|502|636|702)\d{4}`,
			PossibleLengths:          []int{10},
			PossibleLengthsLocalOnly: []int{7},
		},
		Mobile:   desc(`242(?:357|359|457|557)\d{4}`, 10),
		TollFree: desc(`8(?:00|66|77|88)\d{7}`, 10),
	},
	"GB": {
		ID:                  "GB",
		CountryCode:         44,
		InternationalPrefix: "00",
		NationalPrefix:      "0",
		GeneralDesc:         desc(`\d{10}`, 10),
		FixedLine:           desc(`[1-6]\d{9}`, 10),
		Mobile:              desc(`7[1-57-9]\d{8}`, 10),
		TollFree:            desc(`80\d{8}`, 10),
		PremiumRate:         desc(`9[018]\d{8}`, 10),
		SharedCost:          desc(`8(?:4[2-5]|7[0-3])\d{7}`, 10),
		VOIP:                desc(`56\d{8}`, 10),
		Pager:               desc(`76\d{8}`, 10),
		PersonalNumber:      desc(`70\d{8}`, 10),
		UAN:                 desc(`55\d{8}`, 10),
		Formats: []*metadata.NumberFormat{
			{
				Pattern:                      `(\d{2})(\d{4})(\d{4})`,
				LeadingDigits:                []string{`2|5[56]|7[06]`},
				Format:                       `$1 $2 $3`,
				NationalPrefixFormattingRule: `(0$1)`,
			},
			{
				Pattern:                      `(\d{4})(\d{3})(\d{3})`,
				LeadingDigits:                []string{`1|7[1-57-9]|8|9`},
				Format:                       `$1 $2 $3`,
				NationalPrefixFormattingRule: `(0$1)`,
			},
		},
	},
	"DE": {
		ID:                  "DE",
		CountryCode:         49,
		InternationalPrefix: "00",
		NationalPrefix:      "0",
		GeneralDesc:         desc(`[1-9]\d{3,10}`, 4, 5, 6, 7, 8, 9, 10, 11),
		FixedLine: desc(
			`(?:[24-6]\d{2}|3[03-9]\d|[789](?:0[2-9]|[1-9]\d))\d{1,8}`,
			4, 5, 6, 7, 8, 9, 10, 11,
		),
		Mobile:      desc(`1(?:5\d{9}|7\d{8})`, 10, 11),
		TollFree:    desc(`800\d{7}`, 10),
		PremiumRate: desc(`900([135]\d{6}|9\d{7})`, 10, 11),
		Formats: []*metadata.NumberFormat{
			{
				Pattern:                      `(\d{2})(\d{3,11})`,
				LeadingDigits:                []string{`3[02]|40|[68]9`},
				Format:                       `$1/$2`,
				NationalPrefixFormattingRule: `0$1`,
			},
			{
				Pattern:                      `(\d{3})(\d{3,11})`,
				LeadingDigits:                []string{`2(?:\d1|0[2389]|1[24]|28|34)|3(?:[3-9][15]|40)|[4-8][1-9]1|9(?:06|[1-9]1)`},
				Format:                       `$1/$2`,
				NationalPrefixFormattingRule: `0$1`,
			},
			{
				Pattern:                      `(\d{3})(\d{7,8})`,
				LeadingDigits:                []string{`1[5-7]`},
				Format:                       `$1 $2`,
				NationalPrefixFormattingRule: `0$1`,
			},
			{
				Pattern:                      `(\d{3})(\d)(\d{4,10})`,
				LeadingDigits:                []string{`800|900`},
				Format:                       `$1 $2 $3`,
				NationalPrefixFormattingRule: `0$1`,
			},
		},
	},
	"IT": {
		ID:                  "IT",
		CountryCode:         39,
		InternationalPrefix: "00",
		GeneralDesc:         desc(`0\d{6,10}|3\d{8,9}|80\d{6}`, 7, 8, 9, 10, 11),
		FixedLine:           desc(`0\d{6,10}`, 7, 8, 9, 10, 11),
		Mobile:              desc(`3\d{8,9}`, 9, 10),
		TollFree:            desc(`80(?:0\d{6}|3\d{3})`, 7, 9),
		Formats: []*metadata.NumberFormat{
			{Pattern: `(\d{2})(\d{3,4})(\d{4})`, LeadingDigits: []string{`0[26]`}, Format: `$1 $2 $3`},
			{Pattern: `(\d{3})(\d{3,4})(\d{3,4})`, LeadingDigits: []string{`0[13-57-9]`}, Format: `$1 $2 $3`},
			{Pattern: `(\d{3})(\d{3})(\d{3,4})`, LeadingDigits: []string{`3`}, Format: `$1 $2 $3`},
			{Pattern: `(\d{3})(\d{4})`, LeadingDigits: []string{`80`}, Format: `$1 $2`},
		},
	},
	"JP": {
		ID:                  "JP",
		CountryCode:         81,
		InternationalPrefix: "010",
		NationalPrefix:      "0",
		GeneralDesc:         desc(`[1-9]\d{8,9}`, 9, 10),
		FixedLine:           desc(`[1-6]\d{8}`, 9),
		Mobile:              desc(`[7-9]0\d{8}`, 10),
		Formats: []*metadata.NumberFormat{
			{
				Pattern:                      `(\d{2})(\d{4})(\d{4})`,
				LeadingDigits:                []string{`[57-9]0`},
				Format:                       `$1-$2-$3`,
				NationalPrefixFormattingRule: `0$1`,
			},
			{
				Pattern:                      `(\d)(\d{4})(\d{4})`,
				LeadingDigits:                []string{`[1-6]`},
				Format:                       `$1-$2-$3`,
				NationalPrefixFormattingRule: `0$1`,
			},
		},
	},
	"AU": {
		ID:                  "AU",
		CountryCode:         61,
		InternationalPrefix: `001[12]`,
		PreferredInternationalPrefix: "0011",
		NationalPrefix:      "0",
		GeneralDesc:         desc(`[1-578]\d{4,14}`, 5, 6, 7, 8, 9, 10, 15),
		FixedLine:           desc(`[237]\d{8}`, 9),
		Mobile:              desc(`4\d{8}`, 9),
		TollFree:            desc(`1800\d{6}`, 10),
		PremiumRate:         desc(`190[0-2]\d{6}`, 10),
		Formats: []*metadata.NumberFormat{
			{
				Pattern:                      `(\d)(\d{4})(\d{4})`,
				LeadingDigits:                []string{`[2378]`},
				Format:                       `$1 $2 $3`,
				NationalPrefixFormattingRule: `(0$1)`,
			},
			{
				Pattern:                      `(\d{3})(\d{3})(\d{3})`,
				LeadingDigits:                []string{`4`},
				Format:                       `$1 $2 $3`,
				NationalPrefixFormattingRule: `0$1`,
			},
			{
				Pattern:       `(\d{4})(\d{3})(\d{3})`,
				LeadingDigits: []string{`1`},
				Format:        `$1 $2 $3`,
			},
		},
	},
	"NZ": {
		ID:                  "NZ",
		CountryCode:         64,
		InternationalPrefix: "00",
		NationalPrefix:      "0",
		GeneralDesc:         desc(`[289]\d{7,9}|[3-7]\d{7}`, 8, 9, 10),
		FixedLine:           desc(`(?:3[2-79]|[49][2-9]|6[235-9]|7[2-57-9])\d{6}`, 8),
		Mobile:              desc(`2(?:[027]\d{7,8}|9\d{6,7})`, 8, 9, 10),
		TollFree:            desc(`800\d{6,7}`, 9, 10),
		PremiumRate:         desc(`900\d{5,7}`, 8, 9, 10),
		Formats: []*metadata.NumberFormat{
			{
				Pattern:                      `(\d)(\d{3})(\d{4})`,
				LeadingDigits:                []string{`24|[346]|7[2-57-9]|9[2-9]`},
				Format:                       `$1-$2 $3`,
				NationalPrefixFormattingRule: `0$1`,
			},
			{
				Pattern:                      `(\d{3})(\d{3})(\d{3,4})`,
				LeadingDigits:                []string{`2(?:1[1-9]|[069]|7[0-35-9])|70|86|9[08]|800|900`},
				Format:                       `$1 $2 $3`,
				NationalPrefixFormattingRule: `0$1`,
			},
		},
	},
	"SG": {
		ID:                  "SG",
		CountryCode:         65,
		InternationalPrefix: `0[0-3]\d`,
		GeneralDesc:         desc(`[13689]\d{7,10}`, 8, 10, 11),
		FixedLine:           desc(`[36]\d{7}`, 8),
		Mobile:              desc(`[89]\d{7}`, 8),
		TollFree:            desc(`1?800\d{7}`, 10, 11),
		PremiumRate:         desc(`1900\d{7}`, 11),
		Formats: []*metadata.NumberFormat{
			{Pattern: `(\d{4})(\d{4})`, LeadingDigits: []string{`[369]|8[1-9]`}, Format: `$1 $2`},
			{Pattern: `(\d{4})(\d{4})(\d{3})`, LeadingDigits: []string{`1[89]`}, Format: `$1 $2 $3`},
			{Pattern: `(\d{3})(\d{3})(\d{4})`, LeadingDigits: []string{`800`}, Format: `$1 $2 $3`},
		},
	},
	"MX": {
		ID:                       "MX",
		CountryCode:              52,
		InternationalPrefix:      "00",
		NationalPrefix:           "01",
		NationalPrefixForParsing: `0[12]|04[45](\d{10})`,
		NationalPrefixTransformRule: `1$1`,
		GeneralDesc:              desc(`[1-9]\d{9,10}`, 10, 11),
		FixedLine:                desc(`[2-9]\d{9}`, 10),
		Mobile:                   desc(`1\d{10}`, 11),
		Formats: []*metadata.NumberFormat{
			{
				Pattern:                      `(\d{3})(\d{3})(\d{4})`,
				LeadingDigits:                []string{`[2-9]`},
				Format:                       `$1 $2 $3`,
				NationalPrefixFormattingRule: `01 $1`,
				NationalPrefixOptionalWhenFormatting: true,
			},
			{
				Pattern:                      `(\d)(\d{3})(\d{3})(\d{4})`,
				LeadingDigits:                []string{`1`},
				Format:                       `045 $2 $3 $4`,
				NationalPrefixOptionalWhenFormatting: true,
			},
		},
	},
	"AR": {
		ID:                       "AR",
		CountryCode:              54,
		InternationalPrefix:      "00",
		NationalPrefix:           "0",
		NationalPrefixForParsing: `0(?:(11|343|3715)15)?`,
		NationalPrefixTransformRule: `9$1`,
		GeneralDesc:              desc(`[1-3689]\d{9,10}`, 10, 11),
		FixedLine:                desc(`[1-3]\d{9}`, 10),
		Mobile:                   desc(`9\d{10}`, 11),
		Formats: []*metadata.NumberFormat{
			{
				Pattern:                      `(\d{2})(\d{4})(\d{4})`,
				LeadingDigits:                []string{`11`},
				Format:                       `$1 $2-$3`,
				NationalPrefixFormattingRule: `0$1`,
			},
			{
				Pattern:                      `(\d{3,4})(\d{3})(\d{4})`,
				LeadingDigits:                []string{`[23]`},
				Format:                       `$1 $2-$3`,
				NationalPrefixFormattingRule: `0$1`,
			},
			{
				Pattern:                      `(\d)(\d{2})(\d{4})(\d{4})`,
				LeadingDigits:                []string{`9(?:11|[23])`},
				Format:                       `$1 $2 $3-$4`,
				NationalPrefixFormattingRule: `0$1`,
			},
		},
		IntlFormats: []*metadata.NumberFormat{
			{Pattern: `(\d{2})(\d{4})(\d{4})`, LeadingDigits: []string{`11`}, Format: `$1 $2-$3`},
			{Pattern: `(\d{3,4})(\d{3})(\d{4})`, LeadingDigits: []string{`[23]`}, Format: `$1 $2-$3`},
			{Pattern: `(\d)(\d{2})(\d{4})(\d{4})`, LeadingDigits: []string{`9(?:11|[23])`}, Format: `$1 $2 $3-$4`},
		},
	},
	"BR": {
		ID:                       "BR",
		CountryCode:              55,
		InternationalPrefix:      `00(?:1[45]|2[135])?`,
		NationalPrefix:           "0",
		NationalPrefixForParsing: `0(?:(1[245]|2[1-35]|31|4[13]|[56]5|99)(\d{10,11}))?`,
		NationalPrefixTransformRule: `$2`,
		GeneralDesc:              desc(`[1-9]\d{9,10}`, 10, 11),
		FixedLine:                desc(`[1-9][2-5]\d{8}`, 10),
		Mobile:                   desc(`[1-9]9?[6-9]\d{7}`, 10, 11),
		Formats: []*metadata.NumberFormat{
			{
				Pattern:                           `(\d{2})(\d{4,5})(\d{4})`,
				LeadingDigits:                     []string{`[1-9]`},
				Format:                            `$1 $2-$3`,
				NationalPrefixFormattingRule:      `($1)`,
				DomesticCarrierCodeFormattingRule: `0 $CC ($1)`,
			},
		},
	},
}

var nonGeoPlans = map[int]*metadata.NumberingPlan{
	800: {
		ID:          metadata.NonGeoRegionCode,
		CountryCode: 800,
		GeneralDesc: desc(`\d{8}`, 8),
		TollFree:    desc(`\d{8}`, 8),
		Formats: []*metadata.NumberFormat{
			{Pattern: `(\d{4})(\d{4})`, Format: `$1 $2`},
		},
	},
	979: {
		ID:          metadata.NonGeoRegionCode,
		CountryCode: 979,
		GeneralDesc: desc(`\d{9}`, 9),
		PremiumRate: desc(`\d{9}`, 9),
		Formats: []*metadata.NumberFormat{
			{Pattern: `(\d)(\d{4})(\d{4})`, Format: `$1 $2 $3`},
		},
	},
}

// alternateFormats holds groupings seen in the wild that differ from the
// primary plan formats. Used only by the text matcher's grouping checks.
var alternateFormats = map[int]*metadata.NumberingPlan{
	49: {
		ID:          "DE",
		CountryCode: 49,
		Formats: []*metadata.NumberFormat{
			{Pattern: `(\d{2})(\d{4})(\d{3,5})`, LeadingDigits: []string{`3[02]|40|[68]9`}, Format: `$1 $2 $3`},
			{Pattern: `(\d{3})(\d{3})(\d{3,5})`, LeadingDigits: []string{`2(?:\d1|0[2389]|1[24]|28|34)|3(?:[3-9][15]|40)|[4-8][1-9]1|9(?:06|[1-9]1)`}, Format: `$1 $2 $3`},
		},
	},
}
