package plans

import (
	"regexp"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/numplan/numplan/metadata"
)

func TestSourceTablesAreConsistent(t *testing.T) {
	src := Source()

	regions := src.Regions()
	assert.Len(t, regions, len(regionPlans))

	seen := make(map[string]bool)
	for cc, ccRegions := range src.CountryCodeToRegions() {
		require.NotEmpty(t, ccRegions, "country code %d has no regions", cc)
		for _, region := range ccRegions {
			if region == metadata.NonGeoRegionCode {
				assert.Contains(t, nonGeoPlans, cc)
				continue
			}
			seen[region] = true
			plan, err := src.LoadRegion(region)
			require.NoError(t, err)
			require.NotNil(t, plan, "region %s listed but has no plan", region)
			assert.Equal(t, cc, plan.CountryCode)
		}
	}
	// Every plan must be reachable through some calling code.
	for region := range regionPlans {
		assert.True(t, seen[region], "region %s is not mapped to a calling code", region)
	}
}

func TestLoadRegion(t *testing.T) {
	src := Source()

	plan, err := src.LoadRegion("US")
	require.NoError(t, err)
	require.NotNil(t, plan)
	assert.Equal(t, "US", plan.ID)
	assert.Equal(t, 1, plan.CountryCode)
	assert.True(t, plan.MainCountryForCode)

	plan, err = src.LoadRegion("FR")
	require.NoError(t, err)
	assert.Nil(t, plan)
}

func TestLoadNonGeo(t *testing.T) {
	src := Source()

	plan, err := src.LoadNonGeo(800)
	require.NoError(t, err)
	require.NotNil(t, plan)
	assert.Equal(t, metadata.NonGeoRegionCode, plan.ID)

	plan, err = src.LoadNonGeo(1)
	require.NoError(t, err)
	assert.Nil(t, plan)
}

func TestLoadAlternateFormats(t *testing.T) {
	src := Source()

	plan, err := src.LoadAlternateFormats(49)
	require.NoError(t, err)
	require.NotNil(t, plan)
	assert.NotEmpty(t, plan.Formats)

	plan, err = src.LoadAlternateFormats(64)
	require.NoError(t, err)
	assert.Nil(t, plan)
}

func TestAllPatternsCompile(t *testing.T) {
	checkDesc := func(t *testing.T, name string, desc *metadata.NumberDesc) {
		if desc == nil {
			return
		}
		if desc.Pattern != "" {
			_, err := regexp.Compile(desc.Pattern)
			assert.NoError(t, err, "%s pattern", name)
		}
		assert.True(t, sort.IntsAreSorted(desc.PossibleLengths), "%s lengths not sorted", name)
		for _, l := range desc.PossibleLengths {
			assert.Greater(t, l, 0, "%s has non-positive length", name)
		}
	}

	checkPlan := func(t *testing.T, plan *metadata.NumberingPlan) {
		require.NotNil(t, plan.GeneralDesc, "plan without general description")
		assert.NotEmpty(t, plan.GeneralDesc.PossibleLengths)
		checkDesc(t, "general", plan.GeneralDesc)
		checkDesc(t, "fixed line", plan.FixedLine)
		checkDesc(t, "mobile", plan.Mobile)
		checkDesc(t, "toll free", plan.TollFree)
		checkDesc(t, "premium rate", plan.PremiumRate)
		checkDesc(t, "shared cost", plan.SharedCost)
		checkDesc(t, "personal number", plan.PersonalNumber)
		checkDesc(t, "voip", plan.VOIP)
		checkDesc(t, "pager", plan.Pager)
		checkDesc(t, "uan", plan.UAN)
		checkDesc(t, "voicemail", plan.Voicemail)

		if plan.InternationalPrefix != "" {
			_, err := regexp.Compile(plan.InternationalPrefix)
			assert.NoError(t, err, "international prefix")
		}
		if pattern := plan.NationalPrefixPattern(); pattern != "" {
			_, err := regexp.Compile(pattern)
			assert.NoError(t, err, "national prefix pattern")
		}
		for _, format := range append(append([]*metadata.NumberFormat{}, plan.Formats...), plan.IntlFormats...) {
			_, err := regexp.Compile(format.Pattern)
			assert.NoError(t, err, "format pattern %q", format.Pattern)
			assert.NotEmpty(t, format.Format)
			for _, ld := range format.LeadingDigits {
				_, err := regexp.Compile(ld)
				assert.NoError(t, err, "leading digits %q", ld)
			}
		}
	}

	for region, plan := range regionPlans {
		t.Run(region, func(t *testing.T) {
			assert.Equal(t, region, plan.ID)
			checkPlan(t, plan)
		})
	}
	for cc, plan := range nonGeoPlans {
		t.Run(plan.ID, func(t *testing.T) {
			assert.Equal(t, cc, plan.CountryCode)
			checkPlan(t, plan)
		})
	}
}
