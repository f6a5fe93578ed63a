package metadata

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSource is a Source with observable load counts and injectable faults.
type fakeSource struct {
	mu          sync.Mutex
	regionLoads map[string]int

	failRegion    string
	missingRegion string
}

func newFakeSource() *fakeSource {
	return &fakeSource{regionLoads: make(map[string]int)}
}

func (s *fakeSource) Regions() []string {
	return []string{"US", "NZ", "XX", "YY"}
}

func (s *fakeSource) CountryCodeToRegions() map[int][]string {
	return map[int][]string{
		1:   {"US"},
		64:  {"NZ"},
		800: {NonGeoRegionCode},
	}
}

func (s *fakeSource) LoadRegion(region string) (*NumberingPlan, error) {
	s.mu.Lock()
	s.regionLoads[region]++
	s.mu.Unlock()
	if region == s.failRegion {
		return nil, errors.New("decode failure")
	}
	if region == s.missingRegion {
		return nil, nil
	}
	return &NumberingPlan{ID: region, CountryCode: 64}, nil
}

func (s *fakeSource) LoadNonGeo(countryCode int) (*NumberingPlan, error) {
	return &NumberingPlan{ID: NonGeoRegionCode, CountryCode: countryCode}, nil
}

func (s *fakeSource) LoadAlternateFormats(countryCode int) (*NumberingPlan, error) {
	if countryCode == 64 {
		return &NumberingPlan{ID: "NZ", CountryCode: 64}, nil
	}
	return nil, nil
}

func (s *fakeSource) loadCount(region string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.regionLoads[region]
}

func TestMetadataForRegion(t *testing.T) {
	repo := NewCachedRepository(newFakeSource())

	plan, err := repo.MetadataForRegion("US")
	require.NoError(t, err)
	require.NotNil(t, plan)
	assert.Equal(t, "US", plan.ID)

	// Regions the source never defined are not an error.
	plan, err = repo.MetadataForRegion("AQ")
	require.NoError(t, err)
	assert.Nil(t, plan)
}

func TestMetadataForRegionCachesLoads(t *testing.T) {
	src := newFakeSource()
	repo := NewCachedRepository(src)

	for i := 0; i < 5; i++ {
		_, err := repo.MetadataForRegion("US")
		require.NoError(t, err)
	}
	assert.Equal(t, 1, src.loadCount("US"))
}

func TestMetadataForRegionConcurrentLoads(t *testing.T) {
	src := newFakeSource()
	repo := NewCachedRepository(src)

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			plan, err := repo.MetadataForRegion("NZ")
			assert.NoError(t, err)
			assert.NotNil(t, plan)
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, src.loadCount("NZ"))
}

func TestMetadataForRegionIntegrityErrors(t *testing.T) {
	src := newFakeSource()
	src.failRegion = "XX"
	src.missingRegion = "YY"
	repo := NewCachedRepository(src)

	// A decode failure for a region the tables promise is corruption.
	_, err := repo.MetadataForRegion("XX")
	assert.ErrorIs(t, err, ErrIntegrity)

	// So is a silent nil for a promised region.
	_, err = repo.MetadataForRegion("YY")
	assert.ErrorIs(t, err, ErrIntegrity)
}

func TestMetadataForNonGeoRegion(t *testing.T) {
	repo := NewCachedRepository(newFakeSource())

	plan, err := repo.MetadataForNonGeoRegion(800)
	require.NoError(t, err)
	require.NotNil(t, plan)
	assert.Equal(t, 800, plan.CountryCode)

	// Geographic calling codes have no non-geo plan.
	plan, err = repo.MetadataForNonGeoRegion(1)
	require.NoError(t, err)
	assert.Nil(t, plan)

	plan, err = repo.MetadataForNonGeoRegion(999)
	require.NoError(t, err)
	assert.Nil(t, plan)
}

func TestAlternateFormats(t *testing.T) {
	repo := NewCachedRepository(newFakeSource())

	plan, err := repo.AlternateFormats(64)
	require.NoError(t, err)
	require.NotNil(t, plan)

	// Absent alternate formats are an ordinary miss, not corruption.
	plan, err = repo.AlternateFormats(1)
	require.NoError(t, err)
	assert.Nil(t, plan)
}

func TestRegionTables(t *testing.T) {
	repo := NewCachedRepository(newFakeSource())

	assert.Equal(t, []string{"US"}, repo.RegionsForCountryCode(1))
	assert.Nil(t, repo.RegionsForCountryCode(999))

	assert.Equal(t, 64, repo.CountryCodeForRegion("NZ"))
	assert.Equal(t, 0, repo.CountryCodeForRegion("AQ"))
	// The non-geo pseudo-region never maps back to a single code.
	assert.Equal(t, 0, repo.CountryCodeForRegion(NonGeoRegionCode))

	assert.Equal(t, []string{"NZ", "US", "XX", "YY"}, repo.SupportedRegions())
}

func TestNationalPrefixPattern(t *testing.T) {
	plan := &NumberingPlan{NationalPrefix: "0"}
	assert.Equal(t, "0", plan.NationalPrefixPattern())

	plan.NationalPrefixForParsing = `0(?:(11|343)15)?`
	assert.Equal(t, `0(?:(11|343)15)?`, plan.NationalPrefixPattern())

	assert.True(t, plan.HasNationalPrefix())
	assert.False(t, (&NumberingPlan{}).HasNationalPrefix())
}
