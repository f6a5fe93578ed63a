package metadata

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"sync"

	"golang.org/x/sync/singleflight"
)

// ErrIntegrity is returned when a plan the compiled region table claims
// should exist cannot be loaded from the backing source. This signals a
// packaging defect and is not recoverable at runtime; an ordinary unknown
// region is reported as a nil plan without error.
var ErrIntegrity = errors.New("numbering plan metadata missing or corrupt")

// Source provides raw numbering plans and the region/country-code tables
// derived from them. Implementations may decode plans lazily; the repository
// guarantees each key is loaded at most once.
type Source interface {
	// Regions lists every region code the source defines, excluding the
	// non-geographic pseudo-region.
	Regions() []string

	// CountryCodeToRegions maps each country calling code to its regions,
	// main country first. Non-geographic codes map to ["001"].
	CountryCodeToRegions() map[int][]string

	// LoadRegion decodes the plan for a geographic region. It returns
	// (nil, nil) when the region is not defined by this source.
	LoadRegion(region string) (*NumberingPlan, error)

	// LoadNonGeo decodes the plan for a non-geographic country calling code.
	LoadNonGeo(countryCode int) (*NumberingPlan, error)

	// LoadAlternateFormats returns extra formatting rules seen in the wild
	// for a country calling code, or (nil, nil) when none are known.
	LoadAlternateFormats(countryCode int) (*NumberingPlan, error)
}

// Repository is the engine's read-only view of numbering-plan metadata.
//
// Lookups return a nil plan (and nil error) for keys the source simply does
// not define. A non-nil error always wraps ErrIntegrity.
type Repository interface {
	MetadataForRegion(region string) (*NumberingPlan, error)
	MetadataForNonGeoRegion(countryCode int) (*NumberingPlan, error)
	AlternateFormats(countryCode int) (*NumberingPlan, error)

	// RegionsForCountryCode returns the regions sharing a calling code, main
	// country first, or nil when the code is unknown.
	RegionsForCountryCode(countryCode int) []string

	// CountryCodeForRegion returns the calling code of a region, or 0.
	CountryCodeForRegion(region string) int

	// SupportedRegions lists all geographic regions, sorted.
	SupportedRegions() []string
}

// CachedRepository caches decoded plans for the process lifetime. Reads are
// lock-free once a plan is cached; a cache miss triggers exactly one load per
// key, with concurrent misses for the same key sharing the in-flight load.
type CachedRepository struct {
	source Source

	regions        map[string]bool
	ccToRegions    map[int][]string
	regionToCC     map[string]int
	sortedRegions  []string

	plans  sync.Map // string key -> *NumberingPlan (nil entries are not stored)
	loads  singleflight.Group
}

// NewCachedRepository builds a repository over src, eagerly constructing the
// region and country-code tables but deferring plan decoding to first use.
func NewCachedRepository(src Source) *CachedRepository {
	r := &CachedRepository{
		source:      src,
		regions:     make(map[string]bool),
		ccToRegions: src.CountryCodeToRegions(),
		regionToCC:  make(map[string]int),
	}
	for _, region := range src.Regions() {
		r.regions[region] = true
		r.sortedRegions = append(r.sortedRegions, region)
	}
	sort.Strings(r.sortedRegions)
	for cc, regions := range r.ccToRegions {
		for _, region := range regions {
			if region != NonGeoRegionCode {
				r.regionToCC[region] = cc
			}
		}
	}
	return r
}

// MetadataForRegion returns the plan for a geographic region, loading and
// caching it on first use. Unknown regions yield (nil, nil).
func (r *CachedRepository) MetadataForRegion(region string) (*NumberingPlan, error) {
	if !r.regions[region] {
		return nil, nil
	}
	return r.load("region:"+region, func() (*NumberingPlan, error) {
		return r.source.LoadRegion(region)
	}, true)
}

// MetadataForNonGeoRegion returns the plan for a non-geographic country
// calling code, e.g. 800.
func (r *CachedRepository) MetadataForNonGeoRegion(countryCode int) (*NumberingPlan, error) {
	regions, ok := r.ccToRegions[countryCode]
	if !ok || len(regions) != 1 || regions[0] != NonGeoRegionCode {
		return nil, nil
	}
	return r.load("nongeo:"+strconv.Itoa(countryCode), func() (*NumberingPlan, error) {
		return r.source.LoadNonGeo(countryCode)
	}, true)
}

// AlternateFormats returns extra formatting rules for a country calling
// code, or (nil, nil) when none are defined.
func (r *CachedRepository) AlternateFormats(countryCode int) (*NumberingPlan, error) {
	return r.load("alt:"+strconv.Itoa(countryCode), func() (*NumberingPlan, error) {
		return r.source.LoadAlternateFormats(countryCode)
	}, false)
}

// load resolves a cache key, collapsing concurrent misses into a single
// source load. When required is true, a missing or failing load is an
// integrity error because the key came from the compiled tables.
func (r *CachedRepository) load(key string, fetch func() (*NumberingPlan, error), required bool) (*NumberingPlan, error) {
	if cached, ok := r.plans.Load(key); ok {
		return cached.(*NumberingPlan), nil
	}
	v, err, _ := r.loads.Do(key, func() (any, error) {
		plan, err := fetch()
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrIntegrity, key, err)
		}
		if plan == nil {
			if required {
				return nil, fmt.Errorf("%w: %s", ErrIntegrity, key)
			}
			return (*NumberingPlan)(nil), nil
		}
		r.plans.Store(key, plan)
		return plan, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*NumberingPlan), nil
}

// RegionsForCountryCode implements Repository.
func (r *CachedRepository) RegionsForCountryCode(countryCode int) []string {
	return r.ccToRegions[countryCode]
}

// CountryCodeForRegion implements Repository.
func (r *CachedRepository) CountryCodeForRegion(region string) int {
	return r.regionToCC[region]
}

// SupportedRegions implements Repository.
func (r *CachedRepository) SupportedRegions() []string {
	return r.sortedRegions
}
