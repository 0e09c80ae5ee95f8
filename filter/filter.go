// Package filter holds the search criteria a user edits on the search page
// and their URL representation.
package filter

import (
	"math"
	"time"
)

// Source is a marketplace a listing was collected from.
type Source string

const (
	Facebook   Source = "facebook"
	Craigslist Source = "craigslist"
	OfferUp    Source = "offerup"
	AutoTrader Source = "autotrader"
)

// Sources lists every known source in canonical order.
var Sources = []Source{Facebook, Craigslist, OfferUp, AutoTrader}

// Label is the display name of a source.
func (s Source) Label() string {
	switch s {
	case Facebook:
		return "Facebook Marketplace"
	case Craigslist:
		return "Craigslist"
	case OfferUp:
		return "OfferUp"
	case AutoTrader:
		return "AutoTrader"
	default:
		return string(s)
	}
}

// ParseSource returns the known source named s.
func ParseSource(s string) (Source, bool) {
	for _, src := range Sources {
		if string(src) == s {
			return src, true
		}
	}
	return "", false
}

// Sort is the result ordering.
type Sort string

const (
	Relevance Sort = "relevance"
	Newest    Sort = "newest"
	Oldest    Sort = "oldest"
)

// Sorts lists the orderings offered in the UI.
var Sorts = []Sort{Relevance, Newest, Oldest}

const (
	MinRadius     = 25
	MaxRadius     = 2000
	RadiusStep    = 25
	DefaultRadius = 50

	MinYear        = 1980
	DefaultMinYear = 1990

	// MaxMileageAny is the mileage ceiling that means "no limit".
	MaxMileageAny = 200000
)

// Now is the clock used to compute the current model year.
var Now = time.Now

// CurrentYear is the newest selectable model year.
func CurrentYear() int {
	return Now().Year()
}

// State is the full set of search criteria. Zero prices mean "no bound".
type State struct {
	Query           string
	LocationEnabled bool
	RadiusMiles     int
	PriceMin        int
	PriceMax        int
	YearMin         int
	YearMax         int
	MaxMileage      int
	DataSources     []Source
	Sort            Sort
}

// Default returns the criteria of an untouched search page.
func Default() State {
	return State{
		RadiusMiles: DefaultRadius,
		YearMin:     DefaultMinYear,
		YearMax:     CurrentYear(),
		MaxMileage:  MaxMileageAny,
		DataSources: append([]Source(nil), Sources...),
		Sort:        Relevance,
	}
}

// SetQuery replaces the free-text query.
func (s *State) SetQuery(q string) {
	s.Query = q
}

// SetLocationEnabled turns the radius filter on or off.
func (s *State) SetLocationEnabled(enabled bool) {
	s.LocationEnabled = enabled
}

// SetRadius clamps miles to the allowed range and snaps it to the slider step.
func (s *State) SetRadius(miles int) {
	snapped := int(math.Round(float64(miles)/RadiusStep)) * RadiusStep
	s.RadiusMiles = clamp(snapped, MinRadius, MaxRadius)
}

// SetPriceRange sets the price bounds. Negative values are unset, and two
// set bounds in the wrong order are swapped.
func (s *State) SetPriceRange(min, max int) {
	min, max = nonNegative(min), nonNegative(max)
	if min > 0 && max > 0 && min > max {
		min, max = max, min
	}
	s.PriceMin, s.PriceMax = min, max
}

// SetYearRange clamps both bounds to the selectable years and orders them.
func (s *State) SetYearRange(min, max int) {
	current := CurrentYear()
	min, max = clamp(min, MinYear, current), clamp(max, MinYear, current)
	if min > max {
		min, max = max, min
	}
	s.YearMin, s.YearMax = min, max
}

// SetMaxMileage clamps the mileage ceiling to [0, MaxMileageAny].
func (s *State) SetMaxMileage(miles int) {
	s.MaxMileage = clamp(miles, 0, MaxMileageAny)
}

// SetSort selects an ordering. Unknown values fall back to relevance.
func (s *State) SetSort(sort Sort) {
	switch sort {
	case Newest, Oldest:
		s.Sort = sort
	default:
		s.Sort = Relevance
	}
}

// ToggleDataSource flips src in the selection and reports whether it is now
// selected. The last selected source cannot be removed.
func (s *State) ToggleDataSource(src Source) bool {
	if _, ok := ParseSource(string(src)); !ok {
		return false
	}
	if s.HasSource(src) {
		if len(s.DataSources) == 1 {
			return true
		}
		s.setSources(func(x Source) bool { return s.HasSource(x) && x != src })
		return false
	}
	s.setSources(func(x Source) bool { return s.HasSource(x) || x == src })
	return true
}

// SetDataSources replaces the selection. An empty selection selects all.
func (s *State) SetDataSources(selected []Source) {
	set := make(map[Source]bool, len(selected))
	for _, src := range selected {
		set[src] = true
	}
	s.setSources(func(x Source) bool { return set[x] })
	if len(s.DataSources) == 0 {
		s.DataSources = append([]Source(nil), Sources...)
	}
}

// HasSource reports whether src is selected.
func (s State) HasSource(src Source) bool {
	for _, x := range s.DataSources {
		if x == src {
			return true
		}
	}
	return false
}

// SourceSubset returns the selected sources when they are a non-empty strict
// subset of all sources.
func (s State) SourceSubset() ([]Source, bool) {
	if len(s.DataSources) == 0 || len(s.DataSources) >= len(Sources) {
		return nil, false
	}
	return s.DataSources, true
}

// HasPriceBound reports whether either price bound is set.
func (s State) HasPriceBound() bool {
	return s.PriceMin > 0 || s.PriceMax > 0
}

// HasYearBound reports whether the year range is narrower than the default.
func (s State) HasYearBound() bool {
	return s.YearMin != DefaultMinYear || s.YearMax != CurrentYear()
}

// HasMileageBound reports whether a mileage ceiling is set.
func (s State) HasMileageBound() bool {
	return s.MaxMileage < MaxMileageAny
}

// setSources rebuilds the selection in canonical order.
func (s *State) setSources(keep func(Source) bool) {
	var next []Source
	for _, src := range Sources {
		if keep(src) {
			next = append(next, src)
		}
	}
	s.DataSources = next
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func nonNegative(v int) int {
	if v < 0 {
		return 0
	}
	return v
}
