package main

import (
	"net/url"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/deal-drive/site/filter"
	"github.com/deal-drive/site/geo"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "searchctl",
		Short: "Inspect and exercise the vehicle listing search",
		Long: `searchctl compiles search criteria into the filter expression sent to
Typesense, runs queries against the listings collection and creates the
collection for local development.`,
		SilenceUsage: true,
	}
	root.AddCommand(newCompileCmd(), newQueryCmd(), newSchemaCmd(), newTokenCmd())
	return root
}

// criteria mirrors the search page parameters as command line flags.
type criteria struct {
	query        string
	radius       int
	lat, lng     float64
	minPrice     int
	maxPrice     int
	minYear      int
	maxYear      int
	maxMileage   int
	dataSources  []string
	sort         string
	sourceToggle bool
}

func (c *criteria) bind(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVarP(&c.query, "query", "q", "", "Free-text query")
	f.IntVar(&c.radius, "radius", 0, "Radius in miles around --lat/--lng (0 disables the distance bound)")
	f.Float64Var(&c.lat, "lat", 0, "Origin latitude")
	f.Float64Var(&c.lng, "lng", 0, "Origin longitude")
	f.IntVar(&c.minPrice, "min-price", 0, "Minimum price in dollars")
	f.IntVar(&c.maxPrice, "max-price", 0, "Maximum price in dollars")
	f.IntVar(&c.minYear, "min-year", 0, "Oldest model year")
	f.IntVar(&c.maxYear, "max-year", 0, "Newest model year")
	f.IntVar(&c.maxMileage, "max-mileage", 0, "Mileage ceiling")
	f.StringSliceVar(&c.dataSources, "source", nil, "Data sources to include (repeatable)")
	f.StringVar(&c.sort, "sort", string(filter.Relevance), "relevance, newest or oldest")
	f.BoolVar(&c.sourceToggle, "filter-sources", false, "Emit the data source clause")
}

// values encodes the flags the way the search form does, so FromValues
// applies the same defaults and clamping.
func (c *criteria) values() url.Values {
	v := url.Values{}
	set := func(key string, n int) {
		if n != 0 {
			v.Set(key, strconv.Itoa(n))
		}
	}
	if c.query != "" {
		v.Set(filter.ParamQuery, c.query)
	}
	if c.radius > 0 {
		v.Set(filter.ParamLocationEnabled, "true")
		set(filter.ParamRadius, c.radius)
	}
	set(filter.ParamMinPrice, c.minPrice)
	set(filter.ParamMaxPrice, c.maxPrice)
	set(filter.ParamMinYear, c.minYear)
	set(filter.ParamMaxYear, c.maxYear)
	set(filter.ParamMaxMileage, c.maxMileage)
	for _, src := range c.dataSources {
		v.Add(filter.ParamDataSources, src)
	}
	v.Set(filter.ParamSort, c.sort)
	return v
}

func (c *criteria) state() filter.State {
	return filter.FromValues(c.values())
}

// origin is nil unless a radius and a non-zero coordinate were given.
func (c *criteria) origin() *geo.Coordinate {
	if c.radius <= 0 || (c.lat == 0 && c.lng == 0) {
		return nil
	}
	coord := geo.Coordinate{Lat: c.lat, Lng: c.lng}
	if !coord.Valid() {
		return nil
	}
	return &coord
}
