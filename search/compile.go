package search

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/deal-drive/site/filter"
	"github.com/deal-drive/site/geo"
)

// Indexed field names.
const (
	FieldGeo       = "geolocation"
	FieldPrice     = "product_price"
	FieldYear      = "vehicle_info.year"
	FieldMileage   = "vehicle_info.mileage"
	FieldMake      = "vehicle_info.make"
	FieldModel     = "vehicle_info.model"
	FieldSource    = "data_source"
	FieldTimestamp = "timestamp"
)

// Options turns on optional clauses.
type Options struct {
	// IncludeDataSources emits the data source clause. Off by default, in
	// which case every source is searched regardless of the selection.
	IncludeDataSources bool
}

// Compile translates criteria into a filter_by expression. origin is the
// user's resolved location, or nil. An empty string means no filtering.
func Compile(s filter.State, origin *geo.Coordinate, opts Options) string {
	var clauses []string
	add := func(c string) {
		if c != "" {
			clauses = append(clauses, c)
		}
	}

	add(geoClause(s, origin))
	add(rangeClause(FieldPrice, s.PriceMin, s.PriceMax, s.PriceMin > 0, s.PriceMax > 0))
	add(yearClause(s))
	if s.MaxMileage < filter.MaxMileageAny {
		add(fmt.Sprintf("%s:<=%d", FieldMileage, s.MaxMileage))
	}
	if opts.IncludeDataSources {
		add(sourceClause(s))
	}

	return strings.Join(clauses, " && ")
}

func geoClause(s filter.State, origin *geo.Coordinate) string {
	if !s.LocationEnabled || origin == nil || s.RadiusMiles <= 0 {
		return ""
	}
	km := geo.MilesToKm(float64(s.RadiusMiles))
	return fmt.Sprintf("%s:(%s, %s, %s km)", FieldGeo,
		formatFloat(origin.Lat), formatFloat(origin.Lng), formatFloat(km))
}

// yearClause bounds the model year only when the range is narrower than
// the default 1990..current span. A bound left at its default is unset.
func yearClause(s filter.State) string {
	current := filter.CurrentYear()
	if s.YearMin <= filter.DefaultMinYear && s.YearMax >= current {
		return ""
	}
	return rangeClause(FieldYear, s.YearMin, s.YearMax,
		s.YearMin != filter.DefaultMinYear, s.YearMax != current)
}

func sourceClause(s filter.State) string {
	subset, ok := s.SourceSubset()
	if !ok {
		return ""
	}
	names := make([]string, len(subset))
	for i, src := range subset {
		names[i] = string(src)
	}
	return fmt.Sprintf("%s:[%s]", FieldSource, strings.Join(names, ","))
}

func rangeClause(field string, min, max int, hasMin, hasMax bool) string {
	switch {
	case hasMin && hasMax:
		return fmt.Sprintf("%s:>=%d && %s:<=%d", field, min, field, max)
	case hasMin:
		return fmt.Sprintf("%s:>=%d", field, min)
	case hasMax:
		return fmt.Sprintf("%s:<=%d", field, max)
	default:
		return ""
	}
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
