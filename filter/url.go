package filter

import (
	"math"
	"net/url"
	"strconv"
	"strings"
)

// URL parameter names shared by the search page and detail links.
const (
	ParamQuery           = "q"
	ParamRadius          = "radius"
	ParamLocationEnabled = "locationEnabled"
	ParamDataSources     = "dataSources"
	ParamMinPrice        = "minPrice"
	ParamMaxPrice        = "maxPrice"
	ParamMinYear         = "minYear"
	ParamMaxYear         = "maxYear"
	ParamMaxMileage      = "maxMileage"
	ParamSort            = "sort"
)

// FromValues builds criteria from URL or form values. Missing or malformed
// values fall back to their defaults and out-of-range values are clamped.
func FromValues(v url.Values) State {
	s := Default()

	s.SetQuery(strings.TrimSpace(v.Get(ParamQuery)))
	s.SetLocationEnabled(parseFlag(v.Get(ParamLocationEnabled)))
	s.SetRadius(parseInt(v.Get(ParamRadius), DefaultRadius))

	var selected []Source
	for _, raw := range v[ParamDataSources] {
		for _, name := range strings.Split(raw, ",") {
			if src, ok := ParseSource(strings.TrimSpace(name)); ok {
				selected = append(selected, src)
			}
		}
	}
	s.SetDataSources(selected)

	s.SetPriceRange(parseInt(v.Get(ParamMinPrice), 0), parseInt(v.Get(ParamMaxPrice), 0))
	s.SetYearRange(parseInt(v.Get(ParamMinYear), DefaultMinYear), parseInt(v.Get(ParamMaxYear), CurrentYear()))
	s.SetMaxMileage(parseInt(v.Get(ParamMaxMileage), MaxMileageAny))
	s.SetSort(Sort(v.Get(ParamSort)))

	return s
}

type param struct {
	key   string
	value string
}

// params lists the non-default criteria in a stable order. Defaults are
// omitted and FromValues restores them.
func (s State) params() []param {
	var out []param
	if s.Query != "" {
		out = append(out, param{ParamQuery, s.Query})
	}
	if s.LocationEnabled {
		out = append(out,
			param{ParamRadius, strconv.Itoa(s.RadiusMiles)},
			param{ParamLocationEnabled, "true"},
		)
	}
	if subset, ok := s.SourceSubset(); ok {
		names := make([]string, len(subset))
		for i, src := range subset {
			names[i] = string(src)
		}
		out = append(out, param{ParamDataSources, strings.Join(names, ",")})
	}
	if s.HasPriceBound() {
		out = append(out,
			param{ParamMinPrice, strconv.Itoa(s.PriceMin)},
			param{ParamMaxPrice, strconv.Itoa(s.PriceMax)},
		)
	}
	if s.HasYearBound() {
		out = append(out,
			param{ParamMinYear, strconv.Itoa(s.YearMin)},
			param{ParamMaxYear, strconv.Itoa(s.YearMax)},
		)
	}
	if s.HasMileageBound() {
		out = append(out, param{ParamMaxMileage, strconv.Itoa(s.MaxMileage)})
	}
	if s.Sort != "" && s.Sort != Relevance {
		out = append(out, param{ParamSort, string(s.Sort)})
	}
	return out
}

// Values returns the non-default criteria as url.Values.
func (s State) Values() url.Values {
	v := url.Values{}
	for _, p := range s.params() {
		v.Set(p.key, p.value)
	}
	return v
}

// QueryString encodes the non-default criteria in parameter order. It is
// empty when every field is at its default.
func (s State) QueryString() string {
	var b strings.Builder
	for i, p := range s.params() {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(p.key))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(p.value))
	}
	return b.String()
}

// DetailURL links to a vehicle page carrying the criteria needed to rebuild
// this search on the way back.
func (s State) DetailURL(id string) string {
	return withQuery("/vehicle/"+url.PathEscape(id), s.QueryString())
}

// SearchURL links to the search page with these criteria.
func (s State) SearchURL() string {
	return withQuery("/", s.QueryString())
}

func withQuery(path, query string) string {
	if query == "" {
		return path
	}
	return path + "?" + query
}

func parseInt(raw string, fallback int) int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		f, ferr := strconv.ParseFloat(raw, 64)
		if ferr != nil || math.IsNaN(f) || math.Abs(f) > math.MaxInt32 {
			return fallback
		}
		return int(f)
	}
	return n
}

// parseFlag accepts the forms browsers and links use for booleans.
func parseFlag(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "true", "1", "on", "yes":
		return true
	default:
		return false
	}
}
