package search

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/deal-drive/site/geo"
)

// Hit is one listing returned by the index, normalized to a single shape.
type Hit struct {
	ID         string
	Title      string
	Price      int // 0 when not listed
	Images     []string
	Make       string
	Model      string
	Year       int
	Mileage    int // -1 when not listed
	Color      string
	Location   string
	Geo        *geo.Coordinate
	ListedAt   time.Time
	SourceLink string
	SourceID   string
	DataSource string
	VIN        string
}

// HasMileage reports whether the listing states its mileage.
func (h Hit) HasMileage() bool {
	return h.Mileage >= 0
}

// NormalizeHit maps a raw index document to a Hit. Documents arrive either
// with dot-flattened keys ("vehicle_info.mileage") or with nested objects
// ("vehicle_info": {"mileage": ...}); both are accepted. It reports false
// when the document has no identifier.
func NormalizeHit(doc map[string]any) (Hit, bool) {
	d := document(doc)

	h := Hit{
		ID:         d.str("id", "objectID"),
		Title:      d.str("title", "name"),
		Price:      d.integer(0, "product_price", "price"),
		Images:     d.strings("images", "image_urls", "image_url"),
		Make:       d.str("vehicle_info.make", "make"),
		Model:      d.str("vehicle_info.model", "model"),
		Year:       d.integer(0, "vehicle_info.year", "year"),
		Mileage:    d.integer(-1, "vehicle_info.mileage", "mileage"),
		Color:      d.str("vehicle_info.color", "color"),
		Location:   d.str("location", "location_text", "city"),
		Geo:        d.coordinate("geolocation", "_geoloc", "geo"),
		ListedAt:   d.timestamp("timestamp", "listed_at", "created_at"),
		SourceLink: d.str("source_link", "publication.link", "url"),
		SourceID:   d.str("source_id", "publication.id"),
		DataSource: d.str("data_source", "source"),
		VIN:        d.str("vehicle_info.vin", "vin"),
	}
	if h.ID == "" {
		return Hit{}, false
	}
	if h.Price < 0 {
		h.Price = 0
	}
	if h.Title == "" {
		h.Title = strings.TrimSpace(strings.Join(nonEmpty(yearString(h.Year), h.Make, h.Model), " "))
	}
	return h, true
}

type document map[string]any

// lookup resolves a key either directly or by walking nested objects along
// its dotted path.
func (d document) lookup(key string) (any, bool) {
	if v, ok := d[key]; ok && v != nil {
		return v, true
	}
	head, rest, found := strings.Cut(key, ".")
	if !found {
		return nil, false
	}
	nested, ok := d[head].(map[string]any)
	if !ok {
		return nil, false
	}
	return document(nested).lookup(rest)
}

func (d document) first(keys ...string) (any, bool) {
	for _, k := range keys {
		if v, ok := d.lookup(k); ok {
			return v, true
		}
	}
	return nil, false
}

func (d document) str(keys ...string) string {
	v, ok := d.first(keys...)
	if !ok {
		return ""
	}
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case float64, int, int64, json.Number:
		if n, ok := toFloat(t); ok {
			return strconv.FormatFloat(n, 'f', -1, 64)
		}
	}
	return ""
}

func (d document) integer(fallback int, keys ...string) int {
	v, ok := d.first(keys...)
	if !ok {
		return fallback
	}
	n, ok := toFloat(v)
	if !ok {
		return fallback
	}
	return int(math.Round(n))
}

func (d document) strings(keys ...string) []string {
	v, ok := d.first(keys...)
	if !ok {
		return nil
	}
	switch t := v.(type) {
	case string:
		if t == "" {
			return nil
		}
		return []string{t}
	case []string:
		return nonEmpty(t...)
	case []any:
		var out []string
		for _, item := range t {
			if s, ok := item.(string); ok && s != "" {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

// coordinate accepts [lat, lng] pairs and {"lat": .., "lng"|"lon": ..} objects.
func (d document) coordinate(keys ...string) *geo.Coordinate {
	v, ok := d.first(keys...)
	if !ok {
		return nil
	}

	var lat, lng float64
	var latOK, lngOK bool
	switch t := v.(type) {
	case []any:
		if len(t) != 2 {
			return nil
		}
		lat, latOK = toFloat(t[0])
		lng, lngOK = toFloat(t[1])
	case []float64:
		if len(t) != 2 {
			return nil
		}
		lat, lng, latOK, lngOK = t[0], t[1], true, true
	case map[string]any:
		lat, latOK = toFloat(t["lat"])
		lng, lngOK = toFloat(t["lng"])
		if !lngOK {
			lng, lngOK = toFloat(t["lon"])
		}
	}
	if !latOK || !lngOK {
		return nil
	}
	c := geo.Coordinate{Lat: lat, Lng: lng}
	if !c.Valid() {
		return nil
	}
	return &c
}

// timestamp reads epoch milliseconds. Values too small to be milliseconds
// since 1973 are taken as seconds.
func (d document) timestamp(keys ...string) time.Time {
	v, ok := d.first(keys...)
	if !ok {
		return time.Time{}
	}
	n, ok := toFloat(v)
	if !ok || n <= 0 {
		return time.Time{}
	}
	if n < 1e11 {
		return time.Unix(int64(n), 0).UTC()
	}
	return time.UnixMilli(int64(n)).UTC()
}

func toFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, !math.IsNaN(t) && !math.IsInf(t, 0)
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case json.Number:
		f, err := t.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(t), ",", ""), 64)
		return f, err == nil && !math.IsNaN(f) && !math.IsInf(f, 0)
	default:
		return 0, false
	}
}

func yearString(y int) string {
	if y <= 0 {
		return ""
	}
	return strconv.Itoa(y)
}

func nonEmpty(values ...string) []string {
	var out []string
	for _, v := range values {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}
