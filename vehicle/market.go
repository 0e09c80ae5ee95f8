package vehicle

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/deal-drive/site/cache"
	"github.com/deal-drive/site/filter"
	"github.com/deal-drive/site/search"
)

// Comparables summarizes listed prices of the same make, model and year.
type Comparables struct {
	Count  int
	Min    int
	Median int
	Max    int
	// Delta is the listing's price minus the median. Zero when either is unknown.
	Delta int
}

// Known reports whether there were any priced comparables.
func (c Comparables) Known() bool {
	return c.Count > 0
}

// Market computes comparables from the search index.
type Market struct {
	searcher search.Searcher
	cache    *cache.Cache[Comparables]
}

// NewMarket creates a Market whose summaries are cached for ttl.
func NewMarket(searcher search.Searcher, ttl time.Duration) (*Market, error) {
	c, err := cache.New("Market Cache", ttl, func(Comparables) int64 { return 64 })
	if err != nil {
		return nil, fmt.Errorf("failed to create market cache: %w", err)
	}
	return &Market{searcher: searcher, cache: c}, nil
}

// Comparables returns the price summary for hit's make, model and year. Hits
// without all three return an empty summary.
func (m *Market) Comparables(ctx context.Context, hit search.Hit) (Comparables, error) {
	if hit.Make == "" || hit.Model == "" || hit.Year == 0 {
		return Comparables{}, nil
	}

	key := strings.ToLower(fmt.Sprintf("%s|%s|%d", hit.Make, hit.Model, hit.Year))
	summary, found := m.cache.Get(key)
	if !found {
		page, err := m.searcher.Search(ctx, search.Query{
			Filter: ComparablesFilter(hit.Make, hit.Model, hit.Year),
			Sort:   filter.Relevance,
			Page:   1,
		})
		if err != nil {
			return Comparables{}, fmt.Errorf("failed to search comparables: %w", err)
		}

		prices := make([]int, 0, len(page.Hits))
		for _, h := range page.Hits {
			if h.ID != hit.ID && h.Price > 0 {
				prices = append(prices, h.Price)
			}
		}
		summary = Summarize(prices)
		m.cache.Set(key, summary)
	}

	if summary.Known() && hit.Price > 0 {
		summary.Delta = hit.Price - summary.Median
	}
	return summary, nil
}

// CacheStats reports the market cache counters for /health.
func (m *Market) CacheStats() cache.Stats {
	return m.cache.Stats()
}

// Close releases the market cache.
func (m *Market) Close() {
	m.cache.Close()
}

// ComparablesFilter matches priced listings of one make, model and year.
func ComparablesFilter(makeName, model string, year int) string {
	return strings.Join([]string{
		fmt.Sprintf("%s:=%s", search.FieldMake, quote(makeName)),
		fmt.Sprintf("%s:=%s", search.FieldModel, quote(model)),
		fmt.Sprintf("%s:=%d", search.FieldYear, year),
		fmt.Sprintf("%s:>0", search.FieldPrice),
	}, " && ")
}

// quote wraps a value in backticks so spaces and commas match literally.
func quote(s string) string {
	return "`" + strings.ReplaceAll(s, "`", "") + "`"
}

// Summarize computes count, min, median and max of prices.
func Summarize(prices []int) Comparables {
	if len(prices) == 0 {
		return Comparables{}
	}
	sorted := slices.Clone(prices)
	slices.Sort(sorted)

	n := len(sorted)
	median := sorted[n/2]
	if n%2 == 0 {
		median = (sorted[n/2-1] + sorted[n/2]) / 2
	}
	return Comparables{Count: n, Min: sorted[0], Median: median, Max: sorted[n-1]}
}
