// Package handlers serves the search page, its htmx fragments and the
// vehicle detail pages.
package handlers

import (
	"context"
	"errors"
	"net/url"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/deal-drive/site/cache"
	"github.com/deal-drive/site/config"
	"github.com/deal-drive/site/search"
	"github.com/deal-drive/site/vehicle"
)

// recentSearchLimit is how many recent searches are listed under the search box.
const recentSearchLimit = 8

// listingCacheTTL bounds how long a hit seen in results is served to the
// detail and carousel routes without asking the index again.
const listingCacheTTL = 10 * time.Minute

// HistoryStore records the free-text queries of signed-in users.
type HistoryStore interface {
	Save(ctx context.Context, userID, query string) error
	Recent(ctx context.Context, userID string, limit int) ([]search.UserSearch, error)
	Delete(ctx context.Context, id int, userID string) error
}

// Reporter decodes a VIN into a vehicle report.
type Reporter interface {
	Report(ctx context.Context, vin string) (vehicle.Report, error)
}

// MarketAnalyzer prices a listing against comparable listings.
type MarketAnalyzer interface {
	Comparables(ctx context.Context, hit search.Hit) (vehicle.Comparables, error)
}

// CacheReporter exposes cache counters on /health.
type CacheReporter interface {
	CacheStats() cache.Stats
}

// HealthCheck is one dependency probed by /health.
type HealthCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

// Deps are the collaborators of Handlers. History, Reporter and Market may
// be nil; the features they back are then hidden or reported unavailable.
type Deps struct {
	Config   *config.Config
	Searcher search.Searcher
	Finder   search.Finder
	Store    search.SessionStore
	History  HistoryStore
	Reporter Reporter
	Market   MarketAnalyzer
	Checks   []HealthCheck
	Caches   []CacheReporter
}

// Handlers holds the request handlers and everything they depend on.
type Handlers struct {
	cfg      *config.Config
	finder   search.Finder
	stream   *search.Stream
	history  HistoryStore
	reporter Reporter
	market   MarketAnalyzer
	listings *cache.Cache[search.Hit]
	checks   []HealthCheck
	caches   []CacheReporter
	now      func() time.Time
}

// New wires the handlers. Config, Searcher, Finder and Store are required.
func New(d Deps) (*Handlers, error) {
	if d.Config == nil || d.Searcher == nil || d.Finder == nil || d.Store == nil {
		return nil, errors.New("handlers: config, searcher, finder and store are required")
	}

	listings, err := cache.New("Listing Cache", listingCacheTTL, func(h search.Hit) int64 {
		return int64(len(h.ID) + len(h.Title) + len(h.Location) + 64*len(h.Images) + 256)
	})
	if err != nil {
		return nil, err
	}

	return &Handlers{
		cfg:      d.Config,
		finder:   d.Finder,
		stream:   search.NewStream(d.Searcher, d.Store),
		history:  d.History,
		reporter: d.Reporter,
		market:   d.Market,
		listings: listings,
		checks:   d.Checks,
		caches:   append([]CacheReporter{listingStats{listings}}, d.Caches...),
		now:      time.Now,
	}, nil
}

// Close releases the listing cache.
func (h *Handlers) Close() {
	h.listings.Close()
}

// Register mounts every route on app.
func (h *Handlers) Register(app *fiber.App) {
	app.Get("/", h.HandleHome)
	app.Get("/search", h.HandleSearch)
	app.Get("/search-page", h.HandleSearchPage)

	app.Post("/location", h.HandleLocation)
	app.Post("/location/request", h.HandleLocationRequest)
	app.Post("/location/toggle", h.HandleLocationToggle)

	app.Get("/vehicle/:id", h.HandleVehicle)
	app.Get("/vehicle/:id/image/:idx", h.HandleVehicleImage)
	app.Get("/vehicle/:id/report", h.HandleVehicleReport)

	app.Get("/history", h.HandleHistory)
	app.Delete("/history/:id", h.HandleHistoryDelete)

	app.Get("/health", h.HandleHealth)
}

func (h *Handlers) compileOptions() search.Options {
	return search.Options{IncludeDataSources: h.cfg.SearchFilterDataSources}
}

// requestValues collects query and form parameters, keeping repeated keys.
func requestValues(c *fiber.Ctx) url.Values {
	values := url.Values{}
	c.Request().URI().QueryArgs().VisitAll(func(k, v []byte) {
		values.Add(string(k), string(v))
	})
	c.Request().PostArgs().VisitAll(func(k, v []byte) {
		values.Add(string(k), string(v))
	})
	return values
}

type listingStats struct {
	c *cache.Cache[search.Hit]
}

func (l listingStats) CacheStats() cache.Stats {
	return l.c.Stats()
}
