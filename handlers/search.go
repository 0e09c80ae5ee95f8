package handlers

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/deal-drive/site/cookie"
	"github.com/deal-drive/site/filter"
	"github.com/deal-drive/site/local"
	"github.com/deal-drive/site/observability"
	"github.com/deal-drive/site/search"
	"github.com/deal-drive/site/ui"
)

const retryMessage = "Please try again."

// HandleHome renders the search page for the criteria in the URL. Results
// load through the placeholder once the page is in the browser.
func (h *Handlers) HandleHome(c *fiber.Ctx) error {
	auth := local.Auth(c)
	sub := local.Subscription(c)
	s := filter.FromValues(requestValues(c))

	var recent []search.UserSearch
	if h.history != nil && sub.CanSaveHistory(auth) {
		var err error
		recent, err = h.history.Recent(c.UserContext(), auth.ID, recentSearchLimit)
		if err != nil {
			observability.LoggerFromContext(c.UserContext()).Warn().
				Str("component", "history").Err(err).Msg("failed to load recent searches")
		}
	}

	return render(c, ui.SearchPage(auth, sub, s, cookie.GetGeoStatus(c), recent))
}

// HandleSearch starts a new result set for the submitted criteria and
// renders its first page.
func (h *Handlers) HandleSearch(c *fiber.Ctx) error {
	ctx := c.UserContext()
	s := filter.FromValues(requestValues(c))
	origin := cookie.GetGeoStatus(c).Origin(s.LocationEnabled)
	q := search.NewQuery(s, search.Compile(s, origin, h.compileOptions()))

	logger := observability.LoggerFromContext(ctx)
	logger.Debug().
		Str("component", "search").
		Str("q", q.Text).
		Str("filter_by", q.Filter).
		Str("selector", search.SortSelector(h.cfg.TypesenseCollection, q.Sort)).
		Msg("starting search")

	res, err := h.stream.Start(ctx, local.SessionID(c), q)
	if res.Stale {
		// A newer search from the same browser owns the results container.
		return c.SendStatus(fiber.StatusNoContent)
	}

	r := ui.Results{State: s, Origin: origin, Session: res.Session, Hits: res.Hits, Now: h.now()}
	if err != nil {
		logger.Error().Str("component", "search").Err(err).Msg("first page failed")
		r.Err = retryMessage
	}
	h.remember(res.Hits)

	c.Set("HX-Push-Url", s.SearchURL())
	h.recordSearch(c, s.Query)
	return render(c, ui.ResultsFirstPage(r))
}

// HandleSearchPage appends the next page of generation gen. The request
// carries the criteria form so cards link back to the same search.
func (h *Handlers) HandleSearchPage(c *fiber.Ctx) error {
	ctx := c.UserContext()
	gen, err := strconv.ParseInt(c.Query("gen"), 10, 64)
	if err != nil || gen < 1 {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid results page.")
	}

	s := filter.FromValues(requestValues(c))
	origin := cookie.GetGeoStatus(c).Origin(s.LocationEnabled)

	res, err := h.stream.RequestMore(ctx, local.SessionID(c), gen)
	switch {
	case errors.Is(err, search.ErrSessionNotFound), res.Stale:
		// Expired or superseded; the sentinel is dropped.
		return render(c, ui.EmptyResponse())
	case res.Busy:
		return render(c, ui.BusySentinel(gen))
	}

	r := ui.Results{State: s, Origin: origin, Session: res.Session, Hits: res.Hits, Now: h.now()}
	if err != nil {
		observability.LoggerFromContext(ctx).Error().
			Str("component", "search").Int64("generation", gen).Err(err).Msg("next page failed")
		r.Err = retryMessage
		r.Session.Generation = gen
	}
	h.remember(res.Hits)

	return render(c, ui.ResultsNextPage(r))
}

// remember keeps rendered hits so detail and carousel requests can skip the
// index.
func (h *Handlers) remember(hits []search.Hit) {
	for _, hit := range hits {
		h.listings.Set(hit.ID, hit)
	}
}

// recordSearch saves a signed-in user's query and asks the page to refresh
// its recent searches.
func (h *Handlers) recordSearch(c *fiber.Ctx, query string) {
	auth := local.Auth(c)
	if h.history == nil || query == "" || !local.Subscription(c).CanSaveHistory(auth) {
		return
	}
	if err := h.history.Save(c.UserContext(), auth.ID, query); err != nil {
		observability.LoggerFromContext(c.UserContext()).Warn().
			Str("component", "history").Err(err).Msg("failed to save search")
		return
	}
	trigger(c, "historyChanged")
}
