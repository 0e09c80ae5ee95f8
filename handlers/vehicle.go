package handlers

import (
	"errors"
	"net/url"

	"github.com/gofiber/fiber/v2"

	"github.com/deal-drive/site/cookie"
	"github.com/deal-drive/site/filter"
	"github.com/deal-drive/site/local"
	"github.com/deal-drive/site/observability"
	"github.com/deal-drive/site/search"
	"github.com/deal-drive/site/ui"
)

// listing resolves the :id route parameter to a hit, from the listing
// cache when it was rendered recently.
func (h *Handlers) listing(c *fiber.Ctx) (search.Hit, error) {
	id, err := url.PathUnescape(c.Params("id"))
	if err != nil || id == "" {
		return search.Hit{}, fiber.NewError(fiber.StatusBadRequest, "Invalid vehicle id.")
	}
	if hit, ok := h.listings.Get(id); ok {
		return hit, nil
	}

	hit, err := h.finder.Get(c.UserContext(), id)
	if errors.Is(err, search.ErrNotFound) {
		return search.Hit{}, fiber.NewError(fiber.StatusNotFound, "This vehicle is no longer listed.")
	}
	if err != nil {
		return search.Hit{}, err
	}
	h.listings.Set(hit.ID, hit)
	return hit, nil
}

// HandleVehicle renders a listing. The URL carries the search the visitor
// came from so the back link restores it.
func (h *Handlers) HandleVehicle(c *fiber.Ctx) error {
	hit, err := h.listing(c)
	if err != nil {
		return err
	}

	s := filter.FromValues(requestValues(c))
	origin := cookie.GetGeoStatus(c).Origin(s.LocationEnabled)
	return render(c, ui.VehicleDetailPage(local.Auth(c), local.Subscription(c), hit, s, origin, h.now()))
}

// HandleVehicleImage swaps the carousel of a listing to image :idx.
func (h *Handlers) HandleVehicleImage(c *fiber.Ctx) error {
	idx, err := c.ParamsInt("idx")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid image index.")
	}
	hit, err := h.listing(c)
	if err != nil {
		return err
	}
	return render(c, ui.Carousel(hit, idx))
}

// HandleVehicleReport renders the market comparison and, for paid plans,
// the decoded VIN. Failures are shown inline.
func (h *Handlers) HandleVehicleReport(c *fiber.Ctx) error {
	ctx := c.UserContext()
	logger := observability.LoggerFromContext(ctx)

	hit, err := h.listing(c)
	if err != nil {
		return err
	}
	r := ui.Report{Listing: hit}

	if h.market == nil {
		r.MarketErr = true
	} else if r.Market, err = h.market.Comparables(ctx, hit); err != nil {
		logger.Warn().Str("component", "market").Str("id", hit.ID).Err(err).Msg("comparables failed")
		r.MarketErr = true
	}

	switch {
	case hit.VIN == "":
	case !local.Subscription(c).CanViewReports():
		r.Locked = true
	case h.reporter == nil:
		r.ReportErr = true
	default:
		report, err := h.reporter.Report(ctx, hit.VIN)
		if err != nil {
			logger.Warn().Str("component", "vehicle").Str("vin", hit.VIN).Err(err).Msg("vin report failed")
			r.ReportErr = true
		} else {
			r.Report = &report
		}
	}

	return render(c, ui.ReportFragment(r))
}
