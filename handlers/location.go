package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/deal-drive/site/cookie"
	"github.com/deal-drive/site/filter"
	"github.com/deal-drive/site/geo"
	"github.com/deal-drive/site/observability"
	"github.com/deal-drive/site/ui"
)

// HandleLocation records the browser's answer to the geolocation prompt:
// either lat and lng, or a GeolocationPositionError code. The results are
// refreshed either way; a failed lookup searches without a distance bound.
func (h *Handlers) HandleLocation(c *fiber.Ctx) error {
	s := filter.FromValues(requestValues(c))
	status := cookie.GetGeoStatus(c)

	if raw := c.FormValue("code"); raw != "" {
		code, _ := strconv.Atoi(raw)
		status.Fail(geo.ErrorFromCode(code))
	} else {
		lat, latErr := strconv.ParseFloat(c.FormValue("lat"), 64)
		lng, lngErr := strconv.ParseFloat(c.FormValue("lng"), 64)
		if latErr != nil || lngErr != nil {
			status.Fail(geo.ErrPositionUnavailable)
		} else {
			_ = status.Resolve(geo.Coordinate{Lat: lat, Lng: lng})
		}
	}

	event := observability.LoggerFromContext(c.UserContext()).Debug().
		Str("component", "location").
		Str("state", string(status.State))
	if status.Err != nil {
		event = event.Err(status.Err)
	}
	event.Msg("location lookup finished")

	cookie.SetGeoStatus(c, status)
	trigger(c, "criteriaChanged")
	return render(c, ui.LocationPanel(s, status))
}

// HandleLocationRequest starts a lookup. The returned panel carries the
// script that opens the browser prompt.
func (h *Handlers) HandleLocationRequest(c *fiber.Ctx) error {
	s := filter.FromValues(requestValues(c))
	s.SetLocationEnabled(true)

	status := cookie.GetGeoStatus(c)
	status.Request()
	cookie.SetGeoStatus(c, status)

	return render(c, ui.LocationPanel(s, status))
}

// HandleLocationToggle re-renders the panel after the distance checkbox
// changes. The stored coordinate is kept while disabled.
func (h *Handlers) HandleLocationToggle(c *fiber.Ctx) error {
	s := filter.FromValues(requestValues(c))
	return render(c, ui.LocationPanel(s, cookie.GetGeoStatus(c)))
}
