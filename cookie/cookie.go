package cookie

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/deal-drive/site/geo"
)

const (
	sessionCookie  = "sid"
	authCookie     = "auth_token"
	geoLatCookie   = "geo_lat"
	geoLngCookie   = "geo_lng"
	geoStateCookie = "geo_state"
	geoErrorCookie = "geo_error"

	sessionMaxAge = 30 * 24 * 60 * 60 // 30 days
	geoMaxAge     = 7 * 24 * 60 * 60   // 7 days
)

func set(c *fiber.Ctx, name, value string, maxAge int) {
	c.Cookie(&fiber.Cookie{
		Name:     name,
		Value:    value,
		MaxAge:   maxAge,
		HTTPOnly: true,
		Secure:   true,
		Path:     "/",
		SameSite: "Lax",
	})
}

// SessionID returns the browser's search session id, issuing one when the
// request has none or an unparseable one.
func SessionID(c *fiber.Ctx) string {
	if sid := c.Cookies(sessionCookie); sid != "" {
		if _, err := uuid.Parse(sid); err == nil {
			return sid
		}
	}
	sid := uuid.NewString()
	set(c, sessionCookie, sid, sessionMaxAge)
	return sid
}

func GetJWT(c *fiber.Ctx) string {
	return c.Cookies(authCookie)
}

func ClearJWT(c *fiber.Ctx) {
	c.ClearCookie(authCookie)
}

// GetGeoStatus restores the last location lookup. A failed lookup keeps its
// error; a stored coordinate survives failures.
func GetGeoStatus(c *fiber.Ctx) geo.Status {
	var s geo.Status

	lat, latErr := strconv.ParseFloat(c.Cookies(geoLatCookie), 64)
	lng, lngErr := strconv.ParseFloat(c.Cookies(geoLngCookie), 64)
	if latErr == nil && lngErr == nil {
		coord := geo.Coordinate{Lat: lat, Lng: lng}
		if coord.Valid() {
			s.Coord = &coord
		}
	}

	switch geo.State(c.Cookies(geoStateCookie)) {
	case geo.Resolved:
		if s.Coord != nil {
			s.State = geo.Resolved
		}
	case geo.Loading:
		s.State = geo.Loading
	case geo.Failed:
		code, _ := strconv.Atoi(c.Cookies(geoErrorCookie))
		s.State = geo.Failed
		s.Err = geo.ErrorFromCode(code)
	}
	if s.State == "" {
		s.State = geo.Idle
	}
	return s
}

func SetGeoStatus(c *fiber.Ctx, s geo.Status) {
	if s.Coord != nil {
		set(c, geoLatCookie, strconv.FormatFloat(s.Coord.Lat, 'f', 6, 64), geoMaxAge)
		set(c, geoLngCookie, strconv.FormatFloat(s.Coord.Lng, 'f', 6, 64), geoMaxAge)
	}
	set(c, geoStateCookie, string(s.State), geoMaxAge)
	if s.Err != nil {
		set(c, geoErrorCookie, strconv.Itoa(geo.Code(s.Err)), geoMaxAge)
	} else {
		c.ClearCookie(geoErrorCookie)
	}
}
