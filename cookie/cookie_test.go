package cookie

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deal-drive/site/geo"
)

func responseCookies(resp *http.Response) map[string]string {
	out := map[string]string{}
	for _, c := range resp.Cookies() {
		out[c.Name] = c.Value
	}
	return out
}

func TestSessionIDIssuedOnce(t *testing.T) {
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString(SessionID(c))
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)
	issued := responseCookies(resp)[sessionCookie]
	_, err = uuid.Parse(issued)
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/", nil)
	req.AddCookie(&http.Cookie{Name: sessionCookie, Value: issued})
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.NotContains(t, responseCookies(resp), sessionCookie)

	req = httptest.NewRequest("GET", "/", nil)
	req.AddCookie(&http.Cookie{Name: sessionCookie, Value: "forged"})
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.NotEqual(t, "forged", responseCookies(resp)[sessionCookie])
}

func TestGeoStatusRoundTrip(t *testing.T) {
	app := fiber.New()
	app.Get("/set", func(c *fiber.Ctx) error {
		var s geo.Status
		s.Request()
		if err := s.Resolve(geo.Coordinate{Lat: 37.7749, Lng: -122.4194}); err != nil {
			return err
		}
		SetGeoStatus(c, s)
		return nil
	})
	app.Get("/fail", func(c *fiber.Ctx) error {
		s := GetGeoStatus(c)
		s.Fail(geo.ErrPermissionDenied)
		SetGeoStatus(c, s)
		return nil
	})

	var restored geo.Status
	app.Get("/get", func(c *fiber.Ctx) error {
		restored = GetGeoStatus(c)
		return nil
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/set", nil))
	require.NoError(t, err)
	set := responseCookies(resp)
	assert.Equal(t, "37.774900", set[geoLatCookie])
	assert.Equal(t, "-122.419400", set[geoLngCookie])
	assert.Equal(t, "resolved", set[geoStateCookie])

	req := httptest.NewRequest("GET", "/get", nil)
	for name, value := range set {
		req.AddCookie(&http.Cookie{Name: name, Value: value})
	}
	_, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, geo.Resolved, restored.State)
	require.NotNil(t, restored.Origin(true))
	assert.InDelta(t, 37.7749, restored.Origin(true).Lat, 1e-6)

	req = httptest.NewRequest("GET", "/fail", nil)
	for name, value := range set {
		req.AddCookie(&http.Cookie{Name: name, Value: value})
	}
	resp, err = app.Test(req)
	require.NoError(t, err)
	failed := responseCookies(resp)
	assert.Equal(t, "error", failed[geoStateCookie])
	assert.Equal(t, "1", failed[geoErrorCookie])
}

func TestGetGeoStatusDefaults(t *testing.T) {
	app := fiber.New()
	var got geo.Status
	app.Get("/", func(c *fiber.Ctx) error {
		got = GetGeoStatus(c)
		return nil
	})

	req := httptest.NewRequest("GET", "/", nil)
	req.AddCookie(&http.Cookie{Name: geoStateCookie, Value: "resolved"})
	req.AddCookie(&http.Cookie{Name: geoLatCookie, Value: "999"})
	req.AddCookie(&http.Cookie{Name: geoLngCookie, Value: "0"})
	_, err := app.Test(req)
	require.NoError(t, err)

	assert.Equal(t, geo.Idle, got.State, "resolved without a valid coordinate")
	assert.Nil(t, got.Origin(true))
}
