package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deal-drive/site/config"
	"github.com/deal-drive/site/jwt"
	"github.com/deal-drive/site/search"
	"github.com/deal-drive/site/user"
	"github.com/deal-drive/site/vehicle"
)

const (
	testSID    = "3b241101-e2bb-4255-8caf-4136c566a962"
	testSecret = "test-secret"
)

type fakeIndex struct {
	mu      sync.Mutex
	pages   map[int]search.Page
	err     error
	queries []search.Query
	docs    map[string]search.Hit
}

func (f *fakeIndex) Search(_ context.Context, q search.Query) (search.Page, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, q)
	if f.err != nil {
		return search.Page{}, f.err
	}
	p, ok := f.pages[q.Page]
	if !ok {
		return search.Page{Number: q.Page, LastPage: true}, nil
	}
	return p, nil
}

func (f *fakeIndex) Get(_ context.Context, id string) (search.Hit, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	hit, ok := f.docs[id]
	if !ok {
		return search.Hit{}, search.ErrNotFound
	}
	return hit, nil
}

func (f *fakeIndex) lastQuery() search.Query {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.queries[len(f.queries)-1]
}

type fakeHistory struct {
	mu      sync.Mutex
	saved   []string
	deleted []int
	recent  []search.UserSearch
}

func (f *fakeHistory) Save(_ context.Context, userID, query string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saved = append(f.saved, userID+":"+query)
	return nil
}

func (f *fakeHistory) Recent(_ context.Context, _ string, _ int) ([]search.UserSearch, error) {
	return f.recent, nil
}

func (f *fakeHistory) Delete(_ context.Context, id int, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, id)
	return nil
}

type fakeReporter struct {
	report vehicle.Report
	err    error
}

func (f fakeReporter) Report(_ context.Context, vin string) (vehicle.Report, error) {
	r := f.report
	r.VIN = vin
	return r, f.err
}

type fakeMarket struct {
	comps vehicle.Comparables
	err   error
}

func (f fakeMarket) Comparables(_ context.Context, _ search.Hit) (vehicle.Comparables, error) {
	return f.comps, f.err
}

func civicHit(id string) search.Hit {
	return search.Hit{
		ID:      id,
		Title:   "2015 Honda Civic " + id,
		Price:   12500,
		Images:  []string{"https://img.example/1.jpg", "https://img.example/2.jpg", "https://img.example/3.jpg"},
		Make:    "Honda",
		Model:   "Civic",
		Year:    2015,
		Mileage: 45000,
		VIN:     "1HGCM82633A004352",
	}
}

type testEnv struct {
	app     *fiber.App
	h       *Handlers
	index   *fakeIndex
	store   *search.MemoryStore
	history *fakeHistory
}

func newTestEnv(t *testing.T, modify func(*Deps)) *testEnv {
	t.Helper()
	env := &testEnv{
		index:   &fakeIndex{pages: map[int]search.Page{}, docs: map[string]search.Hit{}},
		store:   search.NewMemoryStore(config.SearchSessionTTL, config.SearchFetchLockTTL),
		history: &fakeHistory{},
	}
	deps := Deps{
		Config: &config.Config{
			TypesenseCollection: "listings",
			JWTSecret:           testSecret,
			RateLimitMax:        1000,
			RateLimitWindow:     time.Minute,
		},
		Searcher: env.index,
		Finder:   env.index,
		Store:    env.store,
		History:  env.history,
		Reporter: fakeReporter{report: vehicle.Report{Make: "HONDA", Model: "Civic", Year: 2015, Trim: "EX"}},
		Market:   fakeMarket{comps: vehicle.Comparables{Count: 3, Min: 10000, Median: 12000, Max: 15000, Delta: 500}},
	}
	if modify != nil {
		modify(&deps)
	}

	h, err := New(deps)
	require.NoError(t, err)
	t.Cleanup(h.Close)

	app := fiber.New(fiber.Config{ErrorHandler: CustomErrorHandler})
	app.Use(h.SessionMiddleware)
	app.Use(h.JWTMiddleware)
	h.Register(app)

	env.app = app
	env.h = h
	return env
}

func (e *testEnv) do(t *testing.T, req *http.Request, cookies ...*http.Cookie) (*http.Response, string) {
	t.Helper()
	req.AddCookie(&http.Cookie{Name: "sid", Value: testSID})
	for _, c := range cookies {
		req.AddCookie(c)
	}
	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(body)
}

func (e *testEnv) get(t *testing.T, target string, cookies ...*http.Cookie) (*http.Response, string) {
	return e.do(t, httptest.NewRequest(http.MethodGet, target, nil), cookies...)
}

func (e *testEnv) post(t *testing.T, target string, form url.Values, cookies ...*http.Cookie) (*http.Response, string) {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return e.do(t, req, cookies...)
}

func authCookie(t *testing.T, sub user.Subscription) *http.Cookie {
	t.Helper()
	token, err := jwt.GenerateToken([]byte(testSecret), user.Auth{ID: "user-1", Name: "Dana"}, sub, time.Hour)
	require.NoError(t, err)
	return &http.Cookie{Name: "auth_token", Value: token}
}

func responseCookies(resp *http.Response) map[string]string {
	out := map[string]string{}
	for _, c := range resp.Cookies() {
		out[c.Name] = c.Value
	}
	return out
}

func TestNewRequiresCoreDeps(t *testing.T) {
	_, err := New(Deps{})
	assert.Error(t, err)
}

func TestHandleHome(t *testing.T) {
	env := newTestEnv(t, nil)

	resp, body := env.get(t, "/?q=civic&maxMileage=100000")
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, body, `id="searchWidget"`)
	assert.Contains(t, body, `value="civic"`)
	assert.Contains(t, body, `id="searchResults"`)
	assert.NotContains(t, body, `id="recentSearches"`)
}

func TestHandleHomeShowsRecentSearchesWhenSignedIn(t *testing.T) {
	env := newTestEnv(t, nil)
	env.history.recent = []search.UserSearch{{ID: 4, QueryString: "tacoma"}}

	_, body := env.get(t, "/", authCookie(t, user.Subscription{}))
	assert.Contains(t, body, `id="recentSearches"`)
	assert.Contains(t, body, "tacoma")
}

func TestHandleSearchFirstPage(t *testing.T) {
	env := newTestEnv(t, nil)
	env.index.pages[1] = search.Page{Hits: []search.Hit{civicHit("a"), civicHit("b")}, Number: 1, Total: 30}

	resp, body := env.get(t, "/search?q=civic&sort=newest")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	assert.Equal(t, "/?q=civic&sort=newest", resp.Header.Get("HX-Push-Url"))
	assert.Contains(t, body, "2015 Honda Civic a")
	assert.Contains(t, body, "2015 Honda Civic b")
	assert.Contains(t, body, "30 vehicles found")
	assert.Contains(t, body, `hx-get="/search-page?gen=1"`)
	assert.Contains(t, body, `href="/vehicle/a?q=civic&amp;sort=newest"`)

	q := env.index.lastQuery()
	assert.Equal(t, "civic", q.Text)
	assert.Equal(t, "", q.Filter)
	assert.Equal(t, 1, q.Page)
}

func TestHandleSearchCompilesLocation(t *testing.T) {
	env := newTestEnv(t, nil)
	env.index.pages[1] = search.Page{Hits: []search.Hit{civicHit("a")}, Number: 1, Total: 1, LastPage: true}

	geoCookies := []*http.Cookie{
		{Name: "geo_state", Value: "resolved"},
		{Name: "geo_lat", Value: "37.774900"},
		{Name: "geo_lng", Value: "-122.419400"},
	}
	_, _ = env.get(t, "/search?locationEnabled=true&radius=100&minPrice=5000", geoCookies...)

	q := env.index.lastQuery()
	assert.Equal(t, "geolocation:(37.7749, -122.4194, 160.934 km) && product_price:>=5000", q.Filter)
}

func TestHandleSearchIgnoresLocationUntilResolved(t *testing.T) {
	env := newTestEnv(t, nil)

	_, _ = env.get(t, "/search?locationEnabled=true&radius=100",
		&http.Cookie{Name: "geo_state", Value: "loading"})

	assert.Equal(t, "", env.index.lastQuery().Filter)
}

func TestHandleSearchEmpty(t *testing.T) {
	env := newTestEnv(t, nil)

	_, body := env.get(t, "/search?q=delorean")
	assert.Contains(t, body, "No vehicles match your search")
	assert.NotContains(t, body, "/search-page")
}

func TestHandleSearchError(t *testing.T) {
	env := newTestEnv(t, nil)
	env.index.err = errors.New("typesense: 503")

	resp, body := env.get(t, "/search?q=civic")
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Search is unavailable right now.")
	assert.NotContains(t, body, "typesense")
}

func TestHandleSearchPageAppendsWithoutDuplicates(t *testing.T) {
	env := newTestEnv(t, nil)
	env.index.pages[1] = search.Page{Hits: []search.Hit{civicHit("a"), civicHit("b")}, Number: 1, Total: 3}
	env.index.pages[2] = search.Page{Hits: []search.Hit{civicHit("b"), civicHit("c")}, Number: 2, Total: 3, LastPage: true}

	_, _ = env.get(t, "/search?q=civic")
	resp, body := env.get(t, "/search-page?gen=1&q=civic")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	assert.NotContains(t, body, "2015 Honda Civic b")
	assert.Contains(t, body, "2015 Honda Civic c")
	assert.Contains(t, body, "reached the end of the results")
	assert.NotContains(t, body, `hx-trigger="revealed"`)
	assert.Contains(t, body, `href="/vehicle/c?q=civic"`)
	assert.Equal(t, 2, env.index.lastQuery().Page)
}

func TestHandleSearchPageStaleGeneration(t *testing.T) {
	env := newTestEnv(t, nil)
	env.index.pages[1] = search.Page{Hits: []search.Hit{civicHit("a")}, Number: 1, Total: 40}

	_, _ = env.get(t, "/search?q=civic")
	_, _ = env.get(t, "/search?q=accord")
	calls := len(env.index.queries)

	resp, body := env.get(t, "/search-page?gen=1")
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "<div></div>", body)
	assert.Len(t, env.index.queries, calls)
}

func TestHandleSearchPageBusy(t *testing.T) {
	env := newTestEnv(t, nil)
	env.index.pages[1] = search.Page{Hits: []search.Hit{civicHit("a")}, Number: 1, Total: 40}
	_, _ = env.get(t, "/search?q=civic")

	ok, err := env.store.Acquire(context.Background(), testSID, 1)
	require.NoError(t, err)
	require.True(t, ok)

	_, body := env.get(t, "/search-page?gen=1")
	assert.Contains(t, body, `hx-trigger="load delay:500ms"`)
	assert.Contains(t, body, `hx-get="/search-page?gen=1"`)
	assert.Len(t, env.index.queries, 1)
}

func TestHandleSearchPageInvalidGeneration(t *testing.T) {
	env := newTestEnv(t, nil)

	for _, target := range []string{"/search-page", "/search-page?gen=abc", "/search-page?gen=0"} {
		resp, _ := env.get(t, target)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode, target)
	}
}

func TestHandleSearchRecordsHistoryWhenSignedIn(t *testing.T) {
	env := newTestEnv(t, nil)

	resp, _ := env.get(t, "/search?q=civic", authCookie(t, user.Subscription{}))
	assert.Equal(t, "historyChanged", resp.Header.Get("HX-Trigger"))
	assert.Equal(t, []string{"user-1:civic"}, env.history.saved)

	resp, _ = env.get(t, "/search?q=accord")
	assert.Empty(t, resp.Header.Get("HX-Trigger"))
	assert.Len(t, env.history.saved, 1)
}

func TestInvalidTokenIsClearedAndAnonymous(t *testing.T) {
	env := newTestEnv(t, nil)

	resp, _ := env.get(t, "/search?q=civic", &http.Cookie{Name: "auth_token", Value: "garbage"})
	assert.Empty(t, env.history.saved)

	cleared := false
	for _, c := range resp.Cookies() {
		if c.Name == "auth_token" {
			cleared = c.Value == "" || c.MaxAge < 0 || c.Expires.Before(time.Now())
		}
	}
	assert.True(t, cleared)
}

func TestHandleLocationResolved(t *testing.T) {
	env := newTestEnv(t, nil)

	form := url.Values{"lat": {"37.7749"}, "lng": {"-122.4194"}, "locationEnabled": {"true"}, "radius": {"100"}}
	resp, body := env.post(t, "/location", form)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	assert.Equal(t, "criteriaChanged", resp.Header.Get("HX-Trigger"))
	cookies := responseCookies(resp)
	assert.Equal(t, "resolved", cookies["geo_state"])
	assert.Equal(t, "37.774900", cookies["geo_lat"])
	assert.Contains(t, body, "Using your current location")
	assert.Contains(t, body, `id="radiusFilter"`)
}

func TestHandleLocationFailed(t *testing.T) {
	env := newTestEnv(t, nil)

	form := url.Values{"code": {"1"}, "locationEnabled": {"true"}}
	resp, body := env.post(t, "/location", form)

	assert.Equal(t, "criteriaChanged", resp.Header.Get("HX-Trigger"))
	cookies := responseCookies(resp)
	assert.Equal(t, "error", cookies["geo_state"])
	assert.Equal(t, "1", cookies["geo_error"])
	assert.Contains(t, body, "Location access was denied.")
	assert.Contains(t, body, "Try again")
}

func TestHandleLocationRejectsMalformedCoordinates(t *testing.T) {
	env := newTestEnv(t, nil)

	resp, body := env.post(t, "/location", url.Values{"lat": {"north"}, "lng": {"1"}, "locationEnabled": {"true"}})
	assert.Equal(t, "error", responseCookies(resp)["geo_state"])
	assert.Contains(t, body, "Your location is unavailable right now.")
}

func TestHandleLocationRequest(t *testing.T) {
	env := newTestEnv(t, nil)

	resp, body := env.post(t, "/location/request", url.Values{"radius": {"75"}})
	assert.Equal(t, "loading", responseCookies(resp)["geo_state"])
	assert.Contains(t, body, "Finding your location...")
	assert.Contains(t, body, "navigator.geolocation")
	assert.Contains(t, body, `value="75"`)
}

func TestHandleLocationToggleKeepsCoordinate(t *testing.T) {
	env := newTestEnv(t, nil)
	geoCookies := []*http.Cookie{
		{Name: "geo_state", Value: "resolved"},
		{Name: "geo_lat", Value: "37.774900"},
		{Name: "geo_lng", Value: "-122.419400"},
	}

	resp, body := env.post(t, "/location/toggle", url.Values{"radius": {"100"}}, geoCookies...)
	assert.NotContains(t, responseCookies(resp), "geo_lat")
	assert.NotContains(t, body, "Using your current location")
	assert.Contains(t, body, `type="hidden"`)

	_, body = env.post(t, "/location/toggle", url.Values{"radius": {"100"}, "locationEnabled": {"true"}}, geoCookies...)
	assert.Contains(t, body, "Using your current location")
}

func TestHandleVehicle(t *testing.T) {
	env := newTestEnv(t, nil)
	env.index.docs["a"] = civicHit("a")

	resp, body := env.get(t, "/vehicle/a?q=civic&sort=newest")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "2015 Honda Civic a")
	assert.Contains(t, body, `href="/?q=civic&amp;sort=newest"`)
	assert.Contains(t, body, `hx-get="/vehicle/a/report"`)
}

func TestHandleVehicleNotFound(t *testing.T) {
	env := newTestEnv(t, nil)

	resp, body := env.get(t, "/vehicle/missing")
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	assert.Contains(t, body, "This vehicle is no longer listed.")
}

func TestHandleVehicleImage(t *testing.T) {
	env := newTestEnv(t, nil)
	env.index.docs["a"] = civicHit("a")

	_, body := env.get(t, "/vehicle/a/image/1")
	assert.Contains(t, body, `src="https://img.example/2.jpg"`)
	assert.Contains(t, body, "2 / 3")

	_, body = env.get(t, "/vehicle/a/image/3")
	assert.Contains(t, body, "1 / 3")
}

func TestHandleVehicleReport(t *testing.T) {
	tests := []struct {
		name     string
		modify   func(*Deps)
		cookies  []*http.Cookie
		contains []string
	}{
		{
			name:     "anonymous sees market and locked report",
			contains: []string{"Median", "$12,000", "VIN history reports are included with paid plans."},
		},
		{
			name:     "paid plan sees decoded vin",
			cookies:  []*http.Cookie{authCookie(t, user.Subscription{Plan: user.PlanPro, Status: user.StatusActive})},
			contains: []string{"HONDA", "EX"},
		},
		{
			name: "upstream failures render inline",
			modify: func(d *Deps) {
				d.Reporter = fakeReporter{err: errors.New("vpic down")}
				d.Market = fakeMarket{err: errors.New("index down")}
			},
			cookies:  []*http.Cookie{authCookie(t, user.Subscription{Plan: user.PlanDealer, Status: user.StatusTrialing})},
			contains: []string{"Market comparison unavailable.", "Report unavailable."},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, tt.modify)
			env.index.docs["a"] = civicHit("a")

			resp, body := env.get(t, "/vehicle/a/report", tt.cookies...)
			require.Equal(t, fiber.StatusOK, resp.StatusCode)
			assert.Contains(t, body, `id="vehicleReport"`)
			for _, want := range tt.contains {
				assert.Contains(t, body, want)
			}
		})
	}
}

func TestHandleHistoryDelete(t *testing.T) {
	env := newTestEnv(t, nil)

	resp, _ := env.do(t, httptest.NewRequest(http.MethodDelete, "/history/7", nil))
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	resp, body := env.do(t, httptest.NewRequest(http.MethodDelete, "/history/7", nil), authCookie(t, user.Subscription{}))
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Empty(t, body)
	assert.Equal(t, []int{7}, env.history.deleted)
}

func TestHandleHistory(t *testing.T) {
	env := newTestEnv(t, nil)
	env.history.recent = []search.UserSearch{{ID: 1, QueryString: "f-150"}}

	_, body := env.get(t, "/history")
	assert.NotContains(t, body, "f-150")

	_, body = env.get(t, "/history", authCookie(t, user.Subscription{}))
	assert.Contains(t, body, "f-150")
	assert.Contains(t, body, `hx-delete="/history/1"`)
}

func TestHandleHealth(t *testing.T) {
	tests := []struct {
		name       string
		checks     []HealthCheck
		wantStatus int
		want       map[string]string
	}{
		{
			name: "all up",
			checks: []HealthCheck{
				{Name: "typesense", Check: func(context.Context) error { return nil }},
				{Name: "redis", Check: func(context.Context) error { return nil }},
			},
			wantStatus: fiber.StatusOK,
			want:       map[string]string{"status": "ok", "typesense": "up", "redis": "up"},
		},
		{
			name: "typesense down",
			checks: []HealthCheck{
				{Name: "typesense", Check: func(context.Context) error { return errors.New("refused") }},
				{Name: "database", Check: func(context.Context) error { return nil }},
			},
			wantStatus: fiber.StatusServiceUnavailable,
			want:       map[string]string{"status": "unhealthy", "typesense": "down", "database": "up"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, func(d *Deps) { d.Checks = tt.checks })

			resp, body := env.get(t, "/health")
			assert.Equal(t, tt.wantStatus, resp.StatusCode)

			var got map[string]any
			require.NoError(t, json.Unmarshal([]byte(body), &got))
			for k, v := range tt.want {
				assert.Equal(t, v, got[k], k)
			}
			assert.NotEmpty(t, got["caches"])
		})
	}
}

func TestRateLimiter(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: CustomErrorHandler})
	app.Use(RateLimiter(&config.Config{RateLimitMax: 2, RateLimitWindow: time.Minute}))
	app.Get("/", func(c *fiber.Ctx) error { return c.SendString("ok") })
	app.Get("/health", func(c *fiber.Ctx) error { return c.SendString("ok") })

	for i := 0; i < 2; i++ {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	}

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusTooManyRequests, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/health", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestCustomErrorHandler(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: CustomErrorHandler})
	app.Get("/teapot", func(c *fiber.Ctx) error { return fiber.NewError(fiber.StatusTeapot, "short and stout") })
	app.Get("/boom", func(c *fiber.Ctx) error { return errors.New("db password leaked") })

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/teapot", nil))
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, fiber.StatusTeapot, resp.StatusCode)
	assert.Contains(t, string(body), "short and stout")

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/boom", nil))
	require.NoError(t, err)
	body, _ = io.ReadAll(resp.Body)
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
	assert.NotContains(t, string(body), "password")
}
