package ui

import (
	"fmt"
	"time"

	g "maragu.dev/gomponents"
	hx "maragu.dev/gomponents-htmx"
	. "maragu.dev/gomponents/html"

	"github.com/deal-drive/site/filter"
	"github.com/deal-drive/site/geo"
	"github.com/deal-drive/site/search"
	"github.com/deal-drive/site/user"
)

// Results is what a results fragment needs to render one step of a stream.
type Results struct {
	State   filter.State
	Origin  *geo.Coordinate
	Session search.Session
	Hits    []search.Hit
	Err     string
	Now     time.Time
}

func SearchPage(auth user.Auth, sub user.Subscription, s filter.State, status geo.Status, recent []search.UserSearch) g.Node {
	return Page(
		"Deal Drive",
		auth,
		sub,
		[]g.Node{
			SearchWidget(s, status),
			g.If(auth.SignedIn(), RecentSearches(recent)),
			SearchResults(),
		},
	)
}

func searchBox(q string) g.Node {
	return Input(
		Class("w-full p-2 border rounded"),
		Type("search"),
		ID("searchBox"),
		Name(filter.ParamQuery),
		Value(q),
		Placeholder("Make, model or keyword"),
	)
}

// SearchWidget is the criteria form. Any change re-runs page one of the
// search; the server pushes the canonical URL.
func SearchWidget(s filter.State, status geo.Status) g.Node {
	return Form(
		ID("searchWidget"),
		Class("border rounded-lg p-4 flex flex-col gap-4"),
		hx.Get("/search"),
		hx.Target("#searchResults"),
		hx.Swap("outerHTML"),
		hx.Trigger("submit, change delay:300ms, search from:#searchBox, criteriaChanged from:body"),
		hx.Indicator("#indicator"),
		Div(
			Class("flex gap-2 items-center"),
			searchBox(s.Query),
			button("Search", Type("submit")),
		),
		filterControls(s, status),
		Div(
			Class("flex justify-end"),
			A(Href("/"), Class("text-sm text-blue-500 hover:underline"), g.Text("Clear filters")),
		),
	)
}

// SearchResults is the placeholder that loads page one on arrival.
func SearchResults() g.Node {
	return Div(
		ID("searchResults"),
		Class("mt-6"),
		hx.Get("/search"),
		hx.Trigger("load"),
		hx.Include("#searchWidget"),
		hx.Target("this"),
		hx.Swap("outerHTML"),
	)
}

// LoaderURL is the next-page URL of a stream generation. Requests to it
// carry the criteria form so cards can link back to the same search.
func LoaderURL(gen int64) string {
	return fmt.Sprintf("/search-page?gen=%d", gen)
}

func infiniteScrollTrigger(gen int64) g.Node {
	return Div(
		Class("h-4 col-span-full"),
		hx.Get(LoaderURL(gen)),
		hx.Trigger("revealed"),
		hx.Include("#searchWidget"),
		hx.Swap("outerHTML"),
	)
}

// BusySentinel stands in while another request fetches the same page.
func BusySentinel(gen int64) g.Node {
	return Div(
		Class("h-4 col-span-full"),
		hx.Get(LoaderURL(gen)),
		hx.Trigger("load delay:500ms"),
		hx.Include("#searchWidget"),
		hx.Swap("outerHTML"),
	)
}

func resultCount(total int) g.Node {
	noun := "vehicles"
	if total == 1 {
		noun = "vehicle"
	}
	return P(Class("text-sm text-gray-600 mb-4"), g.Text(printer.Sprintf("%d %s found", total, noun)))
}

func emptyState() g.Node {
	return Div(
		Class("flex justify-center items-center p-8"),
		Div(
			Class("text-center"),
			P(Class("text-gray-700 text-lg"), g.Text("No vehicles match your search")),
			P(Class("text-gray-500 text-sm mt-2"), g.Text("Try a broader keyword, a larger radius or fewer filters.")),
		),
	)
}

func endOfResults() g.Node {
	return Div(
		Class("col-span-full text-center text-sm text-gray-500 py-6"),
		g.Text("You've reached the end of the results."),
	)
}

func pageError(r Results) g.Node {
	return Div(
		Class("col-span-full flex flex-col items-center gap-2 py-4"),
		InlineError("We couldn't load more results. "+r.Err),
		buttonSecondary("Try again",
			hx.Get(LoaderURL(r.Session.Generation)),
			hx.Include("#searchWidget"),
			hx.Target("closest div"),
			hx.Swap("outerHTML"),
		),
	)
}

func cards(r Results) []g.Node {
	nodes := make([]g.Node, 0, len(r.Hits))
	for _, h := range r.Hits {
		nodes = append(nodes, ResultCard(h, r.State, r.Origin, r.Now))
	}
	return nodes
}

// tail is what follows the cards: the next-page sentinel, the end marker or
// an error.
func tail(r Results) g.Node {
	switch {
	case r.Err != "":
		return pageError(r)
	case r.Session.HasMore():
		return infiniteScrollTrigger(r.Session.Generation)
	case r.Session.Status == search.StatusExhausted:
		return endOfResults()
	default:
		return nil
	}
}

// ResultsFirstPage replaces the whole results container.
func ResultsFirstPage(r Results) g.Node {
	if r.Err != "" && len(r.Hits) == 0 {
		return Div(
			ID("searchResults"),
			Class("mt-6"),
			InlineError("Search is unavailable right now. "+r.Err),
		)
	}
	if r.Session.Status == search.StatusEmpty {
		return Div(ID("searchResults"), Class("mt-6"), emptyState())
	}
	return Div(
		ID("searchResults"),
		Class("mt-6"),
		resultCount(r.Session.Total),
		Div(
			ID("resultGrid"),
			Class("grid grid-cols-1 sm:grid-cols-2 lg:grid-cols-3 gap-4"),
			g.Group(cards(r)),
			tail(r),
		),
	)
}

// ResultsNextPage replaces the sentinel with the new cards and the next tail.
func ResultsNextPage(r Results) g.Node {
	nodes := cards(r)
	if t := tail(r); t != nil {
		nodes = append(nodes, t)
	}
	return g.Group(nodes)
}
