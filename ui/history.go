package ui

import (
	"fmt"

	g "maragu.dev/gomponents"
	hx "maragu.dev/gomponents-htmx"
	. "maragu.dev/gomponents/html"

	"github.com/deal-drive/site/filter"
	"github.com/deal-drive/site/search"
)

func recentSearchURL(q string) string {
	s := filter.Default()
	s.SetQuery(q)
	return s.SearchURL()
}

// RecentSearches lists a signed-in user's latest queries as quick links. It
// reloads itself after each recorded search.
func RecentSearches(recent []search.UserSearch) g.Node {
	var items []g.Node
	for _, us := range recent {
		items = append(items, Li(
			Class("inline-flex items-center gap-1 px-3 py-1 rounded-full bg-gray-100 text-sm"),
			A(Href(recentSearchURL(us.QueryString)), Class("hover:underline"), g.Text(us.QueryString)),
			Button(
				Type("button"),
				Class("text-gray-400 hover:text-gray-700"),
				Title("Remove"),
				hx.Delete(fmt.Sprintf("/history/%d", us.ID)),
				hx.Target("closest li"),
				hx.Swap("outerHTML"),
				g.Text("×"),
			),
		))
	}

	return Div(
		ID("recentSearches"),
		Class("mt-4"),
		hx.Get("/history"),
		hx.Trigger("historyChanged from:body"),
		hx.Swap("outerHTML"),
		g.If(len(items) > 0, Div(
			Span(Class("text-xs text-gray-500 mr-2"), g.Text("Recent:")),
			Ul(Class("inline-flex flex-wrap gap-2"), g.Group(items)),
		)),
	)
}
