package ui

import (
	"fmt"
	"net/http"

	g "maragu.dev/gomponents"
	. "maragu.dev/gomponents/html"

	"github.com/deal-drive/site/user"
)

// ---- Message Components ----

func InlineError(message string) g.Node {
	return Div(
		Class("bg-red-100 border border-red-300 text-red-700 px-4 py-3 rounded"),
		Role("alert"),
		g.Text(message),
	)
}

func notice(message string) g.Node {
	return Div(
		Class("bg-gray-50 border border-gray-200 text-gray-600 px-4 py-3 rounded text-sm"),
		g.Text(message),
	)
}

func ErrorPage(code int, message string) g.Node {
	title := fmt.Sprintf("Error %d", code)
	if text := http.StatusText(code); text != "" {
		title = fmt.Sprintf("%d %s", code, text)
	}
	return Page(
		title,
		user.Auth{},
		user.Subscription{},
		[]g.Node{
			pageHeader(title),
			P(Class("mb-6"), g.Text(message)),
			buttonLink("Back to search", "/"),
		},
	)
}

// EmptyResponse returns an empty div for HTMX responses that don't need content
func EmptyResponse() g.Node {
	return Div()
}
