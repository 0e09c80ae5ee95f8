package ui

import (
	"strings"

	g "maragu.dev/gomponents"
	. "maragu.dev/gomponents/html"

	"github.com/deal-drive/site/user"
)

func userInitial(auth user.Auth) string {
	name := []rune(auth.DisplayName())
	return strings.ToUpper(string(name[0]))
}

func indicator() g.Node {
	return Div(
		ID("indicator"),
		Class("htmx-indicator flex items-center gap-2 text-blue-600"),
		Div(
			Class("w-4 h-4 border-2 border-blue-600 border-t-transparent rounded-full animate-spin"),
		),
		g.Text("Loading..."),
	)
}

func planBadge(sub user.Subscription) g.Node {
	if !sub.Paid() {
		return nil
	}
	return Span(
		Class("px-2 py-0.5 rounded-full text-xs font-medium bg-green-100 text-green-800 uppercase"),
		g.Text(sub.Plan),
	)
}

func navSignedIn(auth user.Auth, sub user.Subscription) g.Node {
	return Div(
		Class("flex items-center gap-3"),
		planBadge(sub),
		Span(Class("text-sm text-gray-700 hidden md:inline"), g.Text(auth.DisplayName())),
		Span(
			Class("bg-red-500 text-white rounded-full w-8 h-8 flex items-center justify-center font-semibold text-sm"),
			Title(auth.Email),
			g.Text(userInitial(auth)),
		),
	)
}

func navigation(auth user.Auth, sub user.Subscription) g.Node {
	return Nav(
		Class("mb-8 border-b pb-4 flex items-center justify-between w-full"),
		A(Href("/"), Class("text-xl font-bold"), g.Text("Deal Drive")),
		indicator(),
		g.If(auth.SignedIn(), navSignedIn(auth, sub)),
	)
}
