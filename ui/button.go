package ui

import (
	g "maragu.dev/gomponents"
	. "maragu.dev/gomponents/html"
)

// ---- Button Components ----

const (
	buttonPrimaryClass   = "px-4 py-2 rounded inline-block bg-blue-500 text-white hover:bg-blue-600"
	buttonSecondaryClass = "px-4 py-2 rounded inline-block border border-blue-500 text-blue-500 hover:bg-blue-50"
)

// button creates a primary button; attrs carry its type and htmx wiring.
func button(text string, attrs ...g.Node) g.Node {
	return Button(Class(buttonPrimaryClass), g.Group(attrs), g.Text(text))
}

func buttonSecondary(text string, attrs ...g.Node) g.Node {
	return Button(Type("button"), Class(buttonSecondaryClass), g.Group(attrs), g.Text(text))
}

func buttonLink(text, href string) g.Node {
	return A(Href(href), Class(buttonPrimaryClass), g.Text(text))
}
