package ui

import (
	g "maragu.dev/gomponents"
	. "maragu.dev/gomponents/html"
)

// icon creates a standardized icon image
func icon(iconSrc, alt string, classes ...string) g.Node {
	class := "w-6 h-6 inline align-middle"
	for _, c := range classes {
		class += " " + c
	}

	return Img(
		Src(iconSrc),
		Alt(alt),
		Class(class),
	)
}

// iconButton creates a round overlay button around an icon
func iconButton(iconSrc, alt string, class string, attrs ...g.Node) g.Node {
	return Button(
		Type("button"),
		Class("bg-white/50 rounded-full w-10 h-10 flex items-center justify-center shadow-lg hover:bg-white/60 focus:outline-none cursor-pointer "+class),
		Title(alt),
		g.Group(attrs),
		icon(iconSrc, alt),
	)
}
