package ui

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	g "maragu.dev/gomponents"
	hx "maragu.dev/gomponents-htmx"
	. "maragu.dev/gomponents/html"

	"github.com/deal-drive/site/filter"
	"github.com/deal-drive/site/geo"
	"github.com/deal-drive/site/search"
)

// domID makes a listing id safe to use in element ids and selectors.
func domID(id string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '-'
		}
	}, id)
}

func carouselID(h search.Hit) string {
	return "carousel-" + domID(h.ID)
}

// ImageURL is the carousel endpoint for one image of a listing.
func ImageURL(id string, idx int) string {
	return fmt.Sprintf("/vehicle/%s/image/%d", url.PathEscape(id), idx)
}

func noImage() g.Node {
	return Div(
		Class("flex items-center justify-center aspect-[4/3] bg-gray-100 text-gray-400 text-sm"),
		g.Text("No Image"),
	)
}

// Carousel renders image idx of a listing with previous and next controls
// that swap the carousel in place.
func Carousel(h search.Hit, idx int) g.Node {
	n := len(h.Images)
	if n == 0 {
		return Div(ID(carouselID(h)), noImage())
	}
	idx = ((idx % n) + n) % n

	return Div(
		ID(carouselID(h)),
		Class("relative group bg-gray-100"),
		Img(
			Class("object-cover w-full aspect-[4/3]"),
			Src(h.Images[idx]),
			Alt(fmt.Sprintf("%s, image %d", h.Title, idx+1)),
			g.Attr("loading", "lazy"),
		),
		g.If(n > 1, carouselNavButtons(h, idx)),
	)
}

func carouselNavButtons(h search.Hit, idx int) g.Node {
	n := len(h.Images)
	prevIdx := (idx - 1 + n) % n
	nextIdx := (idx + 1) % n
	target := "#" + carouselID(h)

	return Div(
		iconButton("/images/left.svg", "Previous", "absolute left-2 top-1/2 -translate-y-1/2 z-20 md:opacity-0 md:group-hover:opacity-100",
			hx.Get(ImageURL(h.ID, prevIdx)),
			hx.Target(target),
			hx.Swap("outerHTML"),
		),
		iconButton("/images/right.svg", "Next", "absolute right-2 top-1/2 -translate-y-1/2 z-20 md:opacity-0 md:group-hover:opacity-100",
			hx.Get(ImageURL(h.ID, nextIdx)),
			hx.Target(target),
			hx.Swap("outerHTML"),
		),
		Span(
			Class("absolute bottom-2 right-2 bg-black/60 text-white text-xs px-2 py-0.5 rounded"),
			g.Textf("%d / %d", idx+1, n),
		),
	)
}

func sourceBadge(h search.Hit) g.Node {
	if h.DataSource == "" {
		return nil
	}
	return Span(
		Class("px-2 py-0.5 rounded-full text-xs bg-blue-50 text-blue-700"),
		g.Text(filter.Source(h.DataSource).Label()),
	)
}

func locationLine(h search.Hit, origin *geo.Coordinate) g.Node {
	distance := FormatDistance(origin, h)
	if h.Location == "" && distance == "" {
		return nil
	}
	text := h.Location
	if distance != "" {
		if text != "" {
			text += " · "
		}
		text += distance
	}
	return Div(Class("text-xs text-gray-500 truncate"), g.Text(text))
}

// ResultCard renders one hit. The title links to the detail page carrying
// the current criteria so the back link restores them.
func ResultCard(h search.Hit, s filter.State, origin *geo.Coordinate, now time.Time) g.Node {
	return Div(
		ID("listing-"+domID(h.ID)),
		Class("border rounded-lg shadow-sm bg-white flex flex-col overflow-hidden hover:shadow-md transition-shadow"),
		Carousel(h, 0),
		Div(
			Class("p-3 flex flex-col gap-1"),
			A(
				Href(s.DetailURL(h.ID)),
				Class("font-semibold text-base truncate hover:underline"),
				g.Text(h.Title),
			),
			Div(
				Class("flex items-center justify-between"),
				Span(Class("text-green-700 font-medium"), g.Text(FormatPrice(h.Price))),
				Span(Class("text-sm text-gray-600"), g.Text(FormatMileage(h))),
			),
			locationLine(h, origin),
			Div(
				Class("flex items-center justify-between text-xs text-gray-400"),
				Span(g.Text(FormatTimeAgo(h.ListedAt, now))),
				sourceBadge(h),
			),
		),
	)
}
