package ui

import (
	"fmt"
	"net/url"
	"strconv"
	"time"

	g "maragu.dev/gomponents"
	hx "maragu.dev/gomponents-htmx"
	. "maragu.dev/gomponents/html"

	"github.com/deal-drive/site/filter"
	"github.com/deal-drive/site/geo"
	"github.com/deal-drive/site/search"
	"github.com/deal-drive/site/user"
	"github.com/deal-drive/site/vehicle"
)

// Report is the content of the report fragment on a detail page.
type Report struct {
	Listing search.Hit
	Market  vehicle.Comparables
	// MarketErr is set when comparables could not be loaded.
	MarketErr bool
	Report    *vehicle.Report
	ReportErr bool
	// Locked is set when the viewer's plan does not include VIN reports.
	Locked bool
}

func backLink(s filter.State) g.Node {
	return A(
		Href(s.SearchURL()),
		Class("inline-flex items-center gap-1 text-blue-500 hover:underline mb-4"),
		icon("/images/left.svg", "Back", "w-4 h-4"),
		g.Text("Back to results"),
	)
}

func specRow(label, value string) g.Node {
	if value == "" {
		return nil
	}
	return Tr(
		Td(Class("py-1 pr-4 text-gray-500 whitespace-nowrap"), g.Text(label)),
		Td(Class("py-1 text-gray-900"), g.Text(value)),
	)
}

func yearText(year int) string {
	if year == 0 {
		return ""
	}
	return strconv.Itoa(year)
}

func sourceLink(h search.Hit) g.Node {
	if h.SourceLink == "" {
		return nil
	}
	label := "View original listing"
	if h.DataSource != "" {
		label = "View on " + filter.Source(h.DataSource).Label()
	}
	return A(
		Href(h.SourceLink),
		Target("_blank"),
		Rel("noopener noreferrer"),
		Class(buttonPrimaryClass+" mt-4"),
		g.Text(label),
	)
}

// VehicleDetailPage renders a listing. s is the search the visitor came
// from and only feeds the back link.
func VehicleDetailPage(auth user.Auth, sub user.Subscription, h search.Hit, s filter.State, origin *geo.Coordinate, now time.Time) g.Node {
	listed := ""
	if !h.ListedAt.IsZero() {
		listed = fmt.Sprintf("%s (%s)", h.ListedAt.Format("Jan 2, 2006"), FormatTimeAgo(h.ListedAt, now))
	}
	mileage := ""
	if h.HasMileage() {
		mileage = FormatMileage(h)
	}

	return Page(
		h.Title,
		auth,
		sub,
		[]g.Node{
			backLink(s),
			Div(
				Class("grid grid-cols-1 lg:grid-cols-2 gap-8"),
				Div(Class("rounded-lg overflow-hidden border"), Carousel(h, 0)),
				Div(
					H1(Class("text-3xl font-bold mb-2"), g.Text(h.Title)),
					P(Class("text-2xl text-green-700 font-semibold mb-4"), g.Text(FormatPrice(h.Price))),
					Table(
						Class("text-sm"),
						TBody(
							specRow("Year", yearText(h.Year)),
							specRow("Make", h.Make),
							specRow("Model", h.Model),
							specRow("Mileage", mileage),
							specRow("Color", h.Color),
							specRow("VIN", h.VIN),
							specRow("Location", h.Location),
							specRow("Distance", FormatDistance(origin, h)),
							specRow("Listed", listed),
						),
					),
					sourceLink(h),
				),
			),
			Div(
				ID("vehicleReport"),
				Class("mt-8"),
				hx.Get(fmt.Sprintf("/vehicle/%s/report", url.PathEscape(h.ID))),
				hx.Trigger("load"),
				hx.Swap("outerHTML"),
				P(Class("text-sm text-gray-500"), g.Text("Loading vehicle report...")),
			),
		},
	)
}

func marketSection(r Report) g.Node {
	var body g.Node
	switch {
	case r.MarketErr:
		body = notice("Market comparison unavailable.")
	case !r.Market.Known():
		body = notice("Not enough comparable listings to compare prices.")
	default:
		body = Div(
			Class("grid grid-cols-2 md:grid-cols-4 gap-4 text-sm"),
			stat("Comparables", printer.Sprintf("%d", r.Market.Count)),
			stat("Median", FormatPrice(r.Market.Median)),
			stat("Range", FormatPrice(r.Market.Min)+" - "+FormatPrice(r.Market.Max)),
			g.If(r.Listing.Price > 0, stat("This listing", FormatDelta(r.Market.Delta))),
		)
	}
	return Section(
		Class("mb-6"),
		H2(Class("text-xl font-semibold mb-2"), g.Text("Market comparison")),
		body,
	)
}

func stat(label, value string) g.Node {
	return Div(
		Class("border rounded p-3"),
		Div(Class("text-gray-500 text-xs"), g.Text(label)),
		Div(Class("font-semibold"), g.Text(value)),
	)
}

func vinSection(r Report) g.Node {
	var body g.Node
	switch {
	case r.Listing.VIN == "":
		body = notice("This listing does not include a VIN.")
	case r.Locked:
		body = notice("VIN history reports are included with paid plans.")
	case r.ReportErr || r.Report == nil:
		body = notice("Report unavailable.")
	default:
		rep := r.Report
		body = Div(
			Table(
				Class("text-sm"),
				TBody(
					specRow("Make", rep.Make),
					specRow("Model", rep.Model),
					specRow("Model year", yearText(rep.Year)),
					specRow("Trim", rep.Trim),
					specRow("Body", rep.BodyClass),
					specRow("Engine", rep.Engine()),
					specRow("Fuel", rep.FuelType),
					specRow("Drive", rep.DriveType),
					specRow("Transmission", rep.Transmission),
					specRow("Manufacturer", rep.Manufacturer),
					specRow("Assembled in", rep.PlantCountry),
				),
			),
			g.If(rep.Note != "", P(Class("text-xs text-gray-500 mt-2"), g.Text(rep.Note))),
		)
	}
	return Section(
		H2(Class("text-xl font-semibold mb-2"), g.Text("VIN report")),
		body,
	)
}

// ReportFragment replaces the loading placeholder on a detail page.
func ReportFragment(r Report) g.Node {
	return Div(
		ID("vehicleReport"),
		Class("mt-8"),
		marketSection(r),
		vinSection(r),
	)
}
