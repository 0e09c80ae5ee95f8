package ui

import (
	"fmt"
	"slices"
	"strconv"

	g "maragu.dev/gomponents"
	hx "maragu.dev/gomponents-htmx"
	. "maragu.dev/gomponents/html"

	"github.com/deal-drive/site/filter"
	"github.com/deal-drive/site/geo"
)

var mileageOptions = []int{25000, 50000, 75000, 100000, 125000, 150000, 175000}

func filterControls(s filter.State, status geo.Status) g.Node {
	return Div(
		Class("grid grid-cols-1 md:grid-cols-3 gap-4 mt-4"),
		LocationPanel(s, status),
		priceFilter(s.PriceMin, s.PriceMax),
		yearFilter(s.YearMin, s.YearMax),
		mileageFilter(s.MaxMileage),
		sortFilter(s.Sort),
		dataSourceFilter(s),
	)
}

func filterLabel(text string) g.Node {
	return Label(Class("block text-sm font-medium mb-1"), g.Text(text))
}

// LocationPanel renders the distance filter and the on-demand location
// lookup. It is swapped as a whole by the /location handlers.
func LocationPanel(s filter.State, status geo.Status) g.Node {
	return Div(
		ID("locationPanel"),
		Class("md:col-span-3 border rounded-md p-3"),
		Label(
			Class("flex items-center gap-2 text-sm font-medium"),
			Input(
				Type("checkbox"),
				Name(filter.ParamLocationEnabled),
				Value("true"),
				g.If(s.LocationEnabled, Checked()),
				hx.Post("/location/toggle"),
				hx.Include("#searchWidget"),
				hx.Target("#locationPanel"),
				hx.Swap("outerHTML"),
			),
			g.Text("Limit to distance from me"),
		),
		g.If(s.LocationEnabled, radiusFilter(s.RadiusMiles)),
		g.If(!s.LocationEnabled, Input(Type("hidden"), Name(filter.ParamRadius), Value(strconv.Itoa(s.RadiusMiles)))),
		g.If(s.LocationEnabled, locationStatus(status)),
	)
}

func radiusFilter(miles int) g.Node {
	return Div(
		Class("mt-2"),
		Label(
			Class("block text-sm mb-1"),
			g.Text("Radius: "),
			Span(ID("radiusValue"), g.Textf("%d mi", miles)),
		),
		Input(
			Type("range"),
			Name(filter.ParamRadius),
			ID("radiusFilter"),
			Class("w-full"),
			Min(strconv.Itoa(filter.MinRadius)),
			Max(strconv.Itoa(filter.MaxRadius)),
			Step(strconv.Itoa(filter.RadiusStep)),
			Value(strconv.Itoa(miles)),
			g.Attr("oninput", "document.getElementById('radiusValue').textContent = this.value + ' mi'"),
		),
	)
}

func locationRequestButton(text string) g.Node {
	return buttonSecondary(text,
		hx.Post("/location/request"),
		hx.Include("#searchWidget"),
		hx.Target("#locationPanel"),
		hx.Swap("outerHTML"),
	)
}

func locationStatus(status geo.Status) g.Node {
	switch status.State {
	case geo.Loading:
		return Div(
			Class("mt-2 text-sm text-gray-600"),
			g.Text("Finding your location..."),
			geolocationScript(),
		)
	case geo.Resolved:
		return Div(
			Class("mt-2 flex items-center gap-3 text-sm text-gray-600"),
			Span(g.Text("Using your current location")),
			locationRequestButton("Update"),
		)
	case geo.Failed:
		return Div(
			Class("mt-2 flex flex-col gap-2"),
			InlineError(geo.Message(status.Err)),
			Div(locationRequestButton("Try again")),
		)
	default:
		return Div(
			Class("mt-2 flex items-center gap-3 text-sm text-gray-600"),
			locationRequestButton("Use my location"),
			Span(g.Text("Distance filtering starts once your location is known.")),
		)
	}
}

// geolocationScript asks the browser for one position and posts the
// outcome back. It runs when htmx swaps the loading panel in.
func geolocationScript() g.Node {
	return Script(g.Raw(`(function () {
  var form = document.getElementById('searchWidget');
  function send(values) {
    values.locationEnabled = 'true';
    var radius = form && form.querySelector('[name=radius]');
    if (radius) { values.radius = radius.value; }
    htmx.ajax('POST', '/location', {target: '#locationPanel', swap: 'outerHTML', values: values});
  }
  if (!navigator.geolocation) { send({code: 2}); return; }
  navigator.geolocation.getCurrentPosition(
    function (p) { send({lat: p.coords.latitude, lng: p.coords.longitude}); },
    function (e) { send({code: e.code}); },
    {timeout: 10000, maximumAge: 300000}
  );
})();`))
}

func priceFilter(minPrice, maxPrice int) g.Node {
	value := func(v int) g.Node {
		if v <= 0 {
			return nil
		}
		return Value(strconv.Itoa(v))
	}
	return Div(
		filterLabel("Price Range"),
		Div(
			Class("flex gap-2 flex-nowrap"),
			Input(
				Type("number"),
				Name(filter.ParamMinPrice),
				Class("w-28 flex-shrink-0 p-2 border rounded-md"),
				Placeholder("Min $"),
				Min("0"),
				Step("100"),
				value(minPrice),
			),
			Input(
				Type("number"),
				Name(filter.ParamMaxPrice),
				Class("w-28 flex-shrink-0 p-2 border rounded-md"),
				Placeholder("Max $"),
				Min("0"),
				Step("100"),
				value(maxPrice),
			),
		),
	)
}

func yearOptions(selected int) []g.Node {
	var options []g.Node
	for y := filter.CurrentYear(); y >= filter.MinYear; y-- {
		options = append(options, Option(Value(strconv.Itoa(y)), g.Text(strconv.Itoa(y)), g.If(y == selected, Selected())))
	}
	return options
}

func yearFilter(minYear, maxYear int) g.Node {
	return Div(
		filterLabel("Year Range"),
		Div(
			Class("flex gap-2 flex-nowrap items-center"),
			Select(
				Name(filter.ParamMinYear),
				Class("p-2 border rounded-md"),
				g.Group(yearOptions(minYear)),
			),
			Span(g.Text("to")),
			Select(
				Name(filter.ParamMaxYear),
				Class("p-2 border rounded-md"),
				g.Group(yearOptions(maxYear)),
			),
		),
	)
}

func mileageFilter(maxMileage int) g.Node {
	options := []g.Node{
		Option(Value(strconv.Itoa(filter.MaxMileageAny)), g.Text("Any mileage"), g.If(maxMileage >= filter.MaxMileageAny, Selected())),
	}
	for _, m := range mileageOptions {
		options = append(options, Option(
			Value(strconv.Itoa(m)),
			g.Text(printer.Sprintf("Under %d mi", m)),
			g.If(maxMileage == m, Selected()),
		))
	}
	if maxMileage < filter.MaxMileageAny && !slices.Contains(mileageOptions, maxMileage) {
		options = append(options, Option(
			Value(strconv.Itoa(maxMileage)),
			g.Text(printer.Sprintf("Under %d mi", maxMileage)),
			Selected(),
		))
	}
	return Div(
		filterLabel("Mileage"),
		Select(
			Name(filter.ParamMaxMileage),
			Class("w-full p-2 border rounded-md"),
			g.Group(options),
		),
	)
}

func sortLabel(s filter.Sort) string {
	switch s {
	case filter.Newest:
		return "Newest first"
	case filter.Oldest:
		return "Oldest first"
	default:
		return "Best match"
	}
}

func sortFilter(current filter.Sort) g.Node {
	var options []g.Node
	for _, s := range filter.Sorts {
		options = append(options, Option(Value(string(s)), g.Text(sortLabel(s)), g.If(s == current, Selected())))
	}
	return Div(
		filterLabel("Sort"),
		Select(
			Name(filter.ParamSort),
			Class("w-full p-2 border rounded-md"),
			g.Group(options),
		),
	)
}

// dataSourceFilter renders one checkbox per source. The last selected
// source cannot be unchecked; it is rendered disabled and still submitted.
func dataSourceFilter(s filter.State) g.Node {
	selected := 0
	for _, src := range filter.Sources {
		if s.HasSource(src) {
			selected++
		}
	}

	var boxes []g.Node
	for _, src := range filter.Sources {
		on := s.HasSource(src)
		locked := on && selected == 1
		boxes = append(boxes, Label(
			Class("flex items-center gap-2 text-sm"),
			Input(
				Type("checkbox"),
				Name(filter.ParamDataSources),
				Value(string(src)),
				ID(fmt.Sprintf("source-%s", src)),
				g.If(on, Checked()),
				g.If(locked, Disabled()),
			),
			g.If(locked, Input(Type("hidden"), Name(filter.ParamDataSources), Value(string(src)))),
			g.Text(src.Label()),
		))
	}
	return Div(
		filterLabel("Sources"),
		Div(Class("flex flex-col gap-1"), g.Group(boxes)),
	)
}
