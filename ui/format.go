package ui

import (
	"fmt"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/deal-drive/site/geo"
	"github.com/deal-drive/site/search"
)

var printer = message.NewPrinter(language.English)

// FormatPrice renders a listing price, e.g. "$12,500".
func FormatPrice(price int) string {
	if price <= 0 {
		return "Price not listed"
	}
	return printer.Sprintf("$%d", price)
}

// FormatMileage renders odometer miles, e.g. "45,000 mi".
func FormatMileage(h search.Hit) string {
	if !h.HasMileage() {
		return "Mileage N/A"
	}
	return printer.Sprintf("%d mi", h.Mileage)
}

// FormatDistance renders the distance from origin to the listing, or ""
// when either end is unknown.
func FormatDistance(origin *geo.Coordinate, h search.Hit) string {
	if origin == nil || h.Geo == nil {
		return ""
	}
	return printer.Sprintf("%.1f mi", geo.DistanceMiles(*origin, *h.Geo))
}

// FormatTimeAgo renders how long ago a listing was posted relative to now.
func FormatTimeAgo(t, now time.Time) string {
	if t.IsZero() {
		return ""
	}
	d := now.Sub(t)
	switch {
	case d < time.Minute:
		return "Just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	case d < 30*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	default:
		return t.Format("Jan 2, 2006")
	}
}

// FormatDelta renders a price difference against the market median.
func FormatDelta(delta int) string {
	switch {
	case delta > 0:
		return printer.Sprintf("$%d above median", delta)
	case delta < 0:
		return printer.Sprintf("$%d below median", -delta)
	default:
		return "At median"
	}
}
