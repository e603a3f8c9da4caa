package sync

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"mirror/internal/woocommerce"
)

// The shop encodes the travel date of a product as the trailing six digits
// of its SKU (DDMMYY). The derived date only groups products on a calendar
// view and is never consistency-critical.

// ParseSKUDate derives a calendar date from a DDMMYY SKU suffix. SKUs that
// are too short or whose suffix is not all digits yield no date.
func ParseSKUDate(sku string) (time.Time, bool) {
	if len(sku) < 6 {
		return time.Time{}, false
	}
	suffix := sku[len(sku)-6:]
	for _, r := range suffix {
		if r < '0' || r > '9' {
			return time.Time{}, false
		}
	}

	day, _ := strconv.Atoi(suffix[0:2])
	month, _ := strconv.Atoi(suffix[2:4])
	year, _ := strconv.Atoi(suffix[4:6])

	date := time.Date(2000+year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	// time.Date normalizes out-of-range components; reject anything that
	// did not round-trip.
	if date.Day() != day || int(date.Month()) != month {
		return time.Time{}, false
	}
	return date, true
}

// dateKeywords mark attribute names that carry a travel date, in the shop's
// language and in English.
var dateKeywords = []string{"data", "date", "giorno"}

var monthNames = map[string]time.Month{
	"gennaio":   time.January,
	"febbraio":  time.February,
	"marzo":     time.March,
	"aprile":    time.April,
	"maggio":    time.May,
	"giugno":    time.June,
	"luglio":    time.July,
	"agosto":    time.August,
	"settembre": time.September,
	"ottobre":   time.October,
	"novembre":  time.November,
	"dicembre":  time.December,
	"january":   time.January,
	"february":  time.February,
	"march":     time.March,
	"april":     time.April,
	"may":       time.May,
	"june":      time.June,
	"july":      time.July,
	"august":    time.August,
	"september": time.September,
	"october":   time.October,
	"november":  time.November,
	"december":  time.December,
}

var dayMonthYearPattern = regexp.MustCompile(`(\d{1,2})\s+(\p{L}+)\s+(\d{4})`)

var directLayouts = []string{"2006-01-02", "02/01/2006", "02-01-2006"}

// parseTextDate attempts a direct layout parse of value, then a
// "<day> <month-name> <year>" match against the localized month table.
func parseTextDate(value string) (time.Time, bool) {
	trimmed := strings.TrimSpace(value)
	for _, layout := range directLayouts {
		if parsed, err := time.Parse(layout, trimmed); err == nil {
			return parsed, true
		}
	}

	match := dayMonthYearPattern.FindStringSubmatch(trimmed)
	if match == nil {
		return time.Time{}, false
	}
	month, ok := monthNames[strings.ToLower(match[2])]
	if !ok {
		return time.Time{}, false
	}
	day, _ := strconv.Atoi(match[1])
	year, _ := strconv.Atoi(match[3])

	date := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	if date.Day() != day {
		return time.Time{}, false
	}
	return date, true
}

// variationEventDate infers a variation's travel date from its attribute
// bag, falling back to the SKU suffix rule when no attribute matches.
func variationEventDate(attributes []woocommerce.Attribute, sku string) *time.Time {
	for _, attr := range attributes {
		name := strings.ToLower(attr.Name)
		for _, keyword := range dateKeywords {
			if strings.Contains(name, keyword) {
				if date, ok := parseTextDate(attr.Option); ok {
					return &date
				}
			}
		}
	}
	if date, ok := ParseSKUDate(sku); ok {
		return &date
	}
	return nil
}

// productEventDate infers a product's travel date from its SKU suffix.
func productEventDate(sku string) *time.Time {
	if date, ok := ParseSKUDate(sku); ok {
		return &date
	}
	return nil
}
