package series

import (
	"fmt"
	"strings"
	"time"

	"github.com/goodsign/monday"
)

// DateLayouts are tried in order when parsing a sample date.
var DateLayouts = []string{
	time.DateOnly,
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01",
}

// ParseDate parses an ISO-8601 date or timestamp. Date-only values are UTC
// midnight.
func ParseDate(raw string) (time.Time, error) {
	for _, layout := range DateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, raw)
}

// DisplayLayout is the month/year label used on chart axes.
const DisplayLayout = "Jan 2006"

// DisplayDate renders t as a localized month/year label, e.g. "janv. 2023"
// for monday.LocaleFrFR or "Jan 2023" for monday.LocaleEnUS.
func DisplayDate(t time.Time, locale monday.Locale) string {
	return Format(t, DisplayLayout, locale)
}

// frShortMonths are the abbreviated French month names with their
// abbreviation points, as in "janv." and "déc.". Months written in full
// are absent.
var frShortMonths = map[time.Month]string{
	time.January:   "janv.",
	time.February:  "févr.",
	time.April:     "avr.",
	time.July:      "juil.",
	time.September: "sept.",
	time.October:   "oct.",
	time.November:  "nov.",
	time.December:  "déc.",
}

// Format is monday.Format, except that French short month names keep their
// abbreviation point. layout must contain "Jan" at most once.
func Format(t time.Time, layout string, locale monday.Locale) string {
	out := monday.Format(t, layout, locale)
	if locale != monday.LocaleFrFR && locale != monday.LocaleFrCA {
		return out
	}
	dotted, ok := frShortMonths[t.Month()]
	if !ok || !strings.Contains(layout, "Jan") || strings.Contains(layout, "January") {
		return out
	}
	bare := strings.TrimSuffix(dotted, ".")
	return strings.Replace(out, bare, dotted, 1)
}

// ParseLocale maps a short language code to a display locale. Unknown codes
// fall back to French, the dashboard's default language.
func ParseLocale(code string) monday.Locale {
	switch code {
	case "en", "en_US", "en-US":
		return monday.LocaleEnUS
	case "en_GB", "en-GB":
		return monday.LocaleEnGB
	case "de", "de_DE":
		return monday.LocaleDeDE
	case "es", "es_ES":
		return monday.LocaleEsES
	default:
		return monday.LocaleFrFR
	}
}
