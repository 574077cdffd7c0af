package scraper

import (
	"log/slog"
	"strconv"
	"strings"
	"time"
	"unicode"
)

// parseNumber extracts a non-negative integer from marketplace text such as
// "45 000 km" or "45.000". Returns 0 when no digits are present.
func parseNumber(s string) int {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return 0
	}
	n, err := strconv.Atoi(b.String())
	if err != nil {
		return 0
	}
	return n
}

// parsePrice extracts a price from text such as "7 500 €" or "7500,00 €".
// A trailing two-digit decimal part is dropped; listing sites quote whole
// euros, while "1.500" style thousands separators keep all digits.
func parsePrice(s string) float64 {
	if i := strings.LastIndexAny(s, ",."); i >= 0 {
		digits := 0
		decimal := true
		for _, r := range s[i+1:] {
			switch {
			case unicode.IsDigit(r):
				digits++
			case unicode.IsSpace(r) || r == '€':
			default:
				decimal = false
			}
		}
		if decimal && digits == 2 {
			s = s[:i]
		}
	}
	return float64(parseNumber(s))
}

// parseYear extracts a plausible model year from text. It looks for the first
// four-digit run between 1900 and the next calendar year.
func parseYear(s string) int {
	digits := 0
	start := -1
	for i, r := range s {
		if unicode.IsDigit(r) {
			if digits == 0 {
				start = i
			}
			digits++
			if digits == 4 {
				year, _ := strconv.Atoi(s[start : i+1])
				if year >= 1900 && year <= time.Now().Year()+1 {
					return year
				}
				digits = 0
			}
		} else {
			digits = 0
		}
	}
	return 0
}

// parseDate parses a posting date using the site's format, falling back to a
// handful of common layouts and finally to the current time.
func parseDate(dateStr string, format string) time.Time {
	if dateStr == "" {
		return time.Now()
	}

	if format == "" {
		format = "02/01/2006"
	}

	if t, err := time.Parse(format, dateStr); err == nil {
		return t
	}

	fallbacks := []string{
		"2006-01-02",
		time.RFC3339,
		"02/01/2006",
		"2 Jan 2006",
	}
	for _, layout := range fallbacks {
		if t, err := time.Parse(layout, dateStr); err == nil {
			return t
		}
	}

	slog.Debug("failed to parse posting date, using current time",
		slog.String("date_str", dateStr),
		slog.String("format", format))
	return time.Now()
}
