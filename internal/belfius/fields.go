package belfius

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	postalCityPattern = regexp.MustCompile(`^(\d+)\s+(.+)$`)
	refPattern        = regexp.MustCompile(`REF\.\s*:\s*(\S+)`)
	payconiqPattern   = regexp.MustCompile(`Payconiq\s+([0-9a-fA-F]+)`)
)

// ParseDate converts a Belfius DD/MM/YYYY date to canonical YYYY-MM-DD form.
// It requires three numeric slash-separated components with day in [1,31]
// and month in [1,12], nothing more: 31/02/2024 passes, matching the
// behavior of the exports this was built against.
func ParseDate(input string) (string, bool) {
	input = strings.TrimSpace(input)
	if input == "" {
		return "", false
	}

	parts := strings.Split(input, "/")
	if len(parts) != 3 {
		return "", false
	}

	day, err := strconv.Atoi(parts[0])
	if err != nil {
		return "", false
	}
	month, err := strconv.Atoi(parts[1])
	if err != nil {
		return "", false
	}
	year, err := strconv.Atoi(parts[2])
	if err != nil {
		return "", false
	}

	if day < 1 || day > 31 || month < 1 || month > 12 {
		return "", false
	}

	return fmt.Sprintf("%04d-%02d-%02d", year, month, day), true
}

// ParseAmount parses a decimal-comma amount like "-12,30". Every character
// that is not a digit, comma, period or minus sign is stripped, then commas
// become periods. Anything the decimal parser still rejects (including
// thousands separators left behind, e.g. "1.234,56") reports false.
func ParseAmount(input string) (decimal.Decimal, bool) {
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case r >= '0' && r <= '9':
			return r
		case r == ',' || r == '.' || r == '-':
			return r
		}
		return -1
	}, input)
	cleaned = strings.ReplaceAll(cleaned, ",", ".")

	if cleaned == "" {
		return decimal.Decimal{}, false
	}

	amount, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Decimal{}, false
	}
	return amount, true
}

// ParsePostalCodeCity splits a combined "2600 BERCHEM" field into postal
// code and city. Input without a leading digit run is all city; blank input
// yields two empty strings. Empty means absent.
func ParsePostalCodeCity(input string) (postalCode, city string) {
	input = strings.TrimSpace(input)
	if input == "" {
		return "", ""
	}

	m := postalCityPattern.FindStringSubmatch(input)
	if m == nil {
		return "", input
	}
	return m[1], strings.TrimSpace(m[2])
}

// ExtractReference scans free-text transaction details for a structured
// reference: a "REF. :" marker first, then a "Payconiq <hex>" marker.
// Returns "" when neither is present.
func ExtractReference(description string) string {
	if m := refPattern.FindStringSubmatch(description); m != nil {
		return m[1]
	}
	if m := payconiqPattern.FindStringSubmatch(description); m != nil {
		return m[1]
	}
	return ""
}
