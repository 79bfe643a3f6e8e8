package common

import (
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode"

	"github.com/shopspring/decimal"
)

// DateLayout is how day, month and year tokens are joined before parsing.
const DateLayout = "02 01 2006"

var decimalLiteral = regexp.MustCompile(`^-?\d+(\.\d+)?$`)

// NormalizeAmount turns a statement amount such as "1 640,000" into an exact
// decimal. Spaces are thousands separators and the single comma is the
// decimal separator; printed fraction digits are preserved.
func NormalizeAmount(token string) (decimal.Decimal, error) {
	clean := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, token)

	if strings.Count(clean, ",") > 1 {
		return decimal.Zero, fmt.Errorf("%w: %q has more than one decimal comma", ErrInvalidAmount, token)
	}
	clean = strings.Replace(clean, ",", ".", 1)

	if !decimalLiteral.MatchString(clean) {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidAmount, token)
	}

	amount, err := decimal.NewFromString(clean)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q: %v", ErrInvalidAmount, token, err)
	}
	return amount, nil
}

// FormatAmount renders an amount the way the statement prints it:
// space-grouped thousands and a decimal comma, e.g. 1640 -> "1 640,000".
func FormatAmount(amount decimal.Decimal, places int32) string {
	fixed := amount.Abs().StringFixed(places)

	intPart, fracPart, _ := strings.Cut(fixed, ".")

	var b strings.Builder
	if amount.IsNegative() {
		b.WriteByte('-')
	}
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
	}
	if fracPart != "" {
		b.WriteByte(',')
		b.WriteString(fracPart)
	}
	return b.String()
}

// ParseDate parses a date string using a layout. Statement dates carry no
// zone, so they are pinned to UTC.
func ParseDate(layout, value string) (time.Time, error) {
	return time.ParseInLocation(layout, value, time.UTC)
}

// ComposeDate builds a calendar date from two-digit day and month tokens and
// a four-digit year token. Impossible dates such as 31 02 are rejected.
func ComposeDate(year, month, day string) (time.Time, error) {
	date, err := ParseDate(DateLayout, day+" "+month+" "+year)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s/%s/%s: %v", ErrInvalidDate, day, month, year, err)
	}
	return date, nil
}
