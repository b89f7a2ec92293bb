package domain

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// Digits with an optional one or two digit fraction. Signs and exponents are not fees.
var feePattern = regexp.MustCompile(`^[0-9]*(\.[0-9]{1,2})?$`)

var maxDailyFee = decimal.New(int64(MaxDailyFeeCents), -2)

// ParseFee converts a decimal string such as "1.99" or "2" into cents.
// At most two fraction digits are accepted.
func ParseFee(s string) (int32, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, invalidf("daily fee is required")
	}
	if strings.HasPrefix(s, "-") {
		return 0, invalidf("daily fee cannot be negative")
	}
	if !feePattern.MatchString(s) {
		return 0, invalidf("daily fee must be a decimal with at most two decimal places, got %q", s)
	}

	fee, err := decimal.NewFromString(s)
	if err != nil {
		return 0, invalidf("invalid daily fee %q", s)
	}
	if fee.GreaterThan(maxDailyFee) {
		return 0, invalidf("daily fee must be between 0.00 and 999.99")
	}
	return int32(fee.Shift(2).IntPart()), nil
}

// FormatFee renders cents with exactly two fraction digits.
func FormatFee(cents int32) string {
	return decimal.New(int64(cents), -2).StringFixed(2)
}
