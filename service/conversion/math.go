package conversion

import (
	"strings"
	"time"

	"github.com/jinzhu/now"
	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
)

var hundred = decimal.NewFromInt(100)

// currencies outside ISO 4217 (mostly crypto) keep satoshi precision.
const defaultScale = 8

func currencyScale(code string) int32 {
	unit, err := currency.ParseISO(strings.ToUpper(code))
	if err != nil {
		return defaultScale
	}

	scale, _ := currency.Standard.Rounding(unit)
	return int32(scale)
}

// computeFee returns the fee rounded to the source currency precision and the
// amount left to convert.
func computeFee(amount, percentage decimal.Decimal, code string) (fee, net decimal.Decimal) {
	fee = amount.Mul(percentage).Div(hundred).Round(currencyScale(code))
	return fee, amount.Sub(fee)
}

// rateDifference is the signed percentage change of current relative to locked.
func rateDifference(current, locked decimal.Decimal) decimal.Decimal {
	return current.Sub(locked).Div(locked).Mul(hundred)
}

// addMonths adds whole calendar months, clamping the day to the last day of
// the target month: Jan 31 + 1 month is Feb 28 (or 29).
func addMonths(t time.Time, months int) time.Time {
	first := time.Date(t.Year(), t.Month()+time.Month(months), 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	last := now.With(first).EndOfMonth().Day()
	return first.AddDate(0, 0, min(t.Day(), last)-1)
}
