package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tier is the membership level derived from spend and purchase recency.
type Tier string

const (
	TierBronze       Tier = "Bronze"
	TierGold         Tier = "Gold"
	TierPlatinum     Tier = "Platinum"
	TierInvalidSpend Tier = "Invalid Spend"
)

const (
	platinumWindowMonths = 6
	goldWindowMonths     = 12
)

var (
	goldThreshold     = decimal.NewFromInt(1000)
	platinumThreshold = decimal.NewFromInt(10000)
)

func (t Tier) String() string {
	return string(t)
}

// CalculateTier maps spend and last purchase to a tier relative to now.
// A nil spend or negative spend yields TierInvalidSpend. Recency windows are
// exclusive: a purchase exactly N months before now is outside the window.
func CalculateTier(spend *decimal.Decimal, lastPurchase *time.Time, now time.Time) Tier {
	if spend == nil || spend.IsNegative() {
		return TierInvalidSpend
	}

	if spend.GreaterThanOrEqual(platinumThreshold) {
		if purchasedAfter(lastPurchase, MinusMonths(now, platinumWindowMonths)) {
			return TierPlatinum
		}
		return TierBronze
	}

	if spend.GreaterThanOrEqual(goldThreshold) && purchasedAfter(lastPurchase, MinusMonths(now, goldWindowMonths)) {
		return TierGold
	}

	return TierBronze
}

func purchasedAfter(lastPurchase *time.Time, cutoff time.Time) bool {
	return lastPurchase != nil && lastPurchase.After(cutoff)
}

// MinusMonths subtracts calendar months from t, clamping the day to the last
// day of the resulting month (Mar 31 minus one month is Feb 28 or 29).
func MinusMonths(t time.Time, months int) time.Time {
	year, month, day := t.Date()
	first := time.Date(year, month-time.Month(months), 1, 0, 0, 0, 0, t.Location())
	if last := daysIn(first.Year(), first.Month(), t.Location()); day > last {
		day = last
	}
	hour, minute, sec := t.Clock()
	return time.Date(first.Year(), first.Month(), day, hour, minute, sec, t.Nanosecond(), t.Location())
}

func daysIn(year int, month time.Month, loc *time.Location) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, loc).Day()
}

// LocalNow returns the current local wall-clock time labelled as UTC.
// Purchase timestamps are stored without zone, so reads compare wall clocks.
func LocalNow() time.Time {
	return AsWallClock(time.Now())
}

// LocalDateTimeLayout renders a wall-clock time as ISO-8601 without offset.
const LocalDateTimeLayout = "2006-01-02T15:04:05.999999999"

// FormatLocalDateTime renders t with LocalDateTimeLayout.
func FormatLocalDateTime(t time.Time) string {
	return t.Format(LocalDateTimeLayout)
}

// AsWallClock reinterprets t's local wall-clock reading in UTC.
func AsWallClock(t time.Time) time.Time {
	year, month, day := t.Date()
	hour, minute, sec := t.Clock()
	return time.Date(year, month, day, hour, minute, sec, t.Nanosecond(), time.UTC)
}
