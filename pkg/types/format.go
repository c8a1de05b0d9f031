package domain

import (
	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
)

// DescriptionLimit is the number of characters kept by TruncateDescription.
const DescriptionLimit = 100

var (
	trillion = decimal.New(1, 12)
	billion  = decimal.New(1, 9)
	million  = decimal.New(1, 6)
)

// FormatMarketCap abbreviates a market capitalization for display:
// 3e12 -> "$3.00T", 1.5e9 -> "$1.50B", 5e7 -> "$50.00M". Values under a
// million are printed in full with thousands separators. A missing or zero
// value is "N/A".
func FormatMarketCap(marketCap *float64) string {
	if marketCap == nil || *marketCap == 0 {
		return "N/A"
	}

	v := decimal.NewFromFloat(*marketCap)
	switch {
	case v.GreaterThanOrEqual(trillion):
		return "$" + v.Div(trillion).StringFixed(2) + "T"
	case v.GreaterThanOrEqual(billion):
		return "$" + v.Div(billion).StringFixed(2) + "B"
	case v.GreaterThanOrEqual(million):
		return "$" + v.Div(million).StringFixed(2) + "M"
	default:
		f, _ := v.Round(3).Float64()
		return "$" + humanize.Commaf(f)
	}
}

// TruncateDescription shortens s to DescriptionLimit characters followed by
// "...". Shorter strings are returned unchanged.
func TruncateDescription(s string) string {
	r := []rune(s)
	if len(r) <= DescriptionLimit {
		return s
	}
	return string(r[:DescriptionLimit]) + "..."
}
