package models

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// RateEntry is one cached rate: the value fetched and when it was fetched.
// Freshness decisions belong to the rate provider, not the entry.
type RateEntry struct {
	Rate      decimal.Decimal `json:"rate"`
	FetchedAt time.Time       `json:"fetched_at"`
}

const rateDateLayout = "2006-01-02"

// RateDate formats a date the way cache keys and upstream APIs expect it.
func RateDate(d time.Time) string {
	return d.Format(rateDateLayout)
}

// CurrentRateKey is the cache key for an instrument's latest quote.
func CurrentRateKey(instrumentID string) string {
	return strings.ToUpper(strings.TrimSpace(instrumentID))
}

// HistoricalRateKey is the cache key for an instrument's close on a past
// date. Entries under these keys are immutable once written.
func HistoricalRateKey(instrumentID string, date time.Time) string {
	return fmt.Sprintf("HIST_%s_%s", CurrentRateKey(instrumentID), RateDate(date))
}

// FXRateKey is the cache key for the current base→quote conversion rate.
func FXRateKey(base, quote Currency) string {
	return fmt.Sprintf("%s_%s_RATE", base, quote)
}

// FXRateKeyOn is the cache key for a dated base→quote conversion rate,
// immutable like any historical key.
func FXRateKeyOn(base, quote Currency, date time.Time) string {
	return fmt.Sprintf("%s_%s_RATE_%s", base, quote, RateDate(date))
}

var dateSuffixRe = regexp.MustCompile(`_\d{4}-\d{2}-\d{2}$`)

// IsHistoricalKey reports whether a cache key names an immutable dated rate.
// Such entries are never stale and are returned unconditionally on lookup.
func IsHistoricalKey(key string) bool {
	return strings.HasPrefix(key, "HIST_") || dateSuffixRe.MatchString(key)
}
