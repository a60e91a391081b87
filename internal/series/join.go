package series

import (
	"time"

	"flowpulse/pkg/contracts/domain"
)

// Pair is one left entry matched with the right entry of the same calendar day
type Pair[L, R any] struct {
	Left  L
	Right R
}

// DayKey formats t as a calendar-day key
func DayKey(t time.Time) string {
	return t.Format(domain.DateLayout)
}

// LeftJoinByDate matches every left entry with the first right entry on the same
// calendar day. Left entries without a match are dropped; left order is kept.
func LeftJoinByDate[L, R any](left []L, right []R, leftDate func(L) time.Time, rightDate func(R) time.Time) []Pair[L, R] {
	index := make(map[string]R, len(right))
	for _, r := range right {
		key := DayKey(rightDate(r))
		if _, seen := index[key]; !seen {
			index[key] = r
		}
	}

	pairs := make([]Pair[L, R], 0, len(left))
	for _, l := range left {
		if r, ok := index[DayKey(leftDate(l))]; ok {
			pairs = append(pairs, Pair[L, R]{Left: l, Right: r})
		}
	}
	return pairs
}

// JoinFlowPrice joins flow records with price bars by calendar day
func JoinFlowPrice(flow []domain.DailyFlowRecord, prices []domain.DailyPriceBar) []Pair[domain.DailyFlowRecord, domain.DailyPriceBar] {
	return LeftJoinByDate(flow, prices,
		func(r domain.DailyFlowRecord) time.Time { return r.Date },
		func(b domain.DailyPriceBar) time.Time { return b.Date },
	)
}
