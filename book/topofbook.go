package book

import (
	"container/list"

	"github.com/shopspring/decimal"
)

// TickScale is the number of integer ticks per unit of quote currency used
// when converting book-internal prices back to decimal for display.
const TickScale = 10000

// TopOfBook is the best-bid/best-ask projection. Mid and Spread are only
// meaningful when both HasBid and HasAsk are true.
type TopOfBook struct {
	HasBid bool
	BidPx  decimal.Decimal
	BidSz  int64

	HasAsk bool
	AskPx  decimal.Decimal
	AskSz  int64

	Mid    decimal.Decimal
	Spread decimal.Decimal
}

// TopOfBook returns the current best-level aggregates. Size is the sum of
// all resting quantities at the best level on each side.
func (b *Book) TopOfBook() TopOfBook {
	var tob TopOfBook

	scale := decimal.NewFromInt(TickScale)

	if px, l, ok := b.bids.best(); ok {
		tob.HasBid = true
		tob.BidPx = decimal.NewFromInt(px).Div(scale)
		tob.BidSz = sumQty(l)
	}
	if px, l, ok := b.asks.best(); ok {
		tob.HasAsk = true
		tob.AskPx = decimal.NewFromInt(px).Div(scale)
		tob.AskSz = sumQty(l)
	}

	if tob.HasBid && tob.HasAsk {
		two := decimal.NewFromInt(2)
		tob.Mid = tob.BidPx.Add(tob.AskPx).Div(two)
		tob.Spread = tob.AskPx.Sub(tob.BidPx)
	}

	return tob
}

func sumQty(l *list.List) int64 {
	var sum int64
	for e := l.Front(); e != nil; e = e.Next() {
		sum += int64(e.Value.(*restingOrder).qty)
	}
	return sum
}
