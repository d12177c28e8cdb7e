// Package book maintains a two-sided price-time-priority limit order book
// reconstructed from Market-By-Order events and serializes depth-bounded views.
package book

import "container/list"

// restingOrder is one order resting on a price level. It is owned by exactly
// one level's FIFO list at any instant; its list.Element is the stable
// handle recorded in the order index for O(1) cancel/modify.
type restingOrder struct {
	orderID int64
	price   int64
	qty     int32
}

// orderRef is the order index's entry: which side, which price level, and a
// handle into that level's FIFO.
type orderRef struct {
	isBid bool
	price int64
	elem  *list.Element
}
