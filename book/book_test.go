package book

import (
	"testing"

	"github.com/yu-ming-Wang/batonics-trading-systems-take-home/mboevent"
)

func add(symbol string, side byte, price int64, size int32, orderID int64) mboevent.Event {
	return mboevent.Event{Symbol: symbol, Action: mboevent.ActionAdd, Side: side, Price: price, Size: size, OrderID: orderID}
}

func cancel(side byte, price int64, size int32, orderID int64) mboevent.Event {
	return mboevent.Event{Action: mboevent.ActionCancel, Side: side, Price: price, Size: size, OrderID: orderID}
}

func modify(side byte, price int64, size int32, orderID int64) mboevent.Event {
	return mboevent.Event{Action: mboevent.ActionModify, Side: side, Price: price, Size: size, OrderID: orderID}
}

func TestS1AddBestBid(t *testing.T) {
	b := New("")
	b.Apply(add("CLX5", mboevent.SideBid, 100, 5, 1))

	tob := b.TopOfBook()
	if !tob.HasBid || tob.HasAsk {
		t.Fatalf("unexpected tob flags: %+v", tob)
	}
	if tob.BidSz != 5 {
		t.Fatalf("bid_sz got %d want 5", tob.BidSz)
	}
	if got := tob.BidPx.StringFixed(4); got != "0.0100" {
		t.Fatalf("bid_px got %s want 0.0100", got)
	}
}

func TestS2TwoLevelBidAggregation(t *testing.T) {
	b := New("CLX5")
	b.Apply(add("CLX5", mboevent.SideBid, 100, 5, 1))
	b.Apply(add("CLX5", mboevent.SideBid, 100, 3, 2))
	b.Apply(add("CLX5", mboevent.SideBid, 99, 10, 3))

	px, l, ok := b.bids.best()
	if !ok || px != 100 {
		t.Fatalf("best bid px got %d", px)
	}
	sz, ct := sumAndCount(l)
	if sz != 8 || ct != 2 {
		t.Fatalf("best level got sz=%d ct=%d want 8/2", sz, ct)
	}

	idx, found := b.bids.find(99)
	if !found {
		t.Fatalf("expected level at 99")
	}
	_ = idx
	sz2, ct2 := sumAndCount(b.bids.levels[99])
	if sz2 != 10 || ct2 != 1 {
		t.Fatalf("second level got sz=%d ct=%d want 10/1", sz2, ct2)
	}
}

func TestS3PartialCancelPreservesPriority(t *testing.T) {
	b := New("CLX5")
	b.Apply(add("CLX5", mboevent.SideBid, 100, 5, 1))
	b.Apply(add("CLX5", mboevent.SideBid, 100, 7, 2))
	b.Apply(cancel(mboevent.SideBid, 100, 2, 1))

	l := b.bids.levels[100]
	front := l.Front().Value.(*restingOrder)
	back := l.Back().Value.(*restingOrder)
	if front.orderID != 1 || front.qty != 3 {
		t.Fatalf("fifo head wrong: %+v", front)
	}
	if back.orderID != 2 || back.qty != 7 {
		t.Fatalf("fifo tail wrong: %+v", back)
	}
	sz, ct := sumAndCount(l)
	if sz != 10 || ct != 2 {
		t.Fatalf("level totals got sz=%d ct=%d want 10/2", sz, ct)
	}
}

func TestS4ModifySizeIncreaseLosesPriority(t *testing.T) {
	b := New("CLX5")
	b.Apply(add("CLX5", mboevent.SideAsk, 200, 4, 10))
	b.Apply(add("CLX5", mboevent.SideAsk, 200, 6, 11))
	b.Apply(modify(mboevent.SideAsk, 200, 7, 10))

	l := b.asks.levels[200]
	front := l.Front().Value.(*restingOrder)
	back := l.Back().Value.(*restingOrder)
	if front.orderID != 11 || front.qty != 6 {
		t.Fatalf("fifo head wrong: %+v", front)
	}
	if back.orderID != 10 || back.qty != 7 {
		t.Fatalf("fifo tail wrong: %+v", back)
	}
}

func TestS5ModifyPriceChangeMovesAndLosesPriority(t *testing.T) {
	b := New("CLX5")
	b.Apply(add("CLX5", mboevent.SideBid, 100, 5, 1))
	b.Apply(add("CLX5", mboevent.SideBid, 100, 3, 2))
	b.Apply(modify(mboevent.SideBid, 99, 3, 1))

	if _, ok := b.bids.levels[100]; !ok {
		t.Fatalf("expected level 100 to still exist")
	}
	sz, ct := sumAndCount(b.bids.levels[100])
	if sz != 3 || ct != 1 {
		t.Fatalf("level 100 got sz=%d ct=%d want 3/1", sz, ct)
	}
	sz2, ct2 := sumAndCount(b.bids.levels[99])
	if sz2 != 3 || ct2 != 1 {
		t.Fatalf("level 99 got sz=%d ct=%d want 3/1", sz2, ct2)
	}

	px, _, _ := b.bids.best()
	if px != 100 {
		t.Fatalf("best bid should remain 100, got %d", px)
	}
}

func TestS6Reset(t *testing.T) {
	b := New("CLX5")
	b.Apply(add("CLX5", mboevent.SideBid, 100, 5, 1))
	b.Apply(mboevent.Event{Action: mboevent.ActionReset})

	if len(b.bids.prices) != 0 || len(b.asks.prices) != 0 || len(b.index) != 0 {
		t.Fatalf("expected empty book after reset")
	}
	if b.Symbol() != "CLX5" {
		t.Fatalf("symbol should survive reset, got %q", b.Symbol())
	}

	b.Apply(add("", mboevent.SideAsk, 101, 2, 9))
	if _, ok := b.asks.levels[101]; !ok {
		t.Fatalf("expected rebuild after reset")
	}
}

func TestS7TradeHasNoEffect(t *testing.T) {
	b := New("CLX5")
	b.Apply(add("CLX5", mboevent.SideBid, 100, 5, 1))
	b.Apply(add("CLX5", mboevent.SideAsk, 101, 5, 2))

	before := b.ToJSON(10)
	b.Apply(mboevent.Event{Action: mboevent.ActionTrade, Side: mboevent.SideBid, Price: 100, Size: 5, OrderID: 1})
	after := b.ToJSON(10)

	if before != after {
		t.Fatalf("trade mutated book: before=%s after=%s", before, after)
	}
}

func TestUnknownCancelDropped(t *testing.T) {
	b := New("CLX5")
	b.Apply(cancel(mboevent.SideBid, 100, 1, 999))
	if len(b.index) != 0 {
		t.Fatalf("expected no-op")
	}
}

func TestModifyUnknownOrderTreatedAsAdd(t *testing.T) {
	b := New("CLX5")
	b.Apply(modify(mboevent.SideBid, 100, 5, 1))
	if _, ok := b.index[1]; !ok {
		t.Fatalf("expected modify-of-unknown to create the order")
	}
}

func TestModifySideMismatchDropped(t *testing.T) {
	b := New("CLX5")
	b.Apply(add("CLX5", mboevent.SideBid, 100, 5, 1))
	b.Apply(modify(mboevent.SideAsk, 100, 5, 1))

	ref := b.index[1]
	if !ref.isBid {
		t.Fatalf("side-mismatched modify should have been dropped")
	}
}

func TestCancelFullRemovesLevel(t *testing.T) {
	b := New("CLX5")
	b.Apply(add("CLX5", mboevent.SideBid, 100, 5, 1))
	b.Apply(cancel(mboevent.SideBid, 100, 100, 1))

	if _, ok := b.bids.levels[100]; ok {
		t.Fatalf("expected level to be removed once empty")
	}
	if _, ok := b.index[1]; ok {
		t.Fatalf("expected index entry removed")
	}
}

func TestSnapshotIdempotence(t *testing.T) {
	b := New("CLX5")
	b.Apply(add("CLX5", mboevent.SideBid, 100, 5, 1))
	b.Apply(add("CLX5", mboevent.SideAsk, 101, 3, 2))

	a := b.ToJSON(5)
	c := b.ToJSON(5)
	if a != c {
		t.Fatalf("expected idempotent snapshots, got %s vs %s", a, c)
	}
}

func TestBookOrderStrictness(t *testing.T) {
	b := New("CLX5")
	b.Apply(add("CLX5", mboevent.SideBid, 100, 1, 1))
	b.Apply(add("CLX5", mboevent.SideBid, 102, 1, 2))
	b.Apply(add("CLX5", mboevent.SideBid, 101, 1, 3))

	prev := int64(1 << 62)
	for _, p := range b.bids.prices {
		if p >= prev {
			t.Fatalf("bids not strictly descending: %v", b.bids.prices)
		}
		prev = p
	}
}

func TestDuplicateAddRemovesStaleOrder(t *testing.T) {
	b := New("CLX5")
	b.Apply(add("CLX5", mboevent.SideBid, 100, 5, 1))
	b.Apply(add("CLX5", mboevent.SideBid, 200, 9, 1))

	if _, ok := b.bids.levels[100]; ok {
		t.Fatalf("expected stale level at 100 to be cleaned up")
	}
	ref := b.index[1]
	if ref.price != 200 {
		t.Fatalf("expected index updated to new price, got %d", ref.price)
	}
}
