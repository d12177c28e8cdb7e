package book

import "github.com/yu-ming-Wang/batonics-trading-systems-take-home/mboevent"

// Book is a two-sided order book for exactly one symbol. The symbol is set
// from the first event with a non-empty symbol field and is immutable
// thereafter; a reset clears both sides and the index but keeps it.
type Book struct {
	symbol string
	bids   *side // best bid first: descending price
	asks   *side // best ask first: ascending price
	index  map[int64]*orderRef
}

func New(symbol string) *Book {
	return &Book{
		symbol: symbol,
		bids:   newSide(func(a, b int64) bool { return a > b }),
		asks:   newSide(func(a, b int64) bool { return a < b }),
		index:  make(map[int64]*orderRef),
	}
}

func (b *Book) Symbol() string { return b.symbol }

// Apply mutates the book for exactly one event. Action outside
// {A, C, M, R, T, F, N} and A/C/M with a side outside {B, A} are ignored.
func (b *Book) Apply(e mboevent.Event) {
	b.latchSymbol(e)

	switch e.Action {
	case mboevent.ActionTrade, mboevent.ActionFill, mboevent.ActionNone:
		return
	case mboevent.ActionReset:
		b.clear()
		return
	}

	if e.Side != mboevent.SideBid && e.Side != mboevent.SideAsk {
		return
	}

	switch e.Action {
	case mboevent.ActionAdd:
		b.add(e)
	case mboevent.ActionCancel:
		b.cancel(e)
	case mboevent.ActionModify:
		b.modify(e)
	}
}

// latchSymbol sets the book's symbol from the first event that carries one;
// the symbol is immutable for the rest of the session once set.
func (b *Book) latchSymbol(e mboevent.Event) {
	if b.symbol == "" && e.Symbol != "" {
		b.symbol = e.Symbol
	}
}

func (b *Book) sideFor(isBid bool) *side {
	if isBid {
		return b.bids
	}
	return b.asks
}

func (b *Book) clear() {
	b.bids.clear()
	b.asks.clear()
	b.index = make(map[int64]*orderRef)
}

func (b *Book) add(e mboevent.Event) {
	isBid := e.Side == mboevent.SideBid

	// Defensive: a duplicate order id removes the stale resting order first.
	if old, ok := b.index[e.OrderID]; ok {
		b.detach(old)
		delete(b.index, e.OrderID)
	}

	s := b.sideFor(isBid)
	l := s.levelAt(e.Price)
	elem := l.PushBack(&restingOrder{orderID: e.OrderID, price: e.Price, qty: e.Size})
	b.index[e.OrderID] = &orderRef{isBid: isBid, price: e.Price, elem: elem}
}

func (b *Book) cancel(e mboevent.Event) {
	ref, ok := b.index[e.OrderID]
	if !ok {
		return
	}

	s := b.sideFor(ref.isBid)
	l, ok := s.lookup(ref.price)
	if !ok {
		// inconsistent: index pointed at a level that no longer exists
		delete(b.index, e.OrderID)
		return
	}

	ord := ref.elem.Value.(*restingOrder)
	if e.Size >= ord.qty {
		ord.qty = 0
	} else {
		ord.qty -= e.Size
	}

	if ord.qty == 0 {
		l.Remove(ref.elem)
		delete(b.index, e.OrderID)
		s.dropIfEmpty(ref.price)
	}
}

func (b *Book) modify(e mboevent.Event) {
	ref, ok := b.index[e.OrderID]
	if !ok {
		// Unknown order id: treat as an add of a brand new order.
		b.add(e)
		return
	}

	wantBid := e.Side == mboevent.SideBid
	if wantBid != ref.isBid {
		return // side mismatch: drop defensively
	}

	s := b.sideFor(ref.isBid)
	ord := ref.elem.Value.(*restingOrder)
	oldPrice, oldQty := ref.price, ord.qty

	if e.Price != oldPrice {
		b.detach(ref)
		newList := s.levelAt(e.Price)
		elem := newList.PushBack(&restingOrder{orderID: e.OrderID, price: e.Price, qty: e.Size})
		ref.price = e.Price
		ref.elem = elem
		return
	}

	if e.Size > oldQty {
		l, ok := s.lookup(oldPrice)
		if !ok {
			return
		}
		l.Remove(ref.elem)
		elem := l.PushBack(&restingOrder{orderID: e.OrderID, price: oldPrice, qty: e.Size})
		ref.elem = elem
		return
	}

	ord.qty = e.Size
}

// detach removes ref's order from its current level's FIFO and drops the
// level if it becomes empty. It does not touch the order index.
func (b *Book) detach(ref *orderRef) {
	s := b.sideFor(ref.isBid)
	l, ok := s.lookup(ref.price)
	if !ok {
		return
	}
	l.Remove(ref.elem)
	s.dropIfEmpty(ref.price)
}
