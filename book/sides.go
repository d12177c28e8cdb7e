package book

import (
	"container/list"
	"sort"
)

// side is one book side: a set of price levels, each a FIFO of resting
// orders, kept in book-order (best level first). prices is a sorted key
// slice maintained by hand (no ordered-map in the standard library),
// mirroring the teacher's own sorted-slice-plus-splice idiom in util.go,
// generalized from splicing [3]string order tuples to splicing price keys
// only — orders within a level live in a container/list, not the slice.
type side struct {
	before func(a, b int64) bool // a ranks strictly before b (better priority)
	prices []int64
	levels map[int64]*list.List
}

func newSide(before func(a, b int64) bool) *side {
	return &side{before: before, levels: make(map[int64]*list.List)}
}

// find returns the index price would occupy in the sorted key slice and
// whether a level already exists at that price.
func (s *side) find(price int64) (idx int, found bool) {
	idx = sort.Search(len(s.prices), func(i int) bool {
		return !s.before(s.prices[i], price)
	})
	if idx < len(s.prices) && s.prices[idx] == price {
		return idx, true
	}
	return idx, false
}

// levelAt returns the FIFO for price, creating an empty one (and inserting
// the price key in sorted position) if none exists yet.
func (s *side) levelAt(price int64) *list.List {
	idx, found := s.find(price)
	if found {
		return s.levels[price]
	}
	s.prices = append(s.prices, 0)
	copy(s.prices[idx+1:], s.prices[idx:])
	s.prices[idx] = price
	l := list.New()
	s.levels[price] = l
	return l
}

// lookup returns the existing FIFO at price without creating one.
func (s *side) lookup(price int64) (*list.List, bool) {
	l, ok := s.levels[price]
	return l, ok
}

// dropIfEmpty removes the level at price if its FIFO has become empty.
func (s *side) dropIfEmpty(price int64) {
	l, ok := s.levels[price]
	if !ok || l.Len() > 0 {
		return
	}
	idx, found := s.find(price)
	if found {
		s.prices = append(s.prices[:idx], s.prices[idx+1:]...)
	}
	delete(s.levels, price)
}

// clear empties the side entirely.
func (s *side) clear() {
	s.prices = s.prices[:0]
	s.levels = make(map[int64]*list.List)
}

// best returns the best level's price and FIFO, if any.
func (s *side) best() (int64, *list.List, bool) {
	if len(s.prices) == 0 {
		return 0, nil, false
	}
	p := s.prices[0]
	return p, s.levels[p], true
}

// depthWalk invokes fn for up to `depth` levels, best first, stopping early
// if fn returns false.
func (s *side) depthWalk(depth int, fn func(price int64, l *list.List) bool) {
	n := len(s.prices)
	if depth < n {
		n = depth
	}
	for i := 0; i < n; i++ {
		p := s.prices[i]
		if !fn(p, s.levels[p]) {
			return
		}
	}
}
