package book

import (
	"container/list"
	"fmt"
	"strconv"
	"strings"
)

// ToJSON renders {symbol, bids:[...depth], asks:[...depth]} where each
// level is {px, px_f, sz, ct}, best level first on each side. Built with a
// strings.Builder rather than encoding/json so that field order and px_f's
// fixed 4-decimal truncation stay byte-identical across repeated calls with
// no intervening Apply (Testable Property 6).
func (b *Book) ToJSON(depth int) string {
	var sb strings.Builder
	sb.WriteByte('{')

	if b.symbol != "" {
		sb.WriteString(`"symbol":"`)
		sb.WriteString(b.symbol)
		sb.WriteString(`",`)
	}

	sb.WriteString(`"bids":[`)
	writeLevels(&sb, b.bids, depth)
	sb.WriteString(`],"asks":[`)
	writeLevels(&sb, b.asks, depth)
	sb.WriteString(`]}`)

	return sb.String()
}

func writeLevels(sb *strings.Builder, s *side, depth int) {
	first := true
	s.depthWalk(depth, func(px int64, l *list.List) bool {
		if !first {
			sb.WriteByte(',')
		}
		first = false

		sz, ct := sumAndCount(l)
		sb.WriteByte('{')
		sb.WriteString(`"px":`)
		sb.WriteString(strconv.FormatInt(px, 10))
		sb.WriteString(`,"px_f":`)
		sb.WriteString(formatPxF(px))
		sb.WriteString(`,"sz":`)
		sb.WriteString(strconv.FormatInt(sz, 10))
		sb.WriteString(`,"ct":`)
		sb.WriteString(strconv.FormatInt(ct, 10))
		sb.WriteByte('}')
		return true
	})
}

func sumAndCount(l *list.List) (sz, ct int64) {
	for e := l.Front(); e != nil; e = e.Next() {
		sz += int64(e.Value.(*restingOrder).qty)
		ct++
	}
	return sz, ct
}

// formatPxF renders an integer tick price as a decimal with exactly 4
// fractional digits (truncated toward zero on the tick->decimal division,
// which is exact since TickScale is a power of ten and ticks are integers).
func formatPxF(px int64) string {
	neg := px < 0
	if neg {
		px = -px
	}
	whole := px / TickScale
	frac := px % TickScale
	s := fmt.Sprintf("%d.%04d", whole, frac)
	if neg {
		s = "-" + s
	}
	return s
}

// ToPrettyBBO returns two human-readable lines summarizing the best bid and
// best ask, for logging.
func (b *Book) ToPrettyBBO() string {
	tob := b.TopOfBook()
	var sb strings.Builder

	sb.WriteString("BID: ")
	if tob.HasBid {
		sb.WriteString(tob.BidPx.StringFixed(4))
		sb.WriteString(" x ")
		sb.WriteString(strconv.FormatInt(tob.BidSz, 10))
	} else {
		sb.WriteString("-")
	}

	sb.WriteString("\nASK: ")
	if tob.HasAsk {
		sb.WriteString(tob.AskPx.StringFixed(4))
		sb.WriteString(" x ")
		sb.WriteString(strconv.FormatInt(tob.AskSz, 10))
	} else {
		sb.WriteString("-")
	}

	return sb.String()
}
