package mboevent

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Framer accumulates bytes from a stream and splits them into lines.
// It is restartable: Reset discards any partial line. The engine driver
// creates a fresh Framer for every ingress connection instead of reusing one.
type Framer struct {
	carry []byte
}

func NewFramer() *Framer {
	return &Framer{carry: make([]byte, 0, 1<<20)}
}

// Reset discards the in-memory buffer. Call after a reconnect.
func (f *Framer) Reset() {
	f.carry = f.carry[:0]
}

// Feed appends chunk to the rolling buffer and returns every complete line
// found so far (trailing '\r' stripped, terminating '\n' excluded). Any
// trailing partial line is retained for the next Feed call.
func (f *Framer) Feed(chunk []byte) []string {
	f.carry = append(f.carry, chunk...)

	var lines []string
	start := 0
	for {
		nl := indexByte(f.carry, start, '\n')
		if nl < 0 {
			break
		}
		line := f.carry[start:nl]
		if n := len(line); n > 0 && line[n-1] == '\r' {
			line = line[:n-1]
		}
		lines = append(lines, string(line))
		start = nl + 1
	}
	f.carry = append(f.carry[:0], f.carry[start:]...)
	return lines
}

// Flush returns whatever partial line remains buffered (used at EOF) and
// clears the buffer.
func (f *Framer) Flush() string {
	line := string(f.carry)
	if n := len(line); n > 0 && line[n-1] == '\r' {
		line = line[:n-1]
	}
	f.carry = f.carry[:0]
	return line
}

func indexByte(b []byte, from int, c byte) int {
	for i := from; i < len(b); i++ {
		if b[i] == c {
			return i
		}
	}
	return -1
}

var headerTokens = []string{"ts_event", "publisher_id", "instrument_id"}

// isHeaderOrEmpty reports whether line should be skipped without parsing:
// it is empty, or its first column matches a known CSV header token.
func isHeaderOrEmpty(line string) bool {
	if line == "" {
		return true
	}
	for _, tok := range headerTokens {
		if strings.HasPrefix(line, tok) {
			return true
		}
	}
	return false
}

// minFields is the smallest field count the wire protocol guarantees:
// ts_recv,ts_event,rtype,publisher_id,instrument_id,action,side,price,size,
// channel_id,order_id,flags,ts_in_delta,sequence,symbol
const minFields = 15

// ParseLine converts one already-framed CSV line into an Event. It returns
// ok=false (BadFrame) for header/empty lines, lines with too few fields, or
// lines with a malformed required integer/decimal field. Tick-scale defaults
// to DefaultTickScale; pass a different scale only when the ingress declares
// a non-standard tick size.
func ParseLine(line string, tickScale int64) (Event, bool) {
	if isHeaderOrEmpty(line) {
		return Event{}, false
	}

	fields := strings.Split(line, ",")
	if len(fields) < minFields {
		return Event{}, false
	}

	var e Event
	e.TsRecv = fields[0]
	e.TsEvent = fields[1]
	e.Symbol = fields[14]

	pub, err := strconv.ParseInt(fields[3], 10, 32)
	if err != nil {
		return Event{}, false
	}
	e.PublisherID = int32(pub)

	inst, err := strconv.ParseInt(fields[4], 10, 32)
	if err != nil {
		return Event{}, false
	}
	e.InstrumentID = int32(inst)

	px, err := decimal.NewFromString(fields[7])
	if err != nil {
		return Event{}, false
	}
	scale := tickScale
	if scale <= 0 {
		scale = DefaultTickScale
	}
	e.Price = px.Mul(decimal.NewFromInt(scale)).Round(0).IntPart()

	size, err := strconv.ParseInt(fields[8], 10, 32)
	if err != nil {
		return Event{}, false
	}
	e.Size = int32(size)

	orderID, err := strconv.ParseInt(fields[10], 10, 64)
	if err != nil {
		return Event{}, false
	}
	e.OrderID = orderID

	flags, err := strconv.ParseUint(fields[11], 10, 32)
	if err != nil {
		return Event{}, false
	}
	e.Flags = uint32(flags)

	if len(fields[5]) > 0 {
		e.Action = fields[5][0]
	} else {
		e.Action = ActionNone
	}
	if len(fields[6]) > 0 {
		e.Side = fields[6][0]
	} else {
		e.Side = 'N'
	}

	return e, true
}
