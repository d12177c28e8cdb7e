package mboevent

import (
	"strings"
	"testing"
)

// csvLine builds a 15-field ingress record:
// ts_recv,ts_event,rtype,publisher_id,instrument_id,action,side,price,size,
// channel_id,order_id,flags,ts_in_delta,sequence,symbol
func csvLine(ts string, action, side byte, price, size, orderID string) string {
	return strings.Join([]string{
		"2024-01-01T00:00:00Z", ts, "1", "10", "20",
		string(action), string(side), price, size,
		"99", orderID, "0", "0", "1", "CLX5",
	}, ",")
}

func TestParseLineHappyPath(t *testing.T) {
	line := csvLine("2024-01-01T00:00:00.500000000Z", ActionAdd, SideBid, "100.0000", "5", "1")
	e, ok := ParseLine(line, DefaultTickScale)
	if !ok {
		t.Fatalf("expected parse success")
	}
	if e.Action != ActionAdd || e.Side != SideBid {
		t.Fatalf("action/side mismatch: %c/%c", e.Action, e.Side)
	}
	if e.Price != 1000000 {
		t.Fatalf("price got %d want 1000000", e.Price)
	}
	if e.Size != 5 || e.OrderID != 1 {
		t.Fatalf("size/order_id got %d/%d", e.Size, e.OrderID)
	}
	if e.Symbol != "CLX5" {
		t.Fatalf("symbol got %q", e.Symbol)
	}
}

func TestParseLineHeaderSkipped(t *testing.T) {
	if _, ok := ParseLine("ts_event,publisher_id,instrument_id", DefaultTickScale); ok {
		t.Fatalf("expected header line to be dropped")
	}
	if _, ok := ParseLine("", DefaultTickScale); ok {
		t.Fatalf("expected empty line to be dropped")
	}
}

func TestParseLineTooFewFields(t *testing.T) {
	if _, ok := ParseLine("a,b,c", DefaultTickScale); ok {
		t.Fatalf("expected short line to be dropped")
	}
}

func TestParseLineBadPrice(t *testing.T) {
	line := csvLine("2024-01-01T00:00:00Z", ActionAdd, SideBid, "not-a-number", "5", "1")
	if _, ok := ParseLine(line, DefaultTickScale); ok {
		t.Fatalf("expected malformed price to be dropped")
	}
}

func TestParseLineBadInteger(t *testing.T) {
	line := csvLine("2024-01-01T00:00:00Z", ActionAdd, SideBid, "100.0", "not-int", "1")
	if _, ok := ParseLine(line, DefaultTickScale); ok {
		t.Fatalf("expected malformed size to be dropped")
	}
}

func TestFramerSplitsAndCarries(t *testing.T) {
	f := NewFramer()
	lines := f.Feed([]byte("one\ntwo\nthr"))
	if len(lines) != 2 || lines[0] != "one" || lines[1] != "two" {
		t.Fatalf("unexpected lines: %v", lines)
	}
	lines = f.Feed([]byte("ee\n"))
	if len(lines) != 1 || lines[0] != "three" {
		t.Fatalf("unexpected carried line: %v", lines)
	}
}

func TestFramerStripsCR(t *testing.T) {
	f := NewFramer()
	lines := f.Feed([]byte("abc\r\n"))
	if len(lines) != 1 || lines[0] != "abc" {
		t.Fatalf("expected CR stripped, got %q", lines)
	}
}

func TestFramerResetDiscardsPartial(t *testing.T) {
	f := NewFramer()
	f.Feed([]byte("partial-no-newline"))
	f.Reset()
	if got := f.Flush(); got != "" {
		t.Fatalf("expected buffer cleared after reset, got %q", got)
	}
}
