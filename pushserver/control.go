package pushserver

import (
	"strconv"
	"strings"
)

// parseStringValueAfterKey finds "key" in s and extracts the quoted string
// value following its colon, grounded byte-for-byte on
// original_source/mbo-stream/src/ws_server.cpp's parse_string_value_after_key:
// a lightweight scan, not a full JSON parse, so a malformed frame degrades
// field by field instead of failing the whole message.
func parseStringValueAfterKey(s, key string) (string, bool) {
	kpos := strings.Index(s, `"`+key+`"`)
	if kpos < 0 {
		return "", false
	}
	cpos := strings.IndexByte(s[kpos:], ':')
	if cpos < 0 {
		return "", false
	}
	i := kpos + cpos + 1
	i = skipWS(s, i)

	if i >= len(s) || s[i] != '"' {
		return "", false
	}
	i++
	end := strings.IndexByte(s[i:], '"')
	if end < 0 {
		return "", false
	}
	return s[i : i+end], true
}

// parseIntValueAfterKey mirrors parse_int_value_after_key: optional sign,
// digits, clamped accumulation to avoid overflow on a hostile payload.
func parseIntValueAfterKey(s, key string) (int, bool) {
	kpos := strings.Index(s, `"`+key+`"`)
	if kpos < 0 {
		return 0, false
	}
	cpos := strings.IndexByte(s[kpos:], ':')
	if cpos < 0 {
		return 0, false
	}
	i := kpos + cpos + 1
	i = skipWS(s, i)

	neg := false
	if i < len(s) && s[i] == '-' {
		neg = true
		i++
	}
	if i >= len(s) || !isDigit(s[i]) {
		return 0, false
	}

	var val int64
	for i < len(s) && isDigit(s[i]) {
		val = val*10 + int64(s[i]-'0')
		i++
		if val > 1_000_000_000 {
			break
		}
	}
	if neg {
		val = -val
	}
	return int(val), true
}

func skipWS(s string, i int) int {
	for i < len(s) && (s[i] == ' ' || s[i] == '\t' || s[i] == '\n' || s[i] == '\r') {
		i++
	}
	return i
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

// controlMessage is the decoded shape of a client->server control frame.
type controlMessage struct {
	Type   string
	Symbol string
	Depth  int
	HasDep bool
	PushMs int
	HasPMs bool
}

// parseControlMessage matches parse_control_message: type is required and
// must be "subscribe" or "update"; anything else is not a control message
// (caller ignores it silently).
func parseControlMessage(raw string) (controlMessage, bool) {
	var cm controlMessage

	typ, ok := parseStringValueAfterKey(raw, "type")
	if !ok {
		return cm, false
	}
	if typ != "subscribe" && typ != "update" {
		return cm, false
	}
	cm.Type = typ

	if sym, ok := parseStringValueAfterKey(raw, "symbol"); ok && sym != "" {
		cm.Symbol = sym
	}
	if d, ok := parseIntValueAfterKey(raw, "depth"); ok {
		cm.Depth = d
		cm.HasDep = true
	}
	if pm, ok := parseIntValueAfterKey(raw, "push_ms"); ok {
		cm.PushMs = pm
		cm.HasPMs = true
	}
	return cm, true
}

// ackJSON matches make_ack_json's hand-built string, not a marshaler, so
// field order is fixed.
func ackJSON(symbol string, depth, pushMs int) string {
	var b strings.Builder
	b.WriteString(`{"type":"ack","symbol":"`)
	b.WriteString(symbol)
	b.WriteString(`","depth":`)
	b.WriteString(strconv.Itoa(depth))
	b.WriteString(`,"push_ms":`)
	b.WriteString(strconv.Itoa(pushMs))
	b.WriteByte('}')
	return b.String()
}
