package ingest

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
)

// object is a JSON object whose fields are decoded lazily, so one malformed
// field never spoils the rest of the message.
type object map[string]json.RawMessage

func parseObject(raw json.RawMessage) (object, bool) {
	var o object
	if err := json.Unmarshal(raw, &o); err != nil || o == nil {
		return nil, false
	}
	return o, true
}

func isNull(raw json.RawMessage) bool {
	return len(raw) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

func (o object) has(key string) bool {
	raw, ok := o[key]
	return ok && !isNull(raw)
}

// str returns the first key holding a string (or a number, as text).
func (o object) str(keys ...string) (string, bool) {
	for _, k := range keys {
		raw, ok := o[k]
		if !ok || isNull(raw) {
			continue
		}
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			return strings.TrimSpace(s), true
		}
		var n json.Number
		if err := json.Unmarshal(raw, &n); err == nil {
			return n.String(), true
		}
	}
	return "", false
}

// dec returns the first key holding a number or a numeric string.
func (o object) dec(keys ...string) (decimal.Decimal, bool) {
	for _, k := range keys {
		raw, ok := o[k]
		if !ok || isNull(raw) {
			continue
		}
		var d decimal.Decimal
		if err := d.UnmarshalJSON(raw); err == nil {
			return d, true
		}
	}
	return decimal.Zero, false
}

func (o object) decOrZero(keys ...string) decimal.Decimal {
	d, _ := o.dec(keys...)
	return d
}

func (o object) obj(key string) (object, bool) {
	raw, ok := o[key]
	if !ok || isNull(raw) {
		return nil, false
	}
	return parseObject(raw)
}

func (o object) list(key string) ([]json.RawMessage, bool) {
	raw, ok := o[key]
	if !ok || isNull(raw) {
		return nil, false
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, false
	}
	return items, true
}
