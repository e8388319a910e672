// Package ingest turns inbound subscriber frames into dashboard updates.
// It accepts the relay's broadcast frame as well as the flat objects a
// trading backend writes straight to a socket.
package ingest

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dgnsrekt/glassbox/internal/dashboard"
	"github.com/dgnsrekt/glassbox/internal/signal"
)

// DisplayFormat is the wall-clock form shown next to log entries.
const DisplayFormat = "15:04:05"

// Announcement events spoken alongside a cue.
const (
	AnnounceTradeExecuted = "trade_executed"
	AnnounceOpportunity   = "opportunity"
	AnnounceRiskWarning   = "risk_warning"
)

// ErrNotObject is returned for frames that are valid JSON but not an object.
var ErrNotObject = errors.New("ingest: frame is not a JSON object")

// PriceTick is one price observation for a normalized symbol.
type PriceTick struct {
	Symbol string
	Price  decimal.Decimal
}

// Announcement is a spoken summary requested by an inbound message.
type Announcement struct {
	Event   string
	Details string
}

// Update lists everything one frame carries. Any part may be absent.
type Update struct {
	Logs          []dashboard.LogEntry
	Prices        []PriceTick
	Wallet        *dashboard.WalletState
	Risk          *dashboard.RiskUpdate
	Opportunity   *dashboard.Opportunity
	Announcements []Announcement
}

// Empty reports whether the frame carried nothing the dashboard uses.
func (u Update) Empty() bool {
	return len(u.Logs) == 0 && len(u.Prices) == 0 && u.Wallet == nil &&
		u.Risk == nil && u.Opportunity == nil && len(u.Announcements) == 0
}

// Decode parses one text frame. Only malformed JSON is an error; unknown
// or missing fields yield a smaller (possibly empty) Update.
func Decode(frame []byte, now time.Time) (Update, error) {
	var o object
	if err := json.Unmarshal(frame, &o); err != nil {
		return Update{}, fmt.Errorf("ingest: decode frame: %w", err)
	}
	if o == nil {
		return Update{}, ErrNotObject
	}

	if event, ok := o.str("event"); ok && o.has("payload") {
		payload, ok := o.obj("payload")
		if !ok {
			return Update{}, fmt.Errorf("ingest: %s payload is not an object", event)
		}
		return decodeEvent(signal.Kind(event), payload, now), nil
	}

	// A producer envelope written straight to the socket.
	if typ, ok := o.str("type"); ok && signal.Kind(typ).Valid() {
		if data, ok := o.obj("data"); ok {
			if _, has := data.str("timestamp"); !has {
				if ts, ok := o["timestamp"]; ok {
					data["timestamp"] = ts
				}
			}
			return decodeEvent(signal.Kind(typ), data, now), nil
		}
	}

	return decodeRaw(o, now), nil
}

// DisplayTime renders an ISO timestamp as UTC wall-clock time. Unparseable
// values are shown as sent; empty values use now.
func DisplayTime(raw string, now time.Time) string {
	if raw == "" {
		return now.UTC().Format(DisplayFormat)
	}
	if t, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		return t.UTC().Format(DisplayFormat)
	}
	return raw
}

func decodeRaw(o object, now time.Time) Update {
	var u Update
	ts, _ := o.str("timestamp")

	typ, _ := o.str("type")
	msg, _ := o.str("message")
	if typ != "" && msg != "" {
		id, _ := o.str("id")
		u.Logs = append(u.Logs, dashboard.LogEntry{
			ID:        id,
			Timestamp: DisplayTime(ts, now),
			Category:  Category(typ),
			Message:   msg,
		})
	}

	if tick, ok := decodeTick(o); ok {
		u.Prices = append(u.Prices, tick)
	}

	if w, ok := o.obj("wallet"); ok {
		ws := decodeWallet(w)
		u.Wallet = &ws
	}

	if veto, ok := o.str(vetoKeys...); ok {
		u.Risk = &dashboard.RiskUpdate{VetoStatus: &veto}
	}
	return u
}

func decodeTick(o object) (PriceTick, bool) {
	sym, ok := o.str("symbol")
	if !ok || sym == "" {
		return PriceTick{}, false
	}
	price, ok := o.dec("price")
	if !ok || !price.IsPositive() {
		return PriceTick{}, false
	}
	return PriceTick{Symbol: NormalizeSymbol(sym), Price: price}, true
}

func decodeEvent(kind signal.Kind, p object, now time.Time) Update {
	var u Update
	ts, _ := p.str("timestamp")
	id, _ := p.str("id")
	stamp := DisplayTime(ts, now)

	switch kind {
	case signal.KindLog:
		msg, _ := p.str("message")
		if msg == "" {
			break
		}
		tag, _ := p.str(logCategoryKeys...)
		u.Logs = append(u.Logs, dashboard.LogEntry{ID: id, Timestamp: stamp, Category: Category(tag), Message: msg})

	case signal.KindTrade:
		side, _ := p.str("side")
		symbol, _ := p.str("symbol")
		amount := p.decOrZero("amount", "size", "quantity")
		price := p.decOrZero("price")
		side = strings.ToUpper(side)
		u.Logs = append(u.Logs, dashboard.LogEntry{
			ID:        id,
			Timestamp: stamp,
			Category:  dashboard.CategoryExecution,
			Message:   fmt.Sprintf("%s %s %s @ %s", side, amount.String(), symbol, price.String()),
		})
		u.Announcements = append(u.Announcements, Announcement{
			Event:   AnnounceTradeExecuted,
			Details: fmt.Sprintf("%s %s at %s", side, symbol, price.String()),
		})

	case signal.KindPrice:
		if tick, ok := decodeTick(p); ok {
			u.Prices = append(u.Prices, tick)
		}

	case signal.KindOpportunity:
		symbol, _ := p.str("symbol")
		direction, _ := p.str("direction", "side")
		direction = strings.ToUpper(direction)
		confidence := p.decOrZero("confidence")
		pct := confidence.Mul(hundred).Round(0).String()
		u.Logs = append(u.Logs, dashboard.LogEntry{
			ID:        id,
			Timestamp: stamp,
			Category:  dashboard.CategoryAI,
			Message:   fmt.Sprintf("Opportunity detected: %s %s (%s%% confidence)", direction, symbol, pct),
		})
		u.Opportunity = &dashboard.Opportunity{Symbol: symbol, Direction: direction, Confidence: confidence, Timestamp: stamp}
		u.Announcements = append(u.Announcements, Announcement{
			Event:   AnnounceOpportunity,
			Details: fmt.Sprintf("%s %s with %s percent confidence", direction, symbol, pct),
		})

	case signal.KindRiskUpdate:
		u.Risk = decodeRisk(p)
		level, _ := p.str("level")
		msg, _ := p.str("message")
		level = strings.ToLower(level)
		if (level == "warning" || level == "critical") && msg != "" {
			u.Logs = append(u.Logs, dashboard.LogEntry{ID: id, Timestamp: stamp, Category: dashboard.CategoryRisk, Message: msg})
			u.Announcements = append(u.Announcements, Announcement{Event: AnnounceRiskWarning, Details: msg})
		}

	case signal.KindPositionUpdate:
		w, ok := p.obj("wallet")
		if !ok {
			w = p
		}
		ws := decodeWallet(w)
		u.Wallet = &ws
		return u
	}

	if w, ok := p.obj("wallet"); ok {
		ws := decodeWallet(w)
		u.Wallet = &ws
	}
	return u
}

func decodeRisk(p object) *dashboard.RiskUpdate {
	var r dashboard.RiskUpdate
	var found bool
	if level, ok := p.str("level"); ok {
		level = strings.ToLower(level)
		r.Level, found = &level, true
	}
	if msg, ok := p.str("message"); ok {
		r.Message, found = &msg, true
	}
	if lev, ok := p.dec(leverageKeys...); ok {
		r.Leverage, found = &lev, true
	}
	if maxLev, ok := p.dec(maxLeverageKeys...); ok {
		r.MaxLeverage, found = &maxLev, true
	}
	if veto, ok := p.str(vetoKeys...); ok {
		r.VetoStatus, found = &veto, true
	}
	if !found {
		return nil
	}
	return &r
}
