package producer

import (
	"math/rand/v2"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dgnsrekt/glassbox/internal/dashboard"
	"github.com/dgnsrekt/glassbox/internal/signal"
)

type scriptLine struct {
	tag     string
	message string
}

// demoScript is replayed in order, looping, between market updates.
var demoScript = []scriptLine{
	{"SYSTEM", "Nexus-7 GlassBox Terminal v2.1.0 initialized..."},
	{"WEEX-API", "WebSocket connection established to WEEX servers"},
	{"WEEX-API", "Subscribing to BTC/USDT order book feed..."},
	{"AI-MODEL", "Neural network sentiment analyzer loaded (model: nexus-v3)"},
	{"AI-MODEL", "Processing 847 social signals from last 4 hours..."},
	{"AI-MODEL", "Sentiment score: BULLISH (confidence: 0.92)"},
	{"RISK", "Portfolio exposure scan initiated"},
	{"RISK", "Current leverage: 5x within 20x competition limit ✓"},
	{"WEEX-API", "Fetching SOL/USDT perpetual funding rate..."},
	{"AI-MODEL", "Momentum divergence detected on SOL 15m chart"},
	{"AI-MODEL", "Pattern recognition: Ascending triangle breakout imminent"},
	{"EXECUTION", "▶ Signal generated: LONG SOL/USDT @ $146.20"},
	{"RISK", "Position size: 0.5% of portfolio (within risk limits)"},
	{"EXECUTION", "▶ Order placed: LIMIT BUY 25 SOL @ $145.80"},
	{"WEEX-API", "Order acknowledged: ID #WX-2025-88291"},
	{"SYSTEM", "Setting TP: $152.80 (+5.2%) | SL: $141.40 (-2.6%)"},
	{"AI-MODEL", "Monitoring for exit signals on 3 active positions..."},
	{"WEEX-API", "Price tick: BTC $67,421.50 (+0.32%)"},
	{"AI-MODEL", "Cross-asset correlation analysis: 15 pairs scanned"},
	{"RISK", "Drawdown check: 0.8% (max allowed: 10%) ✓"},
	{"WEEX-API", "Fetching open interest data..."},
	{"AI-MODEL", "Funding rate arbitrage opportunity identified"},
	{"EXECUTION", "▶ Queuing hedge on BTC perpetual..."},
}

const (
	minDemoInterval = 800 * time.Millisecond
	demoJitter      = 1200 * time.Millisecond
	// maxStepBps bounds one random-walk price move, in basis points.
	maxStepBps = 30
)

var (
	demoWalletTotal = decimal.NewFromInt(10000)
	basisPoints     = decimal.NewFromInt(10000)
)

// Demo produces a looping sample session: the scripted log lines
// interleaved with random-walk prices, wallet snapshots, risk readings
// and the occasional opportunity.
type Demo struct {
	rng     *rand.Rand
	step    int
	line    int
	symbols []string
	prices  map[string]decimal.Decimal
	entry   decimal.Decimal
}

// NewDemo seeds the generator. Symbols without a reference start at 100.
func NewDemo(tracked []dashboard.TrackedSymbol, seed uint64) *Demo {
	d := &Demo{
		rng:    rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		prices: make(map[string]decimal.Decimal, len(tracked)),
	}
	for _, t := range tracked {
		ref := t.Reference
		if !ref.IsPositive() {
			ref = decimal.NewFromInt(100)
		}
		d.symbols = append(d.symbols, t.Symbol)
		d.prices[t.Symbol] = ref
	}
	if len(d.symbols) > 0 {
		d.entry = d.prices[d.symbols[len(d.symbols)-1]]
	}
	return d
}

// Interval returns the jittered wait before the next envelope.
func (d *Demo) Interval() time.Duration {
	return minDemoInterval + time.Duration(d.rng.Int64N(int64(demoJitter)))
}

// Next returns the next envelope of the session, stamped with now.
func (d *Demo) Next(now time.Time) signal.Envelope {
	d.step++
	env := d.next()
	env.Timestamp = signal.Stamp(now)
	return env
}

func (d *Demo) next() signal.Envelope {
	hasSymbols := len(d.symbols) > 0
	switch {
	case hasSymbols && d.step%3 == 0:
		return d.priceTick()
	case hasSymbols && d.step%7 == 0:
		return d.positionUpdate()
	case d.step%11 == 0:
		return d.riskReading()
	case hasSymbols && d.step%13 == 0:
		return d.opportunity()
	}
	l := demoScript[d.line%len(demoScript)]
	d.line++
	return signal.Envelope{Type: signal.KindLog, Data: map[string]any{"logType": l.tag, "message": l.message}}
}

func (d *Demo) pick() string {
	return d.symbols[d.rng.IntN(len(d.symbols))]
}

func (d *Demo) priceTick() signal.Envelope {
	sym := d.pick()
	bps := d.rng.Int64N(2*maxStepBps+1) - maxStepBps
	move := d.prices[sym].Mul(decimal.NewFromInt(bps)).Div(basisPoints)
	next := d.prices[sym].Add(move).Round(2)
	if next.IsPositive() {
		d.prices[sym] = next
	}
	return signal.Envelope{Type: signal.KindPrice, Data: map[string]any{"symbol": sym + "/USDT", "price": d.prices[sym]}}
}

func (d *Demo) positionUpdate() signal.Envelope {
	sym := d.symbols[len(d.symbols)-1]
	size := decimal.NewFromInt(25)
	mark := d.prices[sym]
	pnl := mark.Sub(d.entry).Mul(size).Round(2)
	inPos := d.entry.Mul(size).Round(2)
	return signal.Envelope{Type: signal.KindPositionUpdate, Data: map[string]any{
		"wallet": map[string]any{
			"total":          demoWalletTotal.Add(pnl),
			"available":      demoWalletTotal.Sub(inPos),
			"in_pos":         inPos,
			"unrealized_pnl": pnl,
			"positions": []map[string]any{{
				"symbol":       sym,
				"size":         size,
				"entryPrice":   d.entry,
				"currentPrice": mark,
				"pnl":          pnl,
				"side":         "long",
			}},
		},
	}}
}

func (d *Demo) riskReading() signal.Envelope {
	leverage := decimal.NewFromInt(int64(3 + d.rng.IntN(16)))
	level, message := "info", "Leverage within limits"
	if leverage.GreaterThanOrEqual(decimal.NewFromInt(15)) {
		level, message = "warning", "Leverage approaching competition limit"
	}
	return signal.Envelope{Type: signal.KindRiskUpdate, Data: map[string]any{
		"level":        level,
		"message":      message,
		"leverage":     leverage,
		"max_leverage": 20,
		"veto_status":  "CLEAR",
	}}
}

func (d *Demo) opportunity() signal.Envelope {
	direction := "LONG"
	if d.rng.IntN(2) == 0 {
		direction = "SHORT"
	}
	confidence := decimal.NewFromInt(int64(60 + d.rng.IntN(40))).Div(decimal.NewFromInt(100))
	return signal.Envelope{Type: signal.KindOpportunity, Data: map[string]any{
		"symbol":     d.pick() + "/USDT",
		"direction":  direction,
		"confidence": confidence,
	}}
}
