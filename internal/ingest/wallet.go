package ingest

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/dgnsrekt/glassbox/internal/dashboard"
)

var (
	hundred = decimal.NewFromInt(100)
	// pnlFallbackDenominator replaces a zero wallet total.
	pnlFallbackDenominator = decimal.NewFromInt(1)
)

// PnLPercent derives unrealized / total * 100, rounded to two places.
func PnLPercent(unrealized, total decimal.Decimal) decimal.Decimal {
	denom := total
	if denom.IsZero() {
		denom = pnlFallbackDenominator
	}
	return unrealized.Div(denom).Mul(hundred).Round(2)
}

func decodeWallet(w object) dashboard.WalletState {
	ws := dashboard.WalletState{
		Total:         w.decOrZero(walletTotalKeys...),
		Available:     w.decOrZero(walletAvailableKeys...),
		InPositions:   w.decOrZero(walletInPosKeys...),
		UnrealizedPnL: w.decOrZero(walletUnrealKeys...),
		Positions:     []dashboard.Position{},
	}
	if pct, ok := w.dec(walletPnLPctKeys...); ok {
		ws.PnLPercent = pct
	} else {
		ws.PnLPercent = PnLPercent(ws.UnrealizedPnL, ws.Total)
	}

	items, _ := w.list("positions")
	for _, raw := range items {
		p, ok := parseObject(raw)
		if !ok {
			continue
		}
		ws.Positions = append(ws.Positions, decodePosition(p))
	}
	return ws
}

func decodePosition(p object) dashboard.Position {
	pos := dashboard.Position{
		Size:         p.decOrZero(positionSizeKeys...),
		EntryPrice:   p.decOrZero(positionEntryKeys...),
		CurrentPrice: p.decOrZero(positionCurrentKeys...),
		PnL:          p.decOrZero(positionPnLKeys...),
	}
	pos.Symbol, _ = p.str(positionSymbolKeys...)
	side, _ := p.str(positionSideKeys...)
	pos.Side = strings.ToLower(side)

	if pct, ok := p.dec(positionPnLPctKeys...); ok {
		pos.PnLPercent = pct
	} else if !pos.EntryPrice.IsZero() && !pos.CurrentPrice.IsZero() {
		pct := pos.CurrentPrice.Sub(pos.EntryPrice).Div(pos.EntryPrice).Mul(hundred)
		if pos.Side == "short" || pos.Side == "sell" {
			pct = pct.Neg()
		}
		pos.PnLPercent = pct.Round(2)
	}
	return pos
}
