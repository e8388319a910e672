package ingest

import (
	"strings"

	"github.com/dgnsrekt/glassbox/internal/dashboard"
)

// categoryTable maps every backend type vocabulary onto log categories.
// Keys are upper-case.
var categoryTable = map[string]dashboard.Category{
	"WEEX_API":    dashboard.CategoryAPI,
	"WEEX-API":    dashboard.CategoryAPI,
	"API":         dashboard.CategoryAPI,
	"AI_SCAN":     dashboard.CategoryAI,
	"AI":          dashboard.CategoryAI,
	"AI-MODEL":    dashboard.CategoryAI,
	"AI_MODEL":    dashboard.CategoryAI,
	"RISK_CHECK":  dashboard.CategoryRisk,
	"RISK":        dashboard.CategoryRisk,
	"OPPORTUNITY": dashboard.CategoryExecution,
	"EXEC":        dashboard.CategoryExecution,
	"EXECUTION":   dashboard.CategoryExecution,
	"SYSTEM":      dashboard.CategorySystem,
}

// Category maps a backend type tag to a log category. Unknown tags are
// system entries.
func Category(tag string) dashboard.Category {
	if c, ok := categoryTable[strings.ToUpper(strings.TrimSpace(tag))]; ok {
		return c
	}
	return dashboard.CategorySystem
}

// Alternate spellings upstream producers use, first match wins.
var (
	walletTotalKeys     = []string{"total", "equity", "accountEquity"}
	walletAvailableKeys = []string{"available", "availableMargin"}
	walletInPosKeys     = []string{"in_pos", "inPositions", "in_positions", "frozen", "frozenMargin"}
	walletUnrealKeys    = []string{"unrealized_pnl", "unrealizedPnL", "unrealizedPnl", "unrealizePnl", "unrealizedPl"}
	walletPnLPctKeys    = []string{"pnlPercent", "pnl_percent"}

	positionSymbolKeys  = []string{"symbol"}
	positionSizeKeys    = []string{"size", "amount", "qty"}
	positionEntryKeys   = []string{"entryPrice", "entry_price"}
	positionCurrentKeys = []string{"currentPrice", "current_price", "markPrice", "mark_price"}
	positionPnLKeys     = []string{"pnl", "unrealized_pnl", "unrealizedPnL"}
	positionPnLPctKeys  = []string{"pnlPercent", "pnl_percent"}
	positionSideKeys    = []string{"side", "type"}

	logCategoryKeys = []string{"logType", "category", "type"}
	leverageKeys    = []string{"leverage", "currentLeverage", "current_leverage"}
	maxLeverageKeys = []string{"max_leverage", "maxLeverage"}
	vetoKeys        = []string{"veto_status", "vetoStatus"}
)

var (
	venuePrefixes = []string{"CMT_"}
	quoteSuffixes = []string{"USDT", "USDC", "BUSD", "PERP", "USD"}
)

// NormalizeSymbol reduces a venue symbol to its base asset:
// "cmt_btcusdt", "BINANCE:BTCUSDT", "BTC/USDT" and "BTC" all become "BTC".
// It is idempotent and never returns an empty string for non-empty input.
func NormalizeSymbol(symbol string) string {
	cur := strings.ToUpper(strings.TrimSpace(symbol))
	for {
		next := normalizeOnce(cur)
		if next == cur {
			return cur
		}
		cur = next
	}
}

func normalizeOnce(s string) string {
	if i := strings.LastIndex(s, ":"); i >= 0 && i < len(s)-1 {
		s = s[i+1:]
	}
	for _, p := range venuePrefixes {
		if strings.HasPrefix(s, p) && len(s) > len(p) {
			s = s[len(p):]
		}
	}
	if i := strings.IndexAny(s, "/-_"); i > 0 {
		s = s[:i]
	}
	for _, q := range quoteSuffixes {
		if strings.HasSuffix(s, q) && len(s) > len(q) {
			return s[:len(s)-len(q)]
		}
	}
	return s
}
