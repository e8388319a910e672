// Package dashboard holds the single state container every rendering
// surface reads from: the bounded decision log, tracked prices, the wallet
// snapshot, risk gauge values and the connection badge.
package dashboard

import "github.com/shopspring/decimal"

// Category classifies a log entry for styling and cue selection.
type Category string

const (
	CategoryAPI       Category = "api"
	CategoryAI        Category = "ai"
	CategoryRisk      Category = "risk"
	CategoryExecution Category = "execution"
	CategorySystem    Category = "system"
)

// ConnectionState drives reconnect behaviour and the status badge.
type ConnectionState string

const (
	StateConnecting   ConnectionState = "connecting"
	StateConnected    ConnectionState = "connected"
	StateDisconnected ConnectionState = "disconnected"
)

// LogEntry is one line of the decision log.
type LogEntry struct {
	ID        string   `json:"id"`
	Timestamp string   `json:"timestamp"`
	Category  Category `json:"category"`
	Message   string   `json:"message"`
}

// PriceState is the latest price of a tracked symbol. PercentChange is
// relative to Reference, the session-start price.
type PriceState struct {
	Symbol        string          `json:"symbol"`
	Price         decimal.Decimal `json:"price"`
	PercentChange decimal.Decimal `json:"percentChange"`
	Reference     decimal.Decimal `json:"reference"`
}

// Position is owned by WalletState and replaced with it.
type Position struct {
	Symbol       string          `json:"symbol"`
	Size         decimal.Decimal `json:"size"`
	EntryPrice   decimal.Decimal `json:"entryPrice"`
	CurrentPrice decimal.Decimal `json:"currentPrice"`
	PnL          decimal.Decimal `json:"pnl"`
	PnLPercent   decimal.Decimal `json:"pnlPercent"`
	Side         string          `json:"side,omitempty"`
}

// WalletState is the latest wallet snapshot.
type WalletState struct {
	Total         decimal.Decimal `json:"total"`
	Available     decimal.Decimal `json:"available"`
	InPositions   decimal.Decimal `json:"inPositions"`
	UnrealizedPnL decimal.Decimal `json:"unrealizedPnL"`
	PnLPercent    decimal.Decimal `json:"pnlPercent"`
	Positions     []Position      `json:"positions"`
}

// RiskState backs the leverage gauge.
type RiskState struct {
	Level       string          `json:"level,omitempty"`
	Message     string          `json:"message,omitempty"`
	Leverage    decimal.Decimal `json:"leverage"`
	MaxLeverage decimal.Decimal `json:"maxLeverage"`
	VetoStatus  string          `json:"vetoStatus,omitempty"`
}

// RiskUpdate carries only the risk fields present in one inbound message.
type RiskUpdate struct {
	Level       *string
	Message     *string
	Leverage    *decimal.Decimal
	MaxLeverage *decimal.Decimal
	VetoStatus  *string
}

// Opportunity is a detected setup announced by the trading engine.
type Opportunity struct {
	Symbol     string          `json:"symbol"`
	Direction  string          `json:"direction"`
	Confidence decimal.Decimal `json:"confidence"`
	Timestamp  string          `json:"timestamp"`
}

// Snapshot is a detached copy of the whole container.
type Snapshot struct {
	Connection    ConnectionState `json:"connection"`
	Logs          []LogEntry      `json:"logs"`
	Prices        []PriceState    `json:"prices"`
	Wallet        WalletState     `json:"wallet"`
	Risk          RiskState       `json:"risk"`
	Opportunities []Opportunity   `json:"opportunities"`
}
