package dashboard

import (
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	// DefaultLogCapacity is how many log entries are retained.
	DefaultLogCapacity = 100
	opportunityCapacity = 5
)

var hundred = decimal.NewFromInt(100)

// TrackedSymbol seeds a price slot. A zero Reference is captured from the
// first tick.
type TrackedSymbol struct {
	Symbol    string
	Reference decimal.Decimal
}

// Store is the state container. Writes come from one subscriber; any
// number of readers may take snapshots concurrently.
type Store struct {
	mu            sync.RWMutex
	conn          ConnectionState
	logs          *ring[LogEntry]
	logIDs        map[string]struct{}
	order         []string
	prices        map[string]*PriceState
	wallet        WalletState
	risk          RiskState
	opportunities *ring[Opportunity]
}

// NewStore creates a container retaining logCapacity entries and tracking
// the given symbols. Symbols must already be normalized.
func NewStore(logCapacity int, tracked []TrackedSymbol) *Store {
	if logCapacity <= 0 {
		logCapacity = DefaultLogCapacity
	}
	s := &Store{
		conn:          StateDisconnected,
		logs:          newRing[LogEntry](logCapacity),
		logIDs:        make(map[string]struct{}, logCapacity),
		prices:        make(map[string]*PriceState, len(tracked)),
		opportunities: newRing[Opportunity](opportunityCapacity),
	}
	for _, t := range tracked {
		if _, dup := s.prices[t.Symbol]; dup || t.Symbol == "" {
			continue
		}
		s.order = append(s.order, t.Symbol)
		s.prices[t.Symbol] = &PriceState{Symbol: t.Symbol, Price: t.Reference, Reference: t.Reference}
	}
	return s
}

// AppendLog adds an entry, evicting the oldest when full. An entry whose id
// is already retained is discarded and false is returned. Entries without
// an id get a random one.
func (s *Store) AppendLog(e LogEntry) (LogEntry, bool) {
	if e.ID == "" {
		e.ID = newID()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, seen := s.logIDs[e.ID]; seen {
		return e, false
	}
	if old, evicted := s.logs.push(e); evicted {
		delete(s.logIDs, old.ID)
	}
	s.logIDs[e.ID] = struct{}{}
	return e, true
}

// Logs returns the retained entries in arrival order.
func (s *Store) Logs() []LogEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.logs.items()
}

// ClearLogs drops every retained entry.
func (s *Store) ClearLogs() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logs.reset()
	s.logIDs = make(map[string]struct{}, len(s.logIDs))
}

// ApplyPrice updates a tracked symbol. Untracked symbols are ignored and
// false is returned.
func (s *Store) ApplyPrice(symbol string, price decimal.Decimal) (PriceState, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.prices[symbol]
	if !ok {
		return PriceState{}, false
	}
	if st.Reference.IsZero() {
		st.Reference = price
	}
	st.Price = price
	if st.Reference.IsZero() {
		st.PercentChange = decimal.Zero
		return *st, true
	}
	st.PercentChange = price.Sub(st.Reference).Div(st.Reference).Mul(hundred)
	return *st, true
}

// Price returns the state of one tracked symbol.
func (s *Store) Price(symbol string) (PriceState, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.prices[symbol]
	if !ok {
		return PriceState{}, false
	}
	return *st, true
}

// ReplaceWallet swaps in a new wallet snapshot wholesale.
func (s *Store) ReplaceWallet(w WalletState) {
	w.Positions = append([]Position(nil), w.Positions...)
	s.mu.Lock()
	s.wallet = w
	s.mu.Unlock()
}

// Wallet returns the latest wallet snapshot.
func (s *Store) Wallet() WalletState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	w := s.wallet
	w.Positions = append([]Position(nil), s.wallet.Positions...)
	return w
}

// ApplyRisk merges the fields present in u.
func (s *Store) ApplyRisk(u RiskUpdate) RiskState {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u.Level != nil {
		s.risk.Level = *u.Level
	}
	if u.Message != nil {
		s.risk.Message = *u.Message
	}
	if u.Leverage != nil {
		s.risk.Leverage = *u.Leverage
	}
	if u.MaxLeverage != nil {
		s.risk.MaxLeverage = *u.MaxLeverage
	}
	if u.VetoStatus != nil {
		s.risk.VetoStatus = *u.VetoStatus
	}
	return s.risk
}

// AddOpportunity keeps the most recent opportunities.
func (s *Store) AddOpportunity(o Opportunity) {
	s.mu.Lock()
	s.opportunities.push(o)
	s.mu.Unlock()
}

// SetConnection records the subscriber's connection state.
func (s *Store) SetConnection(state ConnectionState) {
	s.mu.Lock()
	s.conn = state
	s.mu.Unlock()
}

// Connection returns the current connection state.
func (s *Store) Connection() ConnectionState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.conn
}

// Snapshot copies the whole container.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap := Snapshot{
		Connection:    s.conn,
		Logs:          s.logs.items(),
		Prices:        make([]PriceState, 0, len(s.order)),
		Wallet:        s.wallet,
		Risk:          s.risk,
		Opportunities: s.opportunities.items(),
	}
	snap.Wallet.Positions = append([]Position{}, s.wallet.Positions...)
	for _, sym := range s.order {
		snap.Prices = append(snap.Prices, *s.prices[sym])
	}
	return snap
}

func newID() string {
	return uuid.New().String()
}
