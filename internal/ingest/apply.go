package ingest

import "github.com/dgnsrekt/glassbox/internal/dashboard"

// ApplyTo writes u into s and returns the log entries the store accepted,
// in arrival order. Duplicates and untracked price ticks are dropped.
func (u Update) ApplyTo(s *dashboard.Store) []dashboard.LogEntry {
	var accepted []dashboard.LogEntry
	for _, e := range u.Logs {
		if stored, ok := s.AppendLog(e); ok {
			accepted = append(accepted, stored)
		}
	}
	for _, t := range u.Prices {
		s.ApplyPrice(t.Symbol, t.Price)
	}
	if u.Wallet != nil {
		s.ReplaceWallet(*u.Wallet)
	}
	if u.Risk != nil {
		s.ApplyRisk(*u.Risk)
	}
	if u.Opportunity != nil {
		s.AddOpportunity(*u.Opportunity)
	}
	return accepted
}
