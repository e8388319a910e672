package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/dgnsrekt/glassbox/internal/dashboard"
)

// SymbolEntry is one tracked symbol in the symbols file. A missing
// reference means the first observed price becomes the baseline.
type SymbolEntry struct {
	Symbol    string `yaml:"symbol"`
	Reference string `yaml:"reference"`
}

// SymbolsConfig is the top-level YAML document.
type SymbolsConfig struct {
	Symbols []SymbolEntry `yaml:"symbols"`
}

// DefaultSymbols is used when no symbols file exists.
func DefaultSymbols() []dashboard.TrackedSymbol {
	return []dashboard.TrackedSymbol{
		{Symbol: "BTC", Reference: decimal.RequireFromString("67421.50")},
		{Symbol: "SOL", Reference: decimal.RequireFromString("146.20")},
	}
}

// LoadSymbols reads tracked symbols from path. Symbols are normalized by
// normalize. A missing file yields DefaultSymbols.
func LoadSymbols(path string, normalize func(string) string) ([]dashboard.TrackedSymbol, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return DefaultSymbols(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("symbols config: %w", err)
	}

	var cfg SymbolsConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("symbols config: %w", err)
	}
	if len(cfg.Symbols) < 1 {
		return nil, errors.New("symbols config: at least one symbol entry is required")
	}

	seen := make(map[string]struct{}, len(cfg.Symbols))
	out := make([]dashboard.TrackedSymbol, 0, len(cfg.Symbols))
	for i, e := range cfg.Symbols {
		sym := e.Symbol
		if normalize != nil {
			sym = normalize(sym)
		}
		if sym == "" {
			return nil, fmt.Errorf("symbols config: symbols[%d] missing symbol", i)
		}
		if _, dup := seen[sym]; dup {
			return nil, fmt.Errorf("symbols config: duplicate symbol %s", sym)
		}
		seen[sym] = struct{}{}

		ref := decimal.Zero
		if e.Reference != "" {
			ref, err = decimal.NewFromString(e.Reference)
			if err != nil {
				return nil, fmt.Errorf("symbols config: symbols[%d] reference: %w", i, err)
			}
			if ref.IsNegative() {
				return nil, fmt.Errorf("symbols config: symbols[%d] reference must not be negative", i)
			}
		}
		out = append(out, dashboard.TrackedSymbol{Symbol: sym, Reference: ref})
	}
	return out, nil
}
