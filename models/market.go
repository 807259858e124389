package models

// MarketSnapshot is the point-in-time market data for one symbol.
// Support and resistance bands are derived from Price and are empty when Price is nil.
type MarketSnapshot struct {
	Symbol           Symbol    `json:"symbol"`
	Price            *float64  `json:"price"`
	Volume           float64   `json:"volume"`
	SupportLevels    []float64 `json:"support_levels"`
	ResistanceLevels []float64 `json:"resistance_levels"`
	Success          bool      `json:"success"`
	Error            string    `json:"error,omitempty"`
}

// HasPrice reports whether the snapshot carries a usable positive price.
func (s *MarketSnapshot) HasPrice() bool {
	return s != nil && s.Price != nil && *s.Price > 0
}

func FailedSnapshot(symbol Symbol, err error) *MarketSnapshot {
	snap := &MarketSnapshot{
		Symbol:           symbol,
		SupportLevels:    []float64{},
		ResistanceLevels: []float64{},
	}
	if err != nil {
		snap.Error = err.Error()
	}
	return snap
}
