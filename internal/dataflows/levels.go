package dataflows

import (
	"strconv"

	"github.com/dyike/StockPilot/models"
	"github.com/shopspring/decimal"
)

var (
	supportFactors    = []float64{0.95, 0.90}
	resistanceFactors = []float64{1.05, 1.10}
)

// SupportLevels returns 95% and 90% of price, rounded to cents.
func SupportLevels(price float64) []float64 {
	return bands(price, supportFactors)
}

// ResistanceLevels returns 105% and 110% of price, rounded to cents.
func ResistanceLevels(price float64) []float64 {
	return bands(price, resistanceFactors)
}

// bands multiplies in float64 and rounds the exact binary product to cents, ties to even,
// so 2.5*1.05 gives 2.62 and 10.1*0.95 gives 9.59.
func bands(price float64, factors []float64) []float64 {
	out := make([]float64, 0, len(factors))
	for _, f := range factors {
		out = append(out, roundCents(price*f))
	}
	return out
}

func roundCents(v float64) float64 {
	return decimal.RequireFromString(strconv.FormatFloat(v, 'f', 2, 64)).InexactFloat64()
}

// NewSnapshot builds a successful snapshot. A non-positive price is treated as absent
// and yields empty bands.
func NewSnapshot(symbol models.Symbol, price, volume float64) *models.MarketSnapshot {
	snap := &models.MarketSnapshot{
		Symbol:           symbol,
		Volume:           volume,
		SupportLevels:    []float64{},
		ResistanceLevels: []float64{},
		Success:          true,
	}
	if price > 0 {
		p := price
		snap.Price = &p
		snap.SupportLevels = SupportLevels(price)
		snap.ResistanceLevels = ResistanceLevels(price)
	}
	if volume < 0 {
		snap.Volume = 0
	}
	return snap
}

// firstPositive picks the first usable price out of a provider's candidates.
func firstPositive(values ...float64) float64 {
	for _, v := range values {
		if v > 0 {
			return v
		}
	}
	return 0
}
