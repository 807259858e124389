package dataflows

import (
	"context"
	"errors"
	"testing"

	finance "github.com/piquette/finance-go"

	"github.com/dyike/StockPilot/models"
)

func TestYahooFetch(t *testing.T) {
	var asked string
	yf := &YahooFinanceClient{getQuote: func(symbol string) (*finance.Quote, error) {
		asked = symbol
		q := &finance.Quote{}
		q.RegularMarketPrice = 250
		q.RegularMarketVolume = 1200000
		return q, nil
	}}

	snap, err := yf.Fetch(context.Background(), "TSLA")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if asked != "TSLA" {
		t.Fatalf("expected quote for TSLA, got %q", asked)
	}
	if !snap.HasPrice() || *snap.Price != 250 {
		t.Fatalf("unexpected price %v", snap.Price)
	}
	if snap.Volume != 1200000 {
		t.Fatalf("unexpected volume %v", snap.Volume)
	}
	if snap.SupportLevels[0] != 237.5 || snap.ResistanceLevels[1] != 275 {
		t.Fatalf("unexpected bands %v %v", snap.SupportLevels, snap.ResistanceLevels)
	}
}

func TestYahooFetchFallsBackToPostMarketPrice(t *testing.T) {
	yf := &YahooFinanceClient{getQuote: func(string) (*finance.Quote, error) {
		q := &finance.Quote{}
		q.PostMarketPrice = 10
		return q, nil
	}}
	snap, err := yf.Fetch(context.Background(), "ABC")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if !snap.HasPrice() || *snap.Price != 10 {
		t.Fatalf("expected post market price fallback, got %v", snap.Price)
	}
}

func TestYahooFetchErrors(t *testing.T) {
	boom := errors.New("boom")
	tests := []struct {
		name   string
		symbol string
		quote  quoteFunc
	}{
		{name: "provider error", symbol: "TSLA", quote: func(string) (*finance.Quote, error) { return nil, boom }},
		{name: "no quote", symbol: "TSLA", quote: func(string) (*finance.Quote, error) { return nil, nil }},
		{name: "invalid symbol", symbol: "", quote: func(string) (*finance.Quote, error) { t.Fatal("quote called"); return nil, nil }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			yf := &YahooFinanceClient{getQuote: tt.quote}
			if _, err := yf.Fetch(context.Background(), models.Symbol(tt.symbol)); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}
