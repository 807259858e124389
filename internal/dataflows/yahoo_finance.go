package dataflows

import (
	"context"
	"fmt"

	finance "github.com/piquette/finance-go"
	"github.com/piquette/finance-go/quote"

	"github.com/dyike/StockPilot/models"
)

type quoteFunc func(symbol string) (*finance.Quote, error)

// YahooFinanceClient handles Yahoo Finance data operations
type YahooFinanceClient struct {
	getQuote quoteFunc
}

// NewYahooFinanceClient creates a new Yahoo Finance client
func NewYahooFinanceClient() *YahooFinanceClient {
	return &YahooFinanceClient{getQuote: quote.Get}
}

func (yf *YahooFinanceClient) Name() string { return "yahoo" }

// Fetch gets current quote data for a symbol
func (yf *YahooFinanceClient) Fetch(ctx context.Context, symbol models.Symbol) (*models.MarketSnapshot, error) {
	if err := ValidateSymbol(symbol.String()); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ticker := NormalizeSymbol(symbol.String())
	q, err := yf.getQuote(ticker)
	if err != nil {
		return nil, fmt.Errorf("failed to get quote for %s: %w", ticker, err)
	}
	if q == nil {
		return nil, fmt.Errorf("no quote returned for %s", ticker)
	}

	price := firstPositive(q.RegularMarketPrice, q.PostMarketPrice, q.PreMarketPrice)
	return NewSnapshot(symbol, price, float64(q.RegularMarketVolume)), nil
}
