package dataflows

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/dyike/StockPilot/models"
)

const finnhubBaseURL = "https://finnhub.io/api/v1"

// FinnhubClient handles Finnhub API operations
type FinnhubClient struct {
	client *resty.Client
	apiKey string
}

// NewFinnhubClient creates a new Finnhub client
func NewFinnhubClient(apiKey string) *FinnhubClient {
	client := resty.New()
	client.SetBaseURL(finnhubBaseURL)
	client.SetTimeout(30 * time.Second)

	return &FinnhubClient{
		client: client,
		apiKey: apiKey,
	}
}

// FinnhubQuote is the /quote payload. Finnhub answers unknown symbols with all zeros.
type FinnhubQuote struct {
	Current       float64 `json:"c"`
	High          float64 `json:"h"`
	Low           float64 `json:"l"`
	Open          float64 `json:"o"`
	PreviousClose float64 `json:"pc"`
	Timestamp     int64   `json:"t"`
}

func (fc *FinnhubClient) Name() string { return "finnhub" }

func (fc *FinnhubClient) Fetch(ctx context.Context, symbol models.Symbol) (*models.MarketSnapshot, error) {
	if fc.apiKey == "" {
		return nil, fmt.Errorf("Finnhub API key not configured")
	}
	if err := ValidateSymbol(symbol.String()); err != nil {
		return nil, err
	}

	var q FinnhubQuote
	resp, err := fc.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"symbol": NormalizeSymbol(symbol.String()),
			"token":  fc.apiKey,
		}).
		SetResult(&q).
		Get("/quote")
	if err != nil {
		return nil, fmt.Errorf("finnhub quote %s: %w", symbol, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("finnhub quote %s: status %d", symbol, resp.StatusCode())
	}

	// The quote endpoint carries no volume.
	return NewSnapshot(symbol, q.Current, 0), nil
}
