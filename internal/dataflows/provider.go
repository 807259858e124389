// Package dataflows fetches current market data and turns it into snapshots.
package dataflows

import (
	"context"
	"fmt"

	"github.com/dyike/StockPilot/config"
	"github.com/dyike/StockPilot/models"
)

// Provider fetches a snapshot for one symbol. Implementations return an error, or a snapshot
// with Success=false, when no data is available.
type Provider interface {
	Name() string
	Fetch(ctx context.Context, symbol models.Symbol) (*models.MarketSnapshot, error)
}

// NewProvider builds the provider selected by cfg.MarketDataSource.
func NewProvider(cfg *config.Config) (Provider, error) {
	switch cfg.MarketDataSource {
	case config.SourceYahoo, "":
		return NewYahooFinanceClient(), nil
	case config.SourceLongport:
		return NewLongportClient(LongportConfig{
			AppKey:      cfg.LongportAppKey,
			AppSecret:   cfg.LongportAppSecret,
			AccessToken: cfg.LongportAccessToken,
		})
	case config.SourceFinnhub:
		return NewFinnhubClient(cfg.FinnhubAPIKey), nil
	default:
		return nil, fmt.Errorf("unsupported market data source %q", cfg.MarketDataSource)
	}
}
