package dataflows

import (
	"context"
	"errors"
	"fmt"
	"strings"

	lpconfig "github.com/longportapp/openapi-go/config"
	"github.com/longportapp/openapi-go/quote"

	"github.com/dyike/StockPilot/models"
)

type LongportConfig struct {
	AppKey      string
	AppSecret   string
	AccessToken string
}

type securityQuoter interface {
	Quote(ctx context.Context, symbols []string) ([]*quote.SecurityQuote, error)
}

type LongportClient struct {
	quoteCtx securityQuoter
}

func NewLongportClient(cfg LongportConfig) (*LongportClient, error) {
	if cfg.AppKey == "" || cfg.AppSecret == "" || cfg.AccessToken == "" {
		return nil, errors.New("longport API credentials not configured")
	}

	conf, err := lpconfig.New(lpconfig.WithConfigKey(cfg.AppKey, cfg.AppSecret, cfg.AccessToken))
	if err != nil {
		return nil, err
	}

	quoteContext, err := quote.NewFromCfg(conf)
	if err != nil {
		return nil, err
	}

	return &LongportClient{quoteCtx: quoteContext}, nil
}

func (lpc *LongportClient) Name() string { return "longport" }

func (lpc *LongportClient) Fetch(ctx context.Context, symbol models.Symbol) (*models.MarketSnapshot, error) {
	if lpc.quoteCtx == nil {
		return nil, errors.New("quote context is nil")
	}
	if err := ValidateSymbol(symbol.String()); err != nil {
		return nil, err
	}

	lpSymbol := longportSymbol(symbol.String())
	quotes, err := lpc.quoteCtx.Quote(ctx, []string{lpSymbol})
	if err != nil {
		return nil, fmt.Errorf("longport quote %s: %w", lpSymbol, err)
	}
	if len(quotes) == 0 || quotes[0] == nil {
		return nil, fmt.Errorf("no quote returned for %s", lpSymbol)
	}

	q := quotes[0]
	var last, prev float64
	if q.LastDone != nil {
		last = q.LastDone.InexactFloat64()
	}
	if q.PrevClose != nil {
		prev = q.PrevClose.InexactFloat64()
	}
	return NewSnapshot(symbol, firstPositive(last, prev), float64(q.Volume)), nil
}

// longportSymbol maps a bare ticker to the US market, e.g. TSLA -> TSLA.US.
func longportSymbol(symbol string) string {
	symbol = NormalizeSymbol(symbol)
	if strings.Contains(symbol, ".") {
		return symbol
	}
	return symbol + ".US"
}
