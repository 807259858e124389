package cli

import (
	"strings"
	"testing"

	"github.com/dyike/StockPilot/models"
)

func TestRenderResultSuccess(t *testing.T) {
	res := &models.AggregateResult{
		Success:   true,
		PriceData: &models.PriceResult{Symbol: "TSLA", Price: 200, Currency: "USD", Message: "Trading near highs"},
		AdviceData: &models.AdviceResult{
			Analysis:       "Strong deliveries",
			Recommendation: "Buy",
			Confidence:     75,
			RiskLevel:      "medium",
		},
		TechnicalData: &models.TechnicalResult{
			TechnicalIndicators: map[string]any{"RSI": 62, "MACD": "bullish"},
			FutureOutlook:       "Uptrend intact",
			SupportLevels:       []float64{190, 180},
			ResistanceLevels:    []float64{210, 220},
			TradingVolume:       1500000,
		},
	}

	out := RenderResult(res)
	for _, want := range []string{"TSLA", "$200.00", "Trading near highs", "Buy", "75%", "190, 180", "210, 220", "1500000", "MACD=bullish RSI=62", "Uptrend intact"} {
		if !strings.Contains(out, want) {
			t.Fatalf("rendered result missing %q:\n%s", want, out)
		}
	}
}

func TestRenderResultFailure(t *testing.T) {
	out := RenderResult(models.Failure("", "Could not fetch data for stock symbol ZZZZ"))
	if !strings.Contains(out, "ZZZZ") {
		t.Fatalf("failure message not rendered:\n%s", out)
	}
}

func TestFormatLevels(t *testing.T) {
	if got := formatLevels(nil); got != "-" {
		t.Fatalf("expected '-', got %q", got)
	}
	if got := formatLevels([]float64{117.28, 111.11}); got != "117.28, 111.11" {
		t.Fatalf("unexpected levels %q", got)
	}
}
