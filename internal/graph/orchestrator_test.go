package graph

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dyike/StockPilot/internal/dataflows"
	"github.com/dyike/StockPilot/models"
)

type fakeProvider struct {
	snap  *models.MarketSnapshot
	err   error
	calls atomic.Int32
}

func (f *fakeProvider) Name() string { return "fake" }

func (f *fakeProvider) Fetch(_ context.Context, symbol models.Symbol) (*models.MarketSnapshot, error) {
	f.calls.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	snap := *f.snap
	snap.Symbol = symbol
	return &snap, nil
}

type agentCall struct {
	req        models.AnalysisRequest
	modelID    string
	credential string
}

type fakeAgent struct {
	mu    sync.Mutex
	calls []agentCall
	fail  map[models.Role]error
	panic models.Role
	hook  func(ctx context.Context, role models.Role) error
}

func (f *fakeAgent) Run(ctx context.Context, req models.AnalysisRequest, modelID, credential string, out models.StructuredResult) error {
	f.mu.Lock()
	f.calls = append(f.calls, agentCall{req: req, modelID: modelID, credential: credential})
	f.mu.Unlock()

	if f.hook != nil {
		if err := f.hook(ctx, req.Role); err != nil {
			return err
		}
	}
	if req.Role == f.panic {
		panic("agent blew up")
	}
	if err := f.fail[req.Role]; err != nil {
		return err
	}

	switch o := out.(type) {
	case *models.PriceResult:
		*o = models.PriceResult{Symbol: req.Symbol.String(), Price: 1, Currency: "EUR", Message: "price view for " + credential}
	case *models.AdviceResult:
		*o = models.AdviceResult{Analysis: "solid", Recommendation: "Buy", Confidence: 80, RiskLevel: "low"}
	case *models.TechnicalResult:
		*o = models.TechnicalResult{
			TechnicalIndicators: map[string]any{"RSI": 61.5},
			FutureOutlook:       "bullish",
			SupportLevels:       []float64{1, 2},
			ResistanceLevels:    []float64{3, 4},
			TradingVolume:       42,
		}
	default:
		return fmt.Errorf("unexpected result type %T", out)
	}
	return nil
}

func (f *fakeAgent) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func newTestOrchestrator(t *testing.T, provider *fakeProvider, agent *fakeAgent, opts ...Option) *Orchestrator {
	t.Helper()
	o, err := NewOrchestrator(context.Background(), provider, agent, opts...)
	if err != nil {
		t.Fatalf("NewOrchestrator: %v", err)
	}
	return o
}

func okProvider(price float64) *fakeProvider {
	return &fakeProvider{snap: dataflows.NewSnapshot("", price, 1500000)}
}

func TestAnalyzeSuccess(t *testing.T) {
	provider := okProvider(200)
	agent := &fakeAgent{}
	o := newTestOrchestrator(t, provider, agent)

	res := o.Analyze(context.Background(), "Is Tesla a buy?", "llama-3.3-70b-specdec", "gsk_one")
	if !res.Success {
		t.Fatalf("expected success, got error %q", res.Error)
	}
	if res.RequestID == "" {
		t.Fatalf("expected request id")
	}

	if got := res.PriceData; got.Symbol != "TSLA" || got.Price != 200 || got.Currency != "USD" || got.Message != "price view for gsk_one" {
		t.Fatalf("unexpected price data %+v", got)
	}
	if got := res.AdviceData; got.Recommendation != "Buy" || got.Confidence != 80 || got.RiskLevel != "low" {
		t.Fatalf("unexpected advice data %+v", got)
	}

	tech := res.TechnicalData
	if !reflect.DeepEqual(tech.SupportLevels, []float64{190, 180}) {
		t.Fatalf("support levels must come from market data, got %v", tech.SupportLevels)
	}
	if !reflect.DeepEqual(tech.ResistanceLevels, []float64{210, 220}) {
		t.Fatalf("resistance levels must come from market data, got %v", tech.ResistanceLevels)
	}
	if tech.TradingVolume != 1500000 {
		t.Fatalf("trading volume must come from market data, got %v", tech.TradingVolume)
	}
	if tech.FutureOutlook != "bullish" || tech.TechnicalIndicators["RSI"] != 61.5 {
		t.Fatalf("unexpected technical agent fields %+v", tech)
	}

	if agent.callCount() != 3 {
		t.Fatalf("expected 3 agent calls, got %d", agent.callCount())
	}
	roles := map[models.Role]bool{}
	for _, c := range agent.calls {
		roles[c.req.Role] = true
		if c.req.Symbol != "TSLA" || c.req.PriceContext != 200 {
			t.Fatalf("agent got request %+v", c.req)
		}
		if c.modelID != "llama-3.3-70b-specdec" || c.credential != "gsk_one" {
			t.Fatalf("model/credential not passed through: %q %q", c.modelID, c.credential)
		}
	}
	if len(roles) != 3 {
		t.Fatalf("expected one call per role, got %v", roles)
	}
}

func TestAnalyzeUnresolvedSymbol(t *testing.T) {
	provider := okProvider(100)
	agent := &fakeAgent{}
	o := newTestOrchestrator(t, provider, agent)

	res := o.Analyze(context.Background(), "   ", "m", "gsk_x")
	if res.Success {
		t.Fatalf("expected failure")
	}
	if !strings.Contains(res.Error, "Could not identify stock symbol") {
		t.Fatalf("unexpected error message %q", res.Error)
	}
	if res.PriceData != nil || res.AdviceData != nil || res.TechnicalData != nil {
		t.Fatalf("failure must not carry data")
	}
	if provider.calls.Load() != 0 || agent.callCount() != 0 {
		t.Fatalf("no market data or agent calls expected, got %d/%d", provider.calls.Load(), agent.callCount())
	}
}

func TestAnalyzeDataUnavailable(t *testing.T) {
	tests := []struct {
		name     string
		provider *fakeProvider
	}{
		{name: "provider error", provider: &fakeProvider{err: errors.New("connection reset")}},
		{name: "unsuccessful snapshot", provider: &fakeProvider{snap: models.FailedSnapshot("", errors.New("not found"))}},
		{name: "missing price", provider: &fakeProvider{snap: dataflows.NewSnapshot("", 0, 10)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			agent := &fakeAgent{}
			o := newTestOrchestrator(t, tt.provider, agent)

			res := o.Analyze(context.Background(), "thoughts on (AMD)", "m", "gsk_x")
			if res.Success {
				t.Fatalf("expected failure")
			}
			if res.Error != "Could not fetch data for stock symbol AMD" {
				t.Fatalf("unexpected error message %q", res.Error)
			}
			if agent.callCount() != 0 {
				t.Fatalf("expected zero agent calls, got %d", agent.callCount())
			}
		})
	}
}

func TestAnalyzeSingleAgentFailureFailsWhole(t *testing.T) {
	for _, role := range models.Roles {
		t.Run(string(role), func(t *testing.T) {
			agent := &fakeAgent{fail: map[models.Role]error{role: errors.New("schema mismatch")}}
			o := newTestOrchestrator(t, okProvider(50), agent)

			res := o.Analyze(context.Background(), "nvidia", "m", "gsk_x")
			if res.Success {
				t.Fatalf("expected failure when %s fails", role)
			}
			if res.PriceData != nil || res.AdviceData != nil || res.TechnicalData != nil {
				t.Fatalf("partial results leaked: %+v", res)
			}
			if strings.Contains(res.Error, string(role)) {
				t.Fatalf("error should not name the failing agent: %q", res.Error)
			}
		})
	}
}

func TestAnalyzeRecoversAgentPanic(t *testing.T) {
	agent := &fakeAgent{panic: models.RoleTechnicalAnalyst}
	o := newTestOrchestrator(t, okProvider(50), agent)

	res := o.Analyze(context.Background(), "apple", "m", "gsk_x")
	if res.Success || res.Error == "" {
		t.Fatalf("expected contained failure, got %+v", res)
	}
}

func TestAnalyzeRunsAgentsConcurrently(t *testing.T) {
	var arrived sync.WaitGroup
	arrived.Add(len(models.Roles))
	allArrived := make(chan struct{})
	go func() {
		arrived.Wait()
		close(allArrived)
	}()

	agent := &fakeAgent{hook: func(ctx context.Context, _ models.Role) error {
		arrived.Done()
		select {
		case <-allArrived:
			return nil
		case <-time.After(2 * time.Second):
			return errors.New("agents were not running at the same time")
		}
	}}
	o := newTestOrchestrator(t, okProvider(10), agent)

	res := o.Analyze(context.Background(), "microsoft", "m", "gsk_x")
	if !res.Success {
		t.Fatalf("expected concurrent agents to meet at the barrier, got %q", res.Error)
	}
}

func TestAnalyzeAgentTimeout(t *testing.T) {
	agent := &fakeAgent{hook: func(ctx context.Context, role models.Role) error {
		if role != models.RoleInvestmentAdvisor {
			return nil
		}
		<-ctx.Done()
		return ctx.Err()
	}}
	o := newTestOrchestrator(t, okProvider(10), agent, WithAgentTimeout(50*time.Millisecond))

	done := make(chan *models.AggregateResult, 1)
	go func() { done <- o.Analyze(context.Background(), "amazon", "m", "gsk_x") }()

	select {
	case res := <-done:
		if res.Success {
			t.Fatalf("expected timeout failure")
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("agent timeout was not applied")
	}
}

func TestAnalyzeIsolatesConcurrentRequests(t *testing.T) {
	agent := &fakeAgent{}
	o := newTestOrchestrator(t, okProvider(20), agent)

	var wg sync.WaitGroup
	results := make([]*models.AggregateResult, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = o.Analyze(context.Background(), "google", "m", fmt.Sprintf("gsk_%d", i))
		}(i)
	}
	wg.Wait()

	for i, res := range results {
		if !res.Success {
			t.Fatalf("request %d failed: %s", i, res.Error)
		}
		if want := fmt.Sprintf("price view for gsk_%d", i); res.PriceData.Message != want {
			t.Fatalf("request %d got %q, want %q", i, res.PriceData.Message, want)
		}
	}
	if agent.callCount() != 3*len(results) {
		t.Fatalf("expected %d agent calls, got %d", 3*len(results), agent.callCount())
	}
}

func TestNewOrchestratorRequiresCollaborators(t *testing.T) {
	if _, err := NewOrchestrator(context.Background(), nil, &fakeAgent{}); err == nil {
		t.Fatalf("expected error without provider")
	}
}
