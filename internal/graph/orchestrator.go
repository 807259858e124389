// Package graph coordinates one stock analysis: symbol resolution, market data,
// and the concurrent fan-out to the three analysis agents.
package graph

import (
	"context"
	"fmt"
	"time"

	"github.com/cloudwego/eino/compose"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/dyike/StockPilot/consts"
	"github.com/dyike/StockPilot/internal/agents"
	"github.com/dyike/StockPilot/internal/dataflows"
	"github.com/dyike/StockPilot/internal/resolver"
	"github.com/dyike/StockPilot/models"
)

type Option func(*Orchestrator)

func WithResolver(r *resolver.Resolver) Option {
	return func(o *Orchestrator) {
		if r != nil {
			o.resolver = r
		}
	}
}

// WithAgentTimeout bounds the agent phase. Without it a hanging agent call blocks the analysis
// until the caller's context ends.
func WithAgentTimeout(d time.Duration) Option {
	return func(o *Orchestrator) {
		if d > 0 {
			o.agentTimeout = d
		}
	}
}

type Orchestrator struct {
	resolver     *resolver.Resolver
	provider     dataflows.Provider
	agent        agents.Agent
	agentTimeout time.Duration
	fanout       compose.Runnable[*analysisInput, map[string]any]
}

// analysisInput is the shared context every agent sees.
type analysisInput struct {
	symbol     models.Symbol
	price      float64
	modelID    string
	credential string
}

// agentCalls carries one immutable request per role into the parallel stage.
type agentCalls struct {
	requests   map[models.Role]models.AnalysisRequest
	modelID    string
	credential string
}

func NewOrchestrator(ctx context.Context, provider dataflows.Provider, agent agents.Agent, opts ...Option) (*Orchestrator, error) {
	if provider == nil || agent == nil {
		return nil, fmt.Errorf("market data provider and agent are required")
	}

	o := &Orchestrator{
		resolver: resolver.New(),
		provider: provider,
		agent:    agent,
	}
	for _, opt := range opts {
		opt(o)
	}

	fanout, err := buildFanout(ctx, agent)
	if err != nil {
		return nil, fmt.Errorf("compile analysis graph: %w", err)
	}
	o.fanout = fanout
	return o, nil
}

// buildFanout compiles prepare -> {price, advice, technical}. The parallel stage only
// completes when every branch succeeded; any branch error fails the whole run.
func buildFanout(ctx context.Context, agent agents.Agent) (compose.Runnable[*analysisInput, map[string]any], error) {
	parallel := compose.NewParallel()
	parallel.AddLambda(consts.PriceAnalyst,
		compose.InvokableLambda(runRole[models.PriceResult](agent, models.RolePriceAnalyst)),
		compose.WithNodeName(consts.Agent_PriceAnalyst))
	parallel.AddLambda(consts.InvestmentAdvisor,
		compose.InvokableLambda(runRole[models.AdviceResult](agent, models.RoleInvestmentAdvisor)),
		compose.WithNodeName(consts.Agent_InvestmentAdvisor))
	parallel.AddLambda(consts.TechnicalAnalyst,
		compose.InvokableLambda(runRole[models.TechnicalResult](agent, models.RoleTechnicalAnalyst)),
		compose.WithNodeName(consts.Agent_TechnicalAnalyst))

	chain := compose.NewChain[*analysisInput, map[string]any]()
	chain.
		AppendLambda(compose.InvokableLambda(prepareRequests), compose.WithNodeName(consts.PrepareRequests)).
		AppendParallel(parallel)

	return chain.Compile(ctx, compose.WithGraphName("StockPilot-Analysis"))
}

func prepareRequests(_ context.Context, in *analysisInput) (*agentCalls, error) {
	calls := &agentCalls{
		requests:   make(map[models.Role]models.AnalysisRequest, len(models.Roles)),
		modelID:    in.modelID,
		credential: in.credential,
	}
	for _, role := range models.Roles {
		calls.requests[role] = models.NewAnalysisRequest(role, in.symbol, in.price)
	}
	return calls, nil
}

func runRole[T any, PT interface {
	*T
	models.StructuredResult
}](agent agents.Agent, role models.Role) func(context.Context, *agentCalls) (PT, error) {
	return func(ctx context.Context, calls *agentCalls) (out PT, err error) {
		defer func() {
			if r := recover(); r != nil {
				out, err = nil, fmt.Errorf("%w: %s panicked: %v", ErrAgentFailure, role, r)
			}
		}()

		req, ok := calls.requests[role]
		if !ok {
			return nil, fmt.Errorf("%w: no request for %s", ErrAgentFailure, role)
		}
		result := PT(new(T))
		if err := agent.Run(ctx, req, calls.modelID, calls.credential, result); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrAgentFailure, role, err)
		}
		return result, nil
	}
}

// Analyze resolves query, fetches market data and runs the three agents concurrently.
// It never returns an error: every failure is reported through AggregateResult.Error.
func (o *Orchestrator) Analyze(ctx context.Context, query, modelID, credential string) (result *models.AggregateResult) {
	requestID := uuid.NewString()
	logger := log.With().Str("request_id", requestID).Logger()

	defer func() {
		if r := recover(); r != nil {
			logger.Error().Interface("panic", r).Msg("analysis panicked")
			result = models.Failure(requestID, userMessage(fmt.Errorf("%w: %v", ErrAgentFailure, r)))
		}
	}()

	result, err := o.analyze(ctx, logger, query, modelID, credential)
	if err != nil {
		logger.Warn().Err(err).Msg("analysis failed")
		return models.Failure(requestID, userMessage(err))
	}
	result.RequestID = requestID
	logger.Info().Str("symbol", result.PriceData.Symbol).Msg("analysis completed")
	return result
}

func (o *Orchestrator) analyze(ctx context.Context, logger zerolog.Logger, query, modelID, credential string) (*models.AggregateResult, error) {
	symbol := o.resolver.Resolve(query)
	if symbol.IsUnknown() {
		return nil, ErrUnresolvedSymbol
	}
	logger.Debug().Str("symbol", symbol.String()).Str("model", modelID).Msg("symbol resolved")

	snap, err := o.fetchSnapshot(ctx, symbol)
	if err != nil {
		return nil, err
	}

	agentCtx, cancel := context.WithCancel(ctx)
	if o.agentTimeout > 0 {
		agentCtx, cancel = context.WithTimeout(ctx, o.agentTimeout)
	}
	defer cancel()

	outputs, err := o.fanout.Invoke(agentCtx, &analysisInput{
		symbol:     symbol,
		price:      *snap.Price,
		modelID:    modelID,
		credential: credential,
	}, compose.WithCallbacks(newLoggerCallback(logger)))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrAgentFailure, err)
	}

	return assemble(symbol, snap, outputs)
}

func (o *Orchestrator) fetchSnapshot(ctx context.Context, symbol models.Symbol) (snap *models.MarketSnapshot, err error) {
	defer func() {
		if r := recover(); r != nil {
			snap, err = nil, &dataUnavailableError{symbol: symbol.String(), cause: fmt.Errorf("%s provider panicked: %v", o.provider.Name(), r)}
		}
	}()

	snap, err = o.provider.Fetch(ctx, symbol)
	switch {
	case err != nil:
		return nil, &dataUnavailableError{symbol: symbol.String(), cause: err}
	case snap == nil || !snap.Success:
		cause := fmt.Errorf("%s returned no data", o.provider.Name())
		if snap != nil && snap.Error != "" {
			cause = fmt.Errorf("%s: %s", o.provider.Name(), snap.Error)
		}
		return nil, &dataUnavailableError{symbol: symbol.String(), cause: cause}
	case !snap.HasPrice():
		return nil, &dataUnavailableError{symbol: symbol.String(), cause: fmt.Errorf("%s returned no price", o.provider.Name())}
	}
	return snap, nil
}

// assemble builds the success result. Bands and volume always come from the snapshot,
// never from the technical agent.
func assemble(symbol models.Symbol, snap *models.MarketSnapshot, outputs map[string]any) (*models.AggregateResult, error) {
	price, ok := outputs[consts.PriceAnalyst].(*models.PriceResult)
	if !ok || price == nil {
		return nil, fmt.Errorf("%w: missing price analysis", ErrAgentFailure)
	}
	advice, ok := outputs[consts.InvestmentAdvisor].(*models.AdviceResult)
	if !ok || advice == nil {
		return nil, fmt.Errorf("%w: missing investment advice", ErrAgentFailure)
	}
	technical, ok := outputs[consts.TechnicalAnalyst].(*models.TechnicalResult)
	if !ok || technical == nil {
		return nil, fmt.Errorf("%w: missing technical analysis", ErrAgentFailure)
	}

	return &models.AggregateResult{
		Success: true,
		PriceData: &models.PriceResult{
			Symbol:   symbol.String(),
			Price:    *snap.Price,
			Currency: "USD",
			Message:  price.Message,
		},
		AdviceData: &models.AdviceResult{
			Analysis:       advice.Analysis,
			Recommendation: advice.Recommendation,
			Confidence:     advice.Confidence,
			RiskLevel:      advice.RiskLevel,
		},
		TechnicalData: &models.TechnicalResult{
			TechnicalIndicators: technical.TechnicalIndicators,
			FutureOutlook:       technical.FutureOutlook,
			SupportLevels:       append([]float64(nil), snap.SupportLevels...),
			ResistanceLevels:    append([]float64(nil), snap.ResistanceLevels...),
			TradingVolume:       snap.Volume,
		},
	}, nil
}
