package app

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/dyike/StockPilot/config"
	"github.com/dyike/StockPilot/internal/agents"
	"github.com/dyike/StockPilot/internal/dataflows"
	"github.com/dyike/StockPilot/internal/graph"
	"github.com/dyike/StockPilot/models"
)

// Engine is one immutable build of the analysis pipeline for a given config.
type Engine struct {
	Config       config.Config
	Orchestrator *graph.Orchestrator
	BuiltAt      time.Time
	Version      uint64
}

var engineSeq atomic.Uint64

func BuildEngine(cfg config.Config) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	provider, err := dataflows.NewProvider(&cfg)
	if err != nil {
		return nil, fmt.Errorf("market data provider: %w", err)
	}

	agent := agents.NewChatAgent(agents.NewModelFactory(&cfg))
	orch, err := graph.NewOrchestrator(context.Background(), provider, agent,
		graph.WithAgentTimeout(cfg.AgentTimeout.Duration))
	if err != nil {
		return nil, err
	}

	return &Engine{
		Config:       cfg,
		Orchestrator: orch,
		BuiltAt:      time.Now(),
		Version:      engineSeq.Add(1),
	}, nil
}

func (e *Engine) Analyze(ctx context.Context, query, modelID, credential string) *models.AggregateResult {
	if modelID == "" {
		modelID = e.Config.DefaultModel
	}
	return e.Orchestrator.Analyze(ctx, query, modelID, credential)
}
