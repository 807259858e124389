package app

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/rs/zerolog/log"

	"github.com/dyike/StockPilot/config"
	"github.com/dyike/StockPilot/models"
)

type EngineBuilder func(config.Config) (*Engine, error)

type Option func(*Runtime)

func WithBuilder(builder EngineBuilder) Option {
	return func(r *Runtime) {
		if builder != nil {
			r.builder = builder
		}
	}
}

// WithNotifier receives engine.reloaded and engine.reload_failed events.
func WithNotifier(fn func(topic string, engine *Engine, err error)) Option {
	return func(r *Runtime) {
		r.notify = fn
	}
}

// Runtime keeps the current Engine in sync with the config file. In-flight analyses keep
// the engine they started with.
type Runtime struct {
	cfgMgr *config.Manager
	engine atomic.Pointer[Engine]

	builder EngineBuilder
	notify  func(string, *Engine, error)
	cancel  context.CancelFunc
}

func NewRuntime(cfgMgr *config.Manager, opts ...Option) (*Runtime, error) {
	if cfgMgr == nil {
		return nil, fmt.Errorf("config manager is required")
	}

	rt := &Runtime{
		cfgMgr:  cfgMgr,
		builder: BuildEngine,
	}

	for _, opt := range opts {
		opt(rt)
	}

	if err := rt.reload(cfgMgr.Get()); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	rt.cancel = cancel
	if err := cfgMgr.Watch(ctx, func(cfg config.Config) {
		if err := rt.reload(cfg); err != nil {
			log.Warn().Err(err).Msg("engine reload failed, keeping previous engine")
		}
	}); err != nil {
		cancel()
		return nil, err
	}

	return rt, nil
}

func (r *Runtime) Engine() *Engine {
	return r.engine.Load()
}

func (r *Runtime) Config() config.Config {
	return r.Engine().Config
}

func (r *Runtime) Analyze(ctx context.Context, query, modelID, credential string) *models.AggregateResult {
	return r.Engine().Analyze(ctx, query, modelID, credential)
}

func (r *Runtime) Close() {
	if r.cancel != nil {
		r.cancel()
	}
}

func (r *Runtime) reload(cfg config.Config) error {
	engine, err := r.builder(cfg)
	if err != nil {
		r.emit("engine.reload_failed", nil, err)
		return err
	}
	r.engine.Store(engine)
	log.Info().Uint64("version", engine.Version).Str("provider", cfg.LLMProvider).
		Str("market_data", cfg.MarketDataSource).Msg("engine built")
	r.emit("engine.reloaded", engine, nil)
	return nil
}

func (r *Runtime) emit(topic string, engine *Engine, err error) {
	if r.notify != nil {
		r.notify(topic, engine, err)
	}
}
