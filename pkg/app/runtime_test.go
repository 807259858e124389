package app

import (
	"encoding/json"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/dyike/StockPilot/config"
)

func baseConfig() *config.Config {
	return &config.Config{
		LLMProvider:      config.ProviderGroq,
		DefaultModel:     "llama-3.3-70b-specdec",
		MaxTokens:        1024,
		MarketDataSource: config.SourceYahoo,
		ListenAddr:       ":8080",
	}
}

func TestBuildEngine(t *testing.T) {
	engine, err := BuildEngine(*baseConfig())
	if err != nil {
		t.Fatalf("BuildEngine: %v", err)
	}
	if engine.Orchestrator == nil {
		t.Fatalf("engine has no orchestrator")
	}
	if engine.Version == 0 || engine.BuiltAt.IsZero() {
		t.Fatalf("engine metadata not set: %+v", engine)
	}

	cfg := baseConfig()
	cfg.MarketDataSource = config.SourceFinnhub
	if _, err := BuildEngine(*cfg); err == nil {
		t.Fatalf("expected error for finnhub without api key")
	}
}

func TestRuntimeRebuildsOnConfigChange(t *testing.T) {
	dir := t.TempDir()
	mgr, err := config.NewManager(
		config.WithConfigDir(dir),
		config.WithInitialConfig(baseConfig()),
		config.WithDebounce(20*time.Millisecond),
	)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}

	var mu sync.Mutex
	var topics []string
	reloaded := make(chan *Engine, 4)

	builder := func(cfg config.Config) (*Engine, error) {
		return &Engine{Config: cfg, BuiltAt: time.Now(), Version: engineSeq.Add(1)}, nil
	}

	rt, err := NewRuntime(mgr, WithBuilder(builder), WithNotifier(func(topic string, engine *Engine, _ error) {
		mu.Lock()
		topics = append(topics, topic)
		mu.Unlock()
		if engine != nil {
			reloaded <- engine
		}
	}))
	if err != nil {
		t.Fatalf("NewRuntime: %v", err)
	}
	defer rt.Close()

	first := <-reloaded
	if rt.Engine() != first {
		t.Fatalf("runtime does not expose the initial engine")
	}

	cfg := mgr.Get()
	cfg.DefaultModel = "deepseek-chat"
	cfg.LLMProvider = config.ProviderDeepSeek
	writeJSON(t, mgr.Path(), cfg)

	select {
	case next := <-reloaded:
		if next.Version <= first.Version {
			t.Fatalf("expected a newer engine, got version %d after %d", next.Version, first.Version)
		}
		if rt.Config().DefaultModel != "deepseek-chat" {
			t.Fatalf("runtime config not updated: %q", rt.Config().DefaultModel)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("runtime did not rebuild after config change")
	}

	mu.Lock()
	defer mu.Unlock()
	if len(topics) < 2 || topics[0] != "engine.reloaded" {
		t.Fatalf("unexpected notifications %v", topics)
	}
}

func TestRuntimeKeepsEngineWhenRebuildFails(t *testing.T) {
	calls := 0
	builder := func(cfg config.Config) (*Engine, error) {
		calls++
		if calls > 1 {
			return nil, errors.New("cannot build")
		}
		return &Engine{Config: cfg, Version: 1}, nil
	}

	mgr, err := config.NewManager(config.WithConfigDir(t.TempDir()), config.WithInitialConfig(baseConfig()))
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	rt, err := NewRuntime(mgr, WithBuilder(builder))
	if err != nil {
		t.Fatalf("NewRuntime: %v", err)
	}
	defer rt.Close()

	before := rt.Engine()
	if err := rt.reload(mgr.Get()); err == nil {
		t.Fatalf("expected rebuild error")
	}
	if rt.Engine() != before {
		t.Fatalf("failed rebuild replaced the engine")
	}
}

func TestNewRuntimeRequiresManager(t *testing.T) {
	if _, err := NewRuntime(nil); err == nil {
		t.Fatalf("expected error without config manager")
	}
}

func writeJSON(t *testing.T, path string, cfg config.Config) {
	t.Helper()
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		t.Fatalf("rename: %v", err)
	}
}
