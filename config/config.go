package config

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const envPrefix = "STOCKPILOT"

const (
	ProviderGroq     = "groq"
	ProviderDeepSeek = "deepseek"

	SourceYahoo    = "yahoo"
	SourceLongport = "longport"
	SourceFinnhub  = "finnhub"
)

type Config struct {
	LLMProvider  string `json:"llm_provider" envconfig:"LLM_PROVIDER"`
	// BackendURL overrides the provider's default endpoint when set.
	BackendURL   string `json:"backend_url" envconfig:"BACKEND_URL"`
	DefaultModel string `json:"default_model" envconfig:"DEFAULT_MODEL"`
	MaxTokens    int    `json:"max_tokens" split_words:"true"`

	// AgentTimeout bounds the concurrent agent phase of one analysis. Zero means no deadline.
	AgentTimeout Duration `json:"agent_timeout" envconfig:"AGENT_TIMEOUT"`

	MarketDataSource string `json:"market_data_source" envconfig:"MARKET_DATA_SOURCE"`

	// Generic names are read only with the STOCKPILOT_ prefix.
	ListenAddr string `json:"listen_addr" split_words:"true"`
	Debug      bool   `json:"debug" split_words:"true"`

	// Eino Debug configuration
	EinoDebugEnabled bool `json:"eino_debug_enabled" envconfig:"EINO_DEBUG_ENABLED"`
	EinoDebugPort    int  `json:"eino_debug_port" envconfig:"EINO_DEBUG_PORT"`

	// Data provider secrets are read from the environment only and never written to disk.
	LongportAppKey      string `json:"-" envconfig:"LONGPORT_APP_KEY"`
	LongportAppSecret   string `json:"-" envconfig:"LONGPORT_APP_SECRET"`
	LongportAccessToken string `json:"-" envconfig:"LONGPORT_ACCESS_TOKEN"`
	FinnhubAPIKey       string `json:"-" envconfig:"FINNHUB_API_KEY"`
}

func DefaultConfig() *Config {
	cfg := &Config{
		LLMProvider:  ProviderGroq,
		DefaultModel: "llama-3.3-70b-specdec",
		MaxTokens:    4096,

		MarketDataSource: SourceYahoo,

		ListenAddr: ":8080",
		Debug:      false,

		EinoDebugEnabled: false,
		EinoDebugPort:    52538,
	}

	// Load environment variables from .env file
	_ = godotenv.Load()

	// Override with environment variables if they exist
	_ = cfg.LoadEnv()

	return cfg
}

// LoadEnv overlays STOCKPILOT_* variables onto c. Fields with an envconfig tag also fall
// back to the unprefixed name, e.g. FINNHUB_API_KEY.
// Unset variables leave the current value untouched.
func (c *Config) LoadEnv() error {
	if err := envconfig.Process(envPrefix, c); err != nil {
		return fmt.Errorf("load env config: %w", err)
	}
	return nil
}

func (c *Config) Validate() error {
	switch c.LLMProvider {
	case ProviderGroq, ProviderDeepSeek:
	default:
		return fmt.Errorf("unsupported llm provider %q", c.LLMProvider)
	}

	switch c.MarketDataSource {
	case SourceYahoo:
	case SourceLongport:
		if c.LongportAppKey == "" || c.LongportAppSecret == "" || c.LongportAccessToken == "" {
			return fmt.Errorf("longport market data requires LONGPORT_APP_KEY, LONGPORT_APP_SECRET and LONGPORT_ACCESS_TOKEN")
		}
	case SourceFinnhub:
		if c.FinnhubAPIKey == "" {
			return fmt.Errorf("finnhub market data requires FINNHUB_API_KEY")
		}
	default:
		return fmt.Errorf("unsupported market data source %q", c.MarketDataSource)
	}

	if c.MaxTokens < 0 {
		return fmt.Errorf("max_tokens must not be negative")
	}
	if c.AgentTimeout.Duration < 0 {
		return fmt.Errorf("agent_timeout must not be negative")
	}
	return nil
}
