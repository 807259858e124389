package agents

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cloudwego/eino-ext/components/model/deepseek"
	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"

	"github.com/dyike/StockPilot/config"
)

const groqBaseURL = "https://api.groq.com/openai/v1"

// ModelFactory builds a chat model bound to one caller's model choice and credential.
// A new model is built for every agent call so no credential outlives its request.
type ModelFactory func(ctx context.Context, modelID, credential string) (model.ToolCallingChatModel, error)

func NewModelFactory(cfg *config.Config) ModelFactory {
	baseURL := cfg.BackendURL
	maxTokens := cfg.MaxTokens

	if cfg.LLMProvider == config.ProviderDeepSeek {
		return func(ctx context.Context, modelID, credential string) (model.ToolCallingChatModel, error) {
			cm, err := deepseek.NewChatModel(ctx, &deepseek.ChatModelConfig{
				APIKey:    credential,
				Model:     modelID,
				BaseURL:   baseURL,
				MaxTokens: maxTokens,
			})
			if err != nil {
				return nil, fmt.Errorf("failed to create DeepSeek model: %w", err)
			}
			return cm, nil
		}
	}

	if baseURL == "" {
		baseURL = groqBaseURL
	}
	return func(ctx context.Context, modelID, credential string) (model.ToolCallingChatModel, error) {
		mcfg := &openai.ChatModelConfig{
			BaseURL: baseURL,
			APIKey:  credential,
			Model:   modelID,
		}
		if maxTokens > 0 {
			mcfg.MaxTokens = &maxTokens
		}
		cm, err := openai.NewChatModel(ctx, mcfg)
		if err != nil {
			return nil, fmt.Errorf("failed to create chat model: %w", err)
		}
		return cm, nil
	}
}

var (
	ErrMissingCredential = errors.New("missing API key")
	ErrInvalidCredential = errors.New("invalid API key format")
)

// ValidateCredential checks the shape of a caller supplied key. Groq keys start with "gsk_".
func ValidateCredential(provider, key string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return ErrMissingCredential
	}
	if provider != config.ProviderDeepSeek && !strings.HasPrefix(key, "gsk_") {
		return fmt.Errorf("%w: API key should start with 'gsk_'", ErrInvalidCredential)
	}
	return nil
}
