package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/mattn/go-isatty"

	"github.com/dyike/StockPilot/consts"
	"github.com/dyike/StockPilot/internal/agents"
)

// isInteractive reports whether stdin is a terminal that survey can prompt on.
func isInteractive() bool {
	fd := os.Stdin.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// PromptForQuery asks for a free-text question about a stock.
func PromptForQuery() (string, error) {
	var query string
	prompt := &survey.Input{
		Message: "What would you like to know? (e.g., Is Tesla a good buy?)",
		Help:    "Mention a company name or a ticker such as (TSLA) or symbol: NVDA",
	}

	err := survey.AskOne(prompt, &query, survey.WithValidator(func(val interface{}) error {
		if str, _ := val.(string); strings.TrimSpace(str) == "" {
			return errors.New("query cannot be empty")
		}
		return nil
	}))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(query), nil
}

// PromptForModel lets the user pick one of the provider's presets.
func PromptForModel(provider, defaultModel string) (string, error) {
	presets := consts.ModelPresets(provider)
	options := make([]string, len(presets))
	defaultOption := ""
	for i, p := range presets {
		options[i] = fmt.Sprintf("%s - %s", p.Name, p.ID)
		if p.ID == defaultModel {
			defaultOption = options[i]
		}
	}

	prompt := &survey.Select{
		Message: "Select the model:",
		Options: options,
	}
	if defaultOption != "" {
		prompt.Default = defaultOption
	}

	var index int
	if err := survey.AskOne(prompt, &index); err != nil {
		return "", err
	}
	return presets[index].ID, nil
}

// PromptForAPIKey asks for the model provider key without echoing it.
func PromptForAPIKey(provider string) (string, error) {
	var key string
	prompt := &survey.Password{
		Message: fmt.Sprintf("Enter your %s API key:", provider),
		Help:    "The key is used for this analysis only and is never written to disk",
	}

	err := survey.AskOne(prompt, &key, survey.WithValidator(func(val interface{}) error {
		str, _ := val.(string)
		return agents.ValidateCredential(provider, str)
	}))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(key), nil
}
