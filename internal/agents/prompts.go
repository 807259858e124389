package agents

import (
	"context"

	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/schema"

	"github.com/dyike/StockPilot/models"
)

var analystTemplate = prompt.FromMessages(schema.FString,
	schema.SystemMessage(`You are {persona}. Analyze {symbol} (price: ${price}).
Always answer by calling the {tool} tool exactly once with every required field filled in.`),
	schema.UserMessage("{instruction}"),
)

func buildMessages(ctx context.Context, req models.AnalysisRequest, toolName string) ([]*schema.Message, error) {
	return analystTemplate.Format(ctx, map[string]any{
		"persona":     req.Persona(),
		"symbol":      req.Symbol.String(),
		"price":       req.FormattedPrice(),
		"tool":        toolName,
		"instruction": req.Instruction(),
	})
}
