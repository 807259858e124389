// Package agents runs one role of the stock analysis against a chat model and
// decodes its structured answer.
package agents

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/schema"
	"github.com/rs/zerolog/log"

	"github.com/dyike/StockPilot/models"
)

// Agent fills out with the structured answer for req. out must be the result type of req.Role.
type Agent interface {
	Run(ctx context.Context, req models.AnalysisRequest, modelID, credential string, out models.StructuredResult) error
}

type ChatAgent struct {
	newModel ModelFactory
}

func NewChatAgent(factory ModelFactory) *ChatAgent {
	return &ChatAgent{newModel: factory}
}

func (a *ChatAgent) Run(ctx context.Context, req models.AnalysisRequest, modelID, credential string, out models.StructuredResult) error {
	rs, ok := resultSchemas[req.Role]
	if !ok {
		return fmt.Errorf("unknown analysis role %q", req.Role)
	}

	cm, err := a.newModel(ctx, modelID, credential)
	if err != nil {
		return err
	}
	bound, err := cm.WithTools([]*schema.ToolInfo{rs.tool})
	if err != nil {
		return fmt.Errorf("bind result tool: %w", err)
	}

	msgs, err := buildMessages(ctx, req, rs.tool.Name)
	if err != nil {
		return fmt.Errorf("format prompt: %w", err)
	}

	resp, err := bound.Generate(ctx, msgs)
	if err != nil {
		return fmt.Errorf("%s generate: %w", req.Role, err)
	}

	payload, err := extractPayload(resp, rs.tool.Name)
	if err != nil {
		return err
	}
	if err := decodeResult(payload, rs, out); err != nil {
		log.Debug().Str("role", string(req.Role)).Str("payload", payload).Msg("rejected structured result")
		return err
	}
	return nil
}
