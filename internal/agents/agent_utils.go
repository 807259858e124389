package agents

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/cloudwego/eino/schema"

	"github.com/dyike/StockPilot/models"
)

// ErrSchemaViolation is returned when a model answer does not fit the role's result schema.
var ErrSchemaViolation = errors.New("structured result does not match schema")

// extractPayload returns the JSON arguments of the result tool call, falling back to a JSON message body.
func extractPayload(msg *schema.Message, toolName string) (string, error) {
	if msg == nil {
		return "", fmt.Errorf("%w: empty response", ErrSchemaViolation)
	}

	if len(msg.ToolCalls) > 0 {
		for _, tc := range msg.ToolCalls {
			if tc.Function.Name == toolName {
				return tc.Function.Arguments, nil
			}
		}
		return "", fmt.Errorf("%w: unexpected tool call %q", ErrSchemaViolation, msg.ToolCalls[0].Function.Name)
	}

	content := stripCodeFence(msg.Content)
	if content == "" {
		return "", fmt.Errorf("%w: empty response", ErrSchemaViolation)
	}
	return content, nil
}

func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimPrefix(s, "json")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

func decodeResult(payload string, rs resultSchema, out models.StructuredResult) error {
	var raw map[string]any
	if err := sonic.UnmarshalString(payload, &raw); err != nil {
		return fmt.Errorf("%w: %v", ErrSchemaViolation, err)
	}
	for _, key := range rs.required {
		if v, ok := raw[key]; !ok || v == nil {
			return fmt.Errorf("%w: missing field %q", ErrSchemaViolation, key)
		}
	}
	for _, key := range rs.ignored {
		delete(raw, key)
	}
	for key, typ := range rs.numeric {
		v, ok := raw[key].(string)
		if !ok {
			continue
		}
		n, err := parseNumeric(v, typ)
		if err != nil {
			return fmt.Errorf("%w: field %q: %v", ErrSchemaViolation, key, err)
		}
		raw[key] = n
	}

	normalized, err := sonic.Marshal(raw)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSchemaViolation, err)
	}
	if err := sonic.Unmarshal(normalized, out); err != nil {
		return fmt.Errorf("%w: %v", ErrSchemaViolation, err)
	}
	if err := out.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrSchemaViolation, err)
	}
	return nil
}

// parseNumeric reads a number the model wrote as a string. Integer fields reject fractions.
func parseNumeric(s string, typ schema.DataType) (float64, error) {
	n, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, fmt.Errorf("%q is not a number", s)
	}
	if typ == schema.Integer && n != math.Trunc(n) {
		return 0, fmt.Errorf("%q is not an integer", s)
	}
	return n, nil
}
