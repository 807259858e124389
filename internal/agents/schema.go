package agents

import (
	"sort"

	"github.com/cloudwego/eino/schema"

	"github.com/dyike/StockPilot/models"
)

// resultSchema is the structured output contract of one role, offered to the model as a tool.
type resultSchema struct {
	tool     *schema.ToolInfo
	required []string
	// numeric fields accept numbers written as strings, e.g. "85".
	numeric map[string]schema.DataType
	// ignored fields must be present but their values are replaced by market data.
	ignored []string
}

func newResultSchema(name, desc string, params map[string]*schema.ParameterInfo, ignored ...string) resultSchema {
	required := make([]string, 0, len(params))
	numeric := make(map[string]schema.DataType)
	for key, p := range params {
		if p.Required {
			required = append(required, key)
		}
		if p.Type == schema.Number || p.Type == schema.Integer {
			numeric[key] = p.Type
		}
	}
	sort.Strings(required)

	return resultSchema{
		tool: &schema.ToolInfo{
			Name:        name,
			Desc:        desc,
			ParamsOneOf: schema.NewParamsOneOfByParams(params),
		},
		required: required,
		numeric:  numeric,
		ignored:  ignored,
	}
}

var numberList = &schema.ParameterInfo{Type: schema.Number}

var resultSchemas = map[models.Role]resultSchema{
	models.RolePriceAnalyst: newResultSchema("submit_price_analysis",
		"Report the stock price analysis",
		map[string]*schema.ParameterInfo{
			"symbol":   {Type: schema.String, Desc: "The ticker symbol", Required: true},
			"price":    {Type: schema.Number, Desc: "The current price", Required: true},
			"currency": {Type: schema.String, Desc: "Price currency, USD when unsure"},
			"message":  {Type: schema.String, Desc: "Analysis of the current market position and performance", Required: true},
		}),
	models.RoleInvestmentAdvisor: newResultSchema("submit_investment_advice",
		"Report the investment advice",
		map[string]*schema.ParameterInfo{
			"analysis":       {Type: schema.String, Desc: "Detailed investment analysis", Required: true},
			"recommendation": {Type: schema.String, Desc: "Buy, hold or sell recommendation with reasoning", Required: true},
			"confidence":     {Type: schema.Integer, Desc: "Confidence in the recommendation from 0 to 100", Required: true},
			"risk_level":     {Type: schema.String, Desc: "Low, medium or high", Required: true},
		}),
	models.RoleTechnicalAnalyst: newResultSchema("submit_technical_analysis",
		"Report the technical analysis",
		map[string]*schema.ParameterInfo{
			"technical_indicators": {Type: schema.Object, Desc: "Indicator name to value, e.g. RSI, MACD, moving averages", Required: true},
			"future_outlook":       {Type: schema.String, Desc: "Expected price direction and reasoning", Required: true},
			"support_levels":       {Type: schema.Array, ElemInfo: numberList, Desc: "Support price levels", Required: true},
			"resistance_levels":    {Type: schema.Array, ElemInfo: numberList, Desc: "Resistance price levels", Required: true},
			"trading_volume":       {Type: schema.Number, Desc: "Recent trading volume", Required: true},
		}, "support_levels", "resistance_levels", "trading_volume"),
}
