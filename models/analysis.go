package models

import (
	"errors"
	"fmt"
	"strconv"
)

type Role string

const (
	RolePriceAnalyst      Role = "price_analyst"
	RoleInvestmentAdvisor Role = "investment_advisor"
	RoleTechnicalAnalyst  Role = "technical_analyst"
)

// Roles lists every analysis role in the order the orchestrator builds requests.
var Roles = []Role{RolePriceAnalyst, RoleInvestmentAdvisor, RoleTechnicalAnalyst}

// AnalysisRequest is what one agent is asked to do. Build it with NewAnalysisRequest and treat it as read-only.
type AnalysisRequest struct {
	Symbol       Symbol
	PriceContext float64
	Role         Role
}

func NewAnalysisRequest(role Role, symbol Symbol, price float64) AnalysisRequest {
	return AnalysisRequest{Symbol: symbol, PriceContext: price, Role: role}
}

// Persona is the role description used in the system prompt.
func (r AnalysisRequest) Persona() string {
	switch r.Role {
	case RolePriceAnalyst:
		return "a financial analyst"
	case RoleInvestmentAdvisor:
		return "an investment advisor"
	case RoleTechnicalAnalyst:
		return "a technical analyst"
	}
	return "an analyst"
}

// FormattedPrice renders the shared price context without trailing zeros.
func (r AnalysisRequest) FormattedPrice() string {
	return strconv.FormatFloat(r.PriceContext, 'f', -1, 64)
}

// Instruction is the role specific task handed to the model.
func (r AnalysisRequest) Instruction() string {
	switch r.Role {
	case RolePriceAnalyst:
		return fmt.Sprintf("Analyze %s's current market position and performance", r.Symbol)
	case RoleInvestmentAdvisor:
		return fmt.Sprintf("Should investors invest in %s? Provide detailed analysis", r.Symbol)
	case RoleTechnicalAnalyst:
		return fmt.Sprintf("Provide technical analysis for %s", r.Symbol)
	}
	return fmt.Sprintf("Analyze %s", r.Symbol)
}

// StructuredResult is implemented by every schema an agent can be asked to fill.
type StructuredResult interface {
	Validate() error
}

type PriceResult struct {
	Symbol   string  `json:"symbol"`
	Price    float64 `json:"price"`
	Currency string  `json:"currency"`
	Message  string  `json:"message"`
}

func (p *PriceResult) Validate() error {
	if p.Symbol == "" {
		return errors.New("price result: symbol is empty")
	}
	if p.Message == "" {
		return errors.New("price result: message is empty")
	}
	if p.Currency == "" {
		p.Currency = "USD"
	}
	return nil
}

type AdviceResult struct {
	Analysis       string `json:"analysis"`
	Recommendation string `json:"recommendation"`
	Confidence     int    `json:"confidence"`
	RiskLevel      string `json:"risk_level"`
}

func (a *AdviceResult) Validate() error {
	switch {
	case a.Analysis == "":
		return errors.New("advice result: analysis is empty")
	case a.Recommendation == "":
		return errors.New("advice result: recommendation is empty")
	case a.RiskLevel == "":
		return errors.New("advice result: risk_level is empty")
	}
	return nil
}

type TechnicalResult struct {
	TechnicalIndicators map[string]any `json:"technical_indicators"`
	FutureOutlook       string         `json:"future_outlook"`
	SupportLevels       []float64      `json:"support_levels"`
	ResistanceLevels    []float64      `json:"resistance_levels"`
	TradingVolume       float64        `json:"trading_volume"`
}

func (t *TechnicalResult) Validate() error {
	if t.TechnicalIndicators == nil {
		return errors.New("technical result: technical_indicators is missing")
	}
	if t.FutureOutlook == "" {
		return errors.New("technical result: future_outlook is empty")
	}
	return nil
}

// AggregateResult is the single response of one analysis. On failure only Error is set.
type AggregateResult struct {
	Success       bool             `json:"success"`
	PriceData     *PriceResult     `json:"price_data,omitempty"`
	AdviceData    *AdviceResult    `json:"advice_data,omitempty"`
	TechnicalData *TechnicalResult `json:"technical_data,omitempty"`
	Error         string           `json:"error,omitempty"`

	RequestID string `json:"-"`
}

func Failure(requestID, message string) *AggregateResult {
	return &AggregateResult{Success: false, Error: message, RequestID: requestID}
}
