package consts

const (
	// Analyst Team
	Agent_PriceAnalyst      = "Price Analyst"
	Agent_InvestmentAdvisor = "Investment Advisor"
	Agent_TechnicalAnalyst  = "Technical Analyst"
)
