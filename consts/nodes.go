package consts

const (
	// 分析师节点
	PriceAnalyst      = "price_analyst"
	InvestmentAdvisor = "investment_advisor"
	TechnicalAnalyst  = "technical_analyst"

	// 编排节点
	PrepareRequests = "prepare_requests"
)
