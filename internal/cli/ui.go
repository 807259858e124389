package cli

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/dyike/StockPilot/config"
	"github.com/dyike/StockPilot/consts"
	"github.com/dyike/StockPilot/models"
)

const panelWidth = 80

// UI styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7C3AED")).
			Background(lipgloss.Color("#1F2937")).
			Padding(0, 1).
			MarginBottom(1)

	panelStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			Padding(0, 2).
			Width(panelWidth)

	sectionStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#3B82F6"))

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6B7280"))

	buyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#10B981")).
			Bold(true)

	holdStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F59E0B")).
			Bold(true)

	sellStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#EF4444")).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#EF4444")).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#EF4444")).
			Padding(0, 2).
			Width(panelWidth)
)

// RenderResult formats an aggregate for the terminal.
func RenderResult(res *models.AggregateResult) string {
	if !res.Success {
		return errorStyle.Render("✗ " + res.Error)
	}

	var b strings.Builder
	price := res.PriceData
	b.WriteString(titleStyle.Render(fmt.Sprintf("%s  %s %s", price.Symbol, formatPrice(price.Price), price.Currency)))
	b.WriteString("\n")

	b.WriteString(panel("#10B981", "Price Analysis", price.Message))
	b.WriteString("\n")

	advice := res.AdviceData
	b.WriteString(panel("#F59E0B", "Investment Advice",
		field("Recommendation", recommendationStyle(advice.Recommendation).Render(advice.Recommendation)),
		field("Confidence", fmt.Sprintf("%d%%", advice.Confidence)),
		field("Risk level", advice.RiskLevel),
		"",
		advice.Analysis,
	))
	b.WriteString("\n")

	tech := res.TechnicalData
	lines := []string{
		field("Support", formatLevels(tech.SupportLevels)),
		field("Resistance", formatLevels(tech.ResistanceLevels)),
		field("Volume", strconv.FormatFloat(tech.TradingVolume, 'f', 0, 64)),
	}
	if indicators := formatIndicators(tech.TechnicalIndicators); indicators != "" {
		lines = append(lines, field("Indicators", indicators))
	}
	lines = append(lines, "", tech.FutureOutlook)
	b.WriteString(panel("#3B82F6", "Technical Analysis", lines...))
	return b.String()
}

// RenderModels lists the presets of provider, marking the default model.
func RenderModels(provider, defaultModel string) string {
	var b strings.Builder
	b.WriteString(sectionStyle.Render(fmt.Sprintf("Models (%s)", provider)))
	b.WriteString("\n")
	for _, p := range consts.ModelPresets(provider) {
		marker := "  "
		if p.ID == defaultModel {
			marker = "* "
		}
		fmt.Fprintf(&b, "%s%-42s %s\n", marker, p.ID, labelStyle.Render(p.Name))
	}
	return b.String()
}

func renderConfig(cfg config.Config, path string) string {
	configured := func(v string) string {
		if v == "" {
			return "not configured"
		}
		return "configured"
	}
	timeout := "none"
	if cfg.AgentTimeout.Duration > 0 {
		timeout = cfg.AgentTimeout.String()
	}
	backend := cfg.BackendURL
	if backend == "" {
		backend = "provider default"
	}

	return panel("#7C3AED", "StockPilot Configuration",
		field("Config file", path),
		field("LLM provider", cfg.LLMProvider),
		field("Backend URL", backend),
		field("Default model", cfg.DefaultModel),
		field("Max tokens", strconv.Itoa(cfg.MaxTokens)),
		field("Agent timeout", timeout),
		field("Market data", cfg.MarketDataSource),
		field("Listen address", cfg.ListenAddr),
		field("Debug", strconv.FormatBool(cfg.Debug)),
		field("Eino debug", strconv.FormatBool(cfg.EinoDebugEnabled)),
		"",
		field("Longport", configured(cfg.LongportAccessToken)),
		field("Finnhub", configured(cfg.FinnhubAPIKey)),
	)
}

func panel(color, title string, lines ...string) string {
	body := sectionStyle.Render(title) + "\n" + strings.Join(lines, "\n")
	return panelStyle.BorderForeground(lipgloss.Color(color)).Render(body)
}

func field(label, value string) string {
	return labelStyle.Render(fmt.Sprintf("%-15s", label+":")) + " " + value
}

func recommendationStyle(rec string) lipgloss.Style {
	switch strings.ToUpper(strings.TrimSpace(rec)) {
	case "BUY", "STRONG BUY":
		return buyStyle
	case "SELL", "STRONG SELL":
		return sellStyle
	default:
		return holdStyle
	}
}

func formatPrice(p float64) string {
	return "$" + strconv.FormatFloat(p, 'f', 2, 64)
}

func formatLevels(levels []float64) string {
	if len(levels) == 0 {
		return "-"
	}
	parts := make([]string, len(levels))
	for i, l := range levels {
		parts[i] = strconv.FormatFloat(l, 'f', -1, 64)
	}
	return strings.Join(parts, ", ")
}

func formatIndicators(indicators map[string]any) string {
	keys := make([]string, 0, len(indicators))
	for k := range indicators {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s=%v", k, indicators[k])
	}
	return strings.Join(parts, " ")
}
