// Package resolver maps free-text questions about a company to a ticker symbol.
package resolver

import (
	"regexp"
	"strings"

	"github.com/dyike/StockPilot/models"
)

// explicitPattern matches "symbol: TSLA", "symbol TSLA", "(TSLA)" and "[TSLA]" on the uppercased query.
var explicitPattern = regexp.MustCompile(`(?:SYMBOL:?\s*|[\(\[])\s*([A-Z]+)[\)\]]?`)

// Alias maps a company name to its ticker.
type Alias struct {
	Name   string
	Symbol models.Symbol
}

// DefaultAliases is scanned in order; the first name found in the query wins.
var DefaultAliases = []Alias{
	{Name: "TESLA", Symbol: "TSLA"},
	{Name: "APPLE", Symbol: "AAPL"},
	{Name: "MICROSOFT", Symbol: "MSFT"},
	{Name: "AMAZON", Symbol: "AMZN"},
	{Name: "GOOGLE", Symbol: "GOOGL"},
	{Name: "META", Symbol: "META"},
	{Name: "FACEBOOK", Symbol: "META"},
	{Name: "NVIDIA", Symbol: "NVDA"},
	{Name: "Tellurian Inc", Symbol: "TELL"},
}

type Resolver struct {
	aliases []Alias
}

// New returns a Resolver over aliases, or DefaultAliases when none are given.
// Names are matched as written against the uppercased query, so a name containing
// lowercase letters never matches.
func New(aliases ...Alias) *Resolver {
	if len(aliases) == 0 {
		aliases = DefaultAliases
	}
	return &Resolver{aliases: append([]Alias(nil), aliases...)}
}

// Resolve never fails: it returns models.UnknownSymbol when the query has no usable token.
// Rules apply in order: explicit symbol, alias table, first word.
func (r *Resolver) Resolve(query string) models.Symbol {
	upper := strings.ToUpper(query)

	if m := explicitPattern.FindStringSubmatch(upper); m != nil {
		return models.Symbol(m[1])
	}

	for _, a := range r.aliases {
		if strings.Contains(upper, a.Name) {
			return a.Symbol
		}
	}

	if fields := strings.Fields(upper); len(fields) > 0 {
		return models.Symbol(fields[0])
	}
	return models.UnknownSymbol
}

var defaultResolver = New()

// Resolve uses the default alias table.
func Resolve(query string) models.Symbol {
	return defaultResolver.Resolve(query)
}
