package models

import "regexp"

// Symbol is an uppercase ticker such as TSLA.
type Symbol string

// UnknownSymbol marks a query that could not be resolved to a ticker.
const UnknownSymbol Symbol = "UNKNOWN"

var tickerPattern = regexp.MustCompile(`^[A-Z]+$`)

func (s Symbol) String() string {
	return string(s)
}

func (s Symbol) IsUnknown() bool {
	return s == UnknownSymbol
}

// IsTicker reports whether s is a plain uppercase alphabetic ticker.
func (s Symbol) IsTicker() bool {
	return !s.IsUnknown() && tickerPattern.MatchString(string(s))
}
