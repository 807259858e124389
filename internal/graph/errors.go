package graph

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrUnresolvedSymbol means the query named no identifiable stock.
	ErrUnresolvedSymbol = errors.New("could not identify stock symbol")
	// ErrDataUnavailable means the market data provider failed or returned no usable price.
	ErrDataUnavailable = errors.New("could not fetch market data")
	// ErrAgentFailure means at least one analysis agent failed or returned an invalid result.
	ErrAgentFailure = errors.New("analysis agent failed")
)

type dataUnavailableError struct {
	symbol string
	cause  error
}

func (e *dataUnavailableError) Error() string {
	return fmt.Sprintf("%v for %s: %v", ErrDataUnavailable, e.symbol, e.cause)
}

func (e *dataUnavailableError) Unwrap() []error {
	return []error{ErrDataUnavailable, e.cause}
}

// userMessage turns an analysis error into the text returned to callers.
// Agent failures are reported without naming the agent that failed.
func userMessage(err error) string {
	var dataErr *dataUnavailableError
	switch {
	case errors.Is(err, ErrUnresolvedSymbol):
		return "Could not identify stock symbol in the query. Please include the stock symbol (e.g., TSLA for Tesla)"
	case errors.As(err, &dataErr):
		return fmt.Sprintf("Could not fetch data for stock symbol %s", dataErr.symbol)
	case errors.Is(err, context.DeadlineExceeded):
		return "Analysis failed: the language model did not respond in time"
	case errors.Is(err, context.Canceled):
		return "Analysis failed: the request was cancelled"
	default:
		return "Analysis failed: the language model did not return a valid analysis"
	}
}
