package domain

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidArgument = errors.New("invalid argument")
	ErrUnknownProvider = errors.New("unknown provider")

	// Upstream failures. They never reach the wire, the router turns them into an unavailable snapshot.
	ErrUnsupportedMarket         = errors.New("unsupported market")
	ErrUpstreamTimeout           = errors.New("upstream timeout")
	ErrUpstreamRateLimited       = errors.New("upstream rate limited")
	ErrUpstreamMalformedResponse = errors.New("upstream malformed response")

	// Depth stream sequencing, see DepthUpdateValidator.
	ErrOrderBookUpdateIsOutdated      = errors.New("order book update is outdated")
	ErrOrderBookUpdateIsOutOfSequence = errors.New("order book update is out of sequence")
)

// FetchError is returned by provider adapters. Err is one of the upstream sentinels above.
type FetchError struct {
	Provider string
	Market   string
	Err      error
	Detail   string
}

func NewFetchError(provider string, symbol *MarketSymbol, err error, detail string) *FetchError {
	market := ""
	if symbol != nil {
		market = symbol.String()
	}
	return &FetchError{Provider: provider, Market: market, Err: err, Detail: detail}
}

func (e *FetchError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("%s %s: %s", e.Provider, e.Market, e.Err)
	}
	return fmt.Sprintf("%s %s: %s: %s", e.Provider, e.Market, e.Err, e.Detail)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// IsRetryable reports whether a failed fetch is worth one more attempt.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrUpstreamTimeout) || errors.Is(err, ErrUpstreamRateLimited)
}

// IsUpstreamError reports whether err originates from a provider rather than from the caller.
func IsUpstreamError(err error) bool {
	return errors.Is(err, ErrUnsupportedMarket) ||
		errors.Is(err, ErrUpstreamTimeout) ||
		errors.Is(err, ErrUpstreamRateLimited) ||
		errors.Is(err, ErrUpstreamMalformedResponse)
}
