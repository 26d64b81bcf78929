package coingecko

import "errors"

var (
	// ErrRateLimited is returned when CoinGecko signals throttling (HTTP 429)
	ErrRateLimited = errors.New("coingecko rate limit exceeded")
	// ErrBadRequest is returned when CoinGecko reports a client-side error (HTTP 400)
	ErrBadRequest = errors.New("coingecko rejected request")
	// ErrUpstream is returned for any other non-2xx status or transport failure
	ErrUpstream = errors.New("coingecko API request failed")
)
