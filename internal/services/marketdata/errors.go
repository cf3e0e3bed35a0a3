package marketdata

import "errors"

var (
	// ErrUpstreamUnavailable marks network failures, timeouts, and non-2xx
	// answers from the market data provider.
	ErrUpstreamUnavailable = errors.New("marketdata: upstream unavailable")

	// ErrUpstreamDataError marks success responses whose payload shape is
	// unusable.
	ErrUpstreamDataError = errors.New("marketdata: upstream data error")
)

func isDataError(err error) bool {
	return errors.Is(err, ErrUpstreamDataError)
}
