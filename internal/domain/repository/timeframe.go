package repository

import "time"

// Timeframe identifies the bar interval of the temperature series.
type Timeframe string

const (
	TF1h Timeframe = "1H"
	TF4h Timeframe = "4H"
	TF1d Timeframe = "1D"
	TF1w Timeframe = "1W"
)

// IsValidTimeframe returns true if tf is a supported timeframe.
func IsValidTimeframe(tf Timeframe) bool {
	switch tf {
	case TF1h, TF4h, TF1d, TF1w:
		return true
	default:
		return false
	}
}

// DefaultTimeframe returns the default timeframe.
func DefaultTimeframe() Timeframe { return TF1d }

// NormalizeTimeframe converts raw string to a valid timeframe (or default).
func NormalizeTimeframe(s string) Timeframe {
	if s == "" {
		return DefaultTimeframe()
	}
	tf := Timeframe(s)
	if IsValidTimeframe(tf) {
		return tf
	}
	return DefaultTimeframe()
}

// Step returns the interval between consecutive points for tf. An
// incremental fetch starts one step past the cached tail.
func (tf Timeframe) Step() time.Duration {
	switch tf {
	case TF1h:
		return time.Hour
	case TF4h:
		return 4 * time.Hour
	case TF1w:
		return 7 * 24 * time.Hour
	default:
		return 24 * time.Hour
	}
}
