package advisor

import "fmt"

// WarningCode categorizes warnings by subsystem.
// W1xxx = look-through, W2xxx = history, W3xxx = factors.
type WarningCode string

const (
	WarnOverweightFund      WarningCode = "W1001" // fund constituents sum above 100%
	WarnShortHistory        WarningCode = "W2001" // asset dropped from statistics, not enough samples
	WarnStatsUnavailable    WarningCode = "W2002" // aligned history too short for annualized statistics
	WarnImputedValuation    WarningCode = "W3001"
	WarnImputedQuality      WarningCode = "W3002"
	WarnImputedLowVol       WarningCode = "W3003"
	WarnNoFactorData        WarningCode = "W3004" // a factor is undefined for the whole peer set
	WarnNotPositiveDefinite WarningCode = "W4001" // covariance needed a ridge to be factorized
)

// Warning represents a non-fatal degradation encountered during a computation.
type Warning struct {
	Code    WarningCode `json:"code"`
	Ticker  string      `json:"ticker,omitempty"`
	Message string      `json:"message"`
}

func (w Warning) String() string {
	if w.Ticker == "" {
		return fmt.Sprintf("%s: %s", w.Code, w.Message)
	}
	return fmt.Sprintf("%s %s: %s", w.Code, w.Ticker, w.Message)
}

func warnf(code WarningCode, ticker, format string, args ...any) Warning {
	return Warning{Code: code, Ticker: ticker, Message: fmt.Sprintf(format, args...)}
}
