package market

import (
	"fmt"
	"strconv"
)

// Candle is one OHLC record as served by the market-data endpoint.
// Every field is optional; the collaborator emits whatever columns its
// data source produced, so absent values stay nil rather than zero.
type Candle struct {
	Date   *string  `json:"Date,omitempty"`
	Open   *float64 `json:"Open,omitempty"`
	High   *float64 `json:"High,omitempty"`
	Low    *float64 `json:"Low,omitempty"`
	Close  *float64 `json:"Close,omitempty"`
	Volume *float64 `json:"Volume,omitempty"`
}

// Label returns the candle's date, or fallback when the date is missing.
func (c Candle) Label(fallback int) string {
	if c.Date != nil && *c.Date != "" {
		return *c.Date
	}
	return strconv.Itoa(fallback)
}

// CloseString formats Close with two decimals, or "" when absent.
func (c Candle) CloseString() string {
	if c.Close == nil {
		return ""
	}
	return fmt.Sprintf("%.2f", *c.Close)
}
