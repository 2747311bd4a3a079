package market

import (
	"fmt"
	"strconv"
)

// PreviewSize is the number of trailing candles shown in a preview.
const PreviewSize = 5

// MarketData is the success body of GET /market-data/{symbol}.
type MarketData struct {
	Success     bool     `json:"success,omitempty"`
	Symbol      string   `json:"symbol" validate:"required"`
	LatestPrice float64  `json:"latest_price"`
	Candles     []Candle `json:"data"`
}

// Tail returns the last n candles in their original order.
func (md *MarketData) Tail(n int) []Candle {
	if md == nil || n <= 0 {
		return nil
	}
	if len(md.Candles) <= n {
		return md.Candles
	}
	return md.Candles[len(md.Candles)-n:]
}

// PriceString renders LatestPrice in its shortest decimal form (100.5, 22000).
func (md *MarketData) PriceString() string {
	if md == nil {
		return ""
	}
	return FormatPrice(md.LatestPrice)
}

// FormatPrice renders a price without trailing zeros.
func FormatPrice(p float64) string {
	return strconv.FormatFloat(p, 'f', -1, 64)
}

// PreviewLine is one rendered row of the data preview.
type PreviewLine struct {
	Label string
	Close string
}

func (l PreviewLine) String() string {
	return fmt.Sprintf("Date: %s, Close: %s", l.Label, l.Close)
}

// Preview builds the preview rows for the last n candles of md. Candles
// without a date are labelled with their position in the tail.
func Preview(md *MarketData, n int) []PreviewLine {
	tail := md.Tail(n)
	if len(tail) == 0 {
		return nil
	}

	lines := make([]PreviewLine, 0, len(tail))
	for i, c := range tail {
		lines = append(lines, PreviewLine{
			Label: c.Label(i),
			Close: c.CloseString(),
		})
	}
	return lines
}
