package insight

import (
	"context"
	"io"
	"net/url"

	"github.com/rustyeddy/marketinsight/market"
)

// GetMarketData fetches candles for symbol over the trailing period
// (e.g. "3mo").
func (c *Client) GetMarketData(ctx context.Context, symbol, period string) (*market.MarketData, error) {
	q := url.Values{}
	q.Set("period", period)

	var md market.MarketData
	err := c.do(ctx, call{
		endpoint: EndpointMarketData,
		method:   "GET",
		path:     "/market-data/" + url.PathEscape(symbol),
		query:    q.Encode(),
		symbol:   symbol,
	}, func(r io.Reader) error {
		return decodeJSON(r, &md)
	})
	if err != nil {
		return nil, err
	}

	c.metrics.RecordLatestPrice(md.Symbol, md.LatestPrice)
	return &md, nil
}
