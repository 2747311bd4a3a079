package insight

import (
	"context"
	"io"
)

// Health is the body of GET /health.
type Health struct {
	Status  string `json:"status" validate:"required"`
	Service string `json:"service"`
}

// Health checks that the collaborator is up.
func (c *Client) Health(ctx context.Context) (*Health, error) {
	var h Health
	err := c.do(ctx, call{
		endpoint: EndpointHealth,
		method:   "GET",
		path:     "/health",
	}, func(r io.Reader) error {
		return decodeJSON(r, &h)
	})
	if err != nil {
		return nil, err
	}
	return &h, nil
}
