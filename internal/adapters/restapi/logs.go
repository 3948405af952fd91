package restapi

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/Guilhem-Bonnet/strmsync-console/internal/adapters/sse"
	"github.com/Guilhem-Bonnet/strmsync-console/internal/ports"
)

// OpenLogStream ouvre /logs/stream. Le jeton passe en query: le serveur ne
// lit pas l'en-tête Authorization sur cette route.
func (c *Client) OpenLogStream(ctx context.Context) (ports.LineStream, error) {
	token, err := c.token()
	if err != nil {
		return nil, err
	}
	u := c.baseURL + apiPrefix + "/logs/stream?" + url.Values{"token": {token}}.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.stream.Do(req)
	if err != nil {
		return nil, fmt.Errorf("open log stream: %w", err)
	}
	if resp.StatusCode >= 400 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		resp.Body.Close()
		return nil, &APIError{Status: resp.StatusCode, Route: "GET /logs/stream", Detail: decodeDetail(b)}
	}
	return sse.NewLines(resp.Body), nil
}
