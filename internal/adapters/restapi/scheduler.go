package restapi

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/Guilhem-Bonnet/strmsync-console/internal/domain"
)

func (c *Client) ScheduleConfigs(ctx context.Context) ([]domain.ScheduleConfig, error) {
	var out []domain.ScheduleConfig
	if err := c.do(ctx, call{method: http.MethodGet, route: "/scheduler/config", path: "/scheduler/config", out: &out}); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) UpdateSchedule(ctx context.Context, t domain.ContentType, update domain.ScheduleUpdate) (domain.ScheduleConfig, error) {
	var out domain.ScheduleConfig
	err := c.do(ctx, call{
		method: http.MethodPut,
		route:  "/scheduler/config/{type}",
		path:   "/scheduler/config/" + string(t),
		body:   update,
		out:    &out,
	})
	return out, err
}

func (c *Client) ExecutionHistory(ctx context.Context, limit int) ([]domain.ExecutionRecord, error) {
	var out []domain.ExecutionRecord
	err := c.do(ctx, call{
		method: http.MethodGet,
		route:  "/scheduler/history",
		path:   "/scheduler/history",
		query:  url.Values{"limit": {strconv.Itoa(limit)}},
		out:    &out,
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
