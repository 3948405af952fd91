package restapi

import (
	"context"
	"net/http"

	"github.com/Guilhem-Bonnet/strmsync-console/internal/domain"
)

func (c *Client) DashboardStats(ctx context.Context) (domain.DashboardStats, error) {
	var out domain.DashboardStats
	err := c.do(ctx, call{method: http.MethodGet, route: "/dashboard/stats", path: "/dashboard/stats", out: &out})
	return out, err
}
