package restapi

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/Guilhem-Bonnet/strmsync-console/internal/domain"
	"github.com/Guilhem-Bonnet/strmsync-console/internal/ports"
)

func (c *Client) Subscriptions(ctx context.Context) ([]domain.Subscription, error) {
	var out []domain.Subscription
	if err := c.do(ctx, call{method: http.MethodGet, route: "/subscriptions/", path: "/subscriptions/", out: &out}); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateSubscription(ctx context.Context, sub domain.Subscription) (domain.Subscription, error) {
	var out domain.Subscription
	err := c.do(ctx, call{method: http.MethodPost, route: "/subscriptions/", path: "/subscriptions/", body: sub, out: &out})
	return out, err
}

func (c *Client) UpdateSubscription(ctx context.Context, sub domain.Subscription) (domain.Subscription, error) {
	var out domain.Subscription
	err := c.do(ctx, call{
		method: http.MethodPut,
		route:  "/subscriptions/{id}",
		path:   "/subscriptions/" + strconv.FormatInt(sub.ID, 10),
		body:   sub,
		out:    &out,
	})
	return out, err
}

// SetSubscriptionActive envoie un PUT partiel {is_active}.
func (c *Client) SetSubscriptionActive(ctx context.Context, id int64, active bool) (domain.Subscription, error) {
	var out domain.Subscription
	err := c.do(ctx, call{
		method: http.MethodPut,
		route:  "/subscriptions/{id}",
		path:   "/subscriptions/" + strconv.FormatInt(id, 10),
		body:   map[string]bool{"is_active": active},
		out:    &out,
	})
	return out, err
}

func (c *Client) DeleteSubscription(ctx context.Context, id int64) error {
	return c.do(ctx, call{
		method: http.MethodDelete,
		route:  "/subscriptions/{id}",
		path:   "/subscriptions/" + strconv.FormatInt(id, 10),
	})
}

func (c *Client) M3USources(ctx context.Context) ([]domain.M3USource, error) {
	var out []domain.M3USource
	if err := c.do(ctx, call{method: http.MethodGet, route: "/m3u-sources/", path: "/m3u-sources/", out: &out}); err != nil {
		return nil, err
	}
	return out, nil
}

// M3USource relit la liste complète: le serveur n'expose pas de GET unitaire.
func (c *Client) M3USource(ctx context.Context, id int64) (domain.M3USource, error) {
	all, err := c.M3USources(ctx)
	if err != nil {
		return domain.M3USource{}, err
	}
	for _, src := range all {
		if src.ID == id {
			return src, nil
		}
	}
	return domain.M3USource{}, fmt.Errorf("m3u source %d: %w", id, ports.ErrNotFound)
}

type m3uSourceCreate struct {
	Name      string `json:"name"`
	URL       string `json:"url"`
	MoviesDir string `json:"movies_dir,omitempty"`
	SeriesDir string `json:"series_dir,omitempty"`
	OutputDir string `json:"output_dir,omitempty"`
}

func toCreate(src domain.M3USource) m3uSourceCreate {
	return m3uSourceCreate{
		Name:      src.Name,
		URL:       src.URL,
		MoviesDir: src.MoviesDir,
		SeriesDir: src.SeriesDir,
		OutputDir: src.OutputDir,
	}
}

func (c *Client) CreateM3USource(ctx context.Context, src domain.M3USource) (domain.M3USource, error) {
	var out domain.M3USource
	err := c.do(ctx, call{method: http.MethodPost, route: "/m3u-sources/url", path: "/m3u-sources/url", body: toCreate(src), out: &out})
	return out, err
}

func (c *Client) UpdateM3USource(ctx context.Context, src domain.M3USource) (domain.M3USource, error) {
	var out domain.M3USource
	err := c.do(ctx, call{
		method: http.MethodPut,
		route:  "/m3u-sources/{id}",
		path:   "/m3u-sources/" + strconv.FormatInt(src.ID, 10),
		body:   toCreate(src),
		out:    &out,
	})
	return out, err
}

func (c *Client) DeleteM3USource(ctx context.Context, id int64) error {
	return c.do(ctx, call{
		method: http.MethodDelete,
		route:  "/m3u-sources/{id}",
		path:   "/m3u-sources/" + strconv.FormatInt(id, 10),
	})
}

// SyncM3USource lance la génération des fichiers pour toute la source.
func (c *Client) SyncM3USource(ctx context.Context, id int64) error {
	return c.do(ctx, call{
		method: http.MethodPost,
		route:  "/m3u-sources/{id}/sync",
		path:   "/m3u-sources/" + strconv.FormatInt(id, 10) + "/sync",
	})
}
