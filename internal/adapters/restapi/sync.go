package restapi

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/Guilhem-Bonnet/strmsync-console/internal/domain"
)

// syncStatusWire est la forme renvoyée par /sync/status et /m3u-sync/status.
type syncStatusWire struct {
	SubscriptionID int64  `json:"subscription_id"`
	SourceID       int64  `json:"source_id"`
	Type           string `json:"type"`
	Status         string `json:"status"`
	LastSync       string `json:"last_sync"`
	ItemsAdded     int    `json:"items_added"`
	ItemsDeleted   int    `json:"items_deleted"`
	ErrorMessage   string `json:"error_message"`
}

func (w syncStatusWire) toDomain() (domain.SyncStatus, error) {
	t, err := domain.ParseContentType(w.Type)
	if err != nil {
		return domain.SyncStatus{}, err
	}
	owner := w.SubscriptionID
	if owner == 0 {
		owner = w.SourceID
	}
	return domain.SyncStatus{
		OwnerID:      owner,
		Type:         t,
		State:        domain.SyncState(w.Status),
		LastSyncAt:   w.LastSync,
		ItemsAdded:   w.ItemsAdded,
		ItemsDeleted: w.ItemsDeleted,
		ErrorMessage: w.ErrorMessage,
	}, nil
}

func syncPrefix(p domain.Provider) string {
	if p == domain.ProviderM3U {
		return "/m3u-sync"
	}
	return "/sync"
}

func (c *Client) SyncStatuses(ctx context.Context, provider domain.Provider) ([]domain.SyncStatus, error) {
	prefix := syncPrefix(provider)
	var wire []syncStatusWire
	if err := c.do(ctx, call{method: http.MethodGet, route: prefix + "/status", path: prefix + "/status", out: &wire}); err != nil {
		return nil, err
	}
	out := make([]domain.SyncStatus, 0, len(wire))
	for _, w := range wire {
		st, err := w.toDomain()
		if err != nil {
			// type inconnu (live, ...): ignoré
			c.logger.Debug().Err(err).Str("type", w.Type).Msg("skip sync status")
			continue
		}
		out = append(out, st)
	}
	return out, nil
}

func (c *Client) StartSync(ctx context.Context, provider domain.Provider, key domain.StatusKey) error {
	prefix := syncPrefix(provider)
	return c.do(ctx, call{
		method: http.MethodPost,
		route:  prefix + "/{type}/{id}",
		path:   fmt.Sprintf("%s/%s/%d", prefix, key.Type, key.OwnerID),
	})
}

func (c *Client) StopSync(ctx context.Context, provider domain.Provider, key domain.StatusKey) error {
	prefix := syncPrefix(provider)
	return c.do(ctx, call{
		method: http.MethodPost,
		route:  prefix + "/stop/{id}/{type}",
		path:   prefix + "/stop/" + strconv.FormatInt(key.OwnerID, 10) + "/" + string(key.Type),
	})
}
