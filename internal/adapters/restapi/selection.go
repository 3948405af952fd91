package restapi

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/Guilhem-Bonnet/strmsync-console/internal/domain"
)

type categoryWire struct {
	CategoryID   string `json:"category_id"`
	CategoryName string `json:"category_name"`
	Selected     bool   `json:"selected"`
	ItemCount    int    `json:"item_count"`
}

type groupWire struct {
	GroupTitle string `json:"group_title"`
	EntryType  string `json:"entry_type"`
	Count      int    `json:"count"`
	Selected   bool   `json:"selected"`
}

type categorySelection struct {
	CategoryID   string `json:"category_id"`
	CategoryName string `json:"category_name"`
}

type groupSelection struct {
	GroupTitle string `json:"group_title"`
	Type       string `json:"type"`
}

func (c *Client) Categories(ctx context.Context, subscriptionID int64, t domain.ContentType) ([]domain.CatalogEntry, error) {
	var wire []categoryWire
	err := c.do(ctx, call{
		method: http.MethodGet,
		route:  "/selection/{type}/{id}",
		path:   fmt.Sprintf("/selection/%s/%d", t, subscriptionID),
		out:    &wire,
	})
	if err != nil {
		return nil, err
	}
	out := make([]domain.CatalogEntry, 0, len(wire))
	for _, w := range wire {
		out = append(out, domain.CatalogEntry{
			ID:        w.CategoryID,
			Name:      w.CategoryName,
			ItemCount: w.ItemCount,
			Selected:  w.Selected,
			Type:      t,
		})
	}
	return out, nil
}

func (c *Client) RefreshCategories(ctx context.Context, subscriptionID int64, t domain.ContentType) error {
	return c.do(ctx, call{
		method: http.MethodPost,
		route:  "/selection/{type}/sync/{id}",
		path:   fmt.Sprintf("/selection/%s/sync/%d", t, subscriptionID),
	})
}

func (c *Client) SaveCategories(ctx context.Context, subscriptionID int64, t domain.ContentType, selected []domain.CatalogEntry) error {
	body := struct {
		Categories []categorySelection `json:"categories"`
	}{Categories: make([]categorySelection, 0, len(selected))}
	for _, e := range selected {
		body.Categories = append(body.Categories, categorySelection{CategoryID: e.ID, CategoryName: e.Name})
	}
	return c.do(ctx, call{
		method: http.MethodPost,
		route:  "/selection/{type}/{id}",
		path:   fmt.Sprintf("/selection/%s/%d", t, subscriptionID),
		body:   body,
	})
}

func (c *Client) Groups(ctx context.Context, sourceID int64) ([]domain.CatalogEntry, error) {
	var wire []groupWire
	err := c.do(ctx, call{
		method: http.MethodGet,
		route:  "/m3u-selection/{id}/groups",
		path:   "/m3u-selection/" + strconv.FormatInt(sourceID, 10) + "/groups",
		out:    &wire,
	})
	if err != nil {
		return nil, err
	}
	out := make([]domain.CatalogEntry, 0, len(wire))
	for _, w := range wire {
		t, err := domain.ParseContentType(w.EntryType)
		if err != nil {
			continue
		}
		out = append(out, domain.CatalogEntry{
			ID:        w.GroupTitle,
			Name:      w.GroupTitle,
			ItemCount: w.Count,
			Selected:  w.Selected,
			Type:      t,
		})
	}
	return out, nil
}

// RefreshGroups relance le parsing de la playlist pour un type. Le job tourne
// côté serveur: suivre le sync_status de la source pour savoir quand il finit.
func (c *Client) RefreshGroups(ctx context.Context, sourceID int64, t domain.ContentType) error {
	body := struct {
		SyncTypes []string `json:"sync_types"`
	}{SyncTypes: []string{string(t)}}
	return c.do(ctx, call{
		method: http.MethodPost,
		route:  "/m3u-selection/{id}/sync",
		path:   "/m3u-selection/" + strconv.FormatInt(sourceID, 10) + "/sync",
		body:   body,
	})
}

// SaveGroups remplace toute la sélection de la source: selected doit contenir
// les groupes retenus des deux types.
func (c *Client) SaveGroups(ctx context.Context, sourceID int64, scope string, selected []domain.CatalogEntry) error {
	body := struct {
		Groups []groupSelection `json:"groups"`
	}{Groups: make([]groupSelection, 0, len(selected))}
	for _, e := range selected {
		body.Groups = append(body.Groups, groupSelection{GroupTitle: e.Name, Type: e.Type.EntryType()})
	}
	var q url.Values
	if scope != "" {
		q = url.Values{"selection_type": {scope}}
	}
	return c.do(ctx, call{
		method: http.MethodPost,
		route:  "/m3u-selection/{id}",
		path:   "/m3u-selection/" + strconv.FormatInt(sourceID, 10),
		query:  q,
		body:   body,
	})
}
