package restapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/Guilhem-Bonnet/strmsync-console/internal/domain"
)

type adminWire struct {
	Message      string   `json:"message"`
	Success      *bool    `json:"success"`
	DeletedCount int      `json:"deleted_count"`
	FilesDeleted int      `json:"files_deleted"`
	Errors       []string `json:"errors"`
}

var ErrAdminFailed = errors.New("admin action failed")

func adminPath(action domain.AdminAction) (string, error) {
	switch action {
	case domain.AdminDeleteFiles, domain.AdminResetDatabase, domain.AdminResetAll:
		return "/admin/" + string(action), nil
	case domain.AdminResetSyncHistory:
		return "/sync/reset", nil
	default:
		return "", fmt.Errorf("unknown admin action %q", action)
	}
}

// Admin exécute une action destructive. Le serveur répond parfois 200 avec
// success=false: c'est traité comme un échec.
func (c *Client) Admin(ctx context.Context, action domain.AdminAction) (domain.AdminResult, error) {
	path, err := adminPath(action)
	if err != nil {
		return domain.AdminResult{}, err
	}
	var out adminWire
	if err := c.do(ctx, call{method: http.MethodPost, route: path, path: path, out: &out}); err != nil {
		return domain.AdminResult{}, err
	}
	res := domain.AdminResult{
		Message:      out.Message,
		DeletedCount: out.DeletedCount,
		Errors:       out.Errors,
	}
	if out.FilesDeleted > 0 {
		res.DeletedCount = out.FilesDeleted
	}
	if out.Success != nil && !*out.Success {
		return res, fmt.Errorf("%w: %s", ErrAdminFailed, out.Message)
	}
	return res, nil
}
