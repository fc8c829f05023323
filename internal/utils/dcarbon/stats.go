package dcarbon

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/gloriousnetworker/DCarbon-project-sub003/internal/models"
)

func (c *Client) RECStats(ctx context.Context, userID string) (*models.RECStats, error) {
	var out models.RECStats
	if err := c.doJSON(ctx, http.MethodGet, fmt.Sprintf(pathRECStats, url.PathEscape(userID)), nil, nil, &out); err != nil {
		return nil, fmt.Errorf("RECStats error: %w", err)
	}
	return &out, nil
}
