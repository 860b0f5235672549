package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/iudanet/trendysync/pkg/api"
)

// GetChanges returns one changefeed page of entries with id > since
func (c *Client) GetChanges(ctx context.Context, since int64, limit int) (*api.ChangeFeedResponse, error) {
	var resp api.ChangeFeedResponse
	err := c.do(ctx, request{
		method: http.MethodGet,
		path:   fmt.Sprintf("/api/v1/changes?since=%d&limit=%d", since, limit),
		op:     "get changes",
		result: &resp,
	})
	if err != nil {
		return nil, fmt.Errorf("get changes request failed: %w", err)
	}
	return &resp, nil
}

// GetLatestCursor returns the newest changefeed cursor on the server
func (c *Client) GetLatestCursor(ctx context.Context) (int64, error) {
	var resp api.LatestCursorResponse
	err := c.do(ctx, request{
		method: http.MethodGet,
		path:   "/api/v1/changes/latest-cursor",
		op:     "get latest cursor",
		result: &resp,
	})
	if err != nil {
		return 0, fmt.Errorf("get latest cursor request failed: %w", err)
	}
	return resp.Cursor, nil
}
