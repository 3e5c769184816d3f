package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/menulens/menulens/pkg/api"
)

// Scan submits a base64-encoded menu photo and returns the stored scan.
func (c *Client) Scan(ctx context.Context, imageBase64 string, targetLanguage string) (*api.Scan, error) {
	request := api.ScanRequest{
		Image:          imageBase64,
		TargetLanguage: targetLanguage,
	}
	var response api.ScanResponse
	if err := c.do(ctx, http.MethodPost, "/api/scan", request, &response); err != nil {
		return nil, err
	}
	return &response.Scan, nil
}

// History returns the session's scans, newest first.
func (c *Client) History(ctx context.Context) ([]api.Scan, error) {
	var response api.HistoryResponse
	if err := c.do(ctx, http.MethodGet, "/api/history", nil, &response); err != nil {
		return nil, err
	}
	return response.Scans, nil
}

// DeleteScan removes one of the session's scans.
func (c *Client) DeleteScan(ctx context.Context, scanID string) error {
	return c.do(ctx, http.MethodDelete, "/api/scans/"+scanID, nil, nil)
}

// Favorite saves one item of an owned scan.
func (c *Client) Favorite(ctx context.Context, scanID string, itemIndex int) (*api.Favorite, error) {
	request := api.FavoriteRequest{
		ScanID:    scanID,
		ItemIndex: itemIndex,
	}
	var response api.FavoriteResponse
	if err := c.do(ctx, http.MethodPost, "/api/favorites", request, &response); err != nil {
		return nil, err
	}
	return &response.Favorite, nil
}

// Favorites returns the session's saved items, newest first.
func (c *Client) Favorites(ctx context.Context) ([]api.Favorite, error) {
	var response api.FavoritesResponse
	if err := c.do(ctx, http.MethodGet, "/api/favorites", nil, &response); err != nil {
		return nil, err
	}
	return response.Favorites, nil
}

// Unfavorite removes one of the session's favorites.
func (c *Client) Unfavorite(ctx context.Context, favoriteID string) error {
	return c.do(ctx, http.MethodDelete, "/api/favorites/"+favoriteID, nil, nil)
}

// do runs one authenticated call. On a 401 it refreshes the session and
// retries exactly once; any second 401 is returned to the caller.
func (c *Client) do(ctx context.Context, method string, path string, request any, response any) error {
	token, err := c.EnsureValidSession(ctx)
	if err != nil {
		return err
	}

	status, body, err := c.roundTrip(ctx, method, path, request, token)
	if err != nil {
		return err
	}

	if status == http.StatusUnauthorized {
		token, err = c.RefreshSession(ctx)
		if err != nil {
			return err
		}
		status, body, err = c.roundTrip(ctx, method, path, request, token)
		if err != nil {
			return err
		}
	}

	if status < 200 || status > 299 {
		return apiError(status, body)
	}

	if response != nil {
		if err := json.Unmarshal(body, response); err != nil {
			return fmt.Errorf("failed to decode response: %v", err)
		}
	}
	return nil
}

func (c *Client) roundTrip(ctx context.Context, method string, path string, request any, token string) (int, []byte, error) {
	var reader io.Reader
	if request != nil {
		encoded, err := json.Marshal(request)
		if err != nil {
			return 0, nil, fmt.Errorf("failed to encode request: %v", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Origin", c.origin)
	req.Header.Set(api.SessionTokenHeader, token)
	if request != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	res, err := c.http.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer res.Body.Close()

	body, err := io.ReadAll(io.LimitReader(res.Body, maxResponseBytes))
	if err != nil {
		return 0, nil, err
	}
	return res.StatusCode, body, nil
}
