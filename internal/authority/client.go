// Package authority is the typed HTTP client for the remote authority
// service that owns users, roles, permissions and knowledge bases. The
// console keeps no local copy of that state: every call here round-trips.
package authority

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// Client talks to the remote authority. All methods require the caller's
// bearer credential; none of them retry.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *slog.Logger
}

// NewClient constructs a Client for the given base URL, e.g.
// "http://localhost:8000/api/v1".
func NewClient(baseURL string, logger *slog.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
		logger:  logger,
	}
}

// do performs a JSON request and decodes the response into out when out is
// non-nil. Non-2xx statuses are translated into the package taxonomy.
func (c *Client) do(ctx context.Context, method, path, credential string, body, out any) error {
	var payload io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("authority: encode request: %w", err)
		}
		payload = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, payload)
	if err != nil {
		return fmt.Errorf("authority: build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if credential != "" {
		req.Header.Set("Authorization", "Bearer "+credential)
	}

	res, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return c.errorFromResponse(method, path, res)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode response: %v", ErrUnavailable, err)
	}
	return nil
}

func (c *Client) errorFromResponse(method, path string, res *http.Response) error {
	detail := decodeDetail(res.Body)
	if c.logger != nil {
		c.logger.Debug("authority call failed",
			slog.String("method", method),
			slog.String("path", path),
			slog.Int("status", res.StatusCode),
			slog.String("detail", detail))
	}
	switch {
	case res.StatusCode == http.StatusUnauthorized || res.StatusCode == http.StatusForbidden:
		return ErrUnauthenticated
	case res.StatusCode == http.StatusNotFound:
		return wrapDetail(ErrNotFound, detail)
	case res.StatusCode == http.StatusConflict:
		return wrapDetail(ErrConflict, detail)
	case res.StatusCode == http.StatusBadRequest || res.StatusCode == http.StatusUnprocessableEntity:
		return wrapDetail(ErrValidation, detail)
	default:
		return wrapDetail(ErrUnavailable, detail)
	}
}

func wrapDetail(sentinel error, detail string) error {
	if detail == "" {
		return sentinel
	}
	return fmt.Errorf("%w: %s", sentinel, detail)
}

func decodeJSONBody(body io.Reader, out any) error {
	if err := json.NewDecoder(body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode response: %v", ErrUnavailable, err)
	}
	return nil
}

// decodeDetail extracts the authority's error message. The wire shape is
// either {"detail": "..."} or the validator form {"detail": [{"msg": "..."}]}.
func decodeDetail(body io.Reader) string {
	raw, err := io.ReadAll(io.LimitReader(body, 64<<10))
	if err != nil {
		return ""
	}
	var flat struct {
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(raw, &flat); err == nil && flat.Detail != "" {
		return flat.Detail
	}
	var nested struct {
		Detail []struct {
			Msg string `json:"msg"`
		} `json:"detail"`
	}
	if err := json.Unmarshal(raw, &nested); err == nil && len(nested.Detail) > 0 {
		return nested.Detail[0].Msg
	}
	return ""
}
