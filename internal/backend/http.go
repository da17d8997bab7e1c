package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultTimeout = 2 * time.Minute

// HTTPClient talks to the statecache server API with a scoped bearer token.
type HTTPClient struct {
	baseURL string
	token   string
	http    *http.Client
}

func NewHTTPClient(endpoint, token string) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(endpoint, "/"),
		token:   token,
		http:    &http.Client{Timeout: defaultTimeout},
	}
}

type listData struct {
	Entries []Entry `json:"entries"`
}

type envelope struct {
	Code      int             `json:"code"`
	Message   string          `json:"message"`
	ErrorCode string          `json:"error_code"`
	Data      json.RawMessage `json:"data"`
}

func (c *HTTPClient) ListEntries(ctx context.Context, prefix string) ([]Entry, error) {
	u := fmt.Sprintf("%s/api/v1/caches?prefix=%s", c.baseURL, url.QueryEscape(prefix))
	data, err := c.doJSON(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}

	var out listData
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("decode entry list: %w", err)
	}
	return out.Entries, nil
}

func (c *HTTPClient) DeleteEntry(ctx context.Context, key string) error {
	u := fmt.Sprintf("%s/api/v1/caches/%s", c.baseURL, url.PathEscape(key))
	_, err := c.doJSON(ctx, http.MethodDelete, u, nil)
	return err
}

func (c *HTTPClient) UploadPaths(ctx context.Context, paths []string, key string) error {
	archive, err := packPaths(paths)
	if err != nil {
		return fmt.Errorf("pack paths: %w", err)
	}

	u := fmt.Sprintf("%s/api/v1/caches/%s", c.baseURL, url.PathEscape(key))
	_, err = c.doJSON(ctx, http.MethodPut, u, bytes.NewReader(archive))
	return err
}

func (c *HTTPClient) DownloadPaths(ctx context.Context, paths []string, key string) error {
	if len(paths) == 0 {
		return fmt.Errorf("no destination path for key %q", key)
	}

	u := fmt.Sprintf("%s/api/v1/caches/%s/blob", c.baseURL, url.PathEscape(key))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	c.authorize(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("backend request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read backend response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return decodeError(resp.StatusCode, body)
	}

	return unpackArchive(body, paths[0])
}

// doJSON performs a request whose response is the standard API envelope and
// returns the raw data payload.
func (c *HTTPClient) doJSON(ctx context.Context, method, u string, body io.Reader) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, err
	}
	c.authorize(req)
	if body != nil {
		req.Header.Set("Content-Type", "application/gzip")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("backend request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read backend response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, decodeError(resp.StatusCode, raw)
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("decode backend response: %w", err)
	}
	return env.Data, nil
}

func (c *HTTPClient) authorize(req *http.Request) {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
}

// decodeError turns a non-200 response into *Error when the body carries a
// recognizable wire code, otherwise into a plain (transport-class) error.
func decodeError(status int, body []byte) error {
	var env envelope
	if err := json.Unmarshal(body, &env); err == nil && env.ErrorCode != "" {
		return &Error{Status: status, Code: env.ErrorCode, Message: env.Message}
	}
	return fmt.Errorf("backend returned status %d", status)
}
