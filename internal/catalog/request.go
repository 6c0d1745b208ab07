package catalog

import (
	"compress/gzip"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/mitchellh/mapstructure"
	"go.uber.org/zap"

	"github.com/spigell/skillmatch/internal/utils"
)

const (
	contentType     = "application/json"
	contentEncoding = "gzip"
	maxErrorBody    = 200
)

// StatusError is returned for non-2xx catalog responses.
type StatusError struct {
	Code   int
	Status string
	Body   string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("bad status: %s", e.Status)
	}
	return fmt.Sprintf("bad status: %s: %s", e.Status, e.Body)
}

// IsNotFound reports whether err is a 404 from the catalog.
func IsNotFound(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Code == http.StatusNotFound
}

// getJSON makes a GET request and decodes the JSON body into target.
// 429 responses are retried with exponential backoff.
func (c *Client) getJSON(ctx context.Context, path string, q url.Values, target any) error {
	endpoint := strings.TrimRight(c.APIURL, "/") + path

	for attempt := 0; ; attempt++ {
		err := c.getOnce(ctx, endpoint, q, target)

		var se *StatusError
		if !errors.As(err, &se) || se.Code != http.StatusTooManyRequests || attempt >= c.maxRetries {
			return err
		}

		delay := utils.Backoff(c.retryDelay, attempt, 0)
		c.logger.Debug("rate limited by catalog api, retrying",
			zap.String("url", endpoint),
			zap.Int("attempt", attempt+1),
			zap.Duration("delay", delay),
		)
		if err := utils.WaitFor(ctx, delay); err != nil {
			return err
		}
	}
}

func (c *Client) getOnce(ctx context.Context, endpoint string, q url.Values, target any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}

	req = c.setHeaders(req)
	if q != nil {
		req.URL.RawQuery = q.Encode()
	}

	resp, err := c.request(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var reader io.Reader = resp.Body
	if resp.Header.Get("Content-Encoding") == "gzip" {
		gzipReader, err := gzip.NewReader(resp.Body)
		if err != nil {
			return err
		}
		defer gzipReader.Close()
		reader = gzipReader
	}

	data, err := io.ReadAll(reader)
	if err != nil {
		return err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{
			Code:   resp.StatusCode,
			Status: resp.Status,
			Body:   utils.TruncateForLog(string(data), maxErrorBody),
		}
	}

	if target == nil {
		return nil
	}

	if err := json.Unmarshal(data, target); err != nil {
		return fmt.Errorf("decode %s: %w", req.URL.Path, err)
	}

	return nil
}

func (c *Client) request(req *http.Request) (*http.Response, error) {
	c.logger.Debug("make request", zap.String("url", req.URL.String()))
	return c.HTTPClient.Do(req)
}

func (c *Client) setHeaders(req *http.Request) *http.Request {
	req.Header.Set("Accept", contentType)
	req.Header.Set("User-Agent", c.UserAgent)
	req.Header.Set("Accept-Encoding", contentEncoding)

	return req
}

// decodeItems converts loosely typed JSON objects into typed items using
// their json tags. Numbers and strings are converted where needed.
func decodeItems(items []any, result any) error {
	cfg := &mapstructure.DecoderConfig{
		Result:           result,
		TagName:          "json",
		WeaklyTypedInput: true,
	}
	decoder, err := mapstructure.NewDecoder(cfg)
	if err != nil {
		return err
	}

	return decoder.Decode(items)
}

// unwrapList accepts either a bare JSON array or an object holding the array
// under one of keys.
func unwrapList(raw any, keys ...string) []any {
	switch v := raw.(type) {
	case []any:
		return v
	case map[string]any:
		for _, key := range keys {
			if list, ok := v[key].([]any); ok {
				return list
			}
		}
	}
	return nil
}
