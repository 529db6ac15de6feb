// Package rest is the JSON-over-HTTP plumbing shared by the provider clients.
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"meetflow/infras/otel"
	"meetflow/shared/constant"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	defaultTimeout  = 30 * time.Second
	maxErrorBodyLen = 512
)

// StatusError is returned for any non-2xx provider response.
type StatusError struct {
	Method string
	Path   string
	Code   int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: unexpected status %d: %s", e.Method, e.Path, e.Code, e.Body)
}

// IsStatus reports whether err is a StatusError with the given code.
func IsStatus(err error, code int) bool {
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Code == code
	}

	return false
}

type Client struct {
	name    string
	baseURL string
	token   string
	http    *http.Client
	otel    otel.Otel
	headers map[string]string
}

func New(name, baseURL, token string, otl otel.Otel) *Client {
	return &Client{
		name:    name,
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    &http.Client{Timeout: defaultTimeout},
		otel:    otl,
		headers: map[string]string{},
	}
}

// WithHeader sets a header sent on every request.
func (c *Client) WithHeader(key, value string) *Client {
	c.headers[key] = value

	return c
}

// Do sends in as JSON (when non-nil) and decodes the response into out (when non-nil).
func (c *Client) Do(ctx context.Context, method, path string, in, out any) (err error) {
	ctx, scope := c.otel.NewScope(ctx, constant.OtelExternalScopeName, fmt.Sprintf("%s.%s.%s", constant.OtelExternalScopeName, c.name, method))
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	scope.SetAttribute("http.path", path)

	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to marshal %s request: %w", c.name, err)
		}

		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to build %s request: %w", c.name, err)
	}

	req.Header.Set(constant.RequestHeaderAuthorization, "Bearer "+c.token)
	req.Header.Set("Accept", constant.ContentTypeJSON)

	if in != nil {
		req.Header.Set(constant.RequestHeaderContentType, constant.ContentTypeJSON)
	}

	for key, value := range c.headers {
		req.Header.Set(key, value)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		log.Error().Err(err).Str("provider", c.name).Str("path", path).Msg("provider request failed")

		return fmt.Errorf("failed to call %s: %w", c.name, err)
	}
	defer resp.Body.Close()

	scope.SetAttribute("http.status_code", resp.StatusCode)

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyLen))

		return &StatusError{Method: method, Path: path, Code: resp.StatusCode, Body: string(raw)}
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", c.name, err)
	}

	return nil
}
