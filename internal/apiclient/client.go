// Package apiclient — единственный HTTP-клиент к FuelTrackr API.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/fueltrackr/internal/logger"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const maxBodySize = 8 << 20

type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New создаёт клиент. base — нижележащий транспорт (nil = http.DefaultTransport).
// Повторов нет: ошибка API возвращается вызывающему как есть.
func New(baseURL string, timeout time.Duration, base http.RoundTripper) *Client {
	if base == nil {
		base = http.DefaultTransport
	}
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: &bearerTransport{next: otelhttp.NewTransport(base)},
		},
	}
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	defer logger.DeferLogDuration("api."+method+" "+path, time.Now())()
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("api %s %s: encode: %w", method, path, err)
		}
		body = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("api %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("api %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return fmt.Errorf("api %s %s: read body: %w", method, path, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := parseError(resp.StatusCode, data)
		logger.Debugf("api %s %s: %d %s", method, path, apiErr.Status, apiErr.Detail)
		return apiErr
	}
	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("api %s %s: decode: %w", method, path, err)
	}
	return nil
}

// MessageResponse — ответы вида {"msg": "..."} или {"message": "..."}.
type MessageResponse struct {
	Msg     string `json:"msg"`
	Message string `json:"message"`
}

func (m MessageResponse) Text() string {
	if m.Message != "" {
		return m.Message
	}
	return m.Msg
}
