// Package device talks to the charging station's HTTP settings endpoint.
package device

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"controlling_evse/internal/models"
)

const (
	settingsPath   = "/settings"
	defaultTimeout = 10 * time.Second

	// starttime wire format: ISO-8601 with fractional seconds and offset.
	timestampLayout = "2006-01-02T15:04:05.000Z07:00"
)

var errEmptyHost = errors.New("device host is empty")

// Param is one key=value pair for an apply request. Order is preserved on
// the wire; values go out exactly as given, without percent-encoding, to
// stay byte-compatible with the station firmware (values are codes, flags,
// and timestamps, none of which need escaping).
type Param struct {
	Key   string
	Value string
}

// IntParam encodes an integer value.
func IntParam(key string, v int) Param { return Param{Key: key, Value: strconv.Itoa(v)} }

// FlagParam encodes a boolean as "0"/"1".
func FlagParam(key string, v bool) Param {
	if v {
		return Param{Key: key, Value: "1"}
	}
	return Param{Key: key, Value: "0"}
}

// TimeParam encodes a timestamp in the station's starttime format.
func TimeParam(key string, t time.Time) Param {
	return Param{Key: key, Value: t.Format(timestampLayout)}
}

// Client issues settings reads and writes against one station at a time.
// It performs no retries and no queueing; callers serialize.
type Client struct {
	http *http.Client
}

// NewClient returns a client with the given timeout (zero means default).
func NewClient(timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{http: &http.Client{Timeout: timeout}}
}

// Read fetches the current settings snapshot via GET.
func (c *Client) Read(ctx context.Context, host string) (*models.DeviceSnapshot, error) {
	if strings.TrimSpace(host) == "" {
		return nil, errEmptyHost
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, settingsURL(host), nil)
	if err != nil {
		return nil, fmt.Errorf("build settings request: %w", err)
	}
	return c.do(req)
}

// Apply posts settings changes as query parameters with an empty body.
func (c *Client) Apply(ctx context.Context, host string, params []Param) (*models.DeviceSnapshot, error) {
	if strings.TrimSpace(host) == "" {
		return nil, errEmptyHost
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, settingsURL(host)+"?"+encodeParams(params), nil)
	if err != nil {
		return nil, fmt.Errorf("build settings request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.do(req)
}

func (c *Client) do(req *http.Request) (*models.DeviceSnapshot, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("device unreachable: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// drain so the connection can be reused
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<16))
		return nil, fmt.Errorf("device returned HTTP %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read settings response: %w", err)
	}
	var snap models.DeviceSnapshot
	if err := json.Unmarshal(body, &snap); err != nil {
		return nil, fmt.Errorf("decode settings response: %w", err)
	}
	return &snap, nil
}

func settingsURL(host string) string {
	return "http://" + strings.TrimSpace(host) + settingsPath
}

// encodeParams joins pairs in order with & and no extra escaping.
func encodeParams(params []Param) string {
	var sb strings.Builder
	for i, p := range params {
		if i > 0 {
			sb.WriteByte('&')
		}
		sb.WriteString(p.Key)
		sb.WriteByte('=')
		sb.WriteString(p.Value)
	}
	return sb.String()
}
