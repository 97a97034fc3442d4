package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"ext2view/internal/logging"
)

const (
	directoryPath = "/api/directory"
	cdPath        = "/api/cd"
	commandPath   = "/api/command"

	maxBodyBytes = 16 << 20
)

type Config struct {
	BaseURL string
	// Timeout of zero leaves requests unbounded.
	Timeout    time.Duration
	HTTPClient *http.Client
}

type Client struct {
	baseURL    string
	httpClient *http.Client
}

func New(cfg Config) *Client {
	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: cfg.Timeout}
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: hc,
	}
}

func (c *Client) BaseURL() string { return c.baseURL }

func (c *Client) Directory(ctx context.Context) (Listing, error) {
	const op = "list directory"
	status, body, err := c.do(ctx, http.MethodGet, directoryPath, nil)
	if err != nil {
		return Listing{}, &NetworkError{Op: op, Err: err}
	}
	if status < 200 || status > 299 {
		return Listing{}, &NetworkError{Op: op, Status: status, Err: errors.New(statusText(body))}
	}
	var out Listing
	if err := json.Unmarshal(body, &out); err != nil {
		return Listing{}, &NetworkError{Op: op, Status: status, Err: fmt.Errorf("decode listing: %w", err)}
	}
	return out, nil
}

func (c *Client) ChangeDirectory(ctx context.Context, target string) (Result, error) {
	payload, err := json.Marshal(target)
	if err != nil {
		return Result{}, err
	}
	return c.postResult(ctx, "change directory", cdPath, payload)
}

func (c *Client) Execute(ctx context.Context, name string, args []string) (Result, error) {
	if args == nil {
		args = []string{}
	}
	payload, err := json.Marshal(commandRequest{Cmd: name, Args: args})
	if err != nil {
		return Result{}, err
	}
	return c.postResult(ctx, "run "+name, commandPath, payload)
}

// postResult accepts a {success, output} body whatever the status code; the
// backend reports command failures as 4xx/5xx with that body.
func (c *Client) postResult(ctx context.Context, op, path string, payload []byte) (Result, error) {
	status, body, err := c.do(ctx, http.MethodPost, path, payload)
	if err != nil {
		return Result{}, &NetworkError{Op: op, Err: err}
	}
	res, decodeErr := decodeResult(body)
	if decodeErr == nil {
		return res, nil
	}
	if status < 200 || status > 299 {
		return Result{}, &NetworkError{Op: op, Status: status, Err: errors.New(statusText(body))}
	}
	return Result{}, &NetworkError{Op: op, Status: status, Err: decodeErr}
}

func decodeResult(body []byte) (Result, error) {
	var raw struct {
		Success *bool  `json:"success"`
		Output  string `json:"output"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return Result{}, fmt.Errorf("decode result: %w", err)
	}
	if raw.Success == nil {
		return Result{}, errors.New("decode result: missing success field")
	}
	return Result{Success: *raw.Success, Output: raw.Output}, nil
}

func (c *Client) do(ctx context.Context, method, path string, payload []byte) (int, []byte, error) {
	var rdr io.Reader
	if payload != nil {
		rdr = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rdr)
	if err != nil {
		return 0, nil, err
	}
	reqID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", reqID)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		logging.Warn("backend request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.String("request_id", reqID),
			zap.Error(err))
		return 0, nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("read body: %w", err)
	}
	logging.Debug("backend request",
		zap.String("method", method),
		zap.String("path", path),
		zap.String("request_id", reqID),
		zap.Int("status", resp.StatusCode),
		zap.Duration("took", time.Since(start)))
	return resp.StatusCode, body, nil
}

func statusText(body []byte) string {
	msg := strings.TrimSpace(string(body))
	if msg == "" {
		return "empty response"
	}
	if len(msg) > 200 {
		msg = msg[:200] + "..."
	}
	return logging.Sanitize(msg)
}
