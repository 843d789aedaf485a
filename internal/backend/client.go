package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

const maxResponseBytes = 16 << 20

// Client talks to the upstream REST backend. Every call carries the backend
// API key.
type Client struct {
	baseURL *url.URL
	apiKey  string
	http    *http.Client
	logger  *zap.Logger
}

type File struct {
	Field       string
	Filename    string
	ContentType string
	Data        []byte
}

func New(baseURL string, apiKey string, timeout time.Duration, logger *zap.Logger) (*Client, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, fmt.Errorf("backend base url is required")
	}
	parsed, err := url.Parse(baseURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("backend base url %q is invalid", baseURL)
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL: parsed,
		apiKey:  strings.TrimSpace(apiKey),
		http:    &http.Client{Timeout: timeout},
		logger:  logger,
	}, nil
}

func (c *Client) BaseURL() *url.URL {
	u := *c.baseURL
	return &u
}

func (c *Client) APIKey() string {
	return c.apiKey
}

func (c *Client) resolve(path string, query url.Values) string {
	u := c.BaseURL()
	u.Path = strings.TrimSuffix(u.Path, "/") + path
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return u.String()
}

// Do sends a JSON request and returns the raw response body.
func (c *Client) Do(ctx context.Context, method string, path string, query url.Values, body any) (json.RawMessage, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode %s %s body: %w", method, path, err)
		}
		reader = bytes.NewReader(payload)
	}
	return c.send(ctx, method, path, query, reader, "application/json")
}

// DoMultipart uploads files as multipart/form-data.
func (c *Client) DoMultipart(ctx context.Context, method string, path string, files []File) (json.RawMessage, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for _, f := range files {
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, f.Field, f.Filename))
		ct := strings.TrimSpace(f.ContentType)
		if ct == "" {
			ct = "application/octet-stream"
		}
		header.Set("Content-Type", ct)
		part, err := mw.CreatePart(header)
		if err != nil {
			return nil, fmt.Errorf("multipart part %s: %w", f.Filename, err)
		}
		if _, err := part.Write(f.Data); err != nil {
			return nil, fmt.Errorf("multipart write %s: %w", f.Filename, err)
		}
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("multipart close: %w", err)
	}
	return c.send(ctx, method, path, nil, &buf, mw.FormDataContentType())
}

func (c *Client) send(ctx context.Context, method string, path string, query url.Values, body io.Reader, contentType string) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.resolve(path, query), body)
	if err != nil {
		return nil, &Error{Method: method, Path: path, Err: err}
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}
	if requestID := requestIDFromContext(ctx); requestID != "" {
		req.Header.Set("X-Request-Id", requestID)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("backend request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.Error(err),
		)
		return nil, &Error{Method: method, Path: path, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, &Error{Method: method, Path: path, Err: fmt.Errorf("read body: %w", err)}
	}

	c.logger.Debug("backend request",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Int64("duration_ms", time.Since(start).Milliseconds()),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &Error{
			Method:     method,
			Path:       path,
			StatusCode: resp.StatusCode,
			Message:    messageFromBody(data),
			Body:       data,
		}
	}
	return json.RawMessage(data), nil
}

type requestIDKey struct{}

// WithRequestID carries the inbound request id to upstream calls.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	if strings.TrimSpace(requestID) == "" {
		return ctx
	}
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

func requestIDFromContext(ctx context.Context) string {
	v, _ := ctx.Value(requestIDKey{}).(string)
	return v
}
