package iris

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// maxResponseSize limits response body reads to prevent memory exhaustion.
const maxResponseSize = 10 * 1024 * 1024 // 10MB

const (
	defaultRetryWaitMin = 200 * time.Millisecond
	defaultRetryWaitMax = 2 * time.Second
)

// HTTPClient issues authenticated JSON requests against the IRIS API.
// It holds no state between calls beyond the shared Config.
type HTTPClient struct {
	cfg          *Config
	httpClient   *http.Client
	logger       *zap.Logger
	limiter      *rate.Limiter
	metrics      *requestMetrics
	retryWaitMin time.Duration
	retryWaitMax time.Duration
}

// ClientOption customises the HTTP layer of a Client.
type ClientOption func(*HTTPClient)

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *HTTPClient) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithLogger sets the logger used for per-request debug entries.
func WithLogger(l *zap.Logger) ClientOption {
	return func(c *HTTPClient) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithMetrics records request counts and latencies on reg.
func WithMetrics(reg prometheus.Registerer) ClientOption {
	return func(c *HTTPClient) {
		if reg != nil {
			c.metrics = newRequestMetrics(reg)
		}
	}
}

// WithRetryWait sets the backoff bounds between GET retries.
// maxWait is ignored unless it is at least minWait.
func WithRetryWait(minWait, maxWait time.Duration) ClientOption {
	return func(c *HTTPClient) {
		if minWait > 0 {
			c.retryWaitMin = minWait
			if maxWait >= minWait {
				c.retryWaitMax = maxWait
			}
		}
	}
}

// NewHTTPClient builds the HTTP layer for cfg.
func NewHTTPClient(cfg *Config, opts ...ClientOption) *HTTPClient {
	c := &HTTPClient{
		cfg:          cfg,
		httpClient:   &http.Client{Timeout: cfg.Timeout()},
		logger:       zap.NewNop(),
		retryWaitMin: defaultRetryWaitMin,
		retryWaitMax: defaultRetryWaitMax,
	}
	if cfg.RateLimit() > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit()), 1)
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.retryWaitMax < c.retryWaitMin {
		c.retryWaitMax = c.retryWaitMin
	}
	return c
}

// request is one logical API call. It may be sent more than once.
type request struct {
	method      string
	path        string
	query       url.Values
	body        []byte
	contentType string
	headers     map[string]string
}

// Get sends a GET with query parameters and decodes the JSON response into out.
func (c *HTTPClient) Get(ctx context.Context, path string, query url.Values, out any) error {
	return c.do(ctx, &request{method: http.MethodGet, path: path, query: query}, out)
}

// Delete sends a DELETE with query parameters.
func (c *HTTPClient) Delete(ctx context.Context, path string, query url.Values, out any) error {
	return c.do(ctx, &request{method: http.MethodDelete, path: path, query: query}, out)
}

// Post sends body as JSON.
func (c *HTTPClient) Post(ctx context.Context, path string, body, out any) error {
	return c.sendJSON(ctx, http.MethodPost, path, body, out, nil)
}

// Put sends body as JSON.
func (c *HTTPClient) Put(ctx context.Context, path string, body, out any) error {
	return c.sendJSON(ctx, http.MethodPut, path, body, out, nil)
}

// Patch sends body as JSON.
func (c *HTTPClient) Patch(ctx context.Context, path string, body, out any) error {
	return c.sendJSON(ctx, http.MethodPatch, path, body, out, nil)
}

// postWithHeaders sends a JSON POST with additional headers.
func (c *HTTPClient) postWithHeaders(ctx context.Context, path string, body, out any, headers map[string]string) error {
	return c.sendJSON(ctx, http.MethodPost, path, body, out, headers)
}

func (c *HTTPClient) sendJSON(ctx context.Context, method, path string, body, out any, headers map[string]string) error {
	req := &request{method: method, path: path, headers: headers}
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshaling request: %w", err)
		}
		req.body = data
		req.contentType = "application/json"
	}
	return c.do(ctx, req, out)
}

// Upload sends the file at filePath as a multipart form under fieldName
// ("file" when empty), with metadata as additional form fields.
func (c *HTTPClient) Upload(ctx context.Context, path, filePath, fieldName string, metadata map[string]string, out any) error {
	if fieldName == "" {
		fieldName = "file"
	}
	body, contentType, err := multipartBody(filePath, fieldName, metadata)
	if err != nil {
		return err
	}
	return c.do(ctx, &request{
		method:      http.MethodPost,
		path:        path,
		body:        body,
		contentType: contentType,
	}, out)
}

func multipartBody(filePath, fieldName string, metadata map[string]string) ([]byte, string, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, "", fmt.Errorf("opening upload file: %w", err)
	}
	defer func() { _ = f.Close() }()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	keys := make([]string, 0, len(metadata))
	for k := range metadata {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := w.WriteField(k, metadata[k]); err != nil {
			return nil, "", fmt.Errorf("writing form field %s: %w", k, err)
		}
	}

	part, err := w.CreateFormFile(fieldName, filepath.Base(filePath))
	if err != nil {
		return nil, "", fmt.Errorf("creating form file: %w", err)
	}
	if _, err := io.Copy(part, f); err != nil {
		return nil, "", fmt.Errorf("reading upload file: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("closing multipart body: %w", err)
	}
	return buf.Bytes(), w.FormDataContentType(), nil
}

// do sends req, retrying idempotent GETs on transient failure.
func (c *HTTPClient) do(ctx context.Context, req *request, out any) error {
	retries := c.cfg.Retries()
	if req.method != http.MethodGet || retries == 0 {
		return c.attempt(ctx, req, out, 1)
	}

	attempt := 0
	op := func() error {
		attempt++
		err := c.attempt(ctx, req, out, attempt)
		if err != nil && !isTransient(ctx, err) {
			return backoff.Permanent(err)
		}
		return err
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.retryWaitMin
	b.MaxInterval = c.retryWaitMax
	b.MaxElapsedTime = 0
	return backoff.Retry(op, backoff.WithContext(backoff.WithMaxRetries(b, uint64(retries)), ctx))
}

// isTransient reports whether a failed attempt may succeed if repeated:
// transport failures and 5xx responses, unless the caller gave up.
func isTransient(ctx context.Context, err error) bool {
	if ctx.Err() != nil {
		return false
	}
	switch e := err.(type) {
	case *NetworkError:
		return true
	case *APIError:
		return e.IsServerError()
	}
	return false
}

func (c *HTTPClient) attempt(ctx context.Context, req *request, out any, n int) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("waiting for rate limiter: %w", err)
		}
	}

	path := req.path
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	fullURL := c.cfg.BaseURL() + path
	if len(req.query) > 0 {
		fullURL += "?" + req.query.Encode()
	}

	var bodyReader io.Reader
	if req.body != nil {
		bodyReader = bytes.NewReader(req.body)
	}
	httpReq, err := http.NewRequestWithContext(ctx, req.method, fullURL, bodyReader)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	requestID := uuid.NewString()
	httpReq.Header.Set("Authorization", "Bearer "+c.cfg.APIKey())
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("User-Agent", c.cfg.UserAgent())
	httpReq.Header.Set("X-Request-ID", requestID)
	if req.contentType != "" {
		httpReq.Header.Set("Content-Type", req.contentType)
	}
	for key, value := range req.headers {
		httpReq.Header.Set(key, value)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.metrics.observe(req.method, "error", time.Since(start))
		c.logger.Debug("iris request failed",
			zap.String("method", req.method),
			zap.String("path", path),
			zap.Int("attempt", n),
			zap.String("request_id", requestID),
			zap.Error(err),
		)
		return &NetworkError{Method: req.method, URL: fullURL, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	// Read maxResponseSize+1 to detect oversized responses while still accepting
	// responses exactly at the limit.
	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize+1))
	duration := time.Since(start)
	if err != nil {
		c.metrics.observe(req.method, "error", duration)
		return &NetworkError{Method: req.method, URL: fullURL, Err: fmt.Errorf("reading response: %w", err)}
	}
	c.metrics.observe(req.method, statusLabel(resp.StatusCode), duration)
	c.logger.Debug("iris request",
		zap.String("method", req.method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", duration),
		zap.Int("attempt", n),
		zap.String("request_id", requestID),
	)
	if int64(len(respBody)) > maxResponseSize {
		return &APIError{
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("response exceeds maximum size of %d bytes", maxResponseSize),
			RequestID:  firstNonEmpty(resp.Header.Get("X-Request-ID"), requestID),
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return newResponseError(resp, respBody, requestID)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent || len(bytes.TrimSpace(respBody)) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

// newResponseError maps a non-2xx response to the typed error for its status.
func newResponseError(resp *http.Response, body []byte, sentRequestID string) error {
	apiErr := APIError{
		StatusCode: resp.StatusCode,
		Body:       string(body),
	}

	var bodyRequestID string
	var parsed map[string]any
	if err := json.Unmarshal(body, &parsed); err == nil && parsed != nil {
		apiErr.Message = errorMessage(parsed)
		apiErr.FieldErrors = fieldErrors(parsed["errors"])
		bodyRequestID = Attributes(parsed).String("request_id")
	} else if text := strings.TrimSpace(string(body)); text != "" && len(text) <= 512 {
		apiErr.Message = text
	}
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(resp.StatusCode)
	}
	apiErr.RequestID = firstNonEmpty(resp.Header.Get("X-Request-ID"), bodyRequestID, sentRequestID)

	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return &AuthenticationError{APIError: apiErr}
	case http.StatusUnprocessableEntity:
		return &ValidationError{APIError: apiErr}
	default:
		return &apiErr
	}
}

func errorMessage(body map[string]any) string {
	if s, ok := body["message"].(string); ok && s != "" {
		return s
	}
	switch v := body["error"].(type) {
	case string:
		return v
	case map[string]any:
		if s, ok := v["message"].(string); ok {
			return s
		}
	}
	return ""
}

// fieldErrors accepts {"field": ["msg", ...]}, {"field": "msg"} and
// [{"field": "...", "message": "..."}].
func fieldErrors(v any) map[string][]string {
	out := map[string][]string{}
	switch errs := v.(type) {
	case map[string]any:
		for field, msgs := range errs {
			switch m := msgs.(type) {
			case string:
				out[field] = []string{m}
			case []any:
				for _, e := range m {
					if s, ok := e.(string); ok {
						out[field] = append(out[field], s)
					}
				}
			}
		}
	case []any:
		for _, e := range errs {
			m, ok := e.(map[string]any)
			if !ok {
				continue
			}
			a := Attributes(m)
			if field := a.String("field"); field != "" {
				out[field] = append(out[field], a.String("message"))
			}
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
