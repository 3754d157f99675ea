package iris

import (
	"fmt"
	"net/url"
	"strings"
	"sync/atomic"
	"time"
)

// Defaults applied by NewConfig.
const (
	DefaultBaseURL            = "https://api.iris.freelabs.ai"
	DefaultTimeout            = 30 * time.Second
	DefaultRetries            = 2
	DefaultPollingInterval    = 500 * time.Millisecond
	DefaultMaxPollingDuration = 10 * time.Minute
)

// Version is reported in the default User-Agent.
const Version = "0.4.0"

// Config holds the settings shared by every resource of a Client.
//
// All fields except the acting user id are fixed at construction. The user id
// may be swapped with SetUserID; the change is visible to every resource that
// holds this Config.
type Config struct {
	apiKey             string
	baseURL            string
	timeout            time.Duration
	retries            int
	pollingInterval    time.Duration
	maxPollingDuration time.Duration
	webhookSecret      string
	rateLimit          float64
	userAgent          string

	userID atomic.Int64
}

// ConfigOption customises a Config built by NewConfig.
type ConfigOption func(*configOptions)

type configOptions struct {
	userID             int
	baseURL            string
	timeout            time.Duration
	retries            int
	pollingInterval    time.Duration
	maxPollingDuration time.Duration
	webhookSecret      string
	rateLimit          float64
	userAgent          string
}

// WithUserID sets the initial acting user.
func WithUserID(id int) ConfigOption {
	return func(o *configOptions) { o.userID = id }
}

// WithBaseURL overrides the API host.
func WithBaseURL(u string) ConfigOption {
	return func(o *configOptions) { o.baseURL = u }
}

// WithTimeout sets the per-request HTTP timeout.
func WithTimeout(d time.Duration) ConfigOption {
	return func(o *configOptions) { o.timeout = d }
}

// WithRetries sets how many additional attempts a failed GET may make.
func WithRetries(n int) ConfigOption {
	return func(o *configOptions) { o.retries = n }
}

// WithPollingInterval sets the wait between workflow status polls.
func WithPollingInterval(d time.Duration) ConfigOption {
	return func(o *configOptions) { o.pollingInterval = d }
}

// WithMaxPollingDuration bounds how long Chat.Execute watches a workflow.
// Zero means the first non-terminal snapshot times out.
func WithMaxPollingDuration(d time.Duration) ConfigOption {
	return func(o *configOptions) { o.maxPollingDuration = d }
}

// WithWebhookSecret sets the secret used to verify webhook signatures.
func WithWebhookSecret(secret string) ConfigOption {
	return func(o *configOptions) { o.webhookSecret = secret }
}

// WithRateLimit throttles outgoing requests to rps per second. Zero disables.
func WithRateLimit(rps float64) ConfigOption {
	return func(o *configOptions) { o.rateLimit = rps }
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) ConfigOption {
	return func(o *configOptions) { o.userAgent = ua }
}

// NewConfig validates the API key and options and returns a Config.
// Any problem is reported as ErrInvalidConfiguration.
func NewConfig(apiKey string, opts ...ConfigOption) (*Config, error) {
	o := configOptions{
		baseURL:            DefaultBaseURL,
		timeout:            DefaultTimeout,
		retries:            DefaultRetries,
		pollingInterval:    DefaultPollingInterval,
		maxPollingDuration: DefaultMaxPollingDuration,
		userAgent:          "iris-go/" + Version,
	}
	for _, opt := range opts {
		opt(&o)
	}

	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, fmt.Errorf("%w: api key is required", ErrInvalidConfiguration)
	}

	baseURL := strings.TrimSuffix(strings.TrimSpace(o.baseURL), "/")
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid base url: %v", ErrInvalidConfiguration, err)
	}
	if (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return nil, fmt.Errorf("%w: base url must be an http(s) URL, got %q", ErrInvalidConfiguration, o.baseURL)
	}
	if o.userID < 0 {
		return nil, fmt.Errorf("%w: user id must be positive", ErrInvalidConfiguration)
	}
	if o.timeout < 0 {
		return nil, fmt.Errorf("%w: timeout must not be negative", ErrInvalidConfiguration)
	}
	if o.retries < 0 {
		return nil, fmt.Errorf("%w: retries must not be negative", ErrInvalidConfiguration)
	}
	if o.pollingInterval <= 0 {
		return nil, fmt.Errorf("%w: polling interval must be positive", ErrInvalidConfiguration)
	}
	if o.maxPollingDuration < 0 {
		return nil, fmt.Errorf("%w: max polling duration must not be negative", ErrInvalidConfiguration)
	}
	if o.rateLimit < 0 {
		return nil, fmt.Errorf("%w: rate limit must not be negative", ErrInvalidConfiguration)
	}

	cfg := &Config{
		apiKey:             apiKey,
		baseURL:            baseURL,
		timeout:            o.timeout,
		retries:            o.retries,
		pollingInterval:    o.pollingInterval,
		maxPollingDuration: o.maxPollingDuration,
		webhookSecret:      o.webhookSecret,
		rateLimit:          o.rateLimit,
		userAgent:          o.userAgent,
	}
	cfg.userID.Store(int64(o.userID))
	return cfg, nil
}

// APIKey returns the bearer token sent on every request.
func (c *Config) APIKey() string { return c.apiKey }

// BaseURL returns the API root without a trailing slash.
func (c *Config) BaseURL() string { return c.baseURL }

// Timeout bounds a single HTTP attempt, not a retried call as a whole.
func (c *Config) Timeout() time.Duration { return c.timeout }

// Retries is how many times a failed GET is repeated. Zero disables retry.
func (c *Config) Retries() int { return c.retries }

// PollingInterval is the wait between workflow status checks.
func (c *Config) PollingInterval() time.Duration { return c.pollingInterval }

// MaxPollingDuration caps how long Chat.Execute waits for a workflow.
func (c *Config) MaxPollingDuration() time.Duration { return c.maxPollingDuration }

// WebhookSecret returns the shared secret for webhook signatures, or "".
func (c *Config) WebhookSecret() string { return c.webhookSecret }

// RateLimit is the request ceiling per second. Zero means unlimited.
func (c *Config) RateLimit() float64 { return c.rateLimit }

// UserAgent returns the User-Agent header value.
func (c *Config) UserAgent() string { return c.userAgent }

// UserID returns the acting user and whether one is set.
func (c *Config) UserID() (int, bool) {
	id := int(c.userID.Load())
	return id, id > 0
}

// RequireUserID returns the acting user or ErrUserIDRequired.
func (c *Config) RequireUserID() (int, error) {
	id, ok := c.UserID()
	if !ok {
		return 0, ErrUserIDRequired
	}
	return id, nil
}

// SetUserID swaps the acting user. Zero clears it.
func (c *Config) SetUserID(id int) {
	if id < 0 {
		id = 0
	}
	c.userID.Store(int64(id))
}

// Clone returns an independent copy, including the current user id.
func (c *Config) Clone() *Config {
	cp := &Config{
		apiKey:             c.apiKey,
		baseURL:            c.baseURL,
		timeout:            c.timeout,
		retries:            c.retries,
		pollingInterval:    c.pollingInterval,
		maxPollingDuration: c.maxPollingDuration,
		webhookSecret:      c.webhookSecret,
		rateLimit:          c.rateLimit,
		userAgent:          c.userAgent,
	}
	cp.userID.Store(c.userID.Load())
	return cp
}
