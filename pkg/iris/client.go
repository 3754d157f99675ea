// Package iris is a client for the IRIS platform API.
//
// A Client groups one resource per API area. All resources share a single
// Config and HTTP layer:
//
//	client, err := iris.New(os.Getenv("IRIS_API_KEY"), iris.WithUserID(42))
//	if err != nil {
//		return err
//	}
//	status, err := client.Chat.Execute(ctx, iris.StartRequest{Query: "Summarise my leads"}, nil)
//
// Operations that act on behalf of a user fail with ErrUserIDRequired, before
// any request is sent, when no user id is set.
package iris

// Client is the entry point to the IRIS API.
type Client struct {
	cfg  *Config
	http *HTTPClient

	Chat         *ChatResource
	Agents       *AgentsResource
	Leads        *LeadsResource
	Phone        *PhoneResource
	RAG          *RAGResource
	Social       *SocialResource
	Marketplace  *MarketplaceResource
	Products     *ProductsResource
	Integrations *IntegrationsResource
	Bloqs        *BloqsResource
	Schedules    *SchedulesResource
	Payments     *PaymentsResource
	Users        *UsersResource
	Webhooks     *WebhooksResource
}

// New builds a Config from apiKey and opts and returns a Client for it.
func New(apiKey string, opts ...ConfigOption) (*Client, error) {
	cfg, err := NewConfig(apiKey, opts...)
	if err != nil {
		return nil, err
	}
	return NewClient(cfg), nil
}

// NewClient returns a Client for cfg.
func NewClient(cfg *Config, opts ...ClientOption) *Client {
	return newClient(cfg, NewHTTPClient(cfg, opts...))
}

func newClient(cfg *Config, hc *HTTPClient) *Client {
	r := resource{http: hc, cfg: cfg}
	return &Client{
		cfg:          cfg,
		http:         hc,
		Chat:         newChatResource(r),
		Agents:       &AgentsResource{r},
		Leads:        &LeadsResource{r},
		Phone:        &PhoneResource{r},
		RAG:          &RAGResource{r},
		Social:       &SocialResource{r},
		Marketplace:  &MarketplaceResource{r},
		Products:     &ProductsResource{r},
		Integrations: &IntegrationsResource{r},
		Bloqs:        &BloqsResource{r},
		Schedules:    &SchedulesResource{r},
		Payments:     &PaymentsResource{r},
		Users:        &UsersResource{r},
		Webhooks:     &WebhooksResource{r},
	}
}

// Config returns the shared configuration.
func (c *Client) Config() *Config { return c.cfg }

// HTTP returns the shared HTTP layer for endpoints the SDK does not wrap.
func (c *Client) HTTP() *HTTPClient { return c.http }

// RequireUserID returns the acting user or ErrUserIDRequired.
func (c *Client) RequireUserID() (int, error) { return c.cfg.RequireUserID() }

// AsUser switches the acting user of this client and returns it. Every
// resource sees the change, including calls already in flight that have not
// yet read the user id. Use ForUser to act for several users concurrently.
func (c *Client) AsUser(id int) *Client {
	c.cfg.SetUserID(id)
	return c
}

// ForUser returns a client acting for id. It shares the connection pool,
// rate limiter and metrics with c but has its own Config, so c is unchanged.
func (c *Client) ForUser(id int) *Client {
	cfg := c.cfg.Clone()
	cfg.SetUserID(id)
	return newClient(cfg, c.http.withConfig(cfg))
}

// withConfig returns a shallow copy of the HTTP layer bound to cfg.
func (c *HTTPClient) withConfig(cfg *Config) *HTTPClient {
	cp := *c
	cp.cfg = cfg
	return &cp
}
