package iris

import (
	"context"
	"strings"
)

// AvailableNumber is a number that can be purchased.
type AvailableNumber struct {
	model
	PhoneNumber  string   `json:"phone_number"`
	FriendlyName string   `json:"friendly_name,omitempty"`
	Locality     string   `json:"locality,omitempty"`
	Region       string   `json:"region,omitempty"`
	Country      string   `json:"country,omitempty"`
	Capabilities []string `json:"capabilities,omitempty"`
	MonthlyPrice Amount   `json:"monthly_price,omitempty"`
}

// PhoneNumber is a number owned by the acting user.
type PhoneNumber struct {
	model
	ID          ID     `json:"id"`
	PhoneNumber string `json:"phone_number"`
	Label       string `json:"label,omitempty"`
	Status      string `json:"status,omitempty"`
	AgentID     ID     `json:"agent_id,omitempty"`
	CreatedAt   string `json:"created_at,omitempty"`
}

func (n *PhoneNumber) IsActive() bool {
	return n.Status == "" || strings.EqualFold(n.Status, "active")
}

// AvailableNumbersQuery narrows Phone.Available.
type AvailableNumbersQuery struct {
	Country  string
	AreaCode string
	Contains string
	Limit    int
}

// PhoneConfig updates a purchased number.
type PhoneConfig struct {
	Label      string
	AgentID    ID
	VoiceURL   string
	SMSEnabled *bool
}

// PhoneResource searches, buys and configures phone numbers.
type PhoneResource struct {
	resource
}

// Available searches purchasable numbers. Country defaults to "US".
func (r *PhoneResource) Available(ctx context.Context, q AvailableNumbersQuery) ([]AvailableNumber, error) {
	if q.Country == "" {
		q.Country = "US"
	}
	p := params{}.
		set("country", q.Country).
		set("area_code", q.AreaCode).
		set("contains", q.Contains).
		set("limit", q.Limit)
	body, err := r.getObject(ctx, "/api/v1/phone/available", p.query())
	if err != nil {
		return nil, err
	}
	return decodeModels[AvailableNumber](extractList(body, "data.numbers", "numbers", "data"))
}

// Purchase buys number for the acting user.
func (r *PhoneResource) Purchase(ctx context.Context, number string, cfg *PhoneConfig) (*PhoneNumber, error) {
	uid, err := r.cfg.RequireUserID()
	if err != nil {
		return nil, err
	}
	if err := requireArg("phone number", number); err != nil {
		return nil, err
	}
	p := params{"user_id": uid, "phone_number": number}
	if cfg != nil {
		cfg.apply(p)
	}
	body, err := r.postObject(ctx, "/api/v1/phone/purchase", p)
	if err != nil {
		return nil, err
	}
	return decodeModel[PhoneNumber](extractPayload(body, "data.number", "number", "data"))
}

// List returns the acting user's numbers.
func (r *PhoneResource) List(ctx context.Context) ([]PhoneNumber, error) {
	uid, err := r.cfg.RequireUserID()
	if err != nil {
		return nil, err
	}
	body, err := r.getObject(ctx, "/api/v1/phone/numbers", params{"user_id": uid}.query())
	if err != nil {
		return nil, err
	}
	return decodeModels[PhoneNumber](extractList(body, "data.numbers", "numbers", "data"))
}

// Configure updates a purchased number.
func (r *PhoneResource) Configure(ctx context.Context, id string, cfg PhoneConfig) (*PhoneNumber, error) {
	if err := requireArg("phone number id", id); err != nil {
		return nil, err
	}
	p := params{}
	cfg.apply(p)
	body, err := r.patchObject(ctx, "/api/v1/phone/numbers/"+esc(id), p)
	if err != nil {
		return nil, err
	}
	return decodeModel[PhoneNumber](extractPayload(body, "data.number", "number", "data"))
}

// Release gives up a purchased number.
func (r *PhoneResource) Release(ctx context.Context, id string) error {
	if err := requireArg("phone number id", id); err != nil {
		return err
	}
	return r.http.Delete(ctx, "/api/v1/phone/numbers/"+esc(id), nil, nil)
}

func (c *PhoneConfig) apply(p params) {
	p.set("label", c.Label).
		set("agent_id", c.AgentID).
		set("voice_url", c.VoiceURL).
		set("sms_enabled", c.SMSEnabled)
}
