package iris

import (
	"context"
	"strings"

	"github.com/google/uuid"
)

// CheckoutRequest starts a hosted payment.
type CheckoutRequest struct {
	Amount      Amount
	Currency    string
	Description string
	ProductID   ID
	SuccessURL  string
	CancelURL   string
	Metadata    map[string]any
	// IdempotencyKey makes retried checkouts safe. A random key is used
	// when empty.
	IdempotencyKey string
}

// Checkout is a hosted payment session.
type Checkout struct {
	model
	ID        ID     `json:"id"`
	URL       string `json:"url"`
	Status    string `json:"status,omitempty"`
	Amount    Amount `json:"amount,omitempty"`
	Currency  string `json:"currency,omitempty"`
	ExpiresAt string `json:"expires_at,omitempty"`
}

// Payment is a charge against the acting user's account.
type Payment struct {
	model
	ID          ID     `json:"id"`
	Amount      Amount `json:"amount"`
	Currency    string `json:"currency,omitempty"`
	Status      string `json:"status"`
	Description string `json:"description,omitempty"`
	CreatedAt   string `json:"created_at,omitempty"`
}

func (p *Payment) IsPaid() bool {
	switch strings.ToLower(p.Status) {
	case "paid", "succeeded", "completed":
		return true
	}
	return false
}

// PaymentsResource creates checkouts and reads payment history.
type PaymentsResource struct {
	resource
}

// CreateCheckout opens a checkout session. Currency defaults to "usd".
func (r *PaymentsResource) CreateCheckout(ctx context.Context, req CheckoutRequest) (*Checkout, error) {
	uid, err := r.cfg.RequireUserID()
	if err != nil {
		return nil, err
	}
	if req.Amount <= 0 && req.ProductID == "" {
		return nil, requireArg("amount or product id", "")
	}
	if req.Currency == "" {
		req.Currency = "usd"
	}
	key := req.IdempotencyKey
	if key == "" {
		key = uuid.NewString()
	}
	p := params{"user_id": uid, "currency": strings.ToLower(req.Currency)}
	p.set("amount", req.Amount).
		set("description", req.Description).
		set("product_id", req.ProductID).
		set("success_url", req.SuccessURL).
		set("cancel_url", req.CancelURL).
		set("metadata", req.Metadata)

	var body map[string]any
	if err := r.http.postWithHeaders(ctx, "/api/v1/payments/checkout", p, &body, map[string]string{"Idempotency-Key": key}); err != nil {
		return nil, err
	}
	return decodeModel[Checkout](extractPayload(body, "data.checkout", "checkout", "data"))
}

// Get fetches one payment.
func (r *PaymentsResource) Get(ctx context.Context, id string) (*Payment, error) {
	if err := requireArg("payment id", id); err != nil {
		return nil, err
	}
	body, err := r.getObject(ctx, "/api/v1/payments/"+esc(id), nil)
	if err != nil {
		return nil, err
	}
	return decodeModel[Payment](extractPayload(body, "data.payment", "payment", "data"))
}

// List returns one page of the acting user's payments.
func (r *PaymentsResource) List(ctx context.Context, opts *ListOptions) (*Page[Payment], error) {
	uid, err := r.cfg.RequireUserID()
	if err != nil {
		return nil, err
	}
	body, err := r.getObject(ctx, userPath(uid, "/payments"), opts.params().query())
	if err != nil {
		return nil, err
	}
	return decodePage[Payment](body, "data.payments", "payments", "data")
}
