package iris

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
)

// SignatureHeader carries the HMAC-SHA256 of a webhook body.
const SignatureHeader = "X-IRIS-Signature"

// WebhookEvent is a decoded webhook delivery.
type WebhookEvent struct {
	model
	ID        ID             `json:"id"`
	Type      string         `json:"type"`
	CreatedAt string         `json:"created_at,omitempty"`
	Data      map[string]any `json:"data,omitempty"`
}

// WebhooksResource verifies and decodes webhook deliveries. It makes no
// network calls.
type WebhooksResource struct {
	resource
}

func (r *WebhooksResource) secret() (string, error) {
	s := r.cfg.WebhookSecret()
	if s == "" {
		return "", fmt.Errorf("%w: webhook secret is not set", ErrInvalidConfiguration)
	}
	return s, nil
}

// Sign returns the hex signature the server would send for payload.
func (r *WebhooksResource) Sign(payload []byte) (string, error) {
	secret, err := r.secret()
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(computeSignature(secret, payload)), nil
}

// Verify checks signature against payload. A "sha256=" prefix is accepted.
// A mismatch is ErrInvalidSignature.
func (r *WebhooksResource) Verify(payload []byte, signature string) error {
	secret, err := r.secret()
	if err != nil {
		return err
	}
	sig := strings.TrimPrefix(strings.TrimSpace(signature), "sha256=")
	got, err := hex.DecodeString(sig)
	if err != nil || len(got) == 0 {
		return ErrInvalidSignature
	}
	if !hmac.Equal(got, computeSignature(secret, payload)) {
		return ErrInvalidSignature
	}
	return nil
}

// ParseEvent decodes payload without verifying it.
func (r *WebhooksResource) ParseEvent(payload []byte) (*WebhookEvent, error) {
	var raw map[string]any
	if err := json.Unmarshal(payload, &raw); err != nil {
		return nil, fmt.Errorf("decoding webhook payload: %w", err)
	}
	if raw == nil {
		return nil, fmt.Errorf("decoding webhook payload: not an object")
	}
	ev, err := decodeModel[WebhookEvent](raw)
	if err != nil {
		return nil, err
	}
	if ev.Type == "" {
		ev.Type = Attributes(raw).String("event")
	}
	return ev, nil
}

// ConstructEvent verifies then decodes a delivery.
func (r *WebhooksResource) ConstructEvent(payload []byte, signature string) (*WebhookEvent, error) {
	if err := r.Verify(payload, signature); err != nil {
		return nil, err
	}
	return r.ParseEvent(payload)
}

func computeSignature(secret string, payload []byte) []byte {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return mac.Sum(nil)
}
