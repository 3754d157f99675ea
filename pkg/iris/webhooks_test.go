package iris

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newWebhookClient(t *testing.T, secret string) *Client {
	t.Helper()
	c, err := New("key", WithWebhookSecret(secret))
	require.NoError(t, err)
	return c
}

func TestWebhooks_VerifyRoundTrip(t *testing.T) {
	c := newWebhookClient(t, "whsec")
	payload := []byte(`{"id":"evt_1","type":"workflow.completed","data":{"workflow_id":"wf-1"}}`)

	sig, err := c.Webhooks.Sign(payload)
	require.NoError(t, err)

	assert.NoError(t, c.Webhooks.Verify(payload, sig))
	assert.NoError(t, c.Webhooks.Verify(payload, "sha256="+sig))
	assert.ErrorIs(t, c.Webhooks.Verify([]byte(`{}`), sig), ErrInvalidSignature)
	assert.ErrorIs(t, c.Webhooks.Verify(payload, "not-hex"), ErrInvalidSignature)
	assert.ErrorIs(t, c.Webhooks.Verify(payload, ""), ErrInvalidSignature)
}

func TestWebhooks_KnownSignature(t *testing.T) {
	c := newWebhookClient(t, "key")
	// HMAC-SHA256("key", "The quick brown fox jumps over the lazy dog")
	const want = "f7bc83f430538424b13298e6aa6fb143ef4d59a14946175997479dbc2d1a3cd8"
	assert.NoError(t, c.Webhooks.Verify([]byte("The quick brown fox jumps over the lazy dog"), want))
}

func TestWebhooks_MissingSecret(t *testing.T) {
	c := newWebhookClient(t, "")
	err := c.Webhooks.Verify([]byte("{}"), "00")
	assert.ErrorIs(t, err, ErrInvalidConfiguration)
}

func TestWebhooks_ConstructEvent(t *testing.T) {
	c := newWebhookClient(t, "whsec")
	payload := []byte(`{"id":"evt_2","event":"lead.created","data":{"id":5}}`)
	sig, err := c.Webhooks.Sign(payload)
	require.NoError(t, err)

	ev, err := c.Webhooks.ConstructEvent(payload, sig)
	require.NoError(t, err)
	assert.Equal(t, ID("evt_2"), ev.ID)
	assert.Equal(t, "lead.created", ev.Type)
	assert.Equal(t, float64(5), ev.Data["id"])

	_, err = c.Webhooks.ConstructEvent(payload, "00")
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestWebhooks_ParseEventNumericID(t *testing.T) {
	c := newWebhookClient(t, "whsec")
	ev, err := c.Webhooks.ParseEvent([]byte(`{"id":42,"type":"lead.created"}`))
	require.NoError(t, err)
	assert.Equal(t, ID("42"), ev.ID)
	assert.Equal(t, "lead.created", ev.Type)
}

func TestWebhooks_ParseEventRejectsNonObject(t *testing.T) {
	c := newWebhookClient(t, "whsec")
	_, err := c.Webhooks.ParseEvent([]byte(`[1,2]`))
	assert.Error(t, err)
}
