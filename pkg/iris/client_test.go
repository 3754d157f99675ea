package iris

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

// newTestClient starts an httptest server for handler and returns a Client
// pointed at it with fast polling and retry waits.
func newTestClient(t *testing.T, handler http.HandlerFunc, opts ...ConfigOption) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	base := []ConfigOption{
		WithBaseURL(server.URL),
		WithPollingInterval(time.Millisecond),
	}
	cfg, err := NewConfig("test-api-key", append(base, opts...)...)
	require.NoError(t, err)
	return NewClient(cfg, WithRetryWait(time.Millisecond, 5*time.Millisecond))
}

func writeJSON(t *testing.T, w http.ResponseWriter, status int, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	require.NoError(t, json.NewEncoder(w).Encode(v))
}

func decodeBody(t *testing.T, r *http.Request) map[string]any {
	t.Helper()
	data, err := io.ReadAll(r.Body)
	require.NoError(t, err)
	var body map[string]any
	require.NoError(t, json.Unmarshal(data, &body))
	return body
}

func TestNew_InvalidKey(t *testing.T) {
	_, err := New("")
	assert.ErrorIs(t, err, ErrInvalidConfiguration)
}

func TestClient_ResourcesShareConfig(t *testing.T) {
	c, err := New("key", WithUserID(7))
	require.NoError(t, err)

	assert.Same(t, c.Config(), c.Leads.cfg)
	assert.Same(t, c.Config(), c.Chat.cfg)
	assert.Same(t, c.HTTP(), c.Products.http)
	assert.Same(t, c.HTTP(), c.Webhooks.http)
}

func TestClient_AsUser(t *testing.T) {
	var gotPath string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		writeJSON(t, w, http.StatusOK, map[string]any{"data": []any{}})
	})

	_, err := c.Integrations.List(context.Background())
	require.ErrorIs(t, err, ErrUserIDRequired)

	same := c.AsUser(456)
	assert.Same(t, c, same)

	uid, err := c.RequireUserID()
	require.NoError(t, err)
	assert.Equal(t, 456, uid)

	_, err = c.Integrations.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "/api/v1/users/456/integrations", gotPath)
}

func TestClient_ForUserLeavesParentUnchanged(t *testing.T) {
	c, err := New("key", WithUserID(1))
	require.NoError(t, err)

	child := c.ForUser(2)
	assert.NotSame(t, c, child)

	parentID, _ := c.Config().UserID()
	childID, _ := child.Config().UserID()
	assert.Equal(t, 1, parentID)
	assert.Equal(t, 2, childID)
	assert.Same(t, c.HTTP().httpClient, child.HTTP().httpClient)
}

func TestClient_ForUserConcurrent(t *testing.T) {
	var mu sync.Mutex
	seen := map[string]int{}
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		seen[r.URL.Path]++
		mu.Unlock()
		writeJSON(t, w, http.StatusOK, map[string]any{"data": []any{}})
	})

	g, ctx := errgroup.WithContext(context.Background())
	for id := 1; id <= 8; id++ {
		g.Go(func() error {
			_, err := c.ForUser(id).Schedules.List(ctx)
			return err
		})
	}
	require.NoError(t, g.Wait())

	for id := 1; id <= 8; id++ {
		assert.Equal(t, 1, seen[fmt.Sprintf("/api/v1/users/%d/schedules", id)])
	}
	_, ok := c.Config().UserID()
	assert.False(t, ok)
}

func TestClient_UserScopedOperationsSendNothingWithoutUser(t *testing.T) {
	hits := 0
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		hits++
		writeJSON(t, w, http.StatusOK, map[string]any{})
	})
	ctx := context.Background()

	calls := map[string]func() error{
		"chat.start": func() error {
			_, err := c.Chat.Start(ctx, StartRequest{Query: "hi"})
			return err
		},
		"chat.execute": func() error {
			_, err := c.Chat.Execute(ctx, StartRequest{Query: "hi"}, nil)
			return err
		},
		"agents.list": func() error {
			_, err := c.Agents.List(ctx, nil)
			return err
		},
		"leads.list": func() error {
			_, err := c.Leads.List(ctx, nil)
			return err
		},
		"leads.create": func() error {
			_, err := c.Leads.Create(ctx, LeadRequest{Name: "Ada"})
			return err
		},
		"phone.purchase": func() error {
			_, err := c.Phone.Purchase(ctx, "+15550100", nil)
			return err
		},
		"rag.search": func() error {
			_, err := c.RAG.Search(ctx, SearchRequest{Query: "q"})
			return err
		},
		"social.publish": func() error {
			_, err := c.Social.Publish(ctx, PublishRequest{Content: "x", Platforms: []string{"x"}})
			return err
		},
		"marketplace.install": func() error {
			_, err := c.Marketplace.Install(ctx, "1")
			return err
		},
		"products.list": func() error {
			_, err := c.Products.List(ctx, nil)
			return err
		},
		"bloqs.create": func() error {
			_, err := c.Bloqs.Create(ctx, BloqRequest{Name: "b"})
			return err
		},
		"schedules.delete": func() error {
			return c.Schedules.Delete(ctx, "1")
		},
		"payments.checkout": func() error {
			_, err := c.Payments.CreateCheckout(ctx, CheckoutRequest{Amount: 10})
			return err
		},
		"users.get": func() error {
			_, err := c.Users.Get(ctx, 0)
			return err
		},
	}
	for name, call := range calls {
		t.Run(name, func(t *testing.T) {
			err := call()
			assert.ErrorIs(t, err, ErrUserIDRequired)
			assert.ErrorIs(t, err, ErrInvalidConfiguration)
		})
	}
	assert.Zero(t, hits)
}
