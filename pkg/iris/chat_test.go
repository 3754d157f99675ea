package iris

import (
	"context"
	"errors"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// workflowServer answers /api/chat/start with workflow wf-1 and serves the
// given snapshots in order on status polls, repeating the last one.
func workflowServer(t *testing.T, snapshots ...map[string]any) (http.HandlerFunc, *atomic.Int32) {
	var polls atomic.Int32
	return func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/api/chat/start":
			body := decodeBody(t, r)
			assert.Equal(t, float64(42), body["user_id"])
			assert.Equal(t, "summarise", body["query"])
			writeJSON(t, w, http.StatusOK, map[string]any{
				"data": map[string]any{"workflow_id": "wf-1", "status": "running"},
			})
		case r.Method == http.MethodGet && r.URL.Path == "/api/workflows/wf-1":
			n := int(polls.Add(1)) - 1
			if n >= len(snapshots) {
				n = len(snapshots) - 1
			}
			writeJSON(t, w, http.StatusOK, map[string]any{"data": snapshots[n]})
		default:
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}, &polls
}

func TestChat_ExecuteCompletes(t *testing.T) {
	handler, polls := workflowServer(t,
		map[string]any{"status": "running", "progress": 0.2},
		map[string]any{"status": "running", "progress": 0.6},
		map[string]any{"status": "completed", "summary": "done", "result": map[string]any{"answer": 4}},
	)
	c := newTestClient(t, handler, WithUserID(42))

	var seen []string
	status, err := c.Chat.Execute(context.Background(), StartRequest{Query: "summarise"}, func(s *WorkflowStatus) {
		seen = append(seen, s.Status)
	})
	require.NoError(t, err)

	assert.True(t, status.IsCompleted())
	assert.Equal(t, "wf-1", status.WorkflowID)
	assert.Equal(t, "done", status.Summary)
	assert.Equal(t, map[string]any{"answer": float64(4)}, status.Result)
	assert.Equal(t, []string{"running", "running", "completed"}, seen)
	assert.Equal(t, int32(3), polls.Load())
}

func TestChat_ExecuteTimesOutWithZeroBudget(t *testing.T) {
	handler, polls := workflowServer(t, map[string]any{"status": "running"})
	c := newTestClient(t, handler, WithUserID(42), WithMaxPollingDuration(0))

	_, err := c.Chat.Execute(context.Background(), StartRequest{Query: "summarise"}, nil)

	var timeout *TimeoutError
	require.True(t, errors.As(err, &timeout))
	assert.Equal(t, "wf-1", timeout.WorkflowID)
	require.NotNil(t, timeout.Last)
	assert.True(t, timeout.Last.IsRunning())
	assert.Equal(t, int32(1), polls.Load())
}

func TestChat_ExecuteTimesOutAfterBudget(t *testing.T) {
	handler, _ := workflowServer(t, map[string]any{"status": "running"})
	c := newTestClient(t, handler, WithUserID(42), WithMaxPollingDuration(20*time.Millisecond))

	start := time.Now()
	_, err := c.Chat.Execute(context.Background(), StartRequest{Query: "summarise"}, nil)

	var timeout *TimeoutError
	require.True(t, errors.As(err, &timeout))
	assert.GreaterOrEqual(t, timeout.Elapsed, 20*time.Millisecond)
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestChat_ExecuteFailed(t *testing.T) {
	handler, _ := workflowServer(t,
		map[string]any{"status": "running"},
		map[string]any{"status": "failed", "error": "boom"},
	)
	c := newTestClient(t, handler, WithUserID(42))

	_, err := c.Chat.Execute(context.Background(), StartRequest{Query: "summarise"}, nil)

	var failed *WorkflowFailedError
	require.True(t, errors.As(err, &failed))
	assert.Equal(t, "boom", failed.Reason)
	assert.Contains(t, err.Error(), "boom")
}

func TestChat_ExecuteFailedWithErrorObject(t *testing.T) {
	handler, _ := workflowServer(t,
		map[string]any{"status": "failed", "error": map[string]any{"message": "quota exceeded"}},
	)
	c := newTestClient(t, handler, WithUserID(42))

	_, err := c.Chat.Execute(context.Background(), StartRequest{Query: "summarise"}, nil)

	var failed *WorkflowFailedError
	require.True(t, errors.As(err, &failed))
	assert.Equal(t, "quota exceeded", failed.Reason)
}

func TestChat_ExecuteStopsForApproval(t *testing.T) {
	handler, polls := workflowServer(t,
		map[string]any{"status": "paused"},
		map[string]any{"status": "paused", "requires_approval": true, "summary": "review draft"},
	)
	c := newTestClient(t, handler, WithUserID(42))

	status, err := c.Chat.Execute(context.Background(), StartRequest{Query: "summarise"}, nil)
	require.NoError(t, err)

	assert.True(t, status.NeedsApproval())
	assert.True(t, status.IsTerminal())
	assert.Equal(t, "review draft", status.Summary)
	// A pause without requires_approval keeps polling.
	assert.Equal(t, int32(2), polls.Load())
}

func TestChat_ExecuteHonoursCancellation(t *testing.T) {
	handler, _ := workflowServer(t, map[string]any{"status": "running"})
	c := newTestClient(t, handler, WithUserID(42))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	calls := 0
	_, err := c.Chat.Execute(ctx, StartRequest{Query: "summarise"}, func(*WorkflowStatus) {
		calls++
		if calls == 2 {
			cancel()
		}
	})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestChat_StartRequiresQuery(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected")
	}, WithUserID(42))

	_, err := c.Chat.Start(context.Background(), StartRequest{Query: "  "})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "query is required")
}

func TestChat_StartWithoutWorkflowID(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusOK, map[string]any{"data": map[string]any{"status": "running"}})
	}, WithUserID(42))

	_, err := c.Chat.Start(context.Background(), StartRequest{Query: "hi"})
	require.Error(t, err)
}

func TestChat_StartSendsOptionalFields(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		body := decodeBody(t, r)
		assert.Equal(t, "7", body["agent_id"])
		assert.Equal(t, true, body["use_rag"])
		assert.NotContains(t, body, "bloq_id")
		assert.Len(t, body["conversation_history"], 1)
		writeJSON(t, w, http.StatusOK, map[string]any{"workflow": map[string]any{"id": "wf-9"}})
	}, WithUserID(42))

	status, err := c.Chat.Start(context.Background(), StartRequest{
		Query:               "hi",
		AgentID:             "7",
		UseRAG:              true,
		ConversationHistory: []ChatMessage{{Role: "user", Content: "earlier"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "wf-9", status.WorkflowID)
	assert.Equal(t, StatusRunning, status.Status)
}

func TestChat_Resume(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/workflows/wf-1/resume", r.URL.Path)
		body := decodeBody(t, r)
		assert.Equal(t, "looks good", body["feedback"])
		assert.Equal(t, float64(42), body["user_id"])
		writeJSON(t, w, http.StatusOK, map[string]any{"data": map[string]any{"status": "running"}})
	}, WithUserID(42))

	status, err := c.Chat.Resume(context.Background(), "wf-1", "looks good")
	require.NoError(t, err)
	assert.Equal(t, "wf-1", status.WorkflowID)
	assert.True(t, status.IsRunning())
}

func TestChat_PollUsesInjectedClock(t *testing.T) {
	handler, polls := workflowServer(t, map[string]any{"status": "running"})
	c := newTestClient(t, handler, WithUserID(42), WithMaxPollingDuration(time.Minute))

	now := time.Unix(0, 0)
	c.Chat.now = func() time.Time { return now }
	c.Chat.sleep = func(_ context.Context, d time.Duration) error {
		now = now.Add(20 * time.Second)
		return nil
	}

	_, err := c.Chat.Wait(context.Background(), "wf-1", nil)
	var timeout *TimeoutError
	require.True(t, errors.As(err, &timeout))
	assert.Equal(t, time.Minute, timeout.Elapsed)
	assert.Equal(t, int32(4), polls.Load())
}
