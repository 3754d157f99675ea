package iris

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Workflow states reported by the server.
const (
	StatusRunning   = "running"
	StatusPaused    = "paused"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// WorkflowStatus is one server snapshot of a chat workflow.
type WorkflowStatus struct {
	model
	WorkflowID       string  `json:"workflow_id"`
	Status           string  `json:"status"`
	Summary          string  `json:"summary,omitempty"`
	RequiresApproval bool    `json:"requires_approval,omitempty"`
	Error            string  `json:"error,omitempty"`
	Progress         float64 `json:"progress,omitempty"`
	Result           any     `json:"result,omitempty"`
	CreatedAt        string  `json:"created_at,omitempty"`
	UpdatedAt        string  `json:"updated_at,omitempty"`
}

// newWorkflowStatus reads a snapshot field by field; the workflow endpoints
// disagree on id keys and on whether "error" is a string or an object.
func newWorkflowStatus(raw map[string]any) *WorkflowStatus {
	a := Attributes(raw)
	s := &WorkflowStatus{
		WorkflowID:       firstNonEmpty(a.String("workflow_id"), a.String("id")),
		Status:           strings.ToLower(a.String("status")),
		Summary:          a.String("summary"),
		RequiresApproval: a.Bool("requires_approval"),
		Error:            a.String("error"),
		Progress:         a.Float("progress"),
		Result:           cloneValue(raw["result"]),
		CreatedAt:        a.String("created_at"),
		UpdatedAt:        a.String("updated_at"),
	}
	if s.Error == "" {
		if e, ok := raw["error"].(map[string]any); ok {
			s.Error = Attributes(e).String("message")
		}
	}
	s.attach(a.Clone())
	return s
}

func (s *WorkflowStatus) IsRunning() bool   { return s.Status == StatusRunning }
func (s *WorkflowStatus) IsCompleted() bool { return s.Status == StatusCompleted }
func (s *WorkflowStatus) IsFailed() bool    { return s.Status == StatusFailed }

// NeedsApproval reports a workflow paused for human review.
func (s *WorkflowStatus) NeedsApproval() bool {
	return s.Status == StatusPaused && s.RequiresApproval
}

// IsTerminal reports whether Execute stops on this snapshot.
func (s *WorkflowStatus) IsTerminal() bool {
	return s.IsCompleted() || s.IsFailed() || s.NeedsApproval()
}

// ChatMessage is one turn of prior conversation passed to Start.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// StartRequest describes a new chat workflow.
type StartRequest struct {
	Query               string
	AgentID             ID
	BloqID              ID
	ConversationID      string
	ConversationHistory []ChatMessage
	UseRAG              bool
	Metadata            map[string]any
}

// ProgressFunc receives every snapshot Execute fetches, in order. It runs on
// the polling goroutine; a slow callback delays the next poll.
type ProgressFunc func(*WorkflowStatus)

// ChatResource starts and watches chat workflows.
type ChatResource struct {
	resource
	now   func() time.Time
	sleep func(context.Context, time.Duration) error
}

func newChatResource(r resource) *ChatResource {
	return &ChatResource{resource: r, now: time.Now, sleep: sleepContext}
}

// Start creates a workflow and returns immediately with its id.
func (c *ChatResource) Start(ctx context.Context, req StartRequest) (*WorkflowStatus, error) {
	uid, err := c.cfg.RequireUserID()
	if err != nil {
		return nil, err
	}
	if err := requireArg("query", req.Query); err != nil {
		return nil, err
	}

	p := params{"user_id": uid, "query": req.Query}
	p.set("agent_id", req.AgentID).
		set("bloq_id", req.BloqID).
		set("conversation_id", req.ConversationID).
		set("use_rag", req.UseRAG).
		set("metadata", req.Metadata)
	if len(req.ConversationHistory) > 0 {
		p["conversation_history"] = req.ConversationHistory
	}

	body, err := c.postObject(ctx, "/api/chat/start", p)
	if err != nil {
		return nil, err
	}
	status := newWorkflowStatus(extractPayload(body, "data.workflow", "workflow", "data"))
	if status.WorkflowID == "" {
		return nil, fmt.Errorf("iris: start response has no workflow id")
	}
	if status.Status == "" {
		status.Status = StatusRunning
	}
	return status, nil
}

// GetStatus fetches the current snapshot of a workflow.
func (c *ChatResource) GetStatus(ctx context.Context, workflowID string) (*WorkflowStatus, error) {
	if err := requireArg("workflow id", workflowID); err != nil {
		return nil, err
	}
	body, err := c.getObject(ctx, "/api/workflows/"+esc(workflowID), nil)
	if err != nil {
		return nil, err
	}
	status := newWorkflowStatus(extractPayload(body, "data.workflow", "workflow", "data"))
	if status.WorkflowID == "" {
		status.WorkflowID = workflowID
	}
	return status, nil
}

// Execute starts a workflow and blocks until it completes, fails, pauses for
// approval, or MaxPollingDuration elapses.
//
// A completed or approval-paused snapshot is returned as-is. A failed
// workflow is a *WorkflowFailedError; running out of time is a
// *TimeoutError and leaves the workflow running server-side.
func (c *ChatResource) Execute(ctx context.Context, req StartRequest, onProgress ProgressFunc) (*WorkflowStatus, error) {
	started := c.now()
	status, err := c.Start(ctx, req)
	if err != nil {
		return nil, err
	}
	return c.poll(ctx, status.WorkflowID, started, onProgress)
}

// Wait polls an already started workflow with the same rules as Execute.
func (c *ChatResource) Wait(ctx context.Context, workflowID string, onProgress ProgressFunc) (*WorkflowStatus, error) {
	return c.poll(ctx, workflowID, c.now(), onProgress)
}

func (c *ChatResource) poll(ctx context.Context, workflowID string, started time.Time, onProgress ProgressFunc) (*WorkflowStatus, error) {
	interval := c.cfg.PollingInterval()
	limit := c.cfg.MaxPollingDuration()

	for {
		status, err := c.GetStatus(ctx, workflowID)
		if err != nil {
			return nil, err
		}
		if onProgress != nil {
			onProgress(status)
		}

		switch {
		case status.IsCompleted(), status.NeedsApproval():
			return status, nil
		case status.IsFailed():
			return nil, &WorkflowFailedError{
				WorkflowID: workflowID,
				Reason:     firstNonEmpty(status.Error, status.Summary),
				Status:     status,
			}
		}

		if elapsed := c.now().Sub(started); elapsed >= limit {
			return nil, &TimeoutError{WorkflowID: workflowID, Elapsed: elapsed, Last: status}
		}
		if err := c.sleep(ctx, interval); err != nil {
			return nil, err
		}
	}
}

// Resume unpauses a workflow with reviewer feedback. It does not wait; call
// Wait or GetStatus afterwards to follow the workflow.
func (c *ChatResource) Resume(ctx context.Context, workflowID, feedback string) (*WorkflowStatus, error) {
	if err := requireArg("workflow id", workflowID); err != nil {
		return nil, err
	}
	p := params{}.set("feedback", feedback)
	if uid, ok := c.cfg.UserID(); ok {
		p["user_id"] = uid
	}

	body, err := c.postObject(ctx, "/api/workflows/"+esc(workflowID)+"/resume", p)
	if err != nil {
		return nil, err
	}
	status := newWorkflowStatus(extractPayload(body, "data.workflow", "workflow", "data"))
	if status.WorkflowID == "" {
		status.WorkflowID = workflowID
	}
	return status, nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
