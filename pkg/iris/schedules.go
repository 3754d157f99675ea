package iris

import (
	"context"
	"fmt"
	"strings"
)

// Schedule runs an agent prompt on a cron expression.
type Schedule struct {
	model
	ID        ID     `json:"id"`
	Name      string `json:"name,omitempty"`
	Cron      string `json:"cron"`
	Timezone  string `json:"timezone,omitempty"`
	AgentID   ID     `json:"agent_id,omitempty"`
	Prompt    string `json:"prompt,omitempty"`
	Status    string `json:"status,omitempty"`
	NextRunAt string `json:"next_run_at,omitempty"`
}

func (s *Schedule) IsActive() bool {
	return s.Status == "" || strings.EqualFold(s.Status, "active")
}

// ScheduleRequest creates a schedule.
type ScheduleRequest struct {
	Name     string
	Cron     string
	Timezone string
	AgentID  ID
	Prompt   string
}

// SchedulesResource manages recurring agent runs.
type SchedulesResource struct {
	resource
}

// List returns the acting user's schedules.
func (r *SchedulesResource) List(ctx context.Context) ([]Schedule, error) {
	uid, err := r.cfg.RequireUserID()
	if err != nil {
		return nil, err
	}
	body, err := r.getObject(ctx, userPath(uid, "/schedules"), nil)
	if err != nil {
		return nil, err
	}
	return decodeModels[Schedule](extractList(body, "data.schedules", "schedules", "data"))
}

// Create adds a schedule. Cron must have five or six fields.
func (r *SchedulesResource) Create(ctx context.Context, req ScheduleRequest) (*Schedule, error) {
	uid, err := r.cfg.RequireUserID()
	if err != nil {
		return nil, err
	}
	if err := validateCron(req.Cron); err != nil {
		return nil, err
	}
	if err := requireArg("prompt", req.Prompt); err != nil {
		return nil, err
	}
	p := params{"cron": strings.Join(strings.Fields(req.Cron), " "), "prompt": req.Prompt}
	p.set("name", req.Name).set("timezone", req.Timezone).set("agent_id", req.AgentID)
	body, err := r.postObject(ctx, userPath(uid, "/schedules"), p)
	if err != nil {
		return nil, err
	}
	return decodeModel[Schedule](extractPayload(body, "data.schedule", "schedule", "data"))
}

// Delete removes a schedule.
func (r *SchedulesResource) Delete(ctx context.Context, id string) error {
	uid, err := r.cfg.RequireUserID()
	if err != nil {
		return err
	}
	if err := requireArg("schedule id", id); err != nil {
		return err
	}
	return r.http.Delete(ctx, userPath(uid, "/schedules/%s", esc(id)), nil, nil)
}

func validateCron(expr string) error {
	n := len(strings.Fields(expr))
	if n == 0 {
		return requireArg("cron expression", "")
	}
	if n != 5 && n != 6 {
		return fmt.Errorf("iris: cron expression %q has %d fields, want 5 or 6", expr, n)
	}
	return nil
}
