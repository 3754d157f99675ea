package iris

import (
	"context"
	"strings"
)

// Agent is an AI agent configured on the platform.
type Agent struct {
	model
	ID           ID     `json:"id"`
	Name         string `json:"name"`
	Description  string `json:"description,omitempty"`
	ModelName    string `json:"model,omitempty"`
	SystemPrompt string `json:"system_prompt,omitempty"`
	Status       string `json:"status,omitempty"`
	BloqID       ID     `json:"bloq_id,omitempty"`
	CreatedAt    string `json:"created_at,omitempty"`
	UpdatedAt    string `json:"updated_at,omitempty"`
}

// IsActive reports whether the agent accepts work. Agents without a status
// are treated as active.
func (a *Agent) IsActive() bool {
	return a.Status == "" || strings.EqualFold(a.Status, "active")
}

// AgentRequest creates or updates an agent. Zero fields are not sent.
type AgentRequest struct {
	Name         string
	Description  string
	Model        string
	SystemPrompt string
	BloqID       ID
	Settings     map[string]any
}

func (r AgentRequest) params() params {
	return params{}.
		set("name", r.Name).
		set("description", r.Description).
		set("model", r.Model).
		set("system_prompt", r.SystemPrompt).
		set("bloq_id", r.BloqID).
		set("settings", r.Settings)
}

// ListOptions pages through a list endpoint.
type ListOptions struct {
	Search string
	Page   int
	Limit  int
}

func (o *ListOptions) params() params {
	p := params{}
	if o == nil {
		return p
	}
	return p.set("search", o.Search).set("page", o.Page).set("per_page", o.Limit)
}

// AgentsResource manages the acting user's agents.
type AgentsResource struct {
	resource
}

// List returns one page of the acting user's agents.
func (r *AgentsResource) List(ctx context.Context, opts *ListOptions) (*Page[Agent], error) {
	uid, err := r.cfg.RequireUserID()
	if err != nil {
		return nil, err
	}
	body, err := r.getObject(ctx, userPath(uid, "/agents"), opts.params().query())
	if err != nil {
		return nil, err
	}
	return decodePage[Agent](body, "data.agents", "agents", "data")
}

// Get fetches one agent.
func (r *AgentsResource) Get(ctx context.Context, id string) (*Agent, error) {
	if err := requireArg("agent id", id); err != nil {
		return nil, err
	}
	body, err := r.getObject(ctx, "/api/v1/agents/"+esc(id), nil)
	if err != nil {
		return nil, err
	}
	return decodeModel[Agent](extractPayload(body, "data.agent", "agent", "data"))
}

// Create adds an agent for the acting user.
func (r *AgentsResource) Create(ctx context.Context, req AgentRequest) (*Agent, error) {
	uid, err := r.cfg.RequireUserID()
	if err != nil {
		return nil, err
	}
	if err := requireArg("agent name", req.Name); err != nil {
		return nil, err
	}
	body, err := r.postObject(ctx, userPath(uid, "/agents"), req.params())
	if err != nil {
		return nil, err
	}
	return decodeModel[Agent](extractPayload(body, "data.agent", "agent", "data"))
}

// Update replaces the given agent fields.
func (r *AgentsResource) Update(ctx context.Context, id string, req AgentRequest) (*Agent, error) {
	if err := requireArg("agent id", id); err != nil {
		return nil, err
	}
	body, err := r.putObject(ctx, "/api/v1/agents/"+esc(id), req.params())
	if err != nil {
		return nil, err
	}
	return decodeModel[Agent](extractPayload(body, "data.agent", "agent", "data"))
}

// Delete removes an agent.
func (r *AgentsResource) Delete(ctx context.Context, id string) error {
	if err := requireArg("agent id", id); err != nil {
		return err
	}
	return r.http.Delete(ctx, "/api/v1/agents/"+esc(id), nil, nil)
}
