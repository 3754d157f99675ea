package iris

import (
	"context"
	"strings"
)

// Lead is a CRM lead.
type Lead struct {
	model
	ID        ID       `json:"id"`
	Name      string   `json:"name"`
	Email     string   `json:"email,omitempty"`
	Phone     string   `json:"phone,omitempty"`
	Company   string   `json:"company,omitempty"`
	Status    string   `json:"status,omitempty"`
	Source    string   `json:"source,omitempty"`
	Tags      []string `json:"tags,omitempty"`
	CreatedAt string   `json:"created_at,omitempty"`
	UpdatedAt string   `json:"updated_at,omitempty"`
}

func (l *Lead) HasEmail() bool { return strings.TrimSpace(l.Email) != "" }

// IsConverted reports whether the lead became a customer.
func (l *Lead) IsConverted() bool {
	switch strings.ToLower(l.Status) {
	case "won", "converted", "customer":
		return true
	}
	return false
}

// LeadNote is a note attached to a lead.
type LeadNote struct {
	model
	ID        ID     `json:"id"`
	LeadID    ID     `json:"lead_id,omitempty"`
	Content   string `json:"content"`
	Author    string `json:"author,omitempty"`
	CreatedAt string `json:"created_at,omitempty"`
}

// LeadRequest creates or updates a lead. Zero fields are not sent.
type LeadRequest struct {
	Name    string
	Email   string
	Phone   string
	Company string
	Status  string
	Source  string
	Tags    []string
	Extra   map[string]any
}

func (r LeadRequest) params() params {
	return params{}.
		set("name", r.Name).
		set("email", r.Email).
		set("phone", r.Phone).
		set("company", r.Company).
		set("status", r.Status).
		set("source", r.Source).
		set("tags", r.Tags).
		merge(r.Extra)
}

// LeadFilter narrows Leads.List.
type LeadFilter struct {
	Status string
	Search string
	Page   int
	Limit  int
}

// DeliverableRequest describes a document or email sent to a lead.
type DeliverableRequest struct {
	Type    string
	Subject string
	Message string
	Extra   map[string]any
	// SkipPreview sends without rendering a preview first.
	SkipPreview bool
}

// DeliverablePreview is the rendered deliverable before sending.
type DeliverablePreview struct {
	model
	ID        ID     `json:"id,omitempty"`
	Subject   string `json:"subject"`
	Body      string `json:"body"`
	Recipient string `json:"recipient,omitempty"`
}

// DeliverableResult is the outcome of Leads.SendDeliverable.
type DeliverableResult struct {
	model
	Sent      bool   `json:"sent"`
	MessageID string `json:"message_id,omitempty"`
	SentAt    string `json:"sent_at,omitempty"`
	// Preview is nil when SkipPreview was set.
	Preview *DeliverablePreview `json:"-"`
}

// LeadsResource manages CRM leads of the acting user.
type LeadsResource struct {
	resource
}

// List returns one page of leads.
func (r *LeadsResource) List(ctx context.Context, filter *LeadFilter) (*Page[Lead], error) {
	uid, err := r.cfg.RequireUserID()
	if err != nil {
		return nil, err
	}
	p := params{"user_id": uid}
	if filter != nil {
		p.set("status", filter.Status).
			set("search", filter.Search).
			set("page", filter.Page).
			set("per_page", filter.Limit)
	}
	body, err := r.getObject(ctx, "/api/v1/leads", p.query())
	if err != nil {
		return nil, err
	}
	return decodePage[Lead](body, "data.leads", "leads", "data.data", "data")
}

// Get fetches one lead.
func (r *LeadsResource) Get(ctx context.Context, id string) (*Lead, error) {
	if err := requireArg("lead id", id); err != nil {
		return nil, err
	}
	body, err := r.getObject(ctx, "/api/v1/leads/"+esc(id), nil)
	if err != nil {
		return nil, err
	}
	return decodeModel[Lead](extractPayload(body, "data.lead", "lead", "data"))
}

// Create adds a lead owned by the acting user.
func (r *LeadsResource) Create(ctx context.Context, req LeadRequest) (*Lead, error) {
	uid, err := r.cfg.RequireUserID()
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.Name) == "" && strings.TrimSpace(req.Email) == "" {
		return nil, requireArg("lead name or email", "")
	}
	p := req.params()
	p["user_id"] = uid
	body, err := r.postObject(ctx, "/api/v1/leads", p)
	if err != nil {
		return nil, err
	}
	return decodeModel[Lead](extractPayload(body, "data.lead", "lead", "data"))
}

// Update changes the given lead fields.
func (r *LeadsResource) Update(ctx context.Context, id string, req LeadRequest) (*Lead, error) {
	if err := requireArg("lead id", id); err != nil {
		return nil, err
	}
	body, err := r.patchObject(ctx, "/api/v1/leads/"+esc(id), req.params())
	if err != nil {
		return nil, err
	}
	return decodeModel[Lead](extractPayload(body, "data.lead", "lead", "data"))
}

// Delete removes a lead.
func (r *LeadsResource) Delete(ctx context.Context, id string) error {
	if err := requireArg("lead id", id); err != nil {
		return err
	}
	return r.http.Delete(ctx, "/api/v1/leads/"+esc(id), nil, nil)
}

// AddNote attaches a note to a lead.
func (r *LeadsResource) AddNote(ctx context.Context, id, content string) (*LeadNote, error) {
	if err := requireArg("lead id", id); err != nil {
		return nil, err
	}
	if err := requireArg("note content", content); err != nil {
		return nil, err
	}
	p := params{"content": content}
	if uid, ok := r.cfg.UserID(); ok {
		p["user_id"] = uid
	}
	body, err := r.postObject(ctx, "/api/v1/leads/"+esc(id)+"/notes", p)
	if err != nil {
		return nil, err
	}
	return decodeModel[LeadNote](extractPayload(body, "data.note", "note", "data"))
}

// SendDeliverable renders a preview of the deliverable, then sends it. The
// preview step is skipped with SkipPreview.
func (r *LeadsResource) SendDeliverable(ctx context.Context, id string, req DeliverableRequest) (*DeliverableResult, error) {
	if err := requireArg("lead id", id); err != nil {
		return nil, err
	}
	if err := requireArg("deliverable type", req.Type); err != nil {
		return nil, err
	}
	p := params{}.
		set("type", req.Type).
		set("subject", req.Subject).
		set("message", req.Message).
		merge(req.Extra)
	base := "/api/v1/leads/" + esc(id) + "/deliverables"

	var preview *DeliverablePreview
	if !req.SkipPreview {
		body, err := r.postObject(ctx, base+"/preview", p)
		if err != nil {
			return nil, err
		}
		preview, err = decodeModel[DeliverablePreview](extractPayload(body, "data.preview", "preview", "data"))
		if err != nil {
			return nil, err
		}
		p.set("preview_id", preview.ID)
	}

	body, err := r.postObject(ctx, base+"/send", p)
	if err != nil {
		return nil, err
	}
	result, err := decodeModel[DeliverableResult](extractPayload(body, "data"))
	if err != nil {
		return nil, err
	}
	result.Preview = preview
	return result, nil
}
