package iris

import (
	"context"
	"strings"
)

// Integration is a third-party service linked to the acting user.
type Integration struct {
	model
	Type        string         `json:"type"`
	Name        string         `json:"name,omitempty"`
	Status      string         `json:"status,omitempty"`
	ConnectedAt string         `json:"connected_at,omitempty"`
	Settings    map[string]any `json:"settings,omitempty"`
}

func (i *Integration) IsConnected() bool { return strings.EqualFold(i.Status, "connected") }

// IntegrationsResource connects and disconnects third-party services.
type IntegrationsResource struct {
	resource
}

var integrationPaths = []string{"data.integration", "integration", "data"}

// List returns the integrations available to the acting user.
func (r *IntegrationsResource) List(ctx context.Context) ([]Integration, error) {
	uid, err := r.cfg.RequireUserID()
	if err != nil {
		return nil, err
	}
	body, err := r.getObject(ctx, userPath(uid, "/integrations"), nil)
	if err != nil {
		return nil, err
	}
	return decodeModels[Integration](extractList(body, "data.integrations", "integrations", "data"))
}

// Get fetches the integration of the given type.
func (r *IntegrationsResource) Get(ctx context.Context, integrationType string) (*Integration, error) {
	uid, err := r.cfg.RequireUserID()
	if err != nil {
		return nil, err
	}
	if err := requireArg("integration type", integrationType); err != nil {
		return nil, err
	}
	body, err := r.getObject(ctx, userPath(uid, "/integrations/%s", esc(integrationType)), nil)
	if err != nil {
		return nil, err
	}
	return decodeModel[Integration](extractPayload(body, integrationPaths...))
}

// Connect links an integration with the given credentials.
func (r *IntegrationsResource) Connect(ctx context.Context, integrationType string, credentials map[string]any) (*Integration, error) {
	uid, err := r.cfg.RequireUserID()
	if err != nil {
		return nil, err
	}
	if err := requireArg("integration type", integrationType); err != nil {
		return nil, err
	}
	p := params{}.set("credentials", credentials)
	body, err := r.postObject(ctx, userPath(uid, "/integrations/%s/connect", esc(integrationType)), p)
	if err != nil {
		return nil, err
	}
	return decodeModel[Integration](extractPayload(body, integrationPaths...))
}

// Disconnect unlinks an integration.
func (r *IntegrationsResource) Disconnect(ctx context.Context, integrationType string) error {
	uid, err := r.cfg.RequireUserID()
	if err != nil {
		return err
	}
	if err := requireArg("integration type", integrationType); err != nil {
		return err
	}
	return r.http.Delete(ctx, userPath(uid, "/integrations/%s", esc(integrationType)), nil, nil)
}
