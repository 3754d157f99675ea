package iris

import (
	"context"
	"errors"
	"strings"
)

// SocialAccount is a connected social network profile.
type SocialAccount struct {
	model
	ID          ID     `json:"id"`
	Platform    string `json:"platform"`
	Username    string `json:"username,omitempty"`
	DisplayName string `json:"display_name,omitempty"`
	Connected   bool   `json:"connected"`
}

// PublishRequest publishes one post to several platforms.
type PublishRequest struct {
	Content     string
	Platforms   []string
	MediaURLs   []string
	ScheduledAt string
}

func (r PublishRequest) validate() error {
	if strings.TrimSpace(r.Content) == "" {
		return errors.New("iris: post content is required")
	}
	if len(r.Platforms) == 0 {
		return errors.New("iris: at least one platform is required")
	}
	return nil
}

// PlatformResult is the per-platform outcome of a publish.
type PlatformResult struct {
	Platform string `json:"platform"`
	Status   string `json:"status"`
	PostID   ID     `json:"post_id,omitempty"`
	URL      string `json:"url,omitempty"`
	Error    string `json:"error,omitempty"`
}

// SocialPublishResult is the outcome of Social.Publish.
type SocialPublishResult struct {
	model
	ID          ID               `json:"id,omitempty"`
	Status      string           `json:"status"`
	ScheduledAt string           `json:"scheduled_at,omitempty"`
	Results     []PlatformResult `json:"results,omitempty"`
}

// HasError reports whether any platform rejected the post.
func (r *SocialPublishResult) HasError() bool {
	if strings.EqualFold(r.Status, "failed") {
		return true
	}
	for _, p := range r.Results {
		if p.Error != "" || strings.EqualFold(p.Status, "failed") {
			return true
		}
	}
	return false
}

func (r *SocialPublishResult) IsPublished() bool { return strings.EqualFold(r.Status, "published") }
func (r *SocialPublishResult) IsScheduled() bool { return strings.EqualFold(r.Status, "scheduled") }

// SocialResource publishes to connected social accounts.
type SocialResource struct {
	resource
}

// Accounts lists the acting user's connected accounts.
func (r *SocialResource) Accounts(ctx context.Context) ([]SocialAccount, error) {
	uid, err := r.cfg.RequireUserID()
	if err != nil {
		return nil, err
	}
	body, err := r.getObject(ctx, userPath(uid, "/social/accounts"), nil)
	if err != nil {
		return nil, err
	}
	return decodeModels[SocialAccount](extractList(body, "data.accounts", "accounts", "data"))
}

// Publish posts now, or at ScheduledAt when set.
func (r *SocialResource) Publish(ctx context.Context, req PublishRequest) (*SocialPublishResult, error) {
	uid, err := r.cfg.RequireUserID()
	if err != nil {
		return nil, err
	}
	if err := req.validate(); err != nil {
		return nil, err
	}
	p := params{"user_id": uid, "content": req.Content, "platforms": req.Platforms}
	p.set("media_urls", req.MediaURLs).set("scheduled_at", req.ScheduledAt)
	body, err := r.postObject(ctx, "/api/v1/social/publish", p)
	if err != nil {
		return nil, err
	}
	return decodeModel[SocialPublishResult](extractPayload(body, "data.post", "post", "data"))
}
