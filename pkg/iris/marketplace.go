package iris

import "context"

// Skill is a marketplace extension that can be installed on an account.
type Skill struct {
	model
	ID          ID       `json:"id"`
	Name        string   `json:"name"`
	Slug        string   `json:"slug,omitempty"`
	Description string   `json:"description,omitempty"`
	Category    string   `json:"category,omitempty"`
	Price       Amount   `json:"price,omitempty"`
	Installed   bool     `json:"installed"`
	Rating      float64  `json:"rating,omitempty"`
	Tags        []string `json:"tags,omitempty"`
}

func (s *Skill) IsInstalled() bool { return s.Installed }
func (s *Skill) IsFree() bool      { return s.Price <= 0 }

// SkillFilter narrows Marketplace.Skills.
type SkillFilter struct {
	Category string
	Search   string
	Page     int
	Limit    int
}

// MarketplaceResource browses and installs skills.
type MarketplaceResource struct {
	resource
}

// Skills returns one page of the catalogue. Installed reflects the acting
// user when one is set.
func (r *MarketplaceResource) Skills(ctx context.Context, filter *SkillFilter) (*Page[Skill], error) {
	p := params{}
	if uid, ok := r.cfg.UserID(); ok {
		p["user_id"] = uid
	}
	if filter != nil {
		p.set("category", filter.Category).
			set("search", filter.Search).
			set("page", filter.Page).
			set("per_page", filter.Limit)
	}
	body, err := r.getObject(ctx, "/api/v1/marketplace/skills", p.query())
	if err != nil {
		return nil, err
	}
	return decodePage[Skill](body, "data.skills", "skills", "data")
}

// Skill fetches one skill.
func (r *MarketplaceResource) Skill(ctx context.Context, id string) (*Skill, error) {
	if err := requireArg("skill id", id); err != nil {
		return nil, err
	}
	body, err := r.getObject(ctx, "/api/v1/marketplace/skills/"+esc(id), nil)
	if err != nil {
		return nil, err
	}
	return decodeModel[Skill](extractPayload(body, "data.skill", "skill", "data"))
}

// Install adds a skill to the acting user's account.
func (r *MarketplaceResource) Install(ctx context.Context, id string) (*Skill, error) {
	uid, err := r.cfg.RequireUserID()
	if err != nil {
		return nil, err
	}
	if err := requireArg("skill id", id); err != nil {
		return nil, err
	}
	body, err := r.postObject(ctx, "/api/v1/marketplace/skills/"+esc(id)+"/install", params{"user_id": uid})
	if err != nil {
		return nil, err
	}
	skill, err := decodeModel[Skill](extractPayload(body, "data.skill", "skill", "data"))
	if err != nil {
		return nil, err
	}
	skill.Installed = true
	return skill, nil
}

// Uninstall removes a skill from the acting user's account.
func (r *MarketplaceResource) Uninstall(ctx context.Context, id string) error {
	uid, err := r.cfg.RequireUserID()
	if err != nil {
		return err
	}
	if err := requireArg("skill id", id); err != nil {
		return err
	}
	return r.http.Delete(ctx, "/api/v1/marketplace/skills/"+esc(id)+"/install", params{"user_id": uid}.query(), nil)
}
