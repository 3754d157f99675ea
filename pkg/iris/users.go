package iris

import (
	"context"
	"strconv"
)

// User is an IRIS account.
type User struct {
	model
	ID        ID     `json:"id"`
	Name      string `json:"name,omitempty"`
	Email     string `json:"email,omitempty"`
	Plan      string `json:"plan,omitempty"`
	CreatedAt string `json:"created_at,omitempty"`
}

// UsersResource reads account profiles.
type UsersResource struct {
	resource
}

// Get fetches a user. id 0 means the acting user.
func (r *UsersResource) Get(ctx context.Context, id int) (*User, error) {
	if id == 0 {
		uid, err := r.cfg.RequireUserID()
		if err != nil {
			return nil, err
		}
		id = uid
	}
	body, err := r.getObject(ctx, "/api/v1/users/"+strconv.Itoa(id), nil)
	if err != nil {
		return nil, err
	}
	return decodeModel[User](extractPayload(body, "data.user", "user", "data"))
}
