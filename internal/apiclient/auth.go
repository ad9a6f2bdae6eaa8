package apiclient

import (
	"context"

	"github.com/bryan-buckman/pressroom/internal/model"
)

// Login exchanges credentials for a token and profile. The caller decides
// where to persist the result.
func (c *Client) Login(ctx context.Context, in model.LoginInput) (model.AuthSession, error) {
	var out model.AuthSession
	err := c.mutate(ctx, epLogin, in, &out)
	return out, err
}

// Verify checks the current token against the API. It is never cached; a
// rejected token surfaces as a 401 for the caller to handle.
func (c *Client) Verify(ctx context.Context) (model.User, error) {
	var out struct {
		User model.User `json:"user"`
	}
	err := c.query(ctx, epVerify, nil, &out)
	return out.User, err
}
