package api

import (
	"context"
	"net/http"

	"restobook/pkg/models"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string      `json:"token"`
	User  models.User `json:"user"`
}

// Login exchanges credentials for a bearer token and persists the
// resulting session.
func (c *Client) Login(ctx context.Context, username, password string) (models.User, error) {
	var resp loginResponse
	err := c.doJSON(ctx, http.MethodPost, "/api/auth/login", nil, loginRequest{
		Username: username,
		Password: password,
	}, &resp)
	if err != nil {
		return models.User{}, err
	}
	if err := c.session.Set(resp.Token, resp.User); err != nil {
		return models.User{}, err
	}
	return resp.User, nil
}

func (c *Client) Logout() {
	c.session.Reset()
}
