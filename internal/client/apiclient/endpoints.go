package apiclient

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// User is the account record returned by the API and persisted by the
// client session.
type User struct {
	ID     int64  `json:"id"`
	Email  string `json:"email"`
	Name   string `json:"name"`
	Role   string `json:"role"`
	Active bool   `json:"is_active"`
}

// LoginResult is the answer of POST /auth/login.
type LoginResult struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	User      User      `json:"user"`
}

// Login exchanges credentials for a bearer token. The client keeps using
// its current token; callers store the new one.
func (c *Client) Login(ctx context.Context, email, password string) (LoginResult, error) {
	var out LoginResult
	in := map[string]string{"email": email, "password": password}
	if err := c.Do(ctx, http.MethodPost, "/auth/login", in, &out); err != nil {
		return LoginResult{}, err
	}
	return out, nil
}

// Logout revokes the current token server side.
func (c *Client) Logout(ctx context.Context) error {
	return c.Do(ctx, http.MethodPost, "/auth/logout", nil, nil)
}

// Me returns the account behind the current token.
func (c *Client) Me(ctx context.Context) (User, error) {
	var out User
	if err := c.Do(ctx, http.MethodGet, "/auth/me", nil, &out); err != nil {
		return User{}, err
	}
	return out, nil
}

// Roles returns the role table served by GET /roles.
func (c *Client) Roles(ctx context.Context) (map[string][]string, error) {
	var out struct {
		Roles map[string][]string `json:"roles"`
	}
	if err := c.Do(ctx, http.MethodGet, "/roles", nil, &out); err != nil {
		return nil, err
	}
	return out.Roles, nil
}

// Create posts fields to the collection endpoint of resource, for example
// "clubs" or "power-teams", and returns the created record.
func (c *Client) Create(ctx context.Context, resource string, fields map[string]any) (map[string]any, error) {
	var out map[string]any
	if err := c.Do(ctx, http.MethodPost, "/"+url.PathEscape(resource), fields, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// List fetches one page of resource.
func (c *Client) List(ctx context.Context, resource string, page, limit int) ([]map[string]any, error) {
	var out struct {
		Data []map[string]any `json:"data"`
	}
	path := fmt.Sprintf("/%s?page=%d&limit=%d", url.PathEscape(resource), page, limit)
	if err := c.Do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}
