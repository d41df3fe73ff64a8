// Package client is a typed consumer of the userhub REST API, used by
// the userctl admin tool and by anything else that wants the endpoints
// without hand-rolling requests.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

type User struct {
	ID        string     `json:"id"`
	FullName  string     `json:"fullName"`
	Email     string     `json:"email"`
	Role      string     `json:"role"`
	Status    string     `json:"status"`
	LastLogin *time.Time `json:"lastLogin"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

type Pagination struct {
	Page    int  `json:"page"`
	Limit   int  `json:"limit"`
	Total   int  `json:"total"`
	Pages   int  `json:"pages"`
	HasMore bool `json:"hasMore"`
}

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// APIError is any non-success response, carrying the server's message
// and field details when present.
type APIError struct {
	Status  int
	Message string
	Errors  []FieldError
}

func (e *APIError) Error() string {
	if len(e.Errors) == 0 {
		return fmt.Sprintf("api error (%d): %s", e.Status, e.Message)
	}

	parts := make([]string, 0, len(e.Errors))
	for _, fe := range e.Errors {
		parts = append(parts, fe.Field+" "+fe.Message)
	}

	return fmt.Sprintf("api error (%d): %s: %s", e.Status, e.Message, strings.Join(parts, "; "))
}

type Client struct {
	baseURL string
	httpc   *http.Client
	token   string
}

type Option func(*Client)

func WithHTTPClient(httpc *http.Client) Option {
	return func(c *Client) {
		c.httpc = httpc
	}
}

func WithToken(token string) Option {
	return func(c *Client) {
		c.token = token
	}
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpc:   &http.Client{Timeout: 10 * time.Second},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// SetToken swaps the bearer token used on authenticated calls.
func (c *Client) SetToken(token string) {
	c.token = token
}

// Token returns the session token adopted by Signup or Login.
func (c *Client) Token() string {
	return c.token
}

// Signup creates an account and adopts the returned session token.
func (c *Client) Signup(ctx context.Context, fullName, email, password string) (User, error) {
	body := map[string]string{
		"fullName": fullName,
		"email":    email,
		"password": password,
	}

	env, err := c.do(ctx, http.MethodPost, "/api/auth/signup", body)
	if err != nil {
		return User{}, err
	}

	c.token = env.Token

	return derefUser(env.User), nil
}

// Login authenticates and adopts the returned session token.
func (c *Client) Login(ctx context.Context, email, password string) (User, error) {
	body := map[string]string{
		"email":    email,
		"password": password,
	}

	env, err := c.do(ctx, http.MethodPost, "/api/auth/login", body)
	if err != nil {
		return User{}, err
	}

	c.token = env.Token

	return derefUser(env.User), nil
}

func (c *Client) Me(ctx context.Context) (User, error) {
	env, err := c.do(ctx, http.MethodGet, "/api/auth/me", nil)
	if err != nil {
		return User{}, err
	}

	return derefUser(env.User), nil
}

// Logout discards the token client-side after the server confirms.
func (c *Client) Logout(ctx context.Context) error {
	_, err := c.do(ctx, http.MethodPost, "/api/auth/logout", nil)

	if err == nil {
		c.token = ""
	}

	return err
}

func (c *Client) Profile(ctx context.Context) (User, error) {
	env, err := c.do(ctx, http.MethodGet, "/api/users/profile", nil)
	if err != nil {
		return User{}, err
	}

	return derefUser(env.User), nil
}

// ProfilePatch mirrors the partial-update contract: nil fields are
// left as they are.
type ProfilePatch struct {
	FullName *string `json:"fullName,omitempty"`
	Email    *string `json:"email,omitempty"`
}

func (c *Client) UpdateProfile(ctx context.Context, patch ProfilePatch) (User, error) {
	env, err := c.do(ctx, http.MethodPut, "/api/users/profile", patch)
	if err != nil {
		return User{}, err
	}

	return derefUser(env.User), nil
}

func (c *Client) ChangePassword(ctx context.Context, currentPassword, newPassword string) error {
	body := map[string]string{
		"currentPassword": currentPassword,
		"newPassword":     newPassword,
	}

	_, err := c.do(ctx, http.MethodPut, "/api/users/password", body)

	return err
}

type ListOptions struct {
	Page   int
	Limit  int
	Search string
	Role   string
	Status string
}

func (c *Client) ListUsers(ctx context.Context, opts ListOptions) ([]User, Pagination, error) {
	q := url.Values{}

	if opts.Page > 0 {
		q.Set("page", strconv.Itoa(opts.Page))
	}
	if opts.Limit > 0 {
		q.Set("limit", strconv.Itoa(opts.Limit))
	}
	if opts.Search != "" {
		q.Set("search", opts.Search)
	}
	if opts.Role != "" {
		q.Set("role", opts.Role)
	}
	if opts.Status != "" {
		q.Set("status", opts.Status)
	}

	path := "/api/users"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	env, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, Pagination{}, err
	}

	var pagination Pagination
	if env.Pagination != nil {
		pagination = *env.Pagination
	}

	return env.Users, pagination, nil
}

func (c *Client) GetUser(ctx context.Context, id string) (User, error) {
	env, err := c.do(ctx, http.MethodGet, "/api/users/"+url.PathEscape(id), nil)
	if err != nil {
		return User{}, err
	}

	return derefUser(env.User), nil
}

func (c *Client) Activate(ctx context.Context, id string) (User, error) {
	env, err := c.do(ctx, http.MethodPut, "/api/users/"+url.PathEscape(id)+"/activate", nil)
	if err != nil {
		return User{}, err
	}

	return derefUser(env.User), nil
}

func (c *Client) Deactivate(ctx context.Context, id string) (User, error) {
	env, err := c.do(ctx, http.MethodPut, "/api/users/"+url.PathEscape(id)+"/deactivate", nil)
	if err != nil {
		return User{}, err
	}

	return derefUser(env.User), nil
}

func (c *Client) Delete(ctx context.Context, id string) error {
	_, err := c.do(ctx, http.MethodDelete, "/api/users/"+url.PathEscape(id), nil)

	return err
}

type envelope struct {
	Success    bool         `json:"success"`
	Message    string       `json:"message"`
	Token      string       `json:"token"`
	User       *User        `json:"user"`
	Users      []User       `json:"users"`
	Pagination *Pagination  `json:"pagination"`
	Errors     []FieldError `json:"errors"`
}

func (c *Client) do(ctx context.Context, method, path string, body interface{}) (*envelope, error) {
	var reader *bytes.Reader

	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, err
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	res, err := c.httpc.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	var env envelope

	if err := json.NewDecoder(res.Body).Decode(&env); err != nil {
		return nil, fmt.Errorf("decode response (%d): %w", res.StatusCode, err)
	}

	if res.StatusCode >= 400 || !env.Success {
		return nil, &APIError{
			Status:  res.StatusCode,
			Message: env.Message,
			Errors:  env.Errors,
		}
	}

	return &env, nil
}

func derefUser(u *User) User {
	if u == nil {
		return User{}
	}

	return *u
}
