// Package client is a typed HTTP client for the access review API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"access_review/internal/models"
	"access_review/internal/review"
)

// DefaultBaseURL is used when no API address is configured.
const DefaultBaseURL = "http://127.0.0.1:8080"

// APIError is returned for any non-2xx response. Body holds the raw
// response text.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.StatusCode, strings.TrimSpace(e.Body))
}

type Client struct {
	baseURL string
	http    *http.Client
	token   string
}

type Option func(*Client)

func WithHTTPClient(h *http.Client) Option { return func(c *Client) { c.http = h } }

// WithToken sends the bearer token on every request.
func WithToken(tok string) Option { return func(c *Client) { c.token = tok } }

func New(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 15 * time.Second},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{StatusCode: resp.StatusCode, Body: string(raw)}
	}
	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// DashboardUser is one row of the application manager dashboard.
type DashboardUser struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Email       string     `json:"email"`
	Application string     `json:"application"`
	Role        string     `json:"role"`
	LastLogin   *time.Time `json:"lastLogin"`
	Status      string     `json:"status"`
	AvatarURL   string     `json:"avatarUrl"`
}

type RoleRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// NewUser is the onboarding payload for CreateUser.
type NewUser struct {
	Name           string `json:"name"`
	Email          string `json:"email"`
	BusinessUserID string `json:"businessUserId"`
	Application    string `json:"application"`
	Role           string `json:"role"`
	Status         string `json:"status,omitempty"`
}

type CreateUserResult struct {
	Message string `json:"message"`
	ID      string `json:"id"`
}

func (c *Client) GetAppManagerUsers(ctx context.Context) ([]DashboardUser, error) {
	var out []DashboardUser
	if err := c.do(ctx, http.MethodGet, "/dashboard/app-manager/users", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetApplications(ctx context.Context) ([]models.Application, error) {
	var out []models.Application
	if err := c.do(ctx, http.MethodGet, "/applications/", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetRoles(ctx context.Context) ([]RoleRef, error) {
	var out []RoleRef
	if err := c.do(ctx, http.MethodGet, "/roles/", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateUser onboards a user onto an application.
func (c *Client) CreateUser(ctx context.Context, u NewUser) (CreateUserResult, error) {
	var out CreateUserResult
	err := c.do(ctx, http.MethodPost, "/dashboard/app-manager/users", u, &out)
	return out, err
}

// DeleteUser removes the access row with the given id.
func (c *Client) DeleteUser(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/users/"+url.PathEscape(id), nil, nil)
}

// ListRecords queries /api/v1/records. Empty arguments are not sent.
func (c *Client) ListRecords(ctx context.Context, stage, application, q string) ([]models.AccessRecord, error) {
	v := url.Values{}
	for k, val := range map[string]string{"stage": stage, "application": application, "q": q} {
		if val != "" {
			v.Set(k, val)
		}
	}
	path := "/api/v1/records"
	if len(v) > 0 {
		path += "?" + v.Encode()
	}

	var out struct {
		Records []models.AccessRecord `json:"records"`
	}
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out.Records, nil
}

// Act performs one review action on a record.
func (c *Client) Act(ctx context.Context, id, action, comment, actor string) (models.AccessRecord, error) {
	in := map[string]string{"action": action, "comment": comment, "actor": actor}
	var out struct {
		Record models.AccessRecord `json:"record"`
	}
	err := c.do(ctx, http.MethodPost, "/api/v1/records/"+url.PathEscape(id)+"/actions", in, &out)
	return out.Record, err
}

func (c *Client) Summary(ctx context.Context) ([]review.AppSummary, error) {
	var out struct {
		Summary []review.AppSummary `json:"summary"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/v1/records/summary", nil, &out); err != nil {
		return nil, err
	}
	return out.Summary, nil
}

// Login exchanges credentials for a bearer token.
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	var out struct {
		Token string `json:"token"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/v1/auth/login", map[string]string{"email": email, "password": password}, &out); err != nil {
		return "", err
	}
	return out.Token, nil
}
