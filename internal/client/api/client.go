// Package api is a thin HTTP client for the outreach /api/auth endpoints.
// The session cookie lives in a cookie jar and can be exported and restored
// so a command-line session survives between invocations.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"time"

	"github.com/dmitrijs2005/outreach/internal/common"
	"github.com/go-resty/resty/v2"
)

// ErrUnauthenticated is returned when the server has no valid session for us.
var ErrUnauthenticated = errors.New("not authenticated")

// Error is a non-2xx answer of the API.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("server returned %d: %s", e.Status, e.Message)
}

type User struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

type Response struct {
	Success bool       `json:"success"`
	User    *User      `json:"user,omitempty"`
	Expires *time.Time `json:"expires,omitempty"`
	Message string     `json:"message,omitempty"`
	Error   string     `json:"error,omitempty"`
}

type Client struct {
	client     *resty.Client
	jar        http.CookieJar
	base       *url.URL
	cookieName string
}

func New(baseURL string) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("server url: %w", err)
	}
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("can't create cookie jar, %w", err)
	}
	c := resty.New().
		SetBaseURL(baseURL).
		SetCookieJar(jar).
		SetTimeout(30 * time.Second).
		SetRedirectPolicy(resty.NoRedirectPolicy())

	return &Client{client: c, jar: jar, base: u, cookieName: common.SessionCookieName}, nil
}

// SessionCookie returns the current session cookie value, or "".
func (c *Client) SessionCookie() string {
	for _, ck := range c.jar.Cookies(c.base) {
		if ck.Name == c.cookieName {
			return ck.Value
		}
	}
	return ""
}

// SetSessionCookie restores a value previously returned by SessionCookie.
func (c *Client) SetSessionCookie(value string) {
	if value == "" {
		return
	}
	c.jar.SetCookies(c.base, []*http.Cookie{{Name: c.cookieName, Value: value, Path: "/"}})
}

func (c *Client) Register(ctx context.Context, email, password, name string) (*User, error) {
	out, err := c.post(ctx, common.RegisterAPIPath, map[string]string{
		"email":    email,
		"password": password,
		"name":     name,
	})
	if err != nil {
		return nil, err
	}
	return out.User, nil
}

// Login authenticates and keeps the issued session cookie in the jar.
func (c *Client) Login(ctx context.Context, email, password string) (*Response, error) {
	return c.post(ctx, common.LoginAPIPath, map[string]string{
		"email":    email,
		"password": password,
	})
}

func (c *Client) Logout(ctx context.Context) error {
	_, err := c.post(ctx, common.LogoutAPIPath, nil)
	return err
}

// Session returns the current user, following any renewal the server makes.
func (c *Client) Session(ctx context.Context) (*Response, error) {
	var out Response
	resp, err := c.client.R().
		SetContext(ctx).
		SetResult(&out).
		SetError(&out).
		Get(common.SessionAPIPath)
	if err != nil {
		return nil, fmt.Errorf("session request: %w", err)
	}
	if resp.StatusCode() == http.StatusUnauthorized {
		return nil, ErrUnauthenticated
	}
	if resp.IsError() {
		return nil, &Error{Status: resp.StatusCode(), Message: out.Error}
	}
	return &out, nil
}

func (c *Client) post(ctx context.Context, path string, body any) (*Response, error) {
	var out Response
	req := c.client.R().
		SetContext(ctx).
		SetResult(&out).
		SetError(&out)
	if body != nil {
		req.SetBody(body)
	}
	resp, err := req.Post(path)
	if err != nil {
		return nil, fmt.Errorf("%s request: %w", path, err)
	}
	if resp.IsError() {
		return nil, &Error{Status: resp.StatusCode(), Message: out.Error}
	}
	return &out, nil
}
