package client

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"
)

// Tokens is the pair handed out by authenticate and refresh-token
type Tokens struct {
	AccessToken           string    `json:"accessToken"`
	RefreshToken          string    `json:"refreshToken"`
	AccessTokenExpiresAt  time.Time `json:"accessTokenExpiresAt"`
	RefreshTokenExpiresAt time.Time `json:"refreshTokenExpiresAt"`
	TokenType             string    `json:"tokenType"`
}

// TokenStore keeps the current token pair
type TokenStore interface {
	Get() (Tokens, bool)
	Set(Tokens)
	Clear()
}

// MemoryTokenStore is the default TokenStore
type MemoryTokenStore struct {
	mu     sync.RWMutex
	tokens Tokens
	set    bool
}

// NewMemoryTokenStore creates an empty store
func NewMemoryTokenStore() *MemoryTokenStore {
	return &MemoryTokenStore{}
}

func (s *MemoryTokenStore) Get() (Tokens, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tokens, s.set
}

func (s *MemoryTokenStore) Set(t Tokens) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens = t
	s.set = true
}

func (s *MemoryTokenStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens = Tokens{}
	s.set = false
}

// Login is the answer to Authenticate
type Login struct {
	Tokens
	User User `json:"user"`
}

// User is an account of the admin API
type User struct {
	ID          uint       `json:"id"`
	Username    string     `json:"username"`
	Email       string     `json:"email"`
	DisplayName string     `json:"displayName"`
	Role        string     `json:"role"`
	IsActive    bool       `json:"isActive"`
	LastLoginAt *time.Time `json:"lastLoginAt"`
	CreatedAt   time.Time  `json:"createdAt"`
}

// RegisterRequest creates a user; admin only
type RegisterRequest struct {
	Username    string `json:"username"`
	Email       string `json:"email,omitempty"`
	DisplayName string `json:"displayName,omitempty"`
	Password    string `json:"password"`
	Role        string `json:"role,omitempty"`
}

// Authenticate logs in and stores the token pair
func (c *Client) Authenticate(ctx context.Context, username, password string) (*Login, error) {
	var out Login
	err := c.call(ctx, request{
		method: http.MethodPost,
		path:   "/Account/authenticate",
		body:   map[string]string{"username": username, "password": password},
		public: true,
	}, &out)
	if err != nil {
		return nil, err
	}
	c.tokens.Set(out.Tokens)
	return &out, nil
}

// Refresh exchanges the stored refresh token for a new pair. Concurrent
// callers share one exchange. When the server rejects the exchange the stored
// tokens are dropped; a cancelled or timed out call keeps them.
func (c *Client) Refresh(ctx context.Context) error {
	return c.refresh(ctx)
}

func (c *Client) refresh(ctx context.Context) error {
	_, err, _ := c.refreshes.Do("refresh", func() (any, error) {
		current, ok := c.tokens.Get()
		if !ok || current.RefreshToken == "" {
			return nil, &ApiError{StatusCode: http.StatusUnauthorized, Code: "UNAUTHORIZED", Messages: []string{"Not authenticated"}}
		}
		var next Tokens
		err := c.call(ctx, request{
			method: http.MethodPost,
			path:   "/Account/refresh-token",
			body:   map[string]string{"refreshToken": current.RefreshToken},
			public: true,
		}, &next)
		if err != nil {
			if !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
				c.tokens.Clear()
			}
			return nil, err
		}
		c.tokens.Set(next)
		return nil, nil
	})
	return err
}

// Logout revokes the refresh token and forgets the pair
func (c *Client) Logout(ctx context.Context) error {
	t, _ := c.tokens.Get()
	err := c.call(ctx, request{
		method: http.MethodPost,
		path:   "/Account/logout",
		body:   map[string]string{"refreshToken": t.RefreshToken},
	}, nil)
	c.tokens.Clear()
	return err
}

// Me returns the signed in user
func (c *Client) Me(ctx context.Context) (*User, error) {
	var out User
	if err := c.call(ctx, request{method: http.MethodGet, path: "/Account/me"}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Register creates a user
func (c *Client) Register(ctx context.Context, req RegisterRequest) (*User, error) {
	var out User
	if err := c.call(ctx, request{method: http.MethodPost, path: "/Account/register", body: req}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ChangePassword changes the caller's password. The server revokes every
// refresh token of the user, so the stored pair is dropped as well.
func (c *Client) ChangePassword(ctx context.Context, current, next string) error {
	err := c.call(ctx, request{
		method: http.MethodPost,
		path:   "/Account/change-password",
		body:   map[string]string{"currentPassword": current, "newPassword": next},
	}, nil)
	if err == nil {
		c.tokens.Clear()
	}
	return err
}

// Summary returns the dashboard counters
func (c *Client) Summary(ctx context.Context) (*Summary, error) {
	var out Summary
	if err := c.call(ctx, request{method: http.MethodGet, path: "/Dashboard/Summary"}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
