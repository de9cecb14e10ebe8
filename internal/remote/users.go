package remote

import (
	"context"
	"fmt"
	"net/http"
)

type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type Session struct {
	Token string `json:"token"`
	User  User   `json:"userData"`
}

type SignUpInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (c *Client) Login(ctx context.Context, email, password string) (*Session, error) {
	body := struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}{email, password}
	var s Session
	if err := c.do(ctx, http.MethodPost, "/user/login", "", nil, body, &s); err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	if s.Token == "" {
		return nil, fmt.Errorf("login: response carried no token")
	}
	return &s, nil
}

func (c *Client) SignUp(ctx context.Context, in SignUpInput) (*User, error) {
	var u User
	if err := c.do(ctx, http.MethodPost, "/user/signup", "", nil, in, &u); err != nil {
		return nil, fmt.Errorf("signup: %w", err)
	}
	return &u, nil
}

// Logout revokes the token on the server.
func (c *Client) Logout(ctx context.Context, token string) error {
	if err := c.do(ctx, http.MethodPost, "/user/logout", token, nil, nil, nil); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	return nil
}
