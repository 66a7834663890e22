package personality

import (
	"context"
	"fmt"
	"net/url"

	"go.uber.org/zap"
)

// Login exchanges credentials for a bearer token (form-encoded, OAuth2 password flow).
func (c *Client) Login(ctx context.Context, username, password string) (*Token, error) {
	form := url.Values{}
	form.Set("username", username)
	form.Set("password", password)

	data, err := c.postForm(ctx, "/auth/token", "", form)
	if err != nil {
		c.logger.Warn("login failed",
			zap.String("username", username),
			zap.Error(err),
		)
		return nil, fmt.Errorf("login: %w", err)
	}

	var token Token
	if err := c.parseResponse(data, &token); err != nil {
		return nil, err
	}
	if token.AccessToken == "" {
		return nil, fmt.Errorf("login: empty access token")
	}

	c.logger.Debug("logged in", zap.String("username", username))

	return &token, nil
}

func (c *Client) Register(ctx context.Context, username, password string) (*Registration, error) {
	data, err := c.postJSON(ctx, "/auth/register", "", credentials{Username: username, Password: password})
	if err != nil {
		c.logger.Warn("registration failed",
			zap.String("username", username),
			zap.Error(err),
		)
		return nil, fmt.Errorf("register: %w", err)
	}

	var reg Registration
	if err := c.parseResponse(data, &reg); err != nil {
		return nil, err
	}

	c.logger.Debug("registered",
		zap.String("username", username),
		zap.Bool("token_issued", reg.AccessToken != ""),
	)

	return &reg, nil
}

// Me returns the account the token belongs to.
func (c *Client) Me(ctx context.Context, token string) (*Account, error) {
	data, err := c.postJSON(ctx, "/auth/me", token, struct{}{})
	if err != nil {
		return nil, fmt.Errorf("me: %w", err)
	}

	var account Account
	if err := c.parseResponse(data, &account); err != nil {
		return nil, err
	}

	return &account, nil
}
