// Package client is a typed client for the drinks API, parameterized by the
// environment configuration record.
package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/go-resty/resty/v2"
	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/pkg/browser"

	"github.com/baristalabs/barista/pkg/buildinfo"
	"github.com/baristalabs/barista/pkg/config"
	"github.com/baristalabs/barista/pkg/drinks"
)

// Client accesses the drinks API at the environment's API server URL
type Client struct {
	env   config.Environment
	resty *resty.Client
}

// New creates a Client for the given environment record
func New(env config.Environment) *Client {
	restyClient := resty.New().
		SetBaseURL(env.APIServerURL).
		SetHeader("Accept", "application/json").
		SetHeader("User-Agent", fmt.Sprintf("%s/%s", buildinfo.AppName, buildinfo.AppVersion))
	return &Client{
		env:   env,
		resty: restyClient,
	}
}

// SetToken sets the bearer token sent with every request
func (c *Client) SetToken(token string) *Client {
	c.resty.SetAuthToken(token)
	return c
}

// The envelopes used by the API
type drinksEnvelope[T any] struct {
	Success bool   `json:"success"`
	Drinks  []T    `json:"drinks"`
	Message string `json:"message"`
}

type deleteEnvelope struct {
	Success bool   `json:"success"`
	Delete  int64  `json:"delete"`
	Message string `json:"message"`
}

func requestError(res *resty.Response, message string) error {
	if message == "" {
		message = res.Status()
	}
	return fmt.Errorf("request to %s failed: %s", res.Request.URL, message)
}

// Drinks returns the menu in its abbreviated representation.
// This does not require a token.
func (c *Client) Drinks(ctx context.Context) ([]drinks.ShortDrink, error) {
	var out drinksEnvelope[drinks.ShortDrink]
	res, err := c.resty.R().
		SetContext(ctx).
		SetResult(&out).
		SetError(&out).
		Get("/drinks")
	if err != nil {
		return nil, err
	}
	if !res.IsSuccess() || !out.Success {
		return nil, requestError(res, out.Message)
	}
	return out.Drinks, nil
}

// DrinksDetail returns the menu with full recipes.
// Requires a token with the "get:drinks-detail" permission.
func (c *Client) DrinksDetail(ctx context.Context) ([]drinks.Drink, error) {
	var out drinksEnvelope[drinks.Drink]
	res, err := c.resty.R().
		SetContext(ctx).
		SetResult(&out).
		SetError(&out).
		Get("/drinks-detail")
	if err != nil {
		return nil, err
	}
	if !res.IsSuccess() || !out.Success {
		return nil, requestError(res, out.Message)
	}
	return out.Drinks, nil
}

// CreateDrink adds a new drink to the menu.
// Requires a token with the "post:drinks" permission.
func (c *Client) CreateDrink(ctx context.Context, drink drinks.Drink) (drinks.Drink, error) {
	var out drinksEnvelope[drinks.Drink]
	res, err := c.resty.R().
		SetContext(ctx).
		SetBody(drink).
		SetResult(&out).
		SetError(&out).
		Post("/drinks")
	if err != nil {
		return drinks.Drink{}, err
	}
	if !res.IsSuccess() || !out.Success || len(out.Drinks) != 1 {
		return drinks.Drink{}, requestError(res, out.Message)
	}
	return out.Drinks[0], nil
}

// UpdateDrink updates the title and/or recipe of a drink.
// Requires a token with the "patch:drinks" permission.
func (c *Client) UpdateDrink(ctx context.Context, id int64, drink drinks.Drink) (drinks.Drink, error) {
	var out drinksEnvelope[drinks.Drink]
	res, err := c.resty.R().
		SetContext(ctx).
		SetBody(drink).
		SetResult(&out).
		SetError(&out).
		Patch(fmt.Sprintf("/drinks/%d", id))
	if err != nil {
		return drinks.Drink{}, err
	}
	if !res.IsSuccess() || !out.Success || len(out.Drinks) != 1 {
		return drinks.Drink{}, requestError(res, out.Message)
	}
	return out.Drinks[0], nil
}

// DeleteDrink removes a drink from the menu.
// Requires a token with the "delete:drinks" permission.
func (c *Client) DeleteDrink(ctx context.Context, id int64) error {
	var out deleteEnvelope
	res, err := c.resty.R().
		SetContext(ctx).
		SetResult(&out).
		SetError(&out).
		Delete(fmt.Sprintf("/drinks/%d", id))
	if err != nil {
		return err
	}
	if !res.IsSuccess() || !out.Success {
		return requestError(res, out.Message)
	}
	return nil
}

// LoginURL builds the URL of the tenant's authorization page, where the
// user-agent should be sent to sign in. The tenant redirects back to the
// environment's callback URL with a token for the configured audience.
func (c *Client) LoginURL() (string, error) {
	// Random state to protect the redirect against CSRF
	state, err := gonanoid.New(21)
	if err != nil {
		return "", fmt.Errorf("failed to generate state parameter: %w", err)
	}

	qs := url.Values{
		"response_type": []string{"token"},
		"audience":      []string{c.env.Auth0.Audience},
		"client_id":     []string{c.env.Auth0.ClientID},
		"redirect_uri":  []string{c.env.Auth0.CallbackURL},
		"state":         []string{state},
	}

	return "https://" + c.env.Auth0.Domain() + "/authorize?" + qs.Encode(), nil
}

// OpenLogin opens the tenant's authorization page in the system browser
func (c *Client) OpenLogin() error {
	loginURL, err := c.LoginURL()
	if err != nil {
		return err
	}
	return browser.OpenURL(loginURL)
}

// Healthz pings the API server
func (c *Client) Healthz(ctx context.Context) error {
	res, err := c.resty.R().
		SetContext(ctx).
		Get("/healthz")
	if err != nil {
		return err
	}
	if res.StatusCode() != http.StatusOK {
		return requestError(res, "")
	}
	return nil
}
