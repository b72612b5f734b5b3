package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baristalabs/barista/pkg/config"
	"github.com/baristalabs/barista/pkg/drinks"
)

func testEnvironment(apiServerURL string) config.Environment {
	return config.Environment{
		APIServerURL: apiServerURL,
		Auth0: config.Auth0{
			URL:         "test-tenant.eu",
			Audience:    "drinks",
			ClientID:    "test-client-id",
			CallbackURL: "http://localhost:8100",
		},
	}
}

func TestDrinks(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		require.Equal(t, "/drinks", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true,"drinks":[{"id":1,"title":"Espresso","recipe":[{"color":"brown","parts":1}]}]}`))
	}))
	defer srv.Close()

	c := New(testEnvironment(srv.URL))
	list, err := c.Drinks(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Espresso", list[0].Title)
	assert.Equal(t, []drinks.ShortIngredient{{Color: "brown", Parts: 1}}, list[0].Recipe)
}

func TestDrinksDetailSendsToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "Bearer my-token", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true,"drinks":[]}`))
	}))
	defer srv.Close()

	c := New(testEnvironment(srv.URL)).SetToken("my-token")
	_, err := c.DrinksDetail(context.Background())
	require.NoError(t, err)
}

func TestCreateDrink(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)

		var body drinks.Drink
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, "Espresso", body.Title)

		body.ID = 1
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"drinks":  []drinks.Drink{body},
		})
	}))
	defer srv.Close()

	c := New(testEnvironment(srv.URL))
	created, err := c.CreateDrink(context.Background(), drinks.Drink{
		Title:  "Espresso",
		Recipe: drinks.Recipe{{Name: "espresso", Color: "brown", Parts: 1}},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), created.ID)
}

func TestDeleteDrink(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodDelete, r.Method)
		require.Equal(t, "/drinks/3", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true,"delete":3}`))
	}))
	defer srv.Close()

	c := New(testEnvironment(srv.URL))
	require.NoError(t, c.DeleteDrink(context.Background(), 3))
}

func TestErrorEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"success":false,"error":401,"message":"Authorization header is required."}`))
	}))
	defer srv.Close()

	c := New(testEnvironment(srv.URL))
	_, err := c.DrinksDetail(context.Background())
	require.Error(t, err)
	assert.ErrorContains(t, err, "Authorization header is required.")
}

func TestLoginURL(t *testing.T) {
	c := New(testEnvironment("http://localhost:5000"))

	loginURL, err := c.LoginURL()
	require.NoError(t, err)

	u, err := url.Parse(loginURL)
	require.NoError(t, err)
	assert.Equal(t, "https", u.Scheme)
	assert.Equal(t, "test-tenant.eu.auth0.com", u.Host)
	assert.Equal(t, "/authorize", u.Path)

	qs := u.Query()
	assert.Equal(t, "token", qs.Get("response_type"))
	assert.Equal(t, "drinks", qs.Get("audience"))
	assert.Equal(t, "test-client-id", qs.Get("client_id"))
	assert.Equal(t, "http://localhost:8100", qs.Get("redirect_uri"))
	assert.Len(t, qs.Get("state"), 21)

	// The state parameter is random
	other, err := c.LoginURL()
	require.NoError(t, err)
	assert.NotEqual(t, loginURL, other)
}
