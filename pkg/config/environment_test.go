package config

import (
	"encoding/json"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setTestConfigs(values map[string]any) func() {
	prevConfig := make(map[string]any, len(values))
	for k, v := range values {
		prevConfig[k] = viper.Get(k)
		viper.Set(k, v)
	}

	return func() {
		for k, v := range prevConfig {
			viper.Set(k, v)
		}
	}
}

func validEnvironment() Environment {
	return Environment{
		Production:   false,
		APIServerURL: "http://localhost:5000",
		Auth0: Auth0{
			URL:         "dev-ya94ppfc.us",
			Audience:    "drinks",
			ClientID:    "y7y2KNyVgXMnB3dqnbKjfZKeyNmkMkjz",
			CallbackURL: "http://localhost:8100",
		},
	}
}

func TestFromViper(t *testing.T) {
	defer setTestConfigs(map[string]any{
		KeyProduction:       true,
		KeyAPIServerUrl:     "https://api.test.local",
		KeyAuth0Url:         "test-tenant.eu",
		KeyAuth0Audience:    "drinks",
		KeyAuth0ClientId:    "client-id",
		KeyAuth0CallbackURL: "https://app.test.local/callback",
	})()

	env := FromViper()
	require.True(t, env.Production)
	require.Equal(t, "https://api.test.local", env.APIServerURL)
	require.Equal(t, "test-tenant.eu", env.Auth0.URL)
	require.Equal(t, "drinks", env.Auth0.Audience)
	require.Equal(t, "client-id", env.Auth0.ClientID)
	require.Equal(t, "https://app.test.local/callback", env.Auth0.CallbackURL)
}

func TestEnvironmentValidate(t *testing.T) {
	t.Run("succeeds with all fields", func(t *testing.T) {
		require.NoError(t, validEnvironment().Validate())
	})

	t.Run("fails without apiServerUrl", func(t *testing.T) {
		env := validEnvironment()
		env.APIServerURL = ""
		err := env.Validate()
		require.Error(t, err)
		require.ErrorContains(t, err, "'apiServerUrl' missing")
	})

	t.Run("fails with invalid apiServerUrl", func(t *testing.T) {
		env := validEnvironment()
		env.APIServerURL = "not a url"
		err := env.Validate()
		require.Error(t, err)
		require.ErrorContains(t, err, "'apiServerUrl' is not a valid URL")
	})

	t.Run("fails without auth0.url", func(t *testing.T) {
		env := validEnvironment()
		env.Auth0.URL = ""
		err := env.Validate()
		require.Error(t, err)
		require.ErrorContains(t, err, "'auth0.url' missing")
	})

	t.Run("fails without auth0.audience", func(t *testing.T) {
		env := validEnvironment()
		env.Auth0.Audience = ""
		err := env.Validate()
		require.Error(t, err)
		require.ErrorContains(t, err, "'auth0.audience' missing")
	})

	t.Run("fails without auth0.clientId", func(t *testing.T) {
		env := validEnvironment()
		env.Auth0.ClientID = ""
		err := env.Validate()
		require.Error(t, err)
		require.ErrorContains(t, err, "'auth0.clientId' missing")
	})

	t.Run("fails with invalid auth0.callbackURL", func(t *testing.T) {
		env := validEnvironment()
		env.Auth0.CallbackURL = "::not-a-url"
		err := env.Validate()
		require.Error(t, err)
		require.ErrorContains(t, err, "'auth0.callbackURL' is not a valid URL")
	})
}

func TestAuth0Domain(t *testing.T) {
	t.Run("tenant prefix", func(t *testing.T) {
		a := Auth0{URL: "dev-ya94ppfc.us"}
		assert.Equal(t, "dev-ya94ppfc.us.auth0.com", a.Domain())
		assert.Equal(t, "https://dev-ya94ppfc.us.auth0.com/", a.Issuer())
		assert.Equal(t, "https://dev-ya94ppfc.us.auth0.com/.well-known/jwks.json", a.JWKSURL())
	})

	t.Run("full domain", func(t *testing.T) {
		a := Auth0{URL: "dev-ya94ppfc.us.auth0.com"}
		assert.Equal(t, "dev-ya94ppfc.us.auth0.com", a.Domain())
	})

	t.Run("scheme and trailing slash stripped", func(t *testing.T) {
		a := Auth0{URL: "https://dev-ya94ppfc.us.auth0.com/"}
		assert.Equal(t, "dev-ya94ppfc.us.auth0.com", a.Domain())
	})
}

func TestEnvironmentRoundTrip(t *testing.T) {
	env := validEnvironment()

	enc, err := json.Marshal(env)
	require.NoError(t, err)

	var dec Environment
	err = json.Unmarshal(enc, &dec)
	require.NoError(t, err)
	require.Equal(t, env, dec)
}

func TestEnvironmentVariantsShareShape(t *testing.T) {
	dev := validEnvironment()
	prod := Environment{
		Production:   true,
		APIServerURL: "https://api.example.com",
		Auth0: Auth0{
			URL:         "example.eu",
			Audience:    "drinks",
			ClientID:    "prod-client-id",
			CallbackURL: "https://app.example.com",
		},
	}
	require.NoError(t, prod.Validate())

	keys := func(env Environment) []string {
		enc, err := json.Marshal(env)
		require.NoError(t, err)
		m := map[string]any{}
		require.NoError(t, json.Unmarshal(enc, &m))
		nested, ok := m["auth0"].(map[string]any)
		require.True(t, ok)
		out := make([]string, 0, len(m)+len(nested))
		for k := range m {
			out = append(out, k)
		}
		for k := range nested {
			out = append(out, "auth0."+k)
		}
		return out
	}

	assert.ElementsMatch(t, keys(dev), keys(prod))
}
