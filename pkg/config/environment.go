package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

const auth0DomainSuffix = ".auth0.com"

var validate = validator.New(validator.WithRequiredStructEnabled())

// Auth0 contains the settings for the Auth0 tenant that issues tokens for this application.
type Auth0 struct {
	// Tenant prefix, such as "dev-ya94ppfc.us", or a full domain
	URL string `json:"url" validate:"required"`
	// Identifier of the protected resource tokens are issued for
	Audience string `json:"audience" validate:"required"`
	// Public identifier assigned to this application by the tenant
	ClientID string `json:"clientId" validate:"required"`
	// URL the tenant redirects the user-agent to after authentication
	CallbackURL string `json:"callbackURL" validate:"required,url"`
}

// Domain returns the full hostname of the tenant.
// Values that are already a full domain are returned as-is.
func (a Auth0) Domain() string {
	d := strings.TrimPrefix(a.URL, "https://")
	d = strings.TrimSuffix(d, "/")
	if strings.HasSuffix(d, auth0DomainSuffix) {
		return d
	}
	return d + auth0DomainSuffix
}

// Issuer returns the "iss" claim value of tokens issued by the tenant.
func (a Auth0) Issuer() string {
	return "https://" + a.Domain() + "/"
}

// JWKSURL returns the URL of the tenant's JSON Web Key Set.
func (a Auth0) JWKSURL() string {
	return "https://" + a.Domain() + "/.well-known/jwks.json"
}

// Environment is the static configuration record for the application.
// It is built once at startup and read-only afterwards.
type Environment struct {
	Production   bool   `json:"production"`
	APIServerURL string `json:"apiServerUrl" validate:"required,url"`
	Auth0        Auth0  `json:"auth0"`
}

// FromViper builds the Environment record from the viper global object.
func FromViper() Environment {
	return Environment{
		Production:   viper.GetBool(KeyProduction),
		APIServerURL: viper.GetString(KeyAPIServerUrl),
		Auth0: Auth0{
			URL:         viper.GetString(KeyAuth0Url),
			Audience:    viper.GetString(KeyAuth0Audience),
			ClientID:    viper.GetString(KeyAuth0ClientId),
			CallbackURL: viper.GetString(KeyAuth0CallbackURL),
		},
	}
}

// Validate checks the invariants of the record: all string fields must be set,
// and apiServerUrl and callbackURL must be syntactically valid URLs.
func (e Environment) Validate() error {
	err := validate.Struct(e)
	if err == nil {
		return nil
	}

	// Report the first offending field with its config name
	valErrs, ok := err.(validator.ValidationErrors)
	if !ok || len(valErrs) == 0 {
		return err
	}
	fe := valErrs[0]
	if fe.Tag() == "url" {
		return fmt.Errorf("config entry key '%s' is not a valid URL", configName(fe.StructNamespace()))
	}
	return fmt.Errorf("config entry key '%s' missing", configName(fe.StructNamespace()))
}

// Maps a validator struct namespace such as "Environment.Auth0.ClientID" to
// the config key it was loaded from.
func configName(ns string) string {
	switch {
	case strings.HasSuffix(ns, ".APIServerURL"):
		return KeyAPIServerUrl
	case strings.HasSuffix(ns, "Auth0.URL"):
		return KeyAuth0Url
	case strings.HasSuffix(ns, "Auth0.Audience"):
		return KeyAuth0Audience
	case strings.HasSuffix(ns, "Auth0.ClientID"):
		return KeyAuth0ClientId
	case strings.HasSuffix(ns, "Auth0.CallbackURL"):
		return KeyAuth0CallbackURL
	}
	return ns
}
