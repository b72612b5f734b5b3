package server

import (
	"github.com/gin-gonic/gin"

	"github.com/baristalabs/barista/pkg/auth"
)

const contextKeyClaims = "claims"

// RequirePermission is a middleware that requires the request to carry a
// bearer token issued by the configured Auth0 tenant, granting the given
// permission. The decoded claims are stored in the request's context.
func (s *Server) RequirePermission(permission string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, aerr := auth.BearerToken(c.GetHeader("Authorization"))
		if aerr != nil {
			abortWithAuthError(c, aerr)
			return
		}

		claims, aerr := s.verifier.ValidateToken(c.Request.Context(), token)
		if aerr != nil {
			abortWithAuthError(c, aerr)
			return
		}

		aerr = auth.CheckPermission(claims, permission)
		if aerr != nil {
			abortWithAuthError(c, aerr)
			return
		}

		// Set the claims in the context, so loggers can pick up the user
		c.Set(contextKeyClaims, claims)
	}
}

func abortWithAuthError(c *gin.Context, aerr *auth.Error) {
	_ = c.Error(aerr)
	c.AbortWithStatusJSON(aerr.StatusCode, ErrorResponse(aerr.StatusCode, aerr.Description))
}
