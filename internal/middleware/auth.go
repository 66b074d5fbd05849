// Package middleware provides the portal's gin middleware: identity
// extraction, request logging, and metrics.
package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/eternalgy/referral-portal/internal/auth"
	"github.com/eternalgy/referral-portal/internal/models"
)

// AuthCookieName is the cookie the auth hub sets after a WhatsApp login.
const AuthCookieName = "auth_token"

const identityKey = "identity"

// GetIdentity returns the verified identity set by RequireIdentity, or nil
// when the request is unauthenticated.
func GetIdentity(c *gin.Context) *models.Identity {
	value, exists := c.Get(identityKey)
	if !exists {
		return nil
	}
	identity, _ := value.(*models.Identity)
	return identity
}

// RequireIdentity verifies the auth hub credential on every request and
// stores the resulting identity on the context. The credential comes from
// the auth_token cookie or, for non-browser clients, a Bearer header.
//
// A missing or unverifiable credential is not treated as a server error:
// the response is a 401 carrying the hub login URL so the frontend can
// redirect.
func RequireIdentity(verifier *auth.Verifier, loginURL string) gin.HandlerFunc {
	return func(c *gin.Context) {
		credential := credentialFromRequest(c)
		if credential == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":    "Sign in with WhatsApp to continue.",
				"loginUrl": loginURL,
			})
			return
		}

		identity := verifier.Verify(credential)
		if identity == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":    "Your session has expired. Sign in again.",
				"loginUrl": loginURL,
			})
			return
		}

		c.Set(identityKey, identity)
		c.Next()
	}
}

func credentialFromRequest(c *gin.Context) string {
	if cookie, err := c.Cookie(AuthCookieName); err == nil && cookie != "" {
		return cookie
	}

	header := strings.TrimSpace(c.GetHeader("Authorization"))
	parts := strings.Split(header, " ")
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return parts[1]
	}
	return ""
}
