// Package handlers exposes the portal's HTTP surface: the auth hub
// redirect flow, the referral dashboard API, and the program terms.
package handlers

import (
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"github.com/eternalgy/referral-portal/internal/config"
	"github.com/eternalgy/referral-portal/internal/middleware"
)

// AuthHandler implements the redirect dance with the external auth hub.
// No credentials are checked here; the hub owns login and hands back a
// signed cookie.
type AuthHandler struct {
	cfg config.Config
}

// NewAuthHandler creates the auth redirect handler.
func NewAuthHandler(cfg config.Config) *AuthHandler {
	return &AuthHandler{cfg: cfg}
}

// appBaseURL resolves the portal's own base URL: the configured one when
// set, otherwise the origin the request arrived on.
func (h *AuthHandler) appBaseURL(c *gin.Context) *url.URL {
	if h.cfg.AppBaseURL != "" {
		if base, err := url.Parse(h.cfg.AppBaseURL); err == nil {
			return base
		}
	}

	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	return &url.URL{Scheme: scheme, Host: c.Request.Host}
}

// Start redirects to the auth hub login page. The return_to parameter is
// resolved against the portal's own origin and anything cross-origin falls
// back to the dashboard, so the hub can never be handed a foreign redirect
// target.
func (h *AuthHandler) Start(c *gin.Context) {
	base := h.appBaseURL(c)

	rawReturnTo := c.Query("return_to")
	if rawReturnTo == "" {
		rawReturnTo = "/dashboard"
	}

	returnTo, err := base.Parse(rawReturnTo)
	if err != nil || returnTo.Scheme != base.Scheme || returnTo.Host != base.Host {
		returnTo = base.JoinPath("/dashboard")
	}

	login, err := url.Parse(h.cfg.AuthHubURL)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong. Please try again."})
		return
	}
	query := login.Query()
	query.Set("return_to", returnTo.String())
	login.RawQuery = query.Encode()

	c.Redirect(http.StatusTemporaryRedirect, login.String())
}

// Logout clears the auth cookie and redirects to the hub's logout so the
// session dies on both sides.
func (h *AuthHandler) Logout(c *gin.Context) {
	base := h.appBaseURL(c)

	logout, err := url.Parse(h.cfg.AuthHubURL)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong. Please try again."})
		return
	}
	logout = logout.JoinPath("/auth/logout")
	query := logout.Query()
	query.Set("return_to", base.JoinPath("/").String())
	logout.RawQuery = query.Encode()

	c.SetCookie(middleware.AuthCookieName, "", -1, "/", "", false, true)
	c.Redirect(http.StatusTemporaryRedirect, logout.String())
}
