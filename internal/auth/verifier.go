// Package auth verifies credentials issued by the external WhatsApp auth
// hub. The hub owns login entirely; this side only checks the signature on
// the token it hands back and extracts a usable identity from it.
package auth

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"github.com/eternalgy/referral-portal/internal/models"
)

// hubClaims covers every field name the auth hub has used across its
// versions. The phone aliases are tried in declaration order.
type hubClaims struct {
	UserID      string `json:"userId"`
	UserIDSnake string `json:"user_id"`
	Phone       string `json:"phone"`
	PhoneNumber string `json:"phone_number"`
	Mobile      string `json:"mobile"`
	Whatsapp    string `json:"whatsapp"`
	Name        string `json:"name"`
	Role        string `json:"role"`
	IsAdmin     bool   `json:"isAdmin"`
	IsAdminOld  bool   `json:"is_admin"`
	jwt.RegisteredClaims
}

func (c *hubClaims) phone() string {
	for _, candidate := range []string{c.Phone, c.PhoneNumber, c.Mobile, c.Whatsapp} {
		if normalized := models.NormalizePhone(candidate); normalized != "" {
			return normalized
		}
	}
	return ""
}

// Verifier validates auth hub tokens against the shared HMAC secret.
type Verifier struct {
	secret []byte
}

// NewVerifier creates a verifier for the given shared secret.
func NewVerifier(secret string) *Verifier {
	return &Verifier{secret: []byte(secret)}
}

// Verify validates the credential and returns the identity it asserts.
// Any failure - malformed token, bad signature, expiry, or a valid token
// with no usable phone - returns nil. Absence of identity is an expected
// outcome here, not an error: callers branch on nil and send the user back
// to the hub.
func (v *Verifier) Verify(credential string) *models.Identity {
	token, err := jwt.ParseWithClaims(
		credential,
		&hubClaims{},
		func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return v.secret, nil
		},
	)
	if err != nil || !token.Valid {
		return nil
	}

	claims, ok := token.Claims.(*hubClaims)
	if !ok {
		return nil
	}

	phone := claims.phone()
	if phone == "" {
		return nil
	}

	userID := claims.UserID
	if userID == "" {
		userID = claims.UserIDSnake
	}

	return &models.Identity{
		UserID:  userID,
		Name:    claims.Name,
		Phone:   phone,
		Role:    claims.Role,
		IsAdmin: claims.IsAdmin || claims.IsAdminOld,
	}
}
