package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const testSecret = "test-secret-key-for-verifier"

func mintToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("failed to sign test token: %v", err)
	}
	return signed
}

func TestVerify(t *testing.T) {
	verifier := NewVerifier(testSecret)

	t.Run("valid token yields identity", func(t *testing.T) {
		token := mintToken(t, testSecret, jwt.MapClaims{
			"userId": "user-42",
			"name":   "Aina",
			"phone":  "+60 12 345 6789",
			"role":   "referrer",
		})

		identity := verifier.Verify(token)
		if identity == nil {
			t.Fatal("expected identity, got nil")
		}
		if identity.Phone != "+60123456789" {
			t.Errorf("phone: expected '+60123456789', got '%s'", identity.Phone)
		}
		if identity.UserID != "user-42" {
			t.Errorf("userId: expected 'user-42', got '%s'", identity.UserID)
		}
		if identity.Name != "Aina" {
			t.Errorf("name: expected 'Aina', got '%s'", identity.Name)
		}
	})

	t.Run("phone aliases tried in priority order", func(t *testing.T) {
		cases := []struct {
			name   string
			claims jwt.MapClaims
			phone  string
		}{
			{"phone wins over aliases", jwt.MapClaims{"phone": "111", "mobile": "222"}, "111"},
			{"phone_number alias", jwt.MapClaims{"phone_number": "333"}, "333"},
			{"mobile alias", jwt.MapClaims{"mobile": "444"}, "444"},
			{"whatsapp alias", jwt.MapClaims{"whatsapp": "555"}, "555"},
			{"empty phone falls through", jwt.MapClaims{"phone": "   ", "whatsapp": "666"}, "666"},
		}

		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				identity := verifier.Verify(mintToken(t, testSecret, tc.claims))
				if identity == nil {
					t.Fatal("expected identity, got nil")
				}
				if identity.Phone != tc.phone {
					t.Errorf("phone: expected '%s', got '%s'", tc.phone, identity.Phone)
				}
			})
		}
	})

	t.Run("snake_case legacy fields", func(t *testing.T) {
		token := mintToken(t, testSecret, jwt.MapClaims{
			"user_id":  "legacy-7",
			"phone":    "12345",
			"is_admin": true,
		})

		identity := verifier.Verify(token)
		if identity == nil {
			t.Fatal("expected identity, got nil")
		}
		if identity.UserID != "legacy-7" {
			t.Errorf("userId: expected 'legacy-7', got '%s'", identity.UserID)
		}
		if !identity.IsAdmin {
			t.Error("expected isAdmin to be true")
		}
	})

	t.Run("valid signature without phone is rejected", func(t *testing.T) {
		token := mintToken(t, testSecret, jwt.MapClaims{"userId": "no-phone"})
		if identity := verifier.Verify(token); identity != nil {
			t.Errorf("expected nil identity, got %+v", identity)
		}
	})

	t.Run("wrong secret is rejected", func(t *testing.T) {
		token := mintToken(t, "some-other-secret", jwt.MapClaims{"phone": "12345"})
		if identity := verifier.Verify(token); identity != nil {
			t.Errorf("expected nil identity, got %+v", identity)
		}
	})

	t.Run("expired token is rejected", func(t *testing.T) {
		token := mintToken(t, testSecret, jwt.MapClaims{
			"phone": "12345",
			"exp":   time.Now().Add(-time.Hour).Unix(),
		})
		if identity := verifier.Verify(token); identity != nil {
			t.Errorf("expected nil identity, got %+v", identity)
		}
	})

	t.Run("garbage credential is rejected", func(t *testing.T) {
		if identity := verifier.Verify("not-a-jwt"); identity != nil {
			t.Errorf("expected nil identity, got %+v", identity)
		}
	})

	t.Run("none algorithm is rejected", func(t *testing.T) {
		token := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"phone": "12345"})
		signed, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
		if err != nil {
			t.Fatalf("failed to sign unsigned token: %v", err)
		}
		if identity := verifier.Verify(signed); identity != nil {
			t.Errorf("expected nil identity, got %+v", identity)
		}
	})
}
