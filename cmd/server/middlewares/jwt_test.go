package middlewares

import (
	"net/http/httptest"
	"testing"
	"time"

	"lumina/cmd/server/ctxkeys"
	"lumina/cmd/server/handlers/httperr"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-with-32-characters"

func sign(t *testing.T, claims jwt.MapClaims, secret string) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return s
}

func TestJWT(t *testing.T) {
	exp := time.Now().Add(time.Hour).Unix()

	tests := []struct {
		name       string
		secret     string
		header     string
		wantStatus int
		wantSub    string
	}{
		{"disabled", "", "", 200, ""},
		{"missing header", testSecret, "", 401, ""},
		{"valid token", testSecret, "Bearer " + sign(t, jwt.MapClaims{"sub": "me", "exp": exp}, testSecret), 200, "me"},
		{"wrong secret", testSecret, "Bearer " + sign(t, jwt.MapClaims{"sub": "me", "exp": exp}, "another-secret-key-with-32-chars!!"), 401, ""},
		{"missing sub", testSecret, "Bearer " + sign(t, jwt.MapClaims{"exp": exp}, testSecret), 401, ""},
		{"expired", testSecret, "Bearer " + sign(t, jwt.MapClaims{"sub": "me", "exp": time.Now().Add(-time.Hour).Unix()}, testSecret), 401, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := fiber.New(fiber.Config{ErrorHandler: httperr.Handler})
			var gotSub string
			app.Get("/api/v1/notes", JWT(tt.secret), func(c *fiber.Ctx) error {
				gotSub, _ = c.Locals(ctxkeys.SubjectKey).(string)
				return c.SendStatus(200)
			})

			req := httptest.NewRequest("GET", "/api/v1/notes", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			assert.Equal(t, tt.wantSub, gotSub)
		})
	}
}
