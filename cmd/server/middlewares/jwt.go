package middlewares

import (
	"lumina/cmd/server/ctxkeys"
	"lumina/cmd/server/handlers/httperr"

	jwtware "github.com/gofiber/contrib/jwt"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

// JWT returns a Fiber middleware that validates an HS256 bearer token signed
// with secret and stores its "sub" claim in ctx.Locals(ctxkeys.SubjectKey).
// An empty secret disables the check.
//
// On any problem it bubbles up a 401 via the global httperr handler.
func JWT(secret string) fiber.Handler {
	if secret == "" {
		return func(c *fiber.Ctx) error { return c.Next() }
	}

	return jwtware.New(jwtware.Config{
		SigningKey: jwtware.SigningKey{JWTAlg: jwtware.HS256, Key: []byte(secret)},
		SuccessHandler: func(c *fiber.Ctx) error {
			token, ok := c.Locals("user").(*jwt.Token)
			if !ok {
				return httperr.Fail(httperr.ErrUnauthorized)
			}
			sub, err := token.Claims.GetSubject()
			if err != nil || sub == "" {
				return httperr.Status(fiber.StatusUnauthorized, "Invalid token: missing sub")
			}
			c.Locals(ctxkeys.SubjectKey, sub)
			return c.Next()
		},
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return httperr.Fail(httperr.ErrUnauthorized)
		},
	})
}
