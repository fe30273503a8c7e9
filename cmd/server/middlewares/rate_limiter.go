package middlewares

import (
	"time"

	"lumina/cmd/server/ctxkeys"
	"lumina/cmd/server/handlers/httperr"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

// BuildRateLimiter allows max requests per expiration window. Requests are
// bucketed by the JWT subject when one is set and by client IP otherwise.
// max <= 0 turns the limiter into a pass-through.
func BuildRateLimiter(max int, expiration time.Duration) fiber.Handler {
	if max <= 0 {
		return func(c *fiber.Ctx) error { return c.Next() }
	}

	return limiter.New(limiter.Config{
		Max:          max,
		Expiration:   expiration,
		KeyGenerator: limiterKey,
		LimitReached: func(c *fiber.Ctx) error {
			return httperr.Fail(httperr.ErrTooManyRequests)
		},
	})
}

func limiterKey(c *fiber.Ctx) string {
	if sub, ok := c.Locals(ctxkeys.SubjectKey).(string); ok && sub != "" {
		return "sub:" + sub
	}
	return "ip:" + c.IP()
}
