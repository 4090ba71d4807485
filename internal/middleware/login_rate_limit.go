package middleware

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"

	"github.com/congo-pay/signin/internal/validate"
)

const loginWindow = time.Minute

// LoginRateLimit caps sign-in attempts per email (or client IP when the body has none) within a
// one-minute window. Cache failures let the request through.
func LoginRateLimit(cache *redis.Client, maxPerWindow int, logger *slog.Logger) fiber.Handler {
	if maxPerWindow <= 0 {
		maxPerWindow = 5
	}
	return func(c *fiber.Ctx) error {
		if cache == nil {
			return c.Next()
		}
		var req struct {
			Email string `json:"email"`
		}
		_ = c.BodyParser(&req)
		subject := validate.NormalizeEmail(req.Email)
		if subject == "" {
			subject = "ip:" + c.IP()
		}
		key := "rl:signin:" + subject

		ctx := c.UserContext()
		count, err := cache.Incr(ctx, key).Result()
		if err != nil {
			logger.Warn("login rate limit unavailable", slog.Any("error", err))
			return c.Next()
		}
		if count == 1 {
			cache.Expire(ctx, key, loginWindow)
		}
		if count > int64(maxPerWindow) {
			c.Set(fiber.HeaderRetryAfter, "60")
			return fiber.NewError(http.StatusTooManyRequests, "too many sign-in attempts, try again later")
		}
		return c.Next()
	}
}
