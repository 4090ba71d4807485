package middleware

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/congo-pay/signin/internal/auth"
)

// Locals keys set by Authenticated.
const (
	UserIDLocal = "user_id"
	EmailLocal  = "email"
)

// TokenVerifier resolves a bearer token to its session.
type TokenVerifier interface {
	Verify(token string) (auth.Session, error)
}

// Authenticated rejects requests without a valid bearer access token.
func Authenticated(verifier TokenVerifier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authz := c.Get(fiber.HeaderAuthorization)
		if len(authz) < len("Bearer ") || !strings.EqualFold(authz[:len("Bearer ")], "bearer ") {
			return fiber.NewError(http.StatusUnauthorized, "missing bearer token")
		}
		session, err := verifier.Verify(strings.TrimSpace(authz[len("Bearer "):]))
		if err != nil {
			return fiber.NewError(http.StatusUnauthorized, "invalid token")
		}

		c.Locals(UserIDLocal, session.UserID)
		c.Locals(EmailLocal, session.Email)
		return c.Next()
	}
}
