package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/congo-pay/signin/internal/auth"
)

// RegisterAuthRoutes wires sign-in and sign-up endpoints.
func RegisterAuthRoutes(r fiber.Router, h *auth.Handler, rateLimiter fiber.Handler, signUpGuards ...fiber.Handler) {
	group := r.Group("/auth")
	group.Post("/signin", rateLimiter, h.SignIn)
	group.Post("/signup", append(signUpGuards, h.SignUp)...)
}
