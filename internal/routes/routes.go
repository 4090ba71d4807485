package routes

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/congo-pay/signin/internal/auth"
	"github.com/congo-pay/signin/internal/config"
	"github.com/congo-pay/signin/internal/logging"
	"github.com/congo-pay/signin/internal/media"
	"github.com/congo-pay/signin/internal/middleware"
	"github.com/congo-pay/signin/internal/notification"
	"github.com/congo-pay/signin/internal/users"
	"github.com/congo-pay/signin/internal/validate"
)

// AvatarSigner presigns avatar URLs.
type AvatarSigner interface {
	AvatarUploadURL(ctx context.Context, userID string) (media.Upload, error)
	AvatarURL(ctx context.Context, key string) (string, error)
}

// Deps aggregates shared dependencies required to wire routes.
type Deps struct {
	Cfg         config.Config
	DB          *pgxpool.Pool
	Cache       *redis.Client
	Logger      *slog.Logger
	Users       users.Store
	Credentials auth.CredentialRepository
	// Media is nil when no bucket is configured; avatar routes then answer 501.
	Media AvatarSigner
	// Notifier defaults to logging the message.
	Notifier notification.Notifier
}

// Setup configures middlewares and all application routes.
func Setup(app *fiber.App, d Deps) error {
	if d.Users == nil || d.Credentials == nil {
		return fmt.Errorf("user store and credential repository are required")
	}
	if !d.Cfg.IsDev() && d.Cache == nil {
		return fmt.Errorf("redis is required when APP_ENV=%s", d.Cfg.AppEnv)
	}

	app.Use(recover.New())
	app.Use(middleware.RequestID())
	app.Use(middleware.Audit(d.Logger))

	if d.Notifier == nil {
		d.Notifier = notification.NewLoggerNotifier(logging.Component(d.Logger, "notification"))
	}

	RegisterHealthRoutes(app, d)

	tokens := auth.NewTokens(d.Cfg.JWTSecret, d.Cfg.AccessTokenTTL, d.Cfg.AppName)
	authSvc := auth.NewService(d.Credentials, tokens, auth.WithCost(d.Cfg.PasswordCost))
	authHandler := auth.NewHandler(authSvc, createUserRecord(d.Users, d.Notifier, d.Logger))

	api := app.Group("/api/v1")
	api.Get("/ping", func(c *fiber.Ctx) error {
		reqID, _ := c.Locals(middleware.RequestIDLocal).(string)
		return c.Status(http.StatusOK).JSON(fiber.Map{
			"status":     "ok",
			"request_id": reqID,
			"timestamp":  time.Now().UTC().Format(time.RFC3339Nano),
		})
	})

	signUpGuards := []fiber.Handler{checkDisplayName}
	if d.Cache != nil {
		signUpGuards = append(signUpGuards, middleware.Idempotency(d.Cache, d.Cfg.IdempotencyTTL, d.Logger))
	}
	RegisterAuthRoutes(api, authHandler, middleware.LoginRateLimit(d.Cache, d.Cfg.LoginAttempts, d.Logger), signUpGuards...)

	me := api.Group("/users/me", middleware.Authenticated(authSvc))
	RegisterUserRoutes(me, d.Users, d.Media, d.Logger)

	return nil
}

// createUserRecord stores the first version of the user document right after registration, then
// greets the account. A failed greeting does not fail the sign-up. On a retried sign-up it only
// fills in a record that an earlier attempt failed to save.
func createUserRecord(store users.Store, notifier notification.Notifier, logger *slog.Logger) func(c *fiber.Ctx, session auth.Session) error {
	return func(c *fiber.Ctx, session auth.Session) error {
		var req struct {
			DisplayName string `json:"display_name"`
		}
		_ = c.BodyParser(&req)

		ctx := c.UserContext()
		_, err := store.Fetch(ctx, session.UserID)
		switch {
		case err == nil:
			return auth.ErrEmailTaken
		case errors.Is(err, users.ErrReadFailed) || !errors.Is(err, users.ErrRecordNotFound):
			logger.Error("check user record", slog.String("user_id", session.UserID), slog.Any("error", err))
			return fiber.NewError(http.StatusServiceUnavailable, "user record unavailable")
		}

		now := time.Now().UTC()
		user := users.User{
			ID:          session.UserID,
			Email:       session.Email,
			DisplayName: strings.TrimSpace(req.DisplayName),
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := store.Save(ctx, user); err != nil {
			logger.Error("create user record", slog.String("user_id", user.ID), slog.Any("error", err))
			return fiber.NewError(http.StatusServiceUnavailable, "user record not saved")
		}
		if err := notifier.Send(ctx, notification.Welcome(user.Email, user.DisplayName)); err != nil {
			logger.Warn("welcome notification failed", slog.String("user_id", user.ID), slog.Any("error", err))
		}
		return nil
	}
}

// checkDisplayName rejects a sign-up whose optional display name is too long before any account
// is created.
func checkDisplayName(c *fiber.Ctx) error {
	var req struct {
		DisplayName string `json:"display_name"`
	}
	_ = c.BodyParser(&req)
	if strings.TrimSpace(req.DisplayName) != "" {
		if err := validate.CheckDisplayName(req.DisplayName); err != nil {
			return fiber.NewError(http.StatusBadRequest, err.Error())
		}
	}
	return c.Next()
}
