package routes

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/congo-pay/signin/internal/middleware"
	"github.com/congo-pay/signin/internal/users"
	"github.com/congo-pay/signin/internal/validate"
)

type userHandler struct {
	store  users.Store
	media  AvatarSigner
	logger *slog.Logger
}

// RegisterUserRoutes wires the profile endpoints of the signed-in user. r must already be
// behind middleware.Authenticated.
func RegisterUserRoutes(r fiber.Router, store users.Store, signer AvatarSigner, logger *slog.Logger) {
	h := &userHandler{store: store, media: signer, logger: logger}
	r.Get("/", h.me)
	r.Put("/", h.update)
	r.Post("/avatar", h.requestAvatarUpload)
	r.Get("/avatar", h.avatar)
}

type userResponse struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name,omitempty"`
	AvatarKey   string `json:"avatar_key,omitempty"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

func toUserResponse(u users.User) userResponse {
	return userResponse{
		ID:          u.ID,
		Email:       u.Email,
		DisplayName: u.DisplayName,
		AvatarKey:   u.AvatarKey,
		CreatedAt:   u.CreatedAt.Format(time.RFC3339Nano),
		UpdatedAt:   u.UpdatedAt.Format(time.RFC3339Nano),
	}
}

func (h *userHandler) current(c *fiber.Ctx) (users.User, error) {
	userID, _ := c.Locals(middleware.UserIDLocal).(string)
	user, err := h.store.Fetch(c.UserContext(), userID)
	switch {
	case err == nil:
		return user, nil
	case errors.Is(err, users.ErrRecordNotFound):
		return users.User{}, fiber.NewError(http.StatusNotFound, "user record not found")
	default:
		h.logger.Error("fetch user", slog.String("user_id", userID), slog.Any("error", err))
		return users.User{}, fiber.NewError(http.StatusServiceUnavailable, "user record unavailable")
	}
}

func (h *userHandler) save(c *fiber.Ctx, user users.User) error {
	user.UpdatedAt = time.Now().UTC()
	if err := h.store.Save(c.UserContext(), user); err != nil {
		h.logger.Error("save user", slog.String("user_id", user.ID), slog.Any("error", err))
		return fiber.NewError(http.StatusServiceUnavailable, "user record not saved")
	}
	return c.Status(http.StatusOK).JSON(toUserResponse(user))
}

func (h *userHandler) me(c *fiber.Ctx) error {
	user, err := h.current(c)
	if err != nil {
		return err
	}
	return c.Status(http.StatusOK).JSON(toUserResponse(user))
}

func (h *userHandler) update(c *fiber.Ctx) error {
	var req struct {
		DisplayName string `json:"display_name"`
	}
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	if err := validate.CheckDisplayName(req.DisplayName); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	user, err := h.current(c)
	if err != nil {
		return err
	}
	user.DisplayName = strings.TrimSpace(req.DisplayName)
	return h.save(c, user)
}

// requestAvatarUpload hands out a presigned PUT URL and records the key on the user document.
func (h *userHandler) requestAvatarUpload(c *fiber.Ctx) error {
	if h.media == nil {
		return fiber.NewError(http.StatusNotImplemented, "media storage is not configured")
	}
	user, err := h.current(c)
	if err != nil {
		return err
	}
	upload, err := h.media.AvatarUploadURL(c.UserContext(), user.ID)
	if err != nil {
		h.logger.Error("presign avatar upload", slog.String("user_id", user.ID), slog.Any("error", err))
		return fiber.NewError(http.StatusBadGateway, "avatar upload unavailable")
	}

	user.AvatarKey = upload.Key
	user.UpdatedAt = time.Now().UTC()
	if err := h.store.Save(c.UserContext(), user); err != nil {
		h.logger.Error("save user", slog.String("user_id", user.ID), slog.Any("error", err))
		return fiber.NewError(http.StatusServiceUnavailable, "user record not saved")
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"key": upload.Key, "upload_url": upload.URL})
}

func (h *userHandler) avatar(c *fiber.Ctx) error {
	if h.media == nil {
		return fiber.NewError(http.StatusNotImplemented, "media storage is not configured")
	}
	user, err := h.current(c)
	if err != nil {
		return err
	}
	if user.AvatarKey == "" {
		return fiber.NewError(http.StatusNotFound, "no avatar uploaded")
	}
	url, err := h.media.AvatarURL(c.UserContext(), user.AvatarKey)
	if err != nil {
		h.logger.Error("presign avatar", slog.String("user_id", user.ID), slog.Any("error", err))
		return fiber.NewError(http.StatusBadGateway, "avatar unavailable")
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"url": url})
}
