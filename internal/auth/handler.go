package auth

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/congo-pay/signin/internal/validate"
)

// Handler exposes sign-in and sign-up endpoints.
type Handler struct {
	svc *Service
	// onSignUp runs after a credential is created, before the response is written. It also runs
	// when a sign-up is retried with the password of an existing account, so a sign-up that
	// failed in onSignUp can be completed; it must then report ErrEmailTaken if nothing is
	// missing.
	onSignUp func(c *fiber.Ctx, session Session) error
}

// NewHandler builds the auth handler. onSignUp may be nil.
func NewHandler(svc *Service, onSignUp func(c *fiber.Ctx, session Session) error) *Handler {
	return &Handler{svc: svc, onSignUp: onSignUp}
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SignIn validates credentials and returns a session.
func (h *Handler) SignIn(c *fiber.Ctx) error {
	var req credentialsRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	session, err := h.svc.Authenticate(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return toHTTPError(err)
	}
	return c.Status(http.StatusOK).JSON(session)
}

// SignUp registers an account and returns its first session.
func (h *Handler) SignUp(c *fiber.Ctx) error {
	var req credentialsRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	session, err := h.svc.Register(c.UserContext(), req.Email, req.Password)
	if errors.Is(err, ErrEmailTaken) && h.onSignUp != nil {
		session, err = h.resume(c, req)
	}
	if err != nil {
		return toHTTPError(err)
	}
	if h.onSignUp != nil {
		if err := h.onSignUp(c, session); err != nil {
			if errors.Is(err, ErrEmailTaken) {
				return toHTTPError(err)
			}
			return err
		}
	}
	return c.Status(http.StatusCreated).JSON(session)
}

// resume signs in the existing account so onSignUp can finish an interrupted sign-up. Any
// failure is reported as the original ErrEmailTaken.
func (h *Handler) resume(c *fiber.Ctx, req credentialsRequest) (Session, error) {
	session, err := h.svc.Authenticate(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return Session{}, ErrEmailTaken
	}
	return session, nil
}

func toHTTPError(err error) error {
	switch {
	case errors.Is(err, ErrInvalidCredentials):
		return fiber.NewError(http.StatusUnauthorized, err.Error())
	case errors.Is(err, ErrEmailTaken):
		return fiber.NewError(http.StatusConflict, err.Error())
	case errors.Is(err, validate.ErrEmailRequired),
		errors.Is(err, validate.ErrInvalidEmail),
		errors.Is(err, validate.ErrPasswordRequired),
		errors.Is(err, validate.ErrPasswordTooShort),
		errors.Is(err, validate.ErrPasswordTooLong),
		errors.Is(err, validate.ErrPasswordTooWeak):
		return fiber.NewError(http.StatusBadRequest, err.Error())
	default:
		return fiber.NewError(http.StatusInternalServerError, "authentication unavailable")
	}
}
