// Package viewmodel defines the collaborators shared by the screen view models.
package viewmodel

import (
	"context"

	"github.com/congo-pay/signin/internal/auth"
	"github.com/congo-pay/signin/internal/media"
	"github.com/congo-pay/signin/internal/users"
	"github.com/congo-pay/signin/internal/validate"
)

// Authenticator signs accounts in and up. Calls return immediately; done may run on any
// goroutine.
type Authenticator interface {
	SignIn(ctx context.Context, email, password string, done func(auth.Session, error))
	SignUp(ctx context.Context, email, password string, done func(auth.Session, error))
}

// Media signs avatar URLs.
type Media interface {
	AvatarUploadURL(ctx context.Context, userID string) (media.Upload, error)
	AvatarURL(ctx context.Context, key string) (string, error)
}

// Deps is the collaborator set every view model receives.
type Deps struct {
	Auth  Authenticator
	Users users.Store
	Media Media
}

// Validators decide field validity for the forms.
type Validators struct {
	Email    func(string) bool
	Password func(string) bool
}

// DefaultValidators uses the validate package rules.
func DefaultValidators() Validators {
	return Validators{Email: validate.Email, Password: validate.Password}
}
