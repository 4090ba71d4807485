// Package signup is the view model of the account creation screen.
package signup

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/congo-pay/signin/internal/auth"
	"github.com/congo-pay/signin/internal/media"
	"github.com/congo-pay/signin/internal/reactive"
	"github.com/congo-pay/signin/internal/users"
	"github.com/congo-pay/signin/internal/validate"
	"github.com/congo-pay/signin/internal/viewmodel"
)

var (
	// ErrNotSignedUp is published when an avatar is requested before the account exists.
	ErrNotSignedUp = errors.New("sign up before uploading an avatar")
	// ErrNoMedia is published when no media storage was configured.
	ErrNoMedia = errors.New("media storage is not configured")
)

// ViewModel owns the sign-up form. State lives on the loop goroutine.
type ViewModel struct {
	ctx        context.Context
	loop       *reactive.Loop
	deps       viewmodel.Deps
	validators viewmodel.Validators

	email              *reactive.Property[string]
	password           *reactive.Property[string]
	displayName        *reactive.Property[string]
	isEmailValid       *reactive.Property[bool]
	isPasswordValid    *reactive.Property[bool]
	isDisplayNameValid *reactive.Property[bool]
	signUpError        *reactive.Property[error]
	signUpSuccessful   *reactive.Property[bool]
	user               *reactive.Property[users.User]
	avatarUpload       *reactive.Property[media.Upload]
	avatarError        *reactive.Property[error]
	session            *reactive.Property[auth.Session]

	attempt int // loop goroutine only
}

// New builds a sign-up view model on loop.
func New(ctx context.Context, loop *reactive.Loop, deps viewmodel.Deps, validators viewmodel.Validators) *ViewModel {
	vm := &ViewModel{
		ctx:                ctx,
		loop:               loop,
		deps:               deps,
		validators:         validators,
		email:              reactive.NewProperty(loop, ""),
		password:           reactive.NewProperty(loop, ""),
		displayName:        reactive.NewProperty(loop, ""),
		isEmailValid:       reactive.NewProperty(loop, false),
		isPasswordValid:    reactive.NewProperty(loop, false),
		isDisplayNameValid: reactive.NewProperty(loop, false),
		signUpError:        reactive.NewProperty[error](loop, nil),
		signUpSuccessful:   reactive.NewProperty(loop, false),
		user:               reactive.NewProperty(loop, users.User{}),
		avatarUpload:       reactive.NewProperty(loop, media.Upload{}),
		avatarError:        reactive.NewProperty[error](loop, nil),
		session:            reactive.NewProperty(loop, auth.Session{}),
	}
	// Not yet shared with the loop, so wiring here does not race it.
	vm.email.SubscribeNow(func(v string) { vm.isEmailValid.SetNow(vm.validators.Email(v)) })
	vm.password.SubscribeNow(func(v string) { vm.isPasswordValid.SetNow(vm.validators.Password(v)) })
	vm.displayName.SubscribeNow(func(v string) { vm.isDisplayNameValid.SetNow(validate.DisplayName(v)) })
	return vm
}

func (vm *ViewModel) Email() *reactive.Property[string] { return vm.email }
func (vm *ViewModel) Password() *reactive.Property[string] { return vm.password }
func (vm *ViewModel) DisplayName() *reactive.Property[string] { return vm.displayName }
func (vm *ViewModel) IsEmailValid() *reactive.Property[bool] { return vm.isEmailValid }
func (vm *ViewModel) IsPasswordValid() *reactive.Property[bool] { return vm.isPasswordValid }
func (vm *ViewModel) IsDisplayNameValid() *reactive.Property[bool] { return vm.isDisplayNameValid }
func (vm *ViewModel) SignUpError() *reactive.Property[error] { return vm.signUpError }
func (vm *ViewModel) SignUpSuccessful() *reactive.Property[bool] { return vm.signUpSuccessful }
func (vm *ViewModel) User() *reactive.Property[users.User] { return vm.user }
func (vm *ViewModel) AvatarUpload() *reactive.Property[media.Upload] { return vm.avatarUpload }
func (vm *ViewModel) AvatarError() *reactive.Property[error] { return vm.avatarError }
func (vm *ViewModel) Session() *reactive.Property[auth.Session] { return vm.session }

// Deps returns the collaborators the view model was built with.
func (vm *ViewModel) Deps() viewmodel.Deps { return vm.deps }

// SignUp creates the account, then stores its user record. Invalid forms are ignored.
func (vm *ViewModel) SignUp() {
	vm.loop.Post(vm.signUp)
}

func (vm *ViewModel) signUp() {
	vm.signUpError.SetNow(nil)
	if !vm.isEmailValid.Get() || !vm.isPasswordValid.Get() || !vm.isDisplayNameValid.Get() {
		return
	}

	vm.attempt++
	attempt := vm.attempt
	email, password := vm.email.Get(), vm.password.Get()
	name := strings.TrimSpace(vm.displayName.Get())
	vm.deps.Auth.SignUp(vm.ctx, email, password, func(session auth.Session, err error) {
		switch {
		case errors.Is(err, auth.ErrEmailTaken):
			vm.resume(attempt, email, password, name)
		case err != nil:
			vm.loop.Post(func() { vm.finish(attempt, session, users.User{}, err) })
		default:
			go vm.createRecord(attempt, session, name)
		}
	})
}

// resume completes an earlier sign-up whose account was created but whose user record was not.
// Without the right password, or with the record already in place, the email is reported taken.
func (vm *ViewModel) resume(attempt int, email, password, name string) {
	vm.deps.Auth.SignIn(vm.ctx, email, password, func(session auth.Session, err error) {
		if err != nil {
			vm.loop.Post(func() { vm.finish(attempt, session, users.User{}, auth.ErrEmailTaken) })
			return
		}
		go func() {
			_, err := vm.deps.Users.Fetch(vm.ctx, session.UserID)
			switch {
			case err == nil:
				err = auth.ErrEmailTaken
			case errors.Is(err, users.ErrRecordNotFound) && !errors.Is(err, users.ErrReadFailed):
				vm.createRecord(attempt, session, name)
				return
			}
			vm.loop.Post(func() { vm.finish(attempt, session, users.User{}, err) })
		}()
	})
}

func (vm *ViewModel) createRecord(attempt int, session auth.Session, name string) {
	now := time.Now().UTC()
	user := users.User{
		ID:          session.UserID,
		Email:       session.Email,
		DisplayName: name,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	err := vm.deps.Users.Save(vm.ctx, user)
	vm.loop.Post(func() { vm.finish(attempt, session, user, err) })
}

func (vm *ViewModel) finish(attempt int, session auth.Session, user users.User, err error) {
	if attempt != vm.attempt {
		return
	}
	if err != nil {
		vm.signUpError.SetNow(err)
		return
	}
	vm.session.SetNow(session)
	vm.user.SetNow(user)
	vm.signUpSuccessful.SetNow(true)
}

// RequestAvatarUpload presigns an avatar upload and records the new media key on the user.
func (vm *ViewModel) RequestAvatarUpload() {
	vm.loop.Post(func() {
		vm.avatarError.SetNow(nil)
		user := vm.user.Get()
		switch {
		case user.ID == "":
			vm.avatarError.SetNow(ErrNotSignedUp)
			return
		case vm.deps.Media == nil:
			vm.avatarError.SetNow(ErrNoMedia)
			return
		}
		go vm.presignAvatar(user)
	})
}

func (vm *ViewModel) presignAvatar(user users.User) {
	upload, err := vm.deps.Media.AvatarUploadURL(vm.ctx, user.ID)
	if err == nil {
		user.AvatarKey = upload.Key
		user.UpdatedAt = time.Now().UTC()
		err = vm.deps.Users.Save(vm.ctx, user)
	}
	vm.loop.Post(func() {
		if err != nil {
			vm.avatarError.SetNow(err)
			return
		}
		vm.user.SetNow(user)
		vm.avatarUpload.SetNow(upload)
	})
}
