// Package signin is the view model of the sign-in screen: field validation, form steps and the
// authentication round-trip.
package signin

import (
	"context"

	"github.com/congo-pay/signin/internal/auth"
	"github.com/congo-pay/signin/internal/reactive"
	"github.com/congo-pay/signin/internal/viewmodel"
	"github.com/congo-pay/signin/internal/viewmodel/dashboard"
	"github.com/congo-pay/signin/internal/viewmodel/signup"
)

// Controller holds the sign-in form state for the lifetime of one screen presentation. Every
// field is written on the loop goroutine; derived flags follow their source fields there.
type Controller struct {
	ctx        context.Context
	loop       *reactive.Loop
	deps       viewmodel.Deps
	validators viewmodel.Validators

	email            *reactive.Property[string]
	password         *reactive.Property[string]
	isEmailValid     *reactive.Property[bool]
	isPasswordValid  *reactive.Property[bool]
	signInError      *reactive.Property[error]
	signInSuccessful *reactive.Property[bool]
	form             *reactive.Property[Form]
	session          *reactive.Property[auth.Session]

	attempt int // loop goroutine only
}

// New builds a controller. ctx bounds the collaborator calls it makes.
func New(ctx context.Context, loop *reactive.Loop, deps viewmodel.Deps, validators viewmodel.Validators) *Controller {
	c := &Controller{
		ctx:              ctx,
		loop:             loop,
		deps:             deps,
		validators:       validators,
		email:            reactive.NewProperty(loop, ""),
		password:         reactive.NewProperty(loop, ""),
		isEmailValid:     reactive.NewProperty(loop, false),
		isPasswordValid:  reactive.NewProperty(loop, false),
		signInError:      reactive.NewProperty[error](loop, nil),
		signInSuccessful: reactive.NewProperty(loop, false),
		form:             reactive.NewProperty(loop, FormEmail),
		session:          reactive.NewProperty(loop, auth.Session{}),
	}
	c.email.SubscribeNow(func(v string) { c.isEmailValid.SetNow(c.validators.Email(v)) })
	c.password.SubscribeNow(func(v string) { c.isPasswordValid.SetNow(c.validators.Password(v)) })
	return c
}

func (c *Controller) Email() *reactive.Property[string] { return c.email }
func (c *Controller) Password() *reactive.Property[string] { return c.password }
func (c *Controller) IsEmailValid() *reactive.Property[bool] { return c.isEmailValid }
func (c *Controller) IsPasswordValid() *reactive.Property[bool] { return c.isPasswordValid }
func (c *Controller) SignInError() *reactive.Property[error] { return c.signInError }
func (c *Controller) SignInSuccessful() *reactive.Property[bool] { return c.signInSuccessful }
func (c *Controller) Form() *reactive.Property[Form] { return c.form }

// Session holds the session of the successful attempt.
func (c *Controller) Session() *reactive.Property[auth.Session] { return c.session }

// SetEmail and SetPassword are the keystroke entry points.
func (c *Controller) SetEmail(v string) { c.email.Set(v) }
func (c *Controller) SetPassword(v string) { c.password.Set(v) }

// SignIn attempts authentication with the current fields. It does nothing, and reports nothing,
// while either field is invalid.
func (c *Controller) SignIn() {
	c.loop.Post(c.signIn)
}

// Submit advances from the given step. Unknown steps are ignored.
func (c *Controller) Submit(form Form) {
	c.loop.Post(func() { c.submit(form) })
}

func (c *Controller) submit(form Form) {
	t, ok := transitions[form]
	if !ok {
		return
	}
	c.form.SetNow(t.next)
	for _, act := range t.actions {
		act(c)
	}
}

func (c *Controller) signIn() {
	c.signInError.SetNow(nil)
	if !c.isEmailValid.Get() || !c.isPasswordValid.Get() {
		return
	}

	c.attempt++
	attempt := c.attempt
	c.deps.Auth.SignIn(c.ctx, c.email.Get(), c.password.Get(), func(session auth.Session, err error) {
		c.loop.Post(func() { c.complete(attempt, session, err) })
	})
}

// complete applies the outcome of one attempt. Outcomes of superseded attempts are dropped so an
// attempt never ends with both an error and success.
func (c *Controller) complete(attempt int, session auth.Session, err error) {
	if attempt != c.attempt {
		return
	}
	if err != nil {
		c.signInError.SetNow(err)
		return
	}
	c.session.SetNow(session)
	c.signInSuccessful.SetNow(true)
}

// DashboardViewModel builds a new dashboard view model on every call.
func (c *Controller) DashboardViewModel() *dashboard.ViewModel {
	return dashboard.New(c.ctx, c.loop, c.deps)
}

// SignUpViewModel builds a new sign-up view model on every call.
func (c *Controller) SignUpViewModel() *signup.ViewModel {
	return signup.New(c.ctx, c.loop, c.deps, c.validators)
}

// Deps returns the collaborators the controller was built with.
func (c *Controller) Deps() viewmodel.Deps { return c.deps }
